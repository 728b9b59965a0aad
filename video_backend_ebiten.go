//go:build !headless

// video_backend_ebiten.go - Ebiten window for the 64x16 screen

package main

import (
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

var (
	trs80Phosphor = color.RGBA{0xD8, 0xF0, 0xFF, 0xFF}
	trs80Black    = color.RGBA{0, 0, 0, 0xFF}
)

type EbitenOutput struct {
	video   *TRS80Video
	running atomic.Bool
	width   int
	height  int
	scale   int

	vsyncChan chan struct{}
	done      chan struct{}

	mu           sync.RWMutex
	keyHandler   func(byte)
	resetHandler func()

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewEbitenOutput(video *TRS80Video, scale int) (VideoOutput, error) {
	if scale < 1 {
		scale = 1
	}
	return &EbitenOutput{
		video:     video,
		width:     TRS80Columns * trs80CellW,
		height:    TRS80Rows * trs80CellH,
		scale:     scale,
		vsyncChan: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if !eo.running.CompareAndSwap(false, true) {
		return nil
	}
	ebiten.SetWindowSize(eo.width*eo.scale, eo.height*eo.scale)
	ebiten.SetWindowTitle("TRS-80 Model I")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		defer func() {
			eo.running.Store(false)
			close(eo.done)
		}()
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	select {
	case <-eo.vsyncChan:
	case <-eo.done:
		return &VideoError{Operation: "start", Details: "window closed before first frame"}
	}
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running.Store(false)
	return nil
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	return eo.done
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running.Load()
}

func (eo *EbitenOutput) SetKeyHandler(fn func(byte)) {
	eo.mu.Lock()
	eo.keyHandler = fn
	eo.mu.Unlock()
}

func (eo *EbitenOutput) SetResetHandler(fn func()) {
	eo.mu.Lock()
	eo.resetHandler = fn
	eo.mu.Unlock()
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() || !eo.running.Load() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		eo.mu.RLock()
		handler := eo.resetHandler
		eo.mu.RUnlock()
		if handler != nil {
			handler()
		}
	}
	eo.handleKeyboardInput()
	return nil
}

func (eo *EbitenOutput) emitByte(b byte) {
	eo.mu.RLock()
	handler := eo.keyHandler
	eo.mu.RUnlock()
	if handler != nil {
		handler(b)
	}
}

func (eo *EbitenOutput) handleKeyboardInput() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	// Clipboard paste: Ctrl+Shift+V
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		eo.handleClipboardPaste()
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r < 0x80 {
			eo.emitByte(byte(r))
		}
	}

	for key, b := range trs80SpecialKeys {
		if inpututil.IsKeyJustPressed(key) {
			eo.emitByte(b)
		}
	}
}

// Non-printing host keys and the keyboard byte each one types.
var trs80SpecialKeys = map[ebiten.Key]byte{
	ebiten.KeyEnter:       '\n',
	ebiten.KeyNumpadEnter: '\n',
	ebiten.KeyBackspace:   0x08,
	ebiten.KeyArrowLeft:   0x08,
	ebiten.KeyEscape:      0x1B,
	ebiten.KeyHome:        0x0C,
}

func translateSpecialKey(key ebiten.Key) (byte, bool) {
	b, ok := trs80SpecialKeys[key]
	return b, ok
}

func (eo *EbitenOutput) handleClipboardPaste() {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	if !eo.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	data = normalizePasteText(data)
	data = capPasteText(data, trs80KeyQueueMax)
	for _, b := range data {
		eo.emitByte(b)
	}
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	screen.Fill(trs80Black)
	ram := eo.video.Snapshot()
	step := 1
	if eo.video.Wide() {
		step = 2
	}
	face := basicfont.Face7x13
	cellW := trs80CellW * step
	for y := range TRS80Rows {
		for col := 0; col*step < TRS80Columns; col++ {
			code := ram[y*TRS80Columns+col*step]
			px, py := col*cellW, y*trs80CellH
			if IsGraphics(code) {
				for _, b := range graphicsBlocks(code) {
					ebitenutil.DrawRect(screen,
						float64(px+b[0]*trs80BlockW*step), float64(py+b[1]*trs80BlockH),
						float64(trs80BlockW*step), float64(trs80BlockH), trs80Phosphor)
				}
				continue
			}
			if r := GlyphRune(code); r != ' ' {
				text.Draw(screen, string(r), face, px, py+trs80CellH/2+5, trs80Phosphor)
			}
		}
	}

	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}
