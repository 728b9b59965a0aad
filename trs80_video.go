// trs80_video.go - 64x16 memory-mapped character display

package main

import (
	"strings"
	"sync"
	"sync/atomic"
)

const (
	TRS80Columns = 64
	TRS80Rows    = 16
)

// Shades for 2x3 graphics cells, indexed by how many of the six pixels are lit.
var trs80Shades = [7]rune{' ', '░', '░', '▒', '▒', '▓', '█'}

// TRS80Video holds the 1K video RAM. The CPU goroutine writes it while host
// backends read it from their own goroutines.
type TRS80Video struct {
	mu     sync.RWMutex
	ram    [trs80VideoSize]byte
	wide   atomic.Bool
	writes atomic.Uint64
}

func NewTRS80Video() *TRS80Video {
	v := &TRS80Video{}
	for i := range v.ram {
		v.ram[i] = ' '
	}
	return v
}

func (v *TRS80Video) Read(off uint16) byte {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ram[off%trs80VideoSize]
}

func (v *TRS80Video) Write(off uint16, value byte) {
	v.mu.Lock()
	v.ram[off%trs80VideoSize] = value
	v.mu.Unlock()
	v.writes.Add(1)
}

// SetWide selects the 32-column mode, where only even columns are shown.
func (v *TRS80Video) SetWide(wide bool) {
	if v.wide.Swap(wide) != wide {
		v.writes.Add(1)
	}
}

func (v *TRS80Video) Wide() bool {
	return v.wide.Load()
}

// Dirty returns a counter that changes whenever the screen may have changed.
func (v *TRS80Video) Dirty() uint64 {
	return v.writes.Load()
}

// Cell returns the raw byte at column x, row y.
func (v *TRS80Video) Cell(x, y int) byte {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ram[(y*TRS80Columns+x)%trs80VideoSize]
}

// Snapshot copies the video RAM.
func (v *TRS80Video) Snapshot() [trs80VideoSize]byte {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ram
}

// IsGraphics reports whether code is a 2x3 block graphics cell.
func IsGraphics(code byte) bool {
	return code >= 0x80
}

// GlyphRune maps a video byte to the rune shown for it in text renderings.
func GlyphRune(code byte) rune {
	switch {
	case code < 0x20:
		return rune(code + 0x40)
	case code < 0x80:
		return rune(code)
	default:
		lit := 0
		for bits := code & 0x3F; bits != 0; bits &= bits - 1 {
			lit++
		}
		return trs80Shades[lit]
	}
}

// ScreenText renders the display as TRS80Rows lines of text.
func (v *TRS80Video) ScreenText() []string {
	ram := v.Snapshot()
	step := 1
	if v.Wide() {
		step = 2
	}
	lines := make([]string, TRS80Rows)
	var sb strings.Builder
	for y := range TRS80Rows {
		sb.Reset()
		for x := 0; x < TRS80Columns; x += step {
			sb.WriteRune(GlyphRune(ram[y*TRS80Columns+x]))
		}
		lines[y] = strings.TrimRight(sb.String(), " ")
	}
	return lines
}
