// video_interface.go - host window interface for the TRS-80 screen

package main

import (
	"errors"
	"fmt"
)

// VideoError provides detailed error context for video operations
type VideoError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *VideoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Operation, e.Details)
}

func (e *VideoError) Unwrap() error {
	return e.Err
}

var ErrNoWindow = errors.New("built without window support")

// Logical pixel size of one character cell and of one block graphics pixel.
const (
	trs80CellW  = 8
	trs80CellH  = 24
	trs80BlockW = trs80CellW / 2
	trs80BlockH = trs80CellH / 3
)

// VideoOutput is a host window showing the video RAM.
type VideoOutput interface {
	Start() error
	Stop() error
	// Done is closed when the user closes the window.
	Done() <-chan struct{}
	IsStarted() bool

	// SetKeyHandler receives host keys as keyboard bytes.
	SetKeyHandler(fn func(byte))
	// SetResetHandler is called when the reset key (F10) is pressed.
	SetResetHandler(fn func())
}

// graphicsBlocks lists the lit pixels of a 2x3 block graphics code as
// (column, row) pairs. Bit 0 is top left, bit 5 bottom right.
func graphicsBlocks(code byte) [][2]int {
	var blocks [][2]int
	for bit := range 6 {
		if code&(1<<bit) != 0 {
			blocks = append(blocks, [2]int{bit % 2, bit / 2})
		}
	}
	return blocks
}

func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}

func capPasteText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}
