//go:build !windows

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Ctrl+C arrives as a byte in raw mode.
const terminalInterrupt = 0x03

// TerminalHost reads raw stdin and feeds bytes into the keyboard queue.
// Start is only called from main.go; tests drive route directly.
type TerminalHost struct {
	keyboard     *TRS80Keyboard
	interrupt    func()
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// NewTerminalHost creates a host adapter that types stdin into keyboard.
// interrupt is called when Ctrl+C is read.
func NewTerminalHost(keyboard *TRS80Keyboard, interrupt func()) *TerminalHost {
	return &TerminalHost{
		keyboard:  keyboard,
		interrupt: interrupt,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start sets stdin to raw non-blocking mode and begins reading in a
// goroutine. Call Stop() to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				h.route(buf[0])
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

func (h *TerminalHost) route(b byte) {
	switch b {
	case terminalInterrupt:
		if h.interrupt != nil {
			h.interrupt()
		}
		return
	case '\r':
		b = '\n'
	case 0x7F:
		b = 0x08
	}
	h.keyboard.Enqueue(b)
}

// Stop terminates the stdin reading goroutine and restores stdin to blocking mode.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
