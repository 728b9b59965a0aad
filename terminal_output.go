// terminal_output.go - ANSI rendering of the video RAM

package main

import (
	"context"
	"io"
	"strings"
	"time"
)

const terminalRefresh = 50 * time.Millisecond

// TerminalScreen redraws the video RAM on an ANSI terminal when it changes.
type TerminalScreen struct {
	video *TRS80Video
	out   io.Writer
	last  uint64
	drawn bool
}

func NewTerminalScreen(video *TRS80Video, out io.Writer) *TerminalScreen {
	return &TerminalScreen{video: video, out: out}
}

// renderANSI builds one frame: cursor home, then each row with the rest of
// the line erased. Rows end in CR LF because the terminal is in raw mode.
func renderANSI(lines []string) string {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for i, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\x1b[K")
		if i < len(lines)-1 {
			sb.WriteString("\r\n")
		}
	}
	return sb.String()
}

// Refresh draws a frame if the video RAM changed since the last one.
func (s *TerminalScreen) Refresh() error {
	dirty := s.video.Dirty()
	if s.drawn && dirty == s.last {
		return nil
	}
	if !s.drawn {
		if _, err := io.WriteString(s.out, "\x1b[2J"); err != nil {
			return err
		}
	}
	s.last, s.drawn = dirty, true
	_, err := io.WriteString(s.out, renderANSI(s.video.ScreenText()))
	return err
}

// Run refreshes the screen until ctx is done.
func (s *TerminalScreen) Run(ctx context.Context) error {
	ticker := time.NewTicker(terminalRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Refresh(); err != nil {
				return err
			}
		}
	}
}
