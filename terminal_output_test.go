package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestRenderANSI(t *testing.T) {
	got := renderANSI([]string{"READY", "", ">"})
	assert.Equal(t, "\x1b[HREADY\x1b[K\r\n\x1b[K\r\n>\x1b[K", got)
}

func TestTerminalScreenRefresh(t *testing.T) {
	video := NewTRS80Video()
	var buf bytes.Buffer
	screen := NewTerminalScreen(video, &buf)

	assert.NoError(t, screen.Refresh())
	first := buf.String()
	assert.True(t, strings.HasPrefix(first, "\x1b[2J\x1b[H"))
	assert.Equal(t, TRS80Rows-1, strings.Count(first, "\r\n"))

	buf.Reset()
	assert.NoError(t, screen.Refresh())
	assert.Equal(t, "", buf.String())

	video.Write(0, 'O')
	video.Write(1, 'K')
	assert.NoError(t, screen.Refresh())
	assert.True(t, strings.HasPrefix(buf.String(), "\x1b[HOK\x1b[K\r\n"))
}

func TestTerminalScreenRunStops(t *testing.T) {
	video := NewTRS80Video()
	var buf bytes.Buffer
	screen := NewTerminalScreen(video, &buf)
	ctx, cancel := context.WithTimeout(context.Background(), 3*terminalRefresh)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- screen.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
