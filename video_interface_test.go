package main

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestGraphicsBlocks(t *testing.T) {
	assert.Equal(t, 0, len(graphicsBlocks(0x80)))
	assert.Equal(t, 6, len(graphicsBlocks(0xBF)))

	blocks := graphicsBlocks(0x80 | 0x01 | 0x20)
	assert.Equal(t, 2, len(blocks))
	assert.Equal(t, [2]int{0, 0}, blocks[0])
	assert.Equal(t, [2]int{1, 2}, blocks[1])
}

func TestNormalizePasteText(t *testing.T) {
	got := normalizePasteText([]byte("10 PRINT\r\n20 END\rRUN\n"))
	assert.Equal(t, "10 PRINT\n20 END\nRUN\n", string(got))
	assert.Equal(t, "abc", string(capPasteText([]byte("abcdef"), 3)))
	assert.Equal(t, "ab", string(capPasteText([]byte("ab"), 3)))
}

func TestVideoError(t *testing.T) {
	err := &VideoError{Operation: "start", Details: "no display", Err: ErrNoWindow}
	assert.Equal(t, "video start failed: no display: built without window support", err.Error())
	assert.True(t, errors.Is(err, ErrNoWindow))

	bare := &VideoError{Operation: "stop", Details: "not started"}
	assert.Equal(t, "video stop failed: not started", bare.Error())
}
