package main

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTRS80VideoStartsBlank(t *testing.T) {
	v := NewTRS80Video()
	assert.Equal(t, byte(' '), v.Cell(0, 0))
	assert.Equal(t, byte(' '), v.Cell(63, 15))
	for _, line := range v.ScreenText() {
		assert.Equal(t, "", line)
	}
	assert.Equal(t, uint64(0), v.Dirty())
}

func TestTRS80VideoWriteAndText(t *testing.T) {
	v := NewTRS80Video()
	for i, ch := range []byte("READY") {
		v.Write(uint16(TRS80Columns*2+i), ch)
	}
	v.Write(uint16(TRS80Columns*3), '>')
	v.Write(uint16(TRS80Columns*3+1), 0xBF)

	lines := v.ScreenText()
	assert.Equal(t, TRS80Rows, len(lines))
	assert.Equal(t, "READY", lines[2])
	assert.Equal(t, ">█", lines[3])
	assert.Equal(t, byte('R'), v.Cell(0, 2))
	assert.Equal(t, uint64(7), v.Dirty())

	snap := v.Snapshot()
	assert.Equal(t, byte('Y'), snap[TRS80Columns*2+4])
}

func TestTRS80VideoAddressWraps(t *testing.T) {
	v := NewTRS80Video()
	v.Write(trs80VideoSize+5, 'W')
	assert.Equal(t, byte('W'), v.Read(5))
	assert.Equal(t, byte('W'), v.Read(trs80VideoSize+5))
}

func TestTRS80VideoWideMode(t *testing.T) {
	v := NewTRS80Video()
	for i, ch := range []byte("HXEXLXLXOX") {
		v.Write(uint16(i), ch)
	}
	before := v.Dirty()

	v.SetWide(true)
	assert.True(t, v.Wide())
	assert.Equal(t, before+1, v.Dirty())
	assert.Equal(t, "HELLO", v.ScreenText()[0])
	v.Write(TRS80Columns+62, '!')
	v.Write(TRS80Columns+63, '?')
	assert.Equal(t, strings.Repeat(" ", 31)+"!", v.ScreenText()[1])
	before = v.Dirty()

	v.SetWide(true)
	assert.Equal(t, before, v.Dirty())

	v.SetWide(false)
	assert.Equal(t, "HXEXLXLXOX", v.ScreenText()[0])
}

func TestGlyphRune(t *testing.T) {
	tests := []struct {
		code byte
		want rune
	}{
		{0x00, '@'},
		{0x01, 'A'},
		{0x1A, 'Z'},
		{'a', 'a'},
		{'~', '~'},
		{0x80, ' '},
		{0x81, '░'},
		{0x87, '▒'},
		{0x9F, '▓'},
		{0xBF, '█'},
		{0xFF, '█'},
		{0xC0, ' '},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GlyphRune(tt.code))
	}
	assert.True(t, IsGraphics(0x80))
	assert.False(t, IsGraphics(0x7F))
}
