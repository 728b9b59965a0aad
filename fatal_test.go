package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestFatalMessage(t *testing.T) {
	err := &Z80UnsupportedError{Addr: 0x4000, Bytes: []byte{0xED, 0x77}, Disassembly: "DB $ED,$77"}

	got := fatalMessage("/usr/local/bin/trs80", err)

	assert.Equal(t, "trs80: fatal error: unsupported instruction ED 77 at $4000 (DB $ED,$77)\n", got)
}

func TestReportFatal(t *testing.T) {
	var buf bytes.Buffer
	reportFatal(nil, &buf, errors.New("ROM missing"))
	assert.True(t, strings.HasSuffix(buf.String(), ": fatal error: ROM missing\n"))
}
