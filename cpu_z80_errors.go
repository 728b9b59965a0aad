package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrZ80InterruptMode is returned when a maskable interrupt is accepted in
// mode 0 or 2. Only mode 1 is serviced.
var ErrZ80InterruptMode = errors.New("unsupported interrupt mode")

// Z80UnsupportedError reports an opcode sequence with no defined behaviour.
// Execution cannot continue past it.
type Z80UnsupportedError struct {
	Addr        uint16 // address of the first byte of the instruction
	Bytes       []byte // prefix and opcode bytes consumed so far
	Disassembly string // diagnostic disassembly of the instruction
}

func (e *Z80UnsupportedError) Error() string {
	parts := make([]string, len(e.Bytes))
	for i, b := range e.Bytes {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	msg := fmt.Sprintf("unsupported instruction %s at $%04X", strings.Join(parts, " "), e.Addr)
	if e.Disassembly != "" {
		msg += " (" + e.Disassembly + ")"
	}
	return msg
}

// Z80StopReason tells the caller of Run why execution returned.
type Z80StopReason int

const (
	Z80StopNone Z80StopReason = iota
	Z80StopHalt
	Z80StopBreakpoint
	Z80StopCancelled
)

func (r Z80StopReason) String() string {
	switch r {
	case Z80StopHalt:
		return "halt"
	case Z80StopBreakpoint:
		return "breakpoint"
	case Z80StopCancelled:
		return "cancelled"
	default:
		return "none"
	}
}
