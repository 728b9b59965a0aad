// debug_interface.go - DebuggableCPU interface and supporting types for the monitor

package main

import "context"

// RegisterInfo describes a single CPU register for display in the monitor.
type RegisterInfo struct {
	Name     string // "PC", "HL", "AF'"
	BitWidth int    // 1, 2, 8 or 16
	Value    uint16
	Group    string // "general", "pair", "index", "status", "shadow"
}

// DisassembledLine represents one disassembled instruction.
type DisassembledLine struct {
	Address  uint16
	HexBytes string
	Mnemonic string
	Size     int
	IsPC     bool // true if this is the current PC
}

type TrapKind int

const (
	TrapBreak TrapKind = iota // stop before executing the address
	TrapTrace                 // print the instruction and keep running
	TrapWatch                 // stop after the byte at the address changes
)

func (k TrapKind) String() string {
	switch k {
	case TrapBreak:
		return "break"
	case TrapTrace:
		return "trace"
	case TrapWatch:
		return "watch"
	default:
		return "unknown"
	}
}

// DebugTrap is one slot of the trap table. Prev holds the last seen byte for
// watchpoints.
type DebugTrap struct {
	Addr uint16
	Kind TrapKind
	Prev byte
}

// DebuggableCPU is what the monitor and the scripting host drive.
type DebuggableCPU interface {
	CPUName() string

	GetRegisters() []RegisterInfo
	GetRegister(name string) (uint16, bool)
	SetRegister(name string, value uint16) bool
	GetPC() uint16
	SetPC(addr uint16)

	// Step executes one instruction, servicing interrupts when asked to.
	Step(interrupts bool) (Z80StopReason, error)
	// Resume runs until a trap stops execution, a fault or ctx is done.
	Resume(ctx context.Context) (Z80StopReason, error)

	Disassemble(addr uint16, count int) []DisassembledLine

	AddTrap(addr uint16, kind TrapKind) error
	ClearTrap(addr uint16) bool
	ClearAllTraps()
	ListTraps() []DebugTrap

	ReadMemory(addr uint16, size int) []byte
	WriteMemory(addr uint16, data []byte)
}
