// debug_cpu_z80.go - Z80 debug adapter for the machine monitor

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const debugMaxTraps = 64

var (
	ErrTrapTableFull = errors.New("trap table full")
	ErrTrapExists    = errors.New("trap already set")
)

// z80Peeker is implemented by buses that can be read without side effects.
type z80Peeker interface {
	Peek(addr uint16) byte
}

type DebugZ80 struct {
	machine *Machine
	cpu     *CPU_Z80

	mu         sync.Mutex
	traps      []DebugTrap
	breakAddrs set.Set[uint16]
	traceAddrs set.Set[uint16]
	watching   bool
	lastHit    *DebugTrap

	trace  io.Writer
	logger *log.Logger
}

// NewDebugZ80 attaches a debugger to the machine. Trace output goes to trace.
func NewDebugZ80(machine *Machine, trace io.Writer, logger *log.Logger) *DebugZ80 {
	d := &DebugZ80{
		machine: machine,
		cpu:     machine.CPU(),
		traps:   make([]DebugTrap, 0, debugMaxTraps),
		trace:   trace,
		logger:  logger,
	}
	d.rebuild()
	return d
}

func (d *DebugZ80) CPUName() string { return "Z80" }

func (d *DebugZ80) GetRegisters() []RegisterInfo {
	c := d.cpu
	return []RegisterInfo{
		{Name: "A", BitWidth: 8, Value: uint16(c.A), Group: "general"},
		{Name: "F", BitWidth: 8, Value: uint16(c.F), Group: "general"},
		{Name: "BC", BitWidth: 16, Value: c.BC(), Group: "pair"},
		{Name: "DE", BitWidth: 16, Value: c.DE(), Group: "pair"},
		{Name: "HL", BitWidth: 16, Value: c.HL(), Group: "pair"},
		{Name: "IX", BitWidth: 16, Value: c.IX, Group: "index"},
		{Name: "IY", BitWidth: 16, Value: c.IY, Group: "index"},
		{Name: "SP", BitWidth: 16, Value: c.SP, Group: "general"},
		{Name: "PC", BitWidth: 16, Value: c.PC, Group: "general"},
		{Name: "AF'", BitWidth: 16, Value: c.AF2, Group: "shadow"},
		{Name: "BC'", BitWidth: 16, Value: c.BC2, Group: "shadow"},
		{Name: "DE'", BitWidth: 16, Value: c.DE2, Group: "shadow"},
		{Name: "HL'", BitWidth: 16, Value: c.HL2, Group: "shadow"},
		{Name: "I", BitWidth: 8, Value: uint16(c.I), Group: "status"},
		// LD A,R sees pseudo-random bits 0-6, so only bit 7 is shown.
		{Name: "R7", BitWidth: 1, Value: uint16(c.R >> 7), Group: "status"},
		{Name: "IM", BitWidth: 2, Value: uint16(c.IM), Group: "status"},
		{Name: "IFF1", BitWidth: 2, Value: uint16(c.IFF1), Group: "status"},
		{Name: "IFF2", BitWidth: 1, Value: uint16(c.IFF2), Group: "status"},
		{Name: "HALT", BitWidth: 1, Value: boolBit(c.Halted), Group: "status"},
	}
}

func boolBit(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func (d *DebugZ80) GetRegister(name string) (uint16, bool) {
	c := d.cpu
	switch strings.ToUpper(name) {
	case "A":
		return uint16(c.A), true
	case "F":
		return uint16(c.F), true
	case "B":
		return uint16(c.B), true
	case "C":
		return uint16(c.C), true
	case "D":
		return uint16(c.D), true
	case "E":
		return uint16(c.E), true
	case "H":
		return uint16(c.H), true
	case "L":
		return uint16(c.L), true
	case "AF":
		return c.AF(), true
	case "BC":
		return c.BC(), true
	case "DE":
		return c.DE(), true
	case "HL":
		return c.HL(), true
	case "AF'":
		return c.AF2, true
	case "BC'":
		return c.BC2, true
	case "DE'":
		return c.DE2, true
	case "HL'":
		return c.HL2, true
	case "IX":
		return c.IX, true
	case "IY":
		return c.IY, true
	case "SP":
		return c.SP, true
	case "PC":
		return c.PC, true
	case "I":
		return uint16(c.I), true
	case "R":
		return uint16(c.R), true
	case "R7":
		return uint16(c.R >> 7), true
	case "HALT":
		return boolBit(c.Halted), true
	case "IM":
		return uint16(c.IM), true
	case "IFF1":
		return uint16(c.IFF1), true
	case "IFF2":
		return uint16(c.IFF2), true
	}
	return 0, false
}

func (d *DebugZ80) SetRegister(name string, value uint16) bool {
	c := d.cpu
	switch strings.ToUpper(name) {
	case "A":
		c.A = byte(value)
	case "F":
		c.F = byte(value)
	case "B":
		c.B = byte(value)
	case "C":
		c.C = byte(value)
	case "D":
		c.D = byte(value)
	case "E":
		c.E = byte(value)
	case "H":
		c.H = byte(value)
	case "L":
		c.L = byte(value)
	case "AF":
		c.SetAF(value)
	case "BC":
		c.SetBC(value)
	case "DE":
		c.SetDE(value)
	case "HL":
		c.SetHL(value)
	case "AF'":
		c.AF2 = value
	case "BC'":
		c.BC2 = value
	case "DE'":
		c.DE2 = value
	case "HL'":
		c.HL2 = value
	case "IX":
		c.IX = value
	case "IY":
		c.IY = value
	case "SP":
		c.SP = value
	case "PC":
		c.PC = value
		c.Halted = false
	case "I":
		c.I = byte(value)
	case "R":
		c.R = byte(value)
	case "IM":
		if value > 2 {
			return false
		}
		c.IM = byte(value)
	case "IFF1":
		if value > 2 {
			return false
		}
		c.IFF1 = byte(value)
	case "IFF2":
		c.IFF2 = byte(value & 1)
	default:
		return false
	}
	return true
}

func (d *DebugZ80) GetPC() uint16 { return d.cpu.PC }

func (d *DebugZ80) SetPC(addr uint16) {
	d.cpu.PC = addr
	d.cpu.Halted = false
}

// Step runs one instruction and reports a breakpoint if the new PC is
// trapped or a watched byte changed.
func (d *DebugZ80) Step(interrupts bool) (Z80StopReason, error) {
	mode := Z80RunStep
	if !interrupts {
		mode = Z80RunStepNoInterrupts
	}
	reason, err := d.cpu.Run(context.Background(), mode)
	if err != nil {
		return reason, err
	}
	if reason == Z80StopNone && d.check(d.cpu) {
		return Z80StopBreakpoint, nil
	}
	return reason, nil
}

// Resume runs the machine until a trap stops it or ctx is done.
func (d *DebugZ80) Resume(ctx context.Context) (Z80StopReason, error) {
	reason, err := d.machine.Run(ctx)
	if reason == Z80StopBreakpoint {
		if hit := d.LastHit(); hit != nil && d.logger != nil {
			d.logger.Debug("Trap hit", log.String("kind", hit.Kind.String()), log.Hex("address", hit.Addr))
		}
	}
	return reason, err
}

func (d *DebugZ80) Disassemble(addr uint16, count int) []DisassembledLine {
	lines := disassembleZ80(d.peek, addr, count)
	for i := range lines {
		if lines[i].Address == d.cpu.PC {
			lines[i].IsPC = true
		}
	}
	return lines
}

func (d *DebugZ80) AddTrap(addr uint16, kind TrapKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.traps {
		if t.Addr == addr && t.Kind == kind {
			return fmt.Errorf("%s at $%04X: %w", kind, addr, ErrTrapExists)
		}
	}
	if len(d.traps) == debugMaxTraps {
		return fmt.Errorf("%d entries: %w", debugMaxTraps, ErrTrapTableFull)
	}
	d.traps = append(d.traps, DebugTrap{Addr: addr, Kind: kind, Prev: d.peek(addr)})
	d.rebuild()
	return nil
}

// ClearTrap removes every trap at addr.
func (d *DebugZ80) ClearTrap(addr uint16) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.traps[:0]
	for _, t := range d.traps {
		if t.Addr != addr {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(d.traps)
	d.traps = kept
	d.rebuild()
	return removed
}

func (d *DebugZ80) ClearAllTraps() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.traps = d.traps[:0]
	d.rebuild()
}

func (d *DebugZ80) ListTraps() []DebugTrap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DebugTrap(nil), d.traps...)
}

// LastHit returns the trap that stopped the last run, if any.
func (d *DebugZ80) LastHit() *DebugTrap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastHit
}

func (d *DebugZ80) ReadMemory(addr uint16, size int) []byte {
	result := make([]byte, size)
	for i := range size {
		result[i] = d.peek(addr + uint16(i))
	}
	return result
}

func (d *DebugZ80) WriteMemory(addr uint16, data []byte) {
	bus := d.cpu.Bus()
	for i, b := range data {
		bus.Write(addr+uint16(i), b)
	}
}

func (d *DebugZ80) peek(addr uint16) byte {
	if p, ok := d.cpu.Bus().(z80Peeker); ok {
		return p.Peek(addr)
	}
	return d.cpu.Bus().Read(addr)
}

// rebuild refreshes the lookup sets and installs or removes the CPU hook.
// Callers hold d.mu.
func (d *DebugZ80) rebuild() {
	d.breakAddrs = set.New[uint16]()
	d.traceAddrs = set.New[uint16]()
	d.watching = false
	for _, t := range d.traps {
		switch t.Kind {
		case TrapBreak:
			d.breakAddrs.Add(t.Addr)
		case TrapTrace:
			d.traceAddrs.Add(t.Addr)
		case TrapWatch:
			d.watching = true
		}
	}
	if len(d.traps) == 0 {
		d.cpu.Trap = nil
		return
	}
	d.cpu.Trap = d.check
}

// check runs before each instruction of a continuous run.
func (d *DebugZ80) check(c *CPU_Z80) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastHit = nil

	if d.watching {
		for i := range d.traps {
			t := &d.traps[i]
			if t.Kind != TrapWatch {
				continue
			}
			if v := d.peek(t.Addr); v != t.Prev {
				t.Prev = v
				hit := *t
				d.lastHit = &hit
				return true
			}
		}
	}
	if d.traceAddrs.Contains(c.PC) && d.trace != nil {
		line := disassembleZ80(d.peek, c.PC, 1)[0]
		fmt.Fprintf(d.trace, "%04X  %-11s  %-18s AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X\n",
			line.Address, line.HexBytes, line.Mnemonic, c.AF(), c.BC(), c.DE(), c.HL(), c.SP)
	}
	if d.breakAddrs.Contains(c.PC) {
		d.lastHit = &DebugTrap{Addr: c.PC, Kind: TrapBreak}
		return true
	}
	return false
}
