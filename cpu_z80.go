package main

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/rand"
)

type Z80Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	In(port uint16) byte
	Out(port uint16, value byte)
	Tick(cycles int)
}

// Z80BlockBus is implemented by buses that can copy a run of bytes in one
// call. Direction is +1 or -1, a count of 0 means 65536 bytes, and both
// addresses wrap modulo 65536. It returns the last byte moved.
type Z80BlockBus interface {
	Z80Bus
	BlockTransfer(dest, src uint16, dir int, count int) byte
}

// Run modes accepted by Run.
const (
	Z80RunContinuous       = 1
	Z80RunStep             = 0
	Z80RunStepNoInterrupts = -1
)

const (
	z80NMIVector  = 0x0066
	z80IM1Vector  = 0x0038
	z80CtxPollGap = 1024
)

type CPU_Z80 struct {
	A byte
	F byte
	B byte
	C byte
	D byte
	E byte
	H byte
	L byte

	// Shadow set, only ever swapped wholesale.
	AF2 uint16
	BC2 uint16
	DE2 uint16
	HL2 uint16

	IX uint16
	IY uint16
	SP uint16
	PC uint16

	I  byte
	R  byte
	IM byte

	// IFF1 is 0, 1 or 2. 2 means EI ran and interrupts become enabled
	// at the end of the following instruction.
	IFF1 byte
	IFF2 byte

	Halted bool

	// TCount is the running T-state counter. It only ever increases.
	TCount uint64

	irq     bool
	nmi     bool
	nmiSeen bool

	// Trap, when set, is consulted before each instruction in continuous
	// mode (except the first) and stops Run when it returns true.
	Trap func(c *CPU_Z80) bool

	bus    Z80Bus
	events z80Events
	rng    *rand.Rand
	logger *log.Logger

	baseOps    [256]func(*CPU_Z80)
	cbOps      [256]func(*CPU_Z80)
	edOps      [256]func(*CPU_Z80)
	indexOps   [256]func(*CPU_Z80)
	indexCBOps [256]func(*CPU_Z80)

	// idx points at IX or IY while an index-prefixed instruction runs.
	idx *uint16
	// indexAddr is the effective (IX+d) address of a DDCB/FDCB instruction.
	indexAddr uint16

	instrStart uint16
	instrLen   int
	instrBytes [4]byte
	fault      error

	InstructionCount uint64
}

func NewCPU_Z80(bus Z80Bus) *CPU_Z80 {
	cpu := &CPU_Z80{
		bus: bus,
		rng: rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	cpu.initBaseOps()
	cpu.initCBOps()
	cpu.initEDOps()
	cpu.initIndexOps()
	cpu.initIndexCBOps()
	cpu.Reset()
	return cpu
}

// SetLogger attaches the logger used for scheduler diagnostics.
func (c *CPU_Z80) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// SeedRefresh reseeds the generator behind reads of the R register.
func (c *CPU_Z80) SeedRefresh(seed uint64) {
	c.rng = rand.New(rand.NewSource(seed))
}

func (c *CPU_Z80) Reset() {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0, 0
	c.AF2, c.BC2, c.DE2, c.HL2 = 0, 0, 0, 0
	c.IX = 0
	c.IY = 0
	c.SP = 0xFFFF
	c.PC = 0
	c.I = 0
	c.R = 0
	c.IM = 0
	c.IFF1 = 0
	c.IFF2 = 0
	c.Halted = false
	c.TCount = 0
	c.irq = false
	c.nmi = false
	c.nmiSeen = false
	c.idx = &c.IX
	c.fault = nil
	c.InstructionCount = 0
	c.events.cancel()
}

func (c *CPU_Z80) Bus() Z80Bus {
	return c.bus
}

func (c *CPU_Z80) AF() uint16 {
	return uint16(c.A)<<8 | uint16(c.F)
}

func (c *CPU_Z80) BC() uint16 {
	return uint16(c.B)<<8 | uint16(c.C)
}

func (c *CPU_Z80) DE() uint16 {
	return uint16(c.D)<<8 | uint16(c.E)
}

func (c *CPU_Z80) HL() uint16 {
	return uint16(c.H)<<8 | uint16(c.L)
}

func (c *CPU_Z80) SetAF(value uint16) {
	c.A = byte(value >> 8)
	c.F = byte(value)
}

func (c *CPU_Z80) SetBC(value uint16) {
	c.B = byte(value >> 8)
	c.C = byte(value)
}

func (c *CPU_Z80) SetDE(value uint16) {
	c.D = byte(value >> 8)
	c.E = byte(value)
}

func (c *CPU_Z80) SetHL(value uint16) {
	c.H = byte(value >> 8)
	c.L = byte(value)
}

func (c *CPU_Z80) ExAF() {
	af := c.AF()
	c.SetAF(c.AF2)
	c.AF2 = af
}

func (c *CPU_Z80) Exx() {
	bc, de, hl := c.BC(), c.DE(), c.HL()
	c.SetBC(c.BC2)
	c.SetDE(c.DE2)
	c.SetHL(c.HL2)
	c.BC2, c.DE2, c.HL2 = bc, de, hl
}

// RefreshValue is what LD A,R observes: bit 7 as last written, the rest
// pseudo-random.
func (c *CPU_Z80) RefreshValue() byte {
	return c.R&0x80 | byte(c.rng.Uint32())&0x7F
}

// SetIRQLine drives the level-triggered maskable interrupt input.
func (c *CPU_Z80) SetIRQLine(assert bool) {
	c.irq = assert
}

// SetNMILine drives the edge-triggered NMI input. Once an NMI has been
// accepted, further assertions are ignored until the line is released.
func (c *CPU_Z80) SetNMILine(assert bool) {
	if !assert {
		c.nmi = false
		c.nmiSeen = false
		return
	}
	if !c.nmiSeen {
		c.nmi = true
	}
}

func (c *CPU_Z80) IRQLine() bool { return c.irq }
func (c *CPU_Z80) NMILine() bool { return c.nmi }

// Step executes one instruction and services interrupts at its boundary.
func (c *CPU_Z80) Step() (Z80StopReason, error) {
	return c.Run(context.Background(), Z80RunStep)
}

// Run executes instructions in the given mode. In continuous mode it returns
// on HALT, on a Trap hit, on a fault or when ctx is done.
func (c *CPU_Z80) Run(ctx context.Context, continuous int) (Z80StopReason, error) {
	for n := 0; ; n++ {
		if continuous > 0 && n > 0 {
			if c.Trap != nil && c.Trap(c) {
				return Z80StopBreakpoint, nil
			}
			if n%z80CtxPollGap == 0 && ctx.Err() != nil {
				return Z80StopCancelled, nil
			}
		}
		if err := c.execute(continuous); err != nil {
			return Z80StopNone, err
		}
		if c.Halted {
			return Z80StopHalt, nil
		}
		if continuous <= 0 {
			return Z80StopNone, nil
		}
	}
}

func (c *CPU_Z80) execute(continuous int) error {
	entryIFF := c.IFF1
	c.instrStart = c.PC
	c.instrLen = 0
	c.fault = nil

	opcode := c.fetchOpcode()
	c.baseOps[opcode](c)
	c.InstructionCount++
	if c.fault != nil {
		return c.fault
	}

	if entryIFF == 2 {
		if c.IFF1 == 2 {
			c.IFF1 = 1
		}
	} else if continuous >= 0 {
		if err := c.serviceInterrupts(); err != nil {
			return err
		}
	}

	c.events.fireDue(c)
	return nil
}

func (c *CPU_Z80) serviceInterrupts() error {
	if c.nmi && !c.nmiSeen {
		c.serviceNMI()
		return nil
	}
	if c.irq && c.IFF1 == 1 {
		return c.serviceIRQ()
	}
	return nil
}

func (c *CPU_Z80) leaveHalt() {
	if c.Halted {
		c.Halted = false
		c.PC++
	}
}

func (c *CPU_Z80) serviceNMI() {
	c.leaveHalt()
	c.pushWord(c.PC)
	c.IFF2 = c.IFF1
	c.IFF1 = 0
	c.PC = z80NMIVector
	c.nmi = false
	c.nmiSeen = true
	c.tick(11)
}

func (c *CPU_Z80) serviceIRQ() error {
	if c.IM != 1 {
		return fmt.Errorf("IRQ accepted in IM %d at $%04X: %w", c.IM, c.PC, ErrZ80InterruptMode)
	}
	c.leaveHalt()
	c.pushWord(c.PC)
	c.IFF1 = 0
	c.IFF2 = 0
	c.PC = z80IM1Vector
	c.tick(13)
	return nil
}

func (c *CPU_Z80) fetchOpcode() byte {
	return c.fetchByte()
}

func (c *CPU_Z80) fetchByte() byte {
	value := c.read(c.PC)
	c.PC++
	if c.instrLen < len(c.instrBytes) {
		c.instrBytes[c.instrLen] = value
	}
	c.instrLen++
	return value
}

func (c *CPU_Z80) fetchWord() uint16 {
	low := c.fetchByte()
	high := c.fetchByte()
	return uint16(high)<<8 | uint16(low)
}

// fetchDisp reads a signed displacement and returns base+d, wrapping.
func (c *CPU_Z80) fetchDisp(base uint16) uint16 {
	disp := int8(c.fetchByte())
	return base + uint16(int16(disp))
}

func (c *CPU_Z80) read(addr uint16) byte {
	return c.bus.Read(addr)
}

func (c *CPU_Z80) write(addr uint16, value byte) {
	c.bus.Write(addr, value)
}

func (c *CPU_Z80) readWord(addr uint16) uint16 {
	low := c.read(addr)
	high := c.read(addr + 1)
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU_Z80) writeWord(addr uint16, value uint16) {
	c.write(addr, byte(value))
	c.write(addr+1, byte(value>>8))
}

func (c *CPU_Z80) in(port uint16) byte {
	return c.bus.In(port)
}

func (c *CPU_Z80) out(port uint16, value byte) {
	c.bus.Out(port, value)
}

func (c *CPU_Z80) tick(cycles int) {
	c.TCount += uint64(cycles)
	c.bus.Tick(cycles)
}

func (c *CPU_Z80) pushWord(value uint16) {
	c.SP--
	c.write(c.SP, byte(value>>8))
	c.SP--
	c.write(c.SP, byte(value))
}

func (c *CPU_Z80) popWord() uint16 {
	low := c.read(c.SP)
	c.SP++
	high := c.read(c.SP)
	c.SP++
	return uint16(high)<<8 | uint16(low)
}

// LastInstructionLength is the number of bytes the most recent instruction
// consumed from the instruction stream.
func (c *CPU_Z80) LastInstructionLength() int {
	return c.instrLen
}

// LastInstructionAddr is where the most recent instruction started.
func (c *CPU_Z80) LastInstructionAddr() uint16 {
	return c.instrStart
}

func (c *CPU_Z80) opUndefined() {
	n := min(c.instrLen, len(c.instrBytes))
	bytes := make([]byte, n)
	copy(bytes, c.instrBytes[:n])
	dis := NewZ80Disassembler(c.bus.Read, nil)
	c.fault = &Z80UnsupportedError{
		Addr:        c.instrStart,
		Bytes:       bytes,
		Disassembly: dis.Decode(c.instrStart).Mnemonic,
	}
}

func (c *CPU_Z80) readReg8(code byte) byte {
	switch code {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read(c.HL())
	default:
		return c.A
	}
}

func (c *CPU_Z80) writeReg8(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		c.H = value
	case 5:
		c.L = value
	case 6:
		c.write(c.HL(), value)
	default:
		c.A = value
	}
}

// reg16 reads BC, DE, HL or SP by their two-bit encoding.
func (c *CPU_Z80) reg16(code byte) uint16 {
	switch code & 3 {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU_Z80) setReg16(code byte, value uint16) {
	switch code & 3 {
	case 0:
		c.SetBC(value)
	case 1:
		c.SetDE(value)
	case 2:
		c.SetHL(value)
	default:
		c.SP = value
	}
}

// cond evaluates NZ, Z, NC, C, PO, PE, P, M by their three-bit encoding.
func (c *CPU_Z80) cond(code byte) bool {
	switch code & 7 {
	case 0:
		return !c.IsZero()
	case 1:
		return c.IsZero()
	case 2:
		return !c.IsCarry()
	case 3:
		return c.IsCarry()
	case 4:
		return !c.IsOverflow()
	case 5:
		return c.IsOverflow()
	case 6:
		return !c.IsSign()
	default:
		return c.IsSign()
	}
}
