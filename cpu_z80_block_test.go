package main

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestZ80LDIRCopiesBlock(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xED, 0xB0}) // LDIR
	rig.load(0x1000, []byte{0x11, 0x22, 0x33, 0x44})
	rig.cpu.SetHL(0x1000)
	rig.cpu.SetDE(0x2000)
	rig.cpu.SetBC(3)

	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0000)
	assert.True(t, rig.cpu.IsOverflow())
	rig.steps(t, 2)

	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0002)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x1003)
	requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0x2003)
	requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0)
	assert.True(t, bytes.Equal([]byte{0x11, 0x22, 0x33, 0x00}, rig.bus.mem[0x2000:0x2004]))
	assert.False(t, rig.cpu.IsOverflow())
	assert.Equal(t, uint64(21+21+16), rig.cpu.TCount)
}

func TestZ80LDIRFastPathMatchesIteration(t *testing.T) {
	setup := func(rig *cpuZ80TestRig) {
		rig.load(0x1000, []byte{0xA5, 0x5A, 0x0F, 0xF0, 0x28})
		rig.cpu.SetHL(0x1000)
		rig.cpu.SetDE(0x3000)
		rig.cpu.SetBC(5)
		rig.cpu.A = 0x13
		rig.cpu.F = z80FlagS | z80FlagC
	}

	slow := newCPUZ80TestRig()
	slow.resetAndLoad(0x0000, []byte{0xED, 0xB0})
	setup(slow)
	slow.runUntil(t, 0x0002, 10)

	fast := newCPUZ80TestRig()
	bb := fast.resetAndLoadBlock(0x0000, []byte{0xED, 0xB0})
	setup(fast)
	fast.step(t)

	assert.Equal(t, 1, bb.transfers)
	requireZ80EqualU16(t, "PC", fast.cpu.PC, slow.cpu.PC)
	requireZ80EqualU16(t, "HL", fast.cpu.HL(), slow.cpu.HL())
	requireZ80EqualU16(t, "DE", fast.cpu.DE(), slow.cpu.DE())
	requireZ80EqualU16(t, "BC", fast.cpu.BC(), slow.cpu.BC())
	requireZ80EqualU8(t, "F", fast.cpu.F, slow.cpu.F)
	assert.Equal(t, slow.cpu.TCount, fast.cpu.TCount)
	assert.True(t, bytes.Equal(slow.bus.mem[0x3000:0x3005], fast.bus.mem[0x3000:0x3005]))
}

// fillPeriodic gives memory a 4K period so a 64K copy between addresses 4K
// apart rewrites every byte with its own value, program included.
func fillPeriodic(rig *cpuZ80TestRig, program []byte) {
	for i := range rig.bus.mem {
		off := i & 0x0FFF
		rig.bus.mem[i] = byte(off*7 + off>>8)
	}
	for page := 0; page < 0x10000; page += 0x1000 {
		rig.load(uint16(page), program)
	}
}

func TestZ80LDIRZeroCountCopies65536(t *testing.T) {
	program := []byte{0xED, 0xB0, 0x76}
	setup := func(rig *cpuZ80TestRig) {
		fillPeriodic(rig, program)
		rig.cpu.PC = 0
		rig.cpu.SetHL(0x1800)
		rig.cpu.SetDE(0x2800)
		rig.cpu.SetBC(0)
	}

	slow := newCPUZ80TestRig()
	slow.resetAndLoad(0x0000, nil)
	setup(slow)
	iterations := 0
	for slow.cpu.PC == 0 {
		slow.step(t)
		iterations++
	}
	assert.Equal(t, 0x10000, iterations)

	fast := newCPUZ80TestRig()
	fast.resetAndLoadBlock(0x0000, nil)
	setup(fast)
	fast.step(t)

	for _, rig := range []*cpuZ80TestRig{slow, fast} {
		requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0002)
		requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x1800)
		requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0x2800)
		requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0)
	}
	requireZ80EqualU8(t, "F", fast.cpu.F, slow.cpu.F)
	assert.Equal(t, uint64(21*0x10000-5), slow.cpu.TCount)
	assert.Equal(t, slow.cpu.TCount, fast.cpu.TCount)
	assert.True(t, slow.bus.mem == fast.bus.mem)
}

func TestZ80LDDROverlap(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xED, 0xB8}) // LDDR
	rig.load(0x5000, []byte{1, 2, 3, 4})
	rig.cpu.SetHL(0x5003)
	rig.cpu.SetDE(0x5005)
	rig.cpu.SetBC(4)

	rig.runUntil(t, 0x0002, 10)

	assert.True(t, bytes.Equal([]byte{1, 2, 1, 2, 3, 4}, rig.bus.mem[0x5000:0x5006]))
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x4FFF)
	requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0x5001)
}

func TestZ80LDIFlags(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xED, 0xA0, 0xED, 0xA0}) // LDI; LDI
	rig.load(0x1000, []byte{0x08, 0x02})
	rig.cpu.SetHL(0x1000)
	rig.cpu.SetDE(0x2000)
	rig.cpu.SetBC(2)
	rig.cpu.A = 0x00
	rig.cpu.F = z80FlagZ | z80FlagH | z80FlagN | z80FlagC

	rig.step(t)
	// A+value = $08: X from bit 3, Y from bit 1.
	requireZ80Flags(t, rig.cpu, 0xFF, z80FlagZ|z80FlagX|z80FlagPV|z80FlagC)

	rig.step(t)
	requireZ80Flags(t, rig.cpu, 0xFF, z80FlagZ|z80FlagY|z80FlagC)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0004)
}

func TestZ80CPIRFindsByte(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xED, 0xB1}) // CPIR
	rig.load(0x3000, []byte{0x10, 0x20, 0x30, 0x42, 0x50})
	rig.cpu.A = 0x42
	rig.cpu.SetHL(0x3000)
	rig.cpu.SetBC(0x10)
	rig.cpu.F = z80FlagC

	rig.runUntil(t, 0x0002, 20)

	assert.True(t, rig.cpu.IsZero())
	assert.True(t, rig.cpu.IsOverflow())
	assert.True(t, rig.cpu.IsCarry())
	assert.True(t, rig.cpu.IsSubtract())
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x3004)
	requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0x000C)
	assert.Equal(t, uint64(21*3+16), rig.cpu.TCount)
}

func TestZ80CPDRExhaustsCount(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xED, 0xB9}) // CPDR
	rig.cpu.A = 0xEE
	rig.cpu.SetHL(0x3003)
	rig.cpu.SetBC(3)

	rig.runUntil(t, 0x0002, 10)

	assert.False(t, rig.cpu.IsZero())
	assert.False(t, rig.cpu.IsOverflow())
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x3000)
	requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0)
}
