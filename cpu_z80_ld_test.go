package main

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestZ80LDRegRegAllPairs(t *testing.T) {
	for dest := byte(0); dest < 8; dest++ {
		for src := byte(0); src < 8; src++ {
			if dest == 6 && src == 6 {
				continue
			}
			rig := newCPUZ80TestRig()
			rig.resetAndLoad(0x0000, []byte{0x40 | dest<<3 | src})
			rig.cpu.SetBC(0x0102)
			rig.cpu.SetDE(0x0304)
			rig.cpu.SetHL(0x6000)
			rig.cpu.A = 0x07
			rig.bus.mem[0x6000] = 0x66
			want := rig.cpu.readReg8(src)

			rig.step(t)

			requireZ80EqualU8(t, "dest", rig.cpu.readReg8(dest), want)
		}
	}
}

func TestZ80LDIndirectPairs(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x02, // LD (BC),A
		0x1A, // LD A,(DE)
		0x12, // LD (DE),A
		0x0A, // LD A,(BC)
	})
	rig.cpu.SetBC(0x4000)
	rig.cpu.SetDE(0x4100)
	rig.cpu.A = 0x11
	rig.bus.mem[0x4100] = 0x22

	rig.step(t)
	requireZ80EqualU8(t, "(BC)", rig.bus.mem[0x4000], 0x11)
	rig.step(t)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x22)
	rig.steps(t, 2)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x11)
	assert.Equal(t, uint64(28), rig.cpu.TCount)
}

func TestZ80LDDirectAddresses(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x22, 0x00, 0x50, // LD ($5000),HL
		0x2A, 0x10, 0x50, // LD HL,($5010)
		0x32, 0x20, 0x50, // LD ($5020),A
		0x3A, 0x30, 0x50, // LD A,($5030)
	})
	rig.cpu.SetHL(0xA1B2)
	rig.cpu.A = 0x5C
	rig.load(0x5010, []byte{0x34, 0x12})
	rig.bus.mem[0x5030] = 0x99

	rig.steps(t, 4)

	requireZ80EqualU8(t, "lo", rig.bus.mem[0x5000], 0xB2)
	requireZ80EqualU8(t, "hi", rig.bus.mem[0x5001], 0xA1)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x1234)
	requireZ80EqualU8(t, "($5020)", rig.bus.mem[0x5020], 0x5C)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x99)
	assert.Equal(t, uint64(16+16+13+13), rig.cpu.TCount)
}

func TestZ80LD16AndIncDec(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x01, 0xFF, 0xFF, // LD BC,$FFFF
		0x03,             // INC BC
		0x11, 0x00, 0x00, // LD DE,0
		0x1B,             // DEC DE
		0x31, 0x34, 0x12, // LD SP,$1234
		0x33,             // INC SP
	})
	rig.cpu.F = 0xFF

	rig.steps(t, 6)

	requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0x0000)
	requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0xFFFF)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x1235)
	// 16-bit INC/DEC leave the flags alone.
	requireZ80EqualU8(t, "F", rig.cpu.F, 0xFF)
}

func TestZ80Exchanges(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0xEB, // EX DE,HL
		0x08, // EX AF,AF'
		0xD9, // EXX
		0xE3, // EX (SP),HL
	})
	rig.cpu.SetDE(0x1111)
	rig.cpu.SetHL(0x2222)
	rig.cpu.SetAF(0x3344)
	rig.cpu.AF2 = 0x5566
	rig.cpu.HL2 = 0x7788
	rig.cpu.SP = 0x9000
	rig.load(0x9000, []byte{0xCD, 0xAB})

	rig.step(t)
	requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0x2222)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x1111)

	rig.step(t)
	requireZ80EqualU16(t, "AF", rig.cpu.AF(), 0x5566)

	rig.step(t)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x7788)
	requireZ80EqualU16(t, "HL'", rig.cpu.HL2, 0x1111)

	rig.step(t)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0xABCD)
	requireZ80EqualU8(t, "lo", rig.bus.mem[0x9000], 0x88)
	requireZ80EqualU8(t, "hi", rig.bus.mem[0x9001], 0x77)
	assert.Equal(t, uint64(4+4+4+19), rig.cpu.TCount)
}

func TestZ80WordAccessWraps(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0x22, 0xFF, 0xFF}) // LD ($FFFF),HL
	rig.cpu.SetHL(0xBEEF)

	rig.step(t)

	requireZ80EqualU8(t, "$FFFF", rig.bus.mem[0xFFFF], 0xEF)
	requireZ80EqualU8(t, "$0000", rig.bus.mem[0x0000], 0xBE)
}
