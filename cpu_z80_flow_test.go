package main

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestZ80JumpAbsoluteAndIndirect(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xC3, 0x00, 0x40}) // JP $4000
	rig.load(0x4000, []byte{0xE9})                     // JP (HL)
	rig.cpu.SetHL(0x5000)

	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x4000)
	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x5000)
	assert.Equal(t, uint64(14), rig.cpu.TCount)
}

func TestZ80ConditionalJumps(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		flags  byte
		taken  bool
	}{
		{"JP NZ taken", 0xC2, 0, true},
		{"JP Z not taken", 0xCA, 0, false},
		{"JP C taken", 0xDA, z80FlagC, true},
		{"JP PO not taken", 0xE2, z80FlagPV, false},
		{"JP PE taken", 0xEA, z80FlagPV, true},
		{"JP P taken", 0xF2, 0, true},
		{"JP M taken", 0xFA, z80FlagS, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newCPUZ80TestRig()
			rig.resetAndLoad(0x0100, []byte{tt.opcode, 0x34, 0x12})
			rig.cpu.F = tt.flags
			rig.step(t)
			want := uint16(0x0103)
			if tt.taken {
				want = 0x1234
			}
			requireZ80EqualU16(t, "PC", rig.cpu.PC, want)
			assert.Equal(t, uint64(10), rig.cpu.TCount)
		})
	}
}

func TestZ80RelativeJumps(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x1000, []byte{
		0x18, 0x02, // JR +2
		0x00, 0x00,
		0x20, 0xFA, // JR NZ,-6
	})

	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x1004)
	rig.cpu.F = z80FlagZ
	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x1006)
	assert.Equal(t, uint64(12+7), rig.cpu.TCount)

	rig.cpu.PC = 0x1004
	rig.cpu.F = 0
	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x1000)
}

func TestZ80RelativeJumpWrapsAddressSpace(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0xFFFE, []byte{0x18, 0x05}) // JR +5

	rig.step(t)

	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0005)
}

func TestZ80DJNZ(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x06, 0x03, // LD B,3
		0x3C,       // INC A
		0x10, 0xFD, // DJNZ -3
		0x76,       // HALT
	})

	rig.runUntil(t, 0x0005, 20)

	requireZ80EqualU8(t, "A", rig.cpu.A, 3)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0)
	assert.Equal(t, uint64(7+3*4+2*13+8), rig.cpu.TCount)
}

func TestZ80CallAndReturn(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x31, 0x00, 0x80, // LD SP,$8000
		0xCD, 0x00, 0x20, // CALL $2000
		0x76,             // HALT
	})
	rig.load(0x2000, []byte{
		0x3C, // INC A
		0xC8, // RET Z
		0xC9, // RET
	})

	rig.steps(t, 2)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x2000)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x7FFE)
	requireZ80EqualU8(t, "ret lo", rig.bus.mem[0x7FFE], 0x06)

	rig.steps(t, 3)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0006)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x8000)
	assert.Equal(t, uint64(10+17+4+5+10), rig.cpu.TCount)
}

func TestZ80ConditionalCall(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0xDC, 0x00, 0x30, // CALL C,$3000
		0xD4, 0x00, 0x30, // CALL NC,$3000
	})
	rig.cpu.SP = 0x9000

	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0003)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x9000)

	rig.step(t)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x3000)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x8FFE)
	assert.Equal(t, uint64(10+17), rig.cpu.TCount)
}

func TestZ80RST(t *testing.T) {
	for n := range 8 {
		rig := newCPUZ80TestRig()
		rig.resetAndLoad(0x1000, []byte{0xC7 | byte(n)<<3})
		rig.cpu.SP = 0x9000

		rig.step(t)

		requireZ80EqualU16(t, "PC", rig.cpu.PC, uint16(n*8))
		requireZ80EqualU8(t, "ret lo", rig.bus.mem[0x8FFE], 0x01)
		requireZ80EqualU8(t, "ret hi", rig.bus.mem[0x8FFF], 0x10)
		assert.Equal(t, uint64(11), rig.cpu.TCount)
	}
}

func TestZ80PushPopAF(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0xF5, // PUSH AF
		0xC1, // POP BC
		0xD5, // PUSH DE
		0xF1, // POP AF
	})
	rig.cpu.SP = 0x9000
	rig.cpu.SetAF(0x12D7)
	rig.cpu.SetDE(0xABCD)

	rig.steps(t, 2)
	requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0x12D7)

	rig.steps(t, 2)
	requireZ80EqualU16(t, "AF", rig.cpu.AF(), 0xABCD)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x9000)
	assert.Equal(t, uint64(11+10+11+10), rig.cpu.TCount)
}

func TestZ80StackWrapsAtZero(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x1000, []byte{0xE5, 0xD1}) // PUSH HL; POP DE
	rig.cpu.SP = 0x0001
	rig.cpu.SetHL(0x5566)

	rig.step(t)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0xFFFF)
	requireZ80EqualU8(t, "hi", rig.bus.mem[0x0000], 0x55)
	requireZ80EqualU8(t, "lo", rig.bus.mem[0xFFFF], 0x66)

	rig.step(t)
	requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0x5566)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x0001)
}
