package main

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestZ80INIRZeroCountRuns256(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xED, 0xB2}) // INIR
	for b := range 256 {
		rig.bus.io[b<<8|0x10] = byte(b)
	}
	rig.cpu.B = 0
	rig.cpu.C = 0x10
	rig.cpu.SetHL(0x4000)

	iterations := 0
	for rig.cpu.PC == 0 {
		rig.step(t)
		iterations++
	}

	assert.Equal(t, 256, iterations)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x4100)
	assert.True(t, rig.cpu.IsZero())
	assert.True(t, rig.cpu.IsSubtract())
	// The port high byte is B before the decrement.
	requireZ80EqualU8(t, "first", rig.bus.mem[0x4000], 0x00)
	requireZ80EqualU8(t, "second", rig.bus.mem[0x4001], 0xFF)
	requireZ80EqualU8(t, "last", rig.bus.mem[0x40FF], 0x01)
	assert.Equal(t, uint64(21*256-5), rig.cpu.TCount)
}

func TestZ80OTIRZeroCountRuns256(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xED, 0xB3}) // OTIR
	for i := range 256 {
		rig.bus.mem[0x4000+i] = byte(i)
	}
	rig.cpu.B = 0
	rig.cpu.C = 0x20
	rig.cpu.SetHL(0x4000)

	rig.runUntil(t, 0x0002, 300)

	assert.Equal(t, 256, rig.bus.outs)
	// The port high byte is B after the decrement.
	requireZ80EqualU16(t, "last port", rig.bus.lastOutPort, 0x0020)
	requireZ80EqualU8(t, "port FF20", rig.bus.io[0xFF20], 0x00)
	requireZ80EqualU8(t, "port 0020", rig.bus.io[0x0020], 0xFF)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x4100)
	assert.True(t, rig.cpu.IsZero())
}

func TestZ80INDAndOUTD(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0xED, 0xAA, // IND
		0xED, 0xAB, // OUTD
	})
	rig.bus.io[0x02FE] = 0x77
	rig.cpu.SetBC(0x02FE)
	rig.cpu.SetHL(0x5001)

	rig.step(t)
	requireZ80EqualU8(t, "(HL)", rig.bus.mem[0x5001], 0x77)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0x01)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x5000)
	assert.False(t, rig.cpu.IsZero())

	rig.bus.mem[0x5000] = 0x99
	rig.step(t)
	requireZ80EqualU8(t, "port", rig.bus.io[0x00FE], 0x99)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0x00)
	assert.True(t, rig.cpu.IsZero())
}

func TestZ80INOUTPorts(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x3E, 0x12, // LD A,$12
		0xD3, 0xFF, // OUT ($FF),A
		0xDB, 0x34, // IN A,($34)
		0xED, 0x41, // OUT (C),B
	})
	rig.bus.io[0x1234] = 0x56
	rig.cpu.SetBC(0xAB3F)

	rig.steps(t, 2)
	requireZ80EqualU8(t, "port 12FF", rig.bus.io[0x12FF], 0x12)

	rig.step(t)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x56)

	rig.step(t)
	requireZ80EqualU8(t, "port AB3F", rig.bus.io[0xAB3F], 0xAB)
	assert.Equal(t, uint64(7+11+11+12), rig.cpu.TCount)
}
