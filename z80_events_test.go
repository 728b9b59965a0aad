package main

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func nopProgram(n int) []byte {
	return make([]byte, n)
}

func TestZ80EventFiresAtBoundary(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, nopProgram(16))
	var firedAt []uint64
	rig.cpu.ScheduleEvent(func(c *CPU_Z80, arg int) {
		assert.Equal(t, 7, arg)
		firedAt = append(firedAt, c.TCount)
	}, 7, 10)

	due, ok := rig.cpu.NextEventDue()
	assert.True(t, ok)
	assert.Equal(t, uint64(10), due)

	rig.steps(t, 2)
	assert.Equal(t, 0, len(firedAt))
	rig.step(t)
	assert.Equal(t, 1, len(firedAt))
	assert.Equal(t, uint64(12), firedAt[0])
	assert.False(t, rig.cpu.EventPending())

	rig.steps(t, 5)
	assert.Equal(t, 1, len(firedAt))
}

func TestZ80EventZeroDelayWaitsForBoundary(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, nopProgram(4))
	fired := 0
	rig.cpu.ScheduleEvent(func(*CPU_Z80, int) { fired++ }, 0, 0)
	assert.Equal(t, 0, fired)

	rig.step(t)
	assert.Equal(t, 1, fired)
}

func TestZ80EventNegativeDelayClamps(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.cpu.TCount = 100
	rig.cpu.ScheduleEvent(func(*CPU_Z80, int) {}, 0, -50)
	due, ok := rig.cpu.NextEventDue()
	assert.True(t, ok)
	assert.Equal(t, uint64(100), due)
}

func TestZ80EventPeriodicReschedule(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, nopProgram(0x100))
	count := 0
	var tick Z80EventFunc
	tick = func(c *CPU_Z80, period int) {
		count++
		c.ScheduleEvent(tick, period, period)
	}
	rig.cpu.ScheduleEvent(tick, 20, 20)

	rig.steps(t, 50) // 200 T-states

	assert.Equal(t, 10, count)
	assert.True(t, rig.cpu.EventPending())
}

func TestZ80ScheduleDrainsPendingEvent(t *testing.T) {
	rig := newCPUZ80TestRig()
	var order []int
	record := func(_ *CPU_Z80, arg int) { order = append(order, arg) }

	rig.cpu.ScheduleEvent(record, 1, 1000)
	rig.cpu.ScheduleEvent(record, 2, 1000)

	assert.Equal(t, 1, len(order))
	assert.Equal(t, 1, order[0])
	assert.True(t, rig.cpu.EventPending())

	rig.cpu.DoEvent()
	assert.Equal(t, 2, order[1])
	assert.False(t, rig.cpu.EventPending())
}

func TestZ80ScheduleDrainChainsSuccessors(t *testing.T) {
	rig := newCPUZ80TestRig()
	var order []int
	var chain Z80EventFunc
	chain = func(c *CPU_Z80, arg int) {
		order = append(order, arg)
		if arg < 3 {
			c.ScheduleEvent(chain, arg+1, 500)
		}
	}
	rig.cpu.ScheduleEvent(chain, 1, 500)
	rig.cpu.ScheduleEvent(func(_ *CPU_Z80, arg int) { order = append(order, arg) }, 99, 500)

	assert.Equal(t, 3, len(order))
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, want, order[i])
	}
	_, ok := rig.cpu.NextEventDue()
	assert.True(t, ok)
}

func TestZ80ScheduleDrainIsBounded(t *testing.T) {
	rig := newCPUZ80TestRig()
	calls := 0
	var forever Z80EventFunc
	forever = func(c *CPU_Z80, arg int) {
		calls++
		c.ScheduleEvent(forever, arg, 0)
	}
	rig.cpu.ScheduleEvent(forever, 0, 0)

	fired := false
	rig.cpu.ScheduleEvent(func(*CPU_Z80, int) { fired = true }, 0, 5)

	assert.Equal(t, z80MaxEventDrain, calls)
	assert.True(t, rig.cpu.EventPending())
	rig.cpu.DoEvent()
	assert.True(t, fired)
}

func TestZ80CancelEvent(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, nopProgram(8))
	fired := false
	rig.cpu.ScheduleEvent(func(*CPU_Z80, int) { fired = true }, 0, 0)
	rig.cpu.CancelEvent()

	rig.steps(t, 4)

	assert.False(t, fired)
	assert.False(t, rig.cpu.EventPending())
	rig.cpu.DoEvent()
	assert.False(t, fired)
}

func TestZ80NilEventIgnored(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.cpu.ScheduleEvent(nil, 0, 10)
	assert.False(t, rig.cpu.EventPending())
}

func TestZ80EventFiresAfterInterruptService(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, nopProgram(4))
	rig.cpu.SP = 0x8000
	rig.cpu.IM = 1
	rig.cpu.IFF1, rig.cpu.IFF2 = 1, 1
	rig.cpu.SetIRQLine(true)
	var pc uint16
	rig.cpu.ScheduleEvent(func(c *CPU_Z80, _ int) {
		pc = c.PC
		c.SetIRQLine(false)
	}, 0, 0)

	rig.step(t)

	requireZ80EqualU16(t, "PC seen by event", pc, z80IM1Vector)
	assert.False(t, rig.cpu.IRQLine())
}
