package main

import "github.com/retroenv/retrogolib/log"

// Z80EventFunc is a deferred callback run at an instruction boundary.
type Z80EventFunc func(c *CPU_Z80, arg int)

// z80Events is the single scheduler slot, keyed to an absolute TCount.
type z80Events struct {
	fn      Z80EventFunc
	arg     int
	due     uint64
	pending bool
}

// Bound on how many chained events ScheduleEvent drains before giving up on
// a callback that keeps rescheduling itself.
const z80MaxEventDrain = 256

func (e *z80Events) cancel() {
	*e = z80Events{}
}

func (e *z80Events) fireDue(c *CPU_Z80) {
	if e.pending && int64(c.TCount-e.due) >= 0 {
		c.DoEvent()
	}
}

// ScheduleEvent arranges for fn(arg) to run once tstates T-states have
// elapsed. Only one event can be pending: an existing one is fired first,
// together with anything it schedules. A delay of zero fires at the next
// instruction boundary, never from inside this call.
func (c *CPU_Z80) ScheduleEvent(fn Z80EventFunc, arg int, tstates int) {
	if fn == nil {
		if c.logger != nil {
			c.logger.Warn("Ignoring nil scheduler callback", log.Int("arg", arg))
		}
		return
	}
	for n := 0; c.events.pending; n++ {
		if n == z80MaxEventDrain {
			if c.logger != nil {
				c.logger.Warn("Scheduler drain did not settle, dropping pending event",
					log.Int("arg", c.events.arg))
			}
			c.events.cancel()
			break
		}
		c.DoEvent()
	}
	if tstates < 0 {
		tstates = 0
	}
	c.events = z80Events{
		fn:      fn,
		arg:     arg,
		due:     c.TCount + uint64(tstates),
		pending: true,
	}
}

// CancelEvent drops the pending event, if any.
func (c *CPU_Z80) CancelEvent() {
	c.events.cancel()
}

// DoEvent fires the pending event immediately. The slot is cleared before
// the callback runs so the callback may schedule a successor.
func (c *CPU_Z80) DoEvent() {
	if !c.events.pending {
		return
	}
	fn, arg := c.events.fn, c.events.arg
	c.events.cancel()
	fn(c, arg)
}

func (c *CPU_Z80) EventPending() bool {
	return c.events.pending
}

// NextEventDue returns the TCount at which the pending event fires.
func (c *CPU_Z80) NextEventDue() (uint64, bool) {
	return c.events.due, c.events.pending
}

