// trs80_machine.go - Model I port space and real-time pacing

package main

import (
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	trs80CassettePort = 0xFF
	// Cassette input bit reads low; the other bits float high.
	trs80CassetteIn = 0x7F

	trs80DefaultClockHz = 1774080
	trs80HeartbeatHz    = 40

	trs80MotorBit = 0x04
	trs80WideBit  = 0x08
)

// SoundSink receives the 2-bit cassette output level with the T-state at
// which it changed.
type SoundSink interface {
	Level(tcount uint64, level byte)
}

// TRS80Ports decodes the Z80 port space. Only the low address byte is
// decoded, like the real machine.
type TRS80Ports struct {
	video *TRS80Video
	sound SoundSink
	now   func() uint64

	level byte
	motor bool

	logger *log.Logger
}

func NewTRS80Ports(video *TRS80Video, sound SoundSink, logger *log.Logger) *TRS80Ports {
	return &TRS80Ports{
		video:  video,
		sound:  sound,
		now:    func() uint64 { return 0 },
		logger: logger,
	}
}

func (p *TRS80Ports) In(port uint16) byte {
	if byte(port) == trs80CassettePort {
		return trs80CassetteIn
	}
	return trs80Unmapped
}

func (p *TRS80Ports) Out(port uint16, value byte) {
	if byte(port) != trs80CassettePort {
		if p.logger != nil {
			p.logger.Debug("Write to unmapped port", log.Hex("port", port), log.Hex("value", value))
		}
		return
	}
	level := value & 0x03
	if level != p.level {
		p.level = level
		if p.sound != nil {
			p.sound.Level(p.now(), level)
		}
	}
	if motor := value&trs80MotorBit != 0; motor != p.motor {
		p.motor = motor
		if p.logger != nil {
			p.logger.Debug("Cassette motor", log.String("state", onOff(motor)))
		}
	}
	p.video.SetWide(value&trs80WideBit != 0)
}

func (p *TRS80Ports) Motor() bool {
	return p.motor
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// trs80Throttle paces emulated time against the wall clock. delay counts
// T-states run since the last check.
type trs80Throttle struct {
	clockHz int
	enabled bool
	delay   uint64
	start   time.Time
	emu     time.Duration
	sleep   func(time.Duration)
	now     func() time.Time
}

// Stretches longer than this are not caught up after a stall.
const trs80MaxLag = 250 * time.Millisecond

func newTRS80Throttle(clockHz int, enabled bool) *trs80Throttle {
	return &trs80Throttle{
		clockHz: clockHz,
		enabled: enabled,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

func (t *trs80Throttle) reset() {
	t.delay = 0
	t.emu = 0
	t.start = t.now()
}

// pace accounts for tstates of emulated time and sleeps if the emulation is
// ahead of the wall clock.
func (t *trs80Throttle) pace(tstates uint64) {
	if !t.enabled {
		return
	}
	if t.start.IsZero() {
		t.reset()
	}
	t.delay += tstates
	t.emu += time.Duration(t.delay) * time.Second / time.Duration(t.clockHz)
	t.delay = 0

	wall := t.now().Sub(t.start)
	switch ahead := t.emu - wall; {
	case ahead > 0:
		t.sleep(ahead)
	case -ahead > trs80MaxLag:
		t.emu = wall
	}
}
