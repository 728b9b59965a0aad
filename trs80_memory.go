// trs80_memory.go - TRS-80 Model I memory map

package main

import (
	"errors"
	"fmt"
)

const (
	trs80ROMSize       = 0x3000
	trs80IntLatchBase  = 0x37E0
	trs80IntLatchEnd   = 0x37E3
	trs80PrinterBase   = 0x37E8
	trs80PrinterEnd    = 0x37E9
	trs80KeyboardBase  = 0x3800
	trs80KeyboardEnd   = 0x3BFF
	trs80VideoBase     = 0x3C00
	trs80VideoSize     = 0x0400
	trs80RAMBase       = 0x4000
	trs80PrinterStatus = 0x30
	trs80Unmapped      = 0xFF

	// Interrupt latch bit raised by the heartbeat timer.
	trs80TimerIRQ = 0x80
)

var ErrTRS80ROMTooLarge = errors.New("ROM image larger than 12K")

// TRS80Memory is the Z80 bus of a Model I: ROM, memory-mapped keyboard and
// video, the interrupt latch, RAM and the port space.
type TRS80Memory struct {
	rom      [trs80ROMSize]byte
	ram      []byte
	video    *TRS80Video
	keyboard *TRS80Keyboard
	ports    *TRS80Ports

	intLatch byte
	irq      func(assert bool)

	cycles uint64

	// Heartbeat timer, counted in bus cycles.
	timerPeriod uint64
	timerDue    uint64
	onTimer     func(period uint64)
}

// NewTRS80Memory builds the memory map with ramKB kilobytes of RAM above
// 0x4000. ROM reads 0xFF until an image is loaded.
func NewTRS80Memory(ramKB int, video *TRS80Video, keyboard *TRS80Keyboard, ports *TRS80Ports) (*TRS80Memory, error) {
	switch ramKB {
	case 4, 16, 32, 48:
	default:
		return nil, fmt.Errorf("unsupported RAM size %dK (want 4, 16, 32 or 48)", ramKB)
	}
	m := &TRS80Memory{
		ram:      make([]byte, ramKB*1024),
		video:    video,
		keyboard: keyboard,
		ports:    ports,
	}
	for i := range m.rom {
		m.rom[i] = trs80Unmapped
	}
	return m, nil
}

// SetIRQHandler connects the interrupt latch to the CPU's IRQ line.
func (m *TRS80Memory) SetIRQHandler(fn func(assert bool)) {
	m.irq = fn
}

// RaiseTimer latches the heartbeat interrupt.
func (m *TRS80Memory) RaiseTimer() {
	m.intLatch |= trs80TimerIRQ
	if m.irq != nil {
		m.irq(true)
	}
}

func (m *TRS80Memory) IntLatch() byte {
	return m.intLatch
}

// RAMTop is the first address above installed RAM.
func (m *TRS80Memory) RAMTop() uint32 {
	return trs80RAMBase + uint32(len(m.ram))
}

func (m *TRS80Memory) LoadROM(image []byte) error {
	if len(image) > trs80ROMSize {
		return fmt.Errorf("%d bytes: %w", len(image), ErrTRS80ROMTooLarge)
	}
	copy(m.rom[:], image)
	return nil
}

// Load copies an image into the address space, ROM included. Bytes that land
// on unmapped addresses are rejected.
func (m *TRS80Memory) Load(addr uint16, image []byte) error {
	if uint32(addr)+uint32(len(image)) > 0x10000 {
		return fmt.Errorf("image of %d bytes at $%04X runs past $FFFF", len(image), addr)
	}
	for i, b := range image {
		a := addr + uint16(i)
		switch {
		case a < trs80ROMSize:
			m.rom[a] = b
		case a >= trs80VideoBase && a < trs80RAMBase:
			m.video.Write(a-trs80VideoBase, b)
		case a >= trs80RAMBase && uint32(a) < m.RAMTop():
			m.ram[a-trs80RAMBase] = b
		default:
			return fmt.Errorf("image byte %d lands on unmapped address $%04X", i, a)
		}
	}
	return nil
}

func (m *TRS80Memory) Read(addr uint16) byte {
	switch {
	case addr >= trs80RAMBase:
		if off := uint32(addr - trs80RAMBase); off < uint32(len(m.ram)) {
			return m.ram[off]
		}
		return trs80Unmapped
	case addr < trs80ROMSize:
		return m.rom[addr]
	case addr >= trs80VideoBase:
		return m.video.Read(addr - trs80VideoBase)
	case addr >= trs80KeyboardBase:
		return m.keyboard.Read(addr)
	case addr >= trs80IntLatchBase && addr <= trs80IntLatchEnd:
		v := m.intLatch
		m.intLatch &^= trs80TimerIRQ
		if m.intLatch == 0 && m.irq != nil {
			m.irq(false)
		}
		return v
	case addr >= trs80PrinterBase && addr <= trs80PrinterEnd:
		return trs80PrinterStatus
	default:
		return trs80Unmapped
	}
}

func (m *TRS80Memory) Write(addr uint16, value byte) {
	switch {
	case addr >= trs80RAMBase:
		if off := uint32(addr - trs80RAMBase); off < uint32(len(m.ram)) {
			m.ram[off] = value
		}
	case addr >= trs80VideoBase:
		m.video.Write(addr-trs80VideoBase, value)
	}
}

func (m *TRS80Memory) In(port uint16) byte {
	return m.ports.In(port)
}

func (m *TRS80Memory) Out(port uint16, value byte) {
	m.ports.Out(port, value)
}

// StartTimer raises the heartbeat interrupt every period bus cycles from
// now on and calls onTick after each raise. A period of 0 stops the timer.
func (m *TRS80Memory) StartTimer(period uint64, onTick func(period uint64)) {
	m.timerPeriod = period
	m.timerDue = m.cycles + period
	m.onTimer = onTick
}

// Tick advances the bus clock and fires the heartbeat when it is due. A
// stall longer than one period still raises only once.
func (m *TRS80Memory) Tick(cycles int) {
	m.cycles += uint64(cycles)
	if m.timerPeriod == 0 || m.cycles < m.timerDue {
		return
	}
	for m.timerDue <= m.cycles {
		m.timerDue += m.timerPeriod
	}
	m.RaiseTimer()
	if m.onTimer != nil {
		m.onTimer(m.timerPeriod)
	}
}

// BlockTransfer copies count bytes (0 means 65536) one at a time so
// overlapping fills behave as they do when iterated. Runs that stay inside
// RAM skip the address decoder. The result is the last byte read from the
// source, which is what the CPU computes its flags from.
func (m *TRS80Memory) BlockTransfer(dest, src uint16, dir int, count int) byte {
	if count == 0 {
		count = 0x10000
	}
	if dir > 0 && m.inRAM(src, count) && m.inRAM(dest, count) {
		s := int(src - trs80RAMBase)
		d := int(dest - trs80RAMBase)
		for i := range count {
			m.ram[d+i] = m.ram[s+i]
		}
		return m.ram[d+count-1]
	}
	var last byte
	step := uint16(dir)
	for range count {
		last = m.Read(src)
		m.Write(dest, last)
		dest += step
		src += step
	}
	return last
}

func (m *TRS80Memory) inRAM(addr uint16, count int) bool {
	return addr >= trs80RAMBase && uint32(addr)+uint32(count) <= m.RAMTop()
}

// Peek reads like Read without side effects: the interrupt latch is not
// cleared and the keyboard does not advance.
func (m *TRS80Memory) Peek(addr uint16) byte {
	switch {
	case addr >= trs80IntLatchBase && addr <= trs80IntLatchEnd:
		return m.intLatch
	case addr >= trs80KeyboardBase && addr <= trs80KeyboardEnd:
		return m.keyboard.Peek(addr)
	default:
		return m.Read(addr)
	}
}
