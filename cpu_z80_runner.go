// cpu_z80_runner.go - TRS-80 Model I machine wiring and execution loop

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"
)

type MachineConfig struct {
	RAMKB    int
	ClockHz  int
	Throttle bool
	Seed     uint64 // 0 seeds R from the wall clock
	Sound    SoundSink
	Logger   *log.Logger
}

// Machine owns the CPU and the Model I hardware around it.
type Machine struct {
	cpu      *CPU_Z80
	memory   *TRS80Memory
	keyboard *TRS80Keyboard
	video    *TRS80Video
	ports    *TRS80Ports
	throttle *trs80Throttle
	logger   *log.Logger

	clockHz int
	entry   uint16

	execMu     sync.Mutex
	execDone   chan struct{}
	execActive bool
	execCancel context.CancelFunc
	lastStop   Z80StopReason
	lastErr    error
}

var errMachineRunning = errors.New("machine is already running")

func NewMachine(config MachineConfig) (*Machine, error) {
	if config.RAMKB == 0 {
		config.RAMKB = 48
	}
	if config.ClockHz <= 0 {
		config.ClockHz = trs80DefaultClockHz
	}

	video := NewTRS80Video()
	keyboard := NewTRS80Keyboard()
	ports := NewTRS80Ports(video, config.Sound, config.Logger)
	memory, err := NewTRS80Memory(config.RAMKB, video, keyboard, ports)
	if err != nil {
		return nil, err
	}

	cpu := NewCPU_Z80(memory)
	cpu.SetLogger(config.Logger)
	if config.Seed != 0 {
		cpu.SeedRefresh(config.Seed)
	}

	memory.SetIRQHandler(cpu.SetIRQLine)
	keyboard.Attach(
		func() uint64 { return cpu.TCount },
		func() byte { return memory.Read(cpu.PC) },
	)
	ports.now = func() uint64 { return cpu.TCount }

	m := &Machine{
		cpu:      cpu,
		memory:   memory,
		keyboard: keyboard,
		video:    video,
		ports:    ports,
		throttle: newTRS80Throttle(config.ClockHz, config.Throttle),
		logger:   config.Logger,
		clockHz:  config.ClockHz,
	}
	m.Reset()
	return m, nil
}

func (m *Machine) CPU() *CPU_Z80 {
	return m.cpu
}

func (m *Machine) Memory() *TRS80Memory {
	return m.memory
}

func (m *Machine) Video() *TRS80Video {
	return m.video
}

func (m *Machine) Keyboard() *TRS80Keyboard {
	return m.keyboard
}

// LoadROM reads a raw ROM image of at most 12K.
func (m *Machine) LoadROM(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}
	if err := m.memory.LoadROM(data); err != nil {
		return fmt.Errorf("loading ROM %s: %w", filename, err)
	}
	if m.logger != nil {
		m.logger.Info("ROM loaded", log.String("file", filename), log.Int("size", len(data)))
	}
	return nil
}

// LoadImage places a raw binary image at addr.
func (m *Machine) LoadImage(addr uint16, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	if err := m.memory.Load(addr, data); err != nil {
		return fmt.Errorf("loading %s: %w", filename, err)
	}
	if m.logger != nil {
		m.logger.Info("Image loaded", log.String("file", filename),
			log.Hex("address", addr), log.Int("size", len(data)))
	}
	return nil
}

// SetEntry sets the PC used after Reset.
func (m *Machine) SetEntry(addr uint16) {
	m.entry = addr
	m.cpu.PC = addr
}

// Reset returns the CPU to its power-on state and restarts the heartbeat.
// The heartbeat counts bus cycles and leaves the scheduler slot to
// peripherals.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.cpu.PC = m.entry
	m.memory.intLatch = 0
	m.throttle.reset()
	m.memory.StartTimer(uint64(m.clockHz/trs80HeartbeatHz), m.throttle.pace)
}

// Type queues host text for the keyboard.
func (m *Machine) Type(text string) {
	m.keyboard.Enqueue([]byte(text)...)
}

// Run executes until ctx is done, a Trap hit or a CPU fault. HALT only pauses
// the loop until the next interrupt.
func (m *Machine) Run(ctx context.Context) (Z80StopReason, error) {
	for {
		reason, err := m.cpu.Run(ctx, Z80RunContinuous)
		if err != nil {
			if m.logger != nil {
				m.logger.Error("CPU fault", log.Err(err), log.Hex("pc", m.cpu.LastInstructionAddr()))
			}
			return reason, err
		}
		switch reason {
		case Z80StopHalt:
			if ctx.Err() != nil {
				return Z80StopCancelled, nil
			}
		case Z80StopBreakpoint, Z80StopCancelled:
			return reason, nil
		}
	}
}

// Start runs the machine on its own goroutine.
func (m *Machine) Start(ctx context.Context) error {
	m.execMu.Lock()
	defer m.execMu.Unlock()
	if m.execActive {
		return errMachineRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	m.execActive = true
	m.execCancel = cancel
	m.execDone = make(chan struct{})
	m.throttle.reset()
	go func() {
		reason, err := m.Run(ctx)
		m.execMu.Lock()
		m.lastStop, m.lastErr = reason, err
		m.execActive = false
		cancel()
		close(m.execDone)
		m.execMu.Unlock()
	}()
	return nil
}

// Stop cancels a running machine and waits for its goroutine to exit.
func (m *Machine) Stop() {
	m.execMu.Lock()
	if !m.execActive {
		m.execMu.Unlock()
		return
	}
	m.execCancel()
	done := m.execDone
	m.execMu.Unlock()
	<-done
}

// Wait blocks until the goroutine started by Start exits and reports why.
func (m *Machine) Wait() (Z80StopReason, error) {
	m.execMu.Lock()
	done := m.execDone
	m.execMu.Unlock()
	if done != nil {
		<-done
	}
	m.execMu.Lock()
	defer m.execMu.Unlock()
	return m.lastStop, m.lastErr
}

// Done is closed when the goroutine started by the last Start exits.
func (m *Machine) Done() <-chan struct{} {
	m.execMu.Lock()
	defer m.execMu.Unlock()
	return m.execDone
}

func (m *Machine) IsRunning() bool {
	m.execMu.Lock()
	defer m.execMu.Unlock()
	return m.execActive
}

// EmulatedTime converts the T-state counter to machine time.
func (m *Machine) EmulatedTime() time.Duration {
	return time.Duration(m.cpu.TCount) * time.Second / time.Duration(m.clockHz)
}
