package main

import "testing"

type z80TestBus struct {
	mem   [0x10000]byte
	io    [0x10000]byte
	ticks uint64

	lastOutPort uint16
	outs        int
}

func (b *z80TestBus) Read(addr uint16) byte {
	return b.mem[addr]
}

func (b *z80TestBus) Write(addr uint16, value byte) {
	b.mem[addr] = value
}

func (b *z80TestBus) In(port uint16) byte {
	return b.io[port]
}

func (b *z80TestBus) Out(port uint16, value byte) {
	b.io[port] = value
	b.lastOutPort = port
	b.outs++
}

func (b *z80TestBus) Tick(cycles int) {
	b.ticks += uint64(cycles)
}

// z80BlockTestBus adds the bulk copy hook used by LDIR/LDDR.
type z80BlockTestBus struct {
	*z80TestBus
	transfers int
}

func (b *z80BlockTestBus) BlockTransfer(dest, src uint16, dir int, count int) byte {
	b.transfers++
	if count == 0 {
		count = 0x10000
	}
	var last byte
	for range count {
		last = b.mem[src]
		b.mem[dest] = last
		dest += uint16(dir)
		src += uint16(dir)
	}
	return last
}

type cpuZ80TestRig struct {
	bus *z80TestBus
	cpu *CPU_Z80
}

func newCPUZ80TestRig() *cpuZ80TestRig {
	bus := &z80TestBus{}
	cpu := NewCPU_Z80(bus)
	cpu.SeedRefresh(1)
	return &cpuZ80TestRig{
		bus: bus,
		cpu: cpu,
	}
}

func (r *cpuZ80TestRig) resetAndLoad(start uint16, program []byte) {
	r.bus = &z80TestBus{}
	r.cpu = NewCPU_Z80(r.bus)
	r.cpu.SeedRefresh(1)
	r.load(start, program)
	r.cpu.PC = start
}

// resetAndLoadBlock is resetAndLoad on a bus that accepts bulk copies.
func (r *cpuZ80TestRig) resetAndLoadBlock(start uint16, program []byte) *z80BlockTestBus {
	r.bus = &z80TestBus{}
	bb := &z80BlockTestBus{z80TestBus: r.bus}
	r.cpu = NewCPU_Z80(bb)
	r.cpu.SeedRefresh(1)
	r.load(start, program)
	r.cpu.PC = start
	return bb
}

func (r *cpuZ80TestRig) load(start uint16, data []byte) {
	for i, value := range data {
		r.bus.mem[start+uint16(i)] = value
	}
}

// step executes one instruction with interrupt service and fails the test on
// a CPU fault.
func (r *cpuZ80TestRig) step(t *testing.T) Z80StopReason {
	t.Helper()
	reason, err := r.cpu.Step()
	if err != nil {
		t.Fatalf("step at $%04X: %v", r.cpu.LastInstructionAddr(), err)
	}
	return reason
}

func (r *cpuZ80TestRig) steps(t *testing.T, n int) {
	t.Helper()
	for range n {
		r.step(t)
	}
}

// runUntil steps until PC reaches addr or limit instructions have run.
func (r *cpuZ80TestRig) runUntil(t *testing.T, addr uint16, limit int) {
	t.Helper()
	for n := 0; r.cpu.PC != addr; n++ {
		if n == limit {
			t.Fatalf("PC never reached $%04X, stuck at $%04X", addr, r.cpu.PC)
		}
		r.step(t)
	}
}

func requireZ80EqualU16(t *testing.T, name string, got, want uint16) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = 0x%04X, want 0x%04X", name, got, want)
	}
}

func requireZ80EqualU8(t *testing.T, name string, got, want byte) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = 0x%02X, want 0x%02X", name, got, want)
	}
}

func requireZ80Flags(t *testing.T, cpu *CPU_Z80, mask, want byte) {
	t.Helper()
	if got := cpu.F & mask; got != want&mask {
		t.Fatalf("F&%02X = %08b, want %08b", mask, got, want&mask)
	}
}
