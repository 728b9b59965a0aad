// debug_monitor.go - line-oriented machine monitor

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// MonitorCommand is a parsed command with name and arguments.
type MonitorCommand struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a command name and arguments.
func ParseCommand(input string) MonitorCommand {
	input = strings.TrimSpace(input)
	if input == "" {
		return MonitorCommand{}
	}
	parts := strings.Fields(input)
	return MonitorCommand{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

// ParseAddress parses a monitor address in various formats:
// $hex, 0xhex, bare hex, #decimal
func ParseAddress(s string) (uint16, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	base := 16
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 10
	case strings.HasPrefix(s, "$"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, base, 16)
	return uint16(v), err == nil
}

// Monitor reads commands from in and writes results to out.
type Monitor struct {
	cpu    DebuggableCPU
	lua    *LuaHost
	in     *bufio.Scanner
	out    io.Writer
	logger *log.Logger

	prevRegs map[string]uint16
	nextDis  uint16
	nextDump uint16
}

func NewMonitor(cpu DebuggableCPU, lua *LuaHost, in io.Reader, out io.Writer, logger *log.Logger) *Monitor {
	return &Monitor{
		cpu:      cpu,
		lua:      lua,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   logger,
		prevRegs: make(map[string]uint16),
		nextDis:  cpu.GetPC(),
	}
}

// Run processes commands until "q", end of input or ctx is done. A CPU
// fault ends the session with the error.
func (m *Monitor) Run(ctx context.Context) error {
	m.showRegisters()
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(m.out, "> ")
		if !m.in.Scan() {
			return m.in.Err()
		}
		quit, err := m.ExecuteCommand(ctx, m.in.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// ExecuteCommand runs one command line. It returns true when the session
// should end.
func (m *Monitor) ExecuteCommand(ctx context.Context, input string) (bool, error) {
	cmd := ParseCommand(input)
	switch cmd.Name {
	case "":
		return false, nil
	case "r":
		m.cmdRegisters(cmd)
	case "m":
		m.cmdMemoryDump(cmd)
	case "d":
		m.cmdDisassemble(cmd)
	case "s":
		return false, m.cmdStep(cmd, true)
	case "n":
		return false, m.cmdStep(cmd, false)
	case "g":
		return false, m.cmdGo(ctx, cmd)
	case "b":
		m.cmdTrap(cmd, TrapBreak)
	case "t":
		m.cmdTrap(cmd, TrapTrace)
	case "w":
		m.cmdTrap(cmd, TrapWatch)
	case "bc":
		m.cmdTrapClear(cmd)
	case "bl":
		m.cmdTrapList()
	case "lua":
		m.cmdLua(input)
	case "q", "x":
		return true, nil
	case "?", "help":
		m.cmdHelp()
	default:
		m.printf("Unknown command: %s\n", cmd.Name)
	}
	return false, nil
}

func (m *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Monitor) cmdRegisters(cmd MonitorCommand) {
	if len(cmd.Args) >= 2 {
		name := cmd.Args[0]
		val, ok := ParseAddress(cmd.Args[1])
		if !ok {
			m.printf("Invalid value: %s\n", cmd.Args[1])
			return
		}
		if m.cpu.SetRegister(name, val) {
			m.printf("%s = $%X\n", strings.ToUpper(name), val)
		} else {
			m.printf("Unknown register: %s\n", name)
		}
		return
	}
	m.showRegisters()
}

func (m *Monitor) showRegisters() {
	var sb strings.Builder
	for i, r := range m.cpu.GetRegisters() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		mark := ""
		if prev, ok := m.prevRegs[r.Name]; ok && prev != r.Value {
			mark = "*"
		}
		switch {
		case r.BitWidth > 8:
			fmt.Fprintf(&sb, "%s=%04X%s", r.Name, r.Value, mark)
		case r.BitWidth == 8:
			fmt.Fprintf(&sb, "%s=%02X%s", r.Name, r.Value, mark)
		default:
			fmt.Fprintf(&sb, "%s=%d%s", r.Name, r.Value, mark)
		}
		m.prevRegs[r.Name] = r.Value
	}
	m.printf("%s\n", sb.String())
	m.showDisassembly(m.cpu.GetPC(), 1)
}

func (m *Monitor) showDisassembly(addr uint16, count int) {
	for _, line := range m.cpu.Disassemble(addr, count) {
		marker := " "
		if line.IsPC {
			marker = ">"
		}
		m.printf("%s%04X  %-11s  %s\n", marker, line.Address, line.HexBytes, line.Mnemonic)
		m.nextDis = line.Address + uint16(line.Size)
	}
}

func (m *Monitor) cmdDisassemble(cmd MonitorCommand) {
	addr, count := m.nextDis, 16
	if len(cmd.Args) >= 1 {
		if v, ok := m.evalAddress(cmd.Args[0]); ok {
			addr = v
		}
	}
	if len(cmd.Args) >= 2 {
		if v, ok := ParseAddress(cmd.Args[1]); ok {
			count = int(v)
		}
	}
	m.showDisassembly(addr, count)
}

func (m *Monitor) cmdMemoryDump(cmd MonitorCommand) {
	addr, lines := m.nextDump, 8
	if len(cmd.Args) >= 1 {
		if v, ok := m.evalAddress(cmd.Args[0]); ok {
			addr = v
		}
	}
	if len(cmd.Args) >= 2 {
		if v, ok := ParseAddress(cmd.Args[1]); ok {
			lines = int(v)
		}
	}

	for range lines {
		data := m.cpu.ReadMemory(addr, 16)
		hexParts := make([]string, 16)
		ascii := make([]byte, 16)
		for j, b := range data {
			hexParts[j] = fmt.Sprintf("%02X", b)
			ascii[j] = '.'
			if b >= 0x20 && b < 0x7F {
				ascii[j] = b
			}
		}
		m.printf("%04X: %s  %s  %s\n", addr,
			strings.Join(hexParts[:8], " "), strings.Join(hexParts[8:], " "), ascii)
		addr += 16
	}
	m.nextDump = addr
}

// evalAddress accepts a register name as well as a number.
func (m *Monitor) evalAddress(s string) (uint16, bool) {
	if v, ok := m.cpu.GetRegister(s); ok {
		return v, true
	}
	return ParseAddress(s)
}

func (m *Monitor) cmdStep(cmd MonitorCommand, interrupts bool) error {
	count := 1
	if len(cmd.Args) >= 1 {
		if v, ok := ParseAddress(cmd.Args[0]); ok {
			count = int(v)
		}
	}
	for range count {
		reason, err := m.cpu.Step(interrupts)
		if err != nil {
			return m.fault(err)
		}
		if reason != Z80StopNone {
			m.printf("Stopped: %s\n", reason)
			break
		}
	}
	m.showRegisters()
	return nil
}

func (m *Monitor) cmdGo(ctx context.Context, cmd MonitorCommand) error {
	if len(cmd.Args) >= 1 {
		if v, ok := m.evalAddress(cmd.Args[0]); ok {
			m.cpu.SetPC(v)
		}
	}
	reason, err := m.cpu.Resume(ctx)
	if err != nil {
		return m.fault(err)
	}
	m.printf("Stopped: %s\n", reason)
	m.showRegisters()
	return nil
}

// fault reports an unsupported opcode without ending the session; any other
// CPU error is returned.
func (m *Monitor) fault(err error) error {
	var unsupported *Z80UnsupportedError
	if errors.As(err, &unsupported) {
		m.printf("Fault: %v\n", err)
		return nil
	}
	return err
}

func (m *Monitor) cmdTrap(cmd MonitorCommand, kind TrapKind) {
	if len(cmd.Args) < 1 {
		m.printf("Usage: %s <address>\n", cmd.Name)
		return
	}
	addr, ok := m.evalAddress(cmd.Args[0])
	if !ok {
		m.printf("Invalid address: %s\n", cmd.Args[0])
		return
	}
	if err := m.cpu.AddTrap(addr, kind); err != nil {
		m.printf("%v\n", err)
		return
	}
	m.printf("%s set at $%04X\n", kind, addr)
}

func (m *Monitor) cmdTrapClear(cmd MonitorCommand) {
	if len(cmd.Args) < 1 || cmd.Args[0] == "*" {
		m.cpu.ClearAllTraps()
		m.printf("All traps cleared\n")
		return
	}
	addr, ok := m.evalAddress(cmd.Args[0])
	if !ok {
		m.printf("Invalid address: %s\n", cmd.Args[0])
		return
	}
	if m.cpu.ClearTrap(addr) {
		m.printf("Cleared $%04X\n", addr)
	} else {
		m.printf("No trap at $%04X\n", addr)
	}
}

func (m *Monitor) cmdTrapList() {
	traps := m.cpu.ListTraps()
	if len(traps) == 0 {
		m.printf("No traps set\n")
		return
	}
	for _, t := range traps {
		m.printf("$%04X  %s\n", t.Addr, t.Kind)
	}
}

// cmdLua runs the rest of the line as Lua, or a file with "lua @path".
func (m *Monitor) cmdLua(input string) {
	if m.lua == nil {
		m.printf("Lua not available\n")
		return
	}
	code := strings.TrimSpace(strings.TrimSpace(input)[len("lua"):])
	var err error
	if path, ok := strings.CutPrefix(code, "@"); ok {
		err = m.lua.DoFile(path)
	} else {
		err = m.lua.DoString(code)
	}
	if err != nil {
		m.printf("%v\n", err)
	}
}

func (m *Monitor) cmdHelp() {
	m.printf(`r [reg value]   show or set registers
m [addr [rows]] dump memory
d [addr [n]]    disassemble
s [n]           step
n [n]           step without interrupts
g [addr]        run until a trap
b addr          breakpoint
t addr          tracepoint
w addr          watchpoint
bc [addr|*]     clear traps
bl              list traps
lua code|@file  run Lua
q               quit
`)
}
