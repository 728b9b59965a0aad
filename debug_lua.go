// debug_lua.go - Lua scripting of the debugger hooks

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// LuaHost exposes a DebuggableCPU to Lua scripts through the globals peek,
// poke, reg, step, run, disasm, brk, trace, watch, clear, type and print.
type LuaHost struct {
	L       *lua.LState
	cpu     DebuggableCPU
	machine *Machine
	out     io.Writer
	ctx     context.Context
}

func NewLuaHost(ctx context.Context, cpu DebuggableCPU, machine *Machine, out io.Writer) *LuaHost {
	h := &LuaHost{
		L:       lua.NewState(),
		cpu:     cpu,
		machine: machine,
		out:     out,
		ctx:     ctx,
	}
	for name, fn := range map[string]lua.LGFunction{
		"peek":   h.luaPeek,
		"poke":   h.luaPoke,
		"reg":    h.luaReg,
		"step":   h.luaStep,
		"run":    h.luaRun,
		"disasm": h.luaDisasm,
		"brk":    h.trapFunc(TrapBreak),
		"trace":  h.trapFunc(TrapTrace),
		"watch":  h.trapFunc(TrapWatch),
		"clear":  h.luaClear,
		"type":   h.luaType,
		"print":  h.luaPrint,
	} {
		h.L.SetGlobal(name, h.L.NewFunction(fn))
	}
	// "break" is a Lua keyword, so it is reachable as _G["break"].
	h.L.SetGlobal("break", h.L.GetGlobal("brk"))
	return h
}

func (h *LuaHost) Close() {
	h.L.Close()
}

func (h *LuaHost) DoString(code string) error {
	if err := h.L.DoString(code); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

func (h *LuaHost) DoFile(path string) error {
	if err := h.L.DoFile(path); err != nil {
		return fmt.Errorf("lua script %s: %w", path, err)
	}
	return nil
}

func checkAddr(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFFFF {
		L.ArgError(n, "address out of range")
	}
	return uint16(v)
}

// peek(addr [, count]) returns one byte, or a table of count bytes.
func (h *LuaHost) luaPeek(L *lua.LState) int {
	addr := checkAddr(L, 1)
	if L.GetTop() < 2 {
		L.Push(lua.LNumber(h.cpu.ReadMemory(addr, 1)[0]))
		return 1
	}
	data := h.cpu.ReadMemory(addr, L.CheckInt(2))
	tbl := L.NewTable()
	for _, b := range data {
		tbl.Append(lua.LNumber(b))
	}
	L.Push(tbl)
	return 1
}

// poke(addr, byte...)
func (h *LuaHost) luaPoke(L *lua.LState) int {
	addr := checkAddr(L, 1)
	data := make([]byte, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		data = append(data, byte(L.CheckInt(i)))
	}
	h.cpu.WriteMemory(addr, data)
	return 0
}

// reg(name [, value]) reads or writes a register.
func (h *LuaHost) luaReg(L *lua.LState) int {
	name := L.CheckString(1)
	if L.GetTop() >= 2 {
		if !h.cpu.SetRegister(name, uint16(L.CheckInt(2))) {
			L.ArgError(1, "unknown register "+name)
		}
		return 0
	}
	v, ok := h.cpu.GetRegister(name)
	if !ok {
		L.ArgError(1, "unknown register "+name)
	}
	L.Push(lua.LNumber(v))
	return 1
}

// step([count [, interrupts]]) returns the stop reason of the last step.
func (h *LuaHost) luaStep(L *lua.LState) int {
	count := L.OptInt(1, 1)
	interrupts := L.OptBool(2, true)
	reason := Z80StopNone
	for range count {
		r, err := h.cpu.Step(interrupts)
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
		reason = r
		if r == Z80StopBreakpoint {
			break
		}
	}
	L.Push(lua.LString(reason.String()))
	return 1
}

// run() resumes until a trap or cancellation and returns the stop reason.
func (h *LuaHost) luaRun(L *lua.LState) int {
	reason, err := h.cpu.Resume(h.ctx)
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	L.Push(lua.LString(reason.String()))
	return 1
}

// disasm([addr [, count]]) returns the mnemonic lines as one string.
func (h *LuaHost) luaDisasm(L *lua.LState) int {
	addr := h.cpu.GetPC()
	if L.GetTop() >= 1 {
		addr = checkAddr(L, 1)
	}
	count := L.OptInt(2, 1)
	var sb strings.Builder
	for _, line := range h.cpu.Disassemble(addr, count) {
		fmt.Fprintf(&sb, "%04X  %s\n", line.Address, line.Mnemonic)
	}
	L.Push(lua.LString(sb.String()))
	return 1
}

func (h *LuaHost) trapFunc(kind TrapKind) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := h.cpu.AddTrap(checkAddr(L, 1), kind); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}
}

// clear([addr]) removes the traps at addr, or all of them.
func (h *LuaHost) luaClear(L *lua.LState) int {
	if L.GetTop() == 0 {
		h.cpu.ClearAllTraps()
		return 0
	}
	L.Push(lua.LBool(h.cpu.ClearTrap(checkAddr(L, 1))))
	return 1
}

// type(text) queues keystrokes.
func (h *LuaHost) luaType(L *lua.LState) int {
	if h.machine != nil {
		h.machine.Type(L.CheckString(1))
	}
	return 0
}

func (h *LuaHost) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(h.out, strings.Join(parts, "\t"))
	return 0
}
