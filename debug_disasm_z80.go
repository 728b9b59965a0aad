// debug_disasm_z80.go - Table-driven Z80 disassembler

package main

import (
	"fmt"
	"io"
	"strings"
)

// z80DisasmEntry describes one opcode. A non-empty format is rendered with
// the operands selected by arity:
//
//	 0  none
//	 1  one byte
//	 2  little-endian word
//	-1  relative displacement, shown as the absolute target
//	 3  (IX+d)
//	 4  (IX+d),n
//	 5  (IX+d) whose displacement preceded the opcode (DDCB/FDCB)
//
// An empty format with a non-zero arity continues decoding in the table with
// that index. An empty format with arity 0 is undefined.
type z80DisasmEntry struct {
	format string
	arity  int
}

const (
	z80TableBase = iota
	z80TableCB
	z80TableED
	z80TableDD
	z80TableFD
	z80TableIndexCB
	z80TableCount
)

var z80DisasmTables [z80TableCount]*[256]z80DisasmEntry

var (
	z80Reg8Names  = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	z80Reg16Names = [4]string{"BC", "DE", "HL", "SP"}
	z80StackNames = [4]string{"BC", "DE", "HL", "AF"}
	z80CondNames  = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	z80ALUNames   = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	z80RotNames   = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}
)

func init() {
	base := buildZ80BaseTable()
	cb := buildZ80CBTable()
	ed := buildZ80EDTable()
	index := buildZ80IndexTable()
	indexCB := buildZ80IndexCBTable()

	z80DisasmTables[z80TableBase] = base
	z80DisasmTables[z80TableCB] = cb
	z80DisasmTables[z80TableED] = ed
	// DD and FD share entries; the register name is swapped when rendering.
	z80DisasmTables[z80TableDD] = index
	z80DisasmTables[z80TableFD] = index
	z80DisasmTables[z80TableIndexCB] = indexCB
}

func buildZ80BaseTable() *[256]z80DisasmEntry {
	var t [256]z80DisasmEntry

	t[0x00] = z80DisasmEntry{"NOP", 0}
	t[0x08] = z80DisasmEntry{"EX AF,AF'", 0}
	t[0x10] = z80DisasmEntry{"DJNZ $%04X", -1}
	t[0x18] = z80DisasmEntry{"JR $%04X", -1}
	for cc := 0; cc < 4; cc++ {
		t[0x20|cc<<3] = z80DisasmEntry{"JR " + z80CondNames[cc] + ",$%04X", -1}
	}

	for rr := 0; rr < 4; rr++ {
		t[0x01|rr<<4] = z80DisasmEntry{"LD " + z80Reg16Names[rr] + ",$%04X", 2}
		t[0x03|rr<<4] = z80DisasmEntry{"INC " + z80Reg16Names[rr], 0}
		t[0x09|rr<<4] = z80DisasmEntry{"ADD HL," + z80Reg16Names[rr], 0}
		t[0x0B|rr<<4] = z80DisasmEntry{"DEC " + z80Reg16Names[rr], 0}
		t[0xC1|rr<<4] = z80DisasmEntry{"POP " + z80StackNames[rr], 0}
		t[0xC5|rr<<4] = z80DisasmEntry{"PUSH " + z80StackNames[rr], 0}
	}

	t[0x02] = z80DisasmEntry{"LD (BC),A", 0}
	t[0x0A] = z80DisasmEntry{"LD A,(BC)", 0}
	t[0x12] = z80DisasmEntry{"LD (DE),A", 0}
	t[0x1A] = z80DisasmEntry{"LD A,(DE)", 0}
	t[0x22] = z80DisasmEntry{"LD ($%04X),HL", 2}
	t[0x2A] = z80DisasmEntry{"LD HL,($%04X)", 2}
	t[0x32] = z80DisasmEntry{"LD ($%04X),A", 2}
	t[0x3A] = z80DisasmEntry{"LD A,($%04X)", 2}

	for r := 0; r < 8; r++ {
		t[0x04|r<<3] = z80DisasmEntry{"INC " + z80Reg8Names[r], 0}
		t[0x05|r<<3] = z80DisasmEntry{"DEC " + z80Reg8Names[r], 0}
		t[0x06|r<<3] = z80DisasmEntry{"LD " + z80Reg8Names[r] + ",$%02X", 1}
	}

	t[0x07] = z80DisasmEntry{"RLCA", 0}
	t[0x0F] = z80DisasmEntry{"RRCA", 0}
	t[0x17] = z80DisasmEntry{"RLA", 0}
	t[0x1F] = z80DisasmEntry{"RRA", 0}
	t[0x27] = z80DisasmEntry{"DAA", 0}
	t[0x2F] = z80DisasmEntry{"CPL", 0}
	t[0x37] = z80DisasmEntry{"SCF", 0}
	t[0x3F] = z80DisasmEntry{"CCF", 0}

	for op := 0x40; op <= 0x7F; op++ {
		t[op] = z80DisasmEntry{"LD " + z80Reg8Names[op>>3&7] + "," + z80Reg8Names[op&7], 0}
	}
	t[0x76] = z80DisasmEntry{"HALT", 0}

	for op := 0x80; op <= 0xBF; op++ {
		t[op] = z80DisasmEntry{z80ALUNames[op>>3&7] + z80Reg8Names[op&7], 0}
	}

	for cc := 0; cc < 8; cc++ {
		t[0xC0|cc<<3] = z80DisasmEntry{"RET " + z80CondNames[cc], 0}
		t[0xC2|cc<<3] = z80DisasmEntry{"JP " + z80CondNames[cc] + ",$%04X", 2}
		t[0xC4|cc<<3] = z80DisasmEntry{"CALL " + z80CondNames[cc] + ",$%04X", 2}
		t[0xC6|cc<<3] = z80DisasmEntry{z80ALUNames[cc] + "$%02X", 1}
		t[0xC7|cc<<3] = z80DisasmEntry{fmt.Sprintf("RST $%02X", cc<<3), 0}
	}

	t[0xC3] = z80DisasmEntry{"JP $%04X", 2}
	t[0xC9] = z80DisasmEntry{"RET", 0}
	t[0xCD] = z80DisasmEntry{"CALL $%04X", 2}
	t[0xD3] = z80DisasmEntry{"OUT ($%02X),A", 1}
	t[0xD9] = z80DisasmEntry{"EXX", 0}
	t[0xDB] = z80DisasmEntry{"IN A,($%02X)", 1}
	t[0xE3] = z80DisasmEntry{"EX (SP),HL", 0}
	t[0xE9] = z80DisasmEntry{"JP (HL)", 0}
	t[0xEB] = z80DisasmEntry{"EX DE,HL", 0}
	t[0xF3] = z80DisasmEntry{"DI", 0}
	t[0xF9] = z80DisasmEntry{"LD SP,HL", 0}
	t[0xFB] = z80DisasmEntry{"EI", 0}

	t[0xCB] = z80DisasmEntry{"", z80TableCB}
	t[0xED] = z80DisasmEntry{"", z80TableED}
	t[0xDD] = z80DisasmEntry{"", z80TableDD}
	t[0xFD] = z80DisasmEntry{"", z80TableFD}
	return &t
}

func buildZ80CBTable() *[256]z80DisasmEntry {
	var t [256]z80DisasmEntry
	for op := 0; op < 256; op++ {
		y, r := op>>3&7, z80Reg8Names[op&7]
		switch op >> 6 {
		case 0:
			t[op] = z80DisasmEntry{z80RotNames[y] + " " + r, 0}
		case 1:
			t[op] = z80DisasmEntry{fmt.Sprintf("BIT %d,%s", y, r), 0}
		case 2:
			t[op] = z80DisasmEntry{fmt.Sprintf("RES %d,%s", y, r), 0}
		default:
			t[op] = z80DisasmEntry{fmt.Sprintf("SET %d,%s", y, r), 0}
		}
	}
	return &t
}

func buildZ80EDTable() *[256]z80DisasmEntry {
	var t [256]z80DisasmEntry
	for r := 0; r < 8; r++ {
		if r == 6 {
			t[0x70] = z80DisasmEntry{"IN F,(C)", 0}
			continue
		}
		t[0x40|r<<3] = z80DisasmEntry{"IN " + z80Reg8Names[r] + ",(C)", 0}
		t[0x41|r<<3] = z80DisasmEntry{"OUT (C)," + z80Reg8Names[r], 0}
	}
	for rr := 0; rr < 4; rr++ {
		name := z80Reg16Names[rr]
		t[0x42|rr<<4] = z80DisasmEntry{"SBC HL," + name, 0}
		t[0x4A|rr<<4] = z80DisasmEntry{"ADC HL," + name, 0}
		t[0x43|rr<<4] = z80DisasmEntry{"LD ($%04X)," + name, 2}
		t[0x4B|rr<<4] = z80DisasmEntry{"LD " + name + ",($%04X)", 2}
	}
	t[0x44] = z80DisasmEntry{"NEG", 0}
	t[0x45] = z80DisasmEntry{"RETN", 0}
	t[0x4D] = z80DisasmEntry{"RETI", 0}
	t[0x46] = z80DisasmEntry{"IM 0", 0}
	t[0x56] = z80DisasmEntry{"IM 1", 0}
	t[0x5E] = z80DisasmEntry{"IM 2", 0}
	t[0x47] = z80DisasmEntry{"LD I,A", 0}
	t[0x4F] = z80DisasmEntry{"LD R,A", 0}
	t[0x57] = z80DisasmEntry{"LD A,I", 0}
	t[0x5F] = z80DisasmEntry{"LD A,R", 0}
	t[0x67] = z80DisasmEntry{"RRD", 0}
	t[0x6F] = z80DisasmEntry{"RLD", 0}

	blocks := map[int]string{
		0xA0: "LDI", 0xA1: "CPI", 0xA2: "INI", 0xA3: "OUTI",
		0xA8: "LDD", 0xA9: "CPD", 0xAA: "IND", 0xAB: "OUTD",
		0xB0: "LDIR", 0xB1: "CPIR", 0xB2: "INIR", 0xB3: "OTIR",
		0xB8: "LDDR", 0xB9: "CPDR", 0xBA: "INDR", 0xBB: "OTDR",
	}
	for op, name := range blocks {
		t[op] = z80DisasmEntry{name, 0}
	}
	return &t
}

// indexRegName is the register operand inside an index-prefixed opcode.
func indexRegName(r int) string {
	switch r {
	case 4:
		return "IXH"
	case 5:
		return "IXL"
	default:
		return z80Reg8Names[r]
	}
}

func buildZ80IndexTable() *[256]z80DisasmEntry {
	var t [256]z80DisasmEntry

	for rr := 0; rr < 4; rr++ {
		name := z80Reg16Names[rr]
		if rr == 2 {
			name = "IX"
		}
		t[0x09|rr<<4] = z80DisasmEntry{"ADD IX," + name, 0}
	}
	t[0x21] = z80DisasmEntry{"LD IX,$%04X", 2}
	t[0x22] = z80DisasmEntry{"LD ($%04X),IX", 2}
	t[0x2A] = z80DisasmEntry{"LD IX,($%04X)", 2}
	t[0x23] = z80DisasmEntry{"INC IX", 0}
	t[0x2B] = z80DisasmEntry{"DEC IX", 0}
	t[0x34] = z80DisasmEntry{"INC (IX%s)", 3}
	t[0x35] = z80DisasmEntry{"DEC (IX%s)", 3}
	t[0x36] = z80DisasmEntry{"LD (IX%s),$%02X", 4}
	t[0xE1] = z80DisasmEntry{"POP IX", 0}
	t[0xE3] = z80DisasmEntry{"EX (SP),IX", 0}
	t[0xE5] = z80DisasmEntry{"PUSH IX", 0}
	t[0xE9] = z80DisasmEntry{"JP (IX)", 0}
	t[0xF9] = z80DisasmEntry{"LD SP,IX", 0}
	t[0xCB] = z80DisasmEntry{"", z80TableIndexCB}

	for _, r := range []int{4, 5} {
		name := indexRegName(r)
		t[0x04|r<<3] = z80DisasmEntry{"INC " + name, 0}
		t[0x05|r<<3] = z80DisasmEntry{"DEC " + name, 0}
		t[0x06|r<<3] = z80DisasmEntry{"LD " + name + ",$%02X", 1}
	}

	for op := 0x40; op <= 0x7F; op++ {
		dest, src := op>>3&7, op&7
		switch {
		case op == 0x76:
		case src == 6:
			t[op] = z80DisasmEntry{"LD " + z80Reg8Names[dest] + ",(IX%s)", 3}
		case dest == 6:
			t[op] = z80DisasmEntry{"LD (IX%s)," + z80Reg8Names[src], 3}
		case isIndexHalf(byte(dest)) || isIndexHalf(byte(src)):
			t[op] = z80DisasmEntry{"LD " + indexRegName(dest) + "," + indexRegName(src), 0}
		}
	}

	for op := 0x80; op <= 0xBF; op++ {
		alu, src := z80ALUNames[op>>3&7], op&7
		switch {
		case src == 6:
			t[op] = z80DisasmEntry{alu + "(IX%s)", 3}
		case isIndexHalf(byte(src)):
			t[op] = z80DisasmEntry{alu + indexRegName(src), 0}
		}
	}
	return &t
}

func buildZ80IndexCBTable() *[256]z80DisasmEntry {
	var t [256]z80DisasmEntry
	for y := 0; y < 8; y++ {
		t[0x06|y<<3] = z80DisasmEntry{z80RotNames[y] + " (IX%s)", 5}
		t[0x46|y<<3] = z80DisasmEntry{fmt.Sprintf("BIT %d,(IX%%s)", y), 5}
		t[0x86|y<<3] = z80DisasmEntry{fmt.Sprintf("RES %d,(IX%%s)", y), 5}
		t[0xC6|y<<3] = z80DisasmEntry{fmt.Sprintf("SET %d,(IX%%s)", y), 5}
	}
	return &t
}

// Z80Disassembler renders instructions read through a memory callback.
type Z80Disassembler struct {
	read func(addr uint16) byte
	out  io.Writer
}

// NewZ80Disassembler returns a disassembler over read. out receives the
// lines written by Disassemble and may be nil when only Decode is used.
func NewZ80Disassembler(read func(addr uint16) byte, out io.Writer) *Z80Disassembler {
	return &Z80Disassembler{read: read, out: out}
}

func formatZ80Disp(d byte) string {
	v := int(int8(d))
	if v < 0 {
		return fmt.Sprintf("-$%02X", -v)
	}
	return fmt.Sprintf("+$%02X", v)
}

// Decode disassembles the instruction at pc without side effects.
func (d *Z80Disassembler) Decode(pc uint16) DisassembledLine {
	addr := pc
	var raw []byte
	fetch := func() byte {
		b := d.read(addr)
		addr++
		raw = append(raw, b)
		return b
	}

	table := z80TableBase
	useIY := false
	var disp byte
	var mnemonic string

	for {
		op := fetch()
		e := z80DisasmTables[table][op]
		if e.format == "" {
			if e.arity == 0 {
				mnemonic = formatZ80DB(raw)
				break
			}
			table = e.arity
			switch table {
			case z80TableDD:
				useIY = false
			case z80TableFD:
				useIY = true
			case z80TableIndexCB:
				disp = fetch()
			}
			continue
		}

		switch e.arity {
		case 0:
			mnemonic = e.format
		case 1:
			mnemonic = fmt.Sprintf(e.format, fetch())
		case 2:
			lo := fetch()
			hi := fetch()
			mnemonic = fmt.Sprintf(e.format, uint16(hi)<<8|uint16(lo))
		case -1:
			rel := fetch()
			mnemonic = fmt.Sprintf(e.format, addr+uint16(int16(int8(rel))))
		case 3:
			mnemonic = fmt.Sprintf(e.format, formatZ80Disp(fetch()))
		case 4:
			dd := fetch()
			mnemonic = fmt.Sprintf(e.format, formatZ80Disp(dd), fetch())
		case 5:
			mnemonic = fmt.Sprintf(e.format, formatZ80Disp(disp))
		}
		break
	}

	if useIY {
		mnemonic = strings.ReplaceAll(mnemonic, "IX", "IY")
	}

	hex := make([]string, len(raw))
	for i, b := range raw {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	return DisassembledLine{
		Address:  pc,
		HexBytes: strings.Join(hex, " "),
		Mnemonic: mnemonic,
		Size:     len(raw),
	}
}

func formatZ80DB(raw []byte) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("$%02X", b)
	}
	return "DB " + strings.Join(parts, ",")
}

// Length returns how many bytes the instruction at pc occupies.
func (d *Z80Disassembler) Length(pc uint16) int {
	return d.Decode(pc).Size
}

// Disassemble writes one line for the instruction at pc and returns the
// address of the next instruction.
func (d *Z80Disassembler) Disassemble(pc uint16) uint16 {
	line := d.Decode(pc)
	if d.out != nil {
		fmt.Fprintf(d.out, "%04X  %-11s  %s\n", line.Address, line.HexBytes, line.Mnemonic)
	}
	return pc + uint16(line.Size)
}

// disassembleZ80 decodes count consecutive instructions starting at addr.
func disassembleZ80(read func(addr uint16) byte, addr uint16, count int) []DisassembledLine {
	d := NewZ80Disassembler(read, nil)
	lines := make([]DisassembledLine, 0, count)
	for range count {
		line := d.Decode(addr)
		lines = append(lines, line)
		addr += uint16(line.Size)
	}
	return lines
}
