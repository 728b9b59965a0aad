package main

type aluOp byte

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

func (c *CPU_Z80) performALU(op aluOp, value byte) {
	switch op {
	case aluAdd:
		c.A = c.add8(c.A, value, 0)
	case aluAdc:
		c.A = c.add8(c.A, value, c.carryBit())
	case aluSub:
		c.A = c.sub8(c.A, value, 0)
	case aluSbc:
		c.A = c.sub8(c.A, value, c.carryBit())
	case aluAnd:
		c.A &= value
		c.F = z80SZPTable[c.A] | z80FlagH
	case aluXor:
		c.A ^= value
		c.F = z80SZPTable[c.A]
	case aluOr:
		c.A |= value
		c.F = z80SZPTable[c.A]
	case aluCp:
		c.sub8(c.A, value, 0)
		// X and Y come from the operand, not the discarded result.
		c.F = c.F&^z80FlagsXY | value&z80FlagsXY
	}
}

func (c *CPU_Z80) add8(a, b, carry byte) byte {
	res := a + b + carry
	idx := z80FlagIndex8(a, b, res)
	c.F = z80AddSCVTable[idx>>4] | z80AddHalfTable[idx&7] | res&z80FlagsXY
	if res == 0 {
		c.F |= z80FlagZ
	}
	return res
}

func (c *CPU_Z80) sub8(a, b, borrow byte) byte {
	res := a - b - borrow
	idx := z80FlagIndex8(a, b, res)
	c.F = z80SubSCVTable[idx>>4] | z80SubHalfTable[idx&7] | z80FlagN | res&z80FlagsXY
	if res == 0 {
		c.F |= z80FlagZ
	}
	return res
}

func (c *CPU_Z80) inc8(value byte) byte {
	res := value + 1
	f := c.F&z80FlagC | z80SZPTable[res]&^z80FlagPV
	if value&0x0F == 0x0F {
		f |= z80FlagH
	}
	if value == 0x7F {
		f |= z80FlagPV
	}
	c.F = f
	return res
}

func (c *CPU_Z80) dec8(value byte) byte {
	res := value - 1
	f := c.F&z80FlagC | z80SZPTable[res]&^z80FlagPV | z80FlagN
	if value&0x0F == 0 {
		f |= z80FlagH
	}
	if value == 0x80 {
		f |= z80FlagPV
	}
	c.F = f
	return res
}

func (c *CPU_Z80) neg8() {
	a := c.A
	c.A = c.sub8(0, a, 0)
}

func (c *CPU_Z80) cpl8() {
	c.A = ^c.A
	c.F = c.F&(z80FlagS|z80FlagZ|z80FlagPV|z80FlagC) | z80FlagH | z80FlagN | c.A&z80FlagsXY
}

func (c *CPU_Z80) scf() {
	c.F = c.F&(z80FlagS|z80FlagZ|z80FlagPV) | z80FlagC | c.A&z80FlagsXY
}

func (c *CPU_Z80) ccf() {
	f := c.F & (z80FlagS | z80FlagZ | z80FlagPV)
	if c.IsCarry() {
		f |= z80FlagH
	} else {
		f |= z80FlagC
	}
	c.F = f | c.A&z80FlagsXY
}

// z80DAARule is one row of the DAA decision table. A row matches when the
// carry flag equals carry, the high nibble of A lies in [hiMin,hiMax], the
// half-carry flag matches half (-1 matches either) and the low nibble lies
// in [loMin,loMax]. Rows are tried in order.
type z80DAARule struct {
	carry        bool
	hiMin, hiMax byte
	half         int8
	loMin, loMax byte
	diff         byte
	carryOut     bool
}

var z80DAATable = []z80DAARule{
	{false, 0x0, 0x9, 0, 0x0, 0x9, 0x00, false},
	{false, 0x0, 0x9, 1, 0x0, 0x9, 0x06, false},
	{false, 0x0, 0x8, -1, 0xA, 0xF, 0x06, false},
	{false, 0xA, 0xF, 0, 0x0, 0x9, 0x60, true},
	{true, 0x0, 0xF, 0, 0x0, 0x9, 0x60, true},
	{true, 0x0, 0xF, 1, 0x0, 0x9, 0x66, true},
	{true, 0x0, 0xF, -1, 0xA, 0xF, 0x66, true},
	{false, 0x9, 0xF, -1, 0xA, 0xF, 0x66, true},
	{false, 0xA, 0xF, 1, 0x0, 0x9, 0x66, true},
}

func z80DAALookup(a byte, carry, half bool) (diff byte, carryOut bool) {
	hi, lo := a>>4, a&0x0F
	for _, r := range z80DAATable {
		if r.carry != carry || hi < r.hiMin || hi > r.hiMax || lo < r.loMin || lo > r.loMax {
			continue
		}
		if r.half >= 0 && (r.half == 1) != half {
			continue
		}
		return r.diff, r.carryOut
	}
	return 0, carry
}

func (c *CPU_Z80) daa() {
	a := c.A
	lo := a & 0x0F
	diff, carryOut := z80DAALookup(a, c.IsCarry(), c.IsHalfCarry())

	var halfOut bool
	if c.IsSubtract() {
		c.A = a - diff
		halfOut = c.IsHalfCarry() && lo < 0x6
	} else {
		c.A = a + diff
		halfOut = lo >= 0xA
	}

	f := z80SZPTable[c.A] | c.F&z80FlagN
	if halfOut {
		f |= z80FlagH
	}
	if carryOut {
		f |= z80FlagC
	}
	c.F = f
}

// add16 is ADD HL/IX/IY,rr: S, Z and PV are left alone.
func (c *CPU_Z80) add16(a, b uint16) uint16 {
	res := a + b
	idx := z80FlagIndex16(a, b, res)
	c.F = c.F&(z80FlagS|z80FlagZ|z80FlagPV) |
		z80AddSCVTable[idx>>4]&z80FlagC |
		z80AddHalfTable[idx&7] |
		byte(res>>8)&z80FlagsXY
	return res
}

func (c *CPU_Z80) adcHL(value uint16) {
	hl := c.HL()
	res := hl + value + uint16(c.carryBit())
	idx := z80FlagIndex16(hl, value, res)
	c.F = z80AddSCVTable[idx>>4] | z80AddHalfTable[idx&7] | byte(res>>8)&z80FlagsXY
	if res == 0 {
		c.F |= z80FlagZ
	}
	c.SetHL(res)
}

func (c *CPU_Z80) sbcHL(value uint16) {
	hl := c.HL()
	res := hl - value - uint16(c.carryBit())
	idx := z80FlagIndex16(hl, value, res)
	c.F = z80SubSCVTable[idx>>4] | z80SubHalfTable[idx&7] | z80FlagN | byte(res>>8)&z80FlagsXY
	if res == 0 {
		c.F |= z80FlagZ
	}
	c.SetHL(res)
}

// Accumulator rotates keep S, Z and PV.
func (c *CPU_Z80) rotateAFlags(carry byte) {
	c.F = c.F&(z80FlagS|z80FlagZ|z80FlagPV) | carry&z80FlagC | c.A&z80FlagsXY
}

func (c *CPU_Z80) rlca() {
	carry := c.A >> 7
	c.A = c.A<<1 | carry
	c.rotateAFlags(carry)
}

func (c *CPU_Z80) rrca() {
	carry := c.A & 1
	c.A = c.A>>1 | carry<<7
	c.rotateAFlags(carry)
}

func (c *CPU_Z80) rla() {
	carry := c.A >> 7
	c.A = c.A<<1 | c.carryBit()
	c.rotateAFlags(carry)
}

func (c *CPU_Z80) rra() {
	carry := c.A & 1
	c.A = c.A>>1 | c.carryBit()<<7
	c.rotateAFlags(carry)
}

// rotShift runs the CB-page rotate/shift selected by group (RLC RRC RL RR
// SLA SRA SLL SRL) and sets S, Z, PV and C from the result.
func (c *CPU_Z80) rotShift(group, value byte) byte {
	var res, carry byte
	switch group & 7 {
	case 0:
		carry = value >> 7
		res = value<<1 | carry
	case 1:
		carry = value & 1
		res = value>>1 | carry<<7
	case 2:
		carry = value >> 7
		res = value<<1 | c.carryBit()
	case 3:
		carry = value & 1
		res = value>>1 | c.carryBit()<<7
	case 4:
		carry = value >> 7
		res = value << 1
	case 5:
		carry = value & 1
		res = value>>1 | value&0x80
	case 6:
		carry = value >> 7
		res = value<<1 | 1
	case 7:
		carry = value & 1
		res = value >> 1
	}
	c.F = z80SZPTable[res] | carry
	return res
}

func (c *CPU_Z80) bitTest(bit, value byte) {
	mask := byte(1) << bit
	f := c.F&z80FlagC | z80FlagH | value&z80FlagsXY
	if value&mask == 0 {
		f |= z80FlagZ | z80FlagPV
	} else if bit == 7 {
		f |= z80FlagS
	}
	c.F = f
}

func (c *CPU_Z80) rld() {
	addr := c.HL()
	value := c.read(addr)
	c.write(addr, value<<4|c.A&0x0F)
	c.A = c.A&0xF0 | value>>4
	c.F = c.F&z80FlagC | z80SZPTable[c.A]
}

func (c *CPU_Z80) rrd() {
	addr := c.HL()
	value := c.read(addr)
	c.write(addr, value>>4|c.A<<4)
	c.A = c.A&0xF0 | value&0x0F
	c.F = c.F&z80FlagC | z80SZPTable[c.A]
}

// inFlags is the flag update of IN r,(C).
func (c *CPU_Z80) inFlags(value byte) {
	c.F = c.F&z80FlagC | z80SZPTable[value]
}

// irFlags is the flag update of LD A,I and LD A,R: PV mirrors IFF2.
func (c *CPU_Z80) irFlags() {
	f := c.F&z80FlagC | z80SZPTable[c.A]&^z80FlagPV
	if c.IFF2 != 0 {
		f |= z80FlagPV
	}
	c.F = f
}
