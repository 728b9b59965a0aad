package main

const (
	z80FlagS  = 0x80
	z80FlagZ  = 0x40
	z80FlagY  = 0x20
	z80FlagH  = 0x10
	z80FlagX  = 0x08
	z80FlagPV = 0x04
	z80FlagN  = 0x02
	z80FlagC  = 0x01

	z80FlagsXY = z80FlagX | z80FlagY
)

// Flag contributions for an 8-bit addition, indexed by the bit 7 pattern of
// (operand a, operand b, result) packed as a<<2 | b<<1 | result.
var z80AddSCVTable = [8]byte{
	0,
	z80FlagPV | z80FlagS,
	z80FlagC,
	z80FlagS,
	z80FlagC,
	z80FlagS,
	z80FlagC | z80FlagPV,
	z80FlagC | z80FlagS,
}

// Half-carry for an addition, indexed by the same pattern taken from bit 3.
var z80AddHalfTable = [8]byte{
	0,
	0,
	z80FlagH,
	0,
	z80FlagH,
	0,
	z80FlagH,
	z80FlagH,
}

// Subtraction mirrors: borrow out of bit 7 instead of carry.
var z80SubSCVTable = [8]byte{
	0,
	z80FlagC | z80FlagS,
	z80FlagC,
	z80FlagPV | z80FlagC | z80FlagS,
	z80FlagPV,
	z80FlagS,
	0,
	z80FlagC | z80FlagS,
}

var z80SubHalfTable = [8]byte{
	0,
	z80FlagH,
	z80FlagH,
	z80FlagH,
	0,
	0,
	0,
	z80FlagH,
}

// z80ParityTable holds 1 for bytes with an even number of set bits.
var z80ParityTable [256]byte

// z80SZPTable holds S, Z, PV (parity) and the X/Y copies for every byte.
var z80SZPTable [256]byte

func init() {
	for i := range 256 {
		v := byte(i)
		bits := 0
		for b := v; b != 0; b &= b - 1 {
			bits++
		}
		if bits%2 == 0 {
			z80ParityTable[i] = 1
		}

		f := v & (z80FlagS | z80FlagsXY)
		if v == 0 {
			f |= z80FlagZ
		}
		if z80ParityTable[i] == 1 {
			f |= z80FlagPV
		}
		z80SZPTable[i] = f
	}
}

// z80FlagIndex8 packs bits 7 and 3 of the operands and result into the
// table index used by the 8-bit flag tables: high nibble selects S/C/V,
// low three bits select H.
func z80FlagIndex8(a, b, res byte) byte {
	return (a&0x88)>>1 | (b&0x88)>>2 | (res&0x88)>>3
}

// z80FlagIndex16 is z80FlagIndex8 applied to bits 15 and 11.
func z80FlagIndex16(a, b, res uint16) byte {
	return byte((a&0x8800)>>9 | (b&0x8800)>>10 | (res&0x8800)>>11)
}

func parity8(value byte) bool {
	return z80ParityTable[value] == 1
}

func (c *CPU_Z80) Flag(mask byte) bool {
	return c.F&mask != 0
}

func (c *CPU_Z80) SetFlag(mask byte, on bool) {
	if on {
		c.F |= mask
	} else {
		c.F &^= mask
	}
}

func (c *CPU_Z80) IsSign() bool      { return c.F&z80FlagS != 0 }
func (c *CPU_Z80) IsZero() bool      { return c.F&z80FlagZ != 0 }
func (c *CPU_Z80) IsHalfCarry() bool { return c.F&z80FlagH != 0 }
func (c *CPU_Z80) IsOverflow() bool  { return c.F&z80FlagPV != 0 }
func (c *CPU_Z80) IsSubtract() bool  { return c.F&z80FlagN != 0 }
func (c *CPU_Z80) IsCarry() bool     { return c.F&z80FlagC != 0 }

func (c *CPU_Z80) carryBit() byte {
	return c.F & z80FlagC
}
