package main

// Block transfer, search and I/O instructions. The repeating forms rewind PC
// onto themselves while work remains, so a counter that starts at zero runs
// the full 65536 (BC) or 256 (B) iterations.

func (c *CPU_Z80) ldStep(dir int) {
	value := c.read(c.HL())
	c.write(c.DE(), value)
	c.SetHL(c.HL() + uint16(dir))
	c.SetDE(c.DE() + uint16(dir))
	bc := c.BC() - 1
	c.SetBC(bc)
	c.ldFlags(value, bc)
	c.tick(16)
}

func (c *CPU_Z80) ldFlags(value byte, bc uint16) {
	n := c.A + value
	f := c.F&(z80FlagS|z80FlagZ|z80FlagC) | n&z80FlagX | (n<<4)&z80FlagY
	if bc != 0 {
		f |= z80FlagPV
	}
	c.F = f
}

func (c *CPU_Z80) opLDI() { c.ldStep(1) }
func (c *CPU_Z80) opLDD() { c.ldStep(-1) }

func (c *CPU_Z80) opLDIR() { c.ldRepeat(1) }
func (c *CPU_Z80) opLDDR() { c.ldRepeat(-1) }

func (c *CPU_Z80) ldRepeat(dir int) {
	if bb, ok := c.bus.(Z80BlockBus); ok {
		c.ldBlockFast(bb, dir)
		return
	}
	c.ldStep(dir)
	if c.BC() != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

// ldBlockFast hands the whole copy to the bus and leaves the CPU in the state
// the iterated form would reach.
func (c *CPU_Z80) ldBlockFast(bb Z80BlockBus, dir int) {
	count := int(c.BC())
	if count == 0 {
		count = 0x10000
	}
	src, dest := c.HL(), c.DE()
	last := bb.BlockTransfer(dest, src, dir, count)

	c.SetHL(src + uint16(dir*count))
	c.SetDE(dest + uint16(dir*count))
	c.SetBC(0)
	c.ldFlags(last, 0)
	c.tick(21*count - 5)
}

func (c *CPU_Z80) cpStep(dir int) {
	value := c.read(c.HL())
	carry := c.carryBit()
	res := c.sub8(c.A, value, 0)
	c.SetHL(c.HL() + uint16(dir))
	bc := c.BC() - 1
	c.SetBC(bc)

	n := res
	if c.IsHalfCarry() {
		n--
	}
	f := c.F&(z80FlagS|z80FlagZ|z80FlagH) | z80FlagN | carry | n&z80FlagX | (n<<4)&z80FlagY
	if bc != 0 {
		f |= z80FlagPV
	}
	c.F = f
	c.tick(16)
}

func (c *CPU_Z80) opCPI() { c.cpStep(1) }
func (c *CPU_Z80) opCPD() { c.cpStep(-1) }

func (c *CPU_Z80) opCPIR() { c.cpRepeat(1) }
func (c *CPU_Z80) opCPDR() { c.cpRepeat(-1) }

func (c *CPU_Z80) cpRepeat(dir int) {
	c.cpStep(dir)
	if c.BC() != 0 && !c.IsZero() {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU_Z80) ioFlags() {
	f := c.F&^(z80FlagZ|z80FlagS) | z80FlagN
	if c.B == 0 {
		f |= z80FlagZ
	}
	if c.B&0x80 != 0 {
		f |= z80FlagS
	}
	c.F = f
}

func (c *CPU_Z80) inStep(dir int) {
	value := c.in(c.BC())
	c.write(c.HL(), value)
	c.B--
	c.SetHL(c.HL() + uint16(dir))
	c.ioFlags()
	c.tick(16)
}

func (c *CPU_Z80) outStep(dir int) {
	value := c.read(c.HL())
	c.B--
	c.out(c.BC(), value)
	c.SetHL(c.HL() + uint16(dir))
	c.ioFlags()
	c.tick(16)
}

func (c *CPU_Z80) opINI()  { c.inStep(1) }
func (c *CPU_Z80) opIND()  { c.inStep(-1) }
func (c *CPU_Z80) opOUTI() { c.outStep(1) }
func (c *CPU_Z80) opOUTD() { c.outStep(-1) }

func (c *CPU_Z80) opINIR() {
	c.inStep(1)
	c.repeatWhileB()
}

func (c *CPU_Z80) opINDR() {
	c.inStep(-1)
	c.repeatWhileB()
}

func (c *CPU_Z80) opOTIR() {
	c.outStep(1)
	c.repeatWhileB()
}

func (c *CPU_Z80) opOTDR() {
	c.outStep(-1)
	c.repeatWhileB()
}

func (c *CPU_Z80) repeatWhileB() {
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}
