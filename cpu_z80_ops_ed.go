package main

// initEDOps installs the documented ED page plus IN F,(C) (ED70). Every
// other ED value is left undefined.
func (c *CPU_Z80) initEDOps() {
	for i := range c.edOps {
		c.edOps[i] = (*CPU_Z80).opUndefined
	}

	for reg := byte(0); reg < 8; reg++ {
		r := reg
		c.edOps[0x40|r<<3] = func(cpu *CPU_Z80) { cpu.opINRegC(r) }
		if r != 6 {
			c.edOps[0x41|r<<3] = func(cpu *CPU_Z80) { cpu.opOUTCReg(r) }
		}
	}

	for pair := byte(0); pair < 4; pair++ {
		rr := pair
		c.edOps[0x42|rr<<4] = func(cpu *CPU_Z80) {
			cpu.sbcHL(cpu.reg16(rr))
			cpu.tick(15)
		}
		c.edOps[0x4A|rr<<4] = func(cpu *CPU_Z80) {
			cpu.adcHL(cpu.reg16(rr))
			cpu.tick(15)
		}
		c.edOps[0x43|rr<<4] = func(cpu *CPU_Z80) {
			cpu.writeWord(cpu.fetchWord(), cpu.reg16(rr))
			cpu.tick(20)
		}
		c.edOps[0x4B|rr<<4] = func(cpu *CPU_Z80) {
			cpu.setReg16(rr, cpu.readWord(cpu.fetchWord()))
			cpu.tick(20)
		}
	}

	c.edOps[0x44] = (*CPU_Z80).opNEG
	c.edOps[0x45] = (*CPU_Z80).opRETN
	c.edOps[0x4D] = (*CPU_Z80).opRETI
	c.edOps[0x46] = func(cpu *CPU_Z80) { cpu.opIM(0) }
	c.edOps[0x56] = func(cpu *CPU_Z80) { cpu.opIM(1) }
	c.edOps[0x5E] = func(cpu *CPU_Z80) { cpu.opIM(2) }
	c.edOps[0x47] = (*CPU_Z80).opLDIA
	c.edOps[0x4F] = (*CPU_Z80).opLDRA
	c.edOps[0x57] = (*CPU_Z80).opLDAI
	c.edOps[0x5F] = (*CPU_Z80).opLDAR
	c.edOps[0x67] = (*CPU_Z80).opRRD
	c.edOps[0x6F] = (*CPU_Z80).opRLD

	c.edOps[0xA0] = (*CPU_Z80).opLDI
	c.edOps[0xA1] = (*CPU_Z80).opCPI
	c.edOps[0xA2] = (*CPU_Z80).opINI
	c.edOps[0xA3] = (*CPU_Z80).opOUTI
	c.edOps[0xA8] = (*CPU_Z80).opLDD
	c.edOps[0xA9] = (*CPU_Z80).opCPD
	c.edOps[0xAA] = (*CPU_Z80).opIND
	c.edOps[0xAB] = (*CPU_Z80).opOUTD
	c.edOps[0xB0] = (*CPU_Z80).opLDIR
	c.edOps[0xB1] = (*CPU_Z80).opCPIR
	c.edOps[0xB2] = (*CPU_Z80).opINIR
	c.edOps[0xB3] = (*CPU_Z80).opOTIR
	c.edOps[0xB8] = (*CPU_Z80).opLDDR
	c.edOps[0xB9] = (*CPU_Z80).opCPDR
	c.edOps[0xBA] = (*CPU_Z80).opINDR
	c.edOps[0xBB] = (*CPU_Z80).opOTDR
}

// opINRegC is IN r,(C). Register code 6 only sets flags.
func (c *CPU_Z80) opINRegC(reg byte) {
	value := c.in(c.BC())
	if reg != 6 {
		c.writeReg8(reg, value)
	}
	c.inFlags(value)
	c.tick(12)
}

func (c *CPU_Z80) opOUTCReg(reg byte) {
	c.out(c.BC(), c.readReg8(reg))
	c.tick(12)
}

func (c *CPU_Z80) opNEG() {
	c.neg8()
	c.tick(8)
}

func (c *CPU_Z80) opRETN() {
	c.PC = c.popWord()
	c.IFF1 = c.IFF2
	c.tick(14)
}

func (c *CPU_Z80) opRETI() {
	c.PC = c.popWord()
	c.IFF1 = c.IFF2
	c.tick(14)
}

func (c *CPU_Z80) opIM(mode byte) {
	c.IM = mode
	c.tick(8)
}

func (c *CPU_Z80) opLDIA() {
	c.I = c.A
	c.tick(9)
}

func (c *CPU_Z80) opLDRA() {
	c.R = c.A
	c.tick(9)
}

func (c *CPU_Z80) opLDAI() {
	c.A = c.I
	c.irFlags()
	c.tick(9)
}

func (c *CPU_Z80) opLDAR() {
	c.A = c.RefreshValue()
	c.irFlags()
	c.tick(9)
}

func (c *CPU_Z80) opRRD() {
	c.rrd()
	c.tick(18)
}

func (c *CPU_Z80) opRLD() {
	c.rld()
	c.tick(18)
}
