package main

func (c *CPU_Z80) initBaseOps() {
	for i := range c.baseOps {
		c.baseOps[i] = (*CPU_Z80).opUndefined
	}

	c.baseOps[0x00] = (*CPU_Z80).opNOP
	c.baseOps[0x76] = (*CPU_Z80).opHALT

	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		if opcode == 0x76 {
			continue
		}
		dest := byte(opcode>>3) & 0x07
		src := byte(opcode) & 0x07
		c.baseOps[opcode] = func(cpu *CPU_Z80) {
			cpu.opLDRegReg(dest, src)
		}
	}

	for reg := byte(0); reg < 8; reg++ {
		r := reg
		c.baseOps[0x06|r<<3] = func(cpu *CPU_Z80) { cpu.opLDRegImm(r) }
		c.baseOps[0x04|r<<3] = func(cpu *CPU_Z80) { cpu.opINCReg(r) }
		c.baseOps[0x05|r<<3] = func(cpu *CPU_Z80) { cpu.opDECReg(r) }
	}

	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op := aluOp((opcode >> 3) & 0x07)
		src := byte(opcode) & 0x07
		c.baseOps[opcode] = func(cpu *CPU_Z80) {
			cpu.opALUReg(op, src)
		}
	}
	for n := byte(0); n < 8; n++ {
		op := aluOp(n)
		c.baseOps[0xC6|n<<3] = func(cpu *CPU_Z80) {
			cpu.performALU(op, cpu.fetchByte())
			cpu.tick(7)
		}
	}

	for pair := byte(0); pair < 4; pair++ {
		rr := pair
		c.baseOps[0x01|rr<<4] = func(cpu *CPU_Z80) {
			cpu.setReg16(rr, cpu.fetchWord())
			cpu.tick(10)
		}
		c.baseOps[0x03|rr<<4] = func(cpu *CPU_Z80) {
			cpu.setReg16(rr, cpu.reg16(rr)+1)
			cpu.tick(6)
		}
		c.baseOps[0x0B|rr<<4] = func(cpu *CPU_Z80) {
			cpu.setReg16(rr, cpu.reg16(rr)-1)
			cpu.tick(6)
		}
		c.baseOps[0x09|rr<<4] = func(cpu *CPU_Z80) {
			cpu.SetHL(cpu.add16(cpu.HL(), cpu.reg16(rr)))
			cpu.tick(11)
		}
	}

	// PUSH/POP use AF in place of SP.
	for pair := byte(0); pair < 4; pair++ {
		rr := pair
		c.baseOps[0xC5|rr<<4] = func(cpu *CPU_Z80) {
			cpu.pushWord(cpu.stackReg(rr))
			cpu.tick(11)
		}
		c.baseOps[0xC1|rr<<4] = func(cpu *CPU_Z80) {
			cpu.setStackReg(rr, cpu.popWord())
			cpu.tick(10)
		}
	}

	for cc := byte(0); cc < 8; cc++ {
		code := cc
		c.baseOps[0xC2|code<<3] = func(cpu *CPU_Z80) { cpu.jpCond(cpu.cond(code)) }
		c.baseOps[0xC4|code<<3] = func(cpu *CPU_Z80) { cpu.callCond(cpu.cond(code)) }
		c.baseOps[0xC0|code<<3] = func(cpu *CPU_Z80) { cpu.retCond(cpu.cond(code)) }
		vector := uint16(code) << 3
		c.baseOps[0xC7|code<<3] = func(cpu *CPU_Z80) { cpu.opRST(vector) }
	}
	for cc := byte(0); cc < 4; cc++ {
		code := cc
		c.baseOps[0x20|code<<3] = func(cpu *CPU_Z80) { cpu.jrCond(cpu.cond(code)) }
	}

	c.baseOps[0x02] = (*CPU_Z80).opLDBCA
	c.baseOps[0x0A] = (*CPU_Z80).opLDABC
	c.baseOps[0x12] = (*CPU_Z80).opLDDEA
	c.baseOps[0x1A] = (*CPU_Z80).opLDADE
	c.baseOps[0x22] = (*CPU_Z80).opLDNNHL
	c.baseOps[0x2A] = (*CPU_Z80).opLDHLNN
	c.baseOps[0x32] = (*CPU_Z80).opLDNNA
	c.baseOps[0x3A] = (*CPU_Z80).opLDANN

	c.baseOps[0x07] = (*CPU_Z80).opRLCA
	c.baseOps[0x0F] = (*CPU_Z80).opRRCA
	c.baseOps[0x17] = (*CPU_Z80).opRLA
	c.baseOps[0x1F] = (*CPU_Z80).opRRA
	c.baseOps[0x27] = (*CPU_Z80).opDAA
	c.baseOps[0x2F] = (*CPU_Z80).opCPL
	c.baseOps[0x37] = (*CPU_Z80).opSCF
	c.baseOps[0x3F] = (*CPU_Z80).opCCF

	c.baseOps[0x08] = (*CPU_Z80).opEXAF
	c.baseOps[0x10] = (*CPU_Z80).opDJNZ
	c.baseOps[0x18] = (*CPU_Z80).opJR
	c.baseOps[0xC3] = (*CPU_Z80).opJPNN
	c.baseOps[0xC9] = (*CPU_Z80).opRET
	c.baseOps[0xCD] = (*CPU_Z80).opCALLNN
	c.baseOps[0xD3] = (*CPU_Z80).opOUTNA
	c.baseOps[0xD9] = (*CPU_Z80).opEXX
	c.baseOps[0xDB] = (*CPU_Z80).opINAN
	c.baseOps[0xE3] = (*CPU_Z80).opEXSPHL
	c.baseOps[0xE9] = (*CPU_Z80).opJPHL
	c.baseOps[0xEB] = (*CPU_Z80).opEXDEHL
	c.baseOps[0xF3] = (*CPU_Z80).opDI
	c.baseOps[0xF9] = (*CPU_Z80).opLDSPHL
	c.baseOps[0xFB] = (*CPU_Z80).opEI

	c.baseOps[0xCB] = (*CPU_Z80).opCBPrefix
	c.baseOps[0xDD] = (*CPU_Z80).opDDPrefix
	c.baseOps[0xED] = (*CPU_Z80).opEDPrefix
	c.baseOps[0xFD] = (*CPU_Z80).opFDPrefix
}

func (c *CPU_Z80) stackReg(code byte) uint16 {
	if code == 3 {
		return c.AF()
	}
	return c.reg16(code)
}

func (c *CPU_Z80) setStackReg(code byte, value uint16) {
	if code == 3 {
		c.SetAF(value)
		return
	}
	c.setReg16(code, value)
}

func (c *CPU_Z80) opNOP() {
	c.tick(4)
}

// opHALT parks PC on the HALT itself; interrupt service steps past it.
func (c *CPU_Z80) opHALT() {
	c.Halted = true
	c.PC--
	c.tick(4)
}

func (c *CPU_Z80) opLDRegReg(dest, src byte) {
	c.writeReg8(dest, c.readReg8(src))
	if dest == 6 || src == 6 {
		c.tick(7)
	} else {
		c.tick(4)
	}
}

func (c *CPU_Z80) opLDRegImm(dest byte) {
	c.writeReg8(dest, c.fetchByte())
	if dest == 6 {
		c.tick(10)
	} else {
		c.tick(7)
	}
}

func (c *CPU_Z80) opINCReg(reg byte) {
	c.writeReg8(reg, c.inc8(c.readReg8(reg)))
	if reg == 6 {
		c.tick(11)
	} else {
		c.tick(4)
	}
}

func (c *CPU_Z80) opDECReg(reg byte) {
	c.writeReg8(reg, c.dec8(c.readReg8(reg)))
	if reg == 6 {
		c.tick(11)
	} else {
		c.tick(4)
	}
}

func (c *CPU_Z80) opALUReg(op aluOp, src byte) {
	c.performALU(op, c.readReg8(src))
	if src == 6 {
		c.tick(7)
	} else {
		c.tick(4)
	}
}

func (c *CPU_Z80) opLDBCA() {
	c.write(c.BC(), c.A)
	c.tick(7)
}

func (c *CPU_Z80) opLDABC() {
	c.A = c.read(c.BC())
	c.tick(7)
}

func (c *CPU_Z80) opLDDEA() {
	c.write(c.DE(), c.A)
	c.tick(7)
}

func (c *CPU_Z80) opLDADE() {
	c.A = c.read(c.DE())
	c.tick(7)
}

func (c *CPU_Z80) opLDNNHL() {
	c.writeWord(c.fetchWord(), c.HL())
	c.tick(16)
}

func (c *CPU_Z80) opLDHLNN() {
	c.SetHL(c.readWord(c.fetchWord()))
	c.tick(16)
}

func (c *CPU_Z80) opLDNNA() {
	c.write(c.fetchWord(), c.A)
	c.tick(13)
}

func (c *CPU_Z80) opLDANN() {
	c.A = c.read(c.fetchWord())
	c.tick(13)
}

func (c *CPU_Z80) opRLCA() {
	c.rlca()
	c.tick(4)
}

func (c *CPU_Z80) opRRCA() {
	c.rrca()
	c.tick(4)
}

func (c *CPU_Z80) opRLA() {
	c.rla()
	c.tick(4)
}

func (c *CPU_Z80) opRRA() {
	c.rra()
	c.tick(4)
}

func (c *CPU_Z80) opDAA() {
	c.daa()
	c.tick(4)
}

func (c *CPU_Z80) opCPL() {
	c.cpl8()
	c.tick(4)
}

func (c *CPU_Z80) opSCF() {
	c.scf()
	c.tick(4)
}

func (c *CPU_Z80) opCCF() {
	c.ccf()
	c.tick(4)
}

func (c *CPU_Z80) opEXAF() {
	c.ExAF()
	c.tick(4)
}

func (c *CPU_Z80) opEXX() {
	c.Exx()
	c.tick(4)
}

func (c *CPU_Z80) opEXDEHL() {
	de := c.DE()
	c.SetDE(c.HL())
	c.SetHL(de)
	c.tick(4)
}

func (c *CPU_Z80) opEXSPHL() {
	mem := c.readWord(c.SP)
	c.writeWord(c.SP, c.HL())
	c.SetHL(mem)
	c.tick(19)
}

func (c *CPU_Z80) opDJNZ() {
	target := c.fetchDisp(c.PC + 1)
	c.B--
	if c.B != 0 {
		c.PC = target
		c.tick(13)
	} else {
		c.tick(8)
	}
}

func (c *CPU_Z80) opJR() {
	c.jrCond(true)
}

func (c *CPU_Z80) opJPNN() {
	c.PC = c.fetchWord()
	c.tick(10)
}

func (c *CPU_Z80) opJPHL() {
	c.PC = c.HL()
	c.tick(4)
}

func (c *CPU_Z80) opCALLNN() {
	c.callCond(true)
}

func (c *CPU_Z80) opRET() {
	c.PC = c.popWord()
	c.tick(10)
}

func (c *CPU_Z80) opRST(vector uint16) {
	c.pushWord(c.PC)
	c.PC = vector
	c.tick(11)
}

func (c *CPU_Z80) jpCond(cond bool) {
	addr := c.fetchWord()
	if cond {
		c.PC = addr
	}
	c.tick(10)
}

func (c *CPU_Z80) jrCond(cond bool) {
	// The displacement is relative to the address after the operand.
	target := c.fetchDisp(c.PC + 1)
	if cond {
		c.PC = target
		c.tick(12)
	} else {
		c.tick(7)
	}
}

func (c *CPU_Z80) callCond(cond bool) {
	addr := c.fetchWord()
	if cond {
		c.pushWord(c.PC)
		c.PC = addr
		c.tick(17)
	} else {
		c.tick(10)
	}
}

func (c *CPU_Z80) retCond(cond bool) {
	if cond {
		c.PC = c.popWord()
		c.tick(11)
	} else {
		c.tick(5)
	}
}

func (c *CPU_Z80) opOUTNA() {
	port := uint16(c.A)<<8 | uint16(c.fetchByte())
	c.out(port, c.A)
	c.tick(11)
}

func (c *CPU_Z80) opINAN() {
	port := uint16(c.A)<<8 | uint16(c.fetchByte())
	c.A = c.in(port)
	c.tick(11)
}

func (c *CPU_Z80) opLDSPHL() {
	c.SP = c.HL()
	c.tick(6)
}

func (c *CPU_Z80) opDI() {
	c.IFF1 = 0
	c.IFF2 = 0
	c.tick(4)
}

// opEI arms interrupts; they become live after the next instruction.
func (c *CPU_Z80) opEI() {
	c.IFF1 = 2
	c.IFF2 = 1
	c.tick(4)
}

func (c *CPU_Z80) opCBPrefix() {
	opcode := c.fetchOpcode()
	c.cbOps[opcode](c)
}

func (c *CPU_Z80) opEDPrefix() {
	opcode := c.fetchOpcode()
	c.edOps[opcode](c)
}

func (c *CPU_Z80) opDDPrefix() {
	c.idx = &c.IX
	opcode := c.fetchOpcode()
	c.indexOps[opcode](c)
}

func (c *CPU_Z80) opFDPrefix() {
	c.idx = &c.IY
	opcode := c.fetchOpcode()
	c.indexOps[opcode](c)
}
