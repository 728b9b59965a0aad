package main

// The index page is shared by DD and FD. The prefix handler points c.idx at
// IX or IY before dispatching here.
func (c *CPU_Z80) initIndexOps() {
	for i := range c.indexOps {
		c.indexOps[i] = (*CPU_Z80).opUndefined
	}

	for pair := byte(0); pair < 4; pair++ {
		rr := pair
		c.indexOps[0x09|rr<<4] = func(cpu *CPU_Z80) {
			*cpu.idx = cpu.add16(*cpu.idx, cpu.indexPair(rr))
			cpu.tick(15)
		}
	}

	c.indexOps[0x21] = (*CPU_Z80).opLDIndexNN
	c.indexOps[0x22] = (*CPU_Z80).opLDNNIndex
	c.indexOps[0x2A] = (*CPU_Z80).opLDIndexNNMem
	c.indexOps[0x23] = (*CPU_Z80).opINCIndex
	c.indexOps[0x2B] = (*CPU_Z80).opDECIndex
	c.indexOps[0x34] = (*CPU_Z80).opINCIndexMem
	c.indexOps[0x35] = (*CPU_Z80).opDECIndexMem
	c.indexOps[0x36] = (*CPU_Z80).opLDIndexMemImm
	c.indexOps[0xE1] = (*CPU_Z80).opPOPIndex
	c.indexOps[0xE3] = (*CPU_Z80).opEXSPIndex
	c.indexOps[0xE5] = (*CPU_Z80).opPUSHIndex
	c.indexOps[0xE9] = (*CPU_Z80).opJPIndex
	c.indexOps[0xF9] = (*CPU_Z80).opLDSPIndex
	c.indexOps[0xCB] = (*CPU_Z80).opIndexCBPrefix

	// Halves of the index register.
	for _, half := range []byte{4, 5} {
		r := half
		c.indexOps[0x04|r<<3] = func(cpu *CPU_Z80) {
			cpu.writeIndexReg8(r, cpu.inc8(cpu.readIndexReg8(r)))
			cpu.tick(8)
		}
		c.indexOps[0x05|r<<3] = func(cpu *CPU_Z80) {
			cpu.writeIndexReg8(r, cpu.dec8(cpu.readIndexReg8(r)))
			cpu.tick(8)
		}
		c.indexOps[0x06|r<<3] = func(cpu *CPU_Z80) {
			cpu.writeIndexReg8(r, cpu.fetchByte())
			cpu.tick(11)
		}
	}

	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		dest := byte(opcode>>3) & 0x07
		src := byte(opcode) & 0x07
		switch {
		case opcode == 0x76:
		case src == 6:
			c.indexOps[opcode] = func(cpu *CPU_Z80) {
				cpu.writeReg8(dest, cpu.read(cpu.fetchDisp(*cpu.idx)))
				cpu.tick(19)
			}
		case dest == 6:
			c.indexOps[opcode] = func(cpu *CPU_Z80) {
				cpu.write(cpu.fetchDisp(*cpu.idx), cpu.readReg8(src))
				cpu.tick(19)
			}
		case isIndexHalf(dest) || isIndexHalf(src):
			c.indexOps[opcode] = func(cpu *CPU_Z80) {
				cpu.writeIndexReg8(dest, cpu.readIndexReg8(src))
				cpu.tick(8)
			}
		}
	}

	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op := aluOp((opcode >> 3) & 0x07)
		src := byte(opcode) & 0x07
		switch {
		case src == 6:
			c.indexOps[opcode] = func(cpu *CPU_Z80) {
				cpu.performALU(op, cpu.read(cpu.fetchDisp(*cpu.idx)))
				cpu.tick(19)
			}
		case isIndexHalf(src):
			c.indexOps[opcode] = func(cpu *CPU_Z80) {
				cpu.performALU(op, cpu.readIndexReg8(src))
				cpu.tick(8)
			}
		}
	}
}

// Only the (IX+d) column of the DDCB/FDCB page is defined.
func (c *CPU_Z80) initIndexCBOps() {
	for i := range c.indexCBOps {
		c.indexCBOps[i] = (*CPU_Z80).opUndefined
	}
	for y := byte(0); y < 8; y++ {
		n := y
		c.indexCBOps[0x06|n<<3] = func(cpu *CPU_Z80) {
			cpu.write(cpu.indexAddr, cpu.rotShift(n, cpu.read(cpu.indexAddr)))
			cpu.tick(23)
		}
		c.indexCBOps[0x46|n<<3] = func(cpu *CPU_Z80) {
			cpu.bitTest(n, cpu.read(cpu.indexAddr))
			cpu.tick(20)
		}
		c.indexCBOps[0x86|n<<3] = func(cpu *CPU_Z80) {
			cpu.write(cpu.indexAddr, cpu.read(cpu.indexAddr)&^(1<<n))
			cpu.tick(23)
		}
		c.indexCBOps[0xC6|n<<3] = func(cpu *CPU_Z80) {
			cpu.write(cpu.indexAddr, cpu.read(cpu.indexAddr)|1<<n)
			cpu.tick(23)
		}
	}
}

func isIndexHalf(code byte) bool {
	return code == 4 || code == 5
}

// indexPair is reg16 with HL replaced by the active index register.
func (c *CPU_Z80) indexPair(code byte) uint16 {
	if code == 2 {
		return *c.idx
	}
	return c.reg16(code)
}

func (c *CPU_Z80) readIndexReg8(code byte) byte {
	switch code {
	case 4:
		return byte(*c.idx >> 8)
	case 5:
		return byte(*c.idx)
	default:
		return c.readReg8(code)
	}
}

func (c *CPU_Z80) writeIndexReg8(code byte, value byte) {
	switch code {
	case 4:
		*c.idx = *c.idx&0x00FF | uint16(value)<<8
	case 5:
		*c.idx = *c.idx&0xFF00 | uint16(value)
	default:
		c.writeReg8(code, value)
	}
}

// opIndexCBPrefix fetches the displacement before the final opcode byte.
func (c *CPU_Z80) opIndexCBPrefix() {
	c.indexAddr = c.fetchDisp(*c.idx)
	opcode := c.fetchOpcode()
	c.indexCBOps[opcode](c)
}

func (c *CPU_Z80) opLDIndexNN() {
	*c.idx = c.fetchWord()
	c.tick(14)
}

func (c *CPU_Z80) opLDNNIndex() {
	c.writeWord(c.fetchWord(), *c.idx)
	c.tick(20)
}

func (c *CPU_Z80) opLDIndexNNMem() {
	*c.idx = c.readWord(c.fetchWord())
	c.tick(20)
}

func (c *CPU_Z80) opINCIndex() {
	*c.idx++
	c.tick(10)
}

func (c *CPU_Z80) opDECIndex() {
	*c.idx--
	c.tick(10)
}

func (c *CPU_Z80) opINCIndexMem() {
	addr := c.fetchDisp(*c.idx)
	c.write(addr, c.inc8(c.read(addr)))
	c.tick(23)
}

func (c *CPU_Z80) opDECIndexMem() {
	addr := c.fetchDisp(*c.idx)
	c.write(addr, c.dec8(c.read(addr)))
	c.tick(23)
}

func (c *CPU_Z80) opLDIndexMemImm() {
	addr := c.fetchDisp(*c.idx)
	c.write(addr, c.fetchByte())
	c.tick(19)
}

func (c *CPU_Z80) opPUSHIndex() {
	c.pushWord(*c.idx)
	c.tick(15)
}

func (c *CPU_Z80) opPOPIndex() {
	*c.idx = c.popWord()
	c.tick(14)
}

func (c *CPU_Z80) opEXSPIndex() {
	mem := c.readWord(c.SP)
	c.writeWord(c.SP, *c.idx)
	*c.idx = mem
	c.tick(23)
}

func (c *CPU_Z80) opJPIndex() {
	c.PC = *c.idx
	c.tick(8)
}

func (c *CPU_Z80) opLDSPIndex() {
	c.SP = *c.idx
	c.tick(10)
}
