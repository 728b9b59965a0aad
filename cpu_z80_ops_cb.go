package main

// The CB page is fully populated, SLL (0x30-0x37) included.
func (c *CPU_Z80) initCBOps() {
	for opcode := 0; opcode < 0x100; opcode++ {
		op := byte(opcode)
		y := (op >> 3) & 0x07
		reg := op & 0x07
		switch op >> 6 {
		case 0:
			c.cbOps[op] = func(cpu *CPU_Z80) { cpu.opCBRotateShift(y, reg) }
		case 1:
			c.cbOps[op] = func(cpu *CPU_Z80) { cpu.opCBBIT(y, reg) }
		case 2:
			c.cbOps[op] = func(cpu *CPU_Z80) { cpu.opCBRES(y, reg) }
		default:
			c.cbOps[op] = func(cpu *CPU_Z80) { cpu.opCBSET(y, reg) }
		}
	}
}

func (c *CPU_Z80) opCBRotateShift(group, reg byte) {
	c.writeReg8(reg, c.rotShift(group, c.readReg8(reg)))
	c.cbTick(reg, 15)
}

func (c *CPU_Z80) opCBBIT(bit, reg byte) {
	c.bitTest(bit, c.readReg8(reg))
	c.cbTick(reg, 12)
}

func (c *CPU_Z80) opCBRES(bit, reg byte) {
	c.writeReg8(reg, c.readReg8(reg)&^(1<<bit))
	c.cbTick(reg, 15)
}

func (c *CPU_Z80) opCBSET(bit, reg byte) {
	c.writeReg8(reg, c.readReg8(reg)|1<<bit)
	c.cbTick(reg, 15)
}

func (c *CPU_Z80) cbTick(reg byte, memCycles int) {
	if reg == 6 {
		c.tick(memCycles)
	} else {
		c.tick(8)
	}
}
