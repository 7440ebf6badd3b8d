package cpu

import "github.com/gopsx/pstation/addr"

// --- ALU immediate ---

func (c *CPU) opAddi(instr uint32) {
	a := int32(c.Reg(rs(instr)))
	b := simm16(instr)
	result, overflow := addOverflows(a, b)
	if overflow {
		c.raiseException(addr.ExcOverflow, 0)
		return
	}
	c.SetReg(rt(instr), uint32(result))
}

func (c *CPU) opAddiu(instr uint32) {
	c.SetReg(rt(instr), c.Reg(rs(instr))+uint32(simm16(instr)))
}

func (c *CPU) opSlti(instr uint32) {
	if int32(c.Reg(rs(instr))) < simm16(instr) {
		c.SetReg(rt(instr), 1)
	} else {
		c.SetReg(rt(instr), 0)
	}
}

func (c *CPU) opSltiu(instr uint32) {
	if c.Reg(rs(instr)) < uint32(simm16(instr)) {
		c.SetReg(rt(instr), 1)
	} else {
		c.SetReg(rt(instr), 0)
	}
}

func (c *CPU) opAndi(instr uint32) { c.SetReg(rt(instr), c.Reg(rs(instr))&imm16(instr)) }
func (c *CPU) opOri(instr uint32)  { c.SetReg(rt(instr), c.Reg(rs(instr))|imm16(instr)) }
func (c *CPU) opXori(instr uint32) { c.SetReg(rt(instr), c.Reg(rs(instr))^imm16(instr)) }
func (c *CPU) opLui(instr uint32)  { c.SetReg(rt(instr), imm16(instr)<<16) }

// --- ALU register ---

func (c *CPU) opSll(instr uint32) { c.SetReg(rd(instr), c.Reg(rt(instr))<<shamt(instr)) }
func (c *CPU) opSrl(instr uint32) { c.SetReg(rd(instr), c.Reg(rt(instr))>>shamt(instr)) }
func (c *CPU) opSra(instr uint32) {
	c.SetReg(rd(instr), uint32(int32(c.Reg(rt(instr)))>>shamt(instr)))
}
func (c *CPU) opSllv(instr uint32) {
	c.SetReg(rd(instr), c.Reg(rt(instr))<<(c.Reg(rs(instr))&0x1F))
}
func (c *CPU) opSrlv(instr uint32) {
	c.SetReg(rd(instr), c.Reg(rt(instr))>>(c.Reg(rs(instr))&0x1F))
}
func (c *CPU) opSrav(instr uint32) {
	c.SetReg(rd(instr), uint32(int32(c.Reg(rt(instr)))>>(c.Reg(rs(instr))&0x1F)))
}

func (c *CPU) opAdd(instr uint32) {
	a := int32(c.Reg(rs(instr)))
	b := int32(c.Reg(rt(instr)))
	result, overflow := addOverflows(a, b)
	if overflow {
		c.raiseException(addr.ExcOverflow, 0)
		return
	}
	c.SetReg(rd(instr), uint32(result))
}

func (c *CPU) opAddu(instr uint32) { c.SetReg(rd(instr), c.Reg(rs(instr))+c.Reg(rt(instr))) }

func (c *CPU) opSub(instr uint32) {
	a := int32(c.Reg(rs(instr)))
	b := int32(c.Reg(rt(instr)))
	result, overflow := subOverflows(a, b)
	if overflow {
		c.raiseException(addr.ExcOverflow, 0)
		return
	}
	c.SetReg(rd(instr), uint32(result))
}

func (c *CPU) opSubu(instr uint32) { c.SetReg(rd(instr), c.Reg(rs(instr))-c.Reg(rt(instr))) }
func (c *CPU) opAnd(instr uint32)  { c.SetReg(rd(instr), c.Reg(rs(instr))&c.Reg(rt(instr))) }
func (c *CPU) opOr(instr uint32)   { c.SetReg(rd(instr), c.Reg(rs(instr))|c.Reg(rt(instr))) }
func (c *CPU) opXor(instr uint32)  { c.SetReg(rd(instr), c.Reg(rs(instr))^c.Reg(rt(instr))) }
func (c *CPU) opNor(instr uint32)  { c.SetReg(rd(instr), ^(c.Reg(rs(instr)) | c.Reg(rt(instr)))) }

func (c *CPU) opSlt(instr uint32) {
	if int32(c.Reg(rs(instr))) < int32(c.Reg(rt(instr))) {
		c.SetReg(rd(instr), 1)
	} else {
		c.SetReg(rd(instr), 0)
	}
}

func (c *CPU) opSltu(instr uint32) {
	if c.Reg(rs(instr)) < c.Reg(rt(instr)) {
		c.SetReg(rd(instr), 1)
	} else {
		c.SetReg(rd(instr), 0)
	}
}

func addOverflows(a, b int32) (int32, bool) {
	result := a + b
	overflow := (a > 0 && b > 0 && result < 0) || (a < 0 && b < 0 && result > 0)
	return result, overflow
}

func subOverflows(a, b int32) (int32, bool) {
	result := a - b
	overflow := (a >= 0 && b < 0 && result < 0) || (a < 0 && b >= 0 && result > 0)
	return result, overflow
}

// --- multiply / divide ---

func (c *CPU) opMult(instr uint32) {
	a := int64(int32(c.Reg(rs(instr))))
	b := int64(int32(c.Reg(rt(instr))))
	result := uint64(a * b)
	c.lo = uint32(result)
	c.hi = uint32(result >> 32)
}

func (c *CPU) opMultu(instr uint32) {
	result := uint64(c.Reg(rs(instr))) * uint64(c.Reg(rt(instr)))
	c.lo = uint32(result)
	c.hi = uint32(result >> 32)
}

const minInt32 = -1 << 31

func (c *CPU) opDiv(instr uint32) {
	n := int32(c.Reg(rs(instr)))
	d := int32(c.Reg(rt(instr)))

	switch {
	case d == 0:
		c.hi = uint32(n)
		if n >= 0 {
			c.lo = 0xFFFFFFFF
		} else {
			c.lo = 1
		}
	case n == minInt32 && d == -1:
		// Signed overflow case: the quotient cannot be represented in
		// 32 bits. The R3000A does not trap here, it returns INT_MIN
		// as the quotient and 0 as the remainder.
		c.lo = uint32(minInt32)
		c.hi = 0
	default:
		c.lo = uint32(n / d)
		c.hi = uint32(n % d)
	}
}

func (c *CPU) opDivu(instr uint32) {
	n := c.Reg(rs(instr))
	d := c.Reg(rt(instr))
	if d == 0 {
		c.lo = 0xFFFFFFFF
		c.hi = n
		return
	}
	c.lo = n / d
	c.hi = n % d
}

func (c *CPU) opMfhi(instr uint32) { c.SetReg(rd(instr), c.hi) }
func (c *CPU) opMthi(instr uint32) { c.hi = c.Reg(rs(instr)) }
func (c *CPU) opMflo(instr uint32) { c.SetReg(rd(instr), c.lo) }
func (c *CPU) opMtlo(instr uint32) { c.lo = c.Reg(rs(instr)) }

// --- branches & jumps ---
//
// Every branch/jump target is computed against pc, which during execute
// already holds the address of the delay-slot instruction (Step has
// advanced it); links store pc+4, the address after the delay slot.
// The instruction physically after the
// branch always executes before control transfers, per the R3000A's
// branch-delay-slot semantics.

func (c *CPU) opJ(instr uint32) {
	c.branch((c.pc & 0xF0000000) | (target(instr) << 2))
}

func (c *CPU) opJal(instr uint32) {
	c.SetReg(31, c.pc+4)
	c.branch((c.pc & 0xF0000000) | (target(instr) << 2))
}

func (c *CPU) opJr(instr uint32) { c.branch(c.Reg(rs(instr))) }

func (c *CPU) opJalr(instr uint32) {
	linkReg := rd(instr)
	dest := c.Reg(rs(instr))
	c.SetReg(linkReg, c.pc+4)
	c.branch(dest)
}

func branchTarget(basePC uint32, offset int32) uint32 {
	return uint32(int32(basePC) + (offset << 2))
}

func (c *CPU) opBeq(instr uint32) {
	if c.Reg(rs(instr)) == c.Reg(rt(instr)) {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

func (c *CPU) opBne(instr uint32) {
	if c.Reg(rs(instr)) != c.Reg(rt(instr)) {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

func (c *CPU) opBlez(instr uint32) {
	if int32(c.Reg(rs(instr))) <= 0 {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

func (c *CPU) opBgtz(instr uint32) {
	if int32(c.Reg(rs(instr))) > 0 {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

func (c *CPU) opBltz(instr uint32) {
	if int32(c.Reg(rs(instr))) < 0 {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

func (c *CPU) opBgez(instr uint32) {
	if int32(c.Reg(rs(instr))) >= 0 {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

func (c *CPU) opBltzal(instr uint32) {
	c.SetReg(31, c.pc+4)
	if int32(c.Reg(rs(instr))) < 0 {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

func (c *CPU) opBgezal(instr uint32) {
	c.SetReg(31, c.pc+4)
	if int32(c.Reg(rs(instr))) >= 0 {
		c.branch(branchTarget(c.pc, simm16(instr)))
	}
}

// --- loads & stores ---

func effectiveAddress(c *CPU, instr uint32) uint32 {
	return c.Reg(rs(instr)) + uint32(simm16(instr))
}

func (c *CPU) opLb(instr uint32) {
	a := effectiveAddress(c, instr)
	v := int32(int8(c.bus.Read8(a)))
	c.scheduleLoad(rt(instr), uint32(v))
}

func (c *CPU) opLbu(instr uint32) {
	a := effectiveAddress(c, instr)
	c.scheduleLoad(rt(instr), uint32(c.bus.Read8(a)))
}

func (c *CPU) opLh(instr uint32) {
	a := effectiveAddress(c, instr)
	if a%2 != 0 {
		c.raiseException(addr.ExcAddressErrorLoad, a)
		return
	}
	v := int32(int16(c.bus.Read16(a)))
	c.scheduleLoad(rt(instr), uint32(v))
}

func (c *CPU) opLhu(instr uint32) {
	a := effectiveAddress(c, instr)
	if a%2 != 0 {
		c.raiseException(addr.ExcAddressErrorLoad, a)
		return
	}
	c.scheduleLoad(rt(instr), uint32(c.bus.Read16(a)))
}

func (c *CPU) opLw(instr uint32) {
	a := effectiveAddress(c, instr)
	if a%4 != 0 {
		c.raiseException(addr.ExcAddressErrorLoad, a)
		return
	}
	c.scheduleLoad(rt(instr), c.bus.Read32(a))
}

// opLwl/opLwr/opSwl/opSwr implement the unaligned word load/store
// pair. The low two bits of the address select which bytes of the
// aligned word are merged; the mask used is `addr & 0x3` uniformly,
// never `addr & 0x3F` (a bug present in some reference implementations
// of this opcode pair).
func (c *CPU) opLwl(instr uint32) {
	a := effectiveAddress(c, instr)
	aligned := a &^ 3
	word := c.bus.Read32(aligned)

	// Merges against the pending load-delay value for this register if
	// one is already queued, not the committed register file, since
	// LWL/LWR can appear back to back targeting the same register
	// before the first's result has landed.
	current := c.loadMergeBase(rt(instr))

	var result uint32
	switch a & 0x3 {
	case 0:
		result = (word << 24) | (current & 0x00FFFFFF)
	case 1:
		result = (word << 16) | (current & 0x0000FFFF)
	case 2:
		result = (word << 8) | (current & 0x000000FF)
	case 3:
		result = word
	}
	c.scheduleLoad(rt(instr), result)
}

func (c *CPU) opLwr(instr uint32) {
	a := effectiveAddress(c, instr)
	aligned := a &^ 3
	word := c.bus.Read32(aligned)

	current := c.loadMergeBase(rt(instr))

	var result uint32
	switch a & 0x3 {
	case 0:
		result = word
	case 1:
		result = (word >> 8) | (current & 0xFF000000)
	case 2:
		result = (word >> 16) | (current & 0xFFFF0000)
	case 3:
		result = (word >> 24) | (current & 0xFFFFFF00)
	}
	c.scheduleLoad(rt(instr), result)
}

// loadMergeBase returns the value LWL/LWR should merge against: the
// value already queued in the load-delay slot for this register, if
// there is one pending, otherwise the committed register file value.
func (c *CPU) loadMergeBase(reg uint32) uint32 {
	if c.pending.reg == reg {
		return c.pending.value
	}
	return c.Reg(reg)
}

func (c *CPU) opSb(instr uint32) { c.bus.Write8(effectiveAddress(c, instr), uint8(c.Reg(rt(instr)))) }

func (c *CPU) opSh(instr uint32) {
	a := effectiveAddress(c, instr)
	if a%2 != 0 {
		c.raiseException(addr.ExcAddressErrorStore, a)
		return
	}
	c.bus.Write16(a, uint16(c.Reg(rt(instr))))
}

func (c *CPU) opSw(instr uint32) {
	a := effectiveAddress(c, instr)
	if a%4 != 0 {
		c.raiseException(addr.ExcAddressErrorStore, a)
		return
	}
	c.bus.Write32(a, c.Reg(rt(instr)))
}

func (c *CPU) opSwl(instr uint32) {
	a := effectiveAddress(c, instr)
	aligned := a &^ 3
	word := c.bus.Read32(aligned)
	value := c.Reg(rt(instr))

	var result uint32
	switch a & 0x3 {
	case 0:
		result = (word & 0xFFFFFF00) | (value >> 24)
	case 1:
		result = (word & 0xFFFF0000) | (value >> 16)
	case 2:
		result = (word & 0xFF000000) | (value >> 8)
	case 3:
		result = value
	}
	c.bus.Write32(aligned, result)
}

func (c *CPU) opSwr(instr uint32) {
	a := effectiveAddress(c, instr)
	aligned := a &^ 3
	word := c.bus.Read32(aligned)
	value := c.Reg(rt(instr))

	var result uint32
	switch a & 0x3 {
	case 0:
		result = value
	case 1:
		result = (word & 0x000000FF) | (value << 8)
	case 2:
		result = (word & 0x0000FFFF) | (value << 16)
	case 3:
		result = (word & 0x00FFFFFF) | (value << 24)
	}
	c.bus.Write32(aligned, result)
}

// --- COP2 (GTE) data transfer ---

func (c *CPU) opLwc2(instr uint32) {
	a := effectiveAddress(c, instr)
	c.gte.Write(rt(instr), c.bus.Read32(a))
}

func (c *CPU) opSwc2(instr uint32) {
	a := effectiveAddress(c, instr)
	c.bus.Write32(a, c.gte.Read(rt(instr)))
}

func (c *CPU) execCop2(instr uint32) {
	if rs(instr)&0x10 != 0 {
		// rs formats 0x10-0x1F select a GTE command, dispatched whole
		// into the gte package rather than decoded further here.
		c.gte.Execute(instr)
		return
	}
	switch rs(instr) {
	case 0x00: // MFC2
		c.scheduleLoad(rt(instr), c.gte.Read(rd(instr)))
	case 0x02: // CFC2
		c.scheduleLoad(rt(instr), c.gte.ReadControl(rd(instr)))
	case 0x04: // MTC2
		c.gte.Write(rd(instr), c.Reg(rt(instr)))
	case 0x06: // CTC2
		c.gte.WriteControl(rd(instr), c.Reg(rt(instr)))
	default:
		c.hardFault("unhandled COP2 format rs=0x%02X", rs(instr))
	}
}

// --- syscall/break ---

func (c *CPU) opSyscall() { c.raiseException(addr.ExcSyscall, 0) }
func (c *CPU) opBreak()   { c.raiseException(addr.ExcBreak, 0) }
