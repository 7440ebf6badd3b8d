package cpu

import (
	"github.com/gopsx/pstation/addr"
	"github.com/gopsx/pstation/bit"
)

// Instruction field accessors, named after the standard MIPS encoding.
func op(instr uint32) uint32     { return bit.ExtractBits(instr, 31, 26) }
func rs(instr uint32) uint32     { return bit.ExtractBits(instr, 25, 21) }
func rt(instr uint32) uint32     { return bit.ExtractBits(instr, 20, 16) }
func rd(instr uint32) uint32     { return bit.ExtractBits(instr, 15, 11) }
func shamt(instr uint32) uint32  { return bit.ExtractBits(instr, 10, 6) }
func funct(instr uint32) uint32  { return bit.ExtractBits(instr, 5, 0) }
func imm16(instr uint32) uint32  { return bit.ExtractBits(instr, 15, 0) }
func simm16(instr uint32) int32  { return bit.SignExtend(imm16(instr), 16) }
func target(instr uint32) uint32 { return bit.ExtractBits(instr, 25, 0) }

// execute decodes and dispatches a single instruction word. Unknown
// primary opcodes and SPECIAL functions are host-fatal: they indicate
// either a bug in this interpreter or BIOS/game code this machine does
// not model, never a condition the guest should see.
func (c *CPU) execute(instr uint32) {
	switch op(instr) {
	case 0x00:
		c.execSpecial(instr)
	case 0x01:
		c.execRegimm(instr)
	case 0x02:
		c.opJ(instr)
	case 0x03:
		c.opJal(instr)
	case 0x04:
		c.opBeq(instr)
	case 0x05:
		c.opBne(instr)
	case 0x06:
		c.opBlez(instr)
	case 0x07:
		c.opBgtz(instr)
	case 0x08:
		c.opAddi(instr)
	case 0x09:
		c.opAddiu(instr)
	case 0x0A:
		c.opSlti(instr)
	case 0x0B:
		c.opSltiu(instr)
	case 0x0C:
		c.opAndi(instr)
	case 0x0D:
		c.opOri(instr)
	case 0x0E:
		c.opXori(instr)
	case 0x0F:
		c.opLui(instr)
	case 0x10:
		c.execCop0(instr)
	case 0x11:
		c.raiseException(excCopUnusable(1), 0)
	case 0x12:
		c.execCop2(instr)
	case 0x13:
		c.raiseException(excCopUnusable(3), 0)
	case 0x20:
		c.opLb(instr)
	case 0x21:
		c.opLh(instr)
	case 0x22:
		c.opLwl(instr)
	case 0x23:
		c.opLw(instr)
	case 0x24:
		c.opLbu(instr)
	case 0x25:
		c.opLhu(instr)
	case 0x26:
		c.opLwr(instr)
	case 0x28:
		c.opSb(instr)
	case 0x29:
		c.opSh(instr)
	case 0x2A:
		c.opSwl(instr)
	case 0x2B:
		c.opSw(instr)
	case 0x2E:
		c.opSwr(instr)
	case 0x30, 0x31, 0x33:
		c.raiseException(excCopUnusable(op(instr)-0x30), 0)
	case 0x32:
		c.opLwc2(instr)
	case 0x38, 0x39, 0x3B:
		c.raiseException(excCopUnusable(op(instr)-0x38), 0)
	case 0x3A:
		c.opSwc2(instr)
	default:
		c.hardFault("unknown primary opcode 0x%02X at pc=0x%08X", op(instr), c.currentPC)
	}
}

func (c *CPU) execSpecial(instr uint32) {
	switch funct(instr) {
	case 0x00:
		c.opSll(instr)
	case 0x02:
		c.opSrl(instr)
	case 0x03:
		c.opSra(instr)
	case 0x04:
		c.opSllv(instr)
	case 0x06:
		c.opSrlv(instr)
	case 0x07:
		c.opSrav(instr)
	case 0x08:
		c.opJr(instr)
	case 0x09:
		c.opJalr(instr)
	case 0x0C:
		c.opSyscall()
	case 0x0D:
		c.opBreak()
	case 0x10:
		c.opMfhi(instr)
	case 0x11:
		c.opMthi(instr)
	case 0x12:
		c.opMflo(instr)
	case 0x13:
		c.opMtlo(instr)
	case 0x18:
		c.opMult(instr)
	case 0x19:
		c.opMultu(instr)
	case 0x1A:
		c.opDiv(instr)
	case 0x1B:
		c.opDivu(instr)
	case 0x20:
		c.opAdd(instr)
	case 0x21:
		c.opAddu(instr)
	case 0x22:
		c.opSub(instr)
	case 0x23:
		c.opSubu(instr)
	case 0x24:
		c.opAnd(instr)
	case 0x25:
		c.opOr(instr)
	case 0x26:
		c.opXor(instr)
	case 0x27:
		c.opNor(instr)
	case 0x2A:
		c.opSlt(instr)
	case 0x2B:
		c.opSltu(instr)
	default:
		c.hardFault("unknown SPECIAL funct 0x%02X at pc=0x%08X", funct(instr), c.currentPC)
	}
}

func (c *CPU) execRegimm(instr uint32) {
	switch rt(instr) {
	case 0x00:
		c.opBltz(instr)
	case 0x01:
		c.opBgez(instr)
	case 0x10:
		c.opBltzal(instr)
	case 0x11:
		c.opBgezal(instr)
	default:
		c.hardFault("unknown REGIMM rt 0x%02X at pc=0x%08X", rt(instr), c.currentPC)
	}
}

// excCopUnusable maps a coprocessor number to the CoprocessorUnusable
// exception. The CE field (Cause bits 28-29) is not separately
// populated since this machine never implements COP1/COP3 and no
// guest code is expected to inspect it here.
func excCopUnusable(copNum uint32) uint32 {
	_ = copNum
	return addr.ExcCoprocessorUnusable
}
