// Package disasm renders MIPS R3000A instruction words as assembly
// text, for the debugger's instruction listing.
package disasm

import "fmt"

var gprNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

func reg(r uint32) string { return "$" + gprNames[r&0x1F] }

func op(instr uint32) uint32     { return instr >> 26 }
func rs(instr uint32) uint32     { return (instr >> 21) & 0x1F }
func rt(instr uint32) uint32     { return (instr >> 16) & 0x1F }
func rd(instr uint32) uint32     { return (instr >> 11) & 0x1F }
func shamt(instr uint32) uint32  { return (instr >> 6) & 0x1F }
func funct(instr uint32) uint32  { return instr & 0x3F }
func imm16(instr uint32) uint32  { return instr & 0xFFFF }
func simm16(instr uint32) int32  { return int32(int16(instr & 0xFFFF)) }
func target(instr uint32) uint32 { return instr & 0x03FFFFFF }

// Line is a single disassembled instruction: the word's address, its
// assembly text, and the raw word (every MIPS instruction is 4 bytes,
// so there is no variable-length bookkeeping to carry alongside it).
type Line struct {
	Address uint32
	Text    string
	Word    uint32
}

// Reader is the minimal bus surface the disassembler needs: a
// word-addressable read with no side effects required of it (the
// debugger is expected to pass a bus view that does not trigger
// device state changes on read).
type Reader interface {
	Read32(address uint32) uint32
}

// At disassembles the single instruction at address.
func At(address uint32, r Reader) Line {
	word := r.Read32(address)
	return Line{Address: address, Text: decode(address, word), Word: word}
}

// Range disassembles count consecutive instructions starting at
// address.
func Range(address uint32, count int, r Reader) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		a := address + uint32(i)*4
		lines = append(lines, At(a, r))
	}
	return lines
}

// Around disassembles before instructions leading up to address, the
// instruction at address itself, and after instructions following it.
// Every MIPS instruction is a fixed 4 bytes, so unlike a variable-width
// ISA this needs no heuristic resynchronization to find where
// `before` instructions back from address begins.
func Around(address uint32, before, after int, r Reader) []Line {
	start := address - uint32(before)*4
	return Range(start, before+1+after, r)
}

// Format renders a line for a fixed-width listing, marking the
// current PC.
func Format(l Line, isCurrentPC bool) string {
	marker := " "
	if isCurrentPC {
		marker = "->"
	}
	return fmt.Sprintf("%s0x%08X  %08X  %s", marker, l.Address, l.Word, l.Text)
}

func decode(address uint32, instr uint32) string {
	switch op(instr) {
	case 0x00:
		return decodeSpecial(instr)
	case 0x01:
		return decodeRegimm(address, instr)
	case 0x02:
		return fmt.Sprintf("j       0x%08X", jumpTarget(address, instr))
	case 0x03:
		return fmt.Sprintf("jal     0x%08X", jumpTarget(address, instr))
	case 0x04:
		return branch("beq", address, instr)
	case 0x05:
		return branch("bne", address, instr)
	case 0x06:
		return branchNoRt("blez", address, instr)
	case 0x07:
		return branchNoRt("bgtz", address, instr)
	case 0x08:
		return immOp("addi", instr, true)
	case 0x09:
		return immOp("addiu", instr, true)
	case 0x0A:
		return immOp("slti", instr, true)
	case 0x0B:
		return immOp("sltiu", instr, true)
	case 0x0C:
		return immOp("andi", instr, false)
	case 0x0D:
		return immOp("ori", instr, false)
	case 0x0E:
		return immOp("xori", instr, false)
	case 0x0F:
		return fmt.Sprintf("lui     %s, 0x%04X", reg(rt(instr)), imm16(instr))
	case 0x10:
		return decodeCop0(instr)
	case 0x12:
		return decodeCop2(instr)
	case 0x20:
		return loadStore("lb", instr)
	case 0x21:
		return loadStore("lh", instr)
	case 0x22:
		return loadStore("lwl", instr)
	case 0x23:
		return loadStore("lw", instr)
	case 0x24:
		return loadStore("lbu", instr)
	case 0x25:
		return loadStore("lhu", instr)
	case 0x26:
		return loadStore("lwr", instr)
	case 0x28:
		return loadStore("sb", instr)
	case 0x29:
		return loadStore("sh", instr)
	case 0x2A:
		return loadStore("swl", instr)
	case 0x2B:
		return loadStore("sw", instr)
	case 0x2E:
		return loadStore("swr", instr)
	case 0x32:
		return loadStore("lwc2", instr)
	case 0x3A:
		return loadStore("swc2", instr)
	default:
		return fmt.Sprintf(".word   0x%08X  ; unknown opcode 0x%02X", instr, op(instr))
	}
}

func decodeSpecial(instr uint32) string {
	switch funct(instr) {
	case 0x00:
		if instr == 0 {
			return "nop"
		}
		return fmt.Sprintf("sll     %s, %s, %d", reg(rd(instr)), reg(rt(instr)), shamt(instr))
	case 0x02:
		return fmt.Sprintf("srl     %s, %s, %d", reg(rd(instr)), reg(rt(instr)), shamt(instr))
	case 0x03:
		return fmt.Sprintf("sra     %s, %s, %d", reg(rd(instr)), reg(rt(instr)), shamt(instr))
	case 0x04:
		return threeReg("sllv", instr)
	case 0x06:
		return threeReg("srlv", instr)
	case 0x07:
		return threeReg("srav", instr)
	case 0x08:
		return fmt.Sprintf("jr      %s", reg(rs(instr)))
	case 0x09:
		return fmt.Sprintf("jalr    %s, %s", reg(rd(instr)), reg(rs(instr)))
	case 0x0C:
		return "syscall"
	case 0x0D:
		return "break"
	case 0x10:
		return fmt.Sprintf("mfhi    %s", reg(rd(instr)))
	case 0x11:
		return fmt.Sprintf("mthi    %s", reg(rs(instr)))
	case 0x12:
		return fmt.Sprintf("mflo    %s", reg(rd(instr)))
	case 0x13:
		return fmt.Sprintf("mtlo    %s", reg(rs(instr)))
	case 0x18:
		return twoReg("mult", instr)
	case 0x19:
		return twoReg("multu", instr)
	case 0x1A:
		return twoReg("div", instr)
	case 0x1B:
		return twoReg("divu", instr)
	case 0x20:
		return threeReg("add", instr)
	case 0x21:
		return threeReg("addu", instr)
	case 0x22:
		return threeReg("sub", instr)
	case 0x23:
		return threeReg("subu", instr)
	case 0x24:
		return threeReg("and", instr)
	case 0x25:
		return threeReg("or", instr)
	case 0x26:
		return threeReg("xor", instr)
	case 0x27:
		return threeReg("nor", instr)
	case 0x2A:
		return threeReg("slt", instr)
	case 0x2B:
		return threeReg("sltu", instr)
	default:
		return fmt.Sprintf(".word   0x%08X  ; unknown SPECIAL funct 0x%02X", instr, funct(instr))
	}
}

func decodeRegimm(address uint32, instr uint32) string {
	switch rt(instr) {
	case 0x00:
		return branchNoRt("bltz", address, instr)
	case 0x01:
		return branchNoRt("bgez", address, instr)
	case 0x10:
		return branchNoRt("bltzal", address, instr)
	case 0x11:
		return branchNoRt("bgezal", address, instr)
	default:
		return fmt.Sprintf(".word   0x%08X  ; unknown REGIMM rt 0x%02X", instr, rt(instr))
	}
}

func decodeCop0(instr uint32) string {
	switch rs(instr) {
	case 0x00:
		return fmt.Sprintf("mfc0    %s, $%d", reg(rt(instr)), rd(instr))
	case 0x04:
		return fmt.Sprintf("mtc0    %s, $%d", reg(rt(instr)), rd(instr))
	case 0x10:
		if funct(instr) == 0x10 {
			return "rfe"
		}
	}
	return fmt.Sprintf(".word   0x%08X  ; unknown COP0 op", instr)
}

func decodeCop2(instr uint32) string {
	if instr&(1<<25) != 0 {
		return fmt.Sprintf("cop2    0x%07X", instr&0x01FFFFFF)
	}
	switch rs(instr) {
	case 0x00:
		return fmt.Sprintf("mfc2    %s, $%d", reg(rt(instr)), rd(instr))
	case 0x02:
		return fmt.Sprintf("cfc2    %s, $%d", reg(rt(instr)), rd(instr))
	case 0x04:
		return fmt.Sprintf("mtc2    %s, $%d", reg(rt(instr)), rd(instr))
	case 0x06:
		return fmt.Sprintf("ctc2    %s, $%d", reg(rt(instr)), rd(instr))
	default:
		return fmt.Sprintf(".word   0x%08X  ; unknown COP2 op", instr)
	}
}

func immOp(mnemonic string, instr uint32, signed bool) string {
	if signed {
		return fmt.Sprintf("%-7s %s, %s, %d", mnemonic, reg(rt(instr)), reg(rs(instr)), simm16(instr))
	}
	return fmt.Sprintf("%-7s %s, %s, 0x%04X", mnemonic, reg(rt(instr)), reg(rs(instr)), imm16(instr))
}

func loadStore(mnemonic string, instr uint32) string {
	return fmt.Sprintf("%-7s %s, %d(%s)", mnemonic, reg(rt(instr)), simm16(instr), reg(rs(instr)))
}

func threeReg(mnemonic string, instr uint32) string {
	return fmt.Sprintf("%-7s %s, %s, %s", mnemonic, reg(rd(instr)), reg(rs(instr)), reg(rt(instr)))
}

func twoReg(mnemonic string, instr uint32) string {
	return fmt.Sprintf("%-7s %s, %s", mnemonic, reg(rs(instr)), reg(rt(instr)))
}

func branch(mnemonic string, address uint32, instr uint32) string {
	return fmt.Sprintf("%-7s %s, %s, 0x%08X", mnemonic, reg(rs(instr)), reg(rt(instr)), branchTarget(address, instr))
}

func branchNoRt(mnemonic string, address uint32, instr uint32) string {
	return fmt.Sprintf("%-7s %s, 0x%08X", mnemonic, reg(rs(instr)), branchTarget(address, instr))
}

func branchTarget(address uint32, instr uint32) uint32 {
	return address + 4 + uint32(simm16(instr)<<2)
}

func jumpTarget(address uint32, instr uint32) uint32 {
	return (address+4)&0xF000_0000 | target(instr)<<2
}
