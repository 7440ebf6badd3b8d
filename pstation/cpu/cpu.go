// Package cpu implements the MIPS R3000A core used by the machine,
// including its COP0 system-control coprocessor.
package cpu

import (
	"fmt"
	"log/slog"

	"github.com/gopsx/pstation/addr"
)

// Bus is the memory-mapped address space the CPU executes against.
type Bus interface {
	Read8(address uint32) uint8
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write8(address uint32, value uint8)
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)
}

// GTE is the COP2 geometry engine, driven by COP2 instructions decoded
// here but executed inside the gte package.
type GTE interface {
	Execute(instr uint32)
	Read(reg uint32) uint32
	Write(reg uint32, value uint32)
	ReadControl(reg uint32) uint32
	WriteControl(reg uint32, value uint32)
}

type pendingLoad struct {
	reg   uint32
	value uint32
}

// CPU holds the full architectural state of the R3000A core: the 32
// general-purpose registers, HI/LO, the program counter pair used to
// model the branch-delay slot, the single pending load used to model
// the load-delay slot, and the COP0 system-control coprocessor.
type CPU struct {
	regs [32]uint32
	hi   uint32
	lo   uint32

	pc     uint32
	nextPC uint32

	// currentPC is the address of the instruction currently executing,
	// used to populate EPC and BadVaddr on exception.
	currentPC uint32

	inBranchDelay       bool
	currentInBranchDelay bool

	// pending/pendingNext model the two-step load-delay pipeline: a
	// load's result is not visible to the instruction in its delay
	// slot, only to the one after that. scheduleLoad fills pendingNext
	// while the load instruction executes; Step shifts it into pending
	// one step later (while the delay-slot instruction executes,
	// un-committed); and pending is finally written to the register
	// file at the top of the step after that.
	pending     pendingLoad
	pendingNext pendingLoad

	icache ICache

	cop0 cop0
	gte  GTE
	bus  Bus
}

// New returns a CPU reset to the BIOS entry point with SR.BEV set, per
// the machine's cold-boot sequence.
func New(bus Bus, gte GTE) *CPU {
	c := &CPU{bus: bus, gte: gte}
	c.Reset()
	return c
}

// Reset restores the CPU to its power-on state.
func (c *CPU) Reset() {
	c.regs = [32]uint32{}
	c.hi, c.lo = 0, 0
	c.pc = addr.ResetVector
	c.nextPC = c.pc + 4
	c.inBranchDelay = false
	c.pending = pendingLoad{}
	c.pendingNext = pendingLoad{}
	c.icache.Reset()
	c.cop0 = cop0{}
	c.cop0.sr = 1 << 22 // BEV=1: exception vectors point at BIOS ROM
}

// PC returns the address of the next instruction to fetch.
func (c *CPU) PC() uint32 { return c.pc }

// SetPC forces the program counter, used by the bus side-loader to
// jump directly to a loaded PS-X EXE's entry point.
func (c *CPU) SetPC(pc uint32) {
	c.pc = pc
	c.nextPC = pc + 4
}

// SR returns the COP0 status register, exposed for the cold-boot
// invariant check (SR.BEV set) and for tests.
func (c *CPU) SR() uint32 { return c.cop0.sr }

// Reg returns the value of general-purpose register r (0-31).
func (c *CPU) Reg(r uint32) uint32 { return c.regs[r] }

// SetReg writes register r, respecting that $zero is hardwired to 0.
func (c *CPU) SetReg(r, value uint32) {
	if r != 0 {
		c.regs[r] = value
	}
}

// Step decodes and executes exactly one instruction, advancing the
// branch-delay and load-delay pipelines by one slot, and returns the
// number of cycles it is charged (a coarse per-instruction model, not
// a cycle-exact one, per the machine's timing Non-goal).
func (c *CPU) Step() int {
	c.currentPC = c.pc
	c.currentInBranchDelay = c.inBranchDelay
	c.inBranchDelay = false

	if c.currentPC%4 != 0 {
		c.raiseException(addr.ExcAddressErrorLoad, c.currentPC)
		return 1
	}

	raw := c.fetch(c.currentPC)

	// Commit the load scheduled two steps ago: its value only becomes
	// visible starting with the second instruction after the load, so
	// the instruction immediately following it (the delay slot, whose
	// scheduled load is still sitting in pendingNext below) must not
	// see it yet. Shift pendingNext into pending only after committing
	// the old value, so it commits one step later still.
	if c.pending.reg != 0 {
		c.regs[c.pending.reg] = c.pending.value
	}
	c.pending = c.pendingNext
	c.pendingNext = pendingLoad{}

	c.pc = c.nextPC
	c.nextPC = c.pc + 4

	c.execute(raw)

	return 1
}

func (c *CPU) fetch(address uint32) uint32 {
	if line, ok := c.icache.Lookup(address); ok {
		return line
	}
	word := c.bus.Read32(address)
	if cacheable(address) {
		// Fill all four words of the line: a line is valid as a whole,
		// so a partial fill would serve stale words on later hits.
		base := address &^ 0xF
		for i := uint32(0); i < 4; i++ {
			c.icache.Fill(base+i*4, c.bus.Read32(base+i*4))
		}
	}
	return word
}

// scheduleLoad queues a load-delay-slot write: it becomes visible to
// the GPR file only after the *next* instruction has executed, never
// to the instruction immediately following the load itself.
func (c *CPU) scheduleLoad(reg, value uint32) {
	if reg == 0 {
		return
	}
	c.pendingNext = pendingLoad{reg: reg, value: value}
}

// branch sets the branch-delay slot: the instruction at pc (the delay
// slot) still executes, then control transfers to target.
func (c *CPU) branch(target uint32) {
	c.nextPC = target
	c.inBranchDelay = true
}

func (c *CPU) hardFault(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	slog.Error("cpu: host-fatal condition", "detail", msg, "pc", fmt.Sprintf("0x%08X", c.currentPC))
	panic(msg)
}
