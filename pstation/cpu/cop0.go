package cpu

import (
	"fmt"
	"log/slog"

	"github.com/gopsx/pstation/addr"
)

// cop0 is the system-control coprocessor: exception/interrupt state
// only, no TLB (the PSX has no virtual memory).
type cop0 struct {
	sr       uint32 // status register
	cause    uint32 // cause register
	epc      uint32 // exception program counter
	badVaddr uint32
}

// Status register bit positions actually modeled.
const (
	srIEc   = 1 << 0 // current interrupt enable
	srKUc   = 1 << 1 // current kernel/user mode (0=kernel)
	srIEp   = 1 << 2 // previous interrupt enable
	srKUp   = 1 << 3 // previous kernel/user mode
	srIEo   = 1 << 4 // old interrupt enable
	srKUo   = 1 << 5 // old kernel/user mode
	srIMShift = 8    // interrupt mask, bits 8-15
	srIsC   = 1 << 16
	srBEV   = 1 << 22 // boot exception vectors (1 = BIOS ROM)
)

const modeStackMask uint32 = 0x3F // bits 0-5: IEc/KUc/IEp/KUp/IEo/KUo

// pushModeStack shifts the 6-bit interrupt/mode stack left by
// two on exception entry, pushing the current state into "previous"
// and zeroing the new current state to kernel/interrupts-disabled.
func (c *cop0) pushModeStack() {
	low6 := c.sr & modeStackMask
	c.sr = (c.sr &^ modeStackMask) | ((low6 << 2) & modeStackMask)
}

// popModeStack restores the mode stack on RFE, shifting the 6-bit
// field right by two, pulling "previous" back into "current".
func (c *cop0) popModeStack() {
	low6 := c.sr & modeStackMask
	c.sr = (c.sr &^ modeStackMask) | (low6 >> 2)
}

// IEc reports whether interrupts are currently enabled.
func (c *cop0) IEc() bool { return c.sr&srIEc != 0 }

// interruptMask returns the 8-bit IM field (SR bits 8-15).
func (c *cop0) interruptMask() uint32 { return (c.sr >> srIMShift) & 0xFF }

// pendingIP returns the Cause.IP field (bits 8-15), holding the two
// software interrupt bits (field bits 0-1, Cause bits 8-9) and the
// hardware interrupt line fed by the interrupt controller (field bit
// 2, Cause bit 10).
func (c *cop0) pendingIP() uint32 { return (c.cause >> 8) & 0xFF }

// SetHardwareInterruptPending updates Cause.IP bit 0 (INT0), the line
// the interrupt controller drives.
func (c *cop0) SetHardwareInterruptPending(pending bool) {
	if pending {
		c.cause |= 1 << 10 // Cause.IP bit for INT0 sits at bit 10 (IP2 on R3000A layout: bits 8-9 sw, 10 hw)
	} else {
		c.cause &^= 1 << 10
	}
}

// InterruptPending reports whether an enabled, unmasked interrupt is
// waiting to be taken: SR.IEc must be set and at least one bit of
// Cause.IP must have its corresponding SR.IM bit set.
func (c *cop0) InterruptPending() bool {
	return c.IEc() && (c.pendingIP()&c.interruptMask()) != 0
}

func (c *CPU) raiseException(excCode uint32, badVaddr uint32) {
	handler := addr.ExceptionVectorRAM
	if c.cop0.sr&srBEV != 0 {
		handler = addr.ExceptionVectorBIOS
	}

	c.cop0.cause = (c.cop0.cause &^ 0x7C) | ((excCode & 0x1F) << 2)

	if excCode == addr.ExcInterrupt {
		// External interrupts are sampled before the next instruction is
		// fetched (CheckInterrupts runs ahead of Step), so EPC must point
		// at that not-yet-executed instruction (c.pc) rather than
		// currentPC, which still names the previous step's instruction.
		if c.inBranchDelay {
			c.cop0.epc = c.pc - 4
			c.cop0.cause |= 1 << 31 // BD
		} else {
			c.cop0.epc = c.pc
			c.cop0.cause &^= 1 << 31
		}
	} else if c.currentInBranchDelay {
		c.cop0.epc = c.currentPC - 4
		c.cop0.cause |= 1 << 31 // BD
	} else {
		c.cop0.epc = c.currentPC
		c.cop0.cause &^= 1 << 31
	}

	if excCode == addr.ExcAddressErrorLoad || excCode == addr.ExcAddressErrorStore {
		c.cop0.badVaddr = badVaddr
	}

	c.cop0.pushModeStack()

	c.pc = handler
	c.nextPC = handler + 4

	slog.Debug("cpu: exception raised", "code", excCode, "epc", fmt.Sprintf("0x%08X", c.cop0.epc), "handler", fmt.Sprintf("0x%08X", handler))
}

// SetHardwareInterruptPending is called by the interrupt controller
// every time its aggregated output line changes level.
func (c *CPU) SetHardwareInterruptPending(pending bool) {
	c.cop0.SetHardwareInterruptPending(pending)
}

// CheckInterrupts is polled once per instruction step (or more coarsely
// once per device tick, per the fixed-order cooperative scheduler) to
// take a pending hardware interrupt as a MIPS exception.
func (c *CPU) CheckInterrupts() {
	if c.cop0.InterruptPending() {
		c.raiseException(addr.ExcInterrupt, 0)
	}
}

// execCop0 dispatches COP0 instructions (MFC0/MTC0/RFE), decoded from
// the COP0=0x10 primary opcode.
func (c *CPU) execCop0(instr uint32) {
	rs := (instr >> 21) & 0x1F
	rt := (instr >> 16) & 0x1F
	rd := (instr >> 11) & 0x1F
	funct := instr & 0x3F

	switch rs {
	case 0x00: // MFC0
		c.scheduleLoad(rt, c.readCop0(rd))
	case 0x04: // MTC0
		c.writeCop0(rd, c.Reg(rt))
	case 0x10: // COP0 control opcodes (RFE, TLBx not present on PSX)
		switch funct {
		case 0x10: // RFE
			c.cop0.popModeStack()
		default:
			c.hardFault("unhandled COP0 control opcode funct=0x%02X", funct)
		}
	default:
		c.hardFault("unhandled COP0 format rs=0x%02X", rs)
	}
}

func (c *CPU) readCop0(reg uint32) uint32 {
	switch reg {
	case addr.COP0BadVaddr:
		return c.cop0.badVaddr
	case addr.COP0SR:
		return c.cop0.sr
	case addr.COP0Cause:
		return c.cop0.cause
	case addr.COP0EPC:
		return c.cop0.epc
	case addr.COP0PRId:
		return 0x00000002
	default:
		slog.Warn("cpu: read of unmodeled COP0 register", "reg", reg)
		return 0
	}
}

func (c *CPU) writeCop0(reg, value uint32) {
	switch reg {
	case addr.COP0SR:
		c.cop0.sr = value
	case addr.COP0Cause:
		// Only the two software-interrupt bits are writable.
		c.cop0.cause = (c.cop0.cause &^ (3 << 8)) | (value & (3 << 8))
	case addr.COP0EPC, addr.COP0BadVaddr, addr.COP0PRId:
		// Read-only in practice; ignored.
	default:
		slog.Warn("cpu: write to unmodeled COP0 register", "reg", reg, "value", value)
	}
}
