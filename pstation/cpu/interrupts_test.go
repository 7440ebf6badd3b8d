package cpu

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/stretchr/testify/assert"
)

func TestInterruptEntryAndReturn(t *testing.T) {
	c, bus := newTestCPU()
	c.cop0.sr = srIEc | (1 << (srIMShift + 2)) // interrupts enabled, IM bit for the hardware line (IP2) set
	c.cop0.sr &^= srBEV                        // vector through RAM for this test

	loadProgram(bus, asmR(0x00, 0, 0, 0, 0)) // NOP at reset vector

	c.SetHardwareInterruptPending(true)
	c.CheckInterrupts()

	assert.Equal(t, uint32(addr.ExceptionVectorRAM), c.PC())
	assert.Equal(t, addr.ExcInterrupt, (c.cop0.cause>>2)&0x1F)
	assert.False(t, c.cop0.IEc(), "interrupts must be disabled on exception entry")

	bus.Write32(addr.ExceptionVectorRAM, 0x42000010) // RFE: op=0x10(COP0), rs=0x10(CO), funct=0x10
	c.Step()

	assert.True(t, c.cop0.IEc(), "RFE must restore the previous interrupt-enable state")
}

func TestInterruptNotTakenWhenMasked(t *testing.T) {
	c, bus := newTestCPU()
	c.cop0.sr = srIEc // IM field all zero: the line is masked
	loadProgram(bus, asmR(0x00, 0, 0, 0, 0))

	c.SetHardwareInterruptPending(true)
	c.CheckInterrupts()

	assert.Equal(t, uint32(addr.ResetVector), c.PC(), "masked interrupt must not be taken")
}
