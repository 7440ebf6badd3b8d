package cdrom

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/gopsx/pstation/irq"
	"github.com/stretchr/testify/assert"
)

func TestGetstatRespondsWithINT3(t *testing.T) {
	irqc := irq.New()
	irqc.SetMask(1 << addr.IRQCDROM)
	d := New(irqc)

	d.Write(addr.CDROMIndex, 1)
	d.Write(addr.CDROMReg2, 0x07) // int_enable: INT1-INT7

	d.Write(addr.CDROMIndex, 0)
	d.Write(addr.CDROMReg1, 0x01) // Getstat

	assert.True(t, irqc.Pending())
	assert.Equal(t, uint8(3), d.interruptFlagRegister()&0x7)
	assert.NotZero(t, len(d.responseFifo))
}

func TestAcknowledgeDequeuesPendingSecondResponse(t *testing.T) {
	irqc := irq.New()
	d := New(irqc)

	d.Write(addr.CDROMIndex, 0)
	d.Write(addr.CDROMReg1, 0x0A) // Init: INT3 then INT2

	assert.Equal(t, uint8(3), d.interruptFlagRegister()&0x7)
	d.popResponse()

	d.Write(addr.CDROMIndex, 1)
	d.Write(addr.CDROMReg3, 0x07) // ack all INT bits

	assert.Equal(t, uint8(2), d.interruptFlagRegister()&0x7, "Init's queued INT2 must fire after the INT3 ack")
}

func TestSetlocConvertsBCDToLBA(t *testing.T) {
	d := New(irq.New())
	d.Write(addr.CDROMIndex, 0)
	d.Write(addr.CDROMReg2, 0x00) // mm = 00
	d.Write(addr.CDROMReg2, 0x02) // ss = 02
	d.Write(addr.CDROMReg2, 0x00) // ff = 00
	d.Write(addr.CDROMReg1, 0x02) // Setloc

	assert.Equal(t, 0, d.targetLBA, "00:02:00 is LBA 0 under the 2-second lead-in offset")
}

func TestReadStepFiresINT1OnCountdown(t *testing.T) {
	irqc := irq.New()
	irqc.SetMask(1 << addr.IRQCDROM)
	d := New(irqc)

	d.Write(addr.CDROMIndex, 0)
	d.Write(addr.CDROMReg1, 0x06) // ReadN
	d.Write(addr.CDROMIndex, 1)
	d.Write(addr.CDROMReg3, 0x07) // ack the ReadN INT3

	d.Step(stepsPerSectorRead * 100)

	assert.Equal(t, uint8(1), d.interruptFlagRegister()&0x7)
}

func TestStatusRegisterReflectsFIFOOccupancy(t *testing.T) {
	d := New(irq.New())
	assert.NotZero(t, d.statusRegister()&(1<<3), "empty parameter FIFO")

	d.Write(addr.CDROMIndex, 0)
	d.Write(addr.CDROMReg2, 0x01)
	assert.Zero(t, d.statusRegister()&(1<<3), "non-empty parameter FIFO")
}
