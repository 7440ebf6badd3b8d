package controller

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/gopsx/pstation/irq"
	"github.com/stretchr/testify/assert"
)

func TestIdleStartsTransferOn0x01(t *testing.T) {
	p := NewPad()
	resp, ack := p.Exchange(0x01)
	assert.Equal(t, byte(0xFF), resp)
	assert.True(t, ack)
	assert.Equal(t, padTransfer, p.state)
}

func TestIdleRejectsOtherBytes(t *testing.T) {
	p := NewPad()
	resp, ack := p.Exchange(0x99)
	assert.Equal(t, byte(0xFF), resp)
	assert.False(t, ack)
	assert.Equal(t, padIdle, p.state)
}

func TestTransferDrainsButtonReport(t *testing.T) {
	p := NewPad()
	p.Exchange(0x01)

	first, ack := p.Exchange(0x42)
	assert.True(t, ack)
	assert.Equal(t, byte(p.typ), first, "the first drained byte is the controller type's low byte")
}

func TestTransferReturnsToIdleAfterFourBytes(t *testing.T) {
	p := NewPad()
	p.Exchange(0x01)
	p.Exchange(0x42)
	p.Exchange(0x00)
	p.Exchange(0x00)
	_, ack := p.Exchange(0x00)

	assert.True(t, ack, "the fourth drained byte still asserts ACK")
	assert.Equal(t, padIdle, p.state, "the FIFO must be empty and the pad back in Idle")
}

func TestButtonBitmapReflectsPressedState(t *testing.T) {
	p := NewPad()
	assert.Equal(t, uint16(0xFFFF), p.buttons)

	p.SetButton(0, true)
	assert.Zero(t, p.buttons&1)
}

func TestPortRaisesControllerIRQAfterAckDelay(t *testing.T) {
	irqc := irq.New()
	port := New(irqc)

	port.Write(addr.JoyData, 0x01)
	assert.NotZero(t, port.status()&(1<<7), "ACK input level must be asserted right after a successful exchange")

	port.Tick(ackDelayCycles)

	assert.Zero(t, port.status()&(1<<7), "ACK input level must drop once the countdown elapses")
	assert.NotZero(t, irqc.Stat()&(1<<addr.IRQControllerMemCard))
}

func TestResetBitReplacesPad(t *testing.T) {
	irqc := irq.New()
	port := New(irqc)
	port.Write(addr.JoyData, 0x01)

	port.Write(addr.JoyCtrl, 1<<6)

	assert.Equal(t, padIdle, port.pad.state)
	assert.Zero(t, port.ackCounter)
}
