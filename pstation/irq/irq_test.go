package irq

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/stretchr/testify/assert"
)

func TestTriggerAndMaskGatePending(t *testing.T) {
	c := New()
	c.Trigger(addr.IRQVBlank)

	assert.False(t, c.Pending(), "a latched but unmasked source must not assert the line")

	c.SetMask(1 << addr.IRQVBlank)
	assert.True(t, c.Pending())
}

func TestAcknowledgeClearsOnlyZeroBits(t *testing.T) {
	c := New()
	c.Trigger(addr.IRQVBlank)
	c.Trigger(addr.IRQGPU)

	c.SetStat(^uint32(1 << addr.IRQVBlank)) // clear VBLANK, leave GPU latched

	assert.Zero(t, c.Stat()&(1<<addr.IRQVBlank))
	assert.NotZero(t, c.Stat()&(1<<addr.IRQGPU))
}

func TestStatMaskedToElevenBits(t *testing.T) {
	c := New()
	c.Trigger(addr.IRQLightpen) // bit 10, the highest modeled source
	assert.Equal(t, uint32(1<<10), c.Stat())
}

func TestRegisterWindowReadWrite(t *testing.T) {
	c := New()
	c.Write(4, 0x7FF)
	assert.Equal(t, uint32(0x7FF), c.Read(4))

	c.Trigger(addr.IRQDMA)
	assert.Equal(t, uint32(1<<addr.IRQDMA), c.Read(0))

	c.Write(0, 0)
	assert.Zero(t, c.Read(0))
}
