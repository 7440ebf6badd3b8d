package timer

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/stretchr/testify/assert"
)

func TestFreeRunCountsSysclock(t *testing.T) {
	tm := New(2, addr.IRQTimer2)
	tm.Write(addr.TimerMode, 0) // sync disabled, sysclock source

	tm.Step(100, GPUSync{})

	assert.Equal(t, uint16(100), tm.current)
}

func TestTargetReachedResetsAndArmsIRQ(t *testing.T) {
	tm := New(2, addr.IRQTimer2)
	tm.Write(addr.TimerTarget, 50)
	tm.Write(addr.TimerMode, modeResetOnTarget|modeIRQOnTarget|modeIRQRepeat)

	fired := tm.Step(60, GPUSync{})

	assert.True(t, fired)
	assert.Equal(t, uint16(10), tm.current, "counter must wrap past the target, not clamp to zero")
	assert.NotZero(t, tm.Read(addr.TimerMode)&modeReachedTarget)
}

func TestOneShotIRQFiresOnlyOnce(t *testing.T) {
	tm := New(2, addr.IRQTimer2)
	tm.Write(addr.TimerTarget, 10)
	tm.Write(addr.TimerMode, modeResetOnTarget|modeIRQOnTarget)

	first := tm.Step(10, GPUSync{})
	second := tm.Step(10, GPUSync{})

	assert.True(t, first)
	assert.False(t, second, "a one-shot IRQ must not refire without a mode rewrite")
}

func TestWriteModeResetsCounter(t *testing.T) {
	tm := New(0, addr.IRQTimer0)
	tm.Write(addr.TimerCounter, 500)
	tm.Write(addr.TimerMode, 0)

	assert.Zero(t, tm.current)
}

func TestTimer1ResetSyncAtVBlank(t *testing.T) {
	tm := New(1, addr.IRQTimer1)
	tm.Write(addr.TimerMode, modeSyncEnable|(1<<modeSyncModeShift)) // sync_mode=1: reset at blank

	for i := 0; i < 100; i++ {
		tm.Step(10, GPUSync{InVBlank: false})
	}
	before := tm.current
	assert.NotZero(t, before)

	tm.Step(10, GPUSync{InVBlank: true})

	assert.Zero(t, tm.current, "entering VBlank must reset the counter under reset-at-blank sync")
}

func TestTimer2StopSyncHaltsCounter(t *testing.T) {
	tm := New(2, addr.IRQTimer2)
	tm.Write(addr.TimerMode, modeSyncEnable) // sync_mode=0: stop at current value

	tm.Step(1000, GPUSync{})

	assert.Zero(t, tm.current, "sync_mode Stop must never advance the counter")
}
