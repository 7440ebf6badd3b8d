// Package timer implements the machine's three counters: dotclock/
// HBlank/sysclock sources, per-timer sync gating, and target/overflow
// IRQ dispatch through the interrupt controller.
package timer

import "github.com/gopsx/pstation/addr"

// Mode register bit positions.
const (
	modeSyncEnable     = 1 << 0
	modeSyncModeShift  = 1 // 2 bits, 1-2
	modeResetOnTarget  = 1 << 3
	modeIRQOnTarget    = 1 << 4
	modeIRQOnOverflow  = 1 << 5
	modeIRQRepeat      = 1 << 6
	modeIRQToggle      = 1 << 7 // 0=pulse, 1=toggle
	modeClockSourceShift = 8    // 2 bits, 8-9
	modeIRQRequest     = 1 << 10
	modeReachedTarget  = 1 << 11
	modeReachedOverflow = 1 << 12
)

// GPUSync is the per-tick snapshot the GPU hands to the timers.
type GPUSync struct {
	InHBlank bool
	InVBlank bool
	DotDiv   uint32
}

// Timer models one of the three hardware counters. index identifies
// which of the three it is (0, 1, 2), since sync-mode and clock-source
// meanings differ per timer.
type Timer struct {
	index  int
	source addr.Interrupt

	current uint16
	target  uint16
	mode    uint32

	irqRequest   bool // published as-is into bit10: true = no request, an IRQ drives it false
	oneShotFired bool
	pauseLatched bool
}

// New returns a timer bound to the interrupt line it raises.
func New(index int, source addr.Interrupt) *Timer {
	return &Timer{index: index, source: source, irqRequest: true}
}

func (t *Timer) syncEnabled() bool   { return t.mode&modeSyncEnable != 0 }
func (t *Timer) syncMode() uint32    { return (t.mode >> modeSyncModeShift) & 3 }
func (t *Timer) clockSource() uint32 { return (t.mode >> modeClockSourceShift) & 3 }

// Read dispatches an I/O read within the timer's 16-byte window.
func (t *Timer) Read(offset uint32) uint32 {
	switch offset {
	case addr.TimerCounter:
		return uint32(t.current)
	case addr.TimerMode:
		value := t.mode
		if !t.irqRequest {
			value &^= modeIRQRequest
		} else {
			value |= modeIRQRequest
		}
		// Reading the mode register clears the latched reached_target/
		// reached_overflow status bits.
		t.mode &^= modeReachedTarget | modeReachedOverflow
		return value
	case addr.TimerTarget:
		return uint32(t.target)
	default:
		return 0
	}
}

// Write dispatches an I/O write within the timer's window. Writing
// mode resets current to zero, matching the hardware's counter
// reset-on-configuration-write behavior; writing target leaves current
// unchanged.
func (t *Timer) Write(offset uint32, value uint32) {
	switch offset {
	case addr.TimerCounter:
		t.current = uint16(value)
	case addr.TimerMode:
		t.mode = value & 0x3FFF
		t.current = 0
		t.irqRequest = true
		t.oneShotFired = false
		t.pauseLatched = false
	case addr.TimerTarget:
		t.target = uint16(value)
	}
}

// gate evaluates the per-timer sync mode against the GPU snapshot,
// returning whether the counter should advance this tick and whether
// it should reset to zero immediately.
func (t *Timer) gate(sync GPUSync) (advance bool, reset bool) {
	if !t.syncEnabled() {
		return true, false
	}

	switch t.index {
	case 0, 1:
		inBlank := sync.InHBlank
		if t.index == 1 {
			inBlank = sync.InVBlank
		}
		switch t.syncMode() {
		case 0: // Pause during blank
			return !inBlank, false
		case 1: // Reset at blank, free-run otherwise
			return true, inBlank
		case 2: // Reset and pause during blank
			return !inBlank, inBlank
		case 3: // Pause until one blank edge occurs, then free-run
			if !t.pauseLatched {
				if inBlank {
					t.pauseLatched = true
				}
				return inBlank, false
			}
			return true, false
		}
	case 2:
		switch t.syncMode() {
		case 0, 3: // Stop at current value
			return false, false
		default: // Free run
			return true, false
		}
	}
	return true, false
}

// convert applies the clock-source divisor for the given raw cycle
// count, per §4.7's per-source formulas.
func (t *Timer) convert(cycles uint32, sync GPUSync) uint32 {
	switch t.index {
	case 0:
		if t.clockSource()&1 != 0 { // dotclock
			dotDiv := sync.DotDiv
			if dotDiv == 0 {
				dotDiv = 1
			}
			return cycles * 11 / 7 / dotDiv
		}
		return cycles
	case 1:
		if t.clockSource()&1 != 0 { // hblank
			return cycles / 2160
		}
		return cycles
	case 2:
		if t.clockSource()&2 != 0 { // sysclock/8
			return cycles / 8
		}
		return cycles
	}
	return cycles
}

// Step advances the timer by cycles CPU clocks, applying its sync
// gate and clock-source conversion, and returns whether it just armed
// an IRQ (the caller, the machine's device tick, latches that into the
// interrupt controller).
func (t *Timer) Step(cycles uint32, sync GPUSync) bool {
	advance, reset := t.gate(sync)
	if reset {
		// The tick that crosses into blanking resets the counter and
		// does not also advance it: the reached-zero edge must be
		// observable before any further counting resumes.
		t.current = 0
		return false
	}
	if !advance {
		return false
	}

	delta := t.convert(cycles, sync)
	next := uint32(t.current) + delta

	armed := false

	if uint32(t.target) != 0 && next >= uint32(t.target) {
		t.mode |= modeReachedTarget
		if t.mode&modeResetOnTarget != 0 {
			next -= uint32(t.target)
		}
		if t.mode&modeIRQOnTarget != 0 {
			armed = true
		}
	}

	if next >= 0xFFFF {
		t.mode |= modeReachedOverflow
		if t.mode&modeIRQOnOverflow != 0 {
			armed = true
		}
		next &= 0xFFFF
	}

	t.current = uint16(next)

	if armed {
		return t.fireIRQ()
	}
	return false
}

// fireIRQ applies the toggle/pulse and one-shot/repeat semantics of
// irq_request, reporting whether the interrupt controller's line
// should actually be triggered this tick.
func (t *Timer) fireIRQ() bool {
	prev := t.irqRequest

	if t.mode&modeIRQToggle != 0 {
		t.irqRequest = !t.irqRequest
	} else {
		t.irqRequest = false
	}

	transition := prev && !t.irqRequest

	fire := false
	if t.mode&modeIRQRepeat != 0 {
		fire = transition
	} else if transition && !t.oneShotFired {
		fire = true
		t.oneShotFired = true
	}

	if t.mode&modeIRQToggle == 0 {
		t.irqRequest = true // pulse mode returns high immediately
	}

	return fire
}

// Source returns the interrupt index this timer raises.
func (t *Timer) Source() addr.Interrupt { return t.source }
