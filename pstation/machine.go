// Package pstation wires the CPU, GTE, and bus together into the
// machine's single cooperative scheduler: a fixed per-quantum device
// order with no parallelism and no preemption.
package pstation

import (
	"log/slog"

	"github.com/gopsx/pstation/addr"
	"github.com/gopsx/pstation/bus"
	"github.com/gopsx/pstation/cpu"
	"github.com/gopsx/pstation/gpu"
	"github.com/gopsx/pstation/gte"
	"github.com/gopsx/pstation/timer"
)

// cyclesPerQuantum is how many CPU instructions the driver advances
// before stepping every device, matching the "tens to hundreds of
// instructions" quantum the cooperative scheduler assumes.
const cyclesPerQuantum = 32

// Machine owns the CPU, GTE, and the bus that in turn owns every
// memory-mapped device, and drives them through the fixed order:
// CPU quantum, then DMA, CD-ROM, controller, GPU, timers.
type Machine struct {
	cpu *cpu.CPU
	gte *gte.GTE
	bus *bus.Bus

	instructionCount uint64
	frameCount       uint64
}

// New returns a Machine with the BIOS image loaded read-only and the
// CPU reset to its cold-boot entry point (SR.BEV set, PC at the BIOS
// reset vector).
func New(bios []byte) *Machine {
	b := bus.New(bios)
	g := gte.New()
	c := cpu.New(b, g)

	return &Machine{cpu: c, gte: g, bus: b}
}

// NewWithEXE loads bios and then side-loads a PS-X EXE image directly
// into RAM, hot-starting the CPU at the EXE's entry point instead of
// running the BIOS boot sequence.
func NewWithEXE(bios, exe []byte) (*Machine, error) {
	m := New(bios)

	boot, err := m.bus.LoadEXE(exe)
	if err != nil {
		return nil, err
	}

	m.cpu.SetPC(boot.PC)
	m.cpu.SetReg(28, boot.R28)
	m.cpu.SetReg(29, boot.R29)
	m.cpu.SetReg(30, boot.R30)

	return m, nil
}

// CPU exposes the MIPS core, for debuggers and tests.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Bus exposes the address space and its devices, for debuggers, the
// presenter, and tests.
func (m *Machine) Bus() *bus.Bus { return m.bus }

// InstructionCount returns the number of CPU steps executed so far.
func (m *Machine) InstructionCount() uint64 { return m.instructionCount }

// FrameCount returns the number of VBlank edges observed so far.
func (m *Machine) FrameCount() uint64 { return m.frameCount }

// RunFrame advances the machine one quantum at a time until a VBlank
// edge fires, then returns so the presenter can read the framebuffer.
func (m *Machine) RunFrame() {
	for !m.step() {
	}
	m.frameCount++
}

// step advances the CPU one quantum, then every device one tick in
// the order DMA, CD-ROM, controller, GPU, timers: GPU must run before
// timers because timers consume the GPU's HBlank/VBlank snapshot.
// DMA itself needs no periodic step here, its transfers run to
// completion synchronously on the triggering register write.
func (m *Machine) step() (vblank bool) {
	for i := 0; i < cyclesPerQuantum; i++ {
		m.cpu.CheckInterrupts()
		m.cpu.Step()
		m.instructionCount++
	}

	cycles := uint32(cyclesPerQuantum)

	m.bus.CDROM.Step(cycles)
	m.bus.Pad.Tick(int(cycles))

	_, vblank = m.bus.GPU.Tick(cycles)
	sync := toTimerSync(m.bus.GPU.Sync())
	for _, t := range m.bus.Timers {
		if t.Step(cycles, sync) {
			m.bus.IRQ.Trigger(t.Source())
		}
	}

	if vblank {
		m.bus.IRQ.Trigger(addr.IRQVBlank)
	}

	m.cpu.SetHardwareInterruptPending(m.bus.IRQ.Pending())

	if vblank {
		slog.Debug("machine: vblank", "frame", m.frameCount, "instructions", m.instructionCount)
	}

	return vblank
}

func toTimerSync(s gpu.Sync) timer.GPUSync {
	return timer.GPUSync{InHBlank: s.InHBlank, InVBlank: s.InVBlank, DotDiv: s.DotDiv}
}
