package cpu

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/stretchr/testify/assert"
)

// fakeBus is a flat 1MB RAM used only to exercise the CPU in
// isolation; the real bus/region-mapping behavior is tested in the
// bus package.
type fakeBus struct {
	mem [1024 * 1024]byte
}

func (b *fakeBus) off(a uint32) uint32 { return a & (uint32(len(b.mem)) - 1) }

func (b *fakeBus) Read8(a uint32) uint8   { return b.mem[b.off(a)] }
func (b *fakeBus) Read16(a uint32) uint16 {
	o := b.off(a)
	return uint16(b.mem[o]) | uint16(b.mem[o+1])<<8
}
func (b *fakeBus) Read32(a uint32) uint32 {
	o := b.off(a)
	return uint32(b.mem[o]) | uint32(b.mem[o+1])<<8 | uint32(b.mem[o+2])<<16 | uint32(b.mem[o+3])<<24
}
func (b *fakeBus) Write8(a uint32, v uint8) { b.mem[b.off(a)] = v }
func (b *fakeBus) Write16(a uint32, v uint16) {
	o := b.off(a)
	b.mem[o] = byte(v)
	b.mem[o+1] = byte(v >> 8)
}
func (b *fakeBus) Write32(a uint32, v uint32) {
	o := b.off(a)
	b.mem[o] = byte(v)
	b.mem[o+1] = byte(v >> 8)
	b.mem[o+2] = byte(v >> 16)
	b.mem[o+3] = byte(v >> 24)
}

type fakeGTE struct{}

func (fakeGTE) Execute(instr uint32)            {}
func (fakeGTE) Read(reg uint32) uint32          { return 0 }
func (fakeGTE) Write(reg uint32, value uint32)  {}
func (fakeGTE) ReadControl(reg uint32) uint32   { return 0 }
func (fakeGTE) WriteControl(reg, value uint32)  {}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	c := New(bus, fakeGTE{})
	return c, bus
}

func asmR(funct, rs, rt, rd, shamt uint32) uint32 {
	return (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}
func asmI(op, rs, rt uint32, imm int32) uint32 {
	return (op << 26) | (rs << 21) | (rt << 16) | (uint32(imm) & 0xFFFF)
}
func asmJ(op, target uint32) uint32 {
	return (op << 26) | (target >> 2)
}

// loadProgram writes instructions starting at addr.ResetVector.
func loadProgram(bus *fakeBus, instrs ...uint32) {
	for i, instr := range instrs {
		bus.Write32(addr.ResetVector+uint32(i*4), instr)
	}
}

func TestColdBootInvariants(t *testing.T) {
	c, _ := newTestCPU()
	assert.Equal(t, uint32(addr.ResetVector), c.PC())
	assert.NotZero(t, c.SR()&(1<<22), "SR.BEV must be set on cold boot")
}

func TestAddOverflowTraps(t *testing.T) {
	c, bus := newTestCPU()
	c.SetReg(1, 0x7FFFFFFF)
	c.SetReg(2, 1)
	loadProgram(bus, asmR(0x20, 1, 2, 3, 0)) // ADD r3, r1, r2

	c.Step()

	assert.Equal(t, uint32(0), c.Reg(3), "destination must not be written back on trap")
	assert.Equal(t, addr.ExcOverflow, (c.cop0.cause>>2)&0x1F)
}

func TestAdduWrapsWithoutTrap(t *testing.T) {
	c, bus := newTestCPU()
	c.SetReg(1, 0x7FFFFFFF)
	c.SetReg(2, 1)
	loadProgram(bus, asmR(0x21, 1, 2, 3, 0)) // ADDU r3, r1, r2

	c.Step()

	assert.Equal(t, uint32(0x80000000), c.Reg(3))
}

func TestDivByZero(t *testing.T) {
	c, bus := newTestCPU()
	c.SetReg(1, 10)
	c.SetReg(2, 0)
	loadProgram(bus,
		asmR(0x1A, 1, 2, 0, 0), // DIV r1, r2
		asmR(0x12, 0, 0, 3, 0), // MFLO r3
		asmR(0x10, 0, 0, 4, 0), // MFHI r4
	)

	c.Step()
	c.Step()
	c.Step()

	assert.Equal(t, uint32(0xFFFFFFFF), c.Reg(3))
	assert.Equal(t, uint32(10), c.Reg(4))
}

func TestDivMinIntByNegOne(t *testing.T) {
	c, bus := newTestCPU()
	c.SetReg(1, 0x80000000) // INT_MIN
	c.SetReg(2, 0xFFFFFFFF) // -1
	loadProgram(bus,
		asmR(0x1A, 1, 2, 0, 0),
		asmR(0x12, 0, 0, 3, 0),
		asmR(0x10, 0, 0, 4, 0),
	)

	c.Step()
	c.Step()
	c.Step()

	assert.Equal(t, uint32(0x80000000), c.Reg(3))
	assert.Equal(t, uint32(0), c.Reg(4))
}

func TestDivuByZero(t *testing.T) {
	c, bus := newTestCPU()
	c.SetReg(1, 42)
	c.SetReg(2, 0)
	loadProgram(bus,
		asmR(0x1B, 1, 2, 0, 0),
		asmR(0x12, 0, 0, 3, 0),
	)

	c.Step()
	c.Step()

	assert.Equal(t, uint32(0xFFFFFFFF), c.Reg(3))
}

func TestBranchDelaySlotExecutes(t *testing.T) {
	c, bus := newTestCPU()
	c.SetReg(1, 1)
	c.SetReg(2, 1)
	loadProgram(bus,
		asmI(0x04, 1, 2, 2), // BEQ r1, r2, +2 (target is 2 words past the delay slot)
		asmI(0x09, 0, 3, 0xAAAA), // delay slot: ADDIU r3, r0, 0xAAAA (sign-extended, so r3 = 0xFFFFAAAA)
	)

	c.Step() // BEQ, schedules branch
	c.Step() // delay slot executes regardless of the branch outcome

	assert.NotEqual(t, uint32(0), c.Reg(3), "delay slot instruction must execute")
}

func TestLoadDelaySlot(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x1000, 0xDEADBEEF)
	c.SetReg(1, 0x1000)
	loadProgram(bus,
		asmI(0x23, 1, 2, 0),    // LW r2, 0(r1)
		asmR(0x21, 0, 0, 3, 0), // ADDU r3, r0, r0 (unrelated instruction in the delay slot)
		asmR(0x21, 2, 0, 4, 0), // ADDU r4, r2, r0 -- r2 must now be visible
	)

	c.Step() // LW issues the load, result not yet visible
	assert.NotEqual(t, uint32(0xDEADBEEF), c.Reg(2), "load result must not be visible to the next instruction")

	c.Step() // unrelated instruction in the delay slot; the load is still pending
	assert.Equal(t, uint32(0), c.Reg(2), "load result must not be committed right after the delay-slot instruction")

	c.Step() // commits the pending load at its start, before ADDU reads r2
	assert.Equal(t, uint32(0xDEADBEEF), c.Reg(4))
}

// TestLoadDelaySlotInstructionSeesPreLoadValue covers the case
// TestLoadDelaySlot doesn't: the instruction occupying the load's own
// delay slot reading the loaded register directly. It must still see
// the pre-load value; only the instruction after that one may observe
// the load.
func TestLoadDelaySlotInstructionSeesPreLoadValue(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x1000, 0xDEADBEEF)
	c.SetReg(1, 0x1000)
	loadProgram(bus,
		asmI(0x23, 1, 2, 0),    // LW r2, 0(r1)
		asmR(0x21, 2, 0, 4, 0), // ADDU r4, r2, r0 -- delay slot, must read pre-load r2
		asmR(0x21, 2, 0, 5, 0), // ADDU r5, r2, r0 -- r2 must now be visible
	)

	c.Step() // LW issues the load, result not yet visible

	c.Step() // delay-slot instruction reads r2 before the load commits
	assert.Zero(t, c.Reg(4), "the delay-slot instruction must read the pre-load value of its source register")
	assert.NotEqual(t, uint32(0xDEADBEEF), c.Reg(2), "the load must still not have committed right after the delay-slot instruction")

	c.Step() // second instruction after the load sees the committed value
	assert.Equal(t, uint32(0xDEADBEEF), c.Reg(5))
}

func TestLwlLwrUseMaskedAddress(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x2000, 0x12345678)
	c.SetReg(1, 0x2003)
	c.SetReg(2, 0)
	loadProgram(bus,
		asmI(0x22, 1, 2, 0), // LWL r2, 0(r1) ; addr 0x2003, 0x2003&3==3 -> full word
		asmR(0x00, 0, 0, 0, 0),
	)

	c.Step()
	c.Step()
	c.Step() // the LWL result commits at the start of the second instruction after it

	assert.Equal(t, uint32(0x12345678), c.Reg(2))
}
