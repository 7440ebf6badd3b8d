package pstation

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/stretchr/testify/assert"
)

func TestNewBootsWithBEVSetAndResetVector(t *testing.T) {
	m := New(nil)

	assert.Equal(t, addr.ResetVector, m.CPU().PC())
	assert.NotZero(t, m.CPU().SR()&(1<<22), "cold boot must set SR.BEV")
}

func TestNewWithEXEHotStartsAtEntryPoint(t *testing.T) {
	data := make([]byte, 0x800+4)
	copy(data, []byte("PS-X EXE"))
	putU32(data, 0x10, 0x8001_0000) // pc
	putU32(data, 0x14, 0x4242)      // r28
	putU32(data, 0x18, 0x0001_0000) // load_addr
	putU32(data, 0x1C, 4)           // file_size
	putU32(data, 0x30, 0x801F_FF00) // r29/r30 base
	putU32(data, 0x34, 0)           // r29/r30 offset
	putU32(data, 0x800, 0xDEADBEEF)

	m, err := NewWithEXE(nil, data)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x8001_0000), m.CPU().PC())
	assert.Equal(t, uint32(0x4242), m.CPU().Reg(28))
	assert.Equal(t, uint32(0x801F_FF00), m.CPU().Reg(29))
	assert.Equal(t, uint32(0xDEADBEEF), m.Bus().Read32(0x0001_0000))
}

// loopBIOS returns a BIOS image whose reset vector holds J 0xBFC00000
// followed by a zero word (a NOP delay slot), so the CPU spins inside
// the ROM for as many frames as a test runs. An all-zero BIOS would be
// a NOP sled that leaves the 512KB ROM after 131072 instructions, well
// short of the ~571000 a frame takes, and the bus panics on the
// undecoded address past its end.
func loopBIOS() []byte {
	bios := make([]byte, addr.BIOSSize)
	putU32(bios, 0, 0x0BF0_0000) // J 0xBFC00000
	return bios
}

func TestRunFrameAdvancesCountersAndFiresVBlankIRQ(t *testing.T) {
	m := New(loopBIOS())
	m.Bus().Write32(addr.IRQMask, 1<<addr.IRQVBlank)

	m.RunFrame()

	assert.Equal(t, uint64(1), m.FrameCount())
	assert.NotZero(t, m.InstructionCount())
	assert.NotZero(t, m.Bus().Read32(addr.IRQStat)&(1<<addr.IRQVBlank),
		"a VBlank edge must latch I_STAT when the source is unmasked")
}

func TestRunFrameIsDeterministicInQuantumCount(t *testing.T) {
	m := New(loopBIOS())
	m.RunFrame()
	first := m.InstructionCount()

	m2 := New(loopBIOS())
	m2.RunFrame()
	second := m2.InstructionCount()

	assert.Equal(t, first, second, "identical cold boots must reach VBlank after the same instruction count")
}

func putU32(b []byte, offset int, v uint32) {
	b[offset] = byte(v)
	b[offset+1] = byte(v >> 8)
	b[offset+2] = byte(v >> 16)
	b[offset+3] = byte(v >> 24)
}
