package bus

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/stretchr/testify/assert"
)

func TestRAMMirrorsAcrossKUSEGKSEG0KSEG1(t *testing.T) {
	b := New(nil)

	b.Write32(0x0000_1000, 0xDEADBEEF)

	assert.Equal(t, uint32(0xDEADBEEF), b.Read32(0x8000_1000), "KSEG0 must alias the same physical RAM word")
	assert.Equal(t, uint32(0xDEADBEEF), b.Read32(0xA000_1000), "KSEG1 must alias the same physical RAM word")
}

func TestScratchpadIsIndependentOfRAM(t *testing.T) {
	b := New(nil)

	b.Write8(addr.ScratchPad, 0x42)

	assert.Equal(t, uint8(0x42), b.Read8(addr.ScratchPad))
	assert.Equal(t, uint8(0), b.Read8(0))
}

func TestExpansion1ReadsAllOnes(t *testing.T) {
	b := New(nil)
	assert.Equal(t, uint8(0xFF), b.Read8(addr.ExpansionRegion1))
}

func TestRAMSizeRegisterReadsFixedValue(t *testing.T) {
	b := New(nil)
	assert.Equal(t, uint32(0x888), b.Read32(addr.MemControl2))
}

func TestGPURegisterWindowRoutesGP0AndGP1(t *testing.T) {
	b := New(nil)

	b.Write32(addr.GPUBase+addr.GP1, 0x08<<24) // display mode
	status := b.Read32(addr.GPUBase + addr.GP1)
	assert.NotZero(t, status&(1<<26), "GPUSTAT ready bits must still read hard-wired")

	b.Write32(addr.GPUBase+addr.GP0, 0xE1<<24|(1<<7|3)) // draw mode, depth=8bpp
	assert.Equal(t, uint32(1), b.GPU.Status()>>7&3)
}

func TestDMAChannelRegistersRouteThroughBus(t *testing.T) {
	b := New(nil)

	base := addr.DMABase + uint32(addr.DMAOTC)*0x10
	b.Write32(base+addr.DMAMadr, 0x0010_0000)
	b.Write32(base+addr.DMABcr, 16)
	b.Write32(base+addr.DMAChcr, 0x1100_0002)

	chcr := b.Read32(base + addr.DMAChcr)
	assert.Zero(t, chcr&(1<<24), "OTC must complete within the triggering write")
}

func TestBIOSIsReadOnly(t *testing.T) {
	bios := make([]byte, addr.BIOSSize)
	bios[0] = 0xAB
	b := New(bios)

	assert.Equal(t, uint8(0xAB), b.Read8(addr.BIOSStart))
	b.Write8(addr.BIOSStart, 0xCD)
	assert.Equal(t, uint8(0xAB), b.Read8(addr.BIOSStart), "BIOS writes must be discarded")
}

func TestUndecodedAddressPanics(t *testing.T) {
	b := New(nil)
	assert.Panics(t, func() { b.Read32(0x1F80_0500) })
}

func TestIRQControllerWindowRoutesThroughBus(t *testing.T) {
	b := New(nil)
	b.Write32(addr.IRQMask, 1<<addr.IRQVBlank)
	b.IRQ.Trigger(addr.IRQVBlank)
	assert.NotZero(t, b.Read32(addr.IRQStat)&(1<<addr.IRQVBlank))
}

func TestLoadEXECopiesPayloadAndReportsBootState(t *testing.T) {
	b := New(nil)

	data := make([]byte, 0x800+16)
	copy(data, []byte("PS-X EXE"))
	putU32(data, 0x10, 0xBFC0_1000) // pc
	putU32(data, 0x14, 0x1234)      // r28
	putU32(data, 0x18, 0x0001_0000) // load_addr
	putU32(data, 0x1C, 16)          // file_size
	putU32(data, 0x30, 0x801F_FF00) // r29/r30 base
	putU32(data, 0x34, 0)           // r29/r30 offset
	copy(data[0x800:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})

	boot, err := b.LoadEXE(data)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xBFC0_1000), boot.PC)
	assert.Equal(t, uint32(0x1234), boot.R28)
	assert.Equal(t, uint32(0x801F_FF00), boot.R29)
	assert.Equal(t, uint8(1), b.Read8(0x0001_0000))
}

func putU32(b []byte, offset int, v uint32) {
	b[offset] = byte(v)
	b[offset+1] = byte(v >> 8)
	b[offset+2] = byte(v >> 16)
	b[offset+3] = byte(v >> 24)
}
