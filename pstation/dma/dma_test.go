package dma

import (
	"testing"

	"github.com/gopsx/pstation/addr"
	"github.com/gopsx/pstation/irq"
	"github.com/stretchr/testify/assert"
)

type fakeRAM struct{ mem [2 * 1024 * 1024]byte }

func (r *fakeRAM) Read32(a uint32) uint32 {
	a &= addr.RAMMask
	return uint32(r.mem[a]) | uint32(r.mem[a+1])<<8 | uint32(r.mem[a+2])<<16 | uint32(r.mem[a+3])<<24
}
func (r *fakeRAM) Write32(a uint32, v uint32) {
	a &= addr.RAMMask
	r.mem[a] = byte(v)
	r.mem[a+1] = byte(v >> 8)
	r.mem[a+2] = byte(v >> 16)
	r.mem[a+3] = byte(v >> 24)
}

type fakeGPU struct {
	received []uint32
}

func (g *fakeGPU) WriteGP0(v uint32)    { g.received = append(g.received, v) }
func (g *fakeGPU) ReadGPUREAD() uint32  { return 0 }

type fakeCDROM struct{}

func (fakeCDROM) ReadSectorWord() uint32 { return 0 }

func newTestController() (*Controller, *fakeRAM, *fakeGPU) {
	ram := &fakeRAM{}
	gpu := &fakeGPU{}
	c := New(ram, gpu, fakeCDROM{}, irq.New())
	return c, ram, gpu
}

func TestOTCInitializesReverseLinkedList(t *testing.T) {
	c, ram, _ := newTestController()

	c.Write(uint32(addr.DMAOTC)*0x10+addr.DMAMadr, 0x0010_0000)
	c.Write(uint32(addr.DMAOTC)*0x10+addr.DMABcr, 16)
	c.Write(uint32(addr.DMAOTC)*0x10+addr.DMAChcr, 0x1100_0002)

	assert.Equal(t, uint32(0x000F_FFF8), ram.Read32(0x000F_FFFC), "each entry but the last points to the one below it")
	assert.Equal(t, uint32(0x00FF_FFFF), ram.Read32(0x000F_FFC0), "the lowest entry terminates the list")

	chcr := c.Read(uint32(addr.DMAOTC)*0x10 + addr.DMAChcr)
	assert.Zero(t, chcr&(1<<24), "enable must clear on completion")
	assert.Zero(t, chcr&(1<<28), "manual trigger must clear on completion")
}

func TestLinkedListForwardsWordsToGP0UntilTerminator(t *testing.T) {
	c, ram, gpu := newTestController()

	// Node at 0x1000: size=2, next=0x2000, payload 0xAAAA, 0xBBBB.
	ram.Write32(0x1000, (2<<24)|0x2000)
	ram.Write32(0x1004, 0xAAAA)
	ram.Write32(0x1008, 0xBBBB)
	// Terminator node at 0x2000: size=0, next marked end-of-list.
	ram.Write32(0x2000, 0x00FF_FFFF)

	chBase := uint32(addr.DMAGPU) * 0x10
	c.Write(chBase+addr.DMAMadr, 0x1000)
	c.Write(chBase+addr.DMAChcr, 0x0100_0401) // dir=RAM->device, sync=linked-list, enable

	assert.Equal(t, []uint32{0xAAAA, 0xBBBB}, gpu.received)
}

func TestDICRMasterFlagLatchesOnZeroToOneTransition(t *testing.T) {
	c, _, _ := newTestController()

	c.Write(addr.DICR, (1<<23)|(1<<16)) // master enable + channel 0 IRQ enable

	c.complete(addr.DMAMDECin)

	assert.NotZero(t, c.Read(addr.DICR)&(1<<31))
	assert.True(t, c.irqc.Pending() || c.irqc.Stat()&(1<<addr.IRQDMA) != 0)
}
