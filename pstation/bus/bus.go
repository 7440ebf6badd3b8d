// Package bus implements the machine's single 32-bit address space:
// region-masked KUSEG/KSEG0/KSEG1/KSEG2 decoding and the physical
// memory map dispatch table that wires RAM, BIOS, scratchpad and
// every memory-mapped device together.
package bus

import (
	"fmt"
	"log/slog"

	"github.com/gopsx/pstation/addr"
	"github.com/gopsx/pstation/cdrom"
	"github.com/gopsx/pstation/controller"
	"github.com/gopsx/pstation/dma"
	"github.com/gopsx/pstation/gpu"
	"github.com/gopsx/pstation/irq"
	"github.com/gopsx/pstation/spu"
	"github.com/gopsx/pstation/timer"
)

// regionMask collapses KUSEG/KSEG0/KSEG1 mirrors into the same
// physical window and leaves KSEG2 (index 6-7) untouched, indexed by
// addr>>29.
var regionMask = [8]uint32{
	0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF,
	0x7FFFFFFF, 0x1FFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF,
}

func mask(address uint32) uint32 {
	return address & regionMask[address>>29]
}

// Bus owns RAM, BIOS, scratchpad, and every memory-mapped device, and
// decodes every CPU access into the right one.
type Bus struct {
	ram      []byte
	scratch  []byte
	bios     []byte
	ramDevice ramDevice

	memControl1  [9]uint32
	memControl2  uint32
	cacheControl uint32
	post         uint8

	IRQ    *irq.Controller
	DMA    *dma.Controller
	Timers [3]*timer.Timer
	Pad    *controller.Port
	GPU    *gpu.GPU
	CDROM  *cdrom.Drive
	SPU    *spu.Unit
}

// ramDevice adapts Bus's RAM slice to dma.RAM: addresses arrive
// pre-masked to the 2MB window by the DMA controller.
type ramDevice struct{ ram []byte }

func (r ramDevice) Read32(address uint32) uint32 {
	a := address & addr.RAMMask
	return readLE(r.ram, a, 4)
}

func (r ramDevice) Write32(address uint32, value uint32) {
	a := address & addr.RAMMask
	writeLE(r.ram, a, 4, value)
}

// New returns a Bus with bios loaded read-only into the BIOS window
// and every device wired to a shared interrupt controller.
func New(bios []byte) *Bus {
	b := &Bus{
		ram:     make([]byte, addr.RAMSize),
		scratch: make([]byte, addr.ScratchSize),
		bios:    make([]byte, addr.BIOSSize),
	}
	copy(b.bios, bios)
	b.ramDevice = ramDevice{ram: b.ram}

	b.IRQ = irq.New()
	b.GPU = gpu.New()
	b.CDROM = cdrom.New(b.IRQ)
	b.DMA = dma.New(b.ramDevice, b.GPU, b.CDROM, b.IRQ)
	b.Pad = controller.New(b.IRQ)
	b.SPU = spu.New()
	b.Timers[0] = timer.New(0, addr.IRQTimer0)
	b.Timers[1] = timer.New(1, addr.IRQTimer1)
	b.Timers[2] = timer.New(2, addr.IRQTimer2)

	b.memControl2 = 0x0000_0888

	return b
}

// RAM returns the raw backing RAM, for the PS-X EXE loader.
func (b *Bus) RAM() []byte { return b.ram }

func (b *Bus) Read8(address uint32) uint8   { return uint8(b.read(address, 1)) }
func (b *Bus) Read16(address uint32) uint16 { return uint16(b.read(address, 2)) }
func (b *Bus) Read32(address uint32) uint32 { return b.read(address, 4) }

func (b *Bus) Write8(address uint32, value uint8)   { b.write(address, 1, uint32(value)) }
func (b *Bus) Write16(address uint32, value uint16) { b.write(address, 2, uint32(value)) }
func (b *Bus) Write32(address uint32, value uint32) { b.write(address, 4, value) }

// read dispatches a physical-space read of width bytes, in the order
// the memory map table lists its regions.
func (b *Bus) read(address uint32, width int) uint32 {
	phys := mask(address)

	switch {
	case phys < addr.RAMSize:
		return readLE(b.ram, phys, width)
	case inRange(phys, addr.ExpansionRegion1, 0x80000):
		return 0xFFFF_FFFF
	case inRange(phys, addr.ScratchPad, addr.ScratchSize):
		return readLE(b.scratch, phys-addr.ScratchPad, width)
	case inRange(phys, addr.MemControl1, 0x24):
		return b.memControl1[(phys-addr.MemControl1)/4]
	case inRange(phys, addr.PadBase, addr.PadEnd-addr.PadBase+1):
		return b.Pad.Read(phys - addr.PadBase)
	case inRange(phys, addr.MemControl2, 4):
		return b.memControl2
	case inRange(phys, addr.IRQStat, addr.IRQMask-addr.IRQStat+4):
		return b.IRQ.Read(phys - addr.IRQStat)
	case inRange(phys, addr.DMABase, addr.DMAEnd-addr.DMABase+1):
		return b.DMA.Read(phys - addr.DMABase)
	case inRange(phys, addr.TimerBase, addr.TimerEnd-addr.TimerBase+1):
		idx, reg := timerSplit(phys)
		return b.Timers[idx].Read(reg)
	case inRange(phys, addr.CDROMBase, addr.CDROMEnd-addr.CDROMBase+1):
		return b.CDROM.Read(phys - addr.CDROMBase)
	case inRange(phys, addr.GPUBase, addr.GPUEnd-addr.GPUBase+1):
		return b.readGPU(phys - addr.GPUBase)
	case inRange(phys, addr.SPUBase, addr.SPUEnd-addr.SPUBase+1):
		return uint32(b.SPU.Read8(phys - addr.SPUBase))
	case inRange(phys, addr.ExpansionRegion2, 0x42):
		if phys == addr.ExpansionRegion2+0x41 {
			return uint32(b.post)
		}
		return 0xFF
	case inRange(phys, addr.BIOSStart, addr.BIOSSize):
		return readLE(b.bios, phys-addr.BIOSStart, width)
	case inRange(phys, addr.CacheControl, 4):
		return b.cacheControl
	default:
		slog.Error("bus: read of undecoded address", "addr", fmt.Sprintf("0x%08X", address))
		panic(fmt.Sprintf("bus: undecoded read at 0x%08X", address))
	}
}

func (b *Bus) write(address uint32, width int, value uint32) {
	phys := mask(address)

	switch {
	case phys < addr.RAMSize:
		writeLE(b.ram, phys, width, value)
	case inRange(phys, addr.ExpansionRegion1, 0x80000):
		// No device present; writes are discarded.
	case inRange(phys, addr.ScratchPad, addr.ScratchSize):
		writeLE(b.scratch, phys-addr.ScratchPad, width, value)
	case inRange(phys, addr.MemControl1, 0x24):
		b.memControl1[(phys-addr.MemControl1)/4] = value
	case inRange(phys, addr.PadBase, addr.PadEnd-addr.PadBase+1):
		b.Pad.Write(phys-addr.PadBase, value)
	case inRange(phys, addr.MemControl2, 4):
		b.memControl2 = value
	case inRange(phys, addr.IRQStat, addr.IRQMask-addr.IRQStat+4):
		b.IRQ.Write(phys-addr.IRQStat, value)
	case inRange(phys, addr.DMABase, addr.DMAEnd-addr.DMABase+1):
		b.DMA.Write(phys-addr.DMABase, value)
	case inRange(phys, addr.TimerBase, addr.TimerEnd-addr.TimerBase+1):
		idx, reg := timerSplit(phys)
		b.Timers[idx].Write(reg, value)
	case inRange(phys, addr.CDROMBase, addr.CDROMEnd-addr.CDROMBase+1):
		b.CDROM.Write(phys-addr.CDROMBase, value)
	case inRange(phys, addr.GPUBase, addr.GPUEnd-addr.GPUBase+1):
		b.writeGPU(phys-addr.GPUBase, value)
	case inRange(phys, addr.SPUBase, addr.SPUEnd-addr.SPUBase+1):
		b.SPU.Write8(phys-addr.SPUBase, uint8(value))
	case inRange(phys, addr.ExpansionRegion2, 0x42):
		if phys == addr.ExpansionRegion2+0x41 {
			b.post = uint8(value)
		}
		// Other expansion-2 offsets are silently ignored.
	case inRange(phys, addr.BIOSStart, addr.BIOSSize):
		// BIOS is read-only; writes are discarded.
	case inRange(phys, addr.CacheControl, 4):
		b.cacheControl = value
	default:
		slog.Error("bus: write to undecoded address", "addr", fmt.Sprintf("0x%08X", address), "value", value)
		panic(fmt.Sprintf("bus: undecoded write at 0x%08X", address))
	}
}

// readGPU/writeGPU dispatch the 2-register GPU window: GP0/GPUREAD at
// +0, GP1/GPUSTAT at +4.
func (b *Bus) readGPU(offset uint32) uint32 {
	if offset == addr.GP1 {
		return b.GPU.Status()
	}
	return b.GPU.ReadGPUREAD()
}

func (b *Bus) writeGPU(offset uint32, value uint32) {
	if offset == addr.GP1 {
		b.GPU.WriteGP1(value)
		return
	}
	b.GPU.WriteGP0(value)
}

func timerSplit(phys uint32) (index uint32, reg uint32) {
	rel := phys - addr.TimerBase
	return rel / 0x10, rel % 0x10
}

func inRange(phys, base, size uint32) bool {
	return phys >= base && phys < base+size
}

func readLE(mem []byte, offset uint32, width int) uint32 {
	var v uint32
	for i := 0; i < width; i++ {
		v |= uint32(mem[int(offset)+i]) << (8 * uint(i))
	}
	return v
}

func writeLE(mem []byte, offset uint32, width int, value uint32) {
	for i := 0; i < width; i++ {
		mem[int(offset)+i] = byte(value >> (8 * uint(i)))
	}
}
