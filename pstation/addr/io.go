// Package addr collects the memory-mapped register addresses and
// interrupt indices of the machine, grouped by device.
package addr

// Physical memory regions (KUSEG addresses, before region masking).
const (
	RAMStart    uint32 = 0x0000_0000
	RAMSize     uint32 = 2 * 1024 * 1024
	RAMMask     uint32 = RAMSize - 1
	ScratchPad  uint32 = 0x1F80_0000
	ScratchSize uint32 = 1024

	IOPortsStart uint32 = 0x1F80_1000
	IOPortsEnd   uint32 = 0x1F80_3000

	ExpansionRegion1 uint32 = 0x1F00_0000
	ExpansionRegion2 uint32 = 0x1F80_2000

	BIOSStart uint32 = 0x1FC0_0000
	BIOSSize  uint32 = 512 * 1024

	CacheControl uint32 = 0xFFFE_0130
)

// I/O port window (absolute physical addresses, from 0x1F80_1000).
const (
	MemControl1 uint32 = 0x1F80_1000 // 9 words, expansion/delay config
	MemControl2 uint32 = 0x1F80_1060 // RAM_SIZE

	DMABase uint32 = 0x1F80_1080 // 0x80 bytes, 7 channels * 0x10 + control/irq
	DMAEnd  uint32 = 0x1F80_10FF

	TimerBase uint32 = 0x1F80_1100 // 3 timers * 0x10
	TimerEnd  uint32 = 0x1F80_112F

	CDROMBase uint32 = 0x1F80_1800 // 4 index registers
	CDROMEnd  uint32 = 0x1F80_1803

	GPUBase uint32 = 0x1F80_1810 // GP0/GP1 command + GPUSTAT/GPUREAD
	GPUEnd  uint32 = 0x1F80_1817

	SPUBase uint32 = 0x1F80_1C00
	SPUEnd  uint32 = 0x1F80_1FFF

	PadBase uint32 = 0x1F80_1040 // JOY_DATA/STAT/MODE/CTRL/BAUD
	PadEnd  uint32 = 0x1F80_104F

	IRQStat uint32 = 0x1F80_1070
	IRQMask uint32 = 0x1F80_1074
)

// DMA channel register offsets, relative to a channel's 0x10 window.
const (
	DMAMadr uint32 = 0x0
	DMABcr  uint32 = 0x4
	DMAChcr uint32 = 0x8
)

// DMA primary register offsets, within the 0x70-0x7F channel-7 slot.
const (
	DPCR uint32 = 0x70 // DMA control register
	DICR uint32 = 0x74 // DMA interrupt register
)

// DMAChannel names the 7 DMA channels in register-index order.
type DMAChannel uint8

const (
	DMAMDECin DMAChannel = iota
	DMAMDECout
	DMAGPU
	DMACDROM
	DMASPU
	DMAPIO
	DMAOTC
)

// Timer register offsets, relative to a timer's 0x10 window.
const (
	TimerCounter uint32 = 0x0
	TimerMode    uint32 = 0x4
	TimerTarget  uint32 = 0x8
)

// GP0/GP1/GPUREAD/GPUSTAT offsets within the GPU window.
const (
	GP0 uint32 = 0x0 // write: command FIFO, read: GPUREAD
	GP1 uint32 = 0x4 // write: control command, read: GPUSTAT
)

// CD-ROM index-register offsets.
const (
	CDROMIndex    uint32 = 0x0
	CDROMReg1     uint32 = 0x1
	CDROMReg2     uint32 = 0x2
	CDROMReg3     uint32 = 0x3
)

// Controller port / SIO offsets within the pad window.
const (
	JoyData uint32 = 0x00
	JoyStat uint32 = 0x04
	JoyMode uint32 = 0x08
	JoyCtrl uint32 = 0x0A
	JoyBaud uint32 = 0x0E
)

// Interrupt is the index of one of the 11 named IRQ lines aggregated
// by the interrupt controller into I_STAT/I_MASK.
type Interrupt uint8

const (
	IRQVBlank Interrupt = iota
	IRQGPU
	IRQCDROM
	IRQDMA
	IRQTimer0
	IRQTimer1
	IRQTimer2
	IRQControllerMemCard
	IRQSIO
	IRQSPU
	IRQLightpen
)

// NumInterrupts is the number of valid bits in I_STAT/I_MASK.
const NumInterrupts = 11

// IRQStatMask masks writes/reads to I_STAT/I_MASK to the valid bit range.
const IRQStatMask uint32 = (1 << NumInterrupts) - 1

// COP0 exception causes (Cause register ExcCode field, bits 2-6).
const (
	ExcInterrupt          uint32 = 0
	ExcAddressErrorLoad    uint32 = 4
	ExcAddressErrorStore   uint32 = 5
	ExcBusErrorInstr       uint32 = 6
	ExcBusErrorData        uint32 = 7
	ExcSyscall             uint32 = 8
	ExcBreak               uint32 = 9
	ExcReservedInstruction uint32 = 10
	ExcCoprocessorUnusable uint32 = 11
	ExcOverflow            uint32 = 12
)

// COP0 register numbers actually modeled (PSX has no MMU/TLB).
const (
	COP0BadVaddr uint32 = 8
	COP0SR       uint32 = 12
	COP0Cause    uint32 = 13
	COP0EPC      uint32 = 14
	COP0PRId     uint32 = 15
)

// Exception vector bases, selected by SR.BEV.
const (
	ExceptionVectorRAM  uint32 = 0x8000_0080
	ExceptionVectorBIOS uint32 = 0xBFC0_0180
	ResetVector         uint32 = 0xBFC0_0000
)
