package gpu

import (
	"fmt"
	"log/slog"
)

// polylineTerminator ends a GP0 polyline command's vertex stream.
const polylineTerminator = 0x5555_5555

// vramTransfer tracks an in-progress CPU<->VRAM rectangular transfer
// armed by GP0(0xA0)/GP0(0xC0).
type vramTransfer struct {
	active bool
	x, y   int
	w, h   int
	cx, cy int
}

// GPU is the command processor, VRAM and rasterizer: GP0/GP1 register
// writes mutate its draw-mode state and VRAM, GPUSTAT/GPUREAD expose it
// back to the bus, and Tick advances its pixel clock to emit the
// HBlank/VBlank edges the timers and interrupt controller consume.
type GPU struct {
	vram *VRAM

	fifo        []uint32
	cmdWords    int
	cmdVariable bool

	cpuToVRAM vramTransfer
	vramToCPU vramTransfer
	gpuread   uint32

	// Draw mode (GP0 0xE1, and the texpage word of textured polygons).
	texPageBaseX     uint8
	texPageBaseY     uint8
	semiTransparency uint8
	texPageDepth     uint8
	dithering        bool
	drawToDisplay    bool
	textureDisable   bool
	rectTextureXFlip bool
	rectTextureYFlip bool

	// Texture window (GP0 0xE2), in 8-texel units.
	texWindowMaskX   uint8
	texWindowMaskY   uint8
	texWindowOffsetX uint8
	texWindowOffsetY uint8

	// Drawing area and offset (GP0 0xE3/0xE4/0xE5).
	drawAreaLeft, drawAreaTop     uint16
	drawAreaRight, drawAreaBottom uint16
	drawOffsetX, drawOffsetY      int32

	// Mask bit setting (GP0 0xE6).
	forceSetMask         bool
	preserveMaskedPixels bool

	// GP1 display state.
	irqRequest        bool
	dmaDirection      uint8
	displayDisabled   bool
	displayVRAMX      uint16
	displayVRAMY      uint16
	displayHorizStart uint16
	displayHorizEnd   uint16
	displayLineStart  uint16
	displayLineEnd    uint16
	hres1, hres2      uint8
	vres              uint8
	videoMode         uint8
	displayDepth      uint8
	interlaced        bool
	oddField          bool

	// Timing.
	dotRemainder uint64
	dotPos       uint64
	line         int
	inHBlank     bool
	inVBlank     bool
}

// New returns a GPU reset to its power-on state.
func New() *GPU {
	g := &GPU{vram: NewVRAM()}
	g.reset()
	return g
}

// VRAM returns the GPU's video memory, for the presenter's read-only
// snapshot.
func (g *GPU) VRAM() *VRAM { return g.vram }

// DisplayArea reports the VRAM origin and pixel dimensions GP1(0x05),
// (0x06), (0x07) and (0x08) select for output, for a presenter to crop
// its VRAM snapshot against.
func (g *GPU) DisplayArea() (x, y, width, height int) {
	x, y = int(g.displayVRAMX), int(g.displayVRAMY)

	dotClocksPerPixel := [4]int{10, 8, 5, 4}[g.hres1&3]
	if g.hres2 == 1 {
		dotClocksPerPixel = 7
	}
	horiz := int(g.displayHorizEnd) - int(g.displayHorizStart)
	if horiz < 0 {
		horiz = 0
	}
	width = horiz / dotClocksPerPixel

	height = int(g.displayLineEnd) - int(g.displayLineStart)
	if height < 0 {
		height = 0
	}
	if g.vres == 1 && g.interlaced {
		height *= 2
	}

	return x, y, width, height
}

// reset restores GP1(0x00)'s power-on defaults.
func (g *GPU) reset() {
	g.fifo = g.fifo[:0]
	g.cmdWords = 0
	g.cmdVariable = false
	g.cpuToVRAM = vramTransfer{}
	g.vramToCPU = vramTransfer{}

	g.texPageBaseX = 0
	g.texPageBaseY = 0
	g.semiTransparency = 0
	g.texPageDepth = 0
	g.dithering = false
	g.drawToDisplay = false
	g.textureDisable = false
	g.rectTextureXFlip = false
	g.rectTextureYFlip = false

	g.texWindowMaskX = 0
	g.texWindowMaskY = 0
	g.texWindowOffsetX = 0
	g.texWindowOffsetY = 0

	g.drawAreaLeft, g.drawAreaTop = 0, 0
	g.drawAreaRight, g.drawAreaBottom = 0, 0
	g.drawOffsetX, g.drawOffsetY = 0, 0

	g.forceSetMask = false
	g.preserveMaskedPixels = false

	g.irqRequest = false
	g.dmaDirection = 0
	g.displayDisabled = true
	g.displayVRAMX, g.displayVRAMY = 0, 0
	g.hres1, g.hres2 = 0, 0
	g.vres = 0
	g.videoMode = 0
	g.interlaced = true
	g.displayHorizStart, g.displayHorizEnd = 0x200, 0xC00
	g.displayLineStart, g.displayLineEnd = 0x10, 0x100
	g.displayDepth = 0
}

// WriteGP0 handles a write to the command FIFO register: it either
// feeds an active CPU-to-VRAM transfer or accumulates into the command
// buffer until the current command's word count is satisfied.
func (g *GPU) WriteGP0(value uint32) {
	if g.cpuToVRAM.active {
		g.writeTransferPixel(&g.cpuToVRAM, uint16(value))
		if g.cpuToVRAM.active {
			g.writeTransferPixel(&g.cpuToVRAM, uint16(value>>16))
		}
		return
	}

	if len(g.fifo) == 0 {
		g.cmdWords, g.cmdVariable = commandSize(value)
	}
	g.fifo = append(g.fifo, value)

	if g.commandReady() {
		g.dispatchGP0()
		g.fifo = g.fifo[:0]
	}
}

func (g *GPU) commandReady() bool {
	if g.cmdVariable {
		if len(g.fifo) < 2 {
			return false
		}
		return g.fifo[len(g.fifo)-1] == polylineTerminator
	}
	return len(g.fifo) >= g.cmdWords
}

func (g *GPU) dispatchGP0() {
	op := uint8(g.fifo[0] >> 24)
	switch {
	case op == 0x00, op == 0x01:
		// Nop / clear texture cache: no private cache is modeled.
	case op == 0x02:
		g.fillRectangle(g.fifo)
	case op >= 0x20 && op <= 0x3F:
		g.drawPolygon(g.fifo, op)
	case op >= 0x40 && op <= 0x5F:
		g.drawLine(g.fifo, op)
	case op >= 0x60 && op <= 0x7F:
		g.drawRectangle(g.fifo, op)
	case op >= 0x80 && op <= 0x9F:
		g.copyVRAMToVRAM(g.fifo)
	case op >= 0xA0 && op <= 0xBF:
		g.beginCPUToVRAM(g.fifo)
	case op >= 0xC0 && op <= 0xDF:
		g.beginVRAMToCPU(g.fifo)
	case op == 0xE1:
		g.setDrawMode(g.fifo[0])
	case op == 0xE2:
		g.setTextureWindow(g.fifo[0])
	case op == 0xE3:
		g.setDrawingAreaTopLeft(g.fifo[0])
	case op == 0xE4:
		g.setDrawingAreaBottomRight(g.fifo[0])
	case op == 0xE5:
		g.setDrawingOffset(g.fifo[0])
	case op == 0xE6:
		g.setMaskBitSetting(g.fifo[0])
	default:
		slog.Warn("gpu: unhandled GP0 command", "opcode", fmt.Sprintf("0x%02x", op))
	}
}

// WriteGP1 handles a write to the GPU control register.
func (g *GPU) WriteGP1(value uint32) {
	op := uint8(value >> 24)
	switch op {
	case 0x00:
		g.reset()
	case 0x01:
		g.fifo = g.fifo[:0]
		g.cmdWords, g.cmdVariable = 0, false
	case 0x02:
		g.irqRequest = false
	case 0x03:
		g.displayDisabled = value&1 != 0
	case 0x04:
		g.dmaDirection = uint8(value & 3)
	case 0x05:
		g.displayVRAMX = uint16(value & 0x3FE)
		g.displayVRAMY = uint16((value >> 10) & 0x1FF)
	case 0x06:
		g.displayHorizStart = uint16(value & 0xFFF)
		g.displayHorizEnd = uint16((value >> 12) & 0xFFF)
	case 0x07:
		g.displayLineStart = uint16(value & 0x3FF)
		g.displayLineEnd = uint16((value >> 10) & 0x3FF)
	case 0x08:
		g.setDisplayMode(value)
	default:
		slog.Warn("gpu: unhandled GP1 command", "opcode", fmt.Sprintf("0x%02x", op))
	}
}

func (g *GPU) setDrawMode(word uint32) {
	g.texPageBaseX = uint8(word & 0xF)
	g.texPageBaseY = uint8((word >> 4) & 1)
	g.semiTransparency = uint8((word >> 5) & 3)
	g.texPageDepth = uint8((word >> 7) & 3)
	g.dithering = (word>>9)&1 != 0
	g.drawToDisplay = (word>>10)&1 != 0
	g.textureDisable = (word>>11)&1 != 0
	g.rectTextureXFlip = (word>>12)&1 != 0
	g.rectTextureYFlip = (word>>13)&1 != 0
}

func (g *GPU) setTextureWindow(word uint32) {
	g.texWindowMaskX = uint8(word & 0x1F)
	g.texWindowMaskY = uint8((word >> 5) & 0x1F)
	g.texWindowOffsetX = uint8((word >> 10) & 0x1F)
	g.texWindowOffsetY = uint8((word >> 15) & 0x1F)
}

func (g *GPU) setDrawingAreaTopLeft(word uint32) {
	g.drawAreaLeft = uint16(word & 0x3FF)
	g.drawAreaTop = uint16((word >> 10) & 0x3FF)
}

func (g *GPU) setDrawingAreaBottomRight(word uint32) {
	g.drawAreaRight = uint16(word & 0x3FF)
	g.drawAreaBottom = uint16((word >> 10) & 0x3FF)
}

func (g *GPU) setDrawingOffset(word uint32) {
	x := uint16(word & 0x7FF)
	y := uint16((word >> 11) & 0x7FF)
	g.drawOffsetX = int32(int16(x<<5) >> 5)
	g.drawOffsetY = int32(int16(y<<5) >> 5)
}

func (g *GPU) setMaskBitSetting(word uint32) {
	g.forceSetMask = word&1 != 0
	g.preserveMaskedPixels = word&2 != 0
}

func (g *GPU) setDisplayMode(value uint32) {
	g.hres1 = uint8(value & 3)
	g.hres2 = uint8((value >> 6) & 1)
	if value&0x4 != 0 {
		g.vres = 1
	} else {
		g.vres = 0
	}
	if value&0x8 != 0 {
		g.videoMode = 1
	} else {
		g.videoMode = 0
	}
	g.displayDepth = uint8((value >> 4) & 1)
	g.interlaced = value&0x20 != 0
}

// Status assembles GPUSTAT. Bits 26-28 (ready flags) are hard-wired to
// 1, matching the implementation latitude the memory map section
// grants.
func (g *GPU) Status() uint32 {
	var r uint32
	r |= uint32(g.texPageBaseX) & 0xF
	r |= uint32(g.texPageBaseY&1) << 4
	r |= uint32(g.semiTransparency&3) << 5
	r |= uint32(g.texPageDepth&3) << 7
	r |= b2u(g.dithering) << 9
	r |= b2u(g.drawToDisplay) << 10
	r |= b2u(g.forceSetMask) << 11
	r |= b2u(g.preserveMaskedPixels) << 12
	r |= b2u(g.oddField) << 13
	r |= b2u(g.textureDisable) << 15
	r |= uint32(g.hres2&1) << 16
	r |= uint32(g.hres1&3) << 17
	r |= uint32(g.vres&1) << 19
	r |= uint32(g.videoMode&1) << 20
	r |= uint32(g.displayDepth&1) << 21
	r |= b2u(g.interlaced) << 22
	r |= b2u(g.displayDisabled) << 23
	r |= b2u(g.irqRequest) << 24
	r |= 1 << 26
	r |= 1 << 27
	r |= 1 << 28
	r |= uint32(g.dmaDirection&3) << 29
	r |= b2u(g.oddField) << 31

	var dmaRequest uint32
	switch g.dmaDirection {
	case 0:
		dmaRequest = 0
	case 1:
		dmaRequest = 1
	case 2:
		dmaRequest = (r >> 28) & 1
	case 3:
		dmaRequest = (r >> 27) & 1
	}
	r |= dmaRequest << 25

	return r
}

// ReadGPUREAD drains two packed pixels from an active VRAM-to-CPU
// transfer, or returns the last value read once it completes.
func (g *GPU) ReadGPUREAD() uint32 {
	if !g.vramToCPU.active {
		return g.gpuread
	}
	lo := g.readTransferPixel(&g.vramToCPU)
	hi := g.readTransferPixel(&g.vramToCPU)
	g.gpuread = uint32(lo) | uint32(hi)<<16
	return g.gpuread
}

func b2u(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
