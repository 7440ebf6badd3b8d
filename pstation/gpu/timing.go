package gpu

// Sync is the per-tick snapshot the GPU hands to the timers.
type Sync struct {
	InHBlank bool
	InVBlank bool
	DotDiv   uint32
}

const (
	ntscDotsPerLine   = 3412
	ntscLinesPerFrame = 263
	ntscActiveLines   = 240

	palDotsPerLine   = 3404
	palLinesPerFrame = 314
	palActiveLines   = 288

	activeDotsApprox = 2560
)

func (g *GPU) dotsPerLine() uint64 {
	if g.videoMode == 1 {
		return palDotsPerLine
	}
	return ntscDotsPerLine
}

func (g *GPU) linesPerFrame() int {
	if g.videoMode == 1 {
		return palLinesPerFrame
	}
	return ntscLinesPerFrame
}

func (g *GPU) activeLines() int {
	if g.videoMode == 1 {
		return palActiveLines
	}
	return ntscActiveLines
}

// dotDiv returns the dotclock divisor implied by the current
// horizontal resolution.
func (g *GPU) dotDiv() uint32 {
	if g.hres2 == 1 {
		return 7
	}
	switch g.hres1 {
	case 0:
		return 10
	case 1:
		return 8
	case 2:
		return 5
	default:
		return 4
	}
}

// Tick advances the pixel clock by cpuCycles converted at 11/7 pixels
// per CPU cycle, emitting HBlank/VBlank edges on scanline and frame
// completion.
func (g *GPU) Tick(cpuCycles uint32) (hblank bool, vblank bool) {
	g.dotRemainder += uint64(cpuCycles) * 11
	whole := g.dotRemainder / 7
	g.dotRemainder %= 7
	g.dotPos += whole

	dotsPerLine := g.dotsPerLine()
	for g.dotPos >= dotsPerLine {
		g.dotPos -= dotsPerLine
		hblank = true
		g.line++
		if g.line >= g.linesPerFrame() {
			g.line = 0
			vblank = true
			g.oddField = !g.oddField
		}
	}

	g.inHBlank = g.dotPos >= activeDotsApprox
	g.inVBlank = g.line >= g.activeLines()

	return hblank, vblank
}

// Sync returns the current HBlank/VBlank state for the timers.
func (g *GPU) Sync() Sync {
	return Sync{InHBlank: g.inHBlank, InVBlank: g.inVBlank, DotDiv: g.dotDiv()}
}
