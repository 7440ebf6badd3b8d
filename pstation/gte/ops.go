package gte

// shiftAmount returns the shift the sf (shift fraction) flag selects:
// 12 when set, otherwise 0 (the raw accumulator value is left alone).
func shiftAmount(sf bool) uint {
	if sf {
		return 12
	}
	return 0
}

// applyMatrix computes MAC1-3 = (translation<<12 + M*V), shifted by sf,
// clamps into IR1-3, and returns the three IR-clamped results. This is
// the core subroutine shared by RTPS/RTPT/MVMVA/NCS/NCDS/NCCS and their
// multi-vector variants.
func (g *GTE) applyMatrix(m Matrix, tr Vector, v Vector, sf bool, lm bool) (int32, int32, int32) {
	shift := shiftAmount(sf)

	acc1 := int64(tr.X)<<12 + int64(m[0][0])*int64(v.X) + int64(m[0][1])*int64(v.Y) + int64(m[0][2])*int64(v.Z)
	acc2 := int64(tr.Y)<<12 + int64(m[1][0])*int64(v.X) + int64(m[1][1])*int64(v.Y) + int64(m[1][2])*int64(v.Z)
	acc3 := int64(tr.Z)<<12 + int64(m[2][0])*int64(v.X) + int64(m[2][1])*int64(v.Y) + int64(m[2][2])*int64(v.Z)

	g.MAC1 = g.setMacFlag(1, acc1>>shift)
	g.MAC2 = g.setMacFlag(2, acc2>>shift)
	g.MAC3 = g.setMacFlag(3, acc3>>shift)

	ir1 := g.setIRFlag(1, g.MAC1, lm)
	ir2 := g.setIRFlag(2, g.MAC2, lm)
	ir3 := g.setIRFlag(3, g.MAC3, lm)
	g.IR1, g.IR2, g.IR3 = ir1, ir2, ir3
	return ir1, ir2, ir3
}

// unrDivide approximates the hardware's UNR reciprocal divider used to
// project a Z-depth vertex onto the screen plane: result =
// ((H<<17)/SZ3 + 1)/2, rounded and saturated to 17 bits. The real GTE walks a 0x101-entry
// reciprocal table with Newton-Raphson refinement; this models the
// division exactly rather than via the table, a documented
// simplification that preserves the result for SZ3 values produced by
// typical scene geometry.
func (g *GTE) unrDivide(h uint16, sz3 uint16) int64 {
	if sz3 == 0 {
		g.FLAG |= 1 << 17
		return 0x1FFFF
	}
	n := ((int64(h)<<17)/int64(sz3) + 1) / 2
	if n > 0x1FFFF {
		g.FLAG |= 1 << 17
		n = 0x1FFFF
	}
	return n
}

// opRTPS: perspective-transform V0 and push the result onto the
// screen XY/Z FIFOs.
func (g *GTE) opRTPS(sf bool) {
	g.rtp(g.V[0], sf, true)
}

// opRTPT: perspective-transform V0, V1, V2 in sequence, pushing three
// FIFO entries; only the last transform's IR/MAC state is retained in
// the data registers afterward.
func (g *GTE) opRTPT(sf bool) {
	g.rtp(g.V[0], sf, false)
	g.rtp(g.V[1], sf, false)
	g.rtp(g.V[2], sf, true)
}

// rtp implements the real RTPS/RTPT pipeline: matrix transform,
// depth-FIFO push, UNR division, and screen XY projection with the
// DQA/DQB depth-cue factor computed alongside it.
func (g *GTE) rtp(v Vector, sf bool, last bool) {
	shift := shiftAmount(sf)

	accX := int64(g.TR.X)<<12 + int64(g.RT[0][0])*int64(v.X) + int64(g.RT[0][1])*int64(v.Y) + int64(g.RT[0][2])*int64(v.Z)
	accY := int64(g.TR.Y)<<12 + int64(g.RT[1][0])*int64(v.X) + int64(g.RT[1][1])*int64(v.Y) + int64(g.RT[1][2])*int64(v.Z)
	accZ := int64(g.TR.Z)<<12 + int64(g.RT[2][0])*int64(v.X) + int64(g.RT[2][1])*int64(v.Y) + int64(g.RT[2][2])*int64(v.Z)

	g.MAC1 = g.setMacFlag(1, accX>>shift)
	g.MAC2 = g.setMacFlag(2, accY>>shift)
	g.MAC3 = g.setMacFlag(3, accZ>>shift)

	g.IR1 = g.setIRFlag(1, g.MAC1, false)
	g.IR2 = g.setIRFlag(2, g.MAC2, false)
	g.IR3 = g.setIRFlag(3, g.MAC3, false)

	sz := g.setSZ3Flag(3, accZ>>12)
	g.pushSZ(sz)

	factor := g.unrDivide(g.H, sz)

	sxMAC0 := factor*int64(g.IR1) + int64(g.OFX)
	syMAC0 := factor*int64(g.IR2) + int64(g.OFY)
	sx := g.setMac0Flag(sxMAC0) >> 16
	sy := g.setMac0Flag(syMAC0) >> 16
	screenX := g.setSXYFlag(int64(sx))
	screenY := g.setSXYFlag(int64(sy))
	g.pushSXY(screenX, screenY)

	if last {
		depthMAC0 := factor*int64(g.DQA) + int64(g.DQB)
		g.MAC0 = g.setMac0Flag(depthMAC0)
		g.IR0 = g.setIR0Flag(g.MAC0 >> 12)
	}
}

// opNCLIP computes the signed Z-component cross product of the three
// most recent projected vertices, used to reject back-facing triangles.
func (g *GTE) opNCLIP() {
	x0, y0 := unpackSXY(g.SXY[0])
	x1, y1 := unpackSXY(g.SXY[1])
	x2, y2 := unpackSXY(g.SXY[2])

	value := int64(x0)*int64(y1-y2) + int64(x1)*int64(y2-y0) + int64(x2)*int64(y0-y1)
	g.MAC0 = g.setMac0Flag(value)
}

// opAVSZ3 averages the three most recent SZ FIFO entries, scaled by
// ZSF3, into OTZ (used for ordering-table depth sort).
func (g *GTE) opAVSZ3() {
	sum := int64(g.ZSF3) * (int64(g.SZ[1]) + int64(g.SZ[2]) + int64(g.SZ[3]))
	g.MAC0 = g.setMac0Flag(sum)
	g.OTZ = g.setSZ3Flag(0, sum>>12)
}

// opAVSZ4 averages all four SZ FIFO entries, scaled by ZSF4.
func (g *GTE) opAVSZ4() {
	sum := int64(g.ZSF4) * (int64(g.SZ[0]) + int64(g.SZ[1]) + int64(g.SZ[2]) + int64(g.SZ[3]))
	g.MAC0 = g.setMac0Flag(sum)
	g.OTZ = g.setSZ3Flag(0, sum>>12)
}

// opMVMVA: general matrix*vector + translation with a selectable
// matrix, vector, and translation source, per the mx/v/cv command
// sub-fields.
func (g *GTE) opMVMVA(sf, lm bool, mx, vSel, cv uint32) {
	var m Matrix
	switch mx {
	case 0:
		m = g.RT
	case 1:
		m = g.LM
	case 2:
		m = g.CM
	case 3:
		// The "buggy" hardware matrix selector: documented as reading
		// garbage internal bus state. Modeled as an all-zero matrix,
		// a deliberate simplification rather than a bug-for-bug port.
		m = Matrix{}
	}

	var v Vector
	switch vSel {
	case 0:
		v = g.V[0]
	case 1:
		v = g.V[1]
	case 2:
		v = g.V[2]
	case 3:
		v = Vector{X: g.IR1, Y: g.IR2, Z: g.IR3}
	}

	var tr Vector
	switch cv {
	case 0:
		tr = g.TR
	case 1:
		tr = g.BK
	case 2:
		tr = g.FC
	case 3:
		tr = Vector{}
	}

	g.applyMatrix(m, tr, v, sf, lm)
}

// opOP computes the cross product of IR and RT's diagonal, scaled.
func (g *GTE) opOP(sf bool) {
	shift := shiftAmount(sf)
	d1, d2, d3 := g.RT[0][0], g.RT[1][1], g.RT[2][2]

	g.MAC1 = g.setMacFlag(1, (int64(d2)*int64(g.IR3)-int64(d3)*int64(g.IR2))>>shift)
	g.MAC2 = g.setMacFlag(2, (int64(d3)*int64(g.IR1)-int64(d1)*int64(g.IR3))>>shift)
	g.MAC3 = g.setMacFlag(3, (int64(d1)*int64(g.IR2)-int64(d2)*int64(g.IR1))>>shift)

	g.IR1 = g.setIRFlag(1, g.MAC1, false)
	g.IR2 = g.setIRFlag(2, g.MAC2, false)
	g.IR3 = g.setIRFlag(3, g.MAC3, false)
}

// interpolate is the shared depth-cueing subroutine used by DPCS,
// DPCT, DCPL, INTPL, CDP, NCDS and NCDT: it blends the current MAC1-3
// accumulator toward the far-color vector by the configured
// interpolation factor. Each far-color difference is shifted right by
// 12 before it is saturated into IR1-3, and the blended result is
// shifted by sf before its own saturation.
func (g *GTE) interpolate(sf bool) {
	shift := shiftAmount(sf)

	diff1 := int64(g.FC.X)<<12 - int64(g.MAC1)<<shift
	diff2 := int64(g.FC.Y)<<12 - int64(g.MAC2)<<shift
	diff3 := int64(g.FC.Z)<<12 - int64(g.MAC3)<<shift

	ir1 := g.setIRFlag(1, int32(diff1>>12), false)
	ir2 := g.setIRFlag(2, int32(diff2>>12), false)
	ir3 := g.setIRFlag(3, int32(diff3>>12), false)

	acc1 := int64(g.MAC1)<<shift + int64(ir1)*int64(g.IR0)
	acc2 := int64(g.MAC2)<<shift + int64(ir2)*int64(g.IR0)
	acc3 := int64(g.MAC3)<<shift + int64(ir3)*int64(g.IR0)

	g.MAC1 = g.setMacFlag(1, acc1>>shift)
	g.MAC2 = g.setMacFlag(2, acc2>>shift)
	g.MAC3 = g.setMacFlag(3, acc3>>shift)

	g.IR1 = g.setIRFlag(1, g.MAC1, false)
	g.IR2 = g.setIRFlag(2, g.MAC2, false)
	g.IR3 = g.setIRFlag(3, g.MAC3, false)

	g.pushColorFromMAC()
}

func (g *GTE) pushColorFromMAC() {
	code := uint8(g.RGBC >> 24)
	r := g.setRGBChannel(0, int64(g.MAC1)>>4)
	gr := g.setRGBChannel(1, int64(g.MAC2)>>4)
	b := g.setRGBChannel(2, int64(g.MAC3)>>4)
	g.pushRGB(r | gr<<8 | b<<16 | uint32(code)<<24)
}

// opDPCS depth-cues the current RGBC color toward the far-color vector.
func (g *GTE) opDPCS(sf bool) {
	g.MAC1 = int32(uint32(g.RGBC&0xFF)) << 16 >> 4
	g.MAC2 = int32(uint32((g.RGBC>>8)&0xFF)) << 16 >> 4
	g.MAC3 = int32(uint32((g.RGBC>>16)&0xFF)) << 16 >> 4
	g.interpolate(sf)
}

// opDPCT depth-cues the three RGB FIFO entries in sequence.
func (g *GTE) opDPCT(sf bool) {
	for i := 0; i < 3; i++ {
		c := g.RGBFIFO[0]
		g.MAC1 = int32(c&0xFF) << 16 >> 4
		g.MAC2 = int32((c>>8)&0xFF) << 16 >> 4
		g.MAC3 = int32((c>>16)&0xFF) << 16 >> 4
		g.interpolate(sf)
	}
}

// opDCPL depth-cues using IR1-3 (scaled by the color matrix result)
// rather than RGBC directly.
func (g *GTE) opDCPL(sf bool) {
	code := uint8(g.RGBC >> 24)
	r := int64(g.RGBC&0xFF) << 4
	gr := int64((g.RGBC>>8)&0xFF) << 4
	b := int64((g.RGBC>>16)&0xFF) << 4

	g.MAC1 = g.setMacFlag(1, r*int64(g.IR1))
	g.MAC2 = g.setMacFlag(2, gr*int64(g.IR2))
	g.MAC3 = g.setMacFlag(3, b*int64(g.IR3))
	_ = code
	g.interpolate(sf)
}

// opINTPL blends IR1-3 directly toward the far-color vector.
func (g *GTE) opINTPL(sf bool) {
	g.MAC1 = g.IR1 << shiftAmount(sf)
	g.MAC2 = g.IR2 << shiftAmount(sf)
	g.MAC3 = g.IR3 << shiftAmount(sf)
	g.interpolate(sf)
}

// opSQR squares IR1-3 in place.
func (g *GTE) opSQR(sf bool, lm bool) {
	shift := shiftAmount(sf)
	g.MAC1 = g.setMacFlag(1, (int64(g.IR1)*int64(g.IR1))>>shift)
	g.MAC2 = g.setMacFlag(2, (int64(g.IR2)*int64(g.IR2))>>shift)
	g.MAC3 = g.setMacFlag(3, (int64(g.IR3)*int64(g.IR3))>>shift)

	g.IR1 = g.setIRFlag(1, g.MAC1, lm)
	g.IR2 = g.setIRFlag(2, g.MAC2, lm)
	g.IR3 = g.setIRFlag(3, g.MAC3, lm)
}

// lightSource computes MAC1-3 = LM * V, the normal-lighting pass
// shared by NCS/NCT/NCDS/NCDT/NCCS/NCCT.
func (g *GTE) lightSource(v Vector, sf bool) {
	g.applyMatrix(g.LM, Vector{}, v, sf, false)
}

// colorLight computes MAC1-3 = BK + CM * IR, the light-color pass
// shared by the same family, consuming the previous lightSource pass's
// IR1-3 as its input vector.
func (g *GTE) colorLight(sf bool, lm bool) {
	g.applyMatrix(g.CM, g.BK, Vector{X: g.IR1, Y: g.IR2, Z: g.IR3}, sf, lm)
}

// opNCS: normal color, single vector, no depth cue.
func (g *GTE) opNCS(sf bool) {
	g.lightSource(g.V[0], sf)
	g.colorLight(sf, true)
	g.pushColorFromMAC()
}

// opNCT: normal color, all three vectors.
func (g *GTE) opNCT(sf bool) {
	for i := 0; i < 3; i++ {
		g.lightSource(g.V[i], sf)
		g.colorLight(sf, true)
		g.pushColorFromMAC()
	}
}

// opNCDS: normal color with depth cue, single vector.
func (g *GTE) opNCDS(sf bool) {
	g.lightSource(g.V[0], sf)
	g.colorLight(sf, true)
	g.applyRGBCModulation()
	g.interpolate(sf)
}

// opNCDT: normal color with depth cue, all three vectors.
func (g *GTE) opNCDT(sf bool) {
	for i := 0; i < 3; i++ {
		g.lightSource(g.V[i], sf)
		g.colorLight(sf, true)
		g.applyRGBCModulation()
		g.interpolate(sf)
	}
}

// applyRGBCModulation folds the RGBC base color into MAC1-3, scaled by
// IR1-3, ahead of a depth-cue interpolate pass.
func (g *GTE) applyRGBCModulation() {
	r := int64(g.RGBC&0xFF) << 4
	gc := int64((g.RGBC>>8)&0xFF) << 4
	b := int64((g.RGBC>>16)&0xFF) << 4

	g.MAC1 = g.setMacFlag(1, (r*int64(g.IR1))>>4)
	g.MAC2 = g.setMacFlag(2, (gc*int64(g.IR2))>>4)
	g.MAC3 = g.setMacFlag(3, (b*int64(g.IR3))>>4)
}

// opNCCS: normal color-class, single vector, no depth cue.
func (g *GTE) opNCCS(sf bool) {
	g.lightSource(g.V[0], sf)
	g.colorLight(sf, true)
	g.applyRGBCModulation()
	g.IR1 = g.setIRFlag(1, g.MAC1, true)
	g.IR2 = g.setIRFlag(2, g.MAC2, true)
	g.IR3 = g.setIRFlag(3, g.MAC3, true)
	g.pushColorFromMAC()
}

// opNCCT: normal color-class, all three vectors.
func (g *GTE) opNCCT(sf bool) {
	for i := 0; i < 3; i++ {
		g.lightSource(g.V[i], sf)
		g.colorLight(sf, true)
		g.applyRGBCModulation()
		g.IR1 = g.setIRFlag(1, g.MAC1, true)
		g.IR2 = g.setIRFlag(2, g.MAC2, true)
		g.IR3 = g.setIRFlag(3, g.MAC3, true)
		g.pushColorFromMAC()
	}
}

// opCDP: color depth cue using the light-color pass directly (no
// vertex lighting step), then interpolated toward the far color.
func (g *GTE) opCDP(sf bool) {
	g.colorLight(sf, false)
	g.applyRGBCModulation()
	g.interpolate(sf)
}

// opCC: color-class using the light-color pass directly.
func (g *GTE) opCC(sf bool) {
	g.colorLight(sf, false)
	g.applyRGBCModulation()
	g.IR1 = g.setIRFlag(1, g.MAC1, true)
	g.IR2 = g.setIRFlag(2, g.MAC2, true)
	g.IR3 = g.setIRFlag(3, g.MAC3, true)
	g.pushColorFromMAC()
}

// opGPF: general interpolation, scaling IR1-3 by IR0 with no additive
// far-color term.
func (g *GTE) opGPF(sf bool) {
	shift := shiftAmount(sf)
	g.MAC1 = g.setMacFlag(1, (int64(g.IR1)*int64(g.IR0))>>shift)
	g.MAC2 = g.setMacFlag(2, (int64(g.IR2)*int64(g.IR0))>>shift)
	g.MAC3 = g.setMacFlag(3, (int64(g.IR3)*int64(g.IR0))>>shift)

	g.IR1 = g.setIRFlag(1, g.MAC1, false)
	g.IR2 = g.setIRFlag(2, g.MAC2, false)
	g.IR3 = g.setIRFlag(3, g.MAC3, false)
	g.pushColorFromMAC()
}

// opGPL: general interpolation, scaling IR1-3 by IR0 and adding back
// the current MAC1-3 accumulator (already shifted).
func (g *GTE) opGPL(sf bool) {
	shift := shiftAmount(sf)
	acc1 := int64(g.MAC1)<<shift + int64(g.IR1)*int64(g.IR0)
	acc2 := int64(g.MAC2)<<shift + int64(g.IR2)*int64(g.IR0)
	acc3 := int64(g.MAC3)<<shift + int64(g.IR3)*int64(g.IR0)

	g.MAC1 = g.setMacFlag(1, acc1>>shift)
	g.MAC2 = g.setMacFlag(2, acc2>>shift)
	g.MAC3 = g.setMacFlag(3, acc3>>shift)

	g.IR1 = g.setIRFlag(1, g.MAC1, false)
	g.IR2 = g.setIRFlag(2, g.MAC2, false)
	g.IR3 = g.setIRFlag(3, g.MAC3, false)
	g.pushColorFromMAC()
}
