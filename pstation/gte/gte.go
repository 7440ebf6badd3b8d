// Package gte implements the COP2 geometry transformation engine: the
// fixed-point 3D math coprocessor driven by LWC2/SWC2/MFC2/MTC2/CFC2/
// CTC2 and by the dedicated GTE command opcodes decoded in cpu.execCop2.
package gte

import "log/slog"

// Vector is a signed fixed-point 3-component vector, used for V0-V2 and
// the IR1-3 interim-result registers.
type Vector struct{ X, Y, Z int32 }

// Matrix is a 3x3 signed fixed-point matrix (RT, light, or color matrix).
type Matrix [3][3]int32

// GTE holds the full register file: data registers (V0-2, color, OTZ,
// IR0-3, SZ/SXY FIFOs, RGB FIFO, MAC0-3, IRGB/ORGB, LZCS/LZCR) and
// control registers (RT, light matrix, color matrix, translation and
// background-color vectors, far-color vector, screen offsets/scale,
// and the FLAG register).
type GTE struct {
	V  [3]Vector
	RGBC uint32 // packed R,G,B,code

	OTZ uint16

	IR0, IR1, IR2, IR3 int32

	SXY [3]int32 // screen XY FIFO, [2] is the most recent (SXYP mirror)
	SZ  [4]uint16 // screen Z FIFO, [0] is oldest

	RGBFIFO [3]uint32

	MAC0       int32
	MAC1, MAC2, MAC3 int32

	LZCS int32
	LZCR int32

	RT Matrix
	LM Matrix // light matrix
	CM Matrix // color (light-color) matrix

	TR Vector // translation vector
	BK Vector // background color vector
	FC Vector // far color vector

	OFX, OFY int32 // screen offsets (16.16 fixed point)
	H        uint16 // projection plane distance
	DQA      int32
	DQB      int32
	ZSF3     int32
	ZSF4     int32

	FLAG uint32
}

// New returns a zeroed GTE, matching the machine's cold-boot state.
func New() *GTE { return &GTE{} }

// clampSaturating saturates v to [lo, hi] and reports whether it had to.
func clampSaturating(v, lo, hi int64) (int32, bool) {
	if v < lo {
		return int32(lo), true
	}
	if v > hi {
		return int32(hi), true
	}
	return int32(v), false
}

// setMacFlag stores a 44-bit-conceptual MAC accumulator result into the
// 32-bit register it is kept in. The stored value is the already
// sign-extended 32-bit truncation, not a separately clamped value: MAC
// registers do not saturate, only the flag bits reflecting overflow
// are set.
func (g *GTE) setMacFlag(which int, value int64) int32 {
	result := int32(value)
	if value > 0x7FFFFFFFFFF || value < -0x80000000000 {
		switch which {
		case 1:
			g.FLAG |= 1 << 30
		case 2:
			g.FLAG |= 1 << 29
		case 3:
			g.FLAG |= 1 << 28
		}
	}
	return result
}

func (g *GTE) setMac0Flag(value int64) int32 {
	if value > 0x7FFFFFFF {
		g.FLAG |= 1 << 16
	} else if value < -0x80000000 {
		g.FLAG |= 1 << 15
	}
	return int32(value)
}

func (g *GTE) setIR0Flag(value int32) int32 {
	clamped, sat := clampSaturating(int64(value), 0, 0x1000)
	if sat {
		g.FLAG |= 1 << 12
	}
	return clamped
}

// setIRFlag clamps IR1-3. lm selects the lower bound: lm=true means
// unsigned-only (lower bound 0), used by color operations; lm=false
// allows the signed 16-bit range.
func (g *GTE) setIRFlag(which int, value int32, lm bool) int32 {
	lo := int64(-0x8000)
	if lm {
		lo = 0
	}
	clamped, sat := clampSaturating(int64(value), lo, 0x7FFF)
	if sat {
		switch which {
		case 1:
			g.FLAG |= 1 << 24
		case 2:
			g.FLAG |= 1 << 23
		case 3:
			g.FLAG |= 1 << 22
		}
	}
	return clamped
}

func (g *GTE) setSZ3Flag(which int, value int64) uint16 {
	clamped, sat := clampSaturating(value, 0, 0xFFFF)
	if sat {
		g.FLAG |= 1 << 18
	}
	_ = which
	return uint16(clamped)
}

func (g *GTE) setSXYFlag(value int64) int32 {
	clamped, sat := clampSaturating(value, -0x400, 0x3FF)
	if sat {
		g.FLAG |= 1 << 14
	}
	return clamped
}

// setRGBChannel clamps an 8-bit color channel to 0-255, setting the
// channel's saturation flag; the caller packs it into the RGB FIFO.
func (g *GTE) setRGBChannel(which int, value int64) uint32 {
	clamped, sat := clampSaturating(value, 0, 0xFF)
	if sat {
		switch which {
		case 0:
			g.FLAG |= 1 << 21
		case 1:
			g.FLAG |= 1 << 20
		case 2:
			g.FLAG |= 1 << 19
		}
	}
	return uint32(clamped)
}

// updateFlagMasterBit recomputes FLAG bit 31 as the OR of the error
// bits 13-18 and 23-30, as the last step of every command.
func (g *GTE) updateFlagMasterBit() {
	errorBits := g.FLAG & 0x7F87E000
	if errorBits != 0 {
		g.FLAG |= 1 << 31
	}
}

// pushSZ shifts the screen-Z FIFO, discarding the oldest entry.
func (g *GTE) pushSZ(z uint16) {
	g.SZ[0], g.SZ[1], g.SZ[2] = g.SZ[1], g.SZ[2], g.SZ[3]
	g.SZ[3] = z
}

// pushSXY shifts the screen-XY FIFO, discarding the oldest entry.
func (g *GTE) pushSXY(x, y int32) {
	g.SXY[0], g.SXY[1] = g.SXY[1], g.SXY[2]
	g.SXY[2] = packSXY(x, y)
}

// pushRGB shifts the RGB FIFO, discarding the oldest entry.
func (g *GTE) pushRGB(packed uint32) {
	g.RGBFIFO[0], g.RGBFIFO[1] = g.RGBFIFO[1], g.RGBFIFO[2]
	g.RGBFIFO[2] = packed
}

func packSXY(x, y int32) int32 { return (int32(uint32(y)&0xFFFF) << 16) | int32(uint32(x)&0xFFFF) }
func unpackSXY(v int32) (int32, int32) {
	return int32(int16(v & 0xFFFF)), int32(int16((v >> 16) & 0xFFFF))
}

// Execute dispatches a full COP2 GTE command word, decoded only by
// cpu.execCop2 into "this is a GTE opcode"; the function field and
// sub-selectors live entirely inside this package.
func (g *GTE) Execute(instr uint32) {
	g.FLAG = 0

	sf := (instr>>19)&1 == 1
	lm := (instr>>10)&1 == 1
	mx := (instr >> 17) & 3
	v := (instr >> 15) & 3
	cv := (instr >> 13) & 3
	cmd := instr & 0x3F

	switch cmd {
	case 0x01:
		g.opRTPS(sf)
	case 0x06:
		g.opNCLIP()
	case 0x0C:
		g.opOP(sf)
	case 0x10:
		g.opDPCS(sf)
	case 0x11:
		g.opINTPL(sf)
	case 0x12:
		g.opMVMVA(sf, lm, mx, v, cv)
	case 0x13:
		g.opNCDS(sf)
	case 0x14:
		g.opCDP(sf)
	case 0x16:
		g.opNCDT(sf)
	case 0x1B:
		g.opNCCS(sf)
	case 0x1C:
		g.opCC(sf)
	case 0x1E:
		g.opNCS(sf)
	case 0x20:
		g.opNCT(sf)
	case 0x28:
		g.opSQR(sf, lm)
	case 0x29:
		g.opDCPL(sf)
	case 0x2A:
		g.opDPCT(sf)
	case 0x2D:
		g.opAVSZ3()
	case 0x2E:
		g.opAVSZ4()
	case 0x30:
		g.opRTPT(sf)
	case 0x3D:
		g.opGPF(sf)
	case 0x3E:
		g.opGPL(sf)
	case 0x3F:
		g.opNCCT(sf)
	default:
		slog.Warn("gte: unhandled command opcode", "cmd", cmd)
	}

	g.updateFlagMasterBit()
}
