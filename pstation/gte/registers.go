package gte

import "log/slog"

// Data register indices, as addressed by MFC2/MTC2/LWC2/SWC2.
const (
	regVXY0 = 0
	regVZ0  = 1
	regVXY1 = 2
	regVZ1  = 3
	regVXY2 = 4
	regVZ2  = 5
	regRGBC = 6
	regOTZ  = 7
	regIR0  = 8
	regIR1  = 9
	regIR2  = 10
	regIR3  = 11
	regSXY0 = 12
	regSXY1 = 13
	regSXY2 = 14
	regSXYP = 15
	regSZ0  = 16
	regSZ1  = 17
	regSZ2  = 18
	regSZ3  = 19
	regRGB0 = 20
	regRGB1 = 21
	regRGB2 = 22
	regRES1 = 23
	regMAC0 = 24
	regMAC1 = 25
	regMAC2 = 26
	regMAC3 = 27
	regIRGB = 28
	regORGB = 29
	regLZCS = 30
	regLZCR = 31
)

// Control register indices, as addressed by CFC2/CTC2.
const (
	ctrlRT11RT12 = 0
	ctrlRT13RT21 = 1
	ctrlRT22RT23 = 2
	ctrlRT31RT32 = 3
	ctrlRT33     = 4
	ctrlTRX      = 5
	ctrlTRY      = 6
	ctrlTRZ      = 7
	ctrlL11L12   = 8
	ctrlL13L21   = 9
	ctrlL22L23   = 10
	ctrlL31L32   = 11
	ctrlL33      = 12
	ctrlRBK      = 13
	ctrlGBK      = 14
	ctrlBBK      = 15
	ctrlLR1LR2   = 16
	ctrlLR3LG1   = 17
	ctrlLG2LG3   = 18
	ctrlLB1LB2   = 19
	ctrlLB3      = 20
	ctrlRFC      = 21
	ctrlGFC      = 22
	ctrlBFC      = 23
	ctrlOFX      = 24
	ctrlOFY      = 25
	ctrlH        = 26
	ctrlDQA      = 27
	ctrlDQB      = 28
	ctrlZSF3     = 29
	ctrlZSF4     = 30
	ctrlFLAG     = 31
)

func packVec16(x, y int32) uint32 { return uint32(uint16(x)) | uint32(uint16(y))<<16 }

// leadingZeroCount counts leading bits matching the sign of LZCS,
// emulating the GTE's LZCR hardware counter (range 0-32).
func leadingZeroCount(v int32) int32 {
	if v >= 0 {
		n := int32(0)
		for bit := 31; bit >= 0 && (v>>uint(bit))&1 == 0; bit-- {
			n++
		}
		return n
	}
	n := int32(0)
	for bit := 31; bit >= 0 && (v>>uint(bit))&1 == 1; bit-- {
		n++
	}
	return n
}

// Read returns a GTE data register, used by MFC2 and LWC2's paired
// store path (SWC2 reads via this method too).
func (g *GTE) Read(reg uint32) uint32 {
	switch reg {
	case regVXY0:
		return packVec16(g.V[0].X, g.V[0].Y)
	case regVZ0:
		return uint32(uint16(g.V[0].Z))
	case regVXY1:
		return packVec16(g.V[1].X, g.V[1].Y)
	case regVZ1:
		return uint32(uint16(g.V[1].Z))
	case regVXY2:
		return packVec16(g.V[2].X, g.V[2].Y)
	case regVZ2:
		return uint32(uint16(g.V[2].Z))
	case regRGBC:
		return g.RGBC
	case regOTZ:
		return uint32(g.OTZ)
	case regIR0:
		return uint32(g.IR0)
	case regIR1:
		return uint32(g.IR1)
	case regIR2:
		return uint32(g.IR2)
	case regIR3:
		return uint32(g.IR3)
	case regSXY0:
		return uint32(g.SXY[0])
	case regSXY1:
		return uint32(g.SXY[1])
	case regSXY2, regSXYP:
		return uint32(g.SXY[2])
	case regSZ0:
		return uint32(g.SZ[0])
	case regSZ1:
		return uint32(g.SZ[1])
	case regSZ2:
		return uint32(g.SZ[2])
	case regSZ3:
		return uint32(g.SZ[3])
	case regRGB0:
		return g.RGBFIFO[0]
	case regRGB1:
		return g.RGBFIFO[1]
	case regRGB2:
		return g.RGBFIFO[2]
	case regRES1:
		return 0
	case regMAC0:
		return uint32(g.MAC0)
	case regMAC1:
		return uint32(g.MAC1)
	case regMAC2:
		return uint32(g.MAC2)
	case regMAC3:
		return uint32(g.MAC3)
	case regIRGB, regORGB:
		return g.packIRGB()
	case regLZCS:
		return uint32(g.LZCS)
	case regLZCR:
		return uint32(g.LZCR)
	default:
		slog.Warn("gte: read of unmodeled data register", "reg", reg)
		return 0
	}
}

// Write loads a GTE data register, used by MTC2 and LWC2.
func (g *GTE) Write(reg uint32, value uint32) {
	switch reg {
	case regVXY0:
		g.V[0].X, g.V[0].Y = unpackSXY(int32(value))
	case regVZ0:
		g.V[0].Z = int32(int16(value))
	case regVXY1:
		g.V[1].X, g.V[1].Y = unpackSXY(int32(value))
	case regVZ1:
		g.V[1].Z = int32(int16(value))
	case regVXY2:
		g.V[2].X, g.V[2].Y = unpackSXY(int32(value))
	case regVZ2:
		g.V[2].Z = int32(int16(value))
	case regRGBC:
		g.RGBC = value
	case regOTZ:
		g.OTZ = uint16(value)
	case regIR0:
		g.IR0 = int32(int16(value))
	case regIR1:
		g.IR1 = int32(int16(value))
	case regIR2:
		g.IR2 = int32(int16(value))
	case regIR3:
		g.IR3 = int32(int16(value))
	case regSXY0:
		g.SXY[0] = int32(value)
	case regSXY1:
		g.SXY[1] = int32(value)
	case regSXY2:
		g.SXY[2] = int32(value)
	case regSXYP:
		g.pushSXYRaw(int32(value))
	case regSZ0:
		g.SZ[0] = uint16(value)
	case regSZ1:
		g.SZ[1] = uint16(value)
	case regSZ2:
		g.SZ[2] = uint16(value)
	case regSZ3:
		g.SZ[3] = uint16(value)
	case regRGB0:
		g.RGBFIFO[0] = value
	case regRGB1:
		g.RGBFIFO[1] = value
	case regRGB2:
		g.RGBFIFO[2] = value
	case regRES1:
		// prohibited register, writes ignored
	case regMAC0:
		g.MAC0 = int32(value)
	case regMAC1:
		g.MAC1 = int32(value)
	case regMAC2:
		g.MAC2 = int32(value)
	case regMAC3:
		g.MAC3 = int32(value)
	case regIRGB:
		g.unpackIRGB(value)
	case regORGB:
		// read-only mirror, writes ignored
	case regLZCS:
		g.LZCS = int32(value)
		g.LZCR = leadingZeroCount(g.LZCS)
	case regLZCR:
		// read-only
	default:
		slog.Warn("gte: write to unmodeled data register", "reg", reg, "value", value)
	}
}

// pushSXYRaw implements the documented SXYP write side effect: writing
// SXYP pushes the XY FIFO just as a pipeline command would.
func (g *GTE) pushSXYRaw(v int32) {
	g.SXY[0], g.SXY[1] = g.SXY[1], g.SXY[2]
	g.SXY[2] = v
}

func (g *GTE) packIRGB() uint32 {
	r := clampChannel5(g.IR1)
	gr := clampChannel5(g.IR2)
	b := clampChannel5(g.IR3)
	return r | gr<<5 | b<<10
}

func (g *GTE) unpackIRGB(value uint32) {
	g.IR1 = int32((value & 0x1F)) * 0x80
	g.IR2 = int32((value >> 5) & 0x1F) * 0x80
	g.IR3 = int32((value >> 10) & 0x1F) * 0x80
}

func clampChannel5(v int32) uint32 {
	c := v >> 7
	if c < 0 {
		c = 0
	}
	if c > 0x1F {
		c = 0x1F
	}
	return uint32(c)
}

// ReadControl returns a GTE control register, used by CFC2.
func (g *GTE) ReadControl(reg uint32) uint32 {
	switch reg {
	case ctrlRT11RT12:
		return packVec16(g.RT[0][0], g.RT[0][1])
	case ctrlRT13RT21:
		return packVec16(g.RT[0][2], g.RT[1][0])
	case ctrlRT22RT23:
		return packVec16(g.RT[1][1], g.RT[1][2])
	case ctrlRT31RT32:
		return packVec16(g.RT[2][0], g.RT[2][1])
	case ctrlRT33:
		return uint32(uint16(g.RT[2][2]))
	case ctrlTRX:
		return uint32(g.TR.X)
	case ctrlTRY:
		return uint32(g.TR.Y)
	case ctrlTRZ:
		return uint32(g.TR.Z)
	case ctrlL11L12:
		return packVec16(g.LM[0][0], g.LM[0][1])
	case ctrlL13L21:
		return packVec16(g.LM[0][2], g.LM[1][0])
	case ctrlL22L23:
		return packVec16(g.LM[1][1], g.LM[1][2])
	case ctrlL31L32:
		return packVec16(g.LM[2][0], g.LM[2][1])
	case ctrlL33:
		return uint32(uint16(g.LM[2][2]))
	case ctrlRBK:
		return uint32(g.BK.X)
	case ctrlGBK:
		return uint32(g.BK.Y)
	case ctrlBBK:
		return uint32(g.BK.Z)
	case ctrlLR1LR2:
		return packVec16(g.CM[0][0], g.CM[0][1])
	case ctrlLR3LG1:
		return packVec16(g.CM[0][2], g.CM[1][0])
	case ctrlLG2LG3:
		return packVec16(g.CM[1][1], g.CM[1][2])
	case ctrlLB1LB2:
		return packVec16(g.CM[2][0], g.CM[2][1])
	case ctrlLB3:
		return uint32(uint16(g.CM[2][2]))
	case ctrlRFC:
		return uint32(g.FC.X)
	case ctrlGFC:
		return uint32(g.FC.Y)
	case ctrlBFC:
		return uint32(g.FC.Z)
	case ctrlOFX:
		return uint32(g.OFX)
	case ctrlOFY:
		return uint32(g.OFY)
	case ctrlH:
		return uint32(g.H)
	case ctrlDQA:
		return uint32(g.DQA)
	case ctrlDQB:
		return uint32(g.DQB)
	case ctrlZSF3:
		return uint32(g.ZSF3)
	case ctrlZSF4:
		return uint32(g.ZSF4)
	case ctrlFLAG:
		return g.FLAG
	default:
		slog.Warn("gte: read of unmodeled control register", "reg", reg)
		return 0
	}
}

// WriteControl loads a GTE control register, used by CTC2.
func (g *GTE) WriteControl(reg uint32, value uint32) {
	switch reg {
	case ctrlRT11RT12:
		g.RT[0][0], g.RT[0][1] = unpackSXY(int32(value))
	case ctrlRT13RT21:
		g.RT[0][2], g.RT[1][0] = unpackSXY(int32(value))
	case ctrlRT22RT23:
		g.RT[1][1], g.RT[1][2] = unpackSXY(int32(value))
	case ctrlRT31RT32:
		g.RT[2][0], g.RT[2][1] = unpackSXY(int32(value))
	case ctrlRT33:
		g.RT[2][2] = int32(int16(value))
	case ctrlTRX:
		g.TR.X = int32(value)
	case ctrlTRY:
		g.TR.Y = int32(value)
	case ctrlTRZ:
		g.TR.Z = int32(value)
	case ctrlL11L12:
		g.LM[0][0], g.LM[0][1] = unpackSXY(int32(value))
	case ctrlL13L21:
		g.LM[0][2], g.LM[1][0] = unpackSXY(int32(value))
	case ctrlL22L23:
		g.LM[1][1], g.LM[1][2] = unpackSXY(int32(value))
	case ctrlL31L32:
		g.LM[2][0], g.LM[2][1] = unpackSXY(int32(value))
	case ctrlL33:
		g.LM[2][2] = int32(int16(value))
	case ctrlRBK:
		g.BK.X = int32(value)
	case ctrlGBK:
		g.BK.Y = int32(value)
	case ctrlBBK:
		g.BK.Z = int32(value)
	case ctrlLR1LR2:
		g.CM[0][0], g.CM[0][1] = unpackSXY(int32(value))
	case ctrlLR3LG1:
		g.CM[0][2], g.CM[1][0] = unpackSXY(int32(value))
	case ctrlLG2LG3:
		g.CM[1][1], g.CM[1][2] = unpackSXY(int32(value))
	case ctrlLB1LB2:
		g.CM[2][0], g.CM[2][1] = unpackSXY(int32(value))
	case ctrlLB3:
		g.CM[2][2] = int32(int16(value))
	case ctrlRFC:
		g.FC.X = int32(value)
	case ctrlGFC:
		g.FC.Y = int32(value)
	case ctrlBFC:
		g.FC.Z = int32(value)
	case ctrlOFX:
		g.OFX = int32(value)
	case ctrlOFY:
		g.OFY = int32(value)
	case ctrlH:
		g.H = uint16(value)
	case ctrlDQA:
		g.DQA = int32(int16(value))
	case ctrlDQB:
		g.DQB = int32(value)
	case ctrlZSF3:
		g.ZSF3 = int32(int16(value))
	case ctrlZSF4:
		g.ZSF4 = int32(int16(value))
	case ctrlFLAG:
		g.FLAG = value & 0x7FFFF000
	default:
		slog.Warn("gte: write to unmodeled control register", "reg", reg, "value", value)
	}
}
