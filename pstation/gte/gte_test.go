package gte

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identity() Matrix {
	return Matrix{{4096, 0, 0}, {0, 4096, 0}, {0, 0, 4096}}
}

func TestRTPSProjectsVertexAndPushesFIFOs(t *testing.T) {
	g := New()
	g.RT = identity()
	g.H = 100
	g.OFX = 0
	g.OFY = 0
	g.DQA = 0
	g.DQB = 0
	g.V[0] = Vector{X: 10, Y: 20, Z: 500}

	g.Execute(uint32(0x01) | (1 << 19)) // RTPS, sf=1

	assert.NotZero(t, g.SXY[2], "screen XY FIFO must hold the projected vertex")
	assert.NotZero(t, g.SZ[3], "screen Z FIFO must hold the transformed depth")
	assert.Zero(t, g.FLAG&(1<<31), "a well formed vertex must not raise any error flag")
}

func TestAVSZ3SaturatesAboveRange(t *testing.T) {
	g := New()
	g.ZSF3 = 0x7FFF
	g.SZ = [4]uint16{0, 0xFFFF, 0xFFFF, 0xFFFF}

	g.Execute(0x0000_002D) // AVSZ3

	assert.Equal(t, uint16(0xFFFF), g.OTZ, "OTZ must saturate rather than wrap")
	assert.NotZero(t, g.FLAG&(1<<18), "SZ3 saturation must set its flag bit")
	assert.NotZero(t, g.FLAG&(1<<31), "flag bit 31 must aggregate any error bit")
}

func TestNCDSAppliesDepthCueAfterLighting(t *testing.T) {
	g := New()
	g.LM = identity()
	g.CM = identity()
	g.V[0] = Vector{X: 100, Y: 0, Z: 0}
	g.RGBC = 0x00808080
	g.FC = Vector{X: 0x1000, Y: 0x1000, Z: 0x1000}
	g.IR0 = 0x1000

	g.Execute(0x0000_0013) // NCDS, sf=0

	assert.LessOrEqual(t, g.RGBFIFO[2]&0xFF, uint32(0xFF))
	assert.LessOrEqual(t, (g.RGBFIFO[2]>>8)&0xFF, uint32(0xFF))
	assert.LessOrEqual(t, (g.RGBFIFO[2]>>16)&0xFF, uint32(0xFF))
}

func TestMVMVABuggyMatrixIsZero(t *testing.T) {
	g := New()
	g.V[0] = Vector{X: 100, Y: 100, Z: 100}

	// mx=3 selects the documented-buggy matrix slot, modeled as zero.
	instr := uint32(0x12) | (3 << 17) | (0 << 15) | (3 << 13)
	g.Execute(instr)

	assert.Equal(t, int32(0), g.MAC1)
	assert.Equal(t, int32(0), g.MAC2)
	assert.Equal(t, int32(0), g.MAC3)
}

func TestIRSaturationSetsFlagAndClamps(t *testing.T) {
	g := New()
	got := g.setIRFlag(1, 0x10000, false)
	assert.Equal(t, int32(0x7FFF), got)
	assert.NotZero(t, g.FLAG&(1<<24))
}

func TestWriteReadDataRegisterRoundTrips(t *testing.T) {
	g := New()
	g.Write(regVXY0, packVec16(12, -5))
	assert.Equal(t, int32(12), g.V[0].X)
	assert.Equal(t, int32(-5), g.V[0].Y)
	assert.Equal(t, packVec16(12, -5), g.Read(regVXY0))
}

func TestWriteControlRTMatrixRoundTrips(t *testing.T) {
	g := New()
	g.WriteControl(ctrlRT11RT12, packVec16(111, 222))
	assert.Equal(t, int32(111), g.RT[0][0])
	assert.Equal(t, int32(222), g.RT[0][1])
	assert.Equal(t, packVec16(111, 222), g.ReadControl(ctrlRT11RT12))
}
