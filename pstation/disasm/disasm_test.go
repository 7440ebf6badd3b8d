package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeReader struct{ words map[uint32]uint32 }

func (r fakeReader) Read32(address uint32) uint32 { return r.words[address] }

func TestDecodeCoversEveryInstructionFamily(t *testing.T) {
	tests := []struct {
		name string
		word uint32
		want string
	}{
		{"nop", 0x0000_0000, "nop"},
		{"addiu", 0x2408_0005, "addiu   $t0, $zero, 5"},
		{"lui", 0x3C01_8000, "lui     $at, 0x8000"},
		{"ori", 0x3421_00FF, "ori     $at, $at, 0x00FF"},
		{"sw", 0xAC22_0010, "sw      $v0, 16($at)"},
		{"lw", 0x8C22_0010, "lw      $v0, 16($at)"},
		{"add", 0x0048_2020, "add     $a0, $v0, $t0"},
		{"jr", 0x03E0_0008, "jr      $ra"},
		{"mfc0", 0x4000_7000, "mfc0    $zero, $14"},
		{"mtc2", 0x4880_0000, "mtc2    $zero, $0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := decode(0, tc.word)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBranchTargetIsPCRelative(t *testing.T) {
	// beq $zero, $zero, +2 words, at address 0x1000.
	word := uint32(0x1000_0002)
	got := decode(0x1000, word)
	assert.Equal(t, "beq     $zero, $zero, 0x0000100C", got)
}

func TestJumpTargetKeepsTopNibbleOfNextPC(t *testing.T) {
	// j with a 26-bit index of 4 (word-aligned target 0x10), executed
	// at address 0 so the PC+4 top-nibble contribution is zero.
	word := uint32(0x0800_0004)
	got := decode(0, word)
	assert.Equal(t, "j       0x00000010", got)
}

func TestAtAndRangeReadThroughReader(t *testing.T) {
	r := fakeReader{words: map[uint32]uint32{
		0x1000: 0x0000_0000,
		0x1004: 0x2408_0005,
	}}

	line := At(0x1000, r)
	assert.Equal(t, uint32(0x1000), line.Address)
	assert.Equal(t, "nop", line.Text)

	lines := Range(0x1000, 2, r)
	assert.Len(t, lines, 2)
	assert.Equal(t, uint32(0x1004), lines[1].Address)
}

func TestAroundCentersOnAddressWithFixedWidthInstructions(t *testing.T) {
	r := fakeReader{words: map[uint32]uint32{}}
	lines := Around(0x2000, 2, 1, r)
	assert.Len(t, lines, 4)
	assert.Equal(t, uint32(0x1FF8), lines[0].Address)
	assert.Equal(t, uint32(0x2000), lines[2].Address)
	assert.Equal(t, uint32(0x2004), lines[3].Address)
}
