package bit

import "testing"

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint16
		expected  uint32
	}{
		{0xABCD, 0x1234, 0xABCD1234},
		{0x0000, 0x0000, 0x00000000},
		{0xFFFF, 0xFFFF, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		result := Combine(tt.high, tt.low)
		if result != tt.expected {
			t.Errorf("Combine(%X, %X) = %X; want %X", tt.high, tt.low, result, tt.expected)
		}
	}
}

func TestIsSet(t *testing.T) {
	tests := []struct {
		value    uint32
		index    uint8
		expected bool
	}{
		{0b10101010, 0, false},
		{0b10101010, 1, true},
		{0b10101010, 31, false},
		{1 << 31, 31, true},
	}

	for _, tt := range tests {
		result := IsSet(tt.index, tt.value)
		if result != tt.expected {
			t.Errorf("IsSet(%d, %032b) = %v; want %v", tt.index, tt.value, result, tt.expected)
		}
	}
}

func TestSetClear(t *testing.T) {
	v := uint32(0)
	v = Set(5, v)
	if v != 1<<5 {
		t.Fatalf("Set(5, 0) = %032b", v)
	}
	v = Clear(5, v)
	if v != 0 {
		t.Fatalf("Clear(5, 1<<5) = %032b", v)
	}
}

func TestExtractBits(t *testing.T) {
	tests := []struct {
		value              uint32
		highBit, lowBit    uint8
		expected           uint32
	}{
		{0b11010110, 6, 4, 0b101},
		{0xFFFFFFFF, 31, 0, 0xFFFFFFFF},
		{0x1F800000, 28, 24, 0x1F},
	}

	for _, tt := range tests {
		result := ExtractBits(tt.value, tt.highBit, tt.lowBit)
		if result != tt.expected {
			t.Errorf("ExtractBits(%X, %d, %d) = %X; want %X", tt.value, tt.highBit, tt.lowBit, result, tt.expected)
		}
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		value    uint32
		bits     uint8
		expected int32
	}{
		{0x7FF, 11, -1},
		{0x400, 11, -1024},
		{0xFFFF, 16, -1},
		{0x8000, 16, -32768},
	}

	for _, tt := range tests {
		result := SignExtend(tt.value, tt.bits)
		if result != tt.expected {
			t.Errorf("SignExtend(%X, %d) = %d; want %d", tt.value, tt.bits, result, tt.expected)
		}
	}
}

func TestLowHigh(t *testing.T) {
	v := uint32(0xABCD1234)
	if High(v) != 0xABCD {
		t.Fatalf("High(%X) = %X", v, High(v))
	}
	if Low(v) != 0x1234 {
		t.Fatalf("Low(%X) = %X", v, Low(v))
	}
}
