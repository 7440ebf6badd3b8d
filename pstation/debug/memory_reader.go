package debug

// BusReader is the minimal bus surface memory-snapshot extraction
// needs: byte-addressable reads with no side effects expected of it.
type BusReader interface {
	Read8(address uint32) uint8
}

// CPUReader is the minimal CPU surface a register snapshot needs.
type CPUReader interface {
	PC() uint32
	SR() uint32
	Reg(r uint32) uint32
}

// ExtractMemorySnapshot copies length bytes of bus address space
// starting at start, for a disassembly or hex-dump view.
func ExtractMemorySnapshot(reader BusReader, start uint32, length int) *MemorySnapshot {
	bytes := make([]uint8, length)
	for i := 0; i < length; i++ {
		bytes[i] = reader.Read8(start + uint32(i))
	}
	return &MemorySnapshot{StartAddr: start, Bytes: bytes}
}

// ExtractCPUState copies the CPU's visible register file.
func ExtractCPUState(cpu CPUReader, instructionCount uint64) *CPUState {
	state := &CPUState{PC: cpu.PC(), SR: cpu.SR(), InstructionCount: instructionCount}
	for r := uint32(0); r < 32; r++ {
		state.GPRs[r] = cpu.Reg(r)
	}
	return state
}
