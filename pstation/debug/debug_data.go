package debug

// CPUState is a point-in-time snapshot of the R3000A's visible
// register file, for display in a debugger's register pane.
type CPUState struct {
	PC   uint32
	SR   uint32
	GPRs [32]uint32

	InstructionCount uint64
}

// MemorySnapshot is a contiguous byte-addressable window of bus
// address space, captured for disassembly.
type MemorySnapshot struct {
	StartAddr uint32
	Bytes     []uint8
}

// CompleteDebugData bundles everything a debug display needs for a
// single frame: VRAM, CPU state, a memory window and pending
// interrupts.
type CompleteDebugData struct {
	VRAM   *VRAMData
	CPU    *CPUState
	Memory *MemorySnapshot

	InterruptMask uint32 // I_MASK
	InterruptStat uint32 // I_STAT
}
