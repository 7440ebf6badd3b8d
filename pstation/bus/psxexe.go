package bus

import (
	"encoding/binary"
	"fmt"

	"github.com/gopsx/pstation/addr"
)

const psxEXEMagic = "PS-X EXE"

// BootState reports the CPU register values a PS-X EXE load produces
// for its hot start: a non-zero program counter and three general
// registers.
type BootState struct {
	PC      uint32
	R28     uint32
	R29     uint32
	R30     uint32
}

// LoadEXE recognizes the "PS-X EXE" side-loader format, copies its
// payload into RAM at load_addr, and reports the register state the
// CPU should be seeded with for a hot start.
func (b *Bus) LoadEXE(data []byte) (BootState, error) {
	if len(data) < 0x800 || string(data[0:8]) != psxEXEMagic {
		return BootState{}, fmt.Errorf("bus: not a PS-X EXE image")
	}

	pc := binary.LittleEndian.Uint32(data[0x10:])
	r28 := binary.LittleEndian.Uint32(data[0x14:])
	loadAddr := binary.LittleEndian.Uint32(data[0x18:])
	fileSize := binary.LittleEndian.Uint32(data[0x1C:])
	memfillStart := binary.LittleEndian.Uint32(data[0x28:])
	memfillSize := binary.LittleEndian.Uint32(data[0x2C:])
	r29r30Base := binary.LittleEndian.Uint32(data[0x30:])
	r29r30Offset := binary.LittleEndian.Uint32(data[0x34:])

	if memfillStart != 0 || memfillSize != 0 {
		return BootState{}, fmt.Errorf("bus: PS-X EXE memfill region is non-zero, unsupported")
	}

	payload := data[0x800:]
	if uint32(len(payload)) < fileSize {
		return BootState{}, fmt.Errorf("bus: PS-X EXE file_size exceeds payload length")
	}
	payload = payload[:fileSize]

	dest := loadAddr & 0x7FFF_FFFF
	for i, v := range payload {
		b.ram[(dest+uint32(i))&addr.RAMMask] = v
	}

	r29 := r29r30Base
	r30 := r29r30Base
	if r29r30Base != 0 {
		r29 += r29r30Offset
		r30 += r29r30Offset
	}

	return BootState{PC: pc, R28: r28, R29: r29, R30: r30}, nil
}
