// Package spu models the sound processor's register window only: the
// machine ignores SPU audio generation entirely, but BIOS boot code
// probes the register space and expects writes to stick.
package spu

import "github.com/gopsx/pstation/addr"

// Unit is a byte-addressable bank over the SPU's register window.
// Every register read/writes back whatever was last stored; no audio
// is generated or mixed.
type Unit struct {
	regs [addr.SPUEnd - addr.SPUBase + 1]byte
}

// New returns an SPU unit with its register bank zeroed.
func New() *Unit { return &Unit{} }

func (u *Unit) Read8(offset uint32) uint8 {
	if offset >= uint32(len(u.regs)) {
		return 0
	}
	return u.regs[offset]
}

func (u *Unit) Write8(offset uint32, value uint8) {
	if offset >= uint32(len(u.regs)) {
		return
	}
	u.regs[offset] = value
}
