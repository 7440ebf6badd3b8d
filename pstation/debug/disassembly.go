package debug

import "github.com/gopsx/pstation/disasm"

// DisasmLine is one line of a debugger's instruction listing.
type DisasmLine struct {
	Address     uint32
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly renders a centered instruction listing around pc:
// up to before instructions leading up to it, pc itself, and the rest
// filled in after, for a total of at most maxLines.
func CreateDisassembly(reader disasm.Reader, pc uint32, maxLines int) []DisasmLine {
	if maxLines <= 0 {
		return nil
	}

	before := maxLines / 2
	after := maxLines - before - 1

	lines := disasm.Around(pc, before, after, reader)

	out := make([]DisasmLine, len(lines))
	for i, l := range lines {
		out[i] = DisasmLine{Address: l.Address, Instruction: l.Text, IsCurrent: l.Address == pc}
	}
	return out
}
