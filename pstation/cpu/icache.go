package cpu

// ICache models the R3000A's 4KB instruction cache: 256 lines of 4
// words each, tagged by physical address. Only KSEG0 addresses are
// cacheable; KSEG1 (the 0xA0000000 mirror) bypasses the cache
// entirely, matching real hardware and every PSX BIOS's use of KSEG1
// during early boot before the cache is enabled.
type ICache struct {
	valid [256]bool
	tag   [256]uint32
	line  [256][4]uint32
}

func (c *ICache) Reset() {
	for i := range c.valid {
		c.valid[i] = false
	}
}

// cacheable reports whether address is eligible for caching: KSEG0
// (0x80000000-0x9FFFFFFF) only.
func cacheable(address uint32) bool {
	return address>>29 == 4
}

// Lookup returns the cached word at address, if present.
func (c *ICache) Lookup(address uint32) (uint32, bool) {
	if !cacheable(address) {
		return 0, false
	}
	index := (address >> 4) & 0xFF
	word := (address >> 2) & 3
	lineTag := address &^ 0xF
	if c.valid[index] && c.tag[index] == lineTag {
		return c.line[index][word], true
	}
	return 0, false
}

// Fill installs a freshly fetched word into its cache line. Validity
// is tracked per line, not per word: the first Fill for a new tag marks
// the whole line valid, so the caller (CPU.fetch) fills all four words
// of a line together.
func (c *ICache) Fill(address, word uint32) {
	if !cacheable(address) {
		return
	}
	index := (address >> 4) & 0xFF
	wordIdx := (address >> 2) & 3
	lineTag := address &^ 0xF
	if c.tag[index] != lineTag {
		c.valid[index] = true
		c.tag[index] = lineTag
	}
	c.line[index][wordIdx] = word
}
