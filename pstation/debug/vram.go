package debug

import "fmt"

// VRAMReader is the minimal surface debug tooling needs from the
// GPU's video memory: raw 16-bit 1-5-5-5 pixel reads.
type VRAMReader interface {
	Read(x, y int) uint16
}

// DisplayInfo summarizes the GP1 display configuration active when a
// VRAM snapshot was taken.
type DisplayInfo struct {
	X, Y          int
	Width, Height int
}

// VRAMData is a read-only copy of VRAM plus the display area active
// at capture time, the debug surface's equivalent of a framebuffer.
type VRAMData struct {
	Width, Height int
	Pixels        []uint16 // row-major, 1-5-5-5

	Display DisplayInfo
}

// ExtractVRAMData copies the full 1024x512 VRAM plane out of reader,
// tagging it with the display area GP1 currently selects.
func ExtractVRAMData(reader VRAMReader, width, height int, display DisplayInfo) *VRAMData {
	data := &VRAMData{
		Width:   width,
		Height:  height,
		Pixels:  make([]uint16, width*height),
		Display: display,
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data.Pixels[y*width+x] = reader.Read(x, y)
		}
	}

	return data
}

// At returns the raw pixel at (x, y), or 0 if out of range.
func (d *VRAMData) At(x, y int) uint16 {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return 0
	}
	return d.Pixels[y*d.Width+x]
}

// RGBA unpacks a 1-5-5-5 pixel into 8-bit channels plus a fully opaque
// alpha (the mask bit controls VRAM masking, not display transparency).
func RGBA(pixel uint16) (r, g, b, a uint8) {
	r = uint8(pixel&0x1F) << 3
	g = uint8((pixel>>5)&0x1F) << 3
	b = uint8((pixel>>10)&0x1F) << 3
	a = 0xFF
	return
}

// DisplayPixels returns the subset of the snapshot that GP1 selects
// for output, cropped and wrapped the way the GPU's own display
// scanout wraps past VRAM's edges.
func (d *VRAMData) DisplayPixels() []uint16 {
	out := make([]uint16, d.Display.Width*d.Display.Height)
	for y := 0; y < d.Display.Height; y++ {
		for x := 0; x < d.Display.Width; x++ {
			out[y*d.Display.Width+x] = d.At((d.Display.X+x)&(d.Width-1), (d.Display.Y+y)&(d.Height-1))
		}
	}
	return out
}

// FormatSummary renders a one-line description of the display area,
// for a debugger's status bar.
func (info DisplayInfo) FormatSummary() string {
	return fmt.Sprintf("Display: origin (%d,%d) size %dx%d", info.X, info.Y, info.Width, info.Height)
}
