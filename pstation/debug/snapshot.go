package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// TakeSnapshot saves the display area of a VRAM snapshot as a
// timestamped PNG in the current directory, logging any failure
// rather than returning it (callers treat a snapshot key press as
// best-effort).
func TakeSnapshot(data *VRAMData) {
	if data == nil {
		slog.Warn("debug: no VRAM data available for snapshot")
		return
	}

	if err := SaveFramePNGToDir(data, "pstation_snapshot", ""); err != nil {
		slog.Error("debug: failed to save snapshot", "error", err)
	}
}

// SaveFramePNGToDir encodes the snapshot's display area as an RGBA PNG
// with a timestamped filename into directory (the working directory
// when empty).
func SaveFramePNGToDir(data *VRAMData, baseName, directory string) error {
	pixels := data.DisplayPixels()

	img := image.NewRGBA(image.Rect(0, 0, data.Display.Width, data.Display.Height))
	for i, p := range pixels {
		r, g, b, a := RGBA(p)
		idx := i * 4
		img.Pix[idx] = r
		img.Pix[idx+1] = g
		img.Pix[idx+2] = b
		img.Pix[idx+3] = a
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %v", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %v", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %v", err)
	}

	slog.Info("debug: snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", data.Display.Width, data.Display.Height))
	return nil
}
