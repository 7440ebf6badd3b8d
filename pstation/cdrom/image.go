package cdrom

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// rawSectorSize is the size of one MODE2/2352 raw CD sector: 12-byte
// sync, 4-byte header, 8-byte subheader, 2048 bytes of user data, then
// ECC/EDC. The user-data region for a Mode2 Form1 sector (the only
// layout a single-data-track PS-X disc image uses) starts at offset 24.
const (
	rawSectorSize  = 2352
	userDataOffset = 24
	userDataSize   = 2048
)

// binImage is a Disk backed by a single raw .bin track, the common
// case a .cue sheet naming one FILE/TRACK pair describes.
type binImage struct {
	file *os.File
}

func (b *binImage) ReadSector(lba int) (data [2048]byte, kind SectorKind) {
	var raw [rawSectorSize]byte
	if _, err := b.file.ReadAt(raw[:], int64(lba)*rawSectorSize); err != nil {
		return data, SectorInvalid
	}
	copy(data[:], raw[userDataOffset:userDataOffset+userDataSize])
	return data, SectorData
}

func (b *binImage) NumTracks() int { return 1 }

// LoadCUE opens the .bin track a .cue sheet names and returns a Disk
// reading it as a single MODE2/2352 data track. It supports exactly
// the single-FILE, single-TRACK shape every plain disc-image dump
// produces; multi-track audio cuts and other track modes are left
// unparsed, matching Disk's own "nothing about .cue/.bin parsing"
// remit.
func LoadCUE(cuePath string) (Disk, error) {
	f, err := os.Open(cuePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cue sheet: %v", err)
	}
	defer f.Close()

	var binName string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.ToUpper(line), "FILE") {
			continue
		}
		fields := splitQuoted(line)
		if len(fields) >= 2 {
			binName = fields[1]
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cue sheet: %v", err)
	}
	if binName == "" {
		return nil, fmt.Errorf("cue sheet %s names no FILE entry", cuePath)
	}

	binPath := binName
	if !filepath.IsAbs(binPath) {
		binPath = filepath.Join(filepath.Dir(cuePath), binName)
	}

	bin, err := os.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bin image: %v", err)
	}

	return &binImage{file: bin}, nil
}

// splitQuoted splits a cue sheet line into fields, treating a
// "double-quoted" run as a single field the way FILE/TRACK lines do
// for filenames containing spaces.
func splitQuoted(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}
