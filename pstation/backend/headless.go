package backend

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopsx/pstation/debug"
)

// HeadlessBackend drives a fixed number of frames with no rendering
// surface, for automated testing and batch snapshot generation.
type HeadlessBackend struct {
	config         PresenterConfig
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
}

// SnapshotConfig configures periodic PNG snapshots during a headless run.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int
	Directory string
	ImageName string
}

func NewHeadlessBackend(maxFrames int, snapshotConfig SnapshotConfig) *HeadlessBackend {
	return &HeadlessBackend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *HeadlessBackend) Init(config PresenterConfig) error {
	h.config = config

	slog.Info("backend: running headless",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update saves a periodic snapshot and signals completion once
// maxFrames is reached. A headless backend never produces input.
func (h *HeadlessBackend) Update(frame *debug.VRAMData) ([]InputEvent, error) {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%60 == 0 {
		slog.Info("backend: frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount >= h.maxFrames {
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}
		slog.Info("backend: headless run complete", "frames", h.maxFrames)
		if h.config.Callbacks.OnQuit != nil {
			h.config.Callbacks.OnQuit()
		}
	}

	return nil, nil
}

func (h *HeadlessBackend) Cleanup() error { return nil }

// CreateSnapshotConfig builds a SnapshotConfig from CLI parameters,
// creating the output directory (a fresh temp dir when none is given).
func CreateSnapshotConfig(interval int, directory, imagePath string) (SnapshotConfig, error) {
	config := SnapshotConfig{Enabled: interval > 0, Interval: interval}
	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "pstation-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = directory
	}

	config.ImageName = strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	return config, nil
}

func (h *HeadlessBackend) saveSnapshot(frame *debug.VRAMData) {
	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ImageName, h.frameCount)
	if err := debug.SaveFramePNGToDir(frame, baseName, h.snapshotConfig.Directory); err != nil {
		slog.Error("backend: failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}
}
