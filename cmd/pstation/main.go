package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gopsx/pstation"
	"github.com/gopsx/pstation/backend"
	"github.com/gopsx/pstation/cdrom"
	"github.com/gopsx/pstation/debug"
	"github.com/gopsx/pstation/timing"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "pstation"
	app.Description = "A PlayStation emulator"
	app.Usage = "pstation --bios <BIOS file> [--exe <PS-X EXE file>] [--cue <disc.cue>] --headless --frames <N>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to the BIOS image",
		},
		cli.StringFlag{
			Name:  "exe",
			Usage: "Path to a PS-X EXE to hot-start instead of booting the BIOS",
		},
		cli.StringFlag{
			Name:  "cue",
			Usage: "Path to a .cue sheet naming the disc image to mount in the CD-ROM drive",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a rendering surface, driving fixed frame counts for batch/CI use",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run (required, the only run mode this build supports)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save a VRAM snapshot every N frames (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save snapshots to (default: a temp directory)",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("pstation: error running emulator", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	m, err := loadMachine(c.String("bios"), c.String("exe"))
	if err != nil {
		return err
	}

	if cuePath := c.String("cue"); cuePath != "" {
		disk, err := cdrom.LoadCUE(cuePath)
		if err != nil {
			return fmt.Errorf("failed to mount disc image: %v", err)
		}
		m.Bus().CDROM.SetDisk(disk)
		slog.Info("pstation: mounted disc image", "cue", cuePath)
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("pstation requires --frames with a positive value; this build only supports headless batch runs")
	}

	return runHeadless(m, c, frames)
}

func runHeadless(m *pstation.Machine, c *cli.Context, frames int) error {
	snapshotConfig, err := backend.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), c.String("bios"))
	if err != nil {
		return err
	}

	h := backend.NewHeadlessBackend(frames, snapshotConfig)
	if err := h.Init(backend.PresenterConfig{}); err != nil {
		return err
	}

	// Batch runs are meant to finish as fast as the host can go, not
	// pace themselves to the guest's ~59.8Hz refresh rate, so a
	// no-op limiter stands in for the real-time pacing an interactive
	// frontend would need.
	limiter := timing.NewNoOpLimiter()

	for i := 0; i < frames; i++ {
		m.RunFrame()
		limiter.WaitForNextFrame()

		gpu := m.Bus().GPU
		x, y, width, height := gpu.DisplayArea()
		frame := debug.ExtractVRAMData(gpu.VRAM(), 1024, 512, debug.DisplayInfo{X: x, Y: y, Width: width, Height: height})

		if _, err := h.Update(frame); err != nil {
			return err
		}
	}

	return nil
}

func loadMachine(biosPath, exePath string) (*pstation.Machine, error) {
	var bios []byte
	if biosPath != "" {
		data, err := os.ReadFile(biosPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read BIOS: %v", err)
		}
		bios = data
	}

	if exePath == "" {
		return pstation.New(bios), nil
	}

	exe, err := os.ReadFile(exePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read EXE: %v", err)
	}
	return pstation.NewWithEXE(bios, exe)
}
