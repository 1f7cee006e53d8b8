// Package cli holds the command-line configuration shared by the mosaic
// commands.
package cli

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/gogpu/gg"
	"github.com/gogpu/mosaic"
)

// Config is the filter configuration settable from flags.
type Config struct {
	MosaicSize      int
	Atlas           string
	CellCount       int
	SetCount        int
	Mode            mosaic.SetSelectionMode
	OffsetRowRadius float64
	Avoid           bool
	AvoidRadius     float64
	AvoidStrength   float64
	NoiseIntensity  float64
	NoiseFPS        float64
	Background      string
	Workers         int
	GPU             bool
	Verbose         bool
}

// Default returns the configuration matching the filter defaults.
func Default() Config {
	return Config{
		MosaicSize:      mosaic.DefaultMosaicSize,
		CellCount:       mosaic.DefaultCellCount,
		SetCount:        mosaic.DefaultSetCount,
		OffsetRowRadius: mosaic.DefaultOffsetRowRadius,
		AvoidRadius:     mosaic.DefaultAvoidRadius,
		AvoidStrength:   mosaic.DefaultAvoidStrength,
		NoiseFPS:        mosaic.DefaultNoiseFPS,
		GPU:             true,
	}
}

// Register binds the configuration to flags in fs.
func (c *Config) Register(fs *flag.FlagSet) {
	fs.IntVar(&c.MosaicSize, "size", c.MosaicSize, "cell edge in pixels")
	fs.StringVar(&c.Atlas, "atlas", c.Atlas, "atlas path or URL (empty generates a glyph atlas)")
	fs.IntVar(&c.CellCount, "cells", c.CellCount, "atlas columns")
	fs.IntVar(&c.SetCount, "sets", c.SetCount, "atlas rows")
	fs.Var(&c.Mode, "mode", "set selection mode: first, random, cycle or offsetRow")
	fs.Float64Var(&c.OffsetRowRadius, "offset-radius", c.OffsetRowRadius, "offsetRow pointer radius in pixels")
	fs.BoolVar(&c.Avoid, "avoid", c.Avoid, "push cells away from the pointer")
	fs.Float64Var(&c.AvoidRadius, "avoid-radius", c.AvoidRadius, "avoidance radius in pixels")
	fs.Float64Var(&c.AvoidStrength, "avoid-strength", c.AvoidStrength, "maximum avoidance push in NDC units")
	fs.Float64Var(&c.NoiseIntensity, "noise", c.NoiseIntensity, "brightness noise in [0, 1]")
	fs.Float64Var(&c.NoiseFPS, "noise-fps", c.NoiseFPS, "noise updates per second")
	fs.StringVar(&c.Background, "bg", c.Background, "background color as hex (empty for none)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "software renderer goroutines (0 = GOMAXPROCS)")
	fs.BoolVar(&c.GPU, "gpu", c.GPU, "use the GPU cell renderer when available")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "verbose logging")
}

// Options converts the configuration to filter options.
func (c *Config) Options(pointer mosaic.PointerSource, clock mosaic.Clock) []mosaic.Option {
	opts := []mosaic.Option{
		mosaic.WithMosaicSize(c.MosaicSize),
		mosaic.WithAtlasURL(c.Atlas),
		mosaic.WithCellCount(c.CellCount),
		mosaic.WithSetCount(c.SetCount),
		mosaic.WithSetSelectionMode(c.Mode),
		mosaic.WithOffsetRowRadius(c.OffsetRowRadius),
		mosaic.WithAvoid(c.Avoid),
		mosaic.WithAvoidRadius(c.AvoidRadius),
		mosaic.WithAvoidStrength(c.AvoidStrength),
		mosaic.WithNoiseIntensity(c.NoiseIntensity),
		mosaic.WithNoiseFPS(c.NoiseFPS),
		mosaic.WithWorkers(c.Workers),
		mosaic.WithAcceleration(c.GPU),
	}
	if c.Background != "" {
		opts = append(opts, mosaic.WithBackgroundColor(gg.Hex(c.Background).Color()))
	}
	if pointer != nil {
		opts = append(opts, mosaic.WithPointerSource(pointer))
	}
	if clock != nil {
		opts = append(opts, mosaic.WithClock(clock))
	}
	return opts
}

// Validate reports configuration errors the filter would silently clamp.
func (c *Config) Validate() error {
	if c.MosaicSize < 1 {
		return fmt.Errorf("size must be at least 1, got %d", c.MosaicSize)
	}
	if c.CellCount < 1 || c.SetCount < 1 {
		return fmt.Errorf("cells and sets must be at least 1, got %d and %d", c.CellCount, c.SetCount)
	}
	if c.Workers < 0 || c.Workers > 4*runtime.NumCPU() {
		return fmt.Errorf("workers out of range: %d", c.Workers)
	}
	return nil
}

// SetupLogging installs a text logger on stderr for the mosaic package.
// Without verbose only warnings and errors are shown.
func (c *Config) SetupLogging() {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	mosaic.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
