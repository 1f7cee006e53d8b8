// Command mosaicterm shows the mosaic filter live in a terminal.
//
// Each terminal cell displays two vertically stacked pixels using the upper
// half block with separate foreground and background colors. The surface is
// rendered at -scale times that resolution and downsampled for display.
//
// Keys: space toggles the filter, m cycles the set mode, a toggles
// avoidance, +/- change the cell size, n toggles noise, q or Esc quits.
// Mouse movement drives the pointer.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/mosaic/internal/cli"
)

func main() {
	cfg := cli.Default()
	cfg.Register(flag.CommandLine)
	var (
		scale = flag.Int("scale", 4, "surface pixels per displayed pixel")
		fps   = flag.Int("fps", 30, "target frame rate")
		orbit = flag.Float64("orbit", 0.3, "camera orbit speed in radians per second")
	)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	if *scale < 1 || *fps < 1 {
		log.Fatalf("Invalid flags: scale=%d fps=%d", *scale, *fps)
	}
	cfg.SetupLogging()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	app := newApp(screen, cfg, *scale, *orbit)
	defer app.close()
	app.run(time.Second / time.Duration(*fps))
}
