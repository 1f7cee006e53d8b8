// Command mosaicview shows the mosaic filter live in a desktop window.
//
// Keys: space toggles the filter, M cycles the set mode, A toggles
// avoidance, +/- change the cell size, N toggles noise, R reloads the atlas.
// The mouse cursor drives the pointer.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/mosaic/internal/cli"
)

func main() {
	cfg := cli.Default()
	cfg.Register(flag.CommandLine)
	var (
		width  = flag.Int("width", 960, "window width")
		height = flag.Int("height", 640, "window height")
		orbit  = flag.Float64("orbit", 0.3, "camera orbit speed in radians per second")
	)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	cfg.SetupLogging()

	v := newViewer(cfg, *width, *height, *orbit)
	defer v.close()

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("mosaic")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(&game{viewer: v}); err != nil {
		log.Fatal(err)
	}
}
