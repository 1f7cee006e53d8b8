// Command ggmosaic renders the gg demo scene through the mosaic filter and
// writes the frames as PNG files.
//
// The pointer follows a scripted circular path so that avoidance and the
// offsetRow set mode can be seen in still frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/integration/gghost"
	"github.com/gogpu/mosaic/internal/cli"
	internalimage "github.com/gogpu/mosaic/internal/image"
	"github.com/gogpu/mosaic/render"
)

func main() {
	cfg := cli.Default()
	cfg.Register(flag.CommandLine)
	var (
		width   = flag.Int("width", 800, "image width")
		height  = flag.Int("height", 600, "image height")
		frames  = flag.Int("frames", 1, "number of frames")
		fps     = flag.Float64("fps", 30, "frames per second of the sequence")
		output  = flag.String("output", "mosaic.png", "output file; frames are numbered when -frames > 1")
		orbit   = flag.Float64("orbit", 0.5, "camera orbit speed in radians per second")
		pointer = flag.Bool("pointer", true, "move a scripted pointer over the frame")
		raw     = flag.Bool("raw", false, "render the scene without the filter")
	)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	if *frames < 1 || *fps <= 0 {
		log.Fatalf("Invalid flags: frames=%d fps=%v", *frames, *fps)
	}
	cfg.SetupLogging()

	if err := run(cfg, *width, *height, *frames, *fps, *output, *orbit, *pointer, *raw); err != nil {
		log.Fatalf("ggmosaic: %v", err)
	}
}

func run(cfg cli.Config, width, height, frames int, fps float64, output string, orbit float64, scripted, raw bool) error {
	screen := render.NewPixmapTarget(width, height)
	host := gghost.New(screen)
	hub := mosaic.NewPointerHub()
	clock := mosaic.NewManualClock(time.Now())

	f := mosaic.New(host, width, height, cfg.Options(hub, clock)...)
	defer f.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := f.WaitReady(ctx); err != nil {
		return fmt.Errorf("waiting for atlas: %w", err)
	}
	if !f.AtlasLoaded() {
		log.Printf("Atlas %q failed to load; frames will only show the background", cfg.Atlas)
	}
	if !raw {
		f.Enable()
	}

	scene := gghost.DefaultScene()
	base := gghost.DefaultCamera()
	step := time.Duration(float64(time.Second) / fps)

	for i := range frames {
		t := float64(i) / fps
		if scripted {
			x, y := pointerPath(t, width, height)
			hub.Move(x, y)
		}
		cam := base.Orbit(orbit * t)
		if err := f.Render(scene, &cam); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		name := frameName(output, i, frames)
		if err := internalimage.SavePNG(name, screen.Image()); err != nil {
			return err
		}
		clock.Advance(step)
	}

	g := f.Grid()
	log.Printf("Saved %d frame(s) to %s (%dx%d, %dx%d cells)", frames, output, width, height, g.Cols, g.Rows)
	return nil
}

// pointerPath returns the scripted pointer position at t seconds: a slow
// circle around the frame center.
func pointerPath(t float64, width, height int) (x, y float64) {
	cx, cy := float64(width)/2, float64(height)/2
	r := math.Min(cx, cy) * 0.5
	return cx + r*math.Cos(t), cy + r*math.Sin(t)
}

// frameName numbers output when more than one frame is written.
func frameName(output string, i, frames int) string {
	if frames == 1 {
		return output
	}
	ext := filepath.Ext(output)
	base := output[:len(output)-len(ext)]
	if ext == "" {
		ext = ".png"
	}
	digits := len(fmt.Sprint(frames - 1))
	return fmt.Sprintf("%s_%0*d%s", base, digits, i, ext)
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}
