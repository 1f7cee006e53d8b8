package main

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/integration/gghost"
	"github.com/gogpu/mosaic/internal/cli"
	"github.com/gogpu/mosaic/render"
)

// app owns the terminal, the filter and the demo scene.
type app struct {
	screen tcell.Screen
	scale  int
	orbit  float64

	hub    *mosaic.PointerHub
	host   *gghost.Host
	target *render.PixmapTarget
	filter *mosaic.Filter
	scene  *gghost.Scene
	camera gghost.Camera

	// display is the downsampled surface, two pixel rows per terminal row.
	display *image.RGBA
	status  string
	start   time.Time
}

func newApp(screen tcell.Screen, cfg cli.Config, scale int, orbit float64) *app {
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.HideCursor()

	a := &app{
		screen: screen,
		scale:  scale,
		orbit:  orbit,
		hub:    mosaic.NewPointerHub(),
		scene:  gghost.DefaultScene(),
		camera: *gghost.DefaultCamera(),
		start:  time.Now(),
	}
	cols, rows := screen.Size()
	w, h := a.surfaceSize(cols, rows)
	a.target = render.NewPixmapTarget(w, h)
	a.host = gghost.New(a.target)
	a.filter = mosaic.New(a.host, w, h, cfg.Options(a.hub, nil)...)
	a.filter.Enable()
	a.display = image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	return a
}

func (a *app) close() {
	a.filter.Dispose()
	a.screen.Fini()
}

// surfaceSize returns the render surface size for a terminal of cols x rows.
func (a *app) surfaceSize(cols, rows int) (w, h int) {
	return max(cols, 1) * a.scale, max(rows, 1) * 2 * a.scale
}

func (a *app) run(frame time.Duration) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok || !a.handle(ev) {
				return
			}
		case <-ticker.C:
			a.draw()
		}
	}
}

// handle processes one event and reports whether the app keeps running.
func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		cols, rows := a.screen.Size()
		x, y := ev.Position()
		vp := mosaic.Viewport{Width: float64(cols), Height: float64(rows)}
		// Aim at the center of the terminal cell.
		px, py, ok := mosaic.ClientToDevice(float64(x)+0.5, float64(y)+0.5, vp, a.target.Width(), a.target.Height())
		if ok {
			a.hub.Move(px, py)
		}
	case *tcell.EventFocus:
		if ev.Focused {
			a.hub.Enter()
		} else {
			a.hub.Leave()
		}
	case *tcell.EventResize:
		a.resize()
		a.screen.Sync()
	}
	return true
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	f := a.filter
	switch ev.Rune() {
	case 'q':
		return false
	case ' ':
		if f.Enabled() {
			f.Disable()
		} else {
			f.Enable()
		}
	case 'm':
		next := nextMode(f.Settings().Mode)
		f.SetSetSelectionMode(next)
		a.status = "mode " + next.String()
	case 'a':
		avoid := !f.Settings().Avoid
		f.SetAvoid(avoid)
		a.status = fmt.Sprintf("avoid %v", avoid)
	case '+', '=':
		size := f.Settings().MosaicSize + 1
		f.SetMosaicSize(size)
		a.status = fmt.Sprintf("size %d", size)
	case '-':
		size := max(f.Settings().MosaicSize-1, 1)
		f.SetMosaicSize(size)
		a.status = fmt.Sprintf("size %d", size)
	case 'n':
		noise := 0.3
		if f.Settings().NoiseIntensity > 0 {
			noise = 0
		}
		f.SetNoiseIntensity(noise)
		a.status = fmt.Sprintf("noise %.1f", noise)
	}
	return true
}

// nextMode returns the set selection mode after m.
func nextMode(m mosaic.SetSelectionMode) mosaic.SetSelectionMode {
	return (m + 1) % (mosaic.SetOffsetRow + 1)
}

func (a *app) resize() {
	cols, rows := a.screen.Size()
	w, h := a.surfaceSize(cols, rows)
	a.target.Resize(w, h)
	a.filter.SetSize(w, h)
	a.display = image.NewRGBA(image.Rect(0, 0, cols, rows*2))
}

func (a *app) draw() {
	cam := a.camera.Orbit(a.orbit * time.Since(a.start).Seconds())
	if err := a.filter.Render(a.scene, &cam); err != nil {
		a.status = err.Error()
	}

	xdraw.ApproxBiLinear.Scale(a.display, a.display.Bounds(), a.target.Image(), a.target.Image().Bounds(), xdraw.Src, nil)
	paint(a.screen, a.display)

	status := a.status
	if !a.filter.IsReady() {
		status = "loading atlas..."
	}
	drawText(a.screen, 0, 0, status, tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack))
	a.screen.Show()
}

// halfBlock is the upper half block: foreground is the top pixel,
// background the bottom one.
const halfBlock = '▀'

// paint draws img onto the screen, two pixel rows per terminal row.
func paint(screen tcell.Screen, img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y+1 < b.Dy(); y += 2 {
		for x := range b.Dx() {
			top, bottom := cellColors(img, x, y)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			screen.SetContent(x, y/2, halfBlock, nil, style)
		}
	}
}

// cellColors returns the terminal colors for the pixel pair at (x, y) and
// (x, y+1), composited over black.
func cellColors(img *image.RGBA, x, y int) (top, bottom tcell.Color) {
	return toTerminal(img.RGBAAt(x, y)), toTerminal(img.RGBAAt(x, y+1))
}

// toTerminal converts a premultiplied pixel to a terminal color over black.
func toTerminal(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
