package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keys maps keys to viewer actions.
var keys = map[ebiten.Key]action{
	ebiten.KeySpace:      actionToggle,
	ebiten.KeyM:          actionNextMode,
	ebiten.KeyA:          actionToggleAvoid,
	ebiten.KeyEqual:      actionGrow,
	ebiten.KeyKPAdd:      actionGrow,
	ebiten.KeyMinus:      actionShrink,
	ebiten.KeyKPSubtract: actionShrink,
	ebiten.KeyN:          actionToggleNoise,
	ebiten.KeyR:          actionReload,
}

// game adapts the viewer to ebiten.
type game struct {
	viewer  *viewer
	texture *ebiten.Image
	err     string
}

func (g *game) Update() error {
	for k, a := range keys {
		if inpututil.IsKeyJustPressed(k) {
			g.viewer.apply(a)
		}
	}
	g.viewer.cursor(ebiten.CursorPosition())
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	pix, err := g.viewer.frame()
	if err != nil {
		g.err = err.Error()
	}
	t := g.viewer.target
	if g.texture == nil || g.texture.Bounds().Dx() != t.Width() || g.texture.Bounds().Dy() != t.Height() {
		if g.texture != nil {
			g.texture.Deallocate()
		}
		g.texture = ebiten.NewImage(t.Width(), t.Height())
	}
	if pix != nil {
		g.texture.WritePixels(pix)
	}
	screen.DrawImage(g.texture, nil)

	msg := g.viewer.statusLine()
	if g.err != "" {
		msg += "\n" + g.err
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.viewer.resize(outsideWidth, outsideHeight)
	return g.viewer.target.Width(), g.viewer.target.Height()
}
