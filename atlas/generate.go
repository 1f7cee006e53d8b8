package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// DefaultCharset orders glyphs from light to dense ink, so bright blocks map
// to a space and dark blocks to '#'.
const DefaultCharset = " .,:;+=xX$&@#"

// DefaultGlyphSize is the default tile size of generated atlases in pixels.
const DefaultGlyphSize = 32

// ErrEmptyCharset is returned by Generate when the charset has no runes.
var ErrEmptyCharset = errors.New("atlas: empty charset")

// GenerateOptions configures Generate. The zero value produces the default
// black-on-white glyph atlas.
type GenerateOptions struct {
	// Charset lists one glyph per column. It is NFC-normalized before use.
	// Empty means DefaultCharset.
	Charset string

	// GlyphSize is the tile edge in pixels and the font size in points at
	// 72 DPI. Zero means DefaultGlyphSize.
	GlyphSize int

	// SetCount is the number of rows. Values below 1 mean 1.
	SetCount int

	// Inks are the glyph colors per row, repeated when shorter than SetCount.
	// Empty means black.
	Inks []color.Color

	// Background fills every tile before glyphs are drawn. Nil means white;
	// use color.Transparent for glyph-only tiles.
	Background color.Color

	// Font is TrueType/OpenType data. Nil means Go Mono.
	Font []byte
}

// Generate rasterizes a glyph atlas: one column per rune of the charset,
// SetCount rows that repeat the glyphs in their row ink.
func Generate(opts GenerateOptions) (*Atlas, error) {
	charset := opts.Charset
	if charset == "" {
		charset = DefaultCharset
	}
	runes := []rune(norm.NFC.String(charset))
	if len(runes) == 0 {
		return nil, ErrEmptyCharset
	}

	size := opts.GlyphSize
	if size <= 0 {
		size = DefaultGlyphSize
	}
	sets := max(opts.SetCount, 1)
	inks := opts.Inks
	if len(inks) == 0 {
		inks = []color.Color{color.Black}
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	ttf := opts.Font
	if ttf == nil {
		ttf = gomono.TTF
	}

	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("atlas: parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("atlas: create face: %w", err)
	}
	defer func() { _ = face.Close() }()

	img := image.NewNRGBA(image.Rect(0, 0, size*len(runes), size*sets))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	// Vertically center the line box: baseline sits half the free space
	// below the tile top plus the ascent.
	m := face.Metrics()
	lineHeight := (m.Ascent + m.Descent).Ceil()
	baseline := (size-lineHeight)/2 + m.Ascent.Ceil()

	drawer := &font.Drawer{Dst: img, Face: face}
	for row := range sets {
		drawer.Src = image.NewUniform(inks[row%len(inks)])
		for col, r := range runes {
			glyph := string(r)
			advance := font.MeasureString(face, glyph).Ceil()
			drawer.Dot = fixed.P(col*size+(size-advance)/2, row*size+baseline)
			drawer.DrawString(glyph)
		}
	}

	return New(img, len(runes), sets)
}
