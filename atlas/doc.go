// Package atlas loads and generates mosaic tile atlases.
//
// An atlas is a single image divided into CellCount columns and SetCount rows
// of equally sized tiles. Columns are brightness buckets (column 0 is used for
// the brightest blocks), rows are alternate tile sets.
//
// # Loading
//
//	a, err := atlas.Load(ctx, "https://example.com/cells.png", 10, 1)
//	a, err := atlas.Load(ctx, "testdata/cells.png", 10, 3)
//	a, err := atlas.Load(ctx, "data:image/png;base64,iVBOR...", 10, 1)
//
// Supported sources are filesystem paths, file:// URLs, http(s):// URLs and
// data: URIs. Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP.
//
// # Generating
//
// Generate rasterizes a glyph atlas from a charset, one glyph per column:
//
//	a, err := atlas.Generate(atlas.GenerateOptions{Charset: " .:-=+*#%@"})
//
// # Layout
//
// The declared CellCount and SetCount are not derived from the image. An image
// whose size is not a multiple of the declared layout produces tiles of
// uneven size; only images smaller than one pixel per tile are rejected.
package atlas
