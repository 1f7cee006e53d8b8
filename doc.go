// Package mosaic provides a mosaic post-processing filter for rendered scenes.
//
// # Overview
//
// The filter sits between a host application's base renderer and its visible
// surface. Each frame it captures the host scene into an offscreen target,
// partitions the frame into square cells and draws one tile of a texture
// atlas per cell. Tiles are chosen by the brightness of the block they cover,
// so a photo-realistic scene turns into ASCII art, halftone dots or any other
// tile set the atlas provides.
//
// # Quick Start
//
//	import "github.com/gogpu/mosaic"
//
//	f := mosaic.New(host, 800, 600,
//	    mosaic.WithMosaicSize(10),
//	    mosaic.WithAtlasURL("https://example.com/ascii.png"),
//	    mosaic.WithCellCount(10),
//	)
//	defer f.Dispose()
//
//	f.Enable() // applied once the atlas has loaded
//	for running {
//	    _ = f.Render(scene, camera)
//	}
//
// # Atlas Layout
//
// The atlas is a grid of CellCount columns by SetCount rows. Column 0 holds
// the tile for the brightest blocks and the last column the tile for the
// darkest. Row 0 is the top strip of the image. Blocks at or above
// BackgroundThreshold draw no tile and show the background color.
//
// # Set Selection
//
// With more than one row, SetSelectionMode picks the row per cell:
//   - SetFirst: always row 0
//   - SetRandom: per-cell hash that changes at the noise rate
//   - SetCycle: all cells advance one row ten times per second
//   - SetOffsetRow: rows grow toward the last one near the pointer
//
// # Pointer Interaction
//
// With WithAvoid, cells within the avoidance radius are pushed away from the
// pointer. Pointer events arrive from a PointerSource (PointerHub is a ready
// made one); the filter listens only while enabled and while avoidance or
// SetOffsetRow needs the pointer. Strengths ease in and out exponentially at
// SmoothingRate per second.
//
// # Rendering Backends
//
// Cells are drawn on the CPU by default, in parallel bands. A GPU backend is
// enabled by blank import:
//
//	import _ "github.com/gogpu/mosaic/gpu"
//
// Any accelerator failure falls back to the CPU path for that frame.
//
// # Coordinate System
//
// Pixel coordinates have their origin at the top-left with Y down.
// Normalized device coordinates span [-1, 1] with Y up; avoidance and
// offset-row distances are measured in them, with pixel radii converted
// against the smaller frame dimension.
//
// # Logging
//
// The package is silent by default. See SetLogger.
package mosaic

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
