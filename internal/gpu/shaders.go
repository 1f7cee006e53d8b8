//go:build !nogpu

package gpu

import (
	_ "embed"
)

// Embedded WGSL shader sources.

//go:embed shaders/mosaic.wgsl
var mosaicShaderSource string

// MosaicShaderSource returns the WGSL source of the cell compositor.
func MosaicShaderSource() string {
	return mosaicShaderSource
}
