// Package blend provides the premultiplied-alpha arithmetic used to composite
// mosaic cells onto the output frame.
//
// All values are 8-bit channels. Division by 255 uses Alvy Ray Smith's exact
// shift formula so results match float compositing rounded to nearest.
package blend

// div255 divides x by 255 exactly without using division.
//
// Formula: ((x + 128) + ((x + 128) >> 8)) >> 8
func div255(x uint32) uint32 {
	t := x + 128
	return (t + (t >> 8)) >> 8
}

// MulDiv255 returns round(a*b/255).
func MulDiv255(a, b byte) byte {
	return byte(div255(uint32(a) * uint32(b)))
}

// inv255 returns 255 - x.
func inv255(x byte) byte {
	return 255 - x
}

// clamp255 clamps x to [0, 255].
func clamp255(x uint32) byte {
	if x > 255 {
		return 255
	}
	return byte(x)
}
