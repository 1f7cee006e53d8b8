package blend

// Premultiply converts a straight-alpha color to premultiplied alpha.
func Premultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	if a == 255 {
		return r, g, b, a
	}
	return MulDiv255(r, a), MulDiv255(g, a), MulDiv255(b, a), a
}

// Unpremultiply converts a premultiplied color back to straight alpha.
func Unpremultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	switch a {
	case 0:
		return 0, 0, 0, 0
	case 255:
		return r, g, b, a
	}
	half := uint32(a) / 2
	un := func(c byte) byte { return clamp255((uint32(c)*255 + half) / uint32(a)) }
	return un(r), un(g), un(b), a
}

// SourceOver composites premultiplied source over premultiplied destination.
// Result: S + D * (1 - Sa)
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	switch sa {
	case 255:
		return sr, sg, sb, sa
	case 0:
		if sr|sg|sb == 0 {
			return dr, dg, db, da
		}
	}
	invA := inv255(sa)
	return clamp255(uint32(sr) + uint32(MulDiv255(dr, invA))),
		clamp255(uint32(sg) + uint32(MulDiv255(dg, invA))),
		clamp255(uint32(sb) + uint32(MulDiv255(db, invA))),
		clamp255(uint32(sa) + uint32(MulDiv255(da, invA)))
}

// SourceOverPixel composites the premultiplied source pixel src over the
// 4-byte destination pixel dst in place.
func SourceOverPixel(dst []byte, sr, sg, sb, sa byte) {
	_ = dst[3]
	dst[0], dst[1], dst[2], dst[3] = SourceOver(sr, sg, sb, sa, dst[0], dst[1], dst[2], dst[3])
}
