package stage

// BlendFactorStandard identifies standard (source-over) blending.
// Any other blend factor selects an extended blend mode and disables
// occlusion for the draw.
const BlendFactorStandard uint8 = 0

// OcclusionAlphaThreshold is the minimum world alpha at which a draw
// is considered opaque enough to occlude content behind it.
const OcclusionAlphaThreshold = 0.95

// ColorTransform is a per-draw color modulation: a multiplicative RGBA
// term, an additive RGB term, and the blending mode the draw composites
// with. The additive term is expressed in 8-bit channel units.
type ColorTransform struct {
	MulR, MulG, MulB float64
	MulA             float64
	AddR, AddG, AddB uint8

	// BlendFactor selects the compositing mode.
	// BlendFactorStandard is ordinary source-over blending.
	BlendFactor uint8
}

// IdentityColorTransform returns a transform that leaves colors
// unmodified and composites with standard blending.
func IdentityColorTransform() ColorTransform {
	return ColorTransform{MulR: 1, MulG: 1, MulB: 1, MulA: 1}
}

// HasAdd reports whether the transform carries a non-zero additive
// color term. Draws with an additive term require the ColorAdd shader
// feature.
func (c ColorTransform) HasAdd() bool {
	return c.AddR != 0 || c.AddG != 0 || c.AddB != 0
}

// Concat composes c with a child transform: multiplies the
// multiplicative terms and accumulates the additive terms, saturating
// at the 8-bit channel maximum.
func (c ColorTransform) Concat(child ColorTransform) ColorTransform {
	out := ColorTransform{
		MulR:        c.MulR * child.MulR,
		MulG:        c.MulG * child.MulG,
		MulB:        c.MulB * child.MulB,
		MulA:        c.MulA * child.MulA,
		AddR:        satAdd8(c.AddR, child.AddR),
		AddG:        satAdd8(c.AddG, child.AddG),
		AddB:        satAdd8(c.AddB, child.AddB),
		BlendFactor: c.BlendFactor,
	}
	if child.BlendFactor != BlendFactorStandard {
		out.BlendFactor = child.BlendFactor
	}
	return out
}

// satAdd8 adds two 8-bit channel values, saturating at 255.
func satAdd8(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}
