package stage

// Renderable is the posing contract scene-graph nodes satisfy. Pose
// records borrow the renderable for the duration of one frame; the
// drawer calls back into it to emit geometry. Implementations must not
// be mutated between posing and drawing within a frame.
type Renderable interface {
	// CastsShadow reports whether the node participates in planar
	// shadow rendering. Non-casters are skipped entirely while a
	// shadow bracket is open.
	CastsShadow() bool

	// ShadowPlanePosition returns the world position the node's
	// planar shadow projects around.
	ShadowPlanePosition() Point
}

// ComputeOcclusionRectangle computes a world-space occlusion rectangle
// for a quad whose corners line up with texture coordinates (0,0) and
// (1,1). The input bounds are expected to be the tight world bounds of
// the shape. Returns a zero rectangle when the transformed result is
// not axis-aligned, since only axis-aligned rectangles can be used for
// conservative occlusion tests.
func ComputeOcclusionRectangle(m Matrix, ref TextureReference, bounds Rect) Rect {
	w := bounds.Width()
	h := bounds.Height()

	u0 := ref.OcclusionOffset.X
	v0 := ref.OcclusionOffset.Y
	u1 := ref.OcclusionOffset.X + ref.OcclusionScale.X
	v1 := ref.OcclusionOffset.Y + ref.OcclusionScale.Y

	r := Rect{
		Left:   bounds.Left + u0*w,
		Top:    bounds.Top + v0*h,
		Right:  bounds.Left + u1*w,
		Bottom: bounds.Top + v1*h,
	}

	out, axisAligned := TransformRect(m, r)
	if !axisAligned {
		return Rect{}
	}
	return out
}
