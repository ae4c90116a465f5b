// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"

	"github.com/gogpu/stage"
)

// ResolveResult reports the outcome of a texture resolve during
// posing.
type ResolveResult uint8

const (
	// ResolveSuccess means the reference is valid and renderable.
	ResolveSuccess ResolveResult = iota

	// ResolveNotReady means the texture exists but its bitmap is still
	// loading; the caller should skip the draw this frame.
	ResolveNotReady

	// ResolveCulled means the draw is entirely off-screen and was not
	// resolved.
	ResolveCulled

	// ResolveCulledPrefetched means the draw is off-screen but a load
	// of its bitmap was started so it is warm when it scrolls in.
	ResolveCulledPrefetched
)

var resolveResultNames = [...]string{
	ResolveSuccess:          "Success",
	ResolveNotReady:         "NotReady",
	ResolveCulled:           "Culled",
	ResolveCulledPrefetched: "CulledPrefetched",
}

// String returns the resolve result name.
func (r ResolveResult) String() string {
	if int(r) < len(resolveResultNames) {
		return resolveResultNames[r]
	}
	return "Invalid"
}

// IsCulled reports whether the draw was skipped as off-screen.
func (r ResolveResult) IsCulled() bool {
	return r == ResolveCulled || r == ResolveCulledPrefetched
}

// Poser flattens a scene graph traversal into the frame's command
// stream. The traversal calls Pose (and the bracket operations) in
// scene order; the poser culls, clips, depth-projects, and emits pose
// records carrying everything the drawer needs.
//
// A Poser is bound to one State at a time via Begin and is not safe
// for concurrent use.
type Poser struct {
	state *State

	// scissorStack holds the nested hardware scissor rectangles, each
	// already intersected with its parent.
	scissorStack []stage.Rect
}

// NewPoser returns an unbound Poser.
func NewPoser() *Poser { return &Poser{} }

// Begin binds the poser to state for one posing phase. The stream is
// reset and the current world cull rectangle and view-projection
// coefficients are recorded as the stream's opening commands.
func (p *Poser) Begin(state *State) {
	p.state = state
	p.scissorStack = p.scissorStack[:0]
	state.Stream.Reset()
	state.Stream.IssueWorldCullChange(
		state.WorldCullRectangle,
		state.WorldWidthToScreenWidth,
		state.WorldHeightToScreenHeight)
	state.Stream.IssueViewProjectionChange(
		state.ViewProjectionScale, state.ViewProjectionShift)
}

// End finishes the posing phase: replays any remaining deferred
// commands into the primary buffer and transitions the state into the
// drawing phase.
func (p *Poser) End() {
	s := p.state
	if s == nil {
		return
	}
	if len(p.scissorStack) != 0 {
		stage.Logger().Warn("render: unbalanced scissor stack at End",
			"depth", len(p.scissorStack))
		p.scissorStack = p.scissorStack[:0]
	}
	s.Stream.FlushDeferred()
	s.EndPhase()
	p.state = nil
}

// State returns the bound state, or nil outside a posing phase.
func (p *Poser) State() *State { return p.state }

// ---------------------------------------------------------------------------
// Posing
// ---------------------------------------------------------------------------

// Pose culls, clips, and records one draw at the current effective
// depth. worldBounds are the tight world-space bounds of the shape
// under worldTransform; worldOcclusion is the caller-computed occluded
// sub-rectangle (see ComputeOcclusionRectangle), or the zero rectangle
// when the shape occludes nothing; ref must have been resolved this
// frame.
func (p *Poser) Pose(
	r stage.Renderable,
	worldTransform stage.Matrix,
	cxWorld stage.ColorTransform,
	worldBounds stage.Rect,
	worldOcclusion stage.Rect,
	ref stage.TextureReference,
	feature stage.Feature,
	subInstance uint32,
) {
	p.pose(r, worldTransform, cxWorld, worldBounds, worldOcclusion, ref,
		feature, subInstance, p.state.ModifiedDepth3D())
}

// PoseWithFarthestDepth records one draw at whichever is deeper: the
// current effective depth or depth. Used by renderables that must sort
// behind everything they were posed after.
func (p *Poser) PoseWithFarthestDepth(
	depth float64,
	r stage.Renderable,
	worldTransform stage.Matrix,
	cxWorld stage.ColorTransform,
	worldBounds stage.Rect,
	worldOcclusion stage.Rect,
	ref stage.TextureReference,
	feature stage.Feature,
	subInstance uint32,
) {
	p.pose(r, worldTransform, cxWorld, worldBounds, worldOcclusion, ref,
		feature, subInstance, math.Max(depth, p.state.ModifiedDepth3D()))
}

func (p *Poser) pose(
	r stage.Renderable,
	worldTransform stage.Matrix,
	cxWorld stage.ColorTransform,
	worldBounds stage.Rect,
	occlusion stage.Rect,
	ref stage.TextureReference,
	feature stage.Feature,
	subInstance uint32,
	depth float64,
) {
	s := p.state
	shadow := s.InPlanarShadowRender > 0

	if shadow {
		if !r.CastsShadow() {
			return
		}
		sh := &s.Stage3D.Shadow
		planeY := sh.ComputePlaneY(r.ShadowPlanePosition())
		worldBounds = sh.ProjectRect(planeY, worldBounds)
	}

	// Clip first, in unprojected world space: the clip stack
	// accumulates unprojected geometry, so intersection happens
	// before any perspective projection. Only simple (exactly
	// rectangular) clips reject here; complex clip shapes are applied
	// at mesh build time, so posing keeps the full rectangle.
	preClip := worldBounds
	clipped := worldBounds
	if s.ClipStack.HasClips() {
		top := s.ClipStack.Top()
		if top.Simple {
			clipped = clipped.Intersect(top.Bounds)
			if clipped.IsZero() {
				return
			}
		}
	}

	// Occlusion only applies to effectively opaque standard-blend
	// draws outside shadow brackets; everything else contributes
	// nothing to the occlusion buffer.
	if shadow ||
		cxWorld.MulA < stage.OcclusionAlphaThreshold ||
		cxWorld.BlendFactor != stage.BlendFactorStandard {
		occlusion = stage.Rect{}
	} else if !occlusion.IsZero() && s.ClipStack.HasClips() {
		top := s.ClipStack.Top()
		if top.Simple {
			occlusion = occlusion.Intersect(top.Bounds)
		} else {
			occlusion = stage.Rect{}
		}
	}

	// Then project the clipped results about the cull-rect center.
	// Flat content skips the projection entirely. The pre-clip
	// rectangle stays raw: unclipped and unprojected.
	if depth > depthEpsilon {
		w := s.ComputeOneOverW(depth)
		c := s.WorldCullRectangle.Center()
		clipped = projectRect(clipped, w, c)
		if !occlusion.IsZero() {
			occlusion = projectRect(occlusion, w, c)
		}
	}

	if !clipped.Intersects(s.WorldCullRectangle) {
		return
	}

	// Amend the feature set from the color transform, and floor it so
	// every record requires at least the baseline capability.
	if cxWorld.HasAdd() {
		feature |= stage.FeatureColorAdd
	}
	if cxWorld.BlendFactor != stage.BlendFactorStandard {
		feature |= stage.FeatureExtendedBlend
	}
	if feature == stage.FeatureNone {
		feature = stage.FeatureColorMultiply
	}

	rec := s.Stream.IssuePose()
	rec.Transform = worldTransform
	rec.ColorTransform = cxWorld
	rec.WorldRect = clipped
	rec.WorldRectPreClip = preClip
	rec.WorldOcclusion = occlusion
	rec.Texture = ref
	rec.Renderable = r
	rec.Depth3D = depth
	rec.Feature = feature
	rec.ClipIndex = s.Stream.ClipStackTop()
	rec.SubInstance = subInstance
}

// projectRect scales r about c by the perspective factor w.
func projectRect(r stage.Rect, w float64, c stage.Point) stage.Rect {
	return stage.RectLTRB(
		(r.Left-c.X)*w+c.X,
		(r.Top-c.Y)*w+c.Y,
		(r.Right-c.X)*w+c.X,
		(r.Bottom-c.Y)*w+c.Y,
	)
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// ResolveTextureReference resolves id for r's draw covering worldRect
// at the given render threshold. Inside a shadow bracket the threshold
// is scaled down and non-casting renderables are culled outright.
// Off-screen draws are not resolved; when prefetch is set a load is
// started for them instead, so content scrolling into view is warm.
//
// canPack marks sub-images small enough to live in the shared atlas.
func (p *Poser) ResolveTextureReference(
	r stage.Renderable,
	worldRect stage.Rect,
	threshold float64,
	id stage.BitmapID,
	canPack bool,
	prefetch bool,
) (stage.TextureReference, ResolveResult) {
	s := p.state
	if s.InPlanarShadowRender > 0 {
		if r != nil && !r.CastsShadow() {
			return stage.TextureReference{}, ResolveCulled
		}
		threshold *= s.Stage3D.Shadow.ResolutionScale
	}
	if !worldRect.Intersects(s.WorldCullRectangle) {
		if prefetch && s.Cache != nil && s.Cache.Prefetch(threshold, id) {
			return stage.TextureReference{}, ResolveCulledPrefetched
		}
		return stage.TextureReference{}, ResolveCulled
	}
	if s.Cache == nil {
		return stage.TextureReference{}, ResolveNotReady
	}
	ref, ok := s.Cache.ResolveTextureReference(threshold, id, canPack)
	if !ok {
		return stage.TextureReference{}, ResolveNotReady
	}
	return ref, ResolveSuccess
}

// GetRenderThreshold returns the scale-space metric used for
// resolution tier selection: the on-screen pixel extent of a shape
// with the given local render dimensions under worldTransform,
// adjusted for the current perspective projection.
func (p *Poser) GetRenderThreshold(localWidth, localHeight float64, worldTransform stage.Matrix) float64 {
	s := p.state
	scaleX := math.Hypot(worldTransform.A, worldTransform.D)
	scaleY := math.Hypot(worldTransform.B, worldTransform.E)
	screenW := localWidth * scaleX * s.WorldWidthToScreenWidth
	screenH := localHeight * scaleY * s.WorldHeightToScreenHeight
	return math.Max(screenW, screenH) * s.ComputeCurrentOneOverW()
}

// ---------------------------------------------------------------------------
// Depth
// ---------------------------------------------------------------------------

// ReplaceDepth3D sets the raw depth accumulator and returns its
// previous value, so a subtree can pose at an explicit depth and the
// caller can restore the inherited one afterwards.
func (p *Poser) ReplaceDepth3D(depth float64) float64 {
	old := p.state.RawDepth3D
	p.state.RawDepth3D = depth
	return old
}

// PushDepth3D accumulates delta onto the raw depth for a subtree and,
// when ignoreProjection is set, also opens an ignore-projection
// bracket. Callers close with PopDepth3D carrying the same arguments.
func (p *Poser) PushDepth3D(delta float64, ignoreProjection bool) {
	p.state.RawDepth3D += delta
	if ignoreProjection {
		p.BeginIgnoreDepthProjection()
	}
}

// PopDepth3D undoes the matching PushDepth3D.
func (p *Poser) PopDepth3D(delta float64, ignoreProjection bool) {
	p.state.RawDepth3D -= delta
	if ignoreProjection {
		p.EndIgnoreDepthProjection()
	}
}

// InverseDepthProject converts a projected world point back to
// unprojected world space at the current effective depth. Used for
// hit testing against posed content.
func (p *Poser) InverseDepthProject(x, y float64) stage.Point {
	return p.state.InverseProject(stage.Point{X: x, Y: y})
}

// BeginIgnoreDepthProjection opens a bracket in which the effective
// depth is forced to 0. Brackets nest.
func (p *Poser) BeginIgnoreDepthProjection() {
	p.state.IgnoreDepthProjection++
}

// EndIgnoreDepthProjection closes an ignore-projection bracket.
func (p *Poser) EndIgnoreDepthProjection() {
	if p.state.IgnoreDepthProjection == 0 {
		stage.Logger().Warn("render: unbalanced EndIgnoreDepthProjection")
		return
	}
	p.state.IgnoreDepthProjection--
}

// ---------------------------------------------------------------------------
// Brackets
// ---------------------------------------------------------------------------

// BeginPlanarShadows opens a planar-shadow bracket: until the matching
// end, only shadow-casting renderables pose, and their bounds are
// projected onto their shadow planes. Brackets nest; markers are
// emitted only for the outermost bracket.
func (p *Poser) BeginPlanarShadows() {
	if p.state.InPlanarShadowRender == 0 {
		p.state.Stream.IssueBeginPlanarShadows()
	}
	p.state.InPlanarShadowRender++
}

// EndPlanarShadows closes a planar-shadow bracket.
func (p *Poser) EndPlanarShadows() {
	s := p.state
	if s.InPlanarShadowRender == 0 {
		stage.Logger().Warn("render: unbalanced EndPlanarShadows")
		return
	}
	s.InPlanarShadowRender--
	if s.InPlanarShadowRender == 0 {
		s.Stream.IssueEndPlanarShadows()
	}
}

// BeginDeferDraw redirects subsequent commands into the deferred
// buffer so a subtree can draw above content posed after it.
func (p *Poser) BeginDeferDraw() {
	p.state.InDeferredDrawingRender++
	p.state.Stream.BeginDeferDraw()
}

// EndDeferDraw closes one deferred-draw bracket.
func (p *Poser) EndDeferDraw() {
	if p.state.InDeferredDrawingRender == 0 {
		stage.Logger().Warn("render: unbalanced EndDeferDraw")
		return
	}
	p.state.InDeferredDrawingRender--
	p.state.Stream.EndDeferDraw()
}

// FlushDeferredDraw replays the deferred buffer into the primary
// stream at the current position.
func (p *Poser) FlushDeferredDraw() {
	p.state.Stream.FlushDeferred()
}

// PushClip promotes the clip stack's pending geometry to a new clip
// level and opens it on the stream. It returns false when no usable
// geometry was accumulated; the caller must skip the matching PopClip.
func (p *Poser) PushClip() bool {
	if !p.state.ClipStack.Push() {
		return false
	}
	p.state.Stream.PushClip(p.state.ClipStack)
	return true
}

// PopClip closes the innermost clip level.
func (p *Poser) PopClip() {
	p.state.ClipStack.Pop()
	p.state.Stream.PopClip()
}

// BeginScissorClip opens a hardware scissor rectangle. Nested scissor
// rectangles intersect with their parent, so the effective scissor
// only ever shrinks.
func (p *Poser) BeginScissorClip(r stage.Rect) {
	if n := len(p.scissorStack); n > 0 {
		r = r.Intersect(p.scissorStack[n-1])
	}
	p.scissorStack = append(p.scissorStack, r)
	p.state.Stream.IssueBeginScissorClip(r)
}

// EndScissorClip closes the innermost scissor rectangle, restoring the
// enclosing one (or disabling scissoring).
func (p *Poser) EndScissorClip() {
	n := len(p.scissorStack)
	if n == 0 {
		stage.Logger().Warn("render: unbalanced EndScissorClip")
		return
	}
	p.scissorStack = p.scissorStack[:n-1]
	var restore stage.Rect
	if n > 1 {
		restore = p.scissorStack[n-2]
	}
	p.state.Stream.IssueEndScissorClip(restore)
}

// IssueCustomDraw records a custom-draw command in stream order.
func (p *Poser) IssueCustomDraw(id uint16) {
	p.state.Stream.IssueCustomDraw(id)
}
