// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/cache"
	"github.com/gogpu/stage/clip"
)

const (
	// maxPerspectiveFactor bounds the effective perspective factor so
	// that 1 - depth*factor stays positive for any depth in [0, 1].
	maxPerspectiveFactor = 0.99

	// depthEpsilon is the depth below which projection is skipped
	// entirely; flat content takes the cheap unprojected path.
	depthEpsilon = 1e-4

	// minOneMinusW is the clamp floor for the perspective divisor.
	minOneMinusW = 1e-4

	defaultMaxIndexCountBatch  = 3 * 8192
	defaultMaxVertexCountBatch = 2 * 8192
)

// StateSettings configures a State.
type StateSettings struct {
	// Cache resolves source-image identities to texture references.
	Cache *cache.Cache

	// ClipStack accumulates clip shapes during posing. A fresh stack
	// is created when nil.
	ClipStack *clip.Stack

	// Stage3D holds planar shadow and depth-projection parameters.
	// Defaults are used when nil.
	Stage3D *Stage3DSettings

	// PerspectiveFactor is the base perspective strength on [0, 1).
	PerspectiveFactor float64

	// MaxIndexCountBatch and MaxVertexCountBatch bound a single GPU
	// batch; the drawer flushes when either would overflow.
	MaxIndexCountBatch  int
	MaxVertexCountBatch int
}

// State is the shared per-frame render state. It is constructed once
// per renderer and persists across frames; EndPhase resets only the
// transient posing sub-state between the posing and drawing phases.
//
// State is owned by the render thread and is not safe for concurrent
// use.
type State struct {
	// WorldCullRectangle is the world-space rectangle currently
	// visible and considered for rendering.
	WorldCullRectangle stage.Rect

	// WorldWidthToScreenWidth and WorldHeightToScreenHeight convert
	// world units to screen pixels, used for render-threshold metrics.
	WorldWidthToScreenWidth   float64
	WorldHeightToScreenHeight float64

	// ViewProjectionScale and ViewProjectionShift are the 2+2
	// view-projection coefficients applied by the drawer.
	ViewProjectionScale stage.Point
	ViewProjectionShift stage.Point

	// PerspectiveFactorAdjustment is a runtime delta applied on top of
	// the configured base perspective factor.
	PerspectiveFactorAdjustment float64

	// Stage3DTopY and Stage3DBottomY bound the Y range mapped onto
	// depth [0, 1] by ComputeDepth3D.
	Stage3DTopY    float64
	Stage3DBottomY float64

	// RawDepth3D is the accumulated additive depth term of the
	// current posing subtree.
	RawDepth3D float64

	// IgnoreDepthProjection, while non-zero, forces the effective
	// depth to 0 so a subtree can opt out of inherited perspective.
	IgnoreDepthProjection int

	// InPlanarShadowRender counts planar-shadow bracket nesting.
	InPlanarShadowRender int

	// InDeferredDrawingRender counts deferred-draw bracket nesting.
	InDeferredDrawingRender int

	// Stream is the frame's command stream.
	Stream CommandStream

	// ClipStack accumulates clip shapes during posing.
	ClipStack *clip.Stack

	// Cache resolves source-image identities to texture references.
	Cache *cache.Cache

	// Stage3D holds planar shadow and depth-projection parameters.
	Stage3D *Stage3DSettings

	// MaxIndexCountBatch and MaxVertexCountBatch bound one GPU batch.
	MaxIndexCountBatch  int
	MaxVertexCountBatch int

	perspectiveFactorBase float64
}

// NewState creates a State from settings, applying defaults for any
// collaborator left unset.
func NewState(settings StateSettings) *State {
	s := &State{
		ClipStack:             settings.ClipStack,
		Cache:                 settings.Cache,
		Stage3D:               settings.Stage3D,
		perspectiveFactorBase: settings.PerspectiveFactor,
		MaxIndexCountBatch:    settings.MaxIndexCountBatch,
		MaxVertexCountBatch:   settings.MaxVertexCountBatch,
	}
	if s.ClipStack == nil {
		s.ClipStack = clip.NewStack()
	}
	if s.Stage3D == nil {
		s.Stage3D = DefaultStage3DSettings()
	}
	if s.MaxIndexCountBatch <= 0 {
		s.MaxIndexCountBatch = defaultMaxIndexCountBatch
	}
	if s.MaxVertexCountBatch <= 0 {
		s.MaxVertexCountBatch = defaultMaxVertexCountBatch
	}
	return s
}

// PerspectiveFactor returns the effective perspective factor: the base
// plus the runtime adjustment, clamped to [0, maxPerspectiveFactor].
func (s *State) PerspectiveFactor() float64 {
	f := s.perspectiveFactorBase + s.PerspectiveFactorAdjustment
	return math.Min(math.Max(f, 0), maxPerspectiveFactor)
}

// SetBasePerspectiveFactor updates the configured base factor.
func (s *State) SetBasePerspectiveFactor(f float64) {
	s.perspectiveFactorBase = f
}

// ModifiedDepth3D returns the effective depth of the current posing
// subtree: the raw accumulator, or 0 while an ignore-projection
// bracket is open.
func (s *State) ModifiedDepth3D() float64 {
	if s.IgnoreDepthProjection != 0 {
		return 0
	}
	return s.RawDepth3D
}

// ComputeDepth3D maps a world Y coordinate linearly onto [0, 1] using
// the configured stage top/bottom Y, clamped. When the configured
// range is empty the result is one of the clamp bounds, never NaN.
func (s *State) ComputeDepth3D(y float64) float64 {
	if s.Stage3DBottomY == s.Stage3DTopY {
		if y <= s.Stage3DTopY {
			return 0
		}
		return 1
	}
	d := (y - s.Stage3DTopY) / (s.Stage3DBottomY - s.Stage3DTopY)
	return math.Min(math.Max(d, 0), 1)
}

// ComputeOneOverW returns the perspective divisor 1/(1 - depth*factor)
// with the denominator clamped to [minOneMinusW, 1].
func (s *State) ComputeOneOverW(depth float64) float64 {
	d := 1 - depth*s.PerspectiveFactor()
	return 1 / math.Min(math.Max(d, minOneMinusW), 1)
}

// ComputeCurrentOneOverW returns the perspective divisor for the
// current effective depth.
func (s *State) ComputeCurrentOneOverW() float64 {
	return s.ComputeOneOverW(s.ModifiedDepth3D())
}

// Project converts a point from unprojected world space into
// pseudo-3D projected space, scaling about the cull-rect center by the
// current perspective divisor.
func (s *State) Project(p stage.Point) stage.Point {
	w := s.ComputeCurrentOneOverW()
	c := s.WorldCullRectangle.Center()
	return p.Sub(c).Scale(w).Add(c)
}

// InverseProject is the inverse of Project for the current depth.
func (s *State) InverseProject(p stage.Point) stage.Point {
	w := s.ComputeCurrentOneOverW()
	c := s.WorldCullRectangle.Center()
	return p.Sub(c).Scale(1 / w).Add(c)
}

// EndPhase transitions from the posing phase to the drawing phase. It
// resets the shadow, deferred-draw, and ignore-projection nesting
// counters, the raw depth accumulator, and the clip stack. Cull
// rectangle, view-projection, and cache ownership persist.
//
// Each nesting counter must have returned to zero by phase end; an
// unbalanced counter indicates an unpaired Begin/End or Push/Pop in
// the scene graph and is logged before being cleared.
func (s *State) EndPhase() {
	if s.InPlanarShadowRender != 0 || s.InDeferredDrawingRender != 0 || s.IgnoreDepthProjection != 0 {
		stage.Logger().Warn("render: unbalanced phase counters at EndPhase",
			"planarShadow", s.InPlanarShadowRender,
			"deferredDraw", s.InDeferredDrawingRender,
			"ignoreProjection", s.IgnoreDepthProjection)
	}
	s.InPlanarShadowRender = 0
	s.InDeferredDrawingRender = 0
	s.IgnoreDepthProjection = 0
	s.RawDepth3D = 0
	s.ClipStack.Reset()
}
