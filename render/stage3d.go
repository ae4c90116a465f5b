// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/stage"

// ShadowSettings controls planar shadow projection: how content above
// the shadow plane is flattened onto it.
type ShadowSettings struct {
	// ShearX is the horizontal offset applied per unit of height above
	// the shadow plane, giving shadows a directional slant.
	ShearX float64

	// SquashY is the vertical flattening factor: the height above the
	// plane is compressed by this factor in the projected shadow.
	SquashY float64

	// PlaneOffset shifts the shadow plane relative to the renderable's
	// reported shadow plane position.
	PlaneOffset float64

	// ResolutionScale scales the render threshold used to select a
	// source resolution tier for shadow draws. Shadows are blurred and
	// tinted, so a lower tier is usually acceptable.
	ResolutionScale float64

	// Alpha is the opacity applied to shadow draws by the drawer.
	Alpha float64
}

// ComputePlaneY returns the world Y of the shadow plane for a
// renderable whose shadow projects around pos.
func (s *ShadowSettings) ComputePlaneY(pos stage.Point) float64 {
	return pos.Y + s.PlaneOffset
}

// Project flattens a world point onto the shadow plane at planeY: the
// vertical distance to the plane becomes a shear along X and a squash
// along Y.
func (s *ShadowSettings) Project(planeY float64, p stage.Point) stage.Point {
	h := planeY - p.Y
	return stage.Point{
		X: p.X + s.ShearX*h,
		Y: planeY - s.SquashY*h,
	}
}

// ProjectRect projects the four corners of a world rectangle onto the
// shadow plane and returns their bounding rectangle.
func (s *ShadowSettings) ProjectRect(planeY float64, r stage.Rect) stage.Rect {
	out := stage.InvertedMaxRect()
	out = out.AbsorbPoint(s.Project(planeY, stage.Point{X: r.Left, Y: r.Top}))
	out = out.AbsorbPoint(s.Project(planeY, stage.Point{X: r.Left, Y: r.Bottom}))
	out = out.AbsorbPoint(s.Project(planeY, stage.Point{X: r.Right, Y: r.Top}))
	out = out.AbsorbPoint(s.Project(planeY, stage.Point{X: r.Right, Y: r.Bottom}))
	return out
}

// Stage3DSettings groups the pseudo-3D parameters shared by the poser
// and the drawer.
type Stage3DSettings struct {
	Shadow ShadowSettings
}

// DefaultStage3DSettings returns settings with a gentle down-left
// shadow slant and half-resolution shadow sampling.
func DefaultStage3DSettings() *Stage3DSettings {
	return &Stage3DSettings{
		Shadow: ShadowSettings{
			ShearX:          0.35,
			SquashY:         0.25,
			ResolutionScale: 0.5,
			Alpha:           0.4,
		},
	}
}
