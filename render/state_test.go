// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"testing"

	"github.com/gogpu/stage"
)

func TestComputeDepth3D(t *testing.T) {
	s := NewState(StateSettings{})
	s.Stage3DTopY = 0
	s.Stage3DBottomY = 100

	tests := []struct {
		name string
		y    float64
		want float64
	}{
		{"top", 0, 0},
		{"bottom", 100, 1},
		{"middle", 50, 0.5},
		{"above top clamps", -40, 0},
		{"below bottom clamps", 250, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ComputeDepth3D(tt.y); got != tt.want {
				t.Errorf("ComputeDepth3D(%v) = %v, want %v", tt.y, got, tt.want)
			}
		})
	}
}

func TestComputeDepth3DDegenerateRange(t *testing.T) {
	s := NewState(StateSettings{})
	s.Stage3DTopY = 50
	s.Stage3DBottomY = 50

	for _, y := range []float64{0, 50, 100} {
		got := s.ComputeDepth3D(y)
		if math.IsNaN(got) {
			t.Fatalf("ComputeDepth3D(%v) = NaN with empty range", y)
		}
		if got != 0 && got != 1 {
			t.Errorf("ComputeDepth3D(%v) = %v, want a clamp bound", y, got)
		}
	}
}

func TestPerspectiveFactorClamp(t *testing.T) {
	s := NewState(StateSettings{PerspectiveFactor: 0.5})

	if got := s.PerspectiveFactor(); got != 0.5 {
		t.Errorf("PerspectiveFactor() = %v, want 0.5", got)
	}

	s.PerspectiveFactorAdjustment = 10
	if got := s.PerspectiveFactor(); got != maxPerspectiveFactor {
		t.Errorf("PerspectiveFactor() = %v, want %v", got, maxPerspectiveFactor)
	}

	s.PerspectiveFactorAdjustment = -10
	if got := s.PerspectiveFactor(); got != 0 {
		t.Errorf("PerspectiveFactor() = %v, want 0", got)
	}
}

func TestComputeOneOverW(t *testing.T) {
	s := NewState(StateSettings{PerspectiveFactor: 0.5})

	if got := s.ComputeOneOverW(0); got != 1 {
		t.Errorf("ComputeOneOverW(0) = %v, want 1", got)
	}
	if got, want := s.ComputeOneOverW(1), 2.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("ComputeOneOverW(1) = %v, want %v", got, want)
	}

	// The divisor clamps even when the factor would push it past zero.
	s.SetBasePerspectiveFactor(5)
	if got, want := s.ComputeOneOverW(1), 1/minOneMinusW; math.Abs(got-want) > 1e-6 {
		t.Errorf("clamped ComputeOneOverW(1) = %v, want %v", got, want)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	s := NewState(StateSettings{PerspectiveFactor: 0.6})
	s.WorldCullRectangle = stage.RectXYWH(0, 0, 800, 600)
	s.RawDepth3D = 0.4

	p := stage.Point{X: 120, Y: 450}
	got := s.InverseProject(s.Project(p))
	if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
		t.Errorf("InverseProject(Project(%+v)) = %+v", p, got)
	}

	// Projection scales away from the cull-rect center.
	center := s.WorldCullRectangle.Center()
	proj := s.Project(p)
	if math.Abs(proj.X-center.X) <= math.Abs(p.X-center.X) {
		t.Error("projection should move points away from the center")
	}
}

func TestProjectAtZeroDepth(t *testing.T) {
	s := NewState(StateSettings{PerspectiveFactor: 0.6})
	s.WorldCullRectangle = stage.RectXYWH(0, 0, 800, 600)

	p := stage.Point{X: 10, Y: 20}
	if got := s.Project(p); got != p {
		t.Errorf("Project at depth 0 = %+v, want %+v", got, p)
	}
}

func TestModifiedDepth3D(t *testing.T) {
	s := NewState(StateSettings{})
	s.RawDepth3D = 0.7

	if got := s.ModifiedDepth3D(); got != 0.7 {
		t.Errorf("ModifiedDepth3D() = %v, want 0.7", got)
	}

	s.IgnoreDepthProjection++
	if got := s.ModifiedDepth3D(); got != 0 {
		t.Errorf("ModifiedDepth3D() with ignore bracket = %v, want 0", got)
	}
}

func TestEndPhase(t *testing.T) {
	s := NewState(StateSettings{})
	s.InPlanarShadowRender = 2
	s.InDeferredDrawingRender = 1
	s.IgnoreDepthProjection = 3
	s.RawDepth3D = 0.5
	s.ClipStack.AddRectangle(stage.Identity(), stage.RectXYWH(0, 0, 10, 10))
	s.ClipStack.Push()

	s.EndPhase()

	if s.InPlanarShadowRender != 0 || s.InDeferredDrawingRender != 0 || s.IgnoreDepthProjection != 0 {
		t.Error("EndPhase should zero the nesting counters")
	}
	if s.RawDepth3D != 0 {
		t.Errorf("RawDepth3D after EndPhase = %v, want 0", s.RawDepth3D)
	}
	if s.ClipStack.HasClips() {
		t.Error("EndPhase should reset the clip stack")
	}
}
