// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/stage"
)

// addPose issues a pose command with just enough state for batching.
func addPose(s *CommandStream, tex stage.Texture, rect stage.Rect) {
	rec := s.IssuePose()
	rec.Texture = stage.TextureReference{Texture: tex}
	rec.Feature = stage.FeatureColorMultiply
	rec.WorldRect = rect
	rec.WorldRectPreClip = rect
}

func posePayloads(cmds []Command) []uint16 {
	var out []uint16
	for _, c := range cmds {
		if c.Kind == CommandPose {
			out = append(out, c.Payload)
		}
	}
	return out
}

func checkOrder(t *testing.T, got []uint16, want []uint16) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("pose order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pose order = %v, want %v", got, want)
		}
	}
}

func TestOptimizeMergesNonOverlappingSameMaterial(t *testing.T) {
	texA := &stubTexture{}
	texB := &stubTexture{}

	var s CommandStream
	addPose(&s, texA, stage.RectXYWH(0, 0, 10, 10))
	addPose(&s, texB, stage.RectXYWH(100, 0, 10, 10))
	addPose(&s, texA, stage.RectXYWH(200, 0, 10, 10))

	NewBatchOptimizer().Optimize(&s)

	// The second texA draw moves up next to the first; nothing
	// overlapped, so reordering is safe.
	checkOrder(t, posePayloads(s.Commands()), []uint16{0, 2, 1})
}

func TestOptimizePreservesOverlappingOrder(t *testing.T) {
	texA := &stubTexture{}
	texB := &stubTexture{}

	var s CommandStream
	addPose(&s, texA, stage.RectXYWH(0, 0, 50, 50))
	addPose(&s, texB, stage.RectXYWH(25, 25, 50, 50))
	addPose(&s, texA, stage.RectXYWH(30, 30, 50, 50))

	NewBatchOptimizer().Optimize(&s)

	// Every draw overlaps its predecessor: order must be untouched.
	checkOrder(t, posePayloads(s.Commands()), []uint16{0, 1, 2})
}

func TestOptimizeFencesOnUnclippedBounds(t *testing.T) {
	texA := &stubTexture{}
	texB := &stubTexture{}

	// The first two draws have disjoint clipped rectangles but
	// overlapping raw footprints: a draw may not reorder past content
	// its unclipped shape composites against.
	var s CommandStream
	rec := s.IssuePose()
	rec.Texture = stage.TextureReference{Texture: texA}
	rec.Feature = stage.FeatureColorMultiply
	rec.WorldRect = stage.RectXYWH(0, 0, 10, 10)
	rec.WorldRectPreClip = stage.RectXYWH(0, 0, 80, 80)

	rec = s.IssuePose()
	rec.Texture = stage.TextureReference{Texture: texB}
	rec.Feature = stage.FeatureColorMultiply
	rec.WorldRect = stage.RectXYWH(60, 60, 10, 10)
	rec.WorldRectPreClip = stage.RectXYWH(60, 60, 10, 10)

	addPose(&s, texA, stage.RectXYWH(200, 0, 10, 10))

	NewBatchOptimizer().Optimize(&s)

	checkOrder(t, posePayloads(s.Commands()), []uint16{0, 1, 2})
}

func TestOptimizeBarrierFlushes(t *testing.T) {
	tex := &stubTexture{}

	var s CommandStream
	addPose(&s, tex, stage.RectXYWH(0, 0, 10, 10))
	s.IssueBeginScissorClip(stage.RectXYWH(0, 0, 100, 100))
	addPose(&s, tex, stage.RectXYWH(100, 0, 10, 10))

	NewBatchOptimizer().Optimize(&s)

	cmds := s.Commands()
	if len(cmds) != 3 {
		t.Fatalf("command count = %d, want 3", len(cmds))
	}
	if cmds[0].Kind != CommandPose || cmds[1].Kind != CommandBeginScissorClip || cmds[2].Kind != CommandPose {
		t.Errorf("commands do not keep the barrier in place: %v %v %v",
			cmds[0].Kind, cmds[1].Kind, cmds[2].Kind)
	}
}

func TestOptimizeLanePoolEviction(t *testing.T) {
	texA := &stubTexture{}
	texB := &stubTexture{}
	texC := &stubTexture{}

	var s CommandStream
	addPose(&s, texA, stage.RectXYWH(0, 0, 10, 10))   // 0
	addPose(&s, texB, stage.RectXYWH(100, 0, 10, 10)) // 1
	addPose(&s, texA, stage.RectXYWH(200, 0, 10, 10)) // 2
	addPose(&s, texC, stage.RectXYWH(300, 0, 10, 10)) // 3

	NewBatchOptimizer(WithMaxLanes(2)).Optimize(&s)

	// texC needs a lane while both are occupied; texB's lane is the
	// least recently extended and flushes first.
	checkOrder(t, posePayloads(s.Commands()), []uint16{1, 0, 2, 3})
}

func TestOptimizeIdempotentScratchReuse(t *testing.T) {
	tex := &stubTexture{}
	opt := NewBatchOptimizer()

	for frame := 0; frame < 3; frame++ {
		var s CommandStream
		addPose(&s, tex, stage.RectXYWH(0, 0, 10, 10))
		addPose(&s, tex, stage.RectXYWH(100, 0, 10, 10))
		opt.Optimize(&s)
		checkOrder(t, posePayloads(s.Commands()), []uint16{0, 1})
	}
}

func TestOptimizeDifferentFeaturesDoNotMerge(t *testing.T) {
	tex := &stubTexture{}

	var s CommandStream
	rec := s.IssuePose()
	rec.Texture = stage.TextureReference{Texture: tex}
	rec.Feature = stage.FeatureColorMultiply
	rec.WorldRect = stage.RectXYWH(0, 0, 10, 10)

	rec = s.IssuePose()
	rec.Texture = stage.TextureReference{Texture: tex}
	rec.Feature = stage.FeatureColorMultiply | stage.FeatureColorAdd
	rec.WorldRect = stage.RectXYWH(5, 5, 10, 10)

	NewBatchOptimizer().Optimize(&s)

	// Overlapping draws with different features keep their order.
	checkOrder(t, posePayloads(s.Commands()), []uint16{0, 1})
}
