// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/stage"
)

const defaultMaxLanes = 8

// laneKey is the material identity a pose record batches under: draws
// with the same key can share one GPU batch.
type laneKey struct {
	texture stage.Texture
	feature stage.Feature
}

// lane accumulates commands of one material identity, plus the union
// of their raw (unclipped, unprojected) bounds for overlap conflict
// tests. Clipped bounds would under-report overlap for draws whose
// clip shapes differ, so conflicts fence on the full footprint.
type lane struct {
	key    laneKey
	cmds   []Command
	bounds stage.Rect

	// extended is the sequence number of the last append, used as the
	// deterministic eviction tie-break when the pool is full.
	extended int
}

// BatchOptimizerOption configures a BatchOptimizer.
type BatchOptimizerOption func(*BatchOptimizer)

// WithMaxLanes bounds the number of concurrently open lanes.
func WithMaxLanes(n int) BatchOptimizerOption {
	return func(b *BatchOptimizer) {
		if n > 0 {
			b.maxLanes = n
		}
	}
}

// BatchOptimizer reorders a frame's pose commands to maximize
// consecutive same-material runs without changing the composited
// result.
//
// Pose commands gather into a bounded pool of lanes keyed by (texture,
// feature). A pose record may move earlier in the stream only past
// draws it does not overlap: before a record extends its lane, every
// other lane whose accumulated bounds intersect the record's rectangle
// is flushed, so overlapping draws of different materials keep their
// relative order. Non-pose commands are reorder barriers: they flush
// every open lane and pass through in place.
//
// When all lanes are occupied and a record needs a new one, the least
// recently extended lane is flushed; the choice is deterministic so a
// given input stream always optimizes identically.
//
// The optimizer retains scratch buffers across frames; reuse one
// instance per stream.
type BatchOptimizer struct {
	lanes    []*lane
	free     []*lane
	out      []Command
	maxLanes int
	seq      int
}

// NewBatchOptimizer returns an optimizer with the default lane pool.
func NewBatchOptimizer(opts ...BatchOptimizerOption) *BatchOptimizer {
	b := &BatchOptimizer{maxLanes: defaultMaxLanes}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Optimize reorders the stream's primary buffer in place. It must run
// after posing ends and before the drawer consumes the stream.
func (b *BatchOptimizer) Optimize(stream *CommandStream) {
	in := stream.Commands()
	b.out = b.out[:0]
	b.seq = 0

	for _, cmd := range in {
		if cmd.Kind != CommandPose {
			// Barrier: state changes and markers fence reordering.
			b.flushAll()
			b.out = append(b.out, cmd)
			continue
		}
		b.add(cmd, stream.Pose(cmd.Payload))
	}
	b.flushAll()

	// Install the reordered buffer and keep the old backing array as
	// next frame's scratch.
	b.out = stream.SwapPrimary(b.out)

	stage.Logger().Debug("render: batch optimize",
		"commands", len(in), "poses", stream.PoseCount())
}

func (b *BatchOptimizer) add(cmd Command, rec *PoseRecord) {
	key := laneKey{texture: rec.Texture.Texture, feature: rec.Feature}

	// Flush every other lane this record overlaps: the record may not
	// move past draws it composites against.
	for i := 0; i < len(b.lanes); {
		ln := b.lanes[i]
		if ln.key != key && ln.bounds.Intersects(rec.WorldRectPreClip) {
			b.flushLane(i)
			continue
		}
		i++
	}

	for _, ln := range b.lanes {
		if ln.key == key {
			ln.cmds = append(ln.cmds, cmd)
			ln.bounds = ln.bounds.Union(rec.WorldRectPreClip)
			b.seq++
			ln.extended = b.seq
			return
		}
	}

	if len(b.lanes) >= b.maxLanes {
		b.flushLane(b.oldestLane())
	}

	var ln *lane
	if n := len(b.free); n > 0 {
		ln = b.free[n-1]
		b.free = b.free[:n-1]
	} else {
		ln = &lane{}
	}
	b.seq++
	ln.key = key
	ln.cmds = append(ln.cmds[:0], cmd)
	ln.bounds = rec.WorldRectPreClip
	ln.extended = b.seq
	b.lanes = append(b.lanes, ln)
}

// oldestLane returns the index of the least recently extended lane.
func (b *BatchOptimizer) oldestLane() int {
	oldest := 0
	for i, ln := range b.lanes {
		if ln.extended < b.lanes[oldest].extended {
			oldest = i
		}
	}
	return oldest
}

// flushLane emits lane i's commands and returns it to the free pool.
func (b *BatchOptimizer) flushLane(i int) {
	ln := b.lanes[i]
	b.out = append(b.out, ln.cmds...)
	ln.cmds = ln.cmds[:0]
	ln.key = laneKey{}
	b.free = append(b.free, ln)
	b.lanes = append(b.lanes[:i], b.lanes[i+1:]...)
}

// flushAll emits every open lane. Lanes flush in the order their
// earliest surviving command was added, which is their order in the
// pool, so output is deterministic.
func (b *BatchOptimizer) flushAll() {
	for len(b.lanes) > 0 {
		b.flushLane(0)
	}
}
