// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns a posed scene graph into an optimized draw
// stream.
//
// The pipeline for one frame:
//
//	poser.Begin(state)
//	// scene graph nodes call Pose, clip and depth stack operations
//	poser.End()
//	optimizer.Optimize(&state.Stream)
//	drawer.Process(&state.Stream, state)   // external
//	state.Stream.Reset()
//
// State is the shared per-frame render state: the active cull
// rectangle, view-projection coefficients, perspective factor,
// depth-projection counters, the clip stack, and the texture cache
// handle. It is owned by the frame and shared by reference across the
// Poser, the BatchOptimizer, and the external drawer.
//
// CommandStream is the flat intermediate representation: a sequence of
// small tagged commands plus side tables of heavier per-kind payload.
// It decouples "what to draw" (produced once per frame by the Poser)
// from "how to draw it" (consumed, possibly after reordering, by the
// drawer).
//
// BatchOptimizer reorders independent pose records to maximize
// consecutive same-material runs without changing the composited
// result.
//
// The GPU submission backend is out of scope; Drawer defines the
// contract it must satisfy.
package render
