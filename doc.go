// Package stage provides a retained-mode 2D vector-graphics render
// pipeline: it flattens a scene graph of posable nodes into an
// optimized, GPU-submittable draw stream once per frame, and manages a
// dynamic texture atlas cache with LRU eviction.
//
// # Architecture
//
// The pipeline runs three phases per frame, all on the render thread:
//
//  1. Posing: render.Poser walks the scene graph and appends flat
//     command records to a render.CommandStream, tracking clip,
//     planar-shadow, and depth-projection state as it goes.
//  2. Optimization: render.BatchOptimizer reorders independent pose
//     records so that consecutive records share texture and feature
//     identity, maximizing GPU batch sizes without changing the
//     composited result.
//  3. Drawing: an external render.Drawer consumes the stream, binds
//     GPU resources, and issues hardware draw calls. The drawer is
//     out of scope for this module; only its contract is defined.
//
// Texture resolution goes through cache.Cache, which maps a source
// image identity to a renderable texture reference, transparently
// packing small images into a shared atlas and evicting under memory
// pressure.
//
// This root package holds the shared value types: rectangles, affine
// transforms, color transforms, feature bitsets, and the
// texture/renderable contracts the pipeline stages exchange.
//
// # Thread Safety
//
// The pipeline is single-threaded by design. All posing, optimization,
// and cache resolution for one frame execute to completion on the
// render thread; background bitmap loading is delegated to an external
// loader and observed only by polling.
package stage
