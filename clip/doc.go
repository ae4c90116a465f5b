// Package clip accumulates clip shapes for the render pipeline.
//
// Scene-graph nodes add world-transformed rectangles or convex hulls
// to a Stack, then push the accumulated shape to begin clipping their
// children. The stack tracks, per level, the intersection bounds of
// everything pushed so far and whether that intersection is still a
// simple axis-aligned rectangle. Simple clips can be applied to cull
// rectangles analytically; non-simple clips are applied only at mesh
// build time by the drawer, so cull rectangles conservatively skip them.
package clip
