// Package cache resolves source-image identities to renderable texture
// references, packs small sub-images into a shared atlas, and bounds
// texture memory with LRU eviction.
//
// Resolution is asynchronous: the first resolve of an identity starts
// a load through the external Loader and reports not-ready; subsequent
// frames poll until the bitmap arrives. Loaded entries sit on a global
// recency list; entries whose pixels live in the shared atlas
// additionally sit on a packed recency list that drives atlas
// eviction. Eviction is two-tier: exceeding the soft memory threshold
// purges entries idle for a configurable frame window, exceeding the
// hard threshold purges everything not used in the current frame.
//
// The cache is owned by the render thread and is not safe for
// concurrent use.
package cache
