package cache

import (
	"errors"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/stage"
)

// nameInfo tracks what is known about one bitmap name across tiers:
// the reconstructed full-resolution dimensions and which tiers have
// finished loading.
type nameInfo struct {
	baseWidth, baseHeight int
	loaded                [stage.NumTiers]bool
}

// Cache resolves bitmap and glyph identities to texture references,
// owns the shared atlas, and bounds texture memory.
type Cache struct {
	settings Settings
	loader   Loader
	packer   Packer

	slab      []entry
	freeSlots []entryID
	byBitmap  map[stage.BitmapID]entryID
	byGlyph   map[GlyphKey]entryID
	names     map[string]*nameInfo

	global     list
	packedList list

	atlas      *image.RGBA
	atlasDirty bool

	frame  uint32
	memory int64

	solid entryID
}

// New creates a Cache. A Loader is required; every other collaborator
// has a default.
func New(opts ...Option) (*Cache, error) {
	settings := defaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Loader == nil {
		return nil, errors.New("cache: a Loader is required")
	}
	if settings.Packer == nil {
		settings.Packer = NewShelfPacker(settings.AtlasWidth, settings.AtlasHeight)
	}

	c := &Cache{
		settings:   settings,
		loader:     settings.Loader,
		packer:     settings.Packer,
		byBitmap:   make(map[stage.BitmapID]entryID),
		byGlyph:    make(map[GlyphKey]entryID),
		names:      make(map[string]*nameInfo),
		global:     newList(func(e *entry) *links { return &e.globalLink }),
		packedList: newList(func(e *entry) *links { return &e.packedLink }),
		atlas:      image.NewRGBA(image.Rect(0, 0, settings.AtlasWidth, settings.AtlasHeight)),
		solid:      noEntry,
	}
	c.initSolidFill()
	return c, nil
}

// initSolidFill creates and packs the built-in white texture backing
// the zero BitmapID. It is pinned: no purge ever evicts it.
func (c *Cache) initSolidFill() {
	e := c.newEntry()
	ent := &c.slab[e]
	ent.tex = solidTexture{}
	ent.pinned = true
	ent.lastFrame = c.frame
	m, _ := ent.tex.Metrics()
	ent.memory, _ = ent.tex.MemoryUsage()
	c.memory += ent.memory
	c.global.insertHead(c.slab, e)
	c.solid = e

	if id, x, y, ok := c.packer.Pack(m.Width, m.Height); ok {
		draw.Copy(c.atlas, image.Pt(x, y), solidImage(), image.Rect(0, 0, m.Width, m.Height), draw.Src, nil)
		ent = &c.slab[e]
		ent.packed = true
		ent.node = id
		ent.packX, ent.packY, ent.packW, ent.packH = x, y, m.Width, m.Height
		c.packedList.insertHead(c.slab, e)
		c.atlasDirty = true
	}
}

// ---------------------------------------------------------------------------
// Frame lifecycle
// ---------------------------------------------------------------------------

// BeginFrame advances the frame counter, polls outstanding loads, and
// applies the memory thresholds: over the hard threshold everything
// idle for at least one frame is purged; over the soft threshold only
// entries idle for the soft window are.
func (c *Cache) BeginFrame() {
	c.frame++
	c.ProcessLoading()
	switch {
	case c.memory > c.settings.HardMemoryThreshold:
		stage.Logger().Warn("cache: hard memory threshold exceeded",
			"memory", c.memory, "threshold", c.settings.HardMemoryThreshold)
		c.PurgeTextures(1)
	case c.memory > c.settings.SoftMemoryThreshold:
		c.PurgeTextures(c.settings.SoftPurgeFrames)
	}
}

// Frame returns the current frame counter value.
func (c *Cache) Frame() uint32 { return c.frame }

// MemoryUsage returns the total accounted texture memory in bytes.
func (c *Cache) MemoryUsage() int64 { return c.memory }

// EntryCount returns the number of live cache entries.
func (c *Cache) EntryCount() int { return len(c.slab) - len(c.freeSlots) }

// ProcessLoading polls every loading entry and finalizes those whose
// bitmaps have arrived.
func (c *Cache) ProcessLoading() {
	for e := c.global.head; e != noEntry; e = c.slab[e].globalLink.next {
		if c.slab[e].loading {
			c.finalize(e)
		}
	}
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// ResolveTextureReference resolves id's name at the resolution tier
// selected by threshold. The zero identity resolves to the built-in
// solid fill. While the selected tier loads, the nearest loaded tier
// of the same name substitutes; with no tier loaded the resolve
// reports not ready.
//
// canPack marks the sub-image as eligible for the shared atlas.
func (c *Cache) ResolveTextureReference(threshold float64, id stage.BitmapID, canPack bool) (stage.TextureReference, bool) {
	if id.IsZero() {
		c.use(c.solid)
		return c.reference(c.solid), true
	}
	id = c.ResolveBitmapID(threshold, id.Name)

	e, ok := c.byBitmap[id]
	if !ok {
		e = c.loadBitmap(id)
	}
	if c.slab[e].loading {
		c.finalize(e)
	}
	if c.slab[e].loading {
		return c.fallback(id)
	}

	c.use(e)
	if canPack && !c.slab[e].packed {
		c.tryPack(e)
	}
	return c.reference(e), true
}

// ResolveGlyph resolves one rasterized glyph. Glyphs are always
// atlas-packed.
func (c *Cache) ResolveGlyph(key GlyphKey) (stage.TextureReference, bool) {
	e, ok := c.byGlyph[key]
	if !ok {
		e = c.newEntry()
		ent := &c.slab[e]
		ent.glyph = key
		ent.isGlyph = true
		ent.tex = c.loader.LoadGlyph(key)
		ent.loading = true
		ent.lastFrame = c.frame
		c.byGlyph[key] = e
		c.global.insertHead(c.slab, e)
	}
	if c.slab[e].loading {
		c.finalize(e)
	}
	if c.slab[e].loading {
		return stage.TextureReference{}, false
	}
	c.use(e)
	if !c.slab[e].packed {
		c.tryPack(e)
	}
	return c.reference(e), true
}

// Prefetch starts loading id's name at the tier selected by threshold
// without resolving it. It returns true only when a load was actually
// started.
func (c *Cache) Prefetch(threshold float64, id stage.BitmapID) bool {
	if id.IsZero() {
		return false
	}
	id = c.ResolveBitmapID(threshold, id.Name)
	if _, ok := c.byBitmap[id]; ok {
		return false
	}
	c.loadBitmap(id)
	return true
}

// ResolveBitmapID selects the resolution tier for name at the given
// render threshold: the smallest tier whose extent still covers the
// on-screen pixel size. Until the full-resolution dimensions are
// known, the smallest tier is requested so something cheap loads
// first.
func (c *Cache) ResolveBitmapID(threshold float64, name string) stage.BitmapID {
	if name == "" {
		return stage.BitmapID{}
	}
	info := c.names[name]
	if info == nil || info.baseWidth == 0 {
		return stage.BitmapID{Name: name, Tier: stage.TierLast}
	}
	extent := float64(max(info.baseWidth, info.baseHeight))
	tier := stage.Tier0
	for tier < stage.TierLast && extent/2 >= threshold {
		extent /= 2
		tier++
	}
	return stage.BitmapID{Name: name, Tier: tier}
}

// loadBitmap creates a loading entry for id.
func (c *Cache) loadBitmap(id stage.BitmapID) entryID {
	e := c.newEntry()
	ent := &c.slab[e]
	ent.bitmap = id
	ent.tex = c.loader.Load(id)
	ent.loading = true
	ent.lastFrame = c.frame
	c.byBitmap[id] = e
	c.global.insertHead(c.slab, e)
	return e
}

// fallback substitutes the nearest loaded tier of id's name while the
// desired tier loads.
func (c *Cache) fallback(id stage.BitmapID) (stage.TextureReference, bool) {
	info := c.names[id.Name]
	if info == nil {
		return stage.TextureReference{}, false
	}
	for d := 1; d < stage.NumTiers; d++ {
		for _, t := range [2]int{int(id.Tier) + d, int(id.Tier) - d} {
			if t < 0 || t >= stage.NumTiers || !info.loaded[t] {
				continue
			}
			e, ok := c.byBitmap[id.WithTier(stage.ResolutionTier(t))]
			if !ok || c.slab[e].loading {
				continue
			}
			c.use(e)
			return c.reference(e), true
		}
	}
	return stage.TextureReference{}, false
}

// finalize transitions a loading entry to loaded once its texture
// reports metrics, and records tier availability for name fallback.
func (c *Cache) finalize(e entryID) {
	ent := &c.slab[e]
	if ent.tex == nil || ent.tex.IsLoading() {
		return
	}
	m, ok := ent.tex.Metrics()
	if !ok {
		return
	}
	ent.loading = false
	if mem, ok := ent.tex.MemoryUsage(); ok {
		ent.memory = mem
		c.memory += mem
	}
	if !ent.isGlyph && !ent.bitmap.IsZero() {
		info := c.names[ent.bitmap.Name]
		if info == nil {
			info = &nameInfo{}
			c.names[ent.bitmap.Name] = info
		}
		info.loaded[ent.bitmap.Tier] = true
		// Reconstruct full-resolution dimensions from this tier.
		if w := m.Width << ent.bitmap.Tier; w > info.baseWidth {
			info.baseWidth = w
			info.baseHeight = m.Height << ent.bitmap.Tier
		}
	}
}

// use marks e used this frame and most recently used overall.
func (c *Cache) use(e entryID) {
	c.slab[e].lastFrame = c.frame
	c.global.moveToHead(c.slab, e)
	if c.slab[e].packed {
		c.packedList.moveToHead(c.slab, e)
	}
}

// ---------------------------------------------------------------------------
// Packing
// ---------------------------------------------------------------------------

// tryPack attempts to move e's pixels into the shared atlas. Failure
// is not an error: the entry keeps rendering from its standalone
// texture.
func (c *Cache) tryPack(e entryID) {
	ent := &c.slab[e]
	if !ent.tex.HasDimensions() {
		return
	}
	m, ok := ent.tex.Metrics()
	if !ok {
		return
	}
	if m.Width > c.settings.MaxPackableDimension || m.Height > c.settings.MaxPackableDimension {
		return
	}
	src, ok := c.loader.SubImage(ent.tex)
	if !ok {
		return
	}

	id, x, y, ok := c.packer.Pack(m.Width, m.Height)
	if !ok && c.MakeRoomInPacker(m.Width, m.Height) {
		id, x, y, ok = c.packer.Pack(m.Width, m.Height)
	}
	if !ok {
		stage.Logger().Debug("cache: atlas full, entry stays unpacked",
			"width", m.Width, "height", m.Height)
		return
	}

	draw.Copy(c.atlas, image.Pt(x, y), src, src.Bounds(), draw.Src, nil)
	c.atlasDirty = true
	ent = &c.slab[e]
	ent.packed = true
	ent.node = id
	ent.packX, ent.packY, ent.packW, ent.packH = x, y, m.Width, m.Height
	c.packedList.insertHead(c.slab, e)
}

// MakeRoomInPacker evicts packed entries, least recently used first,
// until roughly twice the requested area has been reclaimed or no
// eligible entry remains. Entries used within the purge-threshold
// window are never evicted: they may already be referenced by this
// frame's stream.
func (c *Cache) MakeRoomInPacker(width, height int) bool {
	need := 2 * width * height
	reclaimed := 0
	e := c.packedList.tail
	for e != noEntry && reclaimed < need {
		prev := c.slab[e].packedLink.prev
		ent := &c.slab[e]
		if !ent.pinned && c.frame-ent.lastFrame >= c.settings.PurgeThresholdFrames {
			reclaimed += ent.packW * ent.packH
			c.unpack(e)
		}
		e = prev
	}
	if reclaimed == 0 {
		return false
	}
	c.packer.CollectGarbage()
	return true
}

// unpack removes e from the atlas; the entry itself stays cached.
func (c *Cache) unpack(e entryID) {
	ent := &c.slab[e]
	if !ent.packed {
		return
	}
	if !c.packer.Unpack(ent.node) {
		panic("cache: packer lost a live node")
	}
	c.packedList.unlink(c.slab, e)
	ent.packed = false
	ent.node = 0
}

// ---------------------------------------------------------------------------
// Eviction
// ---------------------------------------------------------------------------

// PurgeTextures evicts every entry idle for at least maxAge frames.
// Loading and pinned entries survive.
func (c *Cache) PurgeTextures(maxAge uint32) {
	evicted := 0
	e := c.global.tail
	for e != noEntry {
		prev := c.slab[e].globalLink.prev
		ent := &c.slab[e]
		if !ent.pinned && !ent.loading && c.frame-ent.lastFrame >= maxAge {
			c.release(e)
			evicted++
		}
		e = prev
	}
	if evicted > 0 {
		c.packer.CollectGarbage()
		stage.Logger().Debug("cache: purged textures",
			"evicted", evicted, "maxAge", maxAge, "memory", c.memory)
	}
}

// Purge evicts everything evictable regardless of recency.
func (c *Cache) Purge() { c.PurgeTextures(0) }

// Destroy releases every entry, including loading ones, and resets
// the atlas. The cache is unusable afterwards.
func (c *Cache) Destroy() {
	e := c.global.tail
	for e != noEntry {
		prev := c.slab[e].globalLink.prev
		c.release(e)
		e = prev
	}
	c.solid = noEntry
	c.atlas = nil
}

// release destroys one entry and returns its slab slot to the free
// pool.
func (c *Cache) release(e entryID) {
	ent := &c.slab[e]
	if ent.packed {
		c.unpack(e)
	}
	c.global.unlink(c.slab, e)
	if ent.globalLink != newLinks() || ent.packedLink != newLinks() {
		panic("cache: releasing entry with live links")
	}
	c.memory -= ent.memory
	if ent.isGlyph {
		delete(c.byGlyph, ent.glyph)
	} else if !ent.bitmap.IsZero() {
		delete(c.byBitmap, ent.bitmap)
	}
	*ent = entry{globalLink: newLinks(), packedLink: newLinks()}
	c.freeSlots = append(c.freeSlots, e)
}

// newEntry returns a fresh slab slot with nil links.
func (c *Cache) newEntry() entryID {
	if n := len(c.freeSlots); n > 0 {
		e := c.freeSlots[n-1]
		c.freeSlots = c.freeSlots[:n-1]
		return e
	}
	c.slab = append(c.slab, entry{globalLink: newLinks(), packedLink: newLinks()})
	return entryID(len(c.slab) - 1)
}

// ---------------------------------------------------------------------------
// References and the atlas
// ---------------------------------------------------------------------------

// reference builds the renderable view of entry e.
func (c *Cache) reference(e entryID) stage.TextureReference {
	ent := &c.slab[e]
	m, _ := ent.tex.Metrics()
	ref := stage.TextureReference{
		Texture:         ent.tex,
		AtlasOffset:     m.AtlasOffset,
		AtlasScale:      m.AtlasScale,
		VisibleOffset:   m.VisibleOffset,
		VisibleScale:    m.VisibleScale,
		OcclusionOffset: m.OcclusionOffset,
		OcclusionScale:  m.OcclusionScale,
	}
	if !ent.packed {
		ref.AtlasMax = stage.Point{X: 1, Y: 1}
		return ref
	}
	aw := float64(c.settings.AtlasWidth)
	ah := float64(c.settings.AtlasHeight)
	origin := stage.Point{X: float64(ent.packX) / aw, Y: float64(ent.packY) / ah}
	scale := stage.Point{X: float64(ent.packW) / aw, Y: float64(ent.packH) / ah}
	ref.AtlasOffset = origin.Add(m.AtlasOffset.Mul(scale))
	ref.AtlasScale = m.AtlasScale.Mul(scale)
	ref.AtlasMin = origin
	ref.AtlasMax = origin.Add(scale)
	return ref
}

// AtlasImage returns the CPU-side atlas staging image.
func (c *Cache) AtlasImage() *image.RGBA { return c.atlas }

// AtlasDescriptor returns the GPU descriptor of the atlas texture.
func (c *Cache) AtlasDescriptor() (gputypes.TextureFormat, gputypes.Extent3D) {
	return c.settings.AtlasFormat, gputypes.Extent3D{
		Width:              uint32(c.settings.AtlasWidth),
		Height:             uint32(c.settings.AtlasHeight),
		DepthOrArrayLayers: 1,
	}
}

// TakeAtlasDirty reports whether the atlas changed since the last call
// and clears the flag. The uploader re-uploads when true.
func (c *Cache) TakeAtlasDirty() bool {
	dirty := c.atlasDirty
	c.atlasDirty = false
	return dirty
}
