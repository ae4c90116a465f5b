package stage

// ResolutionTier selects one of the pre-scaled versions of a source
// image. Tier0 is full resolution; each successive tier is a
// half-resolution reduction of the previous one.
type ResolutionTier uint8

const (
	Tier0 ResolutionTier = iota
	Tier1
	Tier2
	Tier3
	Tier4

	// TierLast is the smallest tier. Loaders publish per-image tier
	// thresholds against this tier, so it is requested first when an
	// image is seen for the first time.
	TierLast = Tier4

	// NumTiers is the number of resolution tiers.
	NumTiers = int(Tier4) + 1
)

// BitmapID identifies a source image at a specific resolution tier.
// The zero BitmapID denotes the built-in solid-fill bitmap.
type BitmapID struct {
	Name string
	Tier ResolutionTier
}

// IsZero reports whether id is the solid-fill identity.
func (id BitmapID) IsZero() bool { return id.Name == "" }

// WithTier returns id retargeted at tier t.
func (id BitmapID) WithTier(t ResolutionTier) BitmapID {
	id.Tier = t
	return id
}

// TextureMetrics describes the renderable window of a loaded texture:
// its pixel dimensions plus the atlas, visible, and occlusion
// sub-regions in normalized [0, 1] texture coordinates.
type TextureMetrics struct {
	Width, Height int

	AtlasOffset, AtlasScale         Point
	VisibleOffset, VisibleScale     Point
	OcclusionOffset, OcclusionScale Point
}

// Texture is the contract a loaded (or loading) texture presents to
// the pipeline. Loading is asynchronous and observed by polling;
// metric and memory queries return false until the data is available.
type Texture interface {
	// IsLoading reports whether the underlying bitmap is still being
	// loaded by the external loader.
	IsLoading() bool

	// Metrics returns the texture's dimensions and sub-region windows.
	// It returns false while the texture is loading.
	Metrics() (TextureMetrics, bool)

	// MemoryUsage returns the texture's memory footprint in bytes.
	// It returns false while the footprint is not yet known.
	MemoryUsage() (int64, bool)

	// HasDimensions reports whether the texture's final dimensions are
	// known. Packing eligibility decisions are deferred until then.
	HasDimensions() bool
}

// TextureReference is a resolved, renderable view of a texture: the
// texture handle plus the normalized remap from shape-local texture
// coordinates into the texture (or the shared atlas it is packed in).
type TextureReference struct {
	Texture Texture

	// AtlasOffset and AtlasScale remap shape texture coordinates into
	// the texture. For packed entries they address the shared atlas.
	AtlasOffset, AtlasScale Point

	// VisibleOffset and VisibleScale describe the sub-region of the
	// shape covered by non-transparent texture data.
	VisibleOffset, VisibleScale Point

	// OcclusionOffset and OcclusionScale describe the fully opaque
	// sub-region usable for occlusion culling.
	OcclusionOffset, OcclusionScale Point

	// AtlasMin and AtlasMax bound the packed region in normalized
	// atlas coordinates. Zero for unpacked references.
	AtlasMin, AtlasMax Point
}

// IsValid reports whether the reference points at a resolved texture.
func (r TextureReference) IsValid() bool { return r.Texture != nil }
