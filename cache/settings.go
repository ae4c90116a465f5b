package cache

import "github.com/gogpu/gputypes"

const (
	defaultAtlasWidth  = 2048
	defaultAtlasHeight = 2048

	// defaultMaxPackableDimension bounds the edge length of sub-images
	// eligible for atlas packing; larger images stay standalone.
	defaultMaxPackableDimension = 512

	// defaultPurgeThresholdFrames is how long a packed entry must sit
	// unused before MakeRoomInPacker may evict it.
	defaultPurgeThresholdFrames = 2

	// defaultSoftPurgeFrames is the idle window used when memory
	// exceeds the soft threshold.
	defaultSoftPurgeFrames = 60

	defaultSoftMemoryThreshold = 64 << 20
	defaultHardMemoryThreshold = 96 << 20
)

// Settings configures a Cache.
type Settings struct {
	// Loader resolves bitmap identities to textures. Required.
	Loader Loader

	// Packer places sub-images in the shared atlas. A shelf packer
	// sized to the atlas is created when nil.
	Packer Packer

	// AtlasWidth and AtlasHeight are the shared atlas dimensions in
	// pixels.
	AtlasWidth, AtlasHeight int

	// AtlasFormat is the pixel format of the atlas texture.
	AtlasFormat gputypes.TextureFormat

	// MaxPackableDimension is the largest edge length eligible for
	// packing.
	MaxPackableDimension int

	// PurgeThresholdFrames is the minimum idle age, in frames, before
	// a packed entry may be evicted to make room for a new pack.
	PurgeThresholdFrames uint32

	// SoftMemoryThreshold and HardMemoryThreshold bound total texture
	// memory in bytes. Crossing the soft threshold evicts entries idle
	// for SoftPurgeFrames; crossing the hard threshold evicts
	// everything not used this frame.
	SoftMemoryThreshold int64
	HardMemoryThreshold int64

	// SoftPurgeFrames is the idle window for soft-threshold purges.
	SoftPurgeFrames uint32
}

// Option mutates Settings.
type Option func(*Settings)

// WithLoader sets the bitmap loader.
func WithLoader(l Loader) Option {
	return func(s *Settings) { s.Loader = l }
}

// WithPacker sets the atlas packer.
func WithPacker(p Packer) Option {
	return func(s *Settings) { s.Packer = p }
}

// WithAtlasSize sets the shared atlas dimensions.
func WithAtlasSize(width, height int) Option {
	return func(s *Settings) {
		s.AtlasWidth = width
		s.AtlasHeight = height
	}
}

// WithAtlasFormat sets the atlas pixel format.
func WithAtlasFormat(f gputypes.TextureFormat) Option {
	return func(s *Settings) { s.AtlasFormat = f }
}

// WithMaxPackableDimension sets the packing eligibility bound.
func WithMaxPackableDimension(d int) Option {
	return func(s *Settings) { s.MaxPackableDimension = d }
}

// WithPurgeThreshold sets the packed-entry idle age, in frames, below
// which MakeRoomInPacker will not evict.
func WithPurgeThreshold(frames uint32) Option {
	return func(s *Settings) { s.PurgeThresholdFrames = frames }
}

// WithMemoryThresholds sets the soft and hard memory bounds in bytes.
func WithMemoryThresholds(soft, hard int64) Option {
	return func(s *Settings) {
		s.SoftMemoryThreshold = soft
		s.HardMemoryThreshold = hard
	}
}

// WithSoftPurgeFrames sets the idle window for soft-threshold purges.
func WithSoftPurgeFrames(frames uint32) Option {
	return func(s *Settings) { s.SoftPurgeFrames = frames }
}

func defaultSettings() Settings {
	return Settings{
		AtlasWidth:           defaultAtlasWidth,
		AtlasHeight:          defaultAtlasHeight,
		AtlasFormat:          gputypes.TextureFormatRGBA8Unorm,
		MaxPackableDimension: defaultMaxPackableDimension,
		PurgeThresholdFrames: defaultPurgeThresholdFrames,
		SoftMemoryThreshold:  defaultSoftMemoryThreshold,
		HardMemoryThreshold:  defaultHardMemoryThreshold,
		SoftPurgeFrames:      defaultSoftPurgeFrames,
	}
}
