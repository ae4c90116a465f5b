package cache

import (
	"image"
	"image/color"

	"github.com/gogpu/stage"
)

// GlyphKey identifies one rasterized glyph: a rune at a pixel size.
type GlyphKey struct {
	Rune rune
	Size uint16
}

// Loader is the external collaborator that turns identities into
// textures. Loads are asynchronous: the returned texture may report
// IsLoading until its bitmap arrives, and the cache polls it across
// frames.
type Loader interface {
	// Load begins or continues loading the bitmap identified by id.
	Load(id stage.BitmapID) stage.Texture

	// LoadGlyph begins or continues rasterizing one glyph.
	LoadGlyph(key GlyphKey) stage.Texture

	// SubImage returns the decoded pixels of a loaded texture for
	// atlas packing. It returns false while pixels are unavailable;
	// such textures stay unpacked.
	SubImage(tex stage.Texture) (image.Image, bool)
}

// ---------------------------------------------------------------------------
// Solid fill
// ---------------------------------------------------------------------------

// solidFillSize is the pixel edge of the built-in solid-fill texture.
// Larger than 1x1 so padding and bilinear filtering sample pure white.
const solidFillSize = 4

// solidTexture is the built-in always-loaded white texture backing the
// zero BitmapID. Solid-color shapes resolve to it so they batch with
// textured draws instead of forcing a material switch.
type solidTexture struct{}

func (solidTexture) IsLoading() bool { return false }

func (solidTexture) HasDimensions() bool { return true }

func (solidTexture) Metrics() (stage.TextureMetrics, bool) {
	return stage.TextureMetrics{
		Width:          solidFillSize,
		Height:         solidFillSize,
		AtlasScale:     stage.Point{X: 1, Y: 1},
		VisibleScale:   stage.Point{X: 1, Y: 1},
		OcclusionScale: stage.Point{X: 1, Y: 1},
	}, true
}

func (solidTexture) MemoryUsage() (int64, bool) {
	return solidFillSize * solidFillSize * 4, true
}

func solidImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, solidFillSize, solidFillSize))
	for y := 0; y < solidFillSize; y++ {
		for x := 0; x < solidFillSize; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}
