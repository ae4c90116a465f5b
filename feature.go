package stage

import "strings"

// Feature is a bitset of shader capabilities a draw requires. The
// drawer selects a render technique from the union of features in a
// batch, so unnecessary bits fragment batches and cost real GPU time.
type Feature uint8

const (
	// FeatureNone requests no capabilities. Posing floors every record
	// to at least FeatureColorMultiply before it enters the stream.
	FeatureNone Feature = 0

	// FeatureColorMultiply is the baseline capability: multiplication
	// by the world color transform. Every draw needs at least this.
	FeatureColorMultiply Feature = 1 << iota

	// FeatureColorAdd is required when the world color transform
	// carries a non-zero additive term.
	FeatureColorAdd

	// FeatureAlphaShape is required for alpha-shaped draws
	// (SDF text and mask-like shapes).
	FeatureAlphaShape

	// FeatureDetail is required when the draw samples a secondary
	// detail texture.
	FeatureDetail

	// FeatureExtendedBlend is required for compositing modes beyond
	// standard source-over blending.
	FeatureExtendedBlend
)

var featureNames = []struct {
	bit  Feature
	name string
}{
	{FeatureColorMultiply, "ColorMultiply"},
	{FeatureColorAdd, "ColorAdd"},
	{FeatureAlphaShape, "AlphaShape"},
	{FeatureDetail, "Detail"},
	{FeatureExtendedBlend, "ExtendedBlend"},
}

// Has reports whether all bits of q are set in f.
func (f Feature) Has(q Feature) bool { return f&q == q }

// String returns a "|"-joined list of the set feature bits.
func (f Feature) String() string {
	if f == FeatureNone {
		return "None"
	}
	var sb strings.Builder
	for _, n := range featureNames {
		if f&n.bit != 0 {
			if sb.Len() > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(n.name)
		}
	}
	return sb.String()
}
