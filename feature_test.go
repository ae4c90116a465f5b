package stage

import "testing"

func TestFeatureString(t *testing.T) {
	tests := []struct {
		f    Feature
		want string
	}{
		{FeatureNone, "None"},
		{FeatureColorMultiply, "ColorMultiply"},
		{FeatureColorMultiply | FeatureColorAdd, "ColorMultiply|ColorAdd"},
		{FeatureAlphaShape | FeatureExtendedBlend, "AlphaShape|ExtendedBlend"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Feature(%d).String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestFeatureHas(t *testing.T) {
	f := FeatureColorMultiply | FeatureDetail
	if !f.Has(FeatureDetail) {
		t.Error("Has(Detail) = false, want true")
	}
	if f.Has(FeatureColorAdd) {
		t.Error("Has(ColorAdd) = true, want false")
	}
	if !f.Has(FeatureColorMultiply | FeatureDetail) {
		t.Error("Has(multi-bit) = false, want true")
	}
}
