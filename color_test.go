package stage

import "testing"

func TestColorTransformConcat(t *testing.T) {
	parent := IdentityColorTransform()
	parent.MulA = 0.5
	parent.AddR = 200

	child := IdentityColorTransform()
	child.MulA = 0.5
	child.AddR = 100
	child.AddG = 10

	got := parent.Concat(child)
	if got.MulA != 0.25 {
		t.Errorf("MulA = %v, want 0.25", got.MulA)
	}
	if got.AddR != 255 {
		t.Errorf("AddR = %d, want 255 (saturated)", got.AddR)
	}
	if got.AddG != 10 {
		t.Errorf("AddG = %d, want 10", got.AddG)
	}
	if got.BlendFactor != BlendFactorStandard {
		t.Errorf("BlendFactor = %d, want standard", got.BlendFactor)
	}
}

func TestColorTransformConcatBlendFactor(t *testing.T) {
	parent := IdentityColorTransform()
	child := IdentityColorTransform()
	child.BlendFactor = 3

	if got := parent.Concat(child).BlendFactor; got != 3 {
		t.Errorf("child blend factor should win: got %d, want 3", got)
	}

	parent.BlendFactor = 2
	child.BlendFactor = BlendFactorStandard
	if got := parent.Concat(child).BlendFactor; got != 2 {
		t.Errorf("standard child keeps parent blend factor: got %d, want 2", got)
	}
}

func TestColorTransformHasAdd(t *testing.T) {
	c := IdentityColorTransform()
	if c.HasAdd() {
		t.Error("identity transform should have no additive term")
	}
	c.AddB = 1
	if !c.HasAdd() {
		t.Error("AddB = 1 should report an additive term")
	}
}
