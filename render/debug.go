// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/stage"
)

// TierTint returns the developer-mode overlay color for a resolution
// tier. Drawers multiply it over draws when tier visualization is
// enabled, making mip selection visible at a glance: full resolution
// renders green, each smaller tier shifts toward red.
func TierTint(t stage.ResolutionTier) colorful.Color {
	if t > stage.TierLast {
		t = stage.TierLast
	}
	frac := float64(t) / float64(stage.TierLast)
	return colorful.Hsv(120*(1-frac), 0.85, 1)
}

// TierTintRGBA returns the tier tint as 8-bit RGBA with full alpha.
func TierTintRGBA(t stage.ResolutionTier) (r, g, b, a uint8) {
	cr, cg, cb := TierTint(t).Clamped().RGB255()
	return cr, cg, cb, 255
}
