// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/wgpu/core"

// Drawer consumes an optimized command stream and submits GPU work.
// Implementations live with the GPU backend; the pipeline only
// guarantees the stream contract: commands arrive in composited order,
// pose records carry resolved textures, and bracket markers
// (shadow, scissor) are balanced.
type Drawer interface {
	// Process draws one frame's stream against the shared state. The
	// stream and state remain owned by the caller and are valid only
	// for the duration of the call.
	Process(stream *CommandStream, state *State)
}

// DeviceBinding carries the GPU identities a drawer submits against.
// The pipeline receives these from the host application; it never
// creates devices itself.
type DeviceBinding struct {
	Device core.DeviceID
	Queue  core.QueueID
}

// IsValid reports whether the binding refers to a live device.
func (b DeviceBinding) IsValid() bool {
	return !b.Device.IsZero() && !b.Queue.IsZero()
}
