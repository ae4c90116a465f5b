// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/stage"
	"github.com/gogpu/stage/clip"
)

// ---------------------------------------------------------------------------
// Command kinds
// ---------------------------------------------------------------------------

// CommandKind identifies the operation a Command encodes.
type CommandKind uint16

const (
	// CommandUnknown is the zero value; it never appears in a valid stream.
	CommandUnknown CommandKind = iota

	// CommandPose draws one posed renderable. Payload indexes the pose
	// side table.
	CommandPose

	// CommandBeginScissorClip enables hardware scissoring to the
	// rectangle at the payload index until the matching end.
	CommandBeginScissorClip

	// CommandEndScissorClip restores the enclosing scissor rectangle at
	// the payload index, or disables scissoring when the stack empties.
	CommandEndScissorClip

	// CommandBeginPlanarShadows brackets a run of shadow draws.
	CommandBeginPlanarShadows

	// CommandEndPlanarShadows closes a shadow bracket.
	CommandEndPlanarShadows

	// CommandWorldCullChange updates the active world cull rectangle
	// and world-to-screen ratios. Payload indexes the world-cull table.
	CommandWorldCullChange

	// CommandViewportChange updates the active viewport rectangle.
	// Payload indexes the rectangle table.
	CommandViewportChange

	// CommandViewProjectionChange updates the view-projection
	// coefficients. Payload indexes the view-projection table.
	CommandViewProjectionChange

	// CommandCustomDraw invokes a caller-registered draw callback.
	// Payload is an opaque caller-defined identifier.
	CommandCustomDraw
)

var commandKindNames = [...]string{
	CommandUnknown:              "Unknown",
	CommandPose:                 "Pose",
	CommandBeginScissorClip:     "BeginScissorClip",
	CommandEndScissorClip:       "EndScissorClip",
	CommandBeginPlanarShadows:   "BeginPlanarShadows",
	CommandEndPlanarShadows:     "EndPlanarShadows",
	CommandWorldCullChange:      "WorldCullChange",
	CommandViewportChange:       "ViewportChange",
	CommandViewProjectionChange: "ViewProjectionChange",
	CommandCustomDraw:           "CustomDraw",
}

// String returns the command kind name.
func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "Invalid"
}

// Command is one entry in the command stream: a kind tag and a payload
// index into the kind's side table (or an opaque value for
// CommandCustomDraw). Four bytes total, so a frame's stream stays
// cache-friendly under reordering.
type Command struct {
	Kind    CommandKind
	Payload uint16
}

// ---------------------------------------------------------------------------
// Side-table records
// ---------------------------------------------------------------------------

// PoseRecord is the full payload of one CommandPose: everything the
// drawer needs to emit geometry for one renderable.
type PoseRecord struct {
	// Transform is the world transform of the renderable.
	Transform stage.Matrix

	// ColorTransform is the accumulated color transform.
	ColorTransform stage.ColorTransform

	// WorldRect is the projected, clipped world-space bounds.
	WorldRect stage.Rect

	// WorldRectPreClip is the projected bounds before clipping,
	// used for texture-coordinate derivation.
	WorldRectPreClip stage.Rect

	// WorldOcclusion is the world-space rectangle fully occluded by
	// this draw, or the zero rectangle when it occludes nothing.
	WorldOcclusion stage.Rect

	// Texture is the resolved source texture reference.
	Texture stage.TextureReference

	// Renderable is the posed object; the drawer calls back into it
	// for geometry emission.
	Renderable stage.Renderable

	// Depth3D is the effective pseudo-3D depth at pose time.
	Depth3D float64

	// Feature is the shading feature set required by this draw.
	Feature stage.Feature

	// ClipIndex indexes the clip-capture table, or -1 when the draw is
	// unclipped.
	ClipIndex int16

	// SubInstance distinguishes multiple draws posed by one
	// renderable.
	SubInstance uint32
}

// WorldCullRecord is the payload of one CommandWorldCullChange.
type WorldCullRecord struct {
	Rect                      stage.Rect
	WorldWidthToScreenWidth   float64
	WorldHeightToScreenHeight float64
}

// ViewProjectionRecord is the payload of one CommandViewProjectionChange.
type ViewProjectionRecord struct {
	Scale stage.Point
	Shift stage.Point
}

// ---------------------------------------------------------------------------
// CommandStream
// ---------------------------------------------------------------------------

// CommandStream accumulates one frame of draw commands plus their
// side-table payloads. Issue methods append to the active buffer,
// which is the primary buffer unless a deferred-draw bracket has
// redirected issuance; FlushDeferred replays the deferred buffer into
// the primary one.
//
// Clip captures are pooled: Reset returns them to the pool without
// freeing, so steady-state frames allocate nothing.
type CommandStream struct {
	primary  []Command
	deferred []Command

	// deferDepth > 0 redirects issuance to the deferred buffer.
	deferDepth int

	poses           []PoseRecord
	rects           []stage.Rect
	worldCulls      []WorldCullRecord
	viewProjections []ViewProjectionRecord

	clips     []*clip.Capture
	clipsUsed int

	// clipStack holds indices into clips for currently open pushes.
	clipStack []int16
}

// Commands returns the active command buffer. During normal issuance
// this is the primary buffer; inside a deferred-draw bracket it is the
// deferred buffer.
func (s *CommandStream) Commands() []Command {
	if s.deferDepth > 0 {
		return s.deferred
	}
	return s.primary
}

// Len returns the length of the active command buffer.
func (s *CommandStream) Len() int { return len(s.Commands()) }

// Pose returns the pose record at index i.
func (s *CommandStream) Pose(i uint16) *PoseRecord { return &s.poses[i] }

// PoseCount returns the number of pose records issued this frame.
func (s *CommandStream) PoseCount() int { return len(s.poses) }

// Rectangle returns the rectangle side-table entry at index i.
func (s *CommandStream) Rectangle(i uint16) stage.Rect { return s.rects[i] }

// WorldCull returns the world-cull record at index i.
func (s *CommandStream) WorldCull(i uint16) WorldCullRecord { return s.worldCulls[i] }

// ViewProjection returns the view-projection record at index i.
func (s *CommandStream) ViewProjection(i uint16) ViewProjectionRecord {
	return s.viewProjections[i]
}

// ClipCapture returns the clip capture at index i. Index -1 (no clip)
// must be checked by the caller.
func (s *CommandStream) ClipCapture(i int16) *clip.Capture { return s.clips[i] }

// ClipStackTop returns the capture index of the innermost open clip
// push, or -1 when no clip is open.
func (s *CommandStream) ClipStackTop() int16 {
	if len(s.clipStack) == 0 {
		return -1
	}
	return s.clipStack[len(s.clipStack)-1]
}

func (s *CommandStream) issue(c Command) {
	if s.deferDepth > 0 {
		s.deferred = append(s.deferred, c)
		return
	}
	s.primary = append(s.primary, c)
}

// IssuePose appends a CommandPose and returns its record for the
// caller to fill. The pointer is valid only until the next issue.
func (s *CommandStream) IssuePose() *PoseRecord {
	i := uint16(len(s.poses))
	s.poses = append(s.poses, PoseRecord{ClipIndex: -1})
	s.issue(Command{Kind: CommandPose, Payload: i})
	return &s.poses[i]
}

// IssueBeginScissorClip appends a scissor-on command for r.
func (s *CommandStream) IssueBeginScissorClip(r stage.Rect) {
	s.issueRect(CommandBeginScissorClip, r)
}

// IssueEndScissorClip appends a scissor-restore command for r, the
// enclosing scissor rectangle (the zero rectangle disables
// scissoring).
func (s *CommandStream) IssueEndScissorClip(r stage.Rect) {
	s.issueRect(CommandEndScissorClip, r)
}

// IssueBeginPlanarShadows appends a shadow-bracket open marker.
func (s *CommandStream) IssueBeginPlanarShadows() {
	s.issue(Command{Kind: CommandBeginPlanarShadows})
}

// IssueEndPlanarShadows appends a shadow-bracket close marker.
func (s *CommandStream) IssueEndPlanarShadows() {
	s.issue(Command{Kind: CommandEndPlanarShadows})
}

// IssueWorldCullChange appends a world-cull update command.
func (s *CommandStream) IssueWorldCullChange(r stage.Rect, widthRatio, heightRatio float64) {
	i := uint16(len(s.worldCulls))
	s.worldCulls = append(s.worldCulls, WorldCullRecord{
		Rect:                      r,
		WorldWidthToScreenWidth:   widthRatio,
		WorldHeightToScreenHeight: heightRatio,
	})
	s.issue(Command{Kind: CommandWorldCullChange, Payload: i})
}

// IssueViewportChange appends a viewport update command.
func (s *CommandStream) IssueViewportChange(r stage.Rect) {
	s.issueRect(CommandViewportChange, r)
}

// IssueViewProjectionChange appends a view-projection update command.
func (s *CommandStream) IssueViewProjectionChange(scale, shift stage.Point) {
	i := uint16(len(s.viewProjections))
	s.viewProjections = append(s.viewProjections, ViewProjectionRecord{Scale: scale, Shift: shift})
	s.issue(Command{Kind: CommandViewProjectionChange, Payload: i})
}

// IssueCustomDraw appends a custom-draw command with an opaque
// caller-defined identifier.
func (s *CommandStream) IssueCustomDraw(id uint16) {
	s.issue(Command{Kind: CommandCustomDraw, Payload: id})
}

func (s *CommandStream) issueRect(kind CommandKind, r stage.Rect) {
	i := uint16(len(s.rects))
	s.rects = append(s.rects, r)
	s.issue(Command{Kind: kind, Payload: i})
}

// PushClip captures the top of st into the pooled capture table and
// opens it on the stream's clip stack. Subsequent pose records carry
// its index until the matching PopClip.
func (s *CommandStream) PushClip(st *clip.Stack) {
	i := int16(s.clipsUsed)
	if s.clipsUsed == len(s.clips) {
		s.clips = append(s.clips, &clip.Capture{})
	}
	s.clipsUsed++
	s.clips[i].Capture(st)
	s.clipStack = append(s.clipStack, i)
}

// PopClip closes the innermost open clip push.
func (s *CommandStream) PopClip() {
	if len(s.clipStack) == 0 {
		stage.Logger().Warn("render: PopClip with no open clip push")
		return
	}
	s.clipStack = s.clipStack[:len(s.clipStack)-1]
}

// BeginDeferDraw redirects subsequent issuance into the deferred
// buffer. Brackets nest; only the outermost EndDeferDraw restores
// primary issuance.
func (s *CommandStream) BeginDeferDraw() { s.deferDepth++ }

// EndDeferDraw closes one deferred-draw bracket.
func (s *CommandStream) EndDeferDraw() {
	if s.deferDepth == 0 {
		stage.Logger().Warn("render: EndDeferDraw with no open bracket")
		return
	}
	s.deferDepth--
}

// FlushDeferred appends the deferred buffer's contents to the primary
// buffer in issue order and empties the deferred buffer. It must be
// called outside any deferred-draw bracket.
func (s *CommandStream) FlushDeferred() {
	if s.deferDepth != 0 {
		stage.Logger().Warn("render: FlushDeferred inside a deferred-draw bracket",
			"depth", s.deferDepth)
		return
	}
	s.primary = append(s.primary, s.deferred...)
	s.deferred = s.deferred[:0]
}

// SwapPrimary replaces the primary buffer with buf and returns the old
// primary buffer. The optimizer uses this to install a reordered
// stream while recycling the previous backing array.
func (s *CommandStream) SwapPrimary(buf []Command) []Command {
	old := s.primary
	s.primary = buf
	return old
}

// Reset empties the stream for the next frame. Command buffers and
// side tables keep their capacity; clip captures return to the pool
// rather than being released.
func (s *CommandStream) Reset() {
	s.primary = s.primary[:0]
	s.deferred = s.deferred[:0]
	s.deferDepth = 0
	s.poses = s.poses[:0]
	s.rects = s.rects[:0]
	s.worldCulls = s.worldCulls[:0]
	s.viewProjections = s.viewProjections[:0]
	s.clipStack = s.clipStack[:0]
	for i := 0; i < s.clipsUsed; i++ {
		s.clips[i].Reset()
	}
	s.clipsUsed = 0
}
