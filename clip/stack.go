package clip

import (
	"math"

	"github.com/gogpu/stage"
)

// positionTolerance is the distance within which two coordinates are
// considered equal when classifying hulls as axis-aligned rectangles
// and when rejecting degenerate pushes.
const positionTolerance = 1e-4

// Clip is one accumulated clip level: the bounding rectangle of the
// intersection of every shape pushed up to and including this level,
// and whether that intersection is exactly an axis-aligned rectangle.
type Clip struct {
	Bounds stage.Rect

	// Simple reports that Bounds exactly describes the clip shape.
	// Non-simple clips can only be applied at mesh build time.
	Simple bool
}

// Stack accumulates clip shapes between pushes. AddRectangle and
// AddConvexHull gather pending geometry; Push intersects the pending
// shape with the current top and makes it the new top; Pop restores
// the previous level.
//
// Stack is not safe for concurrent use; it belongs to the render
// thread's frame state.
type Stack struct {
	levels []Clip

	pending       stage.Rect
	pendingSimple bool
	hasPending    bool
}

// NewStack returns an empty clip stack.
func NewStack() *Stack {
	return &Stack{pendingSimple: true}
}

// AddRectangle accumulates a world-transformed rectangle into the
// pending clip shape.
func (s *Stack) AddRectangle(m stage.Matrix, r stage.Rect) {
	bounds, axisAligned := stage.TransformRect(m, r)
	s.absorb(bounds, axisAligned)
}

// AddConvexHull accumulates a world-transformed convex hull into the
// pending clip shape. A hull that is exactly an axis-aligned rectangle
// keeps the pending shape simple; anything else demotes it.
func (s *Stack) AddConvexHull(m stage.Matrix, pts []stage.Point) {
	if len(pts) == 0 {
		return
	}
	bounds := stage.InvertedMaxRect()
	for _, p := range pts {
		bounds = bounds.AbsorbPoint(m.TransformPoint(p))
	}
	s.absorb(bounds, isAxisAlignedQuad(m, pts))
}

// absorb merges shape bounds into the pending accumulation.
func (s *Stack) absorb(bounds stage.Rect, simple bool) {
	if !s.hasPending {
		s.pending = bounds
		s.pendingSimple = simple
		s.hasPending = true
		return
	}
	// Multiple shapes accumulate by intersection; the union of their
	// bounds is only simple if every shape was and they nest exactly,
	// which we do not track, so demote.
	s.pending = s.pending.Intersect(bounds)
	s.pendingSimple = false
}

// Push makes the pending shape, intersected with the current top, the
// new stack top. It returns false and leaves the stack unchanged when
// no usable geometry was accumulated (nothing added, or degenerate
// bounds); callers must not advance posing depth in that case.
func (s *Stack) Push() bool {
	if !s.hasPending {
		return false
	}
	pending := s.pending
	simple := s.pendingSimple
	s.pending = stage.Rect{}
	s.pendingSimple = true
	s.hasPending = false

	if degenerate(pending) {
		return false
	}

	top := Clip{Bounds: pending, Simple: simple}
	if len(s.levels) > 0 {
		prev := s.levels[len(s.levels)-1]
		top.Bounds = prev.Bounds.Intersect(top.Bounds)
		top.Simple = top.Simple && prev.Simple
	}
	s.levels = append(s.levels, top)
	return true
}

// Pop restores the previous clip level.
func (s *Stack) Pop() {
	s.levels = s.levels[:len(s.levels)-1]
}

// HasClips reports whether any clip level is active.
func (s *Stack) HasClips() bool { return len(s.levels) > 0 }

// Depth returns the number of active clip levels.
func (s *Stack) Depth() int { return len(s.levels) }

// Top returns the current clip level. Only valid when HasClips.
func (s *Stack) Top() Clip {
	return s.levels[len(s.levels)-1]
}

// Reset clears all levels and any pending accumulation. Called by the
// frame state between the posing and drawing phases.
func (s *Stack) Reset() {
	s.levels = s.levels[:0]
	s.pending = stage.Rect{}
	s.pendingSimple = true
	s.hasPending = false
}

// Capture is a snapshot of the stack top at record time. Pose records
// reference captures by index so that draw-time clipping matches
// pose-time stack state regardless of reordering.
type Capture struct {
	Clip  Clip
	Depth int
	valid bool
}

// Capture snapshots the current top of the stack.
func (c *Capture) Capture(s *Stack) {
	c.Clip = s.Top()
	c.Depth = s.Depth()
	c.valid = true
}

// Valid reports whether the capture holds a snapshot.
func (c *Capture) Valid() bool { return c.valid }

// Reset clears the capture for pooled reuse.
func (c *Capture) Reset() {
	*c = Capture{}
}

// degenerate reports whether bounds enclose no usable area.
func degenerate(r stage.Rect) bool {
	return r.Width() <= positionTolerance || r.Height() <= positionTolerance
}

// isAxisAlignedQuad reports whether pts transformed by m form an
// axis-aligned rectangle within positionTolerance.
func isAxisAlignedQuad(m stage.Matrix, pts []stage.Point) bool {
	if len(pts) != 4 {
		return false
	}
	xs := map2(func(p stage.Point) float64 { return m.TransformPoint(p).X }, pts)
	ys := map2(func(p stage.Point) float64 { return m.TransformPoint(p).Y }, pts)
	return twoDistinct(xs) && twoDistinct(ys)
}

// map2 applies f to each point.
func map2(f func(stage.Point) float64, pts []stage.Point) [4]float64 {
	var out [4]float64
	for i, p := range pts {
		out[i] = f(p)
	}
	return out
}

// twoDistinct reports whether vs contains exactly two distinct values,
// each appearing twice, within positionTolerance.
func twoDistinct(vs [4]float64) bool {
	a := vs[0]
	countA := 0
	var b float64
	hasB := false
	for _, v := range vs {
		switch {
		case math.Abs(v-a) <= positionTolerance:
			countA++
		case !hasB:
			b = v
			hasB = true
		case math.Abs(v-b) > positionTolerance:
			return false
		}
	}
	return countA == 2 && hasB
}
