package stage

import "math"

// Point is a 2D point or vector in world space.
type Point struct {
	X, Y float64
}

// Add returns the componentwise sum p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the componentwise difference p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Mul returns the componentwise product of p and q.
func (p Point) Mul(q Point) Point { return Point{p.X * q.X, p.Y * q.Y} }

// Length returns the Euclidean length of p treated as a vector.
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }

// Rect is an axis-aligned world-space rectangle.
// A zero Rect has no area and never intersects anything.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectLTRB constructs a rectangle from edge coordinates.
func RectLTRB(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// RectXYWH constructs a rectangle from an origin and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// InvertedMaxRect returns a rectangle with inverted infinite bounds,
// used to seed an AbsorbPoint accumulation loop.
func InvertedMaxRect() Rect {
	return Rect{
		Left:   math.Inf(1),
		Top:    math.Inf(1),
		Right:  math.Inf(-1),
		Bottom: math.Inf(-1),
	}
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{(r.Left + r.Right) * 0.5, (r.Top + r.Bottom) * 0.5}
}

// IsZero reports whether r has no area.
func (r Rect) IsZero() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Intersects reports whether r and o overlap. Zero-area rectangles
// never intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right &&
		r.Top < o.Bottom && o.Top < r.Bottom
}

// Intersect returns the overlap of r and o. The result may be a
// zero-area rectangle if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		Left:   math.Max(r.Left, o.Left),
		Top:    math.Max(r.Top, o.Top),
		Right:  math.Min(r.Right, o.Right),
		Bottom: math.Min(r.Bottom, o.Bottom),
	}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// AbsorbPoint grows r to contain p.
func (r Rect) AbsorbPoint(p Point) Rect {
	return Rect{
		Left:   math.Min(r.Left, p.X),
		Top:    math.Min(r.Top, p.Y),
		Right:  math.Max(r.Right, p.X),
		Bottom: math.Max(r.Bottom, p.Y),
	}
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// TransformRect transforms r by m and returns the bounding rectangle of
// the result. The second return value reports whether the transformed
// rectangle is still axis-aligned, i.e. whether the bounds exactly
// match the transformed shape.
func TransformRect(m Matrix, r Rect) (Rect, bool) {
	out := InvertedMaxRect()
	out = out.AbsorbPoint(m.TransformPoint(Point{r.Left, r.Top}))
	out = out.AbsorbPoint(m.TransformPoint(Point{r.Right, r.Top}))
	out = out.AbsorbPoint(m.TransformPoint(Point{r.Left, r.Bottom}))
	out = out.AbsorbPoint(m.TransformPoint(Point{r.Right, r.Bottom}))
	return out, m.B == 0 && m.D == 0
}
