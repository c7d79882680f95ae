package geometry

import (
	"gonum.org/v1/gonum/floats/scalar"
)

// Line represents a line segment between two points.
type Line struct {
	P1 Point
	P2 Point
}

// NewLine creates a new line segment.
func NewLine(p1, p2 Point) Line {
	return Line{P1: p1, P2: p2}
}

// Length returns the segment length.
func (l Line) Length() float64 {
	return l.P1.Distance(l.P2)
}

// IsNull reports whether both endpoints coincide exactly.
func (l Line) IsNull() bool {
	return l.P1 == l.P2
}

// IsHorizontal reports whether both endpoints share the exact same Y
// coordinate. No tolerance is applied: the axis decision for
// straight-angle routing must be unambiguous.
func (l Line) IsHorizontal() bool {
	return l.P1.Y == l.P2.Y
}

// IsVertical reports whether both endpoints share the exact same X
// coordinate. No tolerance is applied.
func (l Line) IsVertical() bool {
	return l.P1.X == l.P2.X
}

// MidPoint returns the point halfway along the segment.
func (l Line) MidPoint() Point {
	return MidPoint(l.P1, l.P2)
}

// Translated returns the segment moved by the given delta.
func (l Line) Translated(delta Point) Line {
	return Line{P1: l.P1.Add(delta), P2: l.P2.Add(delta)}
}

// ContainsPoint reports whether p lies on the segment within the given
// tolerance. A tolerance of 0 still absorbs Epsilon of float noise so
// that points computed from grid arithmetic register as on-segment.
func (l Line) ContainsPoint(p Point, tol float64) bool {
	return l.DistanceToPoint(p) <= tol+Epsilon
}

// DistanceToPoint returns the shortest distance from p to the segment.
func (l Line) DistanceToPoint(p Point) float64 {
	d := l.P2.Sub(l.P1)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return l.P1.Distance(p)
	}

	// Project p onto the segment, clamped to [0,1].
	t := p.Sub(l.P1).Dot(d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := l.P1.Add(d.Scale(t))
	return closest.Distance(p)
}

// Intersects reports whether the two segments intersect and returns the
// intersection point. Parallel (including collinear) segments report no
// intersection; tol loosens the in-range check at the segment ends.
func (l Line) Intersects(other Line, tol float64) (Point, bool) {
	r := l.P2.Sub(l.P1)
	s := other.P2.Sub(other.P1)

	denom := r.Cross(s)
	if scalar.EqualWithinAbs(denom, 0, Epsilon) {
		return Point{}, false
	}

	qp := other.P1.Sub(l.P1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom

	// Allow tol units of slack at either end.
	tSlack := 0.0
	if ll := r.Length(); ll > 0 {
		tSlack = tol / ll
	}
	uSlack := 0.0
	if ll := s.Length(); ll > 0 {
		uSlack = tol / ll
	}
	if t < -tSlack || t > 1+tSlack || u < -uSlack || u > 1+uSlack {
		return Point{}, false
	}

	return l.P1.Add(r.Scale(t)), true
}
