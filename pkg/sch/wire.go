package sch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/record"
)

// WirePoint is a vertex on a wire. Points sitting on a node connector
// are flagged so the connectivity code can treat them as anchored.
type WirePoint struct {
	Point       geometry.Point
	IsConnector bool
}

// Wire is a polyline of scene-space points. Wires belong to nets once
// added to a scene; the scene keeps their endpoints attached to node
// connectors as nodes move.
type Wire struct {
	itemBase
	points []WirePoint
}

// NewWire creates an empty wire.
func NewWire() *Wire {
	return &Wire{itemBase: newItemBase()}
}

// PointCount returns the number of vertices.
func (w *Wire) PointCount() int { return len(w.points) }

// PointAt returns the vertex at index i.
func (w *Wire) PointAt(i int) WirePoint { return w.points[i] }

// Points returns a copy of the vertex list.
func (w *Wire) Points() []WirePoint {
	out := make([]WirePoint, len(w.points))
	copy(out, w.points)
	return out
}

// AppendPoint adds a vertex at the end of the wire. Appending a point
// equal to the current last vertex is a no-op.
func (w *Wire) AppendPoint(p geometry.Point) {
	if n := len(w.points); n > 0 && w.points[n-1].Point.FuzzyEqual(p) {
		return
	}
	w.points = append(w.points, WirePoint{Point: p})
}

// InsertPoint inserts a vertex before index i. Unlike AppendPoint it
// never deduplicates; segment splitting relies on inserting a midpoint
// twice.
func (w *Wire) InsertPoint(i int, p geometry.Point) {
	assertf(i >= 0 && i <= len(w.points), "wire insert index %d out of range", i)
	if i < 0 || i > len(w.points) {
		return
	}
	w.points = append(w.points, WirePoint{})
	copy(w.points[i+1:], w.points[i:])
	w.points[i] = WirePoint{Point: p}
}

// RemoveLastPoint drops the final vertex.
func (w *Wire) RemoveLastPoint() {
	if len(w.points) > 0 {
		w.points = w.points[:len(w.points)-1]
	}
}

// SetConnectorFlag marks or unmarks the vertex at i as attached to a
// node connector.
func (w *Wire) SetConnectorFlag(i int, attached bool) {
	if i >= 0 && i < len(w.points) {
		w.points[i].IsConnector = attached
	}
}

// MovePointTo moves the vertex at i to an absolute position.
func (w *Wire) MovePointTo(i int, p geometry.Point) {
	assertf(i >= 0 && i < len(w.points), "wire move index %d out of range", i)
	if i < 0 || i >= len(w.points) {
		return
	}
	w.points[i].Point = p
}

// MovePointBy translates the vertex at i.
func (w *Wire) MovePointBy(i int, d geometry.Point) {
	if i < 0 || i >= len(w.points) {
		return
	}
	w.points[i].Point = w.points[i].Point.Add(d)
}

// MoveLineSegmentBy translates the segment starting at vertex i, moving
// both of its endpoints.
func (w *Wire) MoveLineSegmentBy(i int, d geometry.Point) {
	w.MovePointBy(i, d)
	w.MovePointBy(i+1, d)
}

// LineSegments returns the wire's segments in order.
func (w *Wire) LineSegments() []geometry.Line {
	if len(w.points) < 2 {
		return nil
	}
	segs := make([]geometry.Line, 0, len(w.points)-1)
	for i := 0; i+1 < len(w.points); i++ {
		segs = append(segs, geometry.Line{
			P1: w.points[i].Point,
			P2: w.points[i+1].Point,
		})
	}
	return segs
}

// PointIsOnWire reports whether p lies exactly on one of the wire's
// segments.
func (w *Wire) PointIsOnWire(p geometry.Point) bool {
	for _, seg := range w.LineSegments() {
		if seg.ContainsPoint(p, 0) {
			return true
		}
	}
	return false
}

// Simplify removes duplicate adjacent vertices and collinear middle
// vertices. The operation is idempotent.
func (w *Wire) Simplify() {
	// Drop adjacent duplicates first so collinearity checks see real
	// segments.
	out := w.points[:0]
	for _, p := range w.points {
		if len(out) > 0 && out[len(out)-1].Point.FuzzyEqual(p.Point) {
			if p.IsConnector {
				out[len(out)-1].IsConnector = true
			}
			continue
		}
		out = append(out, p)
	}
	w.points = out

	for i := 1; i+1 < len(w.points); {
		prev := w.points[i-1].Point
		cur := w.points[i].Point
		next := w.points[i+1].Point
		if collinear(prev, cur, next) && !w.points[i].IsConnector {
			w.points = append(w.points[:i], w.points[i+1:]...)
			continue
		}
		i++
	}
}

func collinear(a, b, c geometry.Point) bool {
	if a.X == b.X && b.X == c.X {
		return true
	}
	if a.Y == b.Y && b.Y == c.Y {
		return true
	}
	return geometry.FuzzyZero(b.Sub(a).Cross(c.Sub(a)))
}

// SetPosition translates the whole wire so that its reference position
// becomes p. All vertices move by the same delta.
func (w *Wire) SetPosition(p geometry.Point) {
	if !p.IsValid() {
		return
	}
	d := p.Sub(w.pos)
	w.pos = p
	for i := range w.points {
		w.points[i].Point = w.points[i].Point.Add(d)
	}
}

// BoundingRect returns the bounding rectangle of all vertices.
func (w *Wire) BoundingRect() geometry.Rect {
	if len(w.points) == 0 {
		return geometry.Rect{X: w.pos.X, Y: w.pos.Y}
	}
	minX, minY := w.points[0].Point.X, w.points[0].Point.Y
	maxX, maxY := minX, minY
	for _, p := range w.points[1:] {
		minX = min(minX, p.Point.X)
		minY = min(minY, p.Point.Y)
		maxX = max(maxX, p.Point.X)
		maxY = max(maxY, p.Point.Y)
	}
	return geometry.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// HitTest reports whether p lies within one unit of a wire segment.
func (w *Wire) HitTest(p geometry.Point) bool {
	for _, seg := range w.LineSegments() {
		if seg.ContainsPoint(p, 1) {
			return true
		}
	}
	return false
}

// ToRecord serializes the wire.
func (w *Wire) ToRecord() *record.Record {
	r := record.New()
	r.AddStr("uuid", w.uid.String())
	pts := record.New()
	for _, p := range w.points {
		pr := record.New()
		pr.AddFloat("x", p.Point.X)
		pr.AddFloat("y", p.Point.Y)
		pr.AddBool("connector", p.IsConnector)
		pts.AddChild("point", pr)
	}
	r.AddChild("points", pts)
	return r
}

// wireFromRecord restores a wire from its serialized form.
func wireFromRecord(r *record.Record) (*Wire, error) {
	pts := r.Child("points")
	if pts == nil {
		return nil, fmt.Errorf("wire record has no points")
	}
	w := NewWire()
	if s := r.StrOr("uuid", ""); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			w.uid = id
		}
	}
	for _, pr := range pts.Children("point") {
		w.points = append(w.points, WirePoint{
			Point: geometry.Point{
				X: pr.FloatOr("x", 0),
				Y: pr.FloatOr("y", 0),
			},
			IsConnector: pr.BoolOr("connector", false),
		})
	}
	return w, nil
}
