// Package geometry provides the 2D primitives used throughout the schematic
// model: points, sizes, rectangles and line segments. Coordinates are
// scene units with the Y axis pointing down (screen convention).
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Epsilon is the default tolerance for fuzzy comparisons. Exact grid
// arithmetic stays exact; this only absorbs float noise from rotations.
const Epsilon = 1e-9

// Point represents a 2D coordinate. It doubles as a displacement vector.
type Point struct {
	X float64
	Y float64
}

// NewPoint creates a new Point.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p - other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Length returns the distance from the origin, treating p as a vector.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// IsZero reports whether both components are exactly zero.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// IsValid reports whether both components are finite numbers.
func (p Point) IsValid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) &&
		!math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// CloseTo reports whether the two points are within tol of each other.
func (p Point) CloseTo(other Point, tol float64) bool {
	return p.Distance(other) <= tol
}

// FuzzyEqual reports whether both components match within Epsilon.
func (p Point) FuzzyEqual(other Point) bool {
	return scalar.EqualWithinAbs(p.X, other.X, Epsilon) &&
		scalar.EqualWithinAbs(p.Y, other.Y, Epsilon)
}

// RotateAround rotates p around origin by the given angle in degrees,
// positive angles turning clockwise in screen coordinates.
func (p Point) RotateAround(origin Point, degrees float64) Point {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	d := p.Sub(origin)
	return Point{
		X: origin.X + cos*d.X - sin*d.Y,
		Y: origin.Y + sin*d.X + cos*d.Y,
	}
}

// Cross returns the 2D cross product p × other.
func (p Point) Cross(other Point) float64 {
	return p.X*other.Y - p.Y*other.X
}

// Dot returns the dot product p · other.
func (p Point) Dot(other Point) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Size represents 2D dimensions.
type Size struct {
	Width  float64
	Height float64
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// IsValid reports whether both dimensions are finite and non-negative.
func (s Size) IsValid() bool {
	return s.Width >= 0 && s.Height >= 0 &&
		!math.IsNaN(s.Width) && !math.IsNaN(s.Height) &&
		!math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Left returns the minimum X coordinate.
func (r Rect) Left() float64 { return r.X }

// Right returns the maximum X coordinate.
func (r Rect) Right() float64 { return r.X + r.Width }

// Top returns the minimum Y coordinate.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the maximum Y coordinate.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether the point lies inside the rectangle,
// boundaries included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point {
	return Point{X: r.X, Y: r.Y}
}

// TopRight returns the top-right corner.
func (r Rect) TopRight() Point {
	return Point{X: r.X + r.Width, Y: r.Y}
}

// BottomLeft returns the bottom-left corner.
func (r Rect) BottomLeft() Point {
	return Point{X: r.X, Y: r.Y + r.Height}
}

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point {
	return Point{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	x2 := math.Max(r.X+r.Width, other.X+other.Width)
	y2 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Adjusted returns the rectangle grown by the given margins on each side.
// Negative values shrink it.
func (r Rect) Adjusted(left, top, right, bottom float64) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left + right,
		Height: r.Height - top + bottom,
	}
}

// MidPoint returns the point halfway between a and b.
func MidPoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// FuzzyZero reports whether v is within Epsilon of zero.
func FuzzyZero(v float64) bool {
	return scalar.EqualWithinAbs(v, 0, Epsilon)
}
