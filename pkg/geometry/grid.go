package geometry

import "math"

// SnapToGrid rounds each coordinate of p to the nearest multiple of the
// grid pitch. A pitch of zero or less returns p unchanged.
func SnapToGrid(p Point, grid int) Point {
	if grid <= 0 {
		return p
	}
	g := float64(grid)
	return Point{
		X: math.Round(p.X/g) * g,
		Y: math.Round(p.Y/g) * g,
	}
}

// SnapSizeToGrid rounds each dimension of s to the nearest multiple of
// the grid pitch. A pitch of zero or less returns s unchanged.
func SnapSizeToGrid(s Size, grid int) Size {
	if grid <= 0 {
		return s
	}
	g := float64(grid)
	return Size{
		Width:  math.Round(s.Width/g) * g,
		Height: math.Round(s.Height/g) * g,
	}
}
