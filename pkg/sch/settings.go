package sch

import (
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
)

// Settings bundles the editing configuration passed into the geometry
// operations that need it. There is no ambient global: the scene holds
// one value and hands it down explicitly.
type Settings struct {
	// GridSize is the grid pitch in scene units. Zero disables snapping.
	GridSize int

	// ResizeHandleSize is the half-extent of the resize/rotate handle
	// hit rectangles.
	ResizeHandleSize float64

	// RouteStraightAngles constrains newly drawn wires to horizontal
	// and vertical segments.
	RouteStraightAngles bool

	// PreserveStraightAngles keeps existing horizontal/vertical
	// segments axis-aligned when wire points are moved.
	PreserveStraightAngles bool
}

// DefaultSettings returns the standard editing configuration.
func DefaultSettings() Settings {
	return Settings{
		GridSize:               20,
		ResizeHandleSize:       7,
		RouteStraightAngles:    true,
		PreserveStraightAngles: true,
	}
}

// SnapPoint snaps a scene position to the grid.
func (s Settings) SnapPoint(p geometry.Point) geometry.Point {
	return geometry.SnapToGrid(p, s.GridSize)
}

// SnapSize snaps dimensions to the grid.
func (s Settings) SnapSize(size geometry.Size) geometry.Size {
	return geometry.SnapSizeToGrid(size, s.GridSize)
}
