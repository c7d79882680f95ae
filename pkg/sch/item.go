package sch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
)

// Debug enables panics on programmer-error class invariant violations
// (for example driving a resize interaction on a node that disallows
// resizing). When false such violations are defensive no-ops.
var Debug bool

// assertf panics with a package-prefixed message when Debug is set and
// the condition does not hold.
func assertf(cond bool, format string, args ...any) {
	if !cond && Debug {
		panic("sch: " + fmt.Sprintf(format, args...))
	}
}

// ItemID is a stable handle identifying an item within a scene's arena.
// The zero value is never assigned.
type ItemID int

// Shape is the geometric capability every scene item provides.
type Shape interface {
	// BoundingRect returns the item's axis-aligned bounding rectangle
	// in scene coordinates.
	BoundingRect() geometry.Rect

	// HitTest reports whether the scene-space point hits the item.
	HitTest(p geometry.Point) bool
}

// Item is implemented by everything living in a scene: nodes and wires.
type Item interface {
	Shape

	// ID returns the arena handle, or zero before the item is added.
	ID() ItemID

	// Position returns the item's position in scene coordinates.
	Position() geometry.Point

	// SetPosition moves the item. Invalid (NaN/Inf) positions are
	// rejected as no-ops.
	SetPosition(p geometry.Point)

	IsMovable() bool
	SetMovable(movable bool)

	IsSelected() bool
	SetSelected(selected bool)

	SnapsToGrid() bool
	SetSnapToGrid(snap bool)

	// UUID returns the item's persistent identity.
	UUID() uuid.UUID

	// setID is called by the scene when the item enters the arena.
	setID(id ItemID)
}

// itemBase carries the state shared by all item kinds.
type itemBase struct {
	id         ItemID
	uid        uuid.UUID
	pos        geometry.Point
	movable    bool
	snapToGrid bool
	selected   bool
}

func newItemBase() itemBase {
	return itemBase{
		uid:        uuid.New(),
		movable:    true,
		snapToGrid: true,
	}
}

func (b *itemBase) ID() ItemID               { return b.id }
func (b *itemBase) setID(id ItemID)          { b.id = id }
func (b *itemBase) Position() geometry.Point { return b.pos }
func (b *itemBase) IsMovable() bool          { return b.movable }
func (b *itemBase) SetMovable(movable bool)  { b.movable = movable }
func (b *itemBase) IsSelected() bool         { return b.selected }
func (b *itemBase) SetSelected(sel bool)     { b.selected = sel }
func (b *itemBase) SnapsToGrid() bool        { return b.snapToGrid }
func (b *itemBase) SetSnapToGrid(s bool)     { b.snapToGrid = s }
func (b *itemBase) UUID() uuid.UUID          { return b.uid }
