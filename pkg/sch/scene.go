package sch

import (
	"errors"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
)

// Mode selects how the scene interprets pointer events.
type Mode int

const (
	// NormalMode moves, resizes and rotates items.
	NormalMode Mode = iota
	// WireMode draws new wires.
	WireMode
)

const (
	// attachTolerance is the distance within which a wire point counts
	// as attached to a node connector.
	attachTolerance = 0.001

	// collisionSlack is the distance below which two wire points would
	// visually collide during a drag, triggering a shift of the whole
	// adjacent segment instead. Tuned for typical grid sizes.
	collisionSlack = 2.0
)

// ErrWireFloating is returned when a wire draw ends neither on a node
// connector nor on another wire.
var ErrWireFloating = errors.New("sch: wire must end on a connector or another wire")

// Scene owns all items of a schematic and maintains wire connectivity
// as nodes move and rotate. It is not safe for concurrent use.
type Scene struct {
	settings Settings

	items  map[ItemID]Item
	order  []ItemID
	nextID ItemID

	nets  []*Net
	stack *CommandStack

	mode              Mode
	newWire           *Wire
	newWireSegment    bool
	invertWirePosture bool

	initialItemPositions map[ItemID]geometry.Point
	initialCursorPos     geometry.Point
	lastMousePos         geometry.Point

	// OnModeChanged fires when the interaction mode changes.
	OnModeChanged func(mode Mode)
}

// NewScene creates an empty scene.
func NewScene(settings Settings) *Scene {
	return &Scene{
		settings:             settings,
		items:                make(map[ItemID]Item),
		stack:                NewCommandStack(),
		invertWirePosture:    true,
		initialItemPositions: make(map[ItemID]geometry.Point),
	}
}

// Settings returns the scene's editing configuration.
func (s *Scene) Settings() Settings { return s.settings }

// SetSettings replaces the editing configuration.
func (s *Scene) SetSettings(settings Settings) { s.settings = settings }

// Mode returns the current interaction mode.
func (s *Scene) Mode() Mode { return s.mode }

// SetMode switches between normal and wire drawing. Leaving wire mode
// discards an unfinished wire.
func (s *Scene) SetMode(m Mode) {
	if m == s.mode {
		return
	}
	if s.mode == WireMode {
		s.newWire = nil
		s.newWireSegment = false
	}
	s.mode = m
	if s.OnModeChanged != nil {
		s.OnModeChanged(m)
	}
}

// ToggleWirePosture flips the preferred first direction of newly
// routed wire segments between horizontal and vertical.
func (s *Scene) ToggleWirePosture() {
	s.invertWirePosture = !s.invertWirePosture
}

// AddItem places an item into the scene, assigning it a handle on
// first add. Nodes get their movement observers wired up so connected
// wires follow them.
func (s *Scene) AddItem(it Item) ItemID {
	if it == nil {
		return 0
	}
	id := it.ID()
	if id == 0 {
		s.nextID++
		id = s.nextID
		it.setID(id)
	}
	if _, exists := s.items[id]; !exists {
		s.items[id] = it
		s.order = append(s.order, id)
	}
	if n, ok := it.(*Node); ok {
		n.OnMoved = s.ItemMoved
		n.OnRotated = s.ItemRotated
	}
	return id
}

// RemoveItem removes an item from the scene arena. Wires should go
// through RemoveWire so their net membership is cleaned up too.
func (s *Scene) RemoveItem(id ItemID) {
	it, ok := s.items[id]
	if !ok {
		return
	}
	if n, isNode := it.(*Node); isNode {
		n.OnMoved = nil
		n.OnRotated = nil
	}
	delete(s.items, id)
	for i, x := range s.order {
		if x == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ItemByID looks up an item by its handle.
func (s *Scene) ItemByID(id ItemID) (Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// Items returns all items in insertion order.
func (s *Scene) Items() []Item {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Nodes returns all nodes in insertion order.
func (s *Scene) Nodes() []*Node {
	var out []*Node
	for _, id := range s.order {
		if n, ok := s.items[id].(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// ItemsAt returns the items hit by the scene point, topmost first.
func (s *Scene) ItemsAt(p geometry.Point) []Item {
	var out []Item
	for i := len(s.order) - 1; i >= 0; i-- {
		if it := s.items[s.order[i]]; it.HitTest(p) {
			out = append(out, it)
		}
	}
	return out
}

// SelectedItems returns the selected items in insertion order.
func (s *Scene) SelectedItems() []Item {
	var out []Item
	for _, id := range s.order {
		if it := s.items[id]; it.IsSelected() {
			out = append(out, it)
		}
	}
	return out
}

// ClearSelection deselects everything.
func (s *Scene) ClearSelection() {
	for _, it := range s.items {
		it.SetSelected(false)
	}
}

// ConnectionPoints returns the connection points of all nodes in scene
// coordinates.
func (s *Scene) ConnectionPoints() []geometry.Point {
	var out []geometry.Point
	for _, id := range s.order {
		if n, ok := s.items[id].(*Node); ok {
			out = append(out, n.ConnectionPointsAbsolute()...)
		}
	}
	return out
}

// Wires returns the wires of all nets. A wire still being drawn is not
// included.
func (s *Scene) Wires() []*Wire {
	var out []*Wire
	for _, n := range s.nets {
		out = append(out, n.wires...)
	}
	return out
}

// AddWire places a wire into the scene and assigns it to a net. The
// wire joins the first existing net it touches, either by one of its
// points lying on a net segment or by a net point lying on one of its
// segments. Otherwise a new anonymous net is created.
func (s *Scene) AddWire(w *Wire) bool {
	if w == nil || w.PointCount() < 2 {
		return false
	}

	s.AddItem(w)

	for _, net := range s.nets {
		if net.Contains(w) {
			return true
		}
	}

	for _, net := range s.nets {
		for _, seg := range net.LineSegments() {
			for _, p := range w.Points() {
				if seg.ContainsPoint(p.Point, 0) {
					net.AddWire(w)
					return true
				}
			}
		}
	}

	for _, net := range s.nets {
		for _, other := range net.wires {
			for _, p := range other.Points() {
				if w.PointIsOnWire(p.Point) {
					net.AddWire(w)
					return true
				}
			}
		}
	}

	net := NewNet()
	net.AddWire(w)
	s.adoptNet(net)
	return true
}

// RemoveWire removes a wire from the scene and from its net, deleting
// the net if it becomes empty.
func (s *Scene) RemoveWire(w *Wire) {
	if w == nil {
		return
	}
	s.RemoveItem(w.ID())
	for i := 0; i < len(s.nets); i++ {
		net := s.nets[i]
		net.RemoveWire(w)
		if net.WireCount() == 0 {
			s.nets = append(s.nets[:i], s.nets[i+1:]...)
			i--
		}
	}
}

// adoptNet registers a net with the scene and hooks up highlight
// propagation.
func (s *Scene) adoptNet(n *Net) {
	if n == nil {
		return
	}
	n.OnHighlightChanged = s.netHighlightChanged
	s.nets = append(s.nets, n)
}

// Nets returns all nets.
func (s *Scene) Nets() []*Net {
	out := make([]*Net, len(s.nets))
	copy(out, s.nets)
	return out
}

// NetsByName returns the nets matching a name, compared case
// insensitively. Unnamed nets never match.
func (s *Scene) NetsByName(name string) []*Net {
	var out []*Net
	for _, n := range s.nets {
		if n.name == "" {
			continue
		}
		if strings.EqualFold(n.name, name) {
			out = append(out, n)
		}
	}
	return out
}

// NetForWire returns the net containing the wire, or nil.
func (s *Scene) NetForWire(w *Wire) *Net {
	for _, n := range s.nets {
		if n.Contains(w) {
			return n
		}
	}
	return nil
}

// NetsAt returns the nets with a segment passing through the point.
func (s *Scene) NetsAt(p geometry.Point) []*Net {
	var out []*Net
	for _, n := range s.nets {
		for _, seg := range n.LineSegments() {
			if seg.ContainsPoint(p, 0) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// netHighlightChanged mirrors a highlight change onto all other nets
// sharing the same name.
func (s *Scene) netHighlightChanged(changed *Net, highlighted bool) {
	if changed.name == "" {
		return
	}
	for _, n := range s.nets {
		if n == changed {
			continue
		}
		if strings.EqualFold(n.name, changed.name) {
			n.setHighlightedSilently(highlighted)
		}
	}
}

// ItemMoved keeps wires attached to a node's connectors as it moves.
// The scene installs it as the node's OnMoved observer.
func (s *Scene) ItemMoved(node *Node, movedBy geometry.Point) {
	if movedBy.IsZero() {
		return
	}
	connected := s.wiresConnectedTo(node, movedBy.Scale(-1))
	for _, w := range connected {
		for _, cp := range node.ConnectionPointsAbsolute() {
			s.wireMovePoint(cp, w, movedBy)
		}
	}
	for _, w := range connected {
		if net := s.NetForWire(w); net != nil {
			net.Simplify()
		}
	}
}

// ItemRotated keeps wires attached to a node's connectors as it
// rotates. For each wire point the previous location of a connection
// point is recovered by rotating it back by the delta around the
// node's transform origin.
func (s *Scene) ItemRotated(node *Node, delta float64) {
	origin := node.TransformOrigin().Add(node.Position())
	var affected []*Wire
	for _, w := range s.Wires() {
		for _, wp := range w.Points() {
			for _, cp := range node.ConnectionPointsAbsolute() {
				prev := cp.RotateAround(origin, -delta)
				if wp.Point.CloseTo(prev, attachTolerance) {
					s.wireMovePoint(cp, w, cp.Sub(prev))
					affected = append(affected, w)
					break
				}
			}
		}
	}
	for _, w := range affected {
		if net := s.NetForWire(w); net != nil {
			net.Simplify()
		}
	}
}

// wiresConnectedTo returns the wires having a point on one of the
// node's connection points displaced by offset.
func (s *Scene) wiresConnectedTo(node *Node, offset geometry.Point) []*Wire {
	var out []*Wire
	cps := node.ConnectionPointsAbsolute()
	for _, w := range s.Wires() {
	points:
		for _, wp := range w.Points() {
			for _, cp := range cps {
				if wp.Point.CloseTo(cp.Add(offset), attachTolerance) {
					out = append(out, w)
					break points
				}
			}
		}
	}
	return out
}

// wireMovePoint moves the wire point that used to sit at point-movedBy
// onto point, preserving straight angles around it when configured.
func (s *Scene) wireMovePoint(point geometry.Point, w *Wire, movedBy geometry.Point) {
	// A single perpendicular-dragged segment is split in the middle so
	// it stays axis aligned. The midpoint goes in twice, forming the
	// new joint segment.
	if w.PointCount() == 2 && s.settings.PreserveStraightAngles {
		line := w.LineSegments()[0]
		if (line.IsHorizontal() && !geometry.FuzzyZero(movedBy.Y)) ||
			(line.IsVertical() && !geometry.FuzzyZero(movedBy.X)) {
			length := line.Length()
			var mid geometry.Point
			if line.IsHorizontal() {
				left := line.P1
				if line.P2.X < line.P1.X {
					left = line.P2
				}
				mid = geometry.Point{X: left.X + float64(int(length/2)), Y: left.Y}
			} else {
				upper := line.P1
				if line.P2.Y < line.P1.Y {
					upper = line.P2
				}
				mid = geometry.Point{X: upper.X, Y: upper.Y + float64(int(length/2))}
			}
			w.InsertPoint(1, mid)
			w.InsertPoint(1, mid)
		}
	}

	target := point.Sub(movedBy)
	for i := 0; i < w.PointCount(); i++ {
		curr := w.PointAt(i).Point
		if !curr.CloseTo(target, attachTolerance) {
			continue
		}

		if s.settings.PreserveStraightAngles {
			if i >= 1 {
				prev := w.PointAt(i - 1).Point
				line := geometry.Line{P1: prev, P2: curr}

				// Shift the whole adjacent segment when the drag would
				// land on top of the neighbour point.
				if w.PointCount() > 3 && i >= 2 &&
					(geometry.Line{P1: curr.Add(movedBy), P2: prev}).Length() <= collisionSlack {
					w.MoveLineSegmentBy(i-2, movedBy)
				}

				if line.IsHorizontal() {
					w.MovePointBy(i-1, geometry.Point{Y: movedBy.Y})
				} else if line.IsVertical() {
					w.MovePointBy(i-1, geometry.Point{X: movedBy.X})
				}
			}

			if i < w.PointCount()-1 {
				next := w.PointAt(i + 1).Point
				line := geometry.Line{P1: curr, P2: next}

				if w.PointCount() > 3 &&
					(geometry.Line{P1: curr.Add(movedBy), P2: next}).Length() <= collisionSlack {
					w.MoveLineSegmentBy(i+1, movedBy)
				}

				if line.IsHorizontal() {
					w.MovePointBy(i+1, geometry.Point{Y: movedBy.Y})
				} else if line.IsVertical() {
					w.MovePointBy(i+1, geometry.Point{X: movedBy.X})
				}
			}
		}

		w.MovePointBy(i, movedBy)
		break
	}
}

// WirePointMoved re-evaluates a wire's net membership after one of its
// points moved. The wire leaves its current net and rejoins whichever
// net it now touches.
func (s *Scene) WirePointMoved(w *Wire) {
	for i, net := range s.nets {
		if !net.Contains(w) {
			continue
		}
		net.RemoveWire(w)
		net.SetHighlighted(false)
		if net.WireCount() == 0 {
			s.nets = append(s.nets[:i], s.nets[i+1:]...)
		}
		break
	}
	s.AddWire(w)
}

// MoveWirePoint moves a wire vertex to an absolute position and
// updates net membership and wire shape accordingly.
func (s *Scene) MoveWirePoint(w *Wire, i int, p geometry.Point) {
	if w == nil || i < 0 || i >= w.PointCount() {
		return
	}
	w.MovePointTo(i, p)
	s.WirePointMoved(w)
	if net := s.NetForWire(w); net != nil {
		net.Simplify()
	}
}

// PressEvent begins a pointer interaction at a scene position. In
// normal mode it arms resize or rotate handles on selected nodes and
// records initial positions for a possible move. In wire mode it
// starts or extends the wire being drawn.
func (s *Scene) PressEvent(pos geometry.Point) {
	switch s.mode {
	case NormalMode:
		for _, n := range s.Nodes() {
			if n.IsSelected() && n.PressAt(pos, s.settings) {
				break
			}
		}
		clear(s.initialItemPositions)
		for _, it := range s.SelectedItems() {
			s.initialItemPositions[it.ID()] = it.Position()
		}
		s.initialCursorPos = pos

	case WireMode:
		if s.newWire == nil {
			s.newWire = NewWire()
		}
		s.newWire.AppendPoint(s.settings.SnapPoint(pos))
		s.newWireSegment = true
	}
	s.lastMousePos = pos
}

// MoveEvent advances a pointer interaction. dragging says whether the
// pointer button is held; snapAngle constrains an active rotation to
// 15 degree steps.
func (s *Scene) MoveEvent(pos geometry.Point, dragging, snapAngle bool) {
	switch s.mode {
	case NormalMode:
		if !dragging {
			break
		}

		interacting := false
		for _, n := range s.Nodes() {
			if n.IsSelected() && n.Mode() != InteractionNone {
				interacting = true
				if cmd, ok := n.DragTo(pos, snapAngle, s.settings); ok {
					s.stack.Push(cmd)
				}
			}
		}
		if interacting {
			break
		}

		for _, it := range s.SelectedItems() {
			if !it.IsMovable() {
				continue
			}
			initial, ok := s.initialItemPositions[it.ID()]
			if !ok {
				continue
			}
			target := initial.Add(pos.Sub(s.initialCursorPos))
			if n, isNode := it.(*Node); isNode {
				target = n.SnapPositionToGrid(target, s.settings)
			} else if it.SnapsToGrid() {
				target = s.settings.SnapPoint(target)
			}
			it.SetPosition(target)
		}

	case WireMode:
		if s.newWire == nil {
			break
		}
		s.routeWireTo(s.settings.SnapPoint(pos))
	}
	s.lastMousePos = pos
}

// routeWireTo updates the in-progress wire's trailing segment towards
// the pointer, inserting a corner to keep straight angles when
// configured.
func (s *Scene) routeWireTo(snapped geometry.Point) {
	w := s.newWire
	if !s.settings.RouteStraightAngles {
		if w.PointCount() > 1 {
			w.MovePointTo(w.PointCount()-1, snapped)
		} else {
			w.InsertPoint(1, snapped)
		}
		return
	}

	if s.newWireSegment {
		// Grow a fresh corner/end pair behind the segment anchor. The
		// routing below relies on this three point tail, so the corner
		// goes in without deduplication even when it coincides with
		// the end point.
		prev := w.PointAt(w.PointCount() - 1).Point
		corner := geometry.Point{X: prev.X, Y: snapped.Y}
		if s.invertWirePosture {
			corner = geometry.Point{X: snapped.X, Y: prev.Y}
		}
		w.InsertPoint(w.PointCount(), corner)
		w.InsertPoint(w.PointCount(), snapped)
		s.newWireSegment = false
		return
	}

	anchor := w.PointAt(w.PointCount() - 3).Point
	corner := geometry.Point{X: anchor.X, Y: snapped.Y}
	if s.invertWirePosture {
		corner = geometry.Point{X: snapped.X, Y: anchor.Y}
	}
	w.MovePointTo(w.PointCount()-2, corner)
	w.MovePointTo(w.PointCount()-1, snapped)
}

// ReleaseEvent ends a pointer interaction. Completed node moves are
// re-applied through the undo stack so they can be undone as one step.
func (s *Scene) ReleaseEvent(pos geometry.Point) {
	if s.mode == NormalMode {
		moving := true
		for _, n := range s.Nodes() {
			if n.IsSelected() && n.Mode() != InteractionNone {
				moving = false
				break
			}
		}

		if moving {
			for _, it := range s.SelectedItems() {
				initial, ok := s.initialItemPositions[it.ID()]
				if !ok || !it.IsMovable() {
					continue
				}
				moveBy := it.Position().Sub(initial)
				if moveBy.IsZero() {
					continue
				}
				it.SetPosition(initial)
				s.stack.Push(&MoveItemsCommand{
					Items:  []Item{it},
					MoveBy: moveBy,
				})
			}
		}

		for _, n := range s.Nodes() {
			n.Release()
		}
	}
	s.lastMousePos = pos
}

// DoubleClickEvent finishes the wire being drawn. The wire must end on
// a node connection point or on an existing wire; otherwise
// ErrWireFloating is returned and drawing continues.
func (s *Scene) DoubleClickEvent(pos geometry.Point) error {
	if s.mode != WireMode || s.newWire == nil || s.newWire.PointCount() < 2 {
		return nil
	}

	last := s.newWire.PointAt(s.newWire.PointCount() - 1).Point

	floating := true
	for _, cp := range s.ConnectionPoints() {
		if last.CloseTo(cp, attachTolerance) {
			floating = false
			break
		}
	}
	if floating {
		for _, w := range s.Wires() {
			if w.PointIsOnWire(last) {
				floating = false
				break
			}
		}
	}
	if floating {
		s.newWire.RemoveLastPoint()
		return ErrWireFloating
	}

	s.newWire.Simplify()
	s.stack.Push(&AddItemCommand{Scene: s, Item: s.newWire})
	s.newWire = nil
	s.newWireSegment = false
	return nil
}

// WireInProgress returns the wire currently being drawn, or nil.
func (s *Scene) WireInProgress() *Wire { return s.newWire }

// CommandStack returns the scene's undo history.
func (s *Scene) CommandStack() *CommandStack { return s.stack }

// PushCommand applies an edit through the undo stack.
func (s *Scene) PushCommand(c Command) { s.stack.Push(c) }

// Undo reverts the most recent edit.
func (s *Scene) Undo() bool { return s.stack.Undo() }

// Redo re-applies the most recently undone edit.
func (s *Scene) Redo() bool { return s.stack.Redo() }

// IsDirty reports whether the scene has unsaved edits.
func (s *Scene) IsDirty() bool { return !s.stack.IsClean() }

// ClearDirty marks the current state as saved.
func (s *Scene) ClearDirty() { s.stack.SetClean() }

// Clear removes all items, nets and history.
func (s *Scene) Clear() {
	for _, it := range s.items {
		if n, ok := it.(*Node); ok {
			n.OnMoved = nil
			n.OnRotated = nil
		}
	}
	s.items = make(map[ItemID]Item)
	s.order = nil
	s.nets = nil
	s.newWire = nil
	s.newWireSegment = false
	s.stack.Clear()
}
