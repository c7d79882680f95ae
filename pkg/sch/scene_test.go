package sch

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
)

func makeWire(points ...geometry.Point) *Wire {
	w := NewWire()
	for _, p := range points {
		w.AppendPoint(p)
	}
	return w
}

// testNode builds a 100x100 node at the origin with a single connector
// on the right edge at (100, 40).
func testNode() *Node {
	n := NewNode()
	n.SetSize(geometry.Size{Width: 100, Height: 100})
	n.AddConnector(NewConnector(geometry.Point{X: 100, Y: 40}, "out"))
	return n
}

func TestSceneAddWireJoinsTouchingNet(t *testing.T) {
	s := NewScene(DefaultSettings())

	a := makeWire(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0})
	b := makeWire(geometry.Point{X: 50, Y: 0}, geometry.Point{X: 50, Y: 50})
	c := makeWire(geometry.Point{X: 200, Y: 200}, geometry.Point{X: 300, Y: 200})

	s.AddWire(a)
	s.AddWire(b)
	s.AddWire(c)

	if got := len(s.Nets()); got != 2 {
		t.Fatalf("len(Nets()) = %d, want 2", got)
	}
	if s.NetForWire(a) != s.NetForWire(b) {
		t.Error("touching wires ended up in different nets")
	}
	if s.NetForWire(a) == s.NetForWire(c) {
		t.Error("disjoint wire joined an unrelated net")
	}
}

func TestSceneAddWireJoinsWhenNetPointOnNewSegment(t *testing.T) {
	s := NewScene(DefaultSettings())

	a := makeWire(geometry.Point{X: 50, Y: 0}, geometry.Point{X: 50, Y: 50})
	s.AddWire(a)

	// None of b's points lies on a, but a's endpoint (50, 0) lies on
	// b's segment.
	b := makeWire(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0})
	s.AddWire(b)

	if got := len(s.Nets()); got != 1 {
		t.Fatalf("len(Nets()) = %d, want 1", got)
	}
}

func TestSceneAddWireRejectsDegenerate(t *testing.T) {
	s := NewScene(DefaultSettings())

	if s.AddWire(nil) {
		t.Error("AddWire(nil) = true, want false")
	}
	if s.AddWire(makeWire(geometry.Point{X: 0, Y: 0})) {
		t.Error("AddWire() with one point = true, want false")
	}
	if len(s.Nets()) != 0 {
		t.Errorf("len(Nets()) = %d, want 0", len(s.Nets()))
	}
}

func TestSceneRemoveWireDeletesEmptyNet(t *testing.T) {
	s := NewScene(DefaultSettings())
	w := makeWire(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0})
	s.AddWire(w)

	s.RemoveWire(w)

	if got := len(s.Nets()); got != 0 {
		t.Errorf("len(Nets()) = %d, want 0", got)
	}
	if got := len(s.Items()); got != 0 {
		t.Errorf("len(Items()) = %d, want 0", got)
	}
}

func TestSceneNodeMoveCarriesWire(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)

	w := makeWire(geometry.Point{X: 100, Y: 40}, geometry.Point{X: 200, Y: 40})
	s.AddWire(w)

	n.SetPosition(geometry.Point{X: 20, Y: 0})

	if got := w.PointAt(0).Point; !got.CloseTo(geometry.Point{X: 120, Y: 40}, attachTolerance) {
		t.Errorf("attached point = %v, want (120, 40)", got)
	}
	if got := w.PointAt(w.PointCount() - 1).Point; got != (geometry.Point{X: 200, Y: 40}) {
		t.Errorf("free end = %v, want unchanged (200, 40)", got)
	}
}

func TestSceneNodeMovePerpendicularSplitsWire(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)

	w := makeWire(geometry.Point{X: 100, Y: 40}, geometry.Point{X: 200, Y: 40})
	s.AddWire(w)

	// Moving the node down drags the attached end of the horizontal
	// wire perpendicular to it; the wire splits in the middle to keep
	// right angles.
	n.SetPosition(geometry.Point{X: 0, Y: 30})

	if got := w.PointCount(); got != 4 {
		t.Fatalf("PointCount() = %d, want 4", got)
	}
	want := []geometry.Point{
		{X: 100, Y: 70},
		{X: 150, Y: 70},
		{X: 150, Y: 40},
		{X: 200, Y: 40},
	}
	for i, p := range want {
		if got := w.PointAt(i).Point; !got.CloseTo(p, attachTolerance) {
			t.Errorf("point %d = %v, want %v", i, got, p)
		}
	}
}

func TestSceneNodeRotationCarriesWire(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)

	// Connection point before rotating sits at (100, 40).
	w := makeWire(geometry.Point{X: 100, Y: 40}, geometry.Point{X: 200, Y: 40})
	s.AddWire(w)

	n.SetRotation(90)

	// The connector lands at (60, 100) after rotating around (50, 50).
	found := false
	for i := 0; i < w.PointCount(); i++ {
		if w.PointAt(i).Point.CloseTo(geometry.Point{X: 60, Y: 100}, attachTolerance) {
			found = true
			break
		}
	}
	if !found {
		pts := make([]geometry.Point, 0, w.PointCount())
		for i := 0; i < w.PointCount(); i++ {
			pts = append(pts, w.PointAt(i).Point)
		}
		t.Errorf("no wire point at rotated connector, points = %v", pts)
	}
}

func TestSceneNetHighlightPropagation(t *testing.T) {
	s := NewScene(DefaultSettings())

	a := makeWire(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0})
	b := makeWire(geometry.Point{X: 0, Y: 200}, geometry.Point{X: 100, Y: 200})
	s.AddWire(a)
	s.AddWire(b)

	netA := s.NetForWire(a)
	netB := s.NetForWire(b)
	netA.SetName("VCC")
	netB.SetName("vcc")

	netA.SetHighlighted(true)
	if !netB.IsHighlighted() {
		t.Error("same-named net not highlighted")
	}

	netA.SetHighlighted(false)
	if netB.IsHighlighted() {
		t.Error("same-named net still highlighted")
	}
}

func TestSceneMoveWirePointReassignsNet(t *testing.T) {
	s := NewScene(DefaultSettings())

	a := makeWire(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0})
	b := makeWire(geometry.Point{X: 50, Y: 0}, geometry.Point{X: 50, Y: 50})
	s.AddWire(a)
	s.AddWire(b)
	if got := len(s.Nets()); got != 1 {
		t.Fatalf("len(Nets()) = %d, want 1", got)
	}

	s.MoveWirePoint(b, 0, geometry.Point{X: 200, Y: 200})

	if got := len(s.Nets()); got != 2 {
		t.Errorf("len(Nets()) after detach = %d, want 2", got)
	}
	if s.NetForWire(a) == s.NetForWire(b) {
		t.Error("detached wire still shares a net")
	}
}

func TestSceneWireDrawFlow(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)

	s.SetMode(WireMode)
	s.PressEvent(geometry.Point{X: 200, Y: 40})
	s.MoveEvent(geometry.Point{X: 100, Y: 40}, true, false)
	s.PressEvent(geometry.Point{X: 100, Y: 40})

	if err := s.DoubleClickEvent(geometry.Point{X: 100, Y: 40}); err != nil {
		t.Fatalf("DoubleClickEvent() error: %v", err)
	}

	if s.WireInProgress() != nil {
		t.Error("WireInProgress() != nil after finishing")
	}
	wires := s.Wires()
	if len(wires) != 1 {
		t.Fatalf("len(Wires()) = %d, want 1", len(wires))
	}
	if got := wires[0].PointCount(); got != 2 {
		t.Errorf("PointCount() = %d, want 2 after simplify", got)
	}

	// The whole draw is one undoable step.
	s.Undo()
	if len(s.Wires()) != 0 {
		t.Errorf("len(Wires()) after undo = %d, want 0", len(s.Wires()))
	}
}

func TestSceneWireDrawFloating(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)

	s.SetMode(WireMode)
	s.PressEvent(geometry.Point{X: 200, Y: 40})
	s.MoveEvent(geometry.Point{X: 300, Y: 100}, true, false)
	s.PressEvent(geometry.Point{X: 300, Y: 100})

	err := s.DoubleClickEvent(geometry.Point{X: 300, Y: 100})
	if !errors.Is(err, ErrWireFloating) {
		t.Fatalf("DoubleClickEvent() error = %v, want ErrWireFloating", err)
	}

	// Drawing continues, nothing was committed.
	if s.WireInProgress() == nil {
		t.Error("WireInProgress() = nil, drawing should continue")
	}
	if len(s.Wires()) != 0 {
		t.Errorf("len(Wires()) = %d, want 0", len(s.Wires()))
	}
}

func TestSceneLeavingWireModeDiscardsWire(t *testing.T) {
	s := NewScene(DefaultSettings())
	s.SetMode(WireMode)
	s.PressEvent(geometry.Point{X: 0, Y: 0})
	s.MoveEvent(geometry.Point{X: 100, Y: 0}, true, false)

	s.SetMode(NormalMode)
	if s.WireInProgress() != nil {
		t.Error("WireInProgress() != nil after leaving wire mode")
	}
	if len(s.Wires()) != 0 {
		t.Errorf("len(Wires()) = %d, want 0", len(s.Wires()))
	}
}

func TestSceneToggleWirePostureFlipsCorner(t *testing.T) {
	s := NewScene(DefaultSettings())
	s.SetMode(WireMode)
	s.PressEvent(geometry.Point{X: 200, Y: 40})
	s.MoveEvent(geometry.Point{X: 100, Y: 100}, true, false)

	w := s.WireInProgress()
	if w == nil {
		t.Fatal("WireInProgress() = nil, want a wire")
	}
	if got := w.PointCount(); got != 3 {
		t.Fatalf("PointCount() = %d, want 3", got)
	}
	// The default posture runs horizontally first.
	if got := w.PointAt(1).Point; got != (geometry.Point{X: 100, Y: 40}) {
		t.Errorf("corner = %v, want (100, 40)", got)
	}

	s.ToggleWirePosture()
	s.MoveEvent(geometry.Point{X: 100, Y: 100}, true, false)
	if got := w.PointAt(1).Point; got != (geometry.Point{X: 200, Y: 100}) {
		t.Errorf("corner after toggle = %v, want (200, 100)", got)
	}
}

func TestSceneMoveSelectionUndo(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)
	n.SetSelected(true)

	s.PressEvent(geometry.Point{X: 10, Y: 10})
	s.MoveEvent(geometry.Point{X: 50, Y: 30}, true, false)
	s.ReleaseEvent(geometry.Point{X: 50, Y: 30})

	if got := n.Position(); got != (geometry.Point{X: 40, Y: 20}) {
		t.Fatalf("Position() = %v, want (40, 20)", got)
	}
	if !s.IsDirty() {
		t.Error("IsDirty() = false after move, want true")
	}

	s.Undo()
	if got := n.Position(); !got.IsZero() {
		t.Errorf("Position() after undo = %v, want origin", got)
	}
	s.Redo()
	if got := n.Position(); got != (geometry.Point{X: 40, Y: 20}) {
		t.Errorf("Position() after redo = %v, want (40, 20)", got)
	}
}

func TestSceneResizeThroughEvents(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)
	n.SetSelected(true)

	s.PressEvent(geometry.Point{X: 100, Y: 100})
	if n.Mode() != InteractionResize {
		t.Fatalf("Mode() = %v, want InteractionResize", n.Mode())
	}

	s.MoveEvent(geometry.Point{X: 120, Y: 120}, true, false)
	s.ReleaseEvent(geometry.Point{X: 120, Y: 120})

	if got := n.Size(); got != (geometry.Size{Width: 120, Height: 120}) {
		t.Errorf("Size() = %v, want 120x120", got)
	}
	if n.Mode() != InteractionNone {
		t.Errorf("Mode() after release = %v, want InteractionNone", n.Mode())
	}

	s.Undo()
	if got := n.Size(); got != (geometry.Size{Width: 100, Height: 100}) {
		t.Errorf("Size() after undo = %v, want 100x100", got)
	}
}

func TestSceneRotateThroughEventsUndo(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)
	n.SetSelected(true)

	// The rotation handle floats above the top edge midpoint.
	s.PressEvent(geometry.Point{X: 50, Y: -21})
	if n.Mode() != InteractionRotate {
		t.Fatalf("Mode() = %v, want InteractionRotate", n.Mode())
	}

	s.MoveEvent(geometry.Point{X: 150, Y: 50}, true, true)
	s.ReleaseEvent(geometry.Point{X: 150, Y: 50})
	if got := n.Rotation(); got != 90 {
		t.Fatalf("Rotation() = %v, want 90", got)
	}

	s.Undo()
	if got := n.Rotation(); got != 0 {
		t.Errorf("Rotation() after undo = %v, want 0", got)
	}
	s.Redo()
	if got := n.Rotation(); got != 90 {
		t.Errorf("Rotation() after redo = %v, want 90", got)
	}
}

func TestSceneItemsAtTopmostFirst(t *testing.T) {
	s := NewScene(DefaultSettings())
	bottom := testNode()
	top := testNode()
	s.AddItem(bottom)
	s.AddItem(top)

	hits := s.ItemsAt(geometry.Point{X: 50, Y: 50})
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0] != Item(top) {
		t.Error("topmost item not first")
	}
}

func TestSceneNetsByNameCaseInsensitive(t *testing.T) {
	s := NewScene(DefaultSettings())
	w := makeWire(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0})
	s.AddWire(w)
	s.NetForWire(w).SetName("Data0")

	if got := len(s.NetsByName("DATA0")); got != 1 {
		t.Errorf("len(NetsByName(DATA0)) = %d, want 1", got)
	}
	if got := len(s.NetsByName("")); got != 0 {
		t.Errorf("len(NetsByName(empty)) = %d, want 0", got)
	}
}

func TestSceneClear(t *testing.T) {
	s := NewScene(DefaultSettings())
	n := testNode()
	s.AddItem(n)
	s.AddWire(makeWire(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0}))

	s.Clear()

	if len(s.Items()) != 0 || len(s.Nets()) != 0 {
		t.Error("Clear() left items or nets behind")
	}
	if s.IsDirty() {
		t.Error("IsDirty() = true after Clear(), want false")
	}
	if n.OnMoved != nil {
		t.Error("node observers not detached")
	}
}
