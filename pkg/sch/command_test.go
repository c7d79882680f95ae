package sch

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
)

type countingCommand struct {
	applied  int
	reverted int
}

func (c *countingCommand) Label() string { return "counting" }
func (c *countingCommand) Apply()        { c.applied++ }
func (c *countingCommand) Revert()       { c.reverted++ }

func TestCommandStackUndoRedo(t *testing.T) {
	s := NewCommandStack()
	c1 := &countingCommand{}
	c2 := &countingCommand{}

	s.Push(c1)
	s.Push(c2)
	if c1.applied != 1 || c2.applied != 1 {
		t.Fatalf("applied = %d, %d, want 1, 1", c1.applied, c2.applied)
	}

	if !s.Undo() {
		t.Fatal("Undo() = false, want true")
	}
	if c2.reverted != 1 {
		t.Errorf("c2.reverted = %d, want 1", c2.reverted)
	}

	if !s.Redo() {
		t.Fatal("Redo() = false, want true")
	}
	if c2.applied != 2 {
		t.Errorf("c2.applied = %d, want 2", c2.applied)
	}

	s.Undo()
	s.Undo()
	if s.CanUndo() {
		t.Error("CanUndo() on empty history = true, want false")
	}
	if s.Undo() {
		t.Error("Undo() on empty history = true, want false")
	}
}

func TestCommandStackPushTruncatesRedo(t *testing.T) {
	s := NewCommandStack()
	c1 := &countingCommand{}
	c2 := &countingCommand{}
	c3 := &countingCommand{}

	s.Push(c1)
	s.Push(c2)
	s.Undo()
	s.Push(c3)

	if s.CanRedo() {
		t.Error("CanRedo() after push = true, want false")
	}
	if s.Redo() {
		t.Error("Redo() after push = true, want false")
	}
}

func TestCommandStackCleanState(t *testing.T) {
	s := NewCommandStack()
	var transitions []bool
	s.OnCleanChanged = func(clean bool) { transitions = append(transitions, clean) }

	if !s.IsClean() {
		t.Fatal("new stack is dirty")
	}

	s.Push(&countingCommand{})
	if s.IsClean() {
		t.Error("IsClean() after push = true, want false")
	}

	s.SetClean()
	if !s.IsClean() {
		t.Error("IsClean() after SetClean = false, want true")
	}

	s.Undo()
	if s.IsClean() {
		t.Error("IsClean() after undo = true, want false")
	}

	s.Redo()
	if !s.IsClean() {
		t.Error("IsClean() after redo back to saved state = false, want true")
	}

	want := []bool{false, true, false, true}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestCommandStackCleanUnreachableAfterTruncate(t *testing.T) {
	s := NewCommandStack()
	s.Push(&countingCommand{})
	s.Push(&countingCommand{})
	s.SetClean()
	s.Undo()
	s.Push(&countingCommand{})

	if s.IsClean() {
		t.Error("IsClean() = true, want false")
	}
	s.Undo()
	if s.IsClean() {
		t.Error("IsClean() after undo = true, truncated clean state must stay unreachable")
	}
}

func TestMoveItemsCommand(t *testing.T) {
	n := NewNode()
	cmd := &MoveItemsCommand{
		Items:  []Item{n},
		MoveBy: geometry.Point{X: 20, Y: -10},
	}

	cmd.Apply()
	if got := n.Position(); got != (geometry.Point{X: 20, Y: -10}) {
		t.Errorf("Position() = %v, want (20, -10)", got)
	}

	cmd.Revert()
	if got := n.Position(); !got.IsZero() {
		t.Errorf("Position() after revert = %v, want origin", got)
	}
}

func TestAddItemCommandWire(t *testing.T) {
	scene := NewScene(DefaultSettings())

	w := NewWire()
	w.AppendPoint(geometry.Point{X: 0, Y: 0})
	w.AppendPoint(geometry.Point{X: 40, Y: 0})

	scene.PushCommand(&AddItemCommand{Scene: scene, Item: w})
	if len(scene.Wires()) != 1 {
		t.Fatalf("len(Wires()) = %d, want 1", len(scene.Wires()))
	}
	if len(scene.Nets()) != 1 {
		t.Fatalf("len(Nets()) = %d, want 1", len(scene.Nets()))
	}

	scene.Undo()
	if len(scene.Wires()) != 0 {
		t.Errorf("len(Wires()) after undo = %d, want 0", len(scene.Wires()))
	}
	if len(scene.Nets()) != 0 {
		t.Errorf("len(Nets()) after undo = %d, want 0", len(scene.Nets()))
	}

	scene.Redo()
	if len(scene.Wires()) != 1 {
		t.Errorf("len(Wires()) after redo = %d, want 1", len(scene.Wires()))
	}
}
