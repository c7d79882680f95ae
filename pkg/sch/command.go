package sch

import (
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
)

// Command is a reversible document edit.
type Command interface {
	// Label is a short human-readable description of the edit.
	Label() string
	Apply()
	Revert()
}

// CommandStack is a linear undo/redo history. Pushing a command
// applies it and discards any redoable commands beyond the current
// position.
type CommandStack struct {
	commands   []Command
	index      int
	cleanIndex int

	// OnCleanChanged fires when the stack transitions between clean
	// and dirty.
	OnCleanChanged func(clean bool)
}

// NewCommandStack creates an empty stack in the clean state.
func NewCommandStack() *CommandStack {
	return &CommandStack{}
}

// Push applies the command and records it.
func (s *CommandStack) Push(c Command) {
	if c == nil {
		return
	}
	wasClean := s.IsClean()
	// The clean state is unreachable once it sits in the truncated
	// redo branch.
	if s.cleanIndex > s.index {
		s.cleanIndex = -1
	}
	s.commands = append(s.commands[:s.index], c)
	s.index++
	c.Apply()
	s.notifyClean(wasClean)
}

// CanUndo reports whether an undoable command exists.
func (s *CommandStack) CanUndo() bool { return s.index > 0 }

// CanRedo reports whether a redoable command exists.
func (s *CommandStack) CanRedo() bool { return s.index < len(s.commands) }

// Undo reverts the most recent command. It reports whether a command
// was reverted.
func (s *CommandStack) Undo() bool {
	if !s.CanUndo() {
		return false
	}
	wasClean := s.IsClean()
	s.index--
	s.commands[s.index].Revert()
	s.notifyClean(wasClean)
	return true
}

// Redo re-applies the most recently undone command. It reports whether
// a command was applied.
func (s *CommandStack) Redo() bool {
	if !s.CanRedo() {
		return false
	}
	wasClean := s.IsClean()
	s.commands[s.index].Apply()
	s.index++
	s.notifyClean(wasClean)
	return true
}

// IsClean reports whether the document matches its last saved state.
func (s *CommandStack) IsClean() bool { return s.index == s.cleanIndex }

// SetClean marks the current position as the saved state.
func (s *CommandStack) SetClean() {
	wasClean := s.IsClean()
	s.cleanIndex = s.index
	s.notifyClean(wasClean)
}

// Clear drops the whole history and marks the stack clean.
func (s *CommandStack) Clear() {
	wasClean := s.IsClean()
	s.commands = nil
	s.index = 0
	s.cleanIndex = 0
	s.notifyClean(wasClean)
}

func (s *CommandStack) notifyClean(wasClean bool) {
	if s.OnCleanChanged != nil && wasClean != s.IsClean() {
		s.OnCleanChanged(s.IsClean())
	}
}

// MoveItemsCommand translates a group of items by a common offset.
type MoveItemsCommand struct {
	Items  []Item
	MoveBy geometry.Point
}

func (c *MoveItemsCommand) Label() string { return "move items" }

func (c *MoveItemsCommand) Apply() {
	for _, it := range c.Items {
		it.SetPosition(it.Position().Add(c.MoveBy))
	}
}

func (c *MoveItemsCommand) Revert() {
	for _, it := range c.Items {
		it.SetPosition(it.Position().Sub(c.MoveBy))
	}
}

// ResizeNodeCommand changes a node's position and size in one step.
// Size is applied before position so connector clamping sees the final
// geometry.
type ResizeNodeCommand struct {
	Node    *Node
	OldPos  geometry.Point
	OldSize geometry.Size
	NewPos  geometry.Point
	NewSize geometry.Size
}

func (c *ResizeNodeCommand) Label() string { return "resize node" }

func (c *ResizeNodeCommand) Apply() {
	c.Node.SetSize(c.NewSize)
	c.Node.SetPosition(c.NewPos)
}

func (c *ResizeNodeCommand) Revert() {
	c.Node.SetSize(c.OldSize)
	c.Node.SetPosition(c.OldPos)
}

// RotateNodeCommand changes a node's rotation.
type RotateNodeCommand struct {
	Node        *Node
	OldRotation float64
	NewRotation float64
}

func (c *RotateNodeCommand) Label() string { return "rotate node" }

func (c *RotateNodeCommand) Apply()  { c.Node.SetRotation(c.NewRotation) }
func (c *RotateNodeCommand) Revert() { c.Node.SetRotation(c.OldRotation) }

// AddItemCommand adds an item to a scene and removes it again on
// revert.
type AddItemCommand struct {
	Scene *Scene
	Item  Item
}

func (c *AddItemCommand) Label() string { return "add item" }

func (c *AddItemCommand) Apply() {
	if w, ok := c.Item.(*Wire); ok {
		c.Scene.AddWire(w)
		return
	}
	c.Scene.AddItem(c.Item)
}

func (c *AddItemCommand) Revert() {
	if w, ok := c.Item.(*Wire); ok {
		c.Scene.RemoveWire(w)
		return
	}
	c.Scene.RemoveItem(c.Item.ID())
}
