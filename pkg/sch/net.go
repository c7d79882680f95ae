package sch

import (
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/record"
)

// Net groups electrically connected wires under an optional name.
type Net struct {
	name        string
	highlighted bool
	wires       []*Wire

	// OnHighlightChanged fires when the highlight state changes.
	OnHighlightChanged func(n *Net, highlighted bool)

	blockSignals bool
}

// NewNet creates an empty net.
func NewNet() *Net {
	return &Net{}
}

// Name returns the net name. Unnamed nets return the empty string.
func (n *Net) Name() string { return n.name }

// SetName renames the net.
func (n *Net) SetName(name string) { n.name = name }

// WireCount returns the number of wires in the net.
func (n *Net) WireCount() int { return len(n.wires) }

// Wires returns a copy of the wire list.
func (n *Net) Wires() []*Wire {
	out := make([]*Wire, len(n.wires))
	copy(out, n.wires)
	return out
}

// Contains reports whether the wire belongs to this net.
func (n *Net) Contains(w *Wire) bool {
	for _, x := range n.wires {
		if x == w {
			return true
		}
	}
	return false
}

// AddWire adds a wire to the net. Adding a wire twice is a no-op.
func (n *Net) AddWire(w *Wire) {
	if w == nil || n.Contains(w) {
		return
	}
	n.wires = append(n.wires, w)
}

// RemoveWire removes a wire from the net.
func (n *Net) RemoveWire(w *Wire) {
	for i, x := range n.wires {
		if x == w {
			n.wires = append(n.wires[:i], n.wires[i+1:]...)
			return
		}
	}
}

// LineSegments returns the segments of all member wires.
func (n *Net) LineSegments() []geometry.Line {
	var segs []geometry.Line
	for _, w := range n.wires {
		segs = append(segs, w.LineSegments()...)
	}
	return segs
}

// Simplify simplifies every member wire.
func (n *Net) Simplify() {
	for _, w := range n.wires {
		w.Simplify()
	}
}

// IsHighlighted reports the highlight state.
func (n *Net) IsHighlighted() bool { return n.highlighted }

// SetHighlighted changes the highlight state, notifying the observer
// on an actual change.
func (n *Net) SetHighlighted(v bool) {
	if n.highlighted == v {
		return
	}
	n.highlighted = v
	if n.OnHighlightChanged != nil && !n.blockSignals {
		n.OnHighlightChanged(n, v)
	}
}

// setHighlightedSilently changes the highlight state without firing
// the observer. Used when propagating highlights between same-named
// nets to avoid feedback loops.
func (n *Net) setHighlightedSilently(v bool) {
	n.blockSignals = true
	n.SetHighlighted(v)
	n.blockSignals = false
}

// ToRecord serializes the net.
func (n *Net) ToRecord() *record.Record {
	r := record.New()
	r.AddStr("name", n.name)
	wires := record.New()
	for _, w := range n.wires {
		wires.AddChild("wire", w.ToRecord())
	}
	r.AddChild("wires", wires)
	return r
}

// netFromRecord restores a net and its wires. Malformed wires are
// skipped and reported as warnings.
func netFromRecord(r *record.Record) (*Net, []string) {
	n := NewNet()
	n.name = r.StrOr("name", "")
	var warnings []string
	if wires := r.Child("wires"); wires != nil {
		for _, wr := range wires.Children("wire") {
			w, err := wireFromRecord(wr)
			if err != nil {
				warnings = append(warnings, "skipping wire: "+err.Error())
				continue
			}
			n.AddWire(w)
		}
	}
	return n, warnings
}
