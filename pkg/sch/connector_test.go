package sch

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/record"
)

func TestConnectorSnapPolicies(t *testing.T) {
	size := geometry.Size{Width: 100, Height: 100}

	tests := []struct {
		name   string
		policy SnapPolicy
		pos    geometry.Point
		path   []geometry.Point
		want   geometry.Point
	}{
		{
			name:   "anywhere keeps position",
			policy: SnapAnywhere,
			pos:    geometry.Point{X: 30, Y: 40},
			want:   geometry.Point{X: 30, Y: 40},
		},
		{
			name:   "bounding box clamps outside position",
			policy: SnapBoundingBox,
			pos:    geometry.Point{X: 150, Y: 50},
			want:   geometry.Point{X: 100, Y: 50},
		},
		{
			name:   "bounding box keeps inside position",
			policy: SnapBoundingBox,
			pos:    geometry.Point{X: 30, Y: 40},
			want:   geometry.Point{X: 30, Y: 40},
		},
		{
			name:   "outline projects onto nearest edge",
			policy: SnapBoundingBoxOutline,
			pos:    geometry.Point{X: 30, Y: 40},
			want:   geometry.Point{X: 0, Y: 40},
		},
		{
			name:   "shape projects onto custom path",
			policy: SnapShape,
			pos:    geometry.Point{X: 50, Y: 0},
			path:   []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 100}},
			want:   geometry.Point{X: 25, Y: 25},
		},
		{
			name:   "shape without path falls back to outline",
			policy: SnapShape,
			pos:    geometry.Point{X: 30, Y: 40},
			want:   geometry.Point{X: 0, Y: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConnector(tt.pos, "p")
			c.snapPolicy = tt.policy
			c.update(size, tt.path)
			if got := c.ConnectionPoint(); !got.FuzzyEqual(tt.want) {
				t.Errorf("ConnectionPoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConnectorLabelDirection(t *testing.T) {
	size := geometry.Size{Width: 100, Height: 100}

	tests := []struct {
		name string
		pos  geometry.Point
		want LabelDirection
	}{
		{"near left edge", geometry.Point{X: 5, Y: 50}, LabelLeft},
		{"near right edge", geometry.Point{X: 95, Y: 50}, LabelRight},
		{"near top edge", geometry.Point{X: 50, Y: 5}, LabelUp},
		{"near bottom edge", geometry.Point{X: 50, Y: 95}, LabelDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConnector(tt.pos, "p")
			c.update(size, nil)
			if got := c.LabelDirection(); got != tt.want {
				t.Errorf("LabelDirection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConnectorSetSnapPolicyRecomputes(t *testing.T) {
	c := NewConnector(geometry.Point{X: 30, Y: 40}, "p")
	c.update(geometry.Size{Width: 100, Height: 100}, nil)

	if got := c.ConnectionPoint(); !got.FuzzyEqual(geometry.Point{X: 0, Y: 40}) {
		t.Fatalf("outline ConnectionPoint() = %v, want (0, 40)", got)
	}

	c.SetSnapPolicy(SnapAnywhere)
	if got := c.ConnectionPoint(); !got.FuzzyEqual(geometry.Point{X: 30, Y: 40}) {
		t.Errorf("anywhere ConnectionPoint() = %v, want (30, 40)", got)
	}
}

func TestConnectorRecordRoundTrip(t *testing.T) {
	c := NewConnector(geometry.Point{X: 100, Y: 40}, "data_out")
	c.SetMovable(true)
	c.SetSnapToGrid(true)

	restored, err := connectorFromRecord(c.ToRecord())
	if err != nil {
		t.Fatalf("connectorFromRecord() error: %v", err)
	}
	if restored.UUID() != c.UUID() {
		t.Errorf("UUID = %v, want %v", restored.UUID(), c.UUID())
	}
	if restored.Position() != c.Position() {
		t.Errorf("Position() = %v, want %v", restored.Position(), c.Position())
	}
	if restored.Text() != "data_out" {
		t.Errorf("Text() = %q, want %q", restored.Text(), "data_out")
	}
	if !restored.IsMovable() || !restored.SnapsToGrid() {
		t.Error("movable/snap flags lost in round trip")
	}
}

func TestConnectorFromRecordMissingPosition(t *testing.T) {
	r := record.New()
	r.AddStr("text", "p")

	if _, err := connectorFromRecord(r); err == nil {
		t.Error("connectorFromRecord() without coordinates: expected error")
	}
}
