package sch

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/record"
)

// SnapPolicy selects how a connector derives its connection point from
// its position on the owning node.
type SnapPolicy int

const (
	// SnapAnywhere uses the connector position as-is.
	SnapAnywhere SnapPolicy = iota
	// SnapBoundingBox clamps the position into the node's bounding box.
	SnapBoundingBox
	// SnapBoundingBoxOutline projects the position onto the nearest
	// edge of the node's bounding box.
	SnapBoundingBoxOutline
	// SnapShape projects onto the node's custom outline path. Nodes
	// without a custom outline behave like SnapBoundingBoxOutline.
	SnapShape
)

// LabelDirection says which side of the node a connector label faces.
type LabelDirection int

const (
	LabelUp LabelDirection = iota
	LabelDown
	LabelLeft
	LabelRight
)

// Connector is an attachment point on a node. Positions are in the
// node's local, unrotated coordinate frame.
type Connector struct {
	uid        uuid.UUID
	pos        geometry.Point
	snapPolicy SnapPolicy
	text       string
	labelDir   LabelDirection
	movable    bool
	snapToGrid bool

	// connPoint is the cached connection point, recomputed whenever
	// the position, policy, or owning node geometry changes.
	connPoint geometry.Point
	nodeSize  geometry.Size
	nodePath  []geometry.Point
}

// NewConnector creates a connector at the given node-local position.
func NewConnector(pos geometry.Point, text string) *Connector {
	c := &Connector{
		uid:        uuid.New(),
		pos:        pos,
		snapPolicy: SnapBoundingBoxOutline,
		text:       text,
		connPoint:  pos,
	}
	return c
}

// UUID returns the connector's persistent identity.
func (c *Connector) UUID() uuid.UUID { return c.uid }

// Position returns the node-local position.
func (c *Connector) Position() geometry.Point { return c.pos }

// SetPosition moves the connector and recomputes the connection point.
func (c *Connector) SetPosition(p geometry.Point) {
	c.pos = p
	c.recompute()
}

// Text returns the connector label.
func (c *Connector) Text() string { return c.text }

// SetText sets the connector label.
func (c *Connector) SetText(text string) { c.text = text }

// SnapPolicy returns the active snap policy.
func (c *Connector) SnapPolicy() SnapPolicy { return c.snapPolicy }

// SetSnapPolicy changes the snap policy and recomputes the connection
// point against the last known node geometry.
func (c *Connector) SetSnapPolicy(p SnapPolicy) {
	c.snapPolicy = p
	c.recompute()
}

// IsMovable reports whether the connector may be dragged on its node.
func (c *Connector) IsMovable() bool { return c.movable }

// SetMovable sets whether the connector may be dragged on its node.
func (c *Connector) SetMovable(v bool) { c.movable = v }

// SnapsToGrid reports whether connector drags snap to the grid.
func (c *Connector) SnapsToGrid() bool { return c.snapToGrid }

// SetSnapToGrid sets whether connector drags snap to the grid.
func (c *Connector) SetSnapToGrid(v bool) { c.snapToGrid = v }

// LabelDirection returns the side the label currently faces.
func (c *Connector) LabelDirection() LabelDirection { return c.labelDir }

// ConnectionPoint returns the node-local point wires attach to.
func (c *Connector) ConnectionPoint() geometry.Point { return c.connPoint }

// update refreshes the cached connection point for new node geometry.
func (c *Connector) update(nodeSize geometry.Size, nodePath []geometry.Point) {
	c.nodeSize = nodeSize
	c.nodePath = nodePath
	c.recompute()
}

func (c *Connector) recompute() {
	rect := geometry.Rect{Width: c.nodeSize.Width, Height: c.nodeSize.Height}
	switch c.snapPolicy {
	case SnapAnywhere:
		c.connPoint = c.pos
	case SnapBoundingBox:
		c.connPoint = clampToRect(c.pos, rect)
	case SnapBoundingBoxOutline:
		c.connPoint = snapToRectOutline(c.pos, rect)
	case SnapShape:
		if len(c.nodePath) >= 2 {
			c.connPoint = snapToPath(c.pos, c.nodePath)
		} else {
			c.connPoint = snapToRectOutline(c.pos, rect)
		}
	default:
		c.connPoint = c.pos
	}
	c.alignLabel(rect)
}

// alignLabel points the label away from the nearest node edge.
func (c *Connector) alignLabel(rect geometry.Rect) {
	p := c.connPoint
	distances := [4]float64{
		p.Y - rect.Top(),    // up
		rect.Bottom() - p.Y, // down
		p.X - rect.Left(),   // left
		rect.Right() - p.X,  // right
	}
	best := 0
	for i := 1; i < 4; i++ {
		if distances[i] < distances[best] {
			best = i
		}
	}
	switch best {
	case 0:
		c.labelDir = LabelUp
	case 1:
		c.labelDir = LabelDown
	case 2:
		c.labelDir = LabelLeft
	case 3:
		c.labelDir = LabelRight
	}
}

func clampToRect(p geometry.Point, r geometry.Rect) geometry.Point {
	x := math.Min(math.Max(p.X, r.Left()), r.Right())
	y := math.Min(math.Max(p.Y, r.Top()), r.Bottom())
	return geometry.Point{X: x, Y: y}
}

func snapToRectOutline(p geometry.Point, r geometry.Rect) geometry.Point {
	edges := [4]geometry.Line{
		{P1: r.TopLeft(), P2: r.TopRight()},
		{P1: r.TopRight(), P2: r.BottomRight()},
		{P1: r.BottomRight(), P2: r.BottomLeft()},
		{P1: r.BottomLeft(), P2: r.TopLeft()},
	}
	best := nearestPointOnSegment(p, edges[0])
	bestDist := p.Distance(best)
	for _, e := range edges[1:] {
		q := nearestPointOnSegment(p, e)
		if d := p.Distance(q); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best
}

func snapToPath(p geometry.Point, path []geometry.Point) geometry.Point {
	best := path[0]
	bestDist := p.Distance(best)
	for i := 0; i+1 < len(path); i++ {
		q := nearestPointOnSegment(p, geometry.Line{P1: path[i], P2: path[i+1]})
		if d := p.Distance(q); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best
}

func nearestPointOnSegment(p geometry.Point, l geometry.Line) geometry.Point {
	d := l.P2.Sub(l.P1)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return l.P1
	}
	t := (p.Sub(l.P1).Dot(d)) / lenSq
	t = math.Min(math.Max(t, 0), 1)
	return l.P1.Add(d.Scale(t))
}

// ToRecord serializes the connector.
func (c *Connector) ToRecord() *record.Record {
	r := record.New()
	r.AddStr("uuid", c.uid.String())
	r.AddFloat("x", c.pos.X)
	r.AddFloat("y", c.pos.Y)
	r.AddStr("text", c.text)
	r.AddInt("snap_policy", int(c.snapPolicy))
	r.AddBool("movable", c.movable)
	r.AddBool("snap_to_grid", c.snapToGrid)
	return r
}

// connectorFromRecord restores a connector from its serialized form.
// Missing fields fall back to defaults, but a connector with neither
// coordinate is rejected.
func connectorFromRecord(r *record.Record) (*Connector, error) {
	if !r.Has("x") && !r.Has("y") {
		return nil, fmt.Errorf("connector record has no position")
	}
	c := NewConnector(geometry.Point{
		X: r.FloatOr("x", 0),
		Y: r.FloatOr("y", 0),
	}, r.StrOr("text", ""))
	if s := r.StrOr("uuid", ""); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			c.uid = id
		}
	}
	c.snapPolicy = SnapPolicy(r.IntOr("snap_policy", int(SnapBoundingBoxOutline)))
	c.movable = r.BoolOr("movable", false)
	c.snapToGrid = r.BoolOr("snap_to_grid", false)
	return c, nil
}
