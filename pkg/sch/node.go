package sch

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/record"
)

// Default node dimensions in scene units.
const (
	DefaultNodeWidth  = 160.0
	DefaultNodeHeight = 240.0
)

// InteractionMode is the node's current direct-manipulation state.
type InteractionMode int

const (
	InteractionNone InteractionMode = iota
	InteractionResize
	InteractionRotate
)

// ResizeHandle identifies one of the eight compass resize handles.
type ResizeHandle int

const (
	HandleTopLeft ResizeHandle = iota
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
)

// handleOrder fixes the hit-test priority of the resize handles.
var handleOrder = [...]ResizeHandle{
	HandleTopLeft, HandleTop, HandleTopRight, HandleRight,
	HandleBottomRight, HandleBottom, HandleBottomLeft, HandleLeft,
}

// Node is a rectangular schematic element carrying connectors. It can
// be moved, resized via eight handles and rotated around its center.
type Node struct {
	itemBase
	size     geometry.Size
	rotation float64

	allowResize bool
	allowRotate bool

	connectors          []*Connector
	connectorsMovable   bool
	connectorSnapPolicy SnapPolicy
	connectorSnapToGrid bool
	shapePath           []geometry.Point

	mode               InteractionMode
	activeHandle       ResizeHandle
	lastInteractionPos geometry.Point

	// OnMoved fires after SetPosition with the applied displacement.
	OnMoved func(n *Node, movedBy geometry.Point)

	// OnRotated fires after SetRotation with the rotation delta in
	// degrees.
	OnRotated func(n *Node, delta float64)
}

// NewNode creates a node with the default size.
func NewNode() *Node {
	return &Node{
		itemBase:            newItemBase(),
		size:                geometry.Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight},
		allowResize:         true,
		allowRotate:         true,
		connectorsMovable:   false,
		connectorSnapPolicy: SnapBoundingBoxOutline,
	}
}

// Size returns the node dimensions.
func (n *Node) Size() geometry.Size { return n.size }

// Rotation returns the rotation in degrees, normalized to [0, 360).
func (n *Node) Rotation() float64 { return n.rotation }

// AllowsResize reports whether resize interactions are enabled.
func (n *Node) AllowsResize() bool { return n.allowResize }

// SetAllowResize enables or disables resize interactions.
func (n *Node) SetAllowResize(v bool) { n.allowResize = v }

// AllowsRotate reports whether rotate interactions are enabled.
func (n *Node) AllowsRotate() bool { return n.allowRotate }

// SetAllowRotate enables or disables rotate interactions.
func (n *Node) SetAllowRotate(v bool) { n.allowRotate = v }

// Mode returns the current interaction mode.
func (n *Node) Mode() InteractionMode { return n.mode }

// SetPosition moves the node and notifies the observer with the
// displacement. Invalid positions are rejected.
func (n *Node) SetPosition(p geometry.Point) {
	if !p.IsValid() {
		assertf(false, "node position %v is not finite", p)
		return
	}
	movedBy := p.Sub(n.pos)
	if movedBy.IsZero() {
		return
	}
	n.pos = p
	if n.OnMoved != nil {
		n.OnMoved(n, movedBy)
	}
}

// SetRotation rotates the node to an absolute angle in degrees. The
// angle is normalized into [0, 360) and the observer receives the
// delta from the previous angle.
func (n *Node) SetRotation(degrees float64) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		assertf(false, "node rotation %v is not finite", degrees)
		return
	}
	norm := math.Mod(degrees, 360)
	if norm < 0 {
		norm += 360
	}
	if norm == n.rotation {
		return
	}
	delta := norm - n.rotation
	n.rotation = norm
	if n.OnRotated != nil {
		n.OnRotated(n, delta)
	}
}

// SetSize resizes the node. Sizes below 1x1 or non-finite values are
// rejected. Connectors sitting on (or pushed past) a moving edge ride
// along with it.
func (n *Node) SetSize(s geometry.Size) {
	if !s.IsValid() || s.Width < 1 || s.Height < 1 {
		assertf(false, "node size %v is invalid", s)
		return
	}
	old := n.size
	n.size = s
	for _, c := range n.connectors {
		p := c.pos
		if geometry.FuzzyZero(p.X-old.Width) || p.X > s.Width {
			p.X = s.Width
		}
		if geometry.FuzzyZero(p.Y-old.Height) || p.Y > s.Height {
			p.Y = s.Height
		}
		if p.X < 0 {
			p.X = 0
		}
		if p.Y < 0 {
			p.Y = 0
		}
		c.pos = p
		c.update(s, n.shapePath)
	}
}

// SizeRect returns the node rectangle in local coordinates.
func (n *Node) SizeRect() geometry.Rect {
	return geometry.Rect{Width: n.size.Width, Height: n.size.Height}
}

// TransformOrigin returns the local point the node rotates around.
func (n *Node) TransformOrigin() geometry.Point {
	return n.SizeRect().Center()
}

// ShapePath returns the node's custom outline, or nil when the node
// uses its bounding rectangle.
func (n *Node) ShapePath() []geometry.Point {
	out := make([]geometry.Point, len(n.shapePath))
	copy(out, n.shapePath)
	return out
}

// SetShapePath installs a custom outline in local coordinates and
// refreshes connectors using shape snapping.
func (n *Node) SetShapePath(path []geometry.Point) {
	n.shapePath = make([]geometry.Point, len(path))
	copy(n.shapePath, path)
	for _, c := range n.connectors {
		c.update(n.size, n.shapePath)
	}
}

// AddConnector attaches a connector to the node, applying the node's
// connector configuration.
func (n *Node) AddConnector(c *Connector) {
	if c == nil {
		return
	}
	c.SetMovable(n.connectorsMovable)
	c.snapPolicy = n.connectorSnapPolicy
	c.SetSnapToGrid(n.connectorSnapToGrid)
	c.update(n.size, n.shapePath)
	n.connectors = append(n.connectors, c)
}

// Connectors returns a copy of the connector list.
func (n *Node) Connectors() []*Connector {
	out := make([]*Connector, len(n.connectors))
	copy(out, n.connectors)
	return out
}

// SetConnectorsMovable applies a movable flag to all present and
// future connectors.
func (n *Node) SetConnectorsMovable(v bool) {
	n.connectorsMovable = v
	for _, c := range n.connectors {
		c.SetMovable(v)
	}
}

// SetConnectorsSnapPolicy applies a snap policy to all present and
// future connectors.
func (n *Node) SetConnectorsSnapPolicy(p SnapPolicy) {
	n.connectorSnapPolicy = p
	for _, c := range n.connectors {
		c.SetSnapPolicy(p)
	}
}

// SetConnectorsSnapToGrid applies a grid snap flag to all present and
// future connectors.
func (n *Node) SetConnectorsSnapToGrid(v bool) {
	n.connectorSnapToGrid = v
	for _, c := range n.connectors {
		c.SetSnapToGrid(v)
	}
}

// ConnectionPointsRelative returns the connection points in node-local
// coordinates with the node rotation applied.
func (n *Node) ConnectionPointsRelative() []geometry.Point {
	origin := n.TransformOrigin()
	out := make([]geometry.Point, 0, len(n.connectors))
	for _, c := range n.connectors {
		out = append(out, c.ConnectionPoint().RotateAround(origin, n.rotation))
	}
	return out
}

// ConnectionPointsAbsolute returns the connection points in scene
// coordinates.
func (n *Node) ConnectionPointsAbsolute() []geometry.Point {
	pts := n.ConnectionPointsRelative()
	for i := range pts {
		pts[i] = pts[i].Add(n.pos)
	}
	return pts
}

// ToLocal maps a scene point into the node's unrotated local frame.
func (n *Node) ToLocal(p geometry.Point) geometry.Point {
	return p.Sub(n.pos).RotateAround(n.TransformOrigin(), -n.rotation)
}

// BoundingRect returns the scene-space bounding rectangle of the
// rotated node.
func (n *Node) BoundingRect() geometry.Rect {
	origin := n.TransformOrigin()
	r := n.SizeRect()
	corners := [4]geometry.Point{
		r.TopLeft(), r.TopRight(), r.BottomRight(), r.BottomLeft(),
	}
	first := corners[0].RotateAround(origin, n.rotation)
	minX, minY := first.X, first.Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		p := c.RotateAround(origin, n.rotation)
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return geometry.Rect{
		X:      n.pos.X + minX,
		Y:      n.pos.Y + minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// HitTest reports whether the scene point lies inside the node body.
func (n *Node) HitTest(p geometry.Point) bool {
	return n.SizeRect().Contains(n.ToLocal(p))
}

// ResizeHandles returns the handle hit rectangles in local
// coordinates. Mid-side handles are omitted when the side is too short
// to fit them comfortably.
func (n *Node) ResizeHandles(cfg Settings) map[ResizeHandle]geometry.Rect {
	hs := cfg.ResizeHandleSize
	w, h := n.size.Width, n.size.Height
	handles := map[ResizeHandle]geometry.Rect{
		HandleTopLeft:     handleRect(geometry.Point{X: 0, Y: 0}, hs),
		HandleTopRight:    handleRect(geometry.Point{X: w, Y: 0}, hs),
		HandleBottomRight: handleRect(geometry.Point{X: w, Y: h}, hs),
		HandleBottomLeft:  handleRect(geometry.Point{X: 0, Y: h}, hs),
	}
	if w > 7*hs {
		handles[HandleTop] = handleRect(geometry.Point{X: w / 2, Y: 0}, hs)
		handles[HandleBottom] = handleRect(geometry.Point{X: w / 2, Y: h}, hs)
	}
	if h > 7*hs {
		handles[HandleLeft] = handleRect(geometry.Point{X: 0, Y: h / 2}, hs)
		handles[HandleRight] = handleRect(geometry.Point{X: w, Y: h / 2}, hs)
	}
	return handles
}

// RotationHandle returns the rotate handle hit rectangle in local
// coordinates, floating above the top edge midpoint.
func (n *Node) RotationHandle(cfg Settings) geometry.Rect {
	hs := cfg.ResizeHandleSize
	anchor := geometry.Point{X: n.size.Width / 2, Y: -3 * hs}
	return handleRect(anchor, hs)
}

func handleRect(center geometry.Point, hs float64) geometry.Rect {
	return geometry.Rect{
		X:      center.X - hs,
		Y:      center.Y - hs,
		Width:  2 * hs,
		Height: 2 * hs,
	}
}

// PressAt begins a resize or rotate interaction if the scene point
// hits one of the node's handles. It reports whether an interaction
// started.
func (n *Node) PressAt(scenePos geometry.Point, cfg Settings) bool {
	local := n.ToLocal(scenePos)
	if n.allowResize {
		handles := n.ResizeHandles(cfg)
		for _, h := range handleOrder {
			rect, ok := handles[h]
			if !ok {
				continue
			}
			if rect.Contains(local) {
				n.mode = InteractionResize
				n.activeHandle = h
				n.lastInteractionPos = n.snapIfEnabled(scenePos, cfg)
				return true
			}
		}
	}
	if n.allowRotate && n.RotationHandle(cfg).Contains(local) {
		n.mode = InteractionRotate
		n.lastInteractionPos = scenePos
		return true
	}
	return false
}

// DragTo advances an active resize or rotate interaction to the given
// scene position. It returns a command describing the change, or false
// when nothing changed. snapAngle constrains rotation to 15 degree
// steps.
func (n *Node) DragTo(scenePos geometry.Point, snapAngle bool, cfg Settings) (Command, bool) {
	switch n.mode {
	case InteractionResize:
		return n.dragResize(scenePos, cfg)
	case InteractionRotate:
		return n.dragRotate(scenePos, snapAngle)
	default:
		return nil, false
	}
}

func (n *Node) dragResize(scenePos geometry.Point, cfg Settings) (Command, bool) {
	assertf(n.allowResize, "resize drag on non-resizable node")
	if !n.allowResize {
		return nil, false
	}
	pos := n.snapIfEnabled(scenePos, cfg)
	d := pos.Sub(n.lastInteractionPos).RotateAround(geometry.Point{}, -n.rotation)
	if geometry.FuzzyZero(d.X) && geometry.FuzzyZero(d.Y) {
		return nil, false
	}
	n.lastInteractionPos = pos

	oldPos, oldSize := n.pos, n.size
	newPos, newSize := oldPos, oldSize
	switch n.activeHandle {
	case HandleTopLeft:
		newPos.X += d.X
		newPos.Y += d.Y
		newSize.Width -= d.X
		newSize.Height -= d.Y
	case HandleTop:
		newPos.Y += d.Y
		newSize.Height -= d.Y
	case HandleTopRight:
		newPos.Y += d.Y
		newSize.Width += d.X
		newSize.Height -= d.Y
	case HandleRight:
		newSize.Width += d.X
	case HandleBottomRight:
		newSize.Width += d.X
		newSize.Height += d.Y
	case HandleBottom:
		newSize.Height += d.Y
	case HandleBottomLeft:
		newPos.X += d.X
		newSize.Width -= d.X
		newSize.Height += d.Y
	case HandleLeft:
		newPos.X += d.X
		newSize.Width -= d.X
	}

	if n.CanSnapToGrid() {
		newSize = cfg.SnapSize(newSize)
	}

	// An edge dragged through its opposite stops at the minimum size,
	// keeping the opposite edge anchored.
	movesLeft := n.activeHandle == HandleTopLeft || n.activeHandle == HandleLeft || n.activeHandle == HandleBottomLeft
	movesTop := n.activeHandle == HandleTopLeft || n.activeHandle == HandleTop || n.activeHandle == HandleTopRight
	if newSize.Width < 1 {
		if movesLeft {
			newPos.X = oldPos.X + oldSize.Width - 1
		}
		newSize.Width = 1
	}
	if newSize.Height < 1 {
		if movesTop {
			newPos.Y = oldPos.Y + oldSize.Height - 1
		}
		newSize.Height = 1
	}

	// The transform origin moves with the size change. Rotating the
	// origin offset shows where the node visually lands; the
	// difference keeps the anchored edges in place.
	oldOrigin := geometry.Point{X: oldSize.Width / 2, Y: oldSize.Height / 2}
	newOrigin := geometry.Point{X: newSize.Width / 2, Y: newSize.Height / 2}
	offset := newOrigin.Add(newPos).Sub(oldPos).Sub(oldOrigin)
	rotated := offset.RotateAround(geometry.Point{}, n.rotation)
	newPos = newPos.Add(rotated.Sub(offset))

	if newPos.FuzzyEqual(oldPos) && newSize == oldSize {
		return nil, false
	}
	return &ResizeNodeCommand{
		Node:    n,
		OldPos:  oldPos,
		OldSize: oldSize,
		NewPos:  newPos,
		NewSize: newSize,
	}, true
}

func (n *Node) dragRotate(scenePos geometry.Point, snapAngle bool) (Command, bool) {
	assertf(n.allowRotate, "rotate drag on non-rotatable node")
	if !n.allowRotate {
		return nil, false
	}
	center := n.TransformOrigin().Add(n.pos)
	angle := math.Atan2(center.Y-scenePos.Y, center.X-scenePos.X)*180/math.Pi + 270
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if snapAngle {
		angle = math.Mod(math.Round(angle/15)*15, 360)
	}
	if angle == n.rotation {
		return nil, false
	}
	return &RotateNodeCommand{
		Node:        n,
		OldRotation: n.rotation,
		NewRotation: angle,
	}, true
}

// Release ends the current interaction.
func (n *Node) Release() {
	n.mode = InteractionNone
}

// CanSnapToGrid reports whether grid snapping applies right now. A
// node rotated off the 90 degree raster cannot land on the grid.
func (n *Node) CanSnapToGrid() bool {
	return n.snapToGrid && math.Mod(n.rotation, 90) == 0
}

func (n *Node) snapIfEnabled(p geometry.Point, cfg Settings) geometry.Point {
	if n.CanSnapToGrid() {
		return cfg.SnapPoint(p)
	}
	return p
}

// SnapPositionToGrid snaps a candidate position to the grid. At 90 and
// 270 degrees a node whose width and height span grid cell counts of
// differing parity sits half a cell off the raster, so the snap is
// biased by half a grid to keep the connectors on it.
func (n *Node) SnapPositionToGrid(p geometry.Point, cfg Settings) geometry.Point {
	if !n.CanSnapToGrid() || cfg.GridSize <= 0 {
		return p
	}
	g := float64(cfg.GridSize)
	if math.Mod(n.rotation, 180) == 90 {
		if math.Mod(n.size.Width/g-n.size.Height/g, 2) != 0 {
			return geometry.Point{
				X: math.Ceil(p.X/g)*g - g/2,
				Y: math.Ceil(p.Y/g)*g - g/2,
			}
		}
	}
	return cfg.SnapPoint(p)
}

// ToRecord serializes the node and its connectors.
func (n *Node) ToRecord() *record.Record {
	r := record.New()
	item := record.New()
	item.AddStr("uuid", n.uid.String())
	item.AddFloat("x", n.pos.X)
	item.AddFloat("y", n.pos.Y)
	item.AddFloat("rotation", n.rotation)
	item.AddBool("movable", n.movable)
	item.AddBool("snap_to_grid", n.snapToGrid)
	r.AddChild("item", item)

	r.AddFloat("width", n.size.Width)
	r.AddFloat("height", n.size.Height)
	r.AddBool("allow_resize", n.allowResize)
	r.AddBool("allow_rotate", n.allowRotate)

	cfg := record.New()
	cfg.AddBool("movable", n.connectorsMovable)
	cfg.AddInt("snap_policy", int(n.connectorSnapPolicy))
	cfg.AddBool("snap_to_grid", n.connectorSnapToGrid)
	r.AddChild("connectors_configuration", cfg)

	conns := record.New()
	for _, c := range n.connectors {
		conns.AddChild("connector", c.ToRecord())
	}
	r.AddChild("connectors", conns)
	return r
}

// NodeFromRecord restores a node. Missing fields fall back to
// defaults; malformed connectors are skipped and reported as warnings.
func NodeFromRecord(r *record.Record) (*Node, []string, error) {
	if r == nil {
		return nil, nil, fmt.Errorf("nil node record")
	}
	n := NewNode()
	var warnings []string

	if item := r.Child("item"); item != nil {
		if s := item.StrOr("uuid", ""); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				n.uid = id
			}
		}
		n.pos = geometry.Point{
			X: item.FloatOr("x", 0),
			Y: item.FloatOr("y", 0),
		}
		n.rotation = math.Mod(item.FloatOr("rotation", 0), 360)
		if n.rotation < 0 {
			n.rotation += 360
		}
		n.movable = item.BoolOr("movable", true)
		n.snapToGrid = item.BoolOr("snap_to_grid", true)
	} else {
		warnings = append(warnings, "node record has no item section")
	}

	w := r.FloatOr("width", DefaultNodeWidth)
	h := r.FloatOr("height", DefaultNodeHeight)
	if w < 1 || h < 1 {
		warnings = append(warnings, fmt.Sprintf("node size %gx%g below minimum, using defaults", w, h))
		w, h = DefaultNodeWidth, DefaultNodeHeight
	}
	n.size = geometry.Size{Width: w, Height: h}

	n.allowResize = r.BoolOr("allow_resize", true)
	n.allowRotate = r.BoolOr("allow_rotate", true)

	if cfg := r.Child("connectors_configuration"); cfg != nil {
		n.connectorsMovable = cfg.BoolOr("movable", false)
		n.connectorSnapPolicy = SnapPolicy(cfg.IntOr("snap_policy", int(SnapBoundingBoxOutline)))
		n.connectorSnapToGrid = cfg.BoolOr("snap_to_grid", false)
	}

	if conns := r.Child("connectors"); conns != nil {
		for _, cr := range conns.Children("connector") {
			c, err := connectorFromRecord(cr)
			if err != nil {
				warnings = append(warnings, "skipping connector: "+err.Error())
				continue
			}
			c.update(n.size, nil)
			n.connectors = append(n.connectors, c)
		}
	}
	return n, warnings, nil
}
