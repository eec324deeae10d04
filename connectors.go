package main

import "fmt"

type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

type AnchorSide string

const (
	AnchorAuto   AnchorSide = "auto"
	AnchorTop    AnchorSide = "top"
	AnchorRight  AnchorSide = "right"
	AnchorBottom AnchorSide = "bottom"
	AnchorLeft   AnchorSide = "left"
)

type ConnectorStyle struct {
	StrokeColor string    `json:"strokeColor"`
	StrokeWidth int       `json:"strokeWidth"`
	LineStyle   LineStyle `json:"lineStyle"`
	HasArrow    bool      `json:"hasArrow"`
}

func defaultConnectorStyle() ConnectorStyle {
	return ConnectorStyle{
		StrokeColor: "#000000",
		StrokeWidth: 2,
		LineStyle:   LineSolid,
		HasArrow:    true,
	}
}

type Connector struct {
	ID     string         `json:"id"`
	FromID string         `json:"sourceNodeId"`
	ToID   string         `json:"targetNodeId"`
	Anchor AnchorSide     `json:"anchorSide"`
	Style  ConnectorStyle `json:"style"`
	Label  string         `json:"label,omitempty"`

	// Routed endpoints in world coordinates, refreshed by reroute.
	FromX int `json:"-"`
	FromY int `json:"-"`
	ToX   int `json:"-"`
	ToY   int `json:"-"`

	// Side each endpoint attaches to after routing.
	FromSide AnchorSide `json:"-"`
	ToSide   AnchorSide `json:"-"`
}

// Property is the safe-read host for connectors, mirroring Node.
func (c *Connector) Property(name string) (any, bool) {
	switch name {
	case "fill", "stroke":
		return c.Style.StrokeColor, true
	case "strokeWidth":
		return c.Style.StrokeWidth, true
	case "lineStyle":
		return string(c.Style.LineStyle), true
	case "hasArrow":
		return c.Style.HasArrow, true
	case "label":
		return c.Label, true
	default:
		return nil, false
	}
}

// renderScheduler coalesces repaint requests. Mutations inside one
// Gesture produce a single notification no matter how many objects
// changed, which keeps drags from flickering.
type renderScheduler struct {
	depth    int
	pending  bool
	requests int
	notify   func()
}

func (s *renderScheduler) Notify(fn func()) { s.notify = fn }

// Requests reports how many repaint notifications have fired.
func (s *renderScheduler) Requests() int { return s.requests }

func (s *renderScheduler) Request() {
	if s.depth > 0 {
		s.pending = true
		return
	}
	s.fire()
}

// Gesture batches every Request made inside fn into one notification.
// Nested gestures extend the outermost one.
func (s *renderScheduler) Gesture(fn func()) {
	s.depth++
	fn()
	s.depth--
	if s.depth == 0 && s.pending {
		s.pending = false
		s.fire()
	}
}

func (s *renderScheduler) fire() {
	s.requests++
	if s.notify != nil {
		s.notify()
	}
}

// ConnectorManager owns every edge in a diagram: creation, style
// mutation, removal and re-routing when an endpoint moves.
type ConnectorManager struct {
	diagram *Diagram
	sched   *renderScheduler
	conns   []*Connector
	byID    map[string]*Connector
}

func newConnectorManager(d *Diagram, sched *renderScheduler) *ConnectorManager {
	return &ConnectorManager{
		diagram: d,
		sched:   sched,
		byID:    make(map[string]*Connector),
	}
}

// Create validates both endpoints against live nodes before anything
// is committed; a bad endpoint creates nothing.
func (m *ConnectorManager) Create(fromID, toID string, style *ConnectorStyle) (string, error) {
	return m.create(m.diagram.ids.take("c"), fromID, toID, style)
}

// CreateWithID restores a connector under a known id (undo, load).
func (m *ConnectorManager) CreateWithID(id, fromID, toID string, style *ConnectorStyle) (string, error) {
	if _, exists := m.byID[id]; exists {
		return "", fmt.Errorf("create connector: %w: %s", ErrDuplicateID, id)
	}
	m.diagram.ids.seedPast(id)
	return m.create(id, fromID, toID, style)
}

func (m *ConnectorManager) create(id, fromID, toID string, style *ConnectorStyle) (string, error) {
	if _, ok := m.diagram.Node(fromID); !ok {
		return "", fmt.Errorf("create connector %s->%s: %w", fromID, toID, ErrInvalidEndpoint)
	}
	if _, ok := m.diagram.Node(toID); !ok {
		return "", fmt.Errorf("create connector %s->%s: %w", fromID, toID, ErrInvalidEndpoint)
	}
	c := &Connector{
		ID:     id,
		FromID: fromID,
		ToID:   toID,
		Anchor: AnchorAuto,
		Style:  defaultConnectorStyle(),
	}
	if style != nil {
		c.Style = *style
	}
	m.conns = append(m.conns, c)
	m.byID[id] = c
	m.reroute(c)
	m.sched.Request()
	return id, nil
}

func (m *ConnectorManager) Connector(id string) (*Connector, bool) {
	c, ok := m.byID[id]
	return c, ok
}

func (m *ConnectorManager) All() []*Connector { return m.conns }

// StyleOf reads a connector's style for the property bridge.
func (m *ConnectorManager) StyleOf(id string) (ConnectorStyle, error) {
	c, ok := m.byID[id]
	if !ok {
		return ConnectorStyle{}, fmt.Errorf("style of %s: %w", id, ErrNoSuchConnector)
	}
	return c.Style, nil
}

// ConnectorStylePatch merges set fields into a connector's style; nil
// fields are left alone.
type ConnectorStylePatch struct {
	StrokeColor *string
	StrokeWidth *int
	LineStyle   *LineStyle
	HasArrow    *bool
	Label       *string
}

func (m *ConnectorManager) UpdateStyle(id string, patch ConnectorStylePatch) {
	c, ok := m.byID[id]
	if !ok {
		return
	}
	if patch.StrokeColor != nil {
		c.Style.StrokeColor = *patch.StrokeColor
	}
	if patch.StrokeWidth != nil {
		c.Style.StrokeWidth = *patch.StrokeWidth
	}
	if patch.LineStyle != nil {
		c.Style.LineStyle = *patch.LineStyle
	}
	if patch.HasArrow != nil {
		c.Style.HasArrow = *patch.HasArrow
	}
	if patch.Label != nil {
		c.Label = *patch.Label
	}
	m.sched.Request()
}

// ApplyStyleField is the forward-compatible write path used by the
// property panel: unknown field names are ignored, bad values fall
// back to the field's current value.
func (m *ConnectorManager) ApplyStyleField(id, field, value string) {
	c, ok := m.byID[id]
	if !ok {
		return
	}
	switch field {
	case "fill", "stroke":
		if value != "" {
			c.Style.StrokeColor = value
		}
	case "strokeWidth":
		if w, err := parseInt(value); err == nil && w > 0 {
			c.Style.StrokeWidth = w
		}
	case "lineStyle":
		switch LineStyle(value) {
		case LineSolid, LineDashed, LineDotted:
			c.Style.LineStyle = LineStyle(value)
		}
	case "hasArrow":
		c.Style.HasArrow = value == "true"
	case "label":
		c.Label = value
	}
	m.sched.Request()
}

// Remove is idempotent: removing an already-removed connector is a
// no-op, not an error.
func (m *ConnectorManager) Remove(id string) {
	c, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	for i, other := range m.conns {
		if other == c {
			m.conns = append(m.conns[:i], m.conns[i+1:]...)
			break
		}
	}
	m.sched.Request()
}

// removeAttached drops every connector touching the node; used by node
// deletion so endpoints never dangle. Returns copies for undo.
func (m *ConnectorManager) removeAttached(nodeID string) []Connector {
	var removed []Connector
	m.sched.Gesture(func() {
		kept := m.conns[:0]
		for _, c := range m.conns {
			if c.FromID == nodeID || c.ToID == nodeID {
				removed = append(removed, *c)
				delete(m.byID, c.ID)
				continue
			}
			kept = append(kept, c)
		}
		m.conns = kept
		if len(removed) > 0 {
			m.sched.Request()
		}
	})
	return removed
}

// Reroute recomputes a connector's endpoints from its nodes' current
// positions.
func (m *ConnectorManager) Reroute(id string) {
	c, ok := m.byID[id]
	if !ok {
		return
	}
	m.reroute(c)
	m.sched.Request()
}

func (m *ConnectorManager) rerouteAttached(nodeID string) {
	m.sched.Gesture(func() {
		touched := false
		for _, c := range m.conns {
			if c.FromID == nodeID || c.ToID == nodeID {
				m.reroute(c)
				touched = true
			}
		}
		if touched {
			m.sched.Request()
		}
	})
}

// anchorOrder fixes the tie-break for the nearest-side heuristic:
// left-to-right first, then top-to-bottom.
var anchorOrder = []AnchorSide{AnchorLeft, AnchorRight, AnchorTop, AnchorBottom}

func sidePoint(n *Node, side AnchorSide) point {
	cx, cy := n.Center()
	switch side {
	case AnchorLeft:
		return point{n.X - 1, cy}
	case AnchorRight:
		return point{n.X + n.Width, cy}
	case AnchorTop:
		return point{cx, n.Y - 1}
	case AnchorBottom:
		return point{cx, n.Y + n.Height}
	}
	return point{cx, cy}
}

// reroute picks the side pair minimizing the Manhattan distance between
// the nodes' edge midpoints. Ties (including identical or overlapping
// node positions) resolve by anchorOrder, so routing is deterministic
// for any geometry. A non-auto Anchor pins the source side.
func (m *ConnectorManager) reroute(c *Connector) {
	from, okFrom := m.diagram.Node(c.FromID)
	to, okTo := m.diagram.Node(c.ToID)
	if !okFrom || !okTo {
		return
	}

	fromSides := anchorOrder
	if c.Anchor != AnchorAuto && c.Anchor != "" {
		fromSides = []AnchorSide{c.Anchor}
	}

	bestDist := -1
	for _, fs := range fromSides {
		fp := sidePoint(from, fs)
		for _, ts := range anchorOrder {
			tp := sidePoint(to, ts)
			dist := abs(fp.X-tp.X) + abs(fp.Y-tp.Y)
			if bestDist == -1 || dist < bestDist {
				bestDist = dist
				c.FromSide, c.ToSide = fs, ts
				c.FromX, c.FromY = fp.X, fp.Y
				c.ToX, c.ToY = tp.X, tp.Y
			}
		}
	}
}
