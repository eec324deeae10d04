package main

import (
	"fmt"
	"strconv"
	"strings"
)

// ShapeType discriminates which renderer and base style a node gets.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeDiamond   ShapeType = "diamond"
	ShapeServer    ShapeType = "server"
	ShapeDatabase  ShapeType = "database"
	ShapeCloud     ShapeType = "cloud"
	ShapeUser      ShapeType = "user"
	ShapeTeam      ShapeType = "team"
	ShapeTask      ShapeType = "task"
	ShapeMilestone ShapeType = "milestone"
	ShapeSummary   ShapeType = "summary"
	ShapeText      ShapeType = "text"
)

type NodeStyle struct {
	FillColor   string `json:"fillColor"`
	StrokeColor string `json:"strokeColor"`
	StrokeWidth int    `json:"strokeWidth"`
	TextColor   string `json:"textColor"`
}

// TaskData carries schedule information for task/milestone/summary nodes.
type TaskData struct {
	Start    string `json:"start,omitempty"` // YYYY-MM-DD
	End      string `json:"end,omitempty"`
	Progress int    `json:"progress"`
	Priority string `json:"priority,omitempty"`
}

type Node struct {
	ID          string    `json:"id"`
	Type        ShapeType `json:"type"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Style       NodeStyle `json:"style"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Task        *TaskData `json:"task,omitempty"`

	lines []string // cached label lines, rebuilt by SetLabel
}

func (n *Node) Lines() []string {
	if n.lines == nil {
		n.lines = strings.Split(n.Label, "\n")
	}
	return n.lines
}

func (n *Node) SetLabel(label string) {
	n.Label = label
	n.lines = strings.Split(label, "\n")
	n.fitToLabel()
}

// fitToLabel grows the node so the label fits; it never shrinks an
// explicitly resized node below its current size.
func (n *Node) fitToLabel() {
	w, h := labelExtent(n.Lines())
	if w > n.Width {
		n.Width = w
	}
	if h > n.Height {
		n.Height = h
	}
	if n.Width < minNodeWidth {
		n.Width = minNodeWidth
	}
	if n.Height < minNodeHeight {
		n.Height = minNodeHeight
	}
}

func labelExtent(lines []string) (int, int) {
	w := minNodeWidth
	for _, line := range lines {
		if len(line)+2 > w { // +2 for padding
			w = len(line) + 2
		}
	}
	return w, len(lines) + 2
}

func (n *Node) Center() (int, int) {
	return n.X + n.Width/2, n.Y + n.Height/2
}

func (n *Node) Contains(x, y int) bool {
	return x >= n.X && x < n.X+n.Width && y >= n.Y && y < n.Y+n.Height
}

// Property exposes the node's conventional property set by name. It is
// the safe-read host for the selection bridge: missing names report
// !ok instead of failing.
func (n *Node) Property(name string) (any, bool) {
	switch name {
	case "fill":
		return n.Style.FillColor, true
	case "stroke":
		return n.Style.StrokeColor, true
	case "strokeWidth":
		return n.Style.StrokeWidth, true
	case "textColor":
		return n.Style.TextColor, true
	case "label":
		return n.Label, true
	case "x":
		return n.X, true
	case "y":
		return n.Y, true
	case "width":
		return n.Width, true
	case "height":
		return n.Height, true
	case "progress":
		if n.Task == nil {
			return nil, false
		}
		return n.Task.Progress, true
	default:
		return nil, false
	}
}

type point struct {
	X, Y int
}

// idGen hands out ids unique within one diagram. Restored diagrams seed
// it past the highest loaded id so fresh ids never collide.
type idGen struct {
	next int
}

func (g *idGen) take(prefix string) string {
	g.next++
	return fmt.Sprintf("%s%d", prefix, g.next)
}

// seedPast bumps the counter beyond an existing id like "n12" or "c3".
func (g *idGen) seedPast(id string) {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	if n, err := strconv.Atoi(id[i:]); err == nil && n > g.next {
		g.next = n
	}
}

// Diagram owns the node set and delegates edges to its connector
// manager. All mutations go through it so rerouting and repaint
// scheduling stay consistent.
type Diagram struct {
	nodes []*Node
	byID  map[string]*Node
	conns *ConnectorManager
	ids   idGen
	sched *renderScheduler
}

func NewDiagram() *Diagram {
	d := &Diagram{
		byID:  make(map[string]*Node),
		sched: &renderScheduler{},
	}
	d.conns = newConnectorManager(d, d.sched)
	return d
}

func (d *Diagram) Connectors() *ConnectorManager { return d.conns }

func (d *Diagram) Scheduler() *renderScheduler { return d.sched }

// AddNode creates a node of the given type at x,y with the type's base
// style. The returned node is live; mutate it through the diagram.
func (d *Diagram) AddNode(typ ShapeType, x, y int, label string) *Node {
	return d.addNode(d.ids.take("n"), typ, x, y, label, nil)
}

// AddNodeWithID restores a node under a known id (undo, load). Existing
// ids are rejected so uniqueness holds even on malformed input.
func (d *Diagram) AddNodeWithID(id string, typ ShapeType, x, y int, label string, style *StyleOverrides) (*Node, error) {
	if _, exists := d.byID[id]; exists {
		return nil, fmt.Errorf("add node: %w: %s", ErrDuplicateID, id)
	}
	d.ids.seedPast(id)
	return d.addNode(id, typ, x, y, label, style), nil
}

func (d *Diagram) addNode(id string, typ ShapeType, x, y int, label string, overrides *StyleOverrides) *Node {
	n := &Node{
		ID:    id,
		Type:  typ,
		X:     x,
		Y:     y,
		Style: StyleFor(typ, overrides),
	}
	n.SetLabel(label)
	d.nodes = append(d.nodes, n)
	d.byID[id] = n
	d.sched.Request()
	return n
}

func (d *Diagram) Node(id string) (*Node, bool) {
	n, ok := d.byID[id]
	return n, ok
}

func (d *Diagram) Nodes() []*Node { return d.nodes }

func (d *Diagram) NodeAt(x, y int) *Node {
	// Later nodes draw on top, so hit-test back to front.
	for i := len(d.nodes) - 1; i >= 0; i-- {
		if d.nodes[i].Contains(x, y) {
			return d.nodes[i]
		}
	}
	return nil
}

// RemoveNode deletes a node and cascades to every connector touching
// it, so no connector is ever left dangling. Removing an unknown id is
// a no-op.
func (d *Diagram) RemoveNode(id string) []Connector {
	n, ok := d.byID[id]
	if !ok {
		return nil
	}
	removed := d.conns.removeAttached(id)
	delete(d.byID, id)
	for i, other := range d.nodes {
		if other == n {
			d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)
			break
		}
	}
	d.sched.Request()
	return removed
}

// MoveNode shifts a node and reroutes its connectors within one render
// gesture, so a drag repaints once.
func (d *Diagram) MoveNode(id string, deltaX, deltaY int) {
	n, ok := d.byID[id]
	if !ok {
		return
	}
	d.sched.Gesture(func() {
		n.X += deltaX
		n.Y += deltaY
		d.conns.rerouteAttached(id)
		d.sched.Request()
	})
}

func (d *Diagram) SetNodePosition(id string, x, y int) {
	n, ok := d.byID[id]
	if !ok {
		return
	}
	d.MoveNode(id, x-n.X, y-n.Y)
}

func (d *Diagram) ResizeNode(id string, deltaWidth, deltaHeight int) {
	n, ok := d.byID[id]
	if !ok {
		return
	}
	d.sched.Gesture(func() {
		minW, minH := labelExtent(n.Lines())
		n.Width = max(n.Width+deltaWidth, minW)
		n.Height = max(n.Height+deltaHeight, minH)
		d.conns.rerouteAttached(id)
		d.sched.Request()
	})
}

func (d *Diagram) SetNodeSize(id string, width, height int) {
	n, ok := d.byID[id]
	if !ok {
		return
	}
	d.ResizeNode(id, width-n.Width, height-n.Height)
}

func (d *Diagram) SetNodeLabel(id string, label string) {
	n, ok := d.byID[id]
	if !ok {
		return
	}
	d.sched.Gesture(func() {
		n.SetLabel(label)
		d.conns.rerouteAttached(id)
		d.sched.Request()
	})
}

// Clear drops every node and connector, one repaint.
func (d *Diagram) Clear() {
	d.sched.Gesture(func() {
		for _, n := range append([]*Node(nil), d.nodes...) {
			d.RemoveNode(n.ID)
		}
	})
}

// Bounds returns the bounding box of all content, false when empty.
func (d *Diagram) Bounds() (minX, minY, maxX, maxY int, ok bool) {
	for _, n := range d.nodes {
		if !ok {
			minX, minY = n.X, n.Y
			maxX, maxY = n.X+n.Width, n.Y+n.Height
			ok = true
			continue
		}
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}
	for _, c := range d.conns.All() {
		for _, pt := range []point{{c.FromX, c.FromY}, {c.ToX, c.ToY}} {
			if !ok {
				minX, minY, maxX, maxY = pt.X, pt.Y, pt.X, pt.Y
				ok = true
				continue
			}
			minX = min(minX, pt.X)
			minY = min(minY, pt.Y)
			maxX = max(maxX, pt.X)
			maxY = max(maxY, pt.Y)
		}
	}
	return
}

// Snapshot is the read-only copy handed to export and persistence
// collaborators. Mutating it has no effect on the live diagram.
type Snapshot struct {
	Nodes []Node
	Edges []Connector
}

func (d *Diagram) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: make([]Node, 0, len(d.nodes)),
		Edges: make([]Connector, 0, len(d.conns.All())),
	}
	for _, n := range d.nodes {
		cp := *n
		cp.lines = append([]string(nil), n.Lines()...)
		s.Nodes = append(s.Nodes, cp)
	}
	for _, c := range d.conns.All() {
		s.Edges = append(s.Edges, *c)
	}
	return s
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
