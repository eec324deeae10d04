package main

import "strings"

type NodeSpec struct {
	Label string
	Type  ShapeType
	X, Y  int
	Style *StyleOverrides
	Task  *TaskData
}

// EdgeSpec references nodes by template-local index so templates can be
// instantiated repeatedly into independent id spaces.
type EdgeSpec struct {
	From, To int
	Style    *ConnectorStyle
	Label    string
}

type Template struct {
	ID       string
	Name     string
	Category string
	Nodes    []NodeSpec
	Edges    []EdgeSpec
}

// builtinTemplates is the fixed template table, ordered for the picker.
var builtinTemplates = []Template{
	{
		ID:       "flowchart-basic",
		Name:     "Basic Flowchart",
		Category: "flowchart",
		Nodes: []NodeSpec{
			{Label: "Start", Type: ShapeCircle, X: 2, Y: 0},
			{Label: "Input", Type: ShapeRectangle, X: 2, Y: 6},
			{Label: "Valid?", Type: ShapeDiamond, X: 2, Y: 12},
			{Label: "Process", Type: ShapeRectangle, X: 24, Y: 12},
			{Label: "Done", Type: ShapeCircle, X: 24, Y: 18},
		},
		Edges: []EdgeSpec{
			{From: 0, To: 1},
			{From: 1, To: 2},
			{From: 2, To: 3, Label: "yes"},
			{From: 2, To: 1, Label: "no", Style: &ConnectorStyle{StrokeColor: "#c62828", StrokeWidth: 1, LineStyle: LineDashed, HasArrow: true}},
			{From: 3, To: 4},
		},
	},
	{
		ID:       "network-topology",
		Name:     "Network Topology",
		Category: "infrastructure",
		Nodes: []NodeSpec{
			{Label: "Clients", Type: ShapeCloud, X: 0, Y: 0},
			{Label: "Load\nBalancer", Type: ShapeServer, X: 24, Y: 0},
			{Label: "App 1", Type: ShapeServer, X: 48, Y: 0},
			{Label: "App 2", Type: ShapeServer, X: 48, Y: 7},
			{Label: "Primary DB", Type: ShapeDatabase, X: 72, Y: 3},
		},
		Edges: []EdgeSpec{
			{From: 0, To: 1},
			{From: 1, To: 2},
			{From: 1, To: 3},
			{From: 2, To: 4},
			{From: 3, To: 4},
		},
	},
	{
		ID:       "org-chart",
		Name:     "Org Chart",
		Category: "people",
		Nodes: []NodeSpec{
			{Label: "Director", Type: ShapeUser, X: 28, Y: 0},
			{Label: "Platform", Type: ShapeTeam, X: 4, Y: 7},
			{Label: "Product", Type: ShapeTeam, X: 28, Y: 7},
			{Label: "Design", Type: ShapeTeam, X: 52, Y: 7},
		},
		Edges: []EdgeSpec{
			{From: 0, To: 1},
			{From: 0, To: 2},
			{From: 0, To: 3},
		},
	},
	{
		ID:       "project-schedule",
		Name:     "Project Schedule",
		Category: "schedule",
		Nodes: []NodeSpec{
			{Label: "Phase 1", Type: ShapeSummary, X: 0, Y: 0, Task: &TaskData{Start: "2026-01-05", End: "2026-02-27", Progress: 60}},
			{Label: "Design", Type: ShapeTask, X: 2, Y: 5, Task: &TaskData{Start: "2026-01-05", End: "2026-01-23", Progress: 100}},
			{Label: "Build", Type: ShapeTask, X: 2, Y: 10, Task: &TaskData{Start: "2026-01-26", End: "2026-02-20", Progress: 45}},
			{Label: "Ship v1", Type: ShapeMilestone, X: 30, Y: 16, Task: &TaskData{Start: "2026-02-27", End: "2026-02-27", Progress: 0}},
		},
		Edges: []EdgeSpec{
			{From: 1, To: 2},
			{From: 2, To: 3},
		},
	},
	{
		ID:       "client-server",
		Name:     "Client / Server",
		Category: "infrastructure",
		Nodes: []NodeSpec{
			{Label: "User", Type: ShapeUser, X: 0, Y: 2},
			{Label: "API", Type: ShapeServer, X: 24, Y: 2},
			{Label: "Store", Type: ShapeDatabase, X: 48, Y: 2},
		},
		Edges: []EdgeSpec{
			{From: 0, To: 1, Label: "req"},
			{From: 1, To: 2},
		},
	},
}

// fallbackTemplate is returned for unmatched ids: a minimal generic
// chain so the caller can always render something.
var fallbackTemplate = Template{
	ID:       "generic-chain",
	Name:     "Generic",
	Category: "flowchart",
	Nodes: []NodeSpec{
		{Label: "start", Type: ShapeCircle, X: 0, Y: 0},
		{Label: "process", Type: ShapeRectangle, X: 20, Y: 0},
		{Label: "complete", Type: ShapeCircle, X: 40, Y: 0},
	},
	Edges: []EdgeSpec{
		{From: 0, To: 1},
		{From: 1, To: 2},
	},
}

// TemplateByID looks up by exact id; unmatched ids resolve to the
// fallback chain, never an error.
func TemplateByID(id string) Template {
	for _, t := range builtinTemplates {
		if t.ID == id {
			return t
		}
	}
	return fallbackTemplate
}

// Instantiate expands a template onto the diagram, translating the
// template-local coordinate space to originX/originY. Node ids are
// freshly generated per call; edge specs bind by index, so repeated
// instantiation never collides. The whole expansion is one render
// gesture.
func Instantiate(d *Diagram, templateID string, originX, originY int) (nodeIDs []string, connIDs []string) {
	return instantiateTemplate(d, TemplateByID(templateID), originX, originY)
}

// instantiateTemplate is the shared expansion path for builtin and
// generated templates.
func instantiateTemplate(d *Diagram, t Template, originX, originY int) (nodeIDs []string, connIDs []string) {
	d.sched.Gesture(func() {
		nodeIDs = make([]string, len(t.Nodes))
		for i, spec := range t.Nodes {
			n := d.AddNode(spec.Type, originX+spec.X, originY+spec.Y, spec.Label)
			if spec.Style != nil {
				n.Style = StyleFor(spec.Type, spec.Style)
			}
			if spec.Task != nil {
				task := *spec.Task
				n.Task = &task
			}
			nodeIDs[i] = n.ID
		}
		for _, spec := range t.Edges {
			if spec.From < 0 || spec.From >= len(nodeIDs) || spec.To < 0 || spec.To >= len(nodeIDs) {
				continue // malformed edge spec, skip rather than abort
			}
			id, err := d.Connectors().Create(nodeIDs[spec.From], nodeIDs[spec.To], spec.Style)
			if err != nil {
				continue
			}
			if spec.Label != "" {
				d.Connectors().UpdateStyle(id, ConnectorStylePatch{Label: &spec.Label})
			}
			connIDs = append(connIDs, id)
		}
	})
	return nodeIDs, connIDs
}

// ParseDescription turns generated diagram text into a template that
// instantiates through the normal path. The format is line oriented:
//
//	Label [type]        declares a node
//	A -> B : label      declares an edge between declared labels
//
// Unparseable lines are skipped; an empty description yields an empty
// template. Nodes are laid out by BFS depth, columns left to right.
func ParseDescription(text string) Template {
	t := Template{ID: "generated", Name: "Generated", Category: "generated"}
	index := map[string]int{}

	declare := func(label string, typ ShapeType) int {
		key := strings.ToLower(label)
		if i, ok := index[key]; ok {
			return i
		}
		t.Nodes = append(t.Nodes, NodeSpec{Label: label, Type: typ})
		index[key] = len(t.Nodes) - 1
		return len(t.Nodes) - 1
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if from, to, label, ok := parseEdgeLine(line); ok {
			fi := declare(from, ShapeRectangle)
			ti := declare(to, ShapeRectangle)
			t.Edges = append(t.Edges, EdgeSpec{From: fi, To: ti, Label: label})
			continue
		}
		label, typ := parseNodeLine(line)
		declare(label, typ)
	}

	layoutByDepth(&t)
	return t
}

func parseEdgeLine(line string) (from, to, label string, ok bool) {
	idx := strings.Index(line, "->")
	if idx < 0 {
		return "", "", "", false
	}
	from = strings.TrimSpace(line[:idx])
	rest := strings.TrimSpace(line[idx+2:])
	if colon := strings.Index(rest, ":"); colon >= 0 {
		label = strings.TrimSpace(rest[colon+1:])
		rest = strings.TrimSpace(rest[:colon])
	}
	to = stripTypeTag(rest)
	from = stripTypeTag(from)
	if from == "" || to == "" {
		return "", "", "", false
	}
	return from, to, label, true
}

// parseNodeLine reads `Label [type]`; a missing or unknown tag means
// rectangle (the registry re-checks anyway).
func parseNodeLine(line string) (string, ShapeType) {
	open := strings.LastIndex(line, "[")
	end := strings.LastIndex(line, "]")
	if open >= 0 && end > open {
		tag := ShapeType(strings.ToLower(strings.TrimSpace(line[open+1 : end])))
		label := strings.TrimSpace(line[:open])
		if label == "" {
			label = string(tag)
		}
		return label, tag
	}
	return line, ShapeRectangle
}

func stripTypeTag(s string) string {
	if open := strings.LastIndex(s, "["); open >= 0 {
		s = s[:open]
	}
	return strings.TrimSpace(s)
}

// layoutByDepth assigns template-local positions: BFS depth picks the
// column, arrival order the row. Deterministic for a given spec list.
func layoutByDepth(t *Template) {
	depth := make([]int, len(t.Nodes))
	incoming := make([]int, len(t.Nodes))
	for _, e := range t.Edges {
		if e.To >= 0 && e.To < len(incoming) {
			incoming[e.To]++
		}
	}

	var queue []int
	for i := range t.Nodes {
		if incoming[i] == 0 {
			queue = append(queue, i)
		}
	}
	if len(queue) == 0 && len(t.Nodes) > 0 {
		queue = append(queue, 0) // cycle: anchor at the first node
	}

	visited := make([]bool, len(t.Nodes))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, e := range t.Edges {
			if e.From == cur && e.To >= 0 && e.To < len(t.Nodes) && !visited[e.To] {
				if depth[cur]+1 > depth[e.To] {
					depth[e.To] = depth[cur] + 1
				}
				queue = append(queue, e.To)
			}
		}
	}

	rows := map[int]int{}
	for i := range t.Nodes {
		col := depth[i]
		t.Nodes[i].X = col * 26
		t.Nodes[i].Y = rows[col] * 6
		rows[col]++
	}
}
