package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateByID(t *testing.T) {
	t.Run("known id resolves", func(t *testing.T) {
		assert.Equal(t, "network-topology", TemplateByID("network-topology").ID)
	})

	t.Run("unknown id resolves to the generic chain", func(t *testing.T) {
		tpl := TemplateByID("does-not-exist")
		require.Len(t, tpl.Nodes, 3)
		assert.Equal(t, "start", tpl.Nodes[0].Label)
		assert.Equal(t, "process", tpl.Nodes[1].Label)
		assert.Equal(t, "complete", tpl.Nodes[2].Label)
		assert.Len(t, tpl.Edges, 2)
	})
}

func TestInstantiateTranslatesTemplate(t *testing.T) {
	d := NewDiagram()
	tpl := TemplateByID("client-server")

	nodeIDs, connIDs := Instantiate(d, tpl.ID, 100, 50)

	require.Len(t, nodeIDs, len(tpl.Nodes))
	require.Len(t, connIDs, len(tpl.Edges))
	for i, id := range nodeIDs {
		n, ok := d.Node(id)
		require.True(t, ok)
		assert.Equal(t, tpl.Nodes[i].Label, n.Label)
		assert.Equal(t, tpl.Nodes[i].Type, n.Type)
		assert.Equal(t, 100+tpl.Nodes[i].X, n.X)
		assert.Equal(t, 50+tpl.Nodes[i].Y, n.Y)
	}

	first, ok := d.Connectors().Connector(connIDs[0])
	require.True(t, ok)
	assert.Equal(t, "req", first.Label)
}

func TestInstantiateTwiceIsIsomorphic(t *testing.T) {
	d := NewDiagram()

	firstNodes, firstConns := Instantiate(d, "flowchart-basic", 0, 0)
	secondNodes, secondConns := Instantiate(d, "flowchart-basic", 0, 40)

	require.Len(t, secondNodes, len(firstNodes))
	require.Len(t, secondConns, len(firstConns))

	for i := range firstNodes {
		assert.NotEqual(t, firstNodes[i], secondNodes[i], "each expansion gets fresh ids")

		a, _ := d.Node(firstNodes[i])
		b, _ := d.Node(secondNodes[i])
		assert.Equal(t, a.Label, b.Label)
		assert.Equal(t, a.Type, b.Type)
		assert.Equal(t, a.X, b.X)
		assert.Equal(t, a.Y+40, b.Y)
	}

	// Edges of each copy bind within that copy only.
	own := map[string]bool{}
	for _, id := range secondNodes {
		own[id] = true
	}
	for _, id := range secondConns {
		c, ok := d.Connectors().Connector(id)
		require.True(t, ok)
		assert.True(t, own[c.FromID])
		assert.True(t, own[c.ToID])
	}
}

func TestInstantiateIsOneGesture(t *testing.T) {
	d := NewDiagram()
	before := d.Scheduler().Requests()
	Instantiate(d, "org-chart", 0, 0)
	assert.Equal(t, before+1, d.Scheduler().Requests())
}

func TestInstantiateSkipsMalformedEdges(t *testing.T) {
	d := NewDiagram()
	tpl := Template{
		ID:    "bad-edges",
		Nodes: []NodeSpec{{Label: "only", Type: ShapeRectangle}},
		Edges: []EdgeSpec{{From: 0, To: 5}, {From: -1, To: 0}},
	}

	nodeIDs, connIDs := instantiateTemplate(d, tpl, 0, 0)
	assert.Len(t, nodeIDs, 1)
	assert.Empty(t, connIDs)
}

func TestInstantiateTaskTemplateCarriesSchedule(t *testing.T) {
	d := NewDiagram()
	nodeIDs, _ := Instantiate(d, "project-schedule", 0, 0)

	design, ok := d.Node(nodeIDs[1])
	require.True(t, ok)
	require.NotNil(t, design.Task)
	assert.Equal(t, 100, design.Task.Progress)

	// Task data is copied per instantiation, not shared with the table.
	design.Task.Progress = 10
	again, _ := Instantiate(d, "project-schedule", 0, 40)
	fresh, _ := d.Node(again[1])
	assert.Equal(t, 100, fresh.Task.Progress)
}

func TestParseDescription(t *testing.T) {
	t.Run("nodes edges and labels", func(t *testing.T) {
		tpl := ParseDescription("Start [circle]\nStart -> Work : go\nWork -> Done")

		require.Len(t, tpl.Nodes, 3)
		assert.Equal(t, "Start", tpl.Nodes[0].Label)
		assert.Equal(t, ShapeCircle, tpl.Nodes[0].Type)
		assert.Equal(t, ShapeRectangle, tpl.Nodes[1].Type)

		require.Len(t, tpl.Edges, 2)
		assert.Equal(t, EdgeSpec{From: 0, To: 1, Label: "go"}, tpl.Edges[0])
		assert.Equal(t, EdgeSpec{From: 1, To: 2}, tpl.Edges[1])
	})

	t.Run("labels dedupe case-insensitively", func(t *testing.T) {
		tpl := ParseDescription("API [server]\napi -> Store")
		assert.Len(t, tpl.Nodes, 2)
		assert.Equal(t, "API", tpl.Nodes[0].Label)
		assert.Equal(t, ShapeServer, tpl.Nodes[0].Type)
	})

	t.Run("comments and blanks are skipped", func(t *testing.T) {
		tpl := ParseDescription("# heading\n\nA -> B\n")
		assert.Len(t, tpl.Nodes, 2)
		assert.Len(t, tpl.Edges, 1)
	})

	t.Run("layout walks depth left to right", func(t *testing.T) {
		tpl := ParseDescription("A -> B\nB -> C")
		require.Len(t, tpl.Nodes, 3)
		assert.Equal(t, 0, tpl.Nodes[0].X)
		assert.Equal(t, 26, tpl.Nodes[1].X)
		assert.Equal(t, 52, tpl.Nodes[2].X)
	})

	t.Run("cycles still get positions", func(t *testing.T) {
		tpl := ParseDescription("A -> B\nB -> A")
		require.Len(t, tpl.Nodes, 2)
		assert.NotEqual(t, tpl.Nodes[0].X, tpl.Nodes[1].X)
	})

	t.Run("empty input yields an empty template", func(t *testing.T) {
		tpl := ParseDescription("")
		assert.Empty(t, tpl.Nodes)
		assert.Empty(t, tpl.Edges)
	})
}
