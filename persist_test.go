package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundTrip(t *testing.T) {
	s, _ := newTestSession(t)
	d := s.Diagram()

	a := d.AddNode(ShapeServer, 2, 3, "API")
	a.Style.FillColor = "#101010"
	task := d.AddNode(ShapeTask, 30, 3, "Build")
	task.Task = &TaskData{Start: "2026-01-05", End: "2026-01-23", Progress: 45, Priority: "high"}

	id, err := d.Connectors().Create(a.ID, task.ID, &ConnectorStyle{
		StrokeColor: "#c62828", StrokeWidth: 3, LineStyle: LineDashed, HasArrow: false,
	})
	require.NoError(t, err)
	c, _ := d.Connectors().Connector(id)
	c.Label = "feeds"
	c.Anchor = AnchorBottom

	s.SetBackground(Background{Color: "#1e1e1e", Grid: true})

	path := filepath.Join(t.TempDir(), "diagram.json")
	require.NoError(t, SaveDocument(path, s, 7, -4))

	loaded := NewSession(testLogger())
	require.NoError(t, loaded.Init(&paintCounter{}))
	panX, panY, err := LoadDocument(path, loaded)
	require.NoError(t, err)

	assert.Equal(t, 7, panX)
	assert.Equal(t, -4, panY)
	assert.Equal(t, Background{Color: "#1e1e1e", Grid: true}, loaded.Background())

	ld := loaded.Diagram()
	require.Len(t, ld.Nodes(), 2)

	la, ok := ld.Node(a.ID)
	require.True(t, ok)
	assert.Equal(t, ShapeServer, la.Type)
	assert.Equal(t, "API", la.Label)
	assert.Equal(t, "#101010", la.Style.FillColor)
	assert.Equal(t, a.Width, la.Width)

	lt, ok := ld.Node(task.ID)
	require.True(t, ok)
	require.NotNil(t, lt.Task)
	assert.Equal(t, *task.Task, *lt.Task)

	lc, ok := ld.Connectors().Connector(id)
	require.True(t, ok)
	assert.Equal(t, a.ID, lc.FromID)
	assert.Equal(t, task.ID, lc.ToID)
	assert.Equal(t, "feeds", lc.Label)
	assert.Equal(t, AnchorBottom, lc.Anchor)
	assert.Equal(t, AnchorBottom, lc.FromSide, "pinned anchor survives re-routing")
	assert.Equal(t, c.Style, lc.Style)
}

func TestLoadedSessionStartsClean(t *testing.T) {
	s, _ := newTestSession(t)
	d := s.Diagram()
	a := d.AddNode(ShapeRectangle, 0, 0, "a")
	b := d.AddNode(ShapeRectangle, 30, 0, "b")
	_, err := d.Connectors().Create(a.ID, b.ID, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "diagram.json")
	require.NoError(t, SaveDocument(path, s, 0, 0))

	loaded := NewSession(testLogger())
	require.NoError(t, loaded.Init(&paintCounter{}))
	_, _, err = LoadDocument(path, loaded)
	require.NoError(t, err)

	assert.False(t, loaded.Dirty())

	// Fresh ids continue past the restored ones.
	fresh := loaded.Diagram().AddNode(ShapeRectangle, 0, 10, "c")
	assert.Equal(t, "n3", fresh.ID)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "nodes": []}`), 0644))

	s, _ := newTestSession(t)
	_, _, err := LoadDocument(path, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1, "nodes": [`), 0644))

	s, _ := newTestSession(t)
	_, _, err := LoadDocument(path, s)
	require.Error(t, err)
}

func TestRestoreDropsDanglingEdges(t *testing.T) {
	doc := Document{
		Version: documentVersion,
		Nodes: []Node{
			{ID: "n1", Type: ShapeRectangle, X: 0, Y: 0, Width: 10, Height: 3},
		},
		Edges: []edgeRecord{
			{ID: "c1", From: "n1", To: "gone", Style: defaultConnectorStyle()},
		},
	}

	s, _ := newTestSession(t)
	restoreDocument(s, doc)

	assert.Len(t, s.Diagram().Nodes(), 1)
	assert.Empty(t, s.Diagram().Connectors().All(), "edge to a missing node must not restore")
}

func TestRestoreSkipsDuplicateNodeIDs(t *testing.T) {
	doc := Document{
		Version: documentVersion,
		Nodes: []Node{
			{ID: "n1", Type: ShapeRectangle, Label: "first", Width: 10, Height: 3},
			{ID: "n1", Type: ShapeCircle, Label: "second", Width: 10, Height: 3},
		},
	}

	s, _ := newTestSession(t)
	restoreDocument(s, doc)

	require.Len(t, s.Diagram().Nodes(), 1)
	assert.Equal(t, "first", s.Diagram().Nodes()[0].Label)
}
