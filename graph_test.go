package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeAssignsUniqueIDs(t *testing.T) {
	d := NewDiagram()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := d.AddNode(ShapeRectangle, i, i, "node")
		require.False(t, seen[n.ID], "id %s handed out twice", n.ID)
		seen[n.ID] = true
	}
}

func TestAddNodeWithIDRejectsDuplicate(t *testing.T) {
	d := NewDiagram()
	_, err := d.AddNodeWithID("n7", ShapeCircle, 0, 0, "first", nil)
	require.NoError(t, err)

	_, err = d.AddNodeWithID("n7", ShapeCircle, 5, 5, "second", nil)
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, d.Nodes(), 1)
}

func TestAddNodeWithIDSeedsGenerator(t *testing.T) {
	d := NewDiagram()
	_, err := d.AddNodeWithID("n12", ShapeRectangle, 0, 0, "loaded", nil)
	require.NoError(t, err)

	fresh := d.AddNode(ShapeRectangle, 0, 0, "fresh")
	assert.Equal(t, "n13", fresh.ID)
}

func TestNodeAtHitsTopmost(t *testing.T) {
	d := NewDiagram()
	bottom := d.AddNode(ShapeRectangle, 0, 0, "bottom")
	top := d.AddNode(ShapeRectangle, 2, 1, "top")

	hit := d.NodeAt(3, 2)
	require.NotNil(t, hit)
	assert.Equal(t, top.ID, hit.ID)

	hit = d.NodeAt(0, 0)
	require.NotNil(t, hit)
	assert.Equal(t, bottom.ID, hit.ID)

	assert.Nil(t, d.NodeAt(100, 100))
}

func TestRemoveNodeCascadesConnectors(t *testing.T) {
	d := NewDiagram()
	a := d.AddNode(ShapeRectangle, 0, 0, "a")
	b := d.AddNode(ShapeRectangle, 20, 0, "b")
	c := d.AddNode(ShapeRectangle, 40, 0, "c")

	_, err := d.Connectors().Create(a.ID, b.ID, nil)
	require.NoError(t, err)
	_, err = d.Connectors().Create(b.ID, c.ID, nil)
	require.NoError(t, err)
	keptID, err := d.Connectors().Create(a.ID, c.ID, nil)
	require.NoError(t, err)

	removed := d.RemoveNode(b.ID)

	assert.Len(t, removed, 2, "both connectors touching b come back for undo")
	require.Len(t, d.Connectors().All(), 1)
	assert.Equal(t, keptID, d.Connectors().All()[0].ID)

	_, ok := d.Node(b.ID)
	assert.False(t, ok)
}

func TestRemoveUnknownNodeIsNoop(t *testing.T) {
	d := NewDiagram()
	d.AddNode(ShapeRectangle, 0, 0, "a")
	assert.Nil(t, d.RemoveNode("ghost"))
	assert.Len(t, d.Nodes(), 1)
}

func TestSetLabelGrowsNode(t *testing.T) {
	d := NewDiagram()
	n := d.AddNode(ShapeRectangle, 0, 0, "")
	assert.Equal(t, minNodeWidth, n.Width)
	assert.Equal(t, minNodeHeight, n.Height)

	d.SetNodeLabel(n.ID, "a considerably longer label\nsecond line")
	assert.Equal(t, len("a considerably longer label")+2, n.Width)
	assert.Equal(t, 4, n.Height)
}

func TestResizeNeverShrinksBelowLabel(t *testing.T) {
	d := NewDiagram()
	n := d.AddNode(ShapeRectangle, 0, 0, "wide label here")
	want := len("wide label here") + 2

	d.ResizeNode(n.ID, -100, -100)
	assert.Equal(t, want, n.Width)
	assert.Equal(t, 3, n.Height)
}

func TestNodeProperty(t *testing.T) {
	n := &Node{ID: "n1", X: 3, Y: 4, Style: StyleFor(ShapeCircle, nil)}
	n.SetLabel("hello")

	t.Run("known fields report ok", func(t *testing.T) {
		v, ok := n.Property("label")
		require.True(t, ok)
		assert.Equal(t, "hello", v)

		v, ok = n.Property("x")
		require.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("progress hidden without task data", func(t *testing.T) {
		_, ok := n.Property("progress")
		assert.False(t, ok)

		n.Task = &TaskData{Progress: 40}
		v, ok := n.Property("progress")
		require.True(t, ok)
		assert.Equal(t, 40, v)
	})

	t.Run("unknown field misses instead of failing", func(t *testing.T) {
		_, ok := n.Property("zIndex")
		assert.False(t, ok)
	})
}

func TestSnapshotIsDetached(t *testing.T) {
	d := NewDiagram()
	n := d.AddNode(ShapeRectangle, 5, 5, "live")
	b := d.AddNode(ShapeRectangle, 30, 5, "other")
	_, err := d.Connectors().Create(n.ID, b.ID, nil)
	require.NoError(t, err)

	snap := d.Snapshot()
	snap.Nodes[0].X = 999
	snap.Nodes[0].Label = "mutated"
	snap.Edges[0].Style.StrokeColor = "#ff0000"

	assert.Equal(t, 5, n.X)
	assert.Equal(t, "live", n.Label)
	assert.Equal(t, "#000000", d.Connectors().All()[0].Style.StrokeColor)
}

func TestBoundsEmptyDiagram(t *testing.T) {
	d := NewDiagram()
	_, _, _, _, ok := d.Bounds()
	assert.False(t, ok)
}

func TestClearEmptiesEverything(t *testing.T) {
	d := NewDiagram()
	a := d.AddNode(ShapeRectangle, 0, 0, "a")
	b := d.AddNode(ShapeRectangle, 20, 0, "b")
	_, err := d.Connectors().Create(a.ID, b.ID, nil)
	require.NoError(t, err)

	d.Clear()
	assert.Empty(t, d.Nodes())
	assert.Empty(t, d.Connectors().All())
}
