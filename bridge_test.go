package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBridge(t *testing.T) (*Diagram, *PropertyBridge) {
	t.Helper()
	d := NewDiagram()
	return d, NewPropertyBridge(d, testLogger())
}

// panickyReader blows up on every access; the bridge must survive it.
type panickyReader struct{}

func (panickyReader) Property(string) (any, bool) { panic("reader exploded") }

// ghostConnector claims to be an edge but is unknown to the manager.
type ghostConnector struct{}

func (ghostConnector) Property(string) (any, bool) { return nil, false }
func (ghostConnector) connectorID() string         { return "ghost" }

// brokenConnector panics while identifying itself.
type brokenConnector struct{}

func (brokenConnector) Property(string) (any, bool) { return nil, false }
func (brokenConnector) connectorID() string         { panic("no id") }

func TestSafeRead(t *testing.T) {
	n := &Node{ID: "n1", Style: NodeStyle{FillColor: "#abcdef"}}

	t.Run("reads a present field", func(t *testing.T) {
		assert.Equal(t, "#abcdef", safeRead(n, "fill", "#000000"))
	})

	t.Run("missing field yields the default", func(t *testing.T) {
		assert.Equal(t, "fallback", safeRead(n, "nope", "fallback"))
	})

	t.Run("type mismatch yields the default", func(t *testing.T) {
		assert.Equal(t, 7, safeRead(n, "fill", 7))
	})

	t.Run("nil object yields the default", func(t *testing.T) {
		assert.Equal(t, "d", safeRead(nil, "fill", "d"))
	})

	t.Run("panicking accessor yields the default", func(t *testing.T) {
		assert.Equal(t, "d", safeRead(panickyReader{}, "anything", "d"))
	})
}

func TestSelectNode(t *testing.T) {
	d, b := newTestBridge(t)
	n := d.AddNode(ShapeCircle, 3, 4, "hello")

	b.Select(n)

	require.True(t, b.PanelVisible())
	rec := b.Record()
	assert.Equal(t, SelectNode, rec.Kind)
	assert.Equal(t, n.ID, rec.ID)
	assert.Equal(t, "hello", rec.Label)
	assert.Equal(t, baseStyles[ShapeCircle].FillColor, rec.Fill)
	assert.Equal(t, 3, rec.X)
	assert.Equal(t, 4, rec.Y)
	assert.False(t, rec.HasProgress)
}

func TestSelectTaskNodeExposesProgress(t *testing.T) {
	d, b := newTestBridge(t)
	n := d.AddNode(ShapeTask, 0, 0, "build")
	n.Task = &TaskData{Progress: 45}

	b.Select(n)

	rec := b.Record()
	assert.True(t, rec.HasProgress)
	assert.Equal(t, 45, rec.Progress)
}

func TestSelectConnector(t *testing.T) {
	d, b := newTestBridge(t)
	a := d.AddNode(ShapeRectangle, 0, 0, "a")
	to := d.AddNode(ShapeRectangle, 30, 0, "b")
	id, err := d.Connectors().Create(a.ID, to.ID, nil)
	require.NoError(t, err)
	c, _ := d.Connectors().Connector(id)
	c.Label = "flows"

	b.Select(c)

	require.True(t, b.PanelVisible())
	rec := b.Record()
	assert.Equal(t, SelectConnector, rec.Kind)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "flows", rec.Label)
	assert.Equal(t, "#000000", rec.Stroke)
	assert.Equal(t, 2, rec.StrokeWidth)
	assert.Equal(t, LineSolid, rec.LineStyle)
	assert.True(t, rec.HasArrow)
}

func TestSelectUnreadableConnectorFallsBack(t *testing.T) {
	_, b := newTestBridge(t)

	b.Select(ghostConnector{})

	require.True(t, b.PanelVisible(), "editing continues on the fallback record")
	rec := b.Record()
	assert.Equal(t, SelectConnector, rec.Kind)
	assert.Equal(t, "ghost", rec.ID)
	assert.Equal(t, "#000000", rec.Fill)
	assert.Equal(t, 2, rec.StrokeWidth)
	assert.Equal(t, LineSolid, rec.LineStyle)
	assert.True(t, rec.HasArrow)
}

func TestSelectDegenerateObjects(t *testing.T) {
	d, b := newTestBridge(t)
	n := d.AddNode(ShapeRectangle, 0, 0, "a")

	t.Run("nil deselects", func(t *testing.T) {
		b.Select(n)
		b.Select(nil)
		assert.False(t, b.PanelVisible())
	})

	t.Run("object with no property surface deselects", func(t *testing.T) {
		b.Select(n)
		b.Select(struct{}{})
		assert.False(t, b.PanelVisible())
	})

	t.Run("panic during probing resets to none", func(t *testing.T) {
		b.Select(n)
		require.NotPanics(t, func() { b.Select(brokenConnector{}) })
		assert.False(t, b.PanelVisible())
		assert.Equal(t, Selection{}, b.Selection())
	})
}

func TestPanelVisibilityTracksSelection(t *testing.T) {
	d, b := newTestBridge(t)
	n := d.AddNode(ShapeRectangle, 0, 0, "a")

	assert.False(t, b.PanelVisible())
	b.Select(n)
	assert.True(t, b.PanelVisible())
	b.Deselect()
	assert.False(t, b.PanelVisible())
	assert.Equal(t, PropertyRecord{}, b.Record())
}

func TestApplyToNode(t *testing.T) {
	d, b := newTestBridge(t)
	n := d.AddNode(ShapeRectangle, 0, 0, "a")
	b.Select(n)

	t.Run("style fields write through", func(t *testing.T) {
		b.Apply("fill", "#ff00ff")
		assert.Equal(t, "#ff00ff", n.Style.FillColor)
		assert.Equal(t, "#ff00ff", b.Record().Fill, "record refreshes from canvas truth")
	})

	t.Run("label routes through the diagram so the node refits", func(t *testing.T) {
		b.Apply("label", "a much longer label than before")
		assert.Equal(t, "a much longer label than before", n.Label)
		assert.GreaterOrEqual(t, n.Width, len("a much longer label than before")+2)
	})

	t.Run("bad stroke width keeps the current value", func(t *testing.T) {
		before := n.Style.StrokeWidth
		b.Apply("strokeWidth", "many")
		assert.Equal(t, before, n.Style.StrokeWidth)
	})

	t.Run("progress creates task data on demand", func(t *testing.T) {
		b.Apply("progress", "80")
		require.NotNil(t, n.Task)
		assert.Equal(t, 80, n.Task.Progress)
		assert.True(t, b.Record().HasProgress)
	})

	t.Run("unknown field is ignored", func(t *testing.T) {
		before := *n
		b.Apply("opacity", "0.5")
		assert.Equal(t, before.Style, n.Style)
		assert.Equal(t, before.Label, n.Label)
	})

	t.Run("one repaint per apply", func(t *testing.T) {
		before := d.Scheduler().Requests()
		b.Apply("stroke", "#00ff00")
		assert.Equal(t, before+1, d.Scheduler().Requests())
	})
}

func TestApplyToConnector(t *testing.T) {
	d, b := newTestBridge(t)
	a := d.AddNode(ShapeRectangle, 0, 0, "a")
	to := d.AddNode(ShapeRectangle, 30, 0, "b")
	id, err := d.Connectors().Create(a.ID, to.ID, nil)
	require.NoError(t, err)
	c, _ := d.Connectors().Connector(id)

	b.Select(c)
	b.Apply("lineStyle", "dotted")

	assert.Equal(t, LineDotted, c.Style.LineStyle)
	assert.Equal(t, LineDotted, b.Record().LineStyle)
}

func TestApplyAfterObjectRemoved(t *testing.T) {
	d, b := newTestBridge(t)
	n := d.AddNode(ShapeRectangle, 0, 0, "a")
	b.Select(n)

	d.RemoveNode(n.ID)
	b.Apply("fill", "#ffffff")

	assert.False(t, b.PanelVisible(), "stale selection collapses instead of erroring")
}
