package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paintCounter stands in for the terminal view.
type paintCounter struct {
	repaints int
}

func (p *paintCounter) RequestRepaint() { p.repaints++ }

func newTestSession(t *testing.T) (*Session, *paintCounter) {
	t.Helper()
	s := NewSession(testLogger())
	canvas := &paintCounter{}
	require.NoError(t, s.Init(canvas))
	return s, canvas
}

func TestSessionLifecycle(t *testing.T) {
	t.Run("init binds the canvas once", func(t *testing.T) {
		s, _ := newTestSession(t)
		assert.True(t, s.Initialized())
		assert.ErrorIs(t, s.Init(&paintCounter{}), ErrSessionBound)
	})

	t.Run("mutations repaint the bound canvas", func(t *testing.T) {
		s, canvas := newTestSession(t)
		s.Diagram().AddNode(ShapeRectangle, 0, 0, "a")
		assert.Equal(t, 1, canvas.repaints)
	})

	t.Run("teardown stops repaints and clears selection", func(t *testing.T) {
		s, canvas := newTestSession(t)
		n := s.Diagram().AddNode(ShapeRectangle, 0, 0, "a")
		s.Bridge().Select(n)

		s.Teardown()
		assert.False(t, s.Initialized())
		assert.False(t, s.Bridge().PanelVisible())

		before := canvas.repaints
		s.Diagram().AddNode(ShapeRectangle, 10, 0, "b")
		assert.Equal(t, before, canvas.repaints)
	})

	t.Run("rebind after teardown works", func(t *testing.T) {
		s, _ := newTestSession(t)
		s.Teardown()
		second := &paintCounter{}
		require.NoError(t, s.Init(second))
		s.Diagram().AddNode(ShapeRectangle, 0, 0, "a")
		assert.Equal(t, 1, second.repaints)
	})
}

func TestDirtyTracking(t *testing.T) {
	s, _ := newTestSession(t)
	assert.False(t, s.Dirty(), "fresh session starts clean")

	s.Diagram().AddNode(ShapeRectangle, 0, 0, "a")
	assert.True(t, s.Dirty())

	s.MarkSaved()
	assert.False(t, s.Dirty())

	s.CycleBackground()
	assert.True(t, s.Dirty(), "background is part of the saved content")
}

func TestCycleBackgroundWraps(t *testing.T) {
	s, _ := newTestSession(t)
	start := s.Background()
	for range backgroundCycle {
		s.CycleBackground()
	}
	assert.Equal(t, start, s.Background())
}

func TestGenerationLastRequestWins(t *testing.T) {
	s, _ := newTestSession(t)

	stale := s.BeginGeneration()
	current := s.BeginGeneration()

	assert.False(t, s.CompleteGeneration(stale, "A -> B", 0, 0))
	assert.Empty(t, s.Diagram().Nodes(), "superseded result must not apply")

	assert.True(t, s.CompleteGeneration(current, "A -> B", 0, 0))
	assert.Len(t, s.Diagram().Nodes(), 2)
}

func TestGenerationAfterTeardownIsDropped(t *testing.T) {
	s, _ := newTestSession(t)
	token := s.BeginGeneration()
	s.Teardown()

	assert.False(t, s.CompleteGeneration(token, "A -> B", 0, 0))
	assert.Empty(t, s.Diagram().Nodes())
}

func TestGenerationRejectsEmptyResult(t *testing.T) {
	s, _ := newTestSession(t)
	token := s.BeginGeneration()
	assert.False(t, s.CompleteGeneration(token, "# nothing but comments", 0, 0))
}

func TestGenerationPlacesAtOrigin(t *testing.T) {
	s, _ := newTestSession(t)
	token := s.BeginGeneration()
	require.True(t, s.CompleteGeneration(token, "Only [circle]", 12, 7))

	nodes := s.Diagram().Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, 12, nodes[0].X)
	assert.Equal(t, 7, nodes[0].Y)
	assert.Equal(t, ShapeCircle, nodes[0].Type)
}

func TestLocalGeneratorProducesParseableChain(t *testing.T) {
	text, err := localGenerator{}.Generate(context.Background(), "plan, build, ship")
	require.NoError(t, err)

	tpl := ParseDescription(text)
	assert.Len(t, tpl.Nodes, 3)
	assert.Len(t, tpl.Edges, 2)
}

func TestRebindingBoundSessionIsLogged(t *testing.T) {
	var logBuf bytes.Buffer
	s := NewSession(slog.New(slog.NewTextHandler(&logBuf, nil)))

	m := &model{config: defaultConfig()}
	m.addNewBuffer(s, "")
	m.addNewBuffer(s, "second.json")

	require.Len(t, m.buffers, 2)
	assert.Contains(t, logBuf.String(), "already bound")
}
