package main

import (
	"hash/fnv"
	"log/slog"
)

// CanvasSurface is what the session needs from a rendering surface:
// a way to ask for a repaint. The bubbletea view satisfies it; tests
// use a counter.
type CanvasSurface interface {
	RequestRepaint()
}

// Background is the diagram-level backdrop descriptor.
type Background struct {
	Color string `json:"color"`
	Grid  bool   `json:"grid"`
}

var backgroundCycle = []Background{
	{Color: "#ffffff"},
	{Color: "#ffffff", Grid: true},
	{Color: "#fdf6e3"},
	{Color: "#1e1e1e"},
}

// Session is the per-editor state store: one exists per open buffer,
// created on mount and torn down on unmount. It owns no node or
// connector data, only the canvas binding and transient UI state.
type Session struct {
	diagram *Diagram
	bridge  *PropertyBridge
	log     *slog.Logger

	canvas      CanvasSurface
	background  Background
	savedHash   uint64
	genToken    uint64
	initialized bool
}

func NewSession(log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	d := NewDiagram()
	s := &Session{
		diagram:    d,
		bridge:     NewPropertyBridge(d, log),
		log:        log,
		background: backgroundCycle[0],
	}
	s.savedHash = s.ContentHash()
	return s
}

func (s *Session) Diagram() *Diagram       { return s.diagram }
func (s *Session) Bridge() *PropertyBridge { return s.bridge }
func (s *Session) Background() Background  { return s.background }
func (s *Session) Initialized() bool       { return s.initialized }

// Init binds the canvas handle and wires repaint scheduling. Binding
// twice without a teardown is rejected so stale surfaces cannot leak.
func (s *Session) Init(canvas CanvasSurface) error {
	if s.initialized {
		return ErrSessionBound
	}
	s.canvas = canvas
	s.diagram.Scheduler().Notify(func() {
		if s.canvas != nil {
			s.canvas.RequestRepaint()
		}
	})
	s.initialized = true
	s.log.Info("session initialized")
	return nil
}

// Teardown unregisters listeners and releases the canvas handle. Late
// generation results arriving afterwards are dropped.
func (s *Session) Teardown() {
	s.diagram.Scheduler().Notify(nil)
	s.canvas = nil
	s.bridge.Deselect()
	s.initialized = false
	s.log.Info("session torn down")
}

// SetBackground replaces the backdrop and schedules a repaint.
func (s *Session) SetBackground(bg Background) {
	s.background = bg
	s.diagram.Scheduler().Request()
}

// CycleBackground steps through the built-in backdrops.
func (s *Session) CycleBackground() {
	for i, bg := range backgroundCycle {
		if bg == s.background {
			s.SetBackground(backgroundCycle[(i+1)%len(backgroundCycle)])
			return
		}
	}
	s.SetBackground(backgroundCycle[0])
}

// ContentHash fingerprints graph content plus background; it is the
// basis for unsaved-change detection, not a durability guarantee.
func (s *Session) ContentHash() uint64 {
	h := fnv.New64a()
	doc := buildDocument(s, 0, 0)
	data, err := encodeDocument(doc)
	if err != nil {
		return 0
	}
	h.Write(data)
	return h.Sum64()
}

func (s *Session) Dirty() bool { return s.ContentHash() != s.savedHash }

// MarkSaved records the current content as the clean state.
func (s *Session) MarkSaved() { s.savedHash = s.ContentHash() }

// BeginGeneration invalidates any in-flight request and returns the
// token the eventual result must present. Last request wins; there is
// no queue.
func (s *Session) BeginGeneration() uint64 {
	s.genToken++
	return s.genToken
}

// CompleteGeneration applies a generated description only if the token
// is still current and the session is live; stale or post-teardown
// results are logged and ignored.
func (s *Session) CompleteGeneration(token uint64, description string, originX, originY int) bool {
	if !s.initialized {
		s.log.Info("dropping generation result, session torn down")
		return false
	}
	if token != s.genToken {
		s.log.Info("dropping superseded generation result", "token", token, "current", s.genToken)
		return false
	}
	t := ParseDescription(description)
	if len(t.Nodes) == 0 {
		s.log.Warn("generation produced no usable nodes")
		return false
	}
	instantiateTemplate(s.diagram, t, originX, originY)
	return true
}
