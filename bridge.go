package main

import (
	"fmt"
	"log/slog"
)

type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectNode
	SelectConnector
)

type Selection struct {
	Kind SelectionKind
	ID   string
}

// propertyReader is the capability every canvas object exposes to the
// bridge: named property access that may legitimately miss fields.
type propertyReader interface {
	Property(name string) (any, bool)
}

// connectorHandle is the capability probe for connector objects. An
// object exposing it is treated as an edge regardless of its concrete
// type.
type connectorHandle interface {
	propertyReader
	connectorID() string
}

func (c *Connector) connectorID() string { return c.ID }

// safeRead is a total function over any object and field: missing
// fields, wrong types and panicking accessors all degrade to the
// caller's default.
func safeRead[T any](obj propertyReader, field string, def T) (result T) {
	result = def
	if obj == nil {
		return
	}
	defer func() {
		if recover() != nil {
			result = def
		}
	}()
	v, ok := obj.Property(field)
	if !ok {
		return
	}
	if t, ok := v.(T); ok {
		result = t
	}
	return
}

// PropertyRecord is the normalized view the panel renders, one shape
// for both object kinds.
type PropertyRecord struct {
	Kind        SelectionKind
	ID          string
	Label       string
	Fill        string
	Stroke      string
	StrokeWidth int
	TextColor   string
	LineStyle   LineStyle
	HasArrow    bool
	X, Y        int
	Width       int
	Height      int
	Progress    int
	HasProgress bool
}

// connectorFallbackRecord is substituted whenever a connector's style
// cannot be read; the session must keep editing instead of surfacing
// the failure.
func connectorFallbackRecord(id string) PropertyRecord {
	return PropertyRecord{
		Kind:        SelectConnector,
		ID:          id,
		Fill:        "#000000",
		StrokeWidth: 2,
		LineStyle:   LineSolid,
		HasArrow:    true,
	}
}

// PropertyBridge reconciles canvas selection with the property panel:
// selection events come in, normalized records go out, panel edits are
// written back onto the live object.
type PropertyBridge struct {
	diagram *Diagram
	log     *slog.Logger

	selection Selection
	record    PropertyRecord
}

func NewPropertyBridge(d *Diagram, log *slog.Logger) *PropertyBridge {
	if log == nil {
		log = slog.Default()
	}
	return &PropertyBridge{diagram: d, log: log}
}

func (b *PropertyBridge) Selection() Selection   { return b.selection }
func (b *PropertyBridge) Record() PropertyRecord { return b.record }
func (b *PropertyBridge) PanelVisible() bool     { return b.selection.Kind != SelectNone }

// Select normalizes the given canvas object into the active property
// record. Any panic while probing the object resets the selection to
// none — a malformed object must never wedge the panel half-populated.
func (b *PropertyBridge) Select(obj any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("selection state corrupted, resetting", "panic", fmt.Sprint(r))
			b.Deselect()
		}
	}()

	if obj == nil {
		b.Deselect()
		return
	}

	if h, ok := obj.(connectorHandle); ok {
		b.selectConnector(h)
		return
	}
	if r, ok := obj.(propertyReader); ok {
		b.selectShape(r)
		return
	}
	// Object exposes none of the conventional surface; treat as no
	// selection rather than guessing.
	b.Deselect()
}

func (b *PropertyBridge) selectConnector(h connectorHandle) {
	id := h.connectorID()
	style, err := b.diagram.Connectors().StyleOf(id)
	if err != nil {
		b.log.Warn("connector style unreadable, using defaults", "connector", id, "err", err)
		b.selection = Selection{Kind: SelectConnector, ID: id}
		b.record = connectorFallbackRecord(id)
		return
	}
	b.selection = Selection{Kind: SelectConnector, ID: id}
	b.record = PropertyRecord{
		Kind:        SelectConnector,
		ID:          id,
		Label:       safeRead(h, "label", ""),
		Fill:        style.StrokeColor,
		Stroke:      style.StrokeColor,
		StrokeWidth: style.StrokeWidth,
		LineStyle:   style.LineStyle,
		HasArrow:    style.HasArrow,
	}
}

// selectShape reads every field independently; a field the object does
// not expose gets its per-field default without blocking the rest.
func (b *PropertyBridge) selectShape(r propertyReader) {
	id := safeRead(r, "id", "")
	if n, ok := r.(*Node); ok {
		id = n.ID
	}
	b.selection = Selection{Kind: SelectNode, ID: id}
	b.record = PropertyRecord{
		Kind:        SelectNode,
		ID:          id,
		Label:       safeRead(r, "label", ""),
		Fill:        safeRead(r, "fill", "#000000"),
		Stroke:      safeRead(r, "stroke", "#000000"),
		StrokeWidth: safeRead(r, "strokeWidth", 0),
		TextColor:   safeRead(r, "textColor", "#000000"),
		X:           safeRead(r, "x", 0),
		Y:           safeRead(r, "y", 0),
		Width:       safeRead(r, "width", 0),
		Height:      safeRead(r, "height", 0),
	}
	if _, ok := r.Property("progress"); ok {
		b.record.Progress = safeRead(r, "progress", 0)
		b.record.HasProgress = true
	}
}

// Deselect hides the panel; this is pure state, the view just follows.
func (b *PropertyBridge) Deselect() {
	b.selection = Selection{}
	b.record = PropertyRecord{}
}

// Apply writes one edited panel field back to the live object through
// the owning manager and refreshes the record so the panel re-renders
// from canvas truth, not from the form.
func (b *PropertyBridge) Apply(field, value string) {
	switch b.selection.Kind {
	case SelectConnector:
		b.diagram.Connectors().ApplyStyleField(b.selection.ID, field, value)
		if c, ok := b.diagram.Connectors().Connector(b.selection.ID); ok {
			b.selectConnector(c)
		} else {
			b.Deselect()
		}
	case SelectNode:
		b.applyToNode(field, value)
	}
}

func (b *PropertyBridge) applyToNode(field, value string) {
	n, ok := b.diagram.Node(b.selection.ID)
	if !ok {
		b.Deselect()
		return
	}
	b.diagram.Scheduler().Gesture(func() {
		switch field {
		case "fill":
			n.Style.FillColor = value
		case "stroke":
			n.Style.StrokeColor = value
		case "textColor":
			n.Style.TextColor = value
		case "strokeWidth":
			if w, err := parseInt(value); err == nil && w > 0 {
				n.Style.StrokeWidth = w
			}
		case "label":
			b.diagram.SetNodeLabel(n.ID, value)
		case "progress":
			if p, err := parseInt(value); err == nil {
				if n.Task == nil {
					n.Task = &TaskData{}
				}
				if p < 0 {
					p = 0
				}
				n.Task.Progress = p
			}
		default:
			// Unknown fields are ignored for forward compatibility.
		}
		b.diagram.Scheduler().Request()
	})
	b.selectShape(n)
}
