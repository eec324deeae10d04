package main

import (
	"encoding/json"
	"fmt"
	"os"
)

const documentVersion = 1

// edgeRecord flattens a connector for storage; routed coordinates are
// derived state and recomputed on load.
type edgeRecord struct {
	ID     string         `json:"id"`
	From   string         `json:"sourceNodeId"`
	To     string         `json:"targetNodeId"`
	Anchor AnchorSide     `json:"anchorSide,omitempty"`
	Style  ConnectorStyle `json:"style"`
	Label  string         `json:"label,omitempty"`
}

// Document is the plain structure the save/load collaborators consume.
// Round-trip fidelity of the in-memory graph is the contract; nothing
// beyond that is promised.
type Document struct {
	Version    int          `json:"version"`
	Nodes      []Node       `json:"nodes"`
	Edges      []edgeRecord `json:"edges"`
	Background Background   `json:"background"`
	Viewport   point        `json:"viewport"`
}

func buildDocument(s *Session, panX, panY int) Document {
	snap := s.diagram.Snapshot()
	doc := Document{
		Version:    documentVersion,
		Nodes:      snap.Nodes,
		Background: s.background,
		Viewport:   point{panX, panY},
	}
	for _, e := range snap.Edges {
		doc.Edges = append(doc.Edges, edgeRecord{
			ID:     e.ID,
			From:   e.FromID,
			To:     e.ToID,
			Anchor: e.Anchor,
			Style:  e.Style,
			Label:  e.Label,
		})
	}
	return doc
}

func encodeDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// SaveDocument writes the session's graph, background and viewport.
func SaveDocument(filename string, s *Session, panX, panY int) error {
	data, err := encodeDocument(buildDocument(s, panX, panY))
	if err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// restoreDocument rebuilds a session's diagram state from a document.
// Edges whose endpoints did not survive (malformed input) are dropped
// rather than restored dangling.
func restoreDocument(s *Session, doc Document) (panX, panY int) {
	d := s.diagram
	d.sched.Gesture(func() {
		for _, rec := range doc.Nodes {
			n, err := d.AddNodeWithID(rec.ID, rec.Type, rec.X, rec.Y, rec.Label, nil)
			if err != nil {
				continue
			}
			n.Style = rec.Style
			n.Description = rec.Description
			if rec.Task != nil {
				task := *rec.Task
				n.Task = &task
			}
			if rec.Width >= minNodeWidth {
				n.Width = rec.Width
			}
			if rec.Height >= minNodeHeight {
				n.Height = rec.Height
			}
		}
		for _, rec := range doc.Edges {
			style := rec.Style
			id, err := d.Connectors().CreateWithID(rec.ID, rec.From, rec.To, &style)
			if err != nil {
				continue
			}
			if c, ok := d.Connectors().Connector(id); ok {
				if rec.Anchor != "" {
					c.Anchor = rec.Anchor
				}
				c.Label = rec.Label
				d.Connectors().reroute(c)
			}
		}
	})
	s.background = doc.Background
	s.MarkSaved()
	return doc.Viewport.X, doc.Viewport.Y
}

// LoadDocument reads a saved diagram into a fresh session.
func LoadDocument(filename string, s *Session) (panX, panY int, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", filename, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", filename, err)
	}
	if doc.Version != documentVersion {
		return 0, 0, fmt.Errorf("parse %s: unsupported version %d", filename, doc.Version)
	}
	panX, panY = restoreDocument(s, doc)
	return panX, panY, nil
}
