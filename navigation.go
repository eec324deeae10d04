package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// navDelta decodes a movement key into a unit direction on the grid.
func navDelta(key string) (dx, dy int, ok bool) {
	switch strings.TrimPrefix(strings.ToLower(key), "shift+") {
	case "h", "left":
		return -1, 0, true
	case "l", "right":
		return 1, 0, true
	case "k", "up":
		return 0, -1, true
	case "j", "down":
		return 0, 1, true
	}
	return 0, 0, false
}

func (m *model) getMoveSpeed(key string) int {
	if strings.HasPrefix(key, "shift+") || key != strings.ToLower(key) {
		return 2
	}
	return 1
}

// handleNavigation moves the cursor, or the viewport when pan mode is
// active. Panning drags the world under a fixed cursor, so the offsets
// run opposite the key direction.
func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	dx, dy, ok := navDelta(key)
	if !ok {
		return m, nil
	}
	if m.zPanMode {
		if buf := m.getCurrentBuffer(); buf != nil {
			buf.panX -= dx * speed
			buf.panY -= dy * speed
		}
		return m, nil
	}
	m.cursorX += dx * speed
	m.cursorY += dy * speed
	m.ensureCursorInBounds()
	return m, nil
}

// jumpToNearestNode warps the cursor to the center of the node closest
// to it. If that center lies outside the visible canvas the viewport is
// re-centered on it, so the jump never lands on empty clamped space.
func (m *model) jumpToNearestNode() {
	d := m.getDiagram()
	buf := m.getCurrentBuffer()
	if d == nil || buf == nil {
		return
	}
	wx, wy := m.worldCoords()
	var target *Node
	bestDist := 0
	for _, n := range d.Nodes() {
		cx, cy := n.Center()
		dist := (cx-wx)*(cx-wx) + (cy-wy)*(cy-wy)
		if target == nil || dist < bestDist {
			target, bestDist = n, dist
		}
	}
	if target == nil {
		return
	}
	cx, cy := target.Center()
	m.cursorX = cx - buf.panX
	m.cursorY = cy - buf.panY
	if m.cursorX < 0 || m.cursorX >= m.canvasWidth() || m.cursorY < 0 || m.cursorY > m.height-2 {
		buf.panX = cx - m.canvasWidth()/2
		buf.panY = cy - (m.height-2)/2
		m.cursorX = cx - buf.panX
		m.cursorY = cy - buf.panY
	}
	m.ensureCursorInBounds()
}
