package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const panelWidth = 30

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	panelTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	fieldActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dialogStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("214")).
				Padding(0, 2)
	bufferBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bufferActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	helpHeadingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.help {
		return m.helpView()
	}

	canvasHeight := m.height - 2
	if canvasHeight < 1 {
		canvasHeight = 1
	}
	canvas := m.renderCanvas(m.canvasWidth(), canvasHeight)

	bridge := m.getBridge()
	if bridge != nil && bridge.PanelVisible() {
		panel := m.renderPropertyPanel(canvasHeight)
		canvas = lipgloss.JoinHorizontal(lipgloss.Top, canvas, panel)
	}

	var b strings.Builder
	b.WriteString(canvas)
	b.WriteString("\n")
	b.WriteString(m.renderBufferBar())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderCanvas draws the world into a rune grid, then overlays
// whatever widget the current mode needs.
func (m model) renderCanvas(width, height int) string {
	panX, panY := m.getPanOffset()
	g := newGrid(width, height, panX, panY)

	session := m.getSession()
	if session != nil {
		if session.Background().Grid {
			drawBackgroundGrid(g, width, height)
		}
		selectedID := ""
		if bridge := session.Bridge(); bridge != nil {
			selectedID = bridge.Selection().ID
		}
		renderDiagram(g, session.Diagram(), selectedID)
	}

	if m.mode != ModeStartup {
		g.setScreen(m.cursorX, m.cursorY, '█')
	}

	rows := g.lines()
	switch m.mode {
	case ModeTemplatePicker:
		rows = overlayDialog(rows, m.templatePickerDialog(), width)
	case ModeGeneratePrompt:
		rows = overlayDialog(rows, m.promptDialog("Describe the diagram", m.promptText), width)
	case ModeFileInput:
		rows = overlayDialog(rows, m.fileDialog(), width)
	case ModeConfirm:
		rows = overlayDialog(rows, m.confirmDialog(), width)
	}
	return strings.Join(rows, "\n")
}

// drawBackgroundGrid dots the canvas so alignment reads at a glance.
func drawBackgroundGrid(g *grid, width, height int) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x += 4 {
			g.setScreen(x, y, '·')
		}
	}
}

// overlayDialog replaces the top rows of the canvas with a dialog box.
func overlayDialog(rows []string, dialog string, width int) []string {
	dialogRows := strings.Split(dialog, "\n")
	offset := 1
	for i, row := range dialogRows {
		at := offset + i
		if at >= len(rows) {
			break
		}
		pad := (width - lipgloss.Width(row)) / 2
		if pad < 0 {
			pad = 0
		}
		rows[at] = strings.Repeat(" ", pad) + row
	}
	return rows
}

func (m model) templatePickerDialog() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Insert template"))
	b.WriteString("\n\n")
	for i, t := range builtinTemplates {
		line := fmt.Sprintf("  %s", t.Name)
		if i == m.templateIndex {
			line = fieldActiveStyle.Render(fmt.Sprintf("> %s", t.Name))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("enter insert · esc cancel"))
	return dialogStyle.Render(b.String())
}

func (m model) promptDialog(title, text string) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(text)
	b.WriteString("█\n\n")
	b.WriteString(statusStyle.Render("enter submit · esc cancel"))
	return dialogStyle.Render(b.String())
}

func (m model) fileDialog() string {
	var b strings.Builder
	switch m.fileOp {
	case FileOpSave:
		b.WriteString(panelTitleStyle.Render("Save diagram"))
	case FileOpSavePNG:
		b.WriteString(panelTitleStyle.Render("Export PNG"))
	case FileOpSaveVisualTXT:
		b.WriteString(panelTitleStyle.Render("Export text"))
	case FileOpOpen:
		b.WriteString(panelTitleStyle.Render("Open diagram"))
	}
	b.WriteString("\n\n")

	if m.fileOp == FileOpOpen {
		if len(m.fileList) == 0 {
			b.WriteString(statusStyle.Render("No diagrams found"))
			b.WriteString("\n")
		}
		for i, f := range m.fileList {
			line := fmt.Sprintf("  %s", f)
			if i == m.selectedFileIndex {
				line = fieldActiveStyle.Render(fmt.Sprintf("> %s", f))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("j/k select · enter open · esc cancel"))
	} else {
		b.WriteString(fmt.Sprintf("Name: %s█\n\n", m.filename))
		b.WriteString(statusStyle.Render("enter confirm · esc cancel"))
	}
	return dialogStyle.Render(b.String())
}

func (m model) confirmDialog() string {
	var question string
	switch m.confirmAction {
	case ConfirmDeleteNode:
		question = "Delete node and attached connectors? (y/n)"
	case ConfirmDeleteConnector:
		question = "Delete connector? (y/n)"
	case ConfirmQuit:
		question = "Unsaved changes. Quit anyway? (y/n)"
	case ConfirmNewDiagram:
		question = "Unsaved changes. Start a new diagram? (y/n)"
	case ConfirmCloseBuffer:
		question = "Unsaved changes. Close this buffer? (y/n)"
	case ConfirmOverwriteFile:
		question = fmt.Sprintf("Overwrite %s.json? (y/n)", m.confirmID)
	case ConfirmChooseExportType:
		question = "Export as (p)ng or (t)ext?"
	}
	return dialogStyle.Render(question)
}

func (m model) renderPropertyPanel(height int) string {
	bridge := m.getBridge()
	rec := bridge.Record()

	var b strings.Builder
	if rec.Kind == SelectConnector {
		b.WriteString(panelTitleStyle.Render("Connector"))
	} else {
		b.WriteString(panelTitleStyle.Render("Node"))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(rec.ID))
	b.WriteString("\n\n")

	for i, field := range m.propertyFields {
		value := panelFieldValue(rec, field)
		if m.mode == ModePropertyEdit && i == m.propertyIndex {
			value = m.editText + "█"
		}
		line := fmt.Sprintf("%-12s %s", field, value)
		if i == m.propertyIndex && (m.mode == ModeProperties || m.mode == ModePropertyEdit) {
			line = fieldActiveStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == ModePropertyEdit {
		b.WriteString(statusStyle.Render("enter apply · esc back"))
	} else {
		b.WriteString(statusStyle.Render("j/k field · enter edit\nd delete · esc close"))
	}

	return panelStyle.Height(height - 2).Width(panelWidth - 4).Render(b.String())
}

func (m model) renderBufferBar() string {
	var parts []string
	for i, buf := range m.buffers {
		name := buf.filename
		if name == "" {
			name = "[untitled]"
		}
		if buf.session.Dirty() {
			name += "*"
		}
		label := fmt.Sprintf(" %d:%s ", i+1, name)
		if i == m.currentBufferIndex {
			parts = append(parts, bufferActiveStyle.Render(label))
		} else {
			parts = append(parts, bufferBarStyle.Render(label))
		}
	}
	return strings.Join(parts, "|")
}

func (m model) renderStatusBar() string {
	if m.errorMessage != "" {
		return errorStyle.Render(m.errorMessage)
	}
	if m.successMessage != "" {
		return successStyle.Render(m.successMessage)
	}

	panX, panY := m.getPanOffset()
	left := fmt.Sprintf(" %s | (%d,%d)", m.modeString(), m.cursorX+panX, m.cursorY+panY)
	if m.zPanMode {
		left += " | PAN"
	}

	var hint string
	switch m.mode {
	case ModeNormal:
		hint = "a add · enter select · c connect · T template · G generate · ? help"
	case ModeConnect:
		hint = "move to target · enter connect · esc cancel"
	case ModeMove:
		hint = "hjkl move · enter commit · esc revert"
	case ModeResize:
		hint = "hjkl resize · enter commit · esc revert"
	case ModeEditing:
		hint = "type label · enter newline · esc done"
	case ModeStartup:
		hint = "n new · t template · o open · q quit"
	}
	return statusStyle.Render(left + " | " + hint)
}

func (m model) modeString() string {
	switch m.mode {
	case ModeStartup:
		return "STARTUP"
	case ModeNormal:
		return "NORMAL"
	case ModeEditing:
		return "EDIT"
	case ModeConnect:
		return "CONNECT"
	case ModeMove:
		return "MOVE"
	case ModeResize:
		return "RESIZE"
	case ModeProperties:
		return "PROPS"
	case ModePropertyEdit:
		return "PROPS"
	case ModeTemplatePicker:
		return "TEMPLATE"
	case ModeGeneratePrompt:
		return "GENERATE"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	}
	return ""
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Navigation", [][2]string{
		{"h j k l / arrows", "move cursor"},
		{"H J K L", "move faster"},
		{"g", "jump to nearest node"},
		{"z", "toggle pan mode"},
	}},
	{"Nodes", [][2]string{
		{"a", "add node at cursor"},
		{"A", "add node with next shape"},
		{"s", "cycle shape under cursor"},
		{"e", "edit label"},
		{"m", "move node"},
		{"r", "resize node"},
		{"d", "delete under cursor"},
		{"y / p", "copy / paste node"},
	}},
	{"Connectors", [][2]string{
		{"c", "connect from node under cursor"},
		{"enter", "select node or connector"},
	}},
	{"Diagram", [][2]string{
		{"T", "insert template"},
		{"G", "generate from description"},
		{"b", "cycle background"},
		{"u / ctrl+r", "undo / redo"},
	}},
	{"Files", [][2]string{
		{"w", "save"},
		{"o", "open"},
		{"x", "export png or text"},
	}},
	{"Buffers", [][2]string{
		{"N", "new buffer"},
		{"tab / shift+tab", "next / previous buffer"},
		{"ctrl+w", "close buffer"},
		{"ctrl+n", "reset to a new diagram"},
	}},
}

func (m model) helpView() string {
	var lines []string
	lines = append(lines, helpHeadingStyle.Render("flowkit help"), "")
	for _, section := range helpSections {
		lines = append(lines, helpHeadingStyle.Render(section.title))
		for _, kv := range section.keys {
			lines = append(lines, fmt.Sprintf("  %-18s %s", kv[0], kv[1]))
		}
		lines = append(lines, "")
	}
	lines = append(lines, statusStyle.Render("j/k scroll · esc close"))

	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	start := m.helpScroll
	if start > len(lines)-1 {
		start = len(lines) - 1
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
