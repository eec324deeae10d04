package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	logger := openLogger()
	p := tea.NewProgram(
		initialModel(loadConfig(), logger),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

// openLogger sends structured logs to a file; the TUI owns stdout.
func openLogger() *slog.Logger {
	home, err := os.UserHomeDir()
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	file, err := os.OpenFile(filepath.Join(home, ".flowkit.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(file, nil))
}

var appLogger *slog.Logger

func initialModel(config *Config, logger *slog.Logger) model {
	appLogger = logger
	m := model{
		config:    config,
		generator: localGenerator{},
		mode:      ModeNormal,
	}

	session := NewSession(logger)
	m.addNewBuffer(session, "")

	if config.StartMenu {
		m.mode = ModeStartup
		session.Diagram().AddNode(ShapeText, 2, 1,
			"flowkit\n\n'n' New diagram\n't' New from template\n'o' Open existing\n'q' Quit")
	}
	return m
}

func (m *model) ensureCursorInBounds() {
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	maxX := m.canvasWidth() - 1
	if maxX >= 0 && m.cursorX > maxX {
		m.cursorX = maxX
	}
	maxY := m.height - 2
	if maxY < 0 {
		maxY = 0
	}
	if m.cursorY > maxY {
		m.cursorY = maxY
	}
}

// canvasWidth is the grid width left after the property panel.
func (m *model) canvasWidth() int {
	width := m.width
	if width < 1 {
		width = 80
	}
	if bridge := m.getBridge(); bridge != nil && bridge.PanelVisible() {
		width -= panelWidth
		if width < 10 {
			width = 10
		}
	}
	return width
}

func (m *model) scanDiagramFiles() {
	m.fileList = []string{}

	dir := m.config.SaveDirectory
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			m.selectedFileIndex = -1
			return
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		m.selectedFileIndex = -1
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)

	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
		m.filename = strings.TrimSuffix(m.fileList[0], ".json")
	} else {
		m.selectedFileIndex = -1
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case generationMsg:
		return m.handleGenerationResult(msg), nil

	case tea.KeyMsg:
		if m.help && m.mode != ModeStartup {
			switch msg.String() {
			case "?", "esc", "q":
				m.help = false
				m.helpScroll = 0
			case "j", "down":
				m.helpScroll++
			case "k", "up":
				if m.helpScroll > 0 {
					m.helpScroll--
				}
			}
			return m, nil
		}

		switch m.mode {
		case ModeStartup:
			return m.updateStartup(msg)
		case ModeNormal:
			return m.updateNormal(msg)
		case ModeConnect:
			return m.updateConnect(msg)
		case ModeMove:
			return m.updateMove(msg)
		case ModeResize:
			return m.updateResize(msg)
		case ModeEditing:
			return m.updateEditing(msg)
		case ModeProperties:
			return m.updateProperties(msg)
		case ModePropertyEdit:
			return m.updatePropertyEdit(msg)
		case ModeTemplatePicker:
			return m.updateTemplatePicker(msg)
		case ModeGeneratePrompt:
			return m.updateGeneratePrompt(msg)
		case ModeFileInput:
			return m.updateFileInput(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m model) handleGenerationResult(msg generationMsg) model {
	session := m.getSession()
	if session == nil {
		return m
	}
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("Generation failed: %v", msg.err)
		return m
	}
	panX, panY := m.getPanOffset()
	if session.CompleteGeneration(msg.token, msg.text, panX+2, panY+2) {
		m.successMessage = "Diagram generated"
	}
	return m
}

func (m model) updateStartup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.resetToNewDiagram()
		return m, nil
	case "t":
		m.resetToNewDiagram()
		m.mode = ModeTemplatePicker
		m.templateIndex = 0
		return m, nil
	case "o":
		m.scanDiagramFiles()
		m.fileOp = FileOpOpen
		m.fromStartup = true
		m.mode = ModeFileInput
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) resetToNewDiagram() {
	for i := range m.buffers {
		m.buffers[i].session.Teardown()
	}
	m.buffers = m.buffers[:0]
	m.addNewBuffer(NewSession(appLogger), "")
	m.mode = ModeNormal
	m.cursorX, m.cursorY = 4, 2
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "h", "l", "k", "j", "left", "right", "up", "down",
		"H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return m.handleNavigation(key, m.getMoveSpeed(key))
	case "z":
		m.zPanMode = !m.zPanMode
		return m, nil
	case "g":
		m.jumpToNearestNode()
		return m, nil

	case "a":
		return m.addNodeAtCursor(m.config.DefaultShape), nil
	case "A":
		return m.addNodeAtCursor(nextShape(m.config.DefaultShape)), nil
	case "s":
		m.cycleShapeUnderCursor()
		return m, nil

	case "enter":
		m.selectAtCursor()
		return m, nil
	case "c":
		if n := m.nodeAtCursor(); n != nil {
			m.connectFromID = n.ID
			m.mode = ModeConnect
		} else {
			m.errorMessage = "Place cursor on a node to connect"
		}
		return m, nil
	case "e":
		if n := m.nodeAtCursor(); n != nil {
			m.editText = n.Label
			m.originalEditText = n.Label
			m.editCursorPos = len(m.editText)
			m.moveNodeID = n.ID
			m.mode = ModeEditing
		}
		return m, nil
	case "m":
		if n := m.nodeAtCursor(); n != nil {
			m.moveNodeID = n.ID
			m.originalMoveX, m.originalMoveY = n.X, n.Y
			m.mode = ModeMove
		}
		return m, nil
	case "r":
		if n := m.nodeAtCursor(); n != nil {
			m.moveNodeID = n.ID
			m.originalWidth, m.originalHeight = n.Width, n.Height
			m.mode = ModeResize
		}
		return m, nil
	case "d":
		return m.requestDelete(), nil

	case "y":
		if n := m.nodeAtCursor(); n != nil {
			cp := *n
			m.clipboardNode = &cp
			m.successMessage = "Node copied"
		}
		return m, nil
	case "p":
		m.pasteAtCursor()
		return m, nil

	case "u":
		m.undo()
		return m, nil
	case "ctrl+r":
		m.redo()
		return m, nil

	case "T":
		m.mode = ModeTemplatePicker
		m.templateIndex = 0
		return m, nil
	case "G":
		m.promptText = ""
		m.mode = ModeGeneratePrompt
		return m, nil
	case "b":
		if s := m.getSession(); s != nil {
			s.CycleBackground()
		}
		return m, nil

	case "w":
		m.fileOp = FileOpSave
		m.mode = ModeFileInput
		if buf := m.getCurrentBuffer(); buf != nil {
			m.filename = strings.TrimSuffix(buf.filename, ".json")
		}
		return m, nil
	case "o":
		m.scanDiagramFiles()
		m.fileOp = FileOpOpen
		m.openInNewBuffer = true
		m.mode = ModeFileInput
		return m, nil
	case "x":
		m.confirmAction = ConfirmChooseExportType
		m.mode = ModeConfirm
		return m, nil

	case "tab":
		if len(m.buffers) > 1 {
			m.currentBufferIndex = (m.currentBufferIndex + 1) % len(m.buffers)
		}
		return m, nil
	case "shift+tab":
		if len(m.buffers) > 1 {
			m.currentBufferIndex = (m.currentBufferIndex - 1 + len(m.buffers)) % len(m.buffers)
		}
		return m, nil
	case "ctrl+w":
		if m.config.Confirmations && m.sessionDirty() {
			m.confirmAction = ConfirmCloseBuffer
			m.mode = ModeConfirm
		} else {
			m.closeCurrentBuffer()
		}
		return m, nil
	case "N":
		m.addNewBuffer(NewSession(appLogger), "")
		return m, nil
	case "ctrl+n":
		if m.config.Confirmations && m.sessionDirty() {
			m.confirmAction = ConfirmNewDiagram
			m.mode = ModeConfirm
		} else {
			m.resetToNewDiagram()
		}
		return m, nil

	case "?":
		m.help = true
		return m, nil
	case "q", "ctrl+c":
		if m.config.Confirmations && m.sessionDirty() {
			m.confirmAction = ConfirmQuit
			m.mode = ModeConfirm
			return m, nil
		}
		return m, tea.Quit
	}
	return m, nil
}

var shapeCycle = []ShapeType{
	ShapeRectangle, ShapeCircle, ShapeDiamond, ShapeServer, ShapeDatabase,
	ShapeCloud, ShapeUser, ShapeTeam, ShapeTask, ShapeMilestone, ShapeSummary, ShapeText,
}

func nextShape(typ ShapeType) ShapeType {
	for i, s := range shapeCycle {
		if s == typ {
			return shapeCycle[(i+1)%len(shapeCycle)]
		}
	}
	return ShapeRectangle
}

func (m *model) nodeAtCursor() *Node {
	d := m.getDiagram()
	if d == nil {
		return nil
	}
	x, y := m.worldCoords()
	return d.NodeAt(x, y)
}

func (m *model) connectorAtCursor() *Connector {
	d := m.getDiagram()
	if d == nil {
		return nil
	}
	x, y := m.worldCoords()
	best := (*Connector)(nil)
	bestDist := 3 // only near hits count
	for _, c := range d.Connectors().All() {
		dist := distToRoute(c, x, y)
		if dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	return best
}

// distToRoute measures Manhattan distance from a point to the L route
// of a connector.
func distToRoute(c *Connector, x, y int) int {
	segDist := func(x1, y1, x2, y2 int) int {
		cx := clamp(x, min(x1, x2), max(x1, x2))
		cy := clamp(y, min(y1, y2), max(y1, y2))
		return abs(cx-x) + abs(cy-y)
	}
	if c.FromX == c.ToX || c.FromY == c.ToY {
		return segDist(c.FromX, c.FromY, c.ToX, c.ToY)
	}
	d1 := segDist(c.FromX, c.FromY, c.ToX, c.FromY)
	d2 := segDist(c.ToX, c.FromY, c.ToX, c.ToY)
	return min(d1, d2)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m model) addNodeAtCursor(typ ShapeType) model {
	d := m.getDiagram()
	if d == nil {
		return m
	}
	x, y := m.worldCoords()
	n := d.AddNode(typ, x, y, "")
	m.recordAction(ActionAddNode, AddNodeData{ID: n.ID, Type: typ, X: x, Y: y}, nil)

	m.editText = ""
	m.originalEditText = ""
	m.editCursorPos = 0
	m.moveNodeID = n.ID
	m.mode = ModeEditing
	return m
}

func (m *model) cycleShapeUnderCursor() {
	n := m.nodeAtCursor()
	if n == nil {
		return
	}
	d := m.getDiagram()
	d.Scheduler().Gesture(func() {
		n.Type = nextShape(n.Type)
		n.Style = StyleFor(n.Type, nil)
		if n.Task == nil && (n.Type == ShapeTask || n.Type == ShapeMilestone || n.Type == ShapeSummary) {
			n.Task = &TaskData{}
		}
		d.Connectors().rerouteAttached(n.ID)
		d.Scheduler().Request()
	})
}

// selectAtCursor feeds whatever sits under the cursor into the bridge;
// nodes win over connectors on overlap.
func (m *model) selectAtCursor() {
	bridge := m.getBridge()
	if bridge == nil {
		return
	}
	if n := m.nodeAtCursor(); n != nil {
		bridge.Select(n)
	} else if c := m.connectorAtCursor(); c != nil {
		bridge.Select(c)
	} else {
		bridge.Deselect()
		m.mode = ModeNormal
		return
	}
	if bridge.PanelVisible() {
		m.propertyFields = panelFields(bridge.Record())
		m.propertyIndex = 0
		m.mode = ModeProperties
	}
}

func (m *model) pasteAtCursor() {
	d := m.getDiagram()
	if d == nil {
		return
	}
	x, y := m.worldCoords()
	if m.clipboardNode != nil {
		n := d.AddNode(m.clipboardNode.Type, x, y, m.clipboardNode.Label)
		n.Style = m.clipboardNode.Style
		if m.clipboardNode.Task != nil {
			task := *m.clipboardNode.Task
			n.Task = &task
		}
		m.recordAction(ActionAddNode, AddNodeData{ID: n.ID, Type: n.Type, X: x, Y: y, Label: n.Label}, nil)
		return
	}
	text, err := readClipboardText()
	if err != nil || strings.TrimSpace(text) == "" {
		m.errorMessage = "Nothing to paste"
		return
	}
	n := d.AddNode(m.config.DefaultShape, x, y, cleanClipboardText(text))
	m.recordAction(ActionAddNode, AddNodeData{ID: n.ID, Type: n.Type, X: x, Y: y, Label: n.Label}, nil)
}

func (m model) requestDelete() model {
	if n := m.nodeAtCursor(); n != nil {
		if m.config.Confirmations {
			m.confirmAction = ConfirmDeleteNode
			m.confirmID = n.ID
			m.mode = ModeConfirm
		} else {
			m.deleteNode(n.ID)
		}
		return m
	}
	if c := m.connectorAtCursor(); c != nil {
		if m.config.Confirmations {
			m.confirmAction = ConfirmDeleteConnector
			m.confirmID = c.ID
			m.mode = ModeConfirm
		} else {
			m.deleteConnector(c.ID)
		}
	}
	return m
}

func (m *model) deleteNode(id string) {
	d := m.getDiagram()
	n, ok := d.Node(id)
	if !ok {
		return
	}
	rec := *n
	removed := d.RemoveNode(id)
	m.recordAction(ActionDeleteNode, DeleteNodeData{Node: rec, Connectors: removed}, nil)
	if bridge := m.getBridge(); bridge != nil && bridge.Selection().ID == id {
		bridge.Deselect()
	}
}

func (m *model) deleteConnector(id string) {
	d := m.getDiagram()
	c, ok := d.Connectors().Connector(id)
	if !ok {
		return
	}
	rec := *c
	d.Connectors().Remove(id)
	m.recordAction(ActionDeleteConnector, AddConnectorData{Connector: rec}, nil)
	if bridge := m.getBridge(); bridge != nil && bridge.Selection().ID == id {
		bridge.Deselect()
	}
}

func (m model) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		m.connectFromID = ""
		m.mode = ModeNormal
		return m, nil
	case "enter":
		target := m.nodeAtCursor()
		if target == nil {
			m.errorMessage = "No node under cursor"
			return m, nil
		}
		if target.ID == m.connectFromID {
			m.errorMessage = "Cannot connect a node to itself"
			return m, nil
		}
		d := m.getDiagram()
		id, err := d.Connectors().Create(m.connectFromID, target.ID, nil)
		if err != nil {
			m.errorMessage = fmt.Sprintf("Connect failed: %v", err)
			m.mode = ModeNormal
			m.connectFromID = ""
			return m, nil
		}
		if c, ok := d.Connectors().Connector(id); ok {
			m.recordAction(ActionAddConnector, AddConnectorData{Connector: *c}, nil)
		}
		m.connectFromID = ""
		m.mode = ModeNormal
		return m, nil
	default:
		return m.handleNavigation(key, m.getMoveSpeed(key))
	}
}

func (m model) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	d := m.getDiagram()
	speed := m.getMoveSpeed(key)
	switch key {
	case "h", "left", "H", "shift+left":
		d.MoveNode(m.moveNodeID, -speed, 0)
	case "l", "right", "L", "shift+right":
		d.MoveNode(m.moveNodeID, speed, 0)
	case "k", "up", "K", "shift+up":
		d.MoveNode(m.moveNodeID, 0, -speed)
	case "j", "down", "J", "shift+down":
		d.MoveNode(m.moveNodeID, 0, speed)
	case "enter":
		if n, ok := d.Node(m.moveNodeID); ok && (n.X != m.originalMoveX || n.Y != m.originalMoveY) {
			m.recordAction(ActionMoveNode,
				MoveNodeData{ID: n.ID, DeltaX: n.X - m.originalMoveX, DeltaY: n.Y - m.originalMoveY},
				OriginalNodeState{ID: n.ID, X: m.originalMoveX, Y: m.originalMoveY})
		}
		m.moveNodeID = ""
		m.mode = ModeNormal
	case "esc":
		d.SetNodePosition(m.moveNodeID, m.originalMoveX, m.originalMoveY)
		m.moveNodeID = ""
		m.mode = ModeNormal
	}
	return m, nil
}

func (m model) updateResize(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	d := m.getDiagram()
	switch key {
	case "h", "left":
		d.ResizeNode(m.moveNodeID, -1, 0)
	case "l", "right":
		d.ResizeNode(m.moveNodeID, 1, 0)
	case "k", "up":
		d.ResizeNode(m.moveNodeID, 0, -1)
	case "j", "down":
		d.ResizeNode(m.moveNodeID, 0, 1)
	case "enter":
		if n, ok := d.Node(m.moveNodeID); ok && (n.Width != m.originalWidth || n.Height != m.originalHeight) {
			m.recordAction(ActionResizeNode,
				OriginalNodeState{ID: n.ID, Width: n.Width, Height: n.Height},
				OriginalNodeState{ID: n.ID, Width: m.originalWidth, Height: m.originalHeight})
		}
		m.moveNodeID = ""
		m.mode = ModeNormal
	case "esc":
		d.SetNodeSize(m.moveNodeID, m.originalWidth, m.originalHeight)
		m.moveNodeID = ""
		m.mode = ModeNormal
	}
	return m, nil
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		d := m.getDiagram()
		if m.editText != m.originalEditText {
			d.SetNodeLabel(m.moveNodeID, m.editText)
			m.recordAction(ActionEditLabel,
				EditLabelData{ID: m.moveNodeID, NewLabel: m.editText, OldLabel: m.originalEditText}, nil)
		}
		m.moveNodeID = ""
		m.mode = ModeNormal
	case "ctrl+c":
		m.moveNodeID = ""
		m.mode = ModeNormal
	case "enter":
		m.insertEditRune('\n')
	case "backspace":
		m.deleteEditRuneBefore()
	case "left":
		m.editCursorLeft()
	case "right":
		m.editCursorRight()
	default:
		if msg.Type == tea.KeyRunes || msg.String() == " " {
			for _, r := range msg.Runes {
				m.insertEditRune(r)
			}
			if msg.String() == " " && len(msg.Runes) == 0 {
				m.insertEditRune(' ')
			}
		}
	}
	return m, nil
}

// The edit cursor is a byte offset into editText and every move below
// keeps it on a rune boundary, so multibyte input never splits a rune.
func (m *model) insertEditRune(r rune) {
	m.editText = m.editText[:m.editCursorPos] + string(r) + m.editText[m.editCursorPos:]
	m.editCursorPos += len(string(r))
}

func (m *model) deleteEditRuneBefore() {
	if m.editCursorPos == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(m.editText[:m.editCursorPos])
	m.editText = m.editText[:m.editCursorPos-size] + m.editText[m.editCursorPos:]
	m.editCursorPos -= size
}

func (m *model) editCursorLeft() {
	if m.editCursorPos > 0 {
		_, size := utf8.DecodeLastRuneInString(m.editText[:m.editCursorPos])
		m.editCursorPos -= size
	}
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

func (m *model) editCursorRight() {
	if m.editCursorPos < len(m.editText) {
		_, size := utf8.DecodeRuneInString(m.editText[m.editCursorPos:])
		m.editCursorPos += size
	}
}

// panelFields orders the editable fields for each object kind.
func panelFields(rec PropertyRecord) []string {
	if rec.Kind == SelectConnector {
		return []string{"label", "stroke", "strokeWidth", "lineStyle", "hasArrow"}
	}
	fields := []string{"label", "fill", "stroke", "strokeWidth", "textColor"}
	if rec.HasProgress {
		fields = append(fields, "progress")
	}
	return fields
}

func panelFieldValue(rec PropertyRecord, field string) string {
	switch field {
	case "label":
		return rec.Label
	case "fill":
		return rec.Fill
	case "stroke":
		return rec.Stroke
	case "strokeWidth":
		return fmt.Sprintf("%d", rec.StrokeWidth)
	case "textColor":
		return rec.TextColor
	case "lineStyle":
		return string(rec.LineStyle)
	case "hasArrow":
		return fmt.Sprintf("%t", rec.HasArrow)
	case "progress":
		return fmt.Sprintf("%d", rec.Progress)
	}
	return ""
}

func (m model) updateProperties(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bridge := m.getBridge()
	if bridge == nil || !bridge.PanelVisible() {
		m.mode = ModeNormal
		return m, nil
	}
	switch msg.String() {
	case "esc":
		bridge.Deselect()
		m.mode = ModeNormal
	case "j", "down":
		if m.propertyIndex < len(m.propertyFields)-1 {
			m.propertyIndex++
		}
	case "k", "up":
		if m.propertyIndex > 0 {
			m.propertyIndex--
		}
	case "enter":
		field := m.propertyFields[m.propertyIndex]
		m.editText = panelFieldValue(bridge.Record(), field)
		m.editCursorPos = len(m.editText)
		m.mode = ModePropertyEdit
	case "d":
		sel := bridge.Selection()
		switch sel.Kind {
		case SelectNode:
			m.deleteNode(sel.ID)
		case SelectConnector:
			m.deleteConnector(sel.ID)
		}
		m.mode = ModeNormal
	}
	return m, nil
}

func (m model) updatePropertyEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bridge := m.getBridge()
	if bridge == nil || !bridge.PanelVisible() {
		m.mode = ModeNormal
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = ModeProperties
	case "enter":
		field := m.propertyFields[m.propertyIndex]
		old := panelFieldValue(bridge.Record(), field)
		sel := bridge.Selection()
		bridge.Apply(field, m.editText)
		if old != m.editText {
			if sel.Kind == SelectConnector {
				m.recordAction(ActionStyleConnector,
					StyleConnectorData{ID: sel.ID, Field: field, NewValue: m.editText, OldValue: old}, nil)
			} else {
				m.recordAction(ActionStyleNode,
					StyleNodeData{ID: sel.ID, Field: field, NewValue: m.editText, OldValue: old}, nil)
			}
		}
		m.mode = ModeProperties
	case "backspace":
		m.deleteEditRuneBefore()
	case "left":
		m.editCursorLeft()
	case "right":
		m.editCursorRight()
	default:
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				m.insertEditRune(r)
			}
		} else if msg.String() == " " {
			m.insertEditRune(' ')
		}
	}
	return m, nil
}

func (m model) updateTemplatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
	case "j", "down":
		if m.templateIndex < len(builtinTemplates)-1 {
			m.templateIndex++
		}
	case "k", "up":
		if m.templateIndex > 0 {
			m.templateIndex--
		}
	case "enter":
		d := m.getDiagram()
		if d == nil {
			m.mode = ModeNormal
			return m, nil
		}
		t := builtinTemplates[m.templateIndex]
		panX, panY := m.getPanOffset()
		nodeIDs, connIDs := Instantiate(d, t.ID, panX+2, panY+2)
		m.recordAction(ActionInstantiate, m.instantiateRecord(t.ID, nodeIDs, connIDs), nil)
		m.successMessage = fmt.Sprintf("Inserted template %q", t.Name)
		m.mode = ModeNormal
	}
	return m, nil
}

// instantiateRecord snapshots the created objects so redo can rebuild
// them after an undo.
func (m *model) instantiateRecord(templateID string, nodeIDs, connIDs []string) InstantiateData {
	d := m.getDiagram()
	data := InstantiateData{TemplateID: templateID, NodeIDs: nodeIDs, ConnIDs: connIDs}
	for _, id := range nodeIDs {
		if n, ok := d.Node(id); ok {
			data.Nodes = append(data.Nodes, *n)
		}
	}
	for _, id := range connIDs {
		if c, ok := d.Connectors().Connector(id); ok {
			data.Connectors = append(data.Connectors, *c)
		}
	}
	return data
}

func (m model) updateGeneratePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptText = ""
		m.mode = ModeNormal
	case "enter":
		session := m.getSession()
		prompt := strings.TrimSpace(m.promptText)
		m.promptText = ""
		m.mode = ModeNormal
		if session == nil || prompt == "" {
			return m, nil
		}
		token := session.BeginGeneration()
		m.successMessage = "Generating..."
		return m, generateCmd(m.generator, token, prompt)
	case "backspace":
		m.promptText = trimLastRune(m.promptText)
	default:
		if msg.Type == tea.KeyRunes {
			m.promptText += string(msg.Runes)
		} else if msg.String() == " " {
			m.promptText += " "
		}
	}
	return m, nil
}

func (m model) updateFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.fromStartup {
			m.mode = ModeStartup
		} else {
			m.mode = ModeNormal
		}
		m.filename = ""
		m.fromStartup = false
		m.openInNewBuffer = false
		return m, nil
	case "enter":
		return m.executeFileOp()
	case "backspace":
		m.filename = trimLastRune(m.filename)
	case "j", "down":
		if m.fileOp == FileOpOpen && m.selectedFileIndex < len(m.fileList)-1 {
			m.selectedFileIndex++
			m.filename = strings.TrimSuffix(m.fileList[m.selectedFileIndex], ".json")
		}
	case "k", "up":
		if m.fileOp == FileOpOpen && m.selectedFileIndex > 0 {
			m.selectedFileIndex--
			m.filename = strings.TrimSuffix(m.fileList[m.selectedFileIndex], ".json")
		}
	default:
		if msg.Type == tea.KeyRunes && m.fileOp != FileOpOpen {
			m.filename += string(msg.Runes)
		}
	}
	return m, nil
}

func (m model) executeFileOp() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.filename)
	if name == "" {
		m.errorMessage = "Filename required"
		return m, nil
	}
	session := m.getSession()

	switch m.fileOp {
	case FileOpSave:
		path := m.config.GetSavePath(name + ".json")
		if m.config.Confirmations && !m.currentBufferOwns(name) {
			if _, err := os.Stat(path); err == nil {
				m.confirmAction = ConfirmOverwriteFile
				m.confirmID = name
				m.mode = ModeConfirm
				return m, nil
			}
		}
		m.performSave(name)
	case FileOpSavePNG:
		path := m.config.GetSavePath(name + ".png")
		if err := ExportToPNG(path, session.Diagram().Snapshot(), session.Background()); err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", err)
		} else {
			m.successMessage = fmt.Sprintf("Exported %s", path)
		}
	case FileOpSaveVisualTXT:
		path := m.config.GetSavePath(name + ".txt")
		if err := m.exportVisualTXT(path); err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", err)
		} else {
			m.successMessage = fmt.Sprintf("Exported %s", path)
		}
	case FileOpOpen:
		path := m.config.GetSavePath(name + ".json")
		fresh := NewSession(appLogger)
		if m.fromStartup {
			// The welcome buffer has served its purpose.
			for i := range m.buffers {
				m.buffers[i].session.Teardown()
			}
			m.buffers = m.buffers[:0]
			m.addNewBuffer(fresh, name+".json")
		} else if m.openInNewBuffer {
			m.addNewBuffer(fresh, name+".json")
		} else if buf := m.getCurrentBuffer(); buf != nil {
			buf.session.Teardown()
			if err := fresh.Init(&m); err != nil {
				fresh.log.Error("binding session to canvas", "err", err)
			}
			buf.session = fresh
			buf.filename = name + ".json"
		}
		panX, panY, err := LoadDocument(path, fresh)
		if err != nil {
			m.errorMessage = fmt.Sprintf("Open failed: %v", err)
		} else {
			if buf := m.getCurrentBuffer(); buf != nil {
				buf.panX, buf.panY = panX, panY
			}
			m.successMessage = fmt.Sprintf("Opened %s", path)
		}
	}

	m.filename = ""
	m.fromStartup = false
	m.openInNewBuffer = false
	m.mode = ModeNormal
	return m, nil
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirmAction == ConfirmChooseExportType {
		switch key {
		case "p":
			m.fileOp = FileOpSavePNG
			m.mode = ModeFileInput
		case "t":
			m.fileOp = FileOpSaveVisualTXT
			m.mode = ModeFileInput
		case "esc", "n":
			m.mode = ModeNormal
		}
		return m, nil
	}

	switch key {
	case "y", "Y", "enter":
		switch m.confirmAction {
		case ConfirmDeleteNode:
			m.deleteNode(m.confirmID)
		case ConfirmDeleteConnector:
			m.deleteConnector(m.confirmID)
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmNewDiagram:
			m.resetToNewDiagram()
		case ConfirmCloseBuffer:
			m.closeCurrentBuffer()
		case ConfirmOverwriteFile:
			m.performSave(m.confirmID)
		}
		m.mode = ModeNormal
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

// currentBufferOwns reports whether the active buffer is already saved
// under the given name, making an overwrite expected.
func (m *model) currentBufferOwns(name string) bool {
	buf := m.getCurrentBuffer()
	return buf != nil && buf.filename == name+".json"
}

func (m *model) performSave(name string) {
	session := m.getSession()
	if session == nil {
		return
	}
	path := m.config.GetSavePath(name + ".json")
	panX, panY := m.getPanOffset()
	if err := SaveDocument(path, session, panX, panY); err != nil {
		m.errorMessage = fmt.Sprintf("Save failed: %v", err)
		return
	}
	session.MarkSaved()
	if buf := m.getCurrentBuffer(); buf != nil {
		buf.filename = name + ".json"
	}
	m.successMessage = fmt.Sprintf("Saved %s", path)
}

func (m *model) sessionDirty() bool {
	for _, buf := range m.buffers {
		if buf.session.Dirty() {
			return true
		}
	}
	return false
}

func (m *model) closeCurrentBuffer() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	buf.session.Teardown()
	m.buffers = append(m.buffers[:m.currentBufferIndex], m.buffers[m.currentBufferIndex+1:]...)
	if len(m.buffers) == 0 {
		m.addNewBuffer(NewSession(appLogger), "")
		return
	}
	if m.currentBufferIndex >= len(m.buffers) {
		m.currentBufferIndex = len(m.buffers) - 1
	}
}
