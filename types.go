package main

// Buffer is one open diagram: its session store, undo history, backing
// file and viewport.
type Buffer struct {
	session   *Session
	undoStack []Action
	redoStack []Action
	filename  string
	panX      int
	panY      int
}

type model struct {
	width              int
	height             int
	cursorX            int
	cursorY            int
	zPanMode           bool
	buffers            []Buffer
	currentBufferIndex int
	mode               Mode
	help               bool
	helpScroll         int

	// In-progress interactions.
	editText         string
	editCursorPos    int
	originalEditText string
	connectFromID    string
	moveNodeID       string
	originalMoveX    int
	originalMoveY    int
	originalWidth    int
	originalHeight   int

	// Property panel.
	propertyFields []string
	propertyIndex  int

	// Template picker and generation.
	templateIndex int
	promptText    string
	generator     DescriptionGenerator

	// File operations.
	filename          string
	fileList          []string
	selectedFileIndex int
	fileOp            FileOperation
	openInNewBuffer   bool

	// Confirmation dialog.
	confirmAction ConfirmAction
	confirmID     string

	errorMessage   string
	successMessage string
	fromStartup    bool

	clipboardNode *Node
	config        *Config
	repaints      int
}

// RequestRepaint satisfies CanvasSurface; bubbletea redraws after
// every update, so the count is only observed, not acted on.
func (m *model) RequestRepaint() {
	m.repaints++
}

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

type AddNodeData struct {
	ID    string
	Type  ShapeType
	X, Y  int
	Label string
}

type DeleteNodeData struct {
	Node       Node
	Connectors []Connector
}

type EditLabelData struct {
	ID       string
	NewLabel string
	OldLabel string
}

type MoveNodeData struct {
	ID     string
	DeltaX int
	DeltaY int
}

type OriginalNodeState struct {
	ID     string
	X      int
	Y      int
	Width  int
	Height int
}

type AddConnectorData struct {
	Connector Connector
}

type StyleConnectorData struct {
	ID       string
	Field    string
	NewValue string
	OldValue string
}

type StyleNodeData struct {
	ID       string
	Field    string
	NewValue string
	OldValue string
}

type InstantiateData struct {
	TemplateID string
	NodeIDs    []string
	ConnIDs    []string
	Nodes      []Node
	Connectors []Connector
}
