package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeEditing
	ModeConnect
	ModeMove
	ModeResize
	ModeProperties
	ModePropertyEdit
	ModeTemplatePicker
	ModeGeneratePrompt
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveVisualTXT
	FileOpOpen
)

type ConfirmAction int

const (
	ConfirmDeleteNode ConfirmAction = iota
	ConfirmDeleteConnector
	ConfirmQuit
	ConfirmNewDiagram
	ConfirmCloseBuffer
	ConfirmOverwriteFile
	ConfirmChooseExportType
)

type ActionType int

const (
	ActionAddNode ActionType = iota
	ActionDeleteNode
	ActionEditLabel
	ActionResizeNode
	ActionMoveNode
	ActionAddConnector
	ActionDeleteConnector
	ActionStyleConnector
	ActionStyleNode
	ActionInstantiate
)

const (
	minNodeWidth  = 8
	minNodeHeight = 3
)

// Indexes into the 8-color palette the terminal renderer emits.
const (
	colorNone = -1
)

const (
	colorRed = iota
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite
	colorGray
	numColors
)
