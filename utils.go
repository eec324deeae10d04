package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

func (m *model) getCurrentBuffer() *Buffer {
	if len(m.buffers) == 0 {
		return nil
	}
	return &m.buffers[m.currentBufferIndex]
}

func (m *model) getSession() *Session {
	if buf := m.getCurrentBuffer(); buf != nil {
		return buf.session
	}
	return nil
}

func (m *model) getDiagram() *Diagram {
	if s := m.getSession(); s != nil {
		return s.Diagram()
	}
	return nil
}

func (m *model) getBridge() *PropertyBridge {
	if s := m.getSession(); s != nil {
		return s.Bridge()
	}
	return nil
}

func (m *model) getPanOffset() (int, int) {
	if buf := m.getCurrentBuffer(); buf != nil {
		return buf.panX, buf.panY
	}
	return 0, 0
}

func (m *model) worldCoords() (int, int) {
	panX, panY := m.getPanOffset()
	return m.cursorX + panX, m.cursorY + panY
}

func (m *model) addNewBuffer(session *Session, filename string) {
	m.addNewBufferWithPan(session, filename, 0, 0)
}

func (m *model) addNewBufferWithPan(session *Session, filename string, panX, panY int) {
	if err := session.Init(m); err != nil {
		session.log.Error("binding session to canvas", "err", err)
	}
	buffer := Buffer{
		session:   session,
		undoStack: []Action{},
		redoStack: []Action{},
		filename:  filename,
		panX:      panX,
		panY:      panY,
	}
	m.buffers = append(m.buffers, buffer)
	m.currentBufferIndex = len(m.buffers) - 1
}

func (m *model) recordAction(actionType ActionType, data, inverse interface{}) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	action := Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
	}
	buf.undoStack = append(buf.undoStack, action)
	buf.redoStack = buf.redoStack[:0]
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
		if output, err := exec.Command("pbpaste").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// cleanClipboardText strips RTF/HTML wrappers and control characters
// from pasted content so it lands as a plain label.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	if isRTF(text) {
		text = stripRTF(text)
	}
	if isHTML(text) {
		text = stripHTML(text)
	}
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := result.String()
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.TrimSpace(normalized)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div"))
}

// stripRTF drops RTF control words and group braces, keeping the
// visible text. Paragraph and line controls become newlines.
func stripRTF(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '{' || r == '}' {
			continue
		}
		if r != '\\' {
			result.WriteRune(r)
			continue
		}
		if i+1 >= len(runes) {
			continue
		}
		next := runes[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			result.WriteRune(next)
			i++
		case (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z'):
			// Consume the control word and any numeric argument.
			j := i + 1
			for j < len(runes) && ((runes[j] >= 'a' && runes[j] <= 'z') || (runes[j] >= 'A' && runes[j] <= 'Z')) {
				j++
			}
			word := string(runes[i+1 : j])
			for j < len(runes) && (runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
				j++
			}
			if j < len(runes) && runes[j] == ' ' {
				j++
			}
			if word == "par" || word == "line" {
				result.WriteRune('\n')
			} else if word == "tab" {
				result.WriteRune('\t')
			}
			i = j - 1
		}
	}
	return result.String()
}

func stripHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	text := result.String()
	for entity, repl := range map[string]string{
		"&lt;": "<", "&gt;": ">", "&amp;": "&",
		"&quot;": "\"", "&#39;": "'", "&nbsp;": " ",
	} {
		text = strings.ReplaceAll(text, entity, repl)
	}
	return text
}
