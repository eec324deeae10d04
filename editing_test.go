package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func pressEditing(t *testing.T, m model, msg tea.KeyMsg) model {
	t.Helper()
	res, _ := m.updateEditing(msg)
	return res.(model)
}

func TestEditingKeepsCursorOnRuneBoundaries(t *testing.T) {
	m := *newTestModel(t)
	m.mode = ModeEditing

	m = pressEditing(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("né→")})
	assert.Equal(t, "né→", m.editText)
	assert.Equal(t, len("né→"), m.editCursorPos)

	m = pressEditing(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "né", m.editText)
	assert.Equal(t, len("né"), m.editCursorPos)

	m = pressEditing(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, len("n"), m.editCursorPos)

	m = pressEditing(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, "nxé", m.editText)

	m = pressEditing(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "né", m.editText)
	assert.Equal(t, len("n"), m.editCursorPos)

	m = pressEditing(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, len("né"), m.editCursorPos)
}

func TestTrimLastRune(t *testing.T) {
	assert.Equal(t, "", trimLastRune(""))
	assert.Equal(t, "ab", trimLastRune("abc"))
	assert.Equal(t, "n", trimLastRune("né"))
	assert.Equal(t, "", trimLastRune("→"))
}

func TestPromptBackspaceRemovesWholeRune(t *testing.T) {
	m := *newTestModel(t)
	m.mode = ModeGeneratePrompt
	m.promptText = "π"

	res, _ := m.updateGeneratePrompt(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "", res.(model).promptText)
}
