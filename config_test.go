package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfig(t *testing.T) {
	rc := `
# personal setup
savedirectory = ~/diagrams
startmenu = false
confirm = TRUE
defaultshape = Diamond
not a key value line
unknownkey = whatever
`
	cfg := parseConfig(strings.NewReader(rc), "/home/u")

	assert.Equal(t, "/home/u/diagrams", cfg.SaveDirectory)
	assert.False(t, cfg.StartMenu)
	assert.True(t, cfg.Confirmations)
	assert.Equal(t, ShapeDiamond, cfg.DefaultShape)
}

func TestParseConfigEmptyInputKeepsDefaults(t *testing.T) {
	cfg := parseConfig(strings.NewReader(""), "/home/u")

	assert.Empty(t, cfg.SaveDirectory)
	assert.True(t, cfg.StartMenu)
	assert.True(t, cfg.Confirmations)
	assert.Equal(t, ShapeRectangle, cfg.DefaultShape)
}

func TestParseConfigRejectsUnknownShape(t *testing.T) {
	cfg := parseConfig(strings.NewReader("defaultshape = dodecahedron\n"), "/home/u")
	assert.Equal(t, ShapeRectangle, cfg.DefaultShape)
}
