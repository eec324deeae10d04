package main

import (
	"fmt"
	"time"
)

// StyleOverrides are caller-supplied style fields; set fields always
// win over the type's base style.
type StyleOverrides struct {
	FillColor   string
	StrokeColor string
	TextColor   string
}

// baseStyles is the shape style table: one visual descriptor per shape
// tag. Unlisted tags share the rectangle descriptor.
var baseStyles = map[ShapeType]NodeStyle{
	ShapeRectangle: {FillColor: "#ffffff", StrokeColor: "#333333", StrokeWidth: 1, TextColor: "#000000"},
	ShapeCircle:    {FillColor: "#e8f4fd", StrokeColor: "#1976d2", StrokeWidth: 1, TextColor: "#0d47a1"},
	ShapeDiamond:   {FillColor: "#fff8e1", StrokeColor: "#f9a825", StrokeWidth: 1, TextColor: "#5d4037"},
	ShapeServer:    {FillColor: "#ede7f6", StrokeColor: "#512da8", StrokeWidth: 1, TextColor: "#311b92"},
	ShapeDatabase:  {FillColor: "#e0f2f1", StrokeColor: "#00695c", StrokeWidth: 1, TextColor: "#004d40"},
	ShapeCloud:     {FillColor: "#e3f2fd", StrokeColor: "#0288d1", StrokeWidth: 1, TextColor: "#01579b"},
	ShapeUser:      {FillColor: "#fce4ec", StrokeColor: "#c2185b", StrokeWidth: 1, TextColor: "#880e4f"},
	ShapeTeam:      {FillColor: "#f3e5f5", StrokeColor: "#7b1fa2", StrokeWidth: 1, TextColor: "#4a148c"},
	ShapeTask:      {FillColor: "#e8f5e9", StrokeColor: "#2e7d32", StrokeWidth: 1, TextColor: "#1b5e20"},
	ShapeMilestone: {FillColor: "#fffde7", StrokeColor: "#f57f17", StrokeWidth: 1, TextColor: "#e65100"},
	ShapeSummary:   {FillColor: "#eceff1", StrokeColor: "#455a64", StrokeWidth: 1, TextColor: "#263238"},
	ShapeText:      {FillColor: "", StrokeColor: "", StrokeWidth: 0, TextColor: "#000000"},
}

// StyleFor merges the type's base style with caller overrides. Unknown
// types get the rectangle base; override fields win when set.
func StyleFor(typ ShapeType, overrides *StyleOverrides) NodeStyle {
	style, ok := baseStyles[typ]
	if !ok {
		style = baseStyles[ShapeRectangle]
	}
	if overrides != nil {
		if overrides.FillColor != "" {
			style.FillColor = overrides.FillColor
		}
		if overrides.StrokeColor != "" {
			style.StrokeColor = overrides.StrokeColor
		}
		if overrides.TextColor != "" {
			style.TextColor = overrides.TextColor
		}
	}
	return style
}

// shapeRenderer draws one node kind onto the terminal grid.
type shapeRenderer interface {
	draw(g *grid, n *Node, selected bool)
}

var renderers = map[ShapeType]shapeRenderer{
	ShapeRectangle: boxRenderer{},
	ShapeServer:    boxRenderer{icon: '▣'},
	ShapeDatabase:  boxRenderer{icon: '⛁'},
	ShapeCloud:     boxRenderer{icon: '☁', rounded: true},
	ShapeUser:      boxRenderer{icon: '☺', rounded: true},
	ShapeTeam:      boxRenderer{icon: '☷', rounded: true},
	ShapeCircle:    boxRenderer{rounded: true},
	ShapeDiamond:   diamondRenderer{},
	ShapeTask:      scheduleRenderer{},
	ShapeMilestone: scheduleRenderer{},
	ShapeSummary:   scheduleRenderer{},
	ShapeText:      textRenderer{},
}

// rendererFor is total: any unknown or malformed type falls back to
// the plain box renderer, never an error.
func rendererFor(typ ShapeType) shapeRenderer {
	if r, ok := renderers[typ]; ok {
		return r
	}
	return boxRenderer{}
}

// Progress color bands for schedule nodes. Four fixed thresholds, no
// interpolation.
const (
	bandComplete = "complete"
	bandHigh     = "in-progress-high"
	bandMid      = "mid"
	bandLow      = "low"
	bandStalled  = "stalled"
)

var bandColors = map[string]int{
	bandComplete: colorGreen,
	bandHigh:     colorCyan,
	bandMid:      colorYellow,
	bandLow:      colorMagenta,
	bandStalled:  colorRed,
}

func progressBand(progress int) string {
	switch {
	case progress >= 100:
		return bandComplete
	case progress >= 75:
		return bandHigh
	case progress >= 50:
		return bandMid
	case progress >= 25:
		return bandLow
	default:
		return bandStalled
	}
}

// durationLabel derives "Nd" from a task's date range; empty when the
// dates are missing or unparseable.
func durationLabel(task *TaskData) string {
	if task == nil || task.Start == "" || task.End == "" {
		return ""
	}
	start, err := time.Parse("2006-01-02", task.Start)
	if err != nil {
		return ""
	}
	end, err := time.Parse("2006-01-02", task.End)
	if err != nil {
		return ""
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return ""
	}
	return fmt.Sprintf("%dd", days)
}
