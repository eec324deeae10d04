package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleFor(t *testing.T) {
	t.Run("unknown type falls back to rectangle base", func(t *testing.T) {
		assert.Equal(t, baseStyles[ShapeRectangle], StyleFor(ShapeType("hexagon"), nil))
	})

	t.Run("set overrides win over the base", func(t *testing.T) {
		style := StyleFor(ShapeDatabase, &StyleOverrides{FillColor: "#123456"})
		assert.Equal(t, "#123456", style.FillColor)
		assert.Equal(t, baseStyles[ShapeDatabase].StrokeColor, style.StrokeColor)
	})

	t.Run("empty override fields leave the base alone", func(t *testing.T) {
		assert.Equal(t, baseStyles[ShapeCloud], StyleFor(ShapeCloud, &StyleOverrides{}))
	})
}

func TestRendererForIsTotal(t *testing.T) {
	for _, typ := range []ShapeType{ShapeRectangle, ShapeDiamond, ShapeTask, ShapeText, ShapeType("bogus"), ShapeType("")} {
		assert.NotNil(t, rendererFor(typ), "type %q must resolve to a renderer", typ)
	}
	assert.Equal(t, boxRenderer{}, rendererFor(ShapeType("bogus")))
}

func TestProgressBand(t *testing.T) {
	cases := []struct {
		progress int
		want     string
	}{
		{120, bandComplete},
		{100, bandComplete},
		{99, bandHigh},
		{76, bandHigh},
		{75, bandHigh},
		{74, bandMid},
		{50, bandMid},
		{49, bandLow},
		{25, bandLow},
		{24, bandStalled},
		{0, bandStalled},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, progressBand(tc.progress), "progress %d", tc.progress)
	}
}

func TestDurationLabel(t *testing.T) {
	t.Run("inclusive day count", func(t *testing.T) {
		assert.Equal(t, "5d", durationLabel(&TaskData{Start: "2026-01-05", End: "2026-01-09"}))
		assert.Equal(t, "1d", durationLabel(&TaskData{Start: "2026-03-02", End: "2026-03-02"}))
	})

	t.Run("missing or bad dates yield nothing", func(t *testing.T) {
		assert.Empty(t, durationLabel(nil))
		assert.Empty(t, durationLabel(&TaskData{Start: "2026-01-05"}))
		assert.Empty(t, durationLabel(&TaskData{Start: "next tuesday", End: "2026-01-09"}))
		assert.Empty(t, durationLabel(&TaskData{Start: "2026-01-09", End: "2026-01-05"}))
	})
}

func TestParseHexColor(t *testing.T) {
	r, g, b, ok := parseHexColor("#1976d2")
	assert.True(t, ok)
	assert.Equal(t, [3]int{0x19, 0x76, 0xd2}, [3]int{r, g, b})

	_, _, _, ok = parseHexColor("red")
	assert.False(t, ok)
	_, _, _, ok = parseHexColor("")
	assert.False(t, ok)
}
