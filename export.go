package main

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// exportVisualTXT writes the diagram as plain text, drawn by the same
// renderers as the screen but without cursor or selection markers.
func (m *model) exportVisualTXT(filename string) error {
	d := m.getDiagram()
	if d == nil {
		return fmt.Errorf("no diagram available")
	}

	// Size the grid to the content so the export is complete regardless
	// of the current viewport.
	minX, minY, maxX, maxY, ok := d.Bounds()
	if !ok {
		minX, minY, maxX, maxY = 0, 0, 40, 10
	}
	const pad = 2
	g := newGrid(maxX-minX+2*pad, maxY-minY+2*pad, minX-pad, minY-pad)
	renderDiagram(g, d, "")

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for y := 0; y < g.height; y++ {
		fmt.Fprintln(file, string(g.cells[y]))
	}
	return nil
}

const (
	exportCharWidth  = 8.0
	exportCharHeight = 16.0
)

func ggColor(hex string, fallback color.Color) color.Color {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return fallback
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// ExportToPNG rasterizes a diagram snapshot. Rendering works from the
// read-only snapshot, so an export can never mutate the live graph.
func ExportToPNG(filename string, snap Snapshot, background Background) error {
	if len(snap.Nodes) == 0 && len(snap.Edges) == 0 {
		return fmt.Errorf("nothing to export")
	}

	minX, minY, maxX, maxY := 0, 0, 0, 0
	first := true
	for _, n := range snap.Nodes {
		if first {
			minX, minY = n.X, n.Y
			maxX, maxY = n.X+n.Width, n.Y+n.Height
			first = false
			continue
		}
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}
	for _, e := range snap.Edges {
		for _, pt := range []point{{e.FromX, e.FromY}, {e.ToX, e.ToY}} {
			if first {
				minX, minY, maxX, maxY = pt.X, pt.Y, pt.X, pt.Y
				first = false
				continue
			}
			minX = min(minX, pt.X)
			minY = min(minY, pt.Y)
			maxX = max(maxX, pt.X)
			maxY = max(maxY, pt.Y)
		}
	}

	padding := 2
	minX -= padding
	minY -= padding
	maxX += padding
	maxY += padding

	dc := gg.NewContext(int(float64(maxX-minX)*exportCharWidth), int(float64(maxY-minY)*exportCharHeight))
	dc.SetColor(ggColor(background.Color, color.White))
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12.0,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Connectors first so nodes draw over them.
	for _, e := range snap.Edges {
		drawConnectorPNG(dc, e, minX, minY)
	}
	for _, n := range snap.Nodes {
		drawNodePNG(dc, n, minX, minY)
	}

	return dc.SavePNG(filename)
}

func pixelPoint(x, y, minX, minY int) (float64, float64) {
	return float64(x-minX) * exportCharWidth, float64(y-minY) * exportCharHeight
}

func drawConnectorPNG(dc *gg.Context, e Connector, minX, minY int) {
	stroke := ggColor(e.Style.StrokeColor, color.Black)
	dc.SetColor(stroke)
	dc.SetLineWidth(float64(max(e.Style.StrokeWidth, 1)))
	switch e.Style.LineStyle {
	case LineDashed:
		dc.SetDash(8, 6)
	case LineDotted:
		dc.SetDash(2, 4)
	default:
		dc.SetDash()
	}

	fx, fy := pixelPoint(e.FromX, e.FromY, minX, minY)
	cx, cy := pixelPoint(e.ToX, e.FromY, minX, minY)
	tx, ty := pixelPoint(e.ToX, e.ToY, minX, minY)
	dc.MoveTo(fx, fy)
	if e.FromY != e.ToY && e.FromX != e.ToX {
		dc.LineTo(cx, cy)
	}
	dc.LineTo(tx, ty)
	dc.Stroke()
	dc.SetDash()

	if e.Style.HasArrow {
		// Arrow along the final segment.
		ax, ay := fx, fy
		if e.FromY != e.ToY && e.FromX != e.ToX {
			ax, ay = cx, cy
		}
		drawArrowPNG(dc, ax, ay, tx, ty)
	}
}

func drawArrowPNG(dc *gg.Context, fromX, fromY, toX, toY float64) {
	dx := toX - fromX
	dy := toY - fromY
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	arrowSize := 6.0
	arrowAngle := 0.5
	dc.MoveTo(toX, toY)
	dc.LineTo(toX-arrowSize*dx+arrowSize*dy*arrowAngle, toY-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(toX-arrowSize*dx-arrowSize*dy*arrowAngle, toY-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n Node, minX, minY int) {
	x, y := pixelPoint(n.X, n.Y, minX, minY)
	width := float64(n.Width) * exportCharWidth
	height := float64(n.Height) * exportCharHeight

	fill := ggColor(n.Style.FillColor, color.White)
	stroke := ggColor(n.Style.StrokeColor, color.Black)

	switch n.Type {
	case ShapeDiamond, ShapeMilestone:
		dc.MoveTo(x+width/2, y)
		dc.LineTo(x+width, y+height/2)
		dc.LineTo(x+width/2, y+height)
		dc.LineTo(x, y+height/2)
		dc.ClosePath()
	case ShapeCircle, ShapeCloud, ShapeUser, ShapeTeam:
		dc.DrawEllipse(x+width/2, y+height/2, width/2, height/2)
	case ShapeText:
		// No outline.
	default:
		dc.DrawRectangle(x, y, width, height)
	}

	if n.Type != ShapeText {
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(stroke)
		dc.SetLineWidth(float64(max(n.Style.StrokeWidth, 1)))
		dc.Stroke()
	}

	// Task progress bar inside the shape.
	if n.Task != nil && (n.Type == ShapeTask || n.Type == ShapeSummary) {
		progress := float64(n.Task.Progress)
		if progress > 100 {
			progress = 100
		}
		barY := y + height - exportCharHeight*1.5
		dc.SetColor(ggColor(n.Style.StrokeColor, color.Black))
		dc.DrawRectangle(x+exportCharWidth, barY, (width-2*exportCharWidth)*progress/100, exportCharHeight/2)
		dc.Fill()
	}

	dc.SetColor(ggColor(n.Style.TextColor, color.Black))
	textY := y + exportCharHeight
	for i, line := range n.Lines() {
		dc.DrawString(line, x+exportCharWidth, textY+float64(i)*exportCharHeight)
	}
}
