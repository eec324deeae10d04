package main

import (
	"fmt"
	"strings"
)

// grid is the rune canvas the terminal view is composed on. Cells keep
// a color index alongside the rune; colors are emitted as ANSI codes
// when the grid is joined into lines.
type grid struct {
	cells  [][]rune
	colors [][]int
	width  int
	height int
	panX   int
	panY   int
}

func newGrid(width, height, panX, panY int) *grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &grid{width: width, height: height, panX: panX, panY: panY}
	g.cells = make([][]rune, height)
	g.colors = make([][]int, height)
	for i := range g.cells {
		g.cells[i] = make([]rune, width)
		g.colors[i] = make([]int, width)
		for j := range g.cells[i] {
			g.cells[i][j] = ' '
			g.colors[i][j] = colorNone
		}
	}
	return g
}

// set places a rune at world coordinates; anything off-screen is
// silently dropped.
func (g *grid) set(worldX, worldY int, r rune, color int) {
	x := worldX - g.panX
	y := worldY - g.panY
	if y < 0 || y >= g.height || x < 0 || x >= g.width {
		return
	}
	g.cells[y][x] = r
	g.colors[y][x] = color
}

func (g *grid) setScreen(x, y int, r rune) {
	if y < 0 || y >= g.height || x < 0 || x >= g.width {
		return
	}
	g.cells[y][x] = r
}

// ansiColors maps the renderer's palette indexes to foreground codes.
var ansiColors = []int{31, 32, 33, 34, 35, 36, 37, 90}

const colorReset = "\x1b[0m"

func colorCode(colorIndex int) string {
	if colorIndex < 0 || colorIndex >= len(ansiColors) {
		return ""
	}
	return fmt.Sprintf("\x1b[%dm", ansiColors[colorIndex])
}

// lines joins the grid into printable rows, wrapping color runs in
// ANSI codes.
func (g *grid) lines() []string {
	result := make([]string, g.height)
	for y := 0; y < g.height; y++ {
		var b strings.Builder
		current := colorNone
		for x := 0; x < g.width; x++ {
			c := g.colors[y][x]
			if c != current {
				if current != colorNone {
					b.WriteString(colorReset)
				}
				if c != colorNone {
					b.WriteString(colorCode(c))
				}
				current = c
			}
			b.WriteRune(g.cells[y][x])
		}
		if current != colorNone {
			b.WriteString(colorReset)
		}
		result[y] = b.String()
	}
	return result
}

// paletteFor maps a hex style color to the nearest terminal palette
// entry. The mapping is coarse; the PNG exporter keeps the real hue.
func paletteFor(hex string) int {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return colorNone
	}
	if r > 200 && g > 200 && b > 200 {
		return colorNone // near-white reads as default
	}
	if r > g && r > b {
		if b > g {
			return colorMagenta
		}
		return colorRed
	}
	if g > r && g > b {
		return colorGreen
	}
	if b > r && b > g {
		if r > g {
			return colorMagenta
		}
		return colorBlue
	}
	if r > 100 && g > 100 && b < 100 {
		return colorYellow
	}
	if g > 100 && b > 100 {
		return colorCyan
	}
	return colorGray
}

func parseHexColor(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, false
	}
	return rv, gv, bv, true
}

// renderDiagram draws the whole diagram: connectors first so nodes
// paint over them, then nodes through their registered renderers.
func renderDiagram(g *grid, d *Diagram, selectedID string) {
	for _, c := range d.Connectors().All() {
		drawConnector(g, c)
	}
	for _, n := range d.Nodes() {
		rendererFor(n.Type).draw(g, n, n.ID == selectedID)
	}
}

// boxRenderer draws plain and icon-bearing rectangular shapes. It is
// the registry's fallback arm.
type boxRenderer struct {
	icon    rune
	rounded bool
}

func (r boxRenderer) draw(g *grid, n *Node, selected bool) {
	color := paletteFor(n.Style.StrokeColor)
	tlc, trc, blc, brc := '+', '+', '+', '+'
	horizontal, vertical := '-', '|'
	if r.rounded {
		tlc, trc, blc, brc = '╭', '╮', '╰', '╯'
		horizontal, vertical = '─', '│'
	}
	if selected {
		tlc, trc, blc, brc = '#', '#', '#', '#'
		horizontal, vertical = '#', '#'
	}

	for y := n.Y; y < n.Y+n.Height; y++ {
		for x := n.X; x < n.X+n.Width; x++ {
			switch {
			case y == n.Y && x == n.X:
				g.set(x, y, tlc, color)
			case y == n.Y && x == n.X+n.Width-1:
				g.set(x, y, trc, color)
			case y == n.Y+n.Height-1 && x == n.X:
				g.set(x, y, blc, color)
			case y == n.Y+n.Height-1 && x == n.X+n.Width-1:
				g.set(x, y, brc, color)
			case y == n.Y || y == n.Y+n.Height-1:
				g.set(x, y, horizontal, color)
			case x == n.X || x == n.X+n.Width-1:
				g.set(x, y, vertical, color)
			default:
				g.set(x, y, ' ', colorNone)
			}
		}
	}

	textColor := paletteFor(n.Style.TextColor)
	startX := n.X + 1
	if r.icon != 0 {
		g.set(startX, n.Y+1, r.icon, color)
		startX += 2
	}
	drawLabel(g, n, startX, textColor)
}

func drawLabel(g *grid, n *Node, startX, color int) {
	maxWidth := n.X + n.Width - 1 - startX
	if maxWidth < 0 {
		maxWidth = 0
	}
	for lineIdx, line := range n.Lines() {
		y := n.Y + 1 + lineIdx
		if y >= n.Y+n.Height-1 {
			break
		}
		if len(line) > maxWidth {
			line = line[:maxWidth]
		}
		for i, ch := range line {
			g.set(startX+i, y, ch, color)
		}
	}
}

// diamondRenderer draws decision shapes with slanted corners.
type diamondRenderer struct{}

func (diamondRenderer) draw(g *grid, n *Node, selected bool) {
	color := paletteFor(n.Style.StrokeColor)
	edge := func(r rune) rune {
		if selected {
			return '#'
		}
		return r
	}

	for y := n.Y; y < n.Y+n.Height; y++ {
		for x := n.X; x < n.X+n.Width; x++ {
			onTop := y == n.Y
			onBottom := y == n.Y+n.Height-1
			onLeft := x == n.X
			onRight := x == n.X+n.Width-1
			switch {
			case (onTop && onLeft) || (onBottom && onRight):
				g.set(x, y, edge('\\'), color)
			case (onTop && onRight) || (onBottom && onLeft):
				g.set(x, y, edge('/'), color)
			case onTop || onBottom:
				g.set(x, y, edge('-'), color)
			case onLeft || onRight:
				g.set(x, y, edge('<'), color)
			default:
				g.set(x, y, ' ', colorNone)
			}
		}
	}
	if n.Width >= 2 {
		g.set(n.X+n.Width-1, n.Y+n.Height/2, edge('>'), color)
		g.set(n.X, n.Y+n.Height/2, edge('<'), color)
	}
	drawLabel(g, n, n.X+2, paletteFor(n.Style.TextColor))
}

// scheduleRenderer draws task bars, milestones and summary spans with
// the progress color band and derived duration label.
type scheduleRenderer struct{}

func (scheduleRenderer) draw(g *grid, n *Node, selected bool) {
	progress := 0
	if n.Task != nil {
		progress = n.Task.Progress
	}
	color := bandColors[progressBand(progress)]

	if n.Type == ShapeMilestone {
		// Milestones render as a single diamond marker with the label
		// alongside.
		marker := '◆'
		if selected {
			marker = '#'
		}
		cx, cy := n.Center()
		g.set(cx, cy, marker, color)
		for i, ch := range n.Label {
			g.set(cx+2+i, cy, ch, paletteFor(n.Style.TextColor))
		}
		return
	}

	// Border like a plain box, bar fill inside proportional to
	// progress.
	frame := boxRenderer{}
	frame.draw(g, n, selected)

	inner := n.Width - 2
	if inner < 1 {
		return
	}
	filled := inner * progress / 100
	if filled > inner {
		filled = inner
	}
	barY := n.Y + n.Height - 2
	fill := '█'
	if n.Type == ShapeSummary {
		fill = '▬'
	}
	for i := 0; i < inner; i++ {
		ch := '░'
		if i < filled {
			ch = fill
		}
		g.set(n.X+1+i, barY, ch, color)
	}

	if dur := durationLabel(n.Task); dur != "" {
		for i, ch := range dur {
			g.set(n.X+n.Width+1+i, n.Y+n.Height/2, ch, color)
		}
	}
}

// textRenderer draws borderless label-only nodes.
type textRenderer struct{}

func (textRenderer) draw(g *grid, n *Node, selected bool) {
	color := paletteFor(n.Style.TextColor)
	if selected {
		color = colorCyan
	}
	for lineIdx, line := range n.Lines() {
		for i, ch := range line {
			g.set(n.X+i, n.Y+lineIdx, ch, color)
		}
	}
}

// drawConnector renders an orthogonal two-segment route between the
// connector's anchored endpoints, with the line style as a character
// pattern and an arrow head at the target.
func drawConnector(g *grid, c *Connector) {
	color := paletteFor(c.Style.StrokeColor)
	drawRoute(g, c.FromX, c.FromY, c.ToX, c.ToY, c.Style, color)
	if c.Style.HasArrow {
		drawArrowHead(g, c, color)
	}
	if c.Label != "" {
		midX := (c.FromX + c.ToX) / 2
		midY := (c.FromY + c.ToY) / 2
		for i, ch := range c.Label {
			g.set(midX+1+i, midY, ch, color)
		}
	}
}

func lineRunes(style LineStyle, heavy bool) (horizontal, vertical rune) {
	switch style {
	case LineDashed:
		return '╌', '╎'
	case LineDotted:
		return '·', '·'
	}
	if heavy {
		return '━', '┃'
	}
	return '─', '│'
}

func drawRoute(g *grid, fromX, fromY, toX, toY int, style ConnectorStyle, color int) {
	horizontal, vertical := lineRunes(style.LineStyle, style.StrokeWidth > 2)

	if fromY == toY {
		step := 1
		if toX < fromX {
			step = -1
		}
		for x := fromX; x != toX+step; x += step {
			g.set(x, fromY, horizontal, color)
		}
		return
	}
	if fromX == toX {
		step := 1
		if toY < fromY {
			step = -1
		}
		for y := fromY; y != toY+step; y += step {
			g.set(fromX, y, vertical, color)
		}
		return
	}

	// L route: horizontal run first, then vertical to the target.
	stepX := 1
	if toX < fromX {
		stepX = -1
	}
	for x := fromX; x != toX; x += stepX {
		g.set(x, fromY, horizontal, color)
	}
	stepY := 1
	if toY < fromY {
		stepY = -1
	}
	for y := fromY; y != toY+stepY; y += stepY {
		g.set(toX, y, vertical, color)
	}
	corner := '┐'
	switch {
	case stepX > 0 && stepY < 0:
		corner = '┘'
	case stepX < 0 && stepY > 0:
		corner = '┌'
	case stepX < 0 && stepY < 0:
		corner = '└'
	}
	g.set(toX, fromY, corner, color)
}

func drawArrowHead(g *grid, c *Connector, color int) {
	var head rune
	switch c.ToSide {
	case AnchorLeft:
		head = '▶'
	case AnchorRight:
		head = '◀'
	case AnchorTop:
		head = '▼'
	case AnchorBottom:
		head = '▲'
	default:
		head = '▶'
	}
	g.set(c.ToX, c.ToY, head, color)
}
