// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/scene"
	"github.com/bureau-foundation/clusterview/lib/tui"
)

// Node and pod square sizes in canvas units.
const (
	nodeSize      = 50.0
	podSquareSize = 30.0
)

// darkenFactor is the lightness scale for shape outlines.
const darkenFactor = 0.7

// cell is one terminal cell of the rasterized canvas.
type cell struct {
	glyph      rune
	foreground lipgloss.Color
	background lipgloss.Color
	bold       bool
}

// Raster is a grid of styled cells plus a hit map from cell to the id
// of the node drawn there.
type Raster struct {
	columns, rows int
	cells         []cell
	hits          []string
}

// newRaster returns a raster filled with blank background cells.
func newRaster(columns, rows int, background lipgloss.Color) *Raster {
	columns, rows = max(0, columns), max(0, rows)
	raster := &Raster{
		columns: columns,
		rows:    rows,
		cells:   make([]cell, columns*rows),
		hits:    make([]string, columns*rows),
	}
	for index := range raster.cells {
		raster.cells[index] = cell{glyph: ' ', background: background}
	}
	return raster
}

func (raster *Raster) inside(column, row int) bool {
	return column >= 0 && column < raster.columns && row >= 0 && row < raster.rows
}

func (raster *Raster) at(column, row int) *cell {
	return &raster.cells[row*raster.columns+column]
}

// put writes a glyph, keeping the cell's background.
func (raster *Raster) put(column, row int, glyph rune, foreground lipgloss.Color, bold bool) {
	if !raster.inside(column, row) {
		return
	}
	target := raster.at(column, row)
	target.glyph = glyph
	target.foreground = foreground
	target.bold = bold
}

// paint writes a glyph with both colors.
func (raster *Raster) paint(column, row int, glyph rune, foreground, background lipgloss.Color) {
	if !raster.inside(column, row) {
		return
	}
	*raster.at(column, row) = cell{glyph: glyph, foreground: foreground, background: background}
}

// text writes s starting at column, clipped to the raster.
func (raster *Raster) text(column, row int, s string, foreground lipgloss.Color, bold bool) {
	for _, glyph := range s {
		raster.put(column, row, glyph, foreground, bold)
		column++
	}
}

func (raster *Raster) hit(column, row int, id string) {
	if raster.inside(column, row) {
		raster.hits[row*raster.columns+column] = id
	}
}

// HitAt returns the node id drawn at the cell, or "".
func (raster *Raster) HitAt(column, row int) string {
	if !raster.inside(column, row) {
		return ""
	}
	return raster.hits[row*raster.columns+column]
}

// String renders the raster, merging adjacent cells of equal style
// into one styled run.
func (raster *Raster) String() string {
	if raster.columns == 0 {
		return strings.Repeat("\n", max(0, raster.rows-1))
	}
	var output strings.Builder
	var run strings.Builder
	for row := range raster.rows {
		if row > 0 {
			output.WriteByte('\n')
		}
		start := raster.at(0, row)
		style := *start
		run.Reset()
		for column := range raster.columns {
			current := raster.at(column, row)
			if !sameStyle(*current, style) {
				output.WriteString(renderRun(style, run.String()))
				run.Reset()
				style = *current
			}
			run.WriteRune(current.glyph)
		}
		output.WriteString(renderRun(style, run.String()))
	}
	return output.String()
}

func sameStyle(a, b cell) bool {
	return a.foreground == b.foreground && a.background == b.background && a.bold == b.bold
}

func renderRun(style cell, text string) string {
	if text == "" {
		return ""
	}
	lipglossStyle := lipgloss.NewStyle().Background(style.background).Bold(style.bold)
	if style.foreground != "" {
		lipglossStyle = lipglossStyle.Foreground(style.foreground)
	}
	return lipglossStyle.Render(text)
}

// renderer draws one frame of a scene through a viewport.
type renderer struct {
	raster   *Raster
	viewport *Viewport
	theme    tui.Theme
	flash    *tui.FlashTracker
	now      time.Time
	opacity  float64
}

// Rasterize draws the scene as it looks at now.
func Rasterize(s *scene.Scene, viewport *Viewport, theme tui.Theme, flash *tui.FlashTracker, now time.Time) *Raster {
	r := renderer{
		raster:   newRaster(viewport.Columns, viewport.Rows, theme.CanvasBackground),
		viewport: viewport,
		theme:    theme,
		flash:    flash,
		now:      now,
		opacity:  s.Opacity(now),
	}
	for _, connection := range s.Connections() {
		r.connection(connection)
	}
	for _, node := range s.Nodes() {
		r.node(node)
	}
	return r.raster
}

func (r *renderer) fade(color lipgloss.Color, opacity float64) lipgloss.Color {
	return tui.Fade(color, r.theme.CanvasBackground, opacity*r.opacity)
}

func (r *renderer) connection(connection *scene.ConnectionElement) {
	progress := connection.DrawProgress(r.now)
	if progress <= 0 {
		return
	}
	color := r.theme.ConnectionNormal
	switch {
	case connection.Highlighted:
		color = r.theme.ConnectionHighlighted
	case connection.Dimmed:
		color = r.theme.ConnectionDimmed
	}
	color = r.fade(color, 1)

	startColumn, startRow := r.viewport.ToCell(connection.X1, connection.Y1)
	endColumn, endRow := r.viewport.ToCell(connection.X2, connection.Y2)
	deltaColumn, deltaRow := endColumn-startColumn, endRow-startRow
	glyph := lineGlyph(deltaColumn, deltaRow)
	dashed := connection.Dashed(r.now)

	steps := int(math.Ceil(math.Max(math.Abs(deltaColumn), math.Abs(deltaRow))))
	drawn := int(math.Round(float64(steps) * progress))
	for step := 0; step <= drawn && steps > 0; step++ {
		if dashed && step%3 == 2 {
			continue
		}
		fraction := float64(step) / float64(steps)
		column := int(math.Floor(startColumn + deltaColumn*fraction))
		row := int(math.Floor(startRow + deltaRow*fraction))
		r.raster.put(column, row, glyph, color, connection.Highlighted)
	}

	if connection.Label != "" {
		if opacity := connection.LabelOpacity(r.now); opacity > 0 {
			midX, midY := connection.Midpoint()
			column, row := r.viewport.ToCell(midX, midY)
			width := utf8.RuneCountInString(connection.Label)
			r.raster.text(int(math.Round(column))-width/2, int(math.Floor(row)),
				connection.Label, r.fade(r.theme.FaintText, opacity), false)
		}
	}
}

// lineGlyph picks the box-drawing character closest to the direction
// of a line with the given cell deltas.
func lineGlyph(deltaColumn, deltaRow float64) rune {
	absColumn, absRow := math.Abs(deltaColumn), math.Abs(deltaRow)
	switch {
	case absColumn >= 2*absRow:
		return '─'
	case absRow >= 2*absColumn:
		return '│'
	case (deltaColumn > 0) == (deltaRow > 0):
		return '╲'
	default:
		return '╱'
	}
}

// box is a node's cell rectangle.
type box struct {
	left, top, width, height int
}

func (r *renderer) boxAround(x, y, size float64) box {
	column, row := r.viewport.ToCell(x, y)
	width := max(3, int(math.Round(r.viewport.Length(size))))
	height := max(1, int(math.Round(r.viewport.Length(size)/cellAspect)))
	return box{
		left:   int(math.Round(column - float64(width)/2)),
		top:    int(math.Round(row - float64(height)/2)),
		width:  width,
		height: height,
	}
}

// statusColor blends between the from and to status colors of an
// in-flight transition.
func (r *renderer) statusColor(node *scene.NodeElement) lipgloss.Color {
	from, to, progress := node.StatusBlend(r.now)
	return tui.Blend(r.theme.StatusColor(from), r.theme.StatusColor(to), progress)
}

// edgeColor is the node's glow ring: its outline, darkened from the
// status fill and blended with the flash accent after a status change.
func (r *renderer) edgeColor(node *scene.NodeElement, fill lipgloss.Color) lipgloss.Color {
	edge := tui.Darken(fill, darkenFactor)
	if node.Selected {
		edge = r.theme.Primary
	}
	if heat := r.flash.Heat(node.ID, r.now); heat > 0 {
		edge = tui.Blend(edge, r.theme.ChangeAccent, heat)
	}
	return edge
}

func (r *renderer) node(node *scene.NodeElement) {
	fill := r.statusColor(node)
	if node.IsPodGroup() {
		r.podGroup(node, fill)
		return
	}

	opacity := node.Opacity(r.now)
	if opacity <= 0 {
		return
	}
	shapeFill := r.fade(fill, opacity)
	edge := r.fade(r.edgeColor(node, fill), opacity)
	area := r.boxAround(node.X, node.Y, nodeSize)

	for row := area.top; row < area.top+area.height; row++ {
		for column := area.left; column < area.left+area.width; column++ {
			r.raster.paint(column, row, ' ', shapeFill, shapeFill)
			r.raster.hit(column, row, node.ID)
		}
	}
	r.edges(node, area, shapeFill, edge)

	iconRow := area.top + area.height/2
	iconWidth := utf8.RuneCountInString(node.Icon)
	r.raster.text(area.left+(area.width-iconWidth)/2, iconRow, node.Icon,
		r.fade(r.theme.HeaderForeground, opacity), true)

	r.label(node.Label, area.left+area.width/2, area.top+area.height, node.LabelOpacity(r.now), node.ID)
	r.badge(node)
}

// edges draws the outline that makes each shape recognizable.
func (r *renderer) edges(node *scene.NodeElement, area box, fill, edge lipgloss.Color) {
	right := area.left + area.width - 1
	bottom := area.top + area.height - 1
	background := r.theme.CanvasBackground
	switch node.Shape {
	case scene.ShapeCircle:
		for row := area.top; row <= bottom; row++ {
			r.raster.paint(area.left, row, '▐', fill, background)
			r.raster.paint(right, row, '▌', fill, background)
		}
		if node.Selected {
			r.raster.put(area.left, area.top, '▐', edge, true)
			r.raster.put(right, area.top, '▌', edge, true)
		}
	case scene.ShapeRect:
		for row := area.top; row <= bottom; row++ {
			r.raster.put(area.left, row, '▏', edge, node.Selected)
			r.raster.put(right, row, '▕', edge, node.Selected)
		}
	case scene.ShapeCylinder:
		for column := area.left; column <= right; column++ {
			r.raster.put(column, area.top, '▔', edge, node.Selected)
		}
		for row := area.top; row <= bottom; row++ {
			r.raster.put(area.left, row, '(', edge, node.Selected)
			r.raster.put(right, row, ')', edge, node.Selected)
		}
	}
}

func (r *renderer) podGroup(node *scene.NodeElement, fill lipgloss.Color) {
	edge := r.edgeColor(node, fill)
	for _, square := range node.Squares {
		opacity := square.Opacity(r.now)
		if opacity <= 0 {
			continue
		}
		squareFill := r.fade(fill, opacity)
		area := r.boxAround(square.X, square.Y, podSquareSize)
		for row := area.top; row < area.top+area.height; row++ {
			for column := area.left; column < area.left+area.width; column++ {
				r.raster.paint(column, row, ' ', squareFill, squareFill)
				r.raster.hit(column, row, node.ID)
			}
		}
		if node.Selected || r.flash.Heat(node.ID, r.now) > 0 {
			r.raster.put(area.left, area.top, '▛', r.fade(edge, opacity), true)
		}
	}

	labelColumn, labelRow := r.viewport.ToCell(node.X, node.Y+podSquareSize)
	r.label(node.Label, int(math.Round(labelColumn)), int(math.Floor(labelRow)), node.LabelOpacity(r.now), node.ID)
}

func (r *renderer) label(label string, centerColumn, row int, opacity float64, id string) {
	if opacity <= 0 || label == "" {
		return
	}
	width := utf8.RuneCountInString(label)
	left := centerColumn - width/2
	r.raster.text(left, row, label, r.fade(r.theme.LabelForeground, opacity), false)
	for column := left; column < left+width; column++ {
		r.raster.hit(column, row, id)
	}
}

func (r *renderer) badge(node *scene.NodeElement) {
	status, opacity, visible := node.Badge(r.now)
	if !visible || opacity <= 0 {
		return
	}
	glyph := '!'
	if status == nodestatus.Error {
		glyph = '✖'
	}
	x, y := node.BadgePosition()
	column, row := r.viewport.ToCell(x, y)
	r.raster.put(int(math.Round(column)), int(math.Floor(row)), glyph,
		r.fade(r.theme.StatusColor(status), opacity), true)
}
