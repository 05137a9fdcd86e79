// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import "math"

// cellAspect is the height of a terminal cell divided by its width.
// Canvas units map to twice as many columns as rows so that shapes
// keep their proportions.
const cellAspect = 2.0

// Zoom step factors for keyboard and mouse wheel zooming.
const (
	keyZoomFactor   = 1.25
	wheelZoomFactor = 1.1
)

// Viewport maps canvas coordinates to terminal cells. At zoom 1 the
// whole canvas fits the cell area; Zoom scales around Center, the
// canvas point shown in the middle of the area.
type Viewport struct {
	Columns, Rows int

	CanvasWidth, CanvasHeight float64
	MinZoom, MaxZoom          float64

	Zoom             float64
	CenterX, CenterY float64
}

// NewViewport returns a viewport showing the whole canvas.
func NewViewport(canvasWidth, canvasHeight, minZoom, maxZoom float64) Viewport {
	viewport := Viewport{
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
		MinZoom:      minZoom,
		MaxZoom:      maxZoom,
	}
	viewport.Reset()
	return viewport
}

// Resize sets the cell area.
func (viewport *Viewport) Resize(columns, rows int) {
	viewport.Columns = max(0, columns)
	viewport.Rows = max(0, rows)
}

// Reset returns to the fitted view of the whole canvas.
func (viewport *Viewport) Reset() {
	viewport.Zoom = 1
	viewport.CenterX = viewport.CanvasWidth / 2
	viewport.CenterY = viewport.CanvasHeight / 2
}

// scale returns columns per canvas unit at the current zoom.
func (viewport *Viewport) scale() float64 {
	if viewport.CanvasWidth <= 0 || viewport.CanvasHeight <= 0 {
		return 0
	}
	fit := math.Min(
		float64(viewport.Columns)/viewport.CanvasWidth,
		float64(viewport.Rows)*cellAspect/viewport.CanvasHeight,
	)
	return fit * viewport.Zoom
}

// ToCell converts a canvas point to fractional cell coordinates.
func (viewport *Viewport) ToCell(x, y float64) (column, row float64) {
	scale := viewport.scale()
	column = (x-viewport.CenterX)*scale + float64(viewport.Columns)/2
	row = (y-viewport.CenterY)*scale/cellAspect + float64(viewport.Rows)/2
	return column, row
}

// ToCanvas converts a cell position to the canvas point at the
// cell's center.
func (viewport *Viewport) ToCanvas(column, row int) (x, y float64) {
	scale := viewport.scale()
	if scale == 0 {
		return viewport.CenterX, viewport.CenterY
	}
	x = (float64(column)+0.5-float64(viewport.Columns)/2)/scale + viewport.CenterX
	y = (float64(row)+0.5-float64(viewport.Rows)/2)*cellAspect/scale + viewport.CenterY
	return x, y
}

// Length converts a canvas distance to columns.
func (viewport *Viewport) Length(units float64) float64 {
	return units * viewport.scale()
}

// ZoomAt multiplies the zoom by factor, clamped to [MinZoom, MaxZoom],
// keeping the canvas point under the given cell fixed on screen.
func (viewport *Viewport) ZoomAt(column, row int, factor float64) {
	anchorX, anchorY := viewport.ToCanvas(column, row)
	zoom := math.Max(viewport.MinZoom, math.Min(viewport.MaxZoom, viewport.Zoom*factor))
	if zoom == viewport.Zoom {
		return
	}
	viewport.Zoom = zoom
	afterX, afterY := viewport.ToCanvas(column, row)
	viewport.CenterX += anchorX - afterX
	viewport.CenterY += anchorY - afterY
}

// ZoomCenter zooms around the middle of the area.
func (viewport *Viewport) ZoomCenter(factor float64) {
	viewport.ZoomAt(viewport.Columns/2, viewport.Rows/2, factor)
}

// Pan moves the view by the given number of cells.
func (viewport *Viewport) Pan(columns, rows int) {
	scale := viewport.scale()
	if scale == 0 {
		return
	}
	viewport.CenterX += float64(columns) / scale
	viewport.CenterY += float64(rows) * cellAspect / scale
}
