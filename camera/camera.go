// Package camera provides a 2D camera for viewing a square cell grid.
package camera

import (
	"math"

	"github.com/pthm-cable/quadstar/components"
)

// Camera controls the viewport onto the grid.
// World coordinates are cells; Zoom is screen pixels per cell.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level in pixels per cell
	Zoom float32

	// Screen position of the viewport's top-left corner
	OffsetX, OffsetY float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World dimensions in cells
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// maxCellPixels bounds how far in the camera zooms.
const maxCellPixels = 64

// New creates a camera showing the whole cells x cells grid in the viewport.
func New(offsetX, offsetY, viewportW, viewportH float32, cells int) *Camera {
	c := &Camera{
		OffsetX: offsetX,
		OffsetY: offsetY,
		WorldW:  float32(cells),
		WorldH:  float32(cells),
	}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.OffsetX + c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.OffsetY + c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.OffsetX-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.OffsetY-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// InViewport reports whether a screen point lies inside the viewport.
func (c *Camera) InViewport(sx, sy float32) bool {
	return sx >= c.OffsetX && sx < c.OffsetX+c.ViewportW &&
		sy >= c.OffsetY && sy < c.OffsetY+c.ViewportH
}

// CellAt returns the grid cell under a screen point.
func (c *Camera) CellAt(sx, sy float32) (components.Point, bool) {
	if !c.InViewport(sx, sy) {
		return components.Point{}, false
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	if wx < 0 || wy < 0 || wx >= c.WorldW || wy >= c.WorldH {
		return components.Point{}, false
	}
	return components.Point{X: int(wx), Y: int(wy)}, true
}

// RegionRect returns the screen rectangle covering r.
func (c *Camera) RegionRect(r components.Region) (x, y, w, h float32) {
	x, y = c.WorldToScreen(float32(r.X), float32(r.Y))
	return x, y, float32(r.Width) * c.Zoom, float32(r.Height) * c.Zoom
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	// At MinZoom the whole grid fits.
	c.MinZoom = min(viewportW/c.WorldW, viewportH/c.WorldH)
	c.MaxZoom = max(c.MinZoom, maxCellPixels)
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the world point under (sx, sy) fixed on
// screen where the bounds allow it.
func (c *Camera) ZoomAt(factor, sx, sy float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom = clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	c.X = wx - (sx-c.OffsetX-c.ViewportW/2)/c.Zoom
	c.Y = wy - (sy-c.OffsetY-c.ViewportH/2)/c.Zoom
	c.clampCenter()
}

// Reset shows the whole grid.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// VisibleCells returns the cells at least partly on screen, clipped to the grid.
func (c *Camera) VisibleCells() components.Region {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX := int(math.Floor(float64(max(c.X-halfW, 0))))
	minY := int(math.Floor(float64(max(c.Y-halfH, 0))))
	maxX := int(math.Ceil(float64(min(c.X+halfW, c.WorldW))))
	maxY := int(math.Ceil(float64(min(c.Y+halfH, c.WorldH))))
	return components.Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// clampCenter keeps the view inside the grid. When the grid is smaller than
// the view along an axis it is centered on that axis.
func (c *Camera) clampCenter() {
	c.X = clampAxis(c.X, c.ViewportW/(2*c.Zoom), c.WorldW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*c.Zoom), c.WorldH)
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
