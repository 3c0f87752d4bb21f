package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel renders the overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	items := overlays.All()
	panelHeight := int32(len(items))*lineHeight + padding*2 + lineHeight
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := r.DrawSectionHeader(c.x+padding, c.y+padding, "Overlays")
	for _, desc := range items {
		c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
		y += lineHeight
	}
	return c.y + panelHeight
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	swatch := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		swatch = desc.Color
		swatch.A = 255
	}
	rl.DrawRectangle(x, y+2, 8, 8, swatch)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}
