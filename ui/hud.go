package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// SearchPanelData holds the map and search state for display.
type SearchPanelData struct {
	Seed        uint64
	Start, Goal string
	Obstacles   int
	WalkBlocks  int
	Compression float64
	Step        int
	Open        int
	Closed      int
	Done        bool
	Found       bool
	PathLen     int
	Err         error
}

// SearchPanel renders map and search statistics.
type SearchPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewSearchPanel creates a new search panel.
func NewSearchPanel(x, y, width int32) *SearchPanel {
	return &SearchPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *SearchPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the panel and returns the Y below it.
func (s *SearchPanel) Draw(data SearchPanelData) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	lh := r.Theme.LineHeight

	panelHeight := 13*lh + padding*2 + 6
	r.DrawPanel(s.x, s.y, s.width, panelHeight)

	x := s.x + padding
	y := r.DrawSectionHeader(x, s.y+padding, "Map")
	y = r.DrawLabelValue(x, y, "Seed", fmt.Sprintf("%d", data.Seed))
	y = r.DrawLabelValue(x, y, "Obstacles", fmt.Sprintf("%d", data.Obstacles))
	y = r.DrawLabelValue(x, y, "Walk blocks", fmt.Sprintf("%d", data.WalkBlocks))
	y = r.DrawBar(x, y, "Compression", float32(data.Compression), s.width-padding*2)

	y = r.DrawSpacer(y, 4)
	y = r.DrawSectionHeader(x, y, "Search")
	y = r.DrawLabelValue(x, y, "Start", data.Start)
	y = r.DrawLabelValue(x, y, "Goal", data.Goal)
	y = r.DrawLabelValue(x, y, "Step", fmt.Sprintf("%d", data.Step))
	y = r.DrawLabelValue(x, y, "Open", fmt.Sprintf("%d", data.Open))
	y = r.DrawLabelValue(x, y, "Closed", fmt.Sprintf("%d", data.Closed))

	status := "searching"
	switch {
	case data.Done && data.Found:
		status = fmt.Sprintf("found, %d steps", data.PathLen)
	case data.Done:
		status = "no path"
	case data.Step == 0:
		status = "idle"
	}
	y = r.DrawLabelValue(x, y, "Status", status)

	if data.Err != nil {
		rl.DrawText(data.Err.Error(), x, y, r.Theme.FontSize, r.Theme.ErrorColor)
	}
	return s.y + panelHeight
}

// PerfPanelData holds frame timing for display.
type PerfPanelData struct {
	FPS           float64
	FrameDuration time.Duration
	Zoom          float32
}

// PerfPanel renders frame timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance line.
func (p *PerfPanel) Draw(data PerfPanelData) {
	rl.DrawText(
		fmt.Sprintf("FPS: %.0f | Frame: %s | Zoom: %.1f px/cell", data.FPS, data.FrameDuration.Round(time.Microsecond), data.Zoom),
		p.x, p.y, 12, rl.Gray,
	)
}

// DrawControls renders the control legend at the bottom of the screen.
func DrawControls(x, screenHeight int32, controls string) {
	rl.DrawText(controls, x, screenHeight-25, 12, rl.Gray)
}
