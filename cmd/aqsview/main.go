// Quadtree search viewer - edit a map and watch the search expand regions.
//
// Usage: go run ./cmd/aqsview [-config config.yaml] [-size 64] [-seed 7]
//
// Left click toggles a wall, right click moves the goal, shift + right click
// moves the start. The mouse wheel zooms, middle drag pans and F fits the view.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/quadstar/camera"
	"github.com/pthm-cable/quadstar/components"
	"github.com/pthm-cable/quadstar/config"
	"github.com/pthm-cable/quadstar/quadtree"
	"github.com/pthm-cable/quadstar/telemetry"
	"github.com/pthm-cable/quadstar/ui"
)

const (
	margin     = 10
	panelWidth = 260
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	size := flag.Int("size", 0, "Map side length, power of two (0 = use config)")
	seed := flag.Uint64("seed", 0, "Generator seed (0 = use config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *size > 0 {
		cfg.Map.Size = *size
	}
	if *seed != 0 {
		cfg.Map.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	v, err := newViewer(cfg)
	if err != nil {
		slog.Error("failed to build map", "error", err)
		os.Exit(1)
	}
	defer v.reset()

	width, height := int32(cfg.Viewer.Width), int32(cfg.Viewer.Height)
	rl.InitWindow(width, height, "Quadtree Search Viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	rate := float32(cfg.Viewer.StepsPerSecond)

	// Board fills the space left of the panel.
	board := min(width-panelWidth-3*margin, height-2*margin)
	cam := camera.New(margin, margin, float32(board), float32(board), v.size())

	panelX := board + 2*margin
	overlays := ui.NewOverlayRegistry()
	searchPanel := ui.NewSearchPanel(panelX, 0, panelWidth)
	controlsPanel := ui.NewControlsPanel(panelX, 0, panelWidth)
	perfPanel := ui.NewPerfPanel(panelX, height-45)
	theme := ui.DefaultTheme()

	for !rl.WindowShouldClose() {
		perf.RecordFrame()

		overlays.HandleKeys()
		handleInput(v, cam)
		v.advance(float64(rl.GetFrameTime()), float64(rate))

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.BeginScissorMode(margin, margin, board, board)
		drawBoard(v, cam, overlays, theme)
		rl.EndScissorMode()
		rl.DrawRectangleLines(margin, margin, board, board, rl.DarkGray)

		// Control panel
		px := float32(panelX)
		py := float32(margin)

		if gui.Button(rl.Rectangle{X: px, Y: py, Width: 125, Height: 30}, "Step") {
			v.running = false
			v.step()
		}
		if gui.Button(rl.Rectangle{X: px + 135, Y: py, Width: 125, Height: 30}, toggleText(v.running, "Pause", "Run")) {
			v.running = !v.running && !v.snap.Done
		}
		py += 40

		if gui.Button(rl.Rectangle{X: px, Y: py, Width: 125, Height: 30}, "Solve") {
			v.solve()
		}
		if gui.Button(rl.Rectangle{X: px + 135, Y: py, Width: 125, Height: 30}, "Reset") {
			v.reset()
		}
		py += 40

		if gui.Button(rl.Rectangle{X: px, Y: py, Width: 125, Height: 30}, "New Map") {
			v.seed++
			if err := v.regenerate(); err != nil {
				v.lastErr = err
			}
		}
		if gui.Button(rl.Rectangle{X: px + 135, Y: py, Width: 125, Height: 30}, "Fit View") {
			cam.Reset()
		}
		py += 45

		rl.DrawText("Steps per second", int32(px), int32(py), 14, rl.Gray)
		py += 18
		rate = gui.SliderBar(
			rl.Rectangle{X: px, Y: py, Width: panelWidth - 70, Height: 20},
			"", "",
			rate, 1, 500,
		)
		rl.DrawText(fmt.Sprintf("%.0f", rate), int32(px+panelWidth-60), int32(py+2), 16, rl.DarkGray)
		py += 35

		m := v.planner.Map()
		searchPanel.SetPosition(panelX, int32(py))
		next := searchPanel.Draw(ui.SearchPanelData{
			Seed:        v.seed,
			Start:       v.start.String(),
			Goal:        v.goal.String(),
			Obstacles:   m.ObstacleCount(),
			WalkBlocks:  m.WalkableBlocks(),
			Compression: m.CompressionRate(),
			Step:        v.snap.StepIndex,
			Open:        len(v.snap.Open),
			Closed:      len(v.snap.Closed),
			Done:        v.snap.Done,
			Found:       v.snap.Found,
			PathLen:     len(v.snap.Path),
			Err:         v.lastErr,
		})

		controlsPanel.SetPosition(panelX, next+margin)
		controlsPanel.Draw(overlays)

		stats := perf.Stats()
		perfPanel.Draw(ui.PerfPanelData{FPS: stats.FPS, FrameDuration: stats.FrameDuration, Zoom: cam.Zoom})
		ui.DrawControls(panelX, height, "LMB wall  RMB goal  Shift+RMB start")

		rl.EndDrawing()
	}

	perf.Stats().LogStats()
}

// handleInput maps mouse and keyboard input to camera moves and map edits.
func handleInput(v *viewer, cam *camera.Camera) {
	mouse := rl.GetMousePosition()

	if rl.IsKeyPressed(rl.KeyF) {
		cam.Reset()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.running = !v.running && !v.snap.Done
	}
	if !cam.InViewport(mouse.X, mouse.Y) {
		return
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		cam.ZoomAt(float32(math.Pow(1.15, float64(wheel))), mouse.X, mouse.Y)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		cam.Pan(-d.X, -d.Y)
	}

	c, ok := cam.CellAt(mouse.X, mouse.Y)
	if !ok {
		return
	}
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		v.toggle(c)
	case rl.IsMouseButtonPressed(rl.MouseButtonRight):
		if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
			v.setStart(c)
		} else {
			v.setGoal(c)
		}
	}
}

func drawBoard(v *viewer, cam *camera.Camera, overlays *ui.OverlayRegistry, theme ui.Theme) {
	m := v.planner.Map()
	vis := cam.VisibleCells()

	if overlays.IsEnabled(ui.OverlayWalls) {
		for y := vis.Y; y < vis.Y+vis.Height; y++ {
			for x := vis.X; x < vis.X+vis.Width; x++ {
				if m.IsBlocked(x, y) {
					fillRegion(cam, components.Point{X: x, Y: y}.Unit(), theme.Wall)
				}
			}
		}
	}
	if overlays.IsEnabled(ui.OverlayClosed) {
		for r := range v.snap.Closed {
			fillRegion(cam, r, theme.Closed)
		}
	}
	if overlays.IsEnabled(ui.OverlayOpen) {
		for r := range v.snap.Open {
			fillRegion(cam, r, theme.Open)
		}
	}
	if overlays.IsEnabled(ui.OverlayPath) {
		for _, r := range v.snap.Path {
			fillRegion(cam, r, theme.Path)
		}
	}
	if overlays.IsEnabled(ui.OverlayCurrent) && !v.snap.Done && v.snap.StepIndex > 0 {
		outlineRegion(cam, v.snap.Current, theme.Current)
	}
	if overlays.IsEnabled(ui.OverlayTree) {
		m.Leaves(func(leaf quadtree.Node) {
			if leaf.Bounds.Intersects(vis) {
				outlineRegion(cam, leaf.Bounds, theme.Leaf)
			}
		})
	}

	fillRegion(cam, v.start.Unit(), theme.Start)
	fillRegion(cam, v.goal.Unit(), theme.Goal)
}

func regionRect(cam *camera.Camera, r components.Region) rl.Rectangle {
	x, y, w, h := cam.RegionRect(r)
	return rl.Rectangle{X: x, Y: y, Width: w, Height: h}
}

func fillRegion(cam *camera.Camera, r components.Region, c rl.Color) {
	rl.DrawRectangleRec(regionRect(cam, r), c)
}

func outlineRegion(cam *camera.Camera, r components.Region, c rl.Color) {
	rl.DrawRectangleLinesEx(regionRect(cam, r), 1, c)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
