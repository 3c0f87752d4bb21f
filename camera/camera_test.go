package camera

import (
	"math"
	"testing"

	"github.com/pthm-cable/quadstar/components"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(10, 10, 512, 512, 64)

	// Should be centered on the grid at fit zoom
	if cam.X != 32 || cam.Y != 32 {
		t.Errorf("expected camera at (32, 32), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 8 || cam.MinZoom != 8 {
		t.Errorf("expected zoom 8, got %f (min %f)", cam.Zoom, cam.MinZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(10, 10, 512, 512, 64)

	sx, sy := cam.WorldToScreen(32, 32)
	if !near(sx, 266) || !near(sy, 266) {
		t.Errorf("expected viewport center (266, 266), got (%f, %f)", sx, sy)
	}
	sx, sy = cam.WorldToScreen(0, 0)
	if !near(sx, 10) || !near(sy, 10) {
		t.Errorf("expected grid origin at offset (10, 10), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(10, 10, 512, 512, 64)
	cam.ZoomAt(3, 100, 200)

	testCases := []struct{ sx, sy float32 }{
		{266, 266},
		{20, 20},
		{500, 400},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestCellAt(t *testing.T) {
	cam := New(10, 10, 512, 512, 64)

	tests := []struct {
		sx, sy float32
		want   components.Point
		ok     bool
	}{
		{10, 10, components.Point{X: 0, Y: 0}, true},
		{17.9, 10, components.Point{X: 0, Y: 0}, true},
		{18, 10, components.Point{X: 1, Y: 0}, true},
		{521, 521, components.Point{X: 63, Y: 63}, true},
		{5, 100, components.Point{}, false},
		{600, 100, components.Point{}, false},
	}
	for _, tt := range tests {
		got, ok := cam.CellAt(tt.sx, tt.sy)
		if ok != tt.ok || got != tt.want {
			t.Errorf("CellAt(%v, %v) = %v, %v; want %v, %v", tt.sx, tt.sy, got, ok, tt.want, tt.ok)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(0, 0, 512, 512, 64)

	cam.SetZoom(1)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to min %f, got %f", cam.MinZoom, cam.Zoom)
	}
	cam.SetZoom(1000)
	if cam.Zoom != maxCellPixels {
		t.Errorf("expected zoom clamped to %d, got %f", maxCellPixels, cam.Zoom)
	}
}

func TestPanStaysInBounds(t *testing.T) {
	cam := New(0, 0, 512, 512, 64)

	// At fit zoom the grid is pinned to the center.
	cam.Pan(1000, 1000)
	if cam.X != 32 || cam.Y != 32 {
		t.Errorf("expected pan ignored at fit zoom, got (%f, %f)", cam.X, cam.Y)
	}

	cam.SetZoom(16) // 32 cells visible
	cam.Pan(-10000, 0)
	if cam.X != 16 {
		t.Errorf("expected left edge clamp at 16, got %f", cam.X)
	}
	cam.Pan(10000, 0)
	if cam.X != 48 {
		t.Errorf("expected right edge clamp at 48, got %f", cam.X)
	}
}

func TestZoomAtKeepsCursorCell(t *testing.T) {
	cam := New(0, 0, 512, 512, 64)

	before, _ := cam.CellAt(256, 256)
	cam.ZoomAt(2, 256, 256)
	after, _ := cam.CellAt(256, 256)
	if before != after {
		t.Errorf("cell under cursor moved from %v to %v", before, after)
	}
	if cam.Zoom != 16 {
		t.Errorf("expected zoom 16, got %f", cam.Zoom)
	}
}

func TestVisibleCells(t *testing.T) {
	cam := New(0, 0, 512, 512, 64)

	if got := cam.VisibleCells(); got != (components.Region{X: 0, Y: 0, Width: 64, Height: 64}) {
		t.Errorf("fit view: got %v", got)
	}

	cam.SetZoom(32) // 16 cells visible
	cam.Pan(-10000, -10000)
	if got := cam.VisibleCells(); got != (components.Region{X: 0, Y: 0, Width: 16, Height: 16}) {
		t.Errorf("zoomed view: got %v", got)
	}
}

func TestRegionRect(t *testing.T) {
	cam := New(10, 20, 512, 512, 64)

	x, y, w, h := cam.RegionRect(components.Region{X: 4, Y: 8, Width: 4, Height: 2})
	if !near(x, 42) || !near(y, 84) || !near(w, 32) || !near(h, 16) {
		t.Errorf("got (%f, %f, %f, %f)", x, y, w, h)
	}
}
