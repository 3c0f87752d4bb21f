package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	ErrorColor     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32

	// Board colors
	Wall    rl.Color
	Open    rl.Color
	Closed  rl.Color
	Path    rl.Color
	Current rl.Color
	Leaf    rl.Color
	Start   rl.Color
	Goal    rl.Color
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		ErrorColor:     rl.Color{R: 230, G: 90, B: 90, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,

		Wall:    rl.Color{R: 40, G: 40, B: 48, A: 255},
		Open:    rl.Color{R: 120, G: 180, B: 255, A: 90},
		Closed:  rl.Color{R: 255, G: 170, B: 60, A: 90},
		Path:    rl.Color{R: 40, G: 200, B: 90, A: 160},
		Current: rl.Red,
		Leaf:    rl.Color{R: 150, G: 150, B: 160, A: 255},
		Start:   rl.Blue,
		Goal:    rl.Maroon,
	}
}
