package theme

import (
	"image/color"
)

// Theme defines the colors used by the viewer window and the rendered
// overlays.
type Theme struct {
	Name string

	// Window
	Background color.RGBA
	Foreground color.RGBA

	// Status bar
	StatusBackground color.RGBA
	StatusText       color.RGBA
	StatusBusy       color.RGBA
	StatusError      color.RGBA

	// Overlays
	Marker          color.RGBA
	MarkerHalo      color.RGBA
	CropBorder      color.RGBA
	CropShade       color.RGBA
	LabelBackground color.RGBA
	LabelText       color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the built-in dark theme.
func Default() *Theme {
	return &Theme{
		Name:             "dark",
		Background:       color.RGBA{17, 24, 39, 255},
		Foreground:       color.RGBA{229, 231, 235, 255},
		StatusBackground: color.RGBA{31, 41, 55, 255},
		StatusText:       color.RGBA{209, 213, 219, 255},
		StatusBusy:       color.RGBA{96, 165, 250, 255},
		StatusError:      color.RGBA{248, 113, 113, 255},
		Marker:           color.RGBA{59, 130, 246, 255},
		MarkerHalo:       color.RGBA{59, 130, 246, 128},
		CropBorder:       color.RGBA{255, 255, 255, 255},
		CropShade:        color.RGBA{0, 0, 0, 128},
		LabelBackground:  color.RGBA{0, 0, 0, 160},
		LabelText:        color.RGBA{255, 255, 255, 255},
		CheckerLight:     color.RGBA{55, 65, 81, 255},
		CheckerDark:      color.RGBA{31, 41, 55, 255},
	}
}
