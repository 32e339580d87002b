package maprender

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/busnet/transitcat/internal/svg"
)

// Settings controls the rendered map's geometry and styling.
type Settings struct {
	Width             float64     `validate:"gt=0,lte=100000"`
	Height            float64     `validate:"gt=0,lte=100000"`
	Padding           float64     `validate:"gte=0"`
	LineWidth         float64     `validate:"gte=0,lte=100000"`
	StopRadius        float64     `validate:"gte=0,lte=100000"`
	BusLabelFontSize  uint32      `validate:"lte=100000"`
	BusLabelOffset    svg.Point   `validate:"-"`
	StopLabelFontSize uint32      `validate:"lte=100000"`
	StopLabelOffset   svg.Point   `validate:"-"`
	UnderlayerColor   svg.Color   `validate:"-"`
	UnderlayerWidth   float64     `validate:"gte=0,lte=100000"`
	ColorPalette      []svg.Color `validate:"-"`
}

// Validate checks value ranges. Padding must leave a drawable area.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid render settings: %w", err)
	}
	if s.Padding >= math.Min(s.Width, s.Height)/2 {
		return fmt.Errorf("invalid render settings: padding %g leaves no room in a %gx%g canvas", s.Padding, s.Width, s.Height)
	}
	return nil
}
