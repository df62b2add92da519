package palette

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DoseScale maps a dose domain onto an arc of the HSV hue circle
type DoseScale struct {
	MinDose    float64
	MaxDose    float64
	HueStart   float64
	HueEnd     float64
	Saturation float64
	Value      float64
}

// DefaultDoseScale goes from red at 2.5mg to blue at 15mg, passing through purple
func DefaultDoseScale() DoseScale {
	return DoseScale{
		MinDose:    2.5,
		MaxDose:    15,
		HueStart:   348,
		HueEnd:     227,
		Saturation: 0.58,
		Value:      0.84,
	}
}

// position returns where the dose falls in the domain, in [0, 1]
func (s DoseScale) position(dose float64) float64 {
	if math.IsNaN(dose) {
		dose = s.MinDose
	}
	dose = math.Min(math.Max(dose, s.MinDose), s.MaxDose)

	width := s.MaxDose - s.MinDose
	if width <= 0 {
		return 0
	}
	return (dose - s.MinDose) / width
}

// Hue returns the hue for the dose in degrees, in [0, 360).
// The arc runs from HueStart to HueEnd increasing through 0°.
func (s DoseScale) Hue(dose float64) float64 {
	arc := math.Mod(360+s.HueEnd-s.HueStart, 360)
	return math.Mod(s.HueStart+arc*s.position(dose), 360)
}

// Color returns the color for the dose
func (s DoseScale) Color(dose float64) RGB {
	return fromColorful(colorful.Hsv(s.Hue(dose), s.Saturation, s.Value))
}

// ColorForDose returns the color of a dose on the default scale
func ColorForDose(dose float64) RGB {
	return DefaultDoseScale().Color(dose)
}
