// Package palette maps medication doses to chart colors and holds the fixed
// chart palette.
package palette

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit per channel color
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Fixed chart colors
var (
	Primary    = RGB{R: 0x80, G: 0x5a, B: 0xd5}
	Secondary  = RGB{R: 0xd5, G: 0x5a, B: 0x72}
	Tertiary   = RGB{R: 0xaf, G: 0xd5, B: 0x5a}
	Quaternary = RGB{R: 0x5a, G: 0xd5, B: 0xbd}
)

var chartColors = []RGB{Primary, Secondary, Tertiary, Quaternary}

// Series returns the fixed color for the i-th dataset of a multi line chart
func Series(i int) RGB {
	if i < 0 {
		i = -i
	}
	return chartColors[i%len(chartColors)]
}

// ParseHex parses a #rrggbb color
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// Hex returns the color formatted as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer
func (c RGB) String() string {
	return c.Hex()
}

// Alpha returns the color as a CSS rgba() value
func (c RGB) Alpha(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}

// MarshalText encodes the color as hex
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex color
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}
