// Package chart assembles the data of the tracker charts: raw series, the
// dose segmented trend with its projection and the medication level overlay.
// Drawing is left to the client.
package chart

import (
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/palette"
	"github.com/raykavin/vitaltrend/pkg/regimen"
)

// Dataset labels with a fixed meaning
const (
	LabelSmoothed   = "Smoothed"
	LabelProjected  = "Projected"
	LabelMedication = "Medication Level (mg)"
)

// Axis identifies the y axis a dataset is drawn against
type Axis string

const (
	AxisPrimary   Axis = "y"
	AxisSecondary Axis = "y1"
)

// Style is the line style of a dataset
type Style string

const (
	StyleSolid  Style = "solid"
	StyleDashed Style = "dashed"
)

// Kind tells what a dataset represents
type Kind string

const (
	KindRaw        Kind = "raw"
	KindSegment    Kind = "segment"
	KindSmoothed   Kind = "smoothed"
	KindProjected  Kind = "projected"
	KindMedication Kind = "medication"
	KindSeries     Kind = "series"
)

// Point is a single x/y pair of a dataset
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// Dataset is one line of a chart
type Dataset struct {
	Label      string      `json:"label"`
	Kind       Kind        `json:"kind"`
	Color      palette.RGB `json:"color"`
	Background string      `json:"background,omitempty"`
	Style      Style       `json:"style"`
	Axis       Axis        `json:"axis"`
	Fill       bool        `json:"fill"`
	Tension    float64     `json:"tension"`
	Points     []Point     `json:"points"`
}

// LegendEntry is one visible legend item
type LegendEntry struct {
	Label   string      `json:"label"`
	Color   palette.RGB `json:"color"`
	Fill    string      `json:"fill"`
	Dataset int         `json:"dataset"`
}

// Chart is the complete data of one chart
type Chart struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Datasets []Dataset         `json:"datasets"`
	Legend   []LegendEntry     `json:"legend"`
	Segments []regimen.Segment `json:"segments,omitempty"`

	// Times holds the observed times followed by the projected ones
	Times []time.Time `json:"times"`

	// Values holds the observed samples, one per observed time
	Values core.NullSeries `json:"values"`

	// Trend holds the smoothed samples followed by the projection, one per time.
	// Empty for metrics without a trend.
	Trend core.NullSeries `json:"trend,omitempty"`

	// Secondary marks that a second y axis is used
	Secondary bool `json:"secondary"`
}

// Observed returns the number of observed samples
func (c Chart) Observed() int {
	return len(c.Values)
}

// Dataset returns the first dataset with the given label
func (c Chart) Dataset(label string) (Dataset, bool) {
	for _, dataset := range c.Datasets {
		if dataset.Label == label {
			return dataset, true
		}
	}
	return Dataset{}, false
}

// points pairs times with usable values, skipping absent ones
func points(times []time.Time, values core.NullSeries, from, to int) []Point {
	out := make([]Point, 0, max(0, to-from+1))
	for i := from; i <= to && i < len(values) && i < len(times); i++ {
		if values[i].Usable() {
			out = append(out, Point{X: times[i], Y: values[i].Float64})
		}
	}
	return out
}
