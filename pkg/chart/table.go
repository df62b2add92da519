package chart

import (
	"strconv"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/samber/lo"
)

// TrendHeader is the table header of single metric charts
var TrendHeader = []string{"time", "value", "smoothed", "projected"}

// multiSeries reports whether the chart only holds independent series, as
// the body measurement charts do
func (c Chart) multiSeries() bool {
	return len(c.Values) == 0 && len(c.Datasets) > 0 && lo.EveryBy(c.Datasets, func(dataset Dataset) bool {
		return dataset.Kind == KindSeries
	})
}

// Header returns the table header matching Rows. Multi series charts get one
// column per dataset after the time.
func (c Chart) Header() []string {
	if !c.multiSeries() {
		return TrendHeader
	}

	header := make([]string, 0, len(c.Datasets)+1)
	header = append(header, "time")
	for _, dataset := range c.Datasets {
		header = append(header, dataset.Label)
	}
	return header
}

// Rows returns one row per chart time. Single metric charts carry the
// observed value, the smoothed value and the projected value; the last
// observed row has both the smoothed and the projected value, as the two
// lines meet there. Multi series charts carry one value per dataset.
func (c Chart) Rows() [][]string {
	if c.multiSeries() {
		return c.seriesRows()
	}

	observed := c.Observed()
	rows := make([][]string, 0, len(c.Times))

	for i, t := range c.Times {
		row := []string{t.Format(core.LabelLayout), "", "", ""}
		if i < observed {
			row[1] = formatValue(c.Values[i])
		}
		if i < len(c.Trend) {
			if i < observed {
				row[2] = formatValue(c.Trend[i])
			}
			if i >= observed-1 && len(c.Trend) > observed {
				row[3] = formatValue(c.Trend[i])
			}
		}
		rows = append(rows, row)
	}

	return rows
}

// seriesRows places the points of every dataset on the chart times. Points
// follow the time order and skip absent values, so each dataset is walked once.
func (c Chart) seriesRows() [][]string {
	rows := make([][]string, len(c.Times))
	for i, t := range c.Times {
		rows[i] = make([]string, len(c.Datasets)+1)
		rows[i][0] = t.Format(core.LabelLayout)
	}

	for column, dataset := range c.Datasets {
		next := 0
		for i, t := range c.Times {
			if next < len(dataset.Points) && dataset.Points[next].X.Equal(t) {
				rows[i][column+1] = formatValue(core.Float(dataset.Points[next].Y))
				next++
			}
		}
	}

	return rows
}

func formatValue(v core.NullFloat) string {
	if !v.Usable() {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', 4, 64)
}
