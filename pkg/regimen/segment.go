// Package regimen splits a sequence of time labels into contiguous segments,
// one per medication dose in effect, each carrying the color of its dose.
package regimen

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/palette"
)

// PreRegimenLabel names the segment before the first matched dose
const PreRegimenLabel = "Pre-jab"

// Segment is a run of label indices under the same dose.
// Start and End are both inclusive; adjacent segments share their boundary index.
type Segment struct {
	Start int            `json:"start"`
	End   int            `json:"end"`
	Dose  core.NullFloat `json:"dose"`
	Color palette.RGB    `json:"color"`
}

// Label returns the dose formatted for a legend, such as "5mg"
func (s Segment) Label() string {
	if !s.Dose.Valid {
		return PreRegimenLabel
	}
	return strconv.FormatFloat(s.Dose.Float64, 'f', -1, 64) + "mg"
}

// Contains reports whether label index i belongs to the segment
func (s Segment) Contains(i int) bool {
	return i >= s.Start && i <= s.End
}

// Len returns the number of label indices covered
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

func (s Segment) String() string {
	return fmt.Sprintf("%s [%d, %d] %s", s.Label(), s.Start, s.End, s.Color)
}

// Segmenter assigns dose segments to labels
type Segmenter struct {
	scale        palette.DoseScale
	defaultColor palette.RGB
}

// Option configures a Segmenter
type Option func(*Segmenter)

// WithScale sets the dose to color scale
func WithScale(scale palette.DoseScale) Option {
	return func(s *Segmenter) {
		s.scale = scale
	}
}

// WithDefaultColor sets the color of the segment without dose
func WithDefaultColor(color palette.RGB) Option {
	return func(s *Segmenter) {
		s.defaultColor = color
	}
}

// New creates a Segmenter with the default dose scale
func New(options ...Option) *Segmenter {
	segmenter := &Segmenter{
		scale:        palette.DefaultDoseScale(),
		defaultColor: palette.Secondary,
	}
	for _, option := range options {
		option(segmenter)
	}
	return segmenter
}

// Segments computes the dose segments of labels using the default scale
func Segments(events []core.DoseEvent, labels []time.Time) []Segment {
	return New().Segments(events, labels)
}

// dayKey identifies the calendar date of t in its own location
func dayKey(t time.Time) string {
	return core.StartOfDay(t).Format(core.DateLayout)
}

type match struct {
	index int
	dose  float64
}

// Segments computes the dose segments of labels. Events whose date appears in
// no label are skipped. Without any matched event the whole range is a single
// segment without dose. Empty labels produce no segments.
func (s *Segmenter) Segments(events []core.DoseEvent, labels []time.Time) []Segment {
	if len(labels) == 0 {
		return nil
	}
	last := len(labels) - 1

	firstLabel := make(map[string]int, len(labels))
	for i, label := range labels {
		if _, ok := firstLabel[dayKey(label)]; !ok {
			firstLabel[dayKey(label)] = i
		}
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b core.DoseEvent) int {
		return core.StartOfDay(a.Time).Compare(core.StartOfDay(b.Time))
	})

	matches := make([]match, 0, len(sorted))
	for _, event := range sorted {
		if index, ok := firstLabel[dayKey(event.Time)]; ok {
			matches = append(matches, match{index: index, dose: event.Dose})
		}
	}

	if len(matches) == 0 {
		return []Segment{{Start: 0, End: last, Dose: core.Null(), Color: s.defaultColor}}
	}

	segments := make([]Segment, 0, len(matches)+1)
	if matches[0].index > 0 {
		segments = append(segments, Segment{
			Start: 0,
			End:   matches[0].index,
			Dose:  core.Null(),
			Color: s.defaultColor,
		})
	}

	for i, m := range matches {
		end := last
		if i+1 < len(matches) {
			end = matches[i+1].index
		}

		segments = append(segments, Segment{
			Start: m.index,
			End:   end,
			Dose:  core.Float(m.dose),
			Color: s.scale.Color(m.dose),
		})
	}

	return segments
}
