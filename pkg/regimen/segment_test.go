package regimen

import (
	"testing"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

func january() []time.Time {
	labels := make([]time.Time, 31)
	for i := range labels {
		labels[i] = date(time.January, i+1, 8)
	}
	return labels
}

func requireCoverage(t *testing.T, segments []Segment, labels int) {
	t.Helper()
	require.NotEmpty(t, segments)
	assert.Equal(t, 0, segments[0].Start)
	assert.Equal(t, labels-1, segments[len(segments)-1].End)
	for i := 1; i < len(segments); i++ {
		assert.Equal(t, segments[i-1].End, segments[i].Start, "segment %d", i)
		assert.LessOrEqual(t, segments[i].Start, segments[i].End, "segment %d", i)
	}
}

func TestSegments_Regimen(t *testing.T) {
	events := []core.DoseEvent{
		{Time: date(time.January, 10, 19), Dose: 5},
		{Time: date(time.January, 20, 7), Dose: 10},
	}

	segments := Segments(events, january())
	require.Len(t, segments, 3)

	assert.Equal(t, Segment{Start: 0, End: 9, Dose: core.Null(), Color: palette.Secondary}, segments[0])
	assert.Equal(t, Segment{Start: 9, End: 19, Dose: core.Float(5), Color: palette.ColorForDose(5)}, segments[1])
	assert.Equal(t, Segment{Start: 19, End: 30, Dose: core.Float(10), Color: palette.ColorForDose(10)}, segments[2])

	assert.Equal(t, "Pre-jab", segments[0].Label())
	assert.Equal(t, "5mg", segments[1].Label())
	assert.True(t, segments[1].Contains(9))
	assert.True(t, segments[1].Contains(19))
	assert.False(t, segments[1].Contains(20))
	assert.Equal(t, 12, segments[2].Len())

	requireCoverage(t, segments, 31)
}

func TestSegments_NoMatch(t *testing.T) {
	labels := january()[:5]

	for name, events := range map[string][]core.DoseEvent{
		"no events":      nil,
		"events missing": {{Time: date(time.March, 1, 8), Dose: 7.5}},
	} {
		t.Run(name, func(t *testing.T) {
			segments := Segments(events, labels)
			require.Len(t, segments, 1)
			assert.Equal(t, Segment{Start: 0, End: 4, Dose: core.Null(), Color: palette.Secondary}, segments[0])
		})
	}
}

func TestSegments_UnmatchedSkipped(t *testing.T) {
	events := []core.DoseEvent{
		{Time: date(time.January, 1, 9), Dose: 2.5},
		{Time: date(time.February, 15, 9), Dose: 5},
		{Time: date(time.January, 15, 9), Dose: 7.5},
	}

	segments := Segments(events, january())
	require.Len(t, segments, 2)
	assert.Equal(t, 0, segments[0].Start)
	assert.Equal(t, 14, segments[0].End)
	assert.Equal(t, core.Float(2.5), segments[0].Dose)
	assert.Equal(t, core.Float(7.5), segments[1].Dose)
	requireCoverage(t, segments, 31)
}

func TestSegments_UnsortedEvents(t *testing.T) {
	events := []core.DoseEvent{
		{Time: date(time.January, 20, 7), Dose: 10},
		{Time: date(time.January, 10, 19), Dose: 5},
	}

	segments := Segments(events, january())
	require.Len(t, segments, 3)
	assert.Equal(t, core.Float(5), segments[1].Dose)
	assert.Equal(t, core.Float(10), segments[2].Dose)
}

func TestSegments_FirstLabelOfDay(t *testing.T) {
	labels := []time.Time{
		date(time.January, 1, 7),
		date(time.January, 2, 7),
		date(time.January, 2, 21),
		date(time.January, 3, 7),
	}
	events := []core.DoseEvent{{Time: date(time.January, 2, 23), Dose: 5}}

	segments := Segments(events, labels)
	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].End)
	assert.Equal(t, 1, segments[1].Start)
	assert.Equal(t, 3, segments[1].End)
}

func TestSegments_SameDayEventsKeepOrder(t *testing.T) {
	events := []core.DoseEvent{
		{Time: date(time.January, 5, 9), Dose: 5},
		{Time: date(time.January, 5, 8), Dose: 7.5},
	}

	segments := Segments(events, january())
	require.Len(t, segments, 3)
	assert.Equal(t, Segment{Start: 4, End: 4, Dose: core.Float(5), Color: palette.ColorForDose(5)}, segments[1])
	assert.Equal(t, Segment{Start: 4, End: 30, Dose: core.Float(7.5), Color: palette.ColorForDose(7.5)}, segments[2])
	requireCoverage(t, segments, 31)
}

func TestSegments_EmptyLabels(t *testing.T) {
	assert.Empty(t, Segments([]core.DoseEvent{{Time: date(time.January, 5, 9), Dose: 5}}, nil))
}

func TestSegmenter_Options(t *testing.T) {
	scale := palette.DefaultDoseScale()
	scale.Saturation = 0

	segmenter := New(WithScale(scale), WithDefaultColor(palette.Tertiary))
	segments := segmenter.Segments([]core.DoseEvent{{Time: date(time.January, 3, 9), Dose: 5}}, january()[:5])
	require.Len(t, segments, 2)
	assert.Equal(t, palette.Tertiary, segments[0].Color)

	// without saturation every channel equals the value
	gray := segments[1].Color
	assert.Equal(t, gray.R, gray.G)
	assert.Equal(t, gray.G, gray.B)
}

func TestSegments_DoesNotReorderInput(t *testing.T) {
	events := []core.DoseEvent{
		{Time: date(time.January, 20, 7), Dose: 10},
		{Time: date(time.January, 10, 19), Dose: 5},
	}
	Segments(events, january())
	assert.Equal(t, 10.0, events[0].Dose)
}
