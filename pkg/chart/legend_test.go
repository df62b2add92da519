package chart

import (
	"testing"

	"github.com/raykavin/vitaltrend/pkg/palette"
	"github.com/stretchr/testify/assert"
)

func legendLabels(entries []LegendEntry) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Label
	}
	return out
}

func TestLegend(t *testing.T) {
	datasets := []Dataset{
		{Label: "Pre-jab", Color: palette.Secondary},
		{Label: "5mg", Color: palette.ColorForDose(5)},
		{Label: "7.5mg", Color: palette.ColorForDose(7.5)},
		{Label: "5mg", Color: palette.Tertiary},
		{Label: "Projected", Color: palette.ColorForDose(5)},
		{Label: "Medication Level (mg)", Color: palette.Quaternary},
		{Label: "Weight (kg)", Color: palette.Primary},
	}

	entries := Legend(datasets)
	assert.Equal(t, []string{"5mg", "7.5mg", "Medication Level (mg)", "Weight (kg)"}, legendLabels(entries))

	// duplicates keep the first dataset
	assert.Equal(t, palette.ColorForDose(5), entries[0].Color)
	assert.Equal(t, 1, entries[0].Dataset)
	assert.Equal(t, palette.Primary.Alpha(0.2), entries[3].Fill)

	assert.Empty(t, Legend(nil))
	assert.Empty(t, Legend([]Dataset{{Label: "Smoothed"}}))
}
