package chart

import (
	"github.com/StudioSol/set"
	"github.com/raykavin/vitaltrend/pkg/regimen"
)

// hiddenLabels never appear in a legend
var hiddenLabels = map[string]bool{
	LabelProjected:          true,
	LabelSmoothed:           true,
	regimen.PreRegimenLabel: true,
}

// Legend lists every distinct dataset label once, in order of first
// appearance, with the color of its first dataset
func Legend(datasets []Dataset) []LegendEntry {
	labels := set.NewLinkedHashSetString()
	first := make(map[string]int, len(datasets))

	for i, dataset := range datasets {
		if hiddenLabels[dataset.Label] {
			continue
		}
		if _, seen := first[dataset.Label]; !seen {
			first[dataset.Label] = i
			labels.Add(dataset.Label)
		}
	}

	entries := make([]LegendEntry, 0, len(first))
	for label := range labels.Iter() {
		dataset := datasets[first[label]]
		entries = append(entries, LegendEntry{
			Label:   label,
			Color:   dataset.Color,
			Fill:    dataset.Color.Alpha(0.2),
			Dataset: first[label],
		})
	}
	return entries
}
