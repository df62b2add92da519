package chart

import (
	"sort"
	"sync"
)

// Registry holds the current chart of every id. Storing a chart under an id
// that is already present replaces the previous one.
type Registry struct {
	mu     sync.RWMutex
	charts map[string]Chart
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{charts: make(map[string]Chart)}
}

// Replace stores the chart under its id and returns the chart it replaced
func (r *Registry) Replace(chart Chart) (previous Chart, replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, replaced = r.charts[chart.ID]
	r.charts[chart.ID] = chart
	return previous, replaced
}

// Get returns the chart stored under id
func (r *Registry) Get(id string) (Chart, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chart, ok := r.charts[id]
	return chart, ok
}

// Delete removes the chart stored under id and reports whether it existed
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.charts[id]
	delete(r.charts, id)
	return ok
}

// IDs returns the stored ids in lexical order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.charts))
	for id := range r.charts {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of stored charts
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.charts)
}
