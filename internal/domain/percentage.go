package domain

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
)

// Weights is an ordered category -> weight accumulator. Categories keep the
// order in which they were first added.
type Weights struct {
	order  []string
	values map[string]int64
}

// NewWeights returns an empty accumulator.
func NewWeights() *Weights {
	return &Weights{values: make(map[string]int64)}
}

// WeightsFromMap builds weights from an unordered map, ordering categories by
// descending weight and then by name. This matches the order in which GitHub
// reports repository languages.
func WeightsFromMap(m map[string]int) *Weights {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	w := NewWeights()
	for _, k := range keys {
		w.Add(k, int64(m[k]))
	}
	return w
}

// Add accumulates value into category.
func (w *Weights) Add(category string, value int64) {
	if _, ok := w.values[category]; !ok {
		w.order = append(w.order, category)
	}
	w.values[category] += value
}

// Merge adds every category of other into w, in other's order.
func (w *Weights) Merge(other *Weights) {
	if other == nil {
		return
	}
	for _, c := range other.order {
		w.Add(c, other.values[c])
	}
}

// Len returns the number of categories.
func (w *Weights) Len() int {
	if w == nil {
		return 0
	}
	return len(w.order)
}

// Categories returns the categories in insertion order.
func (w *Weights) Categories() []string {
	if w == nil {
		return nil
	}
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Get returns the accumulated weight of category.
func (w *Weights) Get(category string) int64 {
	if w == nil {
		return 0
	}
	return w.values[category]
}

// Percentage is a category share of a total, in the 0-100 range.
type Percentage struct {
	Category string
	Value    float64
}

// Normalize converts weights into percentages of their total, preserving
// category order. It returns an empty slice when there is nothing to divide.
func Normalize(w *Weights) []Percentage {
	out := []Percentage{}
	if w.Len() == 0 {
		return out
	}
	raw := make(stats.Float64Data, 0, len(w.order))
	for _, c := range w.order {
		raw = append(raw, float64(w.values[c]))
	}
	// Sum only fails on empty input, ruled out above.
	total, _ := stats.Sum(raw)
	if total <= 0 {
		return out
	}
	for i, c := range w.order {
		out = append(out, Percentage{Category: c, Value: raw[i] / total * 100})
	}
	return out
}

// FormatPercent renders a value with exactly two decimals and a trailing '%'.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// LabeledPercentages renders percentages as "Category: pp.pp%".
func LabeledPercentages(ps []Percentage) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Category+": "+FormatPercent(p.Value))
	}
	return out
}

// PercentageMap renders percentages as category -> "pp.pp%".
func PercentageMap(ps []Percentage) map[string]string {
	out := make(map[string]string, len(ps))
	for _, p := range ps {
		out[p.Category] = FormatPercent(p.Value)
	}
	return out
}
