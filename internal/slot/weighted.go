package slot

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"sort"
)

// WeightTable is the JSON shape of a discrete distribution: use_key[i] is drawn with
// weight[i].
type WeightTable struct {
	UseKey []int   `json:"use_key"`
	Weight []int64 `json:"weight"`
}

// Weighted samples values by weight with one uniform draw and a binary search over the
// cumulative weights. It is immutable after construction and safe for concurrent use.
type Weighted[T any] struct {
	values []T
	cum    []int64
	total  int64
}

// NewWeighted validates the weights (non-negative, positive total) and builds the
// cumulative table.
func NewWeighted[T any](values []T, weights []int64) (*Weighted[T], error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty distribution")
	}
	if len(values) != len(weights) {
		return nil, fmt.Errorf("values and weights length mismatch: %d != %d", len(values), len(weights))
	}
	w := &Weighted[T]{
		values: slices.Clone(values),
		cum:    make([]int64, len(weights)),
	}
	for i, wt := range weights {
		if wt < 0 {
			return nil, fmt.Errorf("negative weight %d at %d", wt, i)
		}
		w.total += wt
		w.cum[i] = w.total
	}
	if w.total <= 0 {
		return nil, fmt.Errorf("total weight must be positive")
	}
	return w, nil
}

// Pick draws one value.
func (w *Weighted[T]) Pick(r *rand.Rand) T {
	if len(w.values) == 1 {
		return w.values[0]
	}
	x := r.Int64N(w.total)
	i := sort.Search(len(w.cum), func(i int) bool { return w.cum[i] > x })
	return w.values[i]
}

// Any reports whether some value with a positive weight satisfies fn.
func (w *Weighted[T]) Any(fn func(T) bool) bool {
	prev := int64(0)
	for i, c := range w.cum {
		if c > prev && fn(w.values[i]) {
			return true
		}
		prev = c
	}
	return false
}

// All reports whether every value with a positive weight satisfies fn.
func (w *Weighted[T]) All(fn func(T) bool) bool {
	return !w.Any(func(v T) bool { return !fn(v) })
}

// Prob returns the probability of the i-th value.
func (w *Weighted[T]) Prob(i int) float64 {
	prev := int64(0)
	if i > 0 {
		prev = w.cum[i-1]
	}
	return float64(w.cum[i]-prev) / float64(w.total)
}

// Len returns the number of values.
func (w *Weighted[T]) Len() int { return len(w.values) }

// Value returns the i-th value.
func (w *Weighted[T]) Value(i int) T { return w.values[i] }

func (t WeightTable) compile() (*Weighted[int], error) {
	return NewWeighted(t.UseKey, t.Weight)
}

// weightedNames builds a distribution over map keys in sorted order so that draws do not
// depend on map iteration order.
func weightedNames(m map[string]int64) (*Weighted[string], error) {
	names := slices.Sorted(maps.Keys(m))
	weights := make([]int64, len(names))
	for i, n := range names {
		weights[i] = m[n]
	}
	return NewWeighted(names, weights)
}
