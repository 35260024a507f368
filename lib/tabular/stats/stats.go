// Package stats computes the column summaries the dashboard and cli
// surface: describe, value counts, group means, bins.
//
// Every function skips NaN inputs, which is how tabular.Floats marks
// missing cells.
package stats

import (
	"fmt"
	"math"
	"sort"
)

// Summary holds the headline numbers of a numeric column.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// Describe summarizes values. Std is the sample standard deviation;
// with fewer than two usable values it is NaN, as are the other fields
// when nothing is usable at all.
func Describe(values []float64) Summary {
	var sum float64
	var count int
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if count == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Max: nan}
	}

	mean := sum / float64(count)
	var sq float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		sq += d * d
	}
	std := math.NaN()
	if count > 1 {
		std = math.Sqrt(sq / float64(count-1))
	}
	return Summary{Count: count, Mean: mean, Std: std, Min: min, Max: max}
}

type Count struct {
	Value string
	Count int
}

// ValueCounts tallies values in descending count order. Ties keep the
// order values first appeared in.
func ValueCounts(values []string) []Count {
	index := map[string]int{}
	var counts []Count
	for _, v := range values {
		i, ok := index[v]
		if !ok {
			i = len(counts)
			index[v] = i
			counts = append(counts, Count{Value: v})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	return counts
}

type Group struct {
	Key   string
	Mean  float64
	Count int
}

// GroupMean averages values per key. keys and values run in parallel,
// one entry per row. Groups come back in first-appearance order; a key
// whose values are all missing gets a NaN mean.
func GroupMean(keys []string, values []float64) []Group {
	index := map[string]int{}
	var groups []Group
	var sums []float64
	for i, key := range keys {
		j, ok := index[key]
		if !ok {
			j = len(groups)
			index[key] = j
			groups = append(groups, Group{Key: key})
			sums = append(sums, 0)
		}
		v := values[i]
		if math.IsNaN(v) {
			continue
		}
		sums[j] += v
		groups[j].Count++
	}
	for j := range groups {
		if groups[j].Count == 0 {
			groups[j].Mean = math.NaN()
			continue
		}
		groups[j].Mean = sums[j] / float64(groups[j].Count)
	}
	return groups
}

// Cut bins values into len(edges)-1 right-closed intervals named by
// labels, the way bands like (0, 70], (70, 85], (85, 100] read. The
// first interval also includes its lower edge. Values outside the
// edges and NaN get an empty label.
func Cut(values []float64, edges []float64, labels []string) ([]string, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("cut: need at least two edges, got %d", len(edges))
	}
	if len(labels) != len(edges)-1 {
		return nil, fmt.Errorf("cut: %d labels for %d bins", len(labels), len(edges)-1)
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = cutOne(v, edges, labels)
	}
	return out, nil
}

func cutOne(v float64, edges []float64, labels []string) string {
	if math.IsNaN(v) || v < edges[0] || v > edges[len(edges)-1] {
		return ""
	}
	for j := 1; j < len(edges); j++ {
		if v <= edges[j] {
			return labels[j-1]
		}
	}
	return ""
}

type Bin struct {
	Low   float64
	High  float64
	Count int
}

// Histogram splits the finite values into nbins equal-width bins over
// [min, max]. Bins are half-open [low, high) except the last, which
// also takes max itself. NaN and ±Inf values stay out of the bounds
// and the counts.
func Histogram(values []float64, nbins int) []Bin {
	if nbins < 1 {
		return nil
	}

	min := math.Inf(1)
	max := math.Inf(-1)
	count := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		count++
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if count == 0 {
		return nil
	}

	width := (max - min) / float64(nbins)
	bins := make([]Bin, nbins)
	for i := range bins {
		bins[i].Low = min + width*float64(i)
		bins[i].High = min + width*float64(i+1)
	}
	bins[nbins-1].High = max

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		j := nbins - 1
		if width > 0 {
			j = int((v - min) / width)
			if j >= nbins {
				j = nbins - 1
			}
		}
		bins[j].Count++
	}
	return bins
}
