package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

// HourBucket summarizes observed delay for one hour of day.
type HourBucket struct {
	MeanDelay float64
	Count     int
}

// HourlyDelay aggregates departures into per-hour delay buckets.
func HourlyDelay(departures []model.Departure) map[int]HourBucket {
	delays := make(map[int][]float64)
	for _, d := range departures {
		delays[d.Hour] = append(delays[d.Hour], d.DelayMin)
	}
	buckets := make(map[int]HourBucket, len(delays))
	for h, v := range delays {
		buckets[h] = HourBucket{MeanDelay: stat.Mean(v, nil), Count: len(v)}
	}
	return buckets
}

// SortedHours returns the bucket hours in ascending order.
func SortedHours(m map[int]HourBucket) []int {
	hours := make([]int, 0, len(m))
	for h := range m {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}
