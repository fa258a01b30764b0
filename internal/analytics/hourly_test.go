package analytics

import (
	"testing"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

func TestHourlyDelay(t *testing.T) {
	deps := []model.Departure{
		{Hour: 8, DelayMin: 4},
		{Hour: 8, DelayMin: 6},
		{Hour: 23, DelayMin: 1},
	}
	buckets := HourlyDelay(deps)
	if len(buckets) != 2 {
		t.Fatalf("bucket count = %d, want 2", len(buckets))
	}
	b := buckets[8]
	if b.Count != 2 || b.MeanDelay != 5 {
		t.Fatalf("hour 8 bucket = %+v", b)
	}
	hours := SortedHours(buckets)
	if len(hours) != 2 || hours[0] != 8 || hours[1] != 23 {
		t.Fatalf("sorted hours = %v", hours)
	}
}
