package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/encode"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

// Names is the feature column order recorded in the metadata artifact.
// The serving side must reconstruct vectors in exactly this order.
var Names = []string{
	"hour",
	"hour_sin",
	"hour_cos",
	"route_distance",
	"route_avg_delay",
	"route_std_delay",
	"route_count",
	"is_rush_hour",
	"is_night",
	"route_encoded",
}

// Row is one departure augmented with its derived features. The route key
// stays categorical here; Matrix applies the integer encoding.
type Row struct {
	Route     string
	Hour      float64
	HourSin   float64
	HourCos   float64
	Distance  float64
	AvgDelay  float64
	StdDelay  float64
	Count     float64
	RushHour  float64
	Night     float64
	DelayMin  float64
}

// RouteStatsFrom aggregates delay mean, sample standard deviation, and
// count per route over the whole input. Std is 0 for routes with a single
// observation, where sample variance is undefined.
func RouteStatsFrom(departures []model.Departure) map[string]model.RouteStats {
	delays := make(map[string][]float64)
	for _, d := range departures {
		r := d.Route()
		delays[r] = append(delays[r], d.DelayMin)
	}
	out := make(map[string]model.RouteStats, len(delays))
	for r, v := range delays {
		s := model.RouteStats{AvgDelay: stat.Mean(v, nil), Count: len(v)}
		if len(v) > 1 {
			s.StdDelay = stat.StdDev(v, nil)
		}
		out[r] = s
	}
	return out
}

// Build derives the feature row for each departure whose route appears in
// stats. Departures on routes absent from stats are dropped rather than
// extrapolated; the second return value counts them. Pure and
// deterministic given identical input.
func Build(departures []model.Departure, stats map[string]model.RouteStats) ([]Row, int) {
	rows := make([]Row, 0, len(departures))
	dropped := 0
	for _, d := range departures {
		r := d.Route()
		s, ok := stats[r]
		if !ok {
			dropped++
			continue
		}
		sin, cos := HourCycle(d.Hour)
		rows = append(rows, Row{
			Route:    r,
			Hour:     float64(d.Hour),
			HourSin:  sin,
			HourCos:  cos,
			Distance: RouteDistance(d.OriginLat, d.OriginLong, d.DestLat, d.DestLong),
			AvgDelay: s.AvgDelay,
			StdDelay: s.StdDelay,
			Count:    float64(s.Count),
			RushHour: boolFeature(IsRushHour(d.Hour)),
			Night:    boolFeature(IsNight(d.Hour)),
			DelayMin: d.DelayMin,
		})
	}
	return rows, dropped
}

// Matrix flattens rows into the model input matrix and target vector,
// applying the fitted route encoding. Column order follows Names.
func Matrix(rows []Row, enc *encode.Encoder) ([][]float64, []float64, error) {
	X := make([][]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))
	for _, r := range rows {
		code, err := enc.Transform(r.Route)
		if err != nil {
			return nil, nil, err
		}
		X = append(X, Vector(r, code))
		y = append(y, r.DelayMin)
	}
	return X, y, nil
}

// Vector lays out one row in the Names column order.
func Vector(r Row, routeCode int) []float64 {
	return []float64{
		r.Hour, r.HourSin, r.HourCos, r.Distance,
		r.AvgDelay, r.StdDelay, r.Count,
		r.RushHour, r.Night, float64(routeCode),
	}
}

// HourCycle encodes hour of day on the unit circle so hour 23 and hour 0
// are numerically adjacent.
func HourCycle(hour int) (sin, cos float64) {
	angle := 2 * math.Pi * float64(hour) / 24.0
	return math.Sin(angle), math.Cos(angle)
}

// RouteDistance approximates route length in kilometers as the Euclidean
// distance between coordinates scaled by 111 (degrees to km). A crude
// proxy, not geodesic distance.
func RouteDistance(lat1, long1, lat2, long2 float64) float64 {
	return math.Hypot(lat1-lat2, long1-long2) * 111.0
}

// IsRushHour reports whether hour falls in [7,9] or [17,19] inclusive.
func IsRushHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19)
}

// IsNight reports whether hour is at most 6 or at least 22.
func IsNight(hour int) bool {
	return hour <= 6 || hour >= 22
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Routes lists the route key of each row, for encoder fitting.
func Routes(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Route
	}
	return out
}
