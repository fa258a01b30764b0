package predict

import (
	"errors"
	"fmt"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/artifact"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/encode"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/eval"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/feature"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/ml"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

// ErrNoRouteData marks a route with no historical record in the training
// data. Callers report "no data found" and return an empty result rather
// than extrapolating.
var ErrNoRouteData = errors.New("no data found for route")

// Predictor reconstructs feature vectors in the order recorded in the
// metadata artifact and applies the persisted model, clamping at zero.
type Predictor struct {
	model ml.Regressor
	enc   *encode.Encoder
	stats map[string]model.RouteStats
	meta  artifact.Metadata
}

// Load reads the three artifacts from dir and checks that the recorded
// feature order matches what this binary can reconstruct.
func Load(dir string) (*Predictor, error) {
	m, err := artifact.LoadModel(dir)
	if err != nil {
		return nil, fmt.Errorf("load model artifact: %w", err)
	}
	enc, err := artifact.LoadEncoder(dir)
	if err != nil {
		return nil, fmt.Errorf("load encoder artifact: %w", err)
	}
	meta, err := artifact.LoadMetadata(dir)
	if err != nil {
		return nil, fmt.Errorf("load metadata artifact: %w", err)
	}
	if len(meta.FeatureNames) != len(feature.Names) {
		return nil, fmt.Errorf("metadata lists %d features, expected %d", len(meta.FeatureNames), len(feature.Names))
	}
	for i, n := range meta.FeatureNames {
		if n != feature.Names[i] {
			return nil, fmt.Errorf("feature order mismatch at %d: artifact %q, binary %q", i, n, feature.Names[i])
		}
	}
	return &Predictor{model: m, enc: enc.Mapping(), stats: enc.RouteStats, meta: meta}, nil
}

// Metadata returns the training-run summary the artifacts were saved with.
func (p *Predictor) Metadata() artifact.Metadata { return p.meta }

// Delay predicts the delay in minutes for one departure between two known
// stations at the given hour. Routes absent from the training data yield
// ErrNoRouteData.
func (p *Predictor) Delay(origin, dest model.Station, hour int) (float64, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour must be in [0,23], got %d", hour)
	}
	route := model.RouteKey(origin.Code, dest.Code)
	stats, ok := p.stats[route]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoRouteData, route)
	}
	code, err := p.enc.Transform(route)
	if err != nil {
		return 0, err
	}
	sin, cos := feature.HourCycle(hour)
	row := feature.Row{
		Route:    route,
		Hour:     float64(hour),
		HourSin:  sin,
		HourCos:  cos,
		Distance: feature.RouteDistance(origin.Lat, origin.Long, dest.Lat, dest.Long),
		AvgDelay: stats.AvgDelay,
		StdDelay: stats.StdDelay,
		Count:    float64(stats.Count),
	}
	if feature.IsRushHour(hour) {
		row.RushHour = 1
	}
	if feature.IsNight(hour) {
		row.Night = 1
	}
	pred := eval.ClampNonNegative(p.model.Predict([][]float64{feature.Vector(row, code)}))
	return pred[0], nil
}
