package eval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/ml"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

// Candidate pairs a fitted model with its held-out metrics.
type Candidate struct {
	Model   ml.Regressor
	Metrics model.Metrics
}

// ClampNonNegative floors every prediction at zero. Delays cannot be
// negative; the clamp applies at scoring and serving time only, never
// during fitting.
func ClampNonNegative(pred []float64) []float64 {
	out := make([]float64, len(pred))
	for i, v := range pred {
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}

// Evaluate scores a fitted model on the held-out set.
func Evaluate(m ml.Regressor, X [][]float64, y []float64) (model.Metrics, error) {
	if len(X) == 0 || len(X) != len(y) {
		return model.Metrics{}, fmt.Errorf("evaluate: bad held-out shape %dx%d", len(X), len(y))
	}
	pred := ClampNonNegative(m.Predict(X))
	var ssRes, absSum float64
	for i := range y {
		d := pred[i] - y[i]
		ssRes += d * d
		absSum += math.Abs(d)
	}
	n := float64(len(y))
	yMean := stat.Mean(y, nil)
	ssTot := 0.0
	for _, v := range y {
		ssTot += (v - yMean) * (v - yMean)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return model.Metrics{
		RMSE: math.Sqrt(ssRes / n),
		MAE:  absSum / n,
		R2:   r2,
	}, nil
}

// SelectBest returns the candidate with strictly lower RMSE; ties keep
// the earlier candidate in evaluation order.
func SelectBest(candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, fmt.Errorf("no candidates to select from")
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Metrics.RMSE < best.Metrics.RMSE {
			best = c
		}
	}
	return best, nil
}
