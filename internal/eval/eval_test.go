package eval

import (
	"math"
	"testing"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

// stub returns canned predictions regardless of input.
type stub struct {
	name string
	out  []float64
}

func (s stub) Fit(X [][]float64, y []float64) error { return nil }
func (s stub) Predict(X [][]float64) []float64      { return append([]float64(nil), s.out...) }
func (s stub) Type() string                         { return s.name }

func TestClampNonNegative(t *testing.T) {
	in := []float64{-3.5, 0, 2.1, -0.0001, 7}
	out := ClampNonNegative(in)
	for i, v := range out {
		if v < 0 {
			t.Fatalf("clamped output %d is negative: %v", i, v)
		}
	}
	if out[2] != 2.1 || out[4] != 7 {
		t.Fatalf("positive values must pass through: %v", out)
	}
	if in[0] != -3.5 {
		t.Fatal("clamp must not mutate its input")
	}
}

func TestEvaluateMetrics(t *testing.T) {
	// predictions [1,3], targets [2,2]: errors -1 and +1
	m, err := Evaluate(stub{out: []float64{1, 3}}, [][]float64{{0}, {0}}, []float64{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.RMSE-1) > 1e-9 || math.Abs(m.MAE-1) > 1e-9 {
		t.Fatalf("rmse=%v mae=%v, want 1 and 1", m.RMSE, m.MAE)
	}
}

func TestEvaluateClampsBeforeScoring(t *testing.T) {
	// raw prediction -10 scores as 0
	m, err := Evaluate(stub{out: []float64{-10}}, [][]float64{{0}}, []float64{4})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.RMSE-4) > 1e-9 {
		t.Fatalf("rmse=%v, want 4 after clamping the -10 prediction to 0", m.RMSE)
	}
}

func TestEvaluatePerfectFitR2(t *testing.T) {
	m, err := Evaluate(stub{out: []float64{1, 2, 3}}, [][]float64{{0}, {0}, {0}}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.R2-1) > 1e-9 {
		t.Fatalf("r2=%v, want 1 for a perfect fit", m.R2)
	}
}

func TestSelectBestLowerRMSEWinsRegardlessOfOrder(t *testing.T) {
	a := Candidate{Model: stub{name: "a"}, Metrics: model.Metrics{RMSE: 4.2}}
	b := Candidate{Model: stub{name: "b"}, Metrics: model.Metrics{RMSE: 3.9}}
	got, err := SelectBest([]Candidate{a, b})
	if err != nil || got.Model.Type() != "b" {
		t.Fatalf("selected %v (%v), want b", got.Model.Type(), err)
	}
	got, err = SelectBest([]Candidate{b, a})
	if err != nil || got.Model.Type() != "b" {
		t.Fatalf("selected %v (%v), want b", got.Model.Type(), err)
	}
}

func TestSelectBestTieKeepsFirst(t *testing.T) {
	a := Candidate{Model: stub{name: "a"}, Metrics: model.Metrics{RMSE: 4.0}}
	b := Candidate{Model: stub{name: "b"}, Metrics: model.Metrics{RMSE: 4.0}}
	got, err := SelectBest([]Candidate{a, b})
	if err != nil || got.Model.Type() != "a" {
		t.Fatalf("tie selected %v, want the first evaluated", got.Model.Type())
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if _, err := SelectBest(nil); err == nil {
		t.Fatal("expected error for empty candidate list")
	}
}
