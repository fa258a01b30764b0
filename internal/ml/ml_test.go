package ml

import (
	"math"
	"testing"
)

// synthetic regression set: delay grows with the first feature and gets a
// bump when the third (indicator) feature is set.
func syntheticData(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := float64(i % 24)
		b := float64((i * 7) % 10)
		c := 0.0
		if i%3 == 0 {
			c = 1
		}
		X[i] = []float64{a, b, c}
		y[i] = 2*a + 3*b + 10*c
	}
	return X, y
}

func rmse(pred, y []float64) float64 {
	s := 0.0
	for i := range y {
		d := pred[i] - y[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(y)))
}

func baselineRMSE(y []float64) float64 {
	m := mean(y)
	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = m
	}
	return rmse(pred, y)
}

func TestTreeFitsPiecewiseConstant(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{5, 5, 5, 20, 20, 20}
	b := &treeBuilder{X: X, y: y, maxDepth: 2, minLeaf: 1, workers: 1}
	idx := []int{0, 1, 2, 3, 4, 5}
	tree := &Tree{Root: b.build(idx, 0)}
	for i := range X {
		if got := tree.PredictOne(X[i]); math.Abs(got-y[i]) > 1e-9 {
			t.Fatalf("x=%v: predicted %v, want %v", X[i], got, y[i])
		}
	}
}

func TestGradientBoostingBeatsBaseline(t *testing.T) {
	X, y := syntheticData(300)
	g := &GradientBoosting{Trees: 80, MaxDepth: 3, LearningRate: 0.1, Seed: 42, Workers: 2}
	if err := g.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	fit := rmse(g.Predict(X), y)
	base := baselineRMSE(y)
	if fit >= base/2 {
		t.Fatalf("boosting rmse %v not well below baseline %v", fit, base)
	}
}

func TestGradientBoostingDeterministic(t *testing.T) {
	X, y := syntheticData(120)
	g1 := &GradientBoosting{Trees: 30, MaxDepth: 3, LearningRate: 0.1, Seed: 7, Workers: 4}
	g2 := &GradientBoosting{Trees: 30, MaxDepth: 3, LearningRate: 0.1, Seed: 7, Workers: 1}
	if err := g1.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := g2.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	p1 := g1.Predict(X)
	p2 := g2.Predict(X)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("prediction %d differs across worker counts: %v vs %v", i, p1[i], p2[i])
		}
	}
}

func TestRandomForestBeatsBaseline(t *testing.T) {
	X, y := syntheticData(300)
	f := &RandomForest{Trees: 40, MaxDepth: 8, Seed: 42, Workers: 4}
	if err := f.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	fit := rmse(f.Predict(X), y)
	base := baselineRMSE(y)
	if fit >= base {
		t.Fatalf("forest rmse %v not below baseline %v", fit, base)
	}
}

func TestRandomForestDeterministicPerSeed(t *testing.T) {
	X, y := syntheticData(120)
	f1 := &RandomForest{Trees: 20, MaxDepth: 6, Seed: 5, Workers: 4}
	f2 := &RandomForest{Trees: 20, MaxDepth: 6, Seed: 5, Workers: 2}
	if err := f1.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := f2.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	p1 := f1.Predict(X)
	p2 := f2.Predict(X)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("prediction %d differs across worker counts: %v vs %v", i, p1[i], p2[i])
		}
	}
}

func TestFitRejectsBadShapes(t *testing.T) {
	g := &GradientBoosting{Trees: 5, MaxDepth: 2, LearningRate: 0.1}
	if err := g.Fit(nil, nil); err == nil {
		t.Fatal("expected error on empty training set")
	}
	f := &RandomForest{Trees: 5, MaxDepth: 2}
	if err := f.Fit([][]float64{{1}}, []float64{1, 2}); err == nil {
		t.Fatal("expected error on mismatched shapes")
	}
}
