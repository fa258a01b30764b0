package ml

import (
	"fmt"
	"math/rand"
)

// GradientBoosting fits an additive ensemble of shallow regression trees
// on squared-error residuals. Stages are sequential; the split search
// inside each stage fans out across Workers.
type GradientBoosting struct {
	Trees        int     `json:"trees"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	Subsample    float64 `json:"subsample"`
	MinLeaf      int     `json:"min_leaf"`
	Seed         int64   `json:"seed"`
	Workers      int     `json:"-"`

	Base  float64 `json:"base"`
	Stage []*Tree `json:"stage"`
}

func (g *GradientBoosting) Type() string { return "gradient_boosting" }

func (g *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("gradient boosting: bad training shape %dx%d", len(X), len(y))
	}
	if g.MinLeaf <= 0 {
		g.MinLeaf = 1
	}
	if g.Subsample <= 0 || g.Subsample > 1 {
		g.Subsample = 1
	}
	rng := rand.New(rand.NewSource(g.Seed))
	n := len(y)
	g.Base = mean(y)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.Base
	}
	resid := make([]float64, n)
	g.Stage = make([]*Tree, 0, g.Trees)
	for s := 0; s < g.Trees; s++ {
		for i := range resid {
			resid[i] = y[i] - pred[i]
		}
		idx := sampleIndices(n, g.Subsample, rng)
		b := &treeBuilder{X: X, y: resid, maxDepth: g.MaxDepth, minLeaf: g.MinLeaf, workers: g.Workers}
		t := &Tree{Root: b.build(idx, 0)}
		g.Stage = append(g.Stage, t)
		for i := range pred {
			pred[i] += g.LearningRate * t.PredictOne(X[i])
		}
	}
	return nil
}

func (g *GradientBoosting) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		v := g.Base
		for _, t := range g.Stage {
			v += g.LearningRate * t.PredictOne(x)
		}
		out[i] = v
	}
	return out
}

func sampleIndices(n int, fraction float64, rng *rand.Rand) []int {
	if fraction >= 1 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := int(float64(n) * fraction)
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)
	return perm[:k]
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}
