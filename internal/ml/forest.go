package ml

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
)

// RandomForest averages deep regression trees fit on bootstrap samples
// with per-split feature subsampling. Tree building is parallelized
// across all available cores; each tree derives its own rng from Seed so
// the fit is deterministic regardless of scheduling.
type RandomForest struct {
	Trees    int   `json:"trees"`
	MaxDepth int   `json:"max_depth"`
	MinLeaf  int   `json:"min_leaf"`
	Seed     int64 `json:"seed"`
	Workers  int   `json:"-"`

	Ensemble []*Tree `json:"ensemble"`
}

func (f *RandomForest) Type() string { return "random_forest" }

func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("random forest: bad training shape %dx%d", len(X), len(y))
	}
	if f.MinLeaf <= 0 {
		f.MinLeaf = 1
	}
	workers := f.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	n := len(y)
	p := len(X[0])
	featuresPerSplit := p / 3
	if featuresPerSplit < 1 {
		featuresPerSplit = 1
	}
	f.Ensemble = make([]*Tree, f.Trees)
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for t := 0; t < f.Trees; t++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(t int) {
			defer wg.Done()
			defer func() { <-sem }()
			rng := rand.New(rand.NewSource(f.Seed + int64(t)))
			idx := make([]int, n)
			for i := range idx {
				idx[i] = rng.Intn(n)
			}
			b := &treeBuilder{
				X: X, y: y,
				maxDepth: f.MaxDepth, minLeaf: f.MinLeaf,
				workers: 1, // parallelism is across trees here
				rng:     rng, featuresPerSplit: featuresPerSplit,
			}
			f.Ensemble[t] = &Tree{Root: b.build(idx, 0)}
		}(t)
	}
	wg.Wait()
	return nil
}

func (f *RandomForest) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.Ensemble) == 0 {
		return out
	}
	for i, x := range X {
		s := 0.0
		for _, t := range f.Ensemble {
			s += t.PredictOne(x)
		}
		out[i] = s / float64(len(f.Ensemble))
	}
	return out
}
