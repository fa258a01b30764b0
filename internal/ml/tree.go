package ml

import (
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
)

// Regressor is a fitted scalar regression model. Predictions are raw;
// clamping to the non-negative delay domain happens at scoring and
// serving time, never here.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
	Type() string
}

// Node is one node of a regression tree. Leaves carry the mean target of
// the samples that reached them.
type Node struct {
	Feature   int     `json:"f,omitempty"`
	Threshold float64 `json:"t,omitempty"`
	Left      *Node   `json:"l,omitempty"`
	Right     *Node   `json:"r,omitempty"`
	Value     float64 `json:"v"`
	Leaf      bool    `json:"leaf,omitempty"`
}

// Tree is a CART regression tree using variance-reduction splits.
type Tree struct {
	Root *Node `json:"root"`
}

type splitResult struct {
	feature   int
	threshold float64
	sse       float64
	found     bool
}

type treeBuilder struct {
	X        [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
	workers  int
	// nil means consider every feature at every split; otherwise the rng
	// samples featuresPerSplit candidates (random forest mode).
	rng              *rand.Rand
	featuresPerSplit int
}

func (b *treeBuilder) build(idx []int, depth int) *Node {
	mean, sse := meanSSE(b.y, idx)
	n := &Node{Value: mean, Leaf: true}
	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf || sse <= 1e-12 {
		return n
	}
	best := b.bestSplit(idx)
	if !best.found {
		return n
	}
	var left, right []int
	for _, i := range idx {
		if b.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return n
	}
	n.Leaf = false
	n.Feature = best.feature
	n.Threshold = best.threshold
	n.Left = b.build(left, depth+1)
	n.Right = b.build(right, depth+1)
	return n
}

// bestSplit scans candidate features for the threshold minimizing the sum
// of squared errors of the two children. The per-feature scans are
// independent and fan out across workers.
func (b *treeBuilder) bestSplit(idx []int) splitResult {
	features := b.candidateFeatures()
	workers := b.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(features) {
		workers = len(features)
	}
	results := make([]splitResult, len(features))
	if workers <= 1 {
		for i, f := range features {
			results[i] = b.scanFeature(idx, f)
		}
	} else {
		var wg sync.WaitGroup
		ch := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range ch {
					results[i] = b.scanFeature(idx, features[i])
				}
			}()
		}
		for i := range features {
			ch <- i
		}
		close(ch)
		wg.Wait()
	}
	best := splitResult{sse: math.Inf(1)}
	for _, r := range results {
		if r.found && r.sse < best.sse {
			best = r
		}
	}
	return best
}

func (b *treeBuilder) candidateFeatures() []int {
	p := len(b.X[0])
	all := make([]int, p)
	for i := range all {
		all[i] = i
	}
	if b.rng == nil || b.featuresPerSplit <= 0 || b.featuresPerSplit >= p {
		return all
	}
	b.rng.Shuffle(p, func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:b.featuresPerSplit]
}

// scanFeature sorts the node's samples by one feature and evaluates every
// boundary between distinct values using prefix sums.
func (b *treeBuilder) scanFeature(idx []int, f int) splitResult {
	n := len(idx)
	pairs := make([]vy, n)
	for i, id := range idx {
		pairs[i] = vy{b.X[id][f], b.y[id]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })
	sum := 0.0
	sumSq := 0.0
	for _, p := range pairs {
		sum += p.y
		sumSq += p.y * p.y
	}
	res := splitResult{feature: f, sse: math.Inf(1)}
	leftSum, leftSq := 0.0, 0.0
	for i := 0; i < n-1; i++ {
		leftSum += pairs[i].y
		leftSq += pairs[i].y * pairs[i].y
		if pairs[i].v == pairs[i+1].v {
			continue
		}
		nl := float64(i + 1)
		nr := float64(n - i - 1)
		if i+1 < b.minLeaf || n-i-1 < b.minLeaf {
			continue
		}
		sseL := leftSq - leftSum*leftSum/nl
		sseR := (sumSq - leftSq) - (sum-leftSum)*(sum-leftSum)/nr
		if s := sseL + sseR; s < res.sse {
			res.sse = s
			res.threshold = (pairs[i].v + pairs[i+1].v) / 2
			res.found = true
		}
	}
	return res
}

type vy struct{ v, y float64 }

func meanSSE(y []float64, idx []int) (mean, sse float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	mean = sum / n
	sse = sumSq - sum*sum/n
	if sse < 0 {
		sse = 0
	}
	return mean, sse
}

// PredictOne walks the tree for one feature vector.
func (t *Tree) PredictOne(x []float64) float64 {
	n := t.Root
	for n != nil && !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	if n == nil {
		return 0
	}
	return n.Value
}
