package anomaly

import (
	"math"
	"math/rand/v2"
)

// eulerGamma is the Euler-Mascheroni constant used in the harmonic number approximation
const eulerGamma = 0.5772156649

// IsolationForest isolates values with random axis splits. Values that are separated from the bulk of
// the data end up on short paths and receive scores close to 1.
type IsolationForest struct {
	Trees      []*iTree `json:"trees"`
	NumTrees   int      `json:"num_trees"`
	SampleSize int      `json:"sample_size"`
	HeightLim  int      `json:"height_limit"`

	rng *rand.Rand
}

type iTree struct {
	Root *iNode `json:"root"`
}

type iNode struct {
	Leaf     bool    `json:"leaf"`
	Size     int     `json:"size"`
	SplitVal float64 `json:"split_val"`
	Left     *iNode  `json:"left"`
	Right    *iNode  `json:"right"`
}

// NewIsolationForest creates an untrained forest. Non-positive tree counts or sample sizes fall back to
// 100 trees of 256 samples.
func NewIsolationForest(numTrees, sampleSize int, seed uint64) *IsolationForest {
	if numTrees <= 0 {
		numTrees = DefaultNumTrees
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &IsolationForest{
		NumTrees:   numTrees,
		SampleSize: sampleSize,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Train builds every tree on a subsample drawn without replacement. The sample size is capped by the
// number of values.
func (f *IsolationForest) Train(x []float64) {
	if f.SampleSize > len(x) {
		f.SampleSize = len(x)
	}
	f.HeightLim = int(math.Ceil(math.Log2(float64(max(f.SampleSize, 2)))))

	f.Trees = make([]*iTree, f.NumTrees)
	for i := 0; i < f.NumTrees; i++ {
		idxs := f.rng.Perm(len(x))
		sample := make([]float64, f.SampleSize)
		for j := range sample {
			sample[j] = x[idxs[j]]
		}
		f.Trees[i] = &iTree{Root: f.buildTree(sample, 0)}
	}
}

func (f *IsolationForest) buildTree(x []float64, h int) *iNode {
	if len(x) <= 1 || h >= f.HeightLim {
		return &iNode{Leaf: true, Size: len(x)}
	}

	minv, maxv := x[0], x[0]
	for _, v := range x[1:] {
		minv = math.Min(minv, v)
		maxv = math.Max(maxv, v)
	}
	// cannot split further
	if minv == maxv {
		return &iNode{Leaf: true, Size: len(x)}
	}

	split := minv + f.rng.Float64()*(maxv-minv)
	left := make([]float64, 0, len(x))
	right := make([]float64, 0, len(x))
	for _, v := range x {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &iNode{Leaf: true, Size: len(x)}
	}
	return &iNode{
		SplitVal: split,
		Left:     f.buildTree(left, h+1),
		Right:    f.buildTree(right, h+1),
	}
}

// cFactor is the average path length of an unsuccessful binary search tree lookup among n values
func cFactor(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	return 2.0*(math.Log(float64(n-1))+eulerGamma) - 2.0*float64(n-1)/float64(n)
}

func pathLength(node *iNode, v float64, h int) float64 {
	if node.Leaf {
		return float64(h) + cFactor(node.Size)
	}
	if v < node.SplitVal {
		return pathLength(node.Left, v, h+1)
	}
	return pathLength(node.Right, v, h+1)
}

// Score returns the anomaly score in (0, 1], higher means more anomalous. An untrained forest scores 0.
func (f *IsolationForest) Score(v float64) float64 {
	if len(f.Trees) == 0 {
		return 0.0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += pathLength(t.Root, v, 0)
	}
	eh := sum / float64(len(f.Trees))
	c := cFactor(f.SampleSize)
	if c <= 0 {
		c = 1
	}
	return math.Pow(2, -eh/c)
}
