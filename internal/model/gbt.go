package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"revenue-lab/internal/domain"
)

// Params are the gradient-boosting hyperparameters. Defaults mirror the
// production configuration; every field is overridable before Fit.
type Params struct {
	NumTrees       int
	LearningRate   float64
	MaxDepth       int
	Subsample      float64 // row fraction sampled per tree, without replacement
	ColSample      float64 // column fraction sampled per tree
	MinSamplesLeaf int
	Seed           int64
}

// DefaultParams returns the fixed production defaults.
func DefaultParams() Params {
	return Params{
		NumTrees:       300,
		LearningRate:   0.05,
		MaxDepth:       6,
		Subsample:      0.8,
		ColSample:      0.8,
		MinSamplesLeaf: 1,
		Seed:           42,
	}
}

// GBT is a gradient-boosted least-squares regression tree ensemble. Fitted
// parameters are immutable after Fit; Predict is safe for concurrent use.
type GBT struct {
	params       Params
	featureNames []string
	base         float64 // initial prediction: mean of the training target
	trees        []*regressionTree
	gains        []float64 // accumulated split gain per feature
	fitted       bool
}

// NewGBT creates an untrained ensemble with the given hyperparameters.
func NewGBT(params Params) *GBT {
	return &GBT{params: params}
}

// Importance is one entry of the feature-importance ranking.
type Importance struct {
	Feature string
	Score   float64
}

// Fit trains the ensemble on the feature matrix and target.
// featureNames must be a subset-free match of the fixed feature contract:
// any unknown column is a data error; a target length that differs from the
// row count is a model error.
func (g *GBT) Fit(x [][]float64, y []float64, featureNames []string) error {
	if len(x) == 0 || len(featureNames) == 0 {
		return fmt.Errorf("%w: empty training features", domain.ErrData)
	}
	if len(y) != len(x) {
		return fmt.Errorf("%w: %d target values for %d feature rows", domain.ErrModel, len(y), len(x))
	}
	known := make(map[string]struct{}, len(domain.FeatureColumns))
	for _, name := range domain.FeatureColumns {
		known[name] = struct{}{}
	}
	for _, name := range featureNames {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: column %q is not in the fixed feature set", domain.ErrData, name)
		}
	}
	for _, row := range x {
		if len(row) != len(featureNames) {
			return fmt.Errorf("%w: row width %d, want %d", domain.ErrModel, len(row), len(featureNames))
		}
	}

	p := g.params
	n := len(x)
	numCols := len(featureNames)

	g.featureNames = append([]string(nil), featureNames...)
	g.gains = make([]float64, numCols)
	g.trees = make([]*regressionTree, 0, p.NumTrees)

	sum := 0.0
	for _, v := range y {
		sum += v
	}
	g.base = sum / float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.base
	}
	residual := make([]float64, n)

	rng := rand.New(rand.NewSource(p.Seed))

	rowCount := int(math.Round(p.Subsample * float64(n)))
	if rowCount < 1 {
		rowCount = 1
	}
	colCount := int(math.Ceil(p.ColSample * float64(numCols)))
	if colCount < 1 {
		colCount = 1
	}

	for t := 0; t < p.NumTrees; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}

		rows := rng.Perm(n)[:rowCount]
		cols := rng.Perm(numCols)[:colCount]
		sort.Ints(cols)

		tree := buildTree(x, residual, rows, cols, p.MaxDepth, p.MinSamplesLeaf, g.gains)
		g.trees = append(g.trees, tree)

		for i := range pred {
			pred[i] += p.LearningRate * tree.predict(x[i])
		}
	}

	g.fitted = true
	return nil
}

// FitTable trains on a feature table's contract columns with its sales series
// as the target.
func (g *GBT) FitTable(t *domain.FeatureTable) error {
	x, err := t.Matrix()
	if err != nil {
		return err
	}
	return g.Fit(x, t.Sales, domain.FeatureColumns)
}

// Predict returns point forecasts for the given feature matrix.
func (g *GBT) Predict(x [][]float64) ([]float64, error) {
	if !g.fitted {
		return nil, fmt.Errorf("%w: model is not fitted", domain.ErrModel)
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(g.featureNames) {
			return nil, fmt.Errorf("%w: row width %d, want %d", domain.ErrModel, len(row), len(g.featureNames))
		}
		v := g.base
		for _, tree := range g.trees {
			v += g.params.LearningRate * tree.predict(row)
		}
		out[i] = v
	}
	return out, nil
}

// PredictTable predicts over a feature table's contract columns.
func (g *GBT) PredictTable(t *domain.FeatureTable) ([]float64, error) {
	x, err := t.Matrix()
	if err != nil {
		return nil, err
	}
	return g.Predict(x)
}

// FeatureImportance returns features ranked by accumulated split gain,
// normalized to sum to 1, descending. Ties keep the original feature order.
func (g *GBT) FeatureImportance() ([]Importance, error) {
	if !g.fitted {
		return nil, fmt.Errorf("%w: model is not fitted", domain.ErrModel)
	}
	total := 0.0
	for _, v := range g.gains {
		total += v
	}
	out := make([]Importance, len(g.featureNames))
	for i, name := range g.featureNames {
		score := 0.0
		if total > 0 {
			score = g.gains[i] / total
		}
		out[i] = Importance{Feature: name, Score: score}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Params returns the hyperparameters the ensemble was created with.
func (g *GBT) Params() Params {
	return g.params
}
