package propagation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/scorerr"
)

func ringGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New([]graph.Edge{
		{A: "1", B: "2"}, {A: "2", B: "3"}, {A: "3", B: "4"},
		{A: "4", B: "5"}, {A: "5", B: "6"}, {A: "6", B: "1"},
	})
	require.NoError(t, err)
	return g
}

func TestParseNormalization(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Normalization
	}{
		{"column", NormColumn},
		{"row", NormRow},
		{"symmetric", NormSymmetric},
	} {
		got, err := ParseNormalization(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, tc.in, got.String())
	}
	_, err := ParseNormalization("bogus")
	require.Error(t, err)
}

func TestAlphaZeroReturnsSeedVectorExactly(t *testing.T) {
	g := ringGraph(t)
	p := New(g, NormColumn, WithAlpha(0))

	seeds := graph.NewModule("seeds", []string{"1", "4"})
	result, err := p.Propagate(context.Background(), seeds, nil)
	require.NoError(t, err)
	require.True(t, result.Converged)
	assert.Equal(t, 1, result.Iterations)

	// With alpha=0 the first step replaces propagation entirely with
	// the (normalized) seed vector.
	assert.Equal(t, 0.5, result.Score("1"))
	assert.Equal(t, 0.5, result.Score("4"))
	assert.Zero(t, result.Score("2"))
}

func TestPropagationConverges(t *testing.T) {
	g := ringGraph(t)
	p := New(g, NormColumn, WithAlpha(0.5), WithTolerance(1e-6))

	seeds := graph.NewModule("seeds", []string{"1"})
	result, err := p.Propagate(context.Background(), seeds, nil)
	require.NoError(t, err)

	assert.True(t, result.Converged)
	assert.Less(t, result.Iterations, DefaultMaxIterations)
	assert.Zero(t, result.Flags)

	// Column-stochastic W preserves vector mass, so the fixed point
	// still sums to 1.
	var total float64
	for _, s := range result.Scores {
		total += s
	}
	assert.InDelta(t, 1.0, total, 1e-5)

	// Relevance decays with ring distance from the seed.
	assert.Greater(t, result.Score("1"), result.Score("2"))
	assert.Greater(t, result.Score("2"), result.Score("3"))
	assert.Greater(t, result.Score("3"), result.Score("4"))
}

func TestRaisingCapDoesNotChangeConvergedResult(t *testing.T) {
	g := ringGraph(t)
	seeds := graph.NewModule("seeds", []string{"2", "5"})

	short := New(g, NormSymmetric, WithAlpha(0.5), WithMaxIterations(1000))
	long := New(g, NormSymmetric, WithAlpha(0.5), WithMaxIterations(5000))

	a, err := short.Propagate(context.Background(), seeds, nil)
	require.NoError(t, err)
	b, err := long.Propagate(context.Background(), seeds, nil)
	require.NoError(t, err)

	require.True(t, a.Converged)
	require.True(t, b.Converged)
	assert.Equal(t, a.Iterations, b.Iterations)
	assert.Equal(t, a.Scores, b.Scores)
}

func TestIterationCapFlagsNotErrors(t *testing.T) {
	g := ringGraph(t)
	p := New(g, NormColumn, WithAlpha(0.9), WithTolerance(1e-15), WithMaxIterations(1))

	result, err := p.Propagate(context.Background(), graph.NewModule("seeds", []string{"1"}), nil)
	require.NoError(t, err)
	assert.False(t, result.Converged)
	assert.Equal(t, 1, result.Iterations)
	assert.True(t, result.Flags.Has(scorerr.FlagDidNotConverge))
	require.Len(t, result.Scores, g.NumNodes())
}

func TestSeedWeightsAndMissingSeeds(t *testing.T) {
	g := ringGraph(t)
	p := New(g, NormColumn, WithAlpha(0))

	seeds := graph.NewModule("seeds", []string{"1", "2", "ghost"})
	weights := map[string]float64{"1": 3.0}
	result, err := p.Propagate(context.Background(), seeds, weights)
	require.NoError(t, err)

	// Weighted seed vector normalized to sum 1: 3/(3+1) and 1/(3+1).
	assert.InDelta(t, 0.75, result.Score("1"), 1e-12)
	assert.InDelta(t, 0.25, result.Score("2"), 1e-12)
	assert.Zero(t, result.Score("ghost"))
}

func TestEmptySeedModuleRejected(t *testing.T) {
	g := ringGraph(t)
	p := New(g, NormColumn)
	_, err := p.Propagate(context.Background(), graph.NewModule("empty", nil), nil)
	require.ErrorIs(t, err, scorerr.ErrEmptyModule)
}

func TestPropagateAll(t *testing.T) {
	g := ringGraph(t)
	p := New(g, NormColumn)

	modules := []*graph.Module{
		graph.NewModule("left", []string{"1", "2"}),
		graph.NewModule("right", []string{"4", "5"}),
	}
	results, err := p.PropagateAll(context.Background(), modules)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results["left"].Converged)
	assert.True(t, results["right"].Converged)

	// Runs are independent: left's hot zone is right's cold zone.
	assert.Greater(t, results["left"].Score("1"), results["left"].Score("4"))
	assert.Greater(t, results["right"].Score("4"), results["right"].Score("1"))
}

func TestTopKOrdering(t *testing.T) {
	g := ringGraph(t)
	p := New(g, NormColumn, WithAlpha(0.5))

	result, err := p.Propagate(context.Background(), graph.NewModule("seeds", []string{"3"}), nil)
	require.NoError(t, err)

	top := result.TopK(3)
	require.Len(t, top, 3)
	assert.Equal(t, "3", top[0].Node)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
	}
}

func TestJaccardAndOverlap(t *testing.T) {
	a := graph.NewModule("a", []string{"g1", "g2", "g3"})
	b := graph.NewModule("b", []string{"g2", "g3", "g4", "g5"})
	empty := graph.NewModule("empty", nil)

	assert.InDelta(t, 2.0/5.0, Jaccard(a, b), 1e-12)
	assert.InDelta(t, 2.0/3.0, OverlapCoefficient(a, b), 1e-12)
	assert.Equal(t, 1.0, Jaccard(empty, empty))
	assert.Zero(t, OverlapCoefficient(a, empty))
}

func TestSimilarityMatrix(t *testing.T) {
	modules := []*graph.Module{
		graph.NewModule("a", []string{"g1", "g2"}),
		graph.NewModule("b", []string{"g2", "g3"}),
		graph.NewModule("c", []string{"g9"}),
	}
	matrix, err := SimilarityMatrix(modules, MethodJaccard)
	require.NoError(t, err)
	require.Len(t, matrix, 3)
	for i := range matrix {
		assert.Equal(t, 1.0, matrix[i][i])
		for j := range matrix {
			assert.Equal(t, matrix[i][j], matrix[j][i])
		}
	}
	assert.InDelta(t, 1.0/3.0, matrix[0][1], 1e-12)
	assert.Zero(t, matrix[0][2])

	_, err = SimilarityMatrix(modules, SimilarityMethod(99))
	require.Error(t, err)
}
