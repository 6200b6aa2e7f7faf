package propagation

import (
	"fmt"

	"github.com/adalundhe/synet/core/graph"
)

// SimilarityMethod selects the set-overlap metric used for module
// similarity matrices.
type SimilarityMethod int

const (
	// MethodJaccard is |A n B| / |A u B|.
	MethodJaccard SimilarityMethod = iota

	// MethodOverlap is |A n B| / min(|A|, |B|).
	MethodOverlap
)

// Jaccard returns the Jaccard similarity of two modules.
func Jaccard(a, b *graph.Module) float64 {
	if a.Len() == 0 && b.Len() == 0 {
		return 1.0
	}
	inter := intersection(a, b)
	union := a.Len() + b.Len() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// OverlapCoefficient returns |A n B| / min(|A|, |B|).
func OverlapCoefficient(a, b *graph.Module) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}
	minSize := a.Len()
	if b.Len() < minSize {
		minSize = b.Len()
	}
	return float64(intersection(a, b)) / float64(minSize)
}

// SimilarityMatrix computes the pairwise module similarity matrix,
// usable as a propagation prior. Diagonal entries are 1.
func SimilarityMatrix(modules []*graph.Module, method SimilarityMethod) ([][]float64, error) {
	sim := func(a, b *graph.Module) float64 {
		switch method {
		case MethodJaccard:
			return Jaccard(a, b)
		case MethodOverlap:
			return OverlapCoefficient(a, b)
		}
		return 0
	}
	switch method {
	case MethodJaccard, MethodOverlap:
	default:
		return nil, fmt.Errorf("unknown similarity method %d", method)
	}

	n := len(modules)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := sim(modules[i], modules[j])
			matrix[i][j] = s
			matrix[j][i] = s
		}
	}
	return matrix, nil
}

func intersection(a, b *graph.Module) int {
	small, large := a, b
	if b.Len() < a.Len() {
		small, large = b, a
	}
	count := 0
	for _, m := range small.Members() {
		if large.Has(m) {
			count++
		}
	}
	return count
}
