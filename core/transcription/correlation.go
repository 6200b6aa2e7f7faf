package transcription

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/adalundhe/synet/core/scorerr"
)

// MinOverlap is the minimum shared-gene count for a correlation to be
// meaningful. Below it the neutral score 0 is substituted and flagged.
const MinOverlap = 3

// Spearman computes the Spearman rank correlation between two
// signatures restricted to their shared genes. Returns the coefficient
// and the shared-gene count; fewer than MinOverlap shared genes, or a
// degenerate (constant) signature, yields 0.
func Spearman(a, b Signature) (float64, int) {
	common := make([]string, 0, len(a))
	for gene := range a {
		if _, ok := b[gene]; ok {
			common = append(common, gene)
		}
	}
	if len(common) < MinOverlap {
		return 0, len(common)
	}
	sort.Strings(common)

	va := make([]float64, len(common))
	vb := make([]float64, len(common))
	for i, gene := range common {
		va[i] = a[gene]
		vb[i] = b[gene]
	}

	corr := stat.Correlation(ranks(va), ranks(vb), nil)
	if math.IsNaN(corr) {
		corr = 0
	}
	return corr, len(common)
}

// ranks returns the rank transform of vals with average ranks on ties,
// the standard Spearman tie treatment.
func ranks(vals []float64) []float64 {
	n := len(vals)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return vals[order[i]] < vals[order[j]] })

	ranked := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && vals[order[j+1]] == vals[order[i]] {
			j++
		}
		// Average rank across the tie run [i, j].
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranked[order[k]] = avg
		}
		i = j + 1
	}
	return ranked
}

// Reversal scores how strongly a drug signature reverses the disease
// signature: the negated Spearman correlation of the disease fold
// changes against the drug's signed signature. Positive values mean
// the drug pushes disease-dysregulated genes back the other way.
func Reversal(disease Signature, drug DrugSignature) (float64, scorerr.Flag) {
	corr, shared := Spearman(disease, drug.Signed())
	if shared < MinOverlap {
		return 0, scorerr.FlagMissingSignatureOverlap
	}
	return -corr, 0
}

// PairResult is the transcriptional score of a drug pair.
type PairResult struct {
	CQAB  float64
	CQA   float64
	CQB   float64
	Flags scorerr.Flag
}

// CQAB computes the pair score C_QAB = (C_QA + C_QB)/2, where each
// per-drug term is the reversal score against the disease signature.
func CQAB(disease Signature, drugA, drugB DrugSignature) PairResult {
	cqa, flagsA := Reversal(disease, drugA)
	cqb, flagsB := Reversal(disease, drugB)
	return PairResult{
		CQAB:  (cqa + cqb) / 2,
		CQA:   cqa,
		CQB:   cqb,
		Flags: flagsA | flagsB,
	}
}
