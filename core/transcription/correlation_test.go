package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adalundhe/synet/core/scorerr"
)

func TestReversalDistinguishesReversingDrug(t *testing.T) {
	disease := Signature{"G1": 2.0, "G2": 1.5, "G3": -1.0}

	// Drug A reverses the disease: its up gene is down in the disease
	// and vice versa. Drug B mirrors the disease.
	drugA := DrugSignature{Up: []string{"G3"}, Down: []string{"G1", "G2"}}
	drugB := DrugSignature{Up: []string{"G1", "G2"}, Down: []string{"G3"}}

	cqa, flagsA := Reversal(disease, drugA)
	cqb, flagsB := Reversal(disease, drugB)

	assert.Zero(t, flagsA)
	assert.Zero(t, flagsB)
	assert.Greater(t, cqa, 0.0)
	assert.Less(t, cqb, 0.0)
	assert.InDelta(t, -cqb, cqa, 1e-12)
}

func TestCQABIsPairMean(t *testing.T) {
	disease := Signature{"G1": 2.0, "G2": 1.5, "G3": -1.0, "G4": 0.5}
	drugA := DrugSignature{Up: []string{"G3"}, Down: []string{"G1", "G2"}}
	drugB := DrugSignature{Up: []string{"G4"}, Down: []string{"G1", "G3"}}

	result := CQAB(disease, drugA, drugB)
	assert.InDelta(t, (result.CQA+result.CQB)/2, result.CQAB, 1e-12)
	assert.Zero(t, result.Flags)
}

func TestMissingOverlapYieldsNeutralFlaggedScore(t *testing.T) {
	disease := Signature{"G1": 2.0, "G2": -1.0}
	drug := DrugSignature{Up: []string{"G1"}, Down: []string{"G2"}}

	// Only two shared genes: below MinOverlap.
	score, flags := Reversal(disease, drug)
	assert.Zero(t, score)
	assert.True(t, flags.Has(scorerr.FlagMissingSignatureOverlap))

	// No shared genes at all behaves the same.
	score, flags = Reversal(disease, DrugSignature{Up: []string{"X"}})
	assert.Zero(t, score)
	assert.True(t, flags.Has(scorerr.FlagMissingSignatureOverlap))
}

func TestSpearmanIsRankBased(t *testing.T) {
	// Monotone but nonlinear relation: rank correlation is exactly 1.
	a := Signature{"g1": 1, "g2": 2, "g3": 3, "g4": 4}
	b := Signature{"g1": 1, "g2": 10, "g3": 100, "g4": 1000}
	corr, shared := Spearman(a, b)
	assert.Equal(t, 4, shared)
	assert.InDelta(t, 1.0, corr, 1e-12)

	// Reversed ranks give exactly -1.
	c := Signature{"g1": 4, "g2": 3, "g3": 2, "g4": 1}
	corr, _ = Spearman(a, c)
	assert.InDelta(t, -1.0, corr, 1e-12)
}

func TestSpearmanConstantSignatureIsNeutral(t *testing.T) {
	a := Signature{"g1": 1, "g2": 2, "g3": 3}
	flat := Signature{"g1": 7, "g2": 7, "g3": 7}
	corr, shared := Spearman(a, flat)
	assert.Equal(t, 3, shared)
	assert.Zero(t, corr)
}

func TestRanksAverageTies(t *testing.T) {
	ranked := ranks([]float64{10, 20, 20, 30})
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranked)
}

func TestSignedSignature(t *testing.T) {
	drug := DrugSignature{Up: []string{"u1", "u2"}, Down: []string{"d1"}}
	sig := drug.Signed()
	assert.Equal(t, 1.0, sig["u1"])
	assert.Equal(t, 1.0, sig["u2"])
	assert.Equal(t, -1.0, sig["d1"])
	assert.Equal(t, []string{"d1", "u1", "u2"}, drug.Genes())
}

func TestAggregateReplicatesTakesMedian(t *testing.T) {
	profiles := []Signature{
		{"G1": 1.0, "G2": -2.0, "G3": 5.0},
		{"G1": 3.0, "G2": 0.0, "G3": 1.0},
		{"G1": 2.0, "G3": 2.0},
		{"G3": 4.0},
	}
	agg := AggregateReplicates(profiles)
	// Odd count takes the middle element.
	assert.Equal(t, 2.0, agg["G1"])
	// Even counts average the middle pair.
	assert.Equal(t, -1.0, agg["G2"])
	assert.Equal(t, 3.0, agg["G3"])
}
