// Package transcription computes the transcriptional correlation score
// between drug and disease expression signatures. The synergy signal
// looks for reversal: drugs whose signatures run opposite the disease's.
package transcription

import (
	"sort"
)

// Signature maps gene identifiers to fold changes.
type Signature map[string]float64

// DrugSignature is a drug's differential-expression signature as
// up- and down-regulated gene sets.
type DrugSignature struct {
	Up   []string
	Down []string
}

// Signed converts the up/down sets to a signed signature: +1 for
// up-regulated genes, -1 for down-regulated. A gene listed in both
// sets resolves to down.
func (d DrugSignature) Signed() Signature {
	sig := make(Signature, len(d.Up)+len(d.Down))
	for _, g := range d.Up {
		sig[g] = 1.0
	}
	for _, g := range d.Down {
		sig[g] = -1.0
	}
	return sig
}

// Genes returns the union of the up and down sets.
func (d DrugSignature) Genes() []string {
	seen := make(map[string]struct{}, len(d.Up)+len(d.Down))
	genes := make([]string, 0, len(d.Up)+len(d.Down))
	for _, g := range d.Up {
		if _, dup := seen[g]; !dup {
			seen[g] = struct{}{}
			genes = append(genes, g)
		}
	}
	for _, g := range d.Down {
		if _, dup := seen[g]; !dup {
			seen[g] = struct{}{}
			genes = append(genes, g)
		}
	}
	sort.Strings(genes)
	return genes
}

// AggregateReplicates collapses replicate expression profiles (for a
// drug: one per cell line) into a single signature by taking the
// per-gene median fold change across the profiles that measured it.
func AggregateReplicates(profiles []Signature) Signature {
	values := make(map[string][]float64)
	for _, p := range profiles {
		for gene, fc := range p {
			values[gene] = append(values[gene], fc)
		}
	}
	out := make(Signature, len(values))
	for gene, vals := range values {
		sort.Float64s(vals)
		out[gene] = median(vals)
	}
	return out
}

// median of an already-sorted sample; even counts average the middle pair.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
