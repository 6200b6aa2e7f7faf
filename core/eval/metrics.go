// Package eval measures a ranking of drug-pair predictions against a
// labeled set of known-synergistic pairs.
package eval

import (
	"sort"

	"gonum.org/v1/gonum/integrate"

	"github.com/adalundhe/synet/core/scoring"
)

// LabeledScore is one prediction with its ground-truth label.
type LabeledScore struct {
	Score    float64
	Positive bool
}

// Label joins records with a known-synergy pair set. Pair keys are
// order-insensitive. Failed records are skipped.
func Label(records []scoring.Record, positives map[[2]string]bool) []LabeledScore {
	labeled := make([]LabeledScore, 0, len(records))
	for _, r := range records {
		if r.Err != "" {
			continue
		}
		a, b := r.DrugA, r.DrugB
		if a > b {
			a, b = b, a
		}
		labeled = append(labeled, LabeledScore{
			Score:    r.Score,
			Positive: positives[[2]string{a, b}],
		})
	}
	return labeled
}

// AUROC computes the area under the ROC curve by trapezoid rule over
// the score-sorted ranking. Returns 0.5 when either class is empty.
func AUROC(items []LabeledScore) float64 {
	pos, neg := classCounts(items)
	if pos == 0 || neg == 0 {
		return 0.5
	}
	sorted := sortByScore(items)

	fpr := []float64{0}
	tpr := []float64{0}
	tp, fp := 0, 0
	for _, item := range sorted {
		if item.Positive {
			tp++
		} else {
			fp++
		}
		fpr = append(fpr, float64(fp)/float64(neg))
		tpr = append(tpr, float64(tp)/float64(pos))
	}
	return integrate.Trapezoidal(fpr, tpr)
}

// AUPR computes the area under the precision-recall curve. Returns the
// positive-class prevalence when there are no positives to rank.
func AUPR(items []LabeledScore) float64 {
	pos, neg := classCounts(items)
	if pos == 0 {
		return 0
	}
	if neg == 0 {
		return 1
	}
	sorted := sortByScore(items)

	recall := []float64{0}
	precision := []float64{1}
	tp := 0
	for i, item := range sorted {
		if item.Positive {
			tp++
		}
		recall = append(recall, float64(tp)/float64(pos))
		precision = append(precision, float64(tp)/float64(i+1))
	}
	return integrate.Trapezoidal(recall, precision)
}

func classCounts(items []LabeledScore) (pos, neg int) {
	for _, item := range items {
		if item.Positive {
			pos++
		} else {
			neg++
		}
	}
	return pos, neg
}

func sortByScore(items []LabeledScore) []LabeledScore {
	sorted := append([]LabeledScore(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
