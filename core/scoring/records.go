package scoring

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV serializes records for the external evaluation layer.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "disease", "drug_a", "drug_b",
		"tqab", "pqab", "cqab", "score", "topology_class",
		"pqa", "pqb", "cqa", "cqb", "flags", "error",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.RunID, r.Disease, r.DrugA, r.DrugB,
			formatFloat(r.TQAB), formatFloat(r.PQAB),
			formatFloat(r.CQAB), formatFloat(r.Score),
			r.Class.String(),
			formatFloat(r.PQA), formatFloat(r.PQB),
			formatFloat(r.CQA), formatFloat(r.CQB),
			r.Flags.String(), r.Err,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
