// Package scorerr implements the scoring engine's error taxonomy: fatal
// structural errors, per-unit failures, and recoverable numerical
// degeneracies that are flagged on results instead of aborting a run.
package scorerr

import (
	"errors"
	"fmt"
	"strings"
)

// Severity classifies how a failure affects a batch run.
type Severity int

const (
	// SeverityFatal aborts the whole run.
	// Examples: empty graph, malformed configuration.
	SeverityFatal Severity = iota

	// SeverityUnitFatal aborts only the affected unit of work
	// (one module, one drug pair); other units proceed.
	SeverityUnitFatal

	// SeverityRecoverable is recovered in place with a flagged
	// sentinel value; the unit still produces a result.
	SeverityRecoverable
)

var severityNames = map[Severity]string{
	SeverityFatal:       "fatal",
	SeverityUnitFatal:   "unit_fatal",
	SeverityRecoverable: "recoverable",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// Behavior defines the handling policy for a severity class.
type Behavior struct {
	// AbortRun stops the entire batch.
	AbortRun bool

	// AbortUnit discards the affected unit but lets the batch continue.
	AbortUnit bool

	// FlagResult marks the result with a warning flag and continues.
	FlagResult bool
}

// DefaultBehaviors returns the handling policy for each severity class.
func DefaultBehaviors() map[Severity]Behavior {
	return map[Severity]Behavior{
		SeverityFatal:       {AbortRun: true},
		SeverityUnitFatal:   {AbortUnit: true},
		SeverityRecoverable: {FlagResult: true},
	}
}

// Sentinel errors for structural input problems.
var (
	// ErrInvalidGraph indicates a graph with zero nodes or zero edges.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrEmptyModule indicates a module with zero members.
	ErrEmptyModule = errors.New("empty module")
)

// Classify maps an error to its severity. Unrecognized errors are
// treated as unit-fatal so a batch never aborts on a single bad pair.
func Classify(err error) Severity {
	switch {
	case errors.Is(err, ErrInvalidGraph):
		return SeverityFatal
	case errors.Is(err, ErrEmptyModule):
		return SeverityUnitFatal
	default:
		return SeverityUnitFatal
	}
}

// UnitError wraps a failure with enough context to localize it within a
// batch: which disease, which drug pair, which module.
type UnitError struct {
	Disease string
	DrugA   string
	DrugB   string
	Module  string
	Err     error
}

func (e *UnitError) Error() string {
	parts := make([]string, 0, 4)
	if e.Disease != "" {
		parts = append(parts, "disease="+e.Disease)
	}
	if e.DrugA != "" {
		parts = append(parts, "drug_a="+e.DrugA)
	}
	if e.DrugB != "" {
		parts = append(parts, "drug_b="+e.DrugB)
	}
	if e.Module != "" {
		parts = append(parts, "module="+e.Module)
	}
	if len(parts) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, " "), e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Flag marks a recoverable numerical degeneracy on a result. Flags are
// a bitmask so a single result can carry more than one.
type Flag uint8

const (
	// FlagDegenerateNullModel marks a zero-variance null distribution;
	// the associated z-score is undefined, not a real zero.
	FlagDegenerateNullModel Flag = 1 << iota

	// FlagDidNotConverge marks a propagation run that hit its
	// iteration cap; the last iterate was returned.
	FlagDidNotConverge

	// FlagMissingSignatureOverlap marks a correlation computed over
	// too few shared genes; the neutral score 0 was substituted.
	FlagMissingSignatureOverlap
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagDegenerateNullModel, "degenerate_null_model"},
	{FlagDidNotConverge, "did_not_converge"},
	{FlagMissingSignatureOverlap, "missing_signature_overlap"},
}

// Has reports whether f carries the given flag.
func (f Flag) Has(other Flag) bool { return f&other != 0 }

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	names := make([]string, 0, len(flagNames))
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}
