// Package scoring combines the topological, proximity and
// transcriptional score streams into one ranked prediction per
// (disease, drug pair).
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adalundhe/synet/core/config"
	"github.com/adalundhe/synet/core/distance"
	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/nullmodel"
	"github.com/adalundhe/synet/core/propagation"
	"github.com/adalundhe/synet/core/scorerr"
	"github.com/adalundhe/synet/core/topology"
	"github.com/adalundhe/synet/core/transcription"
)

// Record is the terminal output of the engine for one
// (disease, drug A, drug B) triple. Immutable once written.
type Record struct {
	RunID   string
	Disease string
	DrugA   string
	DrugB   string

	TQAB  float64
	PQAB  float64
	CQAB  float64
	Score float64

	Class topology.Class
	PQA   float64
	PQB   float64
	CQA   float64
	CQB   float64

	Flags scorerr.Flag

	// Err is set when this unit failed; component scores are then
	// meaningless. Other units in the batch are unaffected.
	Err string
}

// Predictor orchestrates the full scoring pipeline over one graph.
type Predictor struct {
	g          *graph.Graph
	cfg        *config.Config
	engine     *distance.Engine
	nulls      *nullmodel.Generator
	classifier *topology.Classifier
	propagator *propagation.Propagator
	behaviors  map[scorerr.Severity]scorerr.Behavior
	logger     *slog.Logger
	workers    int

	diseaseModules    map[string]*graph.Module
	drugModules       map[string]*graph.Module
	diseaseSignatures map[string]transcription.Signature
	drugSignatures    map[string]transcription.DrugSignature
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithLogger injects a logger shared by all pipeline stages.
func WithLogger(l *slog.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWorkers bounds the per-pair fan-out.
func WithWorkers(n int) Option {
	return func(p *Predictor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPredictor wires the pipeline stages from one validated config.
func NewPredictor(g *graph.Graph, cfg *config.Config, opts ...Option) (*Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Predictor{
		g:         g,
		cfg:       cfg,
		behaviors: scorerr.DefaultBehaviors(),
		logger:    slog.Default(),
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.engine = distance.New(g,
		distance.WithSentinel(cfg.Scoring.SentinelDistance),
		distance.WithLogger(p.logger),
	)
	nulls, err := nullmodel.NewGenerator(g, p.engine, cfg.Scoring.DegreeBins,
		nullmodel.WithTrials(cfg.Scoring.NRandomizations),
		nullmodel.WithSeed(cfg.RandomSeed),
		nullmodel.WithLogger(p.logger),
	)
	if err != nil {
		return nil, err
	}
	p.nulls = nulls
	p.classifier = topology.New(p.engine,
		topology.WithCloseness(cfg.Scoring.ClosenessThreshold),
		topology.WithLogger(p.logger),
	)

	norm, err := propagation.ParseNormalization(cfg.Propagation.Normalization)
	if err != nil {
		return nil, err
	}
	p.propagator = propagation.New(g, norm,
		propagation.WithAlpha(cfg.Propagation.Alpha),
		propagation.WithTolerance(cfg.Propagation.Tolerance),
		propagation.WithMaxIterations(cfg.Propagation.MaxIterations),
		propagation.WithLogger(p.logger),
	)
	return p, nil
}

// SetDiseaseModules registers disease modules by name.
func (p *Predictor) SetDiseaseModules(modules map[string]*graph.Module) {
	p.diseaseModules = modules
	p.logger.Info("disease modules loaded", "count", len(modules))
}

// SetDrugModules registers drug modules by drug name.
func (p *Predictor) SetDrugModules(modules map[string]*graph.Module) {
	p.drugModules = modules
	p.logger.Info("drug modules loaded", "count", len(modules))
}

// SetDiseaseSignatures registers disease expression signatures.
func (p *Predictor) SetDiseaseSignatures(sigs map[string]transcription.Signature) {
	p.diseaseSignatures = sigs
}

// SetDrugSignatures registers drug expression signatures.
func (p *Predictor) SetDrugSignatures(sigs map[string]transcription.DrugSignature) {
	p.drugSignatures = sigs
}

// drugProximity is one drug's disease-proximity term, oriented so that
// higher means closer than expected by chance.
type drugProximity struct {
	p     float64
	flags scorerr.Flag
	err   error
}

// PredictAll scores every unordered drug pair against one disease and
// returns the records ranked by descending score. Per-unit failures
// (an empty drug module, say) land in their records' Err field; the
// rest of the batch completes.
func (p *Predictor) PredictAll(ctx context.Context, disease string) ([]Record, error) {
	diseaseModule, ok := p.diseaseModules[disease]
	if !ok {
		return nil, fmt.Errorf("unknown disease %q", disease)
	}
	if len(p.drugModules) < 2 {
		return nil, fmt.Errorf("need at least two drug modules, have %d", len(p.drugModules))
	}

	runID := uuid.NewString()
	drugs := make([]string, 0, len(p.drugModules))
	for name := range p.drugModules {
		drugs = append(drugs, name)
	}
	sort.Strings(drugs)

	p.logger.Info("prediction run started",
		"run_id", runID, "disease", disease,
		"drugs", len(drugs), "backend", p.cfg.Proximity.Backend)

	proximities, err := p.drugProximities(ctx, diseaseModule, drugs)
	if err != nil {
		return nil, err
	}

	type pair struct{ a, b string }
	pairs := make([]pair, 0, len(drugs)*(len(drugs)-1)/2)
	for i, a := range drugs {
		for _, b := range drugs[i+1:] {
			pairs = append(pairs, pair{a, b})
		}
	}

	records := make([]Record, len(pairs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)
	for i, pr := range pairs {
		i, pr := i, pr
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := p.scorePair(ctx, runID, disease, diseaseModule, pr.a, pr.b, proximities)
			records[i] = rec
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	Rank(records)
	p.logger.Info("prediction run finished", "run_id", runID, "pairs", len(records))
	return records, nil
}

// captureUnit applies the severity policy to a failure: fatal errors
// abort the batch, everything else lands on the record's Err field and
// the rest of the batch proceeds.
func (p *Predictor) captureUnit(rec *Record, err error) error {
	if p.behaviors[scorerr.Classify(err)].AbortRun {
		return err
	}
	rec.Err = (&scorerr.UnitError{
		Disease: rec.Disease,
		DrugA:   rec.DrugA,
		DrugB:   rec.DrugB,
		Err:     err,
	}).Error()
	return nil
}

// scorePair assembles one record. Failures are routed by severity.
func (p *Predictor) scorePair(
	ctx context.Context,
	runID, disease string,
	diseaseModule *graph.Module,
	drugA, drugB string,
	proximities map[string]drugProximity,
) (Record, error) {
	rec := Record{
		RunID:   runID,
		Disease: disease,
		DrugA:   drugA,
		DrugB:   drugB,
	}

	proxA, proxB := proximities[drugA], proximities[drugB]
	if proxA.err != nil || proxB.err != nil {
		err := proxA.err
		if err == nil {
			err = proxB.err
		}
		return rec, p.captureUnit(&rec, err)
	}

	topo, err := p.classifier.Classify(ctx, diseaseModule, p.drugModules[drugA], p.drugModules[drugB])
	if err != nil {
		return rec, p.captureUnit(&rec, err)
	}
	rec.TQAB = topo.Score
	rec.Class = topo.Class

	rec.PQA = proxA.p
	rec.PQB = proxB.p
	rec.PQAB = (rec.PQA + rec.PQB) / 2
	rec.Flags |= proxA.flags | proxB.flags

	if diseaseSig, haveDisease := p.diseaseSignatures[disease]; haveDisease {
		sigA, okA := p.drugSignatures[drugA]
		sigB, okB := p.drugSignatures[drugB]
		if okA && okB {
			corr := transcription.CQAB(diseaseSig, sigA, sigB)
			rec.CQAB = corr.CQAB
			rec.CQA = corr.CQA
			rec.CQB = corr.CQB
			rec.Flags |= corr.Flags
		}
	}

	rec.Score = Combine(rec.TQAB, rec.PQA, rec.PQB, rec.CQA, rec.CQB)
	return rec, nil
}

// Combine applies the aggregation rule
//
//	Score = TQAB + (P_QA+P_QB)/2 + (C_QA+C_QB)/2
func Combine(tqab, pqa, pqb, cqa, cqb float64) float64 {
	return tqab + (pqa+pqb)/2 + (cqa+cqb)/2
}

// drugProximities computes the per-drug disease proximity terms once;
// every pair containing the drug reuses them. Drugs are independent so
// the fan-out is unbounded within the worker limit.
func (p *Predictor) drugProximities(ctx context.Context, diseaseModule *graph.Module, drugs []string) (map[string]drugProximity, error) {
	results := make([]drugProximity, len(drugs))

	switch p.cfg.Proximity.Backend {
	case config.BackendZScore:
		eg, ctx := errgroup.WithContext(ctx)
		eg.SetLimit(p.workers)
		for i, name := range drugs {
			i, name := i, name
			eg.Go(func() error {
				prox, err := p.nulls.NormalizedProximity(ctx, diseaseModule, p.drugModules[name])
				if err != nil {
					if ctx.Err() != nil || p.behaviors[scorerr.Classify(err)].AbortRun {
						return err
					}
					results[i] = drugProximity{err: err}
					return nil
				}
				// Negate: a distance below the null mean (negative z)
				// means closer than chance, which should score high.
				results[i] = drugProximity{p: -prox.Z, flags: prox.Flags}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

	case config.BackendPropagation:
		diffusion, err := p.propagator.Propagate(ctx, diseaseModule, nil)
		if err != nil {
			return nil, err
		}
		scale := float64(p.g.NumNodes())
		for i, name := range drugs {
			module := p.drugModules[name]
			if module.Len() == 0 {
				results[i] = drugProximity{err: &scorerr.UnitError{Module: name, Err: scorerr.ErrEmptyModule}}
				continue
			}
			// Mean disease relevance over the drug's targets, scaled
			// so a uniform diffusion scores 1.
			var total float64
			for _, member := range module.Members() {
				total += diffusion.Score(member)
			}
			results[i] = drugProximity{
				p:     scale * total / float64(module.Len()),
				flags: diffusion.Flags,
			}
		}

	default:
		return nil, fmt.Errorf("unknown proximity backend %q", p.cfg.Proximity.Backend)
	}

	byName := make(map[string]drugProximity, len(drugs))
	for i, name := range drugs {
		byName[name] = results[i]
	}
	return byName, nil
}

// Rank sorts records by descending score, failed units last, ties
// broken by drug pair for determinism.
func Rank(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		ri, rj := records[i], records[j]
		if (ri.Err == "") != (rj.Err == "") {
			return ri.Err == ""
		}
		if ri.Score != rj.Score {
			return ri.Score > rj.Score
		}
		if ri.DrugA != rj.DrugA {
			return ri.DrugA < rj.DrugA
		}
		return ri.DrugB < rj.DrugB
	})
}
