package propagation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/viterin/vek"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/scorerr"
)

// Defaults for the PRINCE iteration.
const (
	DefaultAlpha         = 0.5
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 1000
)

// Propagator runs PRINCE propagation over one graph. The normalized
// operator is built once; Propagate may then be called concurrently,
// each run owning its own state vector.
type Propagator struct {
	g       *graph.Graph
	w       *csrMatrix
	alpha   float64
	tol     float64
	maxIter int
	logger  *slog.Logger
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithAlpha sets the restart probability. Alpha < 1 guarantees
// convergence; alpha = 0 degenerates to the seed vector itself.
func WithAlpha(a float64) Option {
	return func(p *Propagator) { p.alpha = a }
}

// WithTolerance sets the L2 convergence threshold.
func WithTolerance(tol float64) Option {
	return func(p *Propagator) {
		if tol > 0 {
			p.tol = tol
		}
	}
}

// WithMaxIterations caps the iteration count.
func WithMaxIterations(n int) Option {
	return func(p *Propagator) {
		if n > 0 {
			p.maxIter = n
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Propagator) {
		if l != nil {
			p.logger = l
		}
	}
}

// New builds a propagator with the given operator normalization.
func New(g *graph.Graph, norm Normalization, opts ...Option) *Propagator {
	p := &Propagator{
		g:       g,
		alpha:   DefaultAlpha,
		tol:     DefaultTolerance,
		maxIter: DefaultMaxIterations,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.w = newOperator(g, norm)
	p.logger.Debug("propagation operator built",
		"nodes", g.NumNodes(), "normalization", norm.String(), "alpha", p.alpha)
	return p
}

// Result is the fixed point of one propagation run: a smoothed
// relevance score per graph node.
type Result struct {
	g          *graph.Graph
	Scores     []float64
	Iterations int
	Converged  bool
	Flags      scorerr.Flag
}

// Score returns the propagated relevance of a node, or 0 when the node
// is absent from the graph.
func (r *Result) Score(name string) float64 {
	if i, ok := r.g.Index(name); ok {
		return r.Scores[i]
	}
	return 0
}

// NodeScore pairs a node identifier with its propagated score.
type NodeScore struct {
	Node  string
	Score float64
}

// TopK returns the k highest-scoring nodes, descending, ties broken by
// node name for determinism.
func (r *Result) TopK(k int) []NodeScore {
	all := make([]NodeScore, len(r.Scores))
	for i, s := range r.Scores {
		all[i] = NodeScore{Node: r.g.Name(int32(i)), Score: s}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Node < all[j].Node
	})
	if k < len(all) {
		all = all[:k]
	}
	return all
}

// Propagate iterates F(t+1) = alpha*W*F(t) + (1-alpha)*F(0) from the
// seed module until the L2 norm of successive iterates falls below the
// tolerance. Hitting the iteration cap is not an error: the last
// iterate is returned carrying FlagDidNotConverge, since with alpha < 1
// the iteration converges mathematically and a capped run signals a
// configuration problem, not a crash.
func (p *Propagator) Propagate(ctx context.Context, seeds *graph.Module, weights map[string]float64) (*Result, error) {
	if seeds.Len() == 0 {
		return nil, &scorerr.UnitError{Module: seeds.Name(), Err: scorerr.ErrEmptyModule}
	}
	f0 := p.seedVector(seeds, weights)

	n := p.g.NumNodes()
	f := append([]float64(nil), f0...)
	fNext := make([]float64, n)
	wf := make([]float64, n)
	delta := make([]float64, n)

	// restart = (1-alpha)*F0 is constant across iterations.
	restart := make([]float64, n)
	floats.ScaleTo(restart, 1-p.alpha, f0)

	result := &Result{g: p.g}
	for iter := 1; iter <= p.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.w.mulVec(wf, f)
		floats.AddScaledTo(fNext, restart, p.alpha, wf)

		floats.SubTo(delta, fNext, f)
		diff := math.Sqrt(vek.Dot(delta, delta))
		f, fNext = fNext, f

		if diff < p.tol {
			result.Scores = f
			result.Iterations = iter
			result.Converged = true
			p.logger.Debug("propagation converged",
				"module", seeds.Name(), "iterations", iter, "diff", diff)
			return result, nil
		}
	}

	result.Scores = f
	result.Iterations = p.maxIter
	result.Flags |= scorerr.FlagDidNotConverge
	p.logger.Warn("propagation hit iteration cap",
		"module", seeds.Name(), "max_iterations", p.maxIter)
	return result, nil
}

// PropagateAll runs independent propagations for several seed modules.
func (p *Propagator) PropagateAll(ctx context.Context, modules []*graph.Module) (map[string]*Result, error) {
	results := make([]*Result, len(modules))
	eg, ctx := errgroup.WithContext(ctx)
	for i, m := range modules {
		i, m := i, m
		eg.Go(func() error {
			r, err := p.Propagate(ctx, m, nil)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	byName := make(map[string]*Result, len(modules))
	for i, m := range modules {
		byName[m.Name()] = results[i]
	}
	return byName, nil
}

// seedVector builds F(0): an indicator of module membership, optionally
// weighted, normalized to sum to 1. Members absent from the graph are
// skipped; an all-missing module yields the zero vector.
func (p *Propagator) seedVector(seeds *graph.Module, weights map[string]float64) []float64 {
	f0 := make([]float64, p.g.NumNodes())
	placed := 0
	for _, name := range seeds.Members() {
		i, ok := p.g.Index(name)
		if !ok {
			continue
		}
		w := 1.0
		if weights != nil {
			if custom, has := weights[name]; has {
				w = custom
			}
		}
		f0[i] = w
		placed++
	}
	if placed == 0 {
		p.logger.Warn("no seed nodes present in graph", "module", seeds.Name())
		return f0
	}
	if total := vek.Sum(f0); total > 0 {
		floats.Scale(1/total, f0)
	}
	return f0
}

// String implements fmt.Stringer for debugging.
func (p *Propagator) String() string {
	return fmt.Sprintf("Propagator(nodes=%d alpha=%g tol=%g max_iter=%d)",
		p.g.NumNodes(), p.alpha, p.tol, p.maxIter)
}
