// Package distance implements shortest-path distances between modules
// on the interaction graph. Node-to-node distances come from one BFS
// per source node, capturing the full distance row in a single pass;
// rows are cached so repeated module comparisons stay cheap.
package distance

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/scorerr"
)

// DefaultSentinel replaces infinite shortest-path distances. A fixed
// finite value keeps downstream mean/variance arithmetic well-defined
// across disconnected components.
const DefaultSentinel = 1000.0

const unreachable = int32(-1)

// Engine computes module-to-module distances over one graph. It is
// safe for concurrent use; the graph and cached rows are read-only
// after construction.
type Engine struct {
	g        *graph.Graph
	sentinel float64
	workers  int
	logger   *slog.Logger
	rows     *lru.Cache[int32, []int32]
}

// Option configures an Engine.
type Option func(*Engine)

// WithSentinel overrides the disconnected-distance sentinel.
func WithSentinel(v float64) Option {
	return func(e *Engine) { e.sentinel = v }
}

// WithWorkers bounds the BFS fan-out.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithCacheSize sets the number of BFS rows kept in memory.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.rows, _ = lru.New[int32, []int32](n)
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New builds a distance engine for the given graph.
func New(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		g:        g,
		sentinel: DefaultSentinel,
		workers:  runtime.NumCPU(),
		logger:   slog.Default(),
	}
	e.rows, _ = lru.New[int32, []int32](4096)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sentinel returns the configured disconnected-distance value.
func (e *Engine) Sentinel() float64 { return e.sentinel }

// row returns the BFS distance row for a source node, computing and
// caching it on first use. Unreachable entries hold -1.
func (e *Engine) row(src int32) []int32 {
	if cached, ok := e.rows.Get(src); ok {
		return cached
	}
	n := e.g.NumNodes()
	dist := make([]int32, n)
	for i := range dist {
		dist[i] = unreachable
	}
	dist[src] = 0
	queue := make([]int32, 0, n)
	queue = append(queue, src)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range e.g.Neighbors(u) {
			if dist[v] == unreachable {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	e.rows.Add(src, dist)
	return dist
}

// minToTargets returns the hop count from src to the closest target, or
// the sentinel when no target is reachable.
func (e *Engine) minToTargets(src int32, targets []int32) float64 {
	row := e.row(src)
	best := e.sentinel
	for _, t := range targets {
		if d := row[t]; d != unreachable && float64(d) < best {
			best = float64(d)
		}
	}
	return best
}

// ModuleDistance computes the asymmetric module distance
//
//	d(S,T) = (1/|S|) * sum_{s in S} min_{t in T} dist(s,t)
//
// Source members absent from the graph contribute the sentinel, as do
// members with no path to any target. Note d(S,T) != d(T,S) in general.
func (e *Engine) ModuleDistance(ctx context.Context, source, target *graph.Module) (float64, error) {
	if source.Len() == 0 {
		return 0, &scorerr.UnitError{Module: source.Name(), Err: scorerr.ErrEmptyModule}
	}
	if target.Len() == 0 {
		return 0, &scorerr.UnitError{Module: target.Name(), Err: scorerr.ErrEmptyModule}
	}

	targets := target.Indices(e.g)
	members := source.Members()
	contrib := make([]float64, len(members))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)
	for i, name := range members {
		idx, inGraph := e.g.Index(name)
		if !inGraph {
			contrib[i] = e.sentinel
			continue
		}
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			contrib[i] = e.minToTargets(idx, targets)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	var total float64
	for _, c := range contrib {
		total += c
	}
	d := total / float64(source.Len())
	e.logger.Debug("module distance",
		"source", source.Name(), "target", target.Name(), "distance", d)
	return d, nil
}

// Bidirectional returns both d(A,B) and d(B,A); the two differ in
// general when module sizes or placements are asymmetric.
func (e *Engine) Bidirectional(ctx context.Context, a, b *graph.Module) (dAB, dBA float64, err error) {
	dAB, err = e.ModuleDistance(ctx, a, b)
	if err != nil {
		return 0, 0, err
	}
	dBA, err = e.ModuleDistance(ctx, b, a)
	if err != nil {
		return 0, 0, err
	}
	return dAB, dBA, nil
}

// Separation computes the symmetric network separation
//
//	s_AB = (d_AB + d_BA)/2 - (d_AA + d_BB)/2
//
// Positive values indicate topologically separated modules, negative
// values overlapping ones.
func (e *Engine) Separation(ctx context.Context, a, b *graph.Module) (float64, error) {
	dAB, dBA, err := e.Bidirectional(ctx, a, b)
	if err != nil {
		return 0, err
	}
	dAA, err := e.ModuleDistance(ctx, a, a)
	if err != nil {
		return 0, err
	}
	dBB, err := e.ModuleDistance(ctx, b, b)
	if err != nil {
		return 0, err
	}
	return (dAB+dBA)/2 - (dAA+dBB)/2, nil
}

// SelfDistance returns d(M,M). Zero whenever every member present in
// the graph is its own closest target, which holds by construction; a
// nonzero value only arises from members missing from the graph.
func (e *Engine) SelfDistance(ctx context.Context, m *graph.Module) (float64, error) {
	d, err := e.ModuleDistance(ctx, m, m)
	if err != nil {
		return 0, fmt.Errorf("self distance: %w", err)
	}
	return d, nil
}
