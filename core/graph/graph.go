// Package graph implements the undirected, unweighted interaction graph
// underlying all distance and propagation work. Nodes are string
// identifiers mapped to dense int indices; adjacency is stored in a
// compressed flat layout so BFS and sparse matvec walk contiguous memory.
package graph

import (
	"fmt"
	"sort"

	"github.com/adalundhe/synet/core/scorerr"
)

// Edge is one undirected interaction between two node identifiers.
type Edge struct {
	A string
	B string
}

// Graph is an immutable undirected, unweighted graph. Parallel edges
// are deduplicated and self-loops dropped at construction.
type Graph struct {
	names  []string
	index  map[string]int32
	rowPtr []int32
	adj    []int32
	edges  int
}

// New builds a graph from an edge list. Self-loops are dropped and
// parallel edges collapsed. Returns scorerr.ErrInvalidGraph when the
// input yields zero nodes or zero edges.
func New(edges []Edge) (*Graph, error) {
	nameSet := make(map[string]struct{}, len(edges)*2)
	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		nameSet[e.A] = struct{}{}
		nameSet[e.B] = struct{}{}
	}
	if len(nameSet) == 0 {
		return nil, fmt.Errorf("%w: no nodes", scorerr.ErrInvalidGraph)
	}

	// Sorted names give a deterministic index assignment.
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	index := make(map[string]int32, len(names))
	for i, name := range names {
		index[name] = int32(i)
	}

	type pair struct{ u, v int32 }
	seen := make(map[pair]struct{}, len(edges))
	adjLists := make([][]int32, len(names))
	edgeCount := 0
	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		u, v := index[e.A], index[e.B]
		if u > v {
			u, v = v, u
		}
		if _, dup := seen[pair{u, v}]; dup {
			continue
		}
		seen[pair{u, v}] = struct{}{}
		adjLists[u] = append(adjLists[u], v)
		adjLists[v] = append(adjLists[v], u)
		edgeCount++
	}
	if edgeCount == 0 {
		return nil, fmt.Errorf("%w: no edges", scorerr.ErrInvalidGraph)
	}

	rowPtr := make([]int32, len(names)+1)
	adj := make([]int32, 0, 2*edgeCount)
	for i, list := range adjLists {
		sort.Slice(list, func(a, b int) bool { return list[a] < list[b] })
		adj = append(adj, list...)
		rowPtr[i+1] = int32(len(adj))
	}

	return &Graph{
		names:  names,
		index:  index,
		rowPtr: rowPtr,
		adj:    adj,
		edges:  edgeCount,
	}, nil
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.names) }

// NumEdges returns the deduplicated undirected edge count.
func (g *Graph) NumEdges() int { return g.edges }

// Has reports whether the identifier exists in the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Index returns the dense index of a node identifier.
func (g *Graph) Index(name string) (int32, bool) {
	i, ok := g.index[name]
	return i, ok
}

// Name returns the identifier at a dense index.
func (g *Graph) Name(i int32) string { return g.names[i] }

// Names returns the node identifiers in index order. The returned slice
// is shared; callers must not mutate it.
func (g *Graph) Names() []string { return g.names }

// Degree returns the degree of the node at index i.
func (g *Graph) Degree(i int32) int {
	return int(g.rowPtr[i+1] - g.rowPtr[i])
}

// Neighbors returns the adjacency row for node i, sorted ascending.
// The returned slice aliases internal storage; callers must not mutate it.
func (g *Graph) Neighbors(i int32) []int32 {
	return g.adj[g.rowPtr[i]:g.rowPtr[i+1]]
}

// Stats summarizes graph shape for logging and sanity checks.
type Stats struct {
	Nodes      int
	Edges      int
	MeanDegree float64
	Components int
}

// Stats computes basic shape statistics, including the connected
// component count via a full BFS sweep.
func (g *Graph) Stats() Stats {
	n := g.NumNodes()
	visited := make([]bool, n)
	queue := make([]int32, 0, n)
	components := 0
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		components++
		visited[start] = true
		queue = append(queue[:0], int32(start))
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range g.Neighbors(u) {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}
	}
	return Stats{
		Nodes:      n,
		Edges:      g.edges,
		MeanDegree: float64(2*g.edges) / float64(n),
		Components: components,
	}
}
