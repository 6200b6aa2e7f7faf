package graph

import "sort"

// Module is a named, immutable set of node identifiers: a disease's
// susceptibility genes or a drug's target/signature genes. Members need
// not all exist in a graph; missing members are treated as unreachable
// by the distance engine.
type Module struct {
	name    string
	members map[string]struct{}
	sorted  []string
}

// NewModule builds a module from a member list. Duplicates collapse.
func NewModule(name string, members []string) *Module {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	sorted := make([]string, 0, len(set))
	for m := range set {
		sorted = append(sorted, m)
	}
	sort.Strings(sorted)
	return &Module{name: name, members: set, sorted: sorted}
}

// Name returns the module's name.
func (m *Module) Name() string { return m.name }

// Len returns the member count.
func (m *Module) Len() int { return len(m.members) }

// Has reports membership.
func (m *Module) Has(id string) bool {
	_, ok := m.members[id]
	return ok
}

// Members returns the members sorted ascending. The returned slice is
// shared; callers must not mutate it.
func (m *Module) Members() []string { return m.sorted }

// Indices resolves members against a graph, returning the dense indices
// of members present in it. Order follows the sorted member list.
func (m *Module) Indices(g *Graph) []int32 {
	idx := make([]int32, 0, len(m.sorted))
	for _, name := range m.sorted {
		if i, ok := g.Index(name); ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// Union returns a new module holding the members of both inputs.
func Union(name string, a, b *Module) *Module {
	merged := make([]string, 0, a.Len()+b.Len())
	merged = append(merged, a.sorted...)
	merged = append(merged, b.sorted...)
	return NewModule(name, merged)
}
