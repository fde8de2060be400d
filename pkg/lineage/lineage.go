// Package lineage models the inheritance graph of a framework definition
// document: one node per entry, one edge from each entry to the parent it
// extends. The graph is built from the raw document, before resolution, so
// it can expose exactly the problems resolution would reject (unknown
// parents, cycles) as queryable structure.
package lineage

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/benchdef/pkg/errors"
	"github.com/matzehuels/benchdef/pkg/framework"
)

// Node is a single framework entry in the inheritance graph.
type Node struct {
	Name     string // entry name as written in the document
	Extends  string // parent name, empty for roots
	Version  string // declared version, empty when inherited or missing
	Template bool   // excluded from catalogs, still a valid parent

	// Depth is the number of ancestors above this node. Roots have depth 0.
	// Nodes on or below a cycle, or with a missing parent somewhere in the
	// chain, have depth -1.
	Depth int
}

// Graph is the inheritance structure of one document. Lookups fold case the
// same way catalog lookups do. The zero value is not usable; build one with
// [Build].
type Graph struct {
	nodes    map[string]*Node    // keyed by folded name
	names    []string            // original casing, sorted
	children map[string][]string // folded parent -> child names, sorted
	missing  map[string]string   // folded child -> missing parent name
	cycles   [][]string
}

// Build constructs the inheritance graph for a parsed document. Build never
// fails: structural problems are captured on the graph and reported by
// [Graph.Validate], [Graph.Cycles], and [Graph.MissingParents].
func Build(doc *framework.Document) *Graph {
	g := &Graph{
		nodes:    make(map[string]*Node, len(doc.Entries)),
		children: make(map[string][]string),
		missing:  make(map[string]string),
	}

	for _, name := range doc.EntryNames() {
		entry := doc.Entries[name]
		g.nodes[fold(name)] = &Node{
			Name:     entry.Name,
			Extends:  entry.Extends,
			Version:  entry.Version,
			Template: entry.IsTemplate(),
			Depth:    -1,
		}
		g.names = append(g.names, entry.Name)
	}

	for _, name := range g.names {
		node := g.nodes[fold(name)]
		if node.Extends == "" {
			continue
		}
		parent := fold(node.Extends)
		if _, ok := g.nodes[parent]; !ok {
			g.missing[fold(name)] = node.Extends
			continue
		}
		g.children[parent] = append(g.children[parent], name)
	}
	for parent := range g.children {
		slices.Sort(g.children[parent])
	}

	g.detectCycles()
	g.assignDepths()
	return g
}

// Node returns the entry with the given name, folding case.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[fold(name)]
	return n, ok
}

// Names returns all entry names in sorted order with original casing.
func (g *Graph) Names() []string { return slices.Clone(g.names) }

// Len returns the number of entries in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Parent returns the name of the entry this one extends, or false when the
// entry has no parent or does not exist. A missing parent still reports its
// declared name.
func (g *Graph) Parent(name string) (string, bool) {
	n, ok := g.nodes[fold(name)]
	if !ok || n.Extends == "" {
		return "", false
	}
	return n.Extends, true
}

// Children returns the names of entries that extend the given one, sorted.
func (g *Graph) Children(name string) []string {
	return slices.Clone(g.children[fold(name)])
}

// Roots returns entries that extend nothing, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.names {
		if g.nodes[fold(name)].Extends == "" {
			roots = append(roots, name)
		}
	}
	return roots
}

// Leaves returns entries nothing extends, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, name := range g.names {
		if len(g.children[fold(name)]) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}

// Ancestors returns the chain of parents above the entry, nearest first.
// The chain stops at a root, a missing parent, or when it would re-enter
// itself on a cycle.
func (g *Graph) Ancestors(name string) []string {
	var chain []string
	seen := map[string]bool{fold(name): true}
	current, ok := g.nodes[fold(name)]
	if !ok {
		return nil
	}
	for current.Extends != "" {
		parent, ok := g.nodes[fold(current.Extends)]
		if !ok || seen[fold(current.Extends)] {
			break
		}
		chain = append(chain, parent.Name)
		seen[fold(current.Extends)] = true
		current = parent
	}
	return chain
}

// Cycles returns every extends cycle, each as the member names in chain
// order starting from the lexicographically smallest member. Returns nil
// for an acyclic graph.
func (g *Graph) Cycles() [][]string {
	out := make([][]string, len(g.cycles))
	for i, c := range g.cycles {
		out[i] = slices.Clone(c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MissingParents maps each entry that extends an unknown name to that name.
// Returns an empty map for a fully linked graph.
func (g *Graph) MissingParents() map[string]string {
	out := make(map[string]string, len(g.missing))
	for child, parent := range g.missing {
		out[g.nodes[child].Name] = parent
	}
	return out
}

// Validate reports nil when every entry links to a known parent and no
// extends cycle exists. Otherwise it aggregates one coded error per
// problem, matching what resolution would reject.
func (g *Graph) Validate() error {
	var errs errors.List
	for _, child := range slices.Sorted(maps.Keys(g.missing)) {
		errs.Append(errors.New(errors.ErrCodeUnknownParent,
			"entry %q extends unknown framework %q", g.nodes[child].Name, g.missing[child]))
	}
	for _, cycle := range g.cycles {
		path := strings.Join(append(slices.Clone(cycle), cycle[0]), " -> ")
		errs.Append(errors.New(errors.ErrCodeCyclicExtends, "extends cycle: %s", path))
	}
	return errs.ErrOrNil()
}

// detectCycles walks every extends chain with white/gray/black coloring.
// Each entry has at most one parent, so every cycle is a simple ring and is
// recorded exactly once.
func (g *Graph) detectCycles() {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	for _, start := range g.names {
		if color[fold(start)] != white {
			continue
		}

		var path []string
		current := fold(start)
		for {
			if color[current] == black {
				break
			}
			if color[current] == gray {
				at := slices.Index(path, current)
				g.cycles = append(g.cycles, g.cycleNames(path[at:]))
				break
			}
			color[current] = gray
			path = append(path, current)

			node := g.nodes[current]
			if node.Extends == "" {
				break
			}
			parent := fold(node.Extends)
			if _, ok := g.nodes[parent]; !ok {
				break
			}
			current = parent
		}
		for _, id := range path {
			color[id] = black
		}
	}

	slices.SortFunc(g.cycles, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
}

// cycleNames rotates a cycle so it starts at its smallest member and maps
// folded keys back to original casing.
func (g *Graph) cycleNames(folded []string) []string {
	at := 0
	for i, id := range folded {
		if id < folded[at] {
			at = i
		}
	}
	names := make([]string, 0, len(folded))
	for i := range folded {
		names = append(names, g.nodes[folded[(at+i)%len(folded)]].Name)
	}
	return names
}

// assignDepths walks each chain to its root, memoizing along the way.
// Chains that hit a cycle or a missing parent keep depth -1.
func (g *Graph) assignDepths() {
	var depth func(id string, seen map[string]bool) int
	depth = func(id string, seen map[string]bool) int {
		node := g.nodes[id]
		if node.Depth >= 0 {
			return node.Depth
		}
		if seen[id] {
			return -1
		}
		seen[id] = true

		if node.Extends == "" {
			node.Depth = 0
			return 0
		}
		parent := fold(node.Extends)
		if _, ok := g.nodes[parent]; !ok {
			return -1
		}
		d := depth(parent, seen)
		if d < 0 {
			return -1
		}
		node.Depth = d + 1
		return node.Depth
	}

	for _, name := range g.names {
		depth(fold(name), make(map[string]bool))
	}
}

func fold(name string) string { return strings.ToLower(name) }
