// Package dag checks evidence → claim proof graphs for cycles, unsupported
// claims and self-contradicting sources. It never mutates its input.
package dag

import (
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ppiankov/casedex/internal/model"
)

type color int

const (
	white color = iota // unvisited
	gray               // on the current DFS path
	black              // finished
)

// graph is the validated, indexed form of a node/edge snapshot
type graph struct {
	order   []string                  // node ids in input order
	kinds   map[string]model.NodeKind // id → kind
	support map[string][]string       // non-contradiction adjacency, edge order kept
	counter []model.Edge              // contradiction edges
}

// Validate analyses a proof graph. It fails with ErrMalformedGraph when a
// node is duplicated or malformed, or an edge references an unknown node.
func Validate(nodes []model.Node, edges []model.Edge) (*model.ValidationReport, error) {
	g, err := build(nodes, edges)
	if err != nil {
		return nil, err
	}

	report := &model.ValidationReport{
		IsAcyclic:         g.acyclic(),
		Cycles:            g.cycles(),
		UnsupportedClaims: g.unsupportedClaims(),
		Contradictions:    g.contradictions(),
	}
	return report, nil
}

func build(nodes []model.Node, edges []model.Edge) (*graph, error) {
	g := &graph{
		order:   make([]string, 0, len(nodes)),
		kinds:   make(map[string]model.NodeKind, len(nodes)),
		support: make(map[string][]string),
	}

	for i, n := range nodes {
		if n.ID == "" {
			return nil, goerr.Wrap(model.ErrMalformedGraph, "node without id", goerr.V("index", i))
		}
		if !n.Kind.Valid() {
			return nil, goerr.Wrap(model.ErrMalformedGraph, "unknown node kind",
				goerr.V("node", n.ID), goerr.V("kind", n.Kind))
		}
		if _, dup := g.kinds[n.ID]; dup {
			return nil, goerr.Wrap(model.ErrMalformedGraph, "duplicate node", goerr.V("node", n.ID))
		}
		g.kinds[n.ID] = n.Kind
		g.order = append(g.order, n.ID)
	}

	for _, e := range edges {
		if err := g.checkEdge(e); err != nil {
			return nil, err
		}
		if e.Contradicts {
			g.counter = append(g.counter, e)
			continue
		}
		g.support[e.Source] = append(g.support[e.Source], e.Target)
	}

	return g, nil
}

func (g *graph) checkEdge(e model.Edge) error {
	if _, ok := g.kinds[e.Source]; !ok {
		return goerr.Wrap(model.ErrMalformedGraph, "edge references unknown source",
			goerr.V("source", e.Source), goerr.V("target", e.Target))
	}
	if _, ok := g.kinds[e.Target]; !ok {
		return goerr.Wrap(model.ErrMalformedGraph, "edge references unknown target",
			goerr.V("source", e.Source), goerr.V("target", e.Target))
	}
	return nil
}

// frame is one level of an explicit DFS stack
type frame struct {
	id    string
	next  int
	found bool
}

// acyclic runs a three-colour DFS from every unvisited node and reports
// whether no support edge closes back onto the current path
func (g *graph) acyclic() bool {
	colors := make(map[string]color, len(g.order))

	for _, root := range g.order {
		if colors[root] != white {
			continue
		}

		stack := []frame{{id: root}}
		colors[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := g.support[top.id]

			if top.next >= len(succ) {
				colors[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			w := succ[top.next]
			top.next++

			switch colors[w] {
			case white:
				colors[w] = gray
				stack = append(stack, frame{id: w})
			case gray:
				return false
			}
		}
	}

	return true
}

// cycles lists every elementary cycle of the support graph (Johnson's
// algorithm). Starts are taken in id order and each search is confined to
// the start's strongly connected component among ids not yet used as a
// start, so every cycle is found from its smallest id. Cycles are sorted
// and parallel edges do not repeat a cycle.
func (g *graph) cycles() [][]string {
	ids := append([]string(nil), g.order...)
	sort.Strings(ids)

	reverse := make(map[string][]string, len(g.support))
	for _, src := range g.order {
		for _, dst := range g.support[src] {
			reverse[dst] = append(reverse[dst], src)
		}
	}

	done := make(map[string]bool, len(ids))
	seen := make(map[string]bool)
	cycles := [][]string{}

	for _, s := range ids {
		forward := reachWithin(s, g.support, done)
		backward := reachWithin(s, reverse, done)
		component := make(map[string]bool, len(forward))
		for id := range forward {
			if backward[id] {
				component[id] = true
			}
		}

		for _, c := range g.circuits(s, component) {
			c = canonicalCycle(c)
			key := strings.Join(c, "\x00")
			if !seen[key] {
				seen[key] = true
				cycles = append(cycles, c)
			}
		}
		done[s] = true
	}

	sort.Slice(cycles, func(i, j int) bool {
		a, b := cycles[i], cycles[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return cycles
}

// circuits returns the elementary cycles through s whose nodes all lie in
// component. Dead ends stay blocked until a cycle is found through them.
func (g *graph) circuits(s string, component map[string]bool) [][]string {
	blocked := map[string]bool{s: true}
	blockedBy := make(map[string]map[string]bool)

	unblock := func(v string) {
		pending := []string{v}
		for len(pending) > 0 {
			u := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			blocked[u] = false
			for w := range blockedBy[u] {
				delete(blockedBy[u], w)
				if blocked[w] {
					pending = append(pending, w)
				}
			}
		}
	}

	var out [][]string
	path := []string{s}
	stack := []frame{{id: s}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succ := g.support[top.id]

		if top.next < len(succ) {
			w := succ[top.next]
			top.next++

			switch {
			case !component[w]:
			case w == s:
				out = append(out, append([]string(nil), path...))
				top.found = true
			case !blocked[w]:
				blocked[w] = true
				path = append(path, w)
				stack = append(stack, frame{id: w})
			}
			continue
		}

		v, found := top.id, top.found
		if found {
			unblock(v)
		} else {
			for _, w := range succ {
				if !component[w] {
					continue
				}
				if blockedBy[w] == nil {
					blockedBy[w] = make(map[string]bool)
				}
				blockedBy[w][v] = true
			}
		}

		stack = stack[:len(stack)-1]
		path = path[:len(path)-1]
		if found && len(stack) > 0 {
			stack[len(stack)-1].found = true
		}
	}

	return out
}

// reachWithin returns the ids reachable from start along adj, start
// included, never entering an excluded id
func reachWithin(start string, adj map[string][]string, excluded map[string]bool) map[string]bool {
	reached := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if excluded[next] || reached[next] {
				continue
			}
			reached[next] = true
			queue = append(queue, next)
		}
	}
	return reached
}

// canonicalCycle copies a cycle rotated to start at its smallest node id
func canonicalCycle(cycle []string) []string {
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[start:]...)
	out = append(out, cycle[:start]...)
	return out
}

// unsupportedClaims returns claims no evidence node reaches along support edges
func (g *graph) unsupportedClaims() []string {
	var sources []string
	for _, id := range g.order {
		if g.kinds[id] == model.NodeEvidence {
			sources = append(sources, id)
		}
	}

	reached := g.reach(sources, true)

	unsupported := []string{}
	for _, id := range g.order {
		if g.kinds[id] == model.NodeClaim && !reached[id] {
			unsupported = append(unsupported, id)
		}
	}
	sort.Strings(unsupported)
	return unsupported
}

// contradictions returns contradiction edges whose source also supports the
// target through a path of one or more support edges
func (g *graph) contradictions() []model.Contradiction {
	found := []model.Contradiction{}
	seen := make(map[model.Contradiction]bool)
	cache := make(map[string]map[string]bool)

	for _, e := range g.counter {
		reached, ok := cache[e.Source]
		if !ok {
			reached = g.reach([]string{e.Source}, false)
			cache[e.Source] = reached
		}

		c := model.Contradiction{Source: e.Source, Target: e.Target}
		if reached[e.Target] && !seen[c] {
			seen[c] = true
			found = append(found, c)
		}
	}
	return found
}

// reach runs a breadth-first search along support edges. When
// includeSources is false a source only counts as reached if some path
// leads back to it.
func (g *graph) reach(sources []string, includeSources bool) map[string]bool {
	reached := make(map[string]bool)
	queue := make([]string, 0, len(sources))

	if includeSources {
		for _, s := range sources {
			if !reached[s] {
				reached[s] = true
				queue = append(queue, s)
			}
		}
	} else {
		for _, s := range sources {
			for _, w := range g.support[s] {
				if !reached[w] {
					reached[w] = true
					queue = append(queue, w)
				}
			}
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, w := range g.support[id] {
			if !reached[w] {
				reached[w] = true
				queue = append(queue, w)
			}
		}
	}
	return reached
}

// Partition splits edges into those referencing known nodes and per-edge
// errors for the rest, so a batch can skip bad edges and carry on
func Partition(nodes []model.Node, edges []model.Edge) ([]model.Edge, []model.InputError) {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	valid := make([]model.Edge, 0, len(edges))
	var rejected []model.InputError
	for _, e := range edges {
		switch {
		case !known[e.Source]:
			rejected = append(rejected, model.InputError{Input: edgeLabel(e), Error: "unknown source node " + e.Source})
		case !known[e.Target]:
			rejected = append(rejected, model.InputError{Input: edgeLabel(e), Error: "unknown target node " + e.Target})
		default:
			valid = append(valid, e)
		}
	}
	return valid, rejected
}

func edgeLabel(e model.Edge) string {
	if e.Contradicts {
		return e.Source + " -x-> " + e.Target
	}
	return e.Source + " -> " + e.Target
}
