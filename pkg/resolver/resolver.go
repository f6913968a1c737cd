// Package resolver orders calculations so that every dependency is
// translated before its dependents, and isolates circular dependency
// groups so one cycle never blocks unrelated work.
package resolver

import (
	"fmt"
	"strings"

	"github.com/dashport-dev/dashport/pkg/calc"
)

// Calculation is one node handed to the resolver: a calculation's source
// key and the field keys its parsed formula references.
type Calculation struct {
	Key  string
	Refs []string
}

// Result is the outcome of dependency resolution.
type Result struct {
	// Order lists translatable calculations, dependencies first. Ties are
	// broken by input position, so the order is stable across runs.
	Order []string
	// Excluded holds the calculations that sit inside a cycle. They are
	// absent from Order and must not be translated.
	Excluded map[string]bool
	// Diagnostics carries one circular-dependency diagnostic per cycle.
	Diagnostics []calc.Diagnostic
}

// Order resolves the dependency graph of the given calculations.
//
// Only references between the given calculations become edges; references
// to source fields or parameters carry no ordering constraint. Each cycle
// (including a self-reference) produces one diagnostic naming every member
// in input order, and its members are excluded. Calculations that merely
// depend on an excluded calculation stay in the order: their references
// still lower to identifiers, so they remain translatable.
func Order(calcs []Calculation) Result {
	g := newGraph()
	for _, c := range calcs {
		g.addNode(c.Key)
	}
	for _, c := range calcs {
		for _, ref := range c.Refs {
			g.addEdge(ref, c.Key)
		}
	}

	excluded := make(map[string]bool)
	var diags []calc.Diagnostic

	for _, component := range g.stronglyConnected() {
		if len(component) == 1 && !g.hasSelfLoop(component[0]) {
			continue
		}
		for _, key := range component {
			excluded[key] = true
		}
		diags = append(diags, calc.Diagnostic{
			Kind:    calc.DiagCircularDependency,
			Subject: component[0],
			Message: fmt.Sprintf("circular dependency: %s", strings.Join(component, " -> ")),
		})
	}

	order := topoOrder(g, excluded)

	return Result{
		Order:       order,
		Excluded:    excluded,
		Diagnostics: diags,
	}
}

// topoOrder runs a stable Kahn sort over the non-excluded nodes. Edges from
// excluded nodes are dropped so dependents of a cycle still get a slot.
// Among ready nodes, input position decides, which makes the output
// deterministic and idempotent for identical input.
func topoOrder(g *graph, excluded map[string]bool) []string {
	indegree := make(map[string]int, len(g.keys))
	for _, key := range g.keys {
		if excluded[key] {
			continue
		}
		n := 0
		for _, parent := range g.parents[key] {
			if !excluded[parent] {
				n++
			}
		}
		indegree[key] = n
	}

	order := make([]string, 0, len(indegree))
	emitted := make(map[string]bool, len(indegree))

	for len(order) < len(indegree) {
		advanced := false
		for _, key := range g.keys {
			if excluded[key] || emitted[key] || indegree[key] != 0 {
				continue
			}
			emitted[key] = true
			order = append(order, key)
			advanced = true
			for _, child := range g.edges[key] {
				if !excluded[child] {
					indegree[child]--
				}
			}
		}
		if !advanced {
			// Unreachable once cycles are excluded; guard against looping
			// forever on a malformed graph.
			break
		}
	}

	return order
}
