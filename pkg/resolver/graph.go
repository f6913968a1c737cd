package resolver

import "sort"

// graph is a directed dependency graph over calculation keys.
// Insertion order is preserved so every traversal is deterministic
// with respect to the order calculations appeared in the workbook.
type graph struct {
	index   map[string]int      // key -> input position
	keys    []string            // input order
	edges   map[string][]string // dependency -> dependents
	parents map[string][]string // dependent -> dependencies
}

func newGraph() *graph {
	return &graph{
		index:   make(map[string]int),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// addNode registers a key. Re-adding an existing key is a no-op.
func (g *graph) addNode(key string) {
	if _, exists := g.index[key]; exists {
		return
	}
	g.index[key] = len(g.keys)
	g.keys = append(g.keys, key)
	g.edges[key] = nil
	g.parents[key] = nil
}

// addEdge records that child depends on parent. Both nodes must already be
// registered; unknown endpoints are ignored because references to source
// fields are not graph nodes. Self-loops are kept: a self-referential
// calculation is a cycle to report, not an input error.
func (g *graph) addEdge(parent, child string) {
	if _, ok := g.index[parent]; !ok {
		return
	}
	if _, ok := g.index[child]; !ok {
		return
	}
	if containsKey(g.edges[parent], child) {
		return
	}
	g.edges[parent] = append(g.edges[parent], child)
	g.parents[child] = append(g.parents[child], parent)
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// stronglyConnected returns the strongly connected components of the graph
// using Tarjan's algorithm. Component membership is returned in input order,
// and the component list itself is ordered by the earliest member.
func (g *graph) stronglyConnected() [][]string {
	const unvisited = -1

	n := len(g.keys)
	indexOf := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range indexOf {
		indexOf[i] = unvisited
	}

	var (
		counter    int
		stack      []int
		components [][]string
	)

	var strongConnect func(v int)
	strongConnect = func(v int) {
		indexOf[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, childKey := range g.edges[g.keys[v]] {
			w := g.index[childKey]
			if indexOf[w] == unvisited {
				strongConnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && indexOf[w] < lowlink[v] {
				lowlink[v] = indexOf[w]
			}
		}

		if lowlink[v] == indexOf[v] {
			var members []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			// Report members in input order.
			sort.Ints(members)
			component := make([]string, len(members))
			for i, m := range members {
				component[i] = g.keys[m]
			}
			components = append(components, component)
		}
	}

	for v := 0; v < n; v++ {
		if indexOf[v] == unvisited {
			strongConnect(v)
		}
	}

	// Order components by earliest member so diagnostics are stable.
	sort.Slice(components, func(i, j int) bool {
		return g.index[components[i][0]] < g.index[components[j][0]]
	})
	return components
}

// hasSelfLoop reports whether key depends directly on itself.
func (g *graph) hasSelfLoop(key string) bool {
	return containsKey(g.edges[key], key)
}
