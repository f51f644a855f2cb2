package validate

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ez2torta/SConE/internal/catalog"
)

type refEdge struct {
	to   string
	path string
	node *yaml.Node
}

// refGraph is the static motion → referenced-motion graph of a document.
type refGraph struct {
	lines map[string]int
	order []string // document order, for deterministic reports
	edges map[string][]refEdge
}

func newRefGraph() *refGraph {
	return &refGraph{
		lines: make(map[string]int),
		edges: make(map[string][]refEdge),
	}
}

func (g *refGraph) addNode(key catalog.Key, node *yaml.Node) {
	id := key.String()
	if _, ok := g.lines[id]; ok {
		return
	}
	g.lines[id] = node.Line
	g.order = append(g.order, id)
}

func (g *refGraph) addEdge(from, to catalog.Key, path string, node *yaml.Node) {
	id := from.String()
	g.edges[id] = append(g.edges[id], refEdge{to: to.String(), path: path, node: node})
}

// check reports dangling references first, then every cycle among the
// references that do resolve.
func (g *refGraph) check(c *checker) {
	adj := make(map[string][]string, len(g.order))
	for _, from := range g.order {
		for _, e := range g.edges[from] {
			if _, ok := g.lines[e.to]; !ok {
				c.errorf(e.node, e.path, ErrRefMissing, "ref target %s not found", e.to)
				continue
			}
			adj[from] = append(adj[from], e.to)
		}
	}

	for _, scc := range tarjanSCC(g.order, adj) {
		if len(scc) == 1 && !slices.Contains(adj[scc[0]], scc[0]) {
			continue
		}
		path := cyclePath(scc, adj, g.order)
		c.report.Errors = append(c.report.Errors, Finding{
			Path:    path[0],
			Code:    ErrRefCycle,
			Message: "reference cycle: " + strings.Join(path, " → "),
			Line:    g.lines[path[0]],
		})
	}
}

// tarjanSCC finds strongly connected components, visiting roots in the
// given order.
func tarjanSCC(order []string, adj map[string][]string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range order {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return sccs
}

// cyclePath returns a shortest cycle through scc, starting from the member
// that appears first in the document: [a, b, a].
func cyclePath(scc []string, adj map[string][]string, order []string) []string {
	members := make(map[string]bool, len(scc))
	for _, v := range scc {
		members[v] = true
	}
	var start string
	for _, v := range order {
		if members[v] {
			start = v
			break
		}
	}

	// Breadth-first search from start back to start, inside the component.
	parent := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, w := range adj[cur] {
			if !members[w] {
				continue
			}
			if w == start {
				path := []string{start}
				for v := cur; v != start; v = parent[v] {
					path = append(path, v)
				}
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if _, seen := parent[w]; !seen {
				parent[w] = cur
				queue = append(queue, w)
			}
		}
	}
	return []string{start, start}
}
