package compiler

import (
	"fmt"
	"strings"
)

// CycleError reports theories that use each other.
type CycleError struct {
	Path []string // e.g. ["A", "B", "A"]
}

func (e *CycleError) Error() string {
	return "theory dependency cycle: " + strings.Join(e.Path, " -> ")
}

// UnknownTheoryError reports a uses entry that names no loaded theory.
type UnknownTheoryError struct {
	Theory string
	Uses   string
}

func (e *UnknownTheoryError) Error() string {
	return fmt.Sprintf("theory %s uses unknown theory %s", e.Theory, e.Uses)
}

// dependencyGraph maps a theory to the theories it uses.
type dependencyGraph map[string][]string

// Order returns the theories so that every theory comes after the ones it
// uses. Independent theories keep their input order.
//
// Strongly connected components are found with Tarjan's algorithm, which
// emits a component only after every component reachable from it. With
// edges pointing from a theory to its dependencies that is exactly
// dependency order.
func Order(theories []*Theory) ([]*Theory, error) {
	byName := make(map[string]*Theory, len(theories))
	names := make([]string, 0, len(theories))
	graph := make(dependencyGraph, len(theories))
	for _, th := range theories {
		byName[th.Name] = th
		names = append(names, th.Name)
	}
	for _, th := range theories {
		for _, u := range th.Uses {
			if _, ok := byName[u]; !ok {
				return nil, &UnknownTheoryError{Theory: th.Name, Uses: u}
			}
		}
		graph[th.Name] = th.Uses
	}

	sccs := tarjanSCC(names, graph)
	out := make([]*Theory, 0, len(theories))
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			return nil, &CycleError{Path: reconstructCyclePath(scc, graph)}
		}
		out = append(out, byName[scc[0]])
	}
	return out, nil
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC visits nodes in the given order so the result is
// deterministic.
func tarjanSCC(nodes []string, graph dependencyGraph) [][]string {
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

		for _, w := range graph[v] {
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

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath follows edges inside scc from its first node until
// it returns there.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true
		var next string
		for _, neighbor := range graph[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
