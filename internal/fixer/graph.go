package fixer

import (
	"fmt"
	"sort"
)

// TopoSort orders nodes so that every edge src->dst (meaning "src must run
// before dst") is respected, using Kahn's algorithm. Ties are broken by
// node name for deterministic output. It returns an error if the graph
// has a cycle.
func TopoSort(nodes []string, edges map[string][]string) ([]string, error) {
	indegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		indegree[n] = 0
	}
	for _, deps := range edges {
		for _, dst := range deps {
			indegree[dst]++
		}
	}

	var ready []string
	for _, n := range nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var newlyReady []string
		for _, dst := range edges[n] {
			indegree[dst]--
			if indegree[dst] == 0 {
				newlyReady = append(newlyReady, dst)
			}
		}
		sort.Strings(newlyReady)
		ready = append(ready, newlyReady...)
		sort.Strings(ready)
	}

	if len(order) != len(nodes) {
		return nil, fmt.Errorf("rule dependency graph has a cycle")
	}
	return order, nil
}
