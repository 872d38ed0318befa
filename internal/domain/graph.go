package domain

// visitState is the DFS color of a node.
type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// dfsFrame is one entry of the explicit traversal stack.
type dfsFrame struct {
	node string
	next int
}

// FindCycles walks the directed graph defined by edges, starting from each
// node in order, and returns every cycle found. A cycle is reported as the
// path from the first occurrence of the repeated node to the node that
// closes it, followed by the repeated node again (a, b, c, a).
//
// Self edges are ignored. Nodes that are fully processed are never
// re-expanded, so total work is O(V+E).
func FindCycles(nodes []string, edges func(string) []string) [][]string {
	state := make(map[string]visitState, len(nodes))
	var cycles [][]string

	for _, start := range nodes {
		if state[start] != unvisited {
			continue
		}

		state[start] = inProgress
		stack := []dfsFrame{{node: start}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := edges(top.node)

			if top.next >= len(deps) {
				state[top.node] = done
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++
			if dep == top.node {
				continue
			}

			switch state[dep] {
			case unvisited:
				state[dep] = inProgress
				stack = append(stack, dfsFrame{node: dep})
			case inProgress:
				cycles = append(cycles, cycleFrom(stack, dep))
			}
		}
	}

	return cycles
}

// cycleFrom extracts the stack suffix starting at node and closes it.
func cycleFrom(stack []dfsFrame, node string) []string {
	start := 0
	for i, f := range stack {
		if f.node == node {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		cycle = append(cycle, f.node)
	}
	return append(cycle, node)
}
