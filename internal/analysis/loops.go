package analysis

import (
	"fmt"
	"sort"

	"brilt/internal/cfg"
)

// Natural-loop identification over the SCC decomposition: a component is
// a natural loop iff it has exactly one entry node and every back-edge
// inside it targets a node dominating the edge's source. A single node
// only counts when it loops on itself.

// NaturalLoop is one identified loop.
type NaturalLoop struct {
	Header int
	Comp   *Component
	Exits  []int
}

// NaturalLoops filters the components of s down to natural loops.
// A single-entry component with a back-edge whose target does not
// dominate its source denotes a broken dominator computation and aborts.
func NaturalLoops(c *cfg.Cfg, s *SCCs, dt *DomTree) []NaturalLoop {
	var loops []NaturalLoop
	for _, comp := range s.Comps {
		if comp.Size() == 1 && !selfLoop(c, comp.Nodes[0]) {
			continue
		}
		entries := s.Entries(comp, c)
		if len(entries) != 1 {
			continue
		}
		header := entries[0]
		for _, edge := range backEdges(c, comp, header) {
			if !dt.IsDominatorOf(edge[1], edge[0]) {
				panic(fmt.Sprintf(
					"back-edge %d->%d of single-entry component not dominated", edge[0], edge[1]))
			}
		}
		loops = append(loops, NaturalLoop{
			Header: header,
			Comp:   comp,
			Exits:  s.Exits(comp, c),
		})
	}
	return loops
}

func selfLoop(c *cfg.Cfg, n int) bool {
	for _, s := range c.Successors(n) {
		if s == n {
			return true
		}
	}
	return false
}

// backEdges finds [src, dst] edges to nodes currently on the DFS stack,
// with the DFS restricted to component members and started at the entry.
func backEdges(c *cfg.Cfg, comp *Component, entry int) [][2]int {
	var (
		edges   [][2]int
		visited = map[int]bool{}
		onStack = map[int]bool{}
		dfs     func(n int)
	)
	dfs = func(n int) {
		if !comp.Contains(n) || visited[n] {
			return
		}
		visited[n] = true
		onStack[n] = true
		for _, s := range c.Successors(n) {
			if onStack[s] {
				edges = append(edges, [2]int{n, s})
			}
			dfs(s)
		}
		onStack[n] = false
	}
	dfs(entry)
	return edges
}

// InjectPreheader synthesizes a preheader block P for the loop: every
// predecessor of the header outside the component is rewired to P,
// label operands included, and P falls through to the header. Back-edges
// to the header are preserved. Returns P's node index.
func InjectPreheader(c *cfg.Cfg, loop NaturalLoop) int {
	header := loop.Header
	headerLabel := c.Nodes[header].Block.Label
	if headerLabel == "" {
		panic(fmt.Sprintf("loop header %d has no label", header))
	}
	preLabel := headerLabel + ".preheader"

	pre := c.AddNode(&cfg.BasicBlock{Label: preLabel})

	var external []int
	for _, p := range c.Predecessors(header) {
		if !loop.Comp.Contains(p) {
			external = append(external, p)
		}
	}
	sort.Ints(external)
	for _, p := range external {
		if term := c.Nodes[p].Block.Terminator(); term != nil {
			for i, l := range term.Labels {
				if l == headerLabel {
					term.Labels[i] = preLabel
				}
			}
		}
		c.Unlink(p, header)
		c.Link(p, pre)
	}
	c.Link(pre, header)
	c.InsertBefore(pre, header)
	return pre
}
