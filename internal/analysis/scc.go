package analysis

import (
	"sort"

	"brilt/internal/cfg"
)

// Strongly connected components by two-pass DFS from the entry: a
// preorder numbering pass, then a low-link pass over an explicit stack.
// When a node's low equals its own preorder the stack is popped back to
// it, emitting one component. Only reachable nodes are visited.

// Component is one SCC: its member nodes plus edges to other components
// in the reduced graph (self-loops suppressed).
type Component struct {
	Nodes []int
	Succs []int
	Preds []int

	members NodeSet
}

// Contains reports whether CFG node n belongs to the component.
func (comp *Component) Contains(n int) bool { return comp.members.Has(n) }

// Size is the number of member nodes.
func (comp *Component) Size() int { return len(comp.Nodes) }

// SCCs is the component decomposition of one Cfg.
type SCCs struct {
	Comps  []*Component
	CompOf map[int]int
}

// FindSCCs decomposes the reachable part of c into strongly connected
// components and derives the reduced component graph.
func FindSCCs(c *cfg.Cfg) *SCCs {
	v := &sccVisitor{
		c:        c,
		preorder: make(map[int]int),
		low:      make(map[int]int),
		onStack:  make(map[int]bool),
		visited:  make(map[int]bool),
	}
	v.number(c.Entry)
	v.visited = make(map[int]bool)
	v.lowpass(c.Entry)

	s := &SCCs{CompOf: make(map[int]int)}
	for _, nodes := range v.comps {
		sort.Ints(nodes)
		comp := &Component{Nodes: nodes, members: NodeSet{}}
		for _, n := range nodes {
			comp.members.Add(n)
			s.CompOf[n] = len(s.Comps)
		}
		s.Comps = append(s.Comps, comp)
	}

	// Reduced graph: map each CFG edge to a component edge.
	for ci, comp := range s.Comps {
		succs := map[int]struct{}{}
		preds := map[int]struct{}{}
		for _, n := range comp.Nodes {
			for _, t := range c.Successors(n) {
				if target, ok := s.CompOf[t]; ok && target != ci {
					succs[target] = struct{}{}
				}
			}
			for _, f := range c.Predecessors(n) {
				if source, ok := s.CompOf[f]; ok && source != ci {
					preds[source] = struct{}{}
				}
			}
		}
		for t := range succs {
			comp.Succs = append(comp.Succs, t)
		}
		for f := range preds {
			comp.Preds = append(comp.Preds, f)
		}
		sort.Ints(comp.Succs)
		sort.Ints(comp.Preds)
	}
	return s
}

type sccVisitor struct {
	c        *cfg.Cfg
	next     int
	preorder map[int]int
	low      map[int]int
	visited  map[int]bool
	onStack  map[int]bool
	stack    []int
	comps    [][]int
}

func (v *sccVisitor) number(n int) {
	if v.visited[n] {
		return
	}
	v.visited[n] = true
	v.preorder[n] = v.next
	v.next++
	for _, s := range v.c.Successors(n) {
		v.number(s)
	}
}

func (v *sccVisitor) lowpass(n int) int {
	if v.visited[n] {
		// Back or cross edge: contributes its preorder only while still
		// on the stack, i.e. inside the component being assembled.
		if v.onStack[n] {
			return v.preorder[n]
		}
		return v.preorder[v.c.Entry] + v.next // effectively +inf
	}
	v.visited[n] = true
	v.onStack[n] = true
	v.stack = append(v.stack, n)

	low := v.preorder[n]
	for _, s := range v.c.Successors(n) {
		if l := v.lowpass(s); l < low {
			low = l
		}
	}
	v.low[n] = low
	if low == v.preorder[n] {
		// Pop the stack back to n: that slice is one component.
		idx := len(v.stack) - 1
		for v.stack[idx] != n {
			idx--
		}
		comp := append([]int(nil), v.stack[idx:]...)
		for _, m := range comp {
			v.onStack[m] = false
		}
		v.stack = v.stack[:idx]
		v.comps = append(v.comps, comp)
	}
	return low
}

// Entries returns the component members with a predecessor outside the
// component.
func (s *SCCs) Entries(comp *Component, c *cfg.Cfg) []int {
	var entries []int
	for _, n := range comp.Nodes {
		for _, p := range c.Predecessors(n) {
			if !comp.Contains(p) {
				entries = append(entries, n)
				break
			}
		}
	}
	return entries
}

// Exits returns the component members with a successor outside the
// component.
func (s *SCCs) Exits(comp *Component, c *cfg.Cfg) []int {
	var exits []int
	for _, n := range comp.Nodes {
		for _, t := range c.Successors(n) {
			if !comp.Contains(t) {
				exits = append(exits, n)
				break
			}
		}
	}
	return exits
}
