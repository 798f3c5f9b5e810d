package analysis

import (
	"brilt/internal/cfg"
	"brilt/internal/dataflow"
)

// Reaching definitions: forward may-analysis over variable names. The
// value per node is the set of names defined on some path through the
// node's exit. At the entry the function arguments already reach.

type reachDefProblem struct {
	c *cfg.Cfg
}

func (reachDefProblem) Direction() dataflow.Direction { return dataflow.Forward }

func (p reachDefProblem) InitIn(n int) VarSet {
	s := VarSet{}
	if n == p.c.Entry {
		for _, name := range p.c.Fn.ArgNames() {
			s.Add(name)
		}
	}
	return s
}

func (p reachDefProblem) Transfer(n int, in VarSet) VarSet {
	out := in.Clone()
	for v := range p.c.Node(n).Block.Defs() {
		out.Add(v)
	}
	return out
}

func (reachDefProblem) Merge(flows []VarSet) VarSet {
	merged := VarSet{}
	for _, f := range flows {
		merged.Union(f)
	}
	return merged
}

func (reachDefProblem) Equal(a, b VarSet) bool { return a.Equal(b) }

func (reachDefProblem) Improves(prev, next VarSet) bool {
	for v := range prev {
		if !next.Has(v) {
			return false
		}
	}
	return len(next) > len(prev)
}

// ReachingDefs computes, per node, the set of names defined on some path
// to the node's exit.
func ReachingDefs(c *cfg.Cfg) map[int]VarSet {
	return dataflow.Run[VarSet](c, reachDefProblem{c})
}
