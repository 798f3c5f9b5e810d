package analysis

import (
	"brilt/internal/cfg"
	"brilt/internal/dataflow"
)

// Liveness: backward may-analysis. The value stored per node is the set
// of variables live at the node's entry.
//
//	transfer(n, in) = (in \ defs(n)) ∪ usesBeforeDefs(n)
//	merge           = union
//	init            = ∅

type livenessProblem struct {
	c *cfg.Cfg
}

func (livenessProblem) Direction() dataflow.Direction { return dataflow.Backward }

func (livenessProblem) InitIn(int) VarSet { return VarSet{} }

func (p livenessProblem) Transfer(n int, in VarSet) VarSet {
	blk := p.c.Node(n).Block
	out := make(VarSet, len(in))
	defs := blk.Defs()
	for v := range in {
		if _, ok := defs[v]; !ok {
			out.Add(v)
		}
	}
	for v := range blk.UsedBeforeDef() {
		out.Add(v)
	}
	return out
}

func (livenessProblem) Merge(flows []VarSet) VarSet {
	merged := VarSet{}
	for _, f := range flows {
		merged.Union(f)
	}
	return merged
}

func (livenessProblem) Equal(a, b VarSet) bool { return a.Equal(b) }

// Improves: the live set only ever grows toward the fixed point.
func (livenessProblem) Improves(prev, next VarSet) bool {
	for v := range prev {
		if !next.Has(v) {
			return false
		}
	}
	return len(next) > len(prev)
}

// Liveness computes live-in sets per node with the serial driver.
func Liveness(c *cfg.Cfg) map[int]VarSet {
	return dataflow.Run[VarSet](c, livenessProblem{c})
}

// LivenessParallel computes the same fixed point with the parallel
// driver.
func LivenessParallel(c *cfg.Cfg, conf dataflow.Config) map[int]VarSet {
	return dataflow.RunParallel[VarSet](c, livenessProblem{c}, conf)
}

// LiveOut derives a node's live-out set from the live-in table: the
// union of live-in over CFG successors.
func LiveOut(c *cfg.Cfg, liveIn map[int]VarSet, n int) VarSet {
	out := VarSet{}
	for _, s := range c.Successors(n) {
		out.Union(liveIn[s])
	}
	return out
}
