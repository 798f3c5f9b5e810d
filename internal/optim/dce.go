package optim

// Global dead-code elimination: liveness decides which definitions are
// dead past their block, then a per-block scan repeatedly drops
// overwritten-before-use and dead-on-exit definitions until nothing
// changes.

import (
	"brilt/internal/analysis"
	"brilt/internal/bril"
	"brilt/internal/cfg"
	"brilt/internal/dataflow"
)

// DCEOptions selects the value-numbering flavor run before elimination.
type DCEOptions struct {
	// GlobalConsts seeds each block's numbering with the constants the
	// global propagation proves at its entry.
	GlobalConsts bool
}

// DCE value-numbers every block (exposing dead definitions) and then
// deletes dead code across the CFG.
func DCE(c *cfg.Cfg, opts DCEOptions, conf dataflow.Config) {
	var constsAt map[int]map[string]bril.Value
	if opts.GlobalConsts {
		constsAt = analysis.ConstantsAtEntry(c)
	}
	for n := 0; n < c.NumNodes(); n++ {
		if opts.GlobalConsts {
			LVNBlock(c.Nodes[n].Block, true, constsAt[n])
		} else {
			LVNBlock(c.Nodes[n].Block, true, nil)
		}
	}
	c.Touch()

	liveIn := analysis.LivenessParallel(c, conf)
	for n := 0; n < c.NumNodes(); n++ {
		deadOnExit := deadDefs(c, liveIn, n)
		dceBlock(c.Nodes[n].Block, deadOnExit)
	}
	c.Touch()
}

// deadDefs returns the names the block defines that no successor needs.
func deadDefs(c *cfg.Cfg, liveIn map[int]analysis.VarSet, n int) analysis.VarSet {
	liveOut := analysis.LiveOut(c, liveIn, n)
	dead := analysis.VarSet{}
	for v := range c.Nodes[n].Block.Defs() {
		if !liveOut.Has(v) {
			dead.Add(v)
		}
	}
	return dead
}

// dceBlock drops dead definitions until a fixed point; deleting one
// write can expose the previous write to the same name.
func dceBlock(blk *cfg.BasicBlock, deadOnExit analysis.VarSet) {
	for dceBlockOnce(blk, deadOnExit) {
	}
}

func dceBlockOnce(blk *cfg.BasicBlock, deadOnExit analysis.VarSet) bool {
	toDelete := map[int]struct{}{}
	lastWrite := map[string]int{}

	for i, inst := range blk.Instrs {
		for _, arg := range inst.Args {
			delete(lastWrite, arg)
		}
		if inst.Dest != "" {
			if prev, ok := lastWrite[inst.Dest]; ok {
				toDelete[prev] = struct{}{}
			}
			if inst.Op == bril.OpCall {
				// A call's result may be dead but its effects are not.
				delete(lastWrite, inst.Dest)
			} else {
				lastWrite[inst.Dest] = i
			}
		}
	}
	for v, idx := range lastWrite {
		if deadOnExit.Has(v) {
			toDelete[idx] = struct{}{}
		}
	}
	if len(toDelete) == 0 {
		return false
	}

	kept := blk.Instrs[:0]
	for i, inst := range blk.Instrs {
		if _, drop := toDelete[i]; !drop {
			kept = append(kept, inst)
		}
	}
	blk.Instrs = kept
	return true
}
