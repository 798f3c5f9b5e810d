package optim

// Loop-invariant code motion. Requires SSA form: every hoisting
// candidate has a single static definition, so "invariant" is a property
// of names. The pass converts into the get/set dialect, hoists, and
// converts back.

import (
	"sort"

	"brilt/internal/analysis"
	"brilt/internal/bril"
	"brilt/internal/cfg"
	"brilt/internal/dataflow"
	"brilt/internal/ssa"
)

// LICM hoists loop-invariant instructions of every natural loop into a
// freshly injected preheader. Loops with no invariants are untouched.
func LICM(c *cfg.Cfg, cache *analysis.Cache, conf dataflow.Config) (bool, error) {
	if err := ssa.IntoSSA(c); err != nil {
		return false, err
	}

	// Injecting a preheader invalidates the component and dominator
	// structures, so after every changed loop both are rebuilt and the
	// remaining loops re-identified. A hoisted loop has no invariant
	// definitions left, so the iteration terminates.
	changed := false
	for {
		sccs := cache.SCCsOf(c)
		dt := cache.DomTreeOf(c)
		loops := analysis.NaturalLoops(c, sccs, dt)
		reach := analysis.ReachingDefs(c)

		hoisted := false
		for _, loop := range loops {
			if hoistLoop(c, loop, reach) {
				hoisted = true
				changed = true
				break
			}
		}
		if !hoisted {
			break
		}
	}

	ssa.OutOfSSA(c)
	return changed, nil
}

func hoistLoop(c *cfg.Cfg, loop analysis.NaturalLoop, reach map[int]analysis.VarSet) bool {
	// Names defined before entering the loop: reaching definitions at
	// the header's external predecessors.
	liveIn := analysis.VarSet{}
	for _, p := range c.Predecessors(loop.Header) {
		if !loop.Comp.Contains(p) {
			liveIn.Union(reach[p].Clone())
		}
	}

	invariant := loopInvariants(c, loop, liveIn)

	removed := map[int][]*bril.Instruction{}
	var hoisted []*bril.Instruction
	for _, n := range loop.Comp.Nodes {
		for _, inst := range c.Nodes[n].Block.Instrs {
			if inst.Dest != "" && invariant.Has(inst.Dest) && hoistable(inst, invariant) {
				removed[n] = append(removed[n], inst)
				hoisted = append(hoisted, inst)
			}
		}
	}
	if len(hoisted) == 0 {
		return false
	}

	for n, insts := range removed {
		drop := map[*bril.Instruction]struct{}{}
		for _, inst := range insts {
			drop[inst] = struct{}{}
		}
		blk := c.Nodes[n].Block
		kept := blk.Instrs[:0]
		for _, inst := range blk.Instrs {
			if _, gone := drop[inst]; !gone {
				kept = append(kept, inst)
			}
		}
		blk.Instrs = kept
	}

	pre := analysis.InjectPreheader(c, loop)
	c.Nodes[pre].Block.Instrs = topoSort(hoisted)
	c.Touch()
	return true
}

// hoistable ops are the pure arithmetic core plus id and const.
func hoistable(inst *bril.Instruction, invariant analysis.VarSet) bool {
	switch inst.Op {
	case bril.OpConst:
		return true
	case bril.OpAdd, bril.OpSub, bril.OpMul, bril.OpDiv, bril.OpID:
		for _, arg := range inst.Args {
			if !invariant.Has(arg) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// loopInvariants runs a forward data-flow over the loop body in
// isolation: the header's in-state is pinned to the names defined
// outside, every other member starts at top, and the transfer grows the
// set with eligible definitions. The fixed point names every invariant.
func loopInvariants(c *cfg.Cfg, loop analysis.NaturalLoop, liveIn analysis.VarSet) analysis.VarSet {
	top := liveIn.Clone()
	for _, n := range loop.Comp.Nodes {
		for v := range c.Nodes[n].Block.Defs() {
			top.Add(v)
		}
	}
	view := loopView{c: c, comp: loop.Comp}
	p := invariantProblem{c: c, header: loop.Header, liveIn: liveIn, top: top}
	out := dataflow.Run[analysis.VarSet](view, p)

	result := analysis.VarSet{}
	for _, n := range loop.Comp.Nodes {
		result.Union(out[n])
	}
	return result
}

type invariantProblem struct {
	c      *cfg.Cfg
	header int
	liveIn analysis.VarSet
	top    analysis.VarSet
}

func (invariantProblem) Direction() dataflow.Direction { return dataflow.Forward }

func (p invariantProblem) InitIn(n int) analysis.VarSet {
	if n == p.header {
		return p.liveIn.Clone()
	}
	return p.top.Clone()
}

func (p invariantProblem) Transfer(n int, in analysis.VarSet) analysis.VarSet {
	if n == p.header {
		// The header's boundary ignores back-edge flow.
		in = p.liveIn
	}
	out := in.Clone()
	for _, inst := range p.c.Nodes[n].Block.Instrs {
		if inst.Dest != "" && hoistable(inst, out) {
			out.Add(inst.Dest)
		}
	}
	return out
}

func (p invariantProblem) Merge(flows []analysis.VarSet) analysis.VarSet {
	merged := flows[0].Clone()
	for _, f := range flows[1:] {
		for v := range merged {
			if !f.Has(v) {
				delete(merged, v)
			}
		}
	}
	return merged
}

func (invariantProblem) Equal(a, b analysis.VarSet) bool { return a.Equal(b) }

// loopView restricts the CFG to a component's members; edges crossing
// the boundary are invisible, which stands in for detaching them.
type loopView struct {
	c    *cfg.Cfg
	comp *analysis.Component
}

func (v loopView) NumNodes() int { return v.c.NumNodes() }

func (v loopView) Successors(n int) []int {
	if !v.comp.Contains(n) {
		return nil
	}
	return v.filter(v.c.Successors(n))
}

func (v loopView) Predecessors(n int) []int {
	if !v.comp.Contains(n) {
		return nil
	}
	return v.filter(v.c.Predecessors(n))
}

func (v loopView) filter(nodes []int) []int {
	var out []int
	for _, n := range nodes {
		if v.comp.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// topoSort orders the hoisted instructions so every definition precedes
// its uses, via DFS over the dependence graph restricted to the set.
func topoSort(insts []*bril.Instruction) []*bril.Instruction {
	byDest := map[string]*bril.Instruction{}
	for _, inst := range insts {
		byDest[inst.Dest] = inst
	}
	sort.Slice(insts, func(i, j int) bool { return insts[i].Dest < insts[j].Dest })

	var (
		order   []*bril.Instruction
		visited = map[*bril.Instruction]bool{}
		visit   func(inst *bril.Instruction)
	)
	visit = func(inst *bril.Instruction) {
		if visited[inst] {
			return
		}
		visited[inst] = true
		for _, arg := range inst.Args {
			if dep, ok := byDest[arg]; ok {
				visit(dep)
			}
		}
		order = append(order, inst)
	}
	for _, inst := range insts {
		visit(inst)
	}
	return order
}
