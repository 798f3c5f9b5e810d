// Package ssa converts CFGs into and out of the get/set SSA dialect.
// Instead of phi functions, a join block reads its merged value with a
// `get` and every reaching definition publishes its side with a `set`
// placed before the source block's terminator.
package ssa

import (
	"fmt"
	"sort"

	"brilt/internal/analysis"
	"brilt/internal/bril"
	"brilt/internal/cfg"
	"brilt/internal/dataflow"
)

// perBlock caches everything the insertion phase needs about one node.
type perBlock struct {
	// renamedLiveIn maps an original live-in name to its reserved local
	// name <label>.<name>.0, claimed by the first use in the block.
	renamedLiveIn map[string]string
	// renamedLiveOut maps an original name to the mangled name holding
	// its final value at the block's exit.
	renamedLiveOut map[string]string
	// reachDef maps a live-in name to the nodes whose exit defined it.
	reachDef map[string]analysis.NodeSet
	// liveInTy types the live-ins, from variable-type propagation.
	liveInTy analysis.TypeEnv
	// mayShadow holds live-ins with two or more reaching definitions.
	mayShadow analysis.VarSet
}

// IntoSSA rewrites c into SSA form in place. Every variable has exactly
// one static definition afterwards; cross-block flow of conflicting
// definitions is explicit in get/set pairs.
func IntoSSA(c *cfg.Cfg) error {
	ensureUnlabeledEntry(c)

	liveInTys, err := analysis.TypesAtEntry(c)
	if err != nil {
		return err
	}

	sources := dataflow.Run[reachEnv](c, reachDefSources{c})
	cache := make(map[int]*perBlock, c.NumNodes())
	for n := 0; n < c.NumNodes(); n++ {
		pb := &perBlock{
			reachDef:  make(map[string]analysis.NodeSet),
			liveInTy:  liveInTys[n],
			mayShadow: analysis.VarSet{},
		}
		for _, pred := range c.Predecessors(n) {
			for v, from := range sources[pred] {
				if pb.reachDef[v] == nil {
					pb.reachDef[v] = analysis.NodeSet{}
				}
				for src := range from {
					pb.reachDef[v].Add(src)
				}
			}
		}
		for v, from := range pb.reachDef {
			if len(from) > 1 {
				pb.mayShadow.Add(v)
			}
		}
		cache[n] = pb
	}

	for n := 0; n < c.NumNodes(); n++ {
		in, out := renameLocals(c.Nodes[n].Block, c.Label(n))
		cache[n].renamedLiveIn = in
		cache[n].renamedLiveOut = out
	}
	c.Touch()

	// A shadowed live-in that is used but never overwritten still has to
	// publish a value: its final name is the get destination itself.
	for _, pb := range cache {
		for v := range pb.mayShadow {
			if local, ok := pb.renamedLiveIn[v]; ok {
				if _, overwritten := pb.renamedLiveOut[v]; !overwritten {
					pb.renamedLiveOut[v] = local
				}
			}
		}
	}

	t := analysis.BuildDomTree(c)
	inherited := map[string]string{}
	for _, a := range c.Fn.Args {
		inherited[a.Name] = a.Name
	}
	walkDomTree(c, cache, t.Root, inherited)

	insertSets(c, cache)
	c.Touch()
	return nil
}

// ensureUnlabeledEntry prepends a block copying each argument to itself
// when the entry carries a label (so it can be a jump target) and the
// function has arguments. After renaming, argument values then flow from
// a block that no edge can reach.
func ensureUnlabeledEntry(c *cfg.Cfg) {
	if c.Nodes[c.Entry].Block.Label == "" || len(c.Fn.Args) == 0 {
		return
	}
	blk := &cfg.BasicBlock{}
	for _, a := range c.Fn.Args {
		blk.Instrs = append(blk.Instrs, &bril.Instruction{
			Op:   bril.OpID,
			Dest: a.Name,
			Type: a.Type,
			Args: []string{a.Name},
		})
	}
	idx := c.AddNode(blk)
	c.Link(idx, c.Entry)
	c.PrependOrder(idx)
	c.Entry = idx
}

// walkDomTree carries the inherited naming (original name → current
// canonical SSA name) down the dominator tree. At each block it resolves
// non-shadowed live-in uses to the inherited names and materializes a
// get for every shadowed one.
func walkDomTree(c *cfg.Cfg, cache map[int]*perBlock, node *analysis.DomNode, inherited map[string]string) {
	n := node.Index
	pb := cache[n]

	resolve := make(map[string]string, len(pb.renamedLiveIn))
	for v, local := range pb.renamedLiveIn {
		if pb.mayShadow.Has(v) {
			resolve[v] = local
		} else if name, ok := inherited[v]; ok {
			resolve[v] = name
		} else {
			resolve[v] = local
		}
	}
	for _, inst := range c.Nodes[n].Block.Instrs {
		for i, arg := range inst.Args {
			if name, ok := resolve[arg]; ok {
				inst.Args[i] = name
			}
		}
	}

	var gets []*bril.Instruction
	for _, v := range pb.mayShadow.Sorted() {
		local, ok := pb.renamedLiveIn[v]
		if !ok {
			continue
		}
		ty, ok := pb.liveInTy[v]
		if !ok {
			panic(fmt.Sprintf("no type for shadowed live-in %s at block %s", v, c.Label(n)))
		}
		gets = append(gets, &bril.Instruction{Op: bril.OpGet, Dest: local, Type: ty})
	}
	blk := c.Nodes[n].Block
	blk.Instrs = append(gets, blk.Instrs...)

	next := make(map[string]string, len(inherited)+len(pb.renamedLiveOut))
	for v, name := range inherited {
		next[v] = name
	}
	for v, name := range pb.renamedLiveOut {
		next[v] = name
	}
	for _, child := range node.Children {
		walkDomTree(c, cache, child, next)
	}
}

// insertSets registers one set per (join, shadowed live-in, reaching
// source) triple and splices them before each source's terminator in a
// deterministic order.
func insertSets(c *cfg.Cfg, cache map[int]*perBlock) {
	pending := make(map[int][]*bril.Instruction)
	for n := 0; n < c.NumNodes(); n++ {
		pb := cache[n]
		for _, v := range pb.mayShadow.Sorted() {
			remote, ok := pb.renamedLiveIn[v]
			if !ok {
				continue
			}
			for src := range pb.reachDef[v] {
				pending[src] = append(pending[src], &bril.Instruction{
					Op:   bril.OpSet,
					Args: []string{remote, canonicalAt(c, cache, src, v)},
				})
			}
		}
	}
	for src, sets := range pending {
		sort.Slice(sets, func(i, j int) bool {
			if sets[i].Args[0] != sets[j].Args[0] {
				return sets[i].Args[0] < sets[j].Args[0]
			}
			return sets[i].Args[1] < sets[j].Args[1]
		})
		sets = dedupeSets(sets)
		blk := c.Nodes[src].Block
		if term := blk.Terminator(); term != nil {
			at := len(blk.Instrs) - 1
			blk.Instrs = append(blk.Instrs[:at:at], append(sets, term)...)
		} else {
			blk.Instrs = append(blk.Instrs, sets...)
		}
	}
}

func dedupeSets(sets []*bril.Instruction) []*bril.Instruction {
	out := sets[:0]
	for i, s := range sets {
		if i == 0 || !s.Equal(sets[i-1]) {
			out = append(out, s)
		}
	}
	return out
}

// canonicalAt names the value of v flowing out of node src: the mangled
// live-out when src redefined it, else the bare argument name at the
// entry.
func canonicalAt(c *cfg.Cfg, cache map[int]*perBlock, src int, v string) string {
	if name, ok := cache[src].renamedLiveOut[v]; ok {
		return name
	}
	if src != c.Entry {
		panic(fmt.Sprintf("no canonical name for %s at non-entry block %s", v, c.Label(src)))
	}
	return v
}

// renameLocals rewrites one block so every definition gets a unique
// mangled name <label>.<name>.<idx>. The first use of a live-in reserves
// index 0 for the incoming value, so local definitions of that name
// start at 1; names never used before being defined start at 0.
func renameLocals(blk *cfg.BasicBlock, label string) (liveIn, liveOut map[string]string) {
	next := map[string]int{}
	liveIn = map[string]string{}
	for _, inst := range blk.Instrs {
		for i, arg := range inst.Args {
			if n, ok := next[arg]; ok {
				inst.Args[i] = mangle(label, arg, n-1)
			} else if _, seen := liveIn[arg]; !seen {
				liveIn[arg] = mangle(label, arg, 0)
			}
		}
		if inst.Dest != "" {
			n, ok := next[inst.Dest]
			if !ok {
				if _, isLiveIn := liveIn[inst.Dest]; isLiveIn {
					n = 1
				}
			}
			orig := inst.Dest
			inst.Dest = mangle(label, orig, n)
			next[orig] = n + 1
		}
	}
	liveOut = make(map[string]string, len(next))
	for name, n := range next {
		liveOut[name] = mangle(label, name, n-1)
	}
	return liveIn, liveOut
}

func mangle(label, name string, idx int) string {
	return fmt.Sprintf("%s.%s.%d", label, name, idx)
}

// reachEnv maps a variable to the set of nodes whose exit defines it.
type reachEnv map[string]analysis.NodeSet

// reachDefSources is reaching definitions with label provenance: the
// forward fixed point tracks, per name, which blocks own its reaching
// value. A block that uses a multiply-defined live-in becomes the sole
// source downstream, since the get inserted there re-defines the name.
type reachDefSources struct {
	c *cfg.Cfg
}

func (reachDefSources) Direction() dataflow.Direction { return dataflow.Forward }

func (p reachDefSources) InitIn(n int) reachEnv {
	env := reachEnv{}
	if n == p.c.Entry {
		for _, name := range p.c.Fn.ArgNames() {
			env[name] = analysis.NodeSet{n: struct{}{}}
		}
	}
	return env
}

func (p reachDefSources) Transfer(n int, in reachEnv) reachEnv {
	blk := p.c.Node(n).Block
	usedBeforeDef := blk.UsedBeforeDef()

	env := make(reachEnv, len(in))
	for v, from := range in {
		if len(from) > 1 {
			if _, used := usedBeforeDef[v]; used {
				env[v] = analysis.NodeSet{n: struct{}{}}
				continue
			}
		}
		env[v] = from.Clone()
	}
	for v := range blk.Defs() {
		env[v] = analysis.NodeSet{n: struct{}{}}
	}
	return env
}

func (reachDefSources) Merge(flows []reachEnv) reachEnv {
	merged := reachEnv{}
	for _, f := range flows {
		for v, from := range f {
			if merged[v] == nil {
				merged[v] = analysis.NodeSet{}
			}
			for n := range from {
				merged[v].Add(n)
			}
		}
	}
	return merged
}

func (reachDefSources) Equal(a, b reachEnv) bool {
	if len(a) != len(b) {
		return false
	}
	for v, from := range a {
		o, ok := b[v]
		if !ok || !from.Equal(o) {
			return false
		}
	}
	return true
}
