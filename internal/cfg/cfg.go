package cfg

// Control-flow graphs over Bril functions. The graph owns its nodes in an
// arena; every link is a plain index into Nodes, so a node's identity is
// stable for the lifetime of the Cfg and analyses can key side tables on
// it. Emission order is tracked separately from identity: transforms that
// grow the graph append to the arena and splice the new index into Order.

import (
	"fmt"

	"brilt/internal/bril"
	brilterrors "brilt/internal/errors"
)

// FuncCtx carries the function signature a Cfg was built from. Analyses
// read it (entry boundary conditions); they never mutate it.
type FuncCtx struct {
	Name string
	Args []bril.Arg
	Type string
}

// ArgNames returns the argument names in declaration order.
func (f *FuncCtx) ArgNames() []string {
	names := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		names = append(names, a.Name)
	}
	return names
}

// Node is one CFG vertex. Succs and Preds are indices of sibling nodes
// within the owning Cfg.
type Node struct {
	Block *BasicBlock
	Succs []int
	Preds []int
}

// Cfg owns the nodes of one function's control-flow graph. Entry is the
// index of the entry node, which by invariant has no predecessors.
type Cfg struct {
	Fn    FuncCtx
	Nodes []*Node
	Order []int
	Entry int

	gen uint64
}

// FromFunction splits f into basic blocks, links successor and
// predecessor edges, and normalizes the entry. It fails with
// MalformedProgram when a terminator names a label that does not exist.
func FromFunction(f *bril.Function) (*Cfg, error) {
	blks := splitBlocks(f.Instrs)
	if len(blks) == 0 {
		blks = []*BasicBlock{{}}
	}

	byLabel := make(map[string]int)
	for i, b := range blks {
		if b.Label != "" {
			byLabel[b.Label] = i
		}
	}

	// Does anything jump at the first block? Then it needs a synthetic
	// entry in front of it so the entry keeps its no-predecessor
	// invariant.
	if entryTargeted(blks) {
		entry := &BasicBlock{Label: freshLabel("entry", byLabel)}
		blks = append([]*BasicBlock{entry}, blks...)
		byLabel = make(map[string]int)
		for i, b := range blks {
			if b.Label != "" {
				byLabel[b.Label] = i
			}
		}
	}

	c := &Cfg{
		Fn:    FuncCtx{Name: f.Name, Args: f.Args, Type: f.Type},
		Entry: 0,
	}
	for _, b := range blks {
		c.Nodes = append(c.Nodes, &Node{Block: b})
	}
	for i := range c.Nodes {
		c.Order = append(c.Order, i)
	}

	for i, n := range c.Nodes {
		if term := n.Block.Terminator(); term != nil {
			for _, label := range term.Labels {
				target, ok := byLabel[label]
				if !ok {
					return nil, brilterrors.MalformedProgramf(
						"function %s: %s targets unknown label .%s", f.Name, term.Op, label)
				}
				c.link(i, target)
			}
		} else if i < len(c.Nodes)-1 {
			// Fallthrough to the next block in order.
			c.link(i, i+1)
		}
	}
	return c, nil
}

func entryTargeted(blks []*BasicBlock) bool {
	if blks[0].Label == "" {
		return false
	}
	for _, b := range blks {
		if term := b.Terminator(); term != nil {
			for _, label := range term.Labels {
				if label == blks[0].Label {
					return true
				}
			}
		}
	}
	return false
}

func freshLabel(base string, taken map[string]int) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// FromProgram builds one Cfg per function.
func FromProgram(p *bril.Program) ([]*Cfg, error) {
	cfgs := make([]*Cfg, 0, len(p.Functions))
	for _, f := range p.Functions {
		c, err := FromFunction(f)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, c)
	}
	return cfgs, nil
}

// IntoFunction serializes the graph back to a flat function body,
// concatenating blocks in emission order and re-emitting labels.
func (c *Cfg) IntoFunction() *bril.Function {
	f := &bril.Function{
		Name: c.Fn.Name,
		Args: c.Fn.Args,
		Type: c.Fn.Type,
	}
	for _, i := range c.Order {
		blk := c.Nodes[i].Block
		if blk.Label != "" {
			f.Instrs = append(f.Instrs, &bril.Instruction{Label: blk.Label})
		}
		for _, inst := range blk.Instrs {
			f.Instrs = append(f.Instrs, inst.Clone())
		}
	}
	return f
}

// IntoProgram serializes a set of graphs back to a program, in order.
func IntoProgram(cfgs []*Cfg) *bril.Program {
	p := &bril.Program{}
	for _, c := range cfgs {
		p.Functions = append(p.Functions, c.IntoFunction())
	}
	return p
}

// NumNodes reports the arena size, including nodes a transform may have
// detached from the emission order.
func (c *Cfg) NumNodes() int { return len(c.Nodes) }

// Successors returns the successor indices of node n.
func (c *Cfg) Successors(n int) []int { return c.Nodes[n].Succs }

// Predecessors returns the predecessor indices of node n.
func (c *Cfg) Predecessors(n int) []int { return c.Nodes[n].Preds }

// Node returns the node at index i.
func (c *Cfg) Node(i int) *Node { return c.Nodes[i] }

// Generation counts structural mutations; cached analyses key on it.
func (c *Cfg) Generation() uint64 { return c.gen }

// Touch invalidates analyses cached against the current generation.
// Every transform that mutates the graph or its blocks must call it.
func (c *Cfg) Touch() { c.gen++ }

// AddNode appends a node to the arena without placing it in the emission
// order; the caller splices it via InsertBefore or PrependOrder.
func (c *Cfg) AddNode(blk *BasicBlock) int {
	c.Nodes = append(c.Nodes, &Node{Block: blk})
	c.Touch()
	return len(c.Nodes) - 1
}

// InsertBefore places arena node idx immediately before node at in the
// emission order.
func (c *Cfg) InsertBefore(idx, at int) {
	for i, o := range c.Order {
		if o == at {
			c.Order = append(c.Order[:i], append([]int{idx}, c.Order[i:]...)...)
			c.Touch()
			return
		}
	}
	panic(fmt.Sprintf("cfg: node %d not in emission order", at))
}

// PrependOrder places arena node idx first in the emission order.
func (c *Cfg) PrependOrder(idx int) {
	c.Order = append([]int{idx}, c.Order...)
	c.Touch()
}

func (c *Cfg) link(from, to int) {
	c.Nodes[from].Succs = append(c.Nodes[from].Succs, to)
	c.Nodes[to].Preds = append(c.Nodes[to].Preds, from)
}

// Link adds a from→to edge and its mirror predecessor entry.
func (c *Cfg) Link(from, to int) {
	c.link(from, to)
	c.Touch()
}

// Unlink removes the from→to edge and its mirror.
func (c *Cfg) Unlink(from, to int) {
	c.Nodes[from].Succs = removeIndex(c.Nodes[from].Succs, to)
	c.Nodes[to].Preds = removeIndex(c.Nodes[to].Preds, from)
	c.Touch()
}

func removeIndex(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// Label returns the label of node i, or "entry" for an unlabeled block.
// SSA renaming uses it as the mangling scope.
func (c *Cfg) Label(i int) string {
	if l := c.Nodes[i].Block.Label; l != "" {
		return l
	}
	return "entry"
}
