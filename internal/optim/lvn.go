package optim

// Local value numbering over a single basic block: canonicalize each
// computed value, reuse earlier computations through id, and optionally
// fold constants. Calls are always opaque.

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"brilt/internal/bril"
	"brilt/internal/cfg"
)

// numEntry is one row of the numbering table: the value number, the
// variable canonically holding it, and the literal when known.
type numEntry struct {
	numbering int
	canonical string
	lit       *bril.Value
}

// Numbering is the per-block value-numbering context.
type Numbering struct {
	numTable map[string]*numEntry
	var2num  map[string]*numEntry
	next     int
	folding  bool
}

// NewNumbering builds an empty context; fold enables constant folding.
func NewNumbering(fold bool) *Numbering {
	return &Numbering{
		numTable: map[string]*numEntry{},
		var2num:  map[string]*numEntry{},
		folding:  fold,
	}
}

// SeedConstants pre-binds known-constant variables, enabling folding
// against values that reached the block from elsewhere.
func (nc *Numbering) SeedConstants(consts map[string]bril.Value) {
	nc.folding = true
	names := make([]string, 0, len(consts))
	for v := range consts {
		names = append(names, v)
	}
	sort.Strings(names)
	for _, v := range names {
		lit := consts[v]
		nc.var2num[v] = &numEntry{numbering: nc.next, canonical: v, lit: &lit}
		nc.next++
	}
}

// renameCounter feeds the conservative pre-pass; the seed is arbitrary
// but stable.
var renameCounter atomic.Uint64

func init() { renameCounter.Store(7654) }

func mangleTemp(name string) string {
	return fmt.Sprintf("__%s_%d", name, renameCounter.Add(1)-1)
}

// ConservativeRename rewrites every destination that is reassigned later
// in the block to a unique name, along with the uses in between. After
// it, each destination is assigned at most once, so numbering cannot
// alias a reassigned value. Live-in names that the block never assigns
// are left alone.
func ConservativeRename(blk *cfg.BasicBlock) {
	type use struct{ inst, arg int }
	pending := map[string][]use{}

	for i := len(blk.Instrs) - 1; i >= 0; i-- {
		inst := blk.Instrs[i]
		if inst.Dest != "" {
			if uses, seen := pending[inst.Dest]; seen {
				// An assignment below reuses this name: mangle this def
				// and the uses recorded in between. The last assignment
				// keeps the external name.
				mangled := mangleTemp(inst.Dest)
				for _, u := range uses {
					blk.Instrs[u.inst].Args[u.arg] = mangled
				}
				orig := inst.Dest
				inst.Dest = mangled
				pending[orig] = nil
			} else {
				pending[inst.Dest] = nil
			}
		}
		for ai, arg := range inst.Args {
			if _, seen := pending[arg]; seen {
				pending[arg] = append(pending[arg], use{inst: i, arg: ai})
			}
		}
	}
}

// Run numbers the block in place.
func (nc *Numbering) Run(blk *cfg.BasicBlock) {
	for _, inst := range blk.Instrs {
		switch {
		case inst.Op == bril.OpConst:
			nc.var2num[inst.Dest] = &numEntry{
				numbering: nc.next,
				canonical: inst.Dest,
				lit:       inst.Value,
			}
			nc.next++

		case inst.Op == bril.OpID:
			arg := inst.Args[0]
			if entry, ok := nc.var2num[arg]; ok {
				if nc.folding && entry.lit != nil {
					rewriteToConst(inst, *entry.lit)
				} else {
					inst.Args = []string{entry.canonical}
				}
				nc.var2num[inst.Dest] = entry
			} else {
				// Value flows in from an ancestor block: nothing to
				// canonicalize, just bind a fresh number.
				nc.var2num[inst.Dest] = &numEntry{
					numbering: nc.next,
					canonical: arg,
				}
				nc.next++
			}

		case inst.Op == bril.OpSet:
			// SSA markers: a set's first operand names a remote join, not
			// a value read here. Leave it alone.

		case inst.Dest != "" && (inst.Op == bril.OpCall || inst.Op == bril.OpGet):
			// A call may return different values for identical operand
			// tuples, and every get merges a different join; never
			// deduplicate either.
			nc.var2num[inst.Dest] = &numEntry{
				numbering: nc.next,
				canonical: inst.Dest,
			}
			nc.next++

		case inst.Dest != "":
			key := nc.canonKey(inst.Op, inst.Args)
			if entry, ok := nc.numTable[key]; ok {
				if nc.folding && entry.lit != nil {
					rewriteToConst(inst, *entry.lit)
				} else {
					inst.Op = bril.OpID
					inst.Args = []string{entry.canonical}
				}
				nc.var2num[inst.Dest] = entry
				continue
			}
			var lit *bril.Value
			if nc.folding {
				lit = nc.tryFold(inst.Op, inst.Args)
			}
			entry := &numEntry{numbering: nc.next, canonical: inst.Dest, lit: lit}
			nc.var2num[inst.Dest] = entry
			nc.numTable[key] = entry
			nc.next++
			if lit != nil {
				rewriteToConst(inst, *lit)
			} else {
				nc.canonicalizeArgs(inst)
			}

		case len(inst.Args) > 0:
			// Effect instructions still read canonical variables.
			nc.canonicalizeArgs(inst)
		}
	}
}

func rewriteToConst(inst *bril.Instruction, lit bril.Value) {
	inst.Op = bril.OpConst
	inst.Args = nil
	v := lit
	inst.Value = &v
}

func (nc *Numbering) canonicalizeArgs(inst *bril.Instruction) {
	for i, arg := range inst.Args {
		if entry, ok := nc.var2num[arg]; ok {
			inst.Args[i] = entry.canonical
		}
	}
}

// canonKey forms the canonical expression key: op plus renumbered args,
// sorted for the commutative ops so add a b and add b a collide.
func (nc *Numbering) canonKey(op string, args []string) string {
	renumbered := make([]string, len(args))
	for i, arg := range args {
		if entry, ok := nc.var2num[arg]; ok {
			renumbered[i] = fmt.Sprintf("#%d", entry.numbering)
		} else {
			renumbered[i] = arg
		}
	}
	if op == bril.OpAdd || op == bril.OpMul {
		sort.Strings(renumbered)
	}
	return op + "(" + strings.Join(renumbered, ",") + ")"
}

// tryFold evaluates op over the literal bindings of args. Only i32
// arithmetic folds; a zero divisor refuses.
func (nc *Numbering) tryFold(op string, args []string) *bril.Value {
	lits := make([]bril.Value, len(args))
	for i, arg := range args {
		entry, ok := nc.var2num[arg]
		if !ok || entry.lit == nil {
			return nil
		}
		lits[i] = *entry.lit
	}
	if op == bril.OpID && len(lits) == 1 {
		v := lits[0]
		return &v
	}
	if len(lits) != 2 || lits[0].Kind != bril.IntValue || lits[1].Kind != bril.IntValue {
		return nil
	}
	a, b := lits[0].Int, lits[1].Int
	var r int32
	switch op {
	case bril.OpAdd:
		r = a + b
	case bril.OpSub:
		r = a - b
	case bril.OpMul:
		r = a * b
	case bril.OpDiv:
		if b == 0 {
			return nil
		}
		r = a / b
	default:
		return nil
	}
	v := bril.Int32(r)
	return &v
}

// LVNBlock runs conservative renaming then value numbering over one
// block. consts may seed cross-block constants; nil disables seeding.
func LVNBlock(blk *cfg.BasicBlock, fold bool, consts map[string]bril.Value) {
	ConservativeRename(blk)
	nc := NewNumbering(fold)
	if consts != nil {
		nc.SeedConstants(consts)
	}
	nc.Run(blk)
}
