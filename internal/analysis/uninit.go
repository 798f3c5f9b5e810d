package analysis

import (
	"fmt"
	"strings"

	"brilt/internal/bril"
	"brilt/internal/cfg"
	"brilt/internal/dataflow"
	brilterrors "brilt/internal/errors"
)

// Uninitialized-variable detection: forward analysis over the two-point
// lattice {Init, Uninit} per variable, with Init ⊔ Uninit = Uninit.
// Arguments enter Init. A def whose every source is Init is Init; any
// other def is Uninit and the instruction is flagged.

type initState int

const (
	stateInit initState = iota
	stateUninit
)

type initEnv map[string]initState

type uninitProblem struct {
	c *cfg.Cfg
}

func (uninitProblem) Direction() dataflow.Direction { return dataflow.Forward }

func (p uninitProblem) InitIn(n int) initEnv {
	env := initEnv{}
	if n == p.c.Entry {
		for _, name := range p.c.Fn.ArgNames() {
			env[name] = stateInit
		}
	}
	return env
}

func (p uninitProblem) Transfer(n int, in initEnv) initEnv {
	env := make(initEnv, len(in))
	for v, s := range in {
		env[v] = s
	}
	walkInit(p.c.Node(n).Block, env, nil)
	return env
}

// walkInit steps the environment through a block. When flag is non-nil
// it receives (index, offending args) for every instruction that reads a
// name not known to be initialized.
func walkInit(blk *cfg.BasicBlock, env initEnv, flag func(idx int, vars []string)) {
	for i, inst := range blk.Instrs {
		var offending []string
		for _, arg := range inst.Args {
			if s, ok := env[arg]; !ok || s == stateUninit {
				offending = append(offending, arg)
			}
		}
		if len(offending) > 0 && flag != nil {
			flag(i, offending)
		}
		if inst.Dest == "" {
			continue
		}
		if inst.Op == bril.OpConst || len(offending) == 0 {
			env[inst.Dest] = stateInit
		} else {
			env[inst.Dest] = stateUninit
		}
	}
}

// Merge joins per-path environments. A name missing on any path may hold
// garbage there, so it joins to Uninit just like an explicit Uninit.
func (uninitProblem) Merge(flows []initEnv) initEnv {
	merged := initEnv{}
	seen := map[string]int{}
	for _, f := range flows {
		for v, s := range f {
			seen[v]++
			if s == stateUninit {
				merged[v] = stateUninit
			} else if _, ok := merged[v]; !ok {
				merged[v] = stateInit
			}
		}
	}
	for v, n := range seen {
		if n < len(flows) {
			merged[v] = stateUninit
		}
	}
	return merged
}

func (uninitProblem) Equal(a, b initEnv) bool {
	if len(a) != len(b) {
		return false
	}
	for v, s := range a {
		if o, ok := b[v]; !ok || o != s {
			return false
		}
	}
	return true
}

// UninitFinding flags one instruction that may read uninitialized names.
type UninitFinding struct {
	Node  int
	Label string
	Index int
	Vars  []string
}

// Uninitialized runs the detection and reports every flagged
// instruction, in block order then instruction order.
func Uninitialized(c *cfg.Cfg) []UninitFinding {
	p := uninitProblem{c}
	exits := dataflow.Run[initEnv](c, p)

	var findings []UninitFinding
	for _, n := range c.Order {
		var flows []initEnv
		for _, pred := range c.Predecessors(n) {
			if env, ok := exits[pred]; ok {
				flows = append(flows, env)
			}
		}
		env := p.InitIn(n)
		if len(flows) > 0 {
			env = p.Merge(flows)
		}
		node := n
		walkInit(c.Node(n).Block, env, func(idx int, vars []string) {
			findings = append(findings, UninitFinding{
				Node:  node,
				Label: c.Label(node),
				Index: idx,
				Vars:  vars,
			})
		})
	}
	return findings
}

// UninitReport wraps findings as a Diagnostic error, one line per
// offense keyed by block label and instruction index. Nil when clean.
func UninitReport(c *cfg.Cfg) error {
	findings := Uninitialized(c)
	if len(findings) == 0 {
		return nil
	}
	var lines []string
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf(
			"block %s, instr %d: variables [%s] may be uninitialized",
			f.Label, f.Index, strings.Join(f.Vars, ", ")))
	}
	return brilterrors.Diagnosticf("%s", strings.Join(lines, "\n"))
}
