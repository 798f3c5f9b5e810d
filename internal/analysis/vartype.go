package analysis

import (
	"sync"

	"brilt/internal/cfg"
	"brilt/internal/dataflow"
	brilterrors "brilt/internal/errors"
)

// Variable-type propagation: forward analysis building a partial map
// from name to type string. Two paths disagreeing on a variable's type
// denote malformed input IR and surface as InvariantViolation.

// TypeEnv maps variable names to Bril type strings.
type TypeEnv map[string]string

type varTypeProblem struct {
	c *cfg.Cfg

	mu       sync.Mutex
	conflict *brilterrors.Error
}

func (*varTypeProblem) Direction() dataflow.Direction { return dataflow.Forward }

func (p *varTypeProblem) InitIn(n int) TypeEnv {
	env := TypeEnv{}
	if n == p.c.Entry {
		for _, a := range p.c.Fn.Args {
			env[a.Name] = a.Type
		}
	}
	return env
}

func (p *varTypeProblem) Transfer(n int, in TypeEnv) TypeEnv {
	env := make(TypeEnv, len(in))
	for v, ty := range in {
		env[v] = ty
	}
	for _, inst := range p.c.Node(n).Block.Instrs {
		if inst.Dest != "" && inst.Type != "" {
			env[inst.Dest] = inst.Type
		}
	}
	return env
}

func (p *varTypeProblem) Merge(flows []TypeEnv) TypeEnv {
	merged := TypeEnv{}
	for _, f := range flows {
		for v, ty := range f {
			if prev, ok := merged[v]; ok && prev != ty {
				p.mu.Lock()
				if p.conflict == nil {
					p.conflict = brilterrors.InvariantViolationf(
						"variable %s typed %s on one path and %s on another", v, prev, ty)
				}
				p.mu.Unlock()
				continue
			}
			merged[v] = ty
		}
	}
	return merged
}

func (*varTypeProblem) Equal(a, b TypeEnv) bool {
	if len(a) != len(b) {
		return false
	}
	for v, ty := range a {
		if o, ok := b[v]; !ok || o != ty {
			return false
		}
	}
	return true
}

// VarTypes computes the type environment at each node's exit. It fails
// with InvariantViolation when two paths type a variable inconsistently.
func VarTypes(c *cfg.Cfg) (map[int]TypeEnv, error) {
	p := &varTypeProblem{c: c}
	out := dataflow.Run[TypeEnv](c, p)
	if p.conflict != nil {
		return nil, p.conflict
	}
	return out, nil
}

// TypesAtEntry reduces the fixed point to the environment flowing into
// each node: the merge of predecessor exits, or the boundary value at
// the entry.
func TypesAtEntry(c *cfg.Cfg) (map[int]TypeEnv, error) {
	p := &varTypeProblem{c: c}
	exits := dataflow.Run[TypeEnv](c, p)
	if p.conflict != nil {
		return nil, p.conflict
	}
	result := make(map[int]TypeEnv, c.NumNodes())
	for n := 0; n < c.NumNodes(); n++ {
		var flows []TypeEnv
		for _, pred := range c.Predecessors(n) {
			if env, ok := exits[pred]; ok {
				flows = append(flows, env)
			}
		}
		if len(flows) > 0 {
			result[n] = p.Merge(flows)
		} else {
			result[n] = p.InitIn(n)
		}
	}
	if p.conflict != nil {
		return nil, p.conflict
	}
	return result, nil
}
