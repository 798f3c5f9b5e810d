package ssa

import (
	"fmt"

	"brilt/internal/bril"
	"brilt/internal/cfg"
)

// OutOfSSA rewrites c back out of the get/set dialect: every get is
// dropped (remembering its destination's type) and every
// `set v_remote, v_local` becomes `v_remote: ty = id v_local`.
func OutOfSSA(c *cfg.Cfg) {
	getTys := map[string]string{}
	for _, node := range c.Nodes {
		for _, inst := range node.Block.Instrs {
			if inst.Op == bril.OpGet {
				if _, dup := getTys[inst.Dest]; dup {
					panic(fmt.Sprintf("duplicate get destination %s", inst.Dest))
				}
				getTys[inst.Dest] = inst.Type
			}
		}
	}

	for _, node := range c.Nodes {
		kept := node.Block.Instrs[:0]
		for _, inst := range node.Block.Instrs {
			switch inst.Op {
			case bril.OpGet:
				continue
			case bril.OpSet:
				remote, local := inst.Args[0], inst.Args[1]
				ty, ok := getTys[remote]
				if !ok {
					panic(fmt.Sprintf("set names %s but no get defines it", remote))
				}
				inst.Op = bril.OpID
				inst.Dest = remote
				inst.Type = ty
				inst.Args = []string{local}
			}
			kept = append(kept, inst)
		}
		node.Block.Instrs = kept
	}
	c.Touch()
}
