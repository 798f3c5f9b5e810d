package cfg

import "brilt/internal/bril"

// BasicBlock is a straight-line instruction run. The leading label, when
// present, lives in Label rather than in Instrs; IntoFunction re-emits it.
type BasicBlock struct {
	Label  string
	Instrs []*bril.Instruction
}

// Terminator returns the block's trailing br/jmp, or nil when the block
// falls through.
func (b *BasicBlock) Terminator() *bril.Instruction {
	if n := len(b.Instrs); n > 0 && b.Instrs[n-1].IsTerminator() {
		return b.Instrs[n-1]
	}
	return nil
}

// Defs returns every name the block assigns.
func (b *BasicBlock) Defs() map[string]struct{} {
	defs := make(map[string]struct{})
	for _, inst := range b.Instrs {
		if inst.Dest != "" {
			defs[inst.Dest] = struct{}{}
		}
	}
	return defs
}

// UsedBeforeDef returns the names the block reads before writing them,
// i.e. the block's upward-exposed uses.
func (b *BasicBlock) UsedBeforeDef() map[string]struct{} {
	used := make(map[string]struct{})
	defed := make(map[string]struct{})
	for _, inst := range b.Instrs {
		for _, arg := range inst.Args {
			if _, ok := defed[arg]; !ok {
				used[arg] = struct{}{}
			}
		}
		if inst.Dest != "" {
			defed[inst.Dest] = struct{}{}
		}
	}
	return used
}

// splitBlocks cuts a function body into basic blocks: a label starts a
// new block, a terminator ends the current one. A label-only block is
// legal.
func splitBlocks(instrs []*bril.Instruction) []*BasicBlock {
	var blks []*BasicBlock
	cur := &BasicBlock{}
	flush := func(next *BasicBlock) {
		blks = append(blks, cur)
		cur = next
	}
	for _, inst := range instrs {
		switch {
		case inst.IsLabel():
			if cur.Label == "" && len(cur.Instrs) == 0 {
				cur.Label = inst.Label
			} else {
				flush(&BasicBlock{Label: inst.Label})
			}
		case inst.IsTerminator():
			cur.Instrs = append(cur.Instrs, inst.Clone())
			flush(&BasicBlock{})
		default:
			cur.Instrs = append(cur.Instrs, inst.Clone())
		}
	}
	if len(cur.Instrs) > 0 || cur.Label != "" {
		blks = append(blks, cur)
	}
	return blks
}
