// Package parser turns textual Bril into the JSON IR model.
package parser

import (
	"os"
	"strconv"
	"strings"

	"brilt/grammar"
	"brilt/internal/bril"
	brilterrors "brilt/internal/errors"
)

// ParseFile parses a textual Bril file.
func ParseFile(path string) (*bril.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(path, string(source))
}

// ParseSource parses textual Bril source into a program.
func ParseSource(sourceName, source string) (*bril.Program, error) {
	ast, err := grammar.Parse(sourceName, source)
	if err != nil {
		return nil, brilterrors.MalformedProgramf("%s", err)
	}
	return lower(ast)
}

func lower(ast *grammar.Program) (*bril.Program, error) {
	p := &bril.Program{}
	for _, f := range ast.Functions {
		fn := &bril.Function{
			Name: strings.TrimPrefix(f.Name, "@"),
			Type: f.Type,
		}
		for _, param := range f.Params {
			fn.Args = append(fn.Args, bril.Arg{Name: param.Name, Type: param.Type})
		}
		for _, line := range f.Lines {
			if line.Label != nil {
				fn.Instrs = append(fn.Instrs, &bril.Instruction{
					Label: strings.TrimPrefix(line.Label.Name, "."),
				})
				continue
			}
			inst, err := lowerInstr(fn.Name, line.Instr)
			if err != nil {
				return nil, err
			}
			fn.Instrs = append(fn.Instrs, inst)
		}
		p.Functions = append(p.Functions, fn)
	}
	return p, nil
}

func lowerInstr(fn string, in *grammar.Instr) (*bril.Instruction, error) {
	inst := &bril.Instruction{Op: in.Op}
	if in.Assign != nil {
		inst.Dest = in.Assign.Dest
		inst.Type = in.Assign.Type
	}
	for _, operand := range in.Operands {
		switch {
		case operand.Func != nil:
			inst.Funcs = append(inst.Funcs, strings.TrimPrefix(*operand.Func, "@"))
		case operand.Label != nil:
			inst.Labels = append(inst.Labels, strings.TrimPrefix(*operand.Label, "."))
		case operand.Integer != nil:
			if in.Op != bril.OpConst {
				return nil, brilterrors.MalformedProgramf(
					"function %s: integer literal as operand of %s", fn, in.Op)
			}
			n, err := strconv.ParseInt(*operand.Integer, 10, 32)
			if err != nil {
				return nil, brilterrors.MalformedProgramf(
					"function %s: literal %s out of i32 range", fn, *operand.Integer)
			}
			v := bril.Int32(int32(n))
			inst.Value = &v
		case operand.Ident != nil:
			name := *operand.Ident
			if in.Op == bril.OpConst && (name == "true" || name == "false") {
				v := bril.BoolOf(name == "true")
				inst.Value = &v
				continue
			}
			inst.Args = append(inst.Args, name)
		}
	}
	if in.Op == bril.OpConst && inst.Value == nil {
		return nil, brilterrors.MalformedProgramf("function %s: const without a literal", fn)
	}
	return inst, nil
}
