package parser

import (
	"fmt"
	"strings"

	"brilt/internal/bril"
)

// Print emits the canonical text form of a program, the inverse of
// ParseSource up to whitespace.
func Print(p *bril.Program) string {
	var b strings.Builder
	for i, f := range p.Functions {
		if i > 0 {
			b.WriteByte('\n')
		}
		printFunction(&b, f)
	}
	return b.String()
}

func printFunction(b *strings.Builder, f *bril.Function) {
	fmt.Fprintf(b, "@%s", f.Name)
	if len(f.Args) > 0 {
		var params []string
		for _, a := range f.Args {
			params = append(params, fmt.Sprintf("%s: %s", a.Name, a.Type))
		}
		fmt.Fprintf(b, "(%s)", strings.Join(params, ", "))
	}
	if f.Type != "" {
		fmt.Fprintf(b, ": %s", f.Type)
	}
	b.WriteString(" {\n")
	for _, inst := range f.Instrs {
		if inst.IsLabel() {
			fmt.Fprintf(b, ".%s:\n", inst.Label)
			continue
		}
		b.WriteString("  ")
		if inst.Dest != "" {
			fmt.Fprintf(b, "%s: %s = ", inst.Dest, inst.Type)
		}
		b.WriteString(inst.Op)
		for _, a := range inst.Args {
			b.WriteString(" " + a)
		}
		for _, fn := range inst.Funcs {
			b.WriteString(" @" + fn)
		}
		for _, l := range inst.Labels {
			b.WriteString(" ." + l)
		}
		if inst.Value != nil {
			b.WriteString(" " + inst.Value.String())
		}
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
}
