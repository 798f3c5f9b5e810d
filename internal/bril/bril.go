package bril

// JSON model of the Bril intermediate language.
// Syntax reference: https://capra.cs.cornell.edu/bril/lang/syntax.html

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Program is a whole Bril program: a flat list of functions.
type Program struct {
	Functions []*Function `json:"functions"`
}

// Function is a named instruction sequence with optional typed arguments
// and an optional return type.
type Function struct {
	Name   string         `json:"name"`
	Args   []Arg          `json:"args,omitempty"`
	Type   string         `json:"type,omitempty"`
	Instrs []*Instruction `json:"instrs"`
}

// Arg is a typed function argument.
type Arg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Instruction is either a label marker (Label set, everything else empty)
// or an operation. Optional fields are omitted from JSON when absent.
type Instruction struct {
	Label  string   `json:"label,omitempty"`
	Op     string   `json:"op,omitempty"`
	Dest   string   `json:"dest,omitempty"`
	Type   string   `json:"type,omitempty"`
	Args   []string `json:"args,omitempty"`
	Funcs  []string `json:"funcs,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Value  *Value   `json:"value,omitempty"`
}

// Recognized opcodes. The set is open: an op not listed here is accepted
// and treated generically; with a destination it is value-numbered like
// arithmetic, so LVN may deduplicate it and DCE may drop it.
const (
	OpConst = "const"
	OpID    = "id"
	OpAdd   = "add"
	OpSub   = "sub"
	OpMul   = "mul"
	OpDiv   = "div"
	OpBr    = "br"
	OpJmp   = "jmp"
	OpCall  = "call"
	OpPrint = "print"
	OpRet   = "ret"

	// SSA-form markers, the dialect's replacement for phi nodes. A "get"
	// produces the value flowing into a join; "set" publishes a block's
	// definition for a downstream get.
	OpGet = "get"
	OpSet = "set"
)

// IsTerminatorOp reports whether op transfers control out of a block.
func IsTerminatorOp(op string) bool {
	return op == OpBr || op == OpJmp
}

// IsLabel reports whether the instruction is a label marker.
func (i *Instruction) IsLabel() bool {
	return i.Label != ""
}

// IsTerminator reports whether the instruction ends a basic block.
func (i *Instruction) IsTerminator() bool {
	return !i.IsLabel() && IsTerminatorOp(i.Op)
}

// Clone returns a deep copy of the instruction.
func (i *Instruction) Clone() *Instruction {
	c := &Instruction{
		Label: i.Label,
		Op:    i.Op,
		Dest:  i.Dest,
		Type:  i.Type,
	}
	if i.Args != nil {
		c.Args = append([]string(nil), i.Args...)
	}
	if i.Funcs != nil {
		c.Funcs = append([]string(nil), i.Funcs...)
	}
	if i.Labels != nil {
		c.Labels = append([]string(nil), i.Labels...)
	}
	if i.Value != nil {
		v := *i.Value
		c.Value = &v
	}
	return c
}

// Equal reports structural equality of two instructions.
func (i *Instruction) Equal(o *Instruction) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.Key() == o.Key()
}

// Key returns a canonical string for the instruction, usable as a map key.
// Two instructions are structurally equal iff their keys match.
func (i *Instruction) Key() string {
	var b strings.Builder
	b.WriteString(i.Label)
	b.WriteByte('|')
	b.WriteString(i.Op)
	b.WriteByte('|')
	b.WriteString(i.Dest)
	b.WriteByte('|')
	b.WriteString(i.Type)
	for _, a := range i.Args {
		b.WriteByte('|')
		b.WriteString(a)
	}
	b.WriteString("|f")
	for _, f := range i.Funcs {
		b.WriteByte('|')
		b.WriteString(f)
	}
	b.WriteString("|l")
	for _, l := range i.Labels {
		b.WriteByte('|')
		b.WriteString(l)
	}
	if i.Value != nil {
		b.WriteString("|v")
		b.WriteString(i.Value.String())
	}
	return b.String()
}

func (i *Instruction) String() string {
	if i.IsLabel() {
		return "." + i.Label + ":"
	}
	parts := []string{i.Op}
	if i.Dest != "" {
		parts = []string{i.Dest + ":", i.Type, "=", i.Op}
	}
	parts = append(parts, i.Args...)
	for _, f := range i.Funcs {
		parts = append(parts, "@"+f)
	}
	for _, l := range i.Labels {
		parts = append(parts, "."+l)
	}
	if i.Value != nil {
		parts = append(parts, i.Value.String())
	}
	return strings.Join(parts, " ")
}

// ParseProgram decodes a JSON-serialized Bril program.
func ParseProgram(data []byte) (*Program, error) {
	var p Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding bril program: %w", err)
	}
	return &p, nil
}

// ReadProgram decodes a JSON-serialized Bril program from r.
func ReadProgram(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseProgram(data)
}

// WriteJSON encodes the program as indented JSON.
func (p *Program) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ArgNames returns the names of the function's arguments.
func (f *Function) ArgNames() []string {
	names := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		names = append(names, a.Name)
	}
	return names
}
