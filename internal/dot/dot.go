// Package dot renders CFGs as Graphviz digraphs, one cluster per
// function, optionally overlaying the dominator tree.
package dot

import (
	"fmt"
	"strings"

	"brilt/internal/analysis"
	"brilt/internal/cfg"
)

// Render emits the program's CFGs as a single digraph with one cluster
// subgraph per function.
func Render(cfgs []*cfg.Cfg) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	for i, c := range cfgs {
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&b, "    label = \"@%s\";\n", c.Fn.Name)
		b.WriteString("    labelloc = \"t\";\n")
		b.WriteString("    labeljust = \"l\";\n")
		b.WriteString("    fontcolor = \"brown\";\n")
		b.WriteString("    node [shape = box];\n")
		writeNodes(&b, c, func(n int) string { return fmt.Sprintf("%s_%d", c.Fn.Name, n) }, nil)
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// RenderWithDom renders one CFG plus dashed dominator-tree edges.
func RenderWithDom(c *cfg.Cfg, t *analysis.DomTree) string {
	var b strings.Builder
	b.WriteString("digraph CFG {\n")
	b.WriteString("  node [shape = box];\n")
	writeNodes(&b, c, func(n int) string { return fmt.Sprintf("n%d", n) }, t)
	b.WriteString("}\n")
	return b.String()
}

func writeNodes(b *strings.Builder, c *cfg.Cfg, id func(int) string, t *analysis.DomTree) {
	for _, n := range c.Order {
		fmt.Fprintf(b, "    %s [label = \"%s\"];\n", id(n), caption(c, n))
	}
	for _, n := range c.Order {
		for _, s := range c.Successors(n) {
			fmt.Fprintf(b, "    %s -> %s;\n", id(n), id(s))
		}
	}
	if t != nil {
		t.Preorder(func(dn *analysis.DomNode) {
			for _, child := range dn.Children {
				fmt.Fprintf(b, "    %s -> %s [style = dashed, color = gray];\n",
					id(dn.Index), id(child.Index))
			}
		})
	}
}

// caption shows the block label and its first two non-label ops.
func caption(c *cfg.Cfg, n int) string {
	blk := c.Nodes[n].Block
	var parts []string
	if blk.Label != "" {
		parts = append(parts, "."+blk.Label)
	}
	for i, inst := range blk.Instrs {
		if i == 2 {
			break
		}
		parts = append(parts, inst.Op)
	}
	return strings.Join(parts, `\n`)
}
