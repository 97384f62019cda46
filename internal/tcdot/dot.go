// Package tcdot renders an AST as a Graphviz DOT digraph for the CLI's
// -dot-file output. Each node's label is a stable per-dump sequence number
// followed by its symbol name and, for terminals, the token content and
// (row, col).
package tcdot

import (
	"fmt"
	"strings"

	"github.com/dekarrin/toycompile/internal/tcparse"
)

// Dump renders root's subtree as a `digraph G1 { ... }` document, one edge
// per parent/child relationship, children emitted before their parent's
// own incoming edge.
func Dump(root *tcparse.Node) string {
	var sb strings.Builder
	sb.WriteString("digraph G1 {\n")

	ids := make(map[*tcparse.Node]int)
	next := 0
	nodeID := func(n *tcparse.Node) int {
		if id, ok := ids[n]; ok {
			return id
		}
		id := next
		next++
		ids[n] = id
		return id
	}

	var walk func(n *tcparse.Node)
	walk = func(n *tcparse.Node) {
		for _, c := range n.Children {
			walk(c)
		}
		if n.Parent != nil {
			sb.WriteString(label(n.Parent, nodeID(n.Parent)))
			sb.WriteString(" -> ")
			sb.WriteString(label(n, nodeID(n)))
			sb.WriteString(";\n")
		}
	}
	walk(root)

	sb.WriteString("}\n")
	return sb.String()
}

func label(n *tcparse.Node, id int) string {
	s := fmt.Sprintf("\"addr%d\\n%s", id, n.Symbol.Name)
	if n.IsTerminal() {
		s += "\\n" + escape(n.Token.Content)
		s += fmt.Sprintf("\\n(%d, %d)", n.Token.Row, n.Token.Col)
	}
	return s + "\""
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
