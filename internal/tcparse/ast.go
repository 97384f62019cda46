// Package tcparse implements the AST node type and the shift-reduce parser
// driver. A node owns its children through an ordered slice and carries a
// non-owning parent back-reference, so subtree lifetime is governed by a
// single owner while code holding any node (such as Root, used by the
// driver's Accept step) can still walk upward.
package tcparse

import (
	"strings"

	"github.com/dekarrin/toycompile/internal/tcgrammar"
	"github.com/dekarrin/toycompile/internal/tclex"
)

// Node is a single AST node. Children are owned by the node: Free recursively
// detaches them. Parent is a non-owning back-reference, nil at the root.
// Token is meaningful only for terminal (leaf) nodes.
type Node struct {
	Symbol   tcgrammar.Symbol
	Parent   *Node
	Children []*Node
	Token    tclex.Token
}

// NewLeaf creates a terminal AST node carrying the token that produced it.
func NewLeaf(sym tcgrammar.Symbol, tok tclex.Token) *Node {
	return &Node{Symbol: sym, Token: tok}
}

// NewInternal creates a non-terminal AST node and parents the given children
// under it, in left-to-right order, the way the driver's reduce step pops
// them off the node stack. The children slice is taken by reference and not
// copied; callers must not reuse it.
func NewInternal(sym tcgrammar.Symbol, children []*Node) *Node {
	n := &Node{Symbol: sym, Children: children}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

// Root walks up the parent chain from any node in the tree and returns the
// root; the driver's Accept step uses it to recover the finished tree from
// whatever node remains on the stack.
func (n *Node) Root() *Node {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// IsTerminal reports whether this node is a leaf produced directly from a
// token, as opposed to a reduction.
func (n *Node) IsTerminal() bool {
	return n.Symbol.Kind == tcgrammar.Terminal
}

// Free recursively detaches the subtree rooted at n, severing parent links
// so nothing outside the tree can still reach a freed node through a stray
// reference. Go's GC reclaims the memory once nothing else holds it; Free
// exists to make the ownership boundary explicit and catch use-after-free
// bugs during development (a nil Children/Parent after Free is a clear
// signal a caller held a node past its owner's lifetime).
func (n *Node) Free() {
	for _, c := range n.Children {
		c.Free()
	}
	n.Children = nil
	n.Parent = nil
}

// String renders the subtree with leveled tree prefixes, for diff-friendly
// test fixtures. -dump-ast output is rendered by tcdot.Dump instead.
func (n *Node) String() string {
	var sb strings.Builder
	n.leveledStr(&sb, "", "")
	return sb.String()
}

func (n *Node) leveledStr(sb *strings.Builder, firstPrefix, contPrefix string) {
	sb.WriteString(firstPrefix)
	if n.IsTerminal() {
		sb.WriteString("(TERM " + n.Symbol.Name + " " + stringQuote(n.Token.Content) + ")")
	} else {
		sb.WriteString("( " + n.Symbol.Name + " )")
	}

	for i, c := range n.Children {
		sb.WriteRune('\n')
		var lFirst, lCont string
		if i+1 < len(n.Children) {
			lFirst = contPrefix + "  |---: "
			lCont = contPrefix + "  |     "
		} else {
			lFirst = contPrefix + `  \---: `
			lCont = contPrefix + "        "
		}
		c.leveledStr(sb, lFirst, lCont)
	}
}

func stringQuote(s string) string {
	return "\"" + s + "\""
}
