package tcir_test

import (
	"github.com/dekarrin/toycompile/internal/tcgrammar"
	"github.com/dekarrin/toycompile/internal/tclex"
	"github.com/dekarrin/toycompile/internal/tcparse"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// These helpers hand-build AST fragments matching the shapes the real
// grammar (resources/c_subset.tcey) produces, without driving the lexer,
// grammar loader, or LR(1) table through tcparse.Parser — exercising the IR
// emitter's AST-walk logic directly and in isolation from the rest of the
// pipeline.

func nt(name string, children ...*tcparse.Node) *tcparse.Node {
	return tcparse.NewInternal(tcgrammar.Symbol{Name: name, Kind: tcgrammar.NonTerminal}, children)
}

func leaf(name string, kind tctoken.Kind, content string) *tcparse.Node {
	return tcparse.NewLeaf(tcgrammar.Symbol{Name: name, Kind: tcgrammar.Terminal, TokenKind: kind},
		tclex.Token{Kind: kind, Content: content, Row: 1, Col: 1})
}

func kw(kind tctoken.Kind) *tcparse.Node {
	lit, _ := kind.Literal()
	return leaf(lit, kind, lit)
}

func punct(kind tctoken.Kind) *tcparse.Node {
	lit, _ := kind.Literal()
	return leaf(lit, kind, lit)
}

func ident(name string) *tcparse.Node {
	return leaf("IDENT", tctoken.Identifier, name)
}

func num(v string) *tcparse.Node {
	return leaf("NUM", tctoken.NumericConstant, v)
}

func chain(start *tcparse.Node, names ...string) *tcparse.Node {
	cur := start
	for _, n := range names {
		cur = nt(n, cur)
	}
	return cur
}

// assignChain wraps a primary-expression leaf through the passthrough
// precedence chain up to `assignment_expression`, the level function-call
// arguments sit at in the real grammar.
func assignChain(primaryLeaf *tcparse.Node) *tcparse.Node {
	return chain(nt("primary_expression", primaryLeaf),
		"postfix_expression", "unary_expression", "cast_expression",
		"multiplicative_expression", "additive_expression", "relational_expression",
		"equality_expression", "and_expression", "exclusive_or_expression",
		"inclusive_or_expression", "logical_and_expression", "logical_or_expression",
		"conditional_expression", "assignment_expression")
}

// exprChain wraps a primary-expression leaf through the entire passthrough
// precedence chain down to `expression`, the shape every non-operator
// sub-expression takes in the real grammar.
func exprChain(primaryLeaf *tcparse.Node) *tcparse.Node {
	return nt("expression", assignChain(primaryLeaf))
}

func identExpr(name string) *tcparse.Node { return exprChain(ident(name)) }
func numExpr(v string) *tcparse.Node      { return exprChain(num(v)) }

func stmtOf(inner *tcparse.Node) *tcparse.Node { return nt("statement", inner) }

func returnStmt(value *tcparse.Node) *tcparse.Node {
	if value == nil {
		return stmtOf(nt("jump_statement", kw(tctoken.KwReturn), punct(tctoken.Semicolon)))
	}
	return stmtOf(nt("jump_statement", kw(tctoken.KwReturn), value, punct(tctoken.Semicolon)))
}

func intTypeSpecifier() *tcparse.Node { return nt("type_specifier", kw(tctoken.KwInt)) }

func compoundOf(stmts ...*tcparse.Node) *tcparse.Node {
	if len(stmts) == 0 {
		return nt("compound_statement", punct(tctoken.LBrace), punct(tctoken.RBrace))
	}
	list := nt("block_item_list", nt("block_item", stmts[0]))
	for _, s := range stmts[1:] {
		list = nt("block_item_list", list, nt("block_item", s))
	}
	return nt("compound_statement", punct(tctoken.LBrace), list, punct(tctoken.RBrace))
}

func functionDef(name string, params []*tcparse.Node, body *tcparse.Node) *tcparse.Node {
	children := []*tcparse.Node{intTypeSpecifier(), ident(name), punct(tctoken.LParen)}
	if len(params) > 0 {
		paramList := nt("parameter_list", nt("parameter_declaration", intTypeSpecifier(), params[0]))
		for _, p := range params[1:] {
			paramList = nt("parameter_list", paramList, nt("parameter_declaration", intTypeSpecifier(), p))
		}
		children = append(children, paramList, punct(tctoken.RParen), body)
	} else {
		children = append(children, punct(tctoken.RParen), body)
	}
	return nt("function_definition", children...)
}

func initDeclarator(name string, init *tcparse.Node) *tcparse.Node {
	if init == nil {
		return nt("init_declarator", ident(name))
	}
	return nt("init_declarator", ident(name), punct(tctoken.Assign), init)
}

func declaration(decls ...*tcparse.Node) *tcparse.Node {
	list := nt("init_declarator_list", decls[0])
	for _, d := range decls[1:] {
		list = nt("init_declarator_list", list, d)
	}
	return nt("declaration", intTypeSpecifier(), list, punct(tctoken.Semicolon))
}

func translationUnit(decls ...*tcparse.Node) *tcparse.Node {
	tu := nt("translation_unit", nt("external_declaration", decls[0]))
	for _, d := range decls[1:] {
		tu = nt("translation_unit", tu, nt("external_declaration", d))
	}
	return tu
}
