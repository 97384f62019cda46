package tcx86_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/toycompile/internal/tcgrammar"
	"github.com/dekarrin/toycompile/internal/tcir"
	"github.com/dekarrin/toycompile/internal/tclex"
	"github.com/dekarrin/toycompile/internal/tcparse"
	"github.com/dekarrin/toycompile/internal/tctoken"
	"github.com/dekarrin/toycompile/internal/tcx86"
)

// Minimal hand-built AST fragments, mirroring internal/tcir's own test
// fixtures (bypassing the lexer/grammar-loader/LR1/parser pipeline), just
// enough to exercise the x86 emitter's frame layout and NASM rendering.

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

func ident(name string) *tcparse.Node { return leaf("IDENT", tctoken.Identifier, name) }
func num(v string) *tcparse.Node      { return leaf("NUM", tctoken.NumericConstant, v) }

func chain(start *tcparse.Node, names ...string) *tcparse.Node {
	cur := start
	for _, n := range names {
		cur = nt(n, cur)
	}
	return cur
}

func exprChain(primaryLeaf *tcparse.Node) *tcparse.Node {
	return chain(nt("primary_expression", primaryLeaf),
		"postfix_expression", "unary_expression", "cast_expression",
		"multiplicative_expression", "additive_expression", "relational_expression",
		"equality_expression", "and_expression", "exclusive_or_expression",
		"inclusive_or_expression", "logical_and_expression", "logical_or_expression",
		"conditional_expression", "assignment_expression", "expression")
}

func numExpr(v string) *tcparse.Node { return exprChain(num(v)) }

func intTypeSpecifier() *tcparse.Node { return nt("type_specifier", kw(tctoken.KwInt)) }

func localDecl(name string, init *tcparse.Node) *tcparse.Node {
	initDecl := nt("init_declarator", ident(name), punct(tctoken.Assign), init)
	list := nt("init_declarator_list", initDecl)
	return nt("declaration", intTypeSpecifier(), list, punct(tctoken.Semicolon))
}

func returnStmt(value *tcparse.Node) *tcparse.Node {
	return nt("statement", nt("jump_statement", kw(tctoken.KwReturn), value, punct(tctoken.Semicolon)))
}

// main() { int x = 9; return x; } — one local variable, enough to exercise
// the frame-layout DFS and the operand-translation table's `val` case.
func Test_Emit_LocalVariableGetsStackSlot(t *testing.T) {
	body := nt("compound_statement", punct(tctoken.LBrace),
		nt("block_item_list",
			nt("block_item", localDecl("x", numExpr("9"))),
			nt("block_item", returnStmt(exprChain(ident("x")))),
		),
		punct(tctoken.RBrace))
	fn := nt("function_definition", intTypeSpecifier(), ident("main"), punct(tctoken.LParen), punct(tctoken.RParen), body)
	tu := nt("translation_unit", nt("external_declaration", fn))

	e := tcir.New()
	e.Emit(tu)
	require.Empty(t, e.Diagnostics())

	out := tcx86.Emit(e)
	assert.Contains(t, out, "[bits 32]")
	assert.Contains(t, out, "global main")
	assert.Contains(t, out, "section .text")
	assert.Contains(t, out, "push ebp")
	assert.Contains(t, out, "mov ebp, esp")
	assert.Contains(t, out, "sub esp, 4")
	assert.Contains(t, out, "[ebp-4]")
	assert.Contains(t, out, "leave")
}

// `int main() { return 0; }` renders a full prologue/epilogue pair around
// the accumulator load.
func Test_Emit_MinimalFunction(t *testing.T) {
	body := nt("compound_statement", punct(tctoken.LBrace),
		nt("block_item_list", nt("block_item", returnStmt(numExpr("0")))),
		punct(tctoken.RBrace))
	fn := nt("function_definition", intTypeSpecifier(), ident("main"), punct(tctoken.LParen), punct(tctoken.RParen), body)
	tu := nt("translation_unit", nt("external_declaration", fn))

	e := tcir.New()
	e.Emit(tu)
	require.Empty(t, e.Diagnostics())

	out := tcx86.Emit(e)
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "push ebp")
	assert.Contains(t, out, "mov ebp, esp")
	assert.Contains(t, out, "mov dword eax, 0")
	assert.Contains(t, out, "leave")
	assert.Contains(t, out, "\nret\n")
}

// `return 0` at the end of a function yields a doubled ret (the return
// statement's plus the function epilogue's); the peephole pass collapses it
// before translation, so only one ret reaches the NASM text.
func Test_Emit_PeepholeAppliedBeforeRendering(t *testing.T) {
	body := nt("compound_statement", punct(tctoken.LBrace),
		nt("block_item_list", nt("block_item", returnStmt(numExpr("0")))),
		punct(tctoken.RBrace))
	fn := nt("function_definition", intTypeSpecifier(), ident("f"), punct(tctoken.LParen), punct(tctoken.RParen), body)
	tu := nt("translation_unit", nt("external_declaration", fn))

	e := tcir.New()
	e.Emit(tu)
	require.Empty(t, e.Diagnostics())

	out := tcx86.Emit(e)
	assert.Equal(t, 1, strings.Count(out, "\nret\n"))
}

// A function parameter reads from above the saved ebp/return-address pair:
// `fval <name>` translates to [ebp+8+4*idx].
func Test_Emit_ParamLoadsFromEbpOffset(t *testing.T) {
	paramList := nt("parameter_list", nt("parameter_declaration", intTypeSpecifier(), ident("a")))
	body := nt("compound_statement", punct(tctoken.LBrace),
		nt("block_item_list", nt("block_item", returnStmt(exprChain(ident("a"))))),
		punct(tctoken.RBrace))
	fn := nt("function_definition", intTypeSpecifier(), ident("f"), punct(tctoken.LParen), paramList, punct(tctoken.RParen), body)
	tu := nt("translation_unit", nt("external_declaration", fn))

	e := tcir.New()
	e.Emit(tu)
	require.Empty(t, e.Diagnostics())

	out := tcx86.Emit(e)
	assert.Contains(t, out, "mov dword eax, [ebp+8]")
}

// A global variable's static data renders as an aligned NASM `dd` slot.
func Test_Emit_GlobalVariableStaticData(t *testing.T) {
	decl := nt("declaration", intTypeSpecifier(),
		nt("init_declarator_list", nt("init_declarator", ident("counter"), punct(tctoken.Assign), numExpr("3"))),
		punct(tctoken.Semicolon))
	tu := nt("translation_unit", nt("external_declaration", decl))

	e := tcir.New()
	e.Emit(tu)
	require.Empty(t, e.Diagnostics())

	out := tcx86.Emit(e)
	assert.Contains(t, out, "section .data")
	assert.Contains(t, out, "align 4")
	assert.Contains(t, out, "counter: dd 3")
}
