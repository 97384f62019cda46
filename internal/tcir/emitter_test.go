package tcir_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/toycompile/internal/tcir"
	"github.com/dekarrin/toycompile/internal/tcparse"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// `int x = 1;` — global-symtab contains x of type s32 with initValue=1,
// static-data emits `int var x s32 1`, no instructions in function scope.
func Test_Emit_SingleGlobalDeclaration(t *testing.T) {
	tu := translationUnit(declaration(initDeclarator("x", numExpr("1"))))

	e := tcir.New()
	out := e.Emit(tu)

	assert.Empty(t, e.Diagnostics())
	assert.Contains(t, out, "int var x s32 1")
	assert.Contains(t, out, "variable_define x s32 1")

	beginInstr := strings.Index(out, "@ begin of instructions")
	endInstr := strings.Index(out, "@ end of instructions")
	require.True(t, beginInstr >= 0 && endInstr > beginInstr)
	instrSection := strings.TrimSpace(out[beginInstr:endInstr])
	assert.Equal(t, "@ begin of instructions", instrSection)
}

// `int main() { return 0; }` — instructions include `label main`,
// `mov vreg 0 imm 0`, `ret`.
func Test_Emit_MinimalFunction(t *testing.T) {
	fn := functionDef("main", nil, compoundOf(returnStmt(numExpr("0"))))
	tu := translationUnit(fn)

	e := tcir.New()
	out := e.Emit(tu)

	require.Empty(t, e.Diagnostics())
	assert.Contains(t, out, "label main")
	assert.Contains(t, out, "mov vreg 0 imm 0")
	assert.Contains(t, out, "ret")
	assert.Contains(t, out, "export main fun")
}

// `int f(int a){ if (a) return 1; else return 2; }` — TCIR contains two
// distinct labels `.if_else_<n>` and `.if_end_<m>` with a `je` to the else
// target and a `jmp` to the end target.
func Test_Emit_IfElse(t *testing.T) {
	ifElse := stmtOf(nt("selection_statement",
		kw(tctoken.KwIf), punct(tctoken.LParen), identExpr("a"), punct(tctoken.RParen),
		returnStmt(numExpr("1")),
		kw(tctoken.KwElse),
		returnStmt(numExpr("2")),
	))
	fn := functionDef("f", []*tcparse.Node{ident("a")}, compoundOf(ifElse))
	tu := translationUnit(fn)

	e := tcir.New()
	out := e.Emit(tu)

	require.Empty(t, e.Diagnostics())
	assert.Contains(t, out, "label f")
	assert.True(t, strings.Contains(out, ".if_else_"))
	assert.True(t, strings.Contains(out, ".if_end_"))
	assert.Contains(t, out, "je .if_else_")
	assert.Contains(t, out, "jmp .if_end_")
}

// A while loop with a break and a continue resolves against the innermost
// loop's label pair.
func Test_Emit_WhileBreakContinue(t *testing.T) {
	breakStmt := stmtOf(nt("jump_statement", kw(tctoken.KwBreak), punct(tctoken.Semicolon)))
	continueStmt := stmtOf(nt("jump_statement", kw(tctoken.KwContinue), punct(tctoken.Semicolon)))
	loopBody := stmtOf(compoundOf(breakStmt, continueStmt))

	body := compoundOf(
		stmtOf(nt("iteration_statement",
			kw(tctoken.KwWhile), punct(tctoken.LParen), identExpr("a"), punct(tctoken.RParen),
			loopBody,
		)),
		returnStmt(nil),
	)
	fn := functionDef("loopy", []*tcparse.Node{ident("a")}, body)
	tu := translationUnit(fn)

	e := tcir.New()
	out := e.Emit(tu)

	require.Empty(t, e.Diagnostics())
	assert.Contains(t, out, ".while_loop_exp_")
	assert.Contains(t, out, ".while_loop_end_")
	assert.Contains(t, out, "jmp .while_loop_end_")
}

// Call arguments are pushed right-to-left (cdecl) as `pushfc 4 <operand>`
// with no caller-side cleanup in the TCIR stream itself — the x86 emitter
// derives cleanup from the callee's parameter sizes.
func Test_Emit_CallPushesArgsRightToLeft(t *testing.T) {
	g := functionDef("g", []*tcparse.Node{ident("a"), ident("b")}, compoundOf(returnStmt(numExpr("0"))))

	argList := nt("argument_expression_list",
		nt("argument_expression_list", assignChain(num("1"))),
		punct(tctoken.Comma),
		assignChain(num("2")))
	call := nt("postfix_expression",
		nt("postfix_expression", nt("primary_expression", ident("g"))),
		punct(tctoken.LParen), argList, punct(tctoken.RParen))
	callExpr := chain(call,
		"unary_expression", "cast_expression",
		"multiplicative_expression", "additive_expression", "relational_expression",
		"equality_expression", "and_expression", "exclusive_or_expression",
		"inclusive_or_expression", "logical_and_expression", "logical_or_expression",
		"conditional_expression", "assignment_expression", "expression")
	callStmt := stmtOf(nt("expression_statement", callExpr, punct(tctoken.Semicolon)))

	f := functionDef("f", nil, compoundOf(callStmt, returnStmt(numExpr("0"))))
	tu := translationUnit(g, f)

	e := tcir.New()
	out := e.Emit(tu)

	require.Empty(t, e.Diagnostics())
	assert.Contains(t, out, "pushfc 4 vreg 0")
	assert.Contains(t, out, "call g")
	assert.NotContains(t, out, "call g\npop")

	// right-to-left: the second argument's load comes first.
	second := strings.Index(out, "mov vreg 0 imm 2")
	first := strings.Index(out, "mov vreg 0 imm 1")
	require.True(t, second >= 0 && first >= 0)
	assert.Less(t, second, first)
}

// Accessing an undeclared identifier is a semantic diagnostic, not a panic.
func Test_Emit_UndeclaredIdentifierIsSemanticDiagnostic(t *testing.T) {
	fn := functionDef("f", nil, compoundOf(returnStmt(identExpr("nope"))))
	tu := translationUnit(fn)

	e := tcir.New()
	e.Emit(tu)

	require.Len(t, e.Diagnostics(), 1)
	assert.Equal(t, tcir.Semantic, e.Diagnostics()[0].Kind)
	assert.Contains(t, e.Diagnostics()[0].Message, "undeclared identifier nope")
}

// `*` has no backing TCIR opcode in this subset and must be reported as
// unsupported rather than silently miscompiled.
func Test_Emit_MultiplicationIsUnsupported(t *testing.T) {
	mulExpr := nt("multiplicative_expression",
		chain(nt("primary_expression", num("2")), "postfix_expression", "unary_expression", "cast_expression"),
		punct(tctoken.Star),
		chain(nt("primary_expression", num("3")), "postfix_expression", "unary_expression", "cast_expression"),
	)
	wrapped := chain(mulExpr, "additive_expression", "relational_expression", "equality_expression",
		"and_expression", "exclusive_or_expression", "inclusive_or_expression",
		"logical_and_expression", "logical_or_expression", "conditional_expression",
		"assignment_expression", "expression")

	fn := functionDef("f", nil, compoundOf(returnStmt(wrapped)))
	tu := translationUnit(fn)

	e := tcir.New()
	e.Emit(tu)

	require.Len(t, e.Diagnostics(), 1)
	assert.Equal(t, tcir.Unsupported, e.Diagnostics()[0].Kind)
}
