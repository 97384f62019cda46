package tcir

import (
	"strconv"

	"github.com/dekarrin/toycompile/internal/tclex"
	"github.com/dekarrin/toycompile/internal/tcparse"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// ExprKind tags what an expression routine actually produced. Rather than
// threading a "last resolved symbol" field through the emitter that every
// composite computation would have to remember to clear, every expression
// routine returns one of these tags directly: `++`/`--` and assignment only
// re-target an lvalue when the value they were just handed is tagged
// Lvalue, with no shared mutable state involved.
type ExprKind int

const (
	ExprConstant ExprKind = iota
	ExprRvalue
	ExprLvalue
)

// ExprResult is what every expression-evaluating method returns. Operand is
// populated only for ExprLvalue, holding the `val <id>`, `val <name>`, or
// `fval <name>` operand tokens needed to re-target the lvalue for a store.
type ExprResult struct {
	Kind     ExprKind
	ConstVal int64
	Operand  []string
}

func rvalue() ExprResult                 { return ExprResult{Kind: ExprRvalue} }
func constant(v int64) ExprResult        { return ExprResult{Kind: ExprConstant, ConstVal: v} }
func lvalue(operand []string) ExprResult { return ExprResult{Kind: ExprLvalue, Operand: operand} }

// toAccumulator emits whatever load is necessary to make vreg 0 hold r's
// value. vreg 0 is the primary accumulator and return-value register; a
// result tagged Rvalue is already resident there.
func (e *Emitter) toAccumulator(r ExprResult) {
	switch r.Kind {
	case ExprConstant:
		e.emit("mov", append(vregOperand(0), immOperand(r.ConstVal)...)...)
	case ExprLvalue:
		e.emit("mov", append(vregOperand(0), r.Operand...)...)
	case ExprRvalue:
		// already resident in vreg 0 by convention.
	}
}

// resolveIdent looks up an identifier against the current block chain, then
// the current function's parameters, then file scope, producing the lvalue
// operand form appropriate to where it was found.
func (e *Emitter) resolveIdent(node *tcparse.Node, name string) (ExprResult, bool) {
	if e.curBlock != nil {
		if id, ok := e.curBlock.Lookup(name, true); ok {
			return lvalue(valOperand(itoa(id))), true
		}
	}
	if e.curFunc != nil {
		for _, p := range e.curFunc.Params {
			if p.Name == name {
				return ExprResult{Kind: ExprLvalue, Operand: fvalOperand(name)}, true
			}
		}
	}
	if _, ok := e.Globals.Global(name); ok {
		return lvalue(valOperand(name)), true
	}
	e.report(Semantic, node, "undeclared identifier "+name)
	return constant(0), false
}

// evalExpr dispatches on the AST node's grammar symbol. Every layer of the
// precedence chain (logical_or_expression down through multiplicative) has
// the identical left-recursive binary shape, so a single passthrough-or-op
// handler (evalBinaryLevel) covers all of them; only the nodes with a
// genuinely different shape get their own case.
func (e *Emitter) evalExpr(node *tcparse.Node) ExprResult {
	switch node.Symbol.Name {
	case "expression":
		return e.evalExpr(node.Children[0])
	case "assignment_expression":
		return e.evalAssignment(node)
	case "conditional_expression":
		return e.evalConditional(node)
	case "cast_expression":
		return e.evalExpr(node.Children[0])
	case "unary_expression":
		return e.evalUnary(node)
	case "postfix_expression":
		return e.evalPostfix(node)
	case "primary_expression":
		return e.evalPrimary(node)
	default:
		return e.evalBinaryLevel(node)
	}
}

func (e *Emitter) evalAssignment(node *tcparse.Node) ExprResult {
	if len(node.Children) == 1 {
		return e.evalExpr(node.Children[0])
	}
	target := e.evalExpr(node.Children[0])
	if target.Kind != ExprLvalue {
		e.report(Semantic, node, "assignment target is not an lvalue")
		return rvalue()
	}
	opKind := node.Children[1].Children[0].Token.Kind
	rhs := e.evalExpr(node.Children[2])

	switch opKind {
	case tctoken.Assign:
		e.toAccumulator(rhs)
	case tctoken.PlusEq, tctoken.MinusEq:
		e.toAccumulator(rhs)
		e.emit("push", vregOperand(0)...)
		e.emit("mov", append(vregOperand(0), target.Operand...)...)
		e.emit("pop", vregOperand(1)...)
		op := "add"
		if opKind == tctoken.MinusEq {
			op = "sub"
		}
		e.emit(op, append(vregOperand(0), vregOperand(1)...)...)
	default:
		e.report(Unsupported, node, "unsupported assignment operator")
		return rvalue()
	}
	e.emit("mov", append(target.Operand, vregOperand(0)...)...)
	return rvalue()
}

func (e *Emitter) evalConditional(node *tcparse.Node) ExprResult {
	if len(node.Children) == 1 {
		return e.evalExpr(node.Children[0])
	}
	elseLabel := e.newLabel("cond_else")
	endLabel := e.newLabel("cond_end")

	cond := e.evalExpr(node.Children[0])
	e.toAccumulator(cond)
	e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
	e.emit("je", elseLabel)

	thenVal := e.evalExpr(node.Children[2])
	e.toAccumulator(thenVal)
	e.emit("jmp", endLabel)

	e.emit("label", elseLabel)
	elseVal := e.evalExpr(node.Children[4])
	e.toAccumulator(elseVal)

	e.emit("label", endLabel)
	return rvalue()
}

func (e *Emitter) evalPrimary(node *tcparse.Node) ExprResult {
	if len(node.Children) == 3 {
		return e.evalExpr(node.Children[1])
	}
	tok := node.Children[0].Token
	switch tok.Kind {
	case tctoken.NumericConstant:
		n, err := strconv.ParseInt(tok.Content, 0, 64)
		if err != nil {
			e.report(Semantic, node, "malformed numeric constant "+tok.Content)
			return constant(0)
		}
		return constant(n)
	case tctoken.Identifier:
		r, _ := e.resolveIdent(node, tok.Content)
		return r
	default:
		e.report(Semantic, node, "unexpected primary expression token "+tok.Content)
		return constant(0)
	}
}

func (e *Emitter) evalPostfix(node *tcparse.Node) ExprResult {
	if len(node.Children) == 1 {
		return e.evalExpr(node.Children[0])
	}
	switch node.Children[1].Token.Kind {
	case tctoken.Inc, tctoken.Dec:
		operand := e.evalExpr(node.Children[0])
		if operand.Kind != ExprLvalue {
			e.report(Semantic, node, "increment/decrement target is not an lvalue")
			return rvalue()
		}
		// Load the old value into vreg 0 (this is the expression's result),
		// bump a scratch copy in vreg 1, and store the bumped copy back —
		// leaving vreg 0 holding the pre-increment value, per postfix
		// semantics.
		e.toAccumulator(operand)
		e.emit("mov", append(vregOperand(1), vregOperand(0)...)...)
		op := "add"
		if node.Children[1].Token.Kind == tctoken.Dec {
			op = "sub"
		}
		e.emit(op, append(vregOperand(1), immOperand(1)...)...)
		e.emit("mov", append(operand.Operand, vregOperand(1)...)...)
		return rvalue()
	case tctoken.LParen:
		return e.evalCall(node)
	default:
		e.report(Semantic, node, "unsupported postfix expression shape")
		return rvalue()
	}
}

func (e *Emitter) evalCall(node *tcparse.Node) ExprResult {
	callee := node.Children[0]
	name := ""
	if callee.Symbol.Name == "postfix_expression" && len(callee.Children) == 1 {
		if p := callee.Children[0]; p.Symbol.Name == "primary_expression" && len(p.Children) == 1 && p.Children[0].Token.Kind == tctoken.Identifier {
			name = p.Children[0].Token.Content
		}
	}
	if name == "" {
		e.report(Unsupported, node, "call target must be a plain function name")
		return rvalue()
	}
	if _, ok := e.Globals.Function(name); !ok {
		e.report(Semantic, node, "call to undeclared function "+name)
	}

	var args []*tcparse.Node
	if len(node.Children) == 4 {
		args = flattenLeftRecursive(node.Children[2], "argument_expression_list", "assignment_expression")
	}
	// cdecl: push right-to-left. The pushfc opcode is kept distinct from
	// push so the x86 emitter can compute the caller-side stack cleanup
	// after the call from the callee's parameter sizes.
	for i := len(args) - 1; i >= 0; i-- {
		v := e.evalExpr(args[i])
		e.toAccumulator(v)
		e.emit("pushfc", append([]string{"4"}, vregOperand(0)...)...)
	}
	e.emit("call", name)
	return rvalue()
}

func (e *Emitter) evalUnary(node *tcparse.Node) ExprResult {
	if len(node.Children) == 1 {
		return e.evalExpr(node.Children[0])
	}
	if node.Children[0].Symbol.Name == "unary_operator" {
		operand := e.evalExpr(node.Children[1])
		e.toAccumulator(operand)
		switch node.Children[0].Children[0].Token.Kind {
		case tctoken.Plus:
			return rvalue()
		case tctoken.Minus:
			e.emit("mov", append(vregOperand(1), immOperand(0)...)...)
			e.emit("sub", append(vregOperand(1), vregOperand(0)...)...)
			e.emit("xchg", append(vregOperand(0), vregOperand(1)...)...)
			return rvalue()
		case tctoken.Bang:
			return e.emitZeroTest(node, true)
		default:
			e.report(Unsupported, node, "bitwise complement has no backing TCIR opcode")
			return rvalue()
		}
	}
	// prefix ++ / --
	operand := e.evalExpr(node.Children[1])
	if operand.Kind != ExprLvalue {
		e.report(Semantic, node, "increment/decrement target is not an lvalue")
		return rvalue()
	}
	e.toAccumulator(operand)
	op := "add"
	if node.Children[0].Token.Kind == tctoken.Dec {
		op = "sub"
	}
	e.emit(op, append(vregOperand(0), immOperand(1)...)...)
	e.emit("mov", append(operand.Operand, vregOperand(0)...)...)
	return rvalue()
}

// emitZeroTest leaves 1 in vreg 0 if the already-accumulated value is zero
// (want==true) or non-zero (want==false), else 0 — the boolean-producing
// pattern used by `!` (the relational/equality operators use emitRelational),
// built from `cmp` plus conditional jumps since TCIR has no set-on-condition
// opcode.
func (e *Emitter) emitZeroTest(node *tcparse.Node, want bool) ExprResult {
	trueLabel := e.newLabel("bool_true")
	endLabel := e.newLabel("bool_end")
	e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
	jmp := "je"
	if !want {
		jmp = "jne"
	}
	e.emit(jmp, trueLabel)
	e.emit("mov", append(vregOperand(0), immOperand(0)...)...)
	e.emit("jmp", endLabel)
	e.emit("label", trueLabel)
	e.emit("mov", append(vregOperand(0), immOperand(1)...)...)
	e.emit("label", endLabel)
	return rvalue()
}

var relOpJump = map[tctoken.Kind]string{
	tctoken.EqEq:  "je",
	tctoken.NotEq: "jne",
	tctoken.Gt:    "jg",
	tctoken.Lt:    "jl",
	tctoken.Ge:    "jge",
	tctoken.Le:    "jle",
}

// evalBinaryLevel handles every layer of the precedence chain that's either
// a pure passthrough to the next tighter level or a single left-recursive
// binary operator application — which, thanks to the grammar's no-epsilon
// layering, is every level from logical_or_expression down through
// multiplicative_expression.
func (e *Emitter) evalBinaryLevel(node *tcparse.Node) ExprResult {
	if len(node.Children) == 1 {
		return e.evalExpr(node.Children[0])
	}
	opTok := node.Children[1].Token

	switch opTok.Kind {
	case tctoken.AndAnd, tctoken.OrOr:
		return e.evalShortCircuit(node, opTok)
	}

	left := e.evalExpr(node.Children[0])
	e.toAccumulator(left)
	e.emit("push", vregOperand(0)...)
	right := e.evalExpr(node.Children[2])
	e.toAccumulator(right)
	e.emit("pop", vregOperand(1)...)

	switch opTok.Kind {
	case tctoken.Plus:
		e.emit("add", append(vregOperand(1), vregOperand(0)...)...)
		e.emit("xchg", append(vregOperand(0), vregOperand(1)...)...)
		return rvalue()
	case tctoken.Minus:
		e.emit("sub", append(vregOperand(1), vregOperand(0)...)...)
		e.emit("xchg", append(vregOperand(0), vregOperand(1)...)...)
		return rvalue()
	case tctoken.EqEq, tctoken.NotEq, tctoken.Gt, tctoken.Lt, tctoken.Ge, tctoken.Le:
		e.emit("cmp", append(vregOperand(1), vregOperand(0)...)...)
		return e.emitRelational(relOpJump[opTok.Kind])
	default:
		e.report(Unsupported, node, "operator "+opTok.Content+" has no backing TCIR opcode")
		return rvalue()
	}
}

func (e *Emitter) emitRelational(jmp string) ExprResult {
	trueLabel := e.newLabel("bool_true")
	endLabel := e.newLabel("bool_end")
	e.emit(jmp, trueLabel)
	e.emit("mov", append(vregOperand(0), immOperand(0)...)...)
	e.emit("jmp", endLabel)
	e.emit("label", trueLabel)
	e.emit("mov", append(vregOperand(0), immOperand(1)...)...)
	e.emit("label", endLabel)
	return rvalue()
}

// evalShortCircuit implements `&&`/`||` with conditional jumps to a
// computed-at-emit-time label rather than unconditionally evaluating both
// operands.
func (e *Emitter) evalShortCircuit(node *tcparse.Node, opTok tclex.Token) ExprResult {
	shortCircuitLabel := e.newLabel("sc")
	endLabel := e.newLabel("sc_end")
	jmp := "je" // && : a zero left operand short-circuits to false
	if opTok.Kind == tctoken.OrOr {
		jmp = "jne" // || : a non-zero left operand short-circuits to true
	}

	left := e.evalExpr(node.Children[0])
	e.toAccumulator(left)
	e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
	e.emit(jmp, shortCircuitLabel)

	right := e.evalExpr(node.Children[2])
	e.toAccumulator(right)
	e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
	e.emit(jmp, shortCircuitLabel)

	if opTok.Kind == tctoken.OrOr {
		e.emit("mov", append(vregOperand(0), immOperand(0)...)...)
	} else {
		e.emit("mov", append(vregOperand(0), immOperand(1)...)...)
	}
	e.emit("jmp", endLabel)
	e.emit("label", shortCircuitLabel)
	if opTok.Kind == tctoken.OrOr {
		e.emit("mov", append(vregOperand(0), immOperand(1)...)...)
	} else {
		e.emit("mov", append(vregOperand(0), immOperand(0)...)...)
	}
	e.emit("label", endLabel)
	return rvalue()
}
