package tcir

import (
	"github.com/dekarrin/toycompile/internal/tcparse"
	"github.com/dekarrin/toycompile/internal/tcsymtab"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// walkCompoundStatementInto walks a `{ ... }` body with block as its active
// scope, restoring the previous scope on return. Each compound statement
// gets a fresh child BlockSymbolTable, detached from the live chain on exit
// — "detached" here means curBlock stops pointing at it, while the tree
// itself stays owned by its parent for the eventual block-symtab dump.
func (e *Emitter) walkCompoundStatementInto(node *tcparse.Node, block *tcsymtab.BlockSymbolTable) {
	prev := e.curBlock
	e.curBlock = block
	if len(node.Children) == 3 {
		for _, item := range flattenLeftRecursive(node.Children[1], "block_item_list", "block_item") {
			e.walkBlockItem(item)
		}
	}
	e.curBlock = prev
}

func (e *Emitter) walkBlockItem(node *tcparse.Node) {
	child := node.Children[0]
	if child.Symbol.Name == "declaration" {
		e.walkLocalDeclaration(child)
		return
	}
	e.walkStatement(child)
}

func (e *Emitter) walkLocalDeclaration(node *tcparse.Node) {
	vt := typeSpecifierType(node.Children[0])
	for _, decl := range flattenLeftRecursive(node.Children[1], "init_declarator_list", "init_declarator") {
		name := decl.Children[0].Token.Content
		id, err := e.curBlock.Declare(name, vt.Bytes(), vt)
		if err != nil {
			e.report(Semantic, decl, err.Error())
			continue
		}
		if len(decl.Children) == 3 {
			v := e.evalExpr(decl.Children[2])
			e.toAccumulator(v)
			e.emit("mov", append(valOperand(itoa(id)), vregOperand(0)...)...)
		}
	}
}

func (e *Emitter) walkStatement(node *tcparse.Node) {
	child := node.Children[0]
	switch child.Symbol.Name {
	case "expression_statement":
		e.walkExpressionStatement(child)
	case "compound_statement":
		id := e.nextBlockID
		e.nextBlockID++
		var child2 *tcsymtab.BlockSymbolTable
		var err error
		if e.curBlock != nil {
			child2, err = e.curBlock.NewChild(id)
		} else {
			child2 = tcsymtab.NewRootBlockSymbolTable(id, e.Vars)
		}
		if err != nil {
			e.report(Semantic, child, err.Error())
			return
		}
		e.walkCompoundStatementInto(child, child2)
	case "selection_statement":
		e.walkSelection(child)
	case "iteration_statement":
		e.walkIteration(child)
	case "jump_statement":
		e.walkJump(child)
	default:
		e.report(Semantic, node, "unexpected statement shape")
	}
}

func (e *Emitter) walkExpressionStatement(node *tcparse.Node) {
	if len(node.Children) == 1 {
		return
	}
	e.evalExpr(node.Children[0])
}

func (e *Emitter) walkSelection(node *tcparse.Node) {
	if node.Children[0].Token.Kind == tctoken.KwSwitch {
		e.report(Unsupported, node, "switch statement is not supported")
		return
	}

	if len(node.Children) == 5 {
		endLabel := e.newLabel("if_end")
		cond := e.evalExpr(node.Children[2])
		e.toAccumulator(cond)
		e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
		e.emit("je", endLabel)
		e.walkStatement(node.Children[4])
		e.emit("label", endLabel)
		return
	}

	elseLabel := e.newLabel("if_else")
	endLabel := e.newLabel("if_end")
	cond := e.evalExpr(node.Children[2])
	e.toAccumulator(cond)
	e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
	e.emit("je", elseLabel)
	e.walkStatement(node.Children[4])
	e.emit("jmp", endLabel)
	e.emit("label", elseLabel)
	e.walkStatement(node.Children[6])
	e.emit("label", endLabel)
}

func (e *Emitter) pushLoopLabels(continueLabel, breakLabel string) {
	e.continueStack = append(e.continueStack, continueLabel)
	e.breakStack = append(e.breakStack, breakLabel)
}

func (e *Emitter) popLoopLabels() {
	e.continueStack = e.continueStack[:len(e.continueStack)-1]
	e.breakStack = e.breakStack[:len(e.breakStack)-1]
}

func (e *Emitter) walkIteration(node *tcparse.Node) {
	switch node.Children[0].Token.Kind {
	case tctoken.KwWhile:
		startLabel := e.newLabel("while_loop_exp")
		endLabel := e.newLabel("while_loop_end")
		e.pushLoopLabels(startLabel, endLabel)
		e.emit("label", startLabel)
		cond := e.evalExpr(node.Children[2])
		e.toAccumulator(cond)
		e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
		e.emit("je", endLabel)
		e.walkStatement(node.Children[4])
		e.emit("jmp", startLabel)
		e.emit("label", endLabel)
		e.popLoopLabels()

	case tctoken.KwDo:
		startLabel := e.newLabel("do_start")
		contLabel := e.newLabel("do_cont")
		endLabel := e.newLabel("do_end")
		e.pushLoopLabels(contLabel, endLabel)
		e.emit("label", startLabel)
		e.walkStatement(node.Children[1])
		e.emit("label", contLabel)
		cond := e.evalExpr(node.Children[4])
		e.toAccumulator(cond)
		e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
		e.emit("jne", startLabel)
		e.emit("label", endLabel)
		e.popLoopLabels()

	case tctoken.KwFor:
		startLabel := e.newLabel("for_start")
		contLabel := e.newLabel("for_cont")
		endLabel := e.newLabel("for_end")
		e.pushLoopLabels(contLabel, endLabel)
		e.walkExpressionStatement(node.Children[2])
		e.emit("label", startLabel)
		cond := e.evalExpr(node.Children[3])
		e.toAccumulator(cond)
		e.emit("cmp", append(vregOperand(0), immOperand(0)...)...)
		e.emit("je", endLabel)
		e.walkStatement(node.Children[7])
		e.emit("label", contLabel)
		e.evalExpr(node.Children[5])
		e.emit("jmp", startLabel)
		e.emit("label", endLabel)
		e.popLoopLabels()

	default:
		e.report(Semantic, node, "unexpected iteration_statement shape")
	}
}

func (e *Emitter) walkJump(node *tcparse.Node) {
	switch node.Children[0].Token.Kind {
	case tctoken.KwReturn:
		if len(node.Children) == 3 {
			v := e.evalExpr(node.Children[1])
			e.toAccumulator(v)
		}
		e.emit("ret")
	case tctoken.KwBreak:
		if len(e.breakStack) == 0 {
			e.report(Semantic, node, "break statement outside of a loop")
			return
		}
		e.emit("jmp", e.breakStack[len(e.breakStack)-1])
	case tctoken.KwContinue:
		if len(e.continueStack) == 0 {
			e.report(Semantic, node, "continue statement outside of a loop")
			return
		}
		e.emit("jmp", e.continueStack[len(e.continueStack)-1])
	case tctoken.KwGoto:
		e.report(Unsupported, node, "goto statement is not supported")
	default:
		e.report(Semantic, node, "unexpected jump_statement shape")
	}
}
