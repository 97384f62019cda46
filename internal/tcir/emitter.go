// Package tcir implements the TCIR emitter: a recursive descent over the
// parser's AST, with one handler per grammar non-terminal actually lowered,
// that manages scoped symbol tables and produces a linear
// three-address-style instruction list plus the four supporting sections
// (extlink, static-data, global-symtab, block-symtab).
//
// Expression routines return an ExprResult{Kind, ...} — see expr.go —
// tagged Constant, Rvalue, or Lvalue, so `++`/`--` and assignment read the
// tag off the value actually returned by the immediately prior expression
// call rather than off a field some earlier call might have left set. There
// is nothing to "clear" between calls because there is no shared field to
// clear.
package tcir

import (
	"strconv"
	"strings"

	"github.com/dekarrin/toycompile/internal/tcparse"
	"github.com/dekarrin/toycompile/internal/tcsymtab"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// Emitter holds all state threaded through one translation unit's AST walk.
type Emitter struct {
	Globals *tcsymtab.GlobalSymbolTable
	Vars    *tcsymtab.VariableDescriptionTable

	extlink      []string
	staticData   []string
	blockSymtab  []string
	instructions []Instruction
	diags        []Diagnostic

	curBlock    *tcsymtab.BlockSymbolTable
	curFunc     *tcsymtab.FunctionSymbol
	nextBlockID int
	labelSeq    int

	// continueStack/breakStack are pushed in lockstep by every loop
	// construct so nested break/continue resolve to the innermost
	// enclosing loop.
	continueStack []string
	breakStack    []string

	funcBlocks map[string]*tcsymtab.BlockSymbolTable
}

// New returns a ready-to-use Emitter with fresh, empty symbol tables.
func New() *Emitter {
	return &Emitter{
		Globals:    tcsymtab.NewGlobalSymbolTable(),
		Vars:       tcsymtab.NewVariableDescriptionTable(),
		funcBlocks: make(map[string]*tcsymtab.BlockSymbolTable),
	}
}

// Diagnostics returns every diagnostic recorded during Emit, in emission
// order.
func (e *Emitter) Diagnostics() []Diagnostic {
	return e.diags
}

// Instructions returns the flat TCIR instruction stream, in emission order.
// internal/tcx86 consumes this directly rather than re-parsing the rendered
// text.
func (e *Emitter) Instructions() []Instruction {
	return e.instructions
}

// FuncBlocks returns each defined function's root BlockSymbolTable, keyed by
// function name — the input to internal/tcx86's per-function frame-size
// DFS.
func (e *Emitter) FuncBlocks() map[string]*tcsymtab.BlockSymbolTable {
	return e.funcBlocks
}

// ExtLink returns the `export <name> fun|var` / `import <name>` lines,
// reused verbatim by internal/tcx86 for NASM `global`/`extern` directives
// instead of being recomputed from Globals.
func (e *Emitter) ExtLink() []string {
	return e.extlink
}

// StaticData returns the `int var <name> <value_type> <init_value>` lines
// of the static-data section.
func (e *Emitter) StaticData() []string {
	return e.staticData
}

func (e *Emitter) report(kind DiagKind, node *tcparse.Node, msg string) {
	row, col := firstTerminalPos(node)
	e.diags = append(e.diags, Diagnostic{Kind: kind, Row: row, Col: col, Message: msg})
}

// firstTerminalPos finds the (row, col) of the left-most terminal under
// node, the anchor position every diagnostic for that node carries.
func firstTerminalPos(node *tcparse.Node) (int, int) {
	if node == nil {
		return 0, 0
	}
	if node.IsTerminal() {
		return node.Token.Row, node.Token.Col
	}
	for _, c := range node.Children {
		if r, col := firstTerminalPos(c); r != 0 {
			return r, col
		}
	}
	return 0, 0
}

func (e *Emitter) emit(op string, args ...string) {
	e.instructions = append(e.instructions, instr(op, args...))
}

func (e *Emitter) newLabel(prefix string) string {
	e.labelSeq++
	return "." + prefix + "_" + itoa(e.labelSeq)
}

// Emit walks the translation_unit AST root and returns the finished textual
// TCIR document: five sections, each bracketed by `@ begin of <name>` /
// `@ end of <name>`.
func (e *Emitter) Emit(root *tcparse.Node) string {
	e.walkTranslationUnit(root)
	return e.render()
}

func (e *Emitter) walkTranslationUnit(node *tcparse.Node) {
	if node.Symbol.Name != "translation_unit" {
		e.report(Semantic, node, "expected translation_unit at AST root, got "+node.Symbol.Name)
		return
	}
	for _, ext := range flattenLeftRecursive(node, "translation_unit", "external_declaration") {
		e.walkExternalDeclaration(ext)
	}
}

// flattenLeftRecursive un-nests a left-recursive list production (the shape
// every list-like rule in the grammar uses, since the grammar forbids
// epsilon alternatives) back into a flat, left-to-right slice of the
// repeated symbol's nodes.
func flattenLeftRecursive(node *tcparse.Node, listSym, itemSym string) []*tcparse.Node {
	var out []*tcparse.Node
	var walk func(n *tcparse.Node)
	walk = func(n *tcparse.Node) {
		// The recursive alternative is either `list item` (2 children, no
		// separator — translation_unit, block_item_list) or `list ',' item`
		// (3 children — every comma-separated list); either way the list
		// itself is the first child and the newly appended item is the
		// last.
		if len(n.Children) > 1 && n.Children[0].Symbol.Name == listSym {
			walk(n.Children[0])
			out = append(out, n.Children[len(n.Children)-1])
			return
		}
		out = append(out, n.Children[0])
	}
	walk(node)
	return out
}

func (e *Emitter) walkExternalDeclaration(node *tcparse.Node) {
	child := node.Children[0]
	switch child.Symbol.Name {
	case "function_definition":
		e.walkFunctionDefinition(child)
	case "function_declaration":
		e.walkFunctionDeclaration(child)
	case "declaration":
		e.walkGlobalDeclaration(child)
	default:
		e.report(Semantic, node, "unexpected external_declaration shape")
	}
}

func typeSpecifierType(node *tcparse.Node) tcsymtab.ValueType {
	if node.Children[0].Token.Kind == tctoken.KwVoid {
		return tcsymtab.Void
	}
	return tcsymtab.S32
}

func paramList(node *tcparse.Node) []tcsymtab.FunctionParamSymbol {
	var params []tcsymtab.FunctionParamSymbol
	for _, pd := range flattenLeftRecursive(node, "parameter_list", "parameter_declaration") {
		vt := typeSpecifierType(pd.Children[0])
		name := pd.Children[1].Token.Content
		params = append(params, tcsymtab.FunctionParamSymbol{Name: name, ValueType: vt})
	}
	return params
}

func (e *Emitter) walkFunctionDeclaration(node *tcparse.Node) {
	vt := typeSpecifierType(node.Children[0])
	name := node.Children[1].Token.Content
	var params []tcsymtab.FunctionParamSymbol
	if len(node.Children) == 6 {
		params = paramList(node.Children[3])
	}
	fn := tcsymtab.FunctionSymbol{Name: name, ReturnType: vt, IsImported: true, Visibility: tcsymtab.Imported, Params: params}
	if err := e.Globals.DeclareFunction(fn); err != nil {
		e.report(Semantic, node, err.Error())
		return
	}
	e.extlink = append(e.extlink, "import "+name)
}

func (e *Emitter) walkFunctionDefinition(node *tcparse.Node) {
	vt := typeSpecifierType(node.Children[0])
	name := node.Children[1].Token.Content

	var params []tcsymtab.FunctionParamSymbol
	var body *tcparse.Node
	if len(node.Children) == 5 {
		body = node.Children[4]
	} else {
		params = paramList(node.Children[3])
		body = node.Children[5]
	}

	rootID := e.nextBlockID
	e.nextBlockID++

	fn := tcsymtab.FunctionSymbol{Name: name, ReturnType: vt, Visibility: tcsymtab.Exported, Params: params, RootBlockID: rootID}
	if err := e.Globals.DeclareFunction(fn); err != nil {
		e.report(Semantic, node, err.Error())
		return
	}
	e.extlink = append(e.extlink, "export "+name+" fun")

	e.emit("label", name)
	e.emit("fun-label", name)

	prevFunc := e.curFunc
	got, _ := e.Globals.Function(name)
	e.curFunc = got

	root := tcsymtab.NewRootBlockSymbolTable(rootID, e.Vars)
	e.funcBlocks[name] = root
	e.walkCompoundStatementInto(body, root)
	e.dumpBlockSymtab(root)

	e.emit("ret")
	e.curFunc = prevFunc
}

func (e *Emitter) walkGlobalDeclaration(node *tcparse.Node) {
	vt := typeSpecifierType(node.Children[0])
	for _, decl := range flattenLeftRecursive(node.Children[1], "init_declarator_list", "init_declarator") {
		name := decl.Children[0].Token.Content
		var initVal int64
		if len(decl.Children) == 3 {
			v, ok := e.evalConstant(decl.Children[2])
			if !ok {
				e.report(Semantic, decl, "global initializer for "+name+" is not a compile-time constant")
			} else {
				initVal = v
			}
		}
		sym := tcsymtab.VariableSymbol{Name: name, Bytes: vt.Bytes(), ValueType: vt, Visibility: tcsymtab.Exported, InitValue: initVal}
		if err := e.Globals.DeclareGlobal(sym); err != nil {
			e.report(Semantic, decl, err.Error())
			continue
		}
		e.extlink = append(e.extlink, "export "+name+" var")
		e.staticData = append(e.staticData, "int var "+name+" "+vt.String()+" "+strconv.FormatInt(initVal, 10))
	}
}

// evalConstant performs the pure compile-time arithmetic global initializers
// are restricted to; a variable reference anywhere in a global initializer
// is an error. It supports the same additive/sign operators the runtime
// emitter does, since those are the only arithmetic this backend lowers.
func (e *Emitter) evalConstant(node *tcparse.Node) (int64, bool) {
	switch node.Symbol.Name {
	case "primary_expression":
		switch {
		case node.Children[0].Token.Kind == tctoken.NumericConstant:
			n, err := strconv.ParseInt(node.Children[0].Token.Content, 0, 64)
			return n, err == nil
		case len(node.Children) == 3:
			return e.evalConstant(node.Children[1])
		default:
			return 0, false
		}
	case "unary_expression":
		if len(node.Children) == 2 && node.Children[0].Symbol.Name == "unary_operator" {
			v, ok := e.evalConstant(node.Children[1])
			if !ok {
				return 0, false
			}
			switch node.Children[0].Children[0].Token.Kind {
			case tctoken.Plus:
				return v, true
			case tctoken.Minus:
				return -v, true
			default:
				return 0, false
			}
		}
		if len(node.Children) == 1 {
			return e.evalConstant(node.Children[0])
		}
		return 0, false
	default:
		if len(node.Children) == 1 {
			return e.evalConstant(node.Children[0])
		}
		if len(node.Children) == 3 {
			l, lok := e.evalConstant(node.Children[0])
			r, rok := e.evalConstant(node.Children[2])
			if !lok || !rok {
				return 0, false
			}
			switch node.Children[1].Token.Kind {
			case tctoken.Plus:
				return l + r, true
			case tctoken.Minus:
				return l - r, true
			default:
				return 0, false
			}
		}
		return 0, false
	}
}

func (e *Emitter) dumpBlockSymtab(b *tcsymtab.BlockSymbolTable) {
	parentID := b.ID
	if b.Parent != nil {
		parentID = b.Parent.ID
	}
	e.blockSymtab = append(e.blockSymtab, "% begin tab-id "+itoa(b.ID)+" parent-tab-id "+itoa(parentID))
	for _, id := range b.Variables() {
		v, _ := e.Vars.Get(id)
		e.blockSymtab = append(e.blockSymtab, "var "+itoa(id)+" "+v.Name+" "+v.ValueType.String()+" "+itoa(v.Bytes))
	}
	for _, c := range b.Children {
		e.dumpBlockSymtab(c)
	}
	e.blockSymtab = append(e.blockSymtab, "% end")
}

func (e *Emitter) render() string {
	var sb strings.Builder
	section := func(name string, lines []string) {
		sb.WriteString("@ begin of " + name + "\n")
		for _, l := range lines {
			sb.WriteString(l + "\n")
		}
		sb.WriteString("@ end of " + name + "\n")
	}
	section("extlink", e.extlink)
	section("static-data", e.staticData)
	section("global-symtab", globalSymtabLines(e.Globals))
	section("block-symtab", e.blockSymtab)

	var instrLines []string
	for _, in := range e.instructions {
		instrLines = append(instrLines, in.String())
	}
	section("instructions", instrLines)
	return sb.String()
}

func globalSymtabLines(g *tcsymtab.GlobalSymbolTable) []string {
	var lines []string
	for _, name := range g.Names() {
		if fn, ok := g.Function(name); ok {
			kind := "function_define"
			if fn.IsImported {
				kind = "function_declare"
			}
			lines = append(lines, kind+" "+fn.Name+" "+fn.ReturnType.String()+" params "+itoa(len(fn.Params)))
			continue
		}
		if v, ok := g.Global(name); ok {
			lines = append(lines, "variable_define "+v.Name+" "+v.ValueType.String()+" "+strconv.FormatInt(v.InitValue, 10))
		}
	}
	return lines
}
