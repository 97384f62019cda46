package tcparse

import (
	"github.com/dekarrin/toycompile/internal/tcerr"
	"github.com/dekarrin/toycompile/internal/tclex"
	"github.com/dekarrin/toycompile/internal/tclr"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// SyntaxError is a single parser diagnostic, carrying source position plus
// the offending token's content where applicable.
type SyntaxError struct {
	Row     int
	Col     int
	Message string
	Content string
}

func (e SyntaxError) Error() string {
	msg := "(" + itoa(e.Row) + ", " + itoa(e.Col) + ") " + e.Message
	if e.Content != "" {
		msg += ": " + e.Content
	}
	return msg
}

// Result is the outcome of a parse: either a Root AST node the caller now
// owns, or a list of syntax errors.
type Result struct {
	Root   *Node
	Errors []SyntaxError
}

// Parser drives the shift-reduce loop over a token stream and the given
// Action/Goto table, building and owning the AST.
type Parser struct {
	table *tclr.Table

	// termIndex maps a tctoken.Kind to the table's terminal symbol id, built
	// once from the table's symbol list.
	termIndex map[int]int
}

// New builds a Parser driven by the given table.
func New(table *tclr.Table) *Parser {
	p := &Parser{table: table, termIndex: make(map[int]int)}
	for _, sym := range table.Symbols {
		if sym.Kind == 0 { // tcgrammar.Terminal == 0
			p.termIndex[int(sym.TokenKind)] = sym.ID
		}
	}
	return p
}

// Parse runs the shift-reduce loop to completion, either producing an owned
// AST root or at least one syntax error.
func (p *Parser) Parse(tokens []tclex.Token) Result {
	stateStack := []int{p.table.PrimaryStateID}
	var nodeStack []*Node

	idx := 0
	nextToken := func() (tclex.Token, bool) {
		for idx < len(tokens) {
			tok := tokens[idx]
			if tok.Kind.IsComment() {
				idx++
				continue
			}
			return tok, true
		}
		return tclex.Token{}, false
	}

	for {
		tok, ok := nextToken()
		if !ok {
			return Result{Errors: []SyntaxError{{Message: "unexpected end of tokens"}}}
		}

		termSymID, known := p.termIndex[int(tok.Kind)]
		if !known {
			return Result{Errors: []SyntaxError{{
				Row: tok.Row, Col: tok.Col,
				Message: "unexpected token", Content: tok.Content,
			}}}
		}

		cmd := p.table.Cell(stateStack[len(stateStack)-1], termSymID)

		switch cmd.Type {
		case tclr.CmdShift:
			leaf := NewLeaf(p.table.Symbols[termSymID], tok)
			nodeStack = append(nodeStack, leaf)
			stateStack = append(stateStack, cmd.Target)
			idx++

		case tclr.CmdReduce:
			prod := p.table.Productions[cmd.Production]
			n := len(prod.RHS)

			if len(nodeStack) < n || len(stateStack) < n+1 {
				return Result{Errors: []SyntaxError{{
					Row: tok.Row, Col: tok.Col,
					Message: "internal parser error: stack underflow during reduce",
				}}}
			}

			children := append([]*Node(nil), nodeStack[len(nodeStack)-n:]...)
			nodeStack = nodeStack[:len(nodeStack)-n]
			stateStack = stateStack[:len(stateStack)-n]

			newNode := NewInternal(p.table.Symbols[prod.TargetID], children)
			nodeStack = append(nodeStack, newNode)

			gotoCmd := p.table.Cell(stateStack[len(stateStack)-1], prod.TargetID)
			if gotoCmd.Type != tclr.CmdGoto {
				return Result{Errors: []SyntaxError{{
					Row: tok.Row, Col: tok.Col,
					Message: "internal parser error: expected goto after reduce",
				}}}
			}
			stateStack = append(stateStack, gotoCmd.Target)

		case tclr.CmdAccept:
			if len(nodeStack) == 0 {
				return Result{Errors: []SyntaxError{{Message: "internal parser error: accept with empty node stack"}}}
			}
			root := nodeStack[len(nodeStack)-1].Root()
			return Result{Root: root}

		default:
			if tok.Kind == tctoken.EOF {
				return Result{Errors: []SyntaxError{{
					Row: tok.Row, Col: tok.Col,
					Message: "unexpected end of tokens",
				}}}
			}
			return Result{Errors: []SyntaxError{{
				Row: tok.Row, Col: tok.Col,
				Message: "unexpected token", Content: tok.Content,
			}}}
		}
	}
}

// asParseError adapts a SyntaxError into the project-wide tcerr.Error type
// for callers that want a uniform error value across pipeline stages.
func asParseError(e SyntaxError) *tcerr.Error {
	return tcerr.New(tcerr.ErrParse, e.Message).At(e.Row, e.Col)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
