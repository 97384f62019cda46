package tcparse

import (
	"strings"
	"testing"

	"github.com/dekarrin/toycompile/internal/tcgrammar"
	"github.com/dekarrin/toycompile/internal/tclex"
	"github.com/dekarrin/toycompile/internal/tclr"
	"github.com/stretchr/testify/assert"
)

// buildExprParser builds a minimal "e : e '+' t | t ; t : NUM ;" parser,
// enough to exercise shift, reduce, goto, and accept end to end.
func buildExprParser(t *testing.T) *Parser {
	t.Helper()
	const src = `
/*_tcey_
token-key NUM numeric_constant
token-key PLUS plus
*/
%start e
%%
e : e PLUS t
  | t
  ;
t : NUM
  ;
`
	g, err := tcgrammar.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load grammar: %v", err)
	}
	table, err := tclr.Generate(g)
	if err != nil {
		t.Fatalf("generate table: %v", err)
	}
	return New(table)
}

func Test_Parse_AcceptsSimpleExpression(t *testing.T) {
	assert := assert.New(t)
	p := buildExprParser(t)

	lx := tclex.New(tclex.DefaultDFA())
	toks, lexErrs := lx.Analyze(strings.NewReader("1 + 2 + 3"))
	assert.Empty(lexErrs)

	res := p.Parse(toks)
	if !assert.Empty(res.Errors) {
		return
	}
	if assert.NotNil(res.Root) {
		assert.Equal("e", res.Root.Symbol.Name)
	}
}

func Test_Parse_EmptyInputIsUnexpectedEndOfTokens(t *testing.T) {
	assert := assert.New(t)
	p := buildExprParser(t)

	res := p.Parse(nil)
	if assert.Len(res.Errors, 1) {
		assert.Contains(res.Errors[0].Message, "unexpected end of tokens")
	}
}

// The lexer always appends a trailing EOF token, so an empty source reaches
// the driver as [eof] — which must surface as the same unexpected-end error
// as a genuinely empty token list.
func Test_Parse_LoneEOFTokenIsUnexpectedEndOfTokens(t *testing.T) {
	assert := assert.New(t)
	p := buildExprParser(t)

	lx := tclex.New(tclex.DefaultDFA())
	toks, lexErrs := lx.Analyze(strings.NewReader(""))
	assert.Empty(lexErrs)

	res := p.Parse(toks)
	if assert.Len(res.Errors, 1) {
		assert.Contains(res.Errors[0].Message, "unexpected end of tokens")
	}
}

func Test_Node_OwnershipInvariants(t *testing.T) {
	assert := assert.New(t)
	p := buildExprParser(t)

	lx := tclex.New(tclex.DefaultDFA())
	toks, _ := lx.Analyze(strings.NewReader("1 + 2"))
	res := p.Parse(toks)
	if !assert.NotNil(res.Root) {
		return
	}

	assert.Nil(res.Root.Parent)
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			assert.True(c.Parent == n)
			walk(c)
		}
	}
	walk(res.Root)
}
