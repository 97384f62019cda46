package tclex

import (
	"strings"
	"testing"

	"github.com/dekarrin/toycompile/internal/tctoken"
	"github.com/stretchr/testify/assert"
)

func Test_Analyze_EmptySource(t *testing.T) {
	assert := assert.New(t)
	lx := New(DefaultDFA())
	toks, errs := lx.Analyze(strings.NewReader(""))
	assert.Empty(errs)
	if assert.Len(toks, 1) {
		assert.Equal(tctoken.EOF, toks[0].Kind)
	}
}

func Test_Analyze_Declaration(t *testing.T) {
	assert := assert.New(t)
	lx := New(DefaultDFA())
	toks, errs := lx.Analyze(strings.NewReader("int x = 1;"))
	assert.Empty(errs)

	var kinds []tctoken.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal([]tctoken.Kind{
		tctoken.KwInt, tctoken.Identifier, tctoken.Assign,
		tctoken.NumericConstant, tctoken.Semicolon, tctoken.EOF,
	}, kinds)
}

func Test_Analyze_RowColTracking(t *testing.T) {
	assert := assert.New(t)
	lx := New(DefaultDFA())
	toks, _ := lx.Analyze(strings.NewReader("int x;\nint y;"))

	// first "int" at (1,1), second "int" at (2,1)
	assert.Equal(1, toks[0].Row)
	assert.Equal(1, toks[0].Col)

	var secondInt Token
	found := false
	for i, tok := range toks {
		if i > 2 && tok.Kind == tctoken.KwInt {
			secondInt = tok
			found = true
			break
		}
	}
	if assert.True(found) {
		assert.Equal(2, secondInt.Row)
		assert.Equal(1, secondInt.Col)
	}
}

func Test_Analyze_UnknownCharacterContinuesLexing(t *testing.T) {
	assert := assert.New(t)
	lx := New(DefaultDFA())
	toks, errs := lx.Analyze(strings.NewReader("int x @ ;"))
	assert.Len(errs, 1)

	hasUnknown := false
	hasSemicolon := false
	for _, tok := range toks {
		if tok.Kind == tctoken.Unknown {
			hasUnknown = true
		}
		if tok.Kind == tctoken.Semicolon {
			hasSemicolon = true
		}
	}
	assert.True(hasUnknown)
	assert.True(hasSemicolon, "lexing must continue past the unknown token")
}

func Test_Analyze_CharConstantAsNumeric(t *testing.T) {
	assert := assert.New(t)
	lx := New(DefaultDFA(), WithCharConstantsAsNumerics())
	toks, errs := lx.Analyze(strings.NewReader("'A'"))
	assert.Empty(errs)
	if assert.Len(toks, 2) {
		assert.Equal(tctoken.NumericConstant, toks[0].Kind)
		assert.Equal("65", toks[0].Content)
	}
}

func Test_Analyze_Comments(t *testing.T) {
	assert := assert.New(t)
	lx := New(DefaultDFA())
	toks, errs := lx.Analyze(strings.NewReader("// hi\n/* block */\nint x;"))
	assert.Empty(errs)
	assert.Equal(tctoken.SingleLineComment, toks[0].Kind)
	assert.Equal(tctoken.MultiLineComment, toks[1].Kind)
	assert.Equal(tctoken.KwInt, toks[2].Kind)
}
