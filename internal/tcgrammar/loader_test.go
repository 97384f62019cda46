package tcgrammar

import (
	"strings"
	"testing"

	"github.com/dekarrin/toycompile/internal/tctoken"
	"github.com/stretchr/testify/assert"
)

const sampleGrammar = `
/*_tcey_
token-key IDENT identifier
token-key NUM numeric_constant
*/

%start program

%%

program : statement
		| program statement
		;

statement : IDENT '=' NUM ';'
		  ;
`

func Test_Load_BindsTokenKeysAndFlattensAlternatives(t *testing.T) {
	assert := assert.New(t)

	g, err := Load(strings.NewReader(sampleGrammar))
	if !assert.NoError(err) {
		return
	}

	assert.True(g.HasStart())
	startID, ok := g.SymbolByName("program")
	assert.True(ok)
	assert.Equal(startID, g.StartID)

	// two alternatives on 'program' must become two flat productions with
	// the same target.
	progProds := g.ProductionsFor(startID)
	assert.Len(progProds, 2)
	assert.Equal(progProds[0].TargetID, progProds[1].TargetID)

	identID, ok := g.SymbolByName("IDENT")
	if assert.True(ok) {
		assert.Equal(tctoken.Identifier, g.Symbol(identID).TokenKind)
		assert.Equal(Terminal, g.Symbol(identID).Kind)
	}

	stmtID, ok := g.SymbolByName("statement")
	assert.True(ok)
	assert.Equal(NonTerminal, g.Symbol(stmtID).Kind)
}

func Test_Load_UnknownSymbolError(t *testing.T) {
	assert := assert.New(t)
	_, err := Load(strings.NewReader(`
%start s
%%
s : WEIRDO ;
`))
	assert.Error(err)
}

func Test_Load_EmptyRHSRejected(t *testing.T) {
	assert := assert.New(t)
	_, err := Load(strings.NewReader(`
%start s
%%
s : ;
`))
	assert.Error(err)
}
