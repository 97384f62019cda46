package tclex

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/dekarrin/toycompile/internal/tcdfa"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// Option adjusts lexer behavior at construction time.
type Option func(*lexerOpts)

type lexerOpts struct {
	charConstantsAsNumerics bool
}

// WithCharConstantsAsNumerics makes Analyze re-kind char literals as numeric
// constants carrying the decimal ASCII value of their second byte.
func WithCharConstantsAsNumerics() Option {
	return func(o *lexerOpts) { o.charConstantsAsNumerics = true }
}

// LexError records a single lexing failure: either an unknown token (the DFA
// halted in a non-final state) or an I/O failure on the underlying stream.
type LexError struct {
	Row     int
	Col     int
	Message string
}

func (e LexError) Error() string {
	return "(" + itoa(e.Row) + ", " + itoa(e.Col) + ") " + e.Message
}

// Lexer drives a tcdfa.DFA over a byte stream to produce a token sequence.
type Lexer struct {
	dfa  *tcdfa.DFA
	opts lexerOpts
}

// New creates a Lexer driven by the given DFA.
func New(dfa *tcdfa.DFA, opts ...Option) *Lexer {
	lx := &Lexer{dfa: dfa}
	for _, o := range opts {
		o(&lx.opts)
	}
	return lx
}

// Analyze lexes the entire input, returning every token (including a
// trailing EOF token) and every accumulated error. Errors do not stop
// lexing; it continues past unknown tokens.
func (lx *Lexer) Analyze(r io.Reader) ([]Token, []LexError) {
	br := bufio.NewReader(r)

	var tokens []Token
	var errs []LexError

	row, col := 1, 1

	advance := func(b byte) {
		if b == '\n' {
			row++
			col = 1
		} else {
			col++
		}
	}

	for {
		// skip whitespace between tokens, tracking position.
		skippedAny := true
		for skippedAny {
			skippedAny = false
			b, err := br.ReadByte()
			if err == io.EOF {
				tokens = append(tokens, Token{Kind: tctoken.EOF, Row: row, Col: col})
				return tokens, errs
			}
			if err != nil {
				errs = append(errs, LexError{Row: row, Col: col, Message: "stream read failure: " + err.Error()})
				tokens = append(tokens, Token{Kind: tctoken.EOF, Row: row, Col: col})
				return tokens, errs
			}
			switch b {
			case ' ', '\t', '\n':
				advance(b)
				skippedAny = true
			case '\r':
				skippedAny = true
			default:
				_ = br.UnreadByte()
			}
		}

		startRow, startCol := row, col

		res, ok := lx.dfa.Recognize(br)
		if !ok || len(res.Consumed) == 0 {
			// dfa has no start state, or the very next byte has no
			// transition from the start state at all: emit it as a
			// one-byte unknown token so lexing always makes progress.
			b, err := br.ReadByte()
			if err == io.EOF {
				tokens = append(tokens, Token{Kind: tctoken.EOF, Row: row, Col: col})
				return tokens, errs
			}
			advance(b)
			tokens = append(tokens, Token{Content: string(b), Row: startRow, Col: startCol, Kind: tctoken.Unknown})
			errs = append(errs, LexError{Row: startRow, Col: startCol, Message: "unrecognized character"})
			continue
		}

		content := string(res.Consumed)
		for i := 0; i < len(res.Consumed); i++ {
			advance(res.Consumed[i])
		}

		if !res.State.IsFinal {
			tokens = append(tokens, Token{Content: content, Row: startRow, Col: startCol, Kind: tctoken.Unknown})
			errs = append(errs, LexError{Row: startRow, Col: startCol, Message: "lexeme halted in non-final state: " + quoteShort(content)})
			continue
		}

		kind := fillKind(content)
		tok := Token{Content: content, Row: startRow, Col: startCol, Kind: kind}

		if lx.opts.charConstantsAsNumerics && kind == tctoken.CharConstant && len(content) >= 3 {
			tok.Kind = tctoken.NumericConstant
			tok.Content = strconv.Itoa(int(content[1]))
		}

		tokens = append(tokens, tok)
	}
}

// fillKind implements the kind-assignment precedence chain, first match
// wins: exact keyword/punctuator map, then numeric, then single-line
// comment, then multi-line comment, then string literal, then char
// constant, otherwise identifier.
func fillKind(content string) tctoken.Kind {
	if k, ok := tctoken.ByLiteral(content); ok {
		return k
	}
	if _, err := strconv.ParseInt(content, 10, 64); err == nil {
		return tctoken.NumericConstant
	}
	if strings.HasPrefix(content, "//") {
		return tctoken.SingleLineComment
	}
	if strings.HasPrefix(content, "/*") {
		return tctoken.MultiLineComment
	}
	if strings.HasPrefix(content, "\"") {
		return tctoken.StringLiteral
	}
	if strings.HasPrefix(content, "'") {
		return tctoken.CharConstant
	}
	return tctoken.Identifier
}
