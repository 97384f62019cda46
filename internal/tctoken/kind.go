// Package tctoken defines the closed token-kind enumeration shared by the
// lexer, grammar loader, and parser, along with the process-wide name/kind
// registry, constructed lazily once and immutable thereafter.
package tctoken

import "sync"

// Kind is a closed enumeration of token kinds recognized by the lexer.
type Kind int

const (
	Unknown Kind = iota
	EOF
	Identifier
	NumericConstant
	StringLiteral
	CharConstant
	SingleLineComment
	MultiLineComment

	// keywords
	KwInt
	KwVoid
	KwIf
	KwElse
	KwWhile
	KwDo
	KwFor
	KwReturn
	KwBreak
	KwContinue
	KwSwitch
	KwCase
	KwDefault
	KwGoto

	// punctuators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Comma
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Lt
	Gt
	Le
	Ge
	EqEq
	NotEq
	AndAnd
	OrOr
	Question
	Colon
	Inc
	Dec
	PlusEq
	MinusEq
)

// kindInfo carries the human-readable name and defining literal spelling (if
// any) used both for registry lookups and for diagnostics.
type kindInfo struct {
	name    string
	literal string // non-empty for keywords/punctuators matched by exact text
}

var (
	registryOnce sync.Once
	byName       map[string]Kind
	infoByKind   map[Kind]kindInfo
)

// builtin is the exact-match table consulted first by the lexer's kind
// precedence rule: keyword/punctuator spellings that always win over
// numeric/identifier/comment/string/char classification.
var builtin = []struct {
	lit  string
	kind Kind
	name string
}{
	{"int", KwInt, "int"},
	{"void", KwVoid, "void"},
	{"if", KwIf, "if"},
	{"else", KwElse, "else"},
	{"while", KwWhile, "while"},
	{"do", KwDo, "do"},
	{"for", KwFor, "for"},
	{"return", KwReturn, "return"},
	{"break", KwBreak, "break"},
	{"continue", KwContinue, "continue"},
	{"switch", KwSwitch, "switch"},
	{"case", KwCase, "case"},
	{"default", KwDefault, "default"},
	{"goto", KwGoto, "goto"},

	{"(", LParen, "lparen"},
	{")", RParen, "rparen"},
	{"{", LBrace, "lbrace"},
	{"}", RBrace, "rbrace"},
	{"[", LBracket, "lbracket"},
	{"]", RBracket, "rbracket"},
	{";", Semicolon, "semicolon"},
	{",", Comma, "comma"},
	{"=", Assign, "assign"},
	{"+", Plus, "plus"},
	{"-", Minus, "minus"},
	{"*", Star, "star"},
	{"/", Slash, "slash"},
	{"%", Percent, "percent"},
	{"&", Amp, "amp"},
	{"|", Pipe, "pipe"},
	{"^", Caret, "caret"},
	{"~", Tilde, "tilde"},
	{"!", Bang, "bang"},
	{"<", Lt, "lt"},
	{">", Gt, "gt"},
	{"<=", Le, "le"},
	{">=", Ge, "ge"},
	{"==", EqEq, "eq_eq"},
	{"!=", NotEq, "not_eq"},
	{"&&", AndAnd, "and_and"},
	{"||", OrOr, "or_or"},
	{"?", Question, "question"},
	{":", Colon, "colon"},
	{"++", Inc, "inc"},
	{"--", Dec, "dec"},
	{"+=", PlusEq, "plus_eq"},
	{"-=", MinusEq, "minus_eq"},
}

var nonLiteral = []struct {
	kind Kind
	name string
}{
	{Unknown, "unknown"},
	{EOF, "eof"},
	{Identifier, "identifier"},
	{NumericConstant, "numeric_constant"},
	{StringLiteral, "string_literal"},
	{CharConstant, "char_constant"},
	{SingleLineComment, "single_line_comment"},
	{MultiLineComment, "multi_line_comment"},
}

// initRegistry builds the process-wide map exactly once; this registry is
// the sole piece of global mutable state in the system, and after first
// touch it is read-only.
func initRegistry() {
	registryOnce.Do(func() {
		byName = make(map[string]Kind)
		infoByKind = make(map[Kind]kindInfo)

		for _, b := range builtin {
			byName[b.name] = b.kind
			infoByKind[b.kind] = kindInfo{name: b.name, literal: b.lit}
		}
		for _, n := range nonLiteral {
			byName[n.name] = n.kind
			infoByKind[n.kind] = kindInfo{name: n.name}
		}
	})
}

// ByName resolves a registered kind name (as used in grammar token-key
// bindings) to its Kind. The second return is false if unregistered.
func ByName(name string) (Kind, bool) {
	initRegistry()
	k, ok := byName[name]
	return k, ok
}

// Name returns the registered human-readable name for a kind.
func (k Kind) Name() string {
	initRegistry()
	if info, ok := infoByKind[k]; ok {
		return info.name
	}
	return "unknown"
}

// Literal returns the exact spelling that maps to this kind via the
// keyword/punctuator exact-match table, and whether one exists.
func (k Kind) Literal() (string, bool) {
	initRegistry()
	info, ok := infoByKind[k]
	if !ok || info.literal == "" {
		return "", false
	}
	return info.literal, true
}

// ByLiteral performs the exact keyword/punctuator lookup that is the first
// step of the lexer's kind precedence chain.
func ByLiteral(lit string) (Kind, bool) {
	initRegistry()
	for _, b := range builtin {
		if b.lit == lit {
			return b.kind, true
		}
	}
	return Unknown, false
}

// IsComment reports whether kind is one of the two comment kinds; the parser
// driver skips these tokens before consulting the Action/Goto table.
func (k Kind) IsComment() bool {
	return k == SingleLineComment || k == MultiLineComment
}
