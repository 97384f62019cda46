// Package tclex implements the lexer: it drives a tcdfa.DFA over a
// character stream, tags each recognized lexeme with a tctoken.Kind via the
// precedence chain, and tracks (row, col) source positions.
package tclex

import "github.com/dekarrin/toycompile/internal/tctoken"

// Token is a single lexeme tagged with its kind and source position. Row and
// col are 1-indexed; content is the exact byte span the DFA consumed.
type Token struct {
	Content string
	Row     int
	Col     int
	Kind    tctoken.Kind
}

func (t Token) String() string {
	return "Token<" + t.Kind.Name() + " " + quoteShort(t.Content) + " @(" + itoa(t.Row) + "," + itoa(t.Col) + ")>"
}

func quoteShort(s string) string {
	if len(s) > 24 {
		s = s[:24] + "..."
	}
	return "\"" + s + "\""
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
