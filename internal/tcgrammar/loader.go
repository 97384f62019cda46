package tcgrammar

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/dekarrin/toycompile/internal/tcerr"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// tceyPrefix opens the structured comment block that binds yacc terminal
// names to lexer token kinds.
const tceyPrefix = "/*_tcey_"

// Load parses an extended-Yacc grammar source into a Grammar. Unknown
// terminal names that can't be resolved via a token-key entry or the
// builtin token map produce an UnknownSymbol error.
func Load(r io.Reader) (*Grammar, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, tcerr.New(tcerr.ErrGrammar, "failed reading grammar source", err)
	}

	tokenKeys, body, err := extractTokenKeys(string(src))
	if err != nil {
		return nil, err
	}

	g := New()

	lines := strings.Split(body, "\n")
	var startName string
	var rulesLines []string
	inRules := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			// skip until closing */ (possibly same line)
			if idx := strings.Index(line, "*/"); idx == -1 {
				for i++; i < len(lines); i++ {
					if strings.Contains(lines[i], "*/") {
						break
					}
				}
			}
			continue
		}
		if trimmed == "%%" {
			inRules = !inRules
			continue
		}
		if strings.HasPrefix(trimmed, "%start") {
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				startName = fields[1]
			}
			continue
		}
		if strings.HasPrefix(trimmed, "%") {
			// unknown directive, skipped line-wise.
			continue
		}
		if inRules {
			rulesLines = append(rulesLines, line)
		}
	}

	if err := parseRules(g, strings.Join(rulesLines, "\n"), tokenKeys); err != nil {
		return nil, err
	}

	if startName == "" {
		return nil, tcerr.New(tcerr.ErrGrammar, "grammar declares no %start entry symbol")
	}
	startID, ok := g.SymbolByName(startName)
	if !ok {
		return nil, tcerr.New(tcerr.ErrGrammar, "unknown %start symbol "+strings.TrimSpace(startName))
	}
	g.SetStart(startID)

	return g, nil
}

// extractTokenKeys pulls out the /*_tcey_ ... */ block (if any), returning
// its token-key bindings plus the grammar source with the block removed.
func extractTokenKeys(src string) (map[string]string, string, error) {
	keys := make(map[string]string)

	idx := strings.Index(src, tceyPrefix)
	if idx == -1 {
		return keys, src, nil
	}
	rest := src[idx+len(tceyPrefix):]
	end := strings.Index(rest, "*/")
	if end == -1 {
		return nil, "", tcerr.New(tcerr.ErrGrammar, "unterminated /*_tcey_ block")
	}
	body := rest[:end]

	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] != "token-key" {
			continue
		}
		if len(fields) < 3 {
			return nil, "", tcerr.New(tcerr.ErrGrammar, "malformed token-key entry: "+sc.Text())
		}
		keys[fields[1]] = fields[2]
	}

	cleaned := src[:idx] + rest[end+2:]
	return keys, cleaned, nil
}

// parseRules parses the `lhs : alt1 | alt2 ;` productions section into flat
// productions, one per alternative.
func parseRules(g *Grammar, rulesSrc string, tokenKeys map[string]string) error {
	// splitUnquoted splits s at each sep byte outside a '...' or "..." literal,
	// so quoted terminals such as ';' or '|' stay whole.
	splitUnquoted := func(s string, sep byte) (parts []string) {
		start, quote := 0, byte(0)
		for i := 0; i < len(s); i++ {
			if c := s[i]; quote != 0 && c == quote {
				quote = 0
			} else if quote == 0 && (c == '\'' || c == '"') {
				quote = c
			} else if quote == 0 && c == sep {
				parts, start = append(parts, s[start:i]), i+1
			}
		}
		return append(parts, s[start:])
	}

	// join continuation lines and split on unquoted ';' to get one rule block each.
	joined := strings.ReplaceAll(rulesSrc, "\n", " ")
	blocks := splitUnquoted(joined, ';')

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		parts := strings.SplitN(block, ":", 2)
		if len(parts) != 2 {
			return tcerr.New(tcerr.ErrGrammar, "malformed rule (missing ':'): "+block)
		}
		lhsName := strings.TrimSpace(parts[0])
		if lhsName == "" {
			return tcerr.New(tcerr.ErrGrammar, "empty rule left-hand side")
		}
		if !isNonTerminalName(lhsName) {
			return tcerr.New(tcerr.ErrGrammar, "rule left-hand side must be a non-terminal: "+lhsName)
		}
		lhsID := g.DeclareSymbol(lhsName, NonTerminal)

		alternatives := splitUnquoted(parts[1], '|')
		for _, alt := range alternatives {
			symNames := strings.Fields(alt)
			var rhs []int
			for _, rawName := range symNames {
				name := rawName
				quotedLiteral, isQuoted := unquoteLiteral(rawName)

				kind := NonTerminal
				if isQuoted || !isNonTerminalName(name) {
					kind = Terminal
				}
				id := g.DeclareSymbol(name, kind)
				if kind == Terminal && g.Symbols[id].TokenKind == tctoken.Unknown {
					lookup := name
					if isQuoted {
						lookup = quotedLiteral
					}
					tk, err := resolveTerminal(lookup, tokenKeys)
					if err != nil {
						return err
					}
					g.BindTerminal(id, tk)
				}
				rhs = append(rhs, id)
			}
			if len(rhs) == 0 {
				return tcerr.New(tcerr.ErrGrammar, "empty right-hand side not allowed for "+lhsName)
			}
			if _, err := g.AddProduction(lhsID, rhs); err != nil {
				return tcerr.New(tcerr.ErrGrammar, "failed adding production", err)
			}
		}
	}

	return nil
}

// resolveTerminal resolves a terminal name to a token kind via the
// token-key bindings first, falling back to the builtin token map. An
// unresolved name is the UnknownSymbol error condition.
func resolveTerminal(name string, tokenKeys map[string]string) (tctoken.Kind, error) {
	if literal, ok := tokenKeys[name]; ok {
		if tk, ok := tctoken.ByLiteral(literal); ok {
			return tk, nil
		}
		if tk, ok := tctoken.ByName(literal); ok {
			return tk, nil
		}
		return tctoken.Unknown, tcerr.New(tcerr.ErrGrammar, "token-key for "+name+" names unknown literal "+literal)
	}
	if tk, ok := tctoken.ByName(name); ok {
		return tk, nil
	}
	if tk, ok := tctoken.ByLiteral(name); ok {
		return tk, nil
	}
	return tctoken.Unknown, tcerr.New(tcerr.ErrGrammar, "UnknownSymbol: terminal "+name+" has no token-key binding")
}

// unquoteLiteral recognizes yacc-style quoted single-token terminals like
// '+' or ';', returning the unquoted text and true. These are always
// terminals regardless of case, resolved directly against the builtin
// punctuator/keyword literal map.
func unquoteLiteral(name string) (string, bool) {
	if len(name) >= 2 && name[0] == '\'' && name[len(name)-1] == '\'' {
		return name[1 : len(name)-1], true
	}
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		return name[1 : len(name)-1], true
	}
	return "", false
}

// isNonTerminalName reports whether a grammar symbol name denotes a
// non-terminal: names beginning with a lowercase letter are non-terminals,
// everything else is a terminal.
func isNonTerminalName(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsLower(r)
}
