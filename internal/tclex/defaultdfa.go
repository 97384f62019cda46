package tclex

import "github.com/dekarrin/toycompile/internal/tcdfa"

// DefaultDFA builds the longest-match recognizer the lexer uses when no
// external .tcdf resource is supplied: the in-repo fallback used by tests
// and by the CLI when no DFA file is configured. It recognizes
// identifier/number runs, string and char literals, both comment forms, and
// every punctuator. Kind assignment from the recognized span is a separate
// step (fillKind) performed by the lexer, not the DFA.
func DefaultDFA() *tcdfa.DFA {
	d := tcdfa.New()
	must := func(err error) {
		if err != nil {
			panic("tclex: building default dfa: " + err.Error())
		}
	}

	must(d.AddState(0, tcdfa.Start))
	must(d.AddState(1, tcdfa.Final)) // identifier / numeric body

	letterDigitUnderscore := func(from, to int) {
		must(d.AddTransitionRange(from, to, 'A', 'Z'))
		must(d.AddTransitionRange(from, to, 'a', 'z'))
		must(d.AddTransitionRange(from, to, '0', '9'))
		must(d.AddTransition(from, to, '_'))
	}
	letterDigitUnderscore(0, 1)
	letterDigitUnderscore(1, 1)

	// two-character operators, each distinguished by its own lead state so
	// that e.g. '<' followed by '+' halts cleanly on '<' instead of
	// manufacturing a bogus combined lexeme.
	type twoChar struct {
		lead      byte
		leadState int
		extend    byte
		extState  int
	}
	two := []twoChar{
		{'<', 100, '=', 101},
		{'>', 102, '=', 103},
		{'=', 104, '=', 105},
		{'!', 106, '=', 107},
	}
	for _, tc := range two {
		must(d.AddState(tc.leadState, tcdfa.Final))
		must(d.AddTransition(0, tc.leadState, tc.lead))
		must(d.AddState(tc.extState, tcdfa.Final))
		must(d.AddTransition(tc.leadState, tc.extState, tc.extend))
	}

	// '+' extends to either '++' or '+=', '-' to '--' or '-='.
	must(d.AddState(108, tcdfa.Final))
	must(d.AddTransition(0, 108, '+'))
	must(d.AddState(109, tcdfa.Final))
	must(d.AddTransition(108, 109, '+'))
	must(d.AddState(110, tcdfa.Final))
	must(d.AddTransition(108, 110, '='))

	must(d.AddState(111, tcdfa.Final))
	must(d.AddTransition(0, 111, '-'))
	must(d.AddState(112, tcdfa.Final))
	must(d.AddTransition(111, 112, '-'))
	must(d.AddState(113, tcdfa.Final))
	must(d.AddTransition(111, 113, '='))

	must(d.AddState(114, tcdfa.Final))
	must(d.AddTransition(0, 114, '&'))
	must(d.AddState(115, tcdfa.Final))
	must(d.AddTransition(114, 115, '&'))

	must(d.AddState(116, tcdfa.Final))
	must(d.AddTransition(0, 116, '|'))
	must(d.AddState(117, tcdfa.Final))
	must(d.AddTransition(116, 117, '|'))

	// string literal: "..."
	must(d.AddState(200, tcdfa.Normal))
	must(d.AddTransition(0, 200, '"'))
	must(d.AddTransitionRange(200, 200, 0, 255, '"'))
	must(d.AddState(201, tcdfa.Final))
	must(d.AddTransition(200, 201, '"'))

	// char literal: '...'
	must(d.AddState(210, tcdfa.Normal))
	must(d.AddTransition(0, 210, '\''))
	must(d.AddTransitionRange(210, 210, 0, 255, '\''))
	must(d.AddState(211, tcdfa.Final))
	must(d.AddTransition(210, 211, '\''))

	// '/' alone, single-line comment, multi-line comment.
	must(d.AddState(220, tcdfa.Final))
	must(d.AddTransition(0, 220, '/'))

	must(d.AddState(221, tcdfa.Final))
	must(d.AddTransition(220, 221, '/'))
	must(d.AddTransitionRange(221, 221, 0, 255, '\n'))

	must(d.AddState(230, tcdfa.Normal))
	must(d.AddTransition(220, 230, '*'))
	must(d.AddTransitionRange(230, 230, 0, 255, '*'))
	must(d.AddState(231, tcdfa.Normal))
	must(d.AddTransition(230, 231, '*'))
	must(d.AddTransition(231, 231, '*'))
	must(d.AddTransitionRange(231, 230, 0, 255, '*', '/'))
	must(d.AddState(232, tcdfa.Final))
	must(d.AddTransition(231, 232, '/'))

	// every remaining single-character punctuator.
	must(d.AddState(300, tcdfa.Final))
	for _, b := range []byte("(){}[];,~?:%*^") {
		must(d.AddTransition(0, 300, b))
	}

	return d
}
