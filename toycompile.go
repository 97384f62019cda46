// Package toycompile wires the lexer, parser, TCIR emitter, and x86
// emitter into a single pipeline: cmd/toycompile and internal/tcserver both
// build a Pipeline to compile source; they import internal/tc* packages
// directly only for lexer-only runs, token types, and AST dumps.
package toycompile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dekarrin/toycompile/internal/tcdfa"
	"github.com/dekarrin/toycompile/internal/tcerr"
	"github.com/dekarrin/toycompile/internal/tcgrammar"
	"github.com/dekarrin/toycompile/internal/tcir"
	"github.com/dekarrin/toycompile/internal/tclex"
	"github.com/dekarrin/toycompile/internal/tclr"
	"github.com/dekarrin/toycompile/internal/tcparse"
	"github.com/dekarrin/toycompile/internal/tcx86"
)

// Exit codes: 0 is success; negative values segregate which stage first
// reported a failure.
const (
	ExitSuccess       = 0
	ExitFnameMissing  = -1
	ExitOpenFailure   = -2
	ExitGrammarError  = -3
	ExitDFANotReady   = -4
	ExitLexErrors     = -5
	ExitParseErrors   = -6
	ExitIRErrors      = -7
	ExitOutputFileErr = -9
)

// Config controls how a Pipeline is assembled: which DFA and grammar
// resources to load, and how the generated parser table is cached.
type Config struct {
	// DFAFile, if set, is read as a .tcdf description and built into a
	// tcdfa.DFA. If empty, tclex.DefaultDFA is used.
	DFAFile string

	// GrammarFile, if set, is read as an extended-Yacc grammar. If empty,
	// the embedded c_subset.tcey resource is used.
	GrammarFile string

	// CacheTableFile, if set, is where the generated Action/Goto table is
	// read from (when present and RebuildTable is false) and written to
	// (unless NoStoreTable is true).
	CacheTableFile string

	// RebuildTable forces regeneration even if CacheTableFile exists.
	RebuildTable bool

	// NoStoreTable skips writing the generated table back to CacheTableFile.
	NoStoreTable bool

	// CharConstantsAsNumerics makes the lexer re-kind char literals as
	// numeric constants carrying the ASCII value of their second byte.
	CharConstantsAsNumerics bool
}

// Pipeline holds the built DFA, grammar, and Action/Goto table needed to
// lex, parse, and translate one or more translation units. Building a
// Pipeline is the expensive, reusable step; each compile Result is cheap and
// carries no state back into the Pipeline.
type Pipeline struct {
	dfa     *tcdfa.DFA
	grammar *tcgrammar.Grammar
	table   *tclr.Table
	cfg     Config
}

// New assembles a Pipeline from cfg, loading or generating the DFA,
// grammar, and parser table as directed.
func New(cfg Config) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg}

	if cfg.DFAFile != "" {
		f, err := os.Open(cfg.DFAFile)
		if err != nil {
			return nil, tcerr.New(tcerr.ErrDFA, "opening dfa file", err)
		}
		defer f.Close()
		dfa, err := tcdfa.Build(f)
		if err != nil {
			return nil, err
		}
		p.dfa = dfa
	} else {
		p.dfa = tclex.DefaultDFA()
	}
	if p.dfa.Start() == nil {
		return nil, tcerr.New(tcerr.ErrDFA, "dfa has no start state")
	}

	var grammarSrc []byte
	if cfg.GrammarFile != "" {
		b, err := os.ReadFile(cfg.GrammarFile)
		if err != nil {
			return nil, tcerr.New(tcerr.ErrGrammar, "opening grammar file", err)
		}
		grammarSrc = b
	} else {
		grammarSrc = tcgrammar.CSubsetSource
	}

	g, err := tcgrammar.Load(bytes.NewReader(grammarSrc))
	if err != nil {
		return nil, err
	}
	p.grammar = g

	table, err := p.loadOrBuildTable()
	if err != nil {
		return nil, err
	}
	p.table = table

	return p, nil
}

// loadOrBuildTable implements the -rebuild-table/-cache-table/-no-store-table
// roundtrip: reuse a cached table unless told to rebuild, and persist a
// freshly generated one with a write-temp-then-rename so a crash mid-write
// never leaves a corrupt cache behind.
func (p *Pipeline) loadOrBuildTable() (*tclr.Table, error) {
	if p.cfg.CacheTableFile != "" && !p.cfg.RebuildTable {
		if f, err := os.Open(p.cfg.CacheTableFile); err == nil {
			defer f.Close()
			if t, err := tclr.Load(f); err == nil {
				return t, nil
			}
			// fall through to regeneration on a corrupt/stale cache file.
		}
	}

	table, err := tclr.Generate(p.grammar)
	if err != nil {
		return nil, err
	}

	if p.cfg.CacheTableFile != "" && !p.cfg.NoStoreTable {
		if err := atomicWriteTable(p.cfg.CacheTableFile, table); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func atomicWriteTable(path string, table *tclr.Table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tcpt-*")
	if err != nil {
		return tcerr.New(tcerr.ErrTable, "creating temp table cache file", err)
	}
	tmpName := tmp.Name()
	if err := table.Dump(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return tcerr.New(tcerr.ErrTable, "closing temp table cache file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return tcerr.New(tcerr.ErrTable, "renaming temp table cache file into place", err)
	}
	return nil
}

// Lex runs the lexer stage over r.
func (p *Pipeline) Lex(r io.Reader) ([]tclex.Token, []tclex.LexError) {
	var opts []tclex.Option
	if p.cfg.CharConstantsAsNumerics {
		opts = append(opts, tclex.WithCharConstantsAsNumerics())
	}
	lx := tclex.New(p.dfa, opts...)
	return lx.Analyze(r)
}

// Parse runs the shift-reduce driver over tokens using the Pipeline's table.
func (p *Pipeline) Parse(tokens []tclex.Token) tcparse.Result {
	return tcparse.New(p.table).Parse(tokens)
}

// EmitIR walks root and returns the rendered TCIR text alongside the
// Emitter, which internal/tcx86 needs for its own instruction/symbol-table
// access.
func (p *Pipeline) EmitIR(root *tcparse.Node) (string, *tcir.Emitter) {
	e := tcir.New()
	text := e.Emit(root)
	return text, e
}

// EmitAsm runs the peephole pass and x86 emission over e.
func (p *Pipeline) EmitAsm(e *tcir.Emitter) string {
	return tcx86.Emit(e)
}

// Result is the full outcome of compiling one translation unit through
// every stage the pipeline touched before stopping.
type Result struct {
	Tokens    []tclex.Token
	LexErrors []tclex.LexError
	AST       *tcparse.Node
	ParseErrs []tcparse.SyntaxError
	IR        string
	IRDiags   []tcir.Diagnostic
	Asm       string
	Emitter   *tcir.Emitter
	ExitCode  int
}

// CompileText is a convenience wrapper around Compile for callers that
// already have source as a string (e.g. a websocket message body) rather
// than an io.Reader.
func (p *Pipeline) CompileText(src string) Result {
	return p.Compile(strings.NewReader(src))
}

// hasFatalIRDiag reports whether diags contains an unsupported-grammar or
// semantic finding; warnings are never fatal.
func hasFatalIRDiag(diags []tcir.Diagnostic) bool {
	for _, d := range diags {
		if d.Kind != tcir.Warning {
			return true
		}
	}
	return false
}

// Compile runs the full pipeline (lex -> parse -> IR -> asm) over r,
// stopping at the first stage that reports unrecoverable failure and
// recording the exit code that identifies which stage stopped it.
func (p *Pipeline) Compile(r io.Reader) Result {
	var res Result

	tokens, lexErrs := p.Lex(r)
	res.Tokens, res.LexErrors = tokens, lexErrs
	if len(lexErrs) > 0 {
		res.ExitCode = ExitLexErrors
		return res
	}

	parseResult := p.Parse(tokens)
	if len(parseResult.Errors) > 0 {
		res.ParseErrs = parseResult.Errors
		res.ExitCode = ExitParseErrors
		return res
	}
	res.AST = parseResult.Root

	irText, emitter := p.EmitIR(parseResult.Root)
	res.IR = irText
	res.Emitter = emitter
	res.IRDiags = emitter.Diagnostics()
	if hasFatalIRDiag(res.IRDiags) {
		res.ExitCode = ExitIRErrors
		return res
	}

	res.Asm = p.EmitAsm(emitter)
	res.ExitCode = ExitSuccess
	return res
}
