/*
Toycompile is the command-line front end to the toycompile pipeline: a
DFA-driven lexer, an LR(1)-table-driven parser, a TCIR emitter, and an x86
peephole/emitter, exposed as three subprograms.

Usage:

	toycompile s<subprogram> [options]

Available subprograms:

	LexerCli  - lexical analysis only; dumps the token stream.
	ParserCli - lexing + parsing; dumps the AST as a Graphviz digraph.
	UniCli    - the full pipeline: lexing, parsing, TCIR, and x86 (default
	            when no subprogram is given).

Options use a `-key:value` / `-flag` syntax rather than pflag's native
`--key=value`; main rewrites argv into pflag's shape before parsing.

The flags are:

	-fname:PATH       source file to compile (required).
	-help             print usage and exit 0.
	-dump-tokens      print the token stream (UniCli only).
	-dump-ast         print the AST as a Graphviz digraph (UniCli only).
	-dump-ir          print the rendered TCIR text (UniCli only).
	-dump-asm         print the generated x86 assembly (UniCli only).
	-disable-color    disable ANSI color even when attached to a terminal.
	-tcey:PATH        use the given extended-Yacc grammar file instead of
	                  the embedded default.
	-cache-table:PATH parser table cache location (default: tcey path + ".tcpt").
	-rebuild-table    ignore any cached parser table and regenerate it.
	-no-store-table   don't persist a freshly generated parser table.
	-dot-file:PATH    write the AST digraph to PATH instead of stdout.
	-ir-to-file:PATH  write the TCIR text to PATH instead of stdout.
	-asm-to-file:PATH write the assembly text to PATH instead of stdout.
	-repl             after compiling (or with no -fname), open an
	                  interactive line-at-a-time lexer/parser shell.
*/
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	humanize "github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/dekarrin/toycompile"
	"github.com/dekarrin/toycompile/internal/tcdot"
	"github.com/dekarrin/toycompile/internal/tclex"
)

var (
	flagFname        = pflag.String("fname", "", "source file to compile")
	flagHelp         = pflag.Bool("help", false, "print usage and exit")
	flagDumpTokens   = pflag.Bool("dump-tokens", false, "dump the token stream")
	flagDumpAST      = pflag.Bool("dump-ast", false, "dump the AST as a Graphviz digraph")
	flagDumpIR       = pflag.Bool("dump-ir", false, "dump the rendered TCIR text")
	flagDumpAsm      = pflag.Bool("dump-asm", false, "dump the generated x86 assembly")
	flagDisableColor = pflag.Bool("disable-color", false, "disable ANSI color output")
	flagTcey         = pflag.String("tcey", "", "extended-Yacc grammar file")
	flagCacheTable   = pflag.String("cache-table", "", "parser table cache file")
	flagRebuildTable = pflag.Bool("rebuild-table", false, "ignore cache, regenerate parser table")
	flagNoStoreTable = pflag.Bool("no-store-table", false, "don't persist the generated parser table")
	flagDotFile      = pflag.String("dot-file", "", "write AST digraph to this file")
	flagIRToFile     = pflag.String("ir-to-file", "", "write TCIR text to this file")
	flagAsmToFile    = pflag.String("asm-to-file", "", "write assembly text to this file")
	flagRepl         = pflag.Bool("repl", false, "open an interactive lex/parse shell")
)

func main() {
	subProgram, rest := splitSubProgram(os.Args[1:])
	pflag.CommandLine.Parse(pflagify(rest))

	out := os.Stdout
	color := !*flagDisableColor && isatty.IsTerminal(out.Fd())

	if *flagHelp {
		printUsage(out, subProgram)
		os.Exit(0)
	}

	if subProgram == "" {
		fmt.Fprintln(out, "[Info] no subprogram specified. use UniCli as default.")
		printUsage(out, "")
		subProgram = "UniCli"
	}

	var code int
	switch subProgram {
	case "LexerCli":
		code = runLexerCli(out, color)
	case "ParserCli":
		code = runParserCli(out, color)
	case "UniCli":
		code = runUniCli(out, color)
	default:
		fmt.Fprintf(out, "[Error] unknown subprogram %q\n", subProgram)
		code = toycompile.ExitFnameMissing
	}

	os.Exit(code)
}

// splitSubProgram pulls the leading `s<name>` positional argument off the
// front of args, returning the bare subprogram name and the remaining
// arguments untouched.
func splitSubProgram(args []string) (string, []string) {
	if len(args) == 0 {
		return "", args
	}
	if strings.HasPrefix(args[0], "s") && !strings.HasPrefix(args[0], "-") {
		return args[0][1:], args[1:]
	}
	return "", args
}

// pflagify rewrites the CLI's own `-key:value` / `-flag` argument shape
// into pflag's native `--key=value` / `--flag` shape, so pflag can do the
// actual parsing.
func pflagify(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if !strings.HasPrefix(a, "-") || strings.HasPrefix(a, "--") {
			out = append(out, a)
			continue
		}
		body := a[1:]
		if colon := strings.IndexByte(body, ':'); colon >= 0 {
			out = append(out, "--"+body[:colon]+"="+body[colon+1:])
		} else {
			out = append(out, "--"+body)
		}
	}
	return out
}

func printUsage(out *os.File, subProgram string) {
	rows := [][]string{
		{"param", "description"},
		{"fname:[x]", "specify input file x (required)."},
		{"help", "get help."},
		{"dump-tokens", "dump the lexed token stream (UniCli only)."},
		{"dump-ast", "dump the AST as a Graphviz digraph (UniCli only)."},
		{"dump-ir", "dump the rendered TCIR text (UniCli only)."},
		{"dump-asm", "dump the generated x86 assembly (UniCli only)."},
		{"rebuild-table", "reload parser table from tcey file."},
		{"no-store-table", "don't store the built table to file."},
		{"cache-table:[x]", "specify cache table file x."},
		{"tcey:[x]", "set tcey grammar file x."},
		{"dot-file:[x]", "store AST digraph to file x."},
		{"ir-to-file:[x]", "store TCIR text to file x."},
		{"asm-to-file:[x]", "store assembly text to file x."},
		{"disable-color", "disable color on log output stream."},
		{"repl", "open an interactive lex/parse shell."},
	}

	title := "ToyCompile Unified CommandLine"
	if subProgram != "" {
		title = "ToyCompile " + subProgram
	}

	table := rosed.Edit("").
		InsertTableOpts(0, rows, 72, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()

	fmt.Fprintf(out, "\n%s\n\nusage: toycompile s[subprogram] [options]\n\nparams:\n%s\n\nexample:\n  toycompile sUniCli -fname:./test.c -dump-ir -dump-asm\n",
		title, table)
}

// colorer centralizes the ANSI-color-or-not decision: color only when
// attached to a terminal and not explicitly disabled.
type colorer struct {
	enabled bool
}

func (c colorer) set(out *os.File, r, g, b int) {
	if c.enabled {
		fmt.Fprintf(out, "\x1b[38;2;%d;%d;%dm", r, g, b)
	}
}

func (c colorer) reset(out *os.File) {
	if c.enabled {
		fmt.Fprint(out, "\x1b[0m")
	}
}

func openPipeline() (*toycompile.Pipeline, error) {
	return toycompile.New(toycompile.Config{
		GrammarFile:    *flagTcey,
		CacheTableFile: resolveCacheTablePath(),
		RebuildTable:   *flagRebuildTable,
		NoStoreTable:   *flagNoStoreTable,
	})
}

func resolveCacheTablePath() string {
	if *flagCacheTable != "" {
		return *flagCacheTable
	}
	if *flagTcey != "" {
		return *flagTcey + ".tcpt"
	}
	return ""
}

func runLexerCli(out *os.File, color bool) int {
	c := colorer{enabled: color}

	if *flagFname == "" {
		fmt.Fprintln(out, "[Error] LexerCli: fname required.")
		return toycompile.ExitFnameMissing
	}

	f, err := os.Open(*flagFname)
	if err != nil {
		fmt.Fprintln(out, "[Error] LexerCli: failed to open input file.")
		return toycompile.ExitOpenFailure
	}
	defer f.Close()

	lx := tclex.New(tclex.DefaultDFA())
	tokens, errs := lx.Analyze(bufio.NewReader(f))

	fmt.Fprintf(out, "symbol count: %s\n", humanize.Comma(int64(len(tokens))))
	fmt.Fprintf(out, "error count : %s\n\n", humanize.Comma(int64(len(errs))))

	dumpTokens(out, c, tokens)

	for _, e := range errs {
		c.set(out, 0xee, 0x3f, 0x4d)
		fmt.Fprint(out, "error\n")
		c.reset(out)
		fmt.Fprintf(out, "pos: <%d, %d>\n%s\n--- end of error ---\n", e.Row, e.Col, e.Message)
	}

	if *flagRepl {
		runRepl(out, c)
	}

	return toycompile.ExitSuccess
}

func dumpTokens(out *os.File, c colorer, tokens []tclex.Token) {
	for _, tk := range tokens {
		c.set(out, 0x81, 0x3c, 0x85)
		fmt.Fprintln(out, "token")
		c.reset(out)
		fmt.Fprintf(out, "pos    : <%d, %d>\n", tk.Row, tk.Col)
		fmt.Fprintf(out, "kind   : %s\n", tk.Kind.Name())
		fmt.Fprintf(out, "kind id: %d\n", int(tk.Kind))
		fmt.Fprintln(out, "content:")
		c.set(out, 0x20, 0x89, 0x4d)
		fmt.Fprintln(out, tk.Content)
		c.reset(out)
		fmt.Fprintln(out, "--- end of token ---")
	}
}

func runParserCli(out *os.File, color bool) int {
	c := colorer{enabled: color}

	if *flagFname == "" {
		fmt.Fprintln(out, "[Error] ParserCli: fname required.")
		return toycompile.ExitFnameMissing
	}

	f, err := os.Open(*flagFname)
	if err != nil {
		fmt.Fprintln(out, "[Error] ParserCli: failed to open source file.")
		return toycompile.ExitOpenFailure
	}
	defer f.Close()

	pipe, err := openPipeline()
	if err != nil {
		fmt.Fprintf(out, "[Error] ParserCli: %s\n", err.Error())
		return toycompile.ExitGrammarError
	}

	tokens, lexErrs := pipe.Lex(f)
	if len(lexErrs) > 0 {
		for _, e := range lexErrs {
			fmt.Fprintf(out, "lexer error: %s\n", e.Error())
		}
		return toycompile.ExitLexErrors
	}

	result := pipe.Parse(tokens)
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			c.set(out, 0xee, 0x27, 0x46)
			fmt.Fprint(out, "parser error: ")
			c.reset(out)
			fmt.Fprintln(out, e.Error())
		}
		return toycompile.ExitParseErrors
	}

	dot := tcdot.Dump(result.Root)
	writeOrPrint(out, *flagDotFile, dot)

	return toycompile.ExitSuccess
}

func runUniCli(out *os.File, color bool) int {
	c := colorer{enabled: color}

	if *flagFname == "" {
		if *flagRepl {
			runRepl(out, c)
			return toycompile.ExitSuccess
		}
		c.set(out, 0xee, 0x3f, 0x4d)
		fmt.Fprint(out, "[Error]")
		c.reset(out)
		fmt.Fprintln(out, " fname required.")
		printUsage(out, "UniCli")
		return toycompile.ExitFnameMissing
	}

	f, err := os.Open(*flagFname)
	if err != nil {
		c.set(out, 0xee, 0x3f, 0x4d)
		fmt.Fprint(out, "[Error] ")
		c.reset(out)
		fmt.Fprintln(out, "UniCli: failed to open source file.")
		return toycompile.ExitOpenFailure
	}
	defer f.Close()

	pipe, err := openPipeline()
	if err != nil {
		c.set(out, 0xee, 0x3f, 0x4d)
		fmt.Fprint(out, "[Error] ")
		c.reset(out)
		fmt.Fprintln(out, err.Error())
		return toycompile.ExitGrammarError
	}

	result := pipe.Compile(f)

	switch result.ExitCode {
	case toycompile.ExitLexErrors:
		for _, e := range result.LexErrors {
			c.set(out, 0xee, 0x3f, 0x4d)
			fmt.Fprint(out, "lexer error: ")
			c.reset(out)
			fmt.Fprintln(out, e.Error())
		}
		return result.ExitCode
	case toycompile.ExitParseErrors:
		for _, e := range result.ParseErrs {
			c.set(out, 0xee, 0x27, 0x46)
			fmt.Fprint(out, "parser error: ")
			c.reset(out)
			fmt.Fprintln(out, e.Error())
		}
		return result.ExitCode
	case toycompile.ExitIRErrors:
		for _, d := range result.IRDiags {
			rgb := [3]int{0xde, 0x1c, 0x31}
			if d.Kind.String() == "warning" {
				rgb = [3]int{0xfc, 0xa1, 0x06}
			}
			c.set(out, rgb[0], rgb[1], rgb[2])
			fmt.Fprintf(out, "%s: ", d.Kind.String())
			c.reset(out)
			fmt.Fprintln(out, d.Message)
		}
		return result.ExitCode
	}

	if *flagDumpTokens {
		dumpTokens(out, c, result.Tokens)
	}
	if *flagDumpAST {
		dot := tcdot.Dump(result.AST)
		writeOrPrint(out, *flagDotFile, dot)
	}
	if *flagDumpIR {
		fmt.Fprintf(out, "; %s bytes, %s instructions\n", humanize.Bytes(uint64(len(result.IR))), humanize.Comma(int64(len(result.Emitter.Instructions()))))
		writeOrPrint(out, *flagIRToFile, result.IR)
	}
	if *flagDumpAsm {
		writeOrPrint(out, *flagAsmToFile, result.Asm)
	}

	if *flagRepl {
		runRepl(out, c)
	}

	return toycompile.ExitSuccess
}

func writeOrPrint(out *os.File, path, content string) {
	if path == "" {
		fmt.Fprintln(out, content)
		return
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Fprintf(out, "[Error] failed to open output file %q, printing to stdout instead.\n", path)
		fmt.Fprintln(out, content)
	}
}

// runRepl re-lexes and re-parses one line at a time; each line is treated
// as an independent translation unit attempt rather than being fed
// incrementally into one growing buffer.
func runRepl(out *os.File, c colorer) {
	rl, err := readline.NewEx(&readline.Config{Prompt: "tc> "})
	if err != nil {
		fmt.Fprintf(out, "[Error] failed to start repl: %s\n", err.Error())
		return
	}
	defer rl.Close()

	pipe, err := toycompile.New(toycompile.Config{})
	if err != nil {
		fmt.Fprintf(out, "[Error] failed to start repl pipeline: %s\n", err.Error())
		return
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		result := pipe.Compile(strings.NewReader(line))
		switch result.ExitCode {
		case toycompile.ExitSuccess:
			fmt.Fprintln(out, result.IR)
		default:
			c.set(out, 0xee, 0x3f, 0x4d)
			fmt.Fprintf(out, "error (exit %d)\n", result.ExitCode)
			c.reset(out)
		}
	}
}
