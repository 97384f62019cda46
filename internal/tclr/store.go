package tclr

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dekarrin/toycompile/internal/tcerr"
	"github.com/dekarrin/toycompile/internal/tcgrammar"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// Dump serializes the table to the line-oriented, whitespace-tokenized
// .tcpt format: pStId, sym, fe, tc commands.
func (t *Table) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "pStId %d\n", t.PrimaryStateID); err != nil {
		return err
	}
	for _, s := range t.Symbols {
		if _, err := fmt.Fprintf(bw, "sym %s %d %d %d %d\n", s.Name, s.ID, int(s.Kind), int(s.TokenKind), int(s.Kind)); err != nil {
			return err
		}
	}
	for _, p := range t.Productions {
		var b strings.Builder
		fmt.Fprintf(&b, "fe %d %d", p.ID, p.TargetID)
		for _, r := range p.RHS {
			fmt.Fprintf(&b, " %d", r)
		}
		b.WriteString(" end")
		if _, err := fmt.Fprintln(bw, b.String()); err != nil {
			return err
		}
	}

	var writeErr error
	t.Cells(func(state, symbol int, cmd Command) {
		if writeErr != nil {
			return
		}
		_, writeErr = fmt.Fprintf(bw, "tc %d %d %d %d\n", state, symbol, int(cmd.Type), targetOf(cmd))
	})
	if writeErr != nil {
		return writeErr
	}

	return bw.Flush()
}

func targetOf(c Command) int {
	switch c.Type {
	case CmdReduce:
		return c.Production
	default:
		return c.Target
	}
}

// Load parses the format written by Dump. Load failures (non-integer
// fields, missing "end") return an error and the returned table is left
// cleared.
func Load(r io.Reader) (*Table, error) {
	t := newTable()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var symbols []tcgrammar.Symbol
	var productions []tcgrammar.Production

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "pStId":
			if len(fields) != 2 {
				return newTable(), tcerr.New(tcerr.ErrTable, "malformed pStId line")
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return newTable(), tcerr.New(tcerr.ErrTable, "non-integer pStId", err)
			}
			t.PrimaryStateID = id

		case "sym":
			if len(fields) != 6 {
				return newTable(), tcerr.New(tcerr.ErrTable, "malformed sym line")
			}
			id, err1 := strconv.Atoi(fields[2])
			typ, err2 := strconv.Atoi(fields[3])
			tk, err3 := strconv.Atoi(fields[4])
			kind, err4 := strconv.Atoi(fields[5])
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return newTable(), tcerr.New(tcerr.ErrTable, "non-integer field in sym line")
			}
			_ = typ
			sym := tcgrammar.Symbol{ID: id, Name: fields[1], Kind: tcgrammar.SymbolKind(kind), TokenKind: tctoken.Kind(tk)}
			symbols = growSymbols(symbols, id)
			symbols[id] = sym

		case "fe":
			if len(fields) < 4 || fields[len(fields)-1] != "end" {
				return newTable(), tcerr.New(tcerr.ErrTable, "malformed fe line (missing end)")
			}
			id, err1 := strconv.Atoi(fields[1])
			target, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				return newTable(), tcerr.New(tcerr.ErrTable, "non-integer field in fe line")
			}
			var rhs []int
			for _, f := range fields[3 : len(fields)-1] {
				v, err := strconv.Atoi(f)
				if err != nil {
					return newTable(), tcerr.New(tcerr.ErrTable, "non-integer rhs symbol in fe line", err)
				}
				rhs = append(rhs, v)
			}
			productions = growProductions(productions, id)
			productions[id] = tcgrammar.Production{ID: id, TargetID: target, RHS: rhs}

		case "tc":
			if len(fields) != 5 {
				return newTable(), tcerr.New(tcerr.ErrTable, "malformed tc line")
			}
			state, err1 := strconv.Atoi(fields[1])
			symbol, err2 := strconv.Atoi(fields[2])
			typ, err3 := strconv.Atoi(fields[3])
			target, err4 := strconv.Atoi(fields[4])
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return newTable(), tcerr.New(tcerr.ErrTable, "non-integer field in tc line")
			}
			cmd := Command{Type: CommandType(typ)}
			if cmd.Type == CmdReduce {
				cmd.Production = target
			} else {
				cmd.Target = target
			}
			t.set(state, symbol, cmd)

		default:
			return newTable(), tcerr.New(tcerr.ErrTable, "unknown table command "+strconv.Quote(fields[0]))
		}
	}
	if err := sc.Err(); err != nil {
		return newTable(), tcerr.New(tcerr.ErrTable, "failed reading table stream", err)
	}

	t.Symbols = symbols
	t.Productions = productions
	return t, nil
}

func growSymbols(s []tcgrammar.Symbol, upToID int) []tcgrammar.Symbol {
	for len(s) <= upToID {
		s = append(s, tcgrammar.Symbol{})
	}
	return s
}

func growProductions(p []tcgrammar.Production, upToID int) []tcgrammar.Production {
	for len(p) <= upToID {
		p = append(p, tcgrammar.Production{})
	}
	return p
}
