// Package tcdfa implements the deterministic finite automaton that drives
// lexical recognition: byte transitions between integer-id states, each
// tagged normal, final, or start. The lexer never needs to attach arbitrary
// values to a state, so the tag is the whole payload.
package tcdfa

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dekarrin/toycompile/internal/tcerr"
)

// Tag classifies a DFA state. Initial and Final are mutually exclusive
// outside of Normal, matching the serialization format's def tag set.
type Tag int

const (
	Normal Tag = iota
	Final
	Start
)

// State is a single DFA state, identified by id and owning a map of byte
// transitions to other state ids. States refer to each other by id, never
// by pointer; the DFA owns them all.
type State struct {
	ID          int
	IsInitial   bool
	IsFinal     bool
	transitions map[byte]int
}

// DFA owns every state in the automaton; states refer to each other by id.
type DFA struct {
	states   map[int]*State
	startID  int
	hasStart bool
}

// New returns an empty DFA.
func New() *DFA {
	return &DFA{states: make(map[int]*State)}
}

// State returns the state with the given id, or nil if absent.
func (d *DFA) State(id int) *State {
	return d.states[id]
}

// Start returns the initial state, or nil if none has been defined.
func (d *DFA) Start() *State {
	if !d.hasStart {
		return nil
	}
	return d.states[d.startID]
}

func (d *DFA) defineState(id int, tag Tag) error {
	if _, exists := d.states[id]; exists {
		return fmt.Errorf("duplicate state id %d", id)
	}
	s := &State{ID: id, transitions: make(map[byte]int)}
	switch tag {
	case Start:
		if d.hasStart {
			return fmt.Errorf("duplicate start state (already have %d)", d.startID)
		}
		s.IsInitial = true
		d.hasStart = true
		d.startID = id
	case Final:
		s.IsFinal = true
	case Normal:
		// no-op
	default:
		return fmt.Errorf("unknown state tag %d", tag)
	}
	d.states[id] = s
	return nil
}

func (d *DFA) defineTransition(from, to int, on byte) error {
	fromState, ok := d.states[from]
	if !ok {
		return fmt.Errorf("transition from undefined state %d", from)
	}
	if _, ok := d.states[to]; !ok {
		return fmt.Errorf("transition to undefined state %d", to)
	}
	fromState.transitions[on] = to
	return nil
}

// Next follows the transition on b from the given state id, returning the
// destination id and true, or false if no such transition exists.
func (d *DFA) Next(from int, b byte) (int, bool) {
	s, ok := d.states[from]
	if !ok {
		return 0, false
	}
	to, ok := s.transitions[b]
	return to, ok
}

// AddState adds a new state with the given id and tag, for programmatic
// construction of a DFA (as opposed to Build, which parses the serialized
// format).
func (d *DFA) AddState(id int, tag Tag) error {
	return d.defineState(id, tag)
}

// AddTransition adds a transition from one state to another on the given
// byte, for programmatic construction of a DFA.
func (d *DFA) AddTransition(from, to int, on byte) error {
	return d.defineTransition(from, to, on)
}

// AddTransitionRange adds a transition from one state to another for every
// byte in [lo, hi], skipping any byte in exclude. Useful for "any byte but
// X" self-loops such as comment bodies.
func (d *DFA) AddTransitionRange(from, to int, lo, hi byte, exclude ...byte) error {
	skip := make(map[byte]bool, len(exclude))
	for _, b := range exclude {
		skip[b] = true
	}
	for b := int(lo); b <= int(hi); b++ {
		if skip[byte(b)] {
			continue
		}
		if err := d.defineTransition(from, to, byte(b)); err != nil {
			return err
		}
	}
	return nil
}

// Build parses a whitespace-separated command stream ("def", "trans",
// "eof") and returns a ready DFA, or a critical error leaving the DFA
// empty.
func Build(r io.Reader) (*DFA, error) {
	d := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	tokens := make([]string, 0, 256)
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return New(), tcerr.New(tcerr.ErrDFA, "failed reading dfa stream", err)
	}

	i := 0
	next := func() (string, bool) {
		if i >= len(tokens) {
			return "", false
		}
		t := tokens[i]
		i++
		return t, true
	}

	seenEOF := false
	for {
		cmd, ok := next()
		if !ok {
			break
		}
		switch cmd {
		case "def":
			idStr, ok1 := next()
			tagStr, ok2 := next()
			if !ok1 || !ok2 {
				return New(), tcerr.New(tcerr.ErrDFA, "malformed def command")
			}
			id, err := strconv.Atoi(idStr)
			if err != nil {
				return New(), tcerr.New(tcerr.ErrDFA, "non-integer state id in def", err)
			}
			tag, err := parseTag(tagStr)
			if err != nil {
				return New(), tcerr.New(tcerr.ErrDFA, "malformed tag in def", err)
			}
			if err := d.defineState(id, tag); err != nil {
				return New(), tcerr.New(tcerr.ErrDFA, "def failed", err)
			}
		case "trans":
			fromStr, ok1 := next()
			toStr, ok2 := next()
			onStr, ok3 := next()
			if !ok1 || !ok2 || !ok3 {
				return New(), tcerr.New(tcerr.ErrDFA, "malformed trans command")
			}
			from, err1 := strconv.Atoi(fromStr)
			to, err2 := strconv.Atoi(toStr)
			on, err3 := strconv.Atoi(onStr)
			if err1 != nil || err2 != nil || err3 != nil {
				return New(), tcerr.New(tcerr.ErrDFA, "non-integer field in trans")
			}
			if on < 0 || on > 255 {
				return New(), tcerr.New(tcerr.ErrDFA, "ascii value out of range in trans")
			}
			if err := d.defineTransition(from, to, byte(on)); err != nil {
				return New(), tcerr.New(tcerr.ErrDFA, "trans failed", err)
			}
		case "eof":
			seenEOF = true
		default:
			return New(), tcerr.New(tcerr.ErrDFA, "unknown dfa command "+strconv.Quote(cmd))
		}
		if seenEOF {
			break
		}
	}

	if !seenEOF {
		return New(), tcerr.New(tcerr.ErrDFA, "dfa stream missing terminating eof")
	}
	if !d.hasStart {
		return New(), tcerr.New(tcerr.ErrDFA, "dfa stream defines no start state")
	}
	return d, nil
}

func parseTag(s string) (Tag, error) {
	switch s {
	case "normal":
		return Normal, nil
	case "final":
		return Final, nil
	case "start":
		return Start, nil
	default:
		return Normal, fmt.Errorf("unknown tag %q", s)
	}
}

// Dump serializes the DFA back to the text format Build parses, so a
// built automaton round-trips through its own description.
func (d *DFA) Dump() string {
	var sb strings.Builder
	if start := d.Start(); start != nil {
		fmt.Fprintf(&sb, "def %d start\n", start.ID)
	}
	for id, s := range d.states {
		if s.IsInitial {
			continue
		}
		tag := "normal"
		if s.IsFinal {
			tag = "final"
		}
		fmt.Fprintf(&sb, "def %d %s\n", id, tag)
	}
	for fromID, s := range d.states {
		for on, to := range s.transitions {
			fmt.Fprintf(&sb, "trans %d %d %d\n", fromID, to, on)
		}
	}
	sb.WriteString("eof\n")
	return sb.String()
}
