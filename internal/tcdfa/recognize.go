package tcdfa

import "bufio"

// ByteStream is the minimal interface the recognizer needs: a one-byte
// lookahead source it can consume from. *bufio.Reader satisfies it directly.
type ByteStream interface {
	ReadByte() (byte, error)
	UnreadByte() error
}

// Result carries the outcome of a single recognize pass: the bytes consumed
// and the state the automaton halted in.
type Result struct {
	Consumed []byte
	State    *State
}

// Recognize advances the stream byte-by-byte following transitions, greedily
// consuming the longest matching lexeme. '\r' bytes are swallowed
// without affecting recognizer state; bytes >= 0x80 are treated as a 2-byte
// sequence consumed atomically so identifiers may contain multi-byte
// characters even though no transition exists on them by default. The
// recognizer stops (without consuming the triggering byte) when no
// transition exists from the current state.
func (d *DFA) Recognize(s ByteStream) (Result, bool) {
	cur := d.Start()
	if cur == nil {
		return Result{}, false
	}

	var consumed []byte
	for {
		b, err := s.ReadByte()
		if err != nil {
			break
		}
		if b == '\r' {
			continue
		}
		if b >= 0x80 {
			b2, err2 := s.ReadByte()
			if err2 != nil {
				// malformed trailing multi-byte char; stop here without
				// consuming the lone lead byte into the token.
				_ = s.UnreadByte()
				break
			}
			consumed = append(consumed, b, b2)
			continue
		}

		to, ok := d.Next(cur.ID, b)
		if !ok {
			_ = s.UnreadByte()
			break
		}
		consumed = append(consumed, b)
		cur = d.states[to]
	}

	return Result{Consumed: consumed, State: cur}, true
}

// NewByteStream adapts any io.Reader-backed bufio.Reader for use with
// Recognize. Kept as a tiny helper so callers don't need to import bufio
// themselves just to satisfy ByteStream.
func NewByteStream(r *bufio.Reader) ByteStream {
	return r
}
