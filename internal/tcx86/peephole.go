// Package tcx86 implements the peephole optimizer and the 32-bit NASM
// emitter: it consumes the TCIR instruction stream, collapses redundant
// instruction patterns, assigns stack slots to locals, and renders i386
// assembly text.
package tcx86

import "github.com/dekarrin/toycompile/internal/tcir"

// Peephole repeatedly runs the rewrite pass until a full pass makes no
// further change, which is what makes the optimization idempotent
// (re-applying it to its own output changes nothing) regardless of how many
// matches chain together.
func Peephole(in []tcir.Instruction) []tcir.Instruction {
	cur := append([]tcir.Instruction(nil), in...)
	for {
		next, changed := onePass(cur)
		cur = next
		if !changed {
			return cur
		}
	}
}

func onePass(in []tcir.Instruction) ([]tcir.Instruction, bool) {
	var out []tcir.Instruction
	changed := false

	for i := 0; i < len(in); i++ {
		// Two consecutive ret ⇒ keep the first.
		if in[i].Op == "ret" && i+1 < len(in) && in[i+1].Op == "ret" {
			out = append(out, in[i])
			i++
			changed = true
			continue
		}

		// Three-instruction idiom: push vreg 0 ; mov vreg 0 X ; pop vreg 1
		// ⇒ mov vreg 1, vreg 0 ; mov vreg 0 X (the pop is now redundant:
		// vreg 1 already holds the value it would have popped).
		if in[i].Op == "push" && sameArgs(in[i].Args, []string{"vreg", "0"}) &&
			i+2 < len(in) &&
			in[i+1].Op == "mov" && len(in[i+1].Args) >= 2 && sameArgs(in[i+1].Args[:2], []string{"vreg", "0"}) &&
			in[i+2].Op == "pop" && sameArgs(in[i+2].Args, []string{"vreg", "1"}) {
			out = append(out, tcir.Instruction{Op: "mov", Args: []string{"vreg", "1", "vreg", "0"}})
			out = append(out, in[i+1])
			i += 2
			changed = true
			continue
		}

		// push X immediately followed by pop X (identical operand) ⇒ both
		// deleted — net zero effect on the stack or any register.
		if in[i].Op == "push" && i+1 < len(in) && in[i+1].Op == "pop" && sameArgs(in[i].Args, in[i+1].Args) {
			i++
			changed = true
			continue
		}

		if in[i].Op == "mov" && i+1 < len(in) && in[i+1].Op == "mov" {
			// Two identical mov ⇒ keep the first.
			if sameArgs(in[i].Args, in[i+1].Args) {
				out = append(out, in[i])
				i++
				changed = true
				continue
			}
			// mov A B ; mov B A (circular) ⇒ keep the first; the second
			// just writes back the value the first one read from.
			if len(in[i].Args) == 4 && len(in[i+1].Args) == 4 &&
				sameArgs(in[i].Args[:2], in[i+1].Args[2:]) && sameArgs(in[i].Args[2:], in[i+1].Args[:2]) {
				out = append(out, in[i])
				i++
				changed = true
				continue
			}
			// Two mov with the same destination ⇒ the later value wins.
			if len(in[i].Args) >= 2 && len(in[i+1].Args) >= 2 && sameArgs(in[i].Args[:2], in[i+1].Args[:2]) {
				out = append(out, in[i+1])
				i++
				changed = true
				continue
			}
		}

		out = append(out, in[i])
	}
	return out, changed
}

func sameArgs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
