package tcx86_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/toycompile/internal/tcir"
	"github.com/dekarrin/toycompile/internal/tcx86"
)

func i(op string, args ...string) tcir.Instruction { return tcir.Instruction{Op: op, Args: args} }

// `push vreg 0 ; pop vreg 0` is erased entirely, `ret ; ret` collapses to a
// single `ret`.
func Test_Peephole_PushPopSameOperandErased(t *testing.T) {
	in := []tcir.Instruction{
		i("mov", "vreg", "0", "imm", "1"),
		i("push", "vreg", "0"),
		i("pop", "vreg", "0"),
		i("ret"),
	}
	out := tcx86.Peephole(in)
	assert.Equal(t, []tcir.Instruction{
		i("mov", "vreg", "0", "imm", "1"),
		i("ret"),
	}, out)
}

func Test_Peephole_DoubleRetCollapses(t *testing.T) {
	in := []tcir.Instruction{i("ret"), i("ret")}
	out := tcx86.Peephole(in)
	assert.Equal(t, []tcir.Instruction{i("ret")}, out)
}

// push vreg 0 ; mov vreg 0 X ; pop vreg 1 ⇒ mov vreg 1, vreg 0 ; mov vreg 0 X
func Test_Peephole_PushMovPopIdiom(t *testing.T) {
	in := []tcir.Instruction{
		i("push", "vreg", "0"),
		i("mov", "vreg", "0", "imm", "5"),
		i("pop", "vreg", "1"),
	}
	out := tcx86.Peephole(in)
	assert.Equal(t, []tcir.Instruction{
		i("mov", "vreg", "1", "vreg", "0"),
		i("mov", "vreg", "0", "imm", "5"),
	}, out)
}

func Test_Peephole_IdenticalMovKeepsFirst(t *testing.T) {
	in := []tcir.Instruction{
		i("mov", "vreg", "0", "imm", "1"),
		i("mov", "vreg", "0", "imm", "1"),
	}
	out := tcx86.Peephole(in)
	assert.Equal(t, []tcir.Instruction{i("mov", "vreg", "0", "imm", "1")}, out)
}

func Test_Peephole_SameDestinationKeepsLatter(t *testing.T) {
	in := []tcir.Instruction{
		i("mov", "vreg", "0", "imm", "1"),
		i("mov", "vreg", "0", "imm", "2"),
	}
	out := tcx86.Peephole(in)
	assert.Equal(t, []tcir.Instruction{i("mov", "vreg", "0", "imm", "2")}, out)
}

// mov A B ; mov B A (circular) ⇒ keep the first, the second just writes
// back the value the first just read.
func Test_Peephole_CircularMovKeepsFirst(t *testing.T) {
	in := []tcir.Instruction{
		i("mov", "vreg", "1", "vreg", "0"),
		i("mov", "vreg", "0", "vreg", "1"),
	}
	out := tcx86.Peephole(in)
	assert.Equal(t, []tcir.Instruction{i("mov", "vreg", "1", "vreg", "0")}, out)
}

// Applying the pass twice must yield the same result as applying it once,
// even when one rewrite exposes a second.
func Test_Peephole_IsIdempotent(t *testing.T) {
	in := []tcir.Instruction{
		i("push", "vreg", "0"),
		i("pop", "vreg", "0"),
		i("push", "vreg", "1"),
		i("pop", "vreg", "1"),
		i("ret"),
		i("ret"),
		i("ret"),
	}
	once := tcx86.Peephole(in)
	twice := tcx86.Peephole(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, []tcir.Instruction{i("ret")}, once)
}

func Test_Peephole_NoMatchLeavesInstructionsUntouched(t *testing.T) {
	in := []tcir.Instruction{
		i("mov", "vreg", "0", "imm", "1"),
		i("add", "vreg", "1", "vreg", "0"),
		i("ret"),
	}
	out := tcx86.Peephole(in)
	assert.Equal(t, in, out)
}
