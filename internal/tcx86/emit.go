package tcx86

import (
	"strconv"
	"strings"

	"github.com/dekarrin/toycompile/internal/tcir"
	"github.com/dekarrin/toycompile/internal/tcsymtab"
)

// Emit runs the peephole pass over e's instruction stream and renders the
// result as NASM 32-bit assembly text: `[bits 32]`, `section .text`/`.data`,
// `global` for exports, `extern` for imports.
func Emit(e *tcir.Emitter) string {
	instrs := Peephole(e.Instructions())

	var body strings.Builder
	var curFn *tcsymtab.FunctionSymbol
	var offsets map[int]int

	for _, in := range instrs {
		switch in.Op {
		case "label":
			body.WriteString(in.Args[0] + ":\n")

		case "fun-label":
			// fun-label, distinct from a plain label, is the signal that a
			// function body (and its prologue) starts here — ordinary
			// jump-target labels never carry one.
			name := in.Args[0]
			fn, _ := e.Globals.Function(name)
			curFn = fn
			var frame int
			if root, ok := e.FuncBlocks()[name]; ok {
				offsets, frame = computeLayout(root)
			} else {
				offsets = nil
			}
			body.WriteString("push ebp\n")
			body.WriteString("mov ebp, esp\n")
			if frame > 0 {
				body.WriteString("sub esp, " + strconv.Itoa(frame) + "\n")
			}

		case "ret":
			body.WriteString("leave\n")
			body.WriteString("ret\n")

		case "push":
			body.WriteString("push " + operandText(in.Args, offsets, curFn) + "\n")

		case "pushfc":
			body.WriteString("push " + operandText(in.Args[1:], offsets, curFn) + "\n")

		case "pop":
			body.WriteString("pop " + operandText(in.Args, offsets, curFn) + "\n")

		case "mov":
			dst, src := in.Args[:2], in.Args[2:]
			body.WriteString("mov dword " + operandText(dst, offsets, curFn) + ", " + operandText(src, offsets, curFn) + "\n")

		case "xchg", "add", "sub", "cmp":
			dst, src := in.Args[:2], in.Args[2:]
			body.WriteString(in.Op + " " + operandText(dst, offsets, curFn) + ", " + operandText(src, offsets, curFn) + "\n")

		case "jmp", "je", "jne", "jg", "jl", "jge", "jle":
			body.WriteString(in.Op + " " + in.Args[0] + "\n")

		case "call":
			// cdecl caller-side cleanup: each pushfc'd argument is 4 bytes,
			// so the callee's parameter count gives the exact amount to give
			// back to esp after the call.
			body.WriteString("call " + in.Args[0] + "\n")
			if fn, ok := e.Globals.Function(in.Args[0]); ok && len(fn.Params) > 0 {
				body.WriteString("add esp, " + strconv.Itoa(4*len(fn.Params)) + "\n")
			}
		}
	}

	var out strings.Builder
	out.WriteString("[bits 32]\n")
	for _, link := range e.ExtLink() {
		fields := strings.Fields(link)
		switch fields[0] {
		case "export":
			out.WriteString("global " + fields[1] + "\n")
		case "import":
			out.WriteString("extern " + fields[1] + "\n")
		}
	}

	out.WriteString("\nsection .data\n")
	for _, sd := range e.StaticData() {
		// "int var <name> <value_type> <init_value>"
		fields := strings.Fields(sd)
		name, value := fields[2], fields[4]
		out.WriteString("align 4\n")
		out.WriteString(name + ": dd " + value + "\n")
	}

	out.WriteString("\nsection .text\n")
	out.WriteString(body.String())
	return out.String()
}

// operandText translates one TCIR operand to its NASM text form: immediates
// stay literal, vreg 0/1 map to eax/edx, numeric `val` ids become frame
// slots, non-numeric `val` names become globals, and `fval` parameters read
// above the saved ebp/return-address pair.
func operandText(args []string, offsets map[int]int, fn *tcsymtab.FunctionSymbol) string {
	switch args[0] {
	case "imm":
		return args[1]
	case "vreg":
		if args[1] == "0" {
			return "eax"
		}
		return "edx"
	case "val":
		if id, err := strconv.Atoi(args[1]); err == nil {
			return "[ebp-" + strconv.Itoa(offsets[id]) + "]"
		}
		return "[" + args[1] + "]"
	case "fval":
		idx := paramIndex(fn, args[1])
		return "[ebp+" + strconv.Itoa(8+4*idx) + "]"
	default:
		return ""
	}
}
