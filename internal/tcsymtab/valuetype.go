// Package tcsymtab implements the compiler's symbol tables: a global table
// of function/variable signatures, nested block-scoped symbol tables whose
// lookups walk the enclosing-scope chain, and a single owning variable
// description table the block tables hold non-owning views into.
package tcsymtab

// ValueType is the closed enumeration of integer widths plus void. Only S32
// and Void are supported end-to-end by the current emitter; the rest exist
// so the model covers the full fixed-width integer family even though
// lowering for them isn't implemented.
type ValueType int

const (
	U8 ValueType = iota
	U16
	U32
	S8
	S16
	S32
	Void
)

// Bytes returns the storage width of the type in bytes; Void is 0.
func (v ValueType) Bytes() int {
	switch v {
	case U8, S8:
		return 1
	case U16, S16:
		return 2
	case U32, S32:
		return 4
	default:
		return 0
	}
}

// Signed reports whether the type is a signed integer type.
func (v ValueType) Signed() bool {
	switch v {
	case S8, S16, S32:
		return true
	default:
		return false
	}
}

func (v ValueType) String() string {
	switch v {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case S8:
		return "s8"
	case S16:
		return "s16"
	case S32:
		return "s32"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}
