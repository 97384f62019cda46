package tcsymtab

// Visibility distinguishes exported/imported/internal linkage for the
// extlink section of TCIR output.
type Visibility int

const (
	Internal Visibility = iota
	Exported
	Imported
)

// VariableSymbol is a declared C variable: a local in some block, or a
// global. Kind is always variable_define for this type — encoded as a
// constant method rather than a stored field since Go's type system already
// distinguishes VariableSymbol from the other symbol kinds below.
type VariableSymbol struct {
	ID         int
	Name       string
	Bytes      int
	ValueType  ValueType
	Visibility Visibility
	InitValue  int64
}

func (VariableSymbol) Kind() string { return "variable_define" }

// FunctionParamSymbol describes one parameter of a function signature.
// IsPointer and IsVaList mirror the full C declarator surface; the grammar's
// parameter_declaration is only a type specifier plus an identifier, so the
// IR emitter never sets them and nothing reads them.
type FunctionParamSymbol struct {
	Name      string
	ValueType ValueType
	IsPointer bool
	IsVaList  bool
}

func (FunctionParamSymbol) Kind() string { return "function_param" }

// FunctionSymbol describes a function signature: its name, return type,
// whether it's merely declared (imported) or defined locally, and its
// parameter list. RootBlockID records the id of the function's top-level
// BlockSymbolTable; the x86 emitter's frame-size DFS finds that table through
// the emitter's per-function block map by name, not by this id.
type FunctionSymbol struct {
	Name        string
	ReturnType  ValueType
	IsImported  bool
	Visibility  Visibility
	Params      []FunctionParamSymbol
	RootBlockID int
}

func (FunctionSymbol) Kind() string { return "function_define" }
