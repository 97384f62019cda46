package tcgrammar

import _ "embed"

// CSubsetSource is the extended-Yacc grammar for the C subset toycompile
// accepts (resources/c_subset.tcey), embedded so cmd/toycompile has a
// working default without requiring a `-tcey:<path>` flag, and so tests
// across the parser/IR packages can build a real table without reading from
// disk.
//
//go:embed resources/c_subset.tcey
var CSubsetSource []byte
