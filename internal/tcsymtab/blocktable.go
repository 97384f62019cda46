package tcsymtab

import "fmt"

// VariableDescriptionTable is the single owning container for every
// block-local variable symbol across a translation unit. Block tables hold
// only non-owning views (ids) into it.
type VariableDescriptionTable struct {
	byID map[int]*VariableSymbol
	next int
}

// NewVariableDescriptionTable returns an empty, ready-to-use table.
func NewVariableDescriptionTable() *VariableDescriptionTable {
	return &VariableDescriptionTable{byID: make(map[int]*VariableSymbol)}
}

// Declare allocates a new variable id, stores the symbol, and returns its id.
func (t *VariableDescriptionTable) Declare(name string, bytes int, vt ValueType, vis Visibility) int {
	id := t.next
	t.next++
	t.byID[id] = &VariableSymbol{ID: id, Name: name, Bytes: bytes, ValueType: vt, Visibility: vis}
	return id
}

// Get returns the variable symbol for the given id.
func (t *VariableDescriptionTable) Get(id int) (*VariableSymbol, bool) {
	v, ok := t.byID[id]
	return v, ok
}

// BlockSymbolTable is one lexical scope: `{ ... }` in the source. Id is
// globally unique and monotonically increasing across sibling and nested
// blocks within a table's subtree, so a subtree can be searched by id.
// Parent is nil at the root; root detection is the nil case, with no
// self-parent sentinel to special-case.
type BlockSymbolTable struct {
	ID       int
	Parent   *BlockSymbolTable
	Children []*BlockSymbolTable

	order     []int // variable ids in declaration order
	nameIndex map[string]int
	vars      *VariableDescriptionTable
}

// NewRootBlockSymbolTable creates the top-level block table for a function
// or the global scope, with no parent.
func NewRootBlockSymbolTable(id int, vars *VariableDescriptionTable) *BlockSymbolTable {
	return &BlockSymbolTable{ID: id, nameIndex: make(map[string]int), vars: vars}
}

// NewChild creates a nested block table under this one. Ids within a
// table's subtree must be strictly increasing; callers are
// responsible for allocating ids from a single monotonic counter per
// translation unit and passing them in here (the TCIR emitter owns that
// counter, since only it knows the AST traversal order blocks are entered
// in).
func (b *BlockSymbolTable) NewChild(id int) (*BlockSymbolTable, error) {
	if id <= b.ID {
		return nil, fmt.Errorf("block id %d must be greater than parent id %d", id, b.ID)
	}
	child := &BlockSymbolTable{ID: id, Parent: b, nameIndex: make(map[string]int), vars: b.vars}
	b.Children = append(b.Children, child)
	return child, nil
}

// Declare adds a new variable to this block's scope and returns its id.
// Redeclaration of a name already local to this block is an error; shadowing
// a name from an enclosing scope is allowed.
func (b *BlockSymbolTable) Declare(name string, bytes int, vt ValueType) (int, error) {
	if _, exists := b.nameIndex[name]; exists {
		return -1, fmt.Errorf("variable %q already declared in this block", name)
	}
	id := b.vars.Declare(name, bytes, vt, Internal)
	b.order = append(b.order, id)
	b.nameIndex[name] = id
	return id, nil
}

// Lookup resolves a name to a variable id within this block, walking up the
// parent chain when allowFromParents is set.
func (b *BlockSymbolTable) Lookup(name string, allowFromParents bool) (int, bool) {
	cur := b
	for cur != nil {
		if id, ok := cur.nameIndex[name]; ok {
			return id, true
		}
		if !allowFromParents {
			return -1, false
		}
		cur = cur.Parent
	}
	return -1, false
}

// Variables returns the variable ids declared directly in this block, in
// declaration order.
func (b *BlockSymbolTable) Variables() []int {
	return b.order
}

// IsRoot reports whether this block has no parent.
func (b *BlockSymbolTable) IsRoot() bool {
	return b.Parent == nil
}

// ValidateIDOrdering checks the strictly-increasing-id invariant across
// this block's subtree.
func (b *BlockSymbolTable) ValidateIDOrdering() error {
	for _, c := range b.Children {
		if c.ID <= b.ID {
			return fmt.Errorf("child block %d does not have a strictly greater id than parent %d", c.ID, b.ID)
		}
		if err := c.ValidateIDOrdering(); err != nil {
			return err
		}
	}
	return nil
}
