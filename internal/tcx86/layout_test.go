package tcx86

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/toycompile/internal/tcsymtab"
)

// Sibling blocks reuse (overlap) the same stack offsets since only one of
// them is ever live at a time.
func Test_ComputeLayout_SiblingsOverlap(t *testing.T) {
	vars := tcsymtab.NewVariableDescriptionTable()
	root := tcsymtab.NewRootBlockSymbolTable(0, vars)
	if _, err := root.Declare("a", 4, tcsymtab.S32); err != nil {
		t.Fatal(err)
	}

	left, err := root.NewChild(1)
	if err != nil {
		t.Fatal(err)
	}
	leftID, err := left.Declare("b", 4, tcsymtab.S32)
	if err != nil {
		t.Fatal(err)
	}

	right, err := root.NewChild(2)
	if err != nil {
		t.Fatal(err)
	}
	rightID, err := right.Declare("c", 4, tcsymtab.S32)
	if err != nil {
		t.Fatal(err)
	}

	offsets, frame := computeLayout(root)

	aID := root.Variables()[0]
	assert.Equal(t, 4, offsets[aID])
	assert.Equal(t, 8, offsets[leftID])
	assert.Equal(t, 8, offsets[rightID])
	assert.Equal(t, 8, frame)
}

// A child block's own offsets continue from its parent's running total, not
// from zero.
func Test_ComputeLayout_ChildContinuesFromParent(t *testing.T) {
	vars := tcsymtab.NewVariableDescriptionTable()
	root := tcsymtab.NewRootBlockSymbolTable(0, vars)
	if _, err := root.Declare("a", 4, tcsymtab.S32); err != nil {
		t.Fatal(err)
	}
	if _, err := root.Declare("b", 4, tcsymtab.S32); err != nil {
		t.Fatal(err)
	}

	child, err := root.NewChild(1)
	if err != nil {
		t.Fatal(err)
	}
	childID, err := child.Declare("c", 4, tcsymtab.S32)
	if err != nil {
		t.Fatal(err)
	}

	offsets, frame := computeLayout(root)
	assert.Equal(t, 12, offsets[childID])
	assert.Equal(t, 12, frame)
}

func Test_ComputeLayout_EmptyRoot(t *testing.T) {
	vars := tcsymtab.NewVariableDescriptionTable()
	root := tcsymtab.NewRootBlockSymbolTable(0, vars)
	offsets, frame := computeLayout(root)
	assert.Empty(t, offsets)
	assert.Equal(t, 0, frame)
}
