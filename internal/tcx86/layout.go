package tcx86

import "github.com/dekarrin/toycompile/internal/tcsymtab"

// computeLayout runs a DFS over a function's block-symtab subtree,
// assigning each variable id a positive offset below `ebp` and
// tracking the largest offset reached along any root-to-leaf path — the
// frame size the prologue's `sub esp, <frame>` reserves. Offsets are
// assigned pre-order, parents before children; a child's starting offset is
// always resumed from its parent's running total, never from a sibling's,
// so sibling blocks share (overlap) the same stack slots since only one of
// them is ever live at a time.
func computeLayout(root *tcsymtab.BlockSymbolTable) (map[int]int, int) {
	offsets := make(map[int]int)
	frameSize := 0

	var dfs func(b *tcsymtab.BlockSymbolTable, base int)
	dfs = func(b *tcsymtab.BlockSymbolTable, base int) {
		cur := base
		for _, id := range b.Variables() {
			cur += 4
			offsets[id] = cur
			if cur > frameSize {
				frameSize = cur
			}
		}
		for _, c := range b.Children {
			dfs(c, cur)
		}
	}
	dfs(root, 0)
	return offsets, frameSize
}

func paramIndex(fn *tcsymtab.FunctionSymbol, name string) int {
	if fn == nil {
		return 0
	}
	for i, p := range fn.Params {
		if p.Name == name {
			return i
		}
	}
	return 0
}
