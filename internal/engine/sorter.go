// Package engine implements the sorting mechanics on top of the item tree:
// comparing stacks by resolved keyword order, sorting whole inventories and
// assigning slots through keyword rules.
package engine

import (
	"sort"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
)

// Stack is a quantity of a concrete item identity in an inventory slot.
type Stack struct {
	TypeID   int `json:"type_id"`
	Variant  int `json:"variant"`
	Quantity int `json:"quantity"`
}

// Sorter answers "which stack comes first" using tree orders.
type Sorter struct {
	tree *itemtree.Tree
}

// NewSorter creates a sorter over the given tree.
func NewSorter(tree *itemtree.Tree) *Sorter {
	return &Sorter{tree: tree}
}

// OrderOf resolves the sort order for a stack: the order of the first entry
// the tree resolves for its identity. Resolution may grow the tree for
// identities it has never seen (see Tree.ResolveItems); the shared fallback
// order is used only in the degenerate rootless case.
func (s *Sorter) OrderOf(st Stack) int {
	items := s.tree.ResolveItems(st.TypeID, st.Variant)
	for _, it := range items {
		if it != nil {
			return it.Order()
		}
	}
	return s.tree.UnknownItem().Order()
}

// Compare returns a negative value when a sorts before b, positive when b
// sorts before a, and zero for full ties. Lower order sorts earlier; ties
// break on type, then variant, then larger quantities first.
func (s *Sorter) Compare(a, b Stack) int {
	if d := s.OrderOf(a) - s.OrderOf(b); d != 0 {
		return d
	}
	if d := a.TypeID - b.TypeID; d != 0 {
		return d
	}
	if d := a.Variant - b.Variant; d != 0 {
		return d
	}
	return b.Quantity - a.Quantity
}

// SortStacks returns a sorted copy of stacks plus the number of slots whose
// occupant changed. The input is never mutated and the sort is stable.
func (s *Sorter) SortStacks(stacks []Stack) ([]Stack, int) {
	sorted := make([]Stack, len(stacks))
	copy(sorted, stacks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return s.Compare(sorted[i], sorted[j]) < 0
	})

	moved := 0
	for i := range stacks {
		if stacks[i] != sorted[i] {
			moved++
		}
	}
	return sorted, moved
}
