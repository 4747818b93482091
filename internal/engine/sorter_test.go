package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
)

// newToolTree builds a tree where swords (order 1) sort before pickaxes
// (order 5), which sort before shovels (order 9).
func newToolTree(t *testing.T) *itemtree.Tree {
	t.Helper()
	tree := itemtree.NewTree(nil)
	tree.SetRootCategory(itemtree.NewCategory("items", 0))
	require.NoError(t, tree.AddCategory("items", itemtree.NewCategory("tools", 1)))
	require.NoError(t, tree.AddItem("tools", itemtree.NewItem("sword", 20, itemtree.VariantWildcard, 1)))
	require.NoError(t, tree.AddItem("tools", itemtree.NewItem("pickaxe", 10, itemtree.VariantWildcard, 5)))
	require.NoError(t, tree.AddItem("tools", itemtree.NewItem("shovel", 11, itemtree.VariantWildcard, 9)))
	return tree
}

func TestCompareByOrder(t *testing.T) {
	sorter := NewSorter(newToolTree(t))

	sword := Stack{TypeID: 20, Variant: 0, Quantity: 1}
	pickaxe := Stack{TypeID: 10, Variant: 0, Quantity: 1}

	assert.Negative(t, sorter.Compare(sword, pickaxe))
	assert.Positive(t, sorter.Compare(pickaxe, sword))
	assert.Zero(t, sorter.Compare(sword, sword))
}

func TestCompareTieBreaks(t *testing.T) {
	tree := newToolTree(t)
	// Two identities sharing one order value: a legal tie.
	require.NoError(t, tree.AddItem("tools", itemtree.NewItem("axe", 12, itemtree.VariantWildcard, 5)))
	sorter := NewSorter(tree)

	pickaxe := Stack{TypeID: 10, Variant: 0, Quantity: 1}
	axe := Stack{TypeID: 12, Variant: 0, Quantity: 1}
	assert.Negative(t, sorter.Compare(pickaxe, axe), "order tie falls back to type id")

	small := Stack{TypeID: 10, Variant: 0, Quantity: 3}
	big := Stack{TypeID: 10, Variant: 0, Quantity: 64}
	assert.Negative(t, sorter.Compare(big, small), "bigger stacks come first among equals")
}

func TestSortStacks(t *testing.T) {
	sorter := NewSorter(newToolTree(t))

	inventory := []Stack{
		{TypeID: 11, Variant: 0, Quantity: 1}, // shovel, order 9
		{TypeID: 20, Variant: 0, Quantity: 1}, // sword, order 1
		{TypeID: 10, Variant: 0, Quantity: 1}, // pickaxe, order 5
	}
	sorted, moved := sorter.SortStacks(inventory)

	require.Len(t, sorted, 3)
	assert.Equal(t, 20, sorted[0].TypeID)
	assert.Equal(t, 10, sorted[1].TypeID)
	assert.Equal(t, 11, sorted[2].TypeID)
	assert.Equal(t, 3, moved)

	// Input untouched.
	assert.Equal(t, 11, inventory[0].TypeID)
}

func TestSortStacksAlreadySorted(t *testing.T) {
	sorter := NewSorter(newToolTree(t))

	inventory := []Stack{
		{TypeID: 20, Variant: 0, Quantity: 1},
		{TypeID: 10, Variant: 0, Quantity: 1},
	}
	sorted, moved := sorter.SortStacks(inventory)
	assert.Equal(t, inventory, sorted)
	assert.Zero(t, moved)
}

// Unknown identities are learnable: their synthetic orders start at 5000, so
// they always sort after the curated catalog.
func TestUnknownIdentitiesSortLast(t *testing.T) {
	sorter := NewSorter(newToolTree(t))

	mystery := Stack{TypeID: 999, Variant: 0, Quantity: 1}
	sword := Stack{TypeID: 20, Variant: 0, Quantity: 1}

	sorted, _ := sorter.SortStacks([]Stack{mystery, sword})
	assert.Equal(t, 20, sorted[0].TypeID)
	assert.Equal(t, 999, sorted[1].TypeID)

	// The learned order is stable on the next sort.
	assert.Equal(t, 5000+999*16, sorter.OrderOf(mystery))
	assert.Equal(t, 5000+999*16, sorter.OrderOf(mystery))
}
