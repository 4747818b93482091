package itemtree

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures severe diagnostics emitted by the tree.
type recorder struct {
	messages []string
}

func (r *recorder) Severe(msg string) {
	r.messages = append(r.messages, msg)
}

// newScenarioTree builds: root "items" (order 0) containing category "tools"
// (order 1) containing item "pickaxe" (type 10, wildcard variant, order 5).
func newScenarioTree(t *testing.T) (*Tree, *recorder) {
	t.Helper()
	rec := &recorder{}
	tree := NewTree(rec)
	tree.SetRootCategory(NewCategory("items", 0))
	require.NoError(t, tree.AddCategory("items", NewCategory("tools", 1)))
	require.NoError(t, tree.AddItem("tools", NewItem("pickaxe", 10, VariantWildcard, 5)))
	return tree, rec
}

func TestScenarioKeywordQueries(t *testing.T) {
	tree, _ := newScenarioTree(t)

	assert.Equal(t, 5, tree.KeywordOrder("pickaxe"))
	assert.Equal(t, 1, tree.KeywordOrder("tools"))
	assert.Equal(t, 1, tree.KeywordDepth("tools"))
	assert.Equal(t, 0, tree.KeywordDepth("items"))
	assert.False(t, tree.IsKeywordValid("shovel"))
	assert.True(t, tree.IsKeywordValid("pickaxe"))
	assert.True(t, tree.IsKeywordValid("tools"))
}

func TestInsertionMirrorsIntoIndices(t *testing.T) {
	tree, _ := newScenarioTree(t)
	pickaxe := tree.ItemsNamed("pickaxe")[0]

	assert.True(t, tree.Category("tools").Contains(pickaxe))
	assert.True(t, tree.ContainsItem("pickaxe"))
	assert.Contains(t, tree.ResolveItems(10, 0), pickaxe)
}

func TestMatches(t *testing.T) {
	tree, _ := newScenarioTree(t)
	pickaxe := tree.ItemsNamed("pickaxe")[0]
	candidates := []*Item{pickaxe}

	assert.True(t, tree.Matches(candidates, "pickaxe"), "item name matches")
	assert.True(t, tree.Matches(candidates, "tools"), "direct category matches")
	assert.True(t, tree.Matches(candidates, "items"), "root always matches")
	assert.False(t, tree.Matches(candidates, "weapons"), "unknown keyword")
	assert.False(t, tree.Matches(nil, "items"), "empty candidates never match")
	assert.False(t, tree.Matches([]*Item{}, "pickaxe"), "empty candidates never match")
}

// The category branch of Matches checks direct containment only: an item
// listed in a nested subcategory does not match its grandparent keyword.
func TestMatchesIsShallowForCategories(t *testing.T) {
	tree, _ := newScenarioTree(t)
	require.NoError(t, tree.AddCategory("tools", NewCategory("picks", 2)))
	require.NoError(t, tree.AddItem("picks", NewItem("diamond_pickaxe", 11, 0, 6)))
	deep := tree.ItemsNamed("diamond_pickaxe")[0]

	assert.True(t, tree.Matches([]*Item{deep}, "picks"))
	assert.False(t, tree.Matches([]*Item{deep}, "tools"))
	assert.True(t, tree.Matches([]*Item{deep}, "items"), "root still matches everything")
}

func TestAddCategoryParentLookupIsCaseInsensitive(t *testing.T) {
	tree, _ := newScenarioTree(t)

	// Parent references fold to lower case; registered names stay as given.
	require.NoError(t, tree.AddCategory("TOOLS", NewCategory("hammers", 3)))
	require.NoError(t, tree.AddItem("Tools", NewItem("chisel", 12, 0, 9)))
	assert.True(t, tree.ContainsCategory("hammers"))
	assert.True(t, tree.ContainsItem("chisel"))
}

func TestMissingParentIsMalformedHierarchy(t *testing.T) {
	tree, _ := newScenarioTree(t)

	err := tree.AddCategory("weapons", NewCategory("swords", 4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedHierarchy))

	err = tree.AddItem("weapons", NewItem("sword", 20, 0, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedHierarchy))
}

func TestResolveItemsSynthesisAndIdempotence(t *testing.T) {
	tree, _ := newScenarioTree(t)

	first := tree.ResolveItems(99, 2)
	require.Len(t, first, 2)
	assert.Equal(t, "99-2", first[0].Name())
	assert.Equal(t, 5000+99*16+2, first[0].Order())
	assert.Equal(t, 2, first[0].Variant())
	assert.Equal(t, "99", first[1].Name())
	assert.Equal(t, 5000+99*16, first[1].Order())
	assert.Equal(t, VariantWildcard, first[1].Variant())

	// The synthetic pair lands in the hierarchy under the root and in both
	// indices, so the second call retrieves rather than re-creates it.
	sizeAfterFirst := len(tree.ItemsNamed("99")) + len(tree.ItemsNamed("99-2"))
	second := tree.ResolveItems(99, 2)
	require.Len(t, second, 2)
	assert.Equal(t, sizeAfterFirst, len(tree.ItemsNamed("99"))+len(tree.ItemsNamed("99-2")))
	assert.Same(t, first[0], second[0])
	assert.Same(t, first[1], second[1])

	assert.True(t, tree.RootCategory().Contains(first[0]))
	assert.True(t, tree.RootCategory().Contains(first[1]))

	// The variant-agnostic entry is reachable by plain name lookup.
	generic := tree.ItemsNamed("99")
	require.Len(t, generic, 1)
	assert.Same(t, first[1], generic[0])
}

func TestResolveItemsFiltersByVariant(t *testing.T) {
	tree, _ := newScenarioTree(t)
	require.NoError(t, tree.AddItem("tools", NewItem("white_wool", 35, 0, 20)))
	require.NoError(t, tree.AddItem("tools", NewItem("red_wool", 35, 14, 21)))

	resolved := tree.ResolveItems(35, 14)
	require.Len(t, resolved, 1)
	assert.Equal(t, "red_wool", resolved[0].Name())

	// A variant no entry covers synthesizes a new pair even though the type
	// itself is known.
	resolved = tree.ResolveItems(35, 5)
	require.Len(t, resolved, 2)
	assert.Equal(t, "35-5", resolved[0].Name())
}

func TestWildcardRoundTrip(t *testing.T) {
	tree, _ := newScenarioTree(t)
	pickaxe := tree.ItemsNamed("pickaxe")[0]

	for _, variant := range []int{0, 1, 7, 500} {
		assert.Contains(t, tree.ResolveItems(10, variant), pickaxe,
			"wildcard item must survive any queried variant")
	}
}

func TestIsItemUnknownIgnoresVariant(t *testing.T) {
	tree, _ := newScenarioTree(t)

	for _, variant := range []int{0, 3, 1000} {
		assert.False(t, tree.IsItemUnknown(10, variant))
		assert.True(t, tree.IsItemUnknown(404, variant))
	}

	// Learning makes an identity known for every variant at once.
	tree.ResolveItems(404, 1)
	for _, variant := range []int{0, 3, 1000} {
		assert.False(t, tree.IsItemUnknown(404, variant))
	}
}

func TestRootlessQueriesDegradeGracefully(t *testing.T) {
	rec := &recorder{}
	tree := NewTree(rec)

	assert.Equal(t, 0, tree.KeywordDepth("tools"))
	assert.Equal(t, -1, tree.KeywordOrder("tools"))
	assert.Len(t, rec.messages, 2, "both queries must report a severe diagnostic")

	// Resolution still answers, but nothing can be registered.
	resolved := tree.ResolveItems(7, 7)
	require.Len(t, resolved, 2)
	assert.False(t, tree.ContainsItem("7-7"))
}

func TestUnknownItemFallback(t *testing.T) {
	tree := NewTree(nil)
	unknown := tree.UnknownItem()

	require.NotNil(t, unknown)
	assert.Equal(t, UnknownName, unknown.Name())
	assert.Equal(t, -1, unknown.TypeID())
	assert.Equal(t, VariantWildcard, unknown.Variant())
	assert.Equal(t, math.MaxInt, unknown.Order())
	assert.False(t, tree.ContainsItem(UnknownName), "fallback is never registered")
}

func TestResetClearsEverything(t *testing.T) {
	tree, _ := newScenarioTree(t)
	require.NoError(t, tree.RegisterAlias("tools", "copper_pick", "pickCopper", 8))

	tree.Reset()

	assert.Nil(t, tree.RootCategory())
	assert.False(t, tree.ContainsItem("pickaxe"))
	assert.False(t, tree.ContainsCategory("tools"))
	assert.Empty(t, tree.AllCategories())
	assert.Zero(t, tree.AliasCount())
	assert.NotNil(t, tree.UnknownItem(), "fallback is re-seeded on reset")
}

func TestKeywordOrderUsesFirstRegisteredItem(t *testing.T) {
	tree, _ := newScenarioTree(t)
	// Same name, different identity: only the first-registered order is
	// visible through the keyword path.
	require.NoError(t, tree.AddItem("tools", NewItem("pickaxe", 11, 0, 40)))

	assert.Equal(t, 5, tree.KeywordOrder("pickaxe"))
	assert.Len(t, tree.ItemsNamed("pickaxe"), 2)
}

func TestRandomItem(t *testing.T) {
	tree, _ := newScenarioTree(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		it := tree.RandomItem(rng)
		require.NotNil(t, it)
		assert.True(t, tree.ContainsItem(it.Name()))
	}

	empty := NewTree(nil)
	assert.Same(t, empty.UnknownItem(), empty.RandomItem(rng))
}

func TestLearnFuncObservesSynthesis(t *testing.T) {
	tree, _ := newScenarioTree(t)
	var observed []*Item
	tree.SetLearnFunc(func(learned []*Item) {
		observed = append(observed, learned...)
	})

	tree.ResolveItems(60, 1)
	require.Len(t, observed, 2)

	// A resolved identity does not fire the hook again.
	tree.ResolveItems(60, 1)
	assert.Len(t, observed, 2)
}

func TestAllCategories(t *testing.T) {
	tree, _ := newScenarioTree(t)
	names := map[string]bool{}
	for _, c := range tree.AllCategories() {
		names[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"items": true, "tools": true}, names)
}
