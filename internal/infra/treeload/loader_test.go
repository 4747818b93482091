package treeload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
)

const sampleDefinition = `
root:
  name: stuff
  categories:
    - name: tools
      order: 1
      items:
        - name: pickaxe
          type: 10
          order: 5
        - name: shovel
          type: 11
          variant: 0
      aliases:
        - name: copper_pick
          key: pickCopper
          order: 8
    - name: blocks
      items:
        - name: stone
          type: 1
`

func TestLoad(t *testing.T) {
	def, err := Parse([]byte(sampleDefinition))
	require.NoError(t, err)

	tree := itemtree.NewTree(nil)
	stats, err := Load(def, tree)
	require.NoError(t, err)

	assert.Equal(t, Stats{Categories: 3, Items: 3, Aliases: 1}, stats)
	assert.Equal(t, "stuff", tree.RootCategory().Name())
	assert.Equal(t, 1, tree.KeywordDepth("tools"))
	assert.Equal(t, 1, tree.KeywordDepth("blocks"))
	assert.Equal(t, 1, tree.KeywordOrder("tools"))
	assert.Equal(t, 5, tree.KeywordOrder("pickaxe"))
	assert.Equal(t, 1, tree.AliasCount())

	// Missing variant defaults to wildcard.
	shovel := tree.ItemsNamed("shovel")
	require.Len(t, shovel, 1)
	assert.Equal(t, 0, shovel[0].Variant())
	stone := tree.ItemsNamed("stone")
	require.Len(t, stone, 1)
	assert.Equal(t, itemtree.VariantWildcard, stone[0].Variant())

	// Auto-assigned orders follow appearance: shovel before stone.
	assert.Less(t, shovel[0].Order(), stone[0].Order())

	// Category order without an explicit value is the sibling position.
	blocks := tree.Category("blocks")
	require.NotNil(t, blocks)
	assert.Equal(t, 1, blocks.Order())
}

func TestLoadResetsPreviousTree(t *testing.T) {
	tree := itemtree.NewTree(nil)
	tree.SetRootCategory(itemtree.NewCategory("old", 0))
	require.NoError(t, tree.AddItem("old", itemtree.NewItem("relic", 1, 0, 1)))

	def, err := Parse([]byte(sampleDefinition))
	require.NoError(t, err)
	_, err = Load(def, tree)
	require.NoError(t, err)

	assert.False(t, tree.ContainsCategory("old"))
	assert.False(t, tree.ContainsItem("relic"))
	assert.True(t, tree.ContainsItem("pickaxe"))
}

func TestParseRejectsMissingRoot(t *testing.T) {
	_, err := Parse([]byte("root:\n  categories: []\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, itemtree.ErrMalformedHierarchy)
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("root: [unclosed"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinition), 0644))

	tree := itemtree.NewTree(nil)
	stats, err := LoadFile(path, tree)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Items)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), tree)
	require.Error(t, err)
}
