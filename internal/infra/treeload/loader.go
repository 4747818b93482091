// Package treeload parses YAML hierarchy definitions and drives the item
// tree's construction API. The tree itself knows nothing about files: this
// is the external loader that calls SetRootCategory/AddCategory/AddItem.
package treeload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
)

// ItemDef is one item entry in the definition file. A missing variant means
// wildcard; a missing order is assigned from appearance position.
type ItemDef struct {
	Name    string `yaml:"name"`
	Type    int    `yaml:"type"`
	Variant *int   `yaml:"variant"`
	Order   *int   `yaml:"order"`
}

// AliasDef is a deferred external-key mapping declared inside a category.
type AliasDef struct {
	Name  string `yaml:"name"`
	Key   string `yaml:"key"`
	Order *int   `yaml:"order"`
}

// CategoryDef is a category node in the definition file.
type CategoryDef struct {
	Name       string        `yaml:"name"`
	Order      *int          `yaml:"order"`
	Categories []CategoryDef `yaml:"categories"`
	Items      []ItemDef     `yaml:"items"`
	Aliases    []AliasDef    `yaml:"aliases"`
}

// Definition is a whole hierarchy document.
type Definition struct {
	Root CategoryDef `yaml:"root"`
}

// Stats summarizes what a load registered.
type Stats struct {
	Categories int
	Items      int
	Aliases    int
}

// Parse decodes a YAML hierarchy definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse tree definition: %w", err)
	}
	if def.Root.Name == "" {
		return nil, fmt.Errorf("%w: definition has no root category", itemtree.ErrMalformedHierarchy)
	}
	return &def, nil
}

// LoadFile reads and loads a definition file into the tree.
func LoadFile(path string, tree *itemtree.Tree) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read tree definition %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", path, err)
	}
	return Load(def, tree)
}

// Load resets the tree and rebuilds it from the definition. Item orders not
// given explicitly are assigned from appearance position (depth-first), so
// earlier entries in the file sort earlier, matching the convention that
// lower orders come first. Category orders default to the sibling position.
func Load(def *Definition, tree *itemtree.Tree) (Stats, error) {
	tree.Reset()

	loader := &loader{tree: tree}
	root := itemtree.NewCategory(def.Root.Name, orderOr(def.Root.Order, 0))
	tree.SetRootCategory(root)
	loader.stats.Categories++

	if err := loader.populate(&def.Root); err != nil {
		return Stats{}, err
	}
	return loader.stats, nil
}

type loader struct {
	tree      *itemtree.Tree
	stats     Stats
	nextOrder int
}

// populate registers the body of an already-registered category, then
// recurses into its children.
func (l *loader) populate(def *CategoryDef) error {
	if len(def.Items) > itemtree.MaxCategoryRange {
		return fmt.Errorf("%w: category %q lists %d items, limit is %d",
			itemtree.ErrMalformedHierarchy, def.Name, len(def.Items), itemtree.MaxCategoryRange)
	}

	for _, item := range def.Items {
		variant := itemtree.VariantWildcard
		if item.Variant != nil {
			variant = *item.Variant
		}
		order := l.nextOrder
		if item.Order != nil {
			order = *item.Order
		} else {
			l.nextOrder++
		}
		if err := l.tree.AddItem(def.Name, itemtree.NewItem(item.Name, item.Type, variant, order)); err != nil {
			return err
		}
		l.stats.Items++
	}

	for _, alias := range def.Aliases {
		order := l.nextOrder
		if alias.Order != nil {
			order = *alias.Order
		} else {
			l.nextOrder++
		}
		if err := l.tree.RegisterAlias(def.Name, alias.Name, alias.Key, order); err != nil {
			return err
		}
		l.stats.Aliases++
	}

	for i, sub := range def.Categories {
		child := itemtree.NewCategory(sub.Name, orderOr(sub.Order, i))
		if err := l.tree.AddCategory(def.Name, child); err != nil {
			return err
		}
		l.stats.Categories++
		if err := l.populate(&def.Categories[i]); err != nil {
			return err
		}
	}
	return nil
}

func orderOr(explicit *int, fallback int) int {
	if explicit != nil {
		return *explicit
	}
	return fallback
}
