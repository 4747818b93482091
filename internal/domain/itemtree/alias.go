package itemtree

import (
	"fmt"
	"strings"
)

// aliasEntry is a deferred mapping from an external identity-source key
// (e.g. a cross-mod tag dictionary name) to a category, keyword and order.
// It is resolved each time a concrete identity becomes known for the key.
type aliasEntry struct {
	category string
	name     string
	key      string
	order    int
}

// RegisterAlias records a deferred mapping from an external identity key to
// a tree position. No item is created yet: concrete identities arrive later
// through OnExternalIdentity. The target category must already exist.
func (t *Tree) RegisterAlias(category, name, key string, order int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.categories[strings.ToLower(category)]; !ok {
		return fmt.Errorf("%w: alias %q references category %q which is not registered",
			ErrMalformedHierarchy, name, category)
	}
	t.aliases = append(t.aliases, aliasEntry{
		category: category,
		name:     name,
		key:      key,
		order:    order,
	})
	return nil
}

// OnExternalIdentity is the callback for an external identity registry: it
// is invoked whenever a concrete (type, variant) pair becomes associated
// with key. For every alias recorded under the key, a concrete item is
// created and inserted, growing the tree post-construction. Re-reporting an
// already-registered identity is a no-op, so catalog replays and repeated
// discoveries stay idempotent.
func (t *Tree) OnExternalIdentity(key string, typeID, variant int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, a := range t.aliases {
		if a.key != key {
			continue
		}
		parent, ok := t.categories[strings.ToLower(a.category)]
		if !ok {
			return fmt.Errorf("%w: alias %q references category %q which is not registered",
				ErrMalformedHierarchy, a.name, a.category)
		}
		if aliasResolved(t.byName[a.name], typeID, variant) {
			continue
		}
		t.addItemLocked(parent, NewItem(a.name, typeID, variant, a.order))
	}
	return nil
}

// aliasResolved reports whether an alias name already carries an entry with
// the exact identity.
func aliasResolved(entries []*Item, typeID, variant int) bool {
	for _, it := range entries {
		if it.TypeID() == typeID && it.Variant() == variant {
			return true
		}
	}
	return false
}

// AliasCount returns the number of recorded alias mappings.
func (t *Tree) AliasCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.aliases)
}
