package itemtree

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// ErrMalformedHierarchy is returned when construction references a parent
// category that was never registered. A partially-built tree has undefined
// index/hierarchy correspondence, so loaders must abort on it.
var ErrMalformedHierarchy = errors.New("malformed hierarchy")

// Diagnostic receives severe runtime conditions. *logger.Logger satisfies it.
type Diagnostic interface {
	Severe(msg string)
}

// LearnFunc observes items synthesized for previously unknown identities.
// It runs outside the tree's lock and must not mutate the tree.
type LearnFunc func(learned []*Item)

// Tree owns the category hierarchy plus two secondary indices (by type and
// by name) so that common queries never traverse the hierarchy. Every item
// inserted into a category is mirrored into both indices, and the indices
// hold nothing besides hierarchy items.
//
// The tree is built once by a single loader and is read-mostly afterwards,
// but ResolveItems can grow it at query time, so all state is guarded by one
// mutex. The read-then-synthesize-then-insert sequence runs under a single
// critical section: at most one synthetic pair ever exists per identity.
type Tree struct {
	mu sync.RWMutex

	categories map[string]*Category
	byType     map[int][]*Item
	byName     map[string][]*Item
	rootName   string

	aliases []aliasEntry
	unknown *Item

	diag  Diagnostic
	learn LearnFunc
}

// NewTree creates an empty tree. diag may be nil, in which case severe
// conditions are silently swallowed.
func NewTree(diag Diagnostic) *Tree {
	t := &Tree{diag: diag}
	t.Reset()
	return t
}

// Reset clears the hierarchy, both indices and all recorded aliases, and
// re-seeds the shared fallback item. The fallback is handed out through
// UnknownItem only; it is never inserted into the hierarchy.
func (t *Tree) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.categories = make(map[string]*Category)
	t.byType = make(map[int][]*Item)
	t.byName = make(map[string][]*Item)
	t.rootName = ""
	t.aliases = nil
	t.unknown = NewItem(UnknownName, -1, VariantWildcard, math.MaxInt)
}

// SetLearnFunc installs an observer for synthesized items. Pass nil to
// remove it.
func (t *Tree) SetLearnFunc(fn LearnFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.learn = fn
}

// UnknownItem returns the shared last-resort fallback item: name "unknown",
// type -1, wildcard variant, maximum order.
func (t *Tree) UnknownItem() *Item {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.unknown
}

// SetRootCategory designates the hierarchy's root and registers it.
func (t *Tree) SetRootCategory(c *Category) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rootName = c.Name()
	t.categories[c.Name()] = c
}

// AddCategory attaches a category under the named parent and registers it in
// the flat category index. The parent is looked up case-insensitively while
// category names are otherwise stored case-sensitively; loaders relying on
// mixed-case parent references must register categories under lower-case
// names. A missing parent is a configuration error and aborts construction.
func (t *Tree) AddCategory(parent string, c *Category) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.categories[strings.ToLower(parent)]
	if !ok {
		return fmt.Errorf("%w: parent category %q is not registered", ErrMalformedHierarchy, parent)
	}
	p.AddSubcategory(c)
	t.categories[c.Name()] = c
	return nil
}

// AddItem appends an item to the named parent category and mirrors it into
// the name and type indices. The parent is looked up case-insensitively; a
// missing parent aborts construction.
func (t *Tree) AddItem(parent string, it *Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.categories[strings.ToLower(parent)]
	if !ok {
		return fmt.Errorf("%w: parent category %q is not registered", ErrMalformedHierarchy, parent)
	}
	t.addItemLocked(p, it)
	return nil
}

// addItemLocked inserts into the hierarchy node and both indices. Callers
// hold the write lock.
func (t *Tree) addItemLocked(parent *Category, it *Item) {
	parent.AddItem(it)
	t.byName[it.Name()] = append(t.byName[it.Name()], it)
	t.byType[it.TypeID()] = append(t.byType[it.TypeID()], it)
}

// Matches reports whether any of the candidate items is denoted by keyword:
// either a candidate's name equals the keyword, or the keyword names a
// category that directly lists a candidate, or the keyword is the root
// category's name (everything matches the root). Nested subcategory
// membership is NOT checked; see Category.Contains. Empty candidate lists
// never match.
func (t *Tree) Matches(candidates []*Item, keyword string) bool {
	if len(candidates) == 0 {
		return false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	// The keyword is an item.
	for _, it := range candidates {
		if it != nil && it.Name() == keyword {
			return true
		}
	}

	// The keyword is a category.
	if category, ok := t.categories[keyword]; ok {
		for _, it := range candidates {
			if category.Contains(it) {
				return true
			}
		}
	}

	// Everything is stuff.
	return t.rootName != "" && keyword == t.rootName
}

// KeywordDepth returns the hierarchy distance from the root to the category
// named by keyword, DepthNotFound when the keyword names no category, and 0
// with a severe diagnostic when no root is set.
func (t *Tree) KeywordDepth(keyword string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	root := t.rootLocked()
	if root == nil {
		t.severe("keyword depth query " + strconv.Quote(keyword) + ": the root category is missing")
		return 0
	}
	return root.FindKeywordDepth(keyword)
}

// KeywordOrder returns the order of the first item registered under keyword
// (insertion order, not numeric order: when one name maps to several
// identities only the first-registered order is visible here). When no item
// carries the name, the keyword is treated as a category name; -1 is
// returned for unknown keywords, and -1 with a severe diagnostic when no
// root is set.
func (t *Tree) KeywordOrder(keyword string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if items := t.byName[keyword]; len(items) > 0 {
		return items[0].Order()
	}

	root := t.rootLocked()
	if root == nil {
		t.severe("keyword order query " + strconv.Quote(keyword) + ": the root category is missing")
		return -1
	}
	order, ok := root.FindCategoryOrder(keyword)
	if !ok {
		return -1
	}
	return order
}

// IsKeywordValid reports whether the keyword names a registered item or a
// registered category.
func (t *Tree) IsKeywordValid(keyword string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, ok := t.byName[keyword]; ok {
		return true
	}
	_, ok := t.categories[keyword]
	return ok
}

// Category returns the category registered under name, or nil. Absence is a
// normal outcome, not a failure.
func (t *Tree) Category(name string) *Category {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.categories[name]
}

// RootCategory returns the root node, or nil while no root is set.
func (t *Tree) RootCategory() *Category {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootLocked()
}

// AllCategories returns every registered node, in no particular order.
func (t *Tree) AllCategories() []*Category {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Category, 0, len(t.categories))
	for _, c := range t.categories {
		out = append(out, c)
	}
	return out
}

// IsItemUnknown reports whether nothing at all is registered under typeID.
// The variant is deliberately ignored: any entry for the type, wildcard or
// not, counts as known, because unknown-variant items of a known type still
// resolve to a fallback order through ResolveItems.
func (t *Tree) IsItemUnknown(typeID, variant int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byType[typeID]) == 0
}

// ResolveItems returns the entries covering the given identity. This is a
// resolve-or-learn operation, NOT a read-only lookup: when no registered
// entry covers the identity, two items are synthesized and permanently
// registered under the root. The precise "{type}-{variant}" entry takes
// order 5000 + type*16 + variant and the variant-agnostic "{type}" entry
// takes 5000 + type*16, so repeated queries for the same identity stabilize
// after the first call.
func (t *Tree) ResolveItems(typeID, variant int) []*Item {
	t.mu.Lock()

	filtered := make([]*Item, 0, len(t.byType[typeID]))
	for _, it := range t.byType[typeID] {
		if it == nil {
			continue
		}
		if it.Variant() != VariantWildcard && it.Variant() != variant {
			continue
		}
		filtered = append(filtered, it)
	}

	var learned []*Item
	if len(filtered) == 0 {
		precise := NewItem(
			fmt.Sprintf("%d-%d", typeID, variant),
			typeID, variant, 5000+typeID*16+variant)
		generic := NewItem(
			strconv.Itoa(typeID),
			typeID, VariantWildcard, 5000+typeID*16)

		if root := t.rootLocked(); root != nil {
			t.addItemLocked(root, precise)
			t.addItemLocked(root, generic)
			learned = []*Item{precise, generic}
		} else {
			// The pair is still answered but not registered, so nothing
			// was learned and the observer must not fire.
			t.severe(fmt.Sprintf("cannot learn identity %d:%d: the root category is missing", typeID, variant))
		}
		filtered = append(filtered, precise, generic)
	}

	learnFn := t.learn
	t.mu.Unlock()

	if learned != nil && learnFn != nil {
		learnFn(learned)
	}
	return filtered
}

// ItemsNamed returns the items registered under name in insertion order, or
// nil when the name is unknown. Unlike ResolveItems it never learns.
func (t *Tree) ItemsNamed(name string) []*Item {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byName[name]
}

// RandomItem picks uniformly across all registered items using the supplied
// randomness. It returns the shared fallback when the tree is empty.
func (t *Tree) RandomItem(r *rand.Rand) *Item {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var flat []*Item
	for _, items := range t.byName {
		flat = append(flat, items...)
	}
	if len(flat) == 0 {
		return t.unknown
	}
	return flat[r.Intn(len(flat))]
}

// ContainsItem reports whether any item is registered under name.
func (t *Tree) ContainsItem(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byName[name]
	return ok
}

// ContainsCategory reports whether a category is registered under name.
func (t *Tree) ContainsCategory(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.categories[name]
	return ok
}

func (t *Tree) rootLocked() *Category {
	if t.rootName == "" {
		return nil
	}
	return t.categories[t.rootName]
}

func (t *Tree) severe(msg string) {
	if t.diag != nil {
		t.diag.Severe(msg)
	}
}
