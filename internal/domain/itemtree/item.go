// Package itemtree contains the whole hierarchy of categories and items
// used to recognize sorting keywords and to store item orders.
// This package is PURE and must NOT import any infrastructure packages;
// diagnostics are reported through the small Diagnostic interface.
package itemtree

import "fmt"

const (
	// VariantWildcard is the distinguished variant value that matches any
	// variant of a type.
	VariantWildcard = -1

	// UnknownName is the keyword of the shared fallback item handed out by
	// Tree.UnknownItem.
	UnknownName = "unknown"

	// MaxCategoryRange bounds the order spacing a loader may assign within a
	// single category.
	MaxCategoryRange = 1000
)

// Item is a single keyword entry in the tree: a name bound to a concrete or
// wildcard identity plus a caller-assigned sort order. Items are immutable
// once created; duplicate orders are legal and represent ties.
type Item struct {
	name    string
	typeID  int
	variant int
	order   int
}

// NewItem creates an immutable tree item.
func NewItem(name string, typeID, variant, order int) *Item {
	return &Item{name: name, typeID: typeID, variant: variant, order: order}
}

// Name returns the keyword that resolves to this item.
func (it *Item) Name() string { return it.name }

// TypeID returns the item's primary identity.
func (it *Item) TypeID() int { return it.typeID }

// Variant returns the item's sub-variant, possibly VariantWildcard.
func (it *Item) Variant() int { return it.variant }

// Order returns the relative rank used for sort comparisons. Lower sorts
// earlier.
func (it *Item) Order() int { return it.order }

// MatchesIdentity reports whether this entry covers the given concrete
// identity. A wildcard variant covers every variant of the type.
func (it *Item) MatchesIdentity(typeID, variant int) bool {
	if it.typeID != typeID {
		return false
	}
	return it.variant == VariantWildcard || it.variant == variant
}

// sameIdentity reports whether two entries are the same keyword binding.
func (it *Item) sameIdentity(other *Item) bool {
	return other != nil &&
		it.name == other.name &&
		it.typeID == other.typeID &&
		it.variant == other.variant
}

func (it *Item) String() string {
	if it.variant == VariantWildcard {
		return fmt.Sprintf("%s (%d:*, order %d)", it.name, it.typeID, it.order)
	}
	return fmt.Sprintf("%s (%d:%d, order %d)", it.name, it.typeID, it.variant, it.order)
}
