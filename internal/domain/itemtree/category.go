package itemtree

// DepthNotFound is returned by FindKeywordDepth when the keyword matches no
// category in the searched subtree, including when it is an item name.
const DepthNotFound = -1

// Category is a named grouping node in the hierarchy. It may hold
// subcategories and/or directly-listed items, and carries a relative order
// among its siblings. Categories are mutable while the loader builds the
// tree and read-only afterwards.
type Category struct {
	name  string
	order int

	// Declaration order is preserved for both edges and item groups.
	subcategories []*Category
	groupNames    []string
	groups        map[string][]*Item
}

// NewCategory creates an empty category node.
func NewCategory(name string, order int) *Category {
	return &Category{
		name:   name,
		order:  order,
		groups: make(map[string][]*Item),
	}
}

// Name returns the category's unique name.
func (c *Category) Name() string { return c.name }

// Order returns the category's rank among its siblings.
func (c *Category) Order() int { return c.order }

// AddSubcategory appends a child category. The caller guarantees the child's
// name does not collide with an already registered category; collisions are
// a loader bug and are not validated here.
func (c *Category) AddSubcategory(child *Category) {
	c.subcategories = append(c.subcategories, child)
}

// AddItem appends an item to the group keyed by its name. One group exists
// per distinct keyword inserted into this category.
func (c *Category) AddItem(it *Item) {
	if _, ok := c.groups[it.Name()]; !ok {
		c.groupNames = append(c.groupNames, it.Name())
	}
	c.groups[it.Name()] = append(c.groups[it.Name()], it)
}

// Contains reports whether the item is listed directly in this category.
// It does NOT recurse into subcategories: matching a category keyword against
// items in nested subcategories is deliberately shallow.
func (c *Category) Contains(it *Item) bool {
	if it == nil {
		return false
	}
	for _, stored := range c.groups[it.Name()] {
		if stored.sameIdentity(it) {
			return true
		}
	}
	return false
}

// FindKeywordDepth returns the distance from this node to the category named
// by keyword: 0 when it is this node, 1 + the child result for the first
// subcategory (in declaration order) whose subtree holds it, and
// DepthNotFound when the keyword matches no category below this node.
func (c *Category) FindKeywordDepth(keyword string) int {
	if c.name == keyword {
		return 0
	}
	for _, sub := range c.subcategories {
		if d := sub.FindKeywordDepth(keyword); d != DepthNotFound {
			return 1 + d
		}
	}
	return DepthNotFound
}

// FindCategoryOrder returns the order of the category named by keyword,
// searching this node and then its subcategories in declaration order. The
// second return value distinguishes absence from a legitimate order value.
func (c *Category) FindCategoryOrder(keyword string) (int, bool) {
	if c.name == keyword {
		return c.order, true
	}
	for _, sub := range c.subcategories {
		if order, ok := sub.FindCategoryOrder(keyword); ok {
			return order, true
		}
	}
	return 0, false
}

// Subcategories returns the direct children in declaration order.
func (c *Category) Subcategories() []*Category {
	return c.subcategories
}

// ItemGroups returns the directly-listed items grouped by keyword, in
// insertion order of the keywords.
func (c *Category) ItemGroups() [][]*Item {
	out := make([][]*Item, 0, len(c.groupNames))
	for _, name := range c.groupNames {
		out = append(out, c.groups[name])
	}
	return out
}

// CountItems returns the number of items listed directly in this category.
func (c *Category) CountItems() int {
	n := 0
	for _, group := range c.groups {
		n += len(group)
	}
	return n
}
