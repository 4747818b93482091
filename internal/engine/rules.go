package engine

import (
	"fmt"
	"sort"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
)

// itemRulePriority outranks every category rule: a keyword naming an item
// directly is always more specific than a category keyword.
const itemRulePriority = 1_000_000

// Rule binds a keyword to the slots its matching stacks prefer. Rules with
// more specific keywords win: item keywords beat category keywords, and
// deeper categories beat shallower ones.
type Rule struct {
	Keyword  string
	Slots    []int
	priority int
}

// NewRule compiles a rule against the tree, deriving its priority from the
// keyword's kind and hierarchy depth.
func NewRule(tree *itemtree.Tree, keyword string, slots []int) (*Rule, error) {
	if !tree.IsKeywordValid(keyword) {
		return nil, fmt.Errorf("rule keyword %q names no item or category", keyword)
	}

	priority := itemRulePriority
	if !tree.ContainsItem(keyword) {
		priority = tree.KeywordDepth(keyword) * itemtree.MaxCategoryRange
	}
	return &Rule{Keyword: keyword, Slots: slots, priority: priority}, nil
}

// Priority exposes the compiled specificity rank, mainly for diagnostics.
func (r *Rule) Priority() int { return r.priority }

// RuleEngine assigns stacks to slots by consulting rules from most to least
// specific.
type RuleEngine struct {
	tree  *itemtree.Tree
	rules []*Rule
}

// NewRuleEngine compiles the given keyword/slot pairs. Rules are kept in
// descending priority order; declaration order breaks priority ties.
func NewRuleEngine(tree *itemtree.Tree, rules []*Rule) *RuleEngine {
	ordered := make([]*Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].priority > ordered[j].priority
	})
	return &RuleEngine{tree: tree, rules: ordered}
}

// BestSlot returns the preferred slot for a stack: the first slot of the
// most specific rule whose keyword matches the stack's resolved items.
// ok is false when no rule matches.
func (e *RuleEngine) BestSlot(st Stack) (int, bool) {
	items := e.tree.ResolveItems(st.TypeID, st.Variant)
	for _, rule := range e.rules {
		if len(rule.Slots) == 0 {
			continue
		}
		if e.tree.Matches(items, rule.Keyword) {
			return rule.Slots[0], true
		}
	}
	return 0, false
}

// Rules returns the compiled rules in evaluation order.
func (e *RuleEngine) Rules() []*Rule {
	return e.rules
}
