package engine

import (
	"github.com/lootkeep/stacksort/internal/domain/itemtree"
	"github.com/lootkeep/stacksort/internal/events"
	"github.com/lootkeep/stacksort/internal/platform/logger"
	"github.com/lootkeep/stacksort/internal/platform/metrics"
)

// treeSource identifies tree-triggered events in the audit log.
const treeSource = "TREE"

// Engine wires the item tree to the audit log and exposes the sorting
// operations the network layer serves.
type Engine struct {
	tree     *itemtree.Tree
	sorter   *Sorter
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewEngine creates the engine and hooks the tree's learning path into the
// audit log: every synthesized identity becomes an ITEM_LEARNED event.
func NewEngine(tree *itemtree.Tree, eventLog *events.EventLog, log *logger.Logger) *Engine {
	e := &Engine{
		tree:     tree,
		sorter:   NewSorter(tree),
		eventLog: eventLog,
		logger:   log,
	}

	tree.SetLearnFunc(func(learned []*itemtree.Item) {
		for _, it := range learned {
			e.eventLog.Record(events.EventTypeItemLearned, treeSource, events.ItemLearnedPayload{
				Name:    it.Name(),
				TypeID:  it.TypeID(),
				Variant: it.Variant(),
				Order:   it.Order(),
			})
		}
		metrics.Get().RecordItemsLearned(int64(len(learned)))
		e.logger.Infof("Learned %d synthetic entries for an unknown identity", len(learned))
	})

	return e
}

// Sort sorts an inventory and audits the served request.
func (e *Engine) Sort(source string, stacks []Stack) []Stack {
	sorted, moved := e.sorter.SortStacks(stacks)
	e.eventLog.Record(events.EventTypeInventorySorted, source, events.InventorySortedPayload{
		Stacks: len(stacks),
		Moved:  moved,
	})
	return sorted
}

// KeywordOrder exposes the tree's order resolution.
func (e *Engine) KeywordOrder(keyword string) int {
	return e.tree.KeywordOrder(keyword)
}

// KeywordDepth exposes the tree's depth resolution.
func (e *Engine) KeywordDepth(keyword string) int {
	return e.tree.KeywordDepth(keyword)
}

// IsKeywordValid reports whether the keyword names an item or a category.
func (e *Engine) IsKeywordValid(keyword string) bool {
	return e.tree.IsKeywordValid(keyword)
}

// Resolve returns the tree entries covering an identity. Like the tree
// operation it delegates to, it may learn and therefore grow the tree.
func (e *Engine) Resolve(typeID, variant int) []*itemtree.Item {
	return e.tree.ResolveItems(typeID, variant)
}

// Tree exposes the underlying tree for construction-time collaborators.
func (e *Engine) Tree() *itemtree.Tree {
	return e.tree
}

// EventLog exposes the audit log for the network layer's pollers.
func (e *Engine) EventLog() *events.EventLog {
	return e.eventLog
}
