package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lootkeep/stacksort/internal/events"
	"github.com/lootkeep/stacksort/internal/platform/logger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(newToolTree(t), events.NewEventLog(nil), logger.NewLogger())
}

func TestEngineSortAuditsRequest(t *testing.T) {
	e := newTestEngine(t)

	sorted := e.Sort("CLIENT_1", []Stack{
		{TypeID: 10, Variant: 0, Quantity: 1},
		{TypeID: 20, Variant: 0, Quantity: 1},
	})
	require.Len(t, sorted, 2)
	assert.Equal(t, 20, sorted[0].TypeID)

	recorded := e.EventLog().GetByType(events.EventTypeInventorySorted)
	require.Len(t, recorded, 1)
	assert.Equal(t, "CLIENT_1", recorded[0].Source)
	payload, ok := recorded[0].Payload.(events.InventorySortedPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.Stacks)
	assert.Equal(t, 2, payload.Moved)
}

func TestEngineAuditsLearnedItems(t *testing.T) {
	e := newTestEngine(t)

	e.Resolve(321, 4)
	learned := e.EventLog().GetByType(events.EventTypeItemLearned)
	require.Len(t, learned, 2, "one event per synthesized entry")

	payload, ok := learned[0].Payload.(events.ItemLearnedPayload)
	require.True(t, ok)
	assert.Equal(t, "321-4", payload.Name)
	assert.Equal(t, 5000+321*16+4, payload.Order)

	// Resolving again learns nothing new.
	e.Resolve(321, 4)
	assert.Len(t, e.EventLog().GetByType(events.EventTypeItemLearned), 2)
}

func TestEngineKeywordQueries(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 5, e.KeywordOrder("pickaxe"))
	assert.Equal(t, 1, e.KeywordDepth("tools"))
	assert.True(t, e.IsKeywordValid("sword"))
	assert.False(t, e.IsKeywordValid("bow"))
}
