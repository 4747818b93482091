package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
	"github.com/lootkeep/stacksort/internal/events"
	"github.com/lootkeep/stacksort/internal/infra/storage"
	"github.com/lootkeep/stacksort/internal/platform/logger"
)

// memoryIdentityRepo is an in-memory stand-in for the SQLite catalog.
type memoryIdentityRepo struct {
	records []storage.IdentityRecord
}

func (r *memoryIdentityRepo) Upsert(_ context.Context, record storage.IdentityRecord) error {
	for i, existing := range r.records {
		if existing.Key == record.Key && existing.TypeID == record.TypeID && existing.Variant == record.Variant {
			r.records[i] = record
			return nil
		}
	}
	r.records = append(r.records, record)
	return nil
}

func (r *memoryIdentityRepo) GetByKey(_ context.Context, key string) ([]storage.IdentityRecord, error) {
	var result []storage.IdentityRecord
	for _, rec := range r.records {
		if rec.Key == key {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *memoryIdentityRepo) GetAll(_ context.Context) ([]storage.IdentityRecord, error) {
	return r.records, nil
}

func newAliasedTree(t *testing.T) *itemtree.Tree {
	t.Helper()
	tree := itemtree.NewTree(logger.NewLogger())
	tree.SetRootCategory(itemtree.NewCategory("items", 0))
	require.NoError(t, tree.RegisterAlias("items", "copper_pick", "pickaxe_copper", 7))
	return tree
}

func TestDiscoverCatalogsAndGrowsTree(t *testing.T) {
	tree := newAliasedTree(t)
	repo := &memoryIdentityRepo{}
	eventLog := events.NewEventLog(nil)
	reg := NewRegistry(repo, tree, eventLog, logger.NewLogger())

	require.NoError(t, reg.Discover(context.Background(), "pickaxe_copper", 42, 0))

	entries := tree.ItemsNamed("copper_pick")
	require.Len(t, entries, 1)
	assert.Equal(t, 42, entries[0].TypeID())
	assert.Equal(t, 0, entries[0].Variant())
	assert.Equal(t, 7, entries[0].Order())

	require.Len(t, repo.records, 1)
	assert.Equal(t, "pickaxe_copper", repo.records[0].Key)

	audited := eventLog.GetByType(events.EventTypeIdentityDiscovered)
	require.Len(t, audited, 1)
	assert.Equal(t, Source, audited[0].Source)
}

func TestDiscoverUnknownKeyIsCatalogedOnly(t *testing.T) {
	tree := newAliasedTree(t)
	repo := &memoryIdentityRepo{}
	reg := NewRegistry(repo, tree, events.NewEventLog(nil), logger.NewLogger())

	// No alias listens for this key; the catalog still remembers it so a
	// later definition file can pick it up after a replay.
	require.NoError(t, reg.Discover(context.Background(), "pickaxe_cobalt", 77, 0))
	assert.Empty(t, tree.ItemsNamed("copper_pick"))
	assert.Len(t, repo.records, 1)
}

func TestReplayResolvesPastDiscoveries(t *testing.T) {
	tree := newAliasedTree(t)
	repo := &memoryIdentityRepo{
		records: []storage.IdentityRecord{
			{Key: "pickaxe_copper", TypeID: 42, Variant: 0, DiscoveredAt: time.Now()},
			{Key: "pickaxe_copper", TypeID: 42, Variant: 1, DiscoveredAt: time.Now()},
		},
	}
	eventLog := events.NewEventLog(nil)
	reg := NewRegistry(repo, tree, eventLog, logger.NewLogger())

	require.NoError(t, reg.Replay(context.Background()))

	entries := tree.ItemsNamed("copper_pick")
	assert.Len(t, entries, 2)
	// Replay is a reconstruction, not a discovery: nothing new is audited.
	assert.Empty(t, eventLog.GetByType(events.EventTypeIdentityDiscovered))
}

func TestUpsertRefreshesInsteadOfDuplicating(t *testing.T) {
	tree := newAliasedTree(t)
	repo := &memoryIdentityRepo{}
	reg := NewRegistry(repo, tree, events.NewEventLog(nil), logger.NewLogger())

	require.NoError(t, reg.Discover(context.Background(), "pickaxe_copper", 42, 0))
	require.NoError(t, reg.Discover(context.Background(), "pickaxe_copper", 42, 0))

	assert.Len(t, repo.records, 1)
	assert.Len(t, tree.ItemsNamed("copper_pick"), 1)
}
