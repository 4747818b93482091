// Package registry implements the external identity registry: the
// collaborator that associates concrete (type, variant) identities with the
// alias keys recorded in the tree. Discoveries are cataloged in SQLite so
// aliases keep resolving against everything ever discovered, across restarts.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
	"github.com/lootkeep/stacksort/internal/events"
	"github.com/lootkeep/stacksort/internal/infra/storage"
	"github.com/lootkeep/stacksort/internal/platform/logger"
)

// Source identifies registry-triggered events in the audit log.
const Source = "REGISTRY"

// Registry feeds discovered identities into the item tree.
type Registry struct {
	repo     storage.IdentityRepository
	tree     *itemtree.Tree
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewRegistry creates a registry over the given catalog and tree.
func NewRegistry(repo storage.IdentityRepository, tree *itemtree.Tree, eventLog *events.EventLog, log *logger.Logger) *Registry {
	return &Registry{
		repo:     repo,
		tree:     tree,
		eventLog: eventLog,
		logger:   log,
	}
}

// Replay pushes the whole catalog back into the tree. Called once after the
// loader has registered its aliases, so past discoveries resolve without
// waiting to be re-discovered.
func (r *Registry) Replay(ctx context.Context) error {
	records, err := r.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read identity catalog: %w", err)
	}
	for _, rec := range records {
		if err := r.tree.OnExternalIdentity(rec.Key, rec.TypeID, rec.Variant); err != nil {
			return fmt.Errorf("failed to replay identity %s(%d:%d): %w", rec.Key, rec.TypeID, rec.Variant, err)
		}
	}
	r.logger.Infof("Replayed %d cataloged identities into the tree", len(records))
	return nil
}

// Discover records a newly reported identity: it is cataloged, forwarded to
// the tree (growing it for every alias under the key) and audited.
func (r *Registry) Discover(ctx context.Context, key string, typeID, variant int) error {
	record := storage.IdentityRecord{
		Key:          key,
		TypeID:       typeID,
		Variant:      variant,
		DiscoveredAt: time.Now(),
	}
	if err := r.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to catalog identity %s(%d:%d): %w", key, typeID, variant, err)
	}

	if err := r.tree.OnExternalIdentity(key, typeID, variant); err != nil {
		return fmt.Errorf("failed to register identity %s(%d:%d): %w", key, typeID, variant, err)
	}

	r.eventLog.Record(events.EventTypeIdentityDiscovered, Source, events.IdentityDiscoveredPayload{
		Key:     key,
		TypeID:  typeID,
		Variant: variant,
	})
	return nil
}
