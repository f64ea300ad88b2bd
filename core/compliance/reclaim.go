package compliance

import (
	"context"
	"fmt"

	"compliance-engine/core/metrics"

	"go.uber.org/zap"
)

// Reclaimer deletes ledger records whose object no longer exists.
type Reclaimer struct {
	store   Store
	objects ObjectSource
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewReclaimer creates an orphan reclaimer.
func NewReclaimer(store Store, objects ObjectSource, logger *zap.Logger, m *metrics.Metrics) *Reclaimer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reclaimer{store: store, objects: objects, logger: logger, metrics: m}
}

// Reclaim removes every record whose object reference no longer resolves and
// returns how many were deleted. Records are only deleted for objects proven
// absent; a lookup error leaves that object's records in place.
func (r *Reclaimer) Reclaim(ctx context.Context) (int, error) {
	refs, err := r.store.ObjectRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list ledger objects: %w", err)
	}

	deleted := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		exists, err := r.objects.Exists(ctx, ref)
		if err != nil {
			r.logger.Warn("Could not resolve ledger object, skipping", zap.String("object", ref.String()), zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		n, err := r.store.DeleteObject(ctx, ref)
		if err != nil {
			r.logger.Error("Failed to delete orphaned records", zap.String("object", ref.String()), zap.Error(err))
			continue
		}
		deleted += int(n)
		r.logger.Debug("Reclaimed orphaned records", zap.String("object", ref.String()), zap.Int64("count", n))
	}

	r.metrics.AddReclaimed(deleted)
	r.logger.Info("Orphan reclamation finished", zap.Int("objects", len(refs)), zap.Int("deleted", deleted))
	return deleted, nil
}
