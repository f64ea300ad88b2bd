package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"compliance-engine/core/compliance"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Hook runs before an object is committed. A non-nil error blocks the write.
type Hook func(ctx context.Context, obj compliance.Object) error

// Repository stores inventory objects. It implements compliance.ObjectSource
// and the rules.Counter lookup.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.RWMutex
	hooks []Hook
}

// NewRepository creates a repository on db.
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger}
}

// Migrate creates or updates the inventory tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ObjectRow{}, &ValueRow{}); err != nil {
		return fmt.Errorf("failed to migrate inventory tables: %w", err)
	}
	return nil
}

// RegisterHook adds a pre-commit hook. Hooks run in registration order.
func (r *Repository) RegisterHook(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, h)
}

// Save validates and upserts an object. The first failing hook aborts the
// write and its error is returned unchanged.
func (r *Repository) Save(ctx context.Context, kind, id string, attrs map[string]any) (*Item, error) {
	if kind == "" || id == "" {
		return nil, fmt.Errorf("kind and id are required")
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	item := &Item{Kind: kind, ID: id, Attributes: attrs, UpdatedAt: time.Now().UTC()}

	r.mu.RLock()
	hooks := append([]Hook(nil), r.hooks...)
	r.mu.RUnlock()
	for _, h := range hooks {
		if err := h(ctx, item); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := ObjectRow{Kind: kind, ObjectID: id, Attributes: string(data), UpdatedAt: item.UpdatedAt}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "object_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"attributes", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}

		if err := tx.Where("kind = ? AND object_id = ?", kind, id).Delete(&ValueRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear values: %w", err)
		}
		if values := valueRows(item); len(values) > 0 {
			if err := tx.Create(&values).Error; err != nil {
				return fmt.Errorf("failed to index values: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Object saved", zap.String("object", item.Ref().String()))
	return item, nil
}

// Get loads one object.
func (r *Repository) Get(ctx context.Context, ref compliance.ObjectRef) (*Item, error) {
	var row ObjectRow
	err := r.db.WithContext(ctx).Where("kind = ? AND object_id = ?", ref.Kind, ref.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, compliance.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ref, err)
	}
	return row.toItem()
}

// List returns every object of kind ordered by id.
func (r *Repository) List(ctx context.Context, kind string) ([]*Item, error) {
	var rows []ObjectRow
	if err := r.db.WithContext(ctx).Where("kind = ?", kind).Order("object_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s objects: %w", kind, err)
	}
	items := make([]*Item, 0, len(rows))
	for _, row := range rows {
		item, err := row.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Delete removes an object and reports whether it existed. Its ledger records
// are left for the orphan reclaimer.
func (r *Repository) Delete(ctx context.Context, ref compliance.ObjectRef) (bool, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("kind = ? AND object_id = ?", ref.Kind, ref.ID).Delete(&ObjectRow{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return tx.Where("kind = ? AND object_id = ?", ref.Kind, ref.ID).Delete(&ValueRow{}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return deleted > 0, nil
}

// Enumerate returns every object of kind.
func (r *Repository) Enumerate(ctx context.Context, kind string) ([]compliance.Object, error) {
	items, err := r.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]compliance.Object, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out, nil
}

// Resolve loads one object as a compliance.Object.
func (r *Repository) Resolve(ctx context.Context, ref compliance.ObjectRef) (compliance.Object, error) {
	item, err := r.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Exists reports whether ref is stored.
func (r *Repository) Exists(ctx context.Context, ref compliance.ObjectRef) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ObjectRow{}).
		Where("kind = ? AND object_id = ?", ref.Kind, ref.ID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", ref, err)
	}
	return n > 0, nil
}

// CountOthers counts objects of kind other than exclude whose attribute has value.
func (r *Repository) CountOthers(ctx context.Context, kind, attribute, value string, exclude compliance.ObjectRef) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&ValueRow{}).
		Where("kind = ? AND attribute = ? AND value = ?", kind, attribute, value)
	if exclude.Kind == kind && exclude.ID != "" {
		q = q.Where("object_id <> ?", exclude.ID)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s.%s values: %w", kind, attribute, err)
	}
	return n, nil
}
