package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"compliance-engine/core/compliance"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// maxAttempts bounds retries of a pair transaction on transient failures.
	maxAttempts = 4
	retryDelay  = 25 * time.Millisecond
)

// Store is the gorm implementation of compliance.Store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a ledger store on db.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the ledger table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ComplianceRecord{}); err != nil {
		return fmt.Errorf("failed to migrate compliance_records: %w", err)
	}
	return nil
}

// ReconcilePair runs load, plan and apply for one pair inside a transaction.
// On MySQL the pair's rows are locked FOR UPDATE. Deadlocks, lock timeouts,
// busy databases and unique-key races restart the whole transaction so the
// plan is recomputed against fresh rows.
func (s *Store) ReconcilePair(ctx context.Context, ref compliance.ObjectRef, ruleID string, plan func(existing []compliance.Record) compliance.Plan) (compliance.Plan, error) {
	var applied compliance.Plan

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var rows []ComplianceRecord
			q := tx.Where("object_kind = ? AND object_id = ? AND rule_id = ?", ref.Kind, ref.ID, ruleID).
				Order("attribute")
			if tx.Dialector.Name() == "mysql" {
				q = q.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			if err := q.Find(&rows).Error; err != nil {
				return fmt.Errorf("failed to load records: %w", err)
			}

			ids := make(map[string]uint, len(rows))
			existing := make([]compliance.Record, 0, len(rows))
			for _, row := range rows {
				ids[row.Attribute] = row.ID
				existing = append(existing, row.ToRecord())
			}

			applied = plan(existing)
			for _, w := range applied.Writes {
				switch w.Type {
				case compliance.WriteCreate:
					row := fromRecord(w.Record)
					if err := tx.Create(&row).Error; err != nil {
						return fmt.Errorf("failed to create record %s: %w", w.Record.Attribute, err)
					}
				case compliance.WriteUpdate:
					id, ok := ids[w.Record.Attribute]
					if !ok {
						return fmt.Errorf("update for unknown attribute %s", w.Record.Attribute)
					}
					res := tx.Model(&ComplianceRecord{}).Where("id = ?", id).Updates(map[string]any{
						"valid":        w.Record.Valid,
						"message":      w.Record.Message,
						"last_updated": w.Record.LastUpdated,
					})
					if res.Error != nil {
						return fmt.Errorf("failed to update record %s: %w", w.Record.Attribute, res.Error)
					}
				}
			}
			return nil
		})
		if err == nil || !isTransient(err) || attempt == maxAttempts {
			break
		}

		s.logger.Debug("Retrying ledger transaction",
			zap.String("object", ref.String()),
			zap.String("rule", ruleID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return compliance.Plan{}, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryDelay):
		}
	}
	if err != nil {
		return compliance.Plan{}, err
	}
	return applied, nil
}

// List returns records matching filter ordered by object, rule and attribute.
func (s *Store) List(ctx context.Context, filter compliance.Filter) ([]compliance.Record, error) {
	q := s.db.WithContext(ctx).Model(&ComplianceRecord{})
	if filter.Valid != nil {
		q = q.Where("valid = ?", *filter.Valid)
	}
	if filter.RuleID != "" {
		q = q.Where("rule_id = ?", filter.RuleID)
	}
	if filter.Kind != "" {
		q = q.Where("object_kind = ?", filter.Kind)
	}
	if filter.ObjectID != "" {
		q = q.Where("object_id = ?", filter.ObjectID)
	}
	if filter.Attribute != "" {
		q = q.Where("attribute = ?", filter.Attribute)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []ComplianceRecord
	if err := q.Order("object_kind, object_id, rule_id, attribute").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := make([]compliance.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToRecord())
	}
	return out, nil
}

// ObjectRefs returns every distinct object referenced by the ledger.
func (s *Store) ObjectRefs(ctx context.Context) ([]compliance.ObjectRef, error) {
	type refRow struct {
		ObjectKind string
		ObjectID   string
	}
	var rows []refRow
	err := s.db.WithContext(ctx).Model(&ComplianceRecord{}).
		Distinct("object_kind", "object_id").
		Order("object_kind, object_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger objects: %w", err)
	}

	refs := make([]compliance.ObjectRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, compliance.ObjectRef{Kind: r.ObjectKind, ID: r.ObjectID})
	}
	return refs, nil
}

// DeleteObject removes every record of ref.
func (s *Store) DeleteObject(ctx context.Context, ref compliance.ObjectRef) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("object_kind = ? AND object_id = ?", ref.Kind, ref.ID).
		Delete(&ComplianceRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete records of %s: %w", ref, res.Error)
	}
	return res.RowsAffected, nil
}

// isTransient reports whether a failed pair transaction is worth repeating.
func isTransient(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1205, 1213: // duplicate entry, lock wait timeout, deadlock
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "unique constraint failed")
}
