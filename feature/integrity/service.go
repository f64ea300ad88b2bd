package integrity

import (
	"context"

	"compliance-engine/core/ledger"
	"compliance-engine/core/storage"
	"compliance-engine/feature/integrity/checks"
	"compliance-engine/feature/inventory"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks of the engine's storage and database.
type Service struct {
	client  storage.Client
	bucket  string
	folders []string
	db      *gorm.DB
	logger  *zap.Logger
}

// NewService creates a new integrity service. client may be nil when remote
// rule sets are disabled; the structure check then reports an error.
func NewService(client storage.Client, bucket, rulesPrefix string, db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		bucket:  bucket,
		folders: []string{rulesPrefix},
		db:      db,
		logger:  logger,
	}
}

// CheckStructure returns the storage folders that are missing.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStructure(ctx, s.client, s.bucket, s.folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return ErrStorageDisabled
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckSchema compares the ledger and inventory tables against their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db,
		ledger.ComplianceRecord{},
		inventory.ObjectRow{},
		inventory.ValueRow{},
	)
}
