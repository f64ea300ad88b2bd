package ledger

import (
	"time"

	"compliance-engine/core/compliance"
)

// ComplianceRecord is the 'compliance_records' table.
// One row per (object, rule, attribute); the unique index enforces it.
type ComplianceRecord struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ObjectKind  string    `gorm:"column:object_kind;type:varchar(100);not null;uniqueIndex:idx_compliance_triple,priority:1;index:idx_compliance_object,priority:1"`
	ObjectID    string    `gorm:"column:object_id;type:varchar(191);not null;uniqueIndex:idx_compliance_triple,priority:2;index:idx_compliance_object,priority:2"`
	RuleID      string    `gorm:"column:rule_id;type:varchar(191);not null;uniqueIndex:idx_compliance_triple,priority:3;index"`
	Attribute   string    `gorm:"column:attribute;type:varchar(191);not null;uniqueIndex:idx_compliance_triple,priority:4"`
	Valid       bool      `gorm:"column:valid;not null;index"`
	Message     string    `gorm:"column:message;type:text"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

// TableName overrides the table name.
func (ComplianceRecord) TableName() string {
	return "compliance_records"
}

// ToRecord converts the row to the engine's record type.
func (r ComplianceRecord) ToRecord() compliance.Record {
	return compliance.Record{
		Object:      compliance.ObjectRef{Kind: r.ObjectKind, ID: r.ObjectID},
		RuleID:      r.RuleID,
		Attribute:   r.Attribute,
		Valid:       r.Valid,
		Message:     r.Message,
		LastUpdated: r.LastUpdated,
	}
}

func fromRecord(rec compliance.Record) ComplianceRecord {
	return ComplianceRecord{
		ObjectKind:  rec.Object.Kind,
		ObjectID:    rec.Object.ID,
		RuleID:      rec.RuleID,
		Attribute:   rec.Attribute,
		Valid:       rec.Valid,
		Message:     rec.Message,
		LastUpdated: rec.LastUpdated,
	}
}
