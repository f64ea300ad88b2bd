// Package ledger persists compliance records with GORM.
//
// It implements compliance.Store on a single 'compliance_records' table with a
// unique index over (object_kind, object_id, rule_id, attribute). Reconciling a
// pair is one transaction: the pair's rows are read (locked FOR UPDATE on MySQL),
// the engine computes the writes, and they are applied before commit. Transient
// failures restart the transaction.
//
// # Usage
//
//	if err := ledger.Migrate(db); err != nil {
//	    return err
//	}
//	store := ledger.NewStore(db, logger)
package ledger
