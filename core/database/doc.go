// Package database handles database connections and schema inspection.
//
// It wraps GORM to open the ledger database with either the MySQL or the SQLite
// driver, configured from the application's configuration.
//
// # Connect
//
// Connect opens the database, sizes the pool and pings it. Unique-key violations
// are translated to gorm.ErrDuplicatedKey so the ledger can retry racing writes.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns on either dialect. The integrity
// feature compares them against the GORM models of the ledger and inventory.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "compliance_records")
package database
