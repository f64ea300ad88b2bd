// Package integrity checks the infrastructure the compliance engine depends on.
//
// # Checks Provided
//
//   - Structure: the rule set folder exists in the storage bucket.
//   - Schema: the ledger and inventory tables match their models (columns, declared types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs the structure check (supports ?fix=true).
//   - GET /integrity/schema : Runs the schema check.
package integrity
