// Package compliance mounts the compliance engine's HTTP routes.
//
//	GET  /compliance/records             list ledger records (valid, rule, kind, object_id, attribute, limit, offset)
//	GET  /compliance/rules               list the rule catalog
//	POST /compliance/rules/sync          reload rule sources
//	POST /compliance/jobs/reconcile      run a reconciliation job {"rules": [...]}
//	POST /compliance/jobs/reclaim        delete records of objects that no longer exist
//	GET  /compliance/validate/:kind/:id  audit one object without writing
package compliance
