// Package compliance is the compliance reconciliation engine.
//
// It audits existing objects against operator-supplied rules and converges a
// durable per-attribute ledger to the latest verdict of every (object, rule)
// pair. Unlike write-time validation it runs repeatedly over a changing
// population, creating, updating and flipping records as objects change.
//
// # Components
//
//   - Rule: the contract every rule implements (ID, Name, Kind, Enforce, Audit).
//   - ComplianceError: the mergeable attribute -> message failure a rule returns.
//   - Executor: runs one rule against one object and classifies the result as
//     clean, failed or a rule defect.
//   - Diff / Engine.Reconcile: computes and applies the minimal writes that
//     converge the ledger rows of one pair to a new outcome.
//   - Job: runs reconciliation for a rule selection across the population with
//     a bounded worker pool.
//   - Reclaimer: deletes records whose object no longer exists.
//   - Validator: the hook a host calls from its full-validation step; enforcing
//     rules block the write, passive rules only record.
//
// # Ledger invariants
//
// Every audited pair has exactly one "__all__" record. Other attributes get a
// record only once they have failed, and such records are flipped to valid
// rather than deleted when the failure clears. Reconciling the same outcome
// twice performs no writes.
//
// # Usage
//
//	catalog := compliance.NewCatalog(logger, bundledProvider, remoteProvider)
//	_ = catalog.Sync(ctx)
//	engine := compliance.NewEngine(compliance.NewExecutor(logger, m, 30*time.Second), store, logger, m)
//	report, err := compliance.NewJob(catalog, objects, engine, 8, logger).Run(ctx, nil)
package compliance
