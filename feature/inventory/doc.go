// Package inventory is a small object store the compliance engine audits.
//
// Objects are free-form attribute maps addressed by kind and id, kept in the
// 'inventory_objects' table. Scalar attribute values are copied into
// 'inventory_values' so rules can count objects sharing a value.
//
// The Repository implements compliance.ObjectSource for jobs and the
// reclaimer, and rules.Counter for unique checks. Save runs every registered
// Hook before committing; the server registers the compliance validator's
// FullClean so enforcing rules can block a write.
//
// # Routes
//
//	GET    /objects/:kind
//	GET    /objects/:kind/:id
//	PUT    /objects/:kind/:id
//	DELETE /objects/:kind/:id
package inventory
