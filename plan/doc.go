// Package plan runs the whole mapping pipeline and publishes its result.
//
// Build resolves layouts, maps every field to an accessor plan and derives
// key lookups for keyed vectors, then verifies the buffer contract on the
// result and returns an immutable Set:
//
//	model ──► layout.Resolver ──► accessor.Mapper ──► keyindex.Planner
//	                                     │
//	                                     ▼
//	                               plan.Set (read-only)
//
// A Set is never modified after Build returns, so any number of emitters
// may read it concurrently without locking. Encode exports a Set as JSON,
// YAML or MessagePack for emitters living outside the process.
package plan
