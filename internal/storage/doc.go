// Package storage persists the planning state for a run:
//   - Strategy (one per run)
//   - Calendar entries (N per run)
//   - Jobs (one per entry, keyed by the deterministic job id)
//   - Post records (zero or one per job, updated by the engagement tracker)
//
// Drivers: in-memory (default), a single-file JSON snapshot, and a
// build-tagged sqlite backend.
package storage
