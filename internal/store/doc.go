// Package store provides SQLite-backed snapshots of encoded module documents.
//
// Every snapshot holds the canonical JSON of one module document:
//   - Bodies are zstd-compressed unless compression does not shrink them
//   - Snapshots are deduplicated by (module, fingerprint): saving an
//     unchanged document returns the existing snapshot
//   - Ordering uses a seq INTEGER logical clock, never timestamps
//   - IDs are UUIDv7 unless a test installs its own IDGenerator
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
