// Package store provides the SQLite-backed generation log.
//
// Every output produced by `quill generate --db` is appended as one row of the
// generations table together with everything needed to produce it again: the
// grammar hash and path, the template, the seed, the effective max depth and
// modifier pipeline, and the engine version.
//
// Outputs of one invocation share a run ID and are numbered by run index. A
// seeded run replays as a unit, since the n-th output depends on the random
// draws made by the outputs before it.
//
// # Ordering
//
// All queries order by seq, the logical clock stamped at write time, so
// history and replay are stable regardless of wall-clock resolution.
//
// # Connection
//
// Open puts the database in WAL mode with synchronous=NORMAL, so history can
// read while generate appends, and waits up to five seconds on a locked file.
// Schema upgrades are keyed on PRAGMA user_version.
//
// Modifier lists are stored as canonical JSON (see internal/ir).
package store
