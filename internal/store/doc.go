// Package store provides SQLite-backed durable storage for tick traces.
//
// The store implements an append-only session log with:
//   - Sessions: one recorded playback of a compiled timeline definition
//   - Ticks: the exact delta sequence fed to the engine, in order
//   - Events: every crossing event emitted, stamped with its logical seq
//
// # Critical Patterns
//
// Logical time only:
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Enables deterministic replay regardless of wall time
//
// Deterministic query results:
//   - Tick reads ORDER BY idx ASC, event reads ORDER BY seq ASC
//   - Ensures identical results across replays
//
// Replayability:
//   - Sessions store the definition source alongside the delta log, so a
//     session is self-contained: Replay recompiles the source, re-runs the
//     recorded deltas, and diffs the emitted events against the log
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
