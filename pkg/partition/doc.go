// Package partition divides a mutable text buffer into an ordered, gapless
// sequence of typed line intervals (notebook cells) derived from a stream of
// boundary markers, and keeps that partition current as the buffer is edited.
//
// Two engines implement the same Engine contract:
//
//   - Incremental re-lexes only the lines touched by an edit, splices the
//     result into its marker cache, rebuilds the affected interval range and
//     reports a trimmed before/after diff to listeners.
//   - Reference rebuilds markers and intervals from scratch on every edit.
//     It serves callers that can afford O(buffer) updates and is the oracle the
//     incremental engine is tested against.
//
// # Concurrency
//
// Queries take a read lock and may run concurrently. Updates run inside the
// buffer's Changed notification under the write lock, and listeners are
// invoked synchronously while that lock is held. A listener must not edit the
// buffer or call the engine's query methods from its callback; it reads the
// post-edit partition through Change.Current instead.
//
// # Integrity
//
// After every update the engine can verify its invariants (ordinals equal
// indices, markers sorted and in bounds, intervals contiguous and covering
// every line). Violations are logged, never returned or raised: a partition
// bug degrades cell boundaries rather than crashing the host.
package partition
