// Package binwatch keeps placement consistent after catalog writes.
//
// Mutating code captures scope-determining snapshots before and after each
// write, records the affected scopes into a transaction-lifetime Recorder,
// and flushes the recorder only after the transaction commits. A rolled-back
// transaction simply drops its recorder, so no recomputation runs for writes
// that never became durable.
package binwatch
