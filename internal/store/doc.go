// Package store provides SQLite-backed run history.
//
// Each completed filter run is appended as one row holding the job that ran
// (expression, column types, skip count, paths), its fingerprint and the
// report counters. Rows are keyed by UUIDv7 run id, so ordering by id orders
// runs by start time without trusting wall-clock timestamps to be unique.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Schema changes are applied as numbered migrations tracked in user_version.
package store
