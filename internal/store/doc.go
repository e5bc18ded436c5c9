// Package store keeps a history of solve results in SQLite.
//
// Each row holds the method, the input in the plain solver format, the
// preset, and the result as canonical JSON with its content hash (see
// package ir). Identical results therefore share a hash, which FindByHash
// looks up.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - schema upgrades tracked with PRAGMA user_version
package store
