// Package journal records every bus dispatch in an in-memory SQLite log.
//
// The journal is an append-only table keyed by a logical sequence number:
//   - seq comes from a loop.Clock, never wall time
//   - payloads are msgpack-encoded after dropping the source and
//     stringifying values msgpack cannot encode
//   - reads are ordered by seq ASC
//
// # Database Configuration
//
//   - ":memory:" with a single connection, so every query sees the same
//     database and nothing survives the process
//   - synchronous=OFF: there is no file to sync
//
// Write failures are logged and never reach the bus.
package journal
