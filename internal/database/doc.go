// Package database stores the transform history ledger in SQLite.
//
// Every invocation served over HTTP can be recorded as a [TransformRecord]
// holding its kind, operation, outcome and byte counts; payloads are never
// stored. The ledger backs the /api/history and /api/stats endpoints and the
// history gauges refreshed by metrics.Collector.
//
// The database uses WAL mode for concurrent reads while the server records.
package database
