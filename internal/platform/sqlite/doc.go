// Package sqlite provides the SQLite implementation of store.TaskStore using
// the pure-Go modernc.org/sqlite driver. It backs local runs and the store
// contract tests, where no PostgreSQL server is available.
package sqlite
