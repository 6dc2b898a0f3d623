// Package store defines the persistence contracts used by the task service:
// the relational TaskStore, the key-value ViewCounter, and the shared error
// values and transaction helper that every implementation relies on.
// Implementations live under internal/platform.
package store
