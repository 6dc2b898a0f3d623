// Package service implements the task use cases on top of the store
// contracts. TaskService composes the relational TaskRepository with the
// ViewCounter: task rows are read and written transactionally, view counts are
// bumped atomically in the counter store.
package service
