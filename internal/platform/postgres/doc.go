// Package postgres provides the PostgreSQL implementation of store.TaskStore.
// It supplies the SQL dialect used by the shared sqlstore implementation,
// translates pgx errors into store errors and opens connection pools through
// the pgx stdlib driver.
package postgres
