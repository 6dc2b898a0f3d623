// Package testdb provides utilities specifically for database testing.
//
// OpenSQLite returns a migrated in-memory SQLite database and needs no
// external services. OpenPostgres connects to the database named by
// DATABASE_URL (or TASKAPI_TEST_DB_URL), applies migrations and empties the
// tasks table; it skips the test when no URL is configured, except in CI
// where a missing URL fails the test instead.
//
// Every handle is closed automatically through t.Cleanup.
package testdb
