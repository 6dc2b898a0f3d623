package testdb

import "os"

// Environment variables consulted for the PostgreSQL test database, in order.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvTestDBURL     = "TASKAPI_TEST_DB_URL"
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
)

// GetTestDatabaseURL returns the first non-empty PostgreSQL test URL.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvDatabaseURL, EnvTestDBURL} {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a PostgreSQL test URL is set.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// IsCI reports whether the tests run in a CI environment.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" || os.Getenv(EnvGitHubActions) != ""
}
