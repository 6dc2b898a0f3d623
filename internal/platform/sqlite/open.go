package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// modernc registers itself as the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const (
	urlScheme  = "sqlite://"
	filePrefix = "file:"
	memoryPath = ":memory:"
)

// IsSQLiteURL reports whether url selects the SQLite backend.
// Accepted forms are sqlite://<path>, sqlite://:memory: and file:<path>.
func IsSQLiteURL(url string) bool {
	return strings.HasPrefix(url, urlScheme) || strings.HasPrefix(url, filePrefix)
}

// DSN converts a sqlite:// URL into a modernc DSN. file: URLs are returned
// unchanged. A busy timeout is added so concurrent writers wait instead of
// failing immediately.
func DSN(url string) (string, error) {
	if strings.HasPrefix(url, filePrefix) {
		return url, nil
	}
	if !strings.HasPrefix(url, urlScheme) {
		return "", fmt.Errorf("not a sqlite URL: %q", url)
	}

	path := strings.TrimPrefix(url, urlScheme)
	if path == "" {
		return "", fmt.Errorf("sqlite URL has no path: %q", url)
	}
	if path == memoryPath {
		return memoryPath, nil
	}
	return filePrefix + path + "?_pragma=busy_timeout(5000)", nil
}

// Open opens the SQLite database named by url and verifies it with a ping.
// In-memory databases are pinned to a single connection, since every new
// connection would otherwise see its own empty database.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	dsn, err := DSN(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if dsn == memoryPath || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", MapError(err))
	}

	return db, nil
}
