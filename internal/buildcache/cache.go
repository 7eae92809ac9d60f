// Package buildcache provides SQLite-backed caching of fetched build
// codes, so repeated runs within a short window do not re-hit Archon.
package buildcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS build_cache (
	key        TEXT PRIMARY KEY,
	code       TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL
);
`

// DefaultTTL is how long a cached build code stays valid. Archon refreshes
// its build data at most a few times per day.
const DefaultTTL = 6 * time.Hour

// Cache is a TTL cache of build codes keyed by target path.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens (creating if needed) the cache database at path.
// A ttl of zero selects DefaultTTL.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get retrieves a cached build code by key.
// Returns "", false if not found or expired.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	var code string
	var expiresAt time.Time

	err := c.db.QueryRowContext(ctx,
		"SELECT code, expires_at FROM build_cache WHERE key = ?", key,
	).Scan(&code, &expiresAt)

	if err != nil || time.Now().After(expiresAt) {
		return "", false
	}
	return code, true
}

// Set stores a build code under key with the cache's TTL.
func (c *Cache) Set(ctx context.Context, key, code string) error {
	expiresAt := time.Now().Add(c.ttl)

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO build_cache (key, code, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at`,
		key, code, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Prune removes all expired entries.
// Returns the number of entries removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM build_cache WHERE expires_at < ?", time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
