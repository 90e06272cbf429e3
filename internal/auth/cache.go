package auth

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/pkg/database"
)

// uidTTL is how long a cached uid is trusted before a full re-login.
const uidTTL = time.Hour

// ErrCacheMiss means no fresh uid is cached for the key.
var ErrCacheMiss = errors.New("no cached session")

const uidCacheSchema = `
CREATE TABLE IF NOT EXISTS uid_cache (
	cache_key  TEXT PRIMARY KEY,
	uid        INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

// UIDCache stores authenticated uids keyed by user and database so repeat
// logins skip the authenticate round trip.
type UIDCache struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUIDCache prepares the cache table on the given database.
func NewUIDCache(db *database.DB, logger *zap.Logger) (*UIDCache, error) {
	if _, err := db.Exec(uidCacheSchema); err != nil {
		return nil, fmt.Errorf("failed to create uid cache table: %w", err)
	}
	return &UIDCache{db: db, logger: logger}, nil
}

// cacheKey hides the username in the cache file.
func cacheKey(username, erpDB string) string {
	sum := sha256.Sum256([]byte(username + ":" + erpDB))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached uid for the user, or ErrCacheMiss when absent or
// older than the TTL.
func (c *UIDCache) Get(username, erpDB string) (int, error) {
	var uid int
	var createdAt time.Time
	err := c.db.QueryRow(
		"SELECT uid, created_at FROM uid_cache WHERE cache_key = ?",
		cacheKey(username, erpDB)).Scan(&uid, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("uid cache read failed: %w", err)
	}
	if time.Since(createdAt) > uidTTL {
		c.Delete(username, erpDB)
		return 0, ErrCacheMiss
	}
	return uid, nil
}

// Put stores a freshly authenticated uid.
func (c *UIDCache) Put(username, erpDB string, uid int) error {
	_, err := c.db.Exec(
		`INSERT INTO uid_cache (cache_key, uid, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET uid = excluded.uid, created_at = excluded.created_at`,
		cacheKey(username, erpDB), uid, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("uid cache write failed: %w", err)
	}
	return nil
}

// Delete drops the cached uid for the user.
func (c *UIDCache) Delete(username, erpDB string) {
	if _, err := c.db.Exec(
		"DELETE FROM uid_cache WHERE cache_key = ?", cacheKey(username, erpDB)); err != nil {
		c.logger.Warn("uid cache delete failed", zap.Error(err))
	}
}
