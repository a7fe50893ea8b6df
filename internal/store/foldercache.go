package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FolderCache persists resolved remote folder IDs so repeated pushes do
// not re-walk the remote tree. Entries expire after a TTL; a stale entry
// is treated as a miss and re-resolved against the remote store.
type FolderCache struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenFolderCache opens (and initializes if needed) the cache database.
func OpenFolderCache(path string, ttl time.Duration) (*FolderCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	cache := &FolderCache{db: db, ttl: ttl}
	if err := cache.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return cache, nil
}

func (c *FolderCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *FolderCache) migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS folder_ids (
	root_id TEXT NOT NULL,
	relative_path TEXT NOT NULL,
	folder_id TEXT NOT NULL,
	resolved_at INTEGER NOT NULL,
	PRIMARY KEY (root_id, relative_path)
);
`

// Get returns the cached folder ID for a path under a root, if present
// and fresh.
func (c *FolderCache) Get(ctx context.Context, rootID, relPath string) (string, bool, error) {
	var folderID string
	var resolvedAt int64

	row := c.db.QueryRowContext(ctx,
		`SELECT folder_id, resolved_at FROM folder_ids WHERE root_id = ? AND relative_path = ?`,
		rootID, relPath)
	if err := row.Scan(&folderID, &resolvedAt); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}

	if c.ttl > 0 && time.Since(time.Unix(resolvedAt, 0)) > c.ttl {
		return "", false, nil
	}
	return folderID, true, nil
}

// Put stores or refreshes a resolved folder ID.
func (c *FolderCache) Put(ctx context.Context, rootID, relPath, folderID string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO folder_ids (root_id, relative_path, folder_id, resolved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (root_id, relative_path) DO UPDATE SET
		   folder_id = excluded.folder_id,
		   resolved_at = excluded.resolved_at`,
		rootID, relPath, folderID, time.Now().Unix())
	return err
}

// Invalidate drops all entries under a root. Used when the remote tree is
// known to have changed out from under the cache.
func (c *FolderCache) Invalidate(ctx context.Context, rootID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM folder_ids WHERE root_id = ?`, rootID)
	return err
}
