package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencecentral/internal/domain"
)

type announcementCache struct {
	DB DBTX
}

// NewAnnouncementCache returns a domain.AnnouncementCache backed by the
// cache_entries table.
func NewAnnouncementCache(db DBTX) domain.AnnouncementCache {
	return &announcementCache{DB: db}
}

func (c *announcementCache) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.DB.QueryRowContext(ctx, `SELECT value FROM cache_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *announcementCache) Put(ctx context.Context, key, value string) error {
	_, err := c.DB.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	return err
}

func (c *announcementCache) Delete(ctx context.Context, key string) error {
	_, err := c.DB.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key)
	return err
}
