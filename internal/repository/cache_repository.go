package repository

import (
	"context"

	"gorm.io/gorm"
)

// CacheRepository keeps the price cache entries in the price_cache table.
type CacheRepository struct {
	db *gorm.DB
}

func NewCacheRepository(db *gorm.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

func (r *CacheRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var rows []struct {
		Value string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT value FROM price_cache WHERE key = ? LIMIT 1
	`, key).Scan(&rows).Error
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

func (r *CacheRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO price_cache (key, value, updated_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value).Error
}

func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM price_cache WHERE key IN ?
	`, keys).Error
}
