package cache

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheEntry is one row of the shared cache table.
type CacheEntry struct {
	CacheKey  string     `gorm:"column:cache_key;primaryKey;size:255"`
	Value     []byte     `gorm:"column:value"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
}

func (CacheEntry) TableName() string { return "cache_entries" }

// CacheSetMember is one member of a shared set.
type CacheSetMember struct {
	SetKey string `gorm:"column:set_key;primaryKey;size:191"`
	Member string `gorm:"column:member;primaryKey;size:191"`
}

func (CacheSetMember) TableName() string { return "cache_set_members" }

// DBStore shares cache entries and sets across replicas through the database.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore wraps db. Call Migrate once before use.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Migrate creates the cache tables if they are missing.
func (s *DBStore) Migrate() error {
	return s.db.AutoMigrate(&CacheEntry{}, &CacheSetMember{})
}

// PurgeExpired deletes entries whose TTL has passed and returns how many were removed.
func (s *DBStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).Delete(&CacheEntry{})
	return res.RowsAffected, res.Error
}

func live(e CacheEntry, now time.Time) bool {
	return e.ExpiresAt == nil || e.ExpiresAt.After(now)
}

func (s *DBStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rows []CacheEntry
	if err := s.db.WithContext(ctx).Where("cache_key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}
	if len(rows) == 0 || !live(rows[0], time.Now()) {
		return nil, false, nil
	}
	return rows[0].Value, true, nil
}

func (s *DBStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.MSet(ctx, map[string][]byte{key: value}, ttl)
}

func (s *DBStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var rows []CacheEntry
	if err := s.db.WithContext(ctx).Where("cache_key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cache mget: %w", err)
	}
	now := time.Now()
	byKey := make(map[string][]byte, len(rows))
	for _, r := range rows {
		if live(r, now) {
			byKey[r.CacheKey] = r.Value
		}
	}
	for i, k := range keys {
		out[i] = byKey[k]
	}
	return out, nil
}

func (s *DBStore) MSet(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	exp := expiry(ttl)
	rows := make([]CacheEntry, 0, len(entries))
	for k, v := range entries {
		rows = append(rows, CacheEntry{CacheKey: k, Value: v, ExpiresAt: exp})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("cache mset: %w", err)
	}
	return nil
}

func (s *DBStore) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("cache_key IN ?", keys).Delete(&CacheEntry{}).Error; err != nil {
		return fmt.Errorf("cache forget: %w", err)
	}
	return nil
}

func (s *DBStore) SetAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	rows := make([]CacheSetMember, 0, len(members))
	for _, m := range members {
		rows = append(rows, CacheSetMember{SetKey: key, Member: m})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("set add %q: %w", key, err)
	}
	return nil
}

func (s *DBStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	var members []string
	err := s.db.WithContext(ctx).Model(&CacheSetMember{}).
		Where("set_key = ?", key).
		Order("member").
		Pluck("member", &members).Error
	if err != nil {
		return nil, fmt.Errorf("set members %q: %w", key, err)
	}
	return members, nil
}

// SetDrain reads and deletes the set in one transaction. On MySQL the rows are
// locked so two replicas never drain the same member.
func (s *DBStore) SetDrain(ctx context.Context, key string) ([]string, error) {
	var members []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("set_key = ?", key)
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var rows []CacheSetMember
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, r := range rows {
			members = append(members, r.Member)
		}
		return tx.Where("set_key = ? AND member IN ?", key, members).Delete(&CacheSetMember{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("set drain %q: %w", key, err)
	}
	return members, nil
}
