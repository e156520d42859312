package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Entry is the bun model backing BunStore: one row per storage key.
type Entry struct {
	bun.BaseModel `bun:"table:storage_entries,alias:se"`
	Key           string    `bun:"key,pk" json:"key"`
	Value         string    `bun:"value,notnull" json:"value"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// BunStore persists key/value pairs in a single sqlite table via bun.
type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

// OpenSQLite opens a sqlite database through the bun sqlite shim.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewBunStore wraps db. Call Init once to ensure the table exists.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// Init creates the backing table if it does not exist.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *BunStore) Get(ctx context.Context, key string) (string, error) {
	entry := &Entry{}
	err := s.db.NewSelect().
		Model(entry).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return entry.Value, nil
}

func (s *BunStore) Set(ctx context.Context, key, value string) error {
	entry := &Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *BunStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("?TableAlias.key = ?", key).
		Exec(ctx)
	return err
}
