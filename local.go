package accounts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/finboard/go-accounts/storage"
	"github.com/goliatone/go-errors"
)

// LocalRegistryKey is the durable storage key holding the fallback
// registry's record collection, serialized as a JSON array.
const LocalRegistryKey = "localUsers"

// LocalRegistry is the durable client-side fallback used when the remote
// registry is unreachable. Absent or corrupt storage reads as an empty
// collection, never as a failure.
type LocalRegistry struct {
	store  storage.Store
	logger Logger
	now    func() time.Time
}

var _ LocalUserRegistry = (*LocalRegistry)(nil)

type LocalRegistryOption func(*LocalRegistry)

func WithLocalClock(now func() time.Time) LocalRegistryOption {
	return func(l *LocalRegistry) {
		l.now = now
	}
}

func WithLocalLogger(logger Logger) LocalRegistryOption {
	return func(l *LocalRegistry) {
		l.logger = logger
	}
}

// NewLocalRegistry builds a registry over the given durable store.
func NewLocalRegistry(store storage.Store, opts ...LocalRegistryOption) *LocalRegistry {
	registry := &LocalRegistry{
		store:  store,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(registry)
		}
	}

	return registry
}

// List returns the stored collection. Storage absence or corruption is
// logged and treated as empty.
func (l *LocalRegistry) List(ctx context.Context) ([]UserRecord, error) {
	return l.load(ctx), nil
}

// Create appends record after a case-sensitive collision scan on user id
// and email. On conflict nothing is written. The stored record gets a
// client-clock created_at when the caller did not supply one.
func (l *LocalRegistry) Create(ctx context.Context, record UserRecord) (UserRecord, error) {
	records := l.load(ctx)

	for _, existing := range records {
		if existing.UserID == record.UserID || existing.Email == record.Email {
			return UserRecord{}, ErrDuplicateIdentity
		}
	}

	if record.CreatedAt == "" {
		record.CreatedAt = Timestamp(l.now())
	}

	records = append(records, record)
	if err := l.persist(ctx, records); err != nil {
		return UserRecord{}, err
	}

	return record, nil
}

// Delete removes the record whose user id matches exactly. Absent targets
// report ErrNotFound.
func (l *LocalRegistry) Delete(ctx context.Context, userID string) error {
	records := l.load(ctx)

	for i, existing := range records {
		if existing.UserID == userID {
			records = append(records[:i], records[i+1:]...)
			return l.persist(ctx, records)
		}
	}

	return ErrNotFound
}

func (l *LocalRegistry) load(ctx context.Context) []UserRecord {
	raw, err := l.store.Get(ctx, LocalRegistryKey)
	if err != nil {
		if err != storage.ErrKeyNotFound {
			l.logger.Error("local registry: reading collection: %v", err)
		}
		return nil
	}

	var records []UserRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		l.logger.Error("local registry: corrupt collection, treating as empty: %v", err)
		return nil
	}
	return records
}

func (l *LocalRegistry) persist(ctx context.Context, records []UserRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode local registry")
	}
	if err := l.store.Set(ctx, LocalRegistryKey, string(raw)); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist local registry")
	}
	return nil
}
