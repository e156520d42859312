package accounts

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/finboard/go-accounts/storage"
)

// IdentityStorageKey is the durable storage key for the current-user
// identity, independent of the token's key.
const IdentityStorageKey = "user-storage"

// IdentityStore holds the currently-authenticated user's public profile
// fields, persisted across restarts. The authentication coordinator is the
// sole writer; presentation components read and subscribe.
type IdentityStore struct {
	mu      sync.RWMutex
	current Identity
	store   storage.Store
	logger  Logger
	subs    map[int]func(Identity)
	nextSub int
}

// NewIdentityStore returns a store persisting into durable. A nil durable
// store makes the identity memory-only.
func NewIdentityStore(durable storage.Store) *IdentityStore {
	return &IdentityStore{
		store:  durable,
		logger: defLogger{},
		subs:   map[int]func(Identity){},
	}
}

func (s *IdentityStore) WithLogger(logger Logger) *IdentityStore {
	s.logger = logger
	return s
}

// Init restores the persisted identity. Idempotent: once an identity is
// held, later calls are no-ops.
func (s *IdentityStore) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.IsZero() || s.store == nil {
		return
	}

	raw, err := s.store.Get(ctx, IdentityStorageKey)
	if err != nil {
		if err != storage.ErrKeyNotFound {
			s.logger.Error("identity store: reading durable identity: %v", err)
		}
		return
	}

	identity := Identity{}
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Error("identity store: decoding durable identity: %v", err)
		return
	}
	s.current = identity
}

// Current returns the held identity. Zero value means nobody is signed in.
func (s *IdentityStore) Current() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetUser merges the non-empty fields of user into the current identity
// and persists the result. Fields absent from user are left untouched.
func (s *IdentityStore) SetUser(ctx context.Context, user Identity) {
	s.mu.Lock()

	if user.UserID != "" {
		s.current.UserID = user.UserID
	}
	if user.Email != "" {
		s.current.Email = user.Email
	}
	if user.Name != "" {
		s.current.Name = user.Name
	}
	if user.CreatedAt != "" {
		s.current.CreatedAt = user.CreatedAt
	}

	updated := s.current
	s.persist(ctx, updated)
	s.mu.Unlock()

	s.notify(updated)
}

// Reset returns every identity field to its zero value and persists the
// cleared state.
func (s *IdentityStore) Reset(ctx context.Context) {
	s.mu.Lock()
	s.current = Identity{}
	s.persist(ctx, s.current)
	s.mu.Unlock()

	s.notify(Identity{})
}

// Subscribe registers fn to run after every identity change. The returned
// function cancels the subscription.
func (s *IdentityStore) Subscribe(fn func(Identity)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *IdentityStore) persist(ctx context.Context, identity Identity) {
	if s.store == nil {
		return
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		s.logger.Error("identity store: encoding identity: %v", err)
		return
	}
	if err := s.store.Set(ctx, IdentityStorageKey, string(raw)); err != nil {
		s.logger.Error("identity store: persisting identity: %v", err)
	}
}

func (s *IdentityStore) notify(identity Identity) {
	s.mu.RLock()
	fns := make([]func(Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(identity)
	}
}
