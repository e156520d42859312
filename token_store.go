package accounts

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/finboard/go-accounts/storage"
)

// TokenStorageKey is the durable storage key mirroring the bearer token.
const TokenStorageKey = "accessToken"

// TokenKind tags where a bearer token came from, so downstream code can
// decide whether to trust it for server-authenticated calls.
type TokenKind string

const (
	// TokenKindRemote marks a token issued by the remote registry.
	TokenKindRemote TokenKind = "remote"
	// TokenKindLocal marks a placeholder token synthesized for a login
	// that never reached the remote registry.
	TokenKindLocal TokenKind = "local"
)

// AuthToken is the opaque bearer credential plus its provenance tag.
type AuthToken struct {
	Value string    `json:"value"`
	Kind  TokenKind `json:"kind"`
}

// TokenStore holds the current bearer token in memory and mirrors it into
// durable storage. Exactly one token is live at a time; setting a new one
// overwrites the old one in both places. No expiry is tracked.
//
// Storage failures degrade to memory-only operation and are logged, never
// surfaced: the in-memory value stays authoritative for the process.
type TokenStore struct {
	mu      sync.RWMutex
	current *AuthToken
	store   storage.Store
	logger  Logger
}

// NewTokenStore returns a store mirroring into durable. A nil durable
// store is allowed and makes the store memory-only.
func NewTokenStore(durable storage.Store) *TokenStore {
	return &TokenStore{
		store:  durable,
		logger: defLogger{},
	}
}

func (t *TokenStore) WithLogger(logger Logger) *TokenStore {
	t.logger = logger
	return t
}

// Init eagerly restores the in-memory token from durable storage. It is
// idempotent and a no-op when no durable storage is configured or a token
// is already held.
func (t *TokenStore) Init(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil {
		return
	}
	t.current = t.restore(ctx)
}

// Get returns the held token, lazily restoring from durable storage when
// memory is empty. Returns nil when no token exists anywhere.
func (t *TokenStore) Get(ctx context.Context) *AuthToken {
	t.mu.RLock()
	if t.current != nil {
		tok := *t.current
		t.mu.RUnlock()
		return &tok
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		t.current = t.restore(ctx)
	}
	if t.current == nil {
		return nil
	}
	tok := *t.current
	return &tok
}

// Token implements TokenSource for outbound request decoration.
func (t *TokenStore) Token() string {
	tok := t.Get(context.Background())
	if tok == nil {
		return ""
	}
	return tok.Value
}

// Set replaces the held token in memory and in durable storage. A nil
// token clears both (logout semantics); clearing twice is not an error.
func (t *TokenStore) Set(ctx context.Context, token *AuthToken) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token == nil {
		t.current = nil
		if t.store != nil {
			if err := t.store.Delete(ctx, TokenStorageKey); err != nil {
				t.logger.Error("token store: clearing durable token: %v", err)
			}
		}
		return
	}

	tok := *token
	t.current = &tok

	if t.store == nil {
		return
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		t.logger.Error("token store: encoding token: %v", err)
		return
	}
	if err := t.store.Set(ctx, TokenStorageKey, string(raw)); err != nil {
		t.logger.Error("token store: persisting token: %v", err)
	}
}

// Clear removes the token from memory and durable storage.
func (t *TokenStore) Clear(ctx context.Context) {
	t.Set(ctx, nil)
}

func (t *TokenStore) restore(ctx context.Context) *AuthToken {
	if t.store == nil {
		return nil
	}

	raw, err := t.store.Get(ctx, TokenStorageKey)
	if err != nil {
		if err != storage.ErrKeyNotFound {
			t.logger.Error("token store: reading durable token: %v", err)
		}
		return nil
	}

	token := &AuthToken{}
	if err := json.Unmarshal([]byte(raw), token); err != nil {
		// Older deployments stored the bare token string.
		token = &AuthToken{Value: raw, Kind: TokenKindRemote}
	}
	if token.Value == "" {
		return nil
	}
	if token.Kind == "" {
		token.Kind = TokenKindRemote
	}
	return token
}
