package accounts

import (
	"context"
	"encoding/json"

	"github.com/finboard/go-accounts/storage"
)

// SessionIdentityKey is the session-scoped storage key holding the copy of
// the signed-in user written at login time.
const SessionIdentityKey = "currentUser"

// SessionState is the application root's session context: the token store,
// the identity store, and a session-scoped mirror of the signed-in user.
// It replaces module-level singletons; pass it by reference to whatever
// needs to read authentication state. Only the Coordinator writes it.
type SessionState struct {
	Tokens *TokenStore
	User   *IdentityStore

	session storage.Store
	logger  Logger
}

// NewSessionState builds session state over a durable store. The session
// store holds data scoped to the current run only; pass nil to keep it in
// memory, which is almost always what you want.
func NewSessionState(durable, session storage.Store) *SessionState {
	if session == nil {
		session = storage.NewMemory()
	}

	return &SessionState{
		Tokens:  NewTokenStore(durable),
		User:    NewIdentityStore(durable),
		session: session,
		logger:  defLogger{},
	}
}

func (s *SessionState) WithLogger(logger Logger) *SessionState {
	s.logger = logger
	s.Tokens.WithLogger(logger)
	s.User.WithLogger(logger)
	return s
}

// Init restores token and identity from durable storage. Safe to call at
// every process start; no-op when nothing was persisted.
func (s *SessionState) Init(ctx context.Context) {
	s.Tokens.Init(ctx)
	s.User.Init(ctx)
}

// Clear logs the session out: token cleared from memory and durable
// storage, identity reset, session mirror dropped.
func (s *SessionState) Clear(ctx context.Context) {
	s.Tokens.Clear(ctx)
	s.User.Reset(ctx)
	if err := s.session.Delete(ctx, SessionIdentityKey); err != nil {
		s.logger.Error("session: clearing session identity: %v", err)
	}
}

// SessionIdentity returns the login-time identity mirror, if one was
// written during this run.
func (s *SessionState) SessionIdentity(ctx context.Context) (Identity, bool) {
	raw, err := s.session.Get(ctx, SessionIdentityKey)
	if err != nil {
		if err != storage.ErrKeyNotFound {
			s.logger.Error("session: reading session identity: %v", err)
		}
		return Identity{}, false
	}

	identity := Identity{}
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Error("session: decoding session identity: %v", err)
		return Identity{}, false
	}
	return identity, true
}

func (s *SessionState) storeSessionIdentity(ctx context.Context, identity Identity) {
	raw, err := json.Marshal(identity)
	if err != nil {
		s.logger.Error("session: encoding session identity: %v", err)
		return
	}
	if err := s.session.Set(ctx, SessionIdentityKey, string(raw)); err != nil {
		s.logger.Error("session: persisting session identity: %v", err)
	}
}
