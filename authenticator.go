package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/goliatone/go-errors"
)

// LoginInput carries the credentials for a login attempt.
type LoginInput struct {
	UserID   string
	Password string
}

// SignupInput carries the fields for a new account.
type SignupInput struct {
	UserID          string
	Email           string
	Name            string
	Password        string
	PasswordConfirm string
}

// SuccessHandler runs after a login or signup lands a session, with the
// identity that was established.
type SuccessHandler func(Identity)

// Coordinator drives login, signup, and account deletion against the
// remote registry, falling back to the local registry only when the
// remote one is unreachable. At most one operation runs at a time; a
// second concurrent call fails fast with ErrOperationInFlight.
type Coordinator struct {
	remote  RemoteUserRegistry
	local   LocalUserRegistry
	session *SessionState
	tokens  *TokenService
	logger  Logger

	onSuccess SuccessHandler
	busy      atomic.Bool
}

type CoordinatorOption func(*Coordinator)

func WithCoordinatorLogger(logger Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithSuccessHandler(handler SuccessHandler) CoordinatorOption {
	return func(c *Coordinator) {
		c.onSuccess = handler
	}
}

// NewCoordinator wires the registries and session state together. The
// signing key from cfg backs the locally minted session tokens.
func NewCoordinator(remote RemoteUserRegistry, local LocalUserRegistry, session *SessionState, cfg Config, opts ...CoordinatorOption) (*Coordinator, error) {
	if remote == nil {
		return nil, errors.New("coordinator requires a remote registry", errors.CategoryBadInput)
	}

	if local == nil {
		return nil, errors.New("coordinator requires a local registry", errors.CategoryBadInput)
	}

	if session == nil {
		return nil, errors.New("coordinator requires session state", errors.CategoryBadInput)
	}

	coordinator := &Coordinator{
		remote:  remote,
		local:   local,
		session: session,
		tokens:  NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetIssuer(), defLogger{}),
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(coordinator)
		}
	}

	return coordinator, nil
}

// Login authenticates against the remote registry first. When the remote
// call does not produce a session, the merged view of both registries is
// scanned for a record whose id matches case-insensitively and whose
// password matches exactly.
func (c *Coordinator) Login(ctx context.Context, input LoginInput) error {
	if strings.TrimSpace(input.UserID) == "" || input.Password == "" {
		return fmt.Errorf("user id and password are required: %w", ErrValidation)
	}

	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	record, issued, err := c.remote.Authenticate(ctx, input.UserID, input.Password)
	if err == nil {
		return c.establish(ctx, record, issued)
	}

	if IsInvalidCredentials(err) {
		// The registry saw the id and rejected the password; a scan of
		// the same registry would reach the same verdict.
		c.logger.Debug("login: remote rejected credentials for %s", input.UserID)
	} else {
		c.logger.Info("login: remote authenticate failed, scanning registries: %v", err)
	}

	match, found := c.scan(ctx, input.UserID, input.Password)
	if !found {
		if IsInvalidCredentials(err) || IsUnavailable(err) {
			return ErrInvalidCredentials
		}
		return c.failure(err)
	}

	return c.establish(ctx, match, "")
}

// Signup creates the account remotely, falling back to the local registry
// only when the remote registry is unreachable. A duplicate identity or a
// rejected request is terminal either way.
func (c *Coordinator) Signup(ctx context.Context, input SignupInput) error {
	if err := validateSignup(input); err != nil {
		return err
	}

	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	record := UserRecord{
		UserID:   input.UserID,
		Email:    input.Email,
		Name:     input.Name,
		Password: input.Password,
	}

	created, issued, err := c.remote.Create(ctx, record)
	if err == nil {
		return c.establish(ctx, created, issued)
	}

	if !IsUnavailable(err) {
		return c.failure(err)
	}

	c.logger.Info("signup: remote registry unreachable, creating locally: %v", err)

	created, err = c.local.Create(ctx, record)
	if err != nil {
		return c.failure(err)
	}

	return c.establish(ctx, created, "")
}

// Delete removes the account with the given id, trying the remote
// registry first and the local one only when the remote is unreachable.
// When the removed account is the one currently signed in, the session is
// cleared.
func (c *Coordinator) Delete(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required: %w", ErrValidation)
	}

	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	err = c.remote.Delete(ctx, userID)
	if err != nil {
		if !IsUnavailable(err) {
			return c.failure(err)
		}

		c.logger.Info("delete: remote registry unreachable, removing locally: %v", err)

		if err = c.local.Delete(ctx, userID); err != nil {
			return c.failure(err)
		}
	} else {
		// Keep a shadow copy from an earlier outage from resurrecting
		// the account.
		if lerr := c.local.Delete(ctx, userID); lerr != nil && !IsNotFound(lerr) {
			c.logger.Error("delete: local cleanup for %s failed: %v", userID, lerr)
		}
	}

	current := c.session.User.Current()
	if SameUserID(current.UserID, userID) {
		c.session.Clear(ctx)
	}

	return nil
}

// Logout drops the session, both registries untouched.
func (c *Coordinator) Logout(ctx context.Context) {
	c.session.Clear(ctx)
}

// acquire takes the single-flight slot or fails fast.
func (c *Coordinator) acquire() (func(), error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrOperationInFlight
	}
	return func() { c.busy.Store(false) }, nil
}

// scan builds the merged registry view and looks for a credential match.
// Remote list failures are tolerated; the local registry always answers.
func (c *Coordinator) scan(ctx context.Context, userID, password string) (UserRecord, bool) {
	var remote []UserRecord

	records, err := c.remote.List(ctx)
	if err != nil {
		c.logger.Debug("login: remote list unavailable during scan: %v", err)
	} else {
		remote = records
	}

	local, err := c.local.List(ctx)
	if err != nil {
		c.logger.Error("login: local list failed during scan: %v", err)
	}

	return FindMatch(MergeCandidates(remote, local), userID, password)
}

// establish mints the token when the registry issued none, then commits
// the session in token, identity, session-marker order. Nothing is
// written until a token is in hand.
func (c *Coordinator) establish(ctx context.Context, record UserRecord, issued string) error {
	token := AuthToken{Value: issued, Kind: TokenKindRemote}
	if issued == "" {
		minted, err := c.tokens.MintLocalToken(record.Identity())
		if err != nil {
			return c.failure(err)
		}
		token = AuthToken{Value: minted, Kind: TokenKindLocal}
	}

	c.session.Tokens.Set(ctx, &token)
	c.session.User.SetUser(ctx, record.Identity())
	c.session.storeSessionIdentity(ctx, record.Identity())

	if c.onSuccess != nil {
		c.onSuccess(record.Identity())
	}

	return nil
}

// failure passes classified errors through and folds anything unexpected
// into ErrAuthenticationFailed so callers always see the taxonomy.
func (c *Coordinator) failure(err error) error {
	switch {
	case IsValidation(err),
		IsInvalidCredentials(err),
		IsDuplicateIdentity(err),
		IsUnavailable(err),
		IsNotFound(err),
		errors.Is(err, ErrRequestFailed),
		errors.Is(err, ErrOperationInFlight):
		return err
	}

	c.logger.Error("auth: unexpected failure: %v", err)

	return fmt.Errorf("%v: %w", err, ErrAuthenticationFailed)
}

func validateSignup(input SignupInput) error {
	switch {
	case strings.TrimSpace(input.UserID) == "":
		return fmt.Errorf("user id is required: %w", ErrValidation)
	case strings.TrimSpace(input.Email) == "":
		return fmt.Errorf("email is required: %w", ErrValidation)
	case strings.TrimSpace(input.Name) == "":
		return fmt.Errorf("name is required: %w", ErrValidation)
	case input.Password == "":
		return fmt.Errorf("password is required: %w", ErrValidation)
	case input.Password != input.PasswordConfirm:
		return fmt.Errorf("passwords do not match: %w", ErrValidation)
	}
	return nil
}
