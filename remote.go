package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds every remote registry call. Exceeding it is
// indistinguishable from the registry being unreachable.
const DefaultRequestTimeout = 3 * time.Second

const (
	listPath         = "/customer/list"
	createPath       = "/customer/create"
	deletePath       = "/customer/delete"
	authenticatePath = "/auth/user/login"
)

// RemoteRegistry talks to the remote user registry service over HTTP. All
// requests carry the current bearer token when one is held, and share a
// bounded timeout.
//
// Error mapping: 2xx succeeds; 401 is ErrInvalidCredentials; 422 (or 409)
// on create is ErrDuplicateIdentity; 404 on delete is ErrNotFound; any
// other non-2xx is ErrRequestFailed; no response at all (connection error
// or timeout) is ErrRegistryUnavailable.
type RemoteRegistry struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  Logger
}

var _ RemoteUserRegistry = (*RemoteRegistry)(nil)

type RemoteRegistryOption func(*RemoteRegistry)

func WithHTTPClient(client *http.Client) RemoteRegistryOption {
	return func(r *RemoteRegistry) {
		if client != nil {
			r.client = client
		}
	}
}

func WithTokenSource(tokens TokenSource) RemoteRegistryOption {
	return func(r *RemoteRegistry) {
		r.tokens = tokens
	}
}

func WithRemoteLogger(logger Logger) RemoteRegistryOption {
	return func(r *RemoteRegistry) {
		r.logger = logger
	}
}

// NewRemoteRegistry builds a client for the registry at cfg's base URL.
func NewRemoteRegistry(cfg Config, opts ...RemoteRegistryOption) *RemoteRegistry {
	timeout := DefaultRequestTimeout
	if cfg.GetRequestTimeout() > 0 {
		timeout = time.Duration(cfg.GetRequestTimeout()) * time.Second
	}

	registry := &RemoteRegistry{
		baseURL: strings.TrimRight(cfg.GetBaseURL(), "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(registry)
		}
	}

	return registry
}

// List fetches the full registry. The service answers either a bare array
// or an object wrapping it under a customers/users key; both are accepted.
func (r *RemoteRegistry) List(ctx context.Context) ([]UserRecord, error) {
	body, status, err := r.do(ctx, http.MethodGet, listPath, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		r.logger.Error("remote registry: list returned status %d", status)
		return nil, fmt.Errorf("list status %d: %w", status, ErrRegistryUnavailable)
	}

	return decodeUserList(body)
}

type createResponse struct {
	UserRecord
	User        *UserRecord `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// Create submits a new record and returns the stored record plus the
// issued token, when the service issues one.
func (r *RemoteRegistry) Create(ctx context.Context, record UserRecord) (UserRecord, string, error) {
	body, status, err := r.do(ctx, http.MethodPost, createPath, record)
	if err != nil {
		return UserRecord{}, "", err
	}

	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		return UserRecord{}, "", ErrDuplicateIdentity
	case status < 200 || status >= 300:
		r.logger.Error("remote registry: create returned status %d", status)
		return UserRecord{}, "", fmt.Errorf("create status %d: %w", status, ErrRequestFailed)
	}

	resp := createResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		// Some deployments answer an empty body on create; the submitted
		// record is authoritative enough for the session.
		return record, "", nil
	}

	created := resp.UserRecord
	if resp.User != nil {
		created = *resp.User
	}
	if created.UserID == "" {
		created = record
	}

	return created, resp.AccessToken, nil
}

type authenticateResponse struct {
	Status      string      `json:"status"`
	Message     string      `json:"message"`
	User        *UserRecord `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// Authenticate submits credentials to the dedicated login endpoint and
// returns the matched record plus the issued token.
func (r *RemoteRegistry) Authenticate(ctx context.Context, userID, password string) (UserRecord, string, error) {
	payload := map[string]string{
		"user_id":  userID,
		"password": password,
	}

	body, status, err := r.do(ctx, http.MethodPost, authenticatePath, payload)
	if err != nil {
		return UserRecord{}, "", err
	}

	switch {
	case status == http.StatusUnauthorized:
		return UserRecord{}, "", ErrInvalidCredentials
	case status < 200 || status >= 300:
		r.logger.Error("remote registry: authenticate returned status %d", status)
		return UserRecord{}, "", fmt.Errorf("authenticate status %d: %w", status, ErrRequestFailed)
	}

	resp := authenticateResponse{}
	if err := json.Unmarshal(body, &resp); err != nil || resp.User == nil {
		r.logger.Error("remote registry: malformed authenticate response")
		return UserRecord{}, "", fmt.Errorf("malformed authenticate response: %w", ErrRequestFailed)
	}

	return *resp.User, resp.AccessToken, nil
}

// Delete requests removal of the record with the given user id.
func (r *RemoteRegistry) Delete(ctx context.Context, userID string) error {
	payload := map[string]string{"user_id": userID}

	_, status, err := r.do(ctx, http.MethodPost, deletePath, payload)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status < 200 || status >= 300:
		r.logger.Error("remote registry: delete returned status %d", status)
		return fmt.Errorf("delete status %d: %w", status, ErrRequestFailed)
	}

	return nil
}

// do performs one request and returns the raw body and status. A transport
// failure (no response received, including timeouts) maps to
// ErrRegistryUnavailable; status classification is left to each caller.
func (r *RemoteRegistry) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.tokens != nil {
		if token := r.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("remote registry: %s %s: %v", method, path, err)
		return nil, 0, fmt.Errorf("%s %s: %v: %w", method, path, err, ErrRegistryUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: reading response: %v: %w", method, path, err, ErrRegistryUnavailable)
	}

	return body, resp.StatusCode, nil
}

// decodeUserList accepts either a bare JSON array of records or an object
// wrapping the array under a customers or users key.
func decodeUserList(body []byte) ([]UserRecord, error) {
	var records []UserRecord
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	wrapped := struct {
		Customers []UserRecord `json:"customers"`
		Users     []UserRecord `json:"users"`
	}{}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("malformed list response: %w", ErrRequestFailed)
	}

	if wrapped.Customers != nil {
		return wrapped.Customers, nil
	}
	return wrapped.Users, nil
}
