package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// RemoteUserRegistry is the registry of record, reachable over the network.
// Create and Authenticate additionally return the bearer token issued by
// the service, when it issues one.
type RemoteUserRegistry interface {
	List(ctx context.Context) ([]UserRecord, error)
	Create(ctx context.Context, record UserRecord) (UserRecord, string, error)
	Authenticate(ctx context.Context, userID, password string) (UserRecord, string, error)
	Delete(ctx context.Context, userID string) error
}

// LocalUserRegistry is the durable client-side fallback registry. It never
// performs network I/O; its only failure modes are semantic conflicts.
type LocalUserRegistry interface {
	List(ctx context.Context) ([]UserRecord, error)
	Create(ctx context.Context, record UserRecord) (UserRecord, error)
	Delete(ctx context.Context, userID string) error
}

// TokenSource exposes the current bearer token for outbound request
// decoration. An empty string means no token is held.
type TokenSource interface {
	Token() string
}

// Config holds accounts options
type Config interface {
	GetBaseURL() string
	GetRequestTimeout() int
	GetSigningKey() string
	GetIssuer() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
