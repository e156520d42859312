package accounts

import (
	"strings"
	"time"
)

// UserRecord is a registry entry: identity plus credential. The JSON tags
// match the remote service's wire shape, which is also the shape persisted
// by the local fallback registry.
//
// Passwords are stored and compared verbatim. The registries this package
// talks to do not hash credentials; see the package documentation before
// pointing it at anything security-sensitive.
type UserRecord struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Identity is the public view of a record: what the rest of the dashboard
// may see about the authenticated principal. Never carries the password.
type Identity struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Identity strips the credential from a record.
func (r UserRecord) Identity() Identity {
	return Identity{
		UserID:    r.UserID,
		Email:     r.Email,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

// IsZero reports whether no identity fields are set.
func (i Identity) IsZero() bool {
	return i.UserID == "" && i.Email == "" && i.Name == "" && i.CreatedAt == ""
}

// SameUserID compares user ids the way registries do: case-insensitively.
func SameUserID(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Timestamp formats t the way registries stamp created_at.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
