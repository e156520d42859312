package accounts_test

import (
	"fmt"
	"testing"

	"github.com/finboard/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHelpersMatchWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("GET /customer/list: connection refused: %w", accounts.ErrRegistryUnavailable)

	assert.True(t, accounts.IsUnavailable(wrapped))
	assert.False(t, accounts.IsUnavailable(accounts.ErrRequestFailed))

	assert.True(t, accounts.IsValidation(fmt.Errorf("user id: %w", accounts.ErrValidation)))
	assert.True(t, accounts.IsDuplicateIdentity(accounts.ErrDuplicateIdentity))
	assert.True(t, accounts.IsInvalidCredentials(accounts.ErrInvalidCredentials))
	assert.True(t, accounts.IsNotFound(accounts.ErrNotFound))
}

func TestErrorCategoriesAndCodes(t *testing.T) {
	var richErr *goerrors.Error

	require.True(t, goerrors.As(accounts.ErrInvalidCredentials, &richErr))
	assert.Equal(t, goerrors.CategoryAuth, richErr.Category)
	assert.Equal(t, accounts.TextCodeInvalidCreds, richErr.TextCode)

	require.True(t, goerrors.As(accounts.ErrDuplicateIdentity, &richErr))
	assert.Equal(t, goerrors.CategoryConflict, richErr.Category)

	require.True(t, goerrors.As(accounts.ErrNotFound, &richErr))
	assert.Equal(t, goerrors.CategoryNotFound, richErr.Category)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, accounts.UserMessage(nil))

	msg := accounts.UserMessage(accounts.ErrInvalidCredentials)
	assert.Equal(t, "account id or password does not match", msg)

	// wrapped sentinels resolve to the same message
	wrapped := fmt.Errorf("login: %w", accounts.ErrInvalidCredentials)
	assert.Equal(t, msg, accounts.UserMessage(wrapped))

	// unclassified errors fall back to the generic failure message
	plain := fmt.Errorf("boom")
	assert.Equal(t, accounts.UserMessage(accounts.ErrAuthenticationFailed), accounts.UserMessage(plain))
}
