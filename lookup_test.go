package accounts_test

import (
	"testing"

	"github.com/finboard/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCandidates(t *testing.T) {
	remote := []accounts.UserRecord{
		{UserID: "alice", Password: "pw-a"},
		{UserID: "bob", Password: "pw-b"},
	}
	local := []accounts.UserRecord{
		{UserID: "BOB", Password: "stale"},
		{UserID: "carol", Password: "pw-c"},
	}

	merged := accounts.MergeCandidates(remote, local)

	require.Len(t, merged, 3)
	assert.Equal(t, "alice", merged[0].UserID)
	assert.Equal(t, "bob", merged[1].UserID)
	assert.Equal(t, "carol", merged[2].UserID)

	// the shadowed local copy of bob is gone, its password with it
	for _, record := range merged {
		assert.NotEqual(t, "stale", record.Password)
	}
}

func TestMergeCandidatesEmptySides(t *testing.T) {
	local := []accounts.UserRecord{{UserID: "carol"}}

	assert.Len(t, accounts.MergeCandidates(nil, local), 1)
	assert.Len(t, accounts.MergeCandidates(local, nil), 1)
	assert.Empty(t, accounts.MergeCandidates(nil, nil))
}

func TestFindMatch(t *testing.T) {
	candidates := []accounts.UserRecord{
		{UserID: "alice", Password: "pw-a"},
		{UserID: "bob", Password: "pw-b"},
	}

	t.Run("id matches case-insensitively", func(t *testing.T) {
		match, found := accounts.FindMatch(candidates, "BOB", "pw-b")
		require.True(t, found)
		assert.Equal(t, "bob", match.UserID)
	})

	t.Run("password must match exactly", func(t *testing.T) {
		_, found := accounts.FindMatch(candidates, "bob", "PW-B")
		assert.False(t, found)
	})

	t.Run("unknown id never matches", func(t *testing.T) {
		_, found := accounts.FindMatch(candidates, "ghost", "pw-a")
		assert.False(t, found)
	})

	t.Run("first matching candidate wins", func(t *testing.T) {
		dupes := []accounts.UserRecord{
			{UserID: "bob", Password: "pw", Name: "first"},
			{UserID: "BOB", Password: "pw", Name: "second"},
		}
		match, found := accounts.FindMatch(dupes, "bob", "pw")
		require.True(t, found)
		assert.Equal(t, "first", match.Name)
	})
}

func TestLookupResultOK(t *testing.T) {
	assert.True(t, accounts.LookupResult{Records: nil}.OK())
	assert.False(t, accounts.LookupResult{Err: accounts.ErrRegistryUnavailable}.OK())
}
