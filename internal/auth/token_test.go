package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager_Roundtrip(t *testing.T) {
	t.Parallel()
	m := NewTokenManager("test-secret", time.Hour)

	raw, err := m.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	userID, err := m.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()
	raw, err := NewTokenManager("secret-a", time.Hour).Issue(42)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(raw)
	require.Error(t, err)
}

func TestTokenManager_Garbage(t *testing.T) {
	t.Parallel()
	m := NewTokenManager("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(raw)
		require.Error(t, err, "token %q should not verify", raw)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()
	m := NewTokenManager("test-secret", time.Millisecond)

	raw, err := m.Issue(42)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.Verify(raw)
	require.Error(t, err)
}
