package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSigner_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	signer := NewStateSigner("secret", 10*time.Minute, ClockFunc(func() time.Time { return now }))

	token, err := signer.Sign("user-1", "Minha Loja")
	require.NoError(t, err)

	state, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, "Minha Loja", state.StoreName)
	assert.Equal(t, now.Add(10*time.Minute).Unix(), state.ExpiresAt)
}

func TestStateSigner_RejectsTampering(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute, nil)
	token, err := signer.Sign("user-1", "Loja")
	require.NoError(t, err)

	payload, signature, _ := strings.Cut(token, ".")

	t.Run("signature from another secret", func(t *testing.T) {
		other := NewStateSigner("other-secret", time.Minute, nil)
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidOAuthState)
	})

	t.Run("payload swapped", func(t *testing.T) {
		forged, err := signer.Sign("user-2", "Loja")
		require.NoError(t, err)
		forgedPayload, _, _ := strings.Cut(forged, ".")

		_, err = signer.Verify(forgedPayload + "." + signature)
		assert.ErrorIs(t, err, ErrInvalidOAuthState)
	})

	t.Run("malformed tokens", func(t *testing.T) {
		for _, token := range []string{"", "abc", payload + ".", "." + signature, payload + ".%%%"} {
			_, err := signer.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidOAuthState, token)
		}
	})
}

func TestStateSigner_Expiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := ClockFunc(func() time.Time { return now })
	signer := NewStateSigner("secret", 15*time.Minute, clock)

	token, err := signer.Sign("user-1", "Loja")
	require.NoError(t, err)

	later := NewStateSigner("secret", 15*time.Minute, ClockFunc(func() time.Time { return now.Add(16 * time.Minute) }))
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	justInTime := NewStateSigner("secret", 15*time.Minute, ClockFunc(func() time.Time { return now.Add(15 * time.Minute) }))
	_, err = justInTime.Verify(token)
	assert.NoError(t, err)
}

func TestStateSigner_RequiresUser(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute, nil)
	token, err := signer.Sign("", "Loja")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
}
