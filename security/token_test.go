package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0, "campus-test")
	assert.Equal(t, 90*24*time.Hour, issuer.TTL())

	snapshot := ProfileSnapshot{
		Name:      "Ana",
		Email:     "ana@x.com",
		Username:  "ana",
		Course:    strPtr("Direito"),
		AvatarURL: strPtr("/uploads/avatars/a.png"),
	}
	token, err := issuer.Issue(42, snapshot)
	require.NoError(t, err)

	identity, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), identity.ID)
	assert.Equal(t, snapshot, identity.Snapshot)
	assert.Nil(t, identity.Snapshot.Bio)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, "")
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issuedAt }

	token, err := issuer.Issue(1, ProfileSnapshot{Username: "ana"})
	require.NoError(t, err)

	issuer.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	issuer.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenRejectsTamperingAndForeignKeys(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, "")
	token, err := issuer.Issue(7, ProfileSnapshot{Username: "b"})
	require.NoError(t, err)

	other := NewTokenIssuer("another-secret", time.Hour, "")
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsNoneAlgorithmAndMissingID(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, "")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  1,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(noID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
