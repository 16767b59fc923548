package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueAndValidate(t *testing.T) {
	issuer, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue("u1", "0xabc")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "0xabc", claims.Address)
}

func TestIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Hour)
	other, _ := NewIssuer("other-secret", time.Hour)

	foreign, _, err := other.Issue("u1", "0xabc")
	require.NoError(t, err)
	_, err = issuer.Validate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := issuer.Issue("u1", "0xabc")
	require.NoError(t, err)
	_, err = issuer.Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherTokenTypes(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Hour)
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"type": "access",
	})
	signed, err := access.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
