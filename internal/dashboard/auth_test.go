// ABOUTME: Session token issue/validate round-trip and expiry tests.
package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("s3cret")})

	token, expiresIn, err := issuer.IssueToken("r-1")
	require.NoError(t, err)
	assert.Equal(t, int64(defaultTokenTTL.Seconds()), expiresIn)

	subject, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "r-1", subject)
}

func TestTokenExpires(t *testing.T) {
	now := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("s3cret"),
		TokenTTL:      time.Hour,
		Clock:         func() time.Time { return now },
	})

	token, _, err := issuer.IssueToken("r-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = issuer.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("s3cret")})
	other := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("different")})

	token, _, err := issuer.IssueToken("r-1")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestIssueTokenRequiresSubject(t *testing.T) {
	issuer := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("s3cret")})
	_, _, err := issuer.IssueToken("")
	assert.Error(t, err)
}
