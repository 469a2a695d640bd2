package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789abcdef"

func tokenExpiry(t *testing.T, token string) time.Time {
	t.Helper()

	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	return claims.ExpiresAt.Time
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Millisecond)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyInvalid(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	testCases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", func() string {
			other := NewTokenIssuer("another-secret-entirely", time.Hour)
			token, _ := other.Issue(uuid.New())
			return token
		}()},
		{"non-uuid subject", func() string {
			claims := jwt.RegisteredClaims{
				Subject:   "alice",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}
			token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			return token
		}()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := issuer.Verify(tc.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestRefresh(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // exp has second precision

	refreshed, err := issuer.Refresh(token)
	require.NoError(t, err)

	got, err := issuer.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	assert.True(t, tokenExpiry(t, refreshed).After(tokenExpiry(t, token)))
}

func TestRefreshExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Millisecond)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = issuer.Refresh(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDefaultTTL(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 0)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	expiry := tokenExpiry(t, token)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), expiry, time.Minute)
}
