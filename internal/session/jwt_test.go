package session

import (
	"encoding/base64"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	return signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
}

func rawToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".c2lnbmF0dXJl"
}

func TestIsExpiredFailsClosed(t *testing.T) {
	now := time.Now()

	tests := map[string]string{
		"empty":              "",
		"single segment":     "abc",
		"two segments":       "abc.def",
		"four segments":      "a.b.c.d",
		"payload not base64": "eyJhbGciOiJIUzI1NiJ9.!!!.sig",
		"payload not json":   rawToken("not json"),
		"missing exp":        rawToken(`{"sub":"42"}`),
		"zero exp":           rawToken(`{"exp":0}`),
		"negative exp":       rawToken(`{"exp":-5}`),
		"string exp":         rawToken(`{"exp":"tomorrow"}`),
		"null exp":           rawToken(`{"exp":null}`),
		"array payload":      rawToken(`[1,2,3]`),
		"unknown alg":        base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XX"}`)) + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":99999999999}`)) + ".sig",
		"truncated":          tokenExpiringAt(t, now.Add(time.Hour))[:20],
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, IsExpired(token, now))
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	assert.False(t, IsExpired(tokenExpiringAt(t, now.Add(10*time.Minute)), now))
	assert.True(t, IsExpired(tokenExpiringAt(t, now.Add(-time.Minute)), now))
	assert.True(t, IsExpired(tokenExpiringAt(t, now), now), "a credential is expired at its exp instant")
	assert.False(t, IsExpired(tokenExpiringAt(t, now.Add(time.Second)), now))
}

func TestIsExpiredIgnoresSignature(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	token := rawToken(`{"exp":1800000600}`)
	assert.False(t, IsExpired(token, now))
}

func TestExpiresAt(t *testing.T) {
	exp := time.Unix(1_800_000_000, 0)
	got, err := ExpiresAt(tokenExpiringAt(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	got, err = ExpiresAt(rawToken(`{"exp":1800000000.5}`))
	require.NoError(t, err)
	assert.Equal(t, exp.Add(500*time.Millisecond), got)

	got, err = ExpiresAt(rawToken(`{"exp":1e300}`))
	require.NoError(t, err)
	assert.True(t, got.After(exp))

	_, err = ExpiresAt(rawToken(`{}`))
	assert.Error(t, err)
}
