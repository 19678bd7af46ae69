package credentials

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestIssuer(t *testing.T, clock *fakeClock) *Issuer {
	t.Helper()
	issuer, err := NewIssuer("test-secret", "HS256", 30*time.Minute,
		WithClock(clock.Now), WithIssuerName("taskmaster"))
	require.NoError(t, err)
	return issuer
}

func TestIssuer_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(t, clock)

	token, err := issuer.IssueToken("a@x.com", "user", 0)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(30*time.Minute), token.ExpiresAt)

	subject, ok := issuer.VerifyToken(token.Value)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", subject)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token.Value, claims)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "taskmaster", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssuer_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 10 * time.Minute

	tests := []struct {
		name   string
		at     time.Time
		wantOK bool
	}{
		{name: "just issued", at: issuedAt, wantOK: true},
		{name: "half way", at: issuedAt.Add(ttl / 2), wantOK: true},
		{name: "one second before expiry", at: issuedAt.Add(ttl - time.Second), wantOK: true},
		{name: "exactly at expiry", at: issuedAt.Add(ttl), wantOK: true},
		{name: "just after expiry", at: issuedAt.Add(ttl + time.Nanosecond), wantOK: false},
		{name: "one second after expiry", at: issuedAt.Add(ttl + time.Second), wantOK: false},
		{name: "long after expiry", at: issuedAt.Add(24 * time.Hour), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: issuedAt}
			issuer := newTestIssuer(t, clock)

			token, err := issuer.IssueToken("a@x.com", "user", ttl)
			require.NoError(t, err)

			clock.now = tt.at
			_, ok := issuer.VerifyToken(token.Value)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIssuer_FractionalIssueTime(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 700_000_000, time.UTC)
	ttl := 10 * time.Minute
	clock := &fakeClock{now: issuedAt}
	issuer := newTestIssuer(t, clock)

	token, err := issuer.IssueToken("a@x.com", "user", ttl)
	require.NoError(t, err)
	wantExp := time.Date(2026, 3, 1, 12, 10, 1, 0, time.UTC)
	assert.Equal(t, wantExp, token.ExpiresAt)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token.Value, claims)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(token.ExpiresAt))

	for _, at := range []time.Time{
		issuedAt.Add(ttl - 500*time.Millisecond),
		issuedAt.Add(ttl),
		wantExp,
	} {
		clock.now = at
		_, ok := issuer.VerifyToken(token.Value)
		assert.True(t, ok, "at %s", at)
	}

	clock.now = wantExp.Add(time.Nanosecond)
	_, ok := issuer.VerifyToken(token.Value)
	assert.False(t, ok)
}

func TestIssuer_RejectsInvalidTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestIssuer(t, clock)

	token, err := issuer.IssueToken("a@x.com", "user", time.Minute)
	require.NoError(t, err)

	other, err := NewIssuer("another-secret", "HS256", time.Minute,
		WithClock(clock.Now), WithIssuerName("taskmaster"))
	require.NoError(t, err)
	foreign, err := other.IssueToken("a@x.com", "admin", time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token.Value, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA"

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			Issuer:    "taskmaster",
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, value := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   foreign.Value,
		"bad signature":  tampered,
		"none algorithm": none,
	} {
		t.Run(name, func(t *testing.T) {
			subject, ok := issuer.VerifyToken(value)
			assert.False(t, ok)
			assert.Empty(t, subject)
		})
	}
}

func TestNewIssuer_RejectsUnsupportedAlgorithm(t *testing.T) {
	_, err := NewIssuer("secret", "RS256", time.Minute)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = NewIssuer("secret", "bogus", time.Minute)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
