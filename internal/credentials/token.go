package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm")

// Claims is the payload of an access token. The subject is the user email.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Issuer signs and verifies access tokens with a shared HMAC secret.
type Issuer struct {
	signingKey []byte
	method     jwt.SigningMethod
	issuer     string
	defaultTTL time.Duration
	now        func() time.Time
}

type IssuerOption func(*Issuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = name
	}
}

func NewIssuer(signingKey, algorithm string, defaultTTL time.Duration, opts ...IssuerOption) (*Issuer, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
	if signingKey == "" {
		return nil, errors.New("signing key must not be empty")
	}

	i := &Issuer{
		signingKey: []byte(signingKey),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// IssueToken signs a token for subject carrying role. A non-positive ttl
// falls back to the configured default.
func (i *Issuer) IssueToken(subject, role string, ttl time.Duration) (Token, error) {
	if ttl <= 0 {
		ttl = i.defaultTTL
	}

	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return Token{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := i.now()
	expiresAt := ceilSecond(now.Add(ttl))
	token := jwt.NewWithClaims(i.method, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenUUID.String(),
			Issuer:    i.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// ceilSecond rounds t up to a whole second, the precision of the exp claim.
func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Second)
}

// VerifyToken returns the token subject. Any failure, whether malformed,
// expired or badly signed, yields ok == false.
func (i *Issuer) VerifyToken(token string) (subject string, ok bool) {
	claims, err := i.parse(token)
	if err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func (i *Issuer) parse(token string) (claims *Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, fmt.Errorf("failed to parse token: %v", r)
		}
	}()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
		// A token is still valid at its exp instant.
		jwt.WithLeeway(time.Nanosecond),
	}
	if i.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(i.issuer))
	}

	t, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return i.signingKey, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("failed to parse token claims")
	}
	return claims, nil
}
