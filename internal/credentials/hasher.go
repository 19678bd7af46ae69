package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeArgon2id = "argon2id"
	SchemeBcrypt   = "bcrypt"
)

var (
	ErrEmptyPassword     = errors.New("password must not be empty")
	ErrUnknownHashScheme = errors.New("unknown password hash scheme")
)

// Hasher produces salted one-way password hashes. New hashes use the
// configured scheme; verification accepts any supported scheme.
type Hasher struct {
	scheme     string
	bcryptCost int
	params     *argon2id.Params
}

type HasherOption func(*Hasher)

func WithBcryptCost(cost int) HasherOption {
	return func(h *Hasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.bcryptCost = cost
		}
	}
}

func WithArgon2idParams(params *argon2id.Params) HasherOption {
	return func(h *Hasher) {
		if params != nil {
			h.params = params
		}
	}
}

func NewHasher(scheme string, opts ...HasherOption) (*Hasher, error) {
	if scheme != SchemeArgon2id && scheme != SchemeBcrypt {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHashScheme, scheme)
	}

	h := &Hasher{
		scheme:     scheme,
		bcryptCost: bcrypt.DefaultCost,
		params:     argon2id.DefaultParams,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	switch h.scheme {
	case SchemeBcrypt:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(hash), nil
	default:
		hash, err := argon2id.CreateHash(password, h.params)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return hash, nil
	}
}

// Verify reports whether password matches hash. A mismatch is not an error;
// an error means the hash itself could not be decoded.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		match, err := argon2id.ComparePasswordAndHash(password, hash)
		if err != nil {
			return false, fmt.Errorf("failed to compare password: %w", err)
		}
		return match, nil
	case isBcryptHash(hash):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return false, nil
			}
			return false, fmt.Errorf("failed to compare password: %w", err)
		}
		return true, nil
	default:
		return false, ErrUnknownHashScheme
	}
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
