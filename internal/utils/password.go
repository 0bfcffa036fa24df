package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	HashSchemeBcrypt = "bcrypt"
	// HashSchemeSHA256 is an unsalted hex digest, compatible with user rows
	// written by earlier releases. Not for new deployments.
	HashSchemeSHA256 = "sha256"
)

var ErrUnknownHashScheme = errors.New("unknown password hash scheme")

// PasswordHasher hashes new passwords with one scheme and verifies stored
// hashes of either scheme.
type PasswordHasher struct {
	scheme string
	cost   int
}

func NewPasswordHasher(scheme string) (*PasswordHasher, error) {
	switch scheme {
	case HashSchemeBcrypt, HashSchemeSHA256:
	case "":
		scheme = HashSchemeBcrypt
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHashScheme, scheme)
	}
	return &PasswordHasher{scheme: scheme, cost: bcrypt.DefaultCost}, nil
}

// NewTestPasswordHasher uses the cheapest bcrypt cost.
func NewTestPasswordHasher() *PasswordHasher {
	return &PasswordHasher{scheme: HashSchemeBcrypt, cost: bcrypt.MinCost}
}

func (h *PasswordHasher) Scheme() string {
	return h.scheme
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.scheme == HashSchemeSHA256 {
		return legacyDigest(password), nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares password against a stored hash of either scheme.
func (h *PasswordHasher) Verify(hash, password string) bool {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(hash), []byte(legacyDigest(password))) == 1
}

func legacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
