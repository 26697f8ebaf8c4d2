// Package passhash hashes and verifies group passwords with bcrypt.
package passhash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// MaxBytes is the longest password bcrypt accepts.
const MaxBytes = 72

// ErrTooLong is returned by Hash for passwords over MaxBytes.
var ErrTooLong = errors.New("password is longer than 72 bytes")

// Bcrypt is a salted one-way hasher. The zero value is not usable; call New.
type Bcrypt struct {
	cost int
}

// New returns a hasher with the given cost. A cost of 0 selects DefaultCost.
func New(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash returns the bcrypt hash of plain.
func (b *Bcrypt) Hash(plain string) (string, error) {
	if len(plain) > MaxBytes {
		return "", ErrTooLong
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrTooLong
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches hash. A mismatch is (false, nil);
// a malformed hash is an error.
func (b *Bcrypt) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
