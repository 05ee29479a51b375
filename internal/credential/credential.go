// Package credential hashes and checks account passwords with bcrypt.
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type Verifier struct {
	cost int
}

func NewVerifier(cost int) *Verifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Verifier{cost: cost}
}

// Verify reports whether plaintext matches storedHash. A corrupt hash is
// treated as a mismatch.
func (v *Verifier) Verify(plaintext string, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}

func (v *Verifier) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", err
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
