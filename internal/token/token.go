// Package token signs and verifies the compact HS256 tokens used for access
// and refresh credentials. It knows nothing about identities beyond the
// {id, role} payload.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSigning          = errors.New("token signing failed")
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")

	// ErrAuthentication is the only failure callers should branch on. The
	// specific reason stays available through errors.Is for diagnostics.
	ErrAuthentication = errors.New("token rejected")
)

type Payload struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type claims struct {
	Payload
	jwt.RegisteredClaims
}

type AuthenticationError struct {
	Reason error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrAuthentication, e.Reason)
}

func (e *AuthenticationError) Unwrap() []error {
	return []error{ErrAuthentication, e.Reason}
}

type Codec struct {
	now func() time.Time
}

func NewCodec() *Codec {
	return &Codec{now: time.Now}
}

// WithClock returns a copy of the codec that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{now: now}
}

// Issue signs payload with an expiry of now+ttl. The same payload, secret and
// clock reading always produce the same token.
func (c *Codec) Issue(payload Payload, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: empty secret", ErrSigning)
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return signed, expiresAt, nil
}

func (c *Codec) Verify(tokenString string, secret []byte) (Payload, error) {
	if len(secret) == 0 {
		return Payload{}, &AuthenticationError{Reason: ErrInvalidSignature}
	}

	parsed := &claims{}
	_, err := jwt.ParseWithClaims(tokenString, parsed, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Payload{}, &AuthenticationError{Reason: classify(err)}
	}

	if parsed.Payload.ID == "" {
		return Payload{}, &AuthenticationError{Reason: ErrMalformed}
	}

	return parsed.Payload, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformed
	}
}
