package gate

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrTokenMismatch is returned when a presented token does not match the
// configured one.
var ErrTokenMismatch = errors.New("token does not match configured server token")

// StaticValidator compares tokens against a single pre-shared secret in
// constant time.
type StaticValidator struct {
	expected string
}

// NewStaticValidator builds a validator for the pre-shared token.
func NewStaticValidator(token string) *StaticValidator {
	return &StaticValidator{expected: token}
}

func (v *StaticValidator) Validate(_ context.Context, token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.expected)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}
