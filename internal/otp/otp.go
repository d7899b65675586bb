// Package otp issues and checks the one-time codes used for account
// verification.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// Store issues codes inside the caller's transaction so a failed issue rolls
// back the signup that asked for it.
type Store interface {
	Issue(ctx context.Context, tx *gorm.DB, email string) (string, error)
	Verify(ctx context.Context, email, code string) (bool, error)
}

// NewCode returns a random six-digit code.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type clock func() time.Time
