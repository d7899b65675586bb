package otp

import (
	"context"
	"fmt"
	"time"

	"chuks-kitchen/internal/repository"

	"gorm.io/gorm"
)

// dbStore keeps the pending code on the user row. The code is cleared when
// the user is marked verified.
type dbStore struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	ttl      time.Duration
	now      clock
}

func NewDBStore(db *gorm.DB, userRepo repository.UserRepository, ttl time.Duration) Store {
	return &dbStore{
		db:       db,
		userRepo: userRepo,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *dbStore) Issue(ctx context.Context, tx *gorm.DB, email string) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, tx, email)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	expiresAt := s.now().Add(s.ttl)
	if err := s.userRepo.SetOTP(ctx, tx, user.ID, &code, &expiresAt); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	return code, nil
}

func (s *dbStore) Verify(ctx context.Context, email, code string) (bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return false, fmt.Errorf("find user: %w", err)
	}

	if user.OTP == nil {
		return false, nil
	}
	if user.OTPExpiresAt != nil && s.now().After(*user.OTPExpiresAt) {
		return false, nil
	}

	return codesEqual(*user.OTP, code), nil
}
