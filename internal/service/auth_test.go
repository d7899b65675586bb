package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/otp"
	"chuks-kitchen/internal/repository"
	"chuks-kitchen/internal/security"
	"chuks-kitchen/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type failingStore struct {
	otp.Store
}

func (failingStore) Issue(context.Context, *gorm.DB, string) (string, error) {
	return "", errors.New("redis down")
}

// staleUserRepo answers the pre-insert uniqueness checks as if a concurrent
// signup had not committed yet.
type staleUserRepo struct {
	repository.UserRepository
	staleEmailReads int
}

func (r *staleUserRepo) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	if r.staleEmailReads > 0 {
		r.staleEmailReads--
		return nil, gorm.ErrRecordNotFound
	}
	return r.UserRepository.FindByEmail(ctx, tx, email)
}

func (r *staleUserRepo) ExistsByPhone(context.Context, *gorm.DB, string) (bool, error) {
	return false, nil
}

func newAuth(f *fixture, userRepo repository.UserRepository, store otp.Store) AuthService {
	return NewAuthService(f.db, zap.NewNop(), userRepo, store,
		security.NewPasswordHasher(bcrypt.MinCost),
		security.NewTokenIssuer("test-secret", time.Hour))
}

func signup(t *testing.T, f *fixture, email, phone string) *model.User {
	t.Helper()

	resp, err := f.auth.Signup(t.Context(), &dto.SignupRequest{Email: email, Phone: phone, Password: "secret123"})
	require.NoError(t, err)

	user, err := f.auth.FindUserByID(t.Context(), resp.UserID)
	require.NoError(t, err)
	return user
}

func TestSignupCreatesUnverifiedUserWithOTP(t *testing.T) {
	f := newFixture(t, defaultLedger())

	user := signup(t, f, " Ada@Example.com ", "08030000000")

	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.OTP)
	assert.Len(t, *user.OTP, 6)
	assert.NotEqual(t, "secret123", user.HashedPassword)
}

func TestSignupRejections(t *testing.T) {
	f := newFixture(t, defaultLedger())
	signup(t, f, "ada@example.com", "08030000000")

	tests := []struct {
		name string
		req  dto.SignupRequest
		kind apperr.Kind
	}{
		{"email taken", dto.SignupRequest{Email: "ADA@example.com", Password: "secret123"}, apperr.KindConflict},
		{"phone taken", dto.SignupRequest{Email: "bola@example.com", Phone: "08030000000", Password: "secret123"}, apperr.KindConflict},
		{"short password", dto.SignupRequest{Email: "chidi@example.com", Password: "12345"}, apperr.KindInvalidInput},
		{"missing email", dto.SignupRequest{Password: "secret123"}, apperr.KindInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.auth.Signup(t.Context(), &tc.req)
			assert.True(t, apperr.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestSignupRollsBackWhenOTPIssueFails(t *testing.T) {
	f := newFixture(t, defaultLedger())
	req := &dto.SignupRequest{Email: "ada@example.com", Phone: "08030000000", Password: "secret123"}

	_, err := newAuth(f, repository.NewUserRepository(f.db), failingStore{}).Signup(t.Context(), req)
	require.ErrorContains(t, err, "redis down")
	assert.Zero(t, testutil.Count(t, f.db, &model.User{}))

	// the same email can sign up again once codes can be issued
	user := signup(t, f, req.Email, req.Phone)
	require.NotNil(t, user.OTP)
}

func TestSignupLosingUniqueRaceIsConflict(t *testing.T) {
	f := newFixture(t, defaultLedger())
	signup(t, f, "ada@example.com", "08030000000")
	store := otp.NewDBStore(f.db, repository.NewUserRepository(f.db), time.Minute)

	tests := []struct {
		name string
		req  dto.SignupRequest
		want error
	}{
		{"email", dto.SignupRequest{Email: "ada@example.com", Password: "secret123"}, errEmailTaken},
		{"phone", dto.SignupRequest{Email: "bola@example.com", Phone: "08030000000", Password: "secret123"}, errPhoneTaken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &staleUserRepo{UserRepository: repository.NewUserRepository(f.db), staleEmailReads: 1}

			_, err := newAuth(f, repo, store).Signup(t.Context(), &tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.EqualValues(t, 1, testutil.Count(t, f.db, &model.User{}))
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t, defaultLedger())
	user := signup(t, f, "ada@example.com", "")

	resp, err := f.auth.Login(t.Context(), &dto.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = f.auth.Login(t.Context(), &dto.LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = f.auth.Login(t.Context(), &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestVerify(t *testing.T) {
	f := newFixture(t, defaultLedger())
	ctx := t.Context()
	user := signup(t, f, "ada@example.com", "")

	_, err := f.auth.Verify(ctx, &dto.VerifyRequest{Email: "ada@example.com", OTP: "000000"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	resp, err := f.auth.Verify(ctx, &dto.VerifyRequest{Email: "ada@example.com", OTP: *user.OTP})
	require.NoError(t, err)
	assert.Equal(t, "account verification successful", resp.Message)

	verified, err := f.auth.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Nil(t, verified.OTP)

	resp, err = f.auth.Verify(ctx, &dto.VerifyRequest{Email: "ada@example.com", OTP: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "user already verified", resp.Message)

	_, err = f.auth.Verify(ctx, &dto.VerifyRequest{Email: "nobody@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}
