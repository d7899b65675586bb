package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/otp"
	"chuks-kitchen/internal/repository"
	"chuks-kitchen/internal/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 6

var (
	errEmailTaken        = apperr.Conflict("email already registered")
	errPhoneTaken        = apperr.Conflict("phone already registered")
	errIncorrectPassword = apperr.New(apperr.KindUnauthenticated, "incorrect password")
	errInvalidOTP        = apperr.InvalidInput("invalid otp")
)

type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.MessageResponse, error)
	FindUserByID(ctx context.Context, userID uint) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type authServiceImpl struct {
	db       *gorm.DB
	logger   *zap.Logger
	userRepo repository.UserRepository
	otpStore otp.Store
	hasher   security.PasswordHasher
	tokens   security.TokenIssuer
}

func NewAuthService(
	db *gorm.DB,
	logger *zap.Logger,
	userRepo repository.UserRepository,
	otpStore otp.Store,
	hasher security.PasswordHasher,
	tokens security.TokenIssuer,
) AuthService {
	return &authServiceImpl{
		db:       db,
		logger:   logger.Named("auth"),
		userRepo: userRepo,
		otpStore: otpStore,
		hasher:   hasher,
		tokens:   tokens,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, apperr.InvalidInput("email is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, apperr.Newf(apperr.KindInvalidInput, "password must be at least %d characters", minPasswordLen)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          email,
		HashedPassword: hashed,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = &phone
	}

	var code string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.userRepo.FindByEmail(ctx, tx, email)
		if err == nil {
			return errEmailTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find user: %w", err)
		}

		if user.Phone != nil {
			taken, err := s.userRepo.ExistsByPhone(ctx, tx, *user.Phone)
			if err != nil {
				return fmt.Errorf("check phone: %w", err)
			}
			if taken {
				return errPhoneTaken
			}
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return fmt.Errorf("store user: %w", err)
		}

		code, err = s.otpStore.Issue(ctx, tx, email)
		if err != nil {
			return fmt.Errorf("issue otp: %w", err)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent signup won the unique index after our checks
		return nil, s.takenError(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.Uint("user_id", user.ID), zap.String("email", email))
	s.logger.Debug("verification code issued", zap.String("email", email), zap.String("otp", code))

	return &dto.SignupResponse{
		UserID:  user.ID,
		Message: "user created successfully",
	}, nil
}

// takenError names the unique field a concurrent signup claimed. Email and
// phone are the only unique columns on users.
func (s *authServiceImpl) takenError(ctx context.Context, email string) error {
	if _, err := s.userRepo.FindByEmail(ctx, s.db, email); err == nil {
		return errEmailTaken
	}
	return errPhoneTaken
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.HashedPassword) {
		return nil, errIncorrectPassword
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		UserID:      user.ID,
	}, nil
}

func (s *authServiceImpl) Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.MessageResponse, error) {
	user, err := s.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if user.IsVerified {
		return &dto.MessageResponse{Message: "user already verified"}, nil
	}

	ok, err := s.otpStore.Verify(ctx, user.Email, strings.TrimSpace(req.OTP))
	if err != nil {
		return nil, fmt.Errorf("check otp: %w", err)
	}
	if !ok {
		return nil, errInvalidOTP
	}

	if err := s.userRepo.MarkVerified(ctx, s.db, user.ID); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	s.logger.Info("user verified", zap.Uint("user_id", user.ID))

	return &dto.MessageResponse{Message: "account verification successful"}, nil
}

func (s *authServiceImpl) FindUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, orNotFound(err, apperr.ErrUserNotFound)
	}
	return user, nil
}

func (s *authServiceImpl) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, s.db, normalizeEmail(email))
	if err != nil {
		return nil, orNotFound(err, apperr.ErrUserNotFound)
	}
	return user, nil
}
