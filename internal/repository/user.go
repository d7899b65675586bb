package repository

import (
	"context"
	"time"

	"chuks-kitchen/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error)
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error)
	ExistsByPhone(ctx context.Context, tx *gorm.DB, phone string) (bool, error)
	// LockByID loads the user with a row lock; order and payment flows take it
	// first to serialise per-user work.
	LockByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error)
	SetOTP(ctx context.Context, tx *gorm.DB, userID uint, otp *string, expiresAt *time.Time) error
	MarkVerified(ctx context.Context, tx *gorm.DB, userID uint) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	return tx.WithContext(ctx).Create(user).Error
}

func (r *userRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error) {
	var user model.User
	err := tx.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	var user model.User
	err := tx.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) ExistsByPhone(ctx context.Context, tx *gorm.DB, phone string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.User{}).
		Where("phone = ?", phone).
		Count(&count).Error

	return count > 0, err
}

func (r *userRepoImpl) LockByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error) {
	var user model.User
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) SetOTP(ctx context.Context, tx *gorm.DB, userID uint, otp *string, expiresAt *time.Time) error {
	result := tx.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp":            otp,
			"otp_expires_at": expiresAt,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepoImpl) MarkVerified(ctx context.Context, tx *gorm.DB, userID uint) error {
	result := tx.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_verified":    true,
			"otp":            nil,
			"otp_expires_at": nil,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
