package repository

import (
	"context"

	"chuks-kitchen/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	Exists(ctx context.Context, tx *gorm.DB, transactionRef string) (bool, error)
	FindByRef(ctx context.Context, transactionRef string, userID uint) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID uint) ([]*model.Payment, error)
}

type paymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepositoryImpl{
		db: db,
	}
}

func (r *paymentRepositoryImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepositoryImpl) Exists(ctx context.Context, tx *gorm.DB, transactionRef string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("transaction_ref = ?", transactionRef).
		Count(&count).Error

	return count > 0, err
}

func (r *paymentRepositoryImpl) FindByRef(ctx context.Context, transactionRef string, userID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("transaction_ref = ? AND user_id = ?", transactionRef, userID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepositoryImpl) ListByOrder(ctx context.Context, orderID uint) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}
