package repository

import (
	"context"
	"time"

	"chuks-kitchen/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	// LockByID loads an order with a row lock, whoever owns it.
	LockByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	// LockForUser loads an order only if it belongs to userID.
	LockForUser(ctx context.Context, tx *gorm.DB, orderID, userID uint) (*model.Order, error)
	HasPending(ctx context.Context, tx *gorm.DB, userID uint) (bool, error)
	GetOrderItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error)
	// UpdateStatus moves an order from one status to another and returns the
	// affected row count; 0 means the order was no longer in status from.
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, to model.OrderStatus) (int64, error)
	FindForUser(ctx context.Context, orderID, userID uint) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *orderRepoImpl) LockByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) LockForUser(ctx context.Context, tx *gorm.DB, orderID, userID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) HasPending(ctx context.Context, tx *gorm.DB, userID uint) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Where("status = ?", model.OrderStatusPending).
		Count(&count).Error

	return count > 0, err
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := tx.WithContext(ctx).
		Preload("Food").
		Where("order_id = ?", orderID).
		Order("id").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, to model.OrderStatus) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) FindForUser(ctx context.Context, orderID, userID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Food").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}
