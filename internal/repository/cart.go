package repository

import (
	"context"
	"time"

	"chuks-kitchen/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	// GetOrCreate upserts on the unique user_id, then reads the row back.
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error)
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error)
	FindItem(ctx context.Context, tx *gorm.DB, cartID, foodID uint) (*model.CartItem, error)
	// AddItem inserts the line or adds quantity to the existing one.
	AddItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error
	SetQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error
	ListItems(ctx context.Context, tx *gorm.DB, cartID uint) ([]*model.CartItem, error)
	ClearByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error) {
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&model.Cart{UserID: userID, IsActive: true}).Error
	if err != nil {
		return nil, err
	}

	return r.FindByUser(ctx, tx, userID)
}

func (r *cartRepoImpl) FindByUser(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) FindItem(ctx context.Context, tx *gorm.DB, cartID, foodID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := tx.WithContext(ctx).
		Where("cart_id = ? AND food_id = ?", cartID, foodID).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) AddItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "food_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
			"updated_at": time.Now(),
		}),
	}).Omit(clause.Associations).Create(item).Error
}

func (r *cartRepoImpl) SetQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int) error {
	return tx.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
}

func (r *cartRepoImpl) DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error {
	return tx.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) ListItems(ctx context.Context, tx *gorm.DB, cartID uint) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := tx.WithContext(ctx).
		Preload("Food").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) ClearByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("cart_id IN (?)", tx.Model(&model.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}
