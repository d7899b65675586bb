package repository

import (
	"context"
	"time"

	"chuks-kitchen/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository owns every write to foods.stock. All methods run on the
// caller's transaction.
type InventoryRepository interface {
	// LockFoods loads the given foods with a row lock, in ascending id order
	// so that concurrent transactions acquire locks in the same sequence.
	LockFoods(ctx context.Context, tx *gorm.DB, foodIDs []uint) ([]*model.Food, error)
	// Take decrements stock only if enough is left; ok is false otherwise.
	Take(ctx context.Context, tx *gorm.DB, foodID uint, quantity int) (ok bool, err error)
	Restore(ctx context.Context, tx *gorm.DB, foodID uint, quantity int) error
}

type inventoryRepoImpl struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepoImpl{
		db: db,
	}
}

func (r *inventoryRepoImpl) LockFoods(ctx context.Context, tx *gorm.DB, foodIDs []uint) ([]*model.Food, error) {
	var foods []*model.Food
	if len(foodIDs) == 0 {
		return foods, nil
	}

	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", foodIDs).
		Order("id").
		Find(&foods).Error
	if err != nil {
		return nil, err
	}

	return foods, nil
}

func (r *inventoryRepoImpl) Take(ctx context.Context, tx *gorm.DB, foodID uint, quantity int) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Food{}).
		Where("id = ? AND stock >= ?", foodID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *inventoryRepoImpl) Restore(ctx context.Context, tx *gorm.DB, foodID uint, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.Food{}).
		Where("id = ?", foodID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
