package repository

import (
	"context"

	"chuks-kitchen/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FoodRepository interface {
	Seed(ctx context.Context) error
	Create(ctx context.Context, tx *gorm.DB, food *model.Food) error
	FindByID(ctx context.Context, tx *gorm.DB, foodID uint) (*model.Food, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string) (bool, error)
	List(ctx context.Context, onlyAvailable bool) ([]*model.Food, error)
}

type foodRepoImpl struct {
	db *gorm.DB
}

func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &foodRepoImpl{
		db: db,
	}
}

func (r *foodRepoImpl) Seed(ctx context.Context) error {
	foods := []model.Food{
		{Name: "Jollof Rice", Description: "Smoky party jollof with chicken", Price: decimal.RequireFromString("2500"), IsAvailable: true, Stock: 40},
		{Name: "Fried Plantain", Description: "Sweet dodo, side portion", Price: decimal.RequireFromString("800"), IsAvailable: true, Stock: 60},
		{Name: "Egusi Soup", Description: "Egusi with pounded yam", Price: decimal.RequireFromString("3200"), IsAvailable: true, Stock: 25},
		{Name: "Zobo", Description: "Chilled hibiscus drink", Price: decimal.RequireFromString("500"), IsAvailable: true, Stock: 100},
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&foods).Error
}

func (r *foodRepoImpl) Create(ctx context.Context, tx *gorm.DB, food *model.Food) error {
	return tx.WithContext(ctx).Create(food).Error
}

func (r *foodRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, foodID uint) (*model.Food, error) {
	var food model.Food
	err := tx.WithContext(ctx).
		Where("id = ?", foodID).
		First(&food).Error

	if err != nil {
		return nil, err
	}

	return &food, nil
}

func (r *foodRepoImpl) ExistsByName(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Food{}).
		Where("name = ?", name).
		Count(&count).Error

	return count > 0, err
}

func (r *foodRepoImpl) List(ctx context.Context, onlyAvailable bool) ([]*model.Food, error) {
	var foods []*model.Food
	q := r.db.WithContext(ctx).Order("id")
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}

	if err := q.Find(&foods).Error; err != nil {
		return nil, err
	}

	return foods, nil
}
