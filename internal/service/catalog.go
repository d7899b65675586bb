package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errFoodNameTaken = apperr.Conflict("food with this name already exists")

type CatalogService interface {
	CreateFood(ctx context.Context, req *dto.CreateFoodRequest) (*dto.Food, error)
	ListFoods(ctx context.Context, onlyAvailable bool) ([]*dto.Food, error)
	GetFood(ctx context.Context, foodID uint) (*dto.Food, error)
	AdjustStock(ctx context.Context, foodID uint, delta int) (*dto.Food, error)
	Seed(ctx context.Context) error
}

type catalogServiceImpl struct {
	db       *gorm.DB
	logger   *zap.Logger
	foodRepo repository.FoodRepository
	stock    *stockPolicy
}

func NewCatalogService(
	db *gorm.DB,
	logger *zap.Logger,
	foodRepo repository.FoodRepository,
	inventoryRepo repository.InventoryRepository,
) CatalogService {
	return &catalogServiceImpl{
		db:       db,
		logger:   logger.Named("catalog"),
		foodRepo: foodRepo,
		stock:    newStockPolicy(inventoryRepo),
	}
}

func (s *catalogServiceImpl) CreateFood(ctx context.Context, req *dto.CreateFoodRequest) (*dto.Food, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.InvalidInput("name is required")
	}
	if req.Price.IsNegative() {
		return nil, apperr.InvalidInput("price must not be negative")
	}
	if req.Stock < 0 {
		return nil, apperr.InvalidInput("stock must not be negative")
	}

	food := &model.Food{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		IsAvailable: true,
		Stock:       req.Stock,
	}
	if req.IsAvailable != nil {
		food.IsAvailable = *req.IsAvailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.foodRepo.ExistsByName(ctx, tx, name)
		if err != nil {
			return fmt.Errorf("check food name: %w", err)
		}
		if exists {
			return errFoodNameTaken
		}

		if err := s.foodRepo.Create(ctx, tx, food); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errFoodNameTaken
			}
			return fmt.Errorf("store food: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("food created", zap.Uint("food_id", food.ID), zap.String("name", food.Name))

	return foodView(food), nil
}

func (s *catalogServiceImpl) ListFoods(ctx context.Context, onlyAvailable bool) ([]*dto.Food, error) {
	foods, err := s.foodRepo.List(ctx, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}

	out := make([]*dto.Food, len(foods))
	for i, f := range foods {
		out[i] = foodView(f)
	}
	return out, nil
}

func (s *catalogServiceImpl) GetFood(ctx context.Context, foodID uint) (*dto.Food, error) {
	food, err := s.foodRepo.FindByID(ctx, s.db, foodID)
	if err != nil {
		return nil, orNotFound(err, apperr.ErrFoodNotFound)
	}
	return foodView(food), nil
}

func (s *catalogServiceImpl) AdjustStock(ctx context.Context, foodID uint, delta int) (*dto.Food, error) {
	if delta == 0 {
		return nil, apperr.InvalidInput("delta must not be zero")
	}

	var food *model.Food
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.stock.adjust(ctx, tx, foodID, delta); err != nil {
			return err
		}

		var err error
		food, err = s.foodRepo.FindByID(ctx, tx, foodID)
		if err != nil {
			return fmt.Errorf("reload food: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.Uint("food_id", foodID),
		zap.Int("delta", delta),
		zap.Int("stock", food.Stock))

	return foodView(food), nil
}

func (s *catalogServiceImpl) Seed(ctx context.Context) error {
	if err := s.foodRepo.Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func foodView(f *model.Food) *dto.Food {
	return &dto.Food{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		IsAvailable: f.IsAvailable,
		Stock:       f.Stock,
	}
}
