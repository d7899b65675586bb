package service

import (
	"context"
	"errors"
	"fmt"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CartService interface {
	AddItem(ctx context.Context, userID, foodID uint, quantity int) (*dto.CartLine, error)
	RemoveItem(ctx context.Context, userID, foodID uint) error
	UpdateQuantity(ctx context.Context, userID, foodID uint, quantity int) (*dto.CartLine, error)
	Clear(ctx context.Context, userID uint) error
	View(ctx context.Context, userID uint) (*dto.CartView, error)
}

type cartServiceImpl struct {
	db       *gorm.DB
	logger   *zap.Logger
	userRepo repository.UserRepository
	foodRepo repository.FoodRepository
	cartRepo repository.CartRepository
	stock    *stockPolicy
}

func NewCartService(
	db *gorm.DB,
	logger *zap.Logger,
	userRepo repository.UserRepository,
	foodRepo repository.FoodRepository,
	cartRepo repository.CartRepository,
	inventoryRepo repository.InventoryRepository,
) CartService {
	return &cartServiceImpl{
		db:       db,
		logger:   logger.Named("cart"),
		userRepo: userRepo,
		foodRepo: foodRepo,
		cartRepo: cartRepo,
		stock:    newStockPolicy(inventoryRepo),
	}
}

func (s *cartServiceImpl) verifiedUser(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, tx, userID)
	if err != nil {
		return nil, orNotFound(err, apperr.ErrUserNotFound)
	}
	if !user.IsVerified {
		return nil, apperr.ErrUnverified
	}
	return user, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID, foodID uint, quantity int) (*dto.CartLine, error) {
	var line *dto.CartLine

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.verifiedUser(ctx, tx, userID); err != nil {
			return err
		}

		food, err := s.foodRepo.FindByID(ctx, tx, foodID)
		if err != nil {
			return orNotFound(err, apperr.ErrFoodNotFound)
		}
		if !food.IsAvailable {
			return apperr.ErrFoodUnavailable
		}
		if quantity <= 0 {
			return apperr.ErrInvalidQuantity
		}

		cart, err := s.cartRepo.GetOrCreate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}

		newQuantity := quantity
		existing, err := s.cartRepo.FindItem(ctx, tx, cart.ID, foodID)
		switch {
		case err == nil:
			newQuantity += existing.Quantity
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("find cart item: %w", err)
		}

		if err := s.stock.softCheck(food, newQuantity); err != nil {
			return err
		}

		err = s.cartRepo.AddItem(ctx, tx, &model.CartItem{
			CartID:   cart.ID,
			FoodID:   foodID,
			Quantity: quantity,
		})
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		line = cartLine(food, newQuantity)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("item added to cart",
		zap.Uint("user_id", userID),
		zap.Uint("food_id", foodID),
		zap.Int("quantity", line.Quantity))

	return line, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, foodID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			return orNotFound(err, apperr.ErrUserNotFound)
		}

		cart, err := s.cartRepo.FindByUser(ctx, tx, userID)
		if err != nil {
			return orNotFound(err, apperr.ErrCartNotFound)
		}

		item, err := s.cartRepo.FindItem(ctx, tx, cart.ID, foodID)
		if err != nil {
			return orNotFound(err, apperr.ErrCartItemNotFound)
		}

		if err := s.cartRepo.DeleteItem(ctx, tx, item.ID); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		return nil
	})
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, userID, foodID uint, quantity int) (*dto.CartLine, error) {
	if quantity <= 0 {
		return nil, apperr.ErrInvalidQuantity
	}

	var line *dto.CartLine

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindByUser(ctx, tx, userID)
		if err != nil {
			return orNotFound(err, apperr.ErrCartNotFound)
		}

		item, err := s.cartRepo.FindItem(ctx, tx, cart.ID, foodID)
		if err != nil {
			return orNotFound(err, apperr.ErrCartItemNotFound)
		}

		food, err := s.foodRepo.FindByID(ctx, tx, foodID)
		if err != nil {
			return orNotFound(err, apperr.ErrFoodNotFound)
		}
		if err := s.stock.softCheck(food, quantity); err != nil {
			return err
		}

		if err := s.cartRepo.SetQuantity(ctx, tx, item.ID, quantity); err != nil {
			return fmt.Errorf("set cart item quantity: %w", err)
		}

		line = cartLine(food, quantity)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return line, nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			return orNotFound(err, apperr.ErrUserNotFound)
		}

		if _, err := s.cartRepo.ClearByUser(ctx, tx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
}

func (s *cartServiceImpl) View(ctx context.Context, userID uint) (*dto.CartView, error) {
	if _, err := s.verifiedUser(ctx, s.db, userID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, orNotFound(err, apperr.ErrCartNotFound)
	}

	items, err := s.cartRepo.ListItems(ctx, s.db, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	view := &dto.CartView{
		CartID: cart.ID,
		Items:  make([]dto.CartLine, 0, len(items)),
		Total:  decimal.Zero,
	}
	for _, item := range items {
		l := cartLine(&item.Food, item.Quantity)
		view.Items = append(view.Items, *l)
		view.Total = view.Total.Add(l.Subtotal)
	}

	return view, nil
}

func cartLine(food *model.Food, quantity int) *dto.CartLine {
	return &dto.CartLine{
		FoodID:   food.ID,
		FoodName: food.Name,
		Price:    food.Price,
		Quantity: quantity,
		Subtotal: food.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
