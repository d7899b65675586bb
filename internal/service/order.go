package service

import (
	"context"
	"fmt"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, userID uint) (*dto.Order, error)
	Cancel(ctx context.Context, userID, orderID uint) (*dto.Order, error)
	List(ctx context.Context, userID uint) ([]*dto.Order, error)
	Get(ctx context.Context, userID, orderID uint) (*dto.Order, error)
}

type orderServiceImpl struct {
	db        *gorm.DB
	logger    *zap.Logger
	userRepo  repository.UserRepository
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
	stock     *stockPolicy
}

func NewOrderService(
	db *gorm.DB,
	logger *zap.Logger,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
) OrderService {
	return &orderServiceImpl{
		db:        db,
		logger:    logger.Named("order"),
		userRepo:  userRepo,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		stock:     newStockPolicy(inventoryRepo),
	}
}

// lockVerifiedUser takes the user row lock that serialises order work per user.
func (s *orderServiceImpl) lockVerifiedUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	user, err := s.userRepo.LockByID(ctx, tx, userID)
	if err != nil {
		return orNotFound(err, apperr.ErrUserNotFound)
	}
	if !user.IsVerified {
		return apperr.ErrUnverified
	}
	return nil
}

func (s *orderServiceImpl) Create(ctx context.Context, userID uint) (*dto.Order, error) {
	var (
		order *model.Order
		items []*model.OrderItem
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockVerifiedUser(ctx, tx, userID); err != nil {
			return err
		}

		pending, err := s.orderRepo.HasPending(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("check pending orders: %w", err)
		}
		if pending {
			return apperr.ErrPendingOrderExists
		}

		cart, err := s.cartRepo.FindByUser(ctx, tx, userID)
		if err != nil {
			return orNotFound(err, apperr.ErrEmptyCart)
		}
		cartItems, err := s.cartRepo.ListItems(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		if len(cartItems) == 0 {
			return apperr.ErrEmptyCart
		}

		lines := make([]stockLine, len(cartItems))
		for i, ci := range cartItems {
			lines[i] = stockLine{FoodID: ci.FoodID, Quantity: ci.Quantity}
		}

		foods, err := s.stock.take(ctx, tx, lines)
		if err != nil {
			return err
		}

		total := decimal.Zero
		items = make([]*model.OrderItem, len(cartItems))
		for i, ci := range cartItems {
			food := foods[ci.FoodID]
			total = total.Add(food.Price.Mul(decimal.NewFromInt(int64(ci.Quantity))))
			items[i] = &model.OrderItem{
				FoodID:          ci.FoodID,
				Quantity:        ci.Quantity,
				PriceAtPurchase: food.Price,
				Food:            *food,
			}
		}

		order = &model.Order{
			UserID:     userID,
			TotalPrice: total,
			Status:     model.OrderStatusPending,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		for _, item := range items {
			item.OrderID = order.ID
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		return nil
	})
	if err != nil {
		s.logger.Debug("order rejected", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("total", order.TotalPrice.StringFixed(2)))

	return orderView(order, items), nil
}

func (s *orderServiceImpl) Cancel(ctx context.Context, userID, orderID uint) (*dto.Order, error) {
	var (
		order *model.Order
		items []*model.OrderItem
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockVerifiedUser(ctx, tx, userID); err != nil {
			return err
		}

		var err error
		order, err = s.orderRepo.LockByID(ctx, tx, orderID)
		if err != nil {
			return orNotFound(err, apperr.ErrOrderNotFound)
		}
		if order.UserID != userID {
			return apperr.ErrNotOrderOwner
		}
		if order.Status != model.OrderStatusPending {
			return apperr.ErrCancelNotPending
		}

		items, err = s.orderRepo.GetOrderItems(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("get order items: %w", err)
		}

		lines := make([]stockLine, len(items))
		for i, item := range items {
			lines[i] = stockLine{FoodID: item.FoodID, Quantity: item.Quantity}
		}
		if err := s.stock.restore(ctx, tx, lines); err != nil {
			return err
		}

		n, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, model.OrderStatusPending, model.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if n != 1 {
			return apperr.ErrCancelNotPending
		}
		order.Status = model.OrderStatusCancelled

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.Uint("order_id", orderID),
		zap.Uint("user_id", userID))

	return orderView(order, items), nil
}

func (s *orderServiceImpl) List(ctx context.Context, userID uint) ([]*dto.Order, error) {
	if _, err := s.userRepo.FindByID(ctx, s.db, userID); err != nil {
		return nil, orNotFound(err, apperr.ErrUserNotFound)
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]*dto.Order, len(orders))
	for i, o := range orders {
		out[i] = orderView(o, nil)
	}
	return out, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, userID, orderID uint) (*dto.Order, error) {
	order, err := s.orderRepo.FindForUser(ctx, orderID, userID)
	if err != nil {
		return nil, orNotFound(err, apperr.ErrOrderNotFound)
	}

	items := make([]*model.OrderItem, len(order.Items))
	for i := range order.Items {
		items[i] = &order.Items[i]
	}
	return orderView(order, items), nil
}

func orderView(order *model.Order, items []*model.OrderItem) *dto.Order {
	out := &dto.Order{
		ID:         order.ID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	}
	for _, item := range items {
		out.Items = append(out.Items, dto.OrderLine{
			FoodID:          item.FoodID,
			FoodName:        item.Food.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			Subtotal:        item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return out
}
