package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/config"
	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxPaymentMethodLen = 32

type PaymentService interface {
	Pay(ctx context.Context, userID, orderID uint, method string) (*dto.Receipt, error)
	GetPayment(ctx context.Context, userID uint, transactionRef string) (*dto.Payment, error)
}

type paymentServiceImpl struct {
	db          *gorm.DB
	logger      *zap.Logger
	cfg         config.Ledger
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	paymentRepo repository.PaymentRepository
	stock       *stockPolicy
	newRef      func() string
}

func NewPaymentService(
	db *gorm.DB,
	logger *zap.Logger,
	cfg config.Ledger,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	paymentRepo repository.PaymentRepository,
	inventoryRepo repository.InventoryRepository,
) PaymentService {
	s := &paymentServiceImpl{
		db:          db,
		logger:      logger.Named("payment"),
		cfg:         cfg,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		paymentRepo: paymentRepo,
		stock:       newStockPolicy(inventoryRepo),
	}
	s.newRef = s.transactionRef
	return s
}

func (s *paymentServiceImpl) transactionRef() string {
	id := strings.ToUpper(uuid.NewString())
	if s.cfg.RefPrefix == "" {
		return id
	}
	return s.cfg.RefPrefix + "-" + id
}

func normalizePaymentMethod(method string) (string, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return "", apperr.InvalidInput("payment method is required")
	}
	if len(method) > maxPaymentMethodLen {
		return "", apperr.Newf(apperr.KindInvalidInput, "payment method must be at most %d characters", maxPaymentMethodLen)
	}
	return method, nil
}

func (s *paymentServiceImpl) Pay(ctx context.Context, userID, orderID uint, method string) (*dto.Receipt, error) {
	method, err := normalizePaymentMethod(method)
	if err != nil {
		return nil, err
	}

	var (
		payment *model.Payment
		items   []*model.OrderItem
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.LockByID(ctx, tx, userID); err != nil {
			return orNotFound(err, apperr.ErrUserNotFound)
		}

		order, err := s.orderRepo.LockForUser(ctx, tx, orderID, userID)
		if err != nil {
			return orNotFound(err, apperr.ErrOrderNotFound)
		}
		switch order.Status {
		case model.OrderStatusPaid:
			return apperr.ErrAlreadyPaid
		case model.OrderStatusCancelled:
			return apperr.ErrPayNotPending
		}

		items, err = s.orderRepo.GetOrderItems(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("get order items: %w", err)
		}

		lines := make([]stockLine, len(items))
		total := decimal.Zero
		for i, item := range items {
			lines[i] = stockLine{FoodID: item.FoodID, Quantity: item.Quantity}
			total = total.Add(item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		if s.cfg.DecrementStockOnPay {
			_, err = s.stock.take(ctx, tx, lines)
		} else {
			_, err = s.stock.check(ctx, tx, lines)
		}
		if err != nil {
			return err
		}

		ref, err := s.uniqueRef(ctx, tx)
		if err != nil {
			return err
		}

		payment = &model.Payment{
			OrderID:        orderID,
			UserID:         userID,
			Method:         method,
			TransactionRef: ref,
			Amount:         total,
			Status:         model.PaymentStatusSuccess,
		}
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("store payment: %w", err)
		}

		n, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, model.OrderStatusPending, model.OrderStatusPaid)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if n != 1 {
			return apperr.ErrPayNotPending
		}

		if _, err := s.cartRepo.ClearByUser(ctx, tx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		s.logger.Debug("payment rejected",
			zap.Uint("order_id", orderID),
			zap.Uint("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("order paid",
		zap.Uint("order_id", orderID),
		zap.Uint("user_id", userID),
		zap.String("transaction_ref", payment.TransactionRef),
		zap.String("amount", payment.Amount.StringFixed(2)))

	return receipt(payment, items), nil
}

// uniqueRef draws references until one is unused; the unique index on
// transaction_ref is the final guard.
func (s *paymentServiceImpl) uniqueRef(ctx context.Context, tx *gorm.DB) (string, error) {
	for range 3 {
		ref := s.newRef()
		exists, err := s.paymentRepo.Exists(ctx, tx, ref)
		if err != nil {
			return "", fmt.Errorf("check transaction ref: %w", err)
		}
		if !exists {
			return ref, nil
		}
	}
	return "", errors.New("could not generate a unique transaction ref")
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, userID uint, transactionRef string) (*dto.Payment, error) {
	p, err := s.paymentRepo.FindByRef(ctx, transactionRef, userID)
	if err != nil {
		return nil, orNotFound(err, apperr.ErrPaymentNotFound)
	}

	return &dto.Payment{
		TransactionRef: p.TransactionRef,
		OrderID:        p.OrderID,
		Method:         p.Method,
		Amount:         p.Amount,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
	}, nil
}

func receipt(payment *model.Payment, items []*model.OrderItem) *dto.Receipt {
	r := &dto.Receipt{
		TransactionRef: payment.TransactionRef,
		OrderID:        payment.OrderID,
		PaymentMethod:  payment.Method,
		Items:          make([]dto.ReceiptLine, 0, len(items)),
		TotalPaid:      payment.Amount,
		Status:         string(model.OrderStatusPaid),
		PaymentStatus:  string(payment.Status),
		PaidAt:         payment.CreatedAt,
	}

	for _, item := range items {
		r.Items = append(r.Items, dto.ReceiptLine{
			FoodName:  item.Food.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.PriceAtPurchase,
			Subtotal:  item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return r
}
