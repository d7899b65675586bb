package service

import (
	"testing"
	"time"

	"chuks-kitchen/internal/config"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/otp"
	"chuks-kitchen/internal/repository"
	"chuks-kitchen/internal/security"
	"chuks-kitchen/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	auth     AuthService
	catalog  CatalogService
	cart     CartService
	orders   OrderService
	payments PaymentService
}

func defaultLedger() config.Ledger {
	return config.Ledger{DecrementStockOnPay: true, RefPrefix: "TXN"}
}

func newFixture(t *testing.T, ledger config.Ledger) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	foodRepo := repository.NewFoodRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	return &fixture{
		db: db,
		auth: NewAuthService(db, logger, userRepo,
			otp.NewDBStore(db, userRepo, time.Minute),
			security.NewPasswordHasher(bcrypt.MinCost),
			security.NewTokenIssuer("test-secret", time.Hour)),
		catalog:  NewCatalogService(db, logger, foodRepo, inventoryRepo),
		cart:     NewCartService(db, logger, userRepo, foodRepo, cartRepo, inventoryRepo),
		orders:   NewOrderService(db, logger, userRepo, cartRepo, orderRepo, inventoryRepo),
		payments: NewPaymentService(db, logger, ledger, userRepo, orderRepo, cartRepo, paymentRepo, inventoryRepo),
	}
}

func (f *fixture) cartItems(t *testing.T, userID uint) []model.CartItem {
	t.Helper()

	var items []model.CartItem
	require.NoError(t, f.db.
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Order("cart_items.id").
		Find(&items).Error)
	return items
}

func (f *fixture) order(t *testing.T, orderID uint) model.Order {
	t.Helper()

	var order model.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	return order
}
