package service

import (
	"strings"
	"testing"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/config"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeOrder puts quantity of food in the user's cart and orders it.
func placeOrder(t *testing.T, f *fixture, user *model.User, food *model.Food, quantity int) uint {
	t.Helper()

	_, err := f.cart.AddItem(t.Context(), user.ID, food.ID, quantity)
	require.NoError(t, err)
	order, err := f.orders.Create(t.Context(), user.ID)
	require.NoError(t, err)
	return order.ID
}

func TestPaySettlesOrder(t *testing.T) {
	f := newFixture(t, defaultLedger())
	ctx := t.Context()
	user := testutil.CreateUser(t, f.db, "ada@example.com", true)
	rice := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 5)
	zobo := testutil.CreateFood(t, f.db, "Zobo", 3, 10)

	_, err := f.cart.AddItem(ctx, user.ID, rice.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, user.ID, zobo.ID, 1)
	require.NoError(t, err)
	order, err := f.orders.Create(ctx, user.ID)
	require.NoError(t, err)

	// later catalog price changes do not reach the receipt
	require.NoError(t, f.db.Model(rice).Update("price", decimal.NewFromInt(50)).Error)

	receipt, err := f.payments.Pay(ctx, user.ID, order.ID, " Card ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(receipt.TransactionRef, "TXN-"), receipt.TransactionRef)
	assert.Equal(t, order.ID, receipt.OrderID)
	assert.Equal(t, "card", receipt.PaymentMethod)
	assert.Equal(t, string(model.OrderStatusPaid), receipt.Status)
	assert.Equal(t, string(model.PaymentStatusSuccess), receipt.PaymentStatus)
	assert.True(t, decimal.NewFromInt(23).Equal(receipt.TotalPaid), "got %s", receipt.TotalPaid)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Jollof Rice", receipt.Items[0].FoodName)
	assert.True(t, decimal.NewFromInt(10).Equal(receipt.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(receipt.Items[0].Subtotal))

	assert.Equal(t, model.OrderStatusPaid, f.order(t, order.ID).Status)
	assert.Empty(t, f.cartItems(t, user.ID))

	var payment model.Payment
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.Equal(t, receipt.TransactionRef, payment.TransactionRef)
	assert.Equal(t, model.PaymentStatusSuccess, payment.Status)
	assert.True(t, receipt.TotalPaid.Equal(payment.Amount))
}

func TestPayStockModes(t *testing.T) {
	tests := []struct {
		name      string
		decrement bool
		want      int
	}{
		{"decrement again on pay", true, 1},
		{"validate only on pay", false, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, config.Ledger{DecrementStockOnPay: tc.decrement, RefPrefix: "TXN"})
			user := testutil.CreateUser(t, f.db, "ada@example.com", true)
			food := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 5)

			orderID := placeOrder(t, f, user, food, 2)
			require.Equal(t, 3, testutil.Stock(t, f.db, food.ID))

			_, err := f.payments.Pay(t.Context(), user.ID, orderID, "card")
			require.NoError(t, err)
			assert.Equal(t, tc.want, testutil.Stock(t, f.db, food.ID))
		})
	}
}

func TestPayRejectsWhenStockDropped(t *testing.T) {
	f := newFixture(t, defaultLedger())
	ctx := t.Context()
	user := testutil.CreateUser(t, f.db, "ada@example.com", true)
	food := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 5)

	orderID := placeOrder(t, f, user, food, 2)
	_, err := f.catalog.AdjustStock(ctx, food.ID, -2)
	require.NoError(t, err)
	require.Equal(t, 1, testutil.Stock(t, f.db, food.ID))

	_, err = f.payments.Pay(ctx, user.ID, orderID, "card")
	require.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
	assert.ErrorContains(t, err, "Jollof Rice")

	assert.Equal(t, model.OrderStatusPending, f.order(t, orderID).Status)
	assert.Zero(t, testutil.Count(t, f.db, &model.Payment{}))
	assert.Equal(t, 1, testutil.Stock(t, f.db, food.ID))
	assert.Len(t, f.cartItems(t, user.ID), 1, "cart is only cleared by a successful payment")
}

func TestPayRejections(t *testing.T) {
	f := newFixture(t, defaultLedger())
	ctx := t.Context()
	owner := testutil.CreateUser(t, f.db, "ada@example.com", true)
	stranger := testutil.CreateUser(t, f.db, "bola@example.com", true)
	food := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 20)

	orderID := placeOrder(t, f, owner, food, 1)

	_, err := f.payments.Pay(ctx, owner.ID, orderID, "  ")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	_, err = f.payments.Pay(ctx, owner.ID, orderID, strings.Repeat("x", 33))
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = f.payments.Pay(ctx, 999, orderID, "card")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	_, err = f.payments.Pay(ctx, owner.ID, 999, "card")
	assert.ErrorIs(t, err, apperr.ErrOrderNotFound)
	_, err = f.payments.Pay(ctx, stranger.ID, orderID, "card")
	assert.ErrorIs(t, err, apperr.ErrOrderNotFound, "other users' orders are hidden")

	_, err = f.payments.Pay(ctx, owner.ID, orderID, "card")
	require.NoError(t, err)
	_, err = f.payments.Pay(ctx, owner.ID, orderID, "card")
	assert.ErrorIs(t, err, apperr.ErrAlreadyPaid)
	assert.EqualValues(t, 1, testutil.Count(t, f.db, &model.Payment{}))

	cancelled := placeOrder(t, f, owner, food, 1)
	_, err = f.orders.Cancel(ctx, owner.ID, cancelled)
	require.NoError(t, err)
	_, err = f.payments.Pay(ctx, owner.ID, cancelled, "card")
	assert.ErrorIs(t, err, apperr.ErrPayNotPending)
}

func TestPayDoesNotRequireVerification(t *testing.T) {
	f := newFixture(t, defaultLedger())
	user := testutil.CreateUser(t, f.db, "ada@example.com", true)
	food := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 5)

	orderID := placeOrder(t, f, user, food, 1)
	require.NoError(t, f.db.Model(user).Update("is_verified", false).Error)

	_, err := f.payments.Pay(t.Context(), user.ID, orderID, "transfer")
	assert.NoError(t, err)
}

func TestPayTransactionRefsAreUnique(t *testing.T) {
	f := newFixture(t, defaultLedger())
	food := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 100)

	refs := map[string]bool{}
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := testutil.CreateUser(t, f.db, email, true)
		orderID := placeOrder(t, f, user, food, 1)

		receipt, err := f.payments.Pay(t.Context(), user.ID, orderID, "card")
		require.NoError(t, err)
		assert.False(t, refs[receipt.TransactionRef])
		refs[receipt.TransactionRef] = true
	}
}

func TestPayRetriesCollidingRef(t *testing.T) {
	f := newFixture(t, defaultLedger())
	user := testutil.CreateUser(t, f.db, "ada@example.com", true)
	food := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 10)

	first := placeOrder(t, f, user, food, 1)
	receipt, err := f.payments.Pay(t.Context(), user.ID, first, "card")
	require.NoError(t, err)

	refs := []string{receipt.TransactionRef, "TXN-FRESH"}
	f.payments.(*paymentServiceImpl).newRef = func() string {
		ref := refs[0]
		refs = refs[1:]
		return ref
	}

	second := placeOrder(t, f, user, food, 1)
	again, err := f.payments.Pay(t.Context(), user.ID, second, "card")
	require.NoError(t, err)
	assert.Equal(t, "TXN-FRESH", again.TransactionRef)
}

func TestGetPayment(t *testing.T) {
	f := newFixture(t, defaultLedger())
	ctx := t.Context()
	user := testutil.CreateUser(t, f.db, "ada@example.com", true)
	stranger := testutil.CreateUser(t, f.db, "bola@example.com", true)
	food := testutil.CreateFood(t, f.db, "Jollof Rice", 10, 5)

	orderID := placeOrder(t, f, user, food, 2)
	receipt, err := f.payments.Pay(ctx, user.ID, orderID, "card")
	require.NoError(t, err)

	got, err := f.payments.GetPayment(ctx, user.ID, receipt.TransactionRef)
	require.NoError(t, err)
	assert.Equal(t, orderID, got.OrderID)
	assert.True(t, decimal.NewFromInt(20).Equal(got.Amount))

	_, err = f.payments.GetPayment(ctx, stranger.ID, receipt.TransactionRef)
	assert.ErrorIs(t, err, apperr.ErrPaymentNotFound)
}
