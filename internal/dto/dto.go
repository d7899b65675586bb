package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// -------- auth --------

type SignupRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      uint   `json:"user_id"`
}

type SignupResponse struct {
	UserID  uint   `json:"user_id"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// -------- catalog --------

type CreateFoodRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsAvailable *bool           `json:"is_available"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

type Food struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
	Stock       int             `json:"stock"`
}

// -------- cart --------

type CartItemRequest struct {
	FoodID   uint `json:"food_id"`
	Quantity int  `json:"quantity"`
}

type CartLine struct {
	FoodID   uint            `json:"food_id"`
	FoodName string          `json:"food_name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	CartID uint            `json:"cart_id"`
	Items  []CartLine      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// -------- orders --------

type OrderLine struct {
	FoodID          uint            `json:"food_id"`
	FoodName        string          `json:"food_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID         uint            `json:"id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []OrderLine     `json:"items,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// -------- payments --------

type PayRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type ReceiptLine struct {
	FoodName  string          `json:"food_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Receipt struct {
	TransactionRef string          `json:"transaction_ref"`
	OrderID        uint            `json:"order_id"`
	PaymentMethod  string          `json:"payment_method"`
	Items          []ReceiptLine   `json:"items"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	// Status is the order's status; PaymentStatus is the ledger row's.
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	PaidAt        time.Time `json:"paid_at"`
}

type Payment struct {
	TransactionRef string          `json:"transaction_ref"`
	OrderID        uint            `json:"order_id"`
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
