package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusPaid      OrderStatus = "paid"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
)

type User struct {
	ID             uint    `gorm:"primaryKey"`
	Email          string  `gorm:"size:255;uniqueIndex;not null"`
	Phone          *string `gorm:"size:32;uniqueIndex"`
	HashedPassword string  `gorm:"size:255"`
	IsVerified     bool    `gorm:"not null;default:false"`
	OTP            *string `gorm:"column:otp;size:16"`
	OTPExpiresAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Food struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:128;uniqueIndex;not null"`
	Description string          `gorm:"size:512"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	IsAvailable bool            `gorm:"not null"`
	Stock       int             `gorm:"not null;default:0"` // never below zero after commit
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cart is keyed by user; the unique index on user_id is what keeps
// concurrent fetch-or-create calls from producing a second cart.
type Cart struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"uniqueIndex;not null"`
	IsActive  bool       `gorm:"not null"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"uniqueIndex:ux_cart_items_cart_food;not null"`
	FoodID    uint `gorm:"uniqueIndex:ux_cart_items_cart_food;index;not null"`
	Quantity  int  `gorm:"not null"`
	Food      Food `gorm:"foreignKey:FoodID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"index;not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"` // snapshot, never recomputed
	Status     OrderStatus     `gorm:"size:16;index;not null"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → orders.id
	OrderID uint `gorm:"index;not null"`
	// FK → foods.id
	FoodID          uint            `gorm:"index;not null"`
	Quantity        int             `gorm:"not null"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Food            Food            `gorm:"foreignKey:FoodID"`
	CreatedAt       time.Time
}

type Payment struct {
	ID             uint            `gorm:"primaryKey"`
	OrderID        uint            `gorm:"index;not null"`
	UserID         uint            `gorm:"index;not null"`
	Method         string          `gorm:"size:32;not null"`
	TransactionRef string          `gorm:"size:64;uniqueIndex;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         PaymentStatus   `gorm:"size:16;not null"`
	CreatedAt      time.Time
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Food{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Payment{},
	}
}
