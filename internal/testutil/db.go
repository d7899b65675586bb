// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"chuks-kitchen/internal/client"
	"chuks-kitchen/internal/config"
	"chuks-kitchen/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in the test's temp dir. Write
// transactions start with BEGIN IMMEDIATE so they serialise the way row
// locks do on a server database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "kitchen.db") + "?_txlock=immediate&_busy_timeout=10000&_foreign_keys=1"
	db, err := client.InitDBClient(config.Database{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxIdleConns: 4,
		MaxOpenConns: 8,
		LogLevel:     "silent",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string, verified bool) *model.User {
	t.Helper()

	user := &model.User{Email: email, HashedPassword: "x", IsVerified: verified}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateFood(t *testing.T, db *gorm.DB, name string, price int64, stock int) *model.Food {
	t.Helper()

	food := &model.Food{Name: name, Price: decimal.NewFromInt(price), IsAvailable: true, Stock: stock}
	require.NoError(t, db.Create(food).Error)
	return food
}

func Stock(t *testing.T, db *gorm.DB, foodID uint) int {
	t.Helper()

	var food model.Food
	require.NoError(t, db.First(&food, foodID).Error)
	return food.Stock
}

func Count(t *testing.T, db *gorm.DB, table any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(table).Count(&n).Error)
	return n
}
