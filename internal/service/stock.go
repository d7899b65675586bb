package service

import (
	"context"
	"fmt"
	"sort"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/repository"

	"gorm.io/gorm"
)

// stockLine is one demand of quantity units against a food's stock.
type stockLine struct {
	FoodID   uint
	Quantity int
}

// stockPolicy is the single place that reads and mutates foods.stock.
// Cart writes use softCheck; order creation and payment use take (or check);
// cancellation uses restore.
type stockPolicy struct {
	inventoryRepo repository.InventoryRepository
}

func newStockPolicy(inventoryRepo repository.InventoryRepository) *stockPolicy {
	return &stockPolicy{inventoryRepo: inventoryRepo}
}

// softCheck compares against the stock that was read, without locking or
// reserving anything.
func (p *stockPolicy) softCheck(food *model.Food, quantity int) error {
	if quantity > food.Stock {
		return apperr.InsufficientStock(food.Name, quantity, food.Stock)
	}
	return nil
}

// check locks every food named by lines and validates all of them before
// returning. Nothing is written.
func (p *stockPolicy) check(ctx context.Context, tx *gorm.DB, lines []stockLine) (map[uint]*model.Food, error) {
	ids := make([]uint, 0, len(lines))
	demand := make(map[uint]int, len(lines))
	for _, l := range lines {
		if _, seen := demand[l.FoodID]; !seen {
			ids = append(ids, l.FoodID)
		}
		demand[l.FoodID] += l.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	foods, err := p.inventoryRepo.LockFoods(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock foods: %w", err)
	}

	byID := make(map[uint]*model.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	for _, l := range lines {
		food, ok := byID[l.FoodID]
		if !ok {
			return nil, apperr.ErrFoodNotFound
		}
		if demand[l.FoodID] > food.Stock {
			return nil, apperr.InsufficientStock(food.Name, demand[l.FoodID], food.Stock)
		}
	}

	return byID, nil
}

// take validates every line and only then decrements stock for each of them.
// The guarded decrement is a second line of defence if a lock was not honoured.
func (p *stockPolicy) take(ctx context.Context, tx *gorm.DB, lines []stockLine) (map[uint]*model.Food, error) {
	foods, err := p.check(ctx, tx, lines)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		ok, err := p.inventoryRepo.Take(ctx, tx, l.FoodID, l.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			food := foods[l.FoodID]
			return nil, apperr.InsufficientStock(food.Name, l.Quantity, food.Stock)
		}
	}

	return foods, nil
}

func (p *stockPolicy) restore(ctx context.Context, tx *gorm.DB, lines []stockLine) error {
	for _, l := range lines {
		if err := p.inventoryRepo.Restore(ctx, tx, l.FoodID, l.Quantity); err != nil {
			return fmt.Errorf("restore stock for food %d: %w", l.FoodID, err)
		}
	}
	return nil
}

// adjust applies a manual stock correction. A negative delta may not take
// stock below zero.
func (p *stockPolicy) adjust(ctx context.Context, tx *gorm.DB, foodID uint, delta int) error {
	foods, err := p.inventoryRepo.LockFoods(ctx, tx, []uint{foodID})
	if err != nil {
		return fmt.Errorf("lock food: %w", err)
	}
	if len(foods) == 0 {
		return apperr.ErrFoodNotFound
	}

	if delta >= 0 {
		return p.restore(ctx, tx, []stockLine{{FoodID: foodID, Quantity: delta}})
	}

	ok, err := p.inventoryRepo.Take(ctx, tx, foodID, -delta)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if !ok {
		return apperr.InsufficientStock(foods[0].Name, -delta, foods[0].Stock)
	}
	return nil
}
