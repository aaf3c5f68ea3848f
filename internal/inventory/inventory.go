// Package inventory holds the restaurant's stock-management core: the
// purchase workflow that checks and deducts ingredient stock, recipe link
// maintenance, and the aggregates the reporting endpoints read.
package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMenuItemNotFound   = errors.New("inventory: menu item not found")
	ErrIngredientNotFound = errors.New("inventory: ingredient not found")
	ErrDuplicateLink      = errors.New("inventory: ingredient is already linked to this menu item")
	ErrInsufficientStock  = errors.New("inventory: insufficient stock")
	ErrInvalidQuantity    = errors.New("inventory: quantity must be positive")
)

// Shortfall describes one ingredient whose on-hand stock cannot cover a
// purchase. Required and Available are reported together so the caller can
// show an itemized rejection.
type Shortfall struct {
	IngredientName string          `json:"ingredient_name"`
	Required       decimal.Decimal `json:"required"`
	Available      decimal.Decimal `json:"available"`
}

// InsufficientStockError rejects a purchase and carries every shortfall, not
// just the first, in recipe order.
type InsufficientStockError struct {
	MenuItemName string
	Shortfalls   []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, shortfall := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (required: %s, available: %s)",
			shortfall.IngredientName, shortfall.Required, shortfall.Available))
	}
	return fmt.Sprintf("cannot complete the purchase of %s: insufficient stock for %s",
		e.MenuItemName, strings.Join(parts, ", "))
}

// Is lets errors.Is(err, ErrInsufficientStock) match the structured error.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Service exposes the inventory workflow on top of a GORM handle. One value
// is shared by all requests; every operation scopes itself with the caller's
// context.
type Service struct {
	db *gorm.DB
}

// NewService wraps the provided database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) handle() (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db, nil
}

// IsDuplicateKey recognizes unique-constraint violations across the drivers
// in use. TranslateError maps most of them to gorm.ErrDuplicatedKey; the
// message sniff covers sqlite setups opened without translation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
