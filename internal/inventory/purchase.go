package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	applog "mise/internal/log"
	"mise/models"
)

// PurchaseResult reports a completed sale.
type PurchaseResult struct {
	PurchaseID   uint      `json:"purchase_id"`
	MenuItemName string    `json:"menu_item_name"`
	CompletedAt  time.Time `json:"completed_at"`
}

// AttemptPurchase sells one unit of the menu item. Every recipe requirement
// is checked against current stock before anything is written; if any
// ingredient falls short the purchase is rejected with the full shortfall
// list and no stock changes. Otherwise each ingredient is decremented and an
// append-only purchase row is recorded. The whole sequence runs in a single
// transaction, so an infrastructure failure mid-deduction rolls back cleanly.
func (s *Service) AttemptPurchase(ctx context.Context, menuItemID uint) (PurchaseResult, error) {
	db, err := s.handle()
	if err != nil {
		return PurchaseResult{}, err
	}

	var result PurchaseResult
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.First(&item, menuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMenuItemNotFound
			}
			return fmt.Errorf("load menu item: %w", err)
		}

		// A menu item with no recipe is always sellable.
		var requirements []models.RecipeRequirement
		if err := tx.Preload("Ingredient").
			Where("menu_item_id = ?", item.ID).
			Order("id asc").
			Find(&requirements).Error; err != nil {
			return fmt.Errorf("load recipe requirements: %w", err)
		}

		// Validate everything before mutating anything, collecting every
		// shortfall in recipe order.
		var shortfalls []Shortfall
		for _, requirement := range requirements {
			if requirement.Ingredient == nil {
				return fmt.Errorf("requirement %d: %w", requirement.ID, ErrIngredientNotFound)
			}
			if requirement.Ingredient.Quantity.LessThan(requirement.Quantity) {
				shortfalls = append(shortfalls, Shortfall{
					IngredientName: requirement.Ingredient.Name,
					Required:       requirement.Quantity,
					Available:      requirement.Ingredient.Quantity,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{MenuItemName: item.Name, Shortfalls: shortfalls}
		}

		for _, requirement := range requirements {
			res := tx.Model(&models.Ingredient{}).
				Where("id = ? AND quantity >= ?", requirement.IngredientID, requirement.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", requirement.Quantity))
			if res.Error != nil {
				return fmt.Errorf("deduct %s: %w", requirement.Ingredient.Name, res.Error)
			}
			// The guard misses only when a concurrent purchase drained the
			// row between the check above and this update; surface it as a
			// shortfall and let the transaction roll back.
			if res.RowsAffected == 0 {
				var current models.Ingredient
				if err := tx.First(&current, requirement.IngredientID).Error; err != nil {
					return fmt.Errorf("reload %s after contended deduction: %w", requirement.Ingredient.Name, err)
				}
				return &InsufficientStockError{
					MenuItemName: item.Name,
					Shortfalls: []Shortfall{{
						IngredientName: current.Name,
						Required:       requirement.Quantity,
						Available:      current.Quantity,
					}},
				}
			}
		}

		purchase := models.Purchase{MenuItemID: item.ID}
		if err := tx.Create(&purchase).Error; err != nil {
			return fmt.Errorf("record purchase: %w", err)
		}

		result = PurchaseResult{
			PurchaseID:   purchase.ID,
			MenuItemName: item.Name,
			CompletedAt:  purchase.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	applog.Debug(ctx, "purchase completed", "purchaseID", result.PurchaseID, "menuItem", result.MenuItemName)
	return result, nil
}
