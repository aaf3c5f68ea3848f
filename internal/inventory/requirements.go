package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mise/models"
)

// AddRequirement links an ingredient to a menu item with the quantity
// consumed per sale. Uniqueness of the (menu item, ingredient) pair is
// enforced by the storage layer's composite index, never by a
// check-then-insert, so concurrent inserts cannot both succeed.
func (s *Service) AddRequirement(ctx context.Context, menuItemID, ingredientID uint, quantity decimal.Decimal) (*models.RecipeRequirement, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	var item models.MenuItem
	if err := db.WithContext(ctx).First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("load menu item: %w", err)
	}

	var ingredient models.Ingredient
	if err := db.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("load ingredient: %w", err)
	}

	requirement := models.RecipeRequirement{
		MenuItemID:   menuItemID,
		IngredientID: ingredientID,
		Quantity:     quantity,
	}
	if err := db.WithContext(ctx).Create(&requirement).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, ErrDuplicateLink
		}
		return nil, fmt.Errorf("create recipe requirement: %w", err)
	}

	requirement.MenuItem = &item
	requirement.Ingredient = &ingredient
	return &requirement, nil
}

// RequirementsForMenuItem returns the recipe of one menu item in insertion
// order, with ingredients preloaded. Replaces reverse-relation traversal so
// the object graph stays acyclic.
func (s *Service) RequirementsForMenuItem(ctx context.Context, menuItemID uint) ([]models.RecipeRequirement, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var requirements []models.RecipeRequirement
	if err := db.WithContext(ctx).
		Preload("Ingredient").
		Where("menu_item_id = ?", menuItemID).
		Order("id asc").
		Find(&requirements).Error; err != nil {
		return nil, fmt.Errorf("load requirements for menu item %d: %w", menuItemID, err)
	}
	return requirements, nil
}

// RequirementsForIngredient returns every recipe link that consumes the
// ingredient, with menu items preloaded.
func (s *Service) RequirementsForIngredient(ctx context.Context, ingredientID uint) ([]models.RecipeRequirement, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var requirements []models.RecipeRequirement
	if err := db.WithContext(ctx).
		Preload("MenuItem").
		Where("ingredient_id = ?", ingredientID).
		Order("id asc").
		Find(&requirements).Error; err != nil {
		return nil, fmt.Errorf("load requirements for ingredient %d: %w", ingredientID, err)
	}
	return requirements, nil
}
