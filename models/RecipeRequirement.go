package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeRequirement links one ingredient to one menu item with the quantity
// consumed per sale. The composite unique index makes the storage layer
// reject a second link for the same (menu item, ingredient) pair, so
// concurrent inserts cannot both succeed. Deletes are always unscoped; a
// soft-deleted row would keep the pair occupied in the index and a removed
// link could never be re-added.
type RecipeRequirement struct {
	gorm.Model
	MenuItemID   uint            `gorm:"not null;uniqueIndex:idx_menu_item_ingredient" json:"menu_item_id"`
	IngredientID uint            `gorm:"not null;uniqueIndex:idx_menu_item_ingredient" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`

	MenuItem   *MenuItem   `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
