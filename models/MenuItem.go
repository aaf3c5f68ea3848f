package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItem is a sellable product composed of zero or more ingredients via
// RecipeRequirement links.
type MenuItem struct {
	gorm.Model
	Name  string          `gorm:"not null" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	Requirements []RecipeRequirement `gorm:"foreignKey:MenuItemID" json:"requirements,omitempty"`
}
