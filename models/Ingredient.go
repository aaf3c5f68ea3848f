package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a stocked raw material tracked by unit price and on-hand quantity.
// Quantity is decimal so fractional units (kilograms, litres) can be stocked.
// Names are unique so the stock importer can upsert by name; deletes are
// unscoped, otherwise a deleted ingredient's name would stay blocked.
type Ingredient struct {
	gorm.Model
	Name         string          `gorm:"uniqueIndex;not null" json:"name"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_per_unit"`
	Quantity     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
}
