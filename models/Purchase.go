package models

import "gorm.io/gorm"

// Purchase is an append-only record of one completed sale. CreatedAt is the
// server-assigned sale timestamp; rows are never updated after creation. The
// menu item price is not snapshotted, so revenue reports always join against
// the current menu price.
type Purchase struct {
	gorm.Model
	MenuItemID uint      `gorm:"not null;index" json:"menu_item_id"`
	MenuItem   *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}
