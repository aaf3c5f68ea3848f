package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"mise/models"
)

// ChartPoint is one labelled value in a report series.
type ChartPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// InventoryValue is the worth of everything on hand:
// sum of price_per_unit * quantity over all ingredients.
func (s *Service) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	db, err := s.handle()
	if err != nil {
		return decimal.Zero, err
	}

	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Find(&ingredients).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load ingredients: %w", err)
	}

	total := decimal.Zero
	for _, ingredient := range ingredients {
		total = total.Add(ingredient.PricePerUnit.Mul(ingredient.Quantity))
	}
	return total, nil
}

// TotalRevenue sums the current menu price over all recorded purchases.
// Prices are not snapshotted at sale time, so editing a menu price changes
// historical revenue figures; every report view shares that behavior.
func (s *Service) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	db, err := s.handle()
	if err != nil {
		return decimal.Zero, err
	}

	var purchases []models.Purchase
	if err := db.WithContext(ctx).Preload("MenuItem").Find(&purchases).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load purchases: %w", err)
	}

	total := decimal.Zero
	for _, purchase := range purchases {
		if purchase.MenuItem == nil {
			continue
		}
		total = total.Add(purchase.MenuItem.Price)
	}
	return total, nil
}

// IngredientQuantities feeds the stock level chart: one point per
// ingredient, ordered by name.
func (s *Service) IngredientQuantities(ctx context.Context) ([]ChartPoint, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}

	points := make([]ChartPoint, 0, len(ingredients))
	for _, ingredient := range ingredients {
		points = append(points, ChartPoint{Label: ingredient.Name, Value: ingredient.Quantity})
	}
	return points, nil
}

// PurchaseCountsByMenuItem feeds the sales chart: how many times each menu
// item has been sold, ordered by name.
func (s *Service) PurchaseCountsByMenuItem(ctx context.Context) ([]ChartPoint, error) {
	counts, items, err := s.purchaseTallies(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]ChartPoint, 0, len(items))
	for _, item := range items {
		points = append(points, ChartPoint{Label: item.Name, Value: decimal.NewFromInt(counts[item.ID])})
	}
	return points, nil
}

// RevenueByMenuItem feeds the revenue chart: sales count times current price
// per menu item, ordered by name.
func (s *Service) RevenueByMenuItem(ctx context.Context) ([]ChartPoint, error) {
	counts, items, err := s.purchaseTallies(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]ChartPoint, 0, len(items))
	for _, item := range items {
		revenue := item.Price.Mul(decimal.NewFromInt(counts[item.ID]))
		points = append(points, ChartPoint{Label: item.Name, Value: revenue})
	}
	return points, nil
}

func (s *Service) purchaseTallies(ctx context.Context) (map[uint]int64, []models.MenuItem, error) {
	db, err := s.handle()
	if err != nil {
		return nil, nil, err
	}

	var purchases []models.Purchase
	if err := db.WithContext(ctx).Find(&purchases).Error; err != nil {
		return nil, nil, fmt.Errorf("load purchases: %w", err)
	}

	counts := make(map[uint]int64)
	for _, purchase := range purchases {
		counts[purchase.MenuItemID]++
	}

	var items []models.MenuItem
	if err := db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("load menu items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return counts, items, nil
}
