package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"mise/models"
)

func TestAddRequirementRejectsDuplicateLink(t *testing.T) {
	svc, db := newTestService(t)
	fixture := seedBurger(t, db)

	pickle := models.Ingredient{
		Name:         "Pickle",
		PricePerUnit: decimal.RequireFromString("0.20"),
		Quantity:     decimal.NewFromInt(300),
	}
	if err := db.Create(&pickle).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}

	first, err := svc.AddRequirement(context.Background(), fixture.burger.ID, pickle.ID, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("first AddRequirement returned error: %v", err)
	}

	_, err = svc.AddRequirement(context.Background(), fixture.burger.ID, pickle.ID, decimal.NewFromInt(5))
	if !errors.Is(err, ErrDuplicateLink) {
		t.Fatalf("expected duplicate link error, got %v", err)
	}

	// The original link is unaffected by the failed insert.
	var reloaded models.RecipeRequirement
	if err := db.First(&reloaded, first.ID).Error; err != nil {
		t.Fatalf("failed to reload first requirement: %v", err)
	}
	if !reloaded.Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected original quantity 3, got %s", reloaded.Quantity)
	}

	var count int64
	if err := db.Model(&models.RecipeRequirement{}).
		Where("menu_item_id = ? AND ingredient_id = ?", fixture.burger.ID, pickle.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count links: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one link, got %d", count)
	}
}

func TestAddRequirementValidations(t *testing.T) {
	svc, db := newTestService(t)
	fixture := seedBurger(t, db)

	if _, err := svc.AddRequirement(context.Background(), fixture.burger.ID, fixture.tomato.ID, decimal.Zero); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity error, got %v", err)
	}
	if _, err := svc.AddRequirement(context.Background(), 9999, fixture.tomato.ID, decimal.NewFromInt(1)); !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected menu item not found, got %v", err)
	}
	if _, err := svc.AddRequirement(context.Background(), fixture.burger.ID, 9999, decimal.NewFromInt(1)); !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("expected ingredient not found, got %v", err)
	}
}

func TestRequirementsForMenuItemPreservesOrder(t *testing.T) {
	svc, db := newTestService(t)
	fixture := seedBurger(t, db)

	requirements, err := svc.RequirementsForMenuItem(context.Background(), fixture.burger.ID)
	if err != nil {
		t.Fatalf("RequirementsForMenuItem returned error: %v", err)
	}
	if len(requirements) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(requirements))
	}
	if requirements[0].Ingredient == nil || requirements[1].Ingredient == nil {
		t.Fatal("expected ingredients to be preloaded")
	}
	if requirements[0].Ingredient.Name != "Tomato" || requirements[1].Ingredient.Name != "Cheese" {
		t.Fatalf("unexpected order: %s then %s",
			requirements[0].Ingredient.Name, requirements[1].Ingredient.Name)
	}
}

func TestRequirementsForIngredientPreloadsMenuItems(t *testing.T) {
	svc, db := newTestService(t)
	fixture := seedBurger(t, db)

	salad := models.MenuItem{Name: "Garden Salad", Price: decimal.RequireFromString("4.50")}
	if err := db.Create(&salad).Error; err != nil {
		t.Fatalf("failed to create menu item: %v", err)
	}
	if _, err := svc.AddRequirement(context.Background(), salad.ID, fixture.tomato.ID, decimal.NewFromInt(3)); err != nil {
		t.Fatalf("AddRequirement returned error: %v", err)
	}

	requirements, err := svc.RequirementsForIngredient(context.Background(), fixture.tomato.ID)
	if err != nil {
		t.Fatalf("RequirementsForIngredient returned error: %v", err)
	}
	if len(requirements) != 2 {
		t.Fatalf("expected tomato to appear in 2 recipes, got %d", len(requirements))
	}
	for _, requirement := range requirements {
		if requirement.MenuItem == nil {
			t.Fatalf("requirement %d missing preloaded menu item", requirement.ID)
		}
	}
}
