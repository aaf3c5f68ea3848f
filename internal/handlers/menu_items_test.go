package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mise/models"
)

func seedMenuItem(t *testing.T, db *gorm.DB, name, price string) models.MenuItem {
	t.Helper()
	item := models.MenuItem{Name: name, Price: decimal.RequireFromString(price)}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed menu item %s: %v", name, err)
	}
	return item
}

func seedRequirement(t *testing.T, db *gorm.DB, itemID, ingredientID uint, quantity string) models.RecipeRequirement {
	t.Helper()
	link := models.RecipeRequirement{
		MenuItemID:   itemID,
		IngredientID: ingredientID,
		Quantity:     decimal.RequireFromString(quantity),
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("failed to seed recipe requirement: %v", err)
	}
	return link
}

func TestMenuItemCreateAndList(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	body := bytes.NewBufferString(`{"name":"Burger","price":"5.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/app/api/menu-items", body)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	MenuItemResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	seedMenuItem(t, db, "Garden Salad", "4.50")

	req = httptest.NewRequest(http.MethodGet, "/app/api/menu-items", nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w = httptest.NewRecorder()
	MenuItemResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var items []menuItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 menu items, got %d", len(items))
	}
}

func TestMenuItemShowIncludesRecipe(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	cheese := seedIngredient(t, db, "Cheese", "1.50", "50")
	burger := seedMenuItem(t, db, "Burger", "5.00")
	seedRequirement(t, db, burger.ID, tomato.ID, "2")
	seedRequirement(t, db, burger.ID, cheese.ID, "1")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/menu-items/%d", burger.ID), nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	MenuItemResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var response menuItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Requirements) != 2 {
		t.Fatalf("expected 2 recipe requirements, got %d", len(response.Requirements))
	}
	// insertion order is preserved
	if response.Requirements[0].Ingredient == nil || response.Requirements[0].Ingredient.Name != "Tomato" {
		t.Fatalf("expected first requirement to reference Tomato: %+v", response.Requirements[0])
	}
	if !response.Requirements[0].Quantity.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected Tomato quantity 2, got %s", response.Requirements[0].Quantity)
	}
}

func TestMenuItemUpdate(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	burger := seedMenuItem(t, db, "Burger", "5.00")

	body := bytes.NewBufferString(`{"name":"Cheeseburger","price":"6.00"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/menu-items/%d", burger.ID), body)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	MenuItemResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var response menuItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Name != "Cheeseburger" || !response.Price.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("unexpected updated menu item: %+v", response)
	}
}

func TestMenuItemDeleteCascades(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	burger := seedMenuItem(t, db, "Burger", "5.00")
	seedRequirement(t, db, burger.ID, tomato.ID, "2")
	if err := db.Create(&models.Purchase{MenuItemID: burger.ID}).Error; err != nil {
		t.Fatalf("failed to seed purchase: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/menu-items/%d", burger.ID), nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	MenuItemResource(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", w.Code, w.Body.String())
	}

	var linkCount, purchaseCount int64
	if err := db.Model(&models.RecipeRequirement{}).Where("menu_item_id = ?", burger.ID).Count(&linkCount).Error; err != nil {
		t.Fatalf("failed to count recipe requirements: %v", err)
	}
	if err := db.Model(&models.Purchase{}).Where("menu_item_id = ?", burger.ID).Count(&purchaseCount).Error; err != nil {
		t.Fatalf("failed to count purchases: %v", err)
	}
	if linkCount != 0 || purchaseCount != 0 {
		t.Fatalf("expected cascading delete, found %d links and %d purchases", linkCount, purchaseCount)
	}
}

func TestMenuItemNotFound(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	req := httptest.NewRequest(http.MethodGet, "/app/api/menu-items/424242", nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	MenuItemResource(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}
