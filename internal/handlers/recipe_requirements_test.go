package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecipeRequirementCreate(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	burger := seedMenuItem(t, db, "Burger", "5.00")

	payload := fmt.Sprintf(`{"menu_item_id":%d,"ingredient_id":%d,"quantity":"2"}`, burger.ID, tomato.ID)
	req := httptest.NewRequest(http.MethodPost, "/app/api/recipe-requirements", bytes.NewBufferString(payload))
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	RecipeRequirementResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var response recipeRequirementResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.MenuItemID != burger.ID || response.IngredientID != tomato.ID {
		t.Fatalf("unexpected created requirement: %+v", response)
	}
	if !response.Quantity.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected quantity 2, got %s", response.Quantity)
	}
}

func TestRecipeRequirementDuplicateLink(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	burger := seedMenuItem(t, db, "Burger", "5.00")
	seedRequirement(t, db, burger.ID, tomato.ID, "2")

	payload := fmt.Sprintf(`{"menu_item_id":%d,"ingredient_id":%d,"quantity":"5"}`, burger.ID, tomato.ID)
	req := httptest.NewRequest(http.MethodPost, "/app/api/recipe-requirements", bytes.NewBufferString(payload))
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	RecipeRequirementResource(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	// the original link is untouched
	requirements, err := service.RequirementsForMenuItem(req.Context(), burger.ID)
	if err != nil {
		t.Fatalf("failed to load requirements: %v", err)
	}
	if len(requirements) != 1 {
		t.Fatalf("expected 1 requirement after rejected duplicate, got %d", len(requirements))
	}
	if !requirements[0].Quantity.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected original quantity 2, got %s", requirements[0].Quantity)
	}
}

func TestRecipeRequirementCreateValidation(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	burger := seedMenuItem(t, db, "Burger", "5.00")

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"zero quantity", fmt.Sprintf(`{"menu_item_id":%d,"ingredient_id":%d,"quantity":"0"}`, burger.ID, tomato.ID), http.StatusBadRequest},
		{"negative quantity", fmt.Sprintf(`{"menu_item_id":%d,"ingredient_id":%d,"quantity":"-1"}`, burger.ID, tomato.ID), http.StatusBadRequest},
		{"unknown menu item", fmt.Sprintf(`{"menu_item_id":424242,"ingredient_id":%d,"quantity":"1"}`, tomato.ID), http.StatusNotFound},
		{"unknown ingredient", fmt.Sprintf(`{"menu_item_id":%d,"ingredient_id":424242,"quantity":"1"}`, burger.ID), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/app/api/recipe-requirements", bytes.NewBufferString(tc.body))
			req = authenticateRequest(t, sm, req, user.ID)
			w := httptest.NewRecorder()
			RecipeRequirementResource(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestRecipeRequirementListFilters(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	cheese := seedIngredient(t, db, "Cheese", "1.50", "50")
	burger := seedMenuItem(t, db, "Burger", "5.00")
	salad := seedMenuItem(t, db, "Garden Salad", "4.50")
	seedRequirement(t, db, burger.ID, tomato.ID, "2")
	seedRequirement(t, db, burger.ID, cheese.ID, "1")
	seedRequirement(t, db, salad.ID, tomato.ID, "3")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipe-requirements?menu_item_id=%d", burger.ID), nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	RecipeRequirementResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var byItem []recipeRequirementResponse
	if err := json.Unmarshal(w.Body.Bytes(), &byItem); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(byItem) != 2 {
		t.Fatalf("expected 2 requirements for burger, got %d", len(byItem))
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipe-requirements?ingredient_id=%d", tomato.ID), nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w = httptest.NewRecorder()
	RecipeRequirementResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var byIngredient []recipeRequirementResponse
	if err := json.Unmarshal(w.Body.Bytes(), &byIngredient); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(byIngredient) != 2 {
		t.Fatalf("expected tomato to appear in 2 recipes, got %d", len(byIngredient))
	}
	for _, requirement := range byIngredient {
		if requirement.MenuItem == nil || requirement.MenuItem.Name == "" {
			t.Fatalf("expected menu item summary on ingredient-side listing: %+v", requirement)
		}
	}
}

func TestRecipeRequirementReAddAfterDelete(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	burger := seedMenuItem(t, db, "Burger", "5.00")
	link := seedRequirement(t, db, burger.ID, tomato.ID, "2")

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/recipe-requirements/%d", link.ID), nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	RecipeRequirementResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	// the pair must be free again once the link is gone
	payload := fmt.Sprintf(`{"menu_item_id":%d,"ingredient_id":%d,"quantity":"3"}`, burger.ID, tomato.ID)
	req = httptest.NewRequest(http.MethodPost, "/app/api/recipe-requirements", bytes.NewBufferString(payload))
	req = authenticateRequest(t, sm, req, user.ID)
	w = httptest.NewRecorder()
	RecipeRequirementResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201 when re-adding a removed link, got %d: %s", w.Code, w.Body.String())
	}
	var response recipeRequirementResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Quantity.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("expected re-added quantity 3, got %s", response.Quantity)
	}
}

func TestRecipeRequirementUpdateAndDelete(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t, db, "chef@example.com")

	tomato := seedIngredient(t, db, "Tomato", "0.50", "1000")
	burger := seedMenuItem(t, db, "Burger", "5.00")
	link := seedRequirement(t, db, burger.ID, tomato.ID, "2")

	body := bytes.NewBufferString(`{"quantity":"4"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/recipe-requirements/%d", link.ID), body)
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	RecipeRequirementResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var response recipeRequirementResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Quantity.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected updated quantity 4, got %s", response.Quantity)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/recipe-requirements/%d", link.ID), nil)
	req = authenticateRequest(t, sm, req, user.ID)
	w = httptest.NewRecorder()
	RecipeRequirementResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	requirements, err := service.RequirementsForMenuItem(req.Context(), burger.ID)
	if err != nil {
		t.Fatalf("failed to load requirements: %v", err)
	}
	if len(requirements) != 0 {
		t.Fatalf("expected no requirements after delete, got %d", len(requirements))
	}
}
