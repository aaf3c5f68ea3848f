package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mise/internal/inventory"
	applog "mise/internal/log"
	"mise/models"
)

type recipeRequirementRequest struct {
	MenuItemID   uint            `json:"menu_item_id"`
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type requirementIngredientSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type requirementMenuItemSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type recipeRequirementResponse struct {
	ID           uint                          `json:"id"`
	MenuItemID   uint                          `json:"menu_item_id"`
	IngredientID uint                          `json:"ingredient_id"`
	Quantity     decimal.Decimal               `json:"quantity"`
	MenuItem     *requirementMenuItemSummary   `json:"menu_item,omitempty"`
	Ingredient   *requirementIngredientSummary `json:"ingredient,omitempty"`
	CreatedAt    time.Time                     `json:"created_at"`
	UpdatedAt    time.Time                     `json:"updated_at"`
}

// RecipeRequirementResource handles CRUD interactions for recipe links.
func RecipeRequirementResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "recipe requirement request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "recipe requirement request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipe-requirements")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipeRequirements(w, r)
		case http.MethodPost:
			createRecipeRequirement(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe requirement identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	requirementID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipeRequirement(w, r, requirementID)
	case http.MethodPut:
		updateRecipeRequirement(w, r, requirementID)
	case http.MethodDelete:
		deleteRecipeRequirement(w, r, requirementID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipeRequirements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if menuItemParam := strings.TrimSpace(r.URL.Query().Get("menu_item_id")); menuItemParam != "" {
		idValue, err := strconv.ParseUint(menuItemParam, 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid menu_item_id filter")
			return
		}
		requirements, err := service.RequirementsForMenuItem(ctx, uint(idValue))
		if err != nil {
			applog.Error(ctx, "failed to list requirements by menu item", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to load recipe requirements")
			return
		}
		writeRequirementList(w, requirements)
		return
	}

	if ingredientParam := strings.TrimSpace(r.URL.Query().Get("ingredient_id")); ingredientParam != "" {
		idValue, err := strconv.ParseUint(ingredientParam, 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid ingredient_id filter")
			return
		}
		requirements, err := service.RequirementsForIngredient(ctx, uint(idValue))
		if err != nil {
			applog.Error(ctx, "failed to list requirements by ingredient", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to load recipe requirements")
			return
		}
		writeRequirementList(w, requirements)
		return
	}

	var requirements []models.RecipeRequirement
	if err := database.WithContext(ctx).
		Preload("MenuItem").
		Preload("Ingredient").
		Order("menu_item_id asc, id asc").
		Find(&requirements).Error; err != nil {
		applog.Error(ctx, "failed to list recipe requirements", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe requirements")
		return
	}
	writeRequirementList(w, requirements)
}

func writeRequirementList(w http.ResponseWriter, requirements []models.RecipeRequirement) {
	responses := make([]recipeRequirementResponse, 0, len(requirements))
	for _, requirement := range requirements {
		responses = append(responses, projectRecipeRequirement(requirement))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipeRequirement(w http.ResponseWriter, r *http.Request, requirementID uint) {
	ctx := r.Context()
	var requirement models.RecipeRequirement
	if err := database.WithContext(ctx).
		Preload("MenuItem").
		Preload("Ingredient").
		First(&requirement, requirementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe requirement", "error", err, "id", requirementID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe requirement")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeRequirement(requirement))
}

func createRecipeRequirement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeRequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe requirement create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	requirement, err := service.AddRequirement(ctx, payload.MenuItemID, payload.IngredientID, payload.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrInvalidQuantity):
			writeJSONError(w, http.StatusBadRequest, "quantity must be positive")
		case errors.Is(err, inventory.ErrMenuItemNotFound):
			writeJSONError(w, http.StatusNotFound, "menu item does not exist")
		case errors.Is(err, inventory.ErrIngredientNotFound):
			writeJSONError(w, http.StatusNotFound, "ingredient does not exist")
		case errors.Is(err, inventory.ErrDuplicateLink):
			writeJSONError(w, http.StatusConflict, "this ingredient is already linked to this menu item")
		default:
			applog.Error(ctx, "failed to create recipe requirement", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to create recipe requirement")
		}
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipeRequirement(*requirement))
}

func updateRecipeRequirement(w http.ResponseWriter, r *http.Request, requirementID uint) {
	ctx := r.Context()
	var existing models.RecipeRequirement
	if err := database.WithContext(ctx).First(&existing, requirementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe requirement for update", "error", err, "id", requirementID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe requirement")
		return
	}

	var payload recipeRequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe requirement update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if !payload.Quantity.IsPositive() {
		writeJSONError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	updates := map[string]any{
		"quantity": payload.Quantity,
	}
	if payload.MenuItemID != 0 {
		updates["menu_item_id"] = payload.MenuItemID
	}
	if payload.IngredientID != 0 {
		updates["ingredient_id"] = payload.IngredientID
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		if inventory.IsDuplicateKey(err) {
			writeJSONError(w, http.StatusConflict, "this ingredient is already linked to this menu item")
			return
		}
		applog.Error(ctx, "failed to update recipe requirement", "error", err, "id", requirementID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe requirement")
		return
	}

	if err := database.WithContext(ctx).
		Preload("MenuItem").
		Preload("Ingredient").
		First(&existing, requirementID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated recipe requirement", "error", err, "id", requirementID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe requirement")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeRequirement(existing))
}

func deleteRecipeRequirement(w http.ResponseWriter, r *http.Request, requirementID uint) {
	ctx := r.Context()
	// Hard delete: a soft-deleted row would still occupy the composite
	// unique index and block re-adding the same pair.
	if err := database.WithContext(ctx).Unscoped().Delete(&models.RecipeRequirement{}, requirementID).Error; err != nil {
		applog.Error(ctx, "failed to delete recipe requirement", "error", err, "id", requirementID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe requirement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectRecipeRequirement(requirement models.RecipeRequirement) recipeRequirementResponse {
	response := recipeRequirementResponse{
		ID:           requirement.ID,
		MenuItemID:   requirement.MenuItemID,
		IngredientID: requirement.IngredientID,
		Quantity:     requirement.Quantity,
		CreatedAt:    requirement.CreatedAt,
		UpdatedAt:    requirement.UpdatedAt,
	}
	if requirement.MenuItem != nil {
		response.MenuItem = &requirementMenuItemSummary{ID: requirement.MenuItem.ID, Name: requirement.MenuItem.Name}
	}
	if requirement.Ingredient != nil {
		response.Ingredient = &requirementIngredientSummary{ID: requirement.Ingredient.ID, Name: requirement.Ingredient.Name}
	}
	return response
}
