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

type ingredientResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ingredientRequest struct {
	Name         string          `json:"name"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type ingredientListResponse struct {
	Ingredients    []ingredientResponse `json:"ingredients"`
	InventoryValue decimal.Decimal      `json:"inventory_value"`
}

// IngredientResource handles REST-style interactions for pantry stock records.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "ingredient request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Ingredient
	if err := database.WithContext(ctx).Order("name asc").Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	value, err := service.InventoryValue(ctx)
	if err != nil {
		applog.Error(ctx, "failed to compute inventory value", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, ingredientListResponse{Ingredients: responses, InventoryValue: value})
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateIngredientPayload(payload); err != nil {
		applog.Debug(ctx, "ingredient validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ingredient := models.Ingredient{
		Name:         strings.TrimSpace(payload.Name),
		PricePerUnit: payload.PricePerUnit,
		Quantity:     payload.Quantity,
	}

	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		if inventory.IsDuplicateKey(err) {
			writeJSONError(w, http.StatusConflict, "an ingredient with that name already exists")
			return
		}
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateIngredientPayload(payload); err != nil {
		applog.Debug(ctx, "ingredient update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"name":           strings.TrimSpace(payload.Name),
		"price_per_unit": payload.PricePerUnit,
		"quantity":       payload.Quantity,
	}

	if err := database.WithContext(ctx).Model(&ingredient).Updates(updates).Error; err != nil {
		if inventory.IsDuplicateKey(err) {
			writeJSONError(w, http.StatusConflict, "an ingredient with that name already exists")
			return
		}
		applog.Error(ctx, "failed to update ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update ingredient")
		return
	}

	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for delete", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	// Recipe links cascade with their ingredient, matching the ownership
	// rule: a requirement cannot outlive either parent. Both deletes are
	// unscoped so the unique indexes on name and on the recipe pair free
	// up for re-creation.
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("ingredient_id = ?", ingredientID).Delete(&models.RecipeRequirement{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&ingredient).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateIngredientPayload(payload ingredientRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return errors.New("name is required")
	}
	if payload.PricePerUnit.IsNegative() {
		return errors.New("price_per_unit must not be negative")
	}
	if payload.Quantity.IsNegative() {
		return errors.New("quantity must not be negative")
	}
	return nil
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:           ingredient.ID,
		Name:         ingredient.Name,
		PricePerUnit: ingredient.PricePerUnit,
		Quantity:     ingredient.Quantity,
		CreatedAt:    ingredient.CreatedAt,
		UpdatedAt:    ingredient.UpdatedAt,
	}
}
