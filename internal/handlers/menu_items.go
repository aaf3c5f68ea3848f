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

	applog "mise/internal/log"
	"mise/models"
)

type menuItemResponse struct {
	ID           uint                        `json:"id"`
	Name         string                      `json:"name"`
	Price        decimal.Decimal             `json:"price"`
	Requirements []recipeRequirementResponse `json:"requirements,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

type menuItemRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuItemResource handles REST-style interactions for sellable menu records.
func MenuItemResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "menu item request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "menu item request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/menu-items")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listMenuItems(w, r)
		case http.MethodPost:
			createMenuItem(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid menu item identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	menuItemID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showMenuItem(w, r, menuItemID)
	case http.MethodPut:
		updateMenuItem(w, r, menuItemID)
	case http.MethodDelete:
		deleteMenuItem(w, r, menuItemID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listMenuItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.MenuItem
	if err := database.WithContext(ctx).Order("name asc").Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list menu items", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load menu items")
		return
	}

	responses := make([]menuItemResponse, 0, len(results))
	for _, item := range results {
		responses = append(responses, projectMenuItem(item, nil))
	}
	writeJSON(w, http.StatusOK, responses)
}

// showMenuItem returns the item together with its recipe, the equivalent of
// the menu detail screen.
func showMenuItem(w http.ResponseWriter, r *http.Request, menuItemID uint) {
	ctx := r.Context()
	var item models.MenuItem
	if err := database.WithContext(ctx).First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load menu item", "error", err, "id", menuItemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load menu item")
		return
	}

	requirements, err := service.RequirementsForMenuItem(ctx, menuItemID)
	if err != nil {
		applog.Error(ctx, "failed to load menu item recipe", "error", err, "id", menuItemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load menu item")
		return
	}

	writeJSON(w, http.StatusOK, projectMenuItem(item, requirements))
}

func createMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid menu item create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateMenuItemPayload(payload); err != nil {
		applog.Debug(ctx, "menu item validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := models.MenuItem{
		Name:  strings.TrimSpace(payload.Name),
		Price: payload.Price,
	}

	if err := database.WithContext(ctx).Create(&item).Error; err != nil {
		applog.Error(ctx, "failed to create menu item", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create menu item")
		return
	}

	writeJSON(w, http.StatusCreated, projectMenuItem(item, nil))
}

func updateMenuItem(w http.ResponseWriter, r *http.Request, menuItemID uint) {
	ctx := r.Context()
	var item models.MenuItem
	if err := database.WithContext(ctx).First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load menu item for update", "error", err, "id", menuItemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load menu item")
		return
	}

	var payload menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid menu item update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateMenuItemPayload(payload); err != nil {
		applog.Debug(ctx, "menu item update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"name":  strings.TrimSpace(payload.Name),
		"price": payload.Price,
	}

	if err := database.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update menu item", "error", err, "id", menuItemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update menu item")
		return
	}

	if err := database.WithContext(ctx).First(&item, menuItemID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated menu item", "error", err, "id", menuItemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectMenuItem(item, nil))
}

func deleteMenuItem(w http.ResponseWriter, r *http.Request, menuItemID uint) {
	ctx := r.Context()
	var item models.MenuItem
	if err := database.WithContext(ctx).First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load menu item for delete", "error", err, "id", menuItemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load menu item")
		return
	}

	// Deleting a menu item takes its recipe links and sales history with it.
	// Links are removed unscoped so they release the composite unique index.
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("menu_item_id = ?", menuItemID).Delete(&models.RecipeRequirement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("menu_item_id = ?", menuItemID).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete menu item", "error", err, "id", menuItemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateMenuItemPayload(payload menuItemRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return errors.New("name is required")
	}
	if payload.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	return nil
}

func projectMenuItem(item models.MenuItem, requirements []models.RecipeRequirement) menuItemResponse {
	response := menuItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	for _, requirement := range requirements {
		response.Requirements = append(response.Requirements, projectRecipeRequirement(requirement))
	}
	return response
}
