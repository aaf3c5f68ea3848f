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
	"mise/internal/metrics"
	"mise/models"
)

type purchaseRequest struct {
	MenuItemID uint `json:"menu_item_id"`
}

type purchaseResponse struct {
	ID           uint            `json:"id"`
	MenuItemID   uint            `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
}

type purchaseListResponse struct {
	Purchases      []purchaseResponse `json:"purchases"`
	TotalRevenue   decimal.Decimal    `json:"total_revenue"`
	InventoryValue decimal.Decimal    `json:"inventory_value"`
}

type shortfallResponse struct {
	Ingredient string          `json:"ingredient"`
	Required   decimal.Decimal `json:"required"`
	Available  decimal.Decimal `json:"available"`
}

type insufficientStockResponse struct {
	Error      string              `json:"error"`
	MenuItem   string              `json:"menu_item"`
	Shortfalls []shortfallResponse `json:"shortfalls"`
}

// PurchaseResource records sales and lists the purchase history with its
// revenue and inventory totals.
func PurchaseResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "purchase request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "purchase request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/purchases")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listPurchases(w, r)
		case http.MethodPost:
			createPurchase(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid purchase identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	showPurchase(w, r, uint(idValue))
}

func listPurchases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var purchases []models.Purchase
	if err := database.WithContext(ctx).
		Preload("MenuItem").
		Order("created_at desc, id desc").
		Find(&purchases).Error; err != nil {
		applog.Error(ctx, "failed to list purchases", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}

	revenue, err := service.TotalRevenue(ctx)
	if err != nil {
		applog.Error(ctx, "failed to compute total revenue", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}

	inventoryValue, err := service.InventoryValue(ctx)
	if err != nil {
		applog.Error(ctx, "failed to compute inventory value", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}

	response := purchaseListResponse{
		Purchases:      make([]purchaseResponse, 0, len(purchases)),
		TotalRevenue:   revenue,
		InventoryValue: inventoryValue,
	}
	for _, purchase := range purchases {
		response.Purchases = append(response.Purchases, projectPurchase(purchase))
	}

	writeJSON(w, http.StatusOK, response)
}

func showPurchase(w http.ResponseWriter, r *http.Request, purchaseID uint) {
	ctx := r.Context()
	var purchase models.Purchase
	if err := database.WithContext(ctx).
		Preload("MenuItem").
		First(&purchase, purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load purchase", "error", err, "id", purchaseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchase")
		return
	}

	writeJSON(w, http.StatusOK, projectPurchase(purchase))
}

func createPurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid purchase payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.MenuItemID == 0 {
		writeJSONError(w, http.StatusBadRequest, "menu_item_id is required")
		return
	}

	result, err := service.AttemptPurchase(ctx, payload.MenuItemID)
	if err != nil {
		var stockErr *inventory.InsufficientStockError
		switch {
		case errors.Is(err, inventory.ErrMenuItemNotFound):
			metrics.PurchasesRejected.WithLabelValues("menu_item_not_found").Inc()
			writeJSONError(w, http.StatusNotFound, "menu item does not exist")
		case errors.As(err, &stockErr):
			metrics.PurchasesRejected.WithLabelValues("insufficient_stock").Inc()
			writeJSON(w, http.StatusConflict, projectInsufficientStock(stockErr))
		default:
			applog.Error(ctx, "failed to record purchase", "error", err, "menu_item_id", payload.MenuItemID)
			writeJSONError(w, http.StatusInternalServerError, "unable to record purchase")
		}
		return
	}

	metrics.PurchasesCompleted.Inc()
	applog.Info(ctx, "purchase recorded", "menu_item", result.MenuItemName, "purchase_id", result.PurchaseID)
	writeJSON(w, http.StatusCreated, result)
}

func projectPurchase(purchase models.Purchase) purchaseResponse {
	response := purchaseResponse{
		ID:         purchase.ID,
		MenuItemID: purchase.MenuItemID,
		CreatedAt:  purchase.CreatedAt,
	}
	if purchase.MenuItem != nil {
		response.MenuItemName = purchase.MenuItem.Name
		response.Price = purchase.MenuItem.Price
	}
	return response
}

func projectInsufficientStock(stockErr *inventory.InsufficientStockError) insufficientStockResponse {
	response := insufficientStockResponse{
		Error:      "insufficient stock",
		MenuItem:   stockErr.MenuItemName,
		Shortfalls: make([]shortfallResponse, 0, len(stockErr.Shortfalls)),
	}
	for _, shortfall := range stockErr.Shortfalls {
		response.Shortfalls = append(response.Shortfalls, shortfallResponse{
			Ingredient: shortfall.IngredientName,
			Required:   shortfall.Required,
			Available:  shortfall.Available,
		})
	}
	return response
}
