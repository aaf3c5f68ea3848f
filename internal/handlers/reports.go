package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	applog "mise/internal/log"
	"mise/models"
)

type reportSummaryResponse struct {
	InventoryValue decimal.Decimal `json:"inventory_value"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

// ReportResource serves the dashboard aggregates, the chart series, and the
// spreadsheet exports of the ingredient inventory.
func ReportResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "report request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "report request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/reports")
	path = strings.Trim(path, "/")

	switch {
	case path == "summary":
		reportSummary(w, r)
	case strings.HasPrefix(path, "charts/"):
		reportChart(w, r, strings.TrimPrefix(path, "charts/"))
	case path == "ingredients.csv":
		ingredientsCSV(w, r)
	case path == "ingredients.xlsx":
		ingredientsXLSX(w, r)
	default:
		http.NotFound(w, r)
	}
}

func reportSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inventoryValue, err := service.InventoryValue(ctx)
	if err != nil {
		applog.Error(ctx, "failed to compute inventory value", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	revenue, err := service.TotalRevenue(ctx)
	if err != nil {
		applog.Error(ctx, "failed to compute total revenue", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	writeJSON(w, http.StatusOK, reportSummaryResponse{
		InventoryValue: inventoryValue,
		TotalRevenue:   revenue,
	})
}

func reportChart(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()

	switch name {
	case "quantities":
		series, err := service.IngredientQuantities(ctx)
		if err != nil {
			applog.Error(ctx, "failed to build quantities chart", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to build chart")
			return
		}
		writeJSON(w, http.StatusOK, series)
	case "purchases":
		series, err := service.PurchaseCountsByMenuItem(ctx)
		if err != nil {
			applog.Error(ctx, "failed to build purchases chart", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to build chart")
			return
		}
		writeJSON(w, http.StatusOK, series)
	case "revenue":
		series, err := service.RevenueByMenuItem(ctx)
		if err != nil {
			applog.Error(ctx, "failed to build revenue chart", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to build chart")
			return
		}
		writeJSON(w, http.StatusOK, series)
	default:
		http.NotFound(w, r)
	}
}

func loadIngredientsForExport(r *http.Request) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := database.WithContext(r.Context()).
		Order("name asc").
		Find(&ingredients).Error
	return ingredients, err
}

func ingredientsCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ingredients, err := loadIngredientsForExport(r)
	if err != nil {
		applog.Error(ctx, "failed to load ingredients for csv export", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
		return
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	if err := writer.Write([]string{"name", "price_per_unit", "quantity"}); err != nil {
		applog.Error(ctx, "failed to write csv header", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
		return
	}
	for _, ingredient := range ingredients {
		record := []string{
			ingredient.Name,
			ingredient.PricePerUnit.StringFixed(2),
			ingredient.Quantity.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			applog.Error(ctx, "failed to write csv record", "error", err, "ingredient", ingredient.Name)
			writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		applog.Error(ctx, "failed to flush csv export", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ingredients.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buffer.Bytes()); err != nil {
		applog.Error(ctx, "failed to send csv export", "error", err)
	}
}

func ingredientsXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ingredients, err := loadIngredientsForExport(r)
	if err != nil {
		applog.Error(ctx, "failed to load ingredients for xlsx export", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
		return
	}

	workbook := excelize.NewFile()
	defer func() {
		if err := workbook.Close(); err != nil {
			applog.Warn(ctx, "failed to close xlsx workbook", "error", err)
		}
	}()

	const sheet = "Ingredients"
	index, err := workbook.NewSheet(sheet)
	if err != nil {
		applog.Error(ctx, "failed to create xlsx sheet", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
		return
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		applog.Warn(ctx, "failed to drop default xlsx sheet", "error", err)
	}

	if err := workbook.SetSheetRow(sheet, "A1", &[]any{"Name", "Price per unit", "Quantity"}); err != nil {
		applog.Error(ctx, "failed to write xlsx header", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
		return
	}
	for i, ingredient := range ingredients {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{
			ingredient.Name,
			ingredient.PricePerUnit.InexactFloat64(),
			ingredient.Quantity.InexactFloat64(),
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			applog.Error(ctx, "failed to write xlsx row", "error", err, "ingredient", ingredient.Name)
			writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
			return
		}
	}

	var buffer bytes.Buffer
	if err := workbook.Write(&buffer); err != nil {
		applog.Error(ctx, "failed to render xlsx export", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export ingredients")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ingredients.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buffer.Bytes()); err != nil {
		applog.Error(ctx, "failed to send xlsx export", "error", err)
	}
}
