// Package handlers implements the JSON API: CRUD resources for ingredients,
// menu items, recipe requirements and purchases, the reporting endpoints,
// and the session-backed login wall in front of them.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"mise/internal/inventory"
	applog "mise/internal/log"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	service        *inventory.Service
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
	if db != nil {
		service = inventory.NewService(db)
	} else {
		service = nil
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
