package server

import (
	"context"
	"net/http"

	"mise/internal/handlers"
	applog "mise/internal/log"
	"mise/internal/metrics"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/logout", handlers.Logout)
	mux.Handle("/app/api/ingredients", handlers.RequireAuthentication(http.HandlerFunc(handlers.IngredientResource)))
	mux.Handle("/app/api/ingredients/", handlers.RequireAuthentication(http.HandlerFunc(handlers.IngredientResource)))
	mux.Handle("/app/api/menu-items", handlers.RequireAuthentication(http.HandlerFunc(handlers.MenuItemResource)))
	mux.Handle("/app/api/menu-items/", handlers.RequireAuthentication(http.HandlerFunc(handlers.MenuItemResource)))
	mux.Handle("/app/api/recipe-requirements", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeRequirementResource)))
	mux.Handle("/app/api/recipe-requirements/", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeRequirementResource)))
	mux.Handle("/app/api/purchases", handlers.RequireAuthentication(http.HandlerFunc(handlers.PurchaseResource)))
	mux.Handle("/app/api/purchases/", handlers.RequireAuthentication(http.HandlerFunc(handlers.PurchaseResource)))
	mux.Handle("/app/api/reports/", handlers.RequireAuthentication(http.HandlerFunc(handlers.ReportResource)))
	applog.Debug(context.Background(), "routes registered")
	return mux
}
