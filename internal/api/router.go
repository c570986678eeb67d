package api

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusfound/campusfound/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	referenceHandler := &ReferenceHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	claimsHandler := &ClaimsHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Reference lists (all roles).
	mux.Handle("GET /api/categories", authMW(http.HandlerFunc(referenceHandler.Categories)))
	mux.Handle("GET /api/locations", authMW(http.HandlerFunc(referenceHandler.Locations)))

	// Items: browse and report (all roles), delete (admin only).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("DELETE /api/items/{id}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Claims: students act on their own claims.
	mux.Handle("POST /api/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("GET /api/claims", authMW(http.HandlerFunc(claimsHandler.ListMine)))
	mux.Handle("GET /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Get)))
	mux.Handle("DELETE /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Delete)))

	// Admin review queue and reporting.
	mux.Handle("GET /api/admin/claims", authMW(requireAdmin(http.HandlerFunc(adminHandler.PendingClaims))))
	mux.Handle("GET /api/admin/claims/history", authMW(requireAdmin(http.HandlerFunc(adminHandler.ClaimsHistory))))
	mux.Handle("PUT /api/admin/claims/{id}", authMW(requireAdmin(http.HandlerFunc(adminHandler.Decide))))
	mux.Handle("GET /api/admin/items/{id}/claims", authMW(requireAdmin(http.HandlerFunc(adminHandler.ItemClaims))))
	mux.Handle("GET /api/admin/stats", authMW(requireAdmin(http.HandlerFunc(adminHandler.Stats))))

	// Prometheus scrape endpoint.
	mux.Handle("GET /metrics", promhttp.Handler())

	return MetricsMiddleware(mux)
}
