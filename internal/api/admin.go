package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
)

// AdminHandler handles the admin review queue and reporting endpoints. Admins
// see claims unredacted.
type AdminHandler struct {
	DB *sql.DB
}

type decideClaimRequest struct {
	Status    string `json:"status"`
	Rationale string `json:"rationale"`
}

// PendingClaims handles GET /api/admin/claims.
func (h *AdminHandler) PendingClaims(w http.ResponseWriter, r *http.Request) {
	pending, err := store.ListPendingClaims(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list pending claims")
		return
	}
	if pending == nil {
		pending = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, pending)
}

// Decide handles PUT /api/admin/claims/{id}. Approving a claim marks the item
// claimed and rejects every other pending claim on it in the same transaction.
func (h *AdminHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req decideClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decided, err := store.DecideClaim(r.Context(), h.DB, id, claims.UserID, req.Status, req.Rationale)
	if err != nil {
		storeError(w, err)
		return
	}

	claimDecisions.WithLabelValues(decided.Status).Inc()
	slog.Info("claim decided",
		"claim", decided.ID,
		"item", decided.ItemID,
		"status", decided.Status,
		"admin", claims.Username,
	)
	jsonResponse(w, http.StatusOK, decided)
}

// ClaimsHistory handles GET /api/admin/claims/history.
func (h *AdminHandler) ClaimsHistory(w http.ResponseWriter, r *http.Request) {
	history, err := store.ListClaimsHistory(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claim history")
		return
	}
	if history == nil {
		history = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// ItemClaims handles GET /api/admin/items/{id}/claims.
func (h *AdminHandler) ItemClaims(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	itemClaims, err := store.ListClaimsByItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list item claims")
		return
	}
	if itemClaims == nil {
		itemClaims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, itemClaims)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
