package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
)

// ClaimsHandler handles the student-facing claim endpoints. Students only see
// their own claims, and always through the redacted claimant view.
type ClaimsHandler struct {
	DB *sql.DB
}

type createClaimRequest struct {
	ItemID int64  `json:"item_id"`
	Proof  string `json:"proof_of_ownership"`
}

// Create handles POST /api/claims. The claimant is taken from the token, not
// the request body.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := store.CreateClaim(r.Context(), h.DB, req.ItemID, claims.UserID, req.Proof)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("claim submitted", "claim", claim.ID, "item", claim.ItemID, "by", claims.Username)
	jsonResponse(w, http.StatusCreated, claim.ForClaimant())
}

// ListMine handles GET /api/claims.
func (h *ClaimsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	mine, err := store.ListClaimsByStudent(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}

	views := make([]model.ClaimView, 0, len(mine))
	for _, c := range mine {
		views = append(views, c.ForClaimant())
	}
	jsonResponse(w, http.StatusOK, views)
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}
	if claim == nil || claim.StudentID != claims.UserID {
		// Hide other students' claims entirely.
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}

	jsonResponse(w, http.StatusOK, claim.ForClaimant())
}

// Delete handles DELETE /api/claims/{id}. A student may withdraw their own
// claim as long as it has not been approved; an admin may delete any
// non-approved claim.
func (h *ClaimsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}
	isAdmin := model.RoleAtLeast(claims.Role, model.RoleAdmin)
	if claim == nil || (claim.StudentID != claims.UserID && !isAdmin) {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}

	if err := store.DeleteClaim(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("claim withdrawn", "claim", id, "by", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim deleted"})
}
