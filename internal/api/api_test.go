package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusfound/campusfound/internal/db"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	if err := store.SeedReferenceData(ctx, database); err != nil {
		t.Fatalf("seeding reference data: %v", err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if _, err := store.CreateUser(ctx, database, "admin", "Ada Admin", string(hash), model.RoleAdmin); err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	if _, err := store.CreateUser(ctx, database, "student1", "Sam Student", string(hash), model.RoleStudent); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	return server, database
}

func login(t *testing.T, server *httptest.Server, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login as %s failed: %d", username, resp.StatusCode)
	}

	var loginResp map[string]any
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatal("empty token from login")
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, target any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	server, _ := setupTestServer(t)
	studentToken := login(t, server, "student1")

	adminOnly := []struct{ method, path string }{
		{"GET", "/api/users"},
		{"GET", "/api/admin/claims"},
		{"GET", "/api/admin/claims/history"},
		{"GET", "/api/admin/stats"},
		{"PUT", "/api/admin/claims/1"},
	}
	for _, ep := range adminOnly {
		req, _ := authRequest(ep.method, server.URL+ep.path, studentToken, nil)
		resp, _ := http.DefaultClient.Do(req)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 for student, got %d", ep.method, ep.path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _ := setupTestServer(t)
	token := login(t, server, "student1")

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	// The revoked token no longer works.
	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClaimLifecycleFlow(t *testing.T) {
	server, database := setupTestServer(t)
	adminToken := login(t, server, "admin")
	studentToken := login(t, server, "student1")

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(context.Background(), database, "student2", "Olga Other", string(hash), model.RoleStudent)
	otherToken := login(t, server, "student2")

	categories, _ := store.ListCategories(context.Background(), database)
	locations, _ := store.ListLocations(context.Background(), database)

	// The student reports a found item.
	var item model.Item
	req, _ := authRequest("POST", server.URL+"/api/items", studentToken, map[string]any{
		"name":        "Silver Watch",
		"description": "Silver watch with a leather strap and engraved initials",
		"category_id": categories[0].ID,
		"location_id": locations[0].ID,
	})
	doJSON(t, req, http.StatusCreated, &item)

	// Two students claim it.
	var view1, view2 model.ClaimView
	req, _ = authRequest("POST", server.URL+"/api/claims", studentToken, map[string]any{
		"item_id":            item.ID,
		"proof_of_ownership": "The initials are S.S., engraved on the back",
	})
	doJSON(t, req, http.StatusCreated, &view1)
	req, _ = authRequest("POST", server.URL+"/api/claims", otherToken, map[string]any{
		"item_id":            item.ID,
		"proof_of_ownership": "It is a silver watch",
	})
	doJSON(t, req, http.StatusCreated, &view2)

	// While pending, the claimant sees the redaction notices, not the item
	// description or a rationale.
	if view1.ItemDescription != model.PendingDescriptionNotice {
		t.Errorf("expected redacted description, got %q", view1.ItemDescription)
	}
	if view1.Rationale != model.PendingRationaleNotice {
		t.Errorf("expected pending rationale notice, got %q", view1.Rationale)
	}

	// The admin queue shows both claims unredacted.
	var pending []model.Claim
	req, _ = authRequest("GET", server.URL+"/api/admin/claims", adminToken, nil)
	doJSON(t, req, http.StatusOK, &pending)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending claims, got %d", len(pending))
	}
	if pending[0].ItemDescription == model.PendingDescriptionNotice {
		t.Error("admin view must not be redacted")
	}

	// The admin approves the first claim.
	var decided model.Claim
	req, _ = authRequest("PUT", fmt.Sprintf("%s/api/admin/claims/%d", server.URL, view1.ID), adminToken, map[string]string{
		"status":    model.ClaimStatusApproved,
		"rationale": "Engraving verified in person",
	})
	doJSON(t, req, http.StatusOK, &decided)
	if decided.Status != model.ClaimStatusApproved {
		t.Errorf("expected approved, got %q", decided.Status)
	}

	// The item is now claimed.
	var got model.Item
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), studentToken, nil)
	doJSON(t, req, http.StatusOK, &got)
	if got.Status != model.ItemStatusClaimed {
		t.Errorf("expected item claimed, got %q", got.Status)
	}

	// The losing claimant sees their claim cascade-rejected, with the stored
	// rationale now visible.
	var mine []model.ClaimView
	req, _ = authRequest("GET", server.URL+"/api/claims", otherToken, nil)
	doJSON(t, req, http.StatusOK, &mine)
	if len(mine) != 1 {
		t.Fatalf("expected 1 claim for student2, got %d", len(mine))
	}
	if mine[0].Status != model.ClaimStatusRejected {
		t.Errorf("expected cascade rejection, got %q", mine[0].Status)
	}
	if mine[0].Rationale != model.CascadeRationale {
		t.Errorf("expected cascade rationale, got %q", mine[0].Rationale)
	}

	// Further claims on the item are refused.
	req, _ = authRequest("POST", server.URL+"/api/claims", otherToken, map[string]any{
		"item_id":            item.ID,
		"proof_of_ownership": "one more try",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 claiming a claimed item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClaimOwnership(t *testing.T) {
	server, database := setupTestServer(t)
	studentToken := login(t, server, "student1")

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(context.Background(), database, "student2", "Olga", string(hash), model.RoleStudent)
	otherToken := login(t, server, "student2")

	categories, _ := store.ListCategories(context.Background(), database)
	locations, _ := store.ListLocations(context.Background(), database)

	var item model.Item
	req, _ := authRequest("POST", server.URL+"/api/items", studentToken, map[string]any{
		"name":        "Scarf",
		"category_id": categories[0].ID,
		"location_id": locations[0].ID,
	})
	doJSON(t, req, http.StatusCreated, &item)

	var view model.ClaimView
	req, _ = authRequest("POST", server.URL+"/api/claims", studentToken, map[string]any{
		"item_id":            item.ID,
		"proof_of_ownership": "hand-knit, red wool",
	})
	doJSON(t, req, http.StatusCreated, &view)

	// Another student cannot read or withdraw someone else's claim.
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/claims/%d", server.URL, view.ID), otherToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 reading another student's claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("DELETE", fmt.Sprintf("%s/api/claims/%d", server.URL, view.ID), otherToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting another student's claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The owner can withdraw it.
	req, _ = authRequest("DELETE", fmt.Sprintf("%s/api/claims/%d", server.URL, view.ID), studentToken, nil)
	doJSON(t, req, http.StatusOK, nil)
}

func TestDecideValidationErrors(t *testing.T) {
	server, database := setupTestServer(t)
	adminToken := login(t, server, "admin")
	studentToken := login(t, server, "student1")

	categories, _ := store.ListCategories(context.Background(), database)
	locations, _ := store.ListLocations(context.Background(), database)

	var item model.Item
	req, _ := authRequest("POST", server.URL+"/api/items", studentToken, map[string]any{
		"name":        "Umbrella",
		"category_id": categories[0].ID,
		"location_id": locations[0].ID,
	})
	doJSON(t, req, http.StatusCreated, &item)

	var view model.ClaimView
	req, _ = authRequest("POST", server.URL+"/api/claims", studentToken, map[string]any{
		"item_id":            item.ID,
		"proof_of_ownership": "black, bent spoke",
	})
	doJSON(t, req, http.StatusCreated, &view)

	// Missing rationale.
	req, _ = authRequest("PUT", fmt.Sprintf("%s/api/admin/claims/%d", server.URL, view.ID), adminToken, map[string]string{
		"status": model.ClaimStatusApproved,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing rationale, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Bad status.
	req, _ = authRequest("PUT", fmt.Sprintf("%s/api/admin/claims/%d", server.URL, view.ID), adminToken, map[string]string{
		"status":    "undecided",
		"rationale": "hmm",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Unknown claim.
	req, _ = authRequest("PUT", server.URL+"/api/admin/claims/9999", adminToken, map[string]string{
		"status":    model.ClaimStatusRejected,
		"rationale": "no such claim",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminStats(t *testing.T) {
	server, _ := setupTestServer(t)
	adminToken := login(t, server, "admin")

	var stats store.Stats
	req, _ := authRequest("GET", server.URL+"/api/admin/stats", adminToken, nil)
	doJSON(t, req, http.StatusOK, &stats)
	if stats.TotalItems != 0 || stats.PendingClaims != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}

func TestReferenceEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	token := login(t, server, "student1")

	var categories []model.Category
	req, _ := authRequest("GET", server.URL+"/api/categories", token, nil)
	doJSON(t, req, http.StatusOK, &categories)
	if len(categories) == 0 {
		t.Error("expected seeded categories")
	}

	var locations []model.Location
	req, _ = authRequest("GET", server.URL+"/api/locations", token, nil)
	doJSON(t, req, http.StatusOK, &locations)
	if len(locations) == 0 {
		t.Error("expected seeded locations")
	}
}
