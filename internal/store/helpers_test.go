package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/campusfound/campusfound/internal/model"
)

// seedUser creates a user for tests; the password hash is a placeholder.
func seedUser(t *testing.T, db *sql.DB, username, name, role string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, username, name, "hash", role)
	if err != nil {
		t.Fatalf("seeding user %q: %v", username, err)
	}
	return u
}

// seedRefs seeds one category and one location and returns their ids.
func seedRefs(t *testing.T, db *sql.DB) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	if err := CreateCategory(ctx, db, "Electronics"); err != nil {
		t.Fatalf("seeding category: %v", err)
	}
	if err := CreateLocation(ctx, db, "Library"); err != nil {
		t.Fatalf("seeding location: %v", err)
	}

	categories, err := ListCategories(ctx, db)
	if err != nil || len(categories) == 0 {
		t.Fatalf("listing categories: %v", err)
	}
	locations, err := ListLocations(ctx, db)
	if err != nil || len(locations) == 0 {
		t.Fatalf("listing locations: %v", err)
	}
	return categories[0].ID, locations[0].ID
}

// seedItem creates an available item reported by the given user.
func seedItem(t *testing.T, db *sql.DB, name, description string, reportedBy int64) *model.Item {
	t.Helper()
	catID, locID := seedRefs(t, db)
	item, err := CreateItem(context.Background(), db, name, description, catID, locID, time.Now(), reportedBy)
	if err != nil {
		t.Fatalf("seeding item %q: %v", name, err)
	}
	return item
}
