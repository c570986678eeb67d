package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateIdempotent(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)

	// The DSN pragmas must hold on every connection, or a claim referencing a
	// missing item would slip through.
	_, err := database.Exec(
		`INSERT INTO claims (item_id, student_id, proof_of_ownership) VALUES (9999, 9999, 'x')`,
	)
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}
