package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campusfound/campusfound/internal/model"
)

// CreateCategory creates a category, ignoring duplicates by name.
func CreateCategory(ctx context.Context, db *sql.DB, name string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name,
	)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

// CreateLocation creates a location, ignoring duplicates by name.
func CreateLocation(ctx context.Context, db *sql.DB, name string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO locations (name) VALUES (?)`, name,
	)
	if err != nil {
		return fmt.Errorf("creating location: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListLocations returns all locations ordered by name.
func ListLocations(ctx context.Context, db *sql.DB) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// SeedReferenceData inserts the default categories and locations if they are
// not present. Safe to call on every startup.
func SeedReferenceData(ctx context.Context, db *sql.DB) error {
	categories := []string{"Electronics", "Clothing", "Books", "Accessories", "ID Cards", "Other"}
	locations := []string{"Library", "Cafeteria", "Gym", "Lecture Hall", "Dormitory", "Other"}

	for _, name := range categories {
		if err := CreateCategory(ctx, db, name); err != nil {
			return err
		}
	}
	for _, name := range locations {
		if err := CreateLocation(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}
