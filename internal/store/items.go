package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/campusfound/campusfound/internal/model"
)

const itemColumns = `i.id, i.name, i.description, i.category_id, i.location_id,
	        i.date_found, i.reported_by, i.image_mime, i.status, i.created_at, i.updated_at,
	        c.name AS category_name, l.name AS location_name, u.name AS reporter_name`

const itemJoins = `FROM items i
	 JOIN categories c ON c.id = i.category_id
	 JOIN locations l ON l.id = i.location_id
	 JOIN users u ON u.id = i.reported_by`

// CreateItem records a found item. The item starts available for claims.
func CreateItem(ctx context.Context, db *sql.DB, name, description string, categoryID, locationID int64, dateFound time.Time, reportedBy int64) (*model.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalid)
	}
	if dateFound.IsZero() {
		dateFound = time.Now()
	}

	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, categoryID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking category: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: unknown category %d", ErrInvalid, categoryID)
	}

	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations WHERE id = ?`, locationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking location: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: unknown location %d", ErrInvalid, locationID)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, category_id, location_id, date_found, reported_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, description, categoryID, locationID, dateFound, reportedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with joined display names, or nil if missing.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var description, imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` `+itemJoins+` WHERE i.id = ?`, id,
	).Scan(&item.ID, &item.Name, &description, &item.CategoryID, &item.LocationID,
		&item.DateFound, &item.ReportedBy, &imageMime, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		&item.CategoryName, &item.LocationName, &item.ReporterName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	item.ImageMime = imageMime.String
	return item, nil
}

// ListItems returns items, newest report first, optionally filtered by a
// free-text search over name/description, by category, and by status.
func ListItems(ctx context.Context, db *sql.DB, search string, categoryID int64, status string) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` ` + itemJoins + ` WHERE 1=1`
	var args []any

	if search != "" {
		query += ` AND (i.name LIKE ? OR i.description LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if categoryID > 0 {
		query += ` AND i.category_id = ?`
		args = append(args, categoryID)
	}
	if status != "" {
		query += ` AND i.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description, imageMime sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &description, &item.CategoryID, &item.LocationID,
			&item.DateFound, &item.ReportedBy, &imageMime, &item.Status, &item.CreatedAt, &item.UpdatedAt,
			&item.CategoryName, &item.LocationName, &item.ReporterName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		item.ImageMime = imageMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteItem hard-deletes an item. Its claims are removed in the same
// statement through the ON DELETE CASCADE foreign key.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return nil
}

// setItemStatus transitions an item's status inside a decision transaction.
// This is the only write path that may mark an item claimed.
func setItemStatus(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	return nil
}

// SetItemImage sets an item's photo.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return nil
}

// GetItemImage returns an item's photo and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
