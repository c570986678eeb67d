package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campusfound/campusfound/internal/model"
)

// Stats summarizes the catalog and review queue for the admin dashboard.
type Stats struct {
	TotalItems    int `json:"total_items"`
	ClaimedItems  int `json:"total_claimed"`
	PendingClaims int `json:"pending_claims"`
}

// GetStats returns current catalog and claim-queue counts.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	s := &Stats{}

	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&s.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE status = ?`, model.ItemStatusClaimed,
	).Scan(&s.ClaimedItems)
	if err != nil {
		return nil, fmt.Errorf("counting claimed items: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE status = ?`, model.ClaimStatusPending,
	).Scan(&s.PendingClaims)
	if err != nil {
		return nil, fmt.Errorf("counting pending claims: %w", err)
	}

	return s, nil
}
