package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/campusfound/campusfound/internal/model"
)

const claimColumns = `c.id, c.item_id, c.student_id, c.proof_of_ownership, c.status,
	        c.rationale, c.admin_id, c.date_claimed, c.decided_at,
	        i.name AS item_name, i.description AS item_description,
	        s.name AS claimant_name, a.name AS admin_name`

const claimJoins = `FROM claims c
	 JOIN items i ON i.id = c.item_id
	 JOIN users s ON s.id = c.student_id
	 LEFT JOIN users a ON a.id = c.admin_id`

// CreateClaim submits an ownership claim for an available item. The claim
// starts pending with no rationale and no deciding admin. The INSERT is
// guarded on the item still being available, so a claim cannot slip in next
// to a concurrent approval.
func CreateClaim(ctx context.Context, db *sql.DB, itemID, studentID int64, proof string) (*model.Claim, error) {
	if strings.TrimSpace(proof) == "" {
		return nil, fmt.Errorf("%w: proof of ownership is required", ErrInvalid)
	}

	var status string
	err := db.QueryRowContext(ctx, `SELECT status FROM items WHERE id = ?`, itemID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("checking item status: %w", err)
	}
	if status != model.ItemStatusAvailable {
		return nil, fmt.Errorf("%w: item %d is not available for claims", ErrConflict, itemID)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, student_id, proof_of_ownership)
		 SELECT ?, ?, ? FROM items WHERE id = ? AND status = ?`,
		itemID, studentID, proof, itemID, model.ItemStatusAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// The item was claimed (or deleted) between the check and the insert.
		return nil, fmt.Errorf("%w: item %d is not available for claims", ErrConflict, itemID)
	}

	claimID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

// GetClaim returns a claim by ID with joined display data, or nil if missing.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	row := db.QueryRowContext(ctx, `SELECT `+claimColumns+` `+claimJoins+` WHERE c.id = ?`, id)
	claim, err := scanClaim(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return claim, nil
}

// DecideClaim applies an admin decision to a pending claim. This is the one
// transition in the claim lifecycle and runs as a single transaction:
//
//   - approve: the claim becomes approved, the item becomes claimed, and
//     every other pending claim on the item is rejected with the cascade
//     rationale, recorded against the reserved system principal.
//   - reject: the claim becomes rejected; the item stays available.
//
// The conditional UPDATE on status = pending is both the transaction's first
// write and the lost-race guard: when two decisions race, the loser's update
// matches zero rows and it gets ErrConflict.
func DecideClaim(ctx context.Context, db *sql.DB, claimID, adminID int64, status, rationale string) (*model.Claim, error) {
	if status != model.ClaimStatusApproved && status != model.ClaimStatusRejected {
		return nil, fmt.Errorf("%w: decision must be %q or %q", ErrInvalid, model.ClaimStatusApproved, model.ClaimStatusRejected)
	}
	if strings.TrimSpace(rationale) == "" {
		return nil, fmt.Errorf("%w: decision rationale is required", ErrInvalid)
	}
	if adminID <= 0 {
		return nil, fmt.Errorf("%w: deciding admin is required", ErrInvalid)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, rationale = ?, admin_id = ?, decided_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		status, rationale, adminID, claimID, model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("updating claim: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Distinguish a missing claim from one already decided.
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM claims WHERE id = ?`, claimID).Scan(&current)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: claim %d", ErrNotFound, claimID)
		}
		if err != nil {
			return nil, fmt.Errorf("checking claim status: %w", err)
		}
		return nil, fmt.Errorf("%w: claim %d has already been %s", ErrConflict, claimID, current)
	}

	if status == model.ClaimStatusApproved {
		var itemID int64
		if err := tx.QueryRowContext(ctx, `SELECT item_id FROM claims WHERE id = ?`, claimID).Scan(&itemID); err != nil {
			return nil, fmt.Errorf("looking up claimed item: %w", err)
		}

		if err := setItemStatus(ctx, tx, itemID, model.ItemStatusClaimed); err != nil {
			return nil, err
		}

		systemID, err := ensureSystemUser(ctx, tx)
		if err != nil {
			return nil, err
		}

		// Cascade: reject every other pending claim on the item so at most
		// one approved claim can ever exist per item.
		_, err = tx.ExecContext(ctx,
			`UPDATE claims SET status = ?, rationale = ?, admin_id = ?, decided_at = CURRENT_TIMESTAMP
			 WHERE item_id = ? AND status = ?`,
			model.ClaimStatusRejected, model.CascadeRationale, systemID, itemID, model.ClaimStatusPending,
		)
		if err != nil {
			return nil, fmt.Errorf("rejecting competing claims: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing decision: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

// DeleteClaim removes a claim that has not been approved. Approved claims are
// immutable and undeletable.
func DeleteClaim(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM claims WHERE id = ? AND status != ?`, id, model.ClaimStatusApproved,
	)
	if err != nil {
		return fmt.Errorf("deleting claim: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}

	// Nothing deleted: either the claim is approved or it doesn't exist.
	var exists int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking claim: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: approved claims cannot be deleted", ErrConflict)
	}
	return fmt.Errorf("%w: claim %d", ErrNotFound, id)
}

// ListClaimsByStudent returns a student's claims, newest first.
func ListClaimsByStudent(ctx context.Context, db *sql.DB, studentID int64) ([]model.Claim, error) {
	return listClaims(ctx, db, `WHERE c.student_id = ? ORDER BY c.date_claimed DESC, c.id DESC`, studentID)
}

// ListClaimsByItem returns all claims referencing an item, oldest first.
func ListClaimsByItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.Claim, error) {
	return listClaims(ctx, db, `WHERE c.item_id = ? ORDER BY c.date_claimed ASC, c.id ASC`, itemID)
}

// ListPendingClaims returns the admin review queue, oldest first.
func ListPendingClaims(ctx context.Context, db *sql.DB) ([]model.Claim, error) {
	return listClaims(ctx, db, `WHERE c.status = ? ORDER BY c.date_claimed ASC, c.id ASC`, model.ClaimStatusPending)
}

// ListClaimsHistory returns decided claims, most recent decision first.
func ListClaimsHistory(ctx context.Context, db *sql.DB) ([]model.Claim, error) {
	return listClaims(ctx, db, `WHERE c.status != ? ORDER BY c.decided_at DESC, c.id DESC`, model.ClaimStatusPending)
}

// ListClaims returns every claim regardless of status, newest first.
func ListClaims(ctx context.Context, db *sql.DB) ([]model.Claim, error) {
	return listClaims(ctx, db, `ORDER BY c.date_claimed DESC, c.id DESC`)
}

func listClaims(ctx context.Context, db *sql.DB, tail string, args ...any) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+claimColumns+` `+claimJoins+` `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		claim, err := scanClaim(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *claim)
	}
	return claims, rows.Err()
}

func scanClaim(scan func(...any) error) (*model.Claim, error) {
	c := &model.Claim{}
	var rationale, itemDescription, adminName sql.NullString
	err := scan(&c.ID, &c.ItemID, &c.StudentID, &c.Proof, &c.Status,
		&rationale, &c.AdminID, &c.DateClaimed, &c.DecidedAt,
		&c.ItemName, &itemDescription, &c.ClaimantName, &adminName)
	if err != nil {
		return nil, err
	}
	c.Rationale = rationale.String
	c.ItemDescription = itemDescription.String
	c.AdminName = adminName.String
	return c, nil
}

// ensureSystemUser returns the id of the reserved system principal, creating
// it inside the transaction on first use. Its password hash is unusable, so
// it can never authenticate.
func ensureSystemUser(ctx context.Context, tx *sql.Tx) (int64, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, name, password_hash, role) VALUES (?, ?, '*', ?)`,
		model.SystemUsername, "System", model.RoleAdmin,
	)
	if err != nil {
		return 0, fmt.Errorf("creating system user: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = ? AND deleted_at IS NULL`, model.SystemUsername,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("looking up system user: %w", err)
	}
	return id, nil
}
