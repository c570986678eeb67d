package model

import "time"

// Claim represents a student's assertion of ownership over an item. A claim
// starts pending and is moved exactly once to approved or rejected, either by
// an admin decision or by the automatic rejection cascade when a competing
// claim is approved.
type Claim struct {
	ID          int64      `json:"id"`
	ItemID      int64      `json:"item_id"`
	StudentID   int64      `json:"student_id"`
	Proof       string     `json:"proof_of_ownership"`
	Status      string     `json:"status"`
	Rationale   string     `json:"rationale,omitempty"`
	AdminID     *int64     `json:"admin_id,omitempty"`
	DateClaimed time.Time  `json:"date_claimed"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`

	// Joined fields (not always populated).
	ItemName        string `json:"item_name,omitempty"`
	ItemDescription string `json:"item_description,omitempty"`
	ClaimantName    string `json:"claimant_name,omitempty"`
	AdminName       string `json:"admin_name,omitempty"`
}

// Claim statuses. Approved and rejected are terminal.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// Fixed texts used by the redaction policy and the rejection cascade.
const (
	// PendingDescriptionNotice replaces the item description in the
	// claimant-facing view while the claim is pending, so the stored text
	// cannot be parroted back as proof of ownership.
	PendingDescriptionNotice = "The item description is hidden while your claim is under review. " +
		"Describe the item from memory when providing proof of ownership."

	// PendingRationaleNotice is shown as the rationale while no decision
	// has been made.
	PendingRationaleNotice = "Your claim is still under review."

	// CascadeRationale is the stored rationale on claims rejected
	// automatically because an admin approved a competing claim.
	CascadeRationale = "An admin approved another claim for this item."
)

// ClaimView is the claimant-facing projection of a claim. It is assembled at
// read time; the stored claim and item are never mutated by redaction.
type ClaimView struct {
	ID              int64      `json:"id"`
	ItemID          int64      `json:"item_id"`
	ItemName        string     `json:"item_name"`
	ItemDescription string     `json:"item_description"`
	Proof           string     `json:"proof_of_ownership"`
	Status          string     `json:"status"`
	Rationale       string     `json:"rationale"`
	DateClaimed     time.Time  `json:"date_claimed"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

// ForClaimant builds the claimant-facing view of the claim, applying the
// redaction policy: while pending, the item description and rationale are
// replaced with fixed notices; once terminal, the stored values are shown
// verbatim.
func (c Claim) ForClaimant() ClaimView {
	v := ClaimView{
		ID:              c.ID,
		ItemID:          c.ItemID,
		ItemName:        c.ItemName,
		ItemDescription: c.ItemDescription,
		Proof:           c.Proof,
		Status:          c.Status,
		Rationale:       c.Rationale,
		DateClaimed:     c.DateClaimed,
		DecidedAt:       c.DecidedAt,
	}

	if c.Status == ClaimStatusPending {
		v.ItemDescription = PendingDescriptionNotice
		v.Rationale = PendingRationaleNotice
	}

	return v
}
