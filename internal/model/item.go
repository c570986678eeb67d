package model

import "time"

// Item represents a found item reported by a student, tracked until it is
// claimed or removed by an admin.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  int64     `json:"category_id"`
	LocationID  int64     `json:"location_id"`
	DateFound   time.Time `json:"date_found"`
	ReportedBy  int64     `json:"reported_by"`
	ImageMime   string    `json:"image_mime,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
	ReporterName string `json:"reporter_name,omitempty"`
}

// Item statuses. An item becomes claimed only when a claim against it is
// approved; there is no path back to available.
const (
	ItemStatusAvailable = "available"
	ItemStatusClaimed   = "claimed"
)
