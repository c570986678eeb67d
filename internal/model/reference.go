package model

// Category is a fixed item category used for browsing and filtering.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Location is a campus location where items are found.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
