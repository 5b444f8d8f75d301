package models

// Page is one slice of a paginated collection.
// Limit 0 means the page holds every item.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
