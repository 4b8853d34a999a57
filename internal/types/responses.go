package types

import "time"

// ------------------------------
// Response Types
// ------------------------------

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	User      User      `json:"user"`
}

// Page wraps one page of a list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
