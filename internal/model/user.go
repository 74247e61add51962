// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account that can authenticate against the API.
//
// Users are created once at registration and only ever read afterwards —
// at login (by email) and on every authenticated request (by ID, to confirm
// the token's subject still exists).
//
// PasswordHash is tagged `json:"-"` so it can never leak into a response,
// no matter which handler serializes the struct.
type User struct {
	ID           string    `json:"id"`
	Nombre       string    `json:"nombre"`
	Email        string    `json:"email"` // unique across all users
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
