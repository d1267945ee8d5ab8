// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered user account.
type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoredUser is the user representation persisted in the store.
// Timestamps are fixed-format strings (see TimestampLayout) so the
// store and callers can compare them lexically.
type StoredUser struct {
	ID           string `dynamodbav:"user_id"`
	Username     string `dynamodbav:"username"`
	Email        string `dynamodbav:"email"`
	FullName     string `dynamodbav:"full_name,omitempty"`
	IsActive     bool   `dynamodbav:"is_active"`
	PasswordHash string `dynamodbav:"password_hash"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
}

// ToUser converts the stored form back into the domain model.
// An unparseable timestamp becomes a zero time rather than failing the
// whole read; the record itself is still usable.
func (s *StoredUser) ToUser() *User {
	user := &User{
		ID:           s.ID,
		Username:     s.Username,
		Email:        s.Email,
		FullName:     s.FullName,
		IsActive:     s.IsActive,
		PasswordHash: s.PasswordHash,
	}
	if t, err := ParseTimestamp(s.CreatedAt); err == nil {
		user.CreatedAt = t
	}
	if t, err := ParseTimestamp(s.UpdatedAt); err == nil {
		user.UpdatedAt = t
	}
	return user
}

// ToStoredUser converts the domain model into its persisted form.
func (u *User) ToStoredUser() *StoredUser {
	return &StoredUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		IsActive:     u.IsActive,
		PasswordHash: u.PasswordHash,
		CreatedAt:    FormatTimestamp(u.CreatedAt),
		UpdatedAt:    FormatTimestamp(u.UpdatedAt),
	}
}
