// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/repository"
)

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the request body for a partial user update.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse represents one page of users.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	TotalCount int            `json:"total_count"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts a repository page to UserListResponse.
func ToUserListResponse(page *repository.UserPage) *UserListResponse {
	users := make([]UserResponse, len(page.Users))
	for i, user := range page.Users {
		users[i] = *ToUserResponse(user)
	}
	return &UserListResponse{
		Users:      users,
		TotalCount: page.TotalCount,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
}
