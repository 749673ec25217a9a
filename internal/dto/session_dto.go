package dto

import "github.com/noah-isme/assignment-tracker/internal/models"

// SignupRequest creates an account and signs it in.
type SignupRequest struct {
	FullName string `json:"fullName" validate:"max=120"`
	Username string `json:"username" validate:"max=60"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"omitempty,oneof=admin student"`
}

// LoginRequest signs in an existing account.
type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password"`
}

// PrefsUpdateRequest merges into the current user's preferences.
type PrefsUpdateRequest struct {
	Dark   *bool   `json:"dark"`
	Layout *string `json:"layout" validate:"omitempty,oneof=grid list"`
	SortBy *string `json:"sortBy" validate:"omitempty,oneof=due dueDate title"`
}

// GroupCreateRequest creates a group inside a course.
type GroupCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	LeaderID string `json:"leaderId" validate:"required"`
}

// UserView is the public projection of an account.
type UserView struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Initials    string      `json:"initials"`
	Role        models.Role `json:"role"`
}

// SessionView describes who is signed in.
type SessionView struct {
	User  *UserView    `json:"user"`
	Prefs models.Prefs `json:"prefs"`
	Users []UserView   `json:"users"`
}

// NewUserView converts a model into a DTO.
func NewUserView(user models.User) UserView {
	return UserView{
		ID:          user.ID,
		DisplayName: models.ResolveDisplayName(user),
		Initials:    models.Initials(user),
		Role:        user.Role,
	}
}

// NewUserViewSlice converts a slice of models into DTOs.
func NewUserViewSlice(users []models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, NewUserView(user))
	}
	return views
}
