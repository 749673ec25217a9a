package models

import (
	"strings"
	"unicode/utf8"
)

// Role distinguishes teachers from students.
type Role string

const (
	// RoleAdmin is a teacher or instructor.
	RoleAdmin Role = "admin"
	// RoleStudent is a learner.
	RoleStudent Role = "student"
)

// DefaultPassword is accepted for accounts persisted without one.
const DefaultPassword = "123456789"

// User is an account in the tracker. Older snapshots may carry any of the
// legacy name fields instead of DisplayName.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Name        string `json:"name,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        Role   `json:"role"`
	Password    string `json:"password,omitempty"`
	Extra       Extra  `json:"-"`
}

type userFields User

// UnmarshalJSON keeps undeclared fields in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	var fields userFields
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	*u = User(fields)
	u.Extra = extra
	return nil
}

// MarshalJSON writes Extra back next to the declared fields.
func (u User) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(userFields(u), u.Extra)
}

// Clone copies Extra.
func (u User) Clone() User {
	u.Extra = u.Extra.Clone()
	return u
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStudent reports whether the user has the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// CheckPassword is a convenience gate, not a security boundary.
func (u User) CheckPassword(candidate string) bool {
	expected := u.Password
	if expected == "" {
		expected = DefaultPassword
	}
	return candidate == expected
}

// ResolveDisplayName picks the first populated name field.
func ResolveDisplayName(u User) string {
	for _, candidate := range []string{u.DisplayName, u.Name, u.FullName, u.Username, u.Email, u.ID} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return "User"
}

// Initials returns up to two upper-case initials of the display name.
func Initials(u User) string {
	var b strings.Builder
	for _, part := range strings.Fields(ResolveDisplayName(u)) {
		if utf8.RuneCountInString(b.String()) >= 2 {
			break
		}
		first, _ := utf8.DecodeRuneInString(part)
		b.WriteString(strings.ToUpper(string(first)))
	}
	return b.String()
}

// FindUser returns the user with the given id.
func FindUser(users []User, id string) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
