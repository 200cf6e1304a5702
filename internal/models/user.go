// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	// RoleAdmin may manage clubs, events, requests and users.
	RoleAdmin Role = "admin"
	// RoleMember is the default role assigned at registration.
	RoleMember Role = "member"
)

// ParseRole converts a stored or user-supplied value into a Role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMember:
		return RoleMember, true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents an account in the club directory.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
