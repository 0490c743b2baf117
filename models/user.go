package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleProvider UserRole = "PROVIDER"
	RoleAdmin    UserRole = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// User is owned by the identity collaborator; this service only reads role and identity
// except for the profile fields a user may edit about themselves.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"not null"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash      string    `json:"-" gorm:"not null"`
	EmailVerified     bool      `json:"email_verified" gorm:"not null;default:false"`
	VerificationToken *string   `json:"-" gorm:"uniqueIndex"`
	Role              UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
