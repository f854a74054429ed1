package domain

import "time"

// Role determines a user's visibility scope over the ticket collection.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleTechnician Role = "TECHNICIAN"
)

// ValidRole reports whether the role belongs to the closed set.
func ValidRole(r Role) bool {
	return r == RoleCustomer || r == RoleTechnician
}

// User is the domain model for authenticated callers.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
