// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists indicates that the user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already registered")
	// ErrWrongPassword indicates the wrong password for the given user.
	ErrWrongPassword = errors.New("invalid email or password")
	// ErrPasswordMismatch indicates that password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Role restricts what a user may do with the catalog and the ledger.
type Role string

// Supported user roles.
const (
	RoleUser      Role = "USER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// User holds library member data.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	Gender         string    `json:"gender,omitempty"`
	Mobile         string    `json:"mobile,omitempty"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
	Gender         string `json:"gender"`
	Mobile         string `json:"mobile"`
	Role           Role   `json:"role"`
}

// UserWithoutPassword is User data excluding password data.
type UserWithoutPassword struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender,omitempty"`
	Mobile    string    `json:"mobile,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
