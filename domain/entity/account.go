package entity

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the credential record for one login identity. PasswordHash and
// RefreshToken never leave the server.
type Account struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Photo          string     `json:"photo,omitempty"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	RefreshToken   string     `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoggedInAt *time.Time `json:"lastLoggedInAt,omitempty"`
}

func NewAccount(email, name, photo, passwordHash string, now time.Time) *Account {
	return &Account{
		Email:        email,
		Name:         name,
		Photo:        photo,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
	}
}

func (a *Account) HasActiveSession() bool {
	return a.RefreshToken != ""
}

// Identity is the minimal summary handed back to clients after login.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a *Account) Identity() Identity {
	return Identity{
		ID:    a.ID,
		Email: a.Email,
		Role:  a.Role,
	}
}
