// internal/domain/user.go
package domain

import "time"

// User represents a registered user of the platform.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`         // Unique email, used for login
	FullName     string    `db:"full_name" json:"full_name"` // Display name
	PasswordHash string    `db:"password_hash" json:"-"`     // Never serialized
	PasswordSalt string    `db:"password_salt" json:"-"`     // Never serialized
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance with the given credentials.
func NewUser(email, fullName, passwordHash, passwordSalt string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UserView is the outward representation of a user. Fields are whitelisted
// explicitly so credential material can never leak through serialization.
type UserView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// View maps a User to its outward representation.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
