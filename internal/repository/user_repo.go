// internal/repository/user_repo.go
package repository

import (
	"context"

	"finvest-api/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user to the database using the provided DBExecutor.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID using the provided DBExecutor.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByEmail retrieves a user by their email using the provided DBExecutor.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, q DBExecutor, limit, offset int) ([]domain.User, int64, error)
}

// SessionRepository defines the interface for bearer-token sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, q DBExecutor, session *domain.Session) error
	// GetSessionByToken returns the session for an unexpired token.
	GetSessionByToken(ctx context.Context, q DBExecutor, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, q DBExecutor, token string) error
}
