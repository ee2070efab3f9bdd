// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finvest-api/internal/auth"
	"finvest-api/internal/domain"
	"finvest-api/internal/notify"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"
	"finvest-api/pkg/db"

	"github.com/google/uuid"
)

// UserService defines registration, login and authentication logic.
type UserService interface {
	// Register creates a user together with their wallet.
	Register(ctx context.Context, email, fullName, password string) (*domain.User, error)
	// Login verifies credentials and issues an opaque bearer token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Logout revokes a bearer token.
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to a principal.
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
}

// userService implements the UserService interface.
type userService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	walletRepo  repository.WalletRepository
	sessionRepo repository.SessionRepository
	mailer      notify.Mailer
	sessionTTL  time.Duration
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	sessionRepo repository.SessionRepository,
	mailer notify.Mailer,
	sessionTTL time.Duration,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) UserService {
	return &userService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		sessionRepo: sessionRepo,
		mailer:      mailer,
		sessionTTL:  sessionTTL,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
	}
}

// Register creates a user and their wallet in one transaction.
func (s *userService) Register(ctx context.Context, email, fullName, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") || fullName == "" || len(password) < 8 {
		return nil, util.ErrInvalidInput
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	user := domain.NewUser(email, fullName, auth.HashPassword(password, salt), salt)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("register: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("register: transaction controller does not implement DBExecutor")
	}

	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			return nil, util.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("register: failed to create user: %w", err)
	}

	wallet := domain.NewWallet(user.ID)
	if err := s.walletRepo.CreateWallet(ctx, txExecutor, wallet); err != nil {
		return nil, fmt.Errorf("register: failed to create wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("register: failed to commit transaction: %w", err)
	}

	s.mailer.Enqueue(notify.Email{
		To:      user.Email,
		Subject: "Welcome",
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready.</p>", user.FullName),
	})
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return "", nil, util.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("login: failed to get user: %w", err)
	}
	if !auth.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return "", nil, util.ErrUnauthorized
	}

	token := uuid.NewString()
	session := domain.NewSession(token, user.ID, time.Now().UTC().Add(s.sessionTTL))
	if err := s.sessionRepo.CreateSession(ctx, s.dbExecutor, session); err != nil {
		return "", nil, fmt.Errorf("login: failed to create session: %w", err)
	}
	return token, user, nil
}

// Logout revokes the session token.
func (s *userService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.DeleteSession(ctx, s.dbExecutor, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to a principal.
func (s *userService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	session, err := s.sessionRepo.GetSessionByToken(ctx, s.dbExecutor, token)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return auth.Principal{}, util.ErrUnauthorized
		}
		return auth.Principal{}, fmt.Errorf("authenticate: failed to get session: %w", err)
	}
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, session.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return auth.Principal{}, util.ErrUnauthorized
		}
		return auth.Principal{}, fmt.Errorf("authenticate: failed to get user: %w", err)
	}
	return auth.Principal{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// GetProfile retrieves a user by ID.
func (s *userService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	return s.userRepo.ListUsers(ctx, s.dbExecutor, limit, offset)
}
