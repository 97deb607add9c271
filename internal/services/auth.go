package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/camptrades/apiserver/internal/store"
	"github.com/camptrades/apiserver/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionTTL is how long a bearer token stays valid after issuance.
	SessionTTL = 7 * 24 * time.Hour

	// SignupBonus is the CampusCoin balance credited at registration.
	SignupBonus = 500

	// signupCounterparty names the platform side of the signup
	// bonus ledger row.
	signupCounterparty = "CampTrades"
)

var (
	// ErrUnauthenticated is returned when a bearer token is missing,
	// unknown, or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentials is returned on login with an unknown
	// email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Register(ctx context.Context, user types.User, session types.Session, signup types.Transaction) error
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) error
	Get(ctx context.Context, token string) (types.Session, error)
	Delete(ctx context.Context, token string) error
}

// AuthService resolves bearer tokens to users and owns the
// registration, login and logout state transitions.
type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	now      func() time.Time
}

func NewAuthService(users UserRepository, sessions SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
}

// Resolve maps a bearer token to the current user. An unknown token,
// an expired session, or a dangling user reference all yield
// ErrUnauthenticated; store failures surface as-is and are never
// treated as authenticated. Expired sessions are purged on discovery.
func (s *AuthService) Resolve(ctx context.Context, token string) (types.User, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthenticated
		}
		return types.User{}, err
	}

	if session.Expired(s.now()) {
		// Best-effort cleanup; the session is invalid either way.
		_ = s.sessions.Delete(ctx, token)
		return types.User{}, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthenticated
		}
		return types.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Register creates a new account with the signup bonus, a first
// session, and the signup ledger row, all atomically. A duplicate
// email fails with store.ErrDuplicateEmail and creates nothing.
func (s *AuthService) Register(ctx context.Context, name, email, password, collegeID string) (string, types.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", types.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := types.User{
		ID:            "user_" + uuid.NewString(),
		Name:          name,
		Email:         email,
		CollegeID:     collegeID,
		Avatar:        fmt.Sprintf("https://picsum.photos/seed/%s/100/100", url.PathEscape(name)),
		WalletBalance: SignupBonus,
		PasswordHash:  string(hash),
	}
	session := types.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(SessionTTL),
	}
	signup := types.Transaction{
		ID:     "txn_" + uuid.NewString(),
		Type:   types.TransactionSignup,
		Amount: SignupBonus,
		Date:   now,
		From:   signupCounterparty,
		To:     user.Name,
		UserID: user.ID,
	}

	if err := s.users.Register(ctx, user, session, signup); err != nil {
		return "", types.User{}, err
	}

	user.PasswordHash = ""
	return session.Token, user, nil
}

// Login verifies credentials and issues a fresh session.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.User{}, ErrInvalidCredentials
		}
		return "", types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", types.User{}, ErrInvalidCredentials
	}

	session := types.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().UTC().Add(SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", types.User{}, err
	}

	user.PasswordHash = ""
	return session.Token, user, nil
}

// Logout deletes the session for the presented token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
