package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/camptrades/apiserver/internal/store"
	"github.com/camptrades/apiserver/types"
)

type fakeUserRepo struct {
	byID        map[string]types.User
	byEmail     map[string]types.User
	registerErr error

	registeredUser    types.User
	registeredSession types.Session
	registeredSignup  types.Transaction
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]types.User),
		byEmail: make(map[string]types.User),
	}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Register(ctx context.Context, user types.User, session types.Session, signup types.Transaction) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registeredUser = user
	f.registeredSession = session
	f.registeredSignup = signup
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]types.Session
	getErr   error
	deleted  []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]types.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session types.Session) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, token string) (types.Session, error) {
	if f.getErr != nil {
		return types.Session{}, f.getErr
	}
	if session, ok := f.sessions[token]; ok {
		return session, nil
	}
	return types.Session{}, store.ErrNotFound
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	f.deleted = append(f.deleted, token)
	return nil
}

func newTestAuthService(users *fakeUserRepo, sessions *fakeSessionRepo, now time.Time) *AuthService {
	svc := NewAuthService(users, sessions)
	svc.now = func() time.Time { return now }
	return svc
}

func TestResolve_UnknownToken(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeSessionRepo(), time.Now())

	_, err := svc.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolve_ExpiredSessionIsPurged(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	now := time.Now()

	users.byID["user_1"] = types.User{ID: "user_1", Name: "Bea"}
	sessions.sessions["stale"] = types.Session{
		Token:     "stale",
		UserID:    "user_1",
		ExpiresAt: now.Add(-time.Minute),
	}

	svc := newTestAuthService(users, sessions, now)
	_, err := svc.Resolve(context.Background(), "stale")

	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.NotContains(t, sessions.sessions, "stale")
	assert.Equal(t, []string{"stale"}, sessions.deleted)
}

func TestResolve_ValidSessionOmitsPasswordHash(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	now := time.Now()

	users.byID["user_1"] = types.User{
		ID:            "user_1",
		Name:          "Bea",
		WalletBalance: 500,
		PasswordHash:  "secret-hash",
	}
	sessions.sessions["good"] = types.Session{
		Token:     "good",
		UserID:    "user_1",
		ExpiresAt: now.Add(time.Hour),
	}

	svc := newTestAuthService(users, sessions, now)
	user, err := svc.Resolve(context.Background(), "good")

	require.NoError(t, err)
	assert.Equal(t, "user_1", user.ID)
	assert.Equal(t, 500, user.WalletBalance)
	assert.Empty(t, user.PasswordHash)
}

func TestResolve_StoreFailureIsNotAuthenticated(t *testing.T) {
	sessions := newFakeSessionRepo()
	sessions.getErr = errors.New("connection refused")

	svc := newTestAuthService(newFakeUserRepo(), sessions, time.Now())
	_, err := svc.Resolve(context.Background(), "any")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestRegister_CreatesBonusSessionAndSignupRow(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	now := time.Now()

	svc := newTestAuthService(users, sessions, now)
	token, user, err := svc.Register(context.Background(), "Bea", "bea@campus.edu", "hunter22", "c1")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, SignupBonus, user.WalletBalance)
	assert.Empty(t, user.PasswordHash)

	require.NotEmpty(t, users.registeredUser.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(users.registeredUser.PasswordHash), []byte("hunter22")))

	assert.Equal(t, token, users.registeredSession.Token)
	assert.WithinDuration(t, now.UTC().Add(SessionTTL), users.registeredSession.ExpiresAt, time.Second)

	signup := users.registeredSignup
	assert.Equal(t, types.TransactionSignup, signup.Type)
	assert.Equal(t, SignupBonus, signup.Amount)
	assert.Equal(t, "CampTrades", signup.From)
	assert.Equal(t, "Bea", signup.To)
	assert.Equal(t, user.ID, signup.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	users.registerErr = store.ErrDuplicateEmail

	svc := newTestAuthService(users, newFakeSessionRepo(), time.Now())
	_, _, err := svc.Register(context.Background(), "Bea", "bea@campus.edu", "hunter22", "c1")

	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users.byEmail["bea@campus.edu"] = types.User{
		ID:           "user_1",
		Email:        "bea@campus.edu",
		PasswordHash: string(hash),
	}

	svc := newTestAuthService(users, newFakeSessionRepo(), time.Now())
	_, _, err = svc.Login(context.Background(), "bea@campus.edu", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_IssuesFreshSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	now := time.Now()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users.byEmail["bea@campus.edu"] = types.User{
		ID:           "user_1",
		Email:        "bea@campus.edu",
		PasswordHash: string(hash),
	}

	svc := newTestAuthService(users, sessions, now)
	token, user, err := svc.Login(context.Background(), "bea@campus.edu", "hunter22")
	require.NoError(t, err)

	assert.Empty(t, user.PasswordHash)
	session, ok := sessions.sessions[token]
	require.True(t, ok)
	assert.Equal(t, "user_1", session.UserID)
	assert.WithinDuration(t, now.UTC().Add(SessionTTL), session.ExpiresAt, time.Second)
}

func TestLogout_Idempotent(t *testing.T) {
	sessions := newFakeSessionRepo()
	svc := newTestAuthService(newFakeUserRepo(), sessions, time.Now())

	require.NoError(t, svc.Logout(context.Background(), "absent"))
	require.NoError(t, svc.Logout(context.Background(), "absent"))
}
