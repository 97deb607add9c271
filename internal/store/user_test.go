package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camptrades/apiserver/types"
)

func registrationFixtures() (types.User, types.Session, types.Transaction) {
	now := time.Now().UTC()
	user := types.User{
		ID:            "user_1",
		Name:          "Bea Buyer",
		Email:         "bea@campus.edu",
		CollegeID:     "c1",
		Avatar:        "http://img/bea",
		WalletBalance: 500,
		PasswordHash:  "hash",
	}
	session := types.Session{Token: "tok", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	signup := types.Transaction{
		ID:     "txn_1",
		Type:   types.TransactionSignup,
		Amount: 500,
		Date:   now,
		From:   "CampTrades",
		To:     user.Name,
		UserID: user.ID,
	}
	return user, session, signup
}

func TestUserRegister_WritesUserSessionAndSignupRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	user, session, signup := registrationFixtures()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.CollegeID,
			user.Avatar, user.WalletBalance, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(session.Token, session.UserID, session.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(signup.ID, signup.Type, signup.Amount, signup.Date, signup.From, signup.To, signup.UserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Register(context.Background(), user, session, signup))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRegister_DuplicateEmailLeavesNoTrace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	user, session, signup := registrationFixtures()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	mock.ExpectRollback()

	err = repo.Register(context.Background(), user, session, signup)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users").
		WithArgs("nobody@campus.edu").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByEmail(context.Background(), "nobody@campus.edu")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
