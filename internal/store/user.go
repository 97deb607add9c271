package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/camptrades/apiserver/types"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, college_id, avatar, wallet_balance, password_hash`

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CollegeID,
		&user.Avatar,
		&user.WalletBalance,
		&user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Register creates the user together with their first session and the
// signup bonus ledger row. All three rows are written in one database
// transaction: a duplicate email leaves no trace behind.
func (r *UserRepository) Register(
	ctx context.Context,
	user types.User,
	session types.Session,
	signup types.Transaction,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertUser = `
		INSERT INTO users (id, name, email, password_hash, college_id, avatar, wallet_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(
		ctx,
		insertUser,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CollegeID,
		user.Avatar,
		user.WalletBalance,
		time.Now().UTC(),
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}

	const insertSession = `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertSession, session.Token, session.UserID, session.ExpiresAt); err != nil {
		return err
	}

	const insertSignup = `
		INSERT INTO transactions (id, type, amount, date, from_user_name, to_user_name, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(
		ctx,
		insertSignup,
		signup.ID,
		signup.Type,
		signup.Amount,
		signup.Date,
		signup.From,
		signup.To,
		signup.UserID,
	); err != nil {
		return err
	}

	return tx.Commit()
}
