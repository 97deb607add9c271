package store

import (
	"context"
	"database/sql"

	"github.com/camptrades/apiserver/types"
)

// LedgerRepository is the read side of the transaction ledger.
// Writes happen only inside registration and the purchase engine.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ListForUser returns the user's ledger rows, newest first.
func (r *LedgerRepository) ListForUser(ctx context.Context, userID string) ([]types.Transaction, error) {
	const query = `
		SELECT id, type, COALESCE(item_id, ''), COALESCE(item_name, ''), amount, date,
		       from_user_name, to_user_name, user_id, COALESCE(purchase_id, '')
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []types.Transaction
	for rows.Next() {
		var txn types.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.Type,
			&txn.ItemID,
			&txn.ItemName,
			&txn.Amount,
			&txn.Date,
			&txn.From,
			&txn.To,
			&txn.UserID,
			&txn.PurchaseID,
		); err != nil {
			return nil, err
		}
		history = append(history, txn)
	}
	return history, rows.Err()
}
