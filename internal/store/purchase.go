package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/camptrades/apiserver/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres error codes that indicate the purchase lost a race rather
// than failed outright. All of them are safe to retry.
const (
	pqLockNotAvailable     = "55P03"
	pqDeadlockDetected     = "40P01"
	pqSerializationFailure = "40001"
)

// Bounded wait for the item row lock. A purchase that cannot acquire
// it in time fails with ErrContended instead of blocking.
const lockTimeout = `SET LOCAL lock_timeout = '3s'`

// PurchaseRepository executes sales as a single atomic unit of work.
// It is the only component that moves wallet balances or writes buy
// and sell ledger rows.
type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Execute runs the purchase of itemID by buyerID in one database
// transaction:
//
//  1. Lock the item row joined with the seller's balance row.
//  2. Reject if a buy ledger row already references the item.
//  3. Reject a self-purchase.
//  4. Lock and re-read the buyer's balance; reject if below price.
//     The balance the caller authenticated with is stale by now.
//  5. Move price from buyer to seller.
//  6. Insert the buyer and seller ledger rows as one statement,
//     sharing a purchase id and timestamp.
//
// Either every write commits or none does. The partial unique index
// on buy rows backstops step 2 even if two transactions interleave in
// a way the locks did not serialize.
func (r *PurchaseRepository) Execute(ctx context.Context, buyerID, itemID string) (types.User, types.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, types.Transaction{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, lockTimeout); err != nil {
		return types.User{}, types.Transaction{}, err
	}

	const lockItem = `
		SELECT i.id, i.title, i.price, i.seller_id, i.seller_name, u.wallet_balance
		FROM items i
		JOIN users u ON u.id = i.seller_id
		WHERE i.id = $1
		FOR UPDATE`
	var (
		item          types.Item
		sellerBalance int
	)
	err = tx.QueryRowContext(ctx, lockItem, itemID).Scan(
		&item.ID,
		&item.Title,
		&item.Price,
		&item.SellerID,
		&item.SellerName,
		&sellerBalance,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, types.Transaction{}, ErrNotFound
		}
		return types.User{}, types.Transaction{}, contendedOr(err)
	}

	const soldCheck = `
		SELECT EXISTS (
			SELECT 1 FROM transactions WHERE item_id = $1 AND type = 'buy'
		)`
	var sold bool
	if err := tx.QueryRowContext(ctx, soldCheck, itemID).Scan(&sold); err != nil {
		return types.User{}, types.Transaction{}, err
	}
	if sold {
		return types.User{}, types.Transaction{}, ErrAlreadySold
	}

	if item.SellerID == buyerID {
		return types.User{}, types.Transaction{}, ErrOwnItem
	}

	const lockBuyer = `
		SELECT id, name, email, college_id, avatar, wallet_balance
		FROM users
		WHERE id = $1
		FOR UPDATE`
	var buyer types.User
	err = tx.QueryRowContext(ctx, lockBuyer, buyerID).Scan(
		&buyer.ID,
		&buyer.Name,
		&buyer.Email,
		&buyer.CollegeID,
		&buyer.Avatar,
		&buyer.WalletBalance,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, types.Transaction{}, ErrNotFound
		}
		return types.User{}, types.Transaction{}, contendedOr(err)
	}

	if buyer.WalletBalance < item.Price {
		return types.User{}, types.Transaction{}, ErrInsufficientFunds
	}

	const updateBalance = `UPDATE users SET wallet_balance = $1 WHERE id = $2`
	buyer.WalletBalance -= item.Price
	if _, err := tx.ExecContext(ctx, updateBalance, buyer.WalletBalance, buyer.ID); err != nil {
		return types.User{}, types.Transaction{}, err
	}
	if _, err := tx.ExecContext(ctx, updateBalance, sellerBalance+item.Price, item.SellerID); err != nil {
		return types.User{}, types.Transaction{}, err
	}

	event := types.PurchaseEvent{
		ID:         "txn_" + uuid.NewString(),
		ItemID:     item.ID,
		ItemTitle:  item.Title,
		Price:      item.Price,
		BuyerID:    buyer.ID,
		BuyerName:  buyer.Name,
		SellerID:   item.SellerID,
		SellerName: item.SellerName,
		OccurredAt: time.Now().UTC(),
	}
	buyerRow := event.BuyerRow()
	sellerRow := event.SellerRow()

	const insertPair = `
		INSERT INTO transactions (id, type, item_id, item_name, amount, date, from_user_name, to_user_name, user_id, purchase_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10),
		       ($11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	if _, err := tx.ExecContext(
		ctx,
		insertPair,
		buyerRow.ID, buyerRow.Type, buyerRow.ItemID, buyerRow.ItemName, buyerRow.Amount,
		buyerRow.Date, buyerRow.From, buyerRow.To, buyerRow.UserID, buyerRow.PurchaseID,
		sellerRow.ID, sellerRow.Type, sellerRow.ItemID, sellerRow.ItemName, sellerRow.Amount,
		sellerRow.Date, sellerRow.From, sellerRow.To, sellerRow.UserID, sellerRow.PurchaseID,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return types.User{}, types.Transaction{}, ErrAlreadySold
		}
		return types.User{}, types.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, types.Transaction{}, contendedOr(err)
	}

	return buyer, buyerRow, nil
}

// contendedOr maps lock and serialization failures to ErrContended
// and passes everything else through.
func contendedOr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqLockNotAvailable, pqDeadlockDetected, pqSerializationFailure:
			return ErrContended
		}
	}
	return err
}
