package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/camptrades/apiserver/types"
)

// ItemRepository handles persistence for marketplace listings.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, title, description, image, price, category, condition, seller_id, seller_name, listed_date`

// ListAvailable returns listings without a completed buy transaction,
// newest first.
func (r *ItemRepository) ListAvailable(ctx context.Context) ([]types.Item, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id NOT IN (
			SELECT item_id FROM transactions WHERE type = 'buy' AND item_id IS NOT NULL
		)
		ORDER BY listed_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []types.Item
	for rows.Next() {
		var item types.Item
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Image,
			&item.Price,
			&item.Category,
			&item.Condition,
			&item.SellerID,
			&item.SellerName,
			&item.ListedDate,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Get(ctx context.Context, id string) (types.Item, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1`
	var item types.Item
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Image,
		&item.Price,
		&item.Category,
		&item.Condition,
		&item.SellerID,
		&item.SellerName,
		&item.ListedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, ErrNotFound
		}
		return types.Item{}, err
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item types.Item) (types.Item, error) {
	if item.ListedDate.IsZero() {
		item.ListedDate = time.Now().UTC()
	}

	const query = `
		INSERT INTO items (id, title, description, image, price, category, condition, seller_id, seller_name, listed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.Title,
		item.Description,
		item.Image,
		item.Price,
		item.Category,
		item.Condition,
		item.SellerID,
		item.SellerName,
		item.ListedDate,
	); err != nil {
		return types.Item{}, err
	}
	return item, nil
}

// Remove deletes a listing, but only when the requester is its seller.
// An unknown item and someone else's item are both reported as
// ErrNotFound so ownership is not disclosed.
func (r *ItemRepository) Remove(ctx context.Context, itemID, sellerID string) error {
	const query = `DELETE FROM items WHERE id = $1 AND seller_id = $2`
	result, err := r.db.ExecContext(ctx, query, itemID, sellerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
