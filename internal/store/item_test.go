package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRemove_OnlySellerMayRemove(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewItemRepository(db)

	mock.ExpectExec("DELETE FROM items").
		WithArgs("item_1", "not_the_seller").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Remove(context.Background(), "item_1", "not_the_seller")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemListAvailable_ExcludesSoldNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewItemRepository(db)

	newer := time.Now().UTC()
	older := newer.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "image", "price",
		"category", "condition", "seller_id", "seller_name", "listed_date",
	}).
		AddRow("item_2", "Desk Lamp", "", "", 40, "Furniture", "Good", "s1", "Sam", newer).
		AddRow("item_1", "Physics Notes", "", "", 25, "Books", "Used", "s2", "Pat", older)
	mock.ExpectQuery("FROM items").WillReturnRows(rows)

	items, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item_2", items[0].ID)
	assert.True(t, items[0].ListedDate.After(items[1].ListedDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}
