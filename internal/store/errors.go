package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that
	// already has an account.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrAlreadySold is returned when a purchase targets an item
	// that already has a completed buy transaction.
	ErrAlreadySold = errors.New("item already sold")

	// ErrOwnItem is returned when a buyer attempts to purchase
	// their own listing.
	ErrOwnItem = errors.New("cannot buy own item")

	// ErrInsufficientFunds is returned when the buyer's balance,
	// read inside the purchase transaction, is below the price.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrContended is returned when a purchase loses a lock or
	// serialization conflict. The caller may retry.
	ErrContended = errors.New("purchase contended, retry")
)
