package types

// User represents a marketplace account.
// Balances are integer CampusCoin amounts.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address. Unique across accounts.
	Email string `json:"email" db:"email"`

	// CollegeID identifies the campus the user belongs to.
	CollegeID string `json:"collegeId" db:"college_id"`

	// Avatar is a URL to the user's profile image.
	Avatar string `json:"avatar" db:"avatar"`

	// WalletBalance is the user's current CampusCoin balance.
	// Only registration and the purchase engine mutate it.
	WalletBalance int `json:"walletBalance" db:"wallet_balance"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`
}
