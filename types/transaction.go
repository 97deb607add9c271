package types

import "time"

// Transaction types recorded in the ledger.
const (
	TransactionBuy      = "buy"
	TransactionSell     = "sell"
	TransactionReward   = "reward"
	TransactionReferral = "referral"
	TransactionSignup   = "signup"
)

// Transaction is one immutable ledger row in a user's history.
// Amount is negative for the paying party and positive for the
// receiving party. Rows are never updated or deleted.
type Transaction struct {
	ID       string    `json:"id" db:"id"`
	Type     string    `json:"type" db:"type"`
	ItemID   string    `json:"itemId,omitempty" db:"item_id"`
	ItemName string    `json:"itemName,omitempty" db:"item_name"`
	Amount   int       `json:"amount" db:"amount"`
	Date     time.Time `json:"date" db:"date"`
	From     string    `json:"from" db:"from_user_name"`
	To       string    `json:"to" db:"to_user_name"`

	// UserID is the owner of this ledger view. Never serialized;
	// history endpoints already scope rows to the caller.
	UserID string `json:"-" db:"user_id"`

	// PurchaseID correlates the buyer and seller rows written by
	// one purchase. Empty for non-purchase rows.
	PurchaseID string `json:"-" db:"purchase_id"`
}

// PurchaseEvent is the internal record of one completed sale. It is
// projected into exactly two ledger rows (buyer and seller) at write
// time so the pairing survives as a single unit of work.
type PurchaseEvent struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"itemId"`
	ItemTitle   string    `json:"itemTitle"`
	Price       int       `json:"price"`
	BuyerID     string    `json:"buyerId"`
	BuyerName   string    `json:"buyerName"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// BuyerRow projects the event into the buyer's ledger row.
func (e PurchaseEvent) BuyerRow() Transaction {
	return Transaction{
		ID:         e.ID + "-buy",
		Type:       TransactionBuy,
		ItemID:     e.ItemID,
		ItemName:   e.ItemTitle,
		Amount:     -e.Price,
		Date:       e.OccurredAt,
		From:       e.BuyerName,
		To:         e.SellerName,
		UserID:     e.BuyerID,
		PurchaseID: e.ID,
	}
}

// SellerRow projects the event into the seller's ledger row.
func (e PurchaseEvent) SellerRow() Transaction {
	return Transaction{
		ID:         e.ID + "-sell",
		Type:       TransactionSell,
		ItemID:     e.ItemID,
		ItemName:   e.ItemTitle,
		Amount:     e.Price,
		Date:       e.OccurredAt,
		From:       e.BuyerName,
		To:         e.SellerName,
		UserID:     e.SellerID,
		PurchaseID: e.ID,
	}
}
