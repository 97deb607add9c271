package types

import "time"

// Item categories accepted by the catalog.
const (
	CategoryBooks       = "Books"
	CategoryElectronics = "Electronics"
	CategoryFurniture   = "Furniture"
	CategoryClothing    = "Clothing"
	CategoryOther       = "Other"
)

// Item conditions accepted by the catalog.
const (
	ConditionNew     = "New"
	ConditionLikeNew = "Like New"
	ConditionGood    = "Good"
	ConditionUsed    = "Used"
)

// Item is a marketplace listing. An item is available for purchase
// iff no completed buy transaction references it.
type Item struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	Price       int       `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	Condition   string    `json:"condition" db:"condition"`
	SellerID    string    `json:"sellerId" db:"seller_id"`
	SellerName  string    `json:"sellerName" db:"seller_name"`
	ListedDate  time.Time `json:"listedDate" db:"listed_date"`
}

// ValidCategory reports whether c is one of the accepted categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryBooks, CategoryElectronics, CategoryFurniture, CategoryClothing, CategoryOther:
		return true
	}
	return false
}

// ValidCondition reports whether c is one of the accepted conditions.
func ValidCondition(c string) bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionUsed:
		return true
	}
	return false
}
