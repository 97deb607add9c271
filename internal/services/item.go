package services

import (
	"context"
	"time"

	"github.com/camptrades/apiserver/types"
	"github.com/google/uuid"
)

const defaultItemImage = "https://picsum.photos/seed/newitem/400/300"

// ItemRepository defines persistence operations for listings.
type ItemRepository interface {
	ListAvailable(ctx context.Context) ([]types.Item, error)
	Get(ctx context.Context, id string) (types.Item, error)
	Create(ctx context.Context, item types.Item) (types.Item, error)
	Remove(ctx context.Context, itemID, sellerID string) error
}

// ItemService encapsulates catalog use-cases.
type ItemService struct {
	repo ItemRepository
}

func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

func (s *ItemService) ListAvailable(ctx context.Context) ([]types.Item, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *ItemService) Get(ctx context.Context, id string) (types.Item, error) {
	return s.repo.Get(ctx, id)
}

// Create lists an item for the seller. The seller snapshot and the
// listing timestamp are fixed here, not taken from the request.
func (s *ItemService) Create(ctx context.Context, seller types.User, item types.Item) (types.Item, error) {
	item.ID = "item_" + uuid.NewString()
	item.SellerID = seller.ID
	item.SellerName = seller.Name
	item.ListedDate = time.Now().UTC()
	if item.Image == "" {
		item.Image = defaultItemImage
	}
	return s.repo.Create(ctx, item)
}

func (s *ItemService) Remove(ctx context.Context, itemID, requesterID string) error {
	return s.repo.Remove(ctx, itemID, requesterID)
}
