package services

import (
	"context"
	"encoding/json"

	"github.com/camptrades/apiserver/types"
	"github.com/rs/zerolog/log"
)

// PurchaseChannel is the broker channel receipt events are published to.
const PurchaseChannel = "purchases"

// PurchaseExecutor runs the atomic unit of work for a sale.
type PurchaseExecutor interface {
	Execute(ctx context.Context, buyerID, itemID string) (types.User, types.Transaction, error)
}

// EventPublisher publishes receipt events after a purchase commits.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// PurchaseService coordinates the purchase engine and the receipt
// event stream.
type PurchaseService struct {
	engine    PurchaseExecutor
	publisher EventPublisher
}

// NewPurchaseService constructs a PurchaseService. publisher may be
// nil when no broker is configured.
func NewPurchaseService(engine PurchaseExecutor, publisher EventPublisher) *PurchaseService {
	return &PurchaseService{
		engine:    engine,
		publisher: publisher,
	}
}

// Purchase buys itemID on behalf of buyer and returns the buyer's
// updated projection together with their new ledger row. All
// validation against current state (availability, self-purchase,
// funds) happens inside the engine's transaction; the buyer argument
// only identifies who is paying.
func (s *PurchaseService) Purchase(ctx context.Context, buyer types.User, itemID string) (types.User, types.Transaction, error) {
	updated, receipt, err := s.engine.Execute(ctx, buyer.ID, itemID)
	if err != nil {
		return types.User{}, types.Transaction{}, err
	}

	log.Info().
		Str("purchase_id", receipt.PurchaseID).
		Str("item_id", receipt.ItemID).
		Str("buyer_id", updated.ID).
		Int("price", -receipt.Amount).
		Msg("purchase completed")

	s.publishReceipt(ctx, receipt)

	return updated, receipt, nil
}

// publishReceipt emits the buyer's ledger row as a receipt event.
// Best-effort: the sale has already committed, so a broker failure is
// logged, never surfaced to the buyer.
func (s *PurchaseService) publishReceipt(ctx context.Context, receipt types.Transaction) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(receipt)
	if err != nil {
		log.Error().Err(err).Str("purchase_id", receipt.PurchaseID).Msg("marshal receipt event")
		return
	}

	attrs := map[string]string{
		"type":    receipt.Type,
		"item_id": receipt.ItemID,
	}
	if _, err := s.publisher.Publish(ctx, PurchaseChannel, data, attrs); err != nil {
		log.Error().Err(err).Str("purchase_id", receipt.PurchaseID).Msg("publish receipt event")
	}
}
