package services

import (
	"context"

	"github.com/camptrades/apiserver/types"
)

// LedgerRepository defines read operations over the ledger.
type LedgerRepository interface {
	ListForUser(ctx context.Context, userID string) ([]types.Transaction, error)
}

// LedgerService exposes a user's transaction history.
type LedgerService struct {
	repo LedgerRepository
}

func NewLedgerService(repo LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

// HistoryFor returns the user's ledger rows, newest first.
func (s *LedgerService) HistoryFor(ctx context.Context, userID string) ([]types.Transaction, error) {
	return s.repo.ListForUser(ctx, userID)
}
