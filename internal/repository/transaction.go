package repository

import (
	"context"

	"taxi/internal/domain"
)

// TransactionRepository defines the persistence operations for the balance
// ledger. Entries are append-only.
type TransactionRepository interface {
	// Create appends a ledger entry.
	Create(ctx context.Context, txn *domain.Transaction) error

	// GetByUserID retrieves a user's ledger entries, newest first.
	GetByUserID(ctx context.Context, userID int64) ([]*domain.Transaction, error)
}
