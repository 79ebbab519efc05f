package memory

import (
	"context"
	"sync"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// TransactionRepository is an in-memory implementation of
// repository.TransactionRepository.
type TransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.Transaction
}

// NewTransactionRepository creates an empty in-memory ledger.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Create appends a ledger entry.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *txn
	r.txns = append(r.txns, &stored)
	return nil
}

// GetByUserID retrieves a user's ledger entries, newest first.
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID int64) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Transaction
	for i := len(r.txns) - 1; i >= 0; i-- {
		if r.txns[i].UserID == userID {
			out := *r.txns[i]
			result = append(result, &out)
		}
	}
	return result, nil
}

var _ repository.TransactionRepository = (*TransactionRepository)(nil)
