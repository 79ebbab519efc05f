package postgres

import (
	"context"
	"database/sql"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository using
// PostgreSQL.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL ledger repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a ledger repository using a
// transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create appends a ledger entry.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Amount,
		txn.Type,
		txn.Description,
		txn.CreatedAt,
	)
	return err
}

// GetByUserID retrieves a user's ledger entries, newest first.
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, description, created_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Amount,
			&txn.Type,
			&txn.Description,
			&txn.CreatedAt,
		); err != nil {
			return nil, err
		}
		txns = append(txns, &txn)
	}
	return txns, rows.Err()
}

var _ repository.TransactionRepository = (*TransactionRepository)(nil)
