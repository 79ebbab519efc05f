package domain

import "time"

// TransactionType classifies a balance mutation.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionPayment    TransactionType = "payment"  // rider debit for a completed ride
	TransactionEarnings   TransactionType = "earnings" // driver credit for a completed ride
)

// Transaction is one entry in the balance ledger. Every balance mutation
// appends exactly one entry.
type Transaction struct {
	ID          string
	UserID      int64
	Amount      float64 // signed: negative for debits
	Type        TransactionType
	Description string
	CreatedAt   time.Time
}
