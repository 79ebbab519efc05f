package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taxi/internal/domain"
	"taxi/internal/registry"
	"taxi/internal/repository"
)

// WalletService owns balance movement. Every mutation appends one ledger
// entry.
type WalletService struct {
	registry *registry.Registry
	clock    Clock
}

// NewWalletService creates a WalletService.
func NewWalletService(reg *registry.Registry, clock Clock) *WalletService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &WalletService{registry: reg, clock: clock}
}

// Deposit credits a user's balance.
func (s *WalletService) Deposit(ctx context.Context, userID int64, amount float64) (*domain.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var updated *domain.User
	err := s.registry.WithUser(ctx, userID, func(repos repository.Repos) error {
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		user.Balance += amount
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}

		if err := s.record(ctx, repos, userID, amount, domain.TransactionDeposit, "balance deposit"); err != nil {
			return err
		}

		updated = user
		return nil
	})
	return updated, err
}

// Withdraw debits a user's balance. Unlike ride debits, explicit
// withdrawals may not overdraw.
func (s *WalletService) Withdraw(ctx context.Context, userID int64, amount float64) (*domain.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var updated *domain.User
	err := s.registry.WithUser(ctx, userID, func(repos repository.Repos) error {
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.Balance < amount {
			return ErrInsufficientBalance
		}

		user.Balance -= amount
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}

		if err := s.record(ctx, repos, userID, -amount, domain.TransactionWithdrawal, "balance withdrawal"); err != nil {
			return err
		}

		updated = user
		return nil
	})
	return updated, err
}

// Statement returns a user's ledger entries, newest first.
func (s *WalletService) Statement(ctx context.Context, userID int64) ([]*domain.Transaction, error) {
	if _, err := s.registry.Repos().Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.registry.Repos().Transactions.GetByUserID(ctx, userID)
}

// settleRide debits the rider and credits the driver for a completed ride.
// Called by the dispatcher inside the ride's critical section with both
// user locks already held. The rider's balance may go negative: completion
// is driver-triggered after the service was rendered, so it is never
// rejected for funds; the debt shows in the ledger until a deposit settles
// it.
func (s *WalletService) settleRide(ctx context.Context, repos repository.Repos, ride *domain.Ride) error {
	rider, err := repos.Users.GetByID(ctx, ride.RiderID)
	if err != nil {
		return err
	}
	driver, err := repos.Users.GetByID(ctx, ride.DriverID)
	if err != nil {
		return err
	}

	rider.Balance -= ride.Price
	driver.Balance += ride.Price

	if err := repos.Users.Update(ctx, rider); err != nil {
		return err
	}
	if err := repos.Users.Update(ctx, driver); err != nil {
		return err
	}

	desc := fmt.Sprintf("ride %d", ride.ID)
	if err := s.record(ctx, repos, rider.ID, -ride.Price, domain.TransactionPayment, desc); err != nil {
		return err
	}
	return s.record(ctx, repos, driver.ID, ride.Price, domain.TransactionEarnings, desc)
}

func (s *WalletService) record(ctx context.Context, repos repository.Repos, userID int64, amount float64, txnType domain.TransactionType, desc string) error {
	return repos.Transactions.Create(ctx, &domain.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		Type:        txnType,
		Description: desc,
		CreatedAt:   s.clock.Now(),
	})
}
