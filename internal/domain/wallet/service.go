package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Service manages the append-only wallet ledger. The balance is always
// derived by replaying a user's transactions.
type Service struct {
	transactions store.TransactionStore
}

func NewService(transactions store.TransactionStore) *Service {
	return &Service{transactions: transactions}
}

func (s *Service) Balance(ctx context.Context, userID string) (float64, error) {
	return s.transactions.Balance(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

// Credit appends a credit entry (refunds, promotional top-ups).
func (s *Service) Credit(ctx context.Context, userID string, amount float64, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.transactions.Insert(ctx, &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        model.TransactionCredit,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	})
}

// Debit appends a debit entry after verifying the derived balance
// covers it.
func (s *Service) Debit(ctx context.Context, userID string, amount float64, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	balance, err := s.transactions.Balance(ctx, userID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	return s.transactions.Insert(ctx, &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        model.TransactionDebit,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	})
}
