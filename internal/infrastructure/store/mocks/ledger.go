package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

// TransactionStore is an in-memory append-only store.TransactionStore.
type TransactionStore struct {
	mu   sync.Mutex
	txns []model.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

func (s *TransactionStore) Seed(t model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
}

func (s *TransactionStore) Insert(_ context.Context, t *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, *t)
	return nil
}

func (s *TransactionStore) ListByUser(_ context.Context, userID string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Transaction
	for _, t := range s.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *TransactionStore) Balance(_ context.Context, userID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var balance float64
	for _, t := range s.txns {
		if t.UserID != userID {
			continue
		}
		if t.Type == model.TransactionCredit {
			balance += t.Amount
		} else {
			balance -= t.Amount
		}
	}
	return balance, nil
}

// AddressStore is an in-memory store.AddressStore.
type AddressStore struct {
	mu        sync.Mutex
	addresses map[string]model.Address
}

func NewAddressStore() *AddressStore {
	return &AddressStore{addresses: make(map[string]model.Address)}
}

func (s *AddressStore) Seed(a model.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[a.ID] = a
}

func (s *AddressStore) GetByID(_ context.Context, id string) (*model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *AddressStore) ListByUser(_ context.Context, userID string) ([]model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Address
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AddressStore) Insert(_ context.Context, a *model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[a.ID] = *a
	return nil
}

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]model.User)}
}

func (s *UserStore) Seed(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) Insert(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	s.users[u.ID] = *u
	return nil
}
