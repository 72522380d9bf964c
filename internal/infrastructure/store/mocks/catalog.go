package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

// ProductStore is a thread-safe in-memory store.ProductStore. Its
// DecrementStock honors the same conditional-update contract as the
// Mongo implementation, so stock races are testable in-process.
type ProductStore struct {
	mu       sync.Mutex
	products map[string]model.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]model.Product)}
}

// Seed inserts a product directly, bypassing validation.
func (s *ProductStore) Seed(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *ProductStore) GetByID(_ context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *ProductStore) ListActive(_ context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, p := range s.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductStore) Insert(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return store.ErrDuplicate
	}
	s.products[p.ID] = *p
	return nil
}

func (s *ProductStore) Update(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *ProductStore) SetCachedPrice(_ context.Context, id string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.DiscountedPrice = price
	s.products[id] = p
	return nil
}

func (s *ProductStore) DecrementStock(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Stock < qty {
		return store.ErrInsufficientStock
	}
	p.Stock -= qty
	s.products[id] = p
	return nil
}

func (s *ProductStore) IncrementStock(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock += qty
	s.products[id] = p
	return nil
}

// OfferStore is an in-memory store.OfferStore.
type OfferStore struct {
	mu     sync.Mutex
	offers map[string]model.Offer
}

func NewOfferStore() *OfferStore {
	return &OfferStore{offers: make(map[string]model.Offer)}
}

func (s *OfferStore) Seed(o model.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[o.ID] = o
}

func (s *OfferStore) GetByID(_ context.Context, id string) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *OfferStore) ListActive(_ context.Context, now time.Time) ([]model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Offer
	for _, o := range s.offers {
		if o.Active && !now.Before(o.ValidFrom) && now.Before(o.ValidUntil) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *OfferStore) Insert(_ context.Context, o *model.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[o.ID]; ok {
		return store.ErrDuplicate
	}
	s.offers[o.ID] = *o
	return nil
}

func (s *OfferStore) Update(_ context.Context, o *model.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[o.ID]; !ok {
		return store.ErrNotFound
	}
	s.offers[o.ID] = *o
	return nil
}

// CategoryStore is an in-memory store.CategoryStore.
type CategoryStore struct {
	mu         sync.Mutex
	categories map[string]model.Category
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[string]model.Category)}
}

func (s *CategoryStore) Seed(c model.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *CategoryStore) GetByID(_ context.Context, id string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *CategoryStore) ListActive(_ context.Context) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Category
	for _, c := range s.categories {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}
