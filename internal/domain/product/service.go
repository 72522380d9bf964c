package product

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-shop/internal/domain/pricing"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Service is the catalog facade. Reads resolve the live effective
// price through the pricing engine; writes keep the cached discounted
// price in step.
type Service struct {
	products store.ProductStore
	pricing  *pricing.Service
}

func NewService(products store.ProductStore, pricingSvc *pricing.Service) *Service {
	return &Service{products: products, pricing: pricingSvc}
}

// Get returns an active product with its live effective price filled
// into DiscountedPrice.
func (s *Service) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductNotFound
	}
	price, err := s.pricing.EffectivePrice(ctx, p)
	if err != nil {
		return nil, err
	}
	p.DiscountedPrice = price
	return p, nil
}

// List returns the active catalog with live effective prices. A stale
// cached price is persisted back opportunistically; a failure there
// only costs the next read a recomputation.
func (s *Service) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	offers, err := s.pricing.ActiveOffers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		live := pricing.EffectivePrice(&products[i], offers)
		if live != products[i].DiscountedPrice {
			if err := s.products.SetCachedPrice(ctx, products[i].ID, live); err != nil {
				log.Printf("[Catalog] Failed to refresh cached price for %s: %v", products[i].ID, err)
			}
			products[i].DiscountedPrice = live
		}
	}
	return products, nil
}

// Create stores a new product (admin).
func (s *Service) Create(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.DiscountedPrice = p.Price
	if err := s.products.Insert(ctx, p); err != nil {
		return err
	}
	return s.pricing.RefreshCachedPrice(ctx, p)
}

// Update rewrites a product (admin) and recomputes its cached price.
func (s *Service) Update(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	existing, err := s.products.GetByID(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}
	return s.pricing.RefreshCachedPrice(ctx, p)
}

// Toggle flips a product's active flag (admin soft delete).
func (s *Service) Toggle(ctx context.Context, id string, active bool) error {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	p.Active = active
	p.UpdatedAt = time.Now()
	return s.products.Update(ctx, p)
}

func validateProduct(p *model.Product) error {
	if p.Name == "" || p.Price <= 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}
