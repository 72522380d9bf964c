package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

var (
	ErrOfferNotFound  = errors.New("offer not found")
	ErrInvalidOffer   = errors.New("invalid offer configuration")
	ErrInvalidWindow  = errors.New("offer validity window is invalid")
	ErrUnknownScope   = errors.New("unknown offer scope")
	ErrUnknownKind    = errors.New("unknown discount kind")
	ErrNoOfferTargets = errors.New("offer must target at least one id")
)

// Service loads active offers and prices products against them. The
// cached discounted price on the product document serves read paths
// only; checkout always calls EffectivePrice for a live figure.
type Service struct {
	offers   store.OfferStore
	products store.ProductStore
}

func NewService(offers store.OfferStore, products store.ProductStore) *Service {
	return &Service{offers: offers, products: products}
}

// ActiveOffers returns the offers whose validity window contains now.
func (s *Service) ActiveOffers(ctx context.Context) ([]model.Offer, error) {
	return s.offers.ListActive(ctx, time.Now())
}

// EffectivePrice recomputes the live discounted price of a product.
func (s *Service) EffectivePrice(ctx context.Context, p *model.Product) (float64, error) {
	offers, err := s.ActiveOffers(ctx)
	if err != nil {
		return 0, err
	}
	return EffectivePrice(p, offers), nil
}

// RefreshCachedPrice recomputes and persists the discounted price onto
// the product record for read paths.
func (s *Service) RefreshCachedPrice(ctx context.Context, p *model.Product) error {
	price, err := s.EffectivePrice(ctx, p)
	if err != nil {
		return err
	}
	p.DiscountedPrice = price
	return s.products.SetCachedPrice(ctx, p.ID, price)
}

// CreateOffer validates and stores a new offer.
func (s *Service) CreateOffer(ctx context.Context, o *model.Offer) error {
	if err := validateOffer(o); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return s.offers.Insert(ctx, o)
}

// UpdateOffer validates and replaces an existing offer.
func (s *Service) UpdateOffer(ctx context.Context, o *model.Offer) error {
	if err := validateOffer(o); err != nil {
		return err
	}
	err := s.offers.Update(ctx, o)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOfferNotFound
	}
	return err
}

// ToggleOffer flips the active flag.
func (s *Service) ToggleOffer(ctx context.Context, id string, active bool) error {
	o, err := s.offers.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOfferNotFound
	}
	if err != nil {
		return err
	}
	o.Active = active
	return s.offers.Update(ctx, o)
}

func validateOffer(o *model.Offer) error {
	if o.Scope != model.OfferScopeProduct && o.Scope != model.OfferScopeCategory {
		return ErrUnknownScope
	}
	if len(o.TargetIDs) == 0 {
		return ErrNoOfferTargets
	}
	switch o.Kind {
	case model.DiscountPercentage:
		if o.Value <= 0 || o.Value > 100 {
			return ErrInvalidOffer
		}
	case model.DiscountFlat:
		if o.Value <= 0 {
			return ErrInvalidOffer
		}
	default:
		return ErrUnknownKind
	}
	if !o.ValidFrom.Before(o.ValidUntil) {
		return ErrInvalidWindow
	}
	return nil
}
