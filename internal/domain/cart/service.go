package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-shop/internal/domain/pricing"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrQuantityLimit      = fmt.Errorf("quantity exceeds the per-item limit of %d", model.MaxItemQuantity)
	ErrInsufficientStock  = errors.New("not enough stock for requested quantity")
	ErrItemNotFound       = errors.New("item not in cart")
)

// Line is a cart item with its product resolved and both price views:
// CartPrice is what the user saw when adding the item, Price is what
// will actually be charged (never more than CartPrice, but lower when
// an offer improved since).
type Line struct {
	Product   model.Product `json:"product"`
	Quantity  int           `json:"quantity"`
	BasePrice float64       `json:"base_price"`
	CartPrice float64       `json:"cart_price"`
	Price     float64       `json:"price"`
}

// Totals reconciles the shown total against the charged total.
type Totals struct {
	CartTotal    float64 `json:"cart_total"`
	Total        float64 `json:"total"`
	PriceChanged bool    `json:"price_changed"`
}

type Service struct {
	carts    store.CartStore
	products store.ProductStore
	pricing  *pricing.Service
}

func NewService(carts store.CartStore, products store.ProductStore, pricingSvc *pricing.Service) *Service {
	return &Service{carts: carts, products: products, pricing: pricingSvc}
}

// Get returns the user's cart, empty when none exists yet.
func (s *Service) Get(ctx context.Context, userID string) (*model.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &model.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem puts a product in the cart, snapshotting its base price and
// its current discounted price. Adding an existing product bumps the
// quantity instead.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if !p.Active {
		return ErrProductUnavailable
	}

	cartPrice, err := s.pricing.EffectivePrice(ctx, p)
	if err != nil {
		return err
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items[i].Quantity += qty
			if c.Items[i].Quantity > model.MaxItemQuantity {
				return ErrQuantityLimit
			}
			if c.Items[i].Quantity > p.Stock {
				return ErrInsufficientStock
			}
			found = true
			break
		}
	}
	if !found {
		if qty > model.MaxItemQuantity {
			return ErrQuantityLimit
		}
		if qty > p.Stock {
			return ErrInsufficientStock
		}
		c.Items = append(c.Items, model.CartItem{
			ProductID: productID,
			Quantity:  qty,
			BasePrice: p.Price,
			CartPrice: cartPrice,
		})
	}

	c.UpdatedAt = time.Now()
	return s.carts.Save(ctx, c)
}

// UpdateQuantity replaces the quantity of an existing line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if qty > model.MaxItemQuantity {
		return ErrQuantityLimit
	}

	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if qty > p.Stock {
		return ErrInsufficientStock
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items[i].Quantity = qty
			c.UpdatedAt = time.Now()
			return s.carts.Save(ctx, c)
		}
	}
	return ErrItemNotFound
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return s.carts.Save(ctx, c)
		}
	}
	return ErrItemNotFound
}

// Clear removes the whole cart document.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.carts.Clear(ctx, userID)
}

// PricedLines resolves every cart line against the current catalog and
// active offers. The charged price per line is the minimum of the
// price captured at add time and the live price, so the customer never
// pays more than what they were shown but does benefit from drops.
func (s *Service) PricedLines(ctx context.Context, userID string) ([]Line, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	offers, err := s.pricing.ActiveOffers(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(c.Items))
	for _, item := range c.Items {
		p, err := s.products.GetByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue // product was removed after it was carted
		}
		if err != nil {
			return nil, err
		}

		live := pricing.EffectivePrice(p, offers)
		price := item.CartPrice
		if live < price {
			price = live
		}

		lines = append(lines, Line{
			Product:   *p,
			Quantity:  item.Quantity,
			BasePrice: item.BasePrice,
			CartPrice: item.CartPrice,
			Price:     price,
		})
	}
	return lines, nil
}

// CalculateTotals sums what was shown against what will be charged and
// flags any difference so callers can surface a price-change notice
// before payment.
func CalculateTotals(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.CartTotal += l.CartPrice * float64(l.Quantity)
		t.Total += l.Price * float64(l.Quantity)
	}
	t.PriceChanged = t.CartTotal != t.Total
	return t
}
