package pricing

import "github.com/example/ec-shop/internal/model"

// OfferDiscount returns the discount a single offer grants on price.
// Percentage offers are capped by the offer's max discount when one is
// set.
func OfferDiscount(price float64, o model.Offer) float64 {
	switch o.Kind {
	case model.DiscountFlat:
		return o.Value
	case model.DiscountPercentage:
		d := price * o.Value / 100
		if o.MaxDiscount > 0 && d > o.MaxDiscount {
			d = o.MaxDiscount
		}
		return d
	}
	return 0
}

// BestDiscount computes the effective discount for a product: the best
// matching product-scoped offer and the best matching category-scoped
// offer are found, and the larger of the two wins. Offers are never
// stacked.
func BestDiscount(p *model.Product, offers []model.Offer) float64 {
	var productBest, categoryBest float64
	for _, o := range offers {
		switch o.Scope {
		case model.OfferScopeProduct:
			if containsID(o.TargetIDs, p.ID) {
				if d := OfferDiscount(p.Price, o); d > productBest {
					productBest = d
				}
			}
		case model.OfferScopeCategory:
			if containsID(o.TargetIDs, p.SubcategoryID) {
				if d := OfferDiscount(p.Price, o); d > categoryBest {
					categoryBest = d
				}
			}
		}
	}
	if categoryBest > productBest {
		return categoryBest
	}
	return productBest
}

// EffectivePrice is the product price after the best discount, floored
// at zero. A product with no matching offers keeps its base price.
func EffectivePrice(p *model.Product, offers []model.Offer) float64 {
	price := p.Price - BestDiscount(p, offers)
	if price < 0 {
		return 0
	}
	return price
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
