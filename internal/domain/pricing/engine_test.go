package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-shop/internal/infrastructure/store/mocks"
	"github.com/example/ec-shop/internal/model"
)

func activeWindow() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

func testProduct() *model.Product {
	return &model.Product{
		ID:            "prod-1",
		Name:          "Running Shoes",
		Price:         1000,
		SubcategoryID: "subcat-1",
		Active:        true,
	}
}

func TestOfferDiscount_Flat(t *testing.T) {
	d := OfferDiscount(1000, model.Offer{Kind: model.DiscountFlat, Value: 150})
	assert.Equal(t, 150.0, d)
}

func TestOfferDiscount_Percentage(t *testing.T) {
	d := OfferDiscount(1000, model.Offer{Kind: model.DiscountPercentage, Value: 20})
	assert.Equal(t, 200.0, d)
}

func TestOfferDiscount_PercentageCapped(t *testing.T) {
	d := OfferDiscount(1000, model.Offer{Kind: model.DiscountPercentage, Value: 20, MaxDiscount: 100})
	assert.Equal(t, 100.0, d)
}

func TestOfferDiscount_UnknownKind(t *testing.T) {
	d := OfferDiscount(1000, model.Offer{Kind: "bogus", Value: 20})
	assert.Equal(t, 0.0, d)
}

func TestBestDiscount_ProductVsCategory(t *testing.T) {
	p := testProduct()
	offers := []model.Offer{
		{Scope: model.OfferScopeProduct, TargetIDs: []string{"prod-1"}, Kind: model.DiscountFlat, Value: 50},
		{Scope: model.OfferScopeCategory, TargetIDs: []string{"subcat-1"}, Kind: model.DiscountPercentage, Value: 10},
	}

	// Category offer gives 100, product offer gives 50: best wins, no stacking.
	assert.Equal(t, 100.0, BestDiscount(p, offers))
	assert.Equal(t, 900.0, EffectivePrice(p, offers))
}

func TestBestDiscount_NoMatchingOffers(t *testing.T) {
	p := testProduct()
	offers := []model.Offer{
		{Scope: model.OfferScopeProduct, TargetIDs: []string{"other"}, Kind: model.DiscountFlat, Value: 50},
		{Scope: model.OfferScopeCategory, TargetIDs: []string{"other-cat"}, Kind: model.DiscountFlat, Value: 50},
	}

	assert.Equal(t, 0.0, BestDiscount(p, offers))
	assert.Equal(t, p.Price, EffectivePrice(p, offers))
}

func TestEffectivePrice_FlooredAtZero(t *testing.T) {
	p := testProduct()
	offers := []model.Offer{
		{Scope: model.OfferScopeProduct, TargetIDs: []string{"prod-1"}, Kind: model.DiscountFlat, Value: 5000},
	}

	assert.Equal(t, 0.0, EffectivePrice(p, offers))
}

func TestEffectivePrice_WithinBounds(t *testing.T) {
	p := testProduct()
	offers := []model.Offer{
		{Scope: model.OfferScopeProduct, TargetIDs: []string{"prod-1"}, Kind: model.DiscountPercentage, Value: 35},
		{Scope: model.OfferScopeCategory, TargetIDs: []string{"subcat-1"}, Kind: model.DiscountFlat, Value: 425},
	}

	price := EffectivePrice(p, offers)
	assert.GreaterOrEqual(t, price, 0.0)
	assert.LessOrEqual(t, price, p.Price)
}

func TestService_EffectivePrice_IgnoresExpiredOffers(t *testing.T) {
	offerStore := mocks.NewOfferStore()
	productStore := mocks.NewProductStore()
	svc := NewService(offerStore, productStore)

	now := time.Now()
	offerStore.Seed(model.Offer{
		ID: "offer-1", Scope: model.OfferScopeProduct, TargetIDs: []string{"prod-1"},
		Kind: model.DiscountFlat, Value: 200,
		ValidFrom: now.Add(-48 * time.Hour), ValidUntil: now.Add(-24 * time.Hour),
		Active: true,
	})

	price, err := svc.EffectivePrice(context.Background(), testProduct())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, price)
}

func TestService_RefreshCachedPrice(t *testing.T) {
	offerStore := mocks.NewOfferStore()
	productStore := mocks.NewProductStore()
	svc := NewService(offerStore, productStore)

	p := testProduct()
	productStore.Seed(*p)

	from, until := activeWindow()
	offerStore.Seed(model.Offer{
		ID: "offer-1", Scope: model.OfferScopeProduct, TargetIDs: []string{"prod-1"},
		Kind: model.DiscountPercentage, Value: 10,
		ValidFrom: from, ValidUntil: until, Active: true,
	})

	require.NoError(t, svc.RefreshCachedPrice(context.Background(), p))
	assert.Equal(t, 900.0, p.DiscountedPrice)

	stored, err := productStore.GetByID(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 900.0, stored.DiscountedPrice)
}

func TestService_CreateOffer_AssignsIDs(t *testing.T) {
	offerStore := mocks.NewOfferStore()
	svc := NewService(offerStore, mocks.NewProductStore())
	ctx := context.Background()
	from, until := activeWindow()

	first := model.Offer{
		Scope: model.OfferScopeProduct, TargetIDs: []string{"prod-1"},
		Kind: model.DiscountFlat, Value: 100,
		ValidFrom: from, ValidUntil: until, Active: true,
	}
	second := model.Offer{
		Scope: model.OfferScopeCategory, TargetIDs: []string{"cat-1"},
		Kind: model.DiscountPercentage, Value: 10,
		ValidFrom: from, ValidUntil: until, Active: true,
	}
	require.NoError(t, svc.CreateOffer(ctx, &first))
	require.NoError(t, svc.CreateOffer(ctx, &second))

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	active, err := offerStore.ListActive(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestService_CreateOffer_Validation(t *testing.T) {
	svc := NewService(mocks.NewOfferStore(), mocks.NewProductStore())
	ctx := context.Background()
	from, until := activeWindow()

	cases := []struct {
		name  string
		offer model.Offer
		want  error
	}{
		{"bad scope", model.Offer{Scope: "store", TargetIDs: []string{"x"}, Kind: model.DiscountFlat, Value: 10, ValidFrom: from, ValidUntil: until}, ErrUnknownScope},
		{"no targets", model.Offer{Scope: model.OfferScopeProduct, Kind: model.DiscountFlat, Value: 10, ValidFrom: from, ValidUntil: until}, ErrNoOfferTargets},
		{"bad kind", model.Offer{Scope: model.OfferScopeProduct, TargetIDs: []string{"x"}, Kind: "bogus", Value: 10, ValidFrom: from, ValidUntil: until}, ErrUnknownKind},
		{"percentage over 100", model.Offer{Scope: model.OfferScopeProduct, TargetIDs: []string{"x"}, Kind: model.DiscountPercentage, Value: 150, ValidFrom: from, ValidUntil: until}, ErrInvalidOffer},
		{"inverted window", model.Offer{Scope: model.OfferScopeProduct, TargetIDs: []string{"x"}, Kind: model.DiscountFlat, Value: 10, ValidFrom: until, ValidUntil: from}, ErrInvalidWindow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := tc.offer
			o.ID = "offer-x"
			err := svc.CreateOffer(ctx, &o)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
