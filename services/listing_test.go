package services

import (
	"context"
	"net/url"
	"testing"

	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterDefaults(t *testing.T) {
	filter, err := BuildFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, models.ListingFilter{Status: models.StatusActive}, filter)

	filter, err = BuildFilter(url.Values{"minPrice": {""}, "state": {"  "}})
	require.NoError(t, err)
	assert.Nil(t, filter.MinPrice)
	assert.Empty(t, filter.State)
}

func TestBuildFilterRejectsBadInput(t *testing.T) {
	for _, q := range []url.Values{
		{"minPrice": {"cheap"}},
		{"maxPrice": {"NaN"}},
		{"maxPrice": {"Inf"}},
		{"propertyType": {"lease"}},
		{"type": {"lease"}},
	} {
		_, err := BuildFilter(q)
		assert.ErrorIs(t, err, models.ErrInvalidInput, "query %v", q)
	}
}

func TestBuildFilterTypeAliasAndStatus(t *testing.T) {
	filter, err := BuildFilter(url.Values{"type": {"Buy"}, "status": {"sold"}})
	require.NoError(t, err)
	assert.Equal(t, models.PropertyBuy, filter.PropertyType)
	assert.Equal(t, models.StatusActive, filter.Status)

	filter, err = BuildFilter(url.Values{"type": {"buy"}, "propertyType": {"rent"}})
	require.NoError(t, err)
	assert.Equal(t, models.PropertyRent, filter.PropertyType)
}

func TestBrowseFiltersByPriceAndLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	low := f.addProperty(t, f.agent, "Lagos", "Ikeja", 100, models.PropertyRent)
	high := f.addProperty(t, f.agent, "LAGOS", "Ikoyi", 500, models.PropertyRent)
	f.addProperty(t, f.agent, "Lagos", "Ikoyi", 501, models.PropertyRent)
	f.addProperty(t, f.agent, "Abuja", "Wuse", 300, models.PropertyRent)
	sold := f.addProperty(t, f.agent, "Lagos", "Ikoyi", 300, models.PropertyRent)
	_, err := f.store.UpdateProperty(ctx, sold.ID, f.agent.ID, models.PropertyUpdate{
		Title: sold.Title, Description: sold.Description, Price: sold.Price,
		Location: sold.Location, PropertyType: sold.PropertyType, Status: models.StatusSold,
	})
	require.NoError(t, err)

	listings := NewListings(f.store, newCountingCache(), f.ledger)
	q := url.Values{"state": {"lagos"}, "minPrice": {"100"}, "maxPrice": {"500"}}
	res, err := listings.Browse(ctx, q)
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Properties))
	for _, p := range res.Properties {
		ids = append(ids, p.ID.Hex())
	}
	assert.Equal(t, []string{high.ID.Hex(), low.ID.Hex(), f.property.ID.Hex()}, ids)
	assert.Equal(t, map[string]string{"state": "lagos", "minPrice": "100", "maxPrice": "500"}, res.Filters)
}

func TestBrowseAreaIsCaseInsensitiveSubstring(t *testing.T) {
	f := newFixture(t)
	listings := NewListings(f.store, newCountingCache(), f.ledger)

	res, err := listings.Browse(context.Background(), url.Values{"area": {"LEK"}})
	require.NoError(t, err)
	require.Len(t, res.Properties, 1)
	assert.Equal(t, f.property.ID, res.Properties[0].ID)
}

func TestBrowseUsesCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newCountingCache()
	listings := NewListings(f.store, c, f.ledger)
	properties := NewProperties(f.store, c)

	q := url.Values{"state": {"Lagos"}}
	first, err := listings.Browse(ctx, q)
	require.NoError(t, err)
	assert.Len(t, first.Properties, 1)
	assert.Equal(t, 0, c.hits)

	_, err = listings.Browse(ctx, url.Values{"state": {"lagos"}})
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)

	_, err = properties.Upload(ctx, f.agent.ID.Hex(), UploadInput{
		PropertyInput: PropertyInput{
			Title: "Duplex", Description: "Four bedroom duplex", Price: "900",
			State: "Lagos", Area: "Ajah", PropertyType: "buy",
		},
		Images: []string{"a", "b", "c", "d", "e"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.invalidated)

	again, err := listings.Browse(ctx, q)
	require.NoError(t, err)
	assert.Len(t, again.Properties, 2)
}

func TestFeaturedIsNewestSix(t *testing.T) {
	f := newFixture(t)
	var newest *models.Property
	for i := 0; i < 7; i++ {
		newest = f.addProperty(t, f.agent, "Oyo", "Bodija", 50, models.PropertyBuy)
	}

	featured, err := NewListings(f.store, newCountingCache(), f.ledger).Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, featured, 6)
	assert.Equal(t, newest.ID, featured[0].ID)
}

func TestDetailRevealsPhoneOnlyWhenUnlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listings := NewListings(f.store, newCountingCache(), f.ledger)
	client := f.client.Identity()

	detail, err := listings.Detail(ctx, f.property.ID.Hex(), nil)
	require.NoError(t, err)
	assert.False(t, detail.HasUnlocked)
	assert.Empty(t, detail.Agent.Phone)
	assert.Equal(t, 1, detail.Property.Views)

	detail, err = listings.Detail(ctx, f.property.ID.Hex(), &client)
	require.NoError(t, err)
	assert.False(t, detail.HasUnlocked)
	assert.Empty(t, detail.Agent.Phone)

	f.contact(t, f.client, f.property)
	detail, err = listings.Detail(ctx, f.property.ID.Hex(), &client)
	require.NoError(t, err)
	assert.True(t, detail.HasUnlocked)
	assert.Equal(t, f.agent.Phone, detail.Agent.Phone)
	assert.Equal(t, 3, detail.Property.Views)

	owner := f.agent.Identity()
	detail, err = listings.Detail(ctx, f.property.ID.Hex(), &owner)
	require.NoError(t, err)
	assert.True(t, detail.HasUnlocked)

	stranger := f.addUser(t, models.RoleAgent).Identity()
	detail, err = listings.Detail(ctx, f.property.ID.Hex(), &stranger)
	require.NoError(t, err)
	assert.False(t, detail.HasUnlocked)
}

func TestDetailUnknownProperty(t *testing.T) {
	f := newFixture(t)
	listings := NewListings(f.store, newCountingCache(), f.ledger)

	_, err := listings.Detail(context.Background(), f.agent.ID.Hex(), nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = listings.Detail(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

// ctxStore fails reads whose context has ended, as the Mongo driver does.
type ctxStore struct {
	*store.MemoryStore
}

func (s ctxStore) ListProperties(ctx context.Context, filter models.ListingFilter) ([]models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryStore.ListProperties(ctx, filter)
}

func TestCacheFillSurvivesCancelledCaller(t *testing.T) {
	f := newFixture(t)
	c := newCountingCache()
	listings := NewListings(ctxStore{f.store}, c, f.ledger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := listings.Browse(ctx, url.Values{})
	require.NoError(t, err)
	assert.Len(t, res.Properties, 1)

	res, err = listings.Browse(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Len(t, res.Properties, 1)
	assert.Equal(t, 1, c.hits)
}

func TestDetailViewsComeFromStoreNotCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listings := NewListings(f.store, newCountingCache(), f.ledger)

	res, err := listings.Browse(ctx, url.Values{})
	require.NoError(t, err)
	require.Len(t, res.Properties, 1)
	assert.Equal(t, 0, res.Properties[0].Views)

	for i := 1; i <= 2; i++ {
		detail, err := listings.Detail(ctx, f.property.ID.Hex(), nil)
		require.NoError(t, err)
		assert.Equal(t, i, detail.Property.Views)
	}

	// Browse results are served from the cache until expiry or an agent write.
	res, err = listings.Browse(ctx, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Properties[0].Views)
}
