package cache

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingKeyIsOrderIndependent(t *testing.T) {
	a := url.Values{"state": {"Lagos"}, "minPrice": {"100"}}
	b := url.Values{"minPrice": {"100"}, "state": {"Lagos"}}

	assert.Equal(t, ListingKey("public", a), ListingKey("public", b))
	assert.True(t, strings.HasPrefix(ListingKey("public", a), keyPrefix))
}

func TestListingKeyDistinguishesScopeAndValues(t *testing.T) {
	q := url.Values{"state": {"Lagos"}}

	assert.NotEqual(t, ListingKey("public", q), ListingKey("client", q))
	assert.NotEqual(t, ListingKey("public", q), ListingKey("public", url.Values{"state": {"Abuja"}}))
}

func TestListingKeyDoesNotMutateInput(t *testing.T) {
	q := url.Values{"area": {"b", "a"}}
	ListingKey("public", q)
	assert.Equal(t, []string{"b", "a"}, q["area"])
}

func TestNopCacheNeverHits(t *testing.T) {
	var c ListingCache = Nop{}
	c.Set(context.Background(), "k", nil)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}
