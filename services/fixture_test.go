package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dcode-github/homlet/locks"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *store.MemoryStore
	ledger   *Ledger
	ratings  *RatingAggregator
	locker   locks.Locker
	client   *models.User
	agent    *models.User
	property *models.Property
	seq      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	ledger := NewLedger(s)
	locker := locks.NewLocalLocker()
	f := &fixture{
		store:   s,
		ledger:  ledger,
		ratings: NewRatingAggregator(s, ledger, locker),
		locker:  locker,
	}
	f.client = f.addUser(t, models.RoleClient)
	f.agent = f.addUser(t, models.RoleAgent)
	f.property = f.addProperty(t, f.agent, "Lagos", "Lekki", 250, models.PropertyRent)
	return f
}

func (f *fixture) addUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	f.seq++
	u := &models.User{
		FullName: fmt.Sprintf("%s %d", role, f.seq),
		Email:    fmt.Sprintf("%s%d@example.com", role, f.seq),
		Phone:    fmt.Sprintf("+234-800-%04d", f.seq),
		Role:     role,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) addProperty(t *testing.T, agent *models.User, state, area string, price float64, kind models.PropertyType) *models.Property {
	t.Helper()
	f.seq++
	p := &models.Property{
		AgentID:      agent.ID,
		Title:        fmt.Sprintf("Flat %d", f.seq),
		Description:  "Two bedroom flat",
		Price:        price,
		Location:     models.Location{State: state, Area: area},
		PropertyType: kind,
		Images:       []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"},
		Status:       models.StatusActive,
	}
	require.NoError(t, f.store.CreateProperty(context.Background(), p))
	return p
}

func (f *fixture) contact(t *testing.T, client *models.User, property *models.Property) *models.Contact {
	t.Helper()
	c, err := f.ledger.RequestContact(context.Background(), client.ID.Hex(), property.AgentID.Hex(), property.ID.Hex())
	require.NoError(t, err)
	return c
}

// countingCache is a ListingCache that remembers entries in memory.
type countingCache struct {
	mu          sync.Mutex
	entries     map[string][]models.Property
	hits        int
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[string][]models.Property{}}
}

func (c *countingCache) Get(_ context.Context, key string) ([]models.Property, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return p, ok
}

func (c *countingCache) Set(_ context.Context, key string, p []models.Property) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = p
}

func (c *countingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]models.Property{}
	c.invalidated++
}
