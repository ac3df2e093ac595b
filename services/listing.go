package services

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/dcode-github/homlet/cache"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"golang.org/x/sync/singleflight"
)

const featuredCount = 6

// BuildFilter turns listing query parameters into a predicate over active
// properties. Absent or empty parameters impose no constraint.
func BuildFilter(query url.Values) (models.ListingFilter, error) {
	filter := models.ListingFilter{Status: models.StatusActive}

	filter.State = strings.TrimSpace(query.Get("state"))
	filter.Area = strings.TrimSpace(query.Get("area"))

	var err error
	if filter.MinPrice, err = parsePriceBound(query.Get("minPrice"), "minimum"); err != nil {
		return models.ListingFilter{}, err
	}
	if filter.MaxPrice, err = parsePriceBound(query.Get("maxPrice"), "maximum"); err != nil {
		return models.ListingFilter{}, err
	}

	propertyType := strings.TrimSpace(query.Get("propertyType"))
	if propertyType == "" {
		propertyType = strings.TrimSpace(query.Get("type"))
	}
	if propertyType != "" {
		filter.PropertyType = models.PropertyType(strings.ToLower(propertyType))
		if !filter.PropertyType.Valid() {
			return models.ListingFilter{}, models.NewError(models.ErrInvalidInput, "Property type must be rent or buy")
		}
	}

	return filter, nil
}

func parsePriceBound(raw, which string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, models.WrapError(models.ErrInvalidInput, "Invalid "+which+" price", err)
	}
	return &v, nil
}

// filterParams is the canonical form of a filter used for cache keys.
func filterParams(f models.ListingFilter) url.Values {
	params := url.Values{}
	params.Set("status", string(f.Status))
	if f.State != "" {
		params.Set("state", strings.ToLower(f.State))
	}
	if f.Area != "" {
		params.Set("area", strings.ToLower(f.Area))
	}
	if f.MinPrice != nil {
		params.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		params.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.PropertyType != "" {
		params.Set("propertyType", string(f.PropertyType))
	}
	if f.AgentID != "" {
		params.Set("agent", f.AgentID)
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	return params
}

// Listing is a filtered result set plus the raw filter values echoed back for
// form re-population.
type Listing struct {
	Properties []models.Property `json:"properties"`
	Filters    map[string]string `json:"filters"`
}

func echoFilters(query url.Values) map[string]string {
	echo := map[string]string{}
	for _, key := range []string{"state", "area", "minPrice", "maxPrice", "propertyType", "type"} {
		if v := query.Get(key); v != "" {
			echo[key] = v
		}
	}
	return echo
}

type Listings struct {
	store  store.Store
	cache  cache.ListingCache
	ledger *Ledger
	group  singleflight.Group
}

func NewListings(s store.Store, c cache.ListingCache, ledger *Ledger) *Listings {
	return &Listings{store: s, cache: c, ledger: ledger}
}

func (l *Listings) Browse(ctx context.Context, query url.Values) (*Listing, error) {
	filter, err := BuildFilter(query)
	if err != nil {
		return nil, err
	}
	properties, err := l.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &Listing{Properties: properties, Filters: echoFilters(query)}, nil
}

func (l *Listings) Featured(ctx context.Context) ([]models.Property, error) {
	return l.find(ctx, models.ListingFilter{Status: models.StatusActive, Limit: featuredCount})
}

// find reads listings through the cache. Cached rows keep the view counts
// they were stored with until the entry expires; only agent writes
// invalidate, and Detail always reads views from the store.
func (l *Listings) find(ctx context.Context, filter models.ListingFilter) ([]models.Property, error) {
	key := cache.ListingKey("listing", filterParams(filter))
	if properties, ok := l.cache.Get(ctx, key); ok {
		return properties, nil
	}

	// The fill is shared by coalesced callers and does not end with the
	// request that started it.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		properties, err := l.store.ListProperties(fillCtx, filter)
		if err != nil {
			return nil, err
		}
		l.cache.Set(fillCtx, key, properties)
		return properties, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Property), nil
}

// AgentCard is the public view of a listing's agent. Phone is only present
// once the viewer has unlocked it.
type AgentCard struct {
	ID           string  `json:"id"`
	FullName     string  `json:"fullName"`
	Phone        string  `json:"phone,omitempty"`
	Rating       float64 `json:"rating"`
	TotalRatings int     `json:"totalRatings"`
}

type PropertyDetail struct {
	Property    *models.Property `json:"property"`
	Agent       AgentCard        `json:"agent"`
	HasUnlocked bool             `json:"hasUnlocked"`
}

// Detail loads a property for its detail page and counts the view. Views are
// not deduplicated per viewer.
func (l *Listings) Detail(ctx context.Context, propertyHex string, viewer *models.Identity) (*PropertyDetail, error) {
	propertyID, err := parseID(propertyHex, "property")
	if err != nil {
		return nil, err
	}

	property, err := l.store.IncrementViews(ctx, propertyID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, "Property not found", err)
		}
		return nil, err
	}

	detail := &PropertyDetail{Property: property}
	agent, err := l.store.FindUserByID(ctx, property.AgentID)
	switch {
	case err == nil:
		detail.Agent = AgentCard{
			ID:           agent.ID.Hex(),
			FullName:     agent.FullName,
			Rating:       agent.Rating,
			TotalRatings: agent.TotalRatings,
		}
	case errors.Is(err, models.ErrNotFound):
		detail.Agent = AgentCard{ID: property.AgentID.Hex()}
		return detail, nil
	default:
		return nil, err
	}

	if viewer == nil {
		return detail, nil
	}
	switch viewer.Role {
	case models.RoleClient:
		clientID, err := parseID(viewer.ID, "client")
		if err != nil {
			return nil, err
		}
		detail.HasUnlocked, err = l.ledger.IsUnlocked(ctx, clientID, agent.ID, property.ID)
		if err != nil {
			return nil, err
		}
	case models.RoleAdmin:
		detail.HasUnlocked = true
	case models.RoleAgent:
		detail.HasUnlocked = viewer.ID == agent.ID.Hex()
	}
	if detail.HasUnlocked {
		detail.Agent.Phone = agent.Phone
	}
	return detail, nil
}
