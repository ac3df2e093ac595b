package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	PropertyRent PropertyType = "rent"
	PropertyBuy  PropertyType = "buy"
)

func (t PropertyType) Valid() bool {
	return t == PropertyRent || t == PropertyBuy
}

type PropertyStatus string

const (
	StatusActive PropertyStatus = "active"
	StatusSold   PropertyStatus = "sold"
	StatusRented PropertyStatus = "rented"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusRented:
		return true
	}
	return false
}

const (
	RequiredImages = 5
	MaxVideos      = 1
)

type Location struct {
	State string `bson:"state" json:"state"`
	Area  string `bson:"area" json:"area"`
}

type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID      primitive.ObjectID `bson:"agent" json:"agentId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	Location     Location           `bson:"location" json:"location"`
	PropertyType PropertyType       `bson:"propertyType" json:"propertyType"`
	Images       []string           `bson:"images" json:"images"`
	Video        string             `bson:"video" json:"video,omitempty"`
	Status       PropertyStatus     `bson:"status" json:"status"`
	Views        int                `bson:"views" json:"views"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PropertyUpdate holds the fields an owning agent may change after upload.
type PropertyUpdate struct {
	Title        string
	Description  string
	Price        float64
	Location     Location
	PropertyType PropertyType
	Status       PropertyStatus
}

// ListingFilter is the structured predicate built from listing query
// parameters. Nil bounds and empty strings impose no constraint.
type ListingFilter struct {
	Status       PropertyStatus `json:"status,omitempty"`
	State        string         `json:"state,omitempty"`
	Area         string         `json:"area,omitempty"`
	MinPrice     *float64       `json:"minPrice,omitempty"`
	MaxPrice     *float64       `json:"maxPrice,omitempty"`
	PropertyType PropertyType   `json:"propertyType,omitempty"`
	AgentID      string         `json:"agentId,omitempty"`
	Limit        int            `json:"limit,omitempty"`
}

func (f ListingFilter) Matches(p Property) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.State != "" && !containsFold(p.Location.State, f.State) {
		return false
	}
	if f.Area != "" && !containsFold(p.Location.Area, f.Area) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.PropertyType != "" && p.PropertyType != f.PropertyType {
		return false
	}
	if f.AgentID != "" && p.AgentID.Hex() != f.AgentID {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
