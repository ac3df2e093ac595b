// Package store is the persistence boundary: a document store offering
// unique-key lookup, conditional insert, filtered listing and ordering by
// creation time.
package store

import (
	"context"

	"github.com/dcode-github/homlet/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ Store = (*MongoStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

type Store interface {
	UserStore
	PropertyStore
	ContactStore
	RatingStore
	DealStore
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	CountUsersByRole(ctx context.Context, role models.Role) (int64, error)
	// ToggleAgentBlocked flips isBlocked in one write and returns the agent after it.
	ToggleAgentBlocked(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetAgentRating(ctx context.Context, id primitive.ObjectID, agg models.RatingAggregate) error
}

type PropertyStore interface {
	CreateProperty(ctx context.Context, property *models.Property) error
	FindPropertyByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	// ListProperties returns matching properties, newest first.
	ListProperties(ctx context.Context, filter models.ListingFilter) ([]models.Property, error)
	CountProperties(ctx context.Context) (int64, error)
	// IncrementViews bumps the view counter and returns the updated record.
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	// UpdateProperty applies the update only when the property belongs to agentID.
	UpdateProperty(ctx context.Context, id, agentID primitive.ObjectID, update models.PropertyUpdate) (*models.Property, error)
	DeleteProperty(ctx context.Context, id, agentID primitive.ObjectID) error
}

type ContactStore interface {
	// InsertContact is an atomic insert-if-absent on (client, agent, property).
	// A duplicate yields models.ErrConflict and leaves the existing row untouched.
	InsertContact(ctx context.Context, contact *models.Contact) error
	FindContact(ctx context.Context, clientID, agentID, propertyID primitive.ObjectID) (*models.Contact, error)
	HasContactWithAgent(ctx context.Context, clientID, agentID primitive.ObjectID) (bool, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	CountContacts(ctx context.Context) (int64, error)
	UpdateContactStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus) (*models.Contact, error)
}

type RatingStore interface {
	// InsertRating is an atomic insert-if-absent on (client, agent, property).
	InsertRating(ctx context.Context, rating *models.Rating) error
	ListRatingsByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Rating, error)
	// AggregateAgentRatings computes mean and count over every rating row of the agent.
	AggregateAgentRatings(ctx context.Context, agentID primitive.ObjectID) (models.RatingAggregate, error)
}

type DealStore interface {
	CreateDeal(ctx context.Context, deal *models.Deal) error
	ListDeals(ctx context.Context, agentID *primitive.ObjectID) ([]models.Deal, error)
	CountDealsByStatus(ctx context.Context, status models.DealStatus) (int64, error)
	SetDealStatus(ctx context.Context, id primitive.ObjectID, status models.DealStatus) (*models.Deal, error)
}
