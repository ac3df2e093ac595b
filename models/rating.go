package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Rating struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID   primitive.ObjectID `bson:"client" json:"clientId"`
	AgentID    primitive.ObjectID `bson:"agent" json:"agentId"`
	PropertyID primitive.ObjectID `bson:"property" json:"propertyId"`
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment" json:"comment"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// RatingAggregate is the agent-level mean and count over all Rating rows.
type RatingAggregate struct {
	Average float64 `json:"rating"`
	Count   int     `json:"totalRatings"`
}
