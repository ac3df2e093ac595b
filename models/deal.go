package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DealStatus string

const (
	DealPending DealStatus = "pending"
	DealClosed  DealStatus = "closed"
	DealFlagged DealStatus = "flagged"
)

type Deal struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PropertyID     primitive.ObjectID `bson:"property" json:"propertyId"`
	ClientID       primitive.ObjectID `bson:"client" json:"clientId"`
	AgentID        primitive.ObjectID `bson:"agent" json:"agentId"`
	Status         DealStatus         `bson:"status" json:"status"`
	DealValue      float64            `bson:"dealValue" json:"dealValue"`
	Commission     float64            `bson:"commission" json:"commission"`
	CommissionPaid bool               `bson:"commissionPaid" json:"commissionPaid"`
	Notes          string             `bson:"notes" json:"notes"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
