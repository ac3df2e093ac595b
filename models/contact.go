package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContactStatus string

const (
	ContactPending   ContactStatus = "pending"
	ContactContacted ContactStatus = "contacted"
	ContactClosed    ContactStatus = "closed"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactPending, ContactContacted, ContactClosed:
		return true
	}
	return false
}

// Contact is a ledger entry for a client reaching out to an agent about a
// property. Name, phone and title fields are snapshots taken at creation and
// are never rewritten.
type Contact struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID `bson:"client" json:"clientId"`
	AgentID       primitive.ObjectID `bson:"agent" json:"agentId"`
	PropertyID    primitive.ObjectID `bson:"property" json:"propertyId"`
	ClientName    string             `bson:"clientName" json:"clientName"`
	ClientPhone   string             `bson:"clientPhone" json:"clientPhone"`
	AgentName     string             `bson:"agentName" json:"agentName"`
	AgentPhone    string             `bson:"agentPhone" json:"agentPhone"`
	PropertyTitle string             `bson:"propertyTitle" json:"propertyTitle"`
	Status        ContactStatus      `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
