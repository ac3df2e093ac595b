package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleClient Role = "client"
	RoleAgent  Role = "agent"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User is the persisted account record. Agent-only fields stay zero for
// clients and admins.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone" json:"phone,omitempty"`
	Password       string             `bson:"password" json:"-"`
	Role           Role               `bson:"role" json:"role"`
	Commission     float64            `bson:"commission" json:"commission"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture,omitempty"`
	Bio            string             `bson:"bio" json:"bio,omitempty"`
	Rating         float64            `bson:"rating" json:"rating"`
	TotalRatings   int                `bson:"totalRatings" json:"totalRatings"`
	IsBlocked      bool               `bson:"isBlocked" json:"isBlocked"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Identity is the session-scoped view of a logged in user.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	}
}
