package services

import (
	"context"
	"errors"
	"log"

	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Ledger records client outreach to agents. A ledger entry for
// (client, agent, property) is what unlocks the agent's phone number for that
// property and what makes the client eligible to rate the agent.
type Ledger struct {
	store store.Store
}

func NewLedger(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// RequestContact creates a pending contact snapshot for the triple. The
// returned contact carries the agent phone number that is now unlocked.
func (l *Ledger) RequestContact(ctx context.Context, clientHex, agentHex, propertyHex string) (*models.Contact, error) {
	clientID, err := parseID(clientHex, "client")
	if err != nil {
		return nil, err
	}
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return nil, err
	}
	propertyID, err := parseID(propertyHex, "property")
	if err != nil {
		return nil, err
	}

	var (
		client, agent *models.User
		property      *models.Property
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		client, err = l.store.FindUserByID(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		agent, err = l.store.FindUserByID(gctx, agentID)
		return err
	})
	g.Go(func() (err error) {
		property, err = l.store.FindPropertyByID(gctx, propertyID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, "Agent or property not found", err)
		}
		return nil, err
	}

	if agent.Role != models.RoleAgent || property.AgentID != agent.ID {
		return nil, models.NewError(models.ErrNotFound, "Agent or property not found")
	}
	if client.Role != models.RoleClient {
		return nil, models.NewError(models.ErrForbidden, "Only clients can contact agents")
	}

	contact := &models.Contact{
		ClientID:      client.ID,
		AgentID:       agent.ID,
		PropertyID:    property.ID,
		ClientName:    client.FullName,
		ClientPhone:   client.Phone,
		AgentName:     agent.FullName,
		AgentPhone:    agent.Phone,
		PropertyTitle: property.Title,
		Status:        models.ContactPending,
	}
	if err := l.store.InsertContact(ctx, contact); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.WrapError(models.ErrConflict, "You have already contacted this agent for this property", err)
		}
		return nil, err
	}

	log.Printf("Contact %s created: client %s -> agent %s for property %s", contact.ID.Hex(), clientHex, agentHex, propertyHex)
	return contact, nil
}

// IsUnlocked reports whether the client has contacted the agent about the property.
func (l *Ledger) IsUnlocked(ctx context.Context, clientID, agentID, propertyID primitive.ObjectID) (bool, error) {
	_, err := l.store.FindContact(ctx, clientID, agentID, propertyID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// HasContacted reports whether the client contacted the agent about any property.
func (l *Ledger) HasContacted(ctx context.Context, clientID, agentID primitive.ObjectID) (bool, error) {
	return l.store.HasContactWithAgent(ctx, clientID, agentID)
}

func (l *Ledger) UpdateStatus(ctx context.Context, contactHex, status string) (*models.Contact, error) {
	contactID, err := parseID(contactHex, "contact")
	if err != nil {
		return nil, err
	}
	next := models.ContactStatus(status)
	if !next.Valid() {
		return nil, models.NewError(models.ErrInvalidInput, "Invalid contact status")
	}

	contact, err := l.store.UpdateContactStatus(ctx, contactID, next)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, "Contact not found", err)
		}
		return nil, err
	}
	return contact, nil
}

func (l *Ledger) List(ctx context.Context) ([]models.Contact, error) {
	return l.store.ListContacts(ctx)
}
