package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/dcode-github/homlet/locks"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingAggregator accepts one rating per (client, agent, property) and keeps
// the agent's mean and count in step with the rating rows.
type RatingAggregator struct {
	store  store.Store
	ledger *Ledger
	locker locks.Locker
}

func NewRatingAggregator(s store.Store, ledger *Ledger, locker locks.Locker) *RatingAggregator {
	return &RatingAggregator{store: s, ledger: ledger, locker: locker}
}

// ParseRating reads a form value as a whole star rating in [1,5].
func ParseRating(raw string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, models.WrapError(models.ErrInvalidInput, "Please provide a valid rating (1-5)", err)
	}
	if err := validateRating(rating); err != nil {
		return 0, err
	}
	return rating, nil
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return models.NewError(models.ErrInvalidInput, "Please provide a valid rating (1-5)")
	}
	return nil
}

type RatingInput struct {
	ClientID   string
	AgentID    string
	PropertyID string
	Rating     int
	Comment    string
}

// SubmitRating stores the rating and returns the agent aggregate recomputed
// after it.
func (a *RatingAggregator) SubmitRating(ctx context.Context, in RatingInput) (models.RatingAggregate, error) {
	if err := validateRating(in.Rating); err != nil {
		return models.RatingAggregate{}, err
	}
	clientID, err := parseID(in.ClientID, "client")
	if err != nil {
		return models.RatingAggregate{}, err
	}
	agentID, err := parseID(in.AgentID, "agent")
	if err != nil {
		return models.RatingAggregate{}, err
	}
	propertyID, err := parseID(in.PropertyID, "property")
	if err != nil {
		return models.RatingAggregate{}, err
	}

	if _, err := a.findAgent(ctx, agentID); err != nil {
		return models.RatingAggregate{}, err
	}
	property, err := a.store.FindPropertyByID(ctx, propertyID)
	if err != nil {
		return models.RatingAggregate{}, propertyNotFound(err)
	}
	if property.AgentID != agentID {
		return models.RatingAggregate{}, models.NewError(models.ErrNotFound, "Property not found")
	}

	contacted, err := a.ledger.HasContacted(ctx, clientID, agentID)
	if err != nil {
		return models.RatingAggregate{}, err
	}
	if !contacted {
		return models.RatingAggregate{}, models.NewError(models.ErrForbidden, "You can only rate agents you have contacted")
	}

	// The row is only written while holding the agent lock, so a stored
	// rating is always followed by the recompute that counts it.
	unlock, err := a.lockAgent(ctx, agentID)
	if err != nil {
		return models.RatingAggregate{}, err
	}
	defer unlock()

	rating := &models.Rating{
		ClientID:   clientID,
		AgentID:    agentID,
		PropertyID: propertyID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	}
	if err := a.store.InsertRating(ctx, rating); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.RatingAggregate{}, models.WrapError(models.ErrConflict, "You have already rated this agent for this property", err)
		}
		return models.RatingAggregate{}, err
	}

	return a.recompute(ctx, agentID)
}

func (a *RatingAggregator) lockAgent(ctx context.Context, agentID primitive.ObjectID) (func(), error) {
	unlock, err := a.locker.Lock(ctx, "agent-rating:"+agentID.Hex())
	if err != nil {
		return nil, models.WrapError(models.ErrUnavailable, "Rating could not be saved, please try again", err)
	}
	return unlock, nil
}

// recompute rebuilds the agent's aggregate from every rating row. The caller
// holds the agent lock, so the last write always reflects every stored rating.
func (a *RatingAggregator) recompute(ctx context.Context, agentID primitive.ObjectID) (models.RatingAggregate, error) {
	agg, err := a.store.AggregateAgentRatings(ctx, agentID)
	if err != nil {
		return models.RatingAggregate{}, err
	}
	if err := a.store.SetAgentRating(ctx, agentID, agg); err != nil {
		return models.RatingAggregate{}, err
	}

	log.Printf("Agent %s rating recomputed: %.2f over %d ratings", agentID.Hex(), agg.Average, agg.Count)
	return agg, nil
}

// RatePage holds what a client needs to rate an agent they have contacted.
type RatePage struct {
	Agent      *models.User      `json:"agent"`
	Properties []models.Property `json:"properties"`
}

func (a *RatingAggregator) RatePage(ctx context.Context, clientHex, agentHex string) (*RatePage, error) {
	clientID, err := parseID(clientHex, "client")
	if err != nil {
		return nil, err
	}
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return nil, err
	}

	agent, err := a.findAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	contacted, err := a.ledger.HasContacted(ctx, clientID, agentID)
	if err != nil {
		return nil, err
	}
	if !contacted {
		return nil, models.NewError(models.ErrForbidden, "You can only rate agents you have contacted")
	}

	properties, err := a.store.ListProperties(ctx, models.ListingFilter{AgentID: agentHex})
	if err != nil {
		return nil, err
	}
	return &RatePage{Agent: agent, Properties: properties}, nil
}

func (a *RatingAggregator) findAgent(ctx context.Context, agentID primitive.ObjectID) (*models.User, error) {
	agent, err := a.store.FindUserByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, "Agent not found", err)
		}
		return nil, err
	}
	if agent.Role != models.RoleAgent {
		return nil, models.NewError(models.ErrNotFound, "Agent not found")
	}
	return agent, nil
}
