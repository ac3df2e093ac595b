package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/dcode-github/homlet/cache"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
)

// Properties covers what an agent does to their own listings.
type Properties struct {
	store store.Store
	cache cache.ListingCache
}

func NewProperties(s store.Store, c cache.ListingCache) *Properties {
	return &Properties{store: s, cache: c}
}

type PropertyInput struct {
	Title        string
	Description  string
	Price        string
	State        string
	Area         string
	PropertyType string
	Status       string
}

// UploadInput carries the listing fields plus the stored file names of the
// uploaded media.
type UploadInput struct {
	PropertyInput
	Images []string
	Videos []string
}

func (in PropertyInput) validate() (models.PropertyUpdate, error) {
	update := models.PropertyUpdate{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Location:     models.Location{State: strings.TrimSpace(in.State), Area: strings.TrimSpace(in.Area)},
		PropertyType: models.PropertyType(strings.TrimSpace(in.PropertyType)),
		Status:       models.PropertyStatus(strings.TrimSpace(in.Status)),
	}
	if update.Title == "" || update.Description == "" || strings.TrimSpace(in.Price) == "" ||
		update.Location.State == "" || update.Location.Area == "" || update.PropertyType == "" {
		return update, models.NewError(models.ErrInvalidInput, "Please fill in all required fields")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || price < 0 {
		return update, models.WrapError(models.ErrInvalidInput, "Please provide a valid price", err)
	}
	update.Price = price

	if !update.PropertyType.Valid() {
		return update, models.NewError(models.ErrInvalidInput, "Property type must be rent or buy")
	}
	if update.Status == "" {
		update.Status = models.StatusActive
	}
	if !update.Status.Valid() {
		return update, models.NewError(models.ErrInvalidInput, "Invalid property status")
	}
	return update, nil
}

// ValidateMedia checks the media counts a listing needs: exactly five images
// and at most one video. File contents are not inspected.
func ValidateMedia(images, videos []string) error {
	if len(images) != models.RequiredImages {
		return models.NewError(models.ErrInvalidInput, "Please upload exactly 5 images")
	}
	for _, name := range images {
		if strings.TrimSpace(name) == "" {
			return models.NewError(models.ErrInvalidInput, "Please upload exactly 5 images")
		}
	}
	if len(videos) > models.MaxVideos {
		return models.NewError(models.ErrInvalidInput, "Please upload at most 1 video")
	}
	return nil
}

func (p *Properties) Upload(ctx context.Context, agentHex string, in UploadInput) (*models.Property, error) {
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return nil, err
	}
	fields, err := in.validate()
	if err != nil {
		return nil, err
	}
	if err := ValidateMedia(in.Images, in.Videos); err != nil {
		return nil, err
	}

	property := &models.Property{
		AgentID:      agentID,
		Title:        fields.Title,
		Description:  fields.Description,
		Price:        fields.Price,
		Location:     fields.Location,
		PropertyType: fields.PropertyType,
		Images:       append([]string(nil), in.Images...),
		Status:       models.StatusActive,
	}
	if len(in.Videos) == 1 {
		property.Video = in.Videos[0]
	}

	if err := p.store.CreateProperty(ctx, property); err != nil {
		return nil, err
	}
	p.cache.Invalidate(ctx)

	log.Printf("Property %s uploaded by agent %s", property.ID.Hex(), agentHex)
	return property, nil
}

func (p *Properties) Find(ctx context.Context, agentHex, propertyHex string) (*models.Property, error) {
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return nil, err
	}
	propertyID, err := parseID(propertyHex, "property")
	if err != nil {
		return nil, err
	}
	property, err := p.store.FindPropertyByID(ctx, propertyID)
	if err != nil {
		return nil, propertyNotFound(err)
	}
	if property.AgentID != agentID {
		return nil, models.NewError(models.ErrNotFound, "Property not found")
	}
	return property, nil
}

func (p *Properties) Update(ctx context.Context, agentHex, propertyHex string, in PropertyInput) (*models.Property, error) {
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return nil, err
	}
	propertyID, err := parseID(propertyHex, "property")
	if err != nil {
		return nil, err
	}
	fields, err := in.validate()
	if err != nil {
		return nil, err
	}

	property, err := p.store.UpdateProperty(ctx, propertyID, agentID, fields)
	if err != nil {
		return nil, propertyNotFound(err)
	}
	p.cache.Invalidate(ctx)
	return property, nil
}

func (p *Properties) Delete(ctx context.Context, agentHex, propertyHex string) error {
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return err
	}
	propertyID, err := parseID(propertyHex, "property")
	if err != nil {
		return err
	}
	if err := p.store.DeleteProperty(ctx, propertyID, agentID); err != nil {
		return propertyNotFound(err)
	}
	p.cache.Invalidate(ctx)
	return nil
}

type DealInput struct {
	PropertyID string
	ClientID   string
	DealValue  string
	Notes      string
}

// RecordDeal logs a deal on one of the agent's properties. The commission owed
// is the deal value times the agent's commission percentage.
func (p *Properties) RecordDeal(ctx context.Context, agentHex string, in DealInput) (*models.Deal, error) {
	property, err := p.Find(ctx, agentHex, in.PropertyID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID(in.ClientID, "client")
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(in.DealValue), 64)
	if err != nil || value <= 0 {
		return nil, models.WrapError(models.ErrInvalidInput, "Please provide a valid deal value", err)
	}

	client, err := p.store.FindUserByID(ctx, clientID)
	if err != nil || client.Role != models.RoleClient {
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, models.NewError(models.ErrNotFound, "Client not found")
	}
	agent, err := p.store.FindUserByID(ctx, property.AgentID)
	if err != nil {
		return nil, err
	}

	deal := &models.Deal{
		PropertyID: property.ID,
		ClientID:   client.ID,
		AgentID:    agent.ID,
		Status:     models.DealPending,
		DealValue:  value,
		Commission: value * agent.Commission / 100,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if err := p.store.CreateDeal(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

type AgentDashboard struct {
	Agent      *models.User      `json:"agent"`
	Properties []models.Property `json:"properties"`
	Deals      []models.Deal     `json:"deals"`
	Ratings    []models.Rating   `json:"ratings"`
}

func (p *Properties) Dashboard(ctx context.Context, agentHex string) (*AgentDashboard, error) {
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return nil, err
	}
	agent, err := p.store.FindUserByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	properties, err := p.store.ListProperties(ctx, models.ListingFilter{AgentID: agentHex})
	if err != nil {
		return nil, err
	}
	deals, err := p.store.ListDeals(ctx, &agentID)
	if err != nil {
		return nil, err
	}
	ratings, err := p.store.ListRatingsByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &AgentDashboard{Agent: agent, Properties: properties, Deals: deals, Ratings: ratings}, nil
}

func propertyNotFound(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.WrapError(models.ErrNotFound, "Property not found", err)
	}
	return err
}
