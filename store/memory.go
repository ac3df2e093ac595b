package store

import (
	"context"
	"sync"
	"time"

	"github.com/dcode-github/homlet/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process. Rows are held in creation
// order and a single mutex makes each insert-if-absent atomic.
type MemoryStore struct {
	mu         sync.Mutex
	users      []models.User
	properties []models.Property
	contacts   []models.Contact
	ratings    []models.Rating
	deals      []models.Deal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return models.NewError(models.ErrConflict, "user already exists")
		}
	}
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users = append(s.users, *user)
	return nil
}

func (s *MemoryStore) userIndex(id primitive.ObjectID) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return nil, models.NewError(models.ErrNotFound, "user not found")
	}
	user := s.users[i]
	return &user, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, models.NewError(models.ErrNotFound, "user not found")
}

func (s *MemoryStore) ListUsersByRole(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	for i := len(s.users) - 1; i >= 0; i-- {
		if s.users[i].Role == role {
			users = append(users, s.users[i])
		}
	}
	return users, nil
}

func (s *MemoryStore) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	users, _ := s.ListUsersByRole(ctx, role)
	return int64(len(users)), nil
}

func (s *MemoryStore) ToggleAgentBlocked(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	var agent models.User
	err := s.updateAgent(id, func(u *models.User) {
		u.IsBlocked = !u.IsBlocked
		agent = *u
	})
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (s *MemoryStore) SetAgentRating(_ context.Context, id primitive.ObjectID, agg models.RatingAggregate) error {
	return s.updateAgent(id, func(u *models.User) {
		u.Rating = agg.Average
		u.TotalRatings = agg.Count
	})
}

func (s *MemoryStore) updateAgent(id primitive.ObjectID, apply func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 || s.users[i].Role != models.RoleAgent {
		return models.NewError(models.ErrNotFound, "agent not found")
	}
	apply(&s.users[i])
	s.users[i].UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) CreateProperty(_ context.Context, property *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	property.ID = primitive.NewObjectID()
	property.CreatedAt = now
	property.UpdatedAt = now
	p := *property
	p.Images = append([]string(nil), property.Images...)
	s.properties = append(s.properties, p)
	return nil
}

func (s *MemoryStore) propertyIndex(id primitive.ObjectID) int {
	for i := range s.properties {
		if s.properties[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) FindPropertyByID(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.propertyIndex(id)
	if i < 0 {
		return nil, models.NewError(models.ErrNotFound, "property not found")
	}
	property := s.properties[i]
	return &property, nil
}

func (s *MemoryStore) ListProperties(_ context.Context, filter models.ListingFilter) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	properties := []models.Property{}
	for i := len(s.properties) - 1; i >= 0; i-- {
		if filter.Limit > 0 && len(properties) == filter.Limit {
			break
		}
		if filter.Matches(s.properties[i]) {
			properties = append(properties, s.properties[i])
		}
	}
	return properties, nil
}

func (s *MemoryStore) CountProperties(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.properties)), nil
}

func (s *MemoryStore) IncrementViews(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.propertyIndex(id)
	if i < 0 {
		return nil, models.NewError(models.ErrNotFound, "property not found")
	}
	s.properties[i].Views++
	property := s.properties[i]
	return &property, nil
}

func (s *MemoryStore) UpdateProperty(_ context.Context, id, agentID primitive.ObjectID, update models.PropertyUpdate) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.propertyIndex(id)
	if i < 0 || s.properties[i].AgentID != agentID {
		return nil, models.NewError(models.ErrNotFound, "property not found")
	}
	p := &s.properties[i]
	p.Title = update.Title
	p.Description = update.Description
	p.Price = update.Price
	p.Location = update.Location
	p.PropertyType = update.PropertyType
	p.Status = update.Status
	p.UpdatedAt = time.Now()
	property := *p
	return &property, nil
}

func (s *MemoryStore) DeleteProperty(_ context.Context, id, agentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.propertyIndex(id)
	if i < 0 || s.properties[i].AgentID != agentID {
		return models.NewError(models.ErrNotFound, "property not found")
	}
	s.properties = append(s.properties[:i], s.properties[i+1:]...)
	return nil
}

func (s *MemoryStore) InsertContact(_ context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.contacts {
		if c.ClientID == contact.ClientID && c.AgentID == contact.AgentID && c.PropertyID == contact.PropertyID {
			return models.NewError(models.ErrConflict, "contact already exists")
		}
	}
	now := time.Now()
	contact.ID = primitive.NewObjectID()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	s.contacts = append(s.contacts, *contact)
	return nil
}

func (s *MemoryStore) FindContact(_ context.Context, clientID, agentID, propertyID primitive.ObjectID) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.contacts {
		if c.ClientID == clientID && c.AgentID == agentID && c.PropertyID == propertyID {
			contact := c
			return &contact, nil
		}
	}
	return nil, models.NewError(models.ErrNotFound, "contact not found")
}

func (s *MemoryStore) HasContactWithAgent(_ context.Context, clientID, agentID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.contacts {
		if c.ClientID == clientID && c.AgentID == agentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListContacts(_ context.Context) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := make([]models.Contact, 0, len(s.contacts))
	for i := len(s.contacts) - 1; i >= 0; i-- {
		contacts = append(contacts, s.contacts[i])
	}
	return contacts, nil
}

func (s *MemoryStore) CountContacts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.contacts)), nil
}

func (s *MemoryStore) UpdateContactStatus(_ context.Context, id primitive.ObjectID, status models.ContactStatus) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts[i].Status = status
			s.contacts[i].UpdatedAt = time.Now()
			contact := s.contacts[i]
			return &contact, nil
		}
	}
	return nil, models.NewError(models.ErrNotFound, "contact not found")
}

func (s *MemoryStore) InsertRating(_ context.Context, rating *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.ratings {
		if r.ClientID == rating.ClientID && r.AgentID == rating.AgentID && r.PropertyID == rating.PropertyID {
			return models.NewError(models.ErrConflict, "rating already exists")
		}
	}
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = time.Now()
	s.ratings = append(s.ratings, *rating)
	return nil
}

func (s *MemoryStore) ListRatingsByAgent(_ context.Context, agentID primitive.ObjectID) ([]models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ratings := []models.Rating{}
	for i := len(s.ratings) - 1; i >= 0; i-- {
		if s.ratings[i].AgentID == agentID {
			ratings = append(ratings, s.ratings[i])
		}
	}
	return ratings, nil
}

func (s *MemoryStore) AggregateAgentRatings(ctx context.Context, agentID primitive.ObjectID) (models.RatingAggregate, error) {
	ratings, _ := s.ListRatingsByAgent(ctx, agentID)
	if len(ratings) == 0 {
		return models.RatingAggregate{}, nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return models.RatingAggregate{
		Average: float64(sum) / float64(len(ratings)),
		Count:   len(ratings),
	}, nil
}

func (s *MemoryStore) CreateDeal(_ context.Context, deal *models.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	deal.ID = primitive.NewObjectID()
	deal.CreatedAt = now
	deal.UpdatedAt = now
	s.deals = append(s.deals, *deal)
	return nil
}

func (s *MemoryStore) ListDeals(_ context.Context, agentID *primitive.ObjectID) ([]models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deals := []models.Deal{}
	for i := len(s.deals) - 1; i >= 0; i-- {
		if agentID == nil || s.deals[i].AgentID == *agentID {
			deals = append(deals, s.deals[i])
		}
	}
	return deals, nil
}

func (s *MemoryStore) CountDealsByStatus(_ context.Context, status models.DealStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, d := range s.deals {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) SetDealStatus(_ context.Context, id primitive.ObjectID, status models.DealStatus) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.deals {
		if s.deals[i].ID == id {
			s.deals[i].Status = status
			s.deals[i].UpdatedAt = time.Now()
			deal := s.deals[i]
			return &deal, nil
		}
	}
	return nil, models.NewError(models.ErrNotFound, "deal not found")
}

