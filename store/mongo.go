package store

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/dcode-github/homlet/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	users      *mongo.Collection
	properties *mongo.Collection
	contacts   *mongo.Collection
	ratings    *mongo.Collection
	deals      *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:      db.Collection("users"),
		properties: db.Collection("properties"),
		contacts:   db.Collection("contacts"),
		ratings:    db.Collection("ratings"),
		deals:      db.Collection("deals"),
	}
}

// EnsureIndexes creates the unique indexes the ledger and the rating
// aggregator rely on for their insert-if-absent semantics.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	triple := bson.D{{Key: "client", Value: 1}, {Key: "agent", Value: 1}, {Key: "property", Value: 1}}

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.contacts, mongo.IndexModel{Keys: triple, Options: options.Index().SetUnique(true)}},
		{s.ratings, mongo.IndexModel{Keys: triple, Options: options.Index().SetUnique(true)}},
		{s.ratings, mongo.IndexModel{Keys: bson.D{{Key: "agent", Value: 1}}}},
		{s.properties, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.deals, mongo.IndexModel{Keys: bson.D{{Key: "agent", Value: 1}}}},
	}

	for _, idx := range indexes {
		name, err := idx.coll.Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return mapErr(err, "index")
		}
		log.Printf("Ensured index %s on %s", name, idx.coll.Name())
	}
	return nil
}

func mapErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.NewError(models.ErrNotFound, entity+" not found")
	case mongo.IsDuplicateKeyError(err):
		return models.WrapError(models.ErrConflict, entity+" already exists", err)
	default:
		return models.WrapError(models.ErrUnavailable, "database unavailable", err)
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, user)
	return mapErr(err, "user")
}

func (s *MongoStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr(err, "user")
	}
	return &user, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mapErr(err, "user")
	}
	return &user, nil
}

func (s *MongoStore) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	users, err := findAll[models.User](ctx, s.users, bson.M{"role": role}, newestFirst())
	return users, mapErr(err, "user")
}

func (s *MongoStore) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"role": role})
	return n, mapErr(err, "user")
}

func (s *MongoStore) ToggleAgentBlocked(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	toggle := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isBlocked", Value: bson.D{{Key: "$not", Value: bson.A{"$isBlocked"}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	var agent models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id, "role": models.RoleAgent}, toggle, opts).Decode(&agent)
	if err != nil {
		return nil, mapErr(err, "agent")
	}
	return &agent, nil
}

func (s *MongoStore) SetAgentRating(ctx context.Context, id primitive.ObjectID, agg models.RatingAggregate) error {
	return s.updateAgent(ctx, id, bson.M{"rating": agg.Average, "totalRatings": agg.Count})
}

func (s *MongoStore) updateAgent(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id, "role": models.RoleAgent}, bson.M{"$set": fields})
	if err != nil {
		return mapErr(err, "agent")
	}
	if res.MatchedCount == 0 {
		return models.NewError(models.ErrNotFound, "agent not found")
	}
	return nil
}

func (s *MongoStore) CreateProperty(ctx context.Context, property *models.Property) error {
	now := time.Now()
	property.ID = primitive.NewObjectID()
	property.CreatedAt = now
	property.UpdatedAt = now
	_, err := s.properties.InsertOne(ctx, property)
	return mapErr(err, "property")
}

func (s *MongoStore) FindPropertyByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	if err := s.properties.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		return nil, mapErr(err, "property")
	}
	return &property, nil
}

// listingQuery translates a ListingFilter into a Mongo query document.
func listingQuery(f models.ListingFilter) bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.State != "" {
		query["location.state"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.State), Options: "i"}
	}
	if f.Area != "" {
		query["location.area"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Area), Options: "i"}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.PropertyType != "" {
		query["propertyType"] = f.PropertyType
	}
	if f.AgentID != "" {
		if agentID, err := primitive.ObjectIDFromHex(f.AgentID); err == nil {
			query["agent"] = agentID
		}
	}
	return query
}

func (s *MongoStore) ListProperties(ctx context.Context, filter models.ListingFilter) ([]models.Property, error) {
	opts := newestFirst()
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	properties, err := findAll[models.Property](ctx, s.properties, listingQuery(filter), opts)
	return properties, mapErr(err, "property")
}

func (s *MongoStore) CountProperties(ctx context.Context) (int64, error) {
	n, err := s.properties.CountDocuments(ctx, bson.M{})
	return n, mapErr(err, "property")
}

func (s *MongoStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.properties.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&property)
	if err != nil {
		return nil, mapErr(err, "property")
	}
	return &property, nil
}

func (s *MongoStore) UpdateProperty(ctx context.Context, id, agentID primitive.ObjectID, update models.PropertyUpdate) (*models.Property, error) {
	set := bson.M{
		"title":        update.Title,
		"description":  update.Description,
		"price":        update.Price,
		"location":     update.Location,
		"propertyType": update.PropertyType,
		"status":       update.Status,
		"updatedAt":    time.Now(),
	}

	var property models.Property
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.properties.FindOneAndUpdate(ctx, bson.M{"_id": id, "agent": agentID}, bson.M{"$set": set}, opts).Decode(&property)
	if err != nil {
		return nil, mapErr(err, "property")
	}
	return &property, nil
}

func (s *MongoStore) DeleteProperty(ctx context.Context, id, agentID primitive.ObjectID) error {
	res, err := s.properties.DeleteOne(ctx, bson.M{"_id": id, "agent": agentID})
	if err != nil {
		return mapErr(err, "property")
	}
	if res.DeletedCount == 0 {
		return models.NewError(models.ErrNotFound, "property not found")
	}
	return nil
}

func (s *MongoStore) InsertContact(ctx context.Context, contact *models.Contact) error {
	now := time.Now()
	contact.ID = primitive.NewObjectID()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	_, err := s.contacts.InsertOne(ctx, contact)
	return mapErr(err, "contact")
}

func (s *MongoStore) FindContact(ctx context.Context, clientID, agentID, propertyID primitive.ObjectID) (*models.Contact, error) {
	var contact models.Contact
	filter := bson.M{"client": clientID, "agent": agentID, "property": propertyID}
	if err := s.contacts.FindOne(ctx, filter).Decode(&contact); err != nil {
		return nil, mapErr(err, "contact")
	}
	return &contact, nil
}

func (s *MongoStore) HasContactWithAgent(ctx context.Context, clientID, agentID primitive.ObjectID) (bool, error) {
	n, err := s.contacts.CountDocuments(ctx, bson.M{"client": clientID, "agent": agentID}, options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr(err, "contact")
	}
	return n > 0, nil
}

func (s *MongoStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := findAll[models.Contact](ctx, s.contacts, bson.M{}, newestFirst())
	return contacts, mapErr(err, "contact")
}

func (s *MongoStore) CountContacts(ctx context.Context) (int64, error) {
	n, err := s.contacts.CountDocuments(ctx, bson.M{})
	return n, mapErr(err, "contact")
}

func (s *MongoStore) UpdateContactStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus) (*models.Contact, error) {
	var contact models.Contact
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	if err := s.contacts.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&contact); err != nil {
		return nil, mapErr(err, "contact")
	}
	return &contact, nil
}

func (s *MongoStore) InsertRating(ctx context.Context, rating *models.Rating) error {
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = time.Now()
	_, err := s.ratings.InsertOne(ctx, rating)
	return mapErr(err, "rating")
}

func (s *MongoStore) ListRatingsByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Rating, error) {
	ratings, err := findAll[models.Rating](ctx, s.ratings, bson.M{"agent": agentID}, newestFirst())
	return ratings, mapErr(err, "rating")
}

func (s *MongoStore) AggregateAgentRatings(ctx context.Context, agentID primitive.ObjectID) (models.RatingAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"agent": agentID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.ratings.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingAggregate{}, mapErr(err, "rating")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return models.RatingAggregate{}, mapErr(err, "rating")
	}
	if len(rows) == 0 {
		return models.RatingAggregate{}, nil
	}
	return models.RatingAggregate{Average: rows[0].Avg, Count: rows[0].Count}, nil
}

func (s *MongoStore) CreateDeal(ctx context.Context, deal *models.Deal) error {
	now := time.Now()
	deal.ID = primitive.NewObjectID()
	deal.CreatedAt = now
	deal.UpdatedAt = now
	_, err := s.deals.InsertOne(ctx, deal)
	return mapErr(err, "deal")
}

func (s *MongoStore) ListDeals(ctx context.Context, agentID *primitive.ObjectID) ([]models.Deal, error) {
	filter := bson.M{}
	if agentID != nil {
		filter["agent"] = *agentID
	}
	deals, err := findAll[models.Deal](ctx, s.deals, filter, newestFirst())
	return deals, mapErr(err, "deal")
}

func (s *MongoStore) CountDealsByStatus(ctx context.Context, status models.DealStatus) (int64, error) {
	n, err := s.deals.CountDocuments(ctx, bson.M{"status": status})
	return n, mapErr(err, "deal")
}

func (s *MongoStore) SetDealStatus(ctx context.Context, id primitive.ObjectID, status models.DealStatus) (*models.Deal, error) {
	var deal models.Deal
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	if err := s.deals.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&deal); err != nil {
		return nil, mapErr(err, "deal")
	}
	return &deal, nil
}
