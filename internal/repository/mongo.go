package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/colibie/events-app-api/internal/config"
	"github.com/colibie/events-app-api/internal/model"
	"github.com/colibie/events-app-api/internal/repository/query"
)

const (
	databaseName = "events-app"

	usersCollectionName  = "users"
	eventsCollectionName = "events"
)

type mongoRepository struct {
	logger   *zap.SugaredLogger
	database *mongo.Database

	userCollection  *mongo.Collection
	eventCollection *mongo.Collection
}

var _ Repository = (*mongoRepository)(nil)

// NewMongoRepository connects to Mongo and disconnects when ctx is done,
// marking wg so shutdown can wait for the connection to drain.
func NewMongoRepository(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup, cfg config.MongoDBConfig) (Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("disconnecting from mongo")
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Errorw("failed to disconnect from mongo", "error", err)
		}
	}()

	database := client.Database(databaseName)
	return &mongoRepository{
		logger:          logger,
		database:        database,
		userCollection:  database.Collection(usersCollectionName),
		eventCollection: database.Collection(eventsCollectionName),
	}, nil
}

func (m *mongoRepository) CreateUser(ctx context.Context, doc map[string]any) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := model.ValidateUserDoc(doc); err != nil {
		return nil, err
	}

	doc = withCreateDefaults(doc)
	if _, ok := doc["role"]; !ok {
		doc["role"] = "user"
	}

	if _, err := m.userCollection.InsertOne(ctx, bson.M(doc)); err != nil {
		return nil, err
	}

	return m.GetUser(ctx, doc["_id"].(string))
}

func (m *mongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user model.User
	err := m.userCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (m *mongoRepository) GetUsers(ctx context.Context, q query.Query) (*query.Page[model.User], error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := query.BuildFilter(q)

	total, err := m.userCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(query.BuildSort(q)).
		SetSkip(q.Skip()).
		SetLimit(q.PageSize)

	cursor, err := m.userCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return &query.Page[model.User]{Items: users, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (m *mongoRepository) UpdateUser(ctx context.Context, id string, patch map[string]any) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user model.User
	err := m.userCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": withUpdateDefaults(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (m *mongoRepository) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user model.User
	err := m.userCollection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (m *mongoRepository) CreateEvent(ctx context.Context, doc map[string]any) (*model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := model.ValidateEventDoc(doc); err != nil {
		return nil, err
	}

	doc = withCreateDefaults(doc)

	if _, err := m.eventCollection.InsertOne(ctx, bson.M(doc)); err != nil {
		return nil, err
	}

	return m.GetEvent(ctx, doc["_id"].(string), nil)
}

func (m *mongoRepository) GetEvent(ctx context.Context, id string, populate []string) (*model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event model.Event
	err := m.eventCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	if containsField(populate, "user") {
		if err := m.populateOwners(ctx, []*model.Event{&event}); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

func (m *mongoRepository) FindEventByEmail(ctx context.Context, email string) (*model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// exact match, case-insensitive
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"}

	var event model.Event
	err := m.eventCollection.FindOne(ctx, bson.M{"email": pattern}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

func (m *mongoRepository) GetEvents(ctx context.Context, q query.Query) (*query.Page[model.Event], error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := query.BuildFilter(q)

	total, err := m.eventCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(query.BuildSort(q)).
		SetSkip(q.Skip()).
		SetLimit(q.PageSize)

	cursor, err := m.eventCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	if q.WantsPopulate("user") {
		refs := make([]*model.Event, len(events))
		for i := range events {
			refs[i] = &events[i]
		}
		if err := m.populateOwners(ctx, refs); err != nil {
			return nil, err
		}
	}

	return &query.Page[model.Event]{Items: events, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (m *mongoRepository) UpdateEvent(ctx context.Context, id string, patch map[string]any) (*model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event model.Event
	err := m.eventCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": withUpdateDefaults(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

func (m *mongoRepository) DeleteEvent(ctx context.Context, id string) (*model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event model.Event
	err := m.eventCollection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

func (m *mongoRepository) HasEvent(ctx context.Context, userId string, eventId string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := m.eventCollection.CountDocuments(ctx, bson.M{"_id": eventId, "user": userId})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (m *mongoRepository) EventIdList(ctx context.Context, userId string, q query.Query) ([]string, error) {
	filter := query.BuildFilter(q)
	filter["user"] = userId
	return m.idList(ctx, m.eventCollection, filter)
}

func (m *mongoRepository) UserIdList(ctx context.Context, userId string, q query.Query) ([]string, error) {
	// a user only ever owns itself, so the ownership constraint is an _id match
	filter := query.BuildFilter(q)
	filter["_id"] = userId
	return m.idList(ctx, m.userCollection, filter)
}

func (m *mongoRepository) idList(ctx context.Context, collection *mongo.Collection, filter bson.M) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}

	var docs []struct {
		Id string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.Id
	}

	return ids, nil
}

// populateOwners expands the user relation on the given events with a single
// $in lookup over the owning ids.
func (m *mongoRepository) populateOwners(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	idSet := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if _, seen := idSet[e.UserId]; !seen {
			idSet[e.UserId] = struct{}{}
			ids = append(ids, e.UserId)
		}
	}

	cursor, err := m.userCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return err
	}

	byId := make(map[string]*model.User, len(users))
	for i := range users {
		byId[users[i].Id] = &users[i]
	}

	for _, e := range events {
		e.Owner = byId[e.UserId]
	}

	return nil
}

func withCreateDefaults(doc map[string]any) map[string]any {
	now := time.Now().UTC()
	out := make(map[string]any, len(doc)+3)
	for k, v := range doc {
		out[k] = v
	}
	out["_id"] = uuid.NewString()
	out["createdAt"] = now
	out["updatedAt"] = now
	return out
}

func withUpdateDefaults(patch map[string]any) map[string]any {
	out := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	out["updatedAt"] = time.Now().UTC()
	return out
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
