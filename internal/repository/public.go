package repository

import (
	"context"

	"github.com/colibie/events-app-api/internal/model"
	"github.com/colibie/events-app-api/internal/repository/query"
)

// Repository is the document store the services run against. Lookups that
// miss return (nil, nil) — absence is a normal outcome here, not an error.
type Repository interface {
	CreateUser(ctx context.Context, doc map[string]any) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUsers(ctx context.Context, q query.Query) (*query.Page[model.User], error)
	UpdateUser(ctx context.Context, id string, patch map[string]any) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (*model.User, error)

	CreateEvent(ctx context.Context, doc map[string]any) (*model.Event, error)
	GetEvent(ctx context.Context, id string, populate []string) (*model.Event, error)
	FindEventByEmail(ctx context.Context, email string) (*model.Event, error)
	GetEvents(ctx context.Context, q query.Query) (*query.Page[model.Event], error)
	UpdateEvent(ctx context.Context, id string, patch map[string]any) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) (*model.Event, error)

	// Ownership lookups. Both tolerate ids that do not exist.
	HasEvent(ctx context.Context, userId string, eventId string) (bool, error)
	EventIdList(ctx context.Context, userId string, q query.Query) ([]string, error)
	UserIdList(ctx context.Context, userId string, q query.Query) ([]string, error)
}
