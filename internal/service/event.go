package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/colibie/events-app-api/internal/access"
	"github.com/colibie/events-app-api/internal/messaging/notifier"
	"github.com/colibie/events-app-api/internal/model"
	"github.com/colibie/events-app-api/internal/repository"
	"github.com/colibie/events-app-api/internal/repository/query"
)

type EventService struct {
	logger *zap.SugaredLogger
	repo   repository.Repository
	ctrl   *access.Control
	notif  notifier.Notifier
}

func NewEventService(logger *zap.SugaredLogger, repo repository.Repository, ctrl *access.Control, notif notifier.Notifier) *EventService {
	return &EventService{
		logger: logger,
		repo:   repo,
		ctrl:   ctrl,
		notif:  notif,
	}
}

// Get fetches one event. The record is fetched before the permission decision
// so a missing record is not-found for every role; an unauthorized caller
// cannot tell "absent" from "not yours" on the forbidden path either way.
func (s *EventService) Get(ctx context.Context, caller Caller, id string, q query.Query) Outcome[*model.Event] {
	anyGrant := s.ctrl.Can(caller.Role).ReadAny(model.ResourceEvent)
	ownGrant := s.ctrl.Can(caller.Role).ReadOwn(model.ResourceEvent)

	event, err := s.repo.GetEvent(ctx, id, q.Populate)
	if err != nil {
		s.logger.Errorw("failed to fetch event", "id", id, "error", err)
		return failure[*model.Event](err, "failed to fetch Event")
	}
	if event == nil {
		return notFound[*model.Event](model.ResourceEvent)
	}

	if anyGrant.Granted {
		return okAny(event)
	}

	if ownGrant.Granted {
		owned, err := s.repo.HasEvent(ctx, caller.Id, id)
		if err != nil {
			s.logger.Errorw("failed to check event ownership", "id", id, "error", err)
			return failure[*model.Event](err, "failed to fetch Event")
		}
		if owned {
			return okOwn(event)
		}
	}

	return forbidden[*model.Event]()
}

// FindByEmail looks an event up by its contact email, case-insensitively,
// under the same read protocol as Get.
func (s *EventService) FindByEmail(ctx context.Context, caller Caller, email string) Outcome[*model.Event] {
	anyGrant := s.ctrl.Can(caller.Role).ReadAny(model.ResourceEvent)
	ownGrant := s.ctrl.Can(caller.Role).ReadOwn(model.ResourceEvent)

	event, err := s.repo.FindEventByEmail(ctx, email)
	if err != nil {
		s.logger.Errorw("failed to fetch event by email", "error", err)
		return failure[*model.Event](err, "failed to fetch Event")
	}
	if event == nil {
		return notFound[*model.Event](model.ResourceEvent)
	}

	if anyGrant.Granted {
		return okAny(event)
	}
	if ownGrant.Granted && event.UserId == caller.Id {
		return okOwn(event)
	}

	return forbidden[*model.Event]()
}

// List returns events matching the caller's query. Under an own-scope grant
// the ownership constraint is forced into the filter, so no combination of
// query parameters widens the result beyond the caller's own records.
func (s *EventService) List(ctx context.Context, caller Caller, q query.Query) Outcome[model.Event] {
	roleQuery := s.ctrl.Can(caller.Role)

	if roleQuery.ReadAny(model.ResourceEvent).Granted {
		page, err := s.repo.GetEvents(ctx, q)
		if err != nil {
			s.logger.Errorw("failed to fetch events", "error", err)
			return failure[model.Event](err, "failed to fetch Events")
		}
		return okAnyPage(page)
	}

	if roleQuery.ReadOwn(model.ResourceEvent).Granted {
		page, err := s.repo.GetEvents(ctx, q.WithFilter("user", caller.Id))
		if err != nil {
			s.logger.Errorw("failed to fetch events", "error", err)
			return failure[model.Event](err, "failed to fetch Events")
		}
		return okOwnPage(page)
	}

	return forbidden[model.Event]()
}

// Create inserts a new event from the whitelisted attributes of body. Under
// an own-scope grant the declared owner must be the caller.
func (s *EventService) Create(ctx context.Context, caller Caller, body map[string]any) Outcome[*model.Event] {
	anyGrant := s.ctrl.Can(caller.Role).CreateAny(model.ResourceEvent)
	ownGrant := s.ctrl.Can(caller.Role).CreateOwn(model.ResourceEvent)

	var data map[string]any
	var status Status

	switch {
	case anyGrant.Granted:
		data = anyGrant.Filter(body)
		status = StatusOKAny
	case ownGrant.Granted && declaredOwner(body) == caller.Id:
		data = ownGrant.Filter(body)
		status = StatusOKOwn
	default:
		return forbidden[*model.Event]()
	}

	event, err := s.repo.CreateEvent(ctx, data)
	if err != nil {
		s.logger.Errorw("failed to create event", "error", err)
		return failure[*model.Event](err, "failed to create Event")
	}

	s.notify(ctx, event.Id, notifier.ChangeCreate)
	return Outcome[*model.Event]{Status: status, Record: event}
}

// Update patches an event with the whitelisted attributes of body. The target
// is fetched first: absence beats permission, and the fetched record's owner
// field is what the own-scope grant is checked against.
func (s *EventService) Update(ctx context.Context, caller Caller, id string, body map[string]any) Outcome[*model.Event] {
	anyGrant := s.ctrl.Can(caller.Role).UpdateAny(model.ResourceEvent)
	ownGrant := s.ctrl.Can(caller.Role).UpdateOwn(model.ResourceEvent)

	event, err := s.repo.GetEvent(ctx, id, nil)
	if err != nil {
		s.logger.Errorw("failed to fetch event", "id", id, "error", err)
		return failure[*model.Event](err, "failed to update Event")
	}
	if event == nil {
		return notFound[*model.Event](model.ResourceEvent)
	}

	var data map[string]any
	var status Status

	switch {
	case anyGrant.Granted:
		data = anyGrant.Filter(body)
		status = StatusOKAny
	case ownGrant.Granted && caller.Id == event.OwnerId():
		data = ownGrant.Filter(body)
		status = StatusOKOwn
	default:
		return forbidden[*model.Event]()
	}

	event, err = s.repo.UpdateEvent(ctx, id, data)
	if err != nil {
		s.logger.Errorw("failed to update event", "id", id, "error", err)
		return failure[*model.Event](err, "failed to update Event")
	}
	if event == nil {
		return notFound[*model.Event](model.ResourceEvent)
	}

	s.notify(ctx, id, notifier.ChangeModify)
	return Outcome[*model.Event]{Status: status, Record: event}
}

// Delete removes an event in two phases: fetch and decide first, destroy
// only once the decision allows it.
func (s *EventService) Delete(ctx context.Context, caller Caller, id string) Outcome[*model.Event] {
	anyGrant := s.ctrl.Can(caller.Role).DeleteAny(model.ResourceEvent)
	ownGrant := s.ctrl.Can(caller.Role).DeleteOwn(model.ResourceEvent)

	event, err := s.repo.GetEvent(ctx, id, nil)
	if err != nil {
		s.logger.Errorw("failed to fetch event", "id", id, "error", err)
		return failure[*model.Event](err, "failed to delete Event")
	}
	if event == nil {
		return notFound[*model.Event](model.ResourceEvent)
	}

	var status Status

	switch {
	case anyGrant.Granted:
		status = StatusOKAny
	default:
		if !ownGrant.Granted {
			return forbidden[*model.Event]()
		}
		owned, err := s.repo.HasEvent(ctx, caller.Id, id)
		if err != nil {
			s.logger.Errorw("failed to check event ownership", "id", id, "error", err)
			return failure[*model.Event](err, "failed to delete Event")
		}
		if !owned {
			return forbidden[*model.Event]()
		}
		status = StatusOKOwn
	}

	event, err = s.repo.DeleteEvent(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to delete event", "id", id, "error", err)
		return failure[*model.Event](err, "failed to delete Event")
	}
	if event == nil {
		return notFound[*model.Event](model.ResourceEvent)
	}

	s.notify(ctx, id, notifier.ChangeDelete)
	return Outcome[*model.Event]{Status: status, Record: event}
}

func (s *EventService) notify(ctx context.Context, id string, change notifier.ChangeType) {
	if err := s.notif.ResourceUpdate(ctx, model.ResourceEvent, id, change); err != nil {
		s.logger.Errorw("failed to send resource update notification", "id", id, "error", err)
	}
}

// declaredOwner reads the owner the client claims for a new record.
func declaredOwner(body map[string]any) string {
	owner, _ := body["user"].(string)
	return owner
}
