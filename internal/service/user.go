package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/colibie/events-app-api/internal/access"
	"github.com/colibie/events-app-api/internal/messaging/notifier"
	"github.com/colibie/events-app-api/internal/model"
	"github.com/colibie/events-app-api/internal/repository"
	"github.com/colibie/events-app-api/internal/repository/query"
)

type UserService struct {
	logger *zap.SugaredLogger
	repo   repository.Repository
	ctrl   *access.Control
	notif  notifier.Notifier
}

func NewUserService(logger *zap.SugaredLogger, repo repository.Repository, ctrl *access.Control, notif notifier.Notifier) *UserService {
	return &UserService{
		logger: logger,
		repo:   repo,
		ctrl:   ctrl,
		notif:  notif,
	}
}

// Get fetches one user. A user owns itself, so the own-scope check is an
// identity comparison against the caller.
func (s *UserService) Get(ctx context.Context, caller Caller, id string) Outcome[*model.User] {
	anyGrant := s.ctrl.Can(caller.Role).ReadAny(model.ResourceUser)
	ownGrant := s.ctrl.Can(caller.Role).ReadOwn(model.ResourceUser)

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to fetch user", "id", id, "error", err)
		return failure[*model.User](err, "failed to fetch User")
	}
	if user == nil {
		return notFound[*model.User](model.ResourceUser)
	}

	if anyGrant.Granted {
		return okAny(user)
	}
	if ownGrant.Granted && caller.Id == user.OwnerId() {
		return okOwn(user)
	}

	return forbidden[*model.User]()
}

// List returns users matching the caller's query. Under an own-scope grant
// the caller-supplied filter is first reduced to an owned-id set, which is
// then forced into the query; the caller's parameters can narrow that set
// but never widen it.
func (s *UserService) List(ctx context.Context, caller Caller, q query.Query) Outcome[model.User] {
	roleQuery := s.ctrl.Can(caller.Role)

	if roleQuery.ReadAny(model.ResourceUser).Granted {
		page, err := s.repo.GetUsers(ctx, q)
		if err != nil {
			s.logger.Errorw("failed to fetch users", "error", err)
			return failure[model.User](err, "failed to fetch Users")
		}
		return okAnyPage(page)
	}

	if roleQuery.ReadOwn(model.ResourceUser).Granted {
		ids, err := s.repo.UserIdList(ctx, caller.Id, q)
		if err != nil {
			s.logger.Errorw("failed to resolve owned user ids", "error", err)
			return failure[model.User](err, "failed to fetch Users")
		}

		page, err := s.repo.GetUsers(ctx, q.WithFilter("_id", "in:"+strings.Join(ids, "|")))
		if err != nil {
			s.logger.Errorw("failed to fetch users", "error", err)
			return failure[model.User](err, "failed to fetch Users")
		}
		return okOwnPage(page)
	}

	return forbidden[model.User]()
}

// Create inserts a new user from the whitelisted attributes of body.
func (s *UserService) Create(ctx context.Context, caller Caller, body map[string]any) Outcome[*model.User] {
	anyGrant := s.ctrl.Can(caller.Role).CreateAny(model.ResourceUser)
	ownGrant := s.ctrl.Can(caller.Role).CreateOwn(model.ResourceUser)

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
		return forbidden[*model.User]()
	}

	user, err := s.repo.CreateUser(ctx, data)
	if err != nil {
		s.logger.Errorw("failed to create user", "error", err)
		return failure[*model.User](err, "failed to create User")
	}

	s.notify(ctx, user.Id, notifier.ChangeCreate)
	return Outcome[*model.User]{Status: status, Record: user}
}

// Update patches a user with the whitelisted attributes of body. The target
// is fetched first so absence beats permission; an own-scope caller can only
// ever patch itself, and only through its grant's attribute filter.
func (s *UserService) Update(ctx context.Context, caller Caller, id string, body map[string]any) Outcome[*model.User] {
	anyGrant := s.ctrl.Can(caller.Role).UpdateAny(model.ResourceUser)
	ownGrant := s.ctrl.Can(caller.Role).UpdateOwn(model.ResourceUser)

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to fetch user", "id", id, "error", err)
		return failure[*model.User](err, "failed to update User")
	}
	if user == nil {
		return notFound[*model.User](model.ResourceUser)
	}

	var data map[string]any
	var status Status

	switch {
	case anyGrant.Granted:
		data = anyGrant.Filter(body)
		status = StatusOKAny
	case ownGrant.Granted && caller.Id == user.OwnerId():
		data = ownGrant.Filter(body)
		status = StatusOKOwn
	default:
		return forbidden[*model.User]()
	}

	user, err = s.repo.UpdateUser(ctx, id, data)
	if err != nil {
		s.logger.Errorw("failed to update user", "id", id, "error", err)
		return failure[*model.User](err, "failed to update User")
	}
	if user == nil {
		return notFound[*model.User](model.ResourceUser)
	}

	s.notify(ctx, id, notifier.ChangeModify)
	return Outcome[*model.User]{Status: status, Record: user}
}

// Delete removes a user, fetch-then-authorize like Get.
func (s *UserService) Delete(ctx context.Context, caller Caller, id string) Outcome[*model.User] {
	anyGrant := s.ctrl.Can(caller.Role).DeleteAny(model.ResourceUser)
	ownGrant := s.ctrl.Can(caller.Role).DeleteOwn(model.ResourceUser)

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to fetch user", "id", id, "error", err)
		return failure[*model.User](err, "failed to delete User")
	}
	if user == nil {
		return notFound[*model.User](model.ResourceUser)
	}

	var status Status

	switch {
	case anyGrant.Granted:
		status = StatusOKAny
	case ownGrant.Granted && caller.Id == user.OwnerId():
		status = StatusOKOwn
	default:
		return forbidden[*model.User]()
	}

	user, err = s.repo.DeleteUser(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to delete user", "id", id, "error", err)
		return failure[*model.User](err, "failed to delete User")
	}
	if user == nil {
		return notFound[*model.User](model.ResourceUser)
	}

	s.notify(ctx, id, notifier.ChangeDelete)
	return Outcome[*model.User]{Status: status, Record: user}
}

func (s *UserService) notify(ctx context.Context, id string, change notifier.ChangeType) {
	if err := s.notif.ResourceUpdate(ctx, model.ResourceUser, id, change); err != nil {
		s.logger.Errorw("failed to send resource update notification", "id", id, "error", err)
	}
}
