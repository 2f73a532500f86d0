package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/colibie/events-app-api/internal/access"
	"github.com/colibie/events-app-api/internal/messaging/notifier"
	"github.com/colibie/events-app-api/internal/model"
	"github.com/colibie/events-app-api/internal/repository"
	"github.com/colibie/events-app-api/internal/repository/query"
)

var (
	adminCaller = Caller{Id: "a1", Role: "admin"}
	userCaller  = Caller{Id: "u1", Role: "user"}
	guestCaller = Caller{Id: "g1", Role: "guest"}
)

func newEventService(t *testing.T) (*EventService, *repository.MockRepository, *notifier.MockNotifier) {
	mockCntrl := gomock.NewController(t)
	mockRepo := repository.NewMockRepository(mockCntrl)
	mockNotif := notifier.NewMockNotifier(mockCntrl)

	svc := NewEventService(zap.NewNop().Sugar(), mockRepo, access.NewControl(access.DefaultRules()), mockNotif)
	return svc, mockRepo, mockNotif
}

func testEvent(id, owner string) *model.Event {
	return &model.Event{
		Id:         id,
		UserId:     owner,
		EventTitle: "launch",
		Email:      "owner@example.com",
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEventService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		caller Caller
		event  *model.Event
		owned  bool
		want   Status
	}{
		{name: "own grant and owner", caller: userCaller, event: testEvent("e1", "u1"), owned: true, want: StatusOKOwn},
		{name: "own grant but not owner", caller: userCaller, event: testEvent("e1", "u2"), owned: false, want: StatusForbidden},
		{name: "any grant skips ownership", caller: adminCaller, event: testEvent("e1", "u2"), want: StatusOKAny},
		{name: "no grant", caller: guestCaller, event: testEvent("e1", "g1"), want: StatusForbidden},
		{name: "missing record", caller: adminCaller, event: nil, want: StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := newEventService(t)

			mockRepo.EXPECT().GetEvent(ctx, "e1", gomock.Any()).Return(tt.event, nil)
			if tt.caller.Role == "user" && tt.event != nil {
				mockRepo.EXPECT().HasEvent(ctx, tt.caller.Id, "e1").Return(tt.owned, nil)
			}

			out := svc.Get(ctx, tt.caller, "e1", query.Query{})
			assert.Equal(t, tt.want, out.Status)
			if out.Status.OK() {
				assert.Equal(t, tt.event, out.Record)
			} else {
				assert.Nil(t, out.Record)
			}
		})
	}
}

func TestEventService_Get_NotFoundForEveryRole(t *testing.T) {
	ctx := context.Background()

	for _, caller := range []Caller{adminCaller, userCaller, guestCaller} {
		t.Run(caller.Role, func(t *testing.T) {
			svc, mockRepo, _ := newEventService(t)
			mockRepo.EXPECT().GetEvent(ctx, "e9", gomock.Any()).Return(nil, nil)

			out := svc.Get(ctx, caller, "e9", query.Query{})
			assert.Equal(t, StatusNotFound, out.Status)
			assert.Equal(t, "Event not found", out.Message)
		})
	}
}

func TestEventService_Get_StoreErrorIsInternal(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newEventService(t)

	mockRepo.EXPECT().GetEvent(ctx, "e1", gomock.Any()).Return(nil, errors.New("socket reset"))

	out := svc.Get(ctx, adminCaller, "e1", query.Query{})
	assert.Equal(t, StatusServerError, out.Status)
	// store diagnostics never reach the caller
	assert.Equal(t, "failed to fetch Event", out.Message)
}

func TestEventService_List_AnyScopeIsUnscoped(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newEventService(t)

	q := query.Parse(url.Values{"location": {"lagos"}})
	page := &query.Page[model.Event]{Items: []model.Event{*testEvent("e1", "u1"), *testEvent("e2", "u2")}, Total: 2, Page: 1, PageSize: 20}
	mockRepo.EXPECT().GetEvents(ctx, q).Return(page, nil)

	out := svc.List(ctx, adminCaller, q)
	assert.Equal(t, StatusOKAny, out.Status)
	assert.Equal(t, page, out.Page)
}

func TestEventService_List_OwnScopeForcesOwnerFilter(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newEventService(t)

	// the caller tries to read someone else's events; the injected term wins
	q := query.Parse(url.Values{"user": {"u2"}, "location": {"lagos"}})
	scoped := q.WithFilter("user", "u1")

	page := &query.Page[model.Event]{Items: []model.Event{*testEvent("e1", "u1")}, Total: 1, Page: 1, PageSize: 20}
	mockRepo.EXPECT().GetEvents(ctx, scoped).Return(page, nil)

	out := svc.List(ctx, userCaller, q)
	assert.Equal(t, StatusOKOwn, out.Status)
	assert.Equal(t, page, out.Page)
}

func TestEventService_List_NoGrantIsForbidden(t *testing.T) {
	svc, _, _ := newEventService(t)

	out := svc.List(context.Background(), guestCaller, query.Query{})
	assert.Equal(t, StatusForbidden, out.Status)
	assert.Equal(t, "operation not allowed", out.Message)
}

func TestEventService_Create_OwnScopeRequiresDeclaredOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("owner matches caller", func(t *testing.T) {
		svc, mockRepo, mockNotif := newEventService(t)

		body := map[string]any{"user": "u1", "event-title": "launch", "email": "a@b.c", "_id": "sneaky"}
		created := testEvent("e1", "u1")

		mockRepo.EXPECT().CreateEvent(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, data map[string]any) (*model.Event, error) {
				// the grant filter dropped the _id the client tried to set
				assert.NotContains(t, data, "_id")
				assert.Equal(t, "u1", data["user"])
				return created, nil
			})
		mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceEvent, "e1", notifier.ChangeCreate).Return(nil)

		out := svc.Create(ctx, userCaller, body)
		assert.Equal(t, StatusOKOwn, out.Status)
		assert.Equal(t, created, out.Record)
	})

	t.Run("owner differs from caller", func(t *testing.T) {
		svc, _, _ := newEventService(t)

		body := map[string]any{"user": "u2", "event-title": "launch", "email": "a@b.c"}
		out := svc.Create(ctx, userCaller, body)
		assert.Equal(t, StatusForbidden, out.Status)
	})

	t.Run("owner missing from body", func(t *testing.T) {
		svc, _, _ := newEventService(t)

		out := svc.Create(ctx, userCaller, map[string]any{"event-title": "launch", "email": "a@b.c"})
		assert.Equal(t, StatusForbidden, out.Status)
	})
}

func TestEventService_Create_AnyScopeIgnoresDeclaredOwner(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, mockNotif := newEventService(t)

	body := map[string]any{"user": "u2", "event-title": "launch", "email": "a@b.c"}
	created := testEvent("e1", "u2")

	mockRepo.EXPECT().CreateEvent(ctx, gomock.Any()).Return(created, nil)
	mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceEvent, "e1", notifier.ChangeCreate).Return(nil)

	out := svc.Create(ctx, adminCaller, body)
	assert.Equal(t, StatusOKAny, out.Status)
}

func TestEventService_Create_ValidationErrorIsClientError(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newEventService(t)

	verr := &model.ValidationError{Resource: model.ResourceEvent, Field: "email"}
	mockRepo.EXPECT().CreateEvent(ctx, gomock.Any()).Return(nil, verr)

	out := svc.Create(ctx, adminCaller, map[string]any{"user": "u2", "event-title": "launch"})
	assert.Equal(t, StatusClientError, out.Status)
	assert.Equal(t, verr.Error(), out.Message)
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("own grant and owner", func(t *testing.T) {
		svc, mockRepo, mockNotif := newEventService(t)

		existing := testEvent("e1", "u1")
		updated := testEvent("e1", "u1")
		updated.Location = "lagos"

		mockRepo.EXPECT().GetEvent(ctx, "e1", nil).Return(existing, nil)
		mockRepo.EXPECT().UpdateEvent(ctx, "e1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, data map[string]any) (*model.Event, error) {
				assert.Equal(t, "lagos", data["location"])
				assert.NotContains(t, data, "createdAt")
				return updated, nil
			})
		mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceEvent, "e1", notifier.ChangeModify).Return(nil)

		out := svc.Update(ctx, userCaller, "e1", map[string]any{"location": "lagos", "createdAt": "1999-01-01"})
		assert.Equal(t, StatusOKOwn, out.Status)
		assert.Equal(t, updated, out.Record)
	})

	t.Run("own grant but record owned by someone else", func(t *testing.T) {
		svc, mockRepo, _ := newEventService(t)
		mockRepo.EXPECT().GetEvent(ctx, "e1", nil).Return(testEvent("e1", "u2"), nil)

		out := svc.Update(ctx, userCaller, "e1", map[string]any{"location": "lagos"})
		assert.Equal(t, StatusForbidden, out.Status)
	})

	t.Run("missing record beats permission", func(t *testing.T) {
		svc, mockRepo, _ := newEventService(t)
		mockRepo.EXPECT().GetEvent(ctx, "e9", nil).Return(nil, nil)

		out := svc.Update(ctx, adminCaller, "e9", map[string]any{"location": "lagos"})
		assert.Equal(t, StatusNotFound, out.Status)
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("own grant and owner", func(t *testing.T) {
		svc, mockRepo, mockNotif := newEventService(t)

		event := testEvent("e1", "u1")
		mockRepo.EXPECT().GetEvent(ctx, "e1", nil).Return(event, nil)
		mockRepo.EXPECT().HasEvent(ctx, "u1", "e1").Return(true, nil)
		mockRepo.EXPECT().DeleteEvent(ctx, "e1").Return(event, nil)
		mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceEvent, "e1", notifier.ChangeDelete).Return(nil)

		out := svc.Delete(ctx, userCaller, "e1")
		assert.Equal(t, StatusOKOwn, out.Status)
		assert.Equal(t, event, out.Record)
	})

	t.Run("own grant but not owner leaves the record alone", func(t *testing.T) {
		svc, mockRepo, _ := newEventService(t)

		mockRepo.EXPECT().GetEvent(ctx, "e1", nil).Return(testEvent("e1", "u2"), nil)
		mockRepo.EXPECT().HasEvent(ctx, "u1", "e1").Return(false, nil)

		out := svc.Delete(ctx, userCaller, "e1")
		assert.Equal(t, StatusForbidden, out.Status)
	})

	t.Run("missing record", func(t *testing.T) {
		svc, mockRepo, _ := newEventService(t)
		mockRepo.EXPECT().GetEvent(ctx, "e9", nil).Return(nil, nil)

		out := svc.Delete(ctx, adminCaller, "e9")
		assert.Equal(t, StatusNotFound, out.Status)
	})
}

func TestEventService_FindByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("owner reads own event", func(t *testing.T) {
		svc, mockRepo, _ := newEventService(t)
		event := testEvent("e1", "u1")
		mockRepo.EXPECT().FindEventByEmail(ctx, "Owner@Example.com").Return(event, nil)

		out := svc.FindByEmail(ctx, userCaller, "Owner@Example.com")
		assert.Equal(t, StatusOKOwn, out.Status)
		assert.Equal(t, event, out.Record)
	})

	t.Run("no match", func(t *testing.T) {
		svc, mockRepo, _ := newEventService(t)
		mockRepo.EXPECT().FindEventByEmail(ctx, "nobody@example.com").Return(nil, nil)

		out := svc.FindByEmail(ctx, adminCaller, "nobody@example.com")
		assert.Equal(t, StatusNotFound, out.Status)
	})
}

// A role holding both scopes gets the any-scope result: the ownership lookup
// never happens and records owned by others come back.
func TestEventService_AnyGrantSupersedesOwnGrant(t *testing.T) {
	ctx := context.Background()
	mockCntrl := gomock.NewController(t)
	mockRepo := repository.NewMockRepository(mockCntrl)
	mockNotif := notifier.NewMockNotifier(mockCntrl)

	ctrl := access.NewControl([]access.Rule{
		{Role: "auditor", Resource: model.ResourceEvent, Action: access.ActionRead, Scope: access.ScopeAny},
		{Role: "auditor", Resource: model.ResourceEvent, Action: access.ActionRead, Scope: access.ScopeOwn},
	})
	svc := NewEventService(zap.NewNop().Sugar(), mockRepo, ctrl, mockNotif)

	event := testEvent("e1", "someone-else")
	mockRepo.EXPECT().GetEvent(ctx, "e1", gomock.Any()).Return(event, nil)
	// no HasEvent expectation: calling it would fail the test

	out := svc.Get(ctx, Caller{Id: "aud1", Role: "auditor"}, "e1", query.Query{})
	assert.Equal(t, StatusOKAny, out.Status)
	assert.Equal(t, event, out.Record)
}

func TestEventService_NotificationFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, mockNotif := newEventService(t)

	created := testEvent("e1", "u2")
	mockRepo.EXPECT().CreateEvent(ctx, gomock.Any()).Return(created, nil)
	mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceEvent, "e1", notifier.ChangeCreate).Return(errors.New("broker down"))

	out := svc.Create(ctx, adminCaller, map[string]any{"user": "u2", "event-title": "launch", "email": "a@b.c"})
	assert.Equal(t, StatusOKAny, out.Status)
	assert.Equal(t, created, out.Record)
}
