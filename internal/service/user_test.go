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

func newUserService(t *testing.T) (*UserService, *repository.MockRepository, *notifier.MockNotifier) {
	mockCntrl := gomock.NewController(t)
	mockRepo := repository.NewMockRepository(mockCntrl)
	mockNotif := notifier.NewMockNotifier(mockCntrl)

	svc := NewUserService(zap.NewNop().Sugar(), mockRepo, access.NewControl(access.DefaultRules()), mockNotif)
	return svc, mockRepo, mockNotif
}

func testUser(id, role string) *model.User {
	return &model.User{
		Id:        id,
		Email:     id + "@example.com",
		Name:      "Ada",
		Role:      role,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		caller Caller
		id     string
		user   *model.User
		want   Status
	}{
		{name: "self read under own grant", caller: userCaller, id: "u1", user: testUser("u1", "user"), want: StatusOKOwn},
		{name: "other user under own grant", caller: userCaller, id: "u2", user: testUser("u2", "user"), want: StatusForbidden},
		{name: "admin reads anyone", caller: adminCaller, id: "u2", user: testUser("u2", "user"), want: StatusOKAny},
		{name: "unknown role", caller: guestCaller, id: "g1", user: testUser("g1", "user"), want: StatusForbidden},
		{name: "missing record", caller: adminCaller, id: "u9", user: nil, want: StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := newUserService(t)
			mockRepo.EXPECT().GetUser(ctx, tt.id).Return(tt.user, nil)

			out := svc.Get(ctx, tt.caller, tt.id)
			assert.Equal(t, tt.want, out.Status)
		})
	}
}

func TestUserService_List_OwnScopeUsesOwnedIdSet(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newUserService(t)

	q := query.Parse(url.Values{"name": {"Ada"}})
	mockRepo.EXPECT().UserIdList(ctx, "u1", q).Return([]string{"u1"}, nil)

	scoped := q.WithFilter("_id", "in:u1")
	page := &query.Page[model.User]{Items: []model.User{*testUser("u1", "user")}, Total: 1, Page: 1, PageSize: 20}
	mockRepo.EXPECT().GetUsers(ctx, scoped).Return(page, nil)

	out := svc.List(ctx, userCaller, q)
	assert.Equal(t, StatusOKOwn, out.Status)
	assert.Equal(t, page, out.Page)
}

func TestUserService_List_OwnScopeWithNoOwnedIdsMatchesNothing(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newUserService(t)

	q := query.Query{Filter: map[string]string{}, Page: 1, PageSize: 20}
	mockRepo.EXPECT().UserIdList(ctx, "u1", q).Return(nil, nil)

	empty := &query.Page[model.User]{Items: []model.User{}, Total: 0, Page: 1, PageSize: 20}
	mockRepo.EXPECT().GetUsers(ctx, q.WithFilter("_id", "in:")).Return(empty, nil)

	out := svc.List(ctx, userCaller, q)
	assert.Equal(t, StatusOKOwn, out.Status)
	assert.Empty(t, out.Page.Items)
}

func TestUserService_List_AnyScopeIsUnscoped(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newUserService(t)

	q := query.Query{Filter: map[string]string{}, Page: 1, PageSize: 20}
	page := &query.Page[model.User]{Items: []model.User{*testUser("u1", "user"), *testUser("u2", "user")}, Total: 2, Page: 1, PageSize: 20}
	mockRepo.EXPECT().GetUsers(ctx, q).Return(page, nil)

	out := svc.List(ctx, adminCaller, q)
	assert.Equal(t, StatusOKAny, out.Status)
	assert.Equal(t, page, out.Page)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates any user", func(t *testing.T) {
		svc, mockRepo, mockNotif := newUserService(t)

		created := testUser("u3", "user")
		mockRepo.EXPECT().CreateUser(ctx, gomock.Any()).Return(created, nil)
		mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceUser, "u3", notifier.ChangeCreate).Return(nil)

		out := svc.Create(ctx, adminCaller, map[string]any{"email": "u3@example.com", "name": "Ada"})
		assert.Equal(t, StatusOKAny, out.Status)
		assert.Equal(t, created, out.Record)
	})

	t.Run("user role cannot create users", func(t *testing.T) {
		svc, _, _ := newUserService(t)

		out := svc.Create(ctx, userCaller, map[string]any{"email": "x@example.com", "name": "X"})
		assert.Equal(t, StatusForbidden, out.Status)
	})

	t.Run("validation failure surfaces its message", func(t *testing.T) {
		svc, mockRepo, _ := newUserService(t)

		verr := &model.ValidationError{Resource: model.ResourceUser, Field: "email"}
		mockRepo.EXPECT().CreateUser(ctx, gomock.Any()).Return(nil, verr)

		out := svc.Create(ctx, adminCaller, map[string]any{"name": "Ada"})
		assert.Equal(t, StatusClientError, out.Status)
		assert.Equal(t, "User validation failed: email is required", out.Message)
	})
}

// A user renames itself; the attempted role escalation is stripped by the
// grant filter.
func TestUserService_Update_OwnGrantStripsRoleField(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, mockNotif := newUserService(t)

	existing := testUser("u1", "user")
	renamed := testUser("u1", "user")
	renamed.Name = "X"

	mockRepo.EXPECT().GetUser(ctx, "u1").Return(existing, nil)
	mockRepo.EXPECT().UpdateUser(ctx, "u1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, data map[string]any) (*model.User, error) {
			assert.Equal(t, "X", data["name"])
			assert.NotContains(t, data, "role")
			return renamed, nil
		})
	mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceUser, "u1", notifier.ChangeModify).Return(nil)

	out := svc.Update(ctx, userCaller, "u1", map[string]any{"role": "admin", "name": "X"})
	assert.Equal(t, StatusOKOwn, out.Status)
	assert.Equal(t, "user", out.Record.Role)
	assert.Equal(t, "X", out.Record.Name)
}

func TestUserService_Update_OtherRecordForbidden(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newUserService(t)

	mockRepo.EXPECT().GetUser(ctx, "u2").Return(testUser("u2", "user"), nil)

	out := svc.Update(ctx, userCaller, "u2", map[string]any{"name": "X"})
	assert.Equal(t, StatusForbidden, out.Status)
}

func TestUserService_Update_MissingRecord(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _ := newUserService(t)

	mockRepo.EXPECT().GetUser(ctx, "u9").Return(nil, nil)

	out := svc.Update(ctx, adminCaller, "u9", map[string]any{"name": "X"})
	assert.Equal(t, StatusNotFound, out.Status)
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes anyone", func(t *testing.T) {
		svc, mockRepo, mockNotif := newUserService(t)

		user := testUser("u2", "user")
		mockRepo.EXPECT().GetUser(ctx, "u2").Return(user, nil)
		mockRepo.EXPECT().DeleteUser(ctx, "u2").Return(user, nil)
		mockNotif.EXPECT().ResourceUpdate(ctx, model.ResourceUser, "u2", notifier.ChangeDelete).Return(nil)

		out := svc.Delete(ctx, adminCaller, "u2")
		assert.Equal(t, StatusOKAny, out.Status)
	})

	t.Run("user role has no delete grant", func(t *testing.T) {
		svc, mockRepo, _ := newUserService(t)
		mockRepo.EXPECT().GetUser(ctx, "u1").Return(testUser("u1", "user"), nil)

		out := svc.Delete(ctx, userCaller, "u1")
		assert.Equal(t, StatusForbidden, out.Status)
	})

	t.Run("store failure on the destructive write", func(t *testing.T) {
		svc, mockRepo, _ := newUserService(t)

		mockRepo.EXPECT().GetUser(ctx, "u2").Return(testUser("u2", "user"), nil)
		mockRepo.EXPECT().DeleteUser(ctx, "u2").Return(nil, errors.New("socket reset"))

		out := svc.Delete(ctx, adminCaller, "u2")
		assert.Equal(t, StatusServerError, out.Status)
		assert.Equal(t, "failed to delete User", out.Message)
	})
}
