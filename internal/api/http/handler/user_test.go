package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/peroxide-labs/peroxide/internal/api/http/context"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/service"
	"github.com/peroxide-labs/peroxide/internal/testutil"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) CreateUser(ctx context.Context, actor model.Principal, params service.SignUpParams, rank model.Rank) (model.User, error) {
	args := m.Called(ctx, actor, params, rank)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserService) ChangePassword(ctx context.Context, principal model.Principal, newPassword string) error {
	args := m.Called(ctx, principal, newPassword)
	return args.Error(0)
}

func withPrincipal(req *http.Request, cm model.ContextManager, p model.Principal) *http.Request {
	return req.WithContext(cm.SetPrincipal(req.Context(), p))
}

func TestUser_Get(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	h := NewUser(&mockUserService{}, cm, testutil.MakeNoopLogger())

	principal := model.Principal{User: model.User{
		Username:     "alice",
		Name:         "Alice",
		Email:        "alice@example.com",
		Rank:         model.RankUser,
		Salt:         []byte("secret-salt"),
		PasswordHash: []byte("secret-hash"),
	}}

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/user", nil), cm, principal)
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.NotContains(t, rec.Body.String(), "secret-salt")
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestUser_Get_NoPrincipal(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	h := NewUser(&mockUserService{}, cm, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUser_Create(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	admin := model.Principal{User: model.User{Username: "root", Rank: model.RankAdmin}}

	svc := &mockUserService{}
	svc.On("CreateUser", mock.Anything, admin, service.SignUpParams{
		Name:     "Bob",
		Username: "bob",
		Password: "pw",
		Email:    "bob@example.com",
	}, model.RankAdmin).Return(model.User{Username: "bob", Rank: model.RankAdmin}, nil)

	h := NewUser(svc, cm, testutil.MakeNoopLogger())

	body := `{"name":"Bob","username":"bob","password":"pw","email":"bob@example.com","rank":"Admin"}`
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body)), cm, admin)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestUser_Create_UnknownRankDegrades(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	admin := model.Principal{User: model.User{Username: "root", Rank: model.RankAdmin}}

	svc := &mockUserService{}
	svc.On("CreateUser", mock.Anything, admin, mock.Anything, model.RankUser).
		Return(model.User{Username: "bob", Rank: model.RankUser}, nil)

	h := NewUser(svc, cm, testutil.MakeNoopLogger())

	body := `{"username":"bob","password":"pw","email":"b@c.d","rank":"Superuser"}`
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body)), cm, admin)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestUser_Create_InsufficientRank(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	actor := model.Principal{User: model.User{Username: "bob", Rank: model.RankUser}}

	svc := &mockUserService{}
	svc.On("CreateUser", mock.Anything, actor, mock.Anything, mock.Anything).
		Return(model.User{}, model.ErrInsufficientRank)

	h := NewUser(svc, cm, testutil.MakeNoopLogger())

	body := `{"username":"eve","password":"pw","email":"e@c.d"}`
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body)), cm, actor)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUser_ChangePassword(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	principal := model.Principal{User: model.User{Username: "alice", Rank: model.RankUser}}

	svc := &mockUserService{}
	svc.On("ChangePassword", mock.Anything, principal, "new-password").Return(nil)

	h := NewUser(svc, cm, testutil.MakeNoopLogger())

	req := withPrincipal(httptest.NewRequest(http.MethodPut, "/api/user/password", strings.NewReader(`{"password":"new-password"}`)), cm, principal)
	rec := httptest.NewRecorder()

	h.ChangePassword(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestUser_ChangePassword_Empty(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	principal := model.Principal{User: model.User{Username: "alice"}}

	svc := &mockUserService{}
	h := NewUser(svc, cm, testutil.MakeNoopLogger())

	req := withPrincipal(httptest.NewRequest(http.MethodPut, "/api/user/password", strings.NewReader(`{}`)), cm, principal)
	rec := httptest.NewRecorder()

	h.ChangePassword(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ChangePassword")
}
