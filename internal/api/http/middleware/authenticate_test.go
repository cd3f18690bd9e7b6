package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	httpcontext "github.com/peroxide-labs/peroxide/internal/api/http/context"
	"github.com/peroxide-labs/peroxide/internal/api/http/cookie"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/testutil"
)

type mockSessionResolver struct {
	mock.Mock
}

func (m *mockSessionResolver) ResolveSession(ctx context.Context, tokenString string) (model.Principal, error) {
	args := m.Called(ctx, tokenString)
	return args.Get(0).(model.Principal), args.Error(1)
}

func TestAuthenticate_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		cookieValue  string
		principal    model.Principal
		resolveErr   error
		wantStatus   int
		wantNextCall bool
	}{
		{
			name:         "missing cookie",
			cookieValue:  "",
			wantStatus:   http.StatusUnauthorized,
			wantNextCall: false,
		},
		{
			name:         "invalid token",
			cookieValue:  "bad-token",
			resolveErr:   model.ErrInvalidToken,
			wantStatus:   http.StatusUnauthorized,
			wantNextCall: false,
		},
		{
			name:         "stale token after password rotation",
			cookieValue:  "stale-token",
			resolveErr:   model.ErrInvalidCredentials,
			wantStatus:   http.StatusUnauthorized,
			wantNextCall: false,
		},
		{
			name:         "valid token",
			cookieValue:  "good-token",
			principal:    model.Principal{User: model.User{Username: "alice", Rank: model.RankUser}},
			wantStatus:   http.StatusOK,
			wantNextCall: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := httpcontext.NewManager()
			sessions := &mockSessionResolver{}
			if tt.cookieValue != "" {
				sessions.On("ResolveSession", mock.Anything, tt.cookieValue).
					Return(tt.principal, tt.resolveErr)
			}

			var nextCalled bool
			var gotPrincipal model.Principal
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotPrincipal, _ = cm.GetPrincipal(r.Context())
			})

			m := NewAuthenticate(sessions, cm, testutil.MakeNoopLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: cookie.Name, Value: tt.cookieValue})
			}
			rec := httptest.NewRecorder()

			m.Handle(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNextCall, nextCalled)
			if tt.wantNextCall {
				assert.Equal(t, tt.principal.Username, gotPrincipal.Username)
			}
			sessions.AssertExpectations(t)
		})
	}
}

func TestAuthenticate_Handle_ClearsCookieOnRejection(t *testing.T) {
	t.Parallel()

	cm := httpcontext.NewManager()
	sessions := &mockSessionResolver{}
	sessions.On("ResolveSession", mock.Anything, "bad").
		Return(model.Principal{}, model.ErrInvalidToken)

	m := NewAuthenticate(sessions, cm, testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "bad"})
	rec := httptest.NewRecorder()

	m.Handle(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, cookie.Name, cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)
	}
}
