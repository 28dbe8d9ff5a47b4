package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"runvault/internal/models"
)

// fakeUserFinder backs LoadUser tests without a database.
type fakeUserFinder struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (f *fakeUserFinder) FindByID(id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func testUser(role string) *models.User {
	return &models.User{ID: uuid.New(), Email: "member@example.com", Role: role}
}

func TestLoadUser(t *testing.T) {
	user := testUser(models.RoleMember)
	finder := &fakeUserFinder{users: map[uuid.UUID]*models.User{user.ID: user}}

	t.Run("resolves header to user in context", func(t *testing.T) {
		var got *models.User
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = UserFromCtx(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/vault/root", nil)
		req.Header.Set(UserIDHeader, user.ID.String())
		LoadUser(finder)(inner).ServeHTTP(httptest.NewRecorder(), req)

		if got == nil || got.ID != user.ID {
			t.Fatalf("expected user %s in context, got %v", user.ID, got)
		}
	})

	t.Run("missing header passes through anonymous", func(t *testing.T) {
		var got *models.User
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = UserFromCtx(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/vault/root", nil)
		LoadUser(finder)(inner).ServeHTTP(httptest.NewRecorder(), req)

		if got != nil {
			t.Errorf("expected anonymous request, got user %v", got)
		}
	})

	t.Run("malformed header passes through anonymous", func(t *testing.T) {
		var got *models.User
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = UserFromCtx(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/vault/root", nil)
		req.Header.Set(UserIDHeader, "not-a-uuid")
		LoadUser(finder)(inner).ServeHTTP(httptest.NewRecorder(), req)

		if got != nil {
			t.Errorf("expected anonymous request, got user %v", got)
		}
	})

	t.Run("store error treated as anonymous", func(t *testing.T) {
		broken := &fakeUserFinder{err: errors.New("connection refused")}
		var got *models.User
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = UserFromCtx(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/vault/root", nil)
		req.Header.Set(UserIDHeader, user.ID.String())
		LoadUser(broken)(inner).ServeHTTP(httptest.NewRecorder(), req)

		if got != nil {
			t.Errorf("expected anonymous request, got user %v", got)
		}
	})
}

func TestRequireUser(t *testing.T) {
	t.Run("rejects anonymous with 401", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run for anonymous request")
		})

		req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
		rr := httptest.NewRecorder()
		RequireUser(inner).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("passes authenticated request", func(t *testing.T) {
		user := testUser(models.RoleMember)
		finder := &fakeUserFinder{users: map[uuid.UUID]*models.User{user.ID: user}}

		var called bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
		req.Header.Set(UserIDHeader, user.ID.String())
		LoadUser(finder)(RequireUser(inner)).ServeHTTP(httptest.NewRecorder(), req)

		if !called {
			t.Error("handler should have been called")
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"admin allowed", testUser(models.RoleAdmin), http.StatusOK},
		{"member forbidden", testUser(models.RoleMember), http.StatusForbidden},
		{"anonymous forbidden", nil, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			finder := &fakeUserFinder{users: map[uuid.UUID]*models.User{}}
			req := httptest.NewRequest(http.MethodPost, "/api/admin/backfill-folders", nil)
			if tc.user != nil {
				finder.users[tc.user.ID] = tc.user
				req.Header.Set(UserIDHeader, tc.user.ID.String())
			}

			rr := httptest.NewRecorder()
			LoadUser(finder)(RequireAdmin(inner)).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}
