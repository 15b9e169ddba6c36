package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/speakwise/speakwise/internal/cache"
	"github.com/speakwise/speakwise/internal/domain/user"
	"github.com/speakwise/speakwise/internal/http/handlers"
	"github.com/speakwise/speakwise/internal/security"
)

type fakeProfileStore struct {
	getByIDFn       func(ctx context.Context, id string) (user.User, error)
	getByUsernameFn func(ctx context.Context, username string) (user.User, error)
	updateFn        func(ctx context.Context, id string, changes user.Changes) (user.User, error)
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeProfileStore) GetByUsername(ctx context.Context, username string) (user.User, error) {
	if f.getByUsernameFn != nil {
		return f.getByUsernameFn(ctx, username)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeProfileStore) Update(ctx context.Context, id string, changes user.Changes) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, changes)
	}
	return user.User{}, user.ErrNotFound
}

const aliceID = "6f1e1cbb-3a3e-4f62-9a6b-0f2f6cbf3a10"

func fixtureAlice() user.User {
	return user.User{
		ID:             aliceID,
		Username:       "alice",
		Email:          "a@x.com",
		PasswordHash:   "$2a$10$fixture",
		ProfilePicture: "https://cdn.example.com/alice.png",
		ExamRecords:    map[string]any{"speaking": 7.5},
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 2, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestGetProfileAddressingModes(t *testing.T) {
	store := &fakeProfileStore{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			if id == aliceID {
				return fixtureAlice(), nil
			}
			return user.User{}, user.ErrNotFound
		},
		getByUsernameFn: func(ctx context.Context, username string) (user.User, error) {
			if username == "alice" {
				return fixtureAlice(), nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	h := handlers.NewProfileHandler(store, nil)
	r := setupRouter(http.MethodGet, "/profile/:query", h.GetProfile)

	fetch := func(query string) map[string]any {
		req := httptest.NewRequest(http.MethodGet, "/profile/"+query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("GET /profile/%s: got status %d, body=%s", query, w.Code, w.Body.String())
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return body
	}

	byID := fetch(aliceID)
	byUsername := fetch("alice")

	for _, field := range []string{"id", "username", "email", "profilePicture"} {
		if byID[field] != byUsername[field] {
			t.Fatalf("field %q differs between addressing modes: %v vs %v", field, byID[field], byUsername[field])
		}
	}

	for _, forbidden := range []string{"passwordHash", "password", "updatedAt"} {
		if _, ok := byID[forbidden]; ok {
			t.Fatalf("profile response must not contain %q: %v", forbidden, byID)
		}
	}
}

func TestGetProfileNotFound(t *testing.T) {
	h := handlers.NewProfileHandler(&fakeProfileStore{}, nil)
	r := setupRouter(http.MethodGet, "/profile/:query", h.GetProfile)

	req := httptest.NewRequest(http.MethodGet, "/profile/nobody", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}

func TestGetProfileETagRevalidation(t *testing.T) {
	store := &fakeProfileStore{
		getByUsernameFn: func(ctx context.Context, username string) (user.User, error) {
			return fixtureAlice(), nil
		},
	}

	h := handlers.NewProfileHandler(store, cache.New(time.Minute))
	r := setupRouter(http.MethodGet, "/profile/:query", h.GetProfile)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/profile/alice", nil))

	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag on the profile response")
	}

	req := httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
	req.Header.Set("If-None-Match", etag)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	if second.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", second.Code)
	}
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	storedHash, err := security.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hashing fixture password: %v", err)
	}

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantError   string
		wantUpdated bool
	}{
		{
			name:        "wrong current password leaves hash untouched",
			body:        `{"currentPassword":"wrong12","newPassword":"secret2"}`,
			wantStatus:  http.StatusBadRequest,
			wantError:   "current password is wrong",
			wantUpdated: false,
		},
		{
			name:        "matching current password replaces hash",
			body:        `{"currentPassword":"secret1","newPassword":"secret2"}`,
			wantStatus:  http.StatusOK,
			wantUpdated: true,
		},
		{
			name:        "lone newPassword is ignored",
			body:        `{"newPassword":"secret2","email":"new@x.com"}`,
			wantStatus:  http.StatusOK,
			wantUpdated: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alice := fixtureAlice()
			alice.PasswordHash = storedHash

			var gotChanges *user.Changes

			store := &fakeProfileStore{
				getByIDFn: func(ctx context.Context, id string) (user.User, error) {
					return alice, nil
				},
				updateFn: func(ctx context.Context, id string, changes user.Changes) (user.User, error) {
					gotChanges = &changes
					updated := alice
					if changes.Email != "" {
						updated.Email = changes.Email
					}
					if changes.PasswordHash != "" {
						updated.PasswordHash = changes.PasswordHash
					}
					return updated, nil
				},
			}

			h := handlers.NewProfileHandler(store, nil)
			r := setupRouter(http.MethodPut, "/update/:id", h.UpdateProfile)

			w := doJSON(t, r, http.MethodPut, "/update/"+aliceID, tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantError != "" {
				var resp map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if resp["error"] != tc.wantError {
					t.Fatalf("got error %v, want %q", resp["error"], tc.wantError)
				}
			}

			if !tc.wantUpdated {
				if gotChanges != nil {
					t.Fatalf("store.Update must not be called, got changes %+v", *gotChanges)
				}
				return
			}

			if gotChanges == nil {
				t.Fatal("expected store.Update to be called")
			}

			switch tc.name {
			case "matching current password replaces hash":
				if gotChanges.PasswordHash == "" || gotChanges.PasswordHash == storedHash {
					t.Fatal("expected a freshly derived hash")
				}
				if err := security.CheckPassword(gotChanges.PasswordHash, "secret2"); err != nil {
					t.Fatalf("new hash does not verify the new password: %v", err)
				}
			case "lone newPassword is ignored":
				if gotChanges.PasswordHash != "" {
					t.Fatal("password must not change without currentPassword")
				}
				if gotChanges.Email != "new@x.com" {
					t.Fatalf("email change lost: %+v", *gotChanges)
				}
			}

			if strings.Contains(w.Body.String(), storedHash) ||
				(gotChanges.PasswordHash != "" && strings.Contains(w.Body.String(), gotChanges.PasswordHash)) {
				t.Fatalf("response leaks a password hash: %s", w.Body.String())
			}
		})
	}
}

func TestUpdateProfilePartialFieldSemantics(t *testing.T) {
	alice := fixtureAlice()

	var gotChanges user.Changes

	store := &fakeProfileStore{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return alice, nil
		},
		updateFn: func(ctx context.Context, id string, changes user.Changes) (user.User, error) {
			gotChanges = changes
			return alice, nil
		},
	}

	h := handlers.NewProfileHandler(store, nil)
	r := setupRouter(http.MethodPut, "/update/:id", h.UpdateProfile)

	w := doJSON(t, r, http.MethodPut, "/update/"+aliceID, `{"email":"fresh@x.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if gotChanges.Email != "fresh@x.com" || gotChanges.Username != "" || gotChanges.PasswordHash != "" {
		t.Fatalf("only email should change: %+v", gotChanges)
	}
}

func TestUpdateProfileUnknownTarget(t *testing.T) {
	h := handlers.NewProfileHandler(&fakeProfileStore{}, nil)
	r := setupRouter(http.MethodPut, "/update/:id", h.UpdateProfile)

	w := doJSON(t, r, http.MethodPut, "/update/"+aliceID, `{"email":"a@x.com"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}
