package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rhythmfm/cache"
	"rhythmfm/config"
	"rhythmfm/core/auth"
	"rhythmfm/core/feed"
	"rhythmfm/model"
	"rhythmfm/repository"

	"github.com/gorilla/mux"
)

// fakeUserStore records profile writes for handler assertions.
type fakeUserStore struct {
	profile *model.UserProfile
	updates []repository.ProfileUpdate
	artists [][]int64
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) (int64, error) { return 1, nil }
func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	return nil, nil
}
func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserStore) GetProfile(_ context.Context, userID int64) (*model.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, userID int64, update repository.ProfileUpdate) error {
	f.updates = append(f.updates, update)
	if update.Language != nil {
		f.profile.Language = *update.Language
	}
	return nil
}

func (f *fakeUserStore) FavoriteArtistIDs(_ context.Context, userID int64) ([]int64, error) {
	if len(f.artists) == 0 {
		return nil, nil
	}
	return f.artists[len(f.artists)-1], nil
}

func (f *fakeUserStore) SetFavoriteArtists(_ context.Context, userID int64, artistIDs []int64) error {
	f.artists = append(f.artists, artistIDs)
	return nil
}

func testHandler() *APIHandler {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
	feedService := feed.NewService(nil, nil, nil, cache.NewMemoryFeedCache(), time.Minute)
	return NewAPIHandler(cfg, nil, nil, nil, nil, nil, feedService)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func authedRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), contextKeyUserID, int64(7))
	ctx = context.WithValue(ctx, contextKeyRole, model.RoleCustomer)
	return r.WithContext(ctx)
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusOK, "Data retrieved successfully", map[string]int{"n": 1})

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	body := decodeEnvelope(t, rec)
	if !body.Success {
		t.Error("expected success true")
	}
	if body.Message != "Data retrieved successfully" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.Data == nil {
		t.Error("expected data payload")
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErrorDetails(rec, http.StatusBadRequest, "Validation failed", map[string]string{"email": "required"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Success {
		t.Error("expected success false")
	}
	if body.Errors == nil {
		t.Error("expected errors detail")
	}
}

func TestHomeSectionHandlerUnknownSlug(t *testing.T) {
	h := testHandler()

	r := authedRequest(http.MethodGet, "/api/home/section/bogus_section", "")
	r = mux.SetURLVars(r, map[string]string{"slug": "bogus_section"})
	rec := httptest.NewRecorder()

	h.HomeSectionHandler(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slug, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Success {
		t.Error("expected success false")
	}
	if body.Message != "Invalid section slug" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	h := testHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without credentials")
	})

	rec := httptest.NewRecorder()
	h.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/home", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	h := testHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a bad token")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/home", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.AuthMiddleware(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewarePassesClaims(t *testing.T) {
	h := testHandler()

	token, err := auth.GenerateToken(h.cfg.JWTSecret, 42, "user@example.com", model.RoleBroadcaster, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var gotUserID int64
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = userIDFrom(r)
		gotRole = roleFrom(r)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/home", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.AuthMiddleware(next).ServeHTTP(rec, r)

	if gotUserID != 42 {
		t.Errorf("expected user ID 42 in context, got %d", gotUserID)
	}
	if gotRole != model.RoleBroadcaster {
		t.Errorf("expected broadcaster role in context, got %q", gotRole)
	}
}

func TestRequireBroadcasterForbidsCustomers(t *testing.T) {
	h := testHandler()
	next := func(w http.ResponseWriter, r *http.Request) {
		t.Error("customers must not reach broadcaster endpoints")
	}

	rec := httptest.NewRecorder()
	h.requireBroadcaster(next)(rec, authedRequest(http.MethodPost, "/api/music/upload", ""))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Message != msgPermissionDenied {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	h := testHandler()
	store := &fakeUserStore{profile: &model.UserProfile{UserID: 7, Language: "en"}}
	h.users = store

	r := authedRequest(http.MethodPut, "/api/auth/me",
		`{"language":"ar","favorite_artist_ids":[10,11]}`)
	rec := httptest.NewRecorder()
	h.UpdateProfileHandler(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(store.updates) != 1 || store.updates[0].Language == nil || *store.updates[0].Language != "ar" {
		t.Errorf("expected a language update to ar, got %+v", store.updates)
	}
	if len(store.artists) != 1 || len(store.artists[0]) != 2 {
		t.Errorf("expected favorite artists replaced with 2 IDs, got %+v", store.artists)
	}
	if store.profile.Language != "ar" {
		t.Errorf("profile language not updated, got %q", store.profile.Language)
	}
}

func TestUpdateProfileHandlerRejectsUnknownLanguage(t *testing.T) {
	h := testHandler()
	store := &fakeUserStore{profile: &model.UserProfile{UserID: 7, Language: "en"}}
	h.users = store

	r := authedRequest(http.MethodPut, "/api/auth/me", `{"language":"xx"}`)
	rec := httptest.NewRecorder()
	h.UpdateProfileHandler(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(store.updates) != 0 {
		t.Error("invalid language must not reach the store")
	}
	body := decodeEnvelope(t, rec)
	if body.Success {
		t.Error("expected success false")
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	h := testHandler()

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"","password":"short"}`))
	h.RegisterHandler(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Success {
		t.Error("expected success false")
	}
	fields, ok := body.Errors.(map[string]interface{})
	if !ok {
		t.Fatalf("expected field error map, got %T", body.Errors)
	}
	if _, ok := fields["email"]; !ok {
		t.Error("expected email field error")
	}
	if _, ok := fields["password"]; !ok {
		t.Error("expected password field error")
	}
}
