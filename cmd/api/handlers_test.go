package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/auth"
	"github.com/olehvasyliv/cooking-corner/internal/data"
	"github.com/olehvasyliv/cooking-corner/internal/middleware"
	"github.com/olehvasyliv/cooking-corner/internal/service"
)

// Fakes with overridable behavior per test. Unset methods return
// NotFound so mistakes surface as 404s instead of panics.

type fakeAccounts struct {
	login      func(email, password string) (*service.Session, error)
	loginAdmin func(email, password string) (*service.Session, error)
	getUser    func(id bson.ObjectID) (*data.User, error)
	deleted    []bson.ObjectID
}

func (f *fakeAccounts) RequestRegistration(ctx context.Context, p service.RegistrationParams, image io.Reader) error {
	return nil
}

func (f *fakeAccounts) ConfirmRegistration(ctx context.Context, email, code string) (*data.User, error) {
	return nil, fmt.Errorf("confirm: %w", apperr.ErrCodeInvalid)
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*service.Session, error) {
	if f.login != nil {
		return f.login(email, password)
	}
	return nil, fmt.Errorf("login: %w", apperr.ErrInvalidCredentials)
}

func (f *fakeAccounts) LoginAdmin(ctx context.Context, email, password string) (*service.Session, error) {
	if f.loginAdmin != nil {
		return f.loginAdmin(email, password)
	}
	return nil, fmt.Errorf("login: %w", apperr.ErrForbidden)
}

func (f *fakeAccounts) GetUser(ctx context.Context, id bson.ObjectID) (*data.User, error) {
	if f.getUser != nil {
		return f.getUser(id)
	}
	return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
}

func (f *fakeAccounts) ListUsers(ctx context.Context) ([]*data.User, error) { return nil, nil }

func (f *fakeAccounts) PublicAuthors(ctx context.Context, ids []string) ([]service.AuthorCard, error) {
	return nil, nil
}

func (f *fakeAccounts) DeleteAccount(ctx context.Context, id bson.ObjectID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRecipes struct {
	list func(q service.ListQuery) ([]*data.Recipe, error)
}

func (f *fakeRecipes) Create(ctx context.Context, email string, p service.RecipeParams, photo io.Reader) (*data.Recipe, error) {
	return nil, fmt.Errorf("recipe: %w", apperr.ErrNotFound)
}

func (f *fakeRecipes) Update(ctx context.Context, recipeID, callerID bson.ObjectID, p service.RecipeParams, photo io.Reader) (*data.Recipe, error) {
	return nil, fmt.Errorf("recipe: %w", apperr.ErrNotFound)
}

func (f *fakeRecipes) Delete(ctx context.Context, recipeID, callerID bson.ObjectID) error {
	return fmt.Errorf("recipe: %w", apperr.ErrForbidden)
}

func (f *fakeRecipes) DeleteAny(ctx context.Context, recipeID bson.ObjectID) error { return nil }

func (f *fakeRecipes) List(ctx context.Context, q service.ListQuery) ([]*data.Recipe, error) {
	if f.list != nil {
		return f.list(q)
	}
	return []*data.Recipe{}, nil
}

type fakeComments struct {
	listForRecipe func(recipeID bson.ObjectID, viewerID *bson.ObjectID) ([]*data.Comment, error)
}

func (f *fakeComments) Add(ctx context.Context, recipeID, userID bson.ObjectID, text string) (*data.Comment, error) {
	return nil, fmt.Errorf("comment: %w", apperr.ErrNotFound)
}

func (f *fakeComments) Delete(ctx context.Context, commentID, callerID bson.ObjectID, isAdmin bool) error {
	return fmt.Errorf("comment: %w", apperr.ErrNotFound)
}

func (f *fakeComments) AddReply(ctx context.Context, commentID, userID bson.ObjectID, text string) (*data.Reply, error) {
	return nil, fmt.Errorf("comment: %w", apperr.ErrNotFound)
}

func (f *fakeComments) DeleteReply(ctx context.Context, commentID bson.ObjectID, replyID string, callerID bson.ObjectID, isAdmin bool) error {
	return fmt.Errorf("reply: %w", apperr.ErrNotFound)
}

func (f *fakeComments) ListForRecipe(ctx context.Context, recipeID bson.ObjectID, viewerID *bson.ObjectID) ([]*data.Comment, error) {
	if f.listForRecipe != nil {
		return f.listForRecipe(recipeID, viewerID)
	}
	return []*data.Comment{}, nil
}

func (f *fakeComments) ListAll(ctx context.Context) ([]*data.Comment, error) { return nil, nil }

func (f *fakeComments) CountByAuthor(ctx context.Context, authorID bson.ObjectID) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (f *fakeComments) ViewsForUser(ctx context.Context, userID bson.ObjectID) (*data.CommentView, error) {
	return &data.CommentView{UserID: userID, ViewedRecipes: []data.ViewedRecipe{}}, nil
}

type fakeFavorites struct{}

func (f *fakeFavorites) AddRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error {
	return nil
}

func (f *fakeFavorites) RemoveRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error {
	return fmt.Errorf("favorite recipe: %w", apperr.ErrNotFound)
}

func (f *fakeFavorites) AddAuthor(ctx context.Context, userID, authorID bson.ObjectID) error {
	return nil
}

func (f *fakeFavorites) RemoveAuthor(ctx context.Context, userID, authorID bson.ObjectID) error {
	return fmt.Errorf("favorite author: %w", apperr.ErrNotFound)
}

func (f *fakeFavorites) Get(ctx context.Context, userID bson.ObjectID) (*data.Favorite, error) {
	return &data.Favorite{UserID: userID, RecipeIDs: []bson.ObjectID{}, AuthorIDs: []bson.ObjectID{}}, nil
}

type fakeSubscriptions struct{}

func (f *fakeSubscriptions) Subscribe(ctx context.Context, userID bson.ObjectID, email string) error {
	return fmt.Errorf("subscription: %w", apperr.ErrConflict)
}

func (f *fakeSubscriptions) Unsubscribe(ctx context.Context, userID bson.ObjectID) error {
	return nil
}

func (f *fakeSubscriptions) IsSubscribed(ctx context.Context, userID bson.ObjectID) (bool, error) {
	return true, nil
}

type fakeModeration struct{}

func (f *fakeModeration) Ban(ctx context.Context, email string) error   { return nil }
func (f *fakeModeration) Unban(ctx context.Context, email string) error { return nil }
func (f *fakeModeration) ListBanned(ctx context.Context) ([]*data.BannedEmail, error) {
	return []*data.BannedEmail{}, nil
}

type fakeSitemap struct{ xml string }

func (f *fakeSitemap) Cached() string { return f.xml }

func newTestAPI(t *testing.T) (*api, *fakeAccounts) {
	t.Helper()
	accounts := &fakeAccounts{}
	limiter := middleware.NewLimiterStore(1000, 1000, time.Minute)
	t.Cleanup(limiter.Stop)

	return &api{
		logger:        zerolog.Nop(),
		jwt:           auth.NewJWTManager("test-secret", time.Hour),
		accounts:      accounts,
		recipes:       &fakeRecipes{},
		comments:      &fakeComments{},
		favorites:     &fakeFavorites{},
		subscriptions: &fakeSubscriptions{},
		moderation:    &fakeModeration{},
		sitemap:       &fakeSitemap{xml: "<urlset/>"},
		limiter:       limiter,
		uploadsRoot:   t.TempDir(),
	}, accounts
}

func bearerToken(t *testing.T, a *api, userID bson.ObjectID, isAdmin bool) string {
	t.Helper()
	token, _, err := a.jwt.GenerateToken(userID, "u@example.com", isAdmin)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return "Bearer " + token
}

func TestLoginHandler(t *testing.T) {
	a, accounts := newTestAPI(t)
	handler := a.routes()

	accounts.login = func(email, password string) (*service.Session, error) {
		if password == "right" {
			return &service.Session{Token: "tok", UserID: "abc", ExpiresAt: time.Now()}, nil
		}
		return nil, fmt.Errorf("login: %w", apperr.ErrInvalidCredentials)
	}

	body, _ := json.Marshal(map[string]string{"email": "u@example.com", "password": "right"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.RemoteAddr = "192.0.2.10:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid login: got %d, want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("expected token in response, got %v", resp)
	}

	body, _ = json.Marshal(map[string]string{"email": "u@example.com", "password": "wrong"})
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.RemoteAddr = "192.0.2.11:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: got %d, want 401", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	a, accounts := newTestAPI(t)
	handler := a.routes()

	userID := bson.NewObjectID()
	accounts.getUser = func(id bson.ObjectID) (*data.User, error) {
		return &data.User{ID: id, Name: "U", Email: "u@example.com"}, nil
	}

	// no token
	req := httptest.NewRequest(http.MethodGet, "/api/user/getUserData", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d, want 401", rec.Code)
	}

	// garbage token
	req = httptest.NewRequest(http.MethodGet, "/api/user/getUserData", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: got %d, want 401", rec.Code)
	}

	// valid token
	req = httptest.NewRequest(http.MethodGet, "/api/user/getUserData", nil)
	req.Header.Set("Authorization", bearerToken(t, a, userID, false))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestAdminGate(t *testing.T) {
	a, _ := newTestAPI(t)
	handler := a.routes()

	userID := bson.NewObjectID()

	// a regular session cannot reach admin routes
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", bearerToken(t, a, userID, false))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: got %d, want 403", rec.Code)
	}

	// an admin session can
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", bearerToken(t, a, userID, true))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: got %d, want 200", rec.Code)
	}
}

func TestGetCommentsPassesViewer(t *testing.T) {
	a, _ := newTestAPI(t)

	recipeID := bson.NewObjectID()
	viewerID := bson.NewObjectID()

	comments := &fakeComments{}
	var gotViewer *bson.ObjectID
	comments.listForRecipe = func(id bson.ObjectID, viewer *bson.ObjectID) ([]*data.Comment, error) {
		if id != recipeID {
			t.Fatalf("wrong recipe id: %s", id.Hex())
		}
		gotViewer = viewer
		return []*data.Comment{}, nil
	}
	a.comments = comments
	handler := a.routes()

	// without userId there is no view tracking
	req := httptest.NewRequest(http.MethodGet, "/api/comments/"+recipeID.Hex(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if gotViewer != nil {
		t.Fatalf("viewer should be nil without userId query")
	}

	// with userId the viewer is forwarded
	req = httptest.NewRequest(http.MethodGet, "/api/comments/"+recipeID.Hex()+"?userId="+viewerID.Hex(), nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if gotViewer == nil || *gotViewer != viewerID {
		t.Fatalf("viewer should be forwarded")
	}

	// malformed recipe id is a 400
	req = httptest.NewRequest(http.MethodGet, "/api/comments/not-an-id", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: got %d, want 400", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	a, _ := newTestAPI(t)
	handler := a.routes()

	userID := bson.NewObjectID()
	token := bearerToken(t, a, userID, false)

	// fakeFavorites.RemoveRecipe always reports NotFound
	req := httptest.NewRequest(http.MethodDelete, "/api/favorite/deleteRecipe/"+bson.NewObjectID().Hex(), nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("absent favorite: got %d, want 404", rec.Code)
	}

	// fakeSubscriptions.Subscribe always reports Conflict
	body, _ := json.Marshal(map[string]string{"email": "u@example.com"})
	req = httptest.NewRequest(http.MethodPost, "/api/subscribe/create", bytes.NewReader(body))
	req.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate subscription: got %d, want 409", rec.Code)
	}
}

func TestSitemapHandler(t *testing.T) {
	a, _ := newTestAPI(t)
	handler := a.routes()

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Fatalf("got content type %q, want application/xml", ct)
	}

	// before the first generation the route reports unavailable
	a.sitemap = &fakeSitemap{xml: ""}
	handler = a.routes()
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503", rec.Code)
	}
}

func TestAdminDeleteUserUsesCascade(t *testing.T) {
	a, accounts := newTestAPI(t)
	handler := a.routes()

	target := bson.NewObjectID()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+target.Hex(), nil)
	req.Header.Set("Authorization", bearerToken(t, a, bson.NewObjectID(), true))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if len(accounts.deleted) != 1 || accounts.deleted[0] != target {
		t.Fatalf("DeleteAccount should be called with the target id")
	}
}

// A token that verifies but carries an unusable identity claim must be
// rejected as unauthorized, not forwarded to the services.
func TestMalformedIdentityClaimRejected(t *testing.T) {
	a, _ := newTestAPI(t)
	handler := a.routes()

	claims := &auth.Claims{
		UserID: "not-a-hex-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/favorite/getFavorites", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), apperr.ErrUnauthorized.Error()) {
		t.Fatalf("expected the unauthorized error in the body, got %s", rec.Body.String())
	}
}
