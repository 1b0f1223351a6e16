package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/membergate/membergate/internal/crypto"
	"github.com/membergate/membergate/internal/middleware"
	"github.com/membergate/membergate/internal/repository"
	"github.com/membergate/membergate/internal/service"
)

// newTestServer wires the full stack against an in-memory sqlite database,
// mirroring the routes in cmd/api.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := repository.NewDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("NewDB() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := repository.Migrate(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("Migrate() unexpected error: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	tokens := crypto.NewTokenManager("test-secret", time.Hour)
	authHandler := NewAuthHandler(service.NewAuthService(userRepo, tokens))

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.HandleRegister)
	r.Post("/auth/login", authHandler.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens, userRepo))
		r.Get("/profile", authHandler.HandleProfile)
	})

	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func register(t *testing.T, h http.Handler, email, password string) map[string]any {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/auth/register", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)
}

func TestRegisterSuccess(t *testing.T) {
	srv := newTestServer(t)

	body := register(t, srv, "a@x.com", "pw123456")

	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("body has no user object: %v", body)
	}
	if user["email"] != "a@x.com" {
		t.Errorf("user.email = %v, want %q", user["email"], "a@x.com")
	}
	if id, ok := user["id"].(float64); !ok || id <= 0 {
		t.Errorf("user.id = %v, want positive integer", user["id"])
	}
	if token, ok := body["token"].(string); !ok || token == "" {
		t.Errorf("token = %v, want non-empty string", body["token"])
	}
	for _, key := range []string{"password_hash", "passwordHash"} {
		if _, present := user[key]; present {
			t.Errorf("user contains %q field", key)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "a@x.com", "pw123456")

	rec := doJSON(t, srv, http.MethodPost, "/auth/register", map[string]any{
		"email":    "a@x.com",
		"password": "another-password",
	}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Email already in use" {
		t.Errorf("error = %v, want %q", body["error"], "Email already in use")
	}
}

func TestRegisterInvalidBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "a@x.com", "pw123456")

	rec := doJSON(t, srv, http.MethodPost, "/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "pw123456",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if token, ok := body["token"].(string); !ok || token == "" {
		t.Errorf("token = %v, want non-empty string", body["token"])
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "a@x.com", "pw123456")

	wrongPassword := doJSON(t, srv, http.MethodPost, "/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "wrong",
	}, nil)
	unknownEmail := doJSON(t, srv, http.MethodPost, "/auth/login", map[string]any{
		"email":    "nobody@x.com",
		"password": "pw123456",
	}, nil)

	for name, rec := range map[string]*httptest.ResponseRecorder{
		"wrong password": wrongPassword,
		"unknown email":  unknownEmail,
	} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "Invalid credentials" {
			t.Errorf("%s: error = %v, want %q", name, body["error"], "Invalid credentials")
		}
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Error("wrong-password and unknown-email responses differ")
	}
}

func TestProfileWithToken(t *testing.T) {
	srv := newTestServer(t)
	body := register(t, srv, "a@x.com", "pw123456")
	token := body["token"].(string)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	rec := doJSON(t, srv, http.MethodGet, "/profile", nil, header)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	profile := decodeBody(t, rec)
	user, ok := profile["user"].(map[string]any)
	if !ok {
		t.Fatalf("body has no user object: %v", profile)
	}
	if user["email"] != "a@x.com" {
		t.Errorf("user.email = %v, want %q", user["email"], "a@x.com")
	}
	for _, key := range []string{"password_hash", "passwordHash"} {
		if _, present := user[key]; present {
			t.Errorf("user contains %q field", key)
		}
	}
}

func TestProfileWithoutToken(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/profile", nil, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Missing token" {
		t.Errorf("error = %v, want %q", body["error"], "Missing token")
	}
}

func TestProfileWithGarbageToken(t *testing.T) {
	srv := newTestServer(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer garbage")
	rec := doJSON(t, srv, http.MethodGet, "/profile", nil, header)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Invalid token" {
		t.Errorf("error = %v, want %q", body["error"], "Invalid token")
	}
}

func TestProfileWithoutAttachedUser(t *testing.T) {
	authHandler := NewAuthHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	authHandler.HandleProfile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "User not found" {
		t.Errorf("error = %v, want %q", body["error"], "User not found")
	}
}
