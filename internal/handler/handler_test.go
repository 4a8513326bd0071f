package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkowalski/notekeeper/internal/handler"
	"github.com/mkowalski/notekeeper/internal/repository/sqlite"
	"github.com/mkowalski/notekeeper/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests"

func newTestServer(t *testing.T) http.Handler {
	return newTestServerWith(t, time.Hour, nil)
}

func newTestServerWith(t *testing.T, tokenTTL time.Duration, loginLimiter *service.TokenBucket) http.Handler {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), testJWTSecret, tokenTTL, 4)
	notes := service.NewNoteService(db.Notes())
	return handler.NewRouter(auth, notes, loginLimiter)
}

func doJSON(t *testing.T, ts http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rr)["error"]
}

func registerAndLogin(t *testing.T, ts http.Handler, email, password string) string {
	t.Helper()
	rr := doJSON(t, ts, "POST", "/api/users/register", map[string]string{"email": email, "password": password}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", email, rr.Code, rr.Body.String())
	}
	rr = doJSON(t, ts, "POST", "/api/users/login/access-token", map[string]string{"email": email, "password": password}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rr.Code, rr.Body.String())
	}
	token := decode[map[string]string](t, rr)["access_token"]
	if token == "" {
		t.Fatalf("empty access token for %s", email)
	}
	return token
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rr := doJSON(t, ts, "GET", "/healthz", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
}

func TestRegisterLoginAndOwnership(t *testing.T) {
	ts := newTestServer(t)

	// Register.
	rr := doJSON(t, ts, "POST", "/api/users/register", map[string]string{"email": "alice@x.com", "password": "pw1"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("register: %d %s", rr.Code, rr.Body.String())
	}
	alice := decode[struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}](t, rr)
	if alice.ID == 0 || alice.Email != "alice@x.com" {
		t.Fatalf("bad register response: %+v", alice)
	}

	// Duplicate email.
	rr = doJSON(t, ts, "POST", "/api/users/register", map[string]string{"email": "alice@x.com", "password": "pw2"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Email already registered" {
		t.Fatalf("duplicate register message: %q", msg)
	}

	// Wrong password yields the generic rejection.
	rr = doJSON(t, ts, "POST", "/api/users/login/access-token", map[string]string{"email": "alice@x.com", "password": "wrongpw"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad login: %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Incorrect email or password" {
		t.Fatalf("bad login message: %q", msg)
	}

	// Unknown email yields the identical rejection.
	rr = doJSON(t, ts, "POST", "/api/users/login/access-token", map[string]string{"email": "nobody@x.com", "password": "pw1"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown email login: %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Incorrect email or password" {
		t.Fatalf("unknown email message: %q", msg)
	}

	// Correct login.
	rr = doJSON(t, ts, "POST", "/api/users/login/access-token", map[string]string{"email": "alice@x.com", "password": "pw1"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	aliceToken := decode[map[string]string](t, rr)["access_token"]
	if aliceToken == "" {
		t.Fatal("empty access token")
	}

	// Create a note.
	rr = doJSON(t, ts, "POST", "/api/notes", map[string]string{"title": "A", "note": "B"}, aliceToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("create note: %d %s", rr.Code, rr.Body.String())
	}
	note := decode[struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Body     string `json:"note"`
		AuthorID int64  `json:"author_id"`
	}](t, rr)
	if note.ID != 1 {
		t.Fatalf("expected first note id 1, got %d", note.ID)
	}
	if note.Title != "A" || note.Body != "B" || note.AuthorID != alice.ID {
		t.Fatalf("bad note: %+v", note)
	}

	// A different user sees it as not found.
	bobToken := registerAndLogin(t, ts, "bob@x.com", "pw2")
	rr = doJSON(t, ts, "GET", "/api/notes/1", nil, bobToken)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("cross-owner get: %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Note not found" {
		t.Fatalf("cross-owner message: %q", msg)
	}

	// The owner still can.
	rr = doJSON(t, ts, "GET", "/api/notes/1", nil, aliceToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner get: %d", rr.Code)
	}
}

func TestNotesCRUD(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "crud@x.com", "password")

	// Create.
	rr := doJSON(t, ts, "POST", "/api/notes", map[string]string{"title": "first", "note": "body"}, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	created := decode[struct {
		ID int64 `json:"id"`
	}](t, rr)

	// Update.
	rr = doJSON(t, ts, "PUT", "/api/notes/1", map[string]string{"title": "renamed", "note": "changed"}, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rr.Code, rr.Body.String())
	}
	updated := decode[struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Body  string `json:"note"`
	}](t, rr)
	if updated.ID != created.ID || updated.Title != "renamed" || updated.Body != "changed" {
		t.Fatalf("bad update response: %+v", updated)
	}

	// Delete.
	rr = doJSON(t, ts, "DELETE", "/api/notes/1", nil, token)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}

	// Gone afterwards, for every operation.
	if rr = doJSON(t, ts, "GET", "/api/notes/1", nil, token); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rr.Code)
	}
	if rr = doJSON(t, ts, "PUT", "/api/notes/1", map[string]string{"title": "x", "note": "y"}, token); rr.Code != http.StatusNotFound {
		t.Fatalf("update after delete: %d", rr.Code)
	}
	if rr = doJSON(t, ts, "DELETE", "/api/notes/1", nil, token); rr.Code != http.StatusNotFound {
		t.Fatalf("delete after delete: %d", rr.Code)
	}
}

func TestNotesList(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "list@x.com", "password")

	// Empty list encodes as [], not null.
	rr := doJSON(t, ts, "GET", "/api/notes", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("empty list: %d", rr.Code)
	}
	if got := rr.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}

	for i := 0; i < 12; i++ {
		rr = doJSON(t, ts, "POST", "/api/notes", map[string]string{"title": "t", "note": "n"}, token)
		if rr.Code != http.StatusOK {
			t.Fatalf("create %d: %d", i, rr.Code)
		}
	}

	// Default page size is 10.
	rr = doJSON(t, ts, "GET", "/api/notes", nil, token)
	if got := len(decode[[]map[string]any](t, rr)); got != 10 {
		t.Fatalf("default page: expected 10, got %d", got)
	}

	// skip/limit are honored.
	rr = doJSON(t, ts, "GET", "/api/notes?skip=10&limit=10", nil, token)
	if got := len(decode[[]map[string]any](t, rr)); got != 2 {
		t.Fatalf("second page: expected 2, got %d", got)
	}

	rr = doJSON(t, ts, "GET", "/api/notes?limit=3", nil, token)
	if got := len(decode[[]map[string]any](t, rr)); got != 3 {
		t.Fatalf("limit=3: expected 3, got %d", got)
	}

	// Non-integer pagination values are rejected.
	rr = doJSON(t, ts, "GET", "/api/notes?limit=abc", nil, token)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad limit: %d", rr.Code)
	}
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "me@x.com", "password")

	rr := doJSON(t, ts, "GET", "/api/users/me", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: %d %s", rr.Code, rr.Body.String())
	}
	me := decode[struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}](t, rr)
	if me.Email != "me@x.com" || me.ID == 0 {
		t.Fatalf("bad me response: %+v", me)
	}
}

func TestAuthGate(t *testing.T) {
	ts := newTestServer(t)

	// Missing token.
	rr := doJSON(t, ts, "GET", "/api/notes", nil, "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("missing token: %d", rr.Code)
	}

	// Garbage token.
	rr = doJSON(t, ts, "GET", "/api/notes", nil, "garbage")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("garbage token: %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "The token is invalid" {
		t.Fatalf("garbage token message: %q", msg)
	}
}

func TestAuthGate_ExpiredToken(t *testing.T) {
	// Tokens from this server are already expired when issued.
	ts := newTestServerWith(t, -time.Minute, nil)
	token := registerAndLogin(t, ts, "exp@x.com", "password")

	rr := doJSON(t, ts, "GET", "/api/users/me", nil, token)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expired token: %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "The credentials are expired" {
		t.Fatalf("expired token message: %q", msg)
	}
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t)

	rr := doJSON(t, ts, "POST", "/api/users/register", map[string]string{"email": "not-an-email", "password": "pw"}, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid email: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, ts, "POST", "/api/users/register", map[string]string{"email": "a@b.com"}, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing password: %d", rr.Code)
	}
}

func TestLogin_Throttled(t *testing.T) {
	limiter := service.NewTokenBucket(0.0001, 2)
	t.Cleanup(limiter.Stop)
	ts := newTestServerWith(t, time.Hour, limiter)

	body := map[string]string{"email": "x@y.com", "password": "whatever"}
	for i := 0; i < 2; i++ {
		rr := doJSON(t, ts, "POST", "/api/users/login/access-token", body, "")
		if rr.Code == http.StatusTooManyRequests {
			t.Fatalf("attempt %d throttled too early", i+1)
		}
	}

	rr := doJSON(t, ts, "POST", "/api/users/login/access-token", body, "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exhausting bucket, got %d", rr.Code)
	}
}
