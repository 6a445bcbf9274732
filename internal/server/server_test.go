package server

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/friendorbit/orbit/internal/config"
	"github.com/friendorbit/orbit/internal/store"
)

const (
	testBotToken      = "12345:test-token"
	testWebhookSecret = "hook-secret"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.TelegramConfig{
		BotToken:      testBotToken,
		BotUsername:   "Friendorbitbot",
		WebhookSecret: testWebhookSecret,
		WebAppURL:     "https://orbit.example/app",
	}
	return New(db, cfg, "test-version")
}

func seedUser(t *testing.T, srv *Server, telegramID string) *store.User {
	t.Helper()
	u, err := srv.db.CreateUser(telegramID, "Asha", "", "UTC")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// doJSON issues a request with an optional JSON body and X-User-Id.
func doJSON(t *testing.T, srv *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	w := doJSON(t, srv, "GET", "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	decodeBody(t, w, &body)

	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestAuthTelegramDemoPath(t *testing.T) {
	srv := testServer(t)

	w := doJSON(t, srv, "POST", "/api/auth/telegram", "", map[string]string{
		"telegram_id":  "555",
		"display_name": "Asha",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var body struct {
		User  store.User `json:"user"`
		IsNew bool       `json:"is_new"`
	}
	decodeBody(t, w, &body)
	if !body.IsNew {
		t.Error("is_new = false, want true on first sign-in")
	}
	if body.User.TelegramID != "555" {
		t.Errorf("telegram_id = %s, want 555", body.User.TelegramID)
	}

	// Second sign-in finds the same account.
	w = doJSON(t, srv, "POST", "/api/auth/telegram", "", map[string]string{"telegram_id": "555"})
	decodeBody(t, w, &body)
	if body.IsNew {
		t.Error("is_new = true on repeat sign-in")
	}
}

func TestAuthTelegramRejectsAnonymous(t *testing.T) {
	srv := testServer(t)

	w := doJSON(t, srv, "POST", "/api/auth/telegram", "", map[string]string{})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// signInitData builds a query string signed the way Telegram WebApps do.
func signInitData(t *testing.T, fields map[string]string, botToken string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", hash)
	return q.Encode()
}

func TestAuthTelegramInitData(t *testing.T) {
	srv := testServer(t)

	initData := signInitData(t, map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":777,"first_name":"Ravi","username":"ravi"}`,
	}, testBotToken)

	w := doJSON(t, srv, "POST", "/api/auth/telegram", "", map[string]string{"init_data": initData})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var body struct {
		User store.User `json:"user"`
	}
	decodeBody(t, w, &body)
	if body.User.TelegramID != "777" {
		t.Errorf("telegram_id = %s, want 777", body.User.TelegramID)
	}
	if body.User.DisplayName != "Ravi" {
		t.Errorf("display_name = %s, want Ravi", body.User.DisplayName)
	}
}

func TestAuthTelegramBadInitData(t *testing.T) {
	srv := testServer(t)

	initData := signInitData(t, map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":777,"first_name":"Ravi"}`,
	}, "999:wrong-token")

	w := doJSON(t, srv, "POST", "/api/auth/telegram", "", map[string]string{"init_data": initData})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireUser(t *testing.T) {
	srv := testServer(t)

	w := doJSON(t, srv, "GET", "/api/people", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = doJSON(t, srv, "GET", "/api/people", "no-such-user", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUpdateUserValidatesStrictness(t *testing.T) {
	srv := testServer(t)
	u := seedUser(t, srv, "tg-1")

	w := doJSON(t, srv, "PATCH", "/api/users/"+u.ID, "", map[string]string{"strictness": "brutal"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doJSON(t, srv, "PATCH", "/api/users/"+u.ID, "", map[string]string{"strictness": "gentle"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var fresh store.User
	decodeBody(t, w, &fresh)
	if fresh.Strictness != "gentle" {
		t.Errorf("strictness = %s, want gentle", fresh.Strictness)
	}
}

func TestOnboardUser(t *testing.T) {
	srv := testServer(t)
	u := seedUser(t, srv, "tg-1")

	w := doJSON(t, srv, "POST", "/api/users/"+u.ID+"/onboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var fresh store.User
	decodeBody(t, w, &fresh)
	if !fresh.Onboarded {
		t.Error("onboarded = false after onboard call")
	}

	w = doJSON(t, srv, "POST", "/api/users/missing/onboard", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing user: status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
