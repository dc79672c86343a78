package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/weddinginvite/core/internal/adapters/repository"
	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/config"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

type testServer struct {
	handler http.Handler
	cfg     *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{Name: "Wedding Guestbook", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			Port:            8080,
			Host:            "127.0.0.1",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Storage: config.StorageConfig{
			Driver:   config.StorageDriverJSON,
			DataDir:  filepath.Join(dir, "data"),
			FileName: "guest-messages.json",
		},
		Admin:    config.AdminConfig{ExpiresIn: time.Hour, Issuer: "wedding-guestbook"},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
		Metrics:  config.MetricsConfig{Enabled: true},
		Site:     config.SiteConfig{PublicDir: filepath.Join(dir, "public")},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	repo, err := repository.Open(cfg.Storage, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	srv, err := New(cfg, repo, logger.NewNop())
	require.NoError(t, err)
	return &testServer{handler: srv.Handler(), cfg: cfg}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestGuestbookScenarios(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	// empty guestbook
	rec := s.do(t, http.MethodGet, "/api/guest-data", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// submission with a numeric string count
	rec = s.do(t, http.MethodPost, "/api/guest-data", `{"name":"Amy","attendeeCount":"2","message":"Congrats!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created entities.GuestMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Regexp(t, `^\d+$`, created.ID)
	assert.Equal(t, 2, created.AttendeeCount)

	rec = s.do(t, http.MethodGet, "/api/guest-data", "")
	var listed []entities.GuestMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])

	// deleting an unknown id still succeeds
	rec = s.do(t, http.MethodDelete, "/api/guest-data?id=123", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/guest-data/batch", `{"ids":["`+created.ID+`","b"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"deletedCount":1}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/guest-data", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestErrorBodies(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	tests := []struct {
		method string
		target string
		body   string
		code   int
		error  string
	}{
		{http.MethodPost, "/api/guest-data", `{"name":"Amy"}`, http.StatusBadRequest, "Missing required fields"},
		{http.MethodPost, "/api/guest-data", `{"name":"Amy","attendeeCount":"lots","message":"hi"}`, http.StatusBadRequest, "attendeeCount must be a positive whole number"},
		{http.MethodPost, "/api/guest-data", `not json`, http.StatusBadRequest, "Invalid request format"},
		{http.MethodDelete, "/api/guest-data", "", http.StatusBadRequest, "Message ID is required"},
		{http.MethodDelete, "/api/guest-data/batch", `{"ids":"a"}`, http.StatusBadRequest, "Message IDs array is required"},
	}

	for _, tt := range tests {
		rec := s.do(t, tt.method, tt.target, tt.body)
		assert.Equal(t, tt.code, rec.Code, "%s %s %s", tt.method, tt.target, tt.body)
		assert.JSONEq(t, `{"error":"`+tt.error+`"}`, rec.Body.String())
	}
}

func TestCorruptStoreReturnsServerErrors(t *testing.T) {
	cfg := testConfig(t)
	s := newTestServer(t, cfg)

	require.NoError(t, os.MkdirAll(cfg.Storage.DataDir, 0755))
	require.NoError(t, os.WriteFile(cfg.Storage.MessagesFile(), []byte(`{"broken":`), 0644))

	rec := s.do(t, http.MethodGet, "/api/guest-data", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to read messages"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/guest-data", `{"name":"Amy","attendeeCount":1,"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to save message"}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/guest-data?id=1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to delete message"}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/guest-data/batch", `{"ids":["1"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to delete messages"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	data, err := os.ReadFile(cfg.Storage.MessagesFile())
	require.NoError(t, err)
	assert.Equal(t, `{"broken":`, string(data))
}

func TestAdminRoutesOpenWithoutPassword(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := s.do(t, http.MethodGet, "/api/guest-data/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalMessages":0,"totalGuests":0,"averageGuests":0}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", `{"password":"anything"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminLoginFlow(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("forever"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Admin.PasswordHash = string(hash)
	cfg.Admin.JWTSecret = "test-secret"
	s := newTestServer(t, cfg)

	// guests can still submit and read
	rec := s.do(t, http.MethodPost, "/api/guest-data", `{"name":"Amy","attendeeCount":2,"message":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/guest-data", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, target := range []string{"/api/guest-data/stats", "/api/guest-data/search?q=amy"} {
		rec = s.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
	rec = s.do(t, http.MethodDelete, "/api/guest-data?id=1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Missing authorization header"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/guest-data/stats", "", "Authorization", "Bearer nonsense")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", `{"password":"forever"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var auth ports.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.AccessToken)

	bearer := "Bearer " + auth.AccessToken
	rec = s.do(t, http.MethodGet, "/api/guest-data/stats", "", "Authorization", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalMessages":1,"totalGuests":2,"averageGuests":2}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/guest-data/batch", `{"ids":["x"]}`, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMapRoute(t *testing.T) {
	cfg := testConfig(t)
	s := newTestServer(t, cfg)

	rec := s.do(t, http.MethodGet, "/api/map", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Map not found", rec.Body.String())

	require.NoError(t, os.MkdirAll(cfg.Site.PublicDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Site.PublicDir, "map.html"), []byte("<html></html>"), 0644))

	rec = s.do(t, http.MethodGet, "/api/map", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html></html>", rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"driver":"json"`)

	rec = s.do(t, http.MethodPost, "/api/guest-data", `{"name":"Amy","attendeeCount":1,"message":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "guestbook_messages_submitted_total 1")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	s := newTestServer(t, cfg)

	rec := s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/guest-data", `{"name":"Amy","attendeeCount":1,"message":"hi"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimitRequests = 2
	cfg.Security.RateLimitWindow = time.Hour
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodGet, "/api/guest-data", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := s.do(t, http.MethodGet, "/api/guest-data", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}
