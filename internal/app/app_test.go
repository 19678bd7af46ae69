package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-taskmaster/internal/config"
	"github.com/adanyl0v/go-taskmaster/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticReader struct {
	cfg *config.Config
	err error
}

func (r staticReader) Read() (*config.Config, error) {
	return r.cfg, r.err
}

func testConfig() *config.Config {
	return &config.Config{
		Env: config.EnvLocal,
		HTTP: config.HTTPConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			URL:    ":memory:",
		},
		JWT: config.JWTConfig{
			SecretKey:             "secret",
			Algorithm:             "HS256",
			AccessTokenTTLMinutes: 30,
			Issuer:                "taskmaster",
		},
		Password: config.PasswordConfig{
			Hasher:     config.HasherBcrypt,
			BcryptCost: 4,
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(context.Background(), staticReader{cfg: testConfig()})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNew_SQLite(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.SeedRoles(context.Background()))

	user, err := a.Users.Register(context.Background(), services.RegisterParams{
		Email:    "a@x.com",
		Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role.Name)
}

func TestNew_UnknownEnv(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "staging"

	_, err := New(context.Background(), staticReader{cfg: cfg})
	assert.Error(t, err)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), zerolog.Nop(), config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestNewRouter(t *testing.T) {
	a := newTestApp(t)
	router := a.NewRouter()

	for _, path := range []string{"/", "/api/v1/"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/my-tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	a := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStatsReporter(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.SeedRoles(context.Background()))
	_, err := a.Users.Register(context.Background(), services.RegisterParams{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	var buf bytes.Buffer
	reporter := NewStatsReporter(zerolog.New(&buf), a.Stats)
	require.Error(t, reporter.Schedule("not a schedule"))
	require.NoError(t, reporter.Schedule("@hourly"))

	reporter.Report()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	assert.Equal(t, "stats report", entry["message"])
	assert.EqualValues(t, 1, entry["total_users"])
	assert.Equal(t, map[string]any{"ACTIVE": float64(1)}, entry["users_by_status"])
}

func TestNewApplicationLogger(t *testing.T) {
	for _, env := range []string{config.EnvDev, config.EnvProd, config.EnvLocal} {
		_, err := NewApplicationLogger(zerolog.Nop(), env)
		assert.NoError(t, err, env)
	}

	_, err := NewApplicationLogger(zerolog.Nop(), "unknown")
	assert.Error(t, err)
}
