package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adanyl0v/go-taskmaster/internal/credentials"
	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
	"github.com/adanyl0v/go-taskmaster/internal/storage/sqlite"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

type testEnv struct {
	store  storage.Store
	clock  *testClock
	users  UserService
	tasks  TaskService
	stats  StatsService
	issuer *credentials.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	store, err := sqlite.Open(logger, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, SeedRoles(context.Background(), store, logger))

	hasher, err := credentials.NewHasher(credentials.SchemeBcrypt, credentials.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	issuer, err := credentials.NewIssuer("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	clock := &testClock{now: time.Now().UTC()}
	return &testEnv{
		store:  store,
		clock:  clock,
		users:  NewUserService(logger, store, hasher, issuer),
		tasks:  NewTaskService(logger, store, clock.Now),
		stats:  NewStatsService(logger, store),
		issuer: issuer,
	}
}

func (e *testEnv) register(t *testing.T, email, role string) *models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterParams{
		Email:    email,
		Password: "pw",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createTask(t *testing.T, owner *models.User, title string) *models.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), owner, CreateTaskParams{Title: title})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}
