// Package storagetest holds the behaviour every storage.Store
// implementation must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

// OpenFunc returns an empty store. The store is closed by the caller's
// cleanup.
type OpenFunc func(t *testing.T) storage.Store

// Run runs the whole suite against stores returned by open.
func Run(t *testing.T, open OpenFunc) {
	t.Run("Roles", func(t *testing.T) { testRoles(t, open(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, open(t)) })
	t.Run("SearchFoldsUnicode", func(t *testing.T) { testSearchFoldsUnicode(t, open(t)) })
	t.Run("Rollback", func(t *testing.T) { testRollback(t, open(t)) })
}

func inTx(t *testing.T, store storage.Store, fn func(ctx context.Context, tx storage.Tx) error) error {
	t.Helper()
	return store.WithinTx(context.Background(), storage.TxOptions{}, fn)
}

func seed(t *testing.T, store storage.Store) map[string]models.Role {
	t.Helper()
	roles := make(map[string]models.Role)
	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		for _, name := range models.SeededRoles {
			if _, err := tx.Roles().EnsureExists(ctx, name); err != nil {
				return err
			}
			role, err := tx.Roles().GetByName(ctx, name)
			if err != nil {
				return err
			}
			roles[name] = *role
		}
		return nil
	}))
	return roles
}

func createUser(t *testing.T, store storage.Store, email string, role models.Role, status models.UserStatus) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		RoleID:       role.ID,
		Status:       status,
	}
	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, user)
	}))
	require.NotZero(t, user.ID)
	return user
}

func createTask(t *testing.T, store storage.Store, owner *models.User, title string, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:    title,
		Status:   status,
		Category: models.TaskCategoryOther,
		OwnerID:  owner.ID,
	}
	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Tasks().Create(ctx, task)
	}))
	require.NotZero(t, task.ID)
	return task
}

func testRoles(t *testing.T, store storage.Store) {
	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		created, err := tx.Roles().EnsureExists(ctx, models.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = tx.Roles().EnsureExists(ctx, models.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, created)

		role, err := tx.Roles().GetByName(ctx, "ADMIN")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, role.Name)

		_, err = tx.Roles().GetByName(ctx, "ghost")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	}))
}

func testUsers(t *testing.T, store storage.Store) {
	roles := seed(t, store)
	fullName := "Alice"

	alice := &models.User{
		Email:        "alice@x.com",
		PasswordHash: "hash",
		FullName:     &fullName,
		RoleID:       roles[models.RoleUser].ID,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, alice)
	}))

	err := inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, &models.User{
			Email:        "alice@x.com",
			PasswordHash: "hash",
			RoleID:       roles[models.RoleUser].ID,
			Status:       models.UserStatusActive,
		})
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	pending := createUser(t, store, "pending@x.com", roles[models.RoleAdmin], models.UserStatusPending)

	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		got, err := tx.Users().GetByID(ctx, alice.ID, true)
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", got.Email)
		assert.Equal(t, "hash", got.PasswordHash)
		require.NotNil(t, got.FullName)
		assert.Equal(t, "Alice", *got.FullName)
		assert.Equal(t, models.RoleUser, got.Role.Name)

		got, err = tx.Users().GetByEmail(ctx, "pending@x.com")
		require.NoError(t, err)
		assert.Equal(t, pending.ID, got.ID)
		assert.Equal(t, models.RoleAdmin, got.Role.Name)

		_, err = tx.Users().GetByID(ctx, 999, false)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = tx.Users().GetByEmail(ctx, "ghost@x.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		all, err := tx.Users().List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, alice.ID, all[0].ID)

		status := models.UserStatusPending
		onlyPending, err := tx.Users().List(ctx, &status)
		require.NoError(t, err)
		require.Len(t, onlyPending, 1)
		assert.Equal(t, pending.ID, onlyPending[0].ID)

		exists, err := tx.Users().AdminExists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		got.Status = models.UserStatusActive
		got.RoleID = roles[models.RoleUser].ID
		require.NoError(t, tx.Users().Update(ctx, got))
		assert.Equal(t, models.RoleUser, got.Role.Name)

		exists, err = tx.Users().AdminExists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		total, counts, err := tx.Users().CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, map[models.UserStatus]int64{models.UserStatusActive: 2}, counts)
		return nil
	}))
}

func testTasks(t *testing.T, store storage.Store) {
	roles := seed(t, store)
	alice := createUser(t, store, "alice@x.com", roles[models.RoleUser], models.UserStatusActive)
	bob := createUser(t, store, "bob@x.com", roles[models.RoleUser], models.UserStatusActive)

	milk := createTask(t, store, alice, "Buy milk", models.TaskStatusTodo)
	createTask(t, store, alice, "Report 100% done", models.TaskStatusDone)
	juice := createTask(t, store, bob, "buy juice", models.TaskStatusTodo)
	assert.False(t, milk.CreatedAt.IsZero())

	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		got, err := tx.Tasks().GetByID(ctx, milk.ID, true)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
		require.NotNil(t, got.Owner)
		assert.Equal(t, "alice@x.com", got.Owner.Email)

		_, err = tx.Tasks().GetOwned(ctx, milk.ID, bob.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		got, err = tx.Tasks().GetOwned(ctx, milk.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, milk.ID, got.ID)

		tasks, err := tx.Tasks().List(ctx, storage.TaskFilter{Search: "BUY"}, storage.Page{Limit: 10})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, milk.ID, tasks[0].ID)
		assert.Equal(t, juice.ID, tasks[1].ID)
		assert.Equal(t, "bob@x.com", tasks[1].Owner.Email)

		tasks, err = tx.Tasks().List(ctx, storage.TaskFilter{Search: "0%"}, storage.Page{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)

		tasks, err = tx.Tasks().List(ctx, storage.TaskFilter{Search: "_"}, storage.Page{Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, tasks)

		done := models.TaskStatusDone
		tasks, err = tx.Tasks().List(ctx, storage.TaskFilter{Status: &done, OwnerID: &alice.ID}, storage.Page{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)

		tasks, err = tx.Tasks().List(ctx, storage.TaskFilter{}, storage.Page{Limit: 1, Skip: 1})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)

		tasks, err = tx.Tasks().ListByOwner(ctx, bob.ID, storage.Page{Limit: 10})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, juice.ID, tasks[0].ID)

		due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		description := "two liters"
		got.Title = "Buy oat milk"
		got.Description = &description
		got.Status = models.TaskStatusInProgress
		got.Category = models.TaskCategoryShopping
		got.DueDate = &due
		require.NoError(t, tx.Tasks().Update(ctx, got))

		got, err = tx.Tasks().GetByID(ctx, milk.ID, false)
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, "two liters", *got.Description)
		assert.Equal(t, models.TaskStatusInProgress, got.Status)
		assert.Equal(t, models.TaskCategoryShopping, got.Category)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))

		got.Description = nil
		got.DueDate = nil
		require.NoError(t, tx.Tasks().Update(ctx, got))
		got, err = tx.Tasks().GetByID(ctx, milk.ID, false)
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.DueDate)

		total, counts, err := tx.Tasks().CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, map[models.TaskStatus]int64{
			models.TaskStatusTodo:       1,
			models.TaskStatusInProgress: 1,
			models.TaskStatusDone:       1,
		}, counts)

		require.NoError(t, tx.Tasks().Delete(ctx, juice.ID))
		assert.ErrorIs(t, tx.Tasks().Delete(ctx, juice.ID), storage.ErrNotFound)
		assert.ErrorIs(t, tx.Tasks().Update(ctx, &models.Task{ID: juice.ID}), storage.ErrNotFound)
		_, err = tx.Tasks().GetByID(ctx, juice.ID, false)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	}))
}

func testSearchFoldsUnicode(t *testing.T, store storage.Store) {
	roles := seed(t, store)
	alice := createUser(t, store, "alice@x.com", roles[models.RoleUser], models.UserStatusActive)
	school := createTask(t, store, alice, "ÉCOLE homework", models.TaskStatusTodo)
	createTask(t, store, alice, "Buy MILK", models.TaskStatusTodo)

	require.NoError(t, inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		for _, search := range []string{"éco", "ÉCO", "École", "homEWORK"} {
			tasks, err := tx.Tasks().List(ctx, storage.TaskFilter{Search: search}, storage.Page{Limit: 10})
			require.NoError(t, err)
			require.Len(t, tasks, 1, "search %q", search)
			assert.Equal(t, school.ID, tasks[0].ID)
		}

		tasks, err := tx.Tasks().List(ctx, storage.TaskFilter{Search: "milk"}, storage.Page{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
		return nil
	}))
}

func testRollback(t *testing.T, store storage.Store) {
	roles := seed(t, store)
	errAbort := errors.New("abort")

	err := inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		err := tx.Users().Create(ctx, &models.User{
			Email:        "ghost@x.com",
			PasswordHash: "hash",
			RoleID:       roles[models.RoleUser].ID,
			Status:       models.UserStatusActive,
		})
		require.NoError(t, err)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, &models.User{
			Email:        "cancelled@x.com",
			PasswordHash: "hash",
			RoleID:       roles[models.RoleUser].ID,
			Status:       models.UserStatusActive,
		})
	})
	assert.Error(t, err)

	require.NoError(t, store.WithinTx(context.Background(), storage.TxOptions{ReadOnly: true, Snapshot: true},
		func(ctx context.Context, tx storage.Tx) error {
			total, _, err := tx.Users().CountByStatus(ctx)
			require.NoError(t, err)
			assert.Zero(t, total)
			return nil
		}))
}
