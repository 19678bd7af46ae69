package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.register(t, "a@x.com", "")

	t.Run("defaults", func(t *testing.T) {
		task, err := env.tasks.Create(ctx, owner, CreateTaskParams{Title: "  T1  "})
		require.NoError(t, err)
		assert.NotZero(t, task.ID)
		assert.Equal(t, "T1", task.Title)
		assert.Equal(t, owner.ID, task.OwnerID)
		assert.Equal(t, models.TaskStatusTodo, task.Status)
		assert.Equal(t, models.TaskCategoryOther, task.Category)
		assert.Nil(t, task.DueDate)
		assert.False(t, task.CreatedAt.IsZero())
		require.NotNil(t, task.Owner)
		assert.Equal(t, owner.Email, task.Owner.Email)
	})

	t.Run("explicit fields", func(t *testing.T) {
		due := env.clock.now.Add(24 * time.Hour)
		task, err := env.tasks.Create(ctx, owner, CreateTaskParams{
			Title:       "T2",
			Description: ptr("groceries"),
			Status:      ptr(models.TaskStatusInProgress),
			Category:    ptr(models.TaskCategoryShopping),
			DueDate:     &due,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, task.Status)
		assert.Equal(t, models.TaskCategoryShopping, task.Category)
		require.NotNil(t, task.DueDate)
		assert.True(t, due.Equal(*task.DueDate))
	})

	t.Run("due date in another zone is compared in UTC", func(t *testing.T) {
		zone := time.FixedZone("UTC+5", 5*60*60)
		due := env.clock.now.Add(time.Hour).In(zone)
		task, err := env.tasks.Create(ctx, owner, CreateTaskParams{Title: "zoned", DueDate: &due})
		require.NoError(t, err)
		assert.Equal(t, time.UTC, task.DueDate.Location())
	})

	t.Run("past due date is rejected and not persisted", func(t *testing.T) {
		before, err := env.tasks.ListMine(ctx, owner, PageParams{Limit: ptr(100)})
		require.NoError(t, err)

		past := env.clock.now.Add(-time.Minute)
		_, err = env.tasks.Create(ctx, owner, CreateTaskParams{Title: "late", DueDate: &past})
		assert.ErrorIs(t, err, ErrDueDateInPast)
		assert.ErrorIs(t, err, ErrValidation)

		after, err := env.tasks.ListMine(ctx, owner, PageParams{Limit: ptr(100)})
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			name   string
			params CreateTaskParams
		}{
			{name: "empty title", params: CreateTaskParams{Title: "   "}},
			{name: "unknown status", params: CreateTaskParams{Title: "x", Status: ptr(models.TaskStatus("LATER"))}},
			{name: "unknown category", params: CreateTaskParams{Title: "x", Category: ptr(models.TaskCategory("FUN"))}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.tasks.Create(ctx, owner, tt.params)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})
}

func TestTaskService_Get(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.register(t, "a@x.com", "")
	other := env.register(t, "b@x.com", "")
	admin := env.register(t, "admin@x.com", "admin")
	task := env.createTask(t, owner, "mine")

	got, err := env.tasks.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "a@x.com", got.Owner.Email)

	_, errForeign := env.tasks.Get(ctx, other, task.ID)
	_, errMissing := env.tasks.Get(ctx, other, 999)
	assert.ErrorIs(t, errForeign, ErrTaskNotFound)
	assert.ErrorIs(t, errMissing, ErrTaskNotFound)
	assert.Equal(t, errMissing.Error(), errForeign.Error())

	_, err = env.tasks.Get(ctx, admin, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.register(t, "a@x.com", "")
	other := env.register(t, "b@x.com", "")
	admin := env.register(t, "admin@x.com", "admin")
	pendingAdmin := env.register(t, "pending@x.com", "admin")

	due := env.clock.now.Add(48 * time.Hour)
	task, err := env.tasks.Create(ctx, owner, CreateTaskParams{
		Title:       "T1",
		Description: ptr("first"),
		DueDate:     &due,
	})
	require.NoError(t, err)

	t.Run("partial update leaves other fields", func(t *testing.T) {
		got, err := env.tasks.Update(ctx, owner, task.ID, TaskPatch{
			Status: models.Some(models.TaskStatusInProgress),
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, got.Status)
		assert.Equal(t, "T1", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, "first", *got.Description)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))

		reloaded, err := env.tasks.Get(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, reloaded.Status)
		assert.Equal(t, "T1", reloaded.Title)
	})

	t.Run("explicit null clears optional fields", func(t *testing.T) {
		got, err := env.tasks.Update(ctx, owner, task.ID, TaskPatch{
			Description: models.Null[string](),
			DueDate:     models.Null[time.Time](),
		})
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, "T1", got.Title)
	})

	t.Run("explicit null on a required field", func(t *testing.T) {
		_, err := env.tasks.Update(ctx, owner, task.ID, TaskPatch{Title: models.Null[string]()})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = env.tasks.Update(ctx, owner, task.ID, TaskPatch{Status: models.Null[models.TaskStatus]()})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("past due date", func(t *testing.T) {
		past := env.clock.now.Add(-time.Hour)
		_, err := env.tasks.Update(ctx, owner, task.ID, TaskPatch{
			Title:   models.Some("changed"),
			DueDate: models.Some(past),
		})
		assert.ErrorIs(t, err, ErrDueDateInPast)

		reloaded, err := env.tasks.Get(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "T1", reloaded.Title)
	})

	t.Run("active admin may update", func(t *testing.T) {
		got, err := env.tasks.Update(ctx, admin, task.ID, TaskPatch{Status: models.Some(models.TaskStatusDone)})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, got.Status)
	})

	t.Run("others are forbidden", func(t *testing.T) {
		_, err := env.tasks.Update(ctx, other, task.ID, TaskPatch{Title: models.Some("x")})
		assert.ErrorIs(t, err, ErrTaskAccessDenied)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = env.tasks.Update(ctx, pendingAdmin, task.ID, TaskPatch{Title: models.Some("x")})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := env.tasks.Update(ctx, owner, 999, TaskPatch{Title: models.Some("x")})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.register(t, "a@x.com", "")
	other := env.register(t, "b@x.com", "")
	admin := env.register(t, "admin@x.com", "admin")

	mine := env.createTask(t, owner, "mine")
	err := env.tasks.Delete(ctx, other, mine.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.tasks.Delete(ctx, owner, mine.ID))
	_, err = env.tasks.Get(ctx, owner, mine.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = env.tasks.Delete(ctx, owner, mine.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	another := env.createTask(t, owner, "another")
	require.NoError(t, env.tasks.Delete(ctx, admin, another.ID))
}

func TestTaskService_ListAll(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin@x.com", "admin")
	alice := env.register(t, "alice@x.com", "")
	bob := env.register(t, "bob@x.com", "")

	env.createTask(t, alice, "Buy milk")
	env.createTask(t, alice, "Write report")
	env.createTask(t, bob, "buy 100% juice")
	done, err := env.tasks.Create(ctx, bob, CreateTaskParams{Title: "Walk", Status: ptr(models.TaskStatusDone)})
	require.NoError(t, err)

	t.Run("all in insertion order with owners", func(t *testing.T) {
		tasks, err := env.tasks.ListAll(ctx, admin, storage.TaskFilter{}, PageParams{})
		require.NoError(t, err)
		require.Len(t, tasks, 4)
		for i := 1; i < len(tasks); i++ {
			assert.Less(t, tasks[i-1].ID, tasks[i].ID)
		}
		require.NotNil(t, tasks[0].Owner)
		assert.Equal(t, "alice@x.com", tasks[0].Owner.Email)
	})

	t.Run("search is a case-insensitive substring", func(t *testing.T) {
		tasks, err := env.tasks.ListAll(ctx, admin, storage.TaskFilter{Search: "BUY"}, PageParams{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		tasks, err := env.tasks.ListAll(ctx, admin, storage.TaskFilter{Search: "00%"}, PageParams{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "buy 100% juice", tasks[0].Title)
	})

	t.Run("status and owner filters", func(t *testing.T) {
		status := models.TaskStatusDone
		tasks, err := env.tasks.ListAll(ctx, admin, storage.TaskFilter{Status: &status}, PageParams{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, done.ID, tasks[0].ID)

		tasks, err = env.tasks.ListAll(ctx, admin, storage.TaskFilter{OwnerID: &alice.ID}, PageParams{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		tasks, err := env.tasks.ListAll(ctx, admin, storage.TaskFilter{}, PageParams{Limit: ptr(2), Skip: 1})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("invalid filters", func(t *testing.T) {
		tests := []struct {
			name   string
			filter storage.TaskFilter
			page   PageParams
		}{
			{name: "short search", filter: storage.TaskFilter{Search: "bu"}},
			{name: "limit too large", page: PageParams{Limit: ptr(MaxPageLimit + 1)}},
			{name: "zero limit", page: PageParams{Limit: ptr(0)}},
			{name: "negative limit", page: PageParams{Limit: ptr(-1)}},
			{name: "negative skip", page: PageParams{Skip: -1}},
			{name: "unknown status", filter: storage.TaskFilter{Status: ptr(models.TaskStatus("x"))}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.tasks.ListAll(ctx, admin, tt.filter, tt.page)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})

	t.Run("non admin", func(t *testing.T) {
		_, err := env.tasks.ListAll(ctx, alice, storage.TaskFilter{}, PageParams{})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestTaskService_ListMine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice@x.com", "")
	bob := env.register(t, "bob@x.com", "")
	env.createTask(t, alice, "a1")
	env.createTask(t, bob, "b1")
	env.createTask(t, alice, "a2")

	tasks, err := env.tasks.ListMine(ctx, alice, PageParams{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, alice.ID, task.OwnerID)
	}
}

func TestScenario_AdminUpdatesUserTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := env.register(t, "a@x.com", "user")
	require.Equal(t, models.UserStatusActive, a.Status)
	actor, err := env.users.Authenticate(ctx, mustLogin(t, env, "a@x.com"))
	require.NoError(t, err)

	tomorrow := env.clock.now.Add(24 * time.Hour)
	task, err := env.tasks.Create(ctx, actor, CreateTaskParams{Title: "T1", DueDate: &tomorrow})
	require.NoError(t, err)
	assert.Equal(t, a.ID, task.OwnerID)
	assert.Equal(t, models.TaskStatusTodo, task.Status)

	b := env.register(t, "b@x.com", "admin")
	require.Equal(t, models.UserStatusActive, b.Status)

	updated, err := env.tasks.Update(ctx, b, task.ID, TaskPatch{Status: models.Some(models.TaskStatusDone)})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, updated.Status)
}
