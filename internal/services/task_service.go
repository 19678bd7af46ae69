package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/policy"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
	now    func() time.Time
}

// NewTaskService builds a TaskService. A nil now defaults to time.Now.
func NewTaskService(
	logger zerolog.Logger,
	store storage.Store,
	now func() time.Time,
) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskServiceImpl{
		logger: logger,
		store:  store,
		now:    now,
	}
}

func (s *taskServiceImpl) ListAll(
	ctx context.Context,
	actor *models.User,
	filter storage.TaskFilter,
	params PageParams,
) ([]*models.Task, error) {
	err := policy.RequireActiveAdmin(actor)
	if err != nil {
		return nil, forbidden(err)
	}

	filter.Search = strings.TrimSpace(filter.Search)
	err = validateSearch(filter.Search)
	if err != nil {
		return nil, err
	}
	if filter.Status != nil {
		err = validateTaskStatus(*filter.Status)
		if err != nil {
			return nil, err
		}
	}
	page, err := normalizePage(params)
	if err != nil {
		return nil, err
	}

	var tasks []*models.Task
	err = s.store.WithinTx(ctx, storage.TxOptions{ReadOnly: true}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		tasks, err = tx.Tasks().List(ctx, filter, page)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to select tasks")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Int("limit", page.Limit).
		Int("skip", page.Skip).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) ListMine(ctx context.Context, actor *models.User, params PageParams) ([]*models.Task, error) {
	page, err := normalizePage(params)
	if err != nil {
		return nil, err
	}

	var tasks []*models.Task
	err = s.store.WithinTx(ctx, storage.TxOptions{ReadOnly: true}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		tasks, err = tx.Tasks().ListByOwner(ctx, actor.ID, page)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("user_id", actor.ID).
				Msg("failed to select tasks by owner")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Debug().
		Int64("user_id", actor.ID).
		Int("count", len(tasks)).
		Msg("selected tasks by owner")
	return tasks, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, actor *models.User, id int64) (*models.Task, error) {
	var task *models.Task
	err := s.store.WithinTx(ctx, storage.TxOptions{ReadOnly: true}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		task, err = tx.Tasks().GetOwned(ctx, id, actor.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrTaskNotFound
			}
			s.logger.Error().
				Err(err).
				Int64("task_id", id).
				Msg("failed to select task by id")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	return task, nil
}

func (s *taskServiceImpl) Create(ctx context.Context, actor *models.User, params CreateTaskParams) (*models.Task, error) {
	task := &models.Task{
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Status:      models.TaskStatusTodo,
		Category:    models.TaskCategoryOther,
		OwnerID:     actor.ID,
	}

	err := validateTitle(task.Title)
	if err != nil {
		return nil, err
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	err = validateTaskStatus(task.Status)
	if err != nil {
		return nil, err
	}
	if params.Category != nil {
		task.Category = *params.Category
	}
	err = validateTaskCategory(task.Category)
	if err != nil {
		return nil, err
	}
	task.DueDate, err = validateDueDate(params.DueDate, s.now())
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		err := tx.Tasks().Create(ctx, task)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("user_id", actor.ID).
				Msg("failed to insert task")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	summary := actor.Summary()
	task.Owner = &summary

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", actor.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, actor *models.User, id int64, patch TaskPatch) (*models.Task, error) {
	var task *models.Task
	err := s.store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		task, err = s.lockTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if !policy.CanAccessTask(actor, task, policy.ActionUpdate) {
			return ErrTaskAccessDenied
		}

		err = s.applyPatch(task, patch)
		if err != nil {
			return err
		}

		err = tx.Tasks().Update(ctx, task)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("task_id", id).
				Msg("failed to update task")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", actor.ID).
		Msg("updated task")
	return task, nil
}

// applyPatch copies the present fields of patch onto task. Description
// and due date may be cleared with an explicit null, the other fields
// may not.
func (s *taskServiceImpl) applyPatch(task *models.Task, patch TaskPatch) error {
	if patch.Title.Set {
		if patch.Title.IsNull() {
			return validationError(errors.New("title: cannot be null"))
		}
		title := strings.TrimSpace(*patch.Title.Value)
		err := validateTitle(title)
		if err != nil {
			return err
		}
		task.Title = title
	}
	if patch.Description.Set {
		task.Description = patch.Description.Value
	}
	if patch.Status.Set {
		if patch.Status.IsNull() {
			return validationError(errors.New("status: cannot be null"))
		}
		err := validateTaskStatus(*patch.Status.Value)
		if err != nil {
			return err
		}
		task.Status = *patch.Status.Value
	}
	if patch.Category.Set {
		if patch.Category.IsNull() {
			return validationError(errors.New("category: cannot be null"))
		}
		err := validateTaskCategory(*patch.Category.Value)
		if err != nil {
			return err
		}
		task.Category = *patch.Category.Value
	}
	if patch.DueDate.Set {
		dueDate, err := validateDueDate(patch.DueDate.Value, s.now())
		if err != nil {
			return err
		}
		task.DueDate = dueDate
	}
	return nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, actor *models.User, id int64) error {
	err := s.store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		task, err := s.lockTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if !policy.CanAccessTask(actor, task, policy.ActionDelete) {
			return ErrTaskAccessDenied
		}

		err = tx.Tasks().Delete(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrTaskNotFound
			}
			s.logger.Error().
				Err(err).
				Int64("task_id", id).
				Msg("failed to delete task")
			return err
		}
		return nil
	})
	if err != nil {
		return storageError(err)
	}

	s.logger.Info().
		Int64("task_id", id).
		Int64("user_id", actor.ID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) lockTask(ctx context.Context, tx storage.Tx, id int64) (*models.Task, error) {
	task, err := tx.Tasks().GetByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}
