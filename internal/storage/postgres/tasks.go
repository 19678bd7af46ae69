package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

const selectTaskColumns = `
SELECT t.id,
       t.title,
       t.description,
       t.status,
       t.category,
       t.due_date,
       t.created_at,
       t.owner_id,
       u.full_name,
       u.email
FROM tasks t
JOIN users u ON u.id = t.owner_id
`

type taskRepository struct {
	tx pgx.Tx
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task     models.Task
		owner    models.UserSummary
		status   string
		category string
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&category,
		&task.DueDate,
		&task.CreatedAt,
		&task.OwnerID,
		&owner.FullName,
		&owner.Email,
	)
	if err != nil {
		return nil, err
	}
	task.Status = models.TaskStatus(status)
	task.Category = models.TaskCategory(category)
	task.CreatedAt = task.CreatedAt.UTC()
	if task.DueDate != nil {
		dueDate := task.DueDate.UTC()
		task.DueDate = &dueDate
	}
	task.Owner = &owner
	return &task, nil
}

func (r taskRepository) Create(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   status,
                   category,
                   due_date,
                   owner_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`
	var createdAt time.Time
	err := r.tx.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Category),
		task.DueDate,
		task.OwnerID,
	).Scan(
		&task.ID,
		&createdAt,
	)
	if err != nil {
		return err
	}
	task.CreatedAt = createdAt.UTC()
	return nil
}

func (r taskRepository) GetByID(ctx context.Context, id int64, lock bool) (*models.Task, error) {
	query := selectTaskColumns + `WHERE t.id = $1`
	if lock {
		query += ` FOR UPDATE OF t`
	}
	return r.getOne(ctx, query, id)
}

func (r taskRepository) GetOwned(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	return r.getOne(ctx, selectTaskColumns+`WHERE t.id = $1 AND t.owner_id = $2`, id, ownerID)
}

func (r taskRepository) getOne(ctx context.Context, query string, args ...any) (*models.Task, error) {
	task, err := scanTask(r.tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r taskRepository) List(ctx context.Context, filter storage.TaskFilter, page storage.Page) ([]*models.Task, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Search != "" {
		args = append(args, storage.ContainsPattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf(`lower(t.title) LIKE $%d ESCAPE '\'`, len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf(`t.status = $%d`, len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf(`t.owner_id = $%d`, len(args)))
	}

	query := selectTaskColumns
	if len(conditions) > 0 {
		query += `WHERE ` + strings.Join(conditions, ` AND `) + "\n"
	}
	return r.list(ctx, query, page, args)
}

func (r taskRepository) ListByOwner(ctx context.Context, ownerID int64, page storage.Page) ([]*models.Task, error) {
	return r.list(ctx, selectTaskColumns+"WHERE t.owner_id = $1\n", page, []any{ownerID})
}

func (r taskRepository) list(ctx context.Context, query string, page storage.Page, args []any) ([]*models.Task, error) {
	args = append(args, page.Limit, page.Skip)
	query += fmt.Sprintf(`ORDER BY t.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, page.Limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r taskRepository) Update(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    status = $3,
    category = $4,
    due_date = $5
WHERE id = $6
`
	tag, err := r.tx.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Category),
		task.DueDate,
		task.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r taskRepository) Delete(ctx context.Context, id int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := r.tx.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r taskRepository) CountByStatus(ctx context.Context) (int64, map[models.TaskStatus]int64, error) {
	const countTasksByStatusQuery = `
SELECT status,
       count(*)
FROM tasks
GROUP BY status
`
	rows, err := r.tx.Query(ctx, countTasksByStatusQuery)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var total int64
	counts := make(map[models.TaskStatus]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		err = rows.Scan(&status, &count)
		if err != nil {
			return 0, nil, err
		}
		counts[models.TaskStatus(status)] = count
		total += count
	}
	return total, counts, rows.Err()
}
