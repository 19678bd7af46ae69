package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type taskRepository struct {
	db *gorm.DB
}

func (r taskRepository) Create(ctx context.Context, task *models.Task) error {
	row := newTaskRow(task)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error
	if err != nil {
		return err
	}
	task.ID = row.ID
	task.CreatedAt = row.CreatedAt.UTC()
	return nil
}

func (r taskRepository) GetByID(ctx context.Context, id int64, _ bool) (*models.Task, error) {
	return r.getOne(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r taskRepository) GetOwned(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	return r.getOne(r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID))
}

func (r taskRepository) getOne(q *gorm.DB) (*models.Task, error) {
	var row taskRow
	err := q.Preload("Owner").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (r taskRepository) List(ctx context.Context, filter storage.TaskFilter, page storage.Page) ([]*models.Task, error) {
	q := r.db.WithContext(ctx)
	if filter.Search != "" {
		q = q.Where(lowerFunc+`(title) LIKE ? ESCAPE '\'`, storage.ContainsPattern(filter.Search))
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	return r.list(q, page)
}

func (r taskRepository) ListByOwner(ctx context.Context, ownerID int64, page storage.Page) ([]*models.Task, error) {
	return r.list(r.db.WithContext(ctx).Where("owner_id = ?", ownerID), page)
}

func (r taskRepository) list(q *gorm.DB, page storage.Page) ([]*models.Task, error) {
	var rows []taskRow
	err := q.Preload("Owner").
		Order("id").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

func (r taskRepository) Update(ctx context.Context, task *models.Task) error {
	res := r.db.WithContext(ctx).
		Model(&taskRow{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"status":      string(task.Status),
			"category":    string(task.Category),
			"due_date":    task.DueDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r taskRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&taskRow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r taskRepository) CountByStatus(ctx context.Context) (int64, map[models.TaskStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&taskRow{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}

	var total int64
	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.TaskStatus(row.Status)] = row.Count
		total += row.Count
	}
	return total, counts, nil
}
