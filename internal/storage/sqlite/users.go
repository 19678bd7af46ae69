package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type userRepository struct {
	db *gorm.DB
}

func (r userRepository) Create(ctx context.Context, user *models.User) error {
	row := newUserRow(user)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return storage.ErrConflict
		}
		return err
	}
	user.ID = row.ID
	return nil
}

// GetByID ignores lock: SQLite serializes writers on its own.
func (r userRepository) GetByID(ctx context.Context, id int64, _ bool) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where(query, arg).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (r userRepository) List(ctx context.Context, status *models.UserStatus) ([]*models.User, error) {
	q := r.db.WithContext(ctx).Preload("Role").Order("id")
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var rows []userRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

func (r userRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&userRow{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"full_name": user.FullName,
			"role_id":   user.RoleID,
			"status":    string(user.Status),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}

	var role roleRow
	if err := r.db.WithContext(ctx).First(&role, user.RoleID).Error; err != nil {
		return err
	}
	user.Role = role.toModel()
	return nil
}

func (r userRepository) AdminExists(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userRow{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", models.RoleAdmin).
		Count(&count).Error
	return count > 0, err
}

func (r userRepository) CountByStatus(ctx context.Context) (int64, map[models.UserStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&userRow{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}

	var total int64
	counts := make(map[models.UserStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.UserStatus(row.Status)] = row.Count
		total += row.Count
	}
	return total, counts, nil
}
