package sqlite

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type roleRepository struct {
	db *gorm.DB
}

func (r roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var row roleRow
	err := r.db.WithContext(ctx).
		Where(lowerFunc+"(name) = ?", strings.ToLower(name)).
		Order("id").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	role := row.toModel()
	return &role, nil
}

func (r roleRepository) EnsureExists(ctx context.Context, name string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&roleRow{Name: name})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
