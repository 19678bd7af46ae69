package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type roleRepository struct {
	tx pgx.Tx
}

func (r roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	const selectRoleByNameQuery = `
SELECT id,
       name
FROM roles
WHERE lower(name) = lower($1)
ORDER BY id
LIMIT 1
`
	var role models.Role
	err := r.tx.QueryRow(ctx, selectRoleByNameQuery, name).Scan(
		&role.ID,
		&role.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r roleRepository) EnsureExists(ctx context.Context, name string) (bool, error) {
	const insertRoleQuery = `
INSERT INTO roles (name)
VALUES ($1)
ON CONFLICT (name) DO NOTHING
`
	tag, err := r.tx.Exec(ctx, insertRoleQuery, name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
