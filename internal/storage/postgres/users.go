package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

const selectUserColumns = `
SELECT u.id,
       u.email,
       u.hashed_password,
       u.full_name,
       u.role_id,
       r.name,
       u.status
FROM users u
JOIN roles r ON r.id = u.role_id
`

type userRepository struct {
	tx pgx.Tx
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user   models.User
		status string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.RoleID,
		&user.Role.Name,
		&status,
	)
	if err != nil {
		return nil, err
	}
	user.Role.ID = user.RoleID
	user.Status = models.UserStatus(status)
	return &user, nil
}

func (r userRepository) Create(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (email,
                   hashed_password,
                   full_name,
                   role_id,
                   status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	err := r.tx.QueryRow(
		ctx,
		insertUserQuery,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.RoleID,
		string(user.Status),
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return err
	}
	return nil
}

func (r userRepository) GetByID(ctx context.Context, id int64, lock bool) (*models.User, error) {
	query := selectUserColumns + `WHERE u.id = $1`
	if lock {
		query += ` FOR UPDATE OF u`
	}
	return r.getOne(ctx, query, id)
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUserColumns+`WHERE u.email = $1`, email)
}

func (r userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(r.tx.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r userRepository) List(ctx context.Context, status *models.UserStatus) ([]*models.User, error) {
	query := selectUserColumns
	var args []any
	if status != nil {
		query += `WHERE u.status = $1 `
		args = append(args, string(*status))
	}
	query += `ORDER BY u.id`

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r userRepository) Update(ctx context.Context, user *models.User) error {
	const updateUserQuery = `
UPDATE users
SET full_name = $1,
    role_id = $2,
    status = $3
WHERE id = $4
RETURNING (SELECT name FROM roles WHERE id = $2)
`
	err := r.tx.QueryRow(
		ctx,
		updateUserQuery,
		user.FullName,
		user.RoleID,
		string(user.Status),
		user.ID,
	).Scan(&user.Role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}
	user.Role.ID = user.RoleID
	return nil
}

func (r userRepository) AdminExists(ctx context.Context) (bool, error) {
	const adminExistsQuery = `
SELECT EXISTS (SELECT 1
               FROM users u
               JOIN roles r ON r.id = u.role_id
               WHERE r.name = $1)
`
	var exists bool
	err := r.tx.QueryRow(ctx, adminExistsQuery, models.RoleAdmin).Scan(&exists)
	return exists, err
}

func (r userRepository) CountByStatus(ctx context.Context) (int64, map[models.UserStatus]int64, error) {
	const countUsersByStatusQuery = `
SELECT status,
       count(*)
FROM users
GROUP BY status
`
	rows, err := r.tx.Query(ctx, countUsersByStatusQuery)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var total int64
	counts := make(map[models.UserStatus]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		err = rows.Scan(&status, &count)
		if err != nil {
			return 0, nil, err
		}
		counts[models.UserStatus(status)] = count
		total += count
	}
	return total, counts, rows.Err()
}
