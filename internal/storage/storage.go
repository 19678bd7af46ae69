// Package storage declares the persistence contract used by the services.
// Every repository call happens inside a transaction obtained from Store.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-taskmaster/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
)

type TxOptions struct {
	// ReadOnly with Snapshot gives all reads in the transaction one
	// consistent view of the data.
	ReadOnly bool
	Snapshot bool
}

type Store interface {
	// WithinTx runs fn in a transaction. The transaction is committed when
	// fn returns nil and rolled back otherwise, including on panic and
	// context cancellation.
	WithinTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

type Tx interface {
	Roles() RoleRepository
	Users() UserRepository
	Tasks() TaskRepository
}

type RoleRepository interface {
	// GetByName matches the name case-insensitively.
	GetByName(ctx context.Context, name string) (*models.Role, error)
	EnsureExists(ctx context.Context, name string) (created bool, err error)
}

type UserRepository interface {
	// Create inserts the user and fills in its ID. It returns ErrConflict
	// if the email is taken.
	Create(ctx context.Context, user *models.User) error
	// GetByID loads the user with its role. With lock set the row stays
	// locked until the transaction ends.
	GetByID(ctx context.Context, id int64, lock bool) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns users in id order, optionally filtered by status.
	List(ctx context.Context, status *models.UserStatus) ([]*models.User, error)
	// Update persists role and status changes and reloads the role.
	Update(ctx context.Context, user *models.User) error
	AdminExists(ctx context.Context) (bool, error)
	CountByStatus(ctx context.Context) (int64, map[models.UserStatus]int64, error)
}

type TaskFilter struct {
	// Search matches titles case-insensitively as a substring.
	Search  string
	Status  *models.TaskStatus
	OwnerID *int64
}

type Page struct {
	Limit int
	Skip  int
}

type TaskRepository interface {
	// Create inserts the task and fills in its ID and CreatedAt.
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64, lock bool) (*models.Task, error)
	GetOwned(ctx context.Context, id, ownerID int64) (*models.Task, error)
	// List returns tasks in id order with their owner summary.
	List(ctx context.Context, filter TaskFilter, page Page) ([]*models.Task, error)
	ListByOwner(ctx context.Context, ownerID int64, page Page) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (int64, map[models.TaskStatus]int64, error)
}
