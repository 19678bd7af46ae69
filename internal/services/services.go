package services

import (
	"context"
	"time"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type UserService interface {
	// Register creates a user with the requested role, "user" by default.
	//
	// Users with the "user" role start ACTIVE. The first admin starts
	// ACTIVE too, every later admin starts PENDING until approved.
	//
	// It returns ErrEmailTaken if the email is already registered and
	// ErrRoleNotFound if the requested role doesn't exist.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login verifies the email and password and issues an access token.
	//
	// It returns ErrWrongCredentials for an unknown email or a wrong
	// password alike, ErrAccountArchived or ErrAccountPending if the
	// account is not active.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Authenticate resolves an access token to its user. Every failure
	// is reported as ErrInvalidToken.
	Authenticate(ctx context.Context, token string) (*models.User, error)

	ListAll(ctx context.Context, actor *models.User) ([]*models.User, error)
	ListPending(ctx context.Context, actor *models.User) ([]*models.User, error)

	// ProcessApproval activates a pending user. A rejected user is
	// activated as well but loses any role other than "user".
	//
	// It returns ErrUserNotFound, ErrUserAlreadyActive or ErrUserArchived.
	ProcessApproval(ctx context.Context, actor *models.User, targetID int64, approve bool) (*models.User, error)

	// Archive deactivates the target user. Archiving an archived user
	// succeeds without changes.
	//
	// It returns ErrSelfArchive if the actor targets themselves and
	// ErrUserNotFound if the target doesn't exist.
	Archive(ctx context.Context, actor *models.User, targetID int64) (*models.User, error)
}

// PageParams is a requested page of a listing. A nil Limit selects
// DefaultPageLimit.
type PageParams struct {
	Limit *int
	Skip  int
}

type TaskService interface {
	// ListAll returns every task matching filter. Only active admins may
	// call it.
	ListAll(ctx context.Context, actor *models.User, filter storage.TaskFilter, page PageParams) ([]*models.Task, error)
	ListMine(ctx context.Context, actor *models.User, page PageParams) ([]*models.Task, error)

	// Get returns ErrTaskNotFound both for a missing task and for a task
	// owned by someone else.
	Get(ctx context.Context, actor *models.User, id int64) (*models.Task, error)
	Create(ctx context.Context, actor *models.User, params CreateTaskParams) (*models.Task, error)

	// Update applies the fields set in patch. Owners and active admins
	// may update a task.
	Update(ctx context.Context, actor *models.User, id int64, patch TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

type StatsService interface {
	AdminStats(ctx context.Context, actor *models.User) (*models.AdminStats, error)

	// Snapshot computes the same figures as AdminStats without checking
	// any actor. It backs operator tooling only.
	Snapshot(ctx context.Context) (*models.AdminStats, error)
}

type RegisterParams struct {
	Email    string
	Password string
	FullName *string
	// Role is matched case-insensitively. Empty means "user".
	Role string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type CreateTaskParams struct {
	Title       string
	Description *string
	Status      *models.TaskStatus
	Category    *models.TaskCategory
	DueDate     *time.Time
}

type TaskPatch struct {
	Title       models.Optional[string]
	Description models.Optional[string]
	Status      models.Optional[models.TaskStatus]
	Category    models.Optional[models.TaskCategory]
	DueDate     models.Optional[time.Time]
}

const TokenTypeBearer = "bearer"
