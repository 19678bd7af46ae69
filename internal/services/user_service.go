package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/credentials"
	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/policy"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

type TokenIssuer interface {
	IssueToken(subject, role string, ttl time.Duration) (credentials.Token, error)
	VerifyToken(token string) (subject string, ok bool)
}

type userServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
	hasher PasswordHasher
	issuer TokenIssuer

	// dummyHash stands in for the stored hash when the email is unknown.
	dummyHash string
}

const dummyPassword = "taskmaster-dummy-password"

func NewUserService(
	logger zerolog.Logger,
	store storage.Store,
	hasher PasswordHasher,
	issuer TokenIssuer,
) UserService {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to hash dummy password")
	}

	return &userServiceImpl{
		logger:    logger,
		store:     store,
		hasher:    hasher,
		issuer:    issuer,
		dummyHash: dummyHash,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	params.Email = normalizeEmail(params.Email)
	err := validateRegisterParams(params)
	if err != nil {
		return nil, err
	}

	roleName := strings.TrimSpace(params.Role)
	if roleName == "" {
		roleName = models.RoleUser
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	user := &models.User{
		Email:        params.Email,
		PasswordHash: passwordHash,
		FullName:     params.FullName,
	}
	err = s.store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Users().GetByEmail(ctx, user.Email)
		if err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("email", user.Email).
				Msg("failed to select user by email")
			return err
		}

		role, err := tx.Roles().GetByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Error().
					Str("role", roleName).
					Msg("role is not seeded")
				return ErrRoleNotFound
			}
			s.logger.Error().
				Err(err).
				Str("role", roleName).
				Msg("failed to select role by name")
			return err
		}
		user.RoleID = role.ID
		user.Role = *role

		user.Status = models.UserStatusActive
		if role.Name == models.RoleAdmin {
			exists, err := tx.Users().AdminExists(ctx)
			if err != nil {
				s.logger.Error().
					Err(err).
					Msg("failed to check for an existing admin")
				return err
			}
			if exists {
				user.Status = models.UserStatusPending
			}
		}

		err = tx.Users().Create(ctx, user)
		if err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return ErrEmailTaken
			}
			s.logger.Error().
				Err(err).
				Str("email", user.Email).
				Msg("failed to insert user")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("role", user.Role.Name).
		Str("status", string(user.Status)).
		Msg("registered user")
	return user, nil
}

func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	var user *models.User
	err := s.store.WithinTx(ctx, storage.TxOptions{ReadOnly: true}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Debug().
					Str("email", email).
					Msg("user not found")
				return ErrWrongCredentials
			}
			s.logger.Error().
				Err(err).
				Str("email", email).
				Msg("failed to select user by email")
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWrongCredentials) && s.dummyHash != "" {
			_, _ = s.hasher.Verify(password, s.dummyHash)
		}
		return nil, storageError(err)
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", user.ID).
			Msg("failed to compare password")
		return nil, ErrWrongCredentials
	} else if !match {
		s.logger.Debug().
			Int64("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrWrongCredentials
	}

	switch user.Status {
	case models.UserStatusArchived:
		return nil, ErrAccountArchived
	case models.UserStatusPending:
		return nil, ErrAccountPending
	}

	token, err := s.issuer.IssueToken(user.Email, user.Role.Name, 0)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", user.ID).
			Msg("failed to issue access token")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("logged in")
	return &LoginResult{
		AccessToken: token.Value,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	email, ok := s.issuer.VerifyToken(token)
	if !ok {
		return nil, ErrInvalidToken
	}

	var user *models.User
	err := s.store.WithinTx(ctx, storage.TxOptions{ReadOnly: true}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Debug().
					Str("email", email).
					Msg("token subject not found")
				return ErrInvalidToken
			}
			s.logger.Error().
				Err(err).
				Str("email", email).
				Msg("failed to select user by email")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	return user, nil
}

func (s *userServiceImpl) ListAll(ctx context.Context, actor *models.User) ([]*models.User, error) {
	return s.list(ctx, actor, nil)
}

func (s *userServiceImpl) ListPending(ctx context.Context, actor *models.User) ([]*models.User, error) {
	status := models.UserStatusPending
	return s.list(ctx, actor, &status)
}

func (s *userServiceImpl) list(ctx context.Context, actor *models.User, status *models.UserStatus) ([]*models.User, error) {
	err := policy.RequireActiveAdmin(actor)
	if err != nil {
		return nil, forbidden(err)
	}

	var users []*models.User
	err = s.store.WithinTx(ctx, storage.TxOptions{ReadOnly: true}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		users, err = tx.Users().List(ctx, status)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to select users")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Debug().
		Int("count", len(users)).
		Msg("selected users")
	return users, nil
}

func (s *userServiceImpl) ProcessApproval(
	ctx context.Context,
	actor *models.User,
	targetID int64,
	approve bool,
) (*models.User, error) {
	err := policy.RequireActiveAdmin(actor)
	if err != nil {
		return nil, forbidden(err)
	}

	var user *models.User
	err = s.store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = s.lockUser(ctx, tx, targetID)
		if err != nil {
			return err
		}

		if user.Status == models.UserStatusActive {
			return ErrUserAlreadyActive
		}
		if !canTransition(user.Status, models.UserStatusActive) {
			return ErrUserArchived
		}

		if !approve && user.Role.Name != models.RoleUser {
			role, err := tx.Roles().GetByName(ctx, models.RoleUser)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					s.logger.Error().
						Str("role", models.RoleUser).
						Msg("role is not seeded")
					return ErrRoleNotFound
				}
				s.logger.Error().
					Err(err).
					Msg("failed to select role by name")
				return err
			}
			user.RoleID = role.ID
			user.Role = *role
		}
		user.Status = models.UserStatusActive

		err = tx.Users().Update(ctx, user)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("user_id", user.ID).
				Msg("failed to update user")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Int64("admin_id", actor.ID).
		Bool("approved", approve).
		Str("role", user.Role.Name).
		Msg("processed approval")
	return user, nil
}

func (s *userServiceImpl) Archive(ctx context.Context, actor *models.User, targetID int64) (*models.User, error) {
	err := policy.RequireActiveAdmin(actor)
	if err != nil {
		return nil, forbidden(err)
	}
	if targetID == actor.ID {
		return nil, ErrSelfArchive
	}

	var user *models.User
	err = s.store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = s.lockUser(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if user.Status == models.UserStatusArchived {
			return nil
		}
		if !canTransition(user.Status, models.UserStatusArchived) {
			return ErrUserArchived
		}

		user.Status = models.UserStatusArchived
		err = tx.Users().Update(ctx, user)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("user_id", user.ID).
				Msg("failed to update user")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Int64("admin_id", actor.ID).
		Msg("archived user")
	return user, nil
}

func (s *userServiceImpl) lockUser(ctx context.Context, tx storage.Tx, id int64) (*models.User, error) {
	user, err := tx.Users().GetByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Int64("user_id", id).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}
