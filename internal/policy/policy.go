// Package policy decides who may act on which records. All functions are
// pure and consult only the actor's role and status and the task owner.
package policy

import (
	"errors"

	"github.com/adanyl0v/go-taskmaster/internal/models"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	ErrAdminRequired  = errors.New("you are not authorized for this action, required role: admin")
	ErrAdminNotActive = errors.New("your admin account is not active")
)

func IsAdmin(actor *models.User) bool {
	return actor != nil && actor.Role.Name == models.RoleAdmin
}

// IsActiveAdmin reports whether actor may exercise administrative privilege.
// Pending and archived admins are treated as regular users.
func IsActiveAdmin(actor *models.User) bool {
	return IsAdmin(actor) && actor.Status == models.UserStatusActive
}

// CanAccessTask grants the owner every action and an active admin update
// and delete. Nobody but the owner reads a single task.
func CanAccessTask(actor *models.User, task *models.Task, action Action) bool {
	if actor == nil || task == nil {
		return false
	}
	if actor.ID == task.OwnerID {
		return true
	}

	switch action {
	case ActionUpdate, ActionDelete:
		return IsActiveAdmin(actor)
	default:
		return false
	}
}

func RequireActiveAdmin(actor *models.User) error {
	if !IsAdmin(actor) {
		return ErrAdminRequired
	}
	if actor.Status != models.UserStatusActive {
		return ErrAdminNotActive
	}
	return nil
}
