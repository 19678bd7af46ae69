package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adanyl0v/go-taskmaster/internal/models"
)

func newUser(id int64, role string, status models.UserStatus) *models.User {
	return &models.User{
		ID:     id,
		Email:  "user@example.com",
		Role:   models.Role{ID: 1, Name: role},
		Status: status,
	}
}

func TestIsActiveAdmin(t *testing.T) {
	tests := []struct {
		name      string
		actor     *models.User
		wantAdmin bool
		wantAct   bool
	}{
		{"nil actor", nil, false, false},
		{"active user", newUser(1, models.RoleUser, models.UserStatusActive), false, false},
		{"active admin", newUser(1, models.RoleAdmin, models.UserStatusActive), true, true},
		{"pending admin", newUser(1, models.RoleAdmin, models.UserStatusPending), true, false},
		{"archived admin", newUser(1, models.RoleAdmin, models.UserStatusArchived), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAdmin, IsAdmin(tt.actor))
			assert.Equal(t, tt.wantAct, IsActiveAdmin(tt.actor))
		})
	}
}

func TestCanAccessTask(t *testing.T) {
	task := &models.Task{ID: 10, OwnerID: 1}
	owner := newUser(1, models.RoleUser, models.UserStatusActive)
	stranger := newUser(2, models.RoleUser, models.UserStatusActive)
	admin := newUser(3, models.RoleAdmin, models.UserStatusActive)
	pendingAdmin := newUser(4, models.RoleAdmin, models.UserStatusPending)

	tests := []struct {
		name   string
		actor  *models.User
		action Action
		want   bool
	}{
		{"owner reads", owner, ActionRead, true},
		{"owner updates", owner, ActionUpdate, true},
		{"owner deletes", owner, ActionDelete, true},
		{"stranger reads", stranger, ActionRead, false},
		{"stranger updates", stranger, ActionUpdate, false},
		{"stranger deletes", stranger, ActionDelete, false},
		{"admin reads", admin, ActionRead, false},
		{"admin updates", admin, ActionUpdate, true},
		{"admin deletes", admin, ActionDelete, true},
		{"pending admin updates", pendingAdmin, ActionUpdate, false},
		{"pending admin deletes", pendingAdmin, ActionDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessTask(tt.actor, task, tt.action))
		})
	}

	assert.False(t, CanAccessTask(owner, nil, ActionRead))
}

func TestRequireActiveAdmin(t *testing.T) {
	assert.NoError(t, RequireActiveAdmin(newUser(1, models.RoleAdmin, models.UserStatusActive)))
	assert.ErrorIs(t, RequireActiveAdmin(nil), ErrAdminRequired)
	assert.ErrorIs(t, RequireActiveAdmin(newUser(1, models.RoleUser, models.UserStatusActive)), ErrAdminRequired)
	assert.ErrorIs(t, RequireActiveAdmin(newUser(1, models.RoleAdmin, models.UserStatusPending)), ErrAdminNotActive)
	assert.ErrorIs(t, RequireActiveAdmin(newUser(1, models.RoleAdmin, models.UserStatusArchived)), ErrAdminNotActive)
}
