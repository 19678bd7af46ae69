package sqlite

import (
	"time"

	"github.com/adanyl0v/go-taskmaster/internal/models"
)

type roleRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (roleRow) TableName() string {
	return "roles"
}

func (r roleRow) toModel() models.Role {
	return models.Role{ID: r.ID, Name: r.Name}
}

type userRow struct {
	ID             int64   `gorm:"primaryKey"`
	Email          string  `gorm:"uniqueIndex;not null"`
	HashedPassword string  `gorm:"not null"`
	FullName       *string
	RoleID         int64   `gorm:"not null;index"`
	Role           roleRow `gorm:"foreignKey:RoleID"`
	Status         string  `gorm:"not null;index"`
}

func (userRow) TableName() string {
	return "users"
}

func newUserRow(user *models.User) userRow {
	return userRow{
		ID:             user.ID,
		Email:          user.Email,
		HashedPassword: user.PasswordHash,
		FullName:       user.FullName,
		RoleID:         user.RoleID,
		Status:         string(user.Status),
	}
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.HashedPassword,
		FullName:     r.FullName,
		RoleID:       r.RoleID,
		Role:         r.Role.toModel(),
		Status:       models.UserStatus(r.Status),
	}
}

type taskRow struct {
	ID          int64  `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description *string
	Status      string `gorm:"not null;index"`
	Category    string `gorm:"not null"`
	DueDate     *time.Time
	CreatedAt   time.Time
	OwnerID     int64   `gorm:"not null;index"`
	Owner       userRow `gorm:"foreignKey:OwnerID"`
}

func (taskRow) TableName() string {
	return "tasks"
}

func newTaskRow(task *models.Task) taskRow {
	return taskRow{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Category:    string(task.Category),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		OwnerID:     task.OwnerID,
	}
}

func (r taskRow) toModel() *models.Task {
	task := &models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Category:    models.TaskCategory(r.Category),
		CreatedAt:   r.CreatedAt.UTC(),
		OwnerID:     r.OwnerID,
		Owner: &models.UserSummary{
			FullName: r.Owner.FullName,
			Email:    r.Owner.Email,
		},
	}
	if r.DueDate != nil {
		dueDate := r.DueDate.UTC()
		task.DueDate = &dueDate
	}
	return task
}

type statusCount struct {
	Status string
	Count  int64
}
