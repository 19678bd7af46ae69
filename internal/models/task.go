package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Display returns the human-readable label of the status.
func (s TaskStatus) Display() string {
	switch s {
	case TaskStatusTodo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}

type TaskCategory string

const (
	TaskCategoryWork     TaskCategory = "WORK"
	TaskCategoryPersonal TaskCategory = "PERSONAL"
	TaskCategoryShopping TaskCategory = "SHOPPING"
	TaskCategoryHealth   TaskCategory = "HEALTH"
	TaskCategoryOther    TaskCategory = "OTHER"
)

func (c TaskCategory) Valid() bool {
	switch c {
	case TaskCategoryWork, TaskCategoryPersonal, TaskCategoryShopping,
		TaskCategoryHealth, TaskCategoryOther:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	Category    TaskCategory
	DueDate     *time.Time
	CreatedAt   time.Time
	OwnerID     int64
	// Owner is loaded together with the task by every read.
	Owner *UserSummary
}
