package models

type AdminStats struct {
	TotalUsers    int64
	UsersByStatus map[UserStatus]int64
	TotalTasks    int64
	TasksByStatus map[TaskStatus]int64
}
