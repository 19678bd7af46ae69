package services

import "github.com/adanyl0v/go-taskmaster/internal/models"

// userLifecycle lists the allowed user status transitions. ARCHIVED is
// terminal and nothing re-enters PENDING.
var userLifecycle = map[models.UserStatus][]models.UserStatus{
	models.UserStatusPending: {models.UserStatusActive, models.UserStatusArchived},
	models.UserStatusActive:  {models.UserStatusArchived},
}

// canTransition reports whether a user may move from one status to
// another. Staying in the same status is always allowed.
func canTransition(from, to models.UserStatus) bool {
	if from == to {
		return true
	}
	for _, next := range userLifecycle[from] {
		if next == to {
			return true
		}
	}
	return false
}
