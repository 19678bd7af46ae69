package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskmaster/internal/models"
)

func (h *handlerImpl) HandleListAllUsers(c *gin.Context) {
	users, err := h.users.ListAll(c.Request.Context(), currentUser(c))
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list users")
		return
	}

	c.JSON(http.StatusOK, newUserResponses(users))
}

func (h *handlerImpl) HandleListPendingUsers(c *gin.Context) {
	users, err := h.users.ListPending(c.Request.Context(), currentUser(c))
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list pending users")
		return
	}

	c.JSON(http.StatusOK, newUserResponses(users))
}

type processApprovalQuery struct {
	Approve *bool `form:"approve" binding:"required"`
}

func (h *handlerImpl) HandleProcessApproval(c *gin.Context) {
	userID, ok := h.paramID(c)
	if !ok {
		return
	}

	var query processApprovalQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	user, err := h.users.ProcessApproval(c.Request.Context(), currentUser(c), userID, *query.Approve)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to process approval")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *handlerImpl) HandleArchiveUser(c *gin.Context) {
	userID, ok := h.paramID(c)
	if !ok {
		return
	}

	user, err := h.users.Archive(c.Request.Context(), currentUser(c), userID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to archive user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("User %s has been successfully archived.", user.Email),
	})
}

type statsResponse struct {
	TotalUsers    int64                       `json:"total_users"`
	UsersByStatus map[models.UserStatus]int64 `json:"users_by_status"`
	TotalTasks    int64                       `json:"total_tasks"`
	TasksByStatus map[models.TaskStatus]int64 `json:"tasks_by_status"`
}

func (h *handlerImpl) HandleGetAdminStats(c *gin.Context) {
	stats, err := h.stats.AdminStats(c.Request.Context(), currentUser(c))
	if err != nil {
		h.abortWithServiceError(c, err, "failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, statsResponse{
		TotalUsers:    stats.TotalUsers,
		UsersByStatus: stats.UsersByStatus,
		TotalTasks:    stats.TotalTasks,
		TasksByStatus: stats.TasksByStatus,
	})
}
