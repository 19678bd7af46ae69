package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/services"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type ownerResponse struct {
	FullName *string `json:"full_name"`
	Email    string  `json:"email"`
}

type taskResponse struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Status        string         `json:"status"`
	StatusDisplay string         `json:"status_display"`
	Category      string         `json:"category"`
	DueDate       *time.Time     `json:"due_date"`
	CreatedAt     time.Time      `json:"created_at"`
	OwnerID       int64          `json:"owner_id"`
	Owner         *ownerResponse `json:"owner,omitempty"`
}

func newTaskResponse(task *models.Task) taskResponse {
	response := taskResponse{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        string(task.Status),
		StatusDisplay: task.Status.Display(),
		Category:      string(task.Category),
		DueDate:       task.DueDate,
		CreatedAt:     task.CreatedAt,
		OwnerID:       task.OwnerID,
	}
	if task.Owner != nil {
		response.Owner = &ownerResponse{
			FullName: task.Owner.FullName,
			Email:    task.Owner.Email,
		}
	}
	return response
}

func newTaskResponses(tasks []*models.Task) []taskResponse {
	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}
	return response
}

type pageQuery struct {
	Limit *int `form:"limit"`
	Skip  int  `form:"skip"`
}

func (q pageQuery) page() services.PageParams {
	return services.PageParams{Limit: q.Limit, Skip: q.Skip}
}

type listTasksQuery struct {
	pageQuery
	Search string  `form:"search"`
	Status *string `form:"status"`
	UserID *int64  `form:"user_id"`
}

func (h *handlerImpl) HandleListAllTasks(c *gin.Context) {
	var query listTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	filter := storage.TaskFilter{
		Search:  query.Search,
		OwnerID: query.UserID,
	}
	if query.Status != nil {
		status := models.TaskStatus(*query.Status)
		filter.Status = &status
	}

	tasks, err := h.tasks.ListAll(c.Request.Context(), currentUser(c), filter, query.page())
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (h *handlerImpl) HandleListMyTasks(c *gin.Context) {
	var query pageQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	tasks, err := h.tasks.ListMine(c.Request.Context(), currentUser(c), query.page())
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list own tasks")
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), currentUser(c), taskID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to get task")
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

type createTaskRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Category    *models.TaskCategory `json:"category"`
	DueDate     *timestamp           `json:"due_date"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), currentUser(c), services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		DueDate:     req.DueDate.timePtr(),
	})
	if err != nil {
		h.abortWithServiceError(c, err, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

// updateTaskRequest tells an absent field from an explicit null.
type updateTaskRequest struct {
	Title       models.Optional[string]              `json:"title"`
	Description models.Optional[string]              `json:"description"`
	Status      models.Optional[models.TaskStatus]   `json:"status"`
	Category    models.Optional[models.TaskCategory] `json:"category"`
	DueDate     models.Optional[timestamp]           `json:"due_date"`
}

func (r updateTaskRequest) patch() services.TaskPatch {
	patch := services.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Category:    r.Category,
	}
	if r.DueDate.Set {
		patch.DueDate = models.Optional[time.Time]{Set: true, Value: r.DueDate.Value.timePtr()}
	}
	return patch
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), currentUser(c), taskID, req.patch())
	if err != nil {
		h.abortWithServiceError(c, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	err := h.tasks.Delete(c.Request.Context(), currentUser(c), taskID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to delete task")
		return
	}

	c.Status(http.StatusNoContent)
}

// paramID parses the id path parameter and aborts the request when it is
// not a positive integer.
func (h *handlerImpl) paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.logger.Debug().
			Str("id", c.Param("id")).
			Msg("invalid id")
		abort(c, newBadRequestError(errInvalidID.Error()))
		return 0, false
	}
	return id, true
}
