package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/services"
)

type Handler interface {
	HandleWelcome(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleListAllTasks(c *gin.Context)
	HandleListMyTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleListAllUsers(c *gin.Context)
	HandleListPendingUsers(c *gin.Context)
	HandleProcessApproval(c *gin.Context)
	HandleArchiveUser(c *gin.Context)
	HandleGetAdminStats(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	users  services.UserService
	tasks  services.TaskService
	stats  services.StatsService
}

func New(
	logger zerolog.Logger,
	userService services.UserService,
	taskService services.TaskService,
	statsService services.StatsService,
) Handler {
	return &handlerImpl{
		logger: logger,
		users:  userService,
		tasks:  taskService,
		stats:  statsService,
	}
}

// RegisterRoutes mounts every endpoint of h on router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/", h.HandleWelcome)
	router.POST("/register", h.HandleRegister)
	router.POST("/login", h.HandleLogin)

	authorized := router.Group("", h.HandleAuthMiddleware)
	authorized.GET("/tasks", h.HandleListAllTasks)
	authorized.GET("/my-tasks", h.HandleListMyTasks)
	authorized.POST("/tasks", h.HandleCreateTask)
	authorized.GET("/tasks/:id", h.HandleGetTask)
	authorized.PATCH("/tasks/:id", h.HandleUpdateTask)
	authorized.DELETE("/tasks/:id", h.HandleDeleteTask)

	authorized.GET("/admin/users", h.HandleListAllUsers)
	authorized.DELETE("/admin/users/:id", h.HandleArchiveUser)
	authorized.GET("/admin/stats", h.HandleGetAdminStats)
	authorized.GET("/pending-users", h.HandleListPendingUsers)
	authorized.PATCH("/users/:id/process-approval", h.HandleProcessApproval)
}

func (h *handlerImpl) HandleWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Task Manager API"})
}
