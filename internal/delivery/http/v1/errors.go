package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskmaster/internal/services"
)

var (
	errInvalidRequestBody  = errors.New("invalid request body")
	errInvalidQuery        = errors.New("invalid query parameters")
	errInvalidID           = errors.New("invalid id")
	errAuthorizationHeader = errors.New("not authenticated")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	if err.Code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

// kindStatuses maps every service error kind to its response status.
var kindStatuses = []struct {
	kind   error
	status int
}{
	{services.ErrUnauthenticated, http.StatusUnauthorized},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrConflict, http.StatusConflict},
	{services.ErrInvalidState, http.StatusConflict},
	{services.ErrInvalidOperation, http.StatusBadRequest},
	{services.ErrInternalInconsistency, http.StatusInternalServerError},
	{services.ErrValidation, http.StatusUnprocessableEntity},
	{services.ErrUnavailable, http.StatusServiceUnavailable},
}

// newServiceError converts a service error to its response. Only the
// public message of a categorized error reaches the client.
func newServiceError(err error) apiError {
	for _, ks := range kindStatuses {
		if !errors.Is(err, ks.kind) {
			continue
		}
		if ks.status >= http.StatusInternalServerError {
			return newStatusTextError(ks.status)
		}
		if msg, ok := services.PublicMessage(err); ok {
			return newAPIError(ks.status, msg)
		}
		return newStatusTextError(ks.status)
	}
	return newStatusTextError(http.StatusInternalServerError)
}

// abortWithServiceError logs err and aborts with its mapped response.
// Client errors are logged at warn level, everything else at error level.
func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error, msg string) {
	apiErr := newServiceError(err)
	event := h.logger.Warn()
	if apiErr.Code >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).
		Str("request_id", c.GetString(requestIDCtxKey)).
		Int("status", apiErr.Code).
		Msg(msg)
	abort(c, apiErr)
}
