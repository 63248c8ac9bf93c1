package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classpulse/engagement-service/internal/services"
	"github.com/classpulse/engagement-service/internal/utils"
	"github.com/classpulse/engagement-service/internal/validator"
)

// SuccessResponse is the envelope for successful responses.
type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failed responses.
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c).Info(msg, args...)
}

func (h *BaseHandler) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Status: "success", Data: data})
}

func (h *BaseHandler) created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Status: "success", Data: data})
}

// parseIDParam parses a numeric path parameter. Writes the 400 itself and
// returns 0 when the parameter is malformed.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// currentUserID reads the authenticated user set by the auth middleware.
func (h *BaseHandler) currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Status:  "error",
			Message: "User not authenticated",
		})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Status:  "error",
			Message: "User not authenticated",
		})
		return 0, false
	}
	return id, true
}

// handleServiceError maps service error kinds onto HTTP statuses:
// validation -> 400, permission -> 403, not found -> 404, conflict -> 409,
// anything else -> 500 without leaking internals.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrOptionNotFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
	case services.IsValidationError(err):
		details := interface{}(nil)
		if ve, ok := err.(validator.ValidationErrors); ok {
			details = ve
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Validation failed",
			Details: details,
		})
	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Status:  "error",
			Message: "Permission denied",
		})
	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
	case services.IsConflictError(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
	default:
		utils.GetLogger(c).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: "Internal server error",
		})
	}
}
