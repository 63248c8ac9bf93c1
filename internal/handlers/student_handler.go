package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classpulse/engagement-service/internal/services"
	"github.com/classpulse/engagement-service/internal/utils"
)

// StudentHandler serves the student-facing surface: joining classes, live
// polls and quizzes of joined classes, voting, submitting, and own results.
type StudentHandler struct {
	BaseHandler
	classService services.ClassService
	pollService  services.PollService
	quizService  services.QuizService
}

func NewStudentHandler(sm services.ServiceManager, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: sm.Class(),
		pollService:  sm.Poll(),
		quizService:  sm.Quiz(),
	}
}

// ===== CLASSES =====

func (h *StudentHandler) JoinClass(c *gin.Context) {
	studentID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.JoinClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	class, err := h.classService.Join(c.Request.Context(), &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.created(c, class)
}

func (h *StudentHandler) ListJoinedClasses(c *gin.Context) {
	studentID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	classes, err := h.classService.ListJoined(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, classes)
}

// ===== POLLS =====

func (h *StudentHandler) ListLivePolls(c *gin.Context) {
	studentID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	polls, err := h.pollService.ListLiveForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, polls)
}

func (h *StudentHandler) Vote(c *gin.Context) {
	studentID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	pollID := h.parseIDParam(c, "id")
	if pollID == 0 {
		return
	}

	var req services.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.pollService.Vote(c.Request.Context(), pollID, &req, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Status: "success", Message: "Vote recorded"})
}

// ===== QUIZZES =====

func (h *StudentHandler) ListLiveQuizzes(c *gin.Context) {
	studentID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListLiveForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, quizzes)
}

func (h *StudentHandler) SubmitQuiz(c *gin.Context) {
	studentID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz", "quiz_id", quizID)

	result, err := h.quizService.Submit(c.Request.Context(), quizID, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.created(c, result)
}

func (h *StudentHandler) GetMyResult(c *gin.Context) {
	studentID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	result, err := h.quizService.GetMyResult(c.Request.Context(), quizID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, result)
}
