package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classpulse/engagement-service/internal/services"
	"github.com/classpulse/engagement-service/internal/utils"
)

// TeacherHandler serves the teacher-facing surface: classes, polls, quizzes
// and their results. Every route behind it is gated to the teacher role.
type TeacherHandler struct {
	BaseHandler
	classService services.ClassService
	pollService  services.PollService
	quizService  services.QuizService
}

func NewTeacherHandler(sm services.ServiceManager, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: sm.Class(),
		pollService:  sm.Poll(),
		quizService:  sm.Quiz(),
	}
}

// ===== CLASSES =====

func (h *TeacherHandler) CreateClass(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	class, err := h.classService.Create(c.Request.Context(), &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.created(c, class)
}

func (h *TeacherHandler) ListClasses(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	classes, err := h.classService.ListByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, classes)
}

// ===== POLLS =====

func (h *TeacherHandler) CreatePoll(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	poll, err := h.pollService.Create(c.Request.Context(), &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.created(c, poll)
}

func (h *TeacherHandler) ListPolls(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	polls, err := h.pollService.ListByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, polls)
}

func (h *TeacherHandler) UpdatePollStatus(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	pollID := h.parseIDParam(c, "id")
	if pollID == 0 {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	poll, err := h.pollService.UpdateStatus(c.Request.Context(), pollID, &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, poll)
}

func (h *TeacherHandler) GetPollResults(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	pollID := h.parseIDParam(c, "id")
	if pollID == 0 {
		return
	}

	tally, err := h.pollService.Tally(c.Request.Context(), pollID, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, tally)
}

// ===== QUIZZES =====

func (h *TeacherHandler) CreateQuiz(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.created(c, quiz)
}

func (h *TeacherHandler) ListQuizzes(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, quizzes)
}

func (h *TeacherHandler) UpdateQuizStatus(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.UpdateStatus(c.Request.Context(), quizID, &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, quiz)
}

func (h *TeacherHandler) GetQuizResults(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	results, err := h.quizService.GetAllResults(c.Request.Context(), quizID, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.ok(c, results)
}

// ExportQuizResults streams the results workbook as an attachment.
func (h *TeacherHandler) ExportQuizResults(c *gin.Context) {
	teacherID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", quizID)

	data, filename, err := h.quizService.ExportResults(c.Request.Context(), quizID, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
