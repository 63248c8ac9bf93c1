package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classpulse/engagement-service/internal/auth"
	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
	"github.com/classpulse/engagement-service/internal/services"
	"github.com/classpulse/engagement-service/internal/utils"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	teacherHandler *TeacherHandler
	studentHandler *StudentHandler
	authMiddleware *JWTAuthMiddleware
	repo           repositories.Repository
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	jwtService *auth.JWTService,
	logger utils.Logger,
	repo repositories.Repository,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger),
		teacherHandler: NewTeacherHandler(serviceManager, logger),
		studentHandler: NewStudentHandler(serviceManager, logger),
		authMiddleware: NewJWTAuthMiddleware(jwtService),
		repo:           repo,
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", hm.authHandler.SignUp)
		authRoutes.POST("/login", hm.authHandler.Login)
	}

	teacher := router.Group("/teacher")
	teacher.Use(hm.authMiddleware.AuthMiddleware())
	teacher.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher))
	{
		teacher.POST("/classes", hm.teacherHandler.CreateClass)
		teacher.GET("/classes", hm.teacherHandler.ListClasses)

		teacher.POST("/polls", hm.teacherHandler.CreatePoll)
		teacher.GET("/polls", hm.teacherHandler.ListPolls)
		teacher.PATCH("/polls/:id/status", hm.teacherHandler.UpdatePollStatus)
		teacher.GET("/polls/:id/results", hm.teacherHandler.GetPollResults)

		teacher.POST("/quizzes", hm.teacherHandler.CreateQuiz)
		teacher.GET("/quizzes", hm.teacherHandler.ListQuizzes)
		teacher.PATCH("/quizzes/:id/status", hm.teacherHandler.UpdateQuizStatus)
		teacher.GET("/quizzes/:id/results", hm.teacherHandler.GetQuizResults)
		teacher.GET("/quizzes/:id/results/export", hm.teacherHandler.ExportQuizResults)
	}

	student := router.Group("/student")
	student.Use(hm.authMiddleware.AuthMiddleware())
	student.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
	{
		student.POST("/classes/join", hm.studentHandler.JoinClass)
		student.GET("/classes", hm.studentHandler.ListJoinedClasses)

		student.GET("/polls", hm.studentHandler.ListLivePolls)
		student.POST("/polls/:id/vote", hm.studentHandler.Vote)

		student.GET("/quizzes", hm.studentHandler.ListLiveQuizzes)
		student.POST("/quizzes/:id/submit", hm.studentHandler.SubmitQuiz)
		student.GET("/quizzes/:id/results", hm.studentHandler.GetMyResult)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"service":   "engagement-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
