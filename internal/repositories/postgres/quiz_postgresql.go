package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classpulse/engagement-service/internal/cache"
	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create inserts the quiz with its questions and options in one association
// batch. Correct-option references are resolved by the service afterwards,
// inside the same transaction, because option IDs only exist post-insert.
func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	if err := q.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	cache.SafeInvalidate(ctx, q.cacheManager.Quiz, fmt.Sprintf("id:%d", quiz.ID))
	return nil
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var quiz models.Quiz

	err := q.cacheManager.Quiz.CacheOrExecute(ctx, cacheKey, &quiz, cache.QuizCacheConfig.TTL, func() (interface{}, error) {
		var dbQuiz models.Quiz
		if err := q.db.WithContext(ctx).First(&dbQuiz, id).Error; err != nil {
			return nil, err
		}
		return &dbQuiz, nil
	})
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetOwned(ctx context.Context, quizID, teacherID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.db.WithContext(ctx).
		Joins("JOIN classes ON classes.id = quizzes.class_id").
		Where("quizzes.id = ? AND classes.teacher_id = ?", quizID, teacherID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) ListByTeacher(ctx context.Context, teacherID uint) ([]repositories.QuizSummary, error) {
	var summaries []repositories.QuizSummary
	err := q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Select("quizzes.*, COUNT(quiz_questions.id) AS question_count").
		Joins("JOIN classes ON classes.id = quizzes.class_id").
		Joins("LEFT JOIN quiz_questions ON quiz_questions.quiz_id = quizzes.id").
		Where("classes.teacher_id = ?", teacherID).
		Group("quizzes.id").
		Order("quizzes.created_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return summaries, nil
}

func (q *QuizPostgreSQL) ListByClassIDs(ctx context.Context, classIDs []uint, status *models.ActivityStatus) ([]models.Quiz, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	query := q.db.WithContext(ctx).Where("class_id IN ?", classIDs)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var quizzes []models.Quiz
	if err := query.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("failed to list quizzes by class: %w", err)
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) UpdateStatus(ctx context.Context, quizID uint, status models.ActivityStatus) error {
	err := q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id = ?", quizID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update quiz status: %w", err)
	}
	cache.SafeInvalidate(ctx, q.cacheManager.Quiz, fmt.Sprintf("id:%d", quizID))
	return nil
}

func (q *QuizPostgreSQL) GetQuestions(ctx context.Context, quizID uint) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_options.id ASC")
		}).
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}
	return questions, nil
}

func (q *QuizPostgreSQL) UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update quiz question: %w", err)
	}
	return nil
}

// CreateSubmission inserts the guard row that makes submission one-shot.
// Concurrent submissions for the same (quiz, student) collide on its unique
// index regardless of which questions they answer; the loser's transaction
// rolls back without any answer rows.
func (q *QuizPostgreSQL) CreateSubmission(ctx context.Context, sub *models.QuizSubmission) error {
	if err := q.db.WithContext(ctx).Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create quiz submission: %w", err)
	}
	return nil
}

// CreateResponses inserts all answer rows for one submission.
func (q *QuizPostgreSQL) CreateResponses(ctx context.Context, responses []models.QuizResponse) error {
	if len(responses) == 0 {
		return nil
	}
	if err := q.db.WithContext(ctx).Create(&responses).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create quiz responses: %w", err)
	}
	return nil
}

func (q *QuizPostgreSQL) HasSubmission(ctx context.Context, quizID, studentID uint) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.QuizSubmission{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return count > 0, nil
}

func (q *QuizPostgreSQL) GetResponses(ctx context.Context, quizID, studentID uint) ([]models.QuizResponse, error) {
	var responses []models.QuizResponse
	err := q.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz responses: %w", err)
	}
	return responses, nil
}

func (q *QuizPostgreSQL) SubmittedStudentIDs(ctx context.Context, quizID uint) ([]uint, error) {
	var ids []uint
	err := q.db.WithContext(ctx).
		Model(&models.QuizSubmission{}).
		Where("quiz_id = ?", quizID).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submitted students: %w", err)
	}
	return ids, nil
}
