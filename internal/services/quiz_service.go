package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/classpulse/engagement-service/internal/events"
	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
	"github.com/classpulse/engagement-service/internal/validator"
)

type quizService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) QuizService {
	return &quizService{repo: repo, publisher: publisher, logger: logger, validator: v}
}

// ===== AUTHORING =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, teacherID uint) (*models.Quiz, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	owned, err := s.repo.Class().IsOwned(ctx, req.ClassID, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to check class ownership: %w", err)
	}
	if !owned {
		return nil, ErrClassNotFound
	}

	quiz := &models.Quiz{
		ClassID: req.ClassID,
		Title:   req.Title,
		Timer:   req.Timer,
		Status:  models.StatusDraft,
	}
	for _, q := range req.Questions {
		question := models.QuizQuestion{Text: q.Text}
		for _, text := range q.Options {
			question.Options = append(question.Options, models.QuizOption{Text: text})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	// Quiz, questions, options and correct-answer resolution land in one
	// transaction: the whole quiz is visible or none of it is.
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Quiz().Create(ctx, quiz); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}

		// Resolve each zero-based correct_option_index against the
		// question's now-persisted options. An out-of-range index leaves
		// the reference unset; the question then grades as never-correct.
		for i := range quiz.Questions {
			question := &quiz.Questions[i]
			idx := req.Questions[i].CorrectOptionIndex
			if idx < 0 || idx >= len(question.Options) {
				continue
			}
			question.CorrectOptionID = &question.Options[idx].ID
			if err := tx.Quiz().UpdateQuestion(ctx, question); err != nil {
				return fmt.Errorf("failed to set correct option for question %d: %w", question.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "class_id", quiz.ClassID,
		"teacher_id", teacherID, "questions", len(quiz.Questions))
	return quiz, nil
}

func (s *quizService) ListByTeacher(ctx context.Context, teacherID uint) ([]repositories.QuizSummary, error) {
	quizzes, err := s.repo.Quiz().ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *quizService) UpdateStatus(ctx context.Context, quizID uint, req *UpdateStatusRequest, teacherID uint) (*models.Quiz, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	newStatus := models.ActivityStatus(req.Status)

	quiz, err := s.repo.Quiz().GetOwned(ctx, quizID, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	oldStatus := quiz.Status
	if err := s.repo.Quiz().UpdateStatus(ctx, quizID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update quiz status: %w", err)
	}
	quiz.Status = newStatus

	s.logger.Info("Quiz status changed", "quiz_id", quizID, "from", oldStatus, "to", newStatus)
	s.publish(ctx, events.NewEvent(events.EventQuizStatusChanged, events.StatusChangedEvent{
		ResourceID: quizID,
		Resource:   "quiz",
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		TeacherID:  teacherID,
	}))
	return quiz, nil
}

// ===== SUBMISSION & GRADING =====

func (s *quizService) ListLiveForStudent(ctx context.Context, studentID uint) ([]models.Quiz, error) {
	classIDs, err := s.repo.Membership().ClassIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve joined classes: %w", err)
	}
	if len(classIDs) == 0 {
		return []models.Quiz{}, nil
	}

	live := models.StatusLive
	quizzes, err := s.repo.Quiz().ListByClassIDs(ctx, classIDs, &live)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *quizService) Submit(ctx context.Context, quizID uint, req *SubmitQuizRequest, studentID uint) (*QuizResultResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var result *QuizResultResponse
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		quiz, err := tx.Quiz().GetByID(ctx, quizID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuizNotFound
			}
			return fmt.Errorf("failed to load quiz: %w", err)
		}

		member, err := tx.Membership().Exists(ctx, quiz.ClassID, studentID)
		if err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			return NewPermissionError(studentID, quizID, "quiz", "submit", "not a member of the quiz's class")
		}

		submitted, err := tx.Quiz().HasSubmission(ctx, quizID, studentID)
		if err != nil {
			return fmt.Errorf("failed to check prior submission: %w", err)
		}
		if submitted {
			return ErrQuizAlreadySubmitted
		}

		questions, err := tx.Quiz().GetQuestions(ctx, quizID)
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}
		known := make(map[uint]struct{}, len(questions))
		for _, q := range questions {
			known[q.ID] = struct{}{}
		}

		responses := make([]models.QuizResponse, 0, len(req.Answers))
		for _, answer := range req.Answers {
			if _, ok := known[answer.QuestionID]; !ok {
				return validator.ValidationErrors{{
					Field:   "answers",
					Message: fmt.Sprintf("question %d does not belong to this quiz", answer.QuestionID),
					Value:   answer.QuestionID,
				}}
			}
			responses = append(responses, models.QuizResponse{
				QuizID:     quizID,
				StudentID:  studentID,
				QuestionID: answer.QuestionID,
				OptionID:   answer.OptionID,
			})
		}

		// The guard row's (quiz, student) unique index closes the race the
		// HasSubmission check leaves open: two concurrent submissions
		// collide here even with disjoint answer sets, and the loser rolls
		// back as a repeat submission.
		if err := tx.Quiz().CreateSubmission(ctx, &models.QuizSubmission{
			QuizID:    quizID,
			StudentID: studentID,
		}); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrQuizAlreadySubmitted
			}
			return fmt.Errorf("failed to record submission: %w", err)
		}

		if err := tx.Quiz().CreateResponses(ctx, responses); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrQuizAlreadySubmitted
			}
			return fmt.Errorf("failed to store responses: %w", err)
		}

		result = gradeQuiz(quizID, studentID, questions, responses)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz submitted", "quiz_id", quizID, "student_id", studentID,
		"score", result.Score, "total", result.Total)
	s.publish(ctx, events.NewEvent(events.EventQuizSubmitted, events.QuizSubmittedEvent{
		QuizID:     quizID,
		StudentID:  studentID,
		Score:      result.Score,
		Total:      result.Total,
		Percentage: result.Percentage,
	}))
	return result, nil
}

// GetMyResult regrades on read. A student who never submitted gets an
// all-incorrect result with score 0 rather than an error.
func (s *quizService) GetMyResult(ctx context.Context, quizID, studentID uint) (*QuizResultResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	member, err := s.repo.Membership().Exists(ctx, quiz.ClassID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, NewPermissionError(studentID, quizID, "quiz", "view_result", "not a member of the quiz's class")
	}

	questions, err := s.repo.Quiz().GetQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	responses, err := s.repo.Quiz().GetResponses(ctx, quizID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	return gradeQuiz(quizID, studentID, questions, responses), nil
}

func (s *quizService) GetAllResults(ctx context.Context, quizID, teacherID uint) ([]StudentResultResponse, error) {
	if _, err := s.repo.Quiz().GetOwned(ctx, quizID, teacherID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	questions, err := s.repo.Quiz().GetQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	// One record per student with a recorded submission; students who never
	// submitted do not appear.
	studentIDs, err := s.repo.Quiz().SubmittedStudentIDs(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submitted students: %w", err)
	}

	results := make([]StudentResultResponse, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		responses, err := s.repo.Quiz().GetResponses(ctx, quizID, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load responses for student %d: %w", studentID, err)
		}

		entry := StudentResultResponse{
			QuizResultResponse: *gradeQuiz(quizID, studentID, questions, responses),
		}
		if student, err := s.repo.User().GetByID(ctx, studentID); err == nil {
			entry.StudentName = student.FullName
			entry.StudentEmail = student.Email
		} else {
			s.logger.Warn("Failed to resolve student identity", "quiz_id", quizID,
				"student_id", studentID, "error", err)
		}
		results = append(results, entry)
	}
	return results, nil
}

// ===== EXPORT =====

func (s *quizService) ExportResults(ctx context.Context, quizID, teacherID uint) ([]byte, string, error) {
	quiz, err := s.repo.Quiz().GetOwned(ctx, quizID, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrQuizNotFound
		}
		return nil, "", fmt.Errorf("failed to load quiz: %w", err)
	}

	results, err := s.GetAllResults(ctx, quizID, teacherID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Student ID", "Student Name", "Email", "Score", "Total", "Percentage"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, result := range results {
		values := []interface{}{
			result.StudentID,
			result.StudentName,
			result.StudentEmail,
			result.Score,
			result.Total,
			result.Percentage,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("quiz_%d_results.xlsx", quiz.ID)
	s.logger.Info("Quiz results exported", "quiz_id", quizID, "students", len(results))
	return buf.Bytes(), filename, nil
}

func (s *quizService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
