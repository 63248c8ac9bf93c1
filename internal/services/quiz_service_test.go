package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/classpulse/engagement-service/internal/events"
	"github.com/classpulse/engagement-service/internal/models"
)

func (e *testEnv) createQuiz(t *testing.T, teacherID, classID uint, questions ...QuizQuestionRequest) *models.Quiz {
	t.Helper()
	quiz, err := e.services.Quiz().Create(context.Background(), &CreateQuizRequest{
		ClassID:   classID,
		Title:     "Test Quiz",
		Questions: questions,
	}, teacherID)
	if err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}
	return quiz
}

func twoQuestionQuiz() []QuizQuestionRequest {
	return []QuizQuestionRequest{
		{Text: "Q1", Options: []string{"A", "B"}, CorrectOptionIndex: 0},
		{Text: "Q2", Options: []string{"A", "B"}, CorrectOptionIndex: 1},
	}
}

func TestQuizService_Create(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	class := env.createClass(t, teacher.ID, "Physics")
	ctx := context.Background()

	quiz := env.createQuiz(t, teacher.ID, class.ID, twoQuestionQuiz()...)
	if quiz.Status != models.StatusDraft {
		t.Errorf("new quiz must start draft, got %s", quiz.Status)
	}

	questions, err := env.repo.Quiz().GetQuestions(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuestions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.CorrectOptionID == nil {
			t.Fatalf("question %d lost its correct-option reference", i)
		}
	}
	if *questions[0].CorrectOptionID != questions[0].Options[0].ID {
		t.Error("Q1 correct option should resolve to its first option")
	}
	if *questions[1].CorrectOptionID != questions[1].Options[1].ID {
		t.Error("Q2 correct option should resolve to its second option")
	}

	t.Run("out of range correct index leaves reference unset", func(t *testing.T) {
		quiz := env.createQuiz(t, teacher.ID, class.ID, QuizQuestionRequest{
			Text: "Q", Options: []string{"A", "B"}, CorrectOptionIndex: 5,
		})
		questions, err := env.repo.Quiz().GetQuestions(ctx, quiz.ID)
		if err != nil || len(questions) != 1 {
			t.Fatalf("expected 1 question, got %d (err=%v)", len(questions), err)
		}
		if questions[0].CorrectOptionID != nil {
			t.Error("out-of-range index must leave the reference unset, not error")
		}
	})

	t.Run("foreign class reads as not found", func(t *testing.T) {
		other := env.createTeacher(t, "other@example.com")
		_, err := env.services.Quiz().Create(ctx, &CreateQuizRequest{
			ClassID: class.ID, Title: "t", Questions: twoQuestionQuiz(),
		}, other.ID)
		if !errors.Is(err, ErrClassNotFound) {
			t.Errorf("expected ErrClassNotFound, got %v", err)
		}
	})
}

func TestQuizService_Submit(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	student := env.createStudent(t, "student@example.com")
	class := env.createClass(t, teacher.ID, "Physics")
	env.joinClass(t, class, student.ID)
	quiz := env.createQuiz(t, teacher.ID, class.ID, twoQuestionQuiz()...)
	ctx := context.Background()

	questions, err := env.repo.Quiz().GetQuestions(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuestions failed: %v", err)
	}

	// Q1 answered correctly, Q2 with the wrong option.
	req := &SubmitQuizRequest{Answers: []QuizAnswerRequest{
		{QuestionID: questions[0].ID, OptionID: questions[0].Options[0].ID},
		{QuestionID: questions[1].ID, OptionID: questions[1].Options[0].ID},
	}}

	result, err := env.services.Quiz().Submit(ctx, quiz.ID, req, student.ID)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Score != 1 || result.Total != 2 || result.Percentage != 50.0 {
		t.Errorf("expected 1/2 at 50%%, got %d/%d at %v", result.Score, result.Total, result.Percentage)
	}

	t.Run("second submission is a conflict", func(t *testing.T) {
		_, err := env.services.Quiz().Submit(ctx, quiz.ID, req, student.ID)
		if !errors.Is(err, ErrQuizAlreadySubmitted) {
			t.Errorf("expected ErrQuizAlreadySubmitted, got %v", err)
		}
	})

	t.Run("submission publishes event", func(t *testing.T) {
		found := false
		for _, ev := range env.publisher.GetPublishedEvents() {
			if ev.Type == events.EventQuizSubmitted {
				found = true
			}
		}
		if !found {
			t.Error("expected a quiz.submitted event")
		}
	})

	t.Run("unknown quiz is not found", func(t *testing.T) {
		_, err := env.services.Quiz().Submit(ctx, 9999, req, student.ID)
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		outsider := env.createStudent(t, "outsider@example.com")
		_, err := env.services.Quiz().Submit(ctx, quiz.ID, req, outsider.ID)
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("answer for foreign question rejected", func(t *testing.T) {
		second := env.createStudent(t, "second@example.com")
		env.joinClass(t, class, second.ID)
		bad := &SubmitQuizRequest{Answers: []QuizAnswerRequest{{QuestionID: 9999, OptionID: 1}}}
		_, err := env.services.Quiz().Submit(ctx, quiz.ID, bad, second.ID)
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

// Two simultaneous submissions for the same (quiz, student) must never both
// land, even when their answer sets involve entirely different questions.
func TestQuizService_Submit_ConcurrentOneShot(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	class := env.createClass(t, teacher.ID, "Physics")
	quiz := env.createQuiz(t, teacher.ID, class.ID, twoQuestionQuiz()...)
	ctx := context.Background()

	questions, err := env.repo.Quiz().GetQuestions(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuestions failed: %v", err)
	}

	for attempt := 0; attempt < 20; attempt++ {
		student := env.createStudent(t, fmt.Sprintf("student%d@example.com", attempt))
		env.joinClass(t, class, student.ID)

		// Disjoint single-answer payloads: the two submissions share no
		// (quiz, student, question) row, so nothing short of the per-pair
		// submission guard can stop the second one.
		reqs := []*SubmitQuizRequest{
			{Answers: []QuizAnswerRequest{{QuestionID: questions[0].ID, OptionID: questions[0].Options[0].ID}}},
			{Answers: []QuizAnswerRequest{{QuestionID: questions[1].ID, OptionID: questions[1].Options[1].ID}}},
		}

		start := make(chan struct{})
		errs := make([]error, len(reqs))
		var wg sync.WaitGroup
		for i, req := range reqs {
			wg.Add(1)
			go func(i int, req *SubmitQuizRequest) {
				defer wg.Done()
				<-start
				_, errs[i] = env.services.Quiz().Submit(ctx, quiz.ID, req, student.ID)
			}(i, req)
		}
		close(start)
		wg.Wait()

		var successes, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrQuizAlreadySubmitted):
				conflicts++
			default:
				t.Fatalf("attempt %d: unexpected submit error: %v", attempt, err)
			}
		}
		if successes != 1 || conflicts != 1 {
			t.Fatalf("attempt %d: expected exactly one submission to win, got %d successes and %d conflicts",
				attempt, successes, conflicts)
		}

		responses, err := env.repo.Quiz().GetResponses(ctx, quiz.ID, student.ID)
		if err != nil {
			t.Fatalf("GetResponses failed: %v", err)
		}
		if len(responses) != 1 {
			t.Fatalf("attempt %d: expected only the winning submission's answer row, got %d rows",
				attempt, len(responses))
		}
	}
}

func TestQuizService_GetMyResult(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	student := env.createStudent(t, "student@example.com")
	class := env.createClass(t, teacher.ID, "Physics")
	env.joinClass(t, class, student.ID)
	quiz := env.createQuiz(t, teacher.ID, class.ID, twoQuestionQuiz()...)
	ctx := context.Background()

	t.Run("readable before any submission", func(t *testing.T) {
		result, err := env.services.Quiz().GetMyResult(ctx, quiz.ID, student.ID)
		if err != nil {
			t.Fatalf("GetMyResult failed: %v", err)
		}
		if result.Score != 0 || result.Total != 2 || result.Percentage != 0 {
			t.Errorf("unsubmitted student should score 0/2, got %d/%d", result.Score, result.Total)
		}
	})

	questions, _ := env.repo.Quiz().GetQuestions(ctx, quiz.ID)
	req := &SubmitQuizRequest{Answers: []QuizAnswerRequest{
		{QuestionID: questions[0].ID, OptionID: questions[0].Options[0].ID},
		{QuestionID: questions[1].ID, OptionID: questions[1].Options[1].ID},
	}}
	if _, err := env.services.Quiz().Submit(ctx, quiz.ID, req, student.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	t.Run("idempotent after submission", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			result, err := env.services.Quiz().GetMyResult(ctx, quiz.ID, student.ID)
			if err != nil {
				t.Fatalf("GetMyResult failed: %v", err)
			}
			if result.Score != 2 || result.Percentage != 100.0 {
				t.Errorf("expected 2/2 at 100%%, got %d at %v", result.Score, result.Percentage)
			}
		}
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		outsider := env.createStudent(t, "outsider@example.com")
		_, err := env.services.Quiz().GetMyResult(ctx, quiz.ID, outsider.ID)
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})
}

func TestQuizService_GetAllResults(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	class := env.createClass(t, teacher.ID, "Physics")
	quiz := env.createQuiz(t, teacher.ID, class.ID, twoQuestionQuiz()...)
	ctx := context.Background()

	submitted := env.createStudent(t, "submitted@example.com")
	silent := env.createStudent(t, "silent@example.com")
	env.joinClass(t, class, submitted.ID)
	env.joinClass(t, class, silent.ID)

	questions, _ := env.repo.Quiz().GetQuestions(ctx, quiz.ID)
	req := &SubmitQuizRequest{Answers: []QuizAnswerRequest{
		{QuestionID: questions[0].ID, OptionID: questions[0].Options[0].ID},
	}}
	if _, err := env.services.Quiz().Submit(ctx, quiz.ID, req, submitted.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	results, err := env.services.Quiz().GetAllResults(ctx, quiz.ID, teacher.ID)
	if err != nil {
		t.Fatalf("GetAllResults failed: %v", err)
	}
	// Only students with a recorded submission appear.
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].StudentID != submitted.ID || results[0].Score != 1 {
		t.Errorf("unexpected result %+v", results[0])
	}
	if results[0].StudentEmail != submitted.Email {
		t.Errorf("expected student identity on result, got %q", results[0].StudentEmail)
	}

	t.Run("foreign teacher sees not found", func(t *testing.T) {
		other := env.createTeacher(t, "other@example.com")
		_, err := env.services.Quiz().GetAllResults(ctx, quiz.ID, other.ID)
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("missing student record degrades to blank identity", func(t *testing.T) {
		// A submission whose student row is gone must not sink the whole
		// listing; the entry comes back with empty name and email.
		const ghostID = uint(9999)
		if err := env.repo.Membership().Create(ctx, &models.ClassMember{ClassID: class.ID, StudentID: ghostID}); err != nil {
			t.Fatalf("failed to create membership: %v", err)
		}
		if err := env.repo.Quiz().CreateSubmission(ctx, &models.QuizSubmission{QuizID: quiz.ID, StudentID: ghostID}); err != nil {
			t.Fatalf("failed to create submission: %v", err)
		}

		results, err := env.services.Quiz().GetAllResults(ctx, quiz.ID, teacher.ID)
		if err != nil {
			t.Fatalf("GetAllResults failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		ghost := results[1]
		if ghost.StudentID != ghostID {
			t.Fatalf("expected the unresolved student last, got %d", ghost.StudentID)
		}
		if ghost.StudentName != "" || ghost.StudentEmail != "" {
			t.Errorf("expected blank identity, got %q / %q", ghost.StudentName, ghost.StudentEmail)
		}
	})
}

func TestQuizService_ExportResults(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	student := env.createStudent(t, "student@example.com")
	class := env.createClass(t, teacher.ID, "Physics")
	env.joinClass(t, class, student.ID)
	quiz := env.createQuiz(t, teacher.ID, class.ID, twoQuestionQuiz()...)
	ctx := context.Background()

	questions, _ := env.repo.Quiz().GetQuestions(ctx, quiz.ID)
	req := &SubmitQuizRequest{Answers: []QuizAnswerRequest{
		{QuestionID: questions[0].ID, OptionID: questions[0].Options[0].ID},
	}}
	if _, err := env.services.Quiz().Submit(ctx, quiz.ID, req, student.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	data, filename, err := env.services.Quiz().ExportResults(ctx, quiz.ID, teacher.ID)
	if err != nil {
		t.Fatalf("ExportResults failed: %v", err)
	}
	if filename == "" {
		t.Error("expected a filename")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported data is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("failed to read Results sheet: %v", err)
	}
	// Header plus one student row.
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Student ID" {
		t.Errorf("unexpected header row %v", rows[0])
	}
}
