package services

import (
	"sort"

	"github.com/classpulse/engagement-service/internal/models"
)

// gradeQuiz computes a student's result over every question of the quiz, not
// only the answered ones. A question is correct iff the student responded to
// it, the question carries a correct-option reference, and the chosen option
// matches. Unanswered questions and questions without a correct-option
// reference grade as incorrect.
//
// Pure: no storage access, safe to call on live data any number of times.
func gradeQuiz(quizID, studentID uint, questions []models.QuizQuestion, responses []models.QuizResponse) *QuizResultResponse {
	answered := make(map[uint]uint, len(responses))
	for _, resp := range responses {
		answered[resp.QuestionID] = resp.OptionID
	}

	details := make([]QuestionResult, 0, len(questions))
	score := 0
	for _, question := range questions {
		optionID, ok := answered[question.ID]
		correct := ok &&
			question.CorrectOptionID != nil &&
			optionID == *question.CorrectOptionID
		if correct {
			score++
		}
		details = append(details, QuestionResult{QuestionID: question.ID, Correct: correct})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].QuestionID < details[j].QuestionID })

	total := len(questions)
	percentage := 0.0
	if total > 0 {
		percentage = float64(score) / float64(total) * 100
	}

	return &QuizResultResponse{
		QuizID:     quizID,
		StudentID:  studentID,
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Details:    details,
	}
}
