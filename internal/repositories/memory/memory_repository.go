// Package memory provides an in-memory Repository implementation backing the
// service test suites. It enforces the same uniqueness rules as the postgres
// backend (email, join code, membership pair, quiz submission pair, quiz
// response triple) so conflict paths behave identically.
package memory

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
)

type Repository struct {
	mu     sync.RWMutex
	nextID uint

	users         map[uint]models.User
	classes       map[uint]models.Class
	members       map[uint]models.ClassMember
	polls         map[uint]models.Poll
	pollOptions   map[uint]models.PollOption
	pollResponses map[uint]models.PollResponse
	quizzes         map[uint]models.Quiz
	questions       map[uint]models.QuizQuestion
	quizOptions     map[uint]models.QuizOption
	quizSubmissions map[uint]models.QuizSubmission
	quizResponses   map[uint]models.QuizResponse
}

func NewRepository() *Repository {
	return &Repository{
		nextID:        1,
		users:         make(map[uint]models.User),
		classes:       make(map[uint]models.Class),
		members:       make(map[uint]models.ClassMember),
		polls:         make(map[uint]models.Poll),
		pollOptions:   make(map[uint]models.PollOption),
		pollResponses: make(map[uint]models.PollResponse),
		quizzes:         make(map[uint]models.Quiz),
		questions:       make(map[uint]models.QuizQuestion),
		quizOptions:     make(map[uint]models.QuizOption),
		quizSubmissions: make(map[uint]models.QuizSubmission),
		quizResponses:   make(map[uint]models.QuizResponse),
	}
}

func (r *Repository) allocID() uint {
	id := r.nextID
	r.nextID++
	return id
}

func (r *Repository) User() repositories.UserRepository             { return (*userRepo)(r) }
func (r *Repository) Class() repositories.ClassRepository           { return (*classRepo)(r) }
func (r *Repository) Membership() repositories.MembershipRepository { return (*membershipRepo)(r) }
func (r *Repository) Poll() repositories.PollRepository             { return (*pollRepo)(r) }
func (r *Repository) Quiz() repositories.QuizRepository             { return (*quizRepo)(r) }

// WithTransaction runs fn against the same store. Rollback is not simulated:
// the tests that exercise transactional behavior assert on constraint
// outcomes, which this backend enforces on every insert.
func (r *Repository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *Repository) Ping(context.Context) error { return nil }
func (r *Repository) Close() error               { return nil }

// ===== USERS =====

type userRepo Repository

func (u *userRepo) Create(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = (*Repository)(u).allocID()
	u.users[user.ID] = *user
	return nil
}

func (u *userRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (u *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, user := range u.users {
		if user.Email == email {
			user := user
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *userRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, user := range u.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ===== CLASSES =====

type classRepo Repository

func (c *classRepo) Create(_ context.Context, class *models.Class) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.classes {
		if existing.JoinCode == class.JoinCode {
			return repositories.ErrDuplicate
		}
	}
	class.ID = (*Repository)(c).allocID()
	c.classes[class.ID] = *class
	return nil
}

func (c *classRepo) GetByID(_ context.Context, id uint) (*models.Class, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	class, ok := c.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &class, nil
}

func (c *classRepo) GetByJoinCode(_ context.Context, code string) (*models.Class, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, class := range c.classes {
		if class.JoinCode == code {
			class := class
			return &class, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (c *classRepo) ExistsByJoinCode(_ context.Context, code string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, class := range c.classes {
		if class.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (c *classRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Class, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var classes []models.Class
	for _, class := range c.classes {
		if class.TeacherID == teacherID {
			classes = append(classes, class)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (c *classRepo) IsOwned(_ context.Context, classID, teacherID uint) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	class, ok := c.classes[classID]
	return ok && class.TeacherID == teacherID, nil
}

// ===== MEMBERSHIPS =====

type membershipRepo Repository

func (m *membershipRepo) Create(_ context.Context, member *models.ClassMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.members {
		if existing.ClassID == member.ClassID && existing.StudentID == member.StudentID {
			return repositories.ErrDuplicate
		}
	}
	member.ID = (*Repository)(m).allocID()
	m.members[member.ID] = *member
	return nil
}

func (m *membershipRepo) Exists(_ context.Context, classID, studentID uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, member := range m.members {
		if member.ClassID == classID && member.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *membershipRepo) ListClassesByStudent(_ context.Context, studentID uint) ([]models.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var classes []models.Class
	for _, member := range m.members {
		if member.StudentID == studentID {
			if class, ok := m.classes[member.ClassID]; ok {
				classes = append(classes, class)
			}
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (m *membershipRepo) ClassIDsByStudent(_ context.Context, studentID uint) ([]uint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []uint
	for _, member := range m.members {
		if member.StudentID == studentID {
			ids = append(ids, member.ClassID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ===== POLLS =====

type pollRepo Repository

func (p *pollRepo) Create(_ context.Context, poll *models.Poll) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	poll.ID = (*Repository)(p).allocID()
	for i := range poll.Options {
		poll.Options[i].ID = (*Repository)(p).allocID()
		poll.Options[i].PollID = poll.ID
		p.pollOptions[poll.Options[i].ID] = poll.Options[i]
	}
	p.polls[poll.ID] = *poll
	return nil
}

func (p *pollRepo) GetByID(_ context.Context, id uint) (*models.Poll, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	poll, ok := p.polls[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	poll.Options = p.optionsOf(id)
	return &poll, nil
}

func (p *pollRepo) optionsOf(pollID uint) []models.PollOption {
	var options []models.PollOption
	for _, opt := range p.pollOptions {
		if opt.PollID == pollID {
			options = append(options, opt)
		}
	}
	sort.Slice(options, func(i, j int) bool { return options[i].ID < options[j].ID })
	return options
}

func (p *pollRepo) GetOwned(_ context.Context, pollID, teacherID uint) (*models.Poll, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	poll, ok := p.polls[pollID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	class, ok := p.classes[poll.ClassID]
	if !ok || class.TeacherID != teacherID {
		return nil, gorm.ErrRecordNotFound
	}
	poll.Options = p.optionsOf(pollID)
	return &poll, nil
}

func (p *pollRepo) ListByTeacher(_ context.Context, teacherID uint) ([]repositories.PollSummary, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var summaries []repositories.PollSummary
	for _, poll := range p.polls {
		class, ok := p.classes[poll.ClassID]
		if !ok || class.TeacherID != teacherID {
			continue
		}
		summaries = append(summaries, repositories.PollSummary{
			Poll:        poll,
			OptionCount: len(p.optionsOf(poll.ID)),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (p *pollRepo) ListByClassIDs(_ context.Context, classIDs []uint, status *models.ActivityStatus) ([]models.Poll, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	classSet := make(map[uint]struct{}, len(classIDs))
	for _, id := range classIDs {
		classSet[id] = struct{}{}
	}
	var polls []models.Poll
	for _, poll := range p.polls {
		if _, ok := classSet[poll.ClassID]; !ok {
			continue
		}
		if status != nil && poll.Status != *status {
			continue
		}
		poll.Options = p.optionsOf(poll.ID)
		polls = append(polls, poll)
	}
	sort.Slice(polls, func(i, j int) bool { return polls[i].ID < polls[j].ID })
	return polls, nil
}

func (p *pollRepo) UpdateStatus(_ context.Context, pollID uint, status models.ActivityStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	poll, ok := p.polls[pollID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	poll.Status = status
	p.polls[pollID] = poll
	return nil
}

func (p *pollRepo) GetOptions(_ context.Context, pollID uint) ([]models.PollOption, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.optionsOf(pollID), nil
}

func (p *pollRepo) CreateResponse(_ context.Context, resp *models.PollResponse) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	resp.ID = (*Repository)(p).allocID()
	p.pollResponses[resp.ID] = *resp
	return nil
}

func (p *pollRepo) CountResponses(_ context.Context, pollID uint) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var count int64
	for _, resp := range p.pollResponses {
		if resp.PollID == pollID {
			count++
		}
	}
	return count, nil
}

func (p *pollRepo) CountResponsesByOption(_ context.Context, optionID uint) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var count int64
	for _, resp := range p.pollResponses {
		if resp.OptionID == optionID {
			count++
		}
	}
	return count, nil
}

// ===== QUIZZES =====

type quizRepo Repository

func (q *quizRepo) Create(_ context.Context, quiz *models.Quiz) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	quiz.ID = (*Repository)(q).allocID()
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		question.ID = (*Repository)(q).allocID()
		question.QuizID = quiz.ID
		for j := range question.Options {
			option := &question.Options[j]
			option.ID = (*Repository)(q).allocID()
			option.QuestionID = question.ID
			q.quizOptions[option.ID] = *option
		}
		q.questions[question.ID] = *question
	}
	q.quizzes[quiz.ID] = *quiz
	return nil
}

func (q *quizRepo) GetByID(_ context.Context, id uint) (*models.Quiz, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	quiz, ok := q.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &quiz, nil
}

func (q *quizRepo) GetOwned(_ context.Context, quizID, teacherID uint) (*models.Quiz, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	quiz, ok := q.quizzes[quizID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	class, ok := q.classes[quiz.ClassID]
	if !ok || class.TeacherID != teacherID {
		return nil, gorm.ErrRecordNotFound
	}
	return &quiz, nil
}

func (q *quizRepo) ListByTeacher(_ context.Context, teacherID uint) ([]repositories.QuizSummary, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var summaries []repositories.QuizSummary
	for _, quiz := range q.quizzes {
		class, ok := q.classes[quiz.ClassID]
		if !ok || class.TeacherID != teacherID {
			continue
		}
		count := 0
		for _, question := range q.questions {
			if question.QuizID == quiz.ID {
				count++
			}
		}
		summaries = append(summaries, repositories.QuizSummary{Quiz: quiz, QuestionCount: count})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (q *quizRepo) ListByClassIDs(_ context.Context, classIDs []uint, status *models.ActivityStatus) ([]models.Quiz, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	classSet := make(map[uint]struct{}, len(classIDs))
	for _, id := range classIDs {
		classSet[id] = struct{}{}
	}
	var quizzes []models.Quiz
	for _, quiz := range q.quizzes {
		if _, ok := classSet[quiz.ClassID]; !ok {
			continue
		}
		if status != nil && quiz.Status != *status {
			continue
		}
		quizzes = append(quizzes, quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (q *quizRepo) UpdateStatus(_ context.Context, quizID uint, status models.ActivityStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	quiz, ok := q.quizzes[quizID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.Status = status
	q.quizzes[quizID] = quiz
	return nil
}

func (q *quizRepo) GetQuestions(_ context.Context, quizID uint) ([]models.QuizQuestion, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var questions []models.QuizQuestion
	for _, question := range q.questions {
		if question.QuizID != quizID {
			continue
		}
		var options []models.QuizOption
		for _, option := range q.quizOptions {
			if option.QuestionID == question.ID {
				options = append(options, option)
			}
		}
		sort.Slice(options, func(i, j int) bool { return options[i].ID < options[j].ID })
		question.Options = options
		questions = append(questions, question)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (q *quizRepo) UpdateQuestion(_ context.Context, question *models.QuizQuestion) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *question
	stored.Options = nil
	q.questions[question.ID] = stored
	return nil
}

// CreateSubmission is the atomic check-and-insert for the (quiz, student)
// guard row: two concurrent submissions serialize on the store lock and the
// second one reads as a duplicate.
func (q *quizRepo) CreateSubmission(_ context.Context, sub *models.QuizSubmission) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, existing := range q.quizSubmissions {
		if existing.QuizID == sub.QuizID && existing.StudentID == sub.StudentID {
			return repositories.ErrDuplicate
		}
	}
	sub.ID = (*Repository)(q).allocID()
	q.quizSubmissions[sub.ID] = *sub
	return nil
}

func (q *quizRepo) CreateResponses(_ context.Context, responses []models.QuizResponse) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, resp := range responses {
		for _, existing := range q.quizResponses {
			if existing.QuizID == resp.QuizID &&
				existing.StudentID == resp.StudentID &&
				existing.QuestionID == resp.QuestionID {
				return repositories.ErrDuplicate
			}
		}
	}
	for _, resp := range responses {
		resp.ID = (*Repository)(q).allocID()
		q.quizResponses[resp.ID] = resp
	}
	return nil
}

func (q *quizRepo) HasSubmission(_ context.Context, quizID, studentID uint) (bool, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, sub := range q.quizSubmissions {
		if sub.QuizID == quizID && sub.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (q *quizRepo) GetResponses(_ context.Context, quizID, studentID uint) ([]models.QuizResponse, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var responses []models.QuizResponse
	for _, resp := range q.quizResponses {
		if resp.QuizID == quizID && resp.StudentID == studentID {
			responses = append(responses, resp)
		}
	}
	sort.Slice(responses, func(i, j int) bool { return responses[i].ID < responses[j].ID })
	return responses, nil
}

func (q *quizRepo) SubmittedStudentIDs(_ context.Context, quizID uint) ([]uint, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var ids []uint
	for _, sub := range q.quizSubmissions {
		if sub.QuizID == quizID {
			ids = append(ids, sub.StudentID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
