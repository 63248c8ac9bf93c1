package services

import (
	"context"
	"errors"
	"testing"

	"github.com/classpulse/engagement-service/internal/models"
)

func (e *testEnv) createPoll(t *testing.T, teacherID, classID uint, question string, options ...string) *models.Poll {
	t.Helper()
	poll, err := e.services.Poll().Create(context.Background(), &CreatePollRequest{
		ClassID:  classID,
		Question: question,
		Options:  options,
	}, teacherID)
	if err != nil {
		t.Fatalf("failed to create poll: %v", err)
	}
	return poll
}

func TestPollService_Create(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	class := env.createClass(t, teacher.ID, "History")
	ctx := context.Background()

	poll := env.createPoll(t, teacher.ID, class.ID, "Favorite era?", "Ancient", "Modern")
	if poll.Status != models.StatusDraft {
		t.Errorf("new poll must start draft, got %s", poll.Status)
	}
	if len(poll.Options) != 2 {
		t.Errorf("expected 2 options, got %d", len(poll.Options))
	}

	t.Run("foreign class reads as not found", func(t *testing.T) {
		other := env.createTeacher(t, "other@example.com")
		_, err := env.services.Poll().Create(ctx, &CreatePollRequest{
			ClassID: class.ID, Question: "q", Options: []string{"a", "b"},
		}, other.ID)
		if !errors.Is(err, ErrClassNotFound) {
			t.Errorf("expected ErrClassNotFound, got %v", err)
		}
	})

	t.Run("single option rejected", func(t *testing.T) {
		_, err := env.services.Poll().Create(ctx, &CreatePollRequest{
			ClassID: class.ID, Question: "q", Options: []string{"only"},
		}, teacher.ID)
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestPollService_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	class := env.createClass(t, teacher.ID, "History")
	poll := env.createPoll(t, teacher.ID, class.ID, "Q?", "a", "b")
	ctx := context.Background()

	// Every transition of the three-state lifecycle is legal, including
	// reopening a closed poll back to draft.
	for _, status := range []string{"live", "closed", "draft", "draft"} {
		updated, err := env.services.Poll().UpdateStatus(ctx, poll.ID, &UpdateStatusRequest{Status: status}, teacher.ID)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if updated.Status != models.ActivityStatus(status) {
			t.Errorf("expected %s, got %s", status, updated.Status)
		}
	}

	t.Run("unknown status is invalid argument", func(t *testing.T) {
		_, err := env.services.Poll().UpdateStatus(ctx, poll.ID, &UpdateStatusRequest{Status: "archived"}, teacher.ID)
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("foreign teacher sees not found", func(t *testing.T) {
		other := env.createTeacher(t, "other@example.com")
		_, err := env.services.Poll().UpdateStatus(ctx, poll.ID, &UpdateStatusRequest{Status: "live"}, other.ID)
		if !errors.Is(err, ErrPollNotFound) {
			t.Errorf("expected ErrPollNotFound, got %v", err)
		}
	})
}

func TestPollService_VoteAndTally(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	class := env.createClass(t, teacher.ID, "History")
	poll := env.createPoll(t, teacher.ID, class.ID, "X or Y?", "X", "Y")
	ctx := context.Background()

	students := make([]*models.User, 4)
	for i := range students {
		students[i] = env.createStudent(t, "s"+string(rune('a'+i))+"@example.com")
		env.joinClass(t, class, students[i].ID)
	}

	optionX := poll.Options[0].ID
	optionY := poll.Options[1].ID

	// Three votes for X, one for Y.
	for _, s := range students[:3] {
		if err := env.services.Poll().Vote(ctx, poll.ID, &VoteRequest{OptionID: optionX}, s.ID); err != nil {
			t.Fatalf("vote failed: %v", err)
		}
	}
	if err := env.services.Poll().Vote(ctx, poll.ID, &VoteRequest{OptionID: optionY}, students[3].ID); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	tally, err := env.services.Poll().Tally(ctx, poll.ID, teacher.ID)
	if err != nil {
		t.Fatalf("Tally failed: %v", err)
	}
	if tally.TotalVotes != 4 {
		t.Errorf("expected 4 votes, got %d", tally.TotalVotes)
	}
	if tally.Options[0].Votes != 3 || tally.Options[0].Percentage != 75.0 {
		t.Errorf("expected X at 3 votes / 75%%, got %d / %v", tally.Options[0].Votes, tally.Options[0].Percentage)
	}
	if tally.Options[1].Votes != 1 || tally.Options[1].Percentage != 25.0 {
		t.Errorf("expected Y at 1 vote / 25%%, got %d / %v", tally.Options[1].Votes, tally.Options[1].Percentage)
	}

	t.Run("non-member cannot vote", func(t *testing.T) {
		outsider := env.createStudent(t, "outsider@example.com")
		err := env.services.Poll().Vote(ctx, poll.ID, &VoteRequest{OptionID: optionX}, outsider.ID)
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("option of another poll rejected", func(t *testing.T) {
		other := env.createPoll(t, teacher.ID, class.ID, "Other?", "p", "q")
		err := env.services.Poll().Vote(ctx, poll.ID, &VoteRequest{OptionID: other.Options[0].ID}, students[0].ID)
		if !errors.Is(err, ErrOptionNotFound) {
			t.Errorf("expected ErrOptionNotFound, got %v", err)
		}
	})

	t.Run("repeat votes all persist", func(t *testing.T) {
		if err := env.services.Poll().Vote(ctx, poll.ID, &VoteRequest{OptionID: optionY}, students[0].ID); err != nil {
			t.Fatalf("second vote failed: %v", err)
		}
		tally, err := env.services.Poll().Tally(ctx, poll.ID, teacher.ID)
		if err != nil {
			t.Fatalf("Tally failed: %v", err)
		}
		if tally.TotalVotes != 5 {
			t.Errorf("expected repeat vote to count, total %d", tally.TotalVotes)
		}
	})

	t.Run("tally with no votes is all zero", func(t *testing.T) {
		empty := env.createPoll(t, teacher.ID, class.ID, "Empty?", "a", "b")
		tally, err := env.services.Poll().Tally(ctx, empty.ID, teacher.ID)
		if err != nil {
			t.Fatalf("Tally failed: %v", err)
		}
		if tally.TotalVotes != 0 {
			t.Fatalf("expected 0 votes, got %d", tally.TotalVotes)
		}
		for _, opt := range tally.Options {
			if opt.Percentage != 0 {
				t.Errorf("expected 0%% with no votes, got %v", opt.Percentage)
			}
		}
	})
}

func TestPollService_ListLiveForStudent(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createTeacher(t, "teacher@example.com")
	student := env.createStudent(t, "student@example.com")
	class := env.createClass(t, teacher.ID, "History")
	env.joinClass(t, class, student.ID)
	ctx := context.Background()

	livePoll := env.createPoll(t, teacher.ID, class.ID, "Live?", "a", "b")
	env.createPoll(t, teacher.ID, class.ID, "Draft?", "a", "b")
	if _, err := env.services.Poll().UpdateStatus(ctx, livePoll.ID, &UpdateStatusRequest{Status: "live"}, teacher.ID); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	polls, err := env.services.Poll().ListLiveForStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("ListLiveForStudent failed: %v", err)
	}
	if len(polls) != 1 || polls[0].ID != livePoll.ID {
		t.Errorf("expected only the live poll, got %+v", polls)
	}

	t.Run("student with no classes sees empty list", func(t *testing.T) {
		loner := env.createStudent(t, "loner@example.com")
		polls, err := env.services.Poll().ListLiveForStudent(ctx, loner.ID)
		if err != nil || len(polls) != 0 {
			t.Errorf("expected empty list, got %+v (err=%v)", polls, err)
		}
	})
}
