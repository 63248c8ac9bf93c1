package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
)

type PollPostgreSQL struct {
	db *gorm.DB
}

func NewPollPostgreSQL(db *gorm.DB) repositories.PollRepository {
	return &PollPostgreSQL{db: db}
}

// Create inserts the poll together with its options; gorm cascades the
// association inserts inside one statement batch.
func (p *PollPostgreSQL) Create(ctx context.Context, poll *models.Poll) error {
	if err := p.db.WithContext(ctx).Create(poll).Error; err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}
	return nil
}

func (p *PollPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll
	if err := p.db.WithContext(ctx).Preload("Options").First(&poll, id).Error; err != nil {
		return nil, err
	}
	return &poll, nil
}

func (p *PollPostgreSQL) GetOwned(ctx context.Context, pollID, teacherID uint) (*models.Poll, error) {
	var poll models.Poll
	err := p.db.WithContext(ctx).
		Joins("JOIN classes ON classes.id = polls.class_id").
		Where("polls.id = ? AND classes.teacher_id = ?", pollID, teacherID).
		Preload("Options").
		First(&poll).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (p *PollPostgreSQL) ListByTeacher(ctx context.Context, teacherID uint) ([]repositories.PollSummary, error) {
	var summaries []repositories.PollSummary
	err := p.db.WithContext(ctx).
		Model(&models.Poll{}).
		Select("polls.*, COUNT(poll_options.id) AS option_count").
		Joins("JOIN classes ON classes.id = polls.class_id").
		Joins("LEFT JOIN poll_options ON poll_options.poll_id = polls.id").
		Where("classes.teacher_id = ?", teacherID).
		Group("polls.id").
		Order("polls.created_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return summaries, nil
}

func (p *PollPostgreSQL) ListByClassIDs(ctx context.Context, classIDs []uint, status *models.ActivityStatus) ([]models.Poll, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	query := p.db.WithContext(ctx).Where("class_id IN ?", classIDs)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var polls []models.Poll
	if err := query.Preload("Options").Order("created_at DESC").Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("failed to list polls by class: %w", err)
	}
	return polls, nil
}

func (p *PollPostgreSQL) UpdateStatus(ctx context.Context, pollID uint, status models.ActivityStatus) error {
	err := p.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ?", pollID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update poll status: %w", err)
	}
	return nil
}

func (p *PollPostgreSQL) GetOptions(ctx context.Context, pollID uint) ([]models.PollOption, error) {
	var options []models.PollOption
	err := p.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("id ASC").
		Find(&options).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	return options, nil
}

func (p *PollPostgreSQL) CreateResponse(ctx context.Context, resp *models.PollResponse) error {
	if err := p.db.WithContext(ctx).Create(resp).Error; err != nil {
		return fmt.Errorf("failed to create poll response: %w", err)
	}
	return nil
}

func (p *PollPostgreSQL) CountResponses(ctx context.Context, pollID uint) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.PollResponse{}).
		Where("poll_id = ?", pollID).
		Count(&count).Error
	return count, err
}

func (p *PollPostgreSQL) CountResponsesByOption(ctx context.Context, optionID uint) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.PollResponse{}).
		Where("option_id = ?", optionID).
		Count(&count).Error
	return count, err
}
