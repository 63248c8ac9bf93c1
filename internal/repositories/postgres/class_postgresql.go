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

type ClassPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewClassPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ClassRepository {
	return &ClassPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ClassPostgreSQL) Create(ctx context.Context, class *models.Class) error {
	if err := c.db.WithContext(ctx).Create(class).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Class, error) {
	var class models.Class
	if err := c.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// GetByJoinCode is the hot path of student onboarding, so it reads through
// the cache. Join codes never change after creation, which keeps the cached
// entry safe for its full TTL.
func (c *ClassPostgreSQL) GetByJoinCode(ctx context.Context, code string) (*models.Class, error) {
	cacheKey := fmt.Sprintf("join_code:%s", code)
	var class models.Class

	err := c.cacheManager.Class.CacheOrExecute(ctx, cacheKey, &class, cache.ClassCacheConfig.TTL, func() (interface{}, error) {
		var dbClass models.Class
		if err := c.db.WithContext(ctx).Where("join_code = ?", code).First(&dbClass).Error; err != nil {
			return nil, err
		}
		return &dbClass, nil
	})
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (c *ClassPostgreSQL) ExistsByJoinCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Class{}).
		Where("join_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check join code existence: %w", err)
	}
	return count > 0, nil
}

func (c *ClassPostgreSQL) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	err := c.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

func (c *ClassPostgreSQL) IsOwned(ctx context.Context, classID, teacherID uint) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Class{}).
		Where("id = ? AND teacher_id = ?", classID, teacherID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check class ownership: %w", err)
	}
	return count > 0, nil
}

type MembershipPostgreSQL struct {
	db *gorm.DB
}

func NewMembershipPostgreSQL(db *gorm.DB) repositories.MembershipRepository {
	return &MembershipPostgreSQL{db: db}
}

// Create relies on the (class_id, student_id) unique index: a concurrent
// duplicate join loses the race at the constraint, not at the prior lookup.
func (m *MembershipPostgreSQL) Create(ctx context.Context, member *models.ClassMember) error {
	if err := m.db.WithContext(ctx).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) Exists(ctx context.Context, classID, studentID uint) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&models.ClassMember{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

func (m *MembershipPostgreSQL) ListClassesByStudent(ctx context.Context, studentID uint) ([]models.Class, error) {
	var classes []models.Class
	err := m.db.WithContext(ctx).
		Joins("JOIN class_members ON class_members.class_id = classes.id").
		Where("class_members.student_id = ?", studentID).
		Order("class_members.joined_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list joined classes: %w", err)
	}
	return classes, nil
}

func (m *MembershipPostgreSQL) ClassIDsByStudent(ctx context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	err := m.db.WithContext(ctx).
		Model(&models.ClassMember{}).
		Where("student_id = ?", studentID).
		Pluck("class_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list joined class ids: %w", err)
	}
	return ids, nil
}
