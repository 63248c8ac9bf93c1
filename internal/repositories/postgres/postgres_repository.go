package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classpulse/engagement-service/internal/cache"
	"github.com/classpulse/engagement-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user       repositories.UserRepository
	class      repositories.ClassRepository
	membership repositories.MembershipRepository
	poll       repositories.PollRepository
	quiz       repositories.QuizRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB)
	repo.class = NewClassPostgreSQL(config.DB, config.RedisClient)
	repo.membership = NewMembershipPostgreSQL(config.DB)
	repo.poll = NewPollPostgreSQL(config.DB)
	repo.quiz = NewQuizPostgreSQL(config.DB, config.RedisClient)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }
func (r *PostgreSQLRepository) Class() repositories.ClassRepository           { return r.class }
func (r *PostgreSQLRepository) Membership() repositories.MembershipRepository { return r.membership }
func (r *PostgreSQLRepository) Poll() repositories.PollRepository             { return r.poll }
func (r *PostgreSQLRepository) Quiz() repositories.QuizRepository             { return r.quiz }

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.user = NewUserPostgreSQL(tx)
		txRepo.class = NewClassPostgreSQL(tx, r.redisClient)
		txRepo.membership = NewMembershipPostgreSQL(tx)
		txRepo.poll = NewPollPostgreSQL(tx)
		txRepo.quiz = NewQuizPostgreSQL(tx, r.redisClient)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManagerImpl manages repository lifecycle
type RepositoryManagerImpl struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) *RepositoryManagerImpl {
	return &RepositoryManagerImpl{config: config}
}

func (rm *RepositoryManagerImpl) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManagerImpl) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManagerImpl) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManagerImpl) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
