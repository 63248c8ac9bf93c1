package repositories

import "context"

// Repository aggregates all entity repositories behind one handle so services
// take a single dependency and transactions can rebind every sub-repository
// at once.
type Repository interface {
	User() UserRepository
	Class() ClassRepository
	Membership() MembershipRepository
	Poll() PollRepository
	Quiz() QuizRepository

	// WithTransaction runs fn against a Repository whose every operation is
	// part of one storage transaction; fn returning an error rolls it back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager owns repository lifecycle for the composition root.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
