package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/habitrack/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

type UsersRepositoryI interface {
	// Creates new user in database. Returns the stored row with ID and timestamps
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	// Looks up user by email. Used for login
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Looks up user by uid. Used by authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Updates name, avatar and theme
	UpdateProfile(ctx context.Context, user *entity.User) (*entity.User, error)
	// Deletes user together with everything the user owns
	Delete(ctx context.Context, uid uuid.UUID) error
}

type HabitsRepositoryI interface {
	// Creates new habit. Statistics start at zero
	Create(ctx context.Context, habit *entity.Habit) (*entity.Habit, error)
	// Searches habit with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error)
	// Lists habits owned by uid matching the filter
	List(ctx context.Context, uid uuid.UUID, filter HabitFilter) ([]*entity.Habit, error)
	// Updates display attributes and activity flag (ID is necessary)
	Update(ctx context.Context, habit *entity.Habit) (*entity.Habit, error)
	// Deletes habit with id. Ledger rows go with it
	Delete(ctx context.Context, id uuid.UUID) error
	// Distinct non-empty categories of user's habits
	Categories(ctx context.Context, uid uuid.UUID) ([]string, error)
}

type ProgressRepositoryI interface {
	// Runs fn inside a single transaction. Commits when fn returns nil
	WithinTx(ctx context.Context, fn func(q ProgressQueriesI) error) error
	// Searches ledger entry with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Progress, error)
	// Lists ledger entries of uid, newest date first
	List(ctx context.Context, uid uuid.UUID, filter ProgressFilter) ([]entity.ProgressWithHabit, error)
}

// ProgressQueriesI is bound to an open transaction.
type ProgressQueriesI interface {
	// Locks the habit row until the transaction ends
	LockHabit(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error)
	// Returns the ledger entry for the key, locking it
	FindByDate(ctx context.Context, uid, habitID uuid.UUID, date time.Time) (*entity.Progress, error)
	// Returns ErrProgressConflict when the key is already taken
	Create(ctx context.Context, progress *entity.Progress) (*entity.Progress, error)
	Update(ctx context.Context, id uuid.UUID, completed bool, notes string) (*entity.Progress, error)
	Delete(ctx context.Context, id, uid uuid.UUID) error
	// Completed dates of the habit, newest first
	CompletedDates(ctx context.Context, uid, habitID uuid.UUID) ([]time.Time, error)
	UpdateHabitStats(ctx context.Context, habitID uuid.UUID, stats entity.HabitStats) error
}

type SharesRepositoryI interface {
	Create(ctx context.Context, share *entity.Share) (*entity.Share, error)
	FindByShareID(ctx context.Context, shareID string) (*entity.Share, error)
	ListByUser(ctx context.Context, uid uuid.UUID) ([]*entity.Share, error)
	Delete(ctx context.Context, shareID string, uid uuid.UUID) error
}

type HabitSort string

const (
	SortByCreated HabitSort = "created"
	SortByName    HabitSort = "name"
	SortByStreak  HabitSort = "streak"
)

type HabitFilter struct {
	// nil means both active and inactive
	Active   *bool
	Category string
	Sort     HabitSort
	// zero Limit means no limit
	Limit  int
	Offset int
}

type ProgressFilter struct {
	HabitID *uuid.UUID
	// Both bounds are inclusive; zero values are ignored
	From time.Time
	To   time.Time
}
