package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/habitrack/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

type RegisterRequest struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
	Name     string `validate:"required,notblank,min=2,max=100"`
}

// nil fields are left untouched
type UpdateProfileRequest struct {
	Name      *string `validate:"omitempty,notblank,min=2,max=100"`
	AvatarURL *string `validate:"omitempty,max=2048"`
	Theme     *string `validate:"omitempty,oneof=light dark"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type CreateHabitRequest struct {
	Name        string `validate:"required,notblank,max=100"`
	Description string `validate:"max=500"`
	Emoji       string `validate:"max=16"`
	Category    string `validate:"max=50"`
	Color       string `validate:"omitempty,hexcolor"`
}

type UpdateHabitRequest struct {
	Name        *string `validate:"omitempty,notblank,max=100"`
	Description *string `validate:"omitempty,max=500"`
	Emoji       *string `validate:"omitempty,notblank,max=16"`
	Category    *string `validate:"omitempty,notblank,max=50"`
	Color       *string `validate:"omitempty,hexcolor"`
	IsActive    *bool
}

type ListHabitsRequest struct {
	Active   *bool
	Category string `validate:"max=50"`
	Sort     string `validate:"omitempty,oneof=name streak created"`
	Limit    int    `validate:"gte=0,lte=1000"`
	Offset   int    `validate:"gte=0"`
}

type HabitsServiceI interface {
	CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error)
	GetUserHabits(ctx context.Context, uid uuid.UUID, req *ListHabitsRequest) ([]*entity.Habit, error)
	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)
	UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, req *UpdateHabitRequest) (*entity.Habit, error)
	// Ledger entries of the habit are removed with it
	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error
	GetCategories(ctx context.Context, uid uuid.UUID) ([]string, error)
}

type ToggleRequest struct {
	HabitID string `validate:"required,uuid"`
	// YYYY-MM-DD or RFC3339
	Date string `validate:"required"`
	// nil keeps the notes already stored
	Notes *string `validate:"omitempty,max=1000"`
}

type ProgressQuery struct {
	HabitID   string `validate:"omitempty,uuid"`
	StartDate string
	EndDate   string
}

type StatsRequest struct {
	HabitID string `validate:"omitempty,uuid"`
	// zero means the default window
	Days int `validate:"gte=0,lte=365"`
}

type TodayEntry struct {
	Habit      *entity.Habit
	Completed  bool
	Notes      string
	ProgressID *uuid.UUID
}

type Stats struct {
	CompletedDays  int
	TotalDays      int
	CompletionRate float64
	MissedDays     int
}

type Activity struct {
	Date      time.Time
	Completed bool
}

type Dashboard struct {
	TotalHabits      int
	ActiveHabits     int
	CompletedToday   int
	TotalCompletions int
	LongestStreak    int
	RecentActivity   []Activity
}

type ProgressServiceI interface {
	// Flips the ledger entry of (habit, date) or creates it completed,
	// then recomputes the habit statistics. Returns the ledger entry
	Toggle(ctx context.Context, uid uuid.UUID, req *ToggleRequest) (*entity.Progress, error)
	GetProgress(ctx context.Context, uid uuid.UUID, query *ProgressQuery) ([]entity.ProgressWithHabit, error)
	GetToday(ctx context.Context, uid uuid.UUID) ([]TodayEntry, error)
	GetStats(ctx context.Context, uid uuid.UUID, req *StatsRequest) (*Stats, error)
	GetCalendar(ctx context.Context, uid uuid.UUID, year, month int, habitID string) ([]entity.ProgressWithHabit, error)
	DeleteProgress(ctx context.Context, uid, progressID uuid.UUID) error
	GetDashboard(ctx context.Context, uid uuid.UUID) (*Dashboard, error)
}

type CreateShareRequest struct {
	Title       string `validate:"max=200"`
	Description string `validate:"max=1000"`
	// nil means true
	IncludeStats  *bool
	IncludeHabits *bool
	// nil means the link never expires
	ExpiresInDays *int `validate:"omitempty,min=1,max=365"`
}

type ShareUser struct {
	Name      string
	AvatarURL string
}

type ShareableTotals struct {
	TotalHabits      int
	TotalCompletions int
	LongestStreak    int
	AverageStreak    int
}

type TopHabit struct {
	Name          string
	Emoji         string
	CurrentStreak int
	LongestStreak int
}

type DayActivity struct {
	Completed int
	Total     int
}

type ShareableStats struct {
	User      ShareUser
	Stats     ShareableTotals
	TopHabits []TopHabit
	// keyed by YYYY-MM-DD
	ActivityChart map[string]DayActivity
	GeneratedAt   time.Time
}

type ShareLink struct {
	Share *entity.Share
	URL   string
}

// SharedView is what an anonymous visitor of a share link sees.
type SharedView struct {
	Title       string
	Description string
	User        ShareUser
	CreatedAt   time.Time
	Stats       *entity.ShareStats
	Habits      []entity.ShareHabit
}

type ShareServiceI interface {
	GetShareableStats(ctx context.Context, uid uuid.UUID) (*ShareableStats, error)
	CreateShare(ctx context.Context, uid uuid.UUID, req *CreateShareRequest) (*ShareLink, error)
	// Public. Fails with ErrShareExpired once the link is past its expiry
	GetSharedProgress(ctx context.Context, shareID string) (*SharedView, error)
	GetUserLinks(ctx context.Context, uid uuid.UUID) ([]ShareLink, error)
	DeleteShare(ctx context.Context, uid uuid.UUID, shareID string) error
}
