package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	AvatarURL    string
	Theme        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Habit carries three statistics derived from the progress ledger. They are
// overwritten on every ledger change and never edited directly.
type Habit struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Name             string
	Description      string
	Emoji            string
	Category         string
	Color            string
	IsActive         bool
	CurrentStreak    int
	LongestStreak    int
	TotalCompletions int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type HabitStats struct {
	CurrentStreak    int
	LongestStreak    int
	TotalCompletions int
}

// Progress is a single ledger entry. Date is always a UTC midnight.
type Progress struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	HabitID   uuid.UUID
	Date      time.Time
	Completed bool
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HabitSummary is the part of a habit joined onto ledger listings.
type HabitSummary struct {
	ID       uuid.UUID
	Name     string
	Emoji    string
	Color    string
	Category string
}

type ProgressWithHabit struct {
	Progress
	Habit *HabitSummary
}

type Share struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	ShareID       string
	Title         string
	Description   string
	IncludeStats  bool
	IncludeHabits bool
	Stats         *ShareStats
	Habits        []ShareHabit
	CreatedAt     time.Time
	ExpiresAt     *time.Time
}

type ShareStats struct {
	TotalHabits      int `json:"totalHabits"`
	TotalCompletions int `json:"totalCompletions"`
	LongestStreak    int `json:"longestStreak"`
}

type ShareHabit struct {
	Name          string `json:"name"`
	Emoji         string `json:"emoji"`
	CurrentStreak int    `json:"currentStreak"`
}

func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
