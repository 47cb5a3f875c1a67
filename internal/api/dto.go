package api

import (
	"time"

	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/pkg/calendar"
	"github.com/limbo/habitrack/pkg/entity"
)

// Request bodies

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Category    string `json:"category"`
	Color       string `json:"color"`
}

type UpdateHabitRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Emoji       *string `json:"emoji"`
	Category    *string `json:"category"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"is_active"`
}

type ToggleRequest struct {
	HabitID string  `json:"habitId"`
	Date    string  `json:"date"`
	Notes   *string `json:"notes"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Theme     *string `json:"theme"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type CreateShareRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	IncludeStats  *bool  `json:"includeStats"`
	IncludeHabits *bool  `json:"includeHabits"`
	ExpiresInDays *int   `json:"expiresInDays"`
}

// Response bodies

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type HabitResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Emoji            string    `json:"emoji"`
	Category         string    `json:"category"`
	Color            string    `json:"color"`
	IsActive         bool      `json:"is_active"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalCompletions int       `json:"total_completions"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type HabitSummaryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	Color    string `json:"color"`
	Category string `json:"category"`
}

type ProgressResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// only on listings
	Habit *HabitSummaryResponse `json:"habits,omitempty"`
}

type TodayEntryResponse struct {
	Habit      HabitResponse `json:"habit"`
	Completed  bool          `json:"completed"`
	Notes      string        `json:"notes"`
	ProgressID *string       `json:"progressId"`
}

type StatsResponse struct {
	CompletedDays  int     `json:"completedDays"`
	TotalDays      int     `json:"totalDays"`
	CompletionRate float64 `json:"completionRate"`
	MissedDays     int     `json:"missedDays"`
}

type ActivityResponse struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type DashboardResponse struct {
	TotalHabits      int                `json:"totalHabits"`
	ActiveHabits     int                `json:"activeHabits"`
	CompletedToday   int                `json:"completedToday"`
	TotalCompletions int                `json:"totalCompletions"`
	LongestStreak    int                `json:"longestStreak"`
	RecentActivity   []ActivityResponse `json:"recentActivity"`
}

type ShareUserResponse struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type ShareableTotalsResponse struct {
	TotalHabits      int `json:"totalHabits"`
	TotalCompletions int `json:"totalCompletions"`
	LongestStreak    int `json:"longestStreak"`
	AverageStreak    int `json:"averageStreak"`
}

type TopHabitResponse struct {
	Name          string `json:"name"`
	Emoji         string `json:"emoji"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

type DayActivityResponse struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type ShareableStatsResponse struct {
	User          ShareUserResponse              `json:"user"`
	Stats         ShareableTotalsResponse        `json:"stats"`
	TopHabits     []TopHabitResponse             `json:"topHabits"`
	ActivityChart map[string]DayActivityResponse `json:"activityChart"`
	GeneratedAt   time.Time                      `json:"generatedAt"`
}

type ShareRecordResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	ShareID       string              `json:"share_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	IncludeStats  bool                `json:"include_stats"`
	IncludeHabits bool                `json:"include_habits"`
	Stats         *entity.ShareStats  `json:"stats"`
	Habits        []entity.ShareHabit `json:"habits"`
	CreatedAt     time.Time           `json:"created_at"`
	ExpiresAt     *time.Time          `json:"expires_at"`
}

type CreateShareResponse struct {
	ShareID     string              `json:"shareId"`
	ShareURL    string              `json:"shareUrl"`
	ShareRecord ShareRecordResponse `json:"shareRecord"`
}

type ShareLinkResponse struct {
	ShareID     string     `json:"share_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ShareURL    string     `json:"shareUrl"`
}

type SharedViewResponse struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	User        ShareUserResponse   `json:"user"`
	CreatedAt   time.Time           `json:"createdAt"`
	Stats       *entity.ShareStats  `json:"stats,omitempty"`
	Habits      []entity.ShareHabit `json:"habits,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Mapping

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Theme:     u.Theme,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toHabitResponse(h *entity.Habit) HabitResponse {
	return HabitResponse{
		ID:               h.ID.String(),
		UserID:           h.UserID.String(),
		Name:             h.Name,
		Description:      h.Description,
		Emoji:            h.Emoji,
		Category:         h.Category,
		Color:            h.Color,
		IsActive:         h.IsActive,
		CurrentStreak:    h.CurrentStreak,
		LongestStreak:    h.LongestStreak,
		TotalCompletions: h.TotalCompletions,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

func toHabitsResponse(habits []*entity.Habit) []HabitResponse {
	res := make([]HabitResponse, 0, len(habits))
	for _, h := range habits {
		res = append(res, toHabitResponse(h))
	}
	return res
}

func toProgressResponse(p *entity.Progress) ProgressResponse {
	return ProgressResponse{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		HabitID:   p.HabitID.String(),
		Date:      calendar.Format(p.Date),
		Completed: p.Completed,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProgressListResponse(entries []entity.ProgressWithHabit) []ProgressResponse {
	res := make([]ProgressResponse, 0, len(entries))
	for i := range entries {
		item := toProgressResponse(&entries[i].Progress)
		if h := entries[i].Habit; h != nil {
			item.Habit = &HabitSummaryResponse{
				ID:       h.ID.String(),
				Name:     h.Name,
				Emoji:    h.Emoji,
				Color:    h.Color,
				Category: h.Category,
			}
		}
		res = append(res, item)
	}
	return res
}

func toTodayResponse(entries []service.TodayEntry) []TodayEntryResponse {
	res := make([]TodayEntryResponse, 0, len(entries))
	for _, e := range entries {
		item := TodayEntryResponse{
			Habit:     toHabitResponse(e.Habit),
			Completed: e.Completed,
			Notes:     e.Notes,
		}
		if e.ProgressID != nil {
			id := e.ProgressID.String()
			item.ProgressID = &id
		}
		res = append(res, item)
	}
	return res
}

func toStatsResponse(s *service.Stats) StatsResponse {
	return StatsResponse{
		CompletedDays:  s.CompletedDays,
		TotalDays:      s.TotalDays,
		CompletionRate: s.CompletionRate,
		MissedDays:     s.MissedDays,
	}
}

func toDashboardResponse(d *service.Dashboard) DashboardResponse {
	res := DashboardResponse{
		TotalHabits:      d.TotalHabits,
		ActiveHabits:     d.ActiveHabits,
		CompletedToday:   d.CompletedToday,
		TotalCompletions: d.TotalCompletions,
		LongestStreak:    d.LongestStreak,
		RecentActivity:   make([]ActivityResponse, 0, len(d.RecentActivity)),
	}
	for _, a := range d.RecentActivity {
		res.RecentActivity = append(res.RecentActivity, ActivityResponse{Date: calendar.Format(a.Date), Completed: a.Completed})
	}
	return res
}

func toShareUserResponse(u service.ShareUser) ShareUserResponse {
	return ShareUserResponse{Name: u.Name, AvatarURL: u.AvatarURL}
}

func toShareableStatsResponse(s *service.ShareableStats) ShareableStatsResponse {
	res := ShareableStatsResponse{
		User: toShareUserResponse(s.User),
		Stats: ShareableTotalsResponse{
			TotalHabits:      s.Stats.TotalHabits,
			TotalCompletions: s.Stats.TotalCompletions,
			LongestStreak:    s.Stats.LongestStreak,
			AverageStreak:    s.Stats.AverageStreak,
		},
		TopHabits:     make([]TopHabitResponse, 0, len(s.TopHabits)),
		ActivityChart: make(map[string]DayActivityResponse, len(s.ActivityChart)),
		GeneratedAt:   s.GeneratedAt,
	}
	for _, h := range s.TopHabits {
		res.TopHabits = append(res.TopHabits, TopHabitResponse(h))
	}
	for day, a := range s.ActivityChart {
		res.ActivityChart[day] = DayActivityResponse(a)
	}
	return res
}

func toShareRecordResponse(s *entity.Share) ShareRecordResponse {
	return ShareRecordResponse{
		ID:            s.ID.String(),
		UserID:        s.UserID.String(),
		ShareID:       s.ShareID,
		Title:         s.Title,
		Description:   s.Description,
		IncludeStats:  s.IncludeStats,
		IncludeHabits: s.IncludeHabits,
		Stats:         s.Stats,
		Habits:        s.Habits,
		CreatedAt:     s.CreatedAt,
		ExpiresAt:     s.ExpiresAt,
	}
}

func toCreateShareResponse(l *service.ShareLink) CreateShareResponse {
	return CreateShareResponse{
		ShareID:     l.Share.ShareID,
		ShareURL:    l.URL,
		ShareRecord: toShareRecordResponse(l.Share),
	}
}

func toShareLinksResponse(links []service.ShareLink) []ShareLinkResponse {
	res := make([]ShareLinkResponse, 0, len(links))
	for _, l := range links {
		res = append(res, ShareLinkResponse{
			ShareID:     l.Share.ShareID,
			Title:       l.Share.Title,
			Description: l.Share.Description,
			CreatedAt:   l.Share.CreatedAt,
			ExpiresAt:   l.Share.ExpiresAt,
			ShareURL:    l.URL,
		})
	}
	return res
}

func toSharedViewResponse(v *service.SharedView) SharedViewResponse {
	return SharedViewResponse{
		Title:       v.Title,
		Description: v.Description,
		User:        toShareUserResponse(v.User),
		CreatedAt:   v.CreatedAt,
		Stats:       v.Stats,
		Habits:      v.Habits,
	}
}
