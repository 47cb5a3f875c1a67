package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/pkg/calendar"
	"github.com/limbo/habitrack/pkg/entity"
)

const (
	defaultShareTitle = "My Habit Progress"
	anonymousName     = "Anonymous User"
	topHabitsLimit    = 5
	activityChartDays = 30
)

type ShareService struct {
	usersRepo    repository.UsersRepositoryI
	habitsRepo   repository.HabitsRepositoryI
	progressRepo repository.ProgressRepositoryI
	sharesRepo   repository.SharesRepositoryI
	clientURL    string
	now          func() time.Time
	newShareID   func() string
}

type ShareRepos struct {
	Users    repository.UsersRepositoryI
	Habits   repository.HabitsRepositoryI
	Progress repository.ProgressRepositoryI
	Shares   repository.SharesRepositoryI
}

// NewShareService builds links as clientURL + "/share/" + shareID.
func NewShareService(repos ShareRepos, clientURL string, opts ...Option) *ShareService {
	if repos.Users == nil || repos.Habits == nil || repos.Progress == nil || repos.Shares == nil {
		log.Fatal("on share service provided nil repos")
	}
	o := applyOptions(opts)
	return &ShareService{
		usersRepo:    repos.Users,
		habitsRepo:   repos.Habits,
		progressRepo: repos.Progress,
		sharesRepo:   repos.Shares,
		clientURL:    strings.TrimRight(clientURL, "/"),
		now:          o.now,
		newShareID:   o.newShareID,
	}
}

func (ss *ShareService) shareURL(shareID string) string {
	return ss.clientURL + "/share/" + shareID
}

// activeHabits returns the caller's active habits, best current streak first.
func (ss *ShareService) activeHabits(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error) {
	active := true
	habits, err := ss.habitsRepo.List(ctx, uid, repository.HabitFilter{Active: &active, Sort: repository.SortByStreak})
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habits, nil
}

func (ss *ShareService) shareUser(ctx context.Context, uid uuid.UUID) (ShareUser, error) {
	user, err := ss.usersRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return ShareUser{Name: anonymousName}, nil
		}
		return ShareUser{}, errors.New("users repository error: " + err.Error())
	}
	name := user.Name
	if name == "" {
		name = anonymousName
	}
	return ShareUser{Name: name, AvatarURL: user.AvatarURL}, nil
}

func (ss *ShareService) GetShareableStats(ctx context.Context, uid uuid.UUID) (*ShareableStats, error) {
	user, err := ss.shareUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	habits, err := ss.activeHabits(ctx, uid)
	if err != nil {
		return nil, err
	}
	now := ss.now()
	today := calendar.Day(now)
	activity, err := ss.progressRepo.List(ctx, uid, repository.ProgressFilter{
		From: calendar.AddDays(today, -activityChartDays),
	})
	if err != nil {
		return nil, errors.New("progress repository error: " + err.Error())
	}

	res := &ShareableStats{
		User:          user,
		TopHabits:     make([]TopHabit, 0, min(len(habits), topHabitsLimit)),
		ActivityChart: make(map[string]DayActivity),
		GeneratedAt:   now.UTC(),
	}
	res.Stats.TotalHabits = len(habits)
	currentSum := 0
	for i, h := range habits {
		res.Stats.TotalCompletions += h.TotalCompletions
		res.Stats.LongestStreak = max(res.Stats.LongestStreak, h.LongestStreak)
		currentSum += h.CurrentStreak
		if i < topHabitsLimit {
			res.TopHabits = append(res.TopHabits, TopHabit{
				Name:          h.Name,
				Emoji:         h.Emoji,
				CurrentStreak: h.CurrentStreak,
				LongestStreak: h.LongestStreak,
			})
		}
	}
	if len(habits) > 0 {
		res.Stats.AverageStreak = int(math.Round(float64(currentSum) / float64(len(habits))))
	}
	for _, e := range activity {
		key := calendar.Format(e.Date)
		day := res.ActivityChart[key]
		day.Total++
		if e.Completed {
			day.Completed++
		}
		res.ActivityChart[key] = day
	}
	return res, nil
}

func (ss *ShareService) CreateShare(ctx context.Context, uid uuid.UUID, req *CreateShareRequest) (*ShareLink, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	habits, err := ss.activeHabits(ctx, uid)
	if err != nil {
		return nil, err
	}
	share := &entity.Share{
		UserID:        uid,
		ShareID:       ss.newShareID(),
		Title:         orDefault(req.Title, defaultShareTitle),
		Description:   req.Description,
		IncludeStats:  req.IncludeStats == nil || *req.IncludeStats,
		IncludeHabits: req.IncludeHabits == nil || *req.IncludeHabits,
	}
	if share.IncludeStats && len(habits) > 0 {
		stats := &entity.ShareStats{TotalHabits: len(habits)}
		for _, h := range habits {
			stats.TotalCompletions += h.TotalCompletions
			stats.LongestStreak = max(stats.LongestStreak, h.LongestStreak)
		}
		share.Stats = stats
	}
	if share.IncludeHabits && len(habits) > 0 {
		share.Habits = make([]entity.ShareHabit, 0, topHabitsLimit)
		for _, h := range habits[:min(len(habits), topHabitsLimit)] {
			share.Habits = append(share.Habits, entity.ShareHabit{
				Name:          h.Name,
				Emoji:         h.Emoji,
				CurrentStreak: h.CurrentStreak,
			})
		}
	}
	if req.ExpiresInDays != nil {
		expires := ss.now().UTC().AddDate(0, 0, *req.ExpiresInDays)
		share.ExpiresAt = &expires
	}
	created, err := ss.sharesRepo.Create(ctx, share)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("shares repository error: " + err.Error())
	}
	return &ShareLink{Share: created, URL: ss.shareURL(created.ShareID)}, nil
}

func (ss *ShareService) GetSharedProgress(ctx context.Context, shareID string) (*SharedView, error) {
	share, err := ss.sharesRepo.FindByShareID(ctx, shareID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrShareNotFound) {
			return nil, err
		}
		return nil, errors.New("shares repository error: " + err.Error())
	}
	if share.Expired(ss.now()) {
		return nil, errorvalues.ErrShareExpired
	}
	user, err := ss.shareUser(ctx, share.UserID)
	if err != nil {
		return nil, err
	}
	view := &SharedView{
		Title:       share.Title,
		Description: share.Description,
		User:        user,
		CreatedAt:   share.CreatedAt,
	}
	if share.IncludeStats {
		view.Stats = share.Stats
	}
	if share.IncludeHabits {
		view.Habits = share.Habits
	}
	return view, nil
}

func (ss *ShareService) GetUserLinks(ctx context.Context, uid uuid.UUID) ([]ShareLink, error) {
	shares, err := ss.sharesRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, errors.New("shares repository error: " + err.Error())
	}
	links := make([]ShareLink, 0, len(shares))
	for _, s := range shares {
		links = append(links, ShareLink{Share: s, URL: ss.shareURL(s.ShareID)})
	}
	return links, nil
}

func (ss *ShareService) DeleteShare(ctx context.Context, uid uuid.UUID, shareID string) error {
	err := ss.sharesRepo.Delete(ctx, shareID, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrShareNotFound) {
			return err
		}
		return errors.New("shares repository error: " + err.Error())
	}
	return nil
}
