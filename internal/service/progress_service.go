package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/internal/observability"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/internal/streak"
	"github.com/limbo/habitrack/pkg/calendar"
	"github.com/limbo/habitrack/pkg/entity"
)

const (
	defaultStatsDays   = 30
	recentActivityDays = 7
)

type ProgressService struct {
	habitsRepo   repository.HabitsRepositoryI
	progressRepo repository.ProgressRepositoryI
	now          func() time.Time
}

func NewProgressService(habitsRepo repository.HabitsRepositoryI, progressRepo repository.ProgressRepositoryI, opts ...Option) *ProgressService {
	if habitsRepo == nil || progressRepo == nil {
		log.Fatal("on progress service provided nil repos")
	}
	o := applyOptions(opts)
	return &ProgressService{
		habitsRepo:   habitsRepo,
		progressRepo: progressRepo,
		now:          o.now,
	}
}

func (ps *ProgressService) today() time.Time {
	return calendar.Today(ps.now)
}

func parseDate(s string) (time.Time, error) {
	d, err := calendar.Parse(s)
	if err != nil {
		return time.Time{}, errors.Join(errorvalues.ErrValidation, err)
	}
	return d, nil
}

func parseOptionalHabitID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, validationError("malformed habit id")
	}
	return &id, nil
}

// recomputeStats derives the habit statistics from the ledger as it is
// inside the current transaction and stores them on the habit.
func recomputeStats(ctx context.Context, q repository.ProgressQueriesI, uid, habitID uuid.UUID, today time.Time) error {
	dates, err := q.CompletedDates(ctx, uid, habitID)
	if err != nil {
		return err
	}
	res := streak.Calculate(dates, today)
	return q.UpdateHabitStats(ctx, habitID, entity.HabitStats{
		CurrentStreak:    res.Current,
		LongestStreak:    res.Longest,
		TotalCompletions: len(dates),
	})
}

// flip creates a completed entry for the key or inverts the stored one.
// An insert that loses the race for the key falls through to the update.
func flip(ctx context.Context, q repository.ProgressQueriesI, uid, habitID uuid.UUID, date time.Time, notes *string) (*entity.Progress, string, error) {
	recovered := false
	existing, err := q.FindByDate(ctx, uid, habitID, date)
	if errors.Is(err, errorvalues.ErrProgressNotFound) {
		entry := &entity.Progress{
			UserID:    uid,
			HabitID:   habitID,
			Date:      date,
			Completed: true,
		}
		if notes != nil {
			entry.Notes = *notes
		}
		created, createErr := q.Create(ctx, entry)
		if createErr == nil {
			return created, observability.ToggleCreated, nil
		}
		if !errors.Is(createErr, errorvalues.ErrProgressConflict) {
			return nil, "", createErr
		}
		recovered = true
		existing, err = q.FindByDate(ctx, uid, habitID, date)
	}
	if err != nil {
		return nil, "", err
	}
	newNotes := existing.Notes
	if notes != nil {
		newNotes = *notes
	}
	updated, err := q.Update(ctx, existing.ID, !existing.Completed, newNotes)
	if err != nil {
		return nil, "", err
	}
	switch {
	case recovered:
		return updated, observability.ToggleConflictRecovered, nil
	case updated.Completed:
		return updated, observability.ToggleCompleted, nil
	default:
		return updated, observability.ToggleUncompleted, nil
	}
}

func (ps *ProgressService) Toggle(ctx context.Context, uid uuid.UUID, req *ToggleRequest) (*entity.Progress, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	habitID, err := uuid.Parse(req.HabitID)
	if err != nil {
		return nil, validationError("malformed habit id")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	var (
		result  *entity.Progress
		outcome string
	)
	err = ps.progressRepo.WithinTx(ctx, func(q repository.ProgressQueriesI) error {
		habit, err := q.LockHabit(ctx, habitID)
		if err != nil {
			return err
		}
		if habit.UserID != uid {
			return errorvalues.ErrWrongOwner
		}
		result, outcome, err = flip(ctx, q, uid, habitID, date, req.Notes)
		if err != nil {
			return err
		}
		return recomputeStats(ctx, q, uid, habitID, ps.today())
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) || errors.Is(err, errorvalues.ErrWrongOwner) {
			return nil, err
		}
		return nil, errors.New("toggling progress error: " + err.Error())
	}
	observability.RecordToggle(outcome)
	return result, nil
}

func (ps *ProgressService) GetProgress(ctx context.Context, uid uuid.UUID, query *ProgressQuery) ([]entity.ProgressWithHabit, error) {
	if err := validateStruct(query); err != nil {
		return nil, err
	}
	habitID, err := parseOptionalHabitID(query.HabitID)
	if err != nil {
		return nil, err
	}
	filter := repository.ProgressFilter{HabitID: habitID}
	if query.StartDate != "" {
		if filter.From, err = parseDate(query.StartDate); err != nil {
			return nil, err
		}
	}
	if query.EndDate != "" {
		if filter.To, err = parseDate(query.EndDate); err != nil {
			return nil, err
		}
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, validationError("start date is after end date")
	}
	return ps.list(ctx, uid, filter)
}

func (ps *ProgressService) list(ctx context.Context, uid uuid.UUID, filter repository.ProgressFilter) ([]entity.ProgressWithHabit, error) {
	entries, err := ps.progressRepo.List(ctx, uid, filter)
	if err != nil {
		return nil, errors.New("progress repository error: " + err.Error())
	}
	return entries, nil
}

func (ps *ProgressService) GetToday(ctx context.Context, uid uuid.UUID) ([]TodayEntry, error) {
	active := true
	habits, err := ps.habitsRepo.List(ctx, uid, repository.HabitFilter{Active: &active, Sort: repository.SortByCreated})
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	today := ps.today()
	entries, err := ps.list(ctx, uid, repository.ProgressFilter{From: today, To: today})
	if err != nil {
		return nil, err
	}
	byHabit := make(map[uuid.UUID]entity.ProgressWithHabit, len(entries))
	for _, e := range entries {
		byHabit[e.HabitID] = e
	}
	result := make([]TodayEntry, 0, len(habits))
	for _, h := range habits {
		item := TodayEntry{Habit: h}
		if e, ok := byHabit[h.ID]; ok {
			id := e.ID
			item.Completed = e.Completed
			item.Notes = e.Notes
			item.ProgressID = &id
		}
		result = append(result, item)
	}
	return result, nil
}

// GetStats covers the window of Days calendar days ending today. A day is
// completed when at least one matching entry of that day is completed.
func (ps *ProgressService) GetStats(ctx context.Context, uid uuid.UUID, req *StatsRequest) (*Stats, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	habitID, err := parseOptionalHabitID(req.HabitID)
	if err != nil {
		return nil, err
	}
	days := req.Days
	if days == 0 {
		days = defaultStatsDays
	}
	today := ps.today()
	entries, err := ps.list(ctx, uid, repository.ProgressFilter{
		HabitID: habitID,
		From:    calendar.AddDays(today, -(days - 1)),
		To:      today,
	})
	if err != nil {
		return nil, err
	}
	completed := make(map[time.Time]struct{})
	for _, e := range entries {
		if e.Completed {
			completed[calendar.Day(e.Date)] = struct{}{}
		}
	}
	completedDays := len(completed)
	rate := float64(completedDays) / float64(days) * 100
	return &Stats{
		CompletedDays:  completedDays,
		TotalDays:      days,
		CompletionRate: math.Round(rate*100) / 100,
		MissedDays:     days - completedDays,
	}, nil
}

func (ps *ProgressService) GetCalendar(ctx context.Context, uid uuid.UUID, year, month int, habitID string) ([]entity.ProgressWithHabit, error) {
	first, last, err := calendar.MonthRange(year, month)
	if err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	hid, err := parseOptionalHabitID(habitID)
	if err != nil {
		return nil, err
	}
	return ps.list(ctx, uid, repository.ProgressFilter{HabitID: hid, From: first, To: last})
}

// DeleteProgress removes a ledger entry and recomputes the statistics of
// its habit in the same transaction.
func (ps *ProgressService) DeleteProgress(ctx context.Context, uid, progressID uuid.UUID) error {
	entry, err := ps.progressRepo.GetByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrProgressNotFound) {
			return err
		}
		return errors.New("progress repository error: " + err.Error())
	}
	if entry.UserID != uid {
		return errorvalues.ErrProgressNotFound
	}
	err = ps.progressRepo.WithinTx(ctx, func(q repository.ProgressQueriesI) error {
		if _, err := q.LockHabit(ctx, entry.HabitID); err != nil {
			if errors.Is(err, errorvalues.ErrHabitNotFound) {
				return errorvalues.ErrProgressNotFound
			}
			return err
		}
		if err := q.Delete(ctx, progressID, uid); err != nil {
			return err
		}
		return recomputeStats(ctx, q, uid, entry.HabitID, ps.today())
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrProgressNotFound) {
			return err
		}
		return errors.New("deleting progress error: " + err.Error())
	}
	return nil
}

func (ps *ProgressService) GetDashboard(ctx context.Context, uid uuid.UUID) (*Dashboard, error) {
	habits, err := ps.habitsRepo.List(ctx, uid, repository.HabitFilter{})
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	today := ps.today()
	recent, err := ps.list(ctx, uid, repository.ProgressFilter{
		From: calendar.AddDays(today, -(recentActivityDays - 1)),
		To:   today,
	})
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		TotalHabits:    len(habits),
		RecentActivity: make([]Activity, 0, len(recent)),
	}
	for _, h := range habits {
		if h.IsActive {
			d.ActiveHabits++
		}
		d.TotalCompletions += h.TotalCompletions
		d.LongestStreak = max(d.LongestStreak, h.LongestStreak)
	}
	for _, e := range recent {
		if e.Completed && e.Date.Equal(today) {
			d.CompletedToday++
		}
		d.RecentActivity = append(d.RecentActivity, Activity{Date: e.Date, Completed: e.Completed})
	}
	return d, nil
}
