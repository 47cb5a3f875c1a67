package service_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/pkg/entity"
)

type ledgerKey struct {
	uid     uuid.UUID
	habitID uuid.UUID
	date    time.Time
}

// memLedger keeps habits and progress entries in memory. WithinTx holds a
// single mutex for the whole callback and restores a snapshot when the
// callback fails.
type memLedger struct {
	mu      sync.Mutex
	habits  map[uuid.UUID]entity.Habit
	entries map[ledgerKey]entity.Progress
}

func newMemLedger(habits ...entity.Habit) *memLedger {
	l := &memLedger{
		habits:  make(map[uuid.UUID]entity.Habit),
		entries: make(map[ledgerKey]entity.Progress),
	}
	for _, h := range habits {
		l.habits[h.ID] = h
	}
	return l
}

func (l *memLedger) habit(id uuid.UUID) entity.Habit {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.habits[id]
}

func (l *memLedger) WithinTx(ctx context.Context, fn func(q repository.ProgressQueriesI) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	habits := maps.Clone(l.habits)
	entries := maps.Clone(l.entries)
	if err := fn(&memQueries{l: l}); err != nil {
		l.habits, l.entries = habits, entries
		return err
	}
	return nil
}

func (l *memLedger) GetByID(ctx context.Context, id uuid.UUID) (*entity.Progress, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.entries {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errorvalues.ErrProgressNotFound
}

func (l *memLedger) List(ctx context.Context, uid uuid.UUID, filter repository.ProgressFilter) ([]entity.ProgressWithHabit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := []entity.ProgressWithHabit{}
	for _, p := range l.entries {
		switch {
		case p.UserID != uid:
			continue
		case filter.HabitID != nil && p.HabitID != *filter.HabitID:
			continue
		case !filter.From.IsZero() && p.Date.Before(filter.From):
			continue
		case !filter.To.IsZero() && p.Date.After(filter.To):
			continue
		}
		h := l.habits[p.HabitID]
		res = append(res, entity.ProgressWithHabit{
			Progress: p,
			Habit:    &entity.HabitSummary{ID: h.ID, Name: h.Name, Emoji: h.Emoji, Color: h.Color, Category: h.Category},
		})
	}
	slices.SortFunc(res, func(a, b entity.ProgressWithHabit) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return slices.Compare(a.HabitID[:], b.HabitID[:])
	})
	return res, nil
}

// memQueries runs with memLedger.mu held.
type memQueries struct {
	l *memLedger
}

func (q *memQueries) LockHabit(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	h, ok := q.l.habits[habitID]
	if !ok {
		return nil, errorvalues.ErrHabitNotFound
	}
	return &h, nil
}

func (q *memQueries) FindByDate(ctx context.Context, uid, habitID uuid.UUID, date time.Time) (*entity.Progress, error) {
	p, ok := q.l.entries[ledgerKey{uid, habitID, date}]
	if !ok {
		return nil, errorvalues.ErrProgressNotFound
	}
	return &p, nil
}

func (q *memQueries) Create(ctx context.Context, progress *entity.Progress) (*entity.Progress, error) {
	key := ledgerKey{progress.UserID, progress.HabitID, progress.Date}
	if _, ok := q.l.entries[key]; ok {
		return nil, errorvalues.ErrProgressConflict
	}
	p := *progress
	p.ID = uuid.New()
	q.l.entries[key] = p
	return &p, nil
}

func (q *memQueries) Update(ctx context.Context, id uuid.UUID, completed bool, notes string) (*entity.Progress, error) {
	for key, p := range q.l.entries {
		if p.ID == id {
			p.Completed = completed
			p.Notes = notes
			q.l.entries[key] = p
			return &p, nil
		}
	}
	return nil, errorvalues.ErrProgressNotFound
}

func (q *memQueries) Delete(ctx context.Context, id, uid uuid.UUID) error {
	for key, p := range q.l.entries {
		if p.ID == id && p.UserID == uid {
			delete(q.l.entries, key)
			return nil
		}
	}
	return errorvalues.ErrProgressNotFound
}

func (q *memQueries) CompletedDates(ctx context.Context, uid, habitID uuid.UUID) ([]time.Time, error) {
	dates := []time.Time{}
	for key, p := range q.l.entries {
		if key.uid == uid && key.habitID == habitID && p.Completed {
			dates = append(dates, key.date)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return b.Compare(a) })
	return dates, nil
}

func (q *memQueries) UpdateHabitStats(ctx context.Context, habitID uuid.UUID, stats entity.HabitStats) error {
	h, ok := q.l.habits[habitID]
	if !ok {
		return errorvalues.ErrHabitNotFound
	}
	h.CurrentStreak = stats.CurrentStreak
	h.LongestStreak = stats.LongestStreak
	h.TotalCompletions = stats.TotalCompletions
	q.l.habits[habitID] = h
	return nil
}
