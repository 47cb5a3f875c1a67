package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/internal/repository/mocks"
	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/internal/streak"
	"github.com/limbo/habitrack/pkg/calendar"
	"github.com/limbo/habitrack/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)
	today    = calendar.Day(fixedNow)
	clock    = service.WithClock(func() time.Time { return fixedNow })
)

func date(s string) time.Time {
	d, err := calendar.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newLedgerHabit(owner uuid.UUID) entity.Habit {
	return entity.Habit{ID: uuid.New(), UserID: owner, Name: "Read", Emoji: "📚", IsActive: true}
}

func toggle(t *testing.T, ps *service.ProgressService, habit uuid.UUID, day string, notes *string) *entity.Progress {
	t.Helper()
	p, err := ps.Toggle(context.Background(), userID, &service.ToggleRequest{HabitID: habit.String(), Date: day, Notes: notes})
	require.NoError(t, err)
	return p
}

// expectedStats recomputes habit statistics from scratch over the ledger.
func expectedStats(t *testing.T, ledger *memLedger, habit uuid.UUID) entity.HabitStats {
	t.Helper()
	entries, err := ledger.List(context.Background(), userID, repository.ProgressFilter{HabitID: &habit})
	require.NoError(t, err)
	dates := []time.Time{}
	for _, e := range entries {
		if e.Completed {
			dates = append(dates, e.Date)
		}
	}
	res := streak.Calculate(dates, today)
	return entity.HabitStats{CurrentStreak: res.Current, LongestStreak: res.Longest, TotalCompletions: len(dates)}
}

func statsOf(h entity.Habit) entity.HabitStats {
	return entity.HabitStats{CurrentStreak: h.CurrentStreak, LongestStreak: h.LongestStreak, TotalCompletions: h.TotalCompletions}
}

func TestToggleOnLedger(t *testing.T) {
	habit := newLedgerHabit(userID)
	ledger := newMemLedger(habit)
	ps := service.NewProgressService(&habitRepoMock{}, ledger, clock)

	t.Run("first toggle creates completed entry", func(t *testing.T) {
		p := toggle(t, ps, habit.ID, "2026-10-15", nil)
		assert.True(t, p.Completed)
		assert.Equal(t, today, p.Date)
		assert.Equal(t, entity.HabitStats{CurrentStreak: 1, LongestStreak: 1, TotalCompletions: 1}, statsOf(ledger.habit(habit.ID)))
	})
	t.Run("second toggle flips it back", func(t *testing.T) {
		p := toggle(t, ps, habit.ID, "2026-10-15", nil)
		assert.False(t, p.Completed)
		assert.Equal(t, entity.HabitStats{}, statsOf(ledger.habit(habit.ID)))
		entries, _ := ledger.List(context.Background(), userID, repository.ProgressFilter{HabitID: &habit.ID})
		assert.Len(t, entries, 1)
	})
	t.Run("timestamps collapse onto the UTC date", func(t *testing.T) {
		p := toggle(t, ps, habit.ID, "2026-10-15T23:10:00Z", nil)
		assert.True(t, p.Completed)
		assert.Equal(t, today, p.Date)
	})
	t.Run("streak through yesterday", func(t *testing.T) {
		toggle(t, ps, habit.ID, "2026-10-14", nil)
		toggle(t, ps, habit.ID, "2026-10-13", nil)
		toggle(t, ps, habit.ID, "2026-10-10", nil)
		assert.Equal(t, entity.HabitStats{CurrentStreak: 3, LongestStreak: 3, TotalCompletions: 4}, statsOf(ledger.habit(habit.ID)))
	})
	t.Run("removing today keeps current alive through yesterday", func(t *testing.T) {
		toggle(t, ps, habit.ID, "2026-10-15", nil)
		assert.Equal(t, entity.HabitStats{CurrentStreak: 2, LongestStreak: 2, TotalCompletions: 3}, statsOf(ledger.habit(habit.ID)))
	})
	t.Run("notes are kept unless given", func(t *testing.T) {
		p := toggle(t, ps, habit.ID, "2026-10-01", strPtr("felt good"))
		assert.Equal(t, "felt good", p.Notes)
		p = toggle(t, ps, habit.ID, "2026-10-01", nil)
		assert.False(t, p.Completed)
		assert.Equal(t, "felt good", p.Notes)
		p = toggle(t, ps, habit.ID, "2026-10-01", strPtr(""))
		assert.True(t, p.Completed)
		assert.Empty(t, p.Notes)
	})
	t.Run("future date", func(t *testing.T) {
		p := toggle(t, ps, habit.ID, "2026-10-20", nil)
		assert.True(t, p.Completed)
		assert.Equal(t, 0, ledger.habit(habit.ID).CurrentStreak)
		toggle(t, ps, habit.ID, "2026-10-20", nil)
	})
	t.Run("stats always match the ledger", func(t *testing.T) {
		assert.Equal(t, expectedStats(t, ledger, habit.ID), statsOf(ledger.habit(habit.ID)))
	})
}

func TestToggleTwiceRestoresState(t *testing.T) {
	habit := newLedgerHabit(userID)
	ledger := newMemLedger(habit)
	ps := service.NewProgressService(&habitRepoMock{}, ledger, clock)
	for _, d := range []string{"2026-10-15", "2026-10-14", "2026-10-12", "2026-10-11", "2026-10-10"} {
		toggle(t, ps, habit.ID, d, nil)
	}
	before := statsOf(ledger.habit(habit.ID))
	require.Equal(t, entity.HabitStats{CurrentStreak: 2, LongestStreak: 3, TotalCompletions: 5}, before)

	for _, d := range []string{"2026-10-13", "2026-10-14", "2026-09-01", "2026-10-16"} {
		t.Run(d, func(t *testing.T) {
			first := toggle(t, ps, habit.ID, d, nil)
			second := toggle(t, ps, habit.ID, d, nil)
			assert.Equal(t, first.ID, second.ID)
			assert.NotEqual(t, first.Completed, second.Completed)
			assert.Equal(t, expectedStats(t, ledger, habit.ID), statsOf(ledger.habit(habit.ID)))
		})
	}
	t.Run("entries that existed before are back", func(t *testing.T) {
		assert.Equal(t, before, statsOf(ledger.habit(habit.ID)))
	})
}

func TestToggleConcurrent(t *testing.T) {
	habit := newLedgerHabit(userID)
	ledger := newMemLedger(habit)
	ps := service.NewProgressService(&habitRepoMock{}, ledger, clock)
	var wg sync.WaitGroup
	for range 9 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ps.Toggle(context.Background(), userID, &service.ToggleRequest{HabitID: habit.ID.String(), Date: "2026-10-15"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	entries, err := ledger.List(context.Background(), userID, repository.ProgressFilter{HabitID: &habit.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Completed)
	assert.Equal(t, 1, ledger.habit(habit.ID).TotalCompletions)
}

func TestToggleRejected(t *testing.T) {
	habit := newLedgerHabit(userID)
	foreign := newLedgerHabit(uuid.New())
	ledger := newMemLedger(habit, foreign)
	ps := service.NewProgressService(&habitRepoMock{}, ledger, clock)
	ctx := context.Background()
	testCases := []struct {
		Desc  string
		Req   service.ToggleRequest
		Error error
	}{
		{Desc: "missing habit id", Req: service.ToggleRequest{Date: "2026-10-15"}, Error: errorvalues.ErrValidation},
		{Desc: "malformed habit id", Req: service.ToggleRequest{HabitID: "abc", Date: "2026-10-15"}, Error: errorvalues.ErrValidation},
		{Desc: "missing date", Req: service.ToggleRequest{HabitID: habit.ID.String()}, Error: errorvalues.ErrValidation},
		{Desc: "unparsable date", Req: service.ToggleRequest{HabitID: habit.ID.String(), Date: "15.10.2026"}, Error: errorvalues.ErrInvalidDate},
		{Desc: "unknown habit", Req: service.ToggleRequest{HabitID: uuid.NewString(), Date: "2026-10-15"}, Error: errorvalues.ErrHabitNotFound},
		{Desc: "habit of another user", Req: service.ToggleRequest{HabitID: foreign.ID.String(), Date: "2026-10-15"}, Error: errorvalues.ErrWrongOwner},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			_, err := ps.Toggle(ctx, userID, &tc.Req)
			assert.ErrorIs(t, err, tc.Error)
		})
	}
	entries, err := ledger.List(ctx, userID, repository.ProgressFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestToggleWithMocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProgressRepositoryI(ctrl)
	queries := mocks.NewMockProgressQueriesI(ctrl)
	ps := service.NewProgressService(mocks.NewMockHabitsRepositoryI(ctrl), repo, clock)
	ctx := context.Background()
	owned := &entity.Habit{ID: habitID, UserID: userID}
	existing := &entity.Progress{ID: uuid.New(), UserID: userID, HabitID: habitID, Date: today, Completed: true, Notes: "n"}
	runTx := func(ctx context.Context, fn func(repository.ProgressQueriesI) error) error {
		return fn(queries)
	}
	testCases := []struct {
		Desc         string
		Error        error
		Completed    bool
		MockPrepFunc func()
	}{
		{
			Desc:      "lost insert race falls back to update",
			Completed: false,
			MockPrepFunc: func() {
				repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				gomock.InOrder(
					queries.EXPECT().LockHabit(gomock.Any(), habitID).Return(owned, nil),
					queries.EXPECT().FindByDate(gomock.Any(), userID, habitID, today).Return(nil, errorvalues.ErrProgressNotFound),
					queries.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errorvalues.ErrProgressConflict),
					queries.EXPECT().FindByDate(gomock.Any(), userID, habitID, today).Return(existing, nil),
					queries.EXPECT().Update(gomock.Any(), existing.ID, false, "n").DoAndReturn(
						func(_ context.Context, id uuid.UUID, completed bool, notes string) (*entity.Progress, error) {
							p := *existing
							p.Completed = completed
							return &p, nil
						}),
					queries.EXPECT().CompletedDates(gomock.Any(), userID, habitID).Return([]time.Time{}, nil),
					queries.EXPECT().UpdateHabitStats(gomock.Any(), habitID, entity.HabitStats{}).Return(nil),
				)
			},
		},
		{
			Desc:      "stats are derived from completed dates",
			Completed: true,
			MockPrepFunc: func() {
				repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				queries.EXPECT().LockHabit(gomock.Any(), habitID).Return(owned, nil)
				queries.EXPECT().FindByDate(gomock.Any(), userID, habitID, today).Return(nil, errorvalues.ErrProgressNotFound)
				queries.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *entity.Progress) (*entity.Progress, error) {
					assert.True(t, p.Completed)
					assert.Equal(t, today, p.Date)
					res := *p
					res.ID = uuid.New()
					return &res, nil
				})
				queries.EXPECT().CompletedDates(gomock.Any(), userID, habitID).Return([]time.Time{
					today, date("2026-10-14"), date("2026-10-13"), date("2026-10-01"),
				}, nil)
				queries.EXPECT().UpdateHabitStats(gomock.Any(), habitID, entity.HabitStats{
					CurrentStreak: 3, LongestStreak: 3, TotalCompletions: 4,
				}).Return(nil)
			},
		},
		{
			Desc:  "stats write failure is wrapped",
			Error: errors.New("db error"),
			MockPrepFunc: func() {
				repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				queries.EXPECT().LockHabit(gomock.Any(), habitID).Return(owned, nil)
				queries.EXPECT().FindByDate(gomock.Any(), userID, habitID, today).Return(existing, nil)
				queries.EXPECT().Update(gomock.Any(), existing.ID, false, "n").Return(existing, nil)
				queries.EXPECT().CompletedDates(gomock.Any(), userID, habitID).Return(nil, errors.New("db error"))
			},
		},
		{
			Desc:  "begin failure",
			Error: errors.New("db error"),
			MockPrepFunc: func() {
				repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			p, err := ps.Toggle(ctx, userID, &service.ToggleRequest{HabitID: habitID.String(), Date: "2026-10-15"})
			if tc.Error != nil {
				assert.Error(t, err)
				assert.NotErrorIs(t, err, errorvalues.ErrHabitNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Completed, p.Completed)
		})
	}
}

func TestGetStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProgressRepositoryI(ctrl)
	ps := service.NewProgressService(mocks.NewMockHabitsRepositoryI(ctrl), repo, clock)
	ctx := context.Background()
	other := uuid.New()
	entry := func(habit uuid.UUID, d string, completed bool) entity.ProgressWithHabit {
		return entity.ProgressWithHabit{Progress: entity.Progress{HabitID: habit, Date: date(d), Completed: completed}}
	}
	testCases := []struct {
		Desc         string
		Req          service.StatsRequest
		Expected     service.Stats
		Error        error
		MockPrepFunc func()
	}{
		{
			Desc:     "default window",
			Req:      service.StatsRequest{},
			Expected: service.Stats{CompletedDays: 1, TotalDays: 30, CompletionRate: 3.33, MissedDays: 29},
			MockPrepFunc: func() {
				repo.EXPECT().List(gomock.Any(), userID, repository.ProgressFilter{
					From: date("2026-09-16"),
					To:   today,
				}).Return([]entity.ProgressWithHabit{
					entry(habitID, "2026-10-15", true),
					entry(other, "2026-10-15", true),
					entry(habitID, "2026-10-14", false),
				}, nil)
			},
		},
		{
			Desc:     "single habit week",
			Req:      service.StatsRequest{HabitID: habitID.String(), Days: 7},
			Expected: service.Stats{CompletedDays: 7, TotalDays: 7, CompletionRate: 100, MissedDays: 0},
			MockPrepFunc: func() {
				list := []entity.ProgressWithHabit{}
				for i := range 7 {
					list = append(list, entity.ProgressWithHabit{Progress: entity.Progress{HabitID: habitID, Date: calendar.AddDays(today, -i), Completed: true}})
				}
				repo.EXPECT().List(gomock.Any(), userID, repository.ProgressFilter{
					HabitID: &habitID,
					From:    date("2026-10-09"),
					To:      today,
				}).Return(list, nil)
			},
		},
		{
			Desc:     "nothing logged",
			Req:      service.StatsRequest{Days: 1},
			Expected: service.Stats{CompletedDays: 0, TotalDays: 1, CompletionRate: 0, MissedDays: 1},
			MockPrepFunc: func() {
				repo.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return([]entity.ProgressWithHabit{}, nil)
			},
		},
		{
			Desc:         "window too long",
			Req:          service.StatsRequest{Days: 366},
			Error:        errorvalues.ErrValidation,
			MockPrepFunc: func() {},
		},
		{
			Desc:         "malformed habit id",
			Req:          service.StatsRequest{HabitID: "nope"},
			Error:        errorvalues.ErrValidation,
			MockPrepFunc: func() {},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			stats, err := ps.GetStats(ctx, userID, &tc.Req)
			if tc.Error != nil {
				assert.ErrorIs(t, err, tc.Error)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, *stats)
		})
	}
}

func TestGetProgressAndCalendar(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProgressRepositoryI(ctrl)
	ps := service.NewProgressService(mocks.NewMockHabitsRepositoryI(ctrl), repo, clock)
	ctx := context.Background()

	t.Run("range filter", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), userID, repository.ProgressFilter{
			HabitID: &habitID,
			From:    date("2026-10-01"),
			To:      date("2026-10-15"),
		}).Return([]entity.ProgressWithHabit{}, nil)
		res, err := ps.GetProgress(ctx, userID, &service.ProgressQuery{HabitID: habitID.String(), StartDate: "2026-10-01", EndDate: "2026-10-15"})
		assert.NoError(t, err)
		assert.Empty(t, res)
	})
	t.Run("open range", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), userID, repository.ProgressFilter{}).Return([]entity.ProgressWithHabit{}, nil)
		_, err := ps.GetProgress(ctx, userID, &service.ProgressQuery{})
		assert.NoError(t, err)
	})
	t.Run("start after end", func(t *testing.T) {
		_, err := ps.GetProgress(ctx, userID, &service.ProgressQuery{StartDate: "2026-10-15", EndDate: "2026-10-01"})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("bad date", func(t *testing.T) {
		_, err := ps.GetProgress(ctx, userID, &service.ProgressQuery{StartDate: "yesterday"})
		assert.ErrorIs(t, err, errorvalues.ErrInvalidDate)
	})
	t.Run("leap february", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), userID, repository.ProgressFilter{
			From: date("2028-02-01"),
			To:   date("2028-02-29"),
		}).Return([]entity.ProgressWithHabit{}, nil)
		_, err := ps.GetCalendar(ctx, userID, 2028, 2, "")
		assert.NoError(t, err)
	})
	t.Run("month out of range", func(t *testing.T) {
		_, err := ps.GetCalendar(ctx, userID, 2026, 13, "")
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("db error", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return(nil, errors.New("db error"))
		_, err := ps.GetCalendar(ctx, userID, 2026, 10, "")
		assert.Error(t, err)
	})
}

func TestDeleteProgress(t *testing.T) {
	habit := newLedgerHabit(userID)
	ledger := newMemLedger(habit)
	ps := service.NewProgressService(&habitRepoMock{}, ledger, clock)
	ctx := context.Background()
	toggle(t, ps, habit.ID, "2026-10-14", nil)
	p := toggle(t, ps, habit.ID, "2026-10-15", nil)
	require.Equal(t, 2, ledger.habit(habit.ID).CurrentStreak)

	t.Run("foreign entry is invisible", func(t *testing.T) {
		err := ps.DeleteProgress(ctx, uuid.New(), p.ID)
		assert.ErrorIs(t, err, errorvalues.ErrProgressNotFound)
	})
	t.Run("unknown entry", func(t *testing.T) {
		err := ps.DeleteProgress(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrProgressNotFound)
	})
	t.Run("stats follow the deletion", func(t *testing.T) {
		require.NoError(t, ps.DeleteProgress(ctx, userID, p.ID))
		assert.Equal(t, entity.HabitStats{CurrentStreak: 1, LongestStreak: 1, TotalCompletions: 1}, statsOf(ledger.habit(habit.ID)))
		_, err := ledger.GetByID(ctx, p.ID)
		assert.ErrorIs(t, err, errorvalues.ErrProgressNotFound)
	})
}

func TestGetTodayAndDashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	habits := mocks.NewMockHabitsRepositoryI(ctrl)
	first := &entity.Habit{ID: uuid.New(), UserID: userID, Name: "Read", IsActive: true, LongestStreak: 4, TotalCompletions: 10, CurrentStreak: 2}
	second := &entity.Habit{ID: uuid.New(), UserID: userID, Name: "Run", IsActive: true, LongestStreak: 9, TotalCompletions: 3}
	archived := &entity.Habit{ID: uuid.New(), UserID: userID, Name: "Swim", IsActive: false, LongestStreak: 2, TotalCompletions: 2}
	ledger := newMemLedger(*first, *second, *archived)
	ps := service.NewProgressService(habits, ledger, clock)
	ctx := context.Background()
	toggle(t, ps, first.ID, "2026-10-15", strPtr("morning"))
	toggle(t, ps, second.ID, "2026-10-14", nil)
	toggle(t, ps, second.ID, "2026-10-01", nil)

	t.Run("today", func(t *testing.T) {
		active := true
		habits.EXPECT().List(gomock.Any(), userID, repository.HabitFilter{Active: &active, Sort: repository.SortByCreated}).
			Return([]*entity.Habit{first, second}, nil)
		res, err := ps.GetToday(ctx, userID)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.True(t, res[0].Completed)
		assert.Equal(t, "morning", res[0].Notes)
		assert.NotNil(t, res[0].ProgressID)
		assert.False(t, res[1].Completed)
		assert.Nil(t, res[1].ProgressID)
	})
	t.Run("dashboard", func(t *testing.T) {
		habits.EXPECT().List(gomock.Any(), userID, repository.HabitFilter{}).
			Return([]*entity.Habit{first, second, archived}, nil)
		d, err := ps.GetDashboard(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, d.TotalHabits)
		assert.Equal(t, 2, d.ActiveHabits)
		assert.Equal(t, 1, d.CompletedToday)
		assert.Equal(t, 15, d.TotalCompletions)
		assert.Equal(t, 9, d.LongestStreak)
		assert.Equal(t, []service.Activity{
			{Date: today, Completed: true},
			{Date: date("2026-10-14"), Completed: true},
		}, d.RecentActivity)
	})
	t.Run("habits db error", func(t *testing.T) {
		habits.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return(nil, errors.New("db error"))
		_, err := ps.GetDashboard(ctx, userID)
		assert.Error(t, err)
	})
}
