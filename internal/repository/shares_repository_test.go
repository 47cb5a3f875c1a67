package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shareCols = []string{"id", "user_id", "share_id", "title", "description", "include_stats", "include_habits", "stats", "habits", "created_at", "expires_at"}

func TestCreateShare(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSharesRepo(mock)
	ctx := context.Background()
	expires := time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC)
	share := &entity.Share{
		UserID:        userID,
		ShareID:       "abc123",
		Title:         "My progress",
		IncludeStats:  true,
		IncludeHabits: false,
		Stats:         &entity.ShareStats{TotalHabits: 2, TotalCompletions: 10, LongestStreak: 4},
		ExpiresAt:     &expires,
	}
	statsJSON := []byte(`{"totalHabits":2,"totalCompletions":10,"longestStreak":4}`)
	query := regexp.QuoteMeta(`INSERT INTO shared_progress (user_id, share_id, title, description, include_stats, include_habits, stats, habits, expires_at)`)
	args := []any{share.UserID, share.ShareID, share.Title, share.Description, share.IncludeStats, share.IncludeHabits, statsJSON, []byte(nil), share.ExpiresAt}
	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		created := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
		mock.ExpectQuery(query).WithArgs(args...).WillReturnRows(pgxmock.NewRows(shareCols).
			AddRow(id, share.UserID, share.ShareID, share.Title, share.Description, share.IncludeStats, share.IncludeHabits,
				statsJSON, []byte(nil), created, share.ExpiresAt))
		result, err := repo.Create(ctx, share)
		require.NoError(t, err)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, *share.Stats, *result.Stats)
		assert.Nil(t, result.Habits)
		assert.Equal(t, expires, *result.ExpiresAt)
	})
	t.Run("share id taken", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(args...).WillReturnError(&pgconn.PgError{Code: "23505"})
		_, err := repo.Create(ctx, share)
		assert.ErrorIs(t, err, errorvalues.ErrShareExists)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(args...).WillReturnError(errors.New("db error"))
		_, err := repo.Create(ctx, share)
		assert.Error(t, err)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindShare(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSharesRepo(mock)
	ctx := context.Background()
	query := regexp.QuoteMeta(`FROM shared_progress WHERE share_id = $1;`)
	t.Run("found with habits snapshot", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("abc").WillReturnRows(pgxmock.NewRows(shareCols).
			AddRow(uuid.New(), userID, "abc", "t", "", false, true,
				[]byte(nil), []byte(`[{"name":"Read","emoji":"📚","currentStreak":3}]`), time.Now(), (*time.Time)(nil)))
		share, err := repo.FindByShareID(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, share.Stats)
		assert.Nil(t, share.ExpiresAt)
		assert.Equal(t, []entity.ShareHabit{{Name: "Read", Emoji: "📚", CurrentStreak: 3}}, share.Habits)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("abc").WillReturnError(pgx.ErrNoRows)
		_, err := repo.FindByShareID(ctx, "abc")
		assert.ErrorIs(t, err, errorvalues.ErrShareNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAndDeleteShares(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSharesRepo(mock)
	ctx := context.Background()
	t.Run("list", func(t *testing.T) {
		rows := pgxmock.NewRows(shareCols)
		for _, sid := range []string{"b", "a"} {
			rows.AddRow(uuid.New(), userID, sid, "", "", true, true, []byte(nil), []byte(nil), time.Now(), (*time.Time)(nil))
		}
		mock.ExpectQuery(regexp.QuoteMeta(`FROM shared_progress WHERE user_id = $1 ORDER BY created_at DESC;`)).
			WithArgs(userID).WillReturnRows(rows)
		shares, err := repo.ListByUser(ctx, userID)
		assert.NoError(t, err)
		require.Len(t, shares, 2)
		assert.Equal(t, "b", shares[0].ShareID)
	})
	deleteQuery := regexp.QuoteMeta(`DELETE FROM shared_progress WHERE share_id = $1 AND user_id = $2;`)
	t.Run("delete", func(t *testing.T) {
		mock.ExpectExec(deleteQuery).WithArgs("a", userID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, repo.Delete(ctx, "a", userID))
	})
	t.Run("delete of foreign share", func(t *testing.T) {
		mock.ExpectExec(deleteQuery).WithArgs("a", userID).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.ErrorIs(t, repo.Delete(ctx, "a", userID), errorvalues.ErrShareNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
