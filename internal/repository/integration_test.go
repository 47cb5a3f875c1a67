package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/pkg/entity"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type testPGConfig struct {
	connStr string
}

func (cfg *testPGConfig) ConnString() string {
	return cfg.connStr
}

func setupTestDB(t *testing.T) *testPGConfig {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	container, err := postgres.Run(context.Background(), "postgres:17",
		postgres.WithUsername("test_user"),
		postgres.WithDatabase("habitrack"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatal("error running test container: " + err.Error())
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})
	connStr, err := container.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err = goose.Up(conn, "../../migrations"); err != nil {
		t.Fatal(err)
	}
	_, err = conn.Exec(`INSERT INTO users (id, email, name, password_hash) VALUES ($1, $2, $3, $4);`,
		userID, "owner@example.com", "test_name", "pass_hash")
	if err != nil {
		t.Fatal(err)
	}
	return &testPGConfig{
		connStr: connStr,
	}
}

// flip mirrors what a toggle does against the ledger.
func flip(ctx context.Context, repo *repository.ProgressRepository, habitID uuid.UUID, date time.Time) error {
	return repo.WithinTx(ctx, func(q repository.ProgressQueriesI) error {
		if _, err := q.LockHabit(ctx, habitID); err != nil {
			return err
		}
		p, err := q.FindByDate(ctx, userID, habitID, date)
		switch {
		case errors.Is(err, errorvalues.ErrProgressNotFound):
			_, err = q.Create(ctx, &entity.Progress{UserID: userID, HabitID: habitID, Date: date, Completed: true})
			return err
		case err != nil:
			return err
		}
		_, err = q.Update(ctx, p.ID, !p.Completed, p.Notes)
		return err
	})
}

func TestRepositoriesIntegrational(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	habits := repository.NewHabitsRepo(pool)
	progress := repository.NewProgressRepo(pool)
	users := repository.NewUsersRepo(pool)

	habit, err := habits.Create(ctx, &entity.Habit{UserID: userID, Name: "Read", Emoji: "📚", Category: "Mind", Color: "#10B981", IsActive: true})
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.Create(ctx, &entity.User{Email: "owner@example.com", Name: "x", PasswordHash: "y", Theme: "light"})
		assert.ErrorIs(t, err, errorvalues.ErrUserExists)
	})
	t.Run("habit for unknown user", func(t *testing.T) {
		_, err := habits.Create(ctx, &entity.Habit{UserID: uuid.New(), Name: "x", IsActive: true})
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("concurrent toggles keep one entry", func(t *testing.T) {
		date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- flip(ctx, progress, habit.ID, date)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		entries, err := progress.List(ctx, userID, repository.ProgressFilter{HabitID: &habit.ID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Completed)
		assert.Equal(t, date, entries[0].Date)
		assert.Equal(t, "Read", entries[0].Habit.Name)
	})
	t.Run("categories", func(t *testing.T) {
		categories, err := habits.Categories(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Mind"}, categories)
	})
	t.Run("deleting user cascades", func(t *testing.T) {
		require.NoError(t, users.Delete(ctx, userID))
		_, err := habits.GetByID(ctx, habit.ID)
		assert.ErrorIs(t, err, errorvalues.ErrHabitNotFound)
		entries, err := progress.List(ctx, userID, repository.ProgressFilter{})
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
}
