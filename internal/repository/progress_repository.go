package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/pkg/entity"
)

type ProgressRepository struct {
	conn PgConnection
}

func NewProgressRepo(conn PgConnection) *ProgressRepository {
	return &ProgressRepository{
		conn: conn,
	}
}

const progressColumns = `id, user_id, habit_id, date, completed, notes, created_at, updated_at`

func scanProgress(row pgx.Row) (*entity.Progress, error) {
	var p entity.Progress
	if err := row.Scan(&p.ID, &p.UserID, &p.HabitID, &p.Date, &p.Completed, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Date = p.Date.UTC()
	return &p, nil
}

// WithinTx commits when fn returns nil and rolls back otherwise. The error
// returned by fn is passed through untouched so callers can match sentinels.
func (pr *ProgressRepository) WithinTx(ctx context.Context, fn func(q ProgressQueriesI) error) error {
	tx, err := pr.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning progress tx error: " + err.Error())
	}
	if err = fn(&progressTxQueries{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, errors.New("rollback error: "+rbErr.Error()))
		}
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing progress tx error: " + err.Error())
	}
	return nil
}

func (pr *ProgressRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Progress, error) {
	row := pr.conn.QueryRow(ctx, `SELECT `+progressColumns+` FROM progress WHERE id = $1;`, id)
	p, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrProgressNotFound
		}
		return nil, errors.New("getting progress by id error: " + err.Error())
	}
	return p, nil
}

func buildProgressQuery(uid uuid.UUID, filter ProgressFilter) (string, []any) {
	var sb strings.Builder
	args := []any{uid}
	sb.WriteString(`SELECT p.id, p.user_id, p.habit_id, p.date, p.completed, p.notes, p.created_at, p.updated_at, h.name, h.emoji, h.color, h.category FROM progress p JOIN habits h ON h.id = p.habit_id WHERE p.user_id = $1`)
	if filter.HabitID != nil {
		args = append(args, *filter.HabitID)
		sb.WriteString(` AND p.habit_id = $` + strconv.Itoa(len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		sb.WriteString(` AND p.date >= $` + strconv.Itoa(len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		sb.WriteString(` AND p.date <= $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(` ORDER BY p.date DESC, p.habit_id ASC;`)
	return sb.String(), args
}

func (pr *ProgressRepository) List(ctx context.Context, uid uuid.UUID, filter ProgressFilter) ([]entity.ProgressWithHabit, error) {
	query, args := buildProgressQuery(uid, filter)
	rows, err := pr.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.New("listing progress error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.ProgressWithHabit, 0)
	for rows.Next() {
		var p entity.ProgressWithHabit
		h := &entity.HabitSummary{}
		err = rows.Scan(&p.ID, &p.UserID, &p.HabitID, &p.Date, &p.Completed, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
			&h.Name, &h.Emoji, &h.Color, &h.Category)
		if err != nil {
			return nil, errors.New("progress row parsing error: " + err.Error())
		}
		p.Date = p.Date.UTC()
		h.ID = p.HabitID
		p.Habit = h
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected progress rows error: " + err.Error())
	}
	return result, nil
}

type progressTxQueries struct {
	tx Querier
}

// LockHabit takes a row lock on the habit so that concurrent ledger
// changes of one habit are serialized.
func (q *progressTxQueries) LockHabit(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	row := q.tx.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1 FOR UPDATE;`, habitID)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("locking habit error: " + err.Error())
	}
	return habit, nil
}

func (q *progressTxQueries) FindByDate(ctx context.Context, uid, habitID uuid.UUID, date time.Time) (*entity.Progress, error) {
	row := q.tx.QueryRow(ctx, `SELECT `+progressColumns+` FROM progress WHERE user_id = $1 AND habit_id = $2 AND date = $3 FOR UPDATE;`,
		uid, habitID, date,
	)
	p, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrProgressNotFound
		}
		return nil, errors.New("searching progress by date error: " + err.Error())
	}
	return p, nil
}

func (q *progressTxQueries) Create(ctx context.Context, progress *entity.Progress) (*entity.Progress, error) {
	row := q.tx.QueryRow(ctx, `INSERT INTO progress (user_id, habit_id, date, completed, notes) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (user_id, habit_id, date) DO NOTHING RETURNING `+progressColumns+`;`,
		progress.UserID,
		progress.HabitID,
		progress.Date,
		progress.Completed,
		progress.Notes,
	)
	created, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrProgressConflict
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return nil, errorvalues.ErrProgressConflict
			case foreignKeyViolation:
				return nil, errorvalues.ErrHabitNotFound
			}
		}
		return nil, errors.New("creating progress error: " + err.Error())
	}
	return created, nil
}

func (q *progressTxQueries) Update(ctx context.Context, id uuid.UUID, completed bool, notes string) (*entity.Progress, error) {
	row := q.tx.QueryRow(ctx, `UPDATE progress SET completed = $1, notes = $2, updated_at = NOW() WHERE id = $3 RETURNING `+progressColumns+`;`,
		completed, notes, id,
	)
	p, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrProgressNotFound
		}
		return nil, errors.New("updating progress error: " + err.Error())
	}
	return p, nil
}

func (q *progressTxQueries) Delete(ctx context.Context, id, uid uuid.UUID) error {
	ct, err := q.tx.Exec(ctx, `DELETE FROM progress WHERE id = $1 AND user_id = $2;`, id, uid)
	if err != nil {
		return errors.New("deleting progress error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrProgressNotFound
	}
	return nil
}

func (q *progressTxQueries) CompletedDates(ctx context.Context, uid, habitID uuid.UUID) ([]time.Time, error) {
	rows, err := q.tx.Query(ctx, `SELECT date FROM progress WHERE user_id = $1 AND habit_id = $2 AND completed ORDER BY date DESC;`, uid, habitID)
	if err != nil {
		return nil, errors.New("getting completed dates error: " + err.Error())
	}
	dates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (time.Time, error) {
		var d time.Time
		err := row.Scan(&d)
		return d.UTC(), err
	})
	if err != nil {
		return nil, errors.New("scanning completed dates error: " + err.Error())
	}
	return dates, nil
}

func (q *progressTxQueries) UpdateHabitStats(ctx context.Context, habitID uuid.UUID, stats entity.HabitStats) error {
	ct, err := q.tx.Exec(ctx, `UPDATE habits SET current_streak = $1, longest_streak = $2, total_completions = $3, updated_at = NOW() WHERE id = $4;`,
		stats.CurrentStreak,
		stats.LongestStreak,
		stats.TotalCompletions,
		habitID,
	)
	if err != nil {
		return errors.New("updating habit stats error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}
