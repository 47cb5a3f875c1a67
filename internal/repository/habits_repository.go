package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/pkg/entity"
)

type HabitsRepository struct {
	conn PgConnection
}

func NewHabitsRepo(conn PgConnection) *HabitsRepository {
	return &HabitsRepository{
		conn: conn,
	}
}

const habitColumns = `id, user_id, name, description, emoji, category, color, is_active, current_streak, longest_streak, total_completions, created_at, updated_at`

func scanHabit(row pgx.Row) (*entity.Habit, error) {
	var h entity.Habit
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Emoji, &h.Category, &h.Color, &h.IsActive,
		&h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (hr *HabitsRepository) Create(ctx context.Context, habit *entity.Habit) (*entity.Habit, error) {
	row := hr.conn.QueryRow(ctx, `INSERT INTO habits (user_id, name, description, emoji, category, color, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+habitColumns+`;`,
		habit.UserID,
		habit.Name,
		habit.Description,
		habit.Emoji,
		habit.Category,
		habit.Color,
		habit.IsActive,
	)
	created, err := scanHabit(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("creating habit db error: " + err.Error())
	}
	return created, nil
}

func (hr *HabitsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error) {
	row := hr.conn.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1;`, id)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("getting habit by id error: " + err.Error())
	}
	return habit, nil
}

// buildHabitsQuery renders the listing query for the filter. Arguments are
// numbered in the order conditions are appended.
func buildHabitsQuery(uid uuid.UUID, filter HabitFilter) (string, []any) {
	var sb strings.Builder
	args := []any{uid}
	sb.WriteString(`SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`)
	if filter.Active != nil {
		args = append(args, *filter.Active)
		sb.WriteString(` AND is_active = $` + strconv.Itoa(len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		sb.WriteString(` AND category = $` + strconv.Itoa(len(args)))
	}
	switch filter.Sort {
	case SortByName:
		sb.WriteString(` ORDER BY name ASC, id ASC`)
	case SortByStreak:
		sb.WriteString(` ORDER BY current_streak DESC, name ASC, id ASC`)
	default:
		sb.WriteString(` ORDER BY created_at DESC, id ASC`)
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(` OFFSET $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(`;`)
	return sb.String(), args
}

func (hr *HabitsRepository) List(ctx context.Context, uid uuid.UUID, filter HabitFilter) ([]*entity.Habit, error) {
	query, args := buildHabitsQuery(uid, filter)
	rows, err := hr.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.New("getting habits by uid error: " + err.Error())
	}
	defer rows.Close()
	habits := make([]*entity.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, errors.New("unmarshalling habit error: " + err.Error())
		}
		habits = append(habits, h)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected error after scanning habits: " + err.Error())
	}
	return habits, nil
}

// Update never touches the statistics columns.
func (hr *HabitsRepository) Update(ctx context.Context, habit *entity.Habit) (*entity.Habit, error) {
	row := hr.conn.QueryRow(ctx, `UPDATE habits SET name = $1, description = $2, emoji = $3, category = $4, color = $5, is_active = $6, updated_at = NOW() WHERE id = $7 RETURNING `+habitColumns+`;`,
		habit.Name,
		habit.Description,
		habit.Emoji,
		habit.Category,
		habit.Color,
		habit.IsActive,
		habit.ID,
	)
	updated, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("error updating habit: " + err.Error())
	}
	return updated, nil
}

func (hr *HabitsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := hr.conn.Exec(ctx, `DELETE FROM habits WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) Categories(ctx context.Context, uid uuid.UUID) ([]string, error) {
	rows, err := hr.conn.Query(ctx, `SELECT DISTINCT category FROM habits WHERE user_id = $1 AND category <> '' ORDER BY category;`, uid)
	if err != nil {
		return nil, errors.New("getting categories error: " + err.Error())
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.New("scanning categories error: " + err.Error())
	}
	return categories, nil
}
