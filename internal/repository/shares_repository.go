package repository

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/pkg/entity"
)

type SharesRepository struct {
	conn PgConnection
}

func NewSharesRepo(conn PgConnection) *SharesRepository {
	return &SharesRepository{
		conn: conn,
	}
}

const shareColumns = `id, user_id, share_id, title, description, include_stats, include_habits, stats, habits, created_at, expires_at`

func scanShare(row pgx.Row) (*entity.Share, error) {
	var (
		s                 entity.Share
		rawStats, rawHabs []byte
	)
	err := row.Scan(&s.ID, &s.UserID, &s.ShareID, &s.Title, &s.Description, &s.IncludeStats, &s.IncludeHabits,
		&rawStats, &rawHabs, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if len(rawStats) > 0 {
		s.Stats = &entity.ShareStats{}
		if err = sonic.Unmarshal(rawStats, s.Stats); err != nil {
			return nil, errors.New("decoding share stats error: " + err.Error())
		}
	}
	if len(rawHabs) > 0 {
		if err = sonic.Unmarshal(rawHabs, &s.Habits); err != nil {
			return nil, errors.New("decoding share habits error: " + err.Error())
		}
	}
	return &s, nil
}

// encodeSnapshot returns nil for an absent snapshot so the column stays NULL.
func encodeSnapshot(v any, present bool) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return sonic.Marshal(v)
}

func (sr *SharesRepository) Create(ctx context.Context, share *entity.Share) (*entity.Share, error) {
	stats, err := encodeSnapshot(share.Stats, share.Stats != nil)
	if err != nil {
		return nil, errors.New("encoding share stats error: " + err.Error())
	}
	habits, err := encodeSnapshot(share.Habits, share.Habits != nil)
	if err != nil {
		return nil, errors.New("encoding share habits error: " + err.Error())
	}
	row := sr.conn.QueryRow(ctx, `INSERT INTO shared_progress (user_id, share_id, title, description, include_stats, include_habits, stats, habits, expires_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING `+shareColumns+`;`,
		share.UserID,
		share.ShareID,
		share.Title,
		share.Description,
		share.IncludeStats,
		share.IncludeHabits,
		stats,
		habits,
		share.ExpiresAt,
	)
	created, err := scanShare(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return nil, errorvalues.ErrShareExists
			case foreignKeyViolation:
				return nil, errorvalues.ErrUserNotFound
			}
		}
		return nil, errors.New("creating share error: " + err.Error())
	}
	return created, nil
}

func (sr *SharesRepository) FindByShareID(ctx context.Context, shareID string) (*entity.Share, error) {
	row := sr.conn.QueryRow(ctx, `SELECT `+shareColumns+` FROM shared_progress WHERE share_id = $1;`, shareID)
	share, err := scanShare(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrShareNotFound
		}
		return nil, errors.New("searching share error: " + err.Error())
	}
	return share, nil
}

func (sr *SharesRepository) ListByUser(ctx context.Context, uid uuid.UUID) ([]*entity.Share, error) {
	rows, err := sr.conn.Query(ctx, `SELECT `+shareColumns+` FROM shared_progress WHERE user_id = $1 ORDER BY created_at DESC;`, uid)
	if err != nil {
		return nil, errors.New("listing shares error: " + err.Error())
	}
	defer rows.Close()
	shares := make([]*entity.Share, 0)
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, errors.New("share row parsing error: " + err.Error())
		}
		shares = append(shares, s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected share rows error: " + err.Error())
	}
	return shares, nil
}

func (sr *SharesRepository) Delete(ctx context.Context, shareID string, uid uuid.UUID) error {
	ct, err := sr.conn.Exec(ctx, `DELETE FROM shared_progress WHERE share_id = $1 AND user_id = $2;`, shareID, uid)
	if err != nil {
		return errors.New("deleting share error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrShareNotFound
	}
	return nil
}
