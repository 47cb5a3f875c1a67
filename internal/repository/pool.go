package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DBConfig interface {
	ConnString() string
}

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgConnection interface {
	Querier
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
	SSLMode  string
}

func (pgcfg *PGCfg) ConnString() string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(pgcfg.Username, pgcfg.Password),
		Host:   pgcfg.Address,
		Path:   "/" + pgcfg.DB,
	}
	if pgcfg.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(pgcfg.SSLMode)
	}
	return u.String()
}

func (pgcfg *PGCfg) String() string {
	return fmt.Sprintf("postgresql://%s@%s/%s", pgcfg.Username, pgcfg.Address, pgcfg.DB)
}

// NewPool opens a pgx pool and checks it is reachable. The caller owns the
// pool and must close it.
func NewPool(ctx context.Context, cfg DBConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, errors.New("creating pgxpool error: " + err.Error())
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.New("error while pinging pgxpool: " + err.Error())
	}
	return pool, nil
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)
