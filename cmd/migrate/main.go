package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	_ "github.com/lib/pq"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/pkg/config"
	"github.com/pressly/goose"
)

type Globals struct {
	Env string `help:"Path to the .env file." type:"path" default:".env"`
	Dir string `help:"Migrations directory. Defaults to MIGRATIONS_DIR."`
}

type UpCmd struct{}

func (c *UpCmd) Run(db *sql.DB, dir string) error {
	return goose.Up(db, dir)
}

type DownCmd struct{}

func (c *DownCmd) Run(db *sql.DB, dir string) error {
	return goose.Down(db, dir)
}

type StatusCmd struct{}

func (c *StatusCmd) Run(db *sql.DB, dir string) error {
	return goose.Status(db, dir)
}

var CLI struct {
	Globals

	Up     UpCmd     `cmd:"" help:"Apply all pending migrations." default:"1"`
	Down   DownCmd   `cmd:"" help:"Roll back the latest migration."`
	Status StatusCmd `cmd:"" help:"Print the status of every migration."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitrack-migrate"),
		kong.Description("Database migrations for habitrack"),
		kong.UsageOnError(),
	)
	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "migrate error: "+err.Error())
		os.Exit(1)
	}
}

func run(ctx *kong.Context) error {
	cfg, err := config.LoadDatabase(CLI.Env)
	if err != nil {
		return err
	}
	dir := CLI.Dir
	if dir == "" {
		dir = cfg.MigrationsDir
	}
	dbCfg := &repository.PGCfg{
		Address:  cfg.PostgresAddress,
		Username: cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DB:       cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
	}
	db, err := sql.Open("postgres", dbCfg.ConnString())
	if err != nil {
		return errors.New("opening db error: " + err.Error())
	}
	defer db.Close()
	if err = goose.SetDialect("postgres"); err != nil {
		return err
	}
	return ctx.Run(db, dir)
}
