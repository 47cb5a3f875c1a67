// @title Habit-tracker API
// @description API for habit-tracker app "Habitrack"
// @BasePath /api
// @schemes http
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/limbo/habitrack/internal/app"
	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/pkg/config"
)

var CLI struct {
	Env string `help:"Path to the .env file. Variables already set in the environment win." type:"path" default:".env"`
}

func init() {
	service.InitValidator()
}

func main() {
	kong.Parse(&CLI,
		kong.Name("habitrack-api"),
		kong.Description("Habit tracking HTTP API"),
		kong.UsageOnError(),
	)
	cfg, err := config.Load(CLI.Env)
	if err != nil {
		log.Fatal("config error: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("startup error: " + err.Error())
	}
	if err = a.Run(ctx); err != nil {
		a.Logger().Error(err.Error())
		stop()
		log.Fatal(err)
	}
}
