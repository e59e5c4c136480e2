package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lukefarrell/snapfeed/pkg/app"
)

func main() {
	if os.Getenv("DEBUG") == "true" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.NewApp()
	if err != nil {
		slog.Error(err.Error())
		return
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		slog.Error(err.Error())
	}
}
