package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/pressbox/cmd/pressbox/serve"
	"github.com/andrebq/pressbox/cmd/pressbox/users"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	// optional, flags fall back to PRESSBOX_* variables
	_ = godotenv.Load(".env.local")
	app := &cli.App{
		Name:  "pressbox",
		Usage: "A small blog you can actually run yourself",
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
