package serve

import (
	"time"

	"github.com/andrebq/pressbox/auth"
	"github.com/andrebq/pressbox/blog"
	"github.com/andrebq/pressbox/internal/cmdflags"
	"github.com/andrebq/pressbox/internal/httpserver"
	"github.com/andrebq/pressbox/web"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:5000"
	dataPath := "pressbox.db"
	staticDir := "public"
	sessionTTL := 30 * time.Minute
	storeTimeout := 5 * time.Second
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the blog HTTP server",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			cmdflags.DataPath(&dataPath),
			&cli.StringFlag{
				Name:        "static",
				Usage:       "Directory with static files, served under /static/",
				EnvVars:     []string{"PRESSBOX_STATIC"},
				Value:       staticDir,
				Destination: &staticDir,
			},
			&cli.DurationFlag{
				Name:        "session-ttl",
				Usage:       "How long a session lives without a new login",
				EnvVars:     []string{"PRESSBOX_SESSION_TTL"},
				Value:       sessionTTL,
				Destination: &sessionTTL,
			},
			&cli.DurationFlag{
				Name:        "store-timeout",
				Usage:       "Upper bound for any single database round-trip",
				EnvVars:     []string{"PRESSBOX_STORE_TIMEOUT"},
				Value:       storeTimeout,
				Destination: &storeTimeout,
			},
		},
		Action: func(ctx *cli.Context) error {
			store, err := blog.Open(ctx.Context, dataPath)
			if err != nil {
				return err
			}
			defer store.Close()
			sessions := auth.NewSessions(auth.InMemoryTokenStore(sessionTTL), sessionTTL)
			handler, err := web.AsHandler(ctx.Context, store, sessions, web.Options{
				StaticDir:    staticDir,
				StoreTimeout: storeTimeout,
			})
			if err != nil {
				return err
			}
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
