package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andrebq/authdeck/cmd/authdeck/serve"
	"github.com/andrebq/authdeck/cmd/authdeck/users"
	"github.com/andrebq/authdeck/internal/cmdflags"
	"github.com/andrebq/authdeck/internal/config"
	"github.com/andrebq/authdeck/internal/logutil"
)

func main() {
	cfg := config.Default()
	var flags []cli.Flag
	flags = append(flags, cmdflags.Log(&cfg)...)
	flags = append(flags, cmdflags.Directory(&cfg)...)
	flags = append(flags, cmdflags.Realm(&cfg.Realm, &cfg.RealmFile)...)
	app := &cli.App{
		Name:  "authdeck",
		Usage: "Accounts, sessions and an authentication gate for http services",
		Flags: flags,
		Before: func(ctx *cli.Context) error {
			logger, err := logutil.New(logutil.Options{Level: cfg.LogLevel, Pretty: cfg.PrettyLog})
			if err != nil {
				return err
			}
			ctx.Context = logutil.WithLogger(ctx.Context, logger)
			cmdflags.ApplyRealm(ctx, &cfg.Realm)
			if cfg.RealmFile != "" {
				r, err := config.LoadRealm(ctx.Context, cfg.RealmFile)
				if err != nil {
					return err
				}
				cfg.Realm = cfg.Realm.Merge(r)
			}
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(&cfg),
			users.Cmd(&cfg),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
