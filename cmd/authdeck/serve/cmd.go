package serve

import (
	"github.com/urfave/cli/v2"

	"github.com/andrebq/authdeck/internal/bootstrap"
	"github.com/andrebq/authdeck/internal/cmdflags"
	"github.com/andrebq/authdeck/internal/config"
	"github.com/andrebq/authdeck/internal/httpserver"
)

func Cmd(cfg *config.Config) *cli.Command {
	var flags []cli.Flag
	flags = append(flags, cmdflags.Server(cfg)...)
	flags = append(flags, cmdflags.Sessions(cfg)...)
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the account api (and the gateway when an upstream is configured)",
		Flags: flags,
		Action: func(ctx *cli.Context) error {
			env, err := bootstrap.Open(ctx.Context, *cfg)
			if err != nil {
				return err
			}
			defer env.Close()
			handler, err := env.Handler(ctx.Context)
			if err != nil {
				return err
			}
			return httpserver.Serve(ctx.Context, cfg.Bind(), handler)
		},
	}
}
