package users

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andrebq/authdeck/account"
	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/internal/bootstrap"
	"github.com/andrebq/authdeck/internal/config"
	"github.com/andrebq/authdeck/internal/logutil"
	"github.com/andrebq/authdeck/password"
	"github.com/andrebq/authdeck/session"
)

func Cmd(cfg *config.Config) *cli.Command {
	var users *directory.SQL
	return &cli.Command{
		Name:  "users",
		Usage: "Manage the accounts stored in the directory",
		Before: func(ctx *cli.Context) error {
			var err error
			users, err = bootstrap.OpenDirectory(ctx.Context, *cfg)
			return err
		},
		After: func(ctx *cli.Context) error {
			if users == nil {
				return nil
			}
			return users.Close()
		},
		Subcommands: []*cli.Command{
			registerCmd(cfg, &users),
			listCmd(&users),
		},
	}
}

func registerCmd(cfg *config.Config, users **directory.SQL) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new account (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the account",
				Destination: &email,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			passwd, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			hasher, err := password.New(cfg.Realm.Hasher)
			if err != nil {
				return err
			}
			svc := account.New(*users, hasher, session.NewRecord(*users))
			u, err := svc.Register(ctx.Context, email, passwd)
			if err != nil {
				return err
			}
			log := logutil.GetOrDefault(ctx.Context)
			log.Info().Str("user_id", u.ID).Msg("Account registered")
			return nil
		},
	}
}

func listCmd(users **directory.SQL) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Write every account to the log, personal data is redacted",
		Action: func(ctx *cli.Context) error {
			all, err := (*users).List(ctx.Context)
			if err != nil {
				return err
			}
			log := logutil.GetOrDefault(ctx.Context)
			for _, u := range all {
				log.Info().Str("user_id", u.ID).Msg(Row(u))
			}
			return nil
		},
	}
}

// Row renders u as `field=value;` pairs, the format the redacting logger
// understands.
func Row(u directory.User) string {
	return fmt.Sprintf("email=%v;session=%v;created_at=%v;", u.Email, u.SessionID != nil, u.CreatedAt.UTC().Format(time.RFC3339))
}

func readPassword(in io.Reader) (string, error) {
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if sc.Err() != nil {
			return "", sc.Err()
		}
		return "", errors.New("missing password from stdin")
	}
	passwd := strings.TrimSpace(sc.Text())
	if len(passwd) == 0 {
		return "", errors.New("missing password from stdin")
	}
	return passwd, nil
}
