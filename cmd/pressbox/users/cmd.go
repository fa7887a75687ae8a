package users

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andrebq/pressbox/auth"
	"github.com/andrebq/pressbox/blog"
	"github.com/andrebq/pressbox/internal/cmdflags"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage blog accounts from the terminal",
		Subcommands: []*cli.Command{
			registerCmd(),
			hashCmd(),
		},
	}
}

func registerCmd() *cli.Command {
	dataPath := "pressbox.db"
	var username string
	return &cli.Command{
		Name:  "register",
		Usage: "Create a new account (password is read from stdin)",
		Flags: []cli.Flag{
			cmdflags.DataPath(&dataPath),
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the account to create",
				Destination: &username,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword()
			if err != nil {
				return err
			}
			store, err := blog.Open(ctx.Context, dataPath)
			if err != nil {
				return err
			}
			defer store.Close()
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			id, err := store.CreateUser(ctx.Context, username, hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "created user %v with id %v\n", username, id)
			return nil
		},
	}
}

func hashCmd() *cli.Command {
	return &cli.Command{
		Name:  "hash",
		Usage: "Read a password from stdin and print its hash",
		Action: func(ctx *cli.Context) error {
			password, err := readPassword()
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, hash)
			return nil
		},
	}
}

func readPassword() (string, error) {
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	password := strings.TrimSpace(sc.Text())
	if len(password) == 0 {
		return "", errors.New("missing password from stdin")
	}
	return password, nil
}
