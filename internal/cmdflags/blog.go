package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func DataPath(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "data",
		Aliases:     []string{"d"},
		Usage:       "Path to the blog database file",
		EnvVars:     []string{"PRESSBOX_DATA"},
		Destination: out,
		Value:       *out,
	}
}

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Usage:       "Address to bind and serve the blog",
		EnvVars:     []string{"PRESSBOX_BIND"},
		Destination: out,
		Value:       *out,
	}
}
