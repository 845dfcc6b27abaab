package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/radvalidate/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "radvalidate",
		Usage:   "Clinical decision support for imaging-order dictation",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "radvalidate.toml",
			},
		},
		Commands: []*cli.Command{
			cmd.ValidateCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
