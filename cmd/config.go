package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/radvalidate/internal/config"
)

// ConfigCommand manages the configuration file.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage radvalidate configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a sample configuration file",
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if path == "" {
						path = "radvalidate.toml"
					}
					if err := config.InitConfig(path); err != nil {
						return err
					}
					fmt.Printf("Configuration file created at %s\n", path)
					fmt.Println("Edit it to add your provider API keys before running validations.")
					return nil
				},
			},
			{
				Name:  "check",
				Usage: "Validate the configuration file",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig(c.String("config"))
					if err != nil {
						return err
					}
					if err := config.Validate(cfg); err != nil {
						return err
					}
					fmt.Printf("Configuration OK: %d provider(s) configured\n", len(cfg.Providers))
					return nil
				},
			},
		},
	}
}
