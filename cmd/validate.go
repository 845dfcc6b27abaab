package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/radvalidate/internal/ai"
	"github.com/radvalidate/internal/audit"
	"github.com/radvalidate/internal/config"
	"github.com/radvalidate/internal/database"
	"github.com/radvalidate/internal/pipeline"
	"github.com/radvalidate/internal/prompts"
	"github.com/radvalidate/internal/refdata"
	"github.com/radvalidate/internal/sanitize"
)

// ValidateCommand runs the validation pipeline against dictation text from a
// file argument or stdin.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate an imaging-order dictation",
		ArgsUsage: "[FILE|-]",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "user",
				Usage: "Acting user id recorded in the audit log",
				Value: 0,
			},
			&cli.Int64Flag{
				Name:  "order",
				Usage: "Order id the attempt belongs to",
			},
			&cli.BoolFlag{
				Name:  "override",
				Usage: "Validate a clinician override of a prior determination",
			},
			&cli.BoolFlag{
				Name:  "test-mode",
				Usage: "Skip audit logging entirely",
			},
		},
		Action: runValidate,
	}
}

func runValidate(c *cli.Context) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	text, err := readDictation(c)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	ctx := context.Background()

	providers := make([]ai.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		conn, err := ai.NewConnector(ctx, pc)
		if err != nil {
			return fmt.Errorf("configure provider %s: %w", pc.Provider, err)
		}
		providers = append(providers, conn)
	}

	orchestrator := ai.NewOrchestrator(providers,
		time.Duration(cfg.General.ProviderTimeoutSeconds)*time.Second, log.Logger)

	// Stores are optional on the CLI: without a database the run uses the
	// built-in template, no reference context, and no audit trail.
	var (
		templates prompts.Source = prompts.StaticSource{Template: prompts.DefaultTemplate()}
		refstore  refdata.Store
		attempts  pipeline.AttemptLogger
	)
	testMode := c.Bool("test-mode")

	// An empty configured URL still goes through DATABASE_URL / .env
	// discovery before the run degrades to the built-in stores.
	db, err := database.NewDB(cfg.Database.URL)
	switch {
	case err == nil:
		defer db.Close()
		templates = prompts.NewSQLSource(db)
		refstore = refdata.NewSQLStore(db)

		if !testMode {
			pool, err := database.NewPool(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()
			attempts = audit.NewLogger(pool, log.Logger)
		}
	case cfg.Database.URL != "":
		return err
	default:
		if !testMode {
			log.Warn().Err(err).Msg("no database configured or discoverable, running without audit logging")
			testMode = true
		}
	}

	validator := pipeline.New(pipeline.Options{
		Sanitizer:       sanitize.New(cfg.Sanitizer),
		RefStore:        refstore,
		Templates:       templates,
		LLM:             orchestrator,
		Audit:           attempts,
		ContextMaxBytes: cfg.General.ContextMaxBytes,
		WordLimit:       cfg.General.WordLimit,
		Logger:          log.Logger,
	})

	var orderID *int64
	if c.IsSet("order") {
		id := c.Int64("order")
		orderID = &id
	}

	result, err := validator.Run(ctx, text, pipeline.RunContext{
		UserID:               c.Int64("user"),
		OrderID:              orderID,
		IsOverrideValidation: c.Bool("override"),
	}, testMode)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func readDictation(c *cli.Context) (string, error) {
	arg := c.Args().First()
	if arg == "" || arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", arg, err)
	}
	return string(data), nil
}
