package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gitlab.com/yelinaung/finflow/internal/api"
	"gitlab.com/yelinaung/finflow/internal/bot"
	"gitlab.com/yelinaung/finflow/internal/config"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/gemini"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/service"
	"gitlab.com/yelinaung/finflow/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the Telegram bot",
		RunE:  runServe,
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := database.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			if err := database.RunMigrations(cmd.Context(), pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Log.Info().Msg("Migrations applied")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finflow %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// loadConfig reads the configuration and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)
	logger.SetHashSalt(cfg.LogHashSalt)
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, cfg.OTelExporter, cfg.OTelServiceName, version, nil)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Telemetry shutdown failed")
		}
	}()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Log.Info().Msg("Database initialized successfully")

	loc := cfg.Location
	var clock finance.Clock = func() time.Time { return time.Now().In(loc) }

	svc := service.New(pool, service.Options{
		Clock:           clock,
		Palette:         finance.Palette{Expense: cfg.ExpensePalette, Income: cfg.IncomePalette},
		DefaultCurrency: cfg.DefaultCurrency,
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.HTTPEnabled {
		server := api.NewServer(cfg.HTTPAddr, api.FromService(svc), cfg.APIToken, clock)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	if cfg.BotEnabled() {
		var classifier bot.Classifier
		if cfg.GeminiAPIKey != "" {
			client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel))
			if err != nil {
				logger.Log.Warn().Err(err).Msg("Gemini client unavailable, free-text entries use the default category")
			} else {
				classifier = client
			}
		}

		telegramBot, err := bot.New(cfg, svc, classifier, clock)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		g.Go(func() error {
			telegramBot.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
